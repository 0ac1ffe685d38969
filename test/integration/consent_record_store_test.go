/*
 * Copyright (c) 2025, the OpenConsent project.
 *
 * The OpenConsent project licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/consent/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(consentDate time.Time) model.ConsentRecord {
	ip := "203.0.113.7"
	userAgent := "Mozilla/5.0"
	return model.ConsentRecord{
		ConsentData:    model.ConsentDecision{"technical": true, "analytics": false},
		ConsentDate:    consentDate,
		ExpirationDate: consentDate.AddDate(2, 0, 0),
		Ip:             &ip,
		UserAgent:      &userAgent,
		Uuid:           uuid.New().String(),
		Version:        1,
	}
}

func TestAddAndFetchConsentRecord(t *testing.T) {
	recordStore := store.NewConsentRecordStore()

	record := newRecord(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	require.NoError(t, recordStore.AddConsentRecord(record))

	fetched, err := recordStore.GetConsentRecordByUUID(record.Uuid)
	require.NoError(t, err)
	require.NotNil(t, fetched)

	assert.Positive(t, fetched.Id)
	assert.Equal(t, record.Uuid, fetched.Uuid)
	assert.Equal(t, record.ConsentData, fetched.ConsentData)
	assert.Equal(t, record.Version, fetched.Version)
	assert.True(t, record.ConsentDate.Equal(fetched.ConsentDate.UTC()))
	assert.True(t, record.ExpirationDate.Equal(fetched.ExpirationDate.UTC()))
	require.NotNil(t, fetched.Ip)
	assert.Equal(t, "203.0.113.7", *fetched.Ip)
	require.NotNil(t, fetched.UserAgent)
	assert.Equal(t, "Mozilla/5.0", *fetched.UserAgent)
}

func TestFetchConsentRecord_NotFound(t *testing.T) {
	recordStore := store.NewConsentRecordStore()

	fetched, err := recordStore.GetConsentRecordByUUID(uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, fetched)
}

func TestAddConsentRecord_NullableColumns(t *testing.T) {
	recordStore := store.NewConsentRecordStore()

	record := newRecord(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	record.Ip = nil
	record.UserAgent = nil
	require.NoError(t, recordStore.AddConsentRecord(record))

	fetched, err := recordStore.GetConsentRecordByUUID(record.Uuid)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Nil(t, fetched.Ip)
	assert.Nil(t, fetched.UserAgent)
}

func TestGetConsentRecordsBefore(t *testing.T) {
	recordStore := store.NewConsentRecordStore()

	old := newRecord(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC))
	older := newRecord(time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC))
	recent := newRecord(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	for _, record := range []model.ConsentRecord{old, older, recent} {
		require.NoError(t, recordStore.AddConsentRecord(record))
	}

	fetched, err := recordStore.GetConsentRecordsBefore(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	uuids := make([]string, 0, len(fetched))
	for _, record := range fetched {
		uuids = append(uuids, record.Uuid)
	}
	assert.Contains(t, uuids, old.Uuid)
	assert.Contains(t, uuids, older.Uuid)
	assert.NotContains(t, uuids, recent.Uuid)

	// Oldest first.
	for i := 1; i < len(fetched); i++ {
		assert.False(t, fetched[i].ConsentDate.Before(fetched[i-1].ConsentDate))
	}
}

func TestDeleteConsentRecords(t *testing.T) {
	recordStore := store.NewConsentRecordStore()

	doomed := newRecord(time.Date(2018, 1, 1, 12, 0, 0, 0, time.UTC))
	survivor := newRecord(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	require.NoError(t, recordStore.AddConsentRecord(doomed))
	require.NoError(t, recordStore.AddConsentRecord(survivor))

	fetched, err := recordStore.GetConsentRecordByUUID(doomed.Uuid)
	require.NoError(t, err)
	require.NotNil(t, fetched)

	require.NoError(t, recordStore.DeleteConsentRecords([]int64{fetched.Id}))

	gone, err := recordStore.GetConsentRecordByUUID(doomed.Uuid)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := recordStore.GetConsentRecordByUUID(survivor.Uuid)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestDeleteConsentRecords_EmptySet(t *testing.T) {
	recordStore := store.NewConsentRecordStore()
	assert.NoError(t, recordStore.DeleteConsentRecords(nil))
}
