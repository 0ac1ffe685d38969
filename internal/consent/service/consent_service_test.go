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

package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openconsent/cookie-consent-service/internal/consent/codec"
	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/system/config"
	errors2 "github.com/openconsent/cookie-consent-service/internal/system/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records []model.ConsentRecord
	addErr  error
	nextId  int64
}

func (f *fakeStore) AddConsentRecord(record model.ConsentRecord) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.nextId++
	record.Id = f.nextId
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStore) GetConsentRecordByUUID(uuid string) (*model.ConsentRecord, error) {
	for i := range f.records {
		if f.records[i].Uuid == uuid {
			return &f.records[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetConsentRecordsBefore(cutoff time.Time) ([]model.ConsentRecord, error) {
	var matched []model.ConsentRecord
	for _, record := range f.records {
		if record.ConsentDate.Before(cutoff) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (f *fakeStore) DeleteConsentRecords(ids []int64) error {
	keep := f.records[:0]
	for _, record := range f.records {
		remove := false
		for _, id := range ids {
			if record.Id == id {
				remove = true
				break
			}
		}
		if !remove {
			keep = append(keep, record)
		}
	}
	f.records = keep
	return nil
}

func setupConfig(t *testing.T) {
	t.Helper()
	config.OverrideRuntime(t.TempDir(), config.Config{
		Log: config.LogConfig{LogLevel: "ERROR"},
		Consent: config.ConsentConfig{
			ExpirationOffset: "+2 years",
			Version:          1,
			Theme:            "dark",
			Categories: []config.CategoryConfig{
				{Name: "technical", Required: true},
				{Name: "ads", Required: false},
			},
		},
	})
}

func TestSaveConsent(t *testing.T) {
	setupConfig(t)
	recordStore := &fakeStore{}
	svc := NewConsentService(recordStore)
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	result, err := svc.SaveConsent(model.ConsentDecision{"technical": false, "ads": true},
		"203.0.113.7", "Mozilla/5.0", now)
	require.NoError(t, err)

	t.Run("exactly one audit record with matching uuid", func(t *testing.T) {
		require.Len(t, recordStore.records, 1)
		assert.Equal(t, result.Uuid, recordStore.records[0].Uuid)
	})

	t.Run("required category is forced to accepted", func(t *testing.T) {
		payload := codec.Decode(result.CookieValue)
		require.NotNil(t, payload)
		assert.Equal(t, "true", payload.ConsentData["technical"])
		assert.Equal(t, "true", payload.ConsentData["ads"])
		assert.True(t, recordStore.records[0].ConsentData["technical"])
	})

	t.Run("record mirrors the cookie", func(t *testing.T) {
		record := recordStore.records[0]
		assert.Equal(t, now, record.ConsentDate)
		assert.Equal(t, now.AddDate(2, 0, 0), record.ExpirationDate)
		assert.Equal(t, 1, record.Version)
		require.NotNil(t, record.Ip)
		assert.Equal(t, "203.0.113.7", *record.Ip)
		require.NotNil(t, record.UserAgent)
		assert.Equal(t, "Mozilla/5.0", *record.UserAgent)
	})

	t.Run("every save is a new audit event", func(t *testing.T) {
		again, err := svc.SaveConsent(model.ConsentDecision{"technical": false, "ads": true},
			"203.0.113.7", "Mozilla/5.0", now)
		require.NoError(t, err)
		assert.Len(t, recordStore.records, 2)
		assert.NotEqual(t, result.Uuid, again.Uuid)
	})
}

func TestSaveConsent_UserAgentTruncated(t *testing.T) {
	setupConfig(t)
	recordStore := &fakeStore{}
	svc := NewConsentService(recordStore)

	longAgent := strings.Repeat("x", 300)
	_, err := svc.SaveConsent(model.ConsentDecision{}, "", longAgent, time.Now())
	require.NoError(t, err)

	record := recordStore.records[0]
	require.NotNil(t, record.UserAgent)
	assert.Len(t, *record.UserAgent, 255)
	assert.Nil(t, record.Ip)
}

func TestSaveConsent_StoreFailure(t *testing.T) {
	setupConfig(t)
	storeErr := errors2.NewServerError(errors2.ADD_CONSENT_RECORD, errors.New("connection refused"))
	svc := NewConsentService(&fakeStore{addErr: storeErr})

	_, err := svc.SaveConsent(model.ConsentDecision{"ads": true}, "", "", time.Now())
	require.Error(t, err)

	var serverError *errors2.ServerError
	assert.True(t, errors.As(err, &serverError))
}

func TestRetractConsent_LeavesAuditTrail(t *testing.T) {
	setupConfig(t)
	recordStore := &fakeStore{}
	svc := NewConsentService(recordStore)

	result, err := svc.SaveConsent(model.ConsentDecision{"ads": true}, "", "", time.Now())
	require.NoError(t, err)

	svc.RetractConsent()

	record, err := svc.GetConsentRecord(result.Uuid)
	require.NoError(t, err)
	assert.Equal(t, result.Uuid, record.Uuid)
}

func TestIsConsentGiven(t *testing.T) {
	setupConfig(t)
	svc := NewConsentService(&fakeStore{})
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("fresh save is valid", func(t *testing.T) {
		result, err := svc.SaveConsent(model.ConsentDecision{"ads": true}, "", "", now)
		require.NoError(t, err)
		assert.True(t, svc.IsConsentGiven(codec.NewCache(result.CookieValue), now))
	})

	t.Run("missing cookie means no consent", func(t *testing.T) {
		assert.False(t, svc.IsConsentGiven(codec.NewCache(""), now))
	})

	t.Run("malformed cookie means no consent", func(t *testing.T) {
		assert.False(t, svc.IsConsentGiven(codec.NewCache("{broken"), now))
	})
}

func TestIsCategoryAccepted(t *testing.T) {
	setupConfig(t)
	svc := NewConsentService(&fakeStore{})
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	result, err := svc.SaveConsent(model.ConsentDecision{"technical": true, "ads": false}, "", "", now)
	require.NoError(t, err)
	cache := codec.NewCache(result.CookieValue)

	assert.True(t, svc.IsCategoryAccepted(cache, []string{"technical"}, now))
	assert.False(t, svc.IsCategoryAccepted(cache, []string{"ads"}, now))
	assert.False(t, svc.IsCategoryAccepted(cache, []string{"technical", "ads"}, now))
}

func TestGetCookieStatus(t *testing.T) {
	setupConfig(t)
	svc := NewConsentService(&fakeStore{})
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	result, err := svc.SaveConsent(model.ConsentDecision{"technical": true, "ads": false}, "", "", now)
	require.NoError(t, err)

	status := svc.GetCookieStatus(codec.NewCache(result.CookieValue))
	require.NotNil(t, status)
	assert.Equal(t, result.Uuid, status.Uuid)
	assert.Equal(t, 1, status.Version)
	assert.Equal(t, "2024/03/15 10:30:00", status.Datetime)
	// String-encoded values come back as native booleans for display.
	assert.Equal(t, model.ConsentDecision{"technical": true, "ads": false}, status.Categories)

	assert.Nil(t, svc.GetCookieStatus(codec.NewCache("")))
}

func TestReadAccessors(t *testing.T) {
	setupConfig(t)
	svc := NewConsentService(&fakeStore{})

	assert.Equal(t, "dark", svc.GetThemeMode())
	assert.Equal(t, []model.CategoryDefinition{
		{Name: "technical", Required: true},
		{Name: "ads", Required: false},
	}, svc.GetCategories())
}

func TestGetConsentRecord_Errors(t *testing.T) {
	setupConfig(t)
	svc := NewConsentService(&fakeStore{})

	t.Run("empty uuid", func(t *testing.T) {
		_, err := svc.GetConsentRecord("")
		var clientError *errors2.ClientError
		require.True(t, errors.As(err, &clientError))
		assert.Equal(t, 400, clientError.StatusCode)
	})

	t.Run("unknown uuid", func(t *testing.T) {
		_, err := svc.GetConsentRecord("00000000-0000-0000-0000-000000000000")
		var clientError *errors2.ClientError
		require.True(t, errors.As(err, &clientError))
		assert.Equal(t, 404, clientError.StatusCode)
	})
}
