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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openconsent/cookie-consent-service/internal/archive"
	"github.com/openconsent/cookie-consent-service/internal/consent/codec"
	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/consent/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSaveConsentEndToEnd drives the real service over the real store: save a
// decision, decode the issued cookie, then read back the audit record.
func TestSaveConsentEndToEnd(t *testing.T) {
	svc := provider.NewConsentProvider().GetConsentService()
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	result, err := svc.SaveConsent(model.ConsentDecision{"technical": false, "analytics": true},
		"203.0.113.7", "Mozilla/5.0", now)
	require.NoError(t, err)

	payload := codec.Decode(result.CookieValue)
	require.NotNil(t, payload)
	assert.Equal(t, result.Uuid, payload.Uuid)
	// Required category forced to accepted despite the client rejecting it.
	assert.Equal(t, "true", payload.ConsentData["technical"])
	assert.Equal(t, "true", payload.ConsentData["analytics"])

	record, err := svc.GetConsentRecord(result.Uuid)
	require.NoError(t, err)
	assert.Equal(t, model.ConsentDecision{"technical": true, "analytics": true}, record.ConsentData)
	assert.Equal(t, 1, record.Version)

	cache := codec.NewCache(result.CookieValue)
	assert.True(t, svc.IsConsentGiven(cache, now))
	assert.True(t, svc.IsCategoryAccepted(cache, []string{"technical", "analytics"}, now))
}

// TestArchiveEndToEnd saves aged and fresh records through the service, then
// runs the archival pass and verifies the export file and the surviving rows.
func TestArchiveEndToEnd(t *testing.T) {
	svc := provider.NewConsentProvider().GetConsentService()

	aged, err := svc.SaveConsent(model.ConsentDecision{"analytics": true}, "", "",
		time.Date(2019, 2, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	fresh, err := svc.SaveConsent(model.ConsentDecision{"analytics": true}, "", "",
		time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	archiver := archive.GetArchiver()
	result, err := archiver.Run(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), "csv", false)
	require.NoError(t, err)

	uuids := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		uuids = append(uuids, record.Uuid)
	}
	assert.Contains(t, uuids, aged.Uuid)
	assert.NotContains(t, uuids, fresh.Uuid)

	content, err := os.ReadFile(result.ExportPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), aged.Uuid)
	assert.True(t, strings.Contains(filepath.Base(result.ExportPath), "_exported_"))

	// Archived rows are gone from the live store, fresh rows remain.
	_, err = svc.GetConsentRecord(aged.Uuid)
	assert.Error(t, err)
	kept, err := svc.GetConsentRecord(fresh.Uuid)
	require.NoError(t, err)
	assert.Equal(t, fresh.Uuid, kept.Uuid)
}

// TestArchiveDryRunEndToEnd verifies a dry run leaves the store untouched.
func TestArchiveDryRunEndToEnd(t *testing.T) {
	svc := provider.NewConsentProvider().GetConsentService()

	aged, err := svc.SaveConsent(model.ConsentDecision{"marketing": true}, "", "",
		time.Date(2017, 7, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	archiver := archive.GetArchiver()
	result, err := archiver.Run(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), "log", true)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.NotEmpty(t, result.Records)
	assert.Empty(t, result.ExportPath)

	kept, err := svc.GetConsentRecord(aged.Uuid)
	require.NoError(t, err)
	assert.Equal(t, aged.Uuid, kept.Uuid)
}
