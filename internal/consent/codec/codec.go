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

package codec

import (
	"encoding/json"
	"strconv"
	"time"

	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/system/constants"
	errors2 "github.com/openconsent/cookie-consent-service/internal/system/errors"
)

// Encode serializes the consent decision into the cookie payload JSON.
// expirationOffset is a relative-time expression such as "+2 years", resolved
// against now. Boolean decisions are written as the strings "true"/"false".
func Encode(decision model.ConsentDecision, uuid string, now time.Time, expirationOffset string, version int) (string, error) {

	expiration, err := ResolveOffset(now, expirationOffset)
	if err != nil {
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ENCODE_CONSENT_COOKIE.Code,
			Message:     errors2.ENCODE_CONSENT_COOKIE.Message,
			Description: "Failed to resolve the configured expiration offset.",
		}, err)
	}

	consentData := make(map[string]string, len(decision))
	for category, accepted := range decision {
		consentData[category] = strconv.FormatBool(accepted)
	}

	payload := model.CookiePayload{
		Uuid:        uuid,
		Datetime:    now.Format(constants.CookieTimestampFormat),
		Expiration:  expiration.Format(constants.CookieTimestampFormat),
		Version:     version,
		ConsentData: consentData,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ENCODE_CONSENT_COOKIE.Code,
			Message:     errors2.ENCODE_CONSENT_COOKIE.Message,
			Description: "Failed to marshal the consent cookie payload.",
		}, err)
	}
	return string(raw), nil
}

// Decode parses a raw cookie value into a payload. It fails soft: an empty or
// malformed value yields nil, never an error, since a broken cookie simply
// means "no consent".
func Decode(raw string) *model.CookiePayload {

	if raw == "" {
		return nil
	}
	var payload model.CookiePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	return &payload
}

// IsValid reports whether the payload represents currently given consent:
// present, matching the configured policy version, and not yet expired.
func IsValid(payload *model.CookiePayload, currentVersion int, now time.Time) bool {

	if payload == nil {
		return false
	}
	if payload.Version != currentVersion {
		return false
	}
	expiration, err := time.Parse(constants.CookieTimestampFormat, payload.Expiration)
	if err != nil {
		return false
	}
	return expiration.After(now)
}

// IsCategoryAccepted reports whether every requested category resolves to
// accepted. A category present in the payload must hold the string "true";
// a category absent from the payload counts as accepted.
func IsCategoryAccepted(payload *model.CookiePayload, categories []string, currentVersion int, now time.Time) bool {

	if !IsValid(payload, currentVersion, now) {
		return false
	}
	for _, category := range categories {
		if value, ok := payload.ConsentData[category]; ok && value != "true" {
			return false
		}
	}
	return true
}
