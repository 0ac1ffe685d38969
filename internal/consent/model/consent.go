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

package models

import "time"

// ConsentDecision maps a category name to the visitor's acceptance.
type ConsentDecision map[string]bool

// CookiePayload is the JSON structure stored in the COOKIE_CONSENT cookie.
// ConsentData values are the literal strings "true"/"false" rather than native
// booleans; the client script compares against those strings, so the encoding
// must be preserved exactly.
type CookiePayload struct {
	Uuid        string            `json:"uuid"`
	Datetime    string            `json:"datetime"`
	Expiration  string            `json:"expiration"`
	Version     int               `json:"version"`
	ConsentData map[string]string `json:"consentData"`
}

// ConsentRecord is one immutable audit row capturing a consent event.
// Rows are created on save, never updated, and deleted only by the archival job.
type ConsentRecord struct {
	Id             int64           `json:"id"`
	ConsentData    ConsentDecision `json:"consent_data"`
	ConsentDate    time.Time       `json:"consent_date"`
	ExpirationDate time.Time       `json:"expiration_date"`
	Ip             *string         `json:"ip,omitempty"`
	UserAgent      *string         `json:"user_agent,omitempty"`
	Uuid           string          `json:"uuid"`
	Version        int             `json:"version"`
}

// CategoryDefinition describes one configured consent category.
type CategoryDefinition struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// SaveResult carries everything the presentation layer needs to attach the
// response cookie after a successful save.
type SaveResult struct {
	CookieValue string    `json:"cookie_value"`
	Uuid        string    `json:"uuid"`
	Expiration  time.Time `json:"expiration"`
}

// CookieStatus is the decoded cookie view used for rendering, with category
// acceptance re-parsed into native booleans.
type CookieStatus struct {
	Uuid       string          `json:"uuid"`
	Datetime   string          `json:"datetime"`
	Expiration string          `json:"expiration"`
	Version    int             `json:"version"`
	Categories ConsentDecision `json:"categories"`
}
