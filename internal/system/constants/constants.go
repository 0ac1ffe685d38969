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

package constants

const (
	// ApiBasePath is the prefix for every HTTP route the service registers.
	ApiBasePath = "/api/v1"

	// ConsentCookieName is the name of the browser cookie holding the consent payload.
	ConsentCookieName = "COOKIE_CONSENT"

	// CookieTimestampFormat is the fixed format of the datetime and expiration
	// fields inside the consent cookie payload. Client scripts parse this exact
	// shape; it must not change.
	CookieTimestampFormat = "2006/01/02 15:04:05"

	// ExportTimestampFormat renders record timestamps inside archive exports.
	ExportTimestampFormat = "2006-01-02 15:04:05"

	// ExportDateFormat renders the oldest/newest record dates in export file names.
	ExportDateFormat = "2006-01-02"

	// ExportRunFormat renders the archival run start time in export file names.
	ExportRunFormat = "20060102_150405"

	// MaxUserAgentLength is the stored length limit for the user agent column.
	MaxUserAgentLength = 255
)

// Theme modes accepted by the consent banner configuration.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// AllowedThemes defines the valid set of theme modes.
var AllowedThemes = map[string]bool{
	ThemeLight: true,
	ThemeDark:  true,
	ThemeAuto:  true,
}

// Archive export formats.
const (
	ExportFormatLog  = "log"
	ExportFormatCSV  = "csv"
	ExportFormatHTML = "html"
)

// AllowedExportFormats defines the valid set of archive output formats.
var AllowedExportFormats = map[string]bool{
	ExportFormatLog:  true,
	ExportFormatCSV:  true,
	ExportFormatHTML: true,
}
