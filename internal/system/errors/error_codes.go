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

package errors

const errorPrefix = "CCS-"

var (
	// Server error codes

	ADD_CONSENT_RECORD = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while persisting consent record.",
	}

	FETCH_CONSENT_RECORDS = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while fetching consent record(s).",
	}

	DELETE_CONSENT_RECORDS = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while deleting consent record(s).",
	}

	ENCODE_CONSENT_COOKIE = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while encoding the consent cookie.",
	}

	WRITE_ARCHIVE_EXPORT = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while writing the archive export file.",
	}

	// Client error codes

	BAD_REQUEST = ErrorMessage{
		Code:    errorPrefix + "10001",
		Message: "Invalid request.",
	}

	CONSENT_RECORD_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10002",
		Message: "Consent record not found.",
	}

	UNSUPPORTED_ARCHIVE_FORMAT = ErrorMessage{
		Code:    errorPrefix + "10003",
		Message: "Unsupported archive output format.",
	}

	UNAUTHORIZED = ErrorMessage{
		Code:    errorPrefix + "10004",
		Message: "Authentication required.",
	}
)
