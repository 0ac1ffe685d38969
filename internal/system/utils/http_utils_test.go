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

package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	customerrors "github.com/openconsent/cookie-consent-service/internal/system/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_ClientError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, customerrors.NewClientError(customerrors.ErrorMessage{
		Code:        customerrors.BAD_REQUEST.Code,
		Message:     customerrors.BAD_REQUEST.Message,
		Description: "A consent record uuid is required.",
	}, http.StatusBadRequest))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, customerrors.BAD_REQUEST.Code, body["code"])
	assert.Equal(t, customerrors.BAD_REQUEST.Message, body["message"])
	assert.Equal(t, "A consent record uuid is required.", body["description"])
}

func TestHandleError_ServerErrorIsGeneric(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, customerrors.NewServerError(customerrors.ADD_CONSENT_RECORD,
		errors.New("pq: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "An error occurred while processing the request.", body["message"])
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestHandleError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestClientIP(t *testing.T) {
	t.Run("remote address", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "203.0.113.7:54321"
		assert.Equal(t, "203.0.113.7", ClientIP(r))
	})

	t.Run("forwarded header wins", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:80"
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
		assert.Equal(t, "203.0.113.7", ClientIP(r))
	})

	t.Run("address without port", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "203.0.113.7"
		assert.Equal(t, "203.0.113.7", ClientIP(r))
	})
}
