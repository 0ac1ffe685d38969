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

package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openconsent/cookie-consent-service/internal/consent/codec"
	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/consent/provider"
	"github.com/openconsent/cookie-consent-service/internal/consent/service"
	"github.com/openconsent/cookie-consent-service/internal/system/authn"
	"github.com/openconsent/cookie-consent-service/internal/system/config"
	"github.com/openconsent/cookie-consent-service/internal/system/constants"
	"github.com/openconsent/cookie-consent-service/internal/system/utils"
)

// ConsentHandler exposes the consent lifecycle over HTTP. It is the
// presentation adapter: cookie attributes and response shapes live here, the
// lifecycle semantics live in the service.
type ConsentHandler struct {
	service service.ConsentServiceInterface
}

// NewConsentHandler creates a handler over the default service.
func NewConsentHandler() *ConsentHandler {
	return &ConsentHandler{service: provider.NewConsentProvider().GetConsentService()}
}

// NewConsentHandlerWithService creates a handler over the given service.
func NewConsentHandlerWithService(svc service.ConsentServiceInterface) *ConsentHandler {
	return &ConsentHandler{service: svc}
}

// SaveConsent handles POST /consent. The body is an arbitrary mapping of
// category name to client-submitted acceptance value, either as a form or as
// JSON. On success the encoded payload is attached as the consent cookie and
// echoed in the response body.
func (h *ConsentHandler) SaveConsent(w http.ResponseWriter, r *http.Request) {

	decision, err := parseDecision(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	result, err := h.service.SaveConsent(decision, utils.ClientIP(r), r.UserAgent(), time.Now())
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	h.setConsentCookie(w, result)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":      "success",
		"cookieValue": result.CookieValue,
	})
}

// RetractConsent handles DELETE /consent. The cookie is cleared with matching
// path and flags; the audit record is left untouched.
func (h *ConsentHandler) RetractConsent(w http.ResponseWriter, r *http.Request) {

	h.service.RetractConsent()
	h.clearConsentCookie(w)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	})
}

// GetConsentStatus handles GET /consent. It reports the current consent state
// for client scripts and page rendering.
func (h *ConsentHandler) GetConsentStatus(w http.ResponseWriter, r *http.Request) {

	cache := codec.NewCacheFromRequest(r)
	now := time.Now()

	response := struct {
		Given      bool                       `json:"given"`
		Theme      string                     `json:"theme"`
		Categories []model.CategoryDefinition `json:"categories"`
		Cookie     *model.CookieStatus        `json:"cookie,omitempty"`
	}{
		Given:      h.service.IsConsentGiven(cache, now),
		Theme:      h.service.GetThemeMode(),
		Categories: h.service.GetCategories(),
		Cookie:     h.service.GetCookieStatus(cache),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// GetConsentRecord handles GET /consent-records/{uuid}. The audit trail is
// compliance evidence, so the endpoint requires a bearer token.
func (h *ConsentHandler) GetConsentRecord(w http.ResponseWriter, r *http.Request) {

	if err := authn.ValidateRequest(r); err != nil {
		utils.HandleError(w, err)
		return
	}

	recordId := extractLastPathSegment(r.URL.Path)
	record, err := h.service.GetConsentRecord(recordId)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(record)
}

// setConsentCookie attaches the encoded payload as the consent cookie. The
// JSON value is URL-escaped because raw quotes and commas are not valid in a
// Set-Cookie header.
func (h *ConsentHandler) setConsentCookie(w http.ResponseWriter, result *model.SaveResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.ConsentCookieName,
		Value:    url.QueryEscape(result.CookieValue),
		Path:     "/",
		Domain:   config.GetRuntime().Config.Consent.CookieDomain,
		Expires:  result.Expiration,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearConsentCookie deletes the consent cookie with matching path and flags.
func (h *ConsentHandler) clearConsentCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.ConsentCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.GetRuntime().Config.Consent.CookieDomain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// parseDecision reads the submitted category mapping from a form or JSON body.
// Unknown acceptance values count as rejection; required categories are forced
// server-side regardless.
func parseDecision(r *http.Request) (model.ConsentDecision, error) {

	decision := model.ConsentDecision{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			// An unreadable body is treated as an empty decision; required
			// categories still get recorded.
			return decision, nil
		}
		for category, value := range body {
			decision[category] = parseAcceptance(value)
		}
		return decision, nil
	}

	if err := r.ParseForm(); err != nil {
		return decision, nil
	}
	for category := range r.PostForm {
		decision[category] = parseAcceptance(r.PostForm.Get(category))
	}
	return decision, nil
}

// parseAcceptance interprets a client-submitted acceptance value.
func parseAcceptance(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "on", "yes":
			return true
		}
	}
	return false
}

func extractLastPathSegment(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
