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
	"net/http"
	"net/url"

	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/system/constants"
)

// Cache memoizes the decoded cookie payload for the lifetime of one request.
// Rendering logic may query consent state many times per request; the raw
// cookie is decoded at most once. A Cache must not outlive its request.
type Cache struct {
	raw     string
	decoded bool
	payload *model.CookiePayload
}

// NewCache creates a request-scoped decode cache over a raw cookie value.
func NewCache(raw string) *Cache {
	return &Cache{raw: raw}
}

// NewCacheFromRequest creates a decode cache from the request's consent cookie.
// A missing cookie behaves like an empty value. The JSON payload is URL-escaped
// on the wire because cookie values may not contain quotes or commas.
func NewCacheFromRequest(r *http.Request) *Cache {
	cookie, err := r.Cookie(constants.ConsentCookieName)
	if err != nil {
		return &Cache{}
	}
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		// An undecodable cookie degrades to "no consent" downstream.
		raw = cookie.Value
	}
	return &Cache{raw: raw}
}

// Payload returns the decoded payload, computing it on first use.
func (c *Cache) Payload() *model.CookiePayload {
	if !c.decoded {
		c.payload = Decode(c.raw)
		c.decoded = true
	}
	return c.payload
}
