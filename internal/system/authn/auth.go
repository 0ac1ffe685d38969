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

package authn

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openconsent/cookie-consent-service/internal/system/config"
	errors2 "github.com/openconsent/cookie-consent-service/internal/system/errors"
)

// ValidateRequest checks the bearer token on requests to protected endpoints.
// Tokens are HS256 JWTs signed with the configured secret.
func ValidateRequest(r *http.Request) error {

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.UNAUTHORIZED.Code,
			Message:     errors2.UNAUTHORIZED.Message,
			Description: "A bearer token is required to access this resource.",
		}, http.StatusUnauthorized)
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	secret := config.GetRuntime().Config.Auth.JWTSecret

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.UNAUTHORIZED.Code,
			Message:     errors2.UNAUTHORIZED.Message,
			Description: "The provided token is invalid or expired.",
		}, http.StatusUnauthorized)
	}
	return nil
}
