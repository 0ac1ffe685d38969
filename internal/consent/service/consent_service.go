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
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openconsent/cookie-consent-service/internal/consent/codec"
	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/consent/store"
	"github.com/openconsent/cookie-consent-service/internal/system/config"
	"github.com/openconsent/cookie-consent-service/internal/system/constants"
	errors2 "github.com/openconsent/cookie-consent-service/internal/system/errors"
	"github.com/openconsent/cookie-consent-service/internal/system/log"
)

// ConsentServiceInterface is the single orchestration point for consent
// save/retract/query operations. Handlers never touch the store or the codec
// directly.
type ConsentServiceInterface interface {
	SaveConsent(decision model.ConsentDecision, clientIp, userAgent string, now time.Time) (*model.SaveResult, error)
	RetractConsent()
	IsConsentGiven(cache *codec.Cache, now time.Time) bool
	IsCategoryAccepted(cache *codec.Cache, categories []string, now time.Time) bool
	GetCookieStatus(cache *codec.Cache) *model.CookieStatus
	GetCategories() []model.CategoryDefinition
	GetThemeMode() string
	GetConsentRecord(uuid string) (*model.ConsentRecord, error)
}

// ConsentService is the default implementation backed by the SQL store.
type ConsentService struct {
	store store.ConsentRecordStoreInterface
}

// GetConsentService returns a service instance over the Postgres store.
func GetConsentService() ConsentServiceInterface {
	return &ConsentService{store: store.NewConsentRecordStore()}
}

// NewConsentService returns a service instance over the given store.
func NewConsentService(recordStore store.ConsentRecordStoreInterface) ConsentServiceInterface {
	return &ConsentService{store: recordStore}
}

// SaveConsent records one consent event: required categories are forced to
// accepted, a fresh uuid is generated, the cookie payload is encoded, and one
// audit record is persisted with the same uuid, timestamps and version. Every
// save is a new audit event; there is no deduplication.
func (cs *ConsentService) SaveConsent(decision model.ConsentDecision, clientIp, userAgent string, now time.Time) (*model.SaveResult, error) {

	conf := config.GetRuntime().Config.Consent

	resolved := make(model.ConsentDecision, len(decision))
	for category, accepted := range decision {
		resolved[category] = accepted
	}
	// The client cannot opt out of required categories.
	for _, category := range conf.Categories {
		if category.Required {
			resolved[category.Name] = true
		}
	}

	id := uuid.New().String()

	expiration, err := codec.ResolveOffset(now, conf.ExpirationOffset)
	if err != nil {
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ENCODE_CONSENT_COOKIE.Code,
			Message:     errors2.ENCODE_CONSENT_COOKIE.Message,
			Description: "Failed to resolve the configured expiration offset.",
		}, err)
	}

	cookieValue, err := codec.Encode(resolved, id, now, conf.ExpirationOffset, conf.Version)
	if err != nil {
		return nil, err
	}

	record := model.ConsentRecord{
		ConsentData:    resolved,
		ConsentDate:    now,
		ExpirationDate: expiration,
		Ip:             optionalString(clientIp),
		UserAgent:      optionalString(truncateUserAgent(userAgent)),
		Uuid:           id,
		Version:        conf.Version,
	}
	if err := cs.store.AddConsentRecord(record); err != nil {
		return nil, err
	}

	return &model.SaveResult{
		CookieValue: cookieValue,
		Uuid:        id,
		Expiration:  expiration,
	}, nil
}

// RetractConsent handles a consent retraction. The audit trail is immutable
// history, so no record is deleted or altered; clearing the browser cookie is
// the handler's responsibility.
func (cs *ConsentService) RetractConsent() {
	log.GetLogger().Info("Consent retracted; cookie cleared client-side")
}

// IsConsentGiven reports whether the current cookie represents valid consent.
func (cs *ConsentService) IsConsentGiven(cache *codec.Cache, now time.Time) bool {
	conf := config.GetRuntime().Config.Consent
	return codec.IsValid(cache.Payload(), conf.Version, now)
}

// IsCategoryAccepted reports whether all given categories are accepted under
// the current cookie. Categories are AND-ed.
func (cs *ConsentService) IsCategoryAccepted(cache *codec.Cache, categories []string, now time.Time) bool {
	conf := config.GetRuntime().Config.Consent
	return codec.IsCategoryAccepted(cache.Payload(), categories, conf.Version, now)
}

// GetCookieStatus returns the decoded cookie view for rendering, with the
// string-encoded category values re-parsed into native booleans. Returns nil
// when no decodable cookie is present.
func (cs *ConsentService) GetCookieStatus(cache *codec.Cache) *model.CookieStatus {

	payload := cache.Payload()
	if payload == nil {
		return nil
	}
	categories := make(model.ConsentDecision, len(payload.ConsentData))
	for category, value := range payload.ConsentData {
		categories[category] = value == "true"
	}
	return &model.CookieStatus{
		Uuid:       payload.Uuid,
		Datetime:   payload.Datetime,
		Expiration: payload.Expiration,
		Version:    payload.Version,
		Categories: categories,
	}
}

// GetCategories returns the configured category definitions in order.
func (cs *ConsentService) GetCategories() []model.CategoryDefinition {
	conf := config.GetRuntime().Config.Consent
	categories := make([]model.CategoryDefinition, 0, len(conf.Categories))
	for _, category := range conf.Categories {
		categories = append(categories, model.CategoryDefinition{
			Name:     category.Name,
			Required: category.Required,
		})
	}
	return categories
}

// GetThemeMode returns the configured banner theme.
func (cs *ConsentService) GetThemeMode() string {
	return config.GetRuntime().Config.Consent.Theme
}

// GetConsentRecord retrieves an audit record by its uuid.
func (cs *ConsentService) GetConsentRecord(id string) (*model.ConsentRecord, error) {

	if id == "" {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.BAD_REQUEST.Code,
			Message:     errors2.BAD_REQUEST.Message,
			Description: "A consent record uuid is required.",
		}, http.StatusBadRequest)
	}
	record, err := cs.store.GetConsentRecordByUUID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.CONSENT_RECORD_NOT_FOUND.Code,
			Message:     errors2.CONSENT_RECORD_NOT_FOUND.Message,
			Description: "No consent record exists for the given uuid.",
		}, http.StatusNotFound)
	}
	return record, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func truncateUserAgent(userAgent string) string {
	if len(userAgent) > constants.MaxUserAgentLength {
		return userAgent[:constants.MaxUserAgentLength]
	}
	return userAgent
}
