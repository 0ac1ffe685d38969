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

package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/system/database/provider"
	errors2 "github.com/openconsent/cookie-consent-service/internal/system/errors"
	"github.com/openconsent/cookie-consent-service/internal/system/log"
)

// ConsentRecordStoreInterface defines the persistence contract for consent
// audit records. Records are append-only: created on save, deleted only by the
// archival job, never updated.
type ConsentRecordStoreInterface interface {
	AddConsentRecord(record model.ConsentRecord) error
	GetConsentRecordByUUID(uuid string) (*model.ConsentRecord, error)
	GetConsentRecordsBefore(cutoff time.Time) ([]model.ConsentRecord, error)
	DeleteConsentRecords(ids []int64) error
}

// ConsentRecordStore is the Postgres-backed implementation.
type ConsentRecordStore struct{}

// NewConsentRecordStore returns a new store instance.
func NewConsentRecordStore() ConsentRecordStoreInterface {
	return &ConsentRecordStore{}
}

// AddConsentRecord inserts a new consent audit record as its own transaction.
func (s *ConsentRecordStore) AddConsentRecord(record model.ConsentRecord) error {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for inserting consent record: %s", record.Uuid)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CONSENT_RECORD.Code,
			Message:     errors2.ADD_CONSENT_RECORD.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	consentData, err := json.Marshal(record.ConsentData)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to marshal consent data for record: %s", record.Uuid)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CONSENT_RECORD.Code,
			Message:     errors2.ADD_CONSENT_RECORD.Message,
			Description: errorMsg,
		}, err)
	}

	tx, err := dbClient.BeginTx()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to begin transaction for inserting consent record: %s", record.Uuid)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CONSENT_RECORD.Code,
			Message:     errors2.ADD_CONSENT_RECORD.Message,
			Description: errorMsg,
		}, err)
	}

	query := `INSERT INTO consent_record (consent_data, consent_date, expiration_date, ip, user_agent, uuid, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.Exec(query, consentData, record.ConsentDate, record.ExpirationDate, record.Ip,
		record.UserAgent, record.Uuid, record.Version)
	if err != nil {
		if errRollback := tx.Rollback(); errRollback != nil {
			logger.Debug(fmt.Sprintf("Failed to rollback inserting consent record: %s", record.Uuid),
				log.Error(errRollback))
		}
		errorMsg := fmt.Sprintf("Failed to execute query for inserting consent record: %s", record.Uuid)
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_CONSENT_RECORD.Code,
			Message:     errors2.ADD_CONSENT_RECORD.Message,
			Description: errorMsg,
		}, err)
	}
	logger.Info(fmt.Sprintf("Successfully inserted consent record: %s", record.Uuid))
	return tx.Commit()
}

// GetConsentRecordByUUID retrieves a consent record by its uuid. Returns nil
// when no record matches.
func (s *ConsentRecordStore) GetConsentRecordByUUID(uuid string) (*model.ConsentRecord, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to get db client for fetching consent record: %s", uuid)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_CONSENT_RECORDS.Code,
			Message:     errors2.FETCH_CONSENT_RECORDS.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := `SELECT id, consent_data, consent_date, expiration_date, ip, user_agent, uuid, version
				FROM consent_record WHERE uuid = $1`
	results, err := dbClient.ExecuteQuery(query, uuid)
	if err != nil {
		errorMsg := fmt.Sprintf("Failed to execute query for fetching consent record: %s", uuid)
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_CONSENT_RECORDS.Code,
			Message:     errors2.FETCH_CONSENT_RECORDS.Message,
			Description: errorMsg,
		}, err)
	}

	if len(results) == 0 {
		logger.Debug(fmt.Sprintf("Consent record not found for uuid: %s", uuid))
		return nil, nil
	}
	record, err := rowToRecord(results[0])
	if err != nil {
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_CONSENT_RECORDS.Code,
			Message:     errors2.FETCH_CONSENT_RECORDS.Message,
			Description: fmt.Sprintf("Failed to parse consent record row for uuid: %s", uuid),
		}, err)
	}
	return &record, nil
}

// GetConsentRecordsBefore retrieves all records with a consent date strictly
// before the cutoff, oldest first.
func (s *ConsentRecordStore) GetConsentRecordsBefore(cutoff time.Time) ([]model.ConsentRecord, error) {

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get db client for fetching aged consent records."
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_CONSENT_RECORDS.Code,
			Message:     errors2.FETCH_CONSENT_RECORDS.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	query := `SELECT id, consent_data, consent_date, expiration_date, ip, user_agent, uuid, version
				FROM consent_record WHERE consent_date < $1 ORDER BY consent_date`
	results, err := dbClient.ExecuteQuery(query, cutoff)
	if err != nil {
		errorMsg := "Failed to execute query for fetching aged consent records."
		logger.Debug(errorMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.FETCH_CONSENT_RECORDS.Code,
			Message:     errors2.FETCH_CONSENT_RECORDS.Message,
			Description: errorMsg,
		}, err)
	}

	records := make([]model.ConsentRecord, 0, len(results))
	for _, row := range results {
		record, err := rowToRecord(row)
		if err != nil {
			return nil, errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.FETCH_CONSENT_RECORDS.Code,
				Message:     errors2.FETCH_CONSENT_RECORDS.Message,
				Description: "Failed to parse consent record row.",
			}, err)
		}
		records = append(records, record)
	}
	logger.Debug(fmt.Sprintf("Fetched %d consent records before %s", len(records), cutoff.Format(time.DateOnly)))
	return records, nil
}

// DeleteConsentRecords deletes exactly the given record set in one transaction.
func (s *ConsentRecordStore) DeleteConsentRecords(ids []int64) error {

	if len(ids) == 0 {
		return nil
	}

	dbClient, err := provider.NewDBProvider().GetDBClient()
	logger := log.GetLogger()
	if err != nil {
		errorMsg := "Failed to get db client for deleting consent records."
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DELETE_CONSENT_RECORDS.Code,
			Message:     errors2.DELETE_CONSENT_RECORDS.Message,
			Description: errorMsg,
		}, err)
	}
	defer dbClient.Close()

	tx, err := dbClient.BeginTx()
	if err != nil {
		errorMsg := "Failed to begin transaction for deleting consent records."
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DELETE_CONSENT_RECORDS.Code,
			Message:     errors2.DELETE_CONSENT_RECORDS.Message,
			Description: errorMsg,
		}, err)
	}

	query := `DELETE FROM consent_record WHERE id = ANY($1)`
	_, err = tx.Exec(query, pq.Array(ids))
	if err != nil {
		if errRollback := tx.Rollback(); errRollback != nil {
			logger.Debug("Failed to rollback deleting consent records", log.Error(errRollback))
		}
		errorMsg := fmt.Sprintf("Failed to execute query for deleting %d consent records.", len(ids))
		logger.Debug(errorMsg, log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.DELETE_CONSENT_RECORDS.Code,
			Message:     errors2.DELETE_CONSENT_RECORDS.Message,
			Description: errorMsg,
		}, err)
	}
	logger.Info(fmt.Sprintf("Successfully deleted %d consent records", len(ids)))
	return tx.Commit()
}

// rowToRecord converts a generic result row into a ConsentRecord.
func rowToRecord(row map[string]interface{}) (model.ConsentRecord, error) {

	var record model.ConsentRecord

	id, ok := row["id"].(int64)
	if !ok {
		return record, fmt.Errorf("unexpected type for id column: %T", row["id"])
	}
	record.Id = id

	consentData, err := parseConsentData(row["consent_data"])
	if err != nil {
		return record, err
	}
	record.ConsentData = consentData

	consentDate, ok := row["consent_date"].(time.Time)
	if !ok {
		return record, fmt.Errorf("unexpected type for consent_date column: %T", row["consent_date"])
	}
	record.ConsentDate = consentDate

	expirationDate, ok := row["expiration_date"].(time.Time)
	if !ok {
		return record, fmt.Errorf("unexpected type for expiration_date column: %T", row["expiration_date"])
	}
	record.ExpirationDate = expirationDate

	record.Ip = parseNullableString(row["ip"])
	record.UserAgent = parseNullableString(row["user_agent"])

	uuid, ok := row["uuid"].(string)
	if !ok {
		return record, fmt.Errorf("unexpected type for uuid column: %T", row["uuid"])
	}
	record.Uuid = uuid

	version, ok := row["version"].(int64)
	if !ok {
		return record, fmt.Errorf("unexpected type for version column: %T", row["version"])
	}
	record.Version = int(version)

	return record, nil
}

func parseConsentData(raw interface{}) (model.ConsentDecision, error) {

	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil, fmt.Errorf("unexpected type for consent_data column: %T", raw)
	}

	var decision model.ConsentDecision
	if err := json.Unmarshal(data, &decision); err != nil {
		return nil, err
	}
	return decision, nil
}

func parseNullableString(raw interface{}) *string {

	switch v := raw.(type) {
	case nil:
		return nil
	case []byte:
		s := string(v)
		return &s
	case string:
		return &v
	}
	return nil
}
