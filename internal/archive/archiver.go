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

package archive

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/consent/store"
	"github.com/openconsent/cookie-consent-service/internal/system/config"
	"github.com/openconsent/cookie-consent-service/internal/system/constants"
	errors2 "github.com/openconsent/cookie-consent-service/internal/system/errors"
	"github.com/openconsent/cookie-consent-service/internal/system/log"
	"github.com/pkg/errors"
)

// Archiver moves aged consent records out of the live store into a static
// export, then deletes them, as one linear pass per run. Records are deleted
// only after the export has been written successfully. Concurrent runs are not
// coordinated; the job is expected to run alone.
type Archiver struct {
	store     store.ConsentRecordStoreInterface
	outputDir string
	now       func() time.Time
}

// Result describes one archival run.
type Result struct {
	Records    []model.ConsentRecord
	ExportPath string
	DryRun     bool
}

// GetArchiver returns an archiver over the Postgres store, writing exports
// under <home>/var/cookie-consent.
func GetArchiver() *Archiver {
	return NewArchiver(
		store.NewConsentRecordStore(),
		filepath.Join(config.GetRuntime().Home, "var", "cookie-consent"),
		time.Now,
	)
}

// NewArchiver returns an archiver over the given store and output directory.
func NewArchiver(recordStore store.ConsentRecordStoreInterface, outputDir string, now func() time.Time) *Archiver {
	return &Archiver{
		store:     recordStore,
		outputDir: outputDir,
		now:       now,
	}
}

// Run executes one archival pass: fetch records older than the cutoff, export
// them in the requested format, then delete exactly the fetched set. An
// unsupported format aborts before any file is written or record deleted. A
// dry run lists the matching records without exporting or deleting.
func (a *Archiver) Run(cutoff time.Time, format string, dryRun bool) (*Result, error) {

	logger := log.GetLogger()

	if !constants.AllowedExportFormats[format] {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.UNSUPPORTED_ARCHIVE_FORMAT.Code,
			Message:     errors2.UNSUPPORTED_ARCHIVE_FORMAT.Message,
			Description: fmt.Sprintf("Format %q is not supported: allowed values are log, csv, html.", format),
		}, http.StatusBadRequest)
	}

	records, err := a.store.GetConsentRecordsBefore(cutoff)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		logger.Info(fmt.Sprintf("No consent records older than %s; nothing to archive",
			cutoff.Format(constants.ExportDateFormat)))
		return &Result{DryRun: dryRun}, nil
	}

	if dryRun {
		logger.Info(fmt.Sprintf("Dry run: %d consent record(s) would be archived", len(records)))
		return &Result{Records: records, DryRun: true}, nil
	}

	exportPath, err := a.writeExport(records, format)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.Id)
	}
	// The export file is kept even when the delete fails; rerunning the job
	// may then export the same records again.
	if err := a.store.DeleteConsentRecords(ids); err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("Archived %d consent record(s) to %s", len(records), exportPath))
	return &Result{Records: records, ExportPath: exportPath}, nil
}

// writeExport writes the export file and returns its path. The file name spans
// the oldest and newest consent dates among the records plus the run start time.
func (a *Archiver) writeExport(records []model.ConsentRecord, format string) (string, error) {

	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.WRITE_ARCHIVE_EXPORT.Code,
			Message:     errors2.WRITE_ARCHIVE_EXPORT.Message,
			Description: "Failed to create the export directory.",
		}, errors.Wrap(err, "creating export directory"))
	}

	oldest := records[0].ConsentDate
	newest := records[0].ConsentDate
	for _, record := range records[1:] {
		if record.ConsentDate.Before(oldest) {
			oldest = record.ConsentDate
		}
		if record.ConsentDate.After(newest) {
			newest = record.ConsentDate
		}
	}

	fileName := fmt.Sprintf("%s-%s_exported_%s.%s",
		oldest.Format(constants.ExportDateFormat),
		newest.Format(constants.ExportDateFormat),
		a.now().Format(constants.ExportRunFormat),
		format)
	exportPath := filepath.Join(a.outputDir, fileName)

	file, err := os.Create(exportPath)
	if err != nil {
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.WRITE_ARCHIVE_EXPORT.Code,
			Message:     errors2.WRITE_ARCHIVE_EXPORT.Message,
			Description: fmt.Sprintf("Failed to create export file %s.", exportPath),
		}, errors.Wrap(err, "creating export file"))
	}

	writeErr := writeRecords(file, records, format)
	if closeErr := file.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		return "", errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.WRITE_ARCHIVE_EXPORT.Code,
			Message:     errors2.WRITE_ARCHIVE_EXPORT.Message,
			Description: fmt.Sprintf("Failed to write export file %s.", exportPath),
		}, errors.Wrap(writeErr, "writing export file"))
	}
	return exportPath, nil
}

func writeRecords(w io.Writer, records []model.ConsentRecord, format string) error {
	switch format {
	case constants.ExportFormatLog:
		return writeLog(w, records)
	case constants.ExportFormatCSV:
		return writeCSV(w, records)
	case constants.ExportFormatHTML:
		return writeHTML(w, records)
	}
	return fmt.Errorf("unsupported export format %q", format)
}
