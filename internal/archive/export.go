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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	model "github.com/openconsent/cookie-consent-service/internal/consent/model"
	"github.com/openconsent/cookie-consent-service/internal/system/constants"
)

// exportFields is the explicit, ordered field schema shared by every export
// writer. All three formats emit exactly these columns in this order.
var exportFields = []string{
	"id",
	"consent_data",
	"consent_date",
	"expiration_date",
	"ip",
	"user_agent",
	"uuid",
	"version",
}

// recordValues renders one record into the shared column order. Timestamps use
// the export format, mapping fields their JSON text, absent values the empty
// string.
func recordValues(record model.ConsentRecord) []string {

	consentData, err := json.Marshal(record.ConsentData)
	if err != nil {
		consentData = []byte(fmt.Sprintf("%v", record.ConsentData))
	}

	return []string{
		fmt.Sprintf("%d", record.Id),
		string(consentData),
		record.ConsentDate.Format(constants.ExportTimestampFormat),
		record.ExpirationDate.Format(constants.ExportTimestampFormat),
		stringOrEmpty(record.Ip),
		stringOrEmpty(record.UserAgent),
		record.Uuid,
		fmt.Sprintf("%d", record.Version),
	}
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// Display lists records field by field, in the shared column order, for the
// dry-run output of the archival command.
func Display(w io.Writer, records []model.ConsentRecord) {
	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(w, "---")
		}
		values := recordValues(record)
		for j, field := range exportFields {
			fmt.Fprintf(w, "%s: %s\n", field, values[j])
		}
	}
}

// writeLog writes the pipe-delimited format: one header line, one line per record.
func writeLog(w io.Writer, records []model.ConsentRecord) error {

	if _, err := fmt.Fprintln(w, strings.Join(exportFields, "|")); err != nil {
		return err
	}
	for _, record := range records {
		if _, err := fmt.Fprintln(w, strings.Join(recordValues(record), "|")); err != nil {
			return err
		}
	}
	return nil
}

// writeCSV writes comma-delimited output with a header row.
func writeCSV(w io.Writer, records []model.ConsentRecord) error {

	writer := csv.NewWriter(w)
	if err := writer.Write(exportFields); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(recordValues(record)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeHTML writes a single table with a header row and one row per record.
func writeHTML(w io.Writer, records []model.ConsentRecord) error {

	if _, err := fmt.Fprintln(w, "<table>"); err != nil {
		return err
	}
	var header strings.Builder
	header.WriteString("<tr>")
	for _, field := range exportFields {
		header.WriteString("<th>" + html.EscapeString(field) + "</th>")
	}
	header.WriteString("</tr>")
	if _, err := fmt.Fprintln(w, header.String()); err != nil {
		return err
	}

	for _, record := range records {
		var row strings.Builder
		row.WriteString("<tr>")
		for _, value := range recordValues(record) {
			row.WriteString("<td>" + html.EscapeString(value) + "</td>")
		}
		row.WriteString("</tr>")
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "</table>")
	return err
}
