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
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResolveOffset resolves a human-readable relative-time expression against now.
// Supported shapes: "+2 years", "6 months", "1 week ago". Years, months, weeks
// and days are calendar-aware; hours and minutes are plain durations.
func ResolveOffset(now time.Time, expr string) (time.Time, error) {

	normalized := strings.ToLower(strings.TrimSpace(expr))
	if normalized == "" {
		return time.Time{}, fmt.Errorf("empty offset expression")
	}

	sign := 1
	if strings.HasSuffix(normalized, " ago") {
		sign = -1
		normalized = strings.TrimSuffix(normalized, " ago")
	}
	normalized = strings.TrimPrefix(normalized, "+")

	fields := strings.Fields(normalized)
	if len(fields) != 2 {
		return time.Time{}, fmt.Errorf("invalid offset expression %q", expr)
	}

	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return time.Time{}, fmt.Errorf("invalid offset amount %q", fields[0])
	}
	count *= sign

	switch strings.TrimSuffix(fields[1], "s") {
	case "year":
		return now.AddDate(count, 0, 0), nil
	case "month":
		return now.AddDate(0, count, 0), nil
	case "week":
		return now.AddDate(0, 0, 7*count), nil
	case "day":
		return now.AddDate(0, 0, count), nil
	case "hour":
		return now.Add(time.Duration(count) * time.Hour), nil
	case "minute":
		return now.Add(time.Duration(count) * time.Minute), nil
	}
	return time.Time{}, fmt.Errorf("unknown offset unit %q", fields[1])
}
