// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package slogdd

import (
	"strings"

	"github.com/samber/lo"
)

// Severity names understood by the transport. The first group is the
// extended vocabulary accepted from callers; SeverityInfo, SeverityWarning,
// SeverityError and SeveritySuccess are the alert types the Datadog events
// API recognizes.
const (
	SeveritySilly   = "silly"
	SeverityDebug   = "debug"
	SeverityVerbose = "verbose"
	SeverityInfo    = "info"
	SeverityWarn    = "warn"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeveritySevere  = "severe"
	SeverityNone    = "none"
	SeveritySuccess = "success"
)

// severityOrder is the fixed ordering used for minimum level cutoffs.
var severityOrder = []string{
	SeveritySilly,
	SeverityDebug,
	SeverityVerbose,
	SeverityInfo,
	SeverityWarning,
	SeverityError,
	SeveritySevere,
	SeverityNone,
}

// SeverityTable remaps caller severities onto Datadog alert types before
// filtering. Severities without an entry pass through unchanged.
type SeverityTable map[string]string

// DefaultSeverityTable returns a fresh copy of the built-in remapping.
func DefaultSeverityTable() SeverityTable {
	return SeverityTable{
		SeveritySilly:   SeverityInfo,
		SeverityDebug:   SeverityInfo,
		SeverityVerbose: SeverityInfo,
		SeverityWarn:    SeverityWarning,
	}
}

// Normalize returns the mapped value for severity, or severity itself when
// the table has no entry for it.
func (t SeverityTable) Normalize(severity string) string {
	if mapped, ok := t[severity]; ok {
		return mapped
	}
	return severity
}

// clone copies t so callers cannot mutate a table held by a Transport.
func (t SeverityTable) clone() SeverityTable {
	if t == nil {
		return nil
	}
	out := make(SeverityTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// AllowList returns the severities accepted for the given minimum. An empty
// or unrecognized minimum returns the full ordering.
func AllowList(minimum string) []string {
	full := append([]string(nil), severityOrder...)
	minimum = strings.TrimSpace(minimum)
	if minimum == "" {
		return full
	}
	idx := lo.IndexOf(full, minimum)
	if idx < 0 {
		return full
	}
	return full[idx:]
}

// KnownSeverity reports whether name appears in the fixed severity ordering.
func KnownSeverity(name string) bool {
	return lo.Contains(severityOrder, name)
}
