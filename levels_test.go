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

package slogdd_test

import (
	"log/slog"
	"testing"

	"github.com/pjscruggs/slogdd"
)

// TestSeverityForLevel covers the slog level ranges.
func TestSeverityForLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level slog.Level
		want  string
	}{
		{level: slog.Level(-12), want: "silly"},
		{level: slogdd.LevelSilly.Level(), want: "silly"},
		{level: slog.LevelDebug - 1, want: "silly"},
		{level: slog.LevelDebug, want: "debug"},
		{level: slog.LevelDebug + 1, want: "verbose"},
		{level: slogdd.LevelVerbose.Level(), want: "verbose"},
		{level: slog.LevelInfo, want: "info"},
		{level: slog.LevelInfo + 2, want: "info"},
		{level: slog.LevelWarn, want: "warn"},
		{level: slog.LevelError, want: "error"},
		{level: slog.LevelError + 3, want: "error"},
		{level: slogdd.LevelSevere.Level(), want: "severe"},
		{level: slog.Level(40), want: "severe"},
	}
	for _, tc := range tests {
		if got := slogdd.SeverityForLevel(tc.level); got != tc.want {
			t.Fatalf("SeverityForLevel(%d) = %q, want %q", tc.level, got, tc.want)
		}
	}
}

// TestLevelForSeverityRoundTrip maps named severities back to their levels.
func TestLevelForSeverityRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"silly", "debug", "verbose", "info", "warn", "error", "severe"} {
		level, ok := slogdd.LevelForSeverity(name)
		if !ok {
			t.Fatalf("LevelForSeverity(%q) ok = false", name)
		}
		if got := slogdd.SeverityForLevel(level); got != name {
			t.Fatalf("SeverityForLevel(LevelForSeverity(%q)) = %q", name, got)
		}
	}
	if level, ok := slogdd.LevelForSeverity("warning"); !ok || level != slog.LevelWarn {
		t.Fatalf("LevelForSeverity(warning) = %v, %v; want WARN, true", level, ok)
	}
	if _, ok := slogdd.LevelForSeverity("none"); ok {
		t.Fatalf("LevelForSeverity(none) ok = true, want false")
	}
}

// TestLevelString names exact levels and offsets between them.
func TestLevelString(t *testing.T) {
	t.Parallel()

	tests := map[slogdd.Level]string{
		slogdd.LevelSilly:       "SILLY",
		slogdd.LevelDebug:       "DEBUG",
		slogdd.LevelVerbose:     "VERBOSE",
		slogdd.LevelInfo:        "INFO",
		slogdd.LevelWarn:        "WARN",
		slogdd.LevelError:       "ERROR",
		slogdd.LevelSevere:      "SEVERE",
		slogdd.LevelInfo + 1:    "INFO+1",
		slogdd.LevelSilly + 2:   "SILLY+2",
		slogdd.LevelSevere + 4:  "SEVERE+4",
		slogdd.LevelVerbose + 1: "VERBOSE+1",
	}
	for level, want := range tests {
		if got := level.String(); got != want {
			t.Fatalf("Level(%d).String() = %q, want %q", int(level), got, want)
		}
	}
}
