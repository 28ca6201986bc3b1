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
	"fmt"
	"log/slog"
)

// Level extends slog.Level with the additional severities the transport
// understands. It keeps the underlying integer representation so values can be
// passed anywhere an slog.Leveler is accepted.
type Level slog.Level

// Levels below LevelDebug map to "silly", levels strictly between LevelDebug
// and LevelInfo map to "verbose", and levels at or above LevelSevere map to
// "severe".
const (
	LevelSilly   Level = -8
	LevelDebug   Level = Level(slog.LevelDebug)
	LevelVerbose Level = -2
	LevelInfo    Level = Level(slog.LevelInfo)
	LevelWarn    Level = Level(slog.LevelWarn)
	LevelError   Level = Level(slog.LevelError)
	LevelSevere  Level = 12
)

// String returns the severity name for exact matches, or the nearest lower
// name plus the offset (for example "INFO+1").
func (l Level) String() string {
	switch l {
	case LevelSilly:
		return "SILLY"
	case LevelDebug:
		return "DEBUG"
	case LevelVerbose:
		return "VERBOSE"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSevere:
		return "SEVERE"
	}

	var (
		base Level
		name string
	)
	switch {
	case l < LevelSilly:
		return slog.Level(l).String()
	case l < LevelDebug:
		base, name = LevelSilly, "SILLY"
	case l < LevelVerbose:
		base, name = LevelDebug, "DEBUG"
	case l < LevelInfo:
		base, name = LevelVerbose, "VERBOSE"
	case l < LevelWarn:
		base, name = LevelInfo, "INFO"
	case l < LevelError:
		base, name = LevelWarn, "WARN"
	case l < LevelSevere:
		base, name = LevelError, "ERROR"
	default:
		base, name = LevelSevere, "SEVERE"
	}
	return fmt.Sprintf("%s+%d", name, int(l-base))
}

// Level returns the underlying slog.Level, satisfying slog.Leveler.
func (l Level) Level() slog.Level {
	return slog.Level(l)
}

// SeverityForLevel converts an slog level into the transport's severity
// vocabulary.
func SeverityForLevel(level slog.Level) string {
	switch l := Level(level); {
	case l < LevelDebug:
		return SeveritySilly
	case l == LevelDebug:
		return SeverityDebug
	case l < LevelInfo:
		return SeverityVerbose
	case l < LevelWarn:
		return SeverityInfo
	case l < LevelError:
		return SeverityWarn
	case l < LevelSevere:
		return SeverityError
	default:
		return SeveritySevere
	}
}

// LevelForSeverity is the inverse of SeverityForLevel for named severities.
// Unknown names report ok == false.
func LevelForSeverity(name string) (slog.Level, bool) {
	switch name {
	case SeveritySilly:
		return LevelSilly.Level(), true
	case SeverityDebug:
		return LevelDebug.Level(), true
	case SeverityVerbose:
		return LevelVerbose.Level(), true
	case SeverityInfo:
		return LevelInfo.Level(), true
	case SeverityWarn, SeverityWarning:
		return LevelWarn.Level(), true
	case SeverityError:
		return LevelError.Level(), true
	case SeveritySevere:
		return LevelSevere.Level(), true
	default:
		return 0, false
	}
}
