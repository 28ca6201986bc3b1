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
	"errors"
	"runtime"
	"strconv"
	"strings"
)

const maxStackFrames = 64

// stackTracer is implemented by errors that carry their own program
// counters, such as those produced by github.com/pkg/errors.
type stackTracer interface {
	StackTrace() []uintptr
}

// originStack formats the stack recorded by err (or an error it wraps). It
// returns "" when no error in the chain records one.
func originStack(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		return ""
	}
	pcs := st.StackTrace()
	if len(pcs) > maxStackFrames {
		pcs = pcs[:maxStackFrames]
	}
	return formatFrames(pcs)
}

// callerStack formats the current goroutine stack with frames belonging to
// this package, log/slog and the runtime removed.
func callerStack() string {
	pcs := make([]uintptr, maxStackFrames)
	n := runtime.Callers(1, pcs)
	return formatFrames(pcs[:n])
}

// formatFrames renders pcs in the layout used by runtime/debug.Stack, one
// "function\n\tfile:line" pair per frame.
func formatFrames(pcs []uintptr) string {
	if len(pcs) == 0 {
		return ""
	}
	var (
		sb     strings.Builder
		intBuf [20]byte
	)
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !skipFrame(frame.Function) {
			sb.WriteString(frame.Function)
			sb.WriteString("\n\t")
			sb.WriteString(frame.File)
			sb.WriteByte(':')
			sb.Write(strconv.AppendInt(intBuf[:0], int64(frame.Line), 10))
			sb.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// skipFrame reports whether a frame is internal to slogdd, log/slog or the
// runtime.
func skipFrame(funcName string) bool {
	switch {
	case strings.HasPrefix(funcName, "runtime."):
		return true
	case strings.HasPrefix(funcName, "log/slog."):
		return true
	case strings.HasPrefix(funcName, "github.com/pjscruggs/slogdd."),
		strings.HasPrefix(funcName, "github.com/pjscruggs/slogdd/"):
		return true
	}
	return false
}
