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
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// MaxTextLength bounds the event text, counted in characters.
const MaxTextLength = 4000

const textSeparator = " | "

// LogData is the optional structured payload accompanying a log call. It is
// one of Empty, ErrorInfo or Fields.
type LogData interface {
	isLogData()
}

// Empty carries no data; the event text is the message alone.
type Empty struct{}

// ErrorInfo describes a failure. Stack is appended to the message in the
// event text.
type ErrorInfo struct {
	Message string
	Stack   string
}

// Fields is a structured value rendered as JSON in the event text.
type Fields map[string]any

func (Empty) isLogData()     {}
func (ErrorInfo) isLogData() {}
func (Fields) isLogData()    {}

// NewErrorInfo captures err's message and stack. The stack is the one
// recorded by the error when available, otherwise the caller's.
func NewErrorInfo(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}
	msg := err.Error()
	stack := originStack(err)
	if stack == "" {
		stack = callerStack()
	}
	if stack == "" {
		return ErrorInfo{Message: msg, Stack: msg}
	}
	return ErrorInfo{Message: msg, Stack: msg + "\n" + stack}
}

// Classify decides which LogData variant describes v. Values that encode to
// JSON null, such as nil pointers, are Empty.
func Classify(v any) LogData {
	switch val := v.(type) {
	case nil:
		return Empty{}
	case LogData:
		return val
	case error:
		return NewErrorInfo(val)
	case map[string]any:
		return Fields(val)
	case []slog.Attr:
		return fieldsFromAttrs(val)
	}

	raw, err := json.Marshal(v)
	if err == nil {
		if bytes.Equal(raw, []byte("null")) {
			return Empty{}
		}
		var obj map[string]any
		if json.Unmarshal(raw, &obj) == nil && obj != nil {
			return Fields(obj)
		}
	}
	return Fields{"value": v}
}

// composeText builds the event text for message and data, truncated to
// MaxTextLength. A non-nil error reports that Fields could not be encoded and
// were rendered with fmt instead.
func composeText(message string, data LogData) (string, error) {
	var (
		detail string
		err    error
	)
	switch d := data.(type) {
	case ErrorInfo:
		detail = d.Stack
		if detail == "" {
			detail = d.Message
		}
	case Fields:
		if len(d) > 0 {
			detail, err = encodeFields(d)
		}
	}

	text := message
	switch {
	case detail == "":
	case message == "":
		text = detail
	default:
		text = message + textSeparator + detail
	}
	return truncateText(text, MaxTextLength), err
}

// encodeFields renders f as compact JSON without HTML escaping, falling back
// to fmt formatting for values encoding/json rejects.
func encodeFields(f Fields) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(f)); err != nil {
		return fmt.Sprint(map[string]any(f)), fmt.Errorf("slogdd: encode fields: %w", err)
	}
	// Encode appends a newline.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// truncateText shortens s to at most limit characters without splitting a
// multi-byte rune.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
