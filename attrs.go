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
	"log/slog"
	"time"
)

// fieldsFromAttrs flattens attrs into Fields, nesting named groups as maps
// and dropping empty attributes the way slog's built-in handlers do.
func fieldsFromAttrs(attrs []slog.Attr) Fields {
	out := Fields{}
	for _, a := range attrs {
		addAttr(out, a)
	}
	return out
}

// addAttr writes a into dst, descending into groups.
func addAttr(dst map[string]any, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() != slog.KindGroup {
		dst[a.Key] = attrValue(a.Value)
		return
	}

	group := a.Value.Group()
	if len(group) == 0 {
		return
	}
	target := dst
	if a.Key != "" {
		child, ok := dst[a.Key].(map[string]any)
		if !ok {
			child = make(map[string]any, len(group))
			dst[a.Key] = child
		}
		target = child
	}
	for _, ga := range group {
		addAttr(target, ga)
	}
}

// attrValue converts v into a value encoding/json renders sensibly.
func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.Any()
	}
}

// nestUnderGroups wraps attrs in the given group path, outermost first.
func nestUnderGroups(groups []string, attrs []slog.Attr) []slog.Attr {
	for i := len(groups) - 1; i >= 0; i-- {
		if len(attrs) == 0 {
			return nil
		}
		attrs = []slog.Attr{{Key: groups[i], Value: slog.GroupValue(attrs...)}}
	}
	return attrs
}
