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
	"context"
)

type contextKey int

const (
	tagsContextKey contextKey = iota
)

// ContextWithTags returns a child context carrying tags that Handler adds to
// every event logged with it, for example per-request identifiers. Tags
// accumulate across nested calls.
func ContextWithTags(ctx context.Context, tags ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(tags) == 0 {
		return ctx
	}
	existing := TagsFromContext(ctx)
	merged := make([]string, 0, len(existing)+len(tags))
	merged = append(merged, existing...)
	merged = append(merged, tags...)
	return context.WithValue(ctx, tagsContextKey, merged)
}

// TagsFromContext returns a copy of the tags stored by ContextWithTags.
func TagsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	tags, _ := ctx.Value(tagsContextKey).([]string)
	if len(tags) == 0 {
		return nil
	}
	return append([]string(nil), tags...)
}
