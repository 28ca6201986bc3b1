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
	"encoding/binary"
	"strconv"

	"go.opentelemetry.io/otel/trace"
)

// Tag prefixes Datadog uses to correlate events with APM traces.
const (
	TraceIDTagPrefix = "dd.trace_id:"
	SpanIDTagPrefix  = "dd.span_id:"
)

// TraceTags returns Datadog correlation tags for the OpenTelemetry span in
// ctx, or nil when ctx carries no valid span. Datadog identifies traces by the
// low 64 bits of the 128-bit trace ID, rendered in decimal.
func TraceTags(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	traceID := sc.TraceID()
	spanID := sc.SpanID()
	return []string{
		TraceIDTagPrefix + strconv.FormatUint(binary.BigEndian.Uint64(traceID[8:]), 10),
		SpanIDTagPrefix + strconv.FormatUint(binary.BigEndian.Uint64(spanID[:]), 10),
	}
}
