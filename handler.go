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
	"errors"
	"log/slog"
	"strings"
)

// ErrNilTransport is returned by NewHandler when no Transport is supplied.
var ErrNilTransport = errors.New("slogdd: nil transport")

// HandlerOption mutates Handler construction behaviour when supplied to
// NewHandler.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	level     *slog.Level
	levelVar  *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	traceTags *bool
}

// Handler is an slog.Handler that forwards each record to a Transport as one
// Datadog event. Record attributes become the event's structured data.
type Handler struct {
	transport *Transport
	leveler   slog.Leveler
	traceTags bool

	attrs  []slog.Attr
	groups []string
}

// NewHandler wraps t in an slog.Handler.
//
// Example:
//
//	h, err := slogdd.NewHandler(transport, slogdd.WithLevel(slog.LevelInfo))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer h.Close()
//	logger := slog.New(h)
//	logger.Warn("disk almost full", "free_bytes", free)
func NewHandler(t *Transport, opts ...HandlerOption) (*Handler, error) {
	if t == nil {
		return nil, ErrNilTransport
	}
	builder := &handlerOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(builder)
		}
	}

	h := &Handler{
		transport: t,
		traceTags: true,
	}
	switch {
	case builder.levelVar != nil:
		if builder.level != nil {
			builder.levelVar.Set(*builder.level)
		}
		h.leveler = builder.levelVar
	case builder.level != nil:
		h.leveler = *builder.level
	}
	if builder.traceTags != nil {
		h.traceTags = *builder.traceTags
	}
	h.attrs = append(h.attrs, builder.attrs...)
	h.groups = append(h.groups, builder.groups...)
	return h, nil
}

// WithLevel sets the minimum slog level the handler accepts. Records must
// also pass the transport's minimum severity.
func WithLevel(level slog.Level) HandlerOption {
	return func(o *handlerOptions) {
		o.level = &level
	}
}

// WithLevelVar shares levelVar with the handler so the minimum level can be
// adjusted at runtime.
func WithLevelVar(levelVar *slog.LevelVar) HandlerOption {
	return func(o *handlerOptions) {
		if levelVar != nil {
			o.levelVar = levelVar
		}
	}
}

// WithAttrs preloads attributes attached to every record. The slice is
// copied.
func WithAttrs(attrs []slog.Attr) HandlerOption {
	return func(o *handlerOptions) {
		if len(attrs) == 0 {
			return
		}
		dup := make([]slog.Attr, len(attrs))
		copy(dup, attrs)
		o.attrs = append(o.attrs, nestUnderGroups(o.groups, dup)...)
	}
}

// WithGroup nests subsequent attributes under name.
func WithGroup(name string) HandlerOption {
	trimmed := strings.TrimSpace(name)
	return func(o *handlerOptions) {
		if trimmed != "" {
			o.groups = append(o.groups, trimmed)
		}
	}
}

// WithTraceTags toggles adding dd.trace_id and dd.span_id tags when the
// record context carries an OpenTelemetry span. Enabled by default.
func WithTraceTags(enabled bool) HandlerOption {
	return func(o *handlerOptions) {
		o.traceTags = &enabled
	}
}

// Transport returns the transport records are sent to.
func (h *Handler) Transport() *Transport { return h.transport }

// Enabled reports whether a record at level would be sent.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	if h.leveler != nil && level < h.leveler.Level() {
		return false
	}
	return h.transport.Allows(SeverityForLevel(level))
}

// Handle sends r as an event. Delivery happens asynchronously and failures
// are reported to the transport's error logger, so Handle always returns nil.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	recordAttrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		recordAttrs = append(recordAttrs, a)
		return true
	})

	tags := TagsFromContext(ctx)
	if h.traceTags {
		tags = append(tags, TraceTags(ctx)...)
	}

	h.transport.LogEntry(ctx, Entry{
		Severity: SeverityForLevel(r.Level),
		Message:  r.Message,
		Data:     h.recordData(recordAttrs),
		Tags:     tags,
	})
	return nil
}

// recordData classifies a record's attributes. A record whose only
// attribute is an error, with no preloaded attributes or groups, is reported
// as ErrorInfo so its stack reaches the event text.
func (h *Handler) recordData(recordAttrs []slog.Attr) LogData {
	if len(h.attrs) == 0 && len(h.groups) == 0 && len(recordAttrs) == 1 {
		v := recordAttrs[0].Value.Resolve()
		if v.Kind() == slog.KindAny {
			if err, ok := v.Any().(error); ok && err != nil {
				return NewErrorInfo(err)
			}
		}
	}

	all := make([]slog.Attr, 0, len(h.attrs)+len(recordAttrs))
	all = append(all, h.attrs...)
	all = append(all, nestUnderGroups(h.groups, recordAttrs)...)
	fields := fieldsFromAttrs(all)
	if len(fields) == 0 {
		return Empty{}
	}
	return fields
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := h.clone()
	clone.attrs = append(clone.attrs, nestUnderGroups(h.groups, attrs)...)
	return clone
}

// WithGroup returns a handler that nests subsequent attributes under name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

// clone copies h with independent attribute and group slices.
func (h *Handler) clone() *Handler {
	return &Handler{
		transport: h.transport,
		leveler:   h.leveler,
		traceTags: h.traceTags,
		attrs:     append([]slog.Attr(nil), h.attrs...),
		groups:    append([]string(nil), h.groups...),
	}
}

// Flush waits for events already handed to the transport.
func (h *Handler) Flush(ctx context.Context) error {
	return h.transport.Flush(ctx)
}

// Close flushes and closes the underlying transport.
func (h *Handler) Close() error {
	return h.transport.Close()
}

// SillyContext logs at LevelSilly, the lowest severity the transport knows.
func SillyContext(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Log(ctx, LevelSilly.Level(), msg, args...)
}

// VerboseContext logs at LevelVerbose, between debug and info.
func VerboseContext(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Log(ctx, LevelVerbose.Level(), msg, args...)
}

// SevereContext logs at LevelSevere, above error.
func SevereContext(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Log(ctx, LevelSevere.Level(), msg, args...)
}
