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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
)

const (
	// DefaultEndpoint is the Datadog API base URL.
	DefaultEndpoint = "https://api.datadoghq.com/api/"
	// APIVersion is the events API version appended to the endpoint path.
	APIVersion = 1

	transportName = "Datadog"
)

// ErrInvalidEndpoint indicates an endpoint URL New cannot derive request
// options from.
var ErrInvalidEndpoint = errors.New("slogdd: invalid endpoint")

// Credentials authenticate requests to the events API.
type Credentials struct {
	APIKey         string
	ApplicationKey string
}

// RequestOptions describes the single request shape used for every event.
// It is derived once by New.
type RequestOptions struct {
	Protocol string
	Host     string
	Port     int
	Path     string
	Method   string
	Header   http.Header
}

// URL returns the absolute request URL, omitting the port when it is the
// protocol default.
func (o RequestOptions) URL() string {
	host := o.Host
	if !(o.Protocol == "https" && o.Port == 443) && !(o.Protocol == "http" && o.Port == 80) {
		host = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return o.Protocol + "://" + host + o.Path
}

// newRequestOptions derives RequestOptions from endpoint and creds.
func newRequestOptions(endpoint string, creds Credentials) (RequestOptions, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return RequestOptions{}, fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, endpoint, err)
	}
	if u.Hostname() == "" {
		return RequestOptions{}, fmt.Errorf("%w: %q has no host", ErrInvalidEndpoint, endpoint)
	}

	scheme := strings.ToLower(u.Scheme)
	var port int
	switch {
	case u.Port() != "":
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return RequestOptions{}, fmt.Errorf("%w: %q: bad port", ErrInvalidEndpoint, endpoint)
		}
	case scheme == "https":
		port = 443
	case scheme == "http":
		port = 80
	default:
		return RequestOptions{}, fmt.Errorf("%w: %q: unsupported scheme", ErrInvalidEndpoint, endpoint)
	}

	protocol := "http"
	if port == 443 || scheme == "https" {
		protocol = "https"
	}

	query := url.Values{}
	query.Set("api_key", creds.APIKey)
	query.Set("application_key", creds.ApplicationKey)

	path := fmt.Sprintf("/v%d/events?%s", APIVersion, query.Encode())
	if base := strings.Trim(u.Path, "/"); base != "" {
		path = "/" + base + path
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("User-Agent", UserAgent)

	return RequestOptions{
		Protocol: protocol,
		Host:     u.Hostname(),
		Port:     port,
		Path:     path,
		Method:   http.MethodPost,
		Header:   header,
	}, nil
}

// Entry is a single log call. Tags are appended to the template tags for
// this event only.
type Entry struct {
	Severity string
	Message  string
	Data     LogData
	Tags     []string
	// Callback runs after a response has been received, whether or not it
	// could be relayed. It does not run for filtered events or failed
	// requests.
	Callback func()
}

// Transport forwards log events to the Datadog events API, one request per
// accepted event. It is safe for concurrent use.
type Transport struct {
	requestOptions RequestOptions
	requestURL     string
	client         *http.Client
	timeout        time.Duration
	severities     SeverityTable
	allowed        []string
	env            Environment
	errorLogger    *slog.Logger

	attachResults atomic.Bool
	textAsTitle   atomic.Bool

	mu       sync.RWMutex
	template EventOptions
	emitter  ResultEmitter

	pendingMu sync.Mutex
	pending   map[*Delivery]struct{}

	closeOnce sync.Once
}

// New builds a Transport for creds. Configuration is read from SLOGDD_*
// environment variables and then from opts.
//
// Example:
//
//	t, err := slogdd.New(slogdd.Credentials{
//		APIKey:         os.Getenv("DD_API_KEY"),
//		ApplicationKey: os.Getenv("DD_APP_KEY"),
//	}, slogdd.WithMinimumLevel("info"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer t.Close()
func New(creds Credentials, opts ...Option) (*Transport, error) {
	builder := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(builder)
		}
	}

	errorLogger := builder.errorLogger
	if errorLogger == nil {
		errorLogger = defaultErrorLogger()
	}

	cfg := loadConfigFromEnv(errorLogger)
	applyOptions(&cfg, builder)

	reqOpts, err := newRequestOptions(cfg.Endpoint, creds)
	if err != nil {
		return nil, err
	}

	client := builder.httpClient
	if client == nil {
		client = &http.Client{}
	}
	if builder.tracing != nil {
		client = instrumentClient(client, builder.tracing)
	}

	severities := builder.severityTable
	if severities == nil {
		severities = DefaultSeverityTable()
	}

	var env Environment
	if builder.environment != nil {
		env = *builder.environment
	}
	env = env.withDefaults()

	t := &Transport{
		requestOptions: reqOpts,
		requestURL:     reqOpts.URL(),
		client:         client,
		timeout:        cfg.Timeout,
		severities:     severities,
		allowed:        AllowList(cfg.MinimumLevel),
		env:            env,
		errorLogger:    errorLogger,
		template:       DefaultEventOptions(env),
		pending:        make(map[*Delivery]struct{}),
	}
	t.textAsTitle.Store(cfg.TextAsTitle)
	return t, nil
}

// Name identifies the transport.
func (t *Transport) Name() string { return transportName }

// RequestOptions returns a copy of the request shape used for every event.
func (t *Transport) RequestOptions() RequestOptions {
	out := t.requestOptions
	out.Header = t.requestOptions.Header.Clone()
	return out
}

// AllowedSeverities returns the severities that pass the minimum level.
func (t *Transport) AllowedSeverities() []string {
	return append([]string(nil), t.allowed...)
}

// Normalize maps severity through the transport's severity table.
func (t *Transport) Normalize(severity string) string {
	return t.severities.Normalize(severity)
}

// Allows reports whether an event logged at severity would be sent.
func (t *Transport) Allows(severity string) bool {
	return lo.Contains(t.allowed, t.Normalize(severity))
}

// ReceiveResults enables relaying API responses to emitter as ResultEvent
// events. A nil emitter keeps the previously registered one.
func (t *Transport) ReceiveResults(emitter ResultEmitter) {
	if emitter != nil {
		t.mu.Lock()
		t.emitter = emitter
		t.mu.Unlock()
	}
	t.attachResults.Store(true)
}

// StopResults disables response relay.
func (t *Transport) StopResults() {
	t.attachResults.Store(false)
}

// SetTextAsTitle toggles using the log message as the event title.
func (t *Transport) SetTextAsTitle(enabled bool) {
	t.textAsTitle.Store(enabled)
}

// ResetOptions discards template customizations and restores the defaults.
func (t *Transport) ResetOptions() {
	t.mu.Lock()
	t.template = DefaultEventOptions(t.env)
	t.mu.Unlock()
}

// Options returns a copy of the event template.
func (t *Transport) Options() EventOptions {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.template.Clone()
}

// SetOptions replaces the event template with a copy of opts.
func (t *Transport) SetOptions(opts EventOptions) {
	clone := opts.Clone()
	t.mu.Lock()
	t.template = clone
	t.mu.Unlock()
}

// UpdateOptions applies fn to the event template under the template lock.
func (t *Transport) UpdateOptions(fn func(*EventOptions)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	next := t.template.Clone()
	fn(&next)
	t.template = next
}

// Log sends one event unless severity is filtered out. It never blocks on
// the network and never fails; the returned Delivery can be used to observe
// or cancel the request. ctx values (such as trace context) are carried to
// the request but its cancellation is not.
func (t *Transport) Log(ctx context.Context, severity, message string, data LogData, callback func()) *Delivery {
	return t.LogEntry(ctx, Entry{
		Severity: severity,
		Message:  message,
		Data:     data,
		Callback: callback,
	})
}

// LogEntry is Log with per-event tags.
func (t *Transport) LogEntry(ctx context.Context, e Entry) *Delivery {
	if ctx == nil {
		ctx = context.Background()
	}

	severity := t.Normalize(e.Severity)
	if !lo.Contains(t.allowed, severity) {
		return filteredDelivery(severity)
	}

	payload := t.buildPayload(severity, e)
	body, err := json.Marshal(payload)
	if err != nil {
		t.errorLogger.Error("slogdd: encode event", slog.Any("error", err))
		return failedDelivery(severity, err)
	}

	reqCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc
	if t.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(reqCtx, t.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(reqCtx)
	}

	d := newDelivery(severity, cancel)
	t.track(d)
	go t.deliver(reqCtx, d, body, e.Callback)
	return d
}

// buildPayload assembles the per-call payload from the template.
func (t *Transport) buildPayload(severity string, e Entry) EventPayload {
	t.mu.RLock()
	opts := t.template.Clone()
	t.mu.RUnlock()

	opts.AlertType = severity
	if t.textAsTitle.Load() {
		opts.Title = e.Message
	}
	if len(e.Tags) > 0 {
		opts.Tags = append(opts.Tags, e.Tags...)
	}

	text, err := composeText(e.Message, e.Data)
	if err != nil {
		t.errorLogger.Warn("slogdd: event data is not JSON encodable", slog.Any("error", err))
	}
	return EventPayload{EventOptions: opts, Text: text}
}

// deliver performs the request for d and completes it.
func (t *Transport) deliver(ctx context.Context, d *Delivery, body []byte, callback func()) {
	defer t.untrack(d)

	req, err := http.NewRequestWithContext(ctx, t.requestOptions.Method, t.requestURL, bytes.NewReader(body))
	if err != nil {
		t.errorLogger.Error("slogdd: build events request", slog.Any("error", err))
		d.finish(nil, err)
		return
	}
	req.Header = t.requestOptions.Header.Clone()

	resp, err := t.client.Do(req)
	if err != nil {
		t.errorLogger.Error("slogdd: events request failed", slog.Any("error", redactURLError(err)))
		d.finish(nil, err)
		return
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.errorLogger.Error("slogdd: read events response", slog.Any("error", err))
		d.finish(nil, err)
		return
	}

	result := &Result{StatusCode: resp.StatusCode, Header: resp.Header, Raw: raw}
	if t.attachResults.Load() {
		t.relay(result)
	}
	t.runCallback(callback)
	d.finish(result, nil)
}

// relay decodes result and hands it to the registered emitter. Failures are
// logged, never propagated.
func (t *Transport) relay(result *Result) {
	defer func() {
		if r := recover(); r != nil {
			t.errorLogger.Error("slogdd: failed to emit "+ResultEvent+" event", slog.Any("panic", r))
		}
	}()

	var body any
	if err := json.Unmarshal(result.Raw, &body); err != nil {
		t.errorLogger.Error("slogdd: failed to emit "+ResultEvent+" event", slog.Any("error", err))
		return
	}
	result.Body = body

	t.mu.RLock()
	emitter := t.emitter
	t.mu.RUnlock()
	if emitter == nil {
		t.errorLogger.Error("slogdd: failed to emit " + ResultEvent + " event: no emitter registered")
		return
	}
	emitter.Emit(ResultEvent, result)
}

// runCallback invokes callback, containing any panic it raises.
func (t *Transport) runCallback(callback func()) {
	if callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.errorLogger.Error("slogdd: log callback panicked", slog.Any("panic", r))
		}
	}()
	callback()
}

// track registers d as in flight.
func (t *Transport) track(d *Delivery) {
	t.pendingMu.Lock()
	t.pending[d] = struct{}{}
	t.pendingMu.Unlock()
}

// untrack removes d from the in-flight set.
func (t *Transport) untrack(d *Delivery) {
	t.pendingMu.Lock()
	delete(t.pending, d)
	t.pendingMu.Unlock()
}

// Flush waits until every delivery started before the call has completed or
// ctx is done.
func (t *Transport) Flush(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	t.pendingMu.Lock()
	waiting := make([]*Delivery, 0, len(t.pending))
	for d := range t.pending {
		waiting = append(waiting, d)
	}
	t.pendingMu.Unlock()

	for _, d := range waiting {
		select {
		case <-d.Done():
		case <-ctx.Done():
			return fmt.Errorf("slogdd: flush: %w", ctx.Err())
		}
	}
	return nil
}

// Close waits for in-flight deliveries and releases idle connections. It is
// safe to call multiple times.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.Flush(context.Background())
		t.client.CloseIdleConnections()
	})
	return err
}

// redactURLError strips the credential query string from *url.Error values
// before they are logged.
func redactURLError(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	redacted := *uerr
	if u, perr := url.Parse(uerr.URL); perr == nil {
		u.RawQuery = ""
		redacted.URL = u.String()
	}
	return &redacted
}
