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
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envMinimumLevel = "SLOGDD_MIN_LEVEL"
	envEndpoint     = "SLOGDD_ENDPOINT"
	envTimeout      = "SLOGDD_TIMEOUT"
	envTextAsTitle  = "SLOGDD_TEXT_AS_TITLE"
)

// Option configures a Transport during construction via New. Options are
// applied in order and take precedence over SLOGDD_* environment variables.
type Option func(*options)

type options struct {
	minimumLevel  *string
	endpoint      *string
	timeout       *time.Duration
	textAsTitle   *bool
	httpClient    *http.Client
	errorLogger   *slog.Logger
	environment   *Environment
	severityTable SeverityTable
	tracing       *tracingConfig
}

// transportConfig is the resolved configuration after environment variables
// and options have been merged.
type transportConfig struct {
	MinimumLevel string
	Endpoint     string
	Timeout      time.Duration
	TextAsTitle  bool
}

// WithMinimumLevel drops events whose severity orders before level. An
// unrecognized level is ignored and every severity stays allowed. Overrides
// SLOGDD_MIN_LEVEL.
func WithMinimumLevel(level string) Option {
	trimmed := strings.TrimSpace(level)
	return func(o *options) {
		o.minimumLevel = &trimmed
	}
}

// WithEndpoint replaces the API base URL, for example to target another
// Datadog site ("https://api.datadoghq.eu/api/") or a local test server.
// Overrides SLOGDD_ENDPOINT.
func WithEndpoint(endpoint string) Option {
	trimmed := strings.TrimSpace(endpoint)
	return func(o *options) {
		o.endpoint = &trimmed
	}
}

// WithTimeout sets a deadline for each request. Zero, the default, means a
// request may wait indefinitely. Overrides SLOGDD_TIMEOUT.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = &timeout
	}
}

// WithTextAsTitle uses the log message as the event title. Overrides
// SLOGDD_TEXT_AS_TITLE.
func WithTextAsTitle(enabled bool) Option {
	return func(o *options) {
		o.textAsTitle = &enabled
	}
}

// WithHTTPClient sends requests through client instead of a default
// http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithErrorLogger directs delivery failures and response parse errors to
// logger. By default they are written as text to stderr.
//
// Do not pass a logger backed by a Handler that writes to the same
// Transport; failures would feed back into it.
func WithErrorLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.errorLogger = logger
	}
}

// WithEnvironment injects the hostname and deployment environment used for
// event defaults. Empty fields fall back to DetectEnvironment.
func WithEnvironment(env Environment) Option {
	return func(o *options) {
		o.environment = &env
	}
}

// WithSeverityTable replaces the severity remapping table. The table is
// copied.
func WithSeverityTable(table SeverityTable) Option {
	return func(o *options) {
		o.severityTable = table.clone()
	}
}

// defaultErrorLogger writes diagnostics to stderr.
func defaultErrorLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil)).With(slog.String("logger", "slogdd"))
}

// loadConfigFromEnv reads SLOGDD_* overrides, reporting invalid values to
// logger and keeping defaults for them.
func loadConfigFromEnv(logger *slog.Logger) transportConfig {
	cfg := transportConfig{
		Endpoint: DefaultEndpoint,
	}
	cfg.MinimumLevel = strings.TrimSpace(os.Getenv(envMinimumLevel))
	if endpoint := strings.TrimSpace(os.Getenv(envEndpoint)); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	cfg.Timeout = parseDurationEnv(os.Getenv(envTimeout), cfg.Timeout, logger)
	cfg.TextAsTitle = parseBoolEnv(os.Getenv(envTextAsTitle), cfg.TextAsTitle, logger)
	return cfg
}

// applyOptions merges user-supplied options into cfg.
func applyOptions(cfg *transportConfig, o *options) {
	if o.minimumLevel != nil {
		cfg.MinimumLevel = *o.minimumLevel
	}
	if o.endpoint != nil && *o.endpoint != "" {
		cfg.Endpoint = *o.endpoint
	}
	if o.timeout != nil {
		cfg.Timeout = *o.timeout
	}
	if o.textAsTitle != nil {
		cfg.TextAsTitle = *o.textAsTitle
	}
}

// parseBoolEnv interprets truthy environment variable values.
func parseBoolEnv(value string, current bool, logger *slog.Logger) bool {
	if strings.TrimSpace(value) == "" {
		return current
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		logDiagnostic(logger, slog.LevelWarn, "invalid boolean environment variable", slog.String("value", value), slog.Any("error", err))
		return current
	}
	return b
}

// parseDurationEnv parses Go duration strings such as "5s".
func parseDurationEnv(value string, current time.Duration, logger *slog.Logger) time.Duration {
	if strings.TrimSpace(value) == "" {
		return current
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 {
		logDiagnostic(logger, slog.LevelWarn, "invalid duration environment variable", slog.String("value", value))
		return current
	}
	return d
}

// logDiagnostic emits internal diagnostic messages, guarding against nil
// loggers.
func logDiagnostic(logger *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}
