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

// Package slogdd forwards structured log events to the Datadog events API.
// Every accepted log call becomes one HTTP POST to
// https://api.datadoghq.com/api/v1/events, issued on its own goroutine so
// logging never blocks on the network.
//
// The package has two layers:
//   - [Transport] shapes and sends events. Its [Transport.Log] method takes a
//     severity name, a message, optional [LogData] and a completion callback.
//   - [Handler] adapts a Transport to [log/slog], mapping slog levels onto the
//     transport's severities and record attributes onto event data.
//
// # Quick Start
//
//	transport, err := slogdd.New(slogdd.Credentials{
//	    APIKey:         os.Getenv("DD_API_KEY"),
//	    ApplicationKey: os.Getenv("DD_APP_KEY"),
//	})
//	if err != nil {
//	    log.Fatalf("create slogdd transport: %v", err)
//	}
//	handler, err := slogdd.NewHandler(transport)
//	if err != nil {
//	    log.Fatalf("create slogdd handler: %v", err)
//	}
//	defer handler.Close() // waits for in-flight events
//
//	logger := slog.New(handler)
//	logger.Warn("queue backlog growing", "depth", 1200)
//
// # Severities
//
// Caller severities silly, debug and verbose are reported to Datadog as
// "info", and warn as "warning". [WithMinimumLevel] drops everything ordered
// before the given name in silly < debug < verbose < info < warning < error <
// severe < none. Filtered calls send nothing and do not run their callback;
// the returned [Delivery] reports [Delivery.Filtered] so callers waiting on
// completion can tell.
//
// # Event text
//
// The event text is the message, followed by " | " and either the stack of an
// [ErrorInfo] or the JSON encoding of non-empty [Fields]. It is truncated to
// [MaxTextLength] characters.
//
// # Failures
//
// Nothing is ever returned or panicked to the logging caller. Request
// failures and undecodable responses are written to the error logger
// configured with [WithErrorLogger] (stderr by default). There is no retry.
//
// # Responses
//
// [Transport.ReceiveResults] relays each decoded API response to a
// [ResultEmitter] as a [ResultEvent] event until [Transport.StopResults] is
// called.
//
// # Configuration
//
// Functional options override the SLOGDD_MIN_LEVEL, SLOGDD_ENDPOINT,
// SLOGDD_TIMEOUT and SLOGDD_TEXT_AS_TITLE environment variables. The default
// "env:" tag reads SLOGDD_ENV, then NODE_ENV, and falls back to "local".
package slogdd
