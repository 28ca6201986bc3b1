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

package slogdd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pjscruggs/slogdd"
)

const (
	testAPIKey = "secret-api"
	testAppKey = "secret-app"
)

var testEnv = slogdd.Environment{Hostname: "test-host", Env: "test"}

// capturedRequest is one request observed by eventServer.
type capturedRequest struct {
	Method  string
	Path    string
	Query   map[string][]string
	Header  http.Header
	Payload map[string]any
}

// eventServer is an httptest server that records decoded event payloads.
type eventServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
}

// newEventServer starts a server answering every request with status and body.
func newEventServer(t *testing.T, status int, body string) *eventServer {
	t.Helper()

	es := &eventServer{status: status, body: body}
	es.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Errorf("decode request body %q: %v", raw, err)
		}
		es.mu.Lock()
		es.requests = append(es.requests, capturedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Header:  r.Header.Clone(),
			Payload: payload,
		})
		es.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(es.status)
		_, _ = io.WriteString(w, es.body)
	}))
	t.Cleanup(es.Close)
	return es
}

// Requests returns a snapshot of the captured requests.
func (es *eventServer) Requests() []capturedRequest {
	es.mu.Lock()
	defer es.mu.Unlock()
	return append([]capturedRequest(nil), es.requests...)
}

// Endpoint returns the API base URL for WithEndpoint.
func (es *eventServer) Endpoint() string {
	return es.URL + "/api/"
}

// lockedBuffer is a bytes.Buffer safe for concurrent writers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestTransport builds a Transport pointed at endpoint with an error
// logger writing to the returned buffer.
func newTestTransport(t *testing.T, endpoint string, opts ...slogdd.Option) (*slogdd.Transport, *lockedBuffer) {
	t.Helper()

	errBuf := &lockedBuffer{}
	base := []slogdd.Option{
		slogdd.WithEndpoint(endpoint),
		slogdd.WithEnvironment(testEnv),
		slogdd.WithErrorLogger(slog.New(slog.NewTextHandler(errBuf, nil))),
	}
	tr, err := slogdd.New(slogdd.Credentials{APIKey: testAPIKey, ApplicationKey: testAppKey}, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() returned %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr, errBuf
}

// waitDelivery waits for d with a generous deadline.
func waitDelivery(t *testing.T, d *slogdd.Delivery) (*slogdd.Result, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := d.Wait(ctx)
	if ctx.Err() != nil {
		t.Fatalf("delivery did not complete: %v", ctx.Err())
	}
	return res, err
}
