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
	"net/url"
	"strings"
	"testing"
)

// TestNewRequestOptions checks protocol, port and path derivation.
func TestNewRequestOptions(t *testing.T) {
	t.Parallel()

	creds := Credentials{APIKey: "k1", ApplicationKey: "k2"}
	tests := []struct {
		endpoint string
		protocol string
		host     string
		port     int
		path     string
		url      string
	}{
		{
			endpoint: DefaultEndpoint,
			protocol: "https",
			host:     "api.datadoghq.com",
			port:     443,
			path:     "/api/v1/events?api_key=k1&application_key=k2",
			url:      "https://api.datadoghq.com/api/v1/events?api_key=k1&application_key=k2",
		},
		{
			endpoint: "http://localhost:8126/api/",
			protocol: "http",
			host:     "localhost",
			port:     8126,
			path:     "/api/v1/events?api_key=k1&application_key=k2",
			url:      "http://localhost:8126/api/v1/events?api_key=k1&application_key=k2",
		},
		{
			endpoint: "http://proxy.internal:443/api",
			protocol: "https",
			host:     "proxy.internal",
			port:     443,
			path:     "/api/v1/events?api_key=k1&application_key=k2",
			url:      "https://proxy.internal/api/v1/events?api_key=k1&application_key=k2",
		},
		{
			endpoint: "http://example.com",
			protocol: "http",
			host:     "example.com",
			port:     80,
			path:     "/v1/events?api_key=k1&application_key=k2",
			url:      "http://example.com/v1/events?api_key=k1&application_key=k2",
		},
		{
			endpoint: "https://[::1]:9443/dd/api/",
			protocol: "https",
			host:     "::1",
			port:     9443,
			path:     "/dd/api/v1/events?api_key=k1&application_key=k2",
			url:      "https://[::1]:9443/dd/api/v1/events?api_key=k1&application_key=k2",
		},
	}
	for _, tc := range tests {
		got, err := newRequestOptions(tc.endpoint, creds)
		if err != nil {
			t.Fatalf("newRequestOptions(%q) returned %v", tc.endpoint, err)
		}
		if got.Protocol != tc.protocol || got.Host != tc.host || got.Port != tc.port {
			t.Fatalf("newRequestOptions(%q) = %s/%s/%d, want %s/%s/%d",
				tc.endpoint, got.Protocol, got.Host, got.Port, tc.protocol, tc.host, tc.port)
		}
		if got.Path != tc.path {
			t.Fatalf("Path = %q, want %q", got.Path, tc.path)
		}
		if got.Method != "POST" {
			t.Fatalf("Method = %q, want POST", got.Method)
		}
		if got.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("Content-Type = %q", got.Header.Get("Content-Type"))
		}
		if u := got.URL(); u != tc.url {
			t.Fatalf("URL() = %q, want %q", u, tc.url)
		}
	}
}

// TestNewRequestOptionsEscapesCredentials query-escapes key material.
func TestNewRequestOptionsEscapesCredentials(t *testing.T) {
	t.Parallel()

	got, err := newRequestOptions(DefaultEndpoint, Credentials{APIKey: "a&b", ApplicationKey: "c d"})
	if err != nil {
		t.Fatalf("newRequestOptions returned %v", err)
	}
	if !strings.HasSuffix(got.Path, "?api_key=a%26b&application_key=c+d") {
		t.Fatalf("Path = %q, want escaped credentials", got.Path)
	}
}

// TestNewRequestOptionsRejects reports ErrInvalidEndpoint.
func TestNewRequestOptionsRejects(t *testing.T) {
	t.Parallel()

	for _, endpoint := range []string{"", "::", "api.datadoghq.com", "ws://example.com/api", "http://example.com:port/"} {
		if _, err := newRequestOptions(endpoint, Credentials{}); !errors.Is(err, ErrInvalidEndpoint) {
			t.Fatalf("newRequestOptions(%q) error = %v, want ErrInvalidEndpoint", endpoint, err)
		}
	}
}

// TestRequestOptionsCopy keeps callers from mutating transport headers.
func TestRequestOptionsCopy(t *testing.T) {
	t.Parallel()

	tr, err := New(Credentials{APIKey: "k"}, WithEnvironment(Environment{Hostname: "h", Env: "e"}))
	if err != nil {
		t.Fatalf("New returned %v", err)
	}
	opts := tr.RequestOptions()
	opts.Header.Set("Content-Type", "text/plain")
	if got := tr.RequestOptions().Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q after mutating copy", got)
	}
	if tr.Name() != "Datadog" {
		t.Fatalf("Name() = %q, want Datadog", tr.Name())
	}
}

// TestRedactURLError drops the query string from logged URLs.
func TestRedactURLError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := &url.Error{Op: "Post", URL: "https://api.example.com/api/v1/events?api_key=secret&application_key=other", Err: inner}
	redacted := redactURLError(err)
	if strings.Contains(redacted.Error(), "secret") || strings.Contains(redacted.Error(), "other") {
		t.Fatalf("redacted error %q still contains credentials", redacted)
	}
	if !errors.Is(redacted, inner) {
		t.Fatalf("redacted error no longer wraps the cause")
	}
	if !strings.Contains(err.Error(), "secret") {
		t.Fatalf("original error was modified")
	}

	plain := errors.New("plain")
	if redactURLError(plain) != plain {
		t.Fatalf("non-URL error was replaced")
	}
}
