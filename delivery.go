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
	"net/http"
)

// ResultEvent is the event name used when relaying API responses.
const ResultEvent = "DatadogResult"

// Result is an events API response relayed to a ResultEmitter.
type Result struct {
	StatusCode int
	Header     http.Header
	// Body is the response decoded as JSON. It is nil when relay is
	// disabled or decoding failed.
	Body any
	// Raw holds the undecoded response body.
	Raw []byte
}

// ResultEmitter receives API responses once Transport.ReceiveResults has
// been called.
type ResultEmitter interface {
	Emit(event string, result *Result)
}

// EmitterFunc adapts a function to ResultEmitter.
type EmitterFunc func(event string, result *Result)

// Emit calls f(event, result).
func (f EmitterFunc) Emit(event string, result *Result) { f(event, result) }

// Delivery tracks one event sent by Transport.Log. It completes when the
// response has been read and the callback has run, when the request fails,
// or immediately when the event was filtered out.
type Delivery struct {
	severity string
	filtered bool
	cancel   context.CancelFunc
	done     chan struct{}

	result *Result
	err    error
}

// newDelivery returns a pending Delivery whose request is aborted by cancel.
func newDelivery(severity string, cancel context.CancelFunc) *Delivery {
	return &Delivery{
		severity: severity,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// filteredDelivery returns an already completed Delivery for a dropped event.
func filteredDelivery(severity string) *Delivery {
	d := &Delivery{severity: severity, filtered: true, done: make(chan struct{})}
	close(d.done)
	return d
}

// failedDelivery returns an already completed Delivery carrying err.
func failedDelivery(severity string, err error) *Delivery {
	d := &Delivery{severity: severity, err: err, done: make(chan struct{})}
	close(d.done)
	return d
}

// finish records the outcome and releases waiters. It must be called once.
func (d *Delivery) finish(result *Result, err error) {
	d.result = result
	d.err = err
	if d.cancel != nil {
		d.cancel()
	}
	close(d.done)
}

// Severity reports the normalized severity of the event.
func (d *Delivery) Severity() string { return d.severity }

// Filtered reports whether the event was dropped by the minimum level. No
// request was sent and the callback was not invoked.
func (d *Delivery) Filtered() bool { return d.filtered }

// Done is closed once the delivery completes.
func (d *Delivery) Done() <-chan struct{} { return d.done }

// Cancel aborts the request if it is still in flight.
func (d *Delivery) Cancel() {
	if d.cancel != nil {
		d.cancel()
	}
}

// Wait blocks until the delivery completes or ctx is done. The returned
// error describes a failed request; it is informational, since failures are
// already reported to the transport's error logger.
func (d *Delivery) Wait(ctx context.Context) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-d.done:
		return d.result, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the response once the delivery has completed, or nil.
func (d *Delivery) Result() *Result {
	select {
	case <-d.done:
		return d.result
	default:
		return nil
	}
}

// Err returns the request error once the delivery has completed, or nil.
func (d *Delivery) Err() error {
	select {
	case <-d.done:
		return d.err
	default:
		return nil
	}
}
