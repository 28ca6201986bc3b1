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

// Priority values accepted by the events API.
const (
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// DefaultTitle is the event title used unless the template or text-as-title
// mode overrides it.
const DefaultTitle = "LOG"

// EventOptions is the template of event fields applied to every payload.
// Pointer fields serialize as JSON null when unset.
type EventOptions struct {
	Title          string   `json:"title"`
	Priority       string   `json:"priority"`
	DateHappened   *int64   `json:"date_happened"`
	Host           string   `json:"host"`
	Tags           []string `json:"tags"`
	AlertType      string   `json:"alert_type"`
	AggregationKey *string  `json:"aggregation_key"`
	SourceTypeName *string  `json:"source_type_name"`
}

// DefaultEventOptions builds the default template for env. Each call returns
// an independent value with its own tags slice.
func DefaultEventOptions(env Environment) EventOptions {
	return EventOptions{
		Title:     DefaultTitle,
		Priority:  PriorityNormal,
		Host:      env.Hostname,
		Tags:      []string{"env:" + env.Env},
		AlertType: SeverityWarning,
	}
}

// Clone returns a deep copy of o.
func (o EventOptions) Clone() EventOptions {
	out := o
	if o.Tags != nil {
		out.Tags = append(make([]string, 0, len(o.Tags)), o.Tags...)
	}
	if o.DateHappened != nil {
		v := *o.DateHappened
		out.DateHappened = &v
	}
	if o.AggregationKey != nil {
		v := *o.AggregationKey
		out.AggregationKey = &v
	}
	if o.SourceTypeName != nil {
		v := *o.SourceTypeName
		out.SourceTypeName = &v
	}
	return out
}

// EventPayload is the JSON body of one events API request.
type EventPayload struct {
	EventOptions
	Text string `json:"text"`
}
