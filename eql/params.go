// Copyright 2024 The EventQL Authors
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package eql

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// Params configures the field names the builder injects into plans:
// the field the event-category token is matched against, the field the
// implicit ascending ordering sorts on, and an optional tiebreaker
// field ordered after the timestamp when events share one. Which names
// apply depends on the shape of the indexed events, so deployments
// provide them as configuration.
type Params struct {
	EventCategory string `json:"event_category"`
	Timestamp     string `json:"timestamp"`
	Tiebreaker    string `json:"tiebreaker,omitempty"`
}

// DefaultParams returns the field mapping for ECS-shaped events.
// No tiebreaker is configured by default.
func DefaultParams() Params {
	return Params{
		EventCategory: "event.category",
		Timestamp:     "@timestamp",
	}
}

// ParseParams decodes a YAML (or JSON) field-mapping document.
// Fields absent from the document keep their DefaultParams value;
// fields explicitly set to an empty name are rejected.
func ParseParams(buf []byte) (Params, error) {
	p := DefaultParams()
	if err := yaml.Unmarshal(buf, &p); err != nil {
		return Params{}, err
	}
	if p.EventCategory == "" || p.Timestamp == "" {
		return Params{}, fmt.Errorf("field mapping must name event_category and timestamp")
	}
	return p, nil
}
