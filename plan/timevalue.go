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

package plan

import (
	"fmt"
	"time"
)

// TimeUnit is one of the canonical units a sequence time bound
// can be expressed in.
type TimeUnit int

const (
	Seconds TimeUnit = iota
	Minutes
	Hours
	Days
)

func (u TimeUnit) String() string {
	switch u {
	case Minutes:
		return "m"
	case Hours:
		return "h"
	case Days:
		return "d"
	}
	return "s"
}

func (u TimeUnit) duration() time.Duration {
	switch u {
	case Minutes:
		return time.Minute
	case Hours:
		return time.Hour
	case Days:
		return 24 * time.Hour
	}
	return time.Second
}

// TimeValue is a canonical duration: an integer magnitude plus a
// TimeUnit. The builder only produces positive magnitudes, or the
// NoMaxSpan sentinel.
type TimeValue struct {
	Value int64
	Unit  TimeUnit
}

// NoMaxSpan is the sentinel for "no bound declared". Its magnitude is
// negative so it is distinguishable from an explicit zero-length bound.
var NoMaxSpan = TimeValue{Value: -1, Unit: Seconds}

// Set returns whether t holds an actual duration
// rather than the no-bound sentinel.
func (t TimeValue) Set() bool { return t.Value >= 0 }

// Duration converts t to a time.Duration.
func (t TimeValue) Duration() time.Duration {
	return time.Duration(t.Value) * t.Unit.duration()
}

func (t TimeValue) String() string {
	if !t.Set() {
		return "none"
	}
	return fmt.Sprintf("%d%s", t.Value, t.Unit)
}
