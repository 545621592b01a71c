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
	"github.com/eventql/eventql/expr"
	"github.com/eventql/eventql/plan"
)

// maxspan normalizes the optional maxspan clause into a canonical
// plan.TimeValue. No clause yields the plan.NoMaxSpan sentinel, which
// is distinct from any explicit bound.
func maxspan(s *Span) (plan.TimeValue, error) {
	if s == nil {
		return plan.NoMaxSpan, nil
	}
	v, ok := s.Value.(expr.Integer)
	if !ok {
		return plan.NoMaxSpan, errorf(ErrInvalidSpan, s.At,
			"Decimal time interval [%s] not supported yet", expr.ToString(s.Value))
	}
	if v <= 0 {
		return plan.NoMaxSpan, errorf(ErrInvalidSpan, s.At,
			"A positive maxspan value is required; found [%d]", int64(v))
	}
	unit, ok := timeUnit(s.Unit.Text)
	if !ok {
		return plan.NoMaxSpan, errorf(ErrBadTimeUnit, s.Unit.At,
			"Unrecognized time unit [%s]", s.Unit.Text)
	}
	return plan.TimeValue{Value: int64(v), Unit: unit}, nil
}

// timeUnit maps a surface unit spelling to its canonical unit.
// Spellings are matched case-sensitively; the empty spelling means
// the unit was omitted and defaults to seconds.
func timeUnit(s string) (plan.TimeUnit, bool) {
	switch s {
	case "", "s", "sec", "secs", "second", "seconds":
		return plan.Seconds, true
	case "m", "min", "mins", "minute", "minutes":
		return plan.Minutes, true
	case "h", "hs", "hour", "hours":
		return plan.Hours, true
	case "d", "ds", "day", "days":
		return plan.Days, true
	}
	return 0, false
}
