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

	"golang.org/x/exp/slices"

	"github.com/eventql/eventql/expr"
	"github.com/eventql/eventql/plan"
)

// Builder turns parsed queries into logical plans.
// A Builder carries no per-build state and is safe for concurrent use.
type Builder struct {
	params Params
}

// NewBuilder returns a Builder that injects the field
// names configured in params.
func NewBuilder(params Params) *Builder {
	return &Builder{params: params}
}

// Build compiles q into a logical plan. On error no partial plan is
// returned: the first structural problem found aborts the build.
func (b *Builder) Build(q Query) (plan.Logical, error) {
	switch q := q.(type) {
	case *EventQuery:
		return b.event(q), nil
	case *Join:
		return b.join(q)
	case *Sequence:
		return b.sequence(q)
	default:
		return nil, fmt.Errorf("unexpected query type %T", q)
	}
}

// event builds the plan for one primitive event query: a filter over
// the ambient stream wrapped in the implicit timestamp ordering.
// Malformed conditions are the frontend's problem; nothing fails here.
func (b *Builder) event(q *EventQuery) *plan.OrderBy {
	cond := q.Where
	if q.Event != nil {
		// the category match goes on the left of the AND
		// so it is checked before the user condition
		field := &expr.Attribute{At: q.Event.At, Name: b.params.EventCategory}
		match := expr.Compare(expr.Equals, field, expr.String(q.Event.Text))
		cond = expr.And(match, cond)
	}
	filter := &plan.Filter{
		At:    q.At,
		From:  &plan.Leaf{At: q.At},
		Where: cond,
	}
	cols := []plan.Order{
		{Column: &expr.Attribute{At: q.At, Name: b.params.Timestamp}},
	}
	if b.params.Tiebreaker != "" {
		cols = append(cols, plan.Order{
			Column: &expr.Attribute{At: q.At, Name: b.params.Tiebreaker},
		})
	}
	return &plan.OrderBy{At: q.At, From: filter, Columns: cols}
}

// term builds one correlated branch. The branch's keys are the
// parent-scope keys followed by its own; the list is freshly
// allocated so branches never alias each other's key slices.
func (b *Builder) term(t *Term, parent []expr.Node) *plan.KeyedFilter {
	keys := slices.Clone(parent)
	keys = append(keys, t.Keys...)
	return &plan.KeyedFilter{At: t.At, Child: b.event(&t.Query), Keys: keys}
}

// until resolves the optional until term. An absent until becomes a
// keyless branch over literal false: the condition never matches and
// folds away under any optimizer, and consumers are spared a nil check.
func (b *Builder) until(at expr.Source, t *Term, parent []expr.Node, seq bool) (*plan.KeyedFilter, error) {
	if t == nil {
		f := &plan.Filter{
			At:    at,
			From:  &plan.Leaf{At: at},
			Where: expr.Bool(false),
		}
		return &plan.KeyedFilter{At: at, Child: f}, nil
	}
	if seq {
		if err := checkFork(t); err != nil {
			return nil, err
		}
	}
	return b.term(t, parent), nil
}

func checkFork(t *Term) error {
	if t.Fork {
		return errorf(ErrUnsupported, t.ForkAt, "sequence fork is unsupported")
	}
	return nil
}

// correlate builds the correlated terms shared by join and sequence,
// in surface order, and validates that every term declares as many
// join keys as the first one.
func (b *Builder) correlate(parent []expr.Node, terms []Term, seq bool) ([]*plan.KeyedFilter, error) {
	numberOfKeys := -1
	queries := make([]*plan.KeyedFilter, 0, len(terms))
	for i := range terms {
		t := &terms[i]
		if seq {
			if err := checkFork(t); err != nil {
				return nil, err
			}
		}
		kf := b.term(t, parent)
		if numberOfKeys < 0 {
			numberOfKeys = len(kf.Keys)
		} else if len(kf.Keys) != numberOfKeys {
			at := t.At
			if len(t.Keys) > 0 {
				at = t.KeysAt
			}
			// report only the locally-declared key counts;
			// the parent keys are implied on both sides
			return nil, errorf(ErrInconsistentKeys, at,
				"Inconsistent number of join keys specified; expected [%d] but found [%d]",
				numberOfKeys-len(parent), len(kf.Keys)-len(parent))
		}
		queries = append(queries, kf)
	}
	return queries, nil
}

func (b *Builder) join(j *Join) (*plan.Join, error) {
	until, err := b.until(j.At, j.Until, j.Keys, false)
	if err != nil {
		return nil, err
	}
	queries, err := b.correlate(j.Keys, j.Terms, false)
	if err != nil {
		return nil, err
	}
	return &plan.Join{At: j.At, Queries: queries, Until: until}, nil
}

func (b *Builder) sequence(s *Sequence) (*plan.Sequence, error) {
	span, err := maxspan(s.Span)
	if err != nil {
		return nil, err
	}
	until, err := b.until(s.At, s.Until, s.Keys, true)
	if err != nil {
		return nil, err
	}
	queries, err := b.correlate(s.Keys, s.Terms, true)
	if err != nil {
		return nil, err
	}
	return &plan.Sequence{At: s.At, Queries: queries, Until: until, MaxSpan: span}, nil
}
