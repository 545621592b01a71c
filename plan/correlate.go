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
	"strings"

	"golang.org/x/exp/slices"

	"github.com/eventql/eventql/expr"
)

// KeyedFilter is one correlated branch of a Join or Sequence:
// an event-query plan plus the join-key expressions rows of
// this branch are correlated on. Keys are ordered, outer-scope
// keys first; key expressions may be shared with sibling
// branches and must not be modified.
type KeyedFilter struct {
	At    expr.Source
	Child Logical
	Keys  []expr.Node
}

func (k *KeyedFilter) Pos() expr.Source { return k.At }

func (k *KeyedFilter) String() string {
	var dst strings.Builder
	dst.WriteString("KEYED BY [")
	for i := range k.Keys {
		if i > 0 {
			dst.WriteString(", ")
		}
		dst.WriteString(expr.ToString(k.Keys[i]))
	}
	dst.WriteString("]")
	return dst.String()
}

func (k *KeyedFilter) Equals(x Logical) bool {
	xk, ok := x.(*KeyedFilter)
	return ok && expr.EqualNodes(k.Keys, xk.Keys) && equal(k.Child, xk.Child)
}

func (k *KeyedFilter) children() []Logical { return []Logical{k.Child} }

// Join correlates rows across its branches by equal join keys,
// without ordering constraints between branches. Until is always
// present: when the query declared no until clause the builder
// synthesizes a keyless branch over a constant-false filter, so
// consumers never see a missing field.
type Join struct {
	At      expr.Source
	Queries []*KeyedFilter
	Until   *KeyedFilter
}

func (j *Join) Pos() expr.Source { return j.At }

func (j *Join) String() string {
	return fmt.Sprintf("JOIN (%d queries)", len(j.Queries))
}

func (j *Join) Equals(x Logical) bool {
	xj, ok := x.(*Join)
	return ok && equalKeyed(j.Queries, xj.Queries) && equalUntil(j.Until, xj.Until)
}

func (j *Join) children() []Logical { return correlated(j.Queries, j.Until) }

// Sequence is a Join whose branches must additionally match in
// surface order, optionally within the MaxSpan time bound.
// MaxSpan is NoMaxSpan when the query declared no bound.
type Sequence struct {
	At      expr.Source
	Queries []*KeyedFilter
	Until   *KeyedFilter
	MaxSpan TimeValue
}

func (s *Sequence) Pos() expr.Source { return s.At }

func (s *Sequence) String() string {
	if !s.MaxSpan.Set() {
		return fmt.Sprintf("SEQUENCE (%d queries)", len(s.Queries))
	}
	return fmt.Sprintf("SEQUENCE (%d queries) MAXSPAN %s", len(s.Queries), s.MaxSpan)
}

func (s *Sequence) Equals(x Logical) bool {
	xs, ok := x.(*Sequence)
	return ok && s.MaxSpan == xs.MaxSpan &&
		equalKeyed(s.Queries, xs.Queries) && equalUntil(s.Until, xs.Until)
}

func (s *Sequence) children() []Logical { return correlated(s.Queries, s.Until) }

func equalKeyed(a, b []*KeyedFilter) bool {
	return slices.EqualFunc(a, b, func(x, y *KeyedFilter) bool {
		return x.Equals(y)
	})
}

func equalUntil(a, b *KeyedFilter) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(b)
}

func correlated(queries []*KeyedFilter, until *KeyedFilter) []Logical {
	out := make([]Logical, 0, len(queries)+1)
	for i := range queries {
		out = append(out, queries[i])
	}
	if until != nil {
		out = append(out, until)
	}
	return out
}
