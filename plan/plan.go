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

// Package plan defines the logical query plan produced by the EQL
// builder: a tree of typed nodes describing filtering, temporal
// ordering and multi-stream correlation. Plans are a description of
// intent only; attribute resolution, optimization and execution all
// happen downstream.
//
// Plan nodes are immutable once constructed.
package plan

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/eventql/eventql/expr"
)

// Logical is a single node in the logical plan tree.
// The root of the tree is the query output node and the
// leaves are the event streams the data is read from.
type Logical interface {
	fmt.Stringer

	// Pos returns the position in the query text that
	// this node was built from.
	Pos() expr.Source

	// Equals returns whether two plan trees are structurally
	// equal. Positions are diagnostics and do not participate.
	Equals(Logical) bool

	// children returns the inputs of the node in display order,
	// or nil for a terminal node
	children() []Logical
}

func equal(a, b Logical) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(b)
}

// Leaf stands for the ambient event stream a filter reads from.
// Which concrete source backs it is decided by the downstream
// resolver, not by the plan builder.
type Leaf struct {
	At expr.Source
}

func (l *Leaf) Pos() expr.Source { return l.At }

func (l *Leaf) String() string { return "EVENTS" }

func (l *Leaf) Equals(x Logical) bool {
	_, ok := x.(*Leaf)
	return ok
}

func (l *Leaf) children() []Logical { return nil }

// Filter is a plan node that filters the input
// rows on some criteria
type Filter struct {
	At    expr.Source
	From  Logical
	Where expr.Node
}

func (f *Filter) Pos() expr.Source { return f.At }

func (f *Filter) String() string {
	return "WHERE " + expr.ToString(f.Where)
}

func (f *Filter) Equals(x Logical) bool {
	xf, ok := x.(*Filter)
	return ok && expr.Equal(f.Where, xf.Where) && equal(f.From, xf.From)
}

func (f *Filter) children() []Logical { return []Logical{f.From} }

// Order is a single ordering key.
// The zero direction is ascending with nulls first,
// which is also the implicit ordering the builder injects.
type Order struct {
	Column    expr.Node
	Desc      bool
	NullsLast bool
}

func (o Order) String() string {
	var dst strings.Builder
	dst.WriteString(expr.ToString(o.Column))
	if o.Desc {
		dst.WriteString(" DESC")
	} else {
		dst.WriteString(" ASC")
	}
	if o.NullsLast {
		dst.WriteString(" NULLS LAST")
	} else {
		dst.WriteString(" NULLS FIRST")
	}
	return dst.String()
}

func (o Order) Equals(x Order) bool {
	return o.Desc == x.Desc &&
		o.NullsLast == x.NullsLast &&
		expr.Equivalent(o.Column, x.Column)
}

// OrderBy is a plan node that sorts its input
// by one or more ordering keys
type OrderBy struct {
	At      expr.Source
	From    Logical
	Columns []Order
}

func (o *OrderBy) Pos() expr.Source { return o.At }

func (o *OrderBy) String() string {
	var dst strings.Builder
	dst.WriteString("ORDER BY ")
	for i := range o.Columns {
		if i > 0 {
			dst.WriteString(", ")
		}
		dst.WriteString(o.Columns[i].String())
	}
	return dst.String()
}

func (o *OrderBy) Equals(x Logical) bool {
	xo, ok := x.(*OrderBy)
	return ok && slices.EqualFunc(o.Columns, xo.Columns, Order.Equals) && equal(o.From, xo.From)
}

func (o *OrderBy) children() []Logical { return []Logical{o.From} }
