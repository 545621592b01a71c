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

import "github.com/eventql/eventql/expr"

// Token is an identifier token carried over from the frontend:
// its surface text plus the position it was written at.
type Token struct {
	At   expr.Source
	Text string
}

// Query is a parsed query ready for plan building: one of
// *EventQuery, *Join or *Sequence. The set is closed; Builder.Build
// dispatches over exactly these variants.
type Query interface {
	Pos() expr.Source
	query()
}

// EventQuery is a single filtered event query, e.g.
//
//	process where process.name == "cmd.exe"
//
// Event is the optional event-category token ("process" above);
// Where is the user condition.
type EventQuery struct {
	At    expr.Source
	Event *Token
	Where expr.Node
}

func (q *EventQuery) Pos() expr.Source { return q.At }

func (*EventQuery) query() {}

// Term is one correlated branch of a join or sequence: a subquery
// plus the branch's own join keys. KeysAt records the position of the
// `by` clause when one was written; it is where key-count mismatches
// are reported.
type Term struct {
	At     expr.Source
	Query  EventQuery
	Keys   []expr.Node
	KeysAt expr.Source

	// Fork marks a `fork=true` sequence term. The frontend parses
	// forks but plan building rejects them.
	Fork   bool
	ForkAt expr.Source
}

// Join correlates terms by equal join keys. Keys are the outer
// `by` keys shared by every term; Until is optional.
type Join struct {
	At    expr.Source
	Keys  []expr.Node
	Terms []Term
	Until *Term
}

func (j *Join) Pos() expr.Source { return j.At }

func (*Join) query() {}

// Span is a parsed maxspan clause: a numeric literal plus the unit
// spelling. An empty Unit text means the unit was omitted.
type Span struct {
	At    expr.Source
	Value expr.Node
	Unit  Token
}

// Sequence correlates terms like Join but additionally requires them
// to match in surface order, optionally bounded by Span.
type Sequence struct {
	At    expr.Source
	Keys  []expr.Node
	Span  *Span
	Terms []Term
	Until *Term
}

func (s *Sequence) Pos() expr.Source { return s.At }

func (*Sequence) query() {}
