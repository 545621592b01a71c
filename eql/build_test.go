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
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventql/eventql/expr"
	"github.com/eventql/eventql/plan"
)

func src(line, col int) expr.Source {
	return expr.Source{Line: line, Column: col}
}

func attr(name string) *expr.Attribute {
	return &expr.Attribute{Name: name}
}

func where(field, value string) expr.Node {
	return expr.Compare(expr.Equals, attr(field), expr.String(value))
}

func eventQuery(at expr.Source, category string, cond expr.Node) EventQuery {
	q := EventQuery{At: at, Where: cond}
	if category != "" {
		q.Event = &Token{At: at, Text: category}
	}
	return q
}

func joinTerm(at expr.Source, category string, cond expr.Node, keys ...expr.Node) Term {
	t := Term{At: at, Query: eventQuery(at, category, cond), Keys: keys}
	if len(keys) > 0 {
		t.KeysAt = src(at.Line, at.Column+20)
	}
	return t
}

func build(t *testing.T, q Query) plan.Logical {
	t.Helper()
	p, err := NewBuilder(DefaultParams()).Build(q)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func TestEventQueryCategory(t *testing.T) {
	cond := where("process.name", "cmd.exe")
	q := eventQuery(src(1, 1), "process", cond)
	p := build(t, &q)

	ob, ok := p.(*plan.OrderBy)
	require.True(t, ok, "event plan root should be an ordering, got %T", p)
	require.Len(t, ob.Columns, 1)
	assert.False(t, ob.Columns[0].Desc, "implicit ordering is ascending")
	assert.False(t, ob.Columns[0].NullsLast, "implicit ordering sorts nulls first")
	assert.True(t, expr.Equal(attr("@timestamp"), ob.Columns[0].Column))

	f, ok := ob.From.(*plan.Filter)
	require.True(t, ok)
	want := expr.And(
		expr.Compare(expr.Equals, attr("event.category"), expr.String("process")),
		cond,
	)
	assert.True(t, expr.Equivalent(want, f.Where),
		"got %s, want %s", expr.ToString(f.Where), expr.ToString(want))
	_, ok = f.From.(*plan.Leaf)
	assert.True(t, ok, "filter should read the ambient event stream")
}

func TestEventQueryNoCategory(t *testing.T) {
	cond := where("process.name", "cmd.exe")
	q := EventQuery{At: src(1, 1), Where: cond}
	p := build(t, &q)

	ob := p.(*plan.OrderBy)
	f := ob.From.(*plan.Filter)
	// without a category token the condition passes through untouched
	assert.True(t, f.Where == cond, "condition should not be rewritten or copied")
}

func TestCustomParams(t *testing.T) {
	b := NewBuilder(Params{EventCategory: "evt.kind", Timestamp: "evt.ts"})
	q := eventQuery(src(1, 1), "process", where("a", "b"))
	p, err := b.Build(&q)
	require.NoError(t, err)

	ob := p.(*plan.OrderBy)
	assert.True(t, expr.Equal(attr("evt.ts"), ob.Columns[0].Column))
	f := ob.From.(*plan.Filter)
	cmp := f.Where.(*expr.Logical).Left.(*expr.Comparison)
	assert.True(t, expr.Equal(attr("evt.kind"), cmp.Left))
}

func TestTiebreakerOrdering(t *testing.T) {
	b := NewBuilder(Params{
		EventCategory: "event.category",
		Timestamp:     "@timestamp",
		Tiebreaker:    "event.sequence",
	})
	q := eventQuery(src(1, 1), "process", where("a", "b"))
	p, err := b.Build(&q)
	require.NoError(t, err)

	ob := p.(*plan.OrderBy)
	require.Len(t, ob.Columns, 2, "tiebreaker orders after the timestamp")
	assert.True(t, expr.Equal(attr("@timestamp"), ob.Columns[0].Column))
	assert.True(t, expr.Equal(attr("event.sequence"), ob.Columns[1].Column))
	assert.False(t, ob.Columns[1].Desc)
	assert.False(t, ob.Columns[1].NullsLast)
}

func TestJoinKeyConcatenation(t *testing.T) {
	parent := attr("host.id")
	j := &Join{
		At:   src(1, 1),
		Keys: []expr.Node{parent},
		Terms: []Term{
			joinTerm(src(2, 3), "process", where("a", "1"), attr("user.id"), attr("process.pid")),
			joinTerm(src(3, 3), "file", where("b", "2"), attr("user.id"), attr("file.path")),
		},
	}
	p := build(t, j)

	pj, ok := p.(*plan.Join)
	require.True(t, ok)
	require.Len(t, pj.Queries, 2, "every term appears in the plan")
	for i, q := range pj.Queries {
		require.Len(t, q.Keys, 3, "term %d: parent key plus two own keys", i)
		// the parent key comes first and is shared, not copied
		assert.True(t, q.Keys[0] == expr.Node(parent), "term %d: parent key should lead", i)
	}
	// terms stay in surface order
	assert.True(t, expr.Equal(attr("process.pid"), pj.Queries[0].Keys[2]))
	assert.True(t, expr.Equal(attr("file.path"), pj.Queries[1].Keys[2]))
	// branches must not alias each other's key slices
	assert.False(t, &pj.Queries[0].Keys[0] == &pj.Queries[1].Keys[0])
}

func TestJoinKeyMismatch(t *testing.T) {
	j := &Join{
		At:   src(1, 1),
		Keys: []expr.Node{attr("host.id")},
		Terms: []Term{
			joinTerm(src(2, 3), "process", where("a", "1"), attr("user.id"), attr("process.pid")),
			joinTerm(src(3, 3), "file", where("b", "2"), attr("user.id")),
		},
	}
	_, err := NewBuilder(DefaultParams()).Build(j)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrInconsistentKeys, pe.Kind)
	// reported at the offending by clause, counting only local keys
	assert.Equal(t, src(3, 23), pe.At)
	assert.Contains(t, pe.Msg, "expected [2] but found [1]")
}

func TestKeyMismatchPositionWithoutKeys(t *testing.T) {
	s := &Sequence{
		At: src(1, 1),
		Terms: []Term{
			joinTerm(src(2, 3), "process", where("a", "1"), attr("user.id")),
			joinTerm(src(3, 3), "file", where("b", "2")),
		},
	}
	_, err := NewBuilder(DefaultParams()).Build(s)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	// no by clause to point at, so the term itself is blamed
	assert.Equal(t, src(3, 3), pe.At)
	assert.Contains(t, pe.Msg, "expected [1] but found [0]")
}

func TestUntilSynthesized(t *testing.T) {
	j := &Join{
		At:   src(1, 1),
		Keys: []expr.Node{attr("host.id")},
		Terms: []Term{
			joinTerm(src(2, 3), "process", where("a", "1")),
			joinTerm(src(3, 3), "file", where("b", "2")),
		},
	}
	p := build(t, j)

	until := p.(*plan.Join).Until
	require.NotNil(t, until, "absent until still yields a branch")
	assert.Empty(t, until.Keys, "synthesized until is keyless")
	f, ok := until.Child.(*plan.Filter)
	require.True(t, ok)
	assert.True(t, expr.Equal(expr.Bool(false), f.Where))
	// the literal-false guard folds away under simplification
	folded := expr.Simplify(expr.And(f.Where, where("x", "y")))
	assert.True(t, expr.Equal(expr.Bool(false), folded))
}

func TestUntilDeclared(t *testing.T) {
	until := joinTerm(src(4, 3), "auth", where("c", "3"), attr("user.id"))
	j := &Join{
		At:    src(1, 1),
		Keys:  []expr.Node{attr("host.id")},
		Terms: []Term{joinTerm(src(2, 3), "process", where("a", "1"), attr("user.id"))},
		Until: &until,
	}
	p := build(t, j)

	u := p.(*plan.Join).Until
	require.Len(t, u.Keys, 2, "until concatenates parent and own keys too")
	assert.True(t, expr.Equal(attr("host.id"), u.Keys[0]))
	assert.True(t, expr.Equal(attr("user.id"), u.Keys[1]))
}

func TestSequenceForkRejected(t *testing.T) {
	fork := joinTerm(src(3, 3), "file", where("b", "2"))
	fork.Fork = true
	fork.ForkAt = src(3, 18)
	s := &Sequence{
		At: src(1, 1),
		Terms: []Term{
			joinTerm(src(2, 3), "process", where("a", "1")),
			fork,
		},
	}
	_, err := NewBuilder(DefaultParams()).Build(s)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrUnsupported, pe.Kind)
	assert.Equal(t, src(3, 18), pe.At)
	assert.Contains(t, pe.Msg, "sequence fork is unsupported")

	// a fork in the until branch is rejected the same way
	s = &Sequence{
		At:    src(1, 1),
		Terms: []Term{joinTerm(src(2, 3), "process", where("a", "1"))},
		Until: &fork,
	}
	_, err = NewBuilder(DefaultParams()).Build(s)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrUnsupported, pe.Kind)

	// joins accept forked terms untouched
	j := &Join{At: src(1, 1), Terms: []Term{joinTerm(src(2, 3), "process", where("a", "1")), fork}}
	_, err = NewBuilder(DefaultParams()).Build(j)
	assert.NoError(t, err)
}

func TestSequenceMaxSpan(t *testing.T) {
	s := &Sequence{
		At:   src(1, 1),
		Span: &Span{At: src(1, 10), Value: expr.Integer(30), Unit: Token{At: src(1, 12), Text: "s"}},
		Terms: []Term{
			joinTerm(src(2, 3), "process", where("a", "1")),
			joinTerm(src(3, 3), "file", where("b", "2")),
		},
	}
	p := build(t, s)
	seq := p.(*plan.Sequence)
	assert.Equal(t, plan.TimeValue{Value: 30, Unit: plan.Seconds}, seq.MaxSpan)

	s.Span = nil
	p = build(t, s)
	assert.Equal(t, plan.NoMaxSpan, p.(*plan.Sequence).MaxSpan)
	assert.False(t, p.(*plan.Sequence).MaxSpan.Set())
}

func TestSingleTermCorrelation(t *testing.T) {
	s := &Sequence{
		At:    src(1, 1),
		Terms: []Term{joinTerm(src(2, 3), "process", where("a", "1"), attr("user.id"))},
	}
	p := build(t, s)
	seq := p.(*plan.Sequence)
	// a single term is structurally valid; arity is trivially consistent
	require.Len(t, seq.Queries, 1)
	assert.Len(t, seq.Queries[0].Keys, 1)
}

func TestIdempotentRebuild(t *testing.T) {
	s := &Sequence{
		At:   src(1, 1),
		Keys: []expr.Node{attr("host.id")},
		Span: &Span{At: src(1, 10), Value: expr.Integer(5), Unit: Token{Text: "m"}},
		Terms: []Term{
			joinTerm(src(2, 3), "process", where("a", "1"), attr("user.id")),
			joinTerm(src(3, 3), "file", where("b", "2"), attr("user.id")),
		},
	}
	b := NewBuilder(DefaultParams())
	p1, err := b.Build(s)
	require.NoError(t, err)
	p2, err := b.Build(s)
	require.NoError(t, err)

	assert.True(t, p1.Equals(p2), "rebuilding the same input must give an equal plan")
	assert.True(t, reflect.DeepEqual(p1, p2))
	// but never the same allocation
	assert.False(t, p1 == p2)
	assert.False(t, p1.(*plan.Sequence).Until == p2.(*plan.Sequence).Until)
}
