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

// Package expr defines the condition-expression AST that EQL query
// plans are built from.
//
// Nodes are immutable once constructed; they may be freely shared
// between plan branches. Rewrite never modifies its input and instead
// returns fresh nodes where a rewrite applied.
package expr

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Visitor is an interface that must
// be satisfied by the argument to Visit.
//
// A Visitor's Visit method is invoked for each node encountered by
// Walk. If the result visitor w is not nil, Walk visits each of the
// children of node with the visitor w, followed by a call of
// w.Visit(nil).
//
// (see also: ast.Visitor)
type Visitor interface {
	Visit(Node) Visitor
}

// Walk traverses an AST in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w
// for each of the non-nil children of node, followed by a call of
// w.Visit(nil).
//
// (see also: ast.Walk)
func Walk(v Visitor, n Node) {
	w := v.Visit(n)
	if w != nil {
		n.walk(w)
		w.Visit(nil)
	}
}

// Rewriter accepts a Node and returns
// a new node (or just its argument)
type Rewriter interface {
	// Rewrite is applied to nodes
	// in depth-first order, and each
	// node is re-written to use the
	// returned value.
	Rewrite(Node) Node

	// Walk is called during node traversal
	// and the returned Rewriter is used for
	// all the children of Node.
	// If the returned rewriter is nil,
	// then traversal does not proceed past Node.
	Walk(Node) Rewriter
}

type nonleaf interface {
	rewrite(r Rewriter) Node
}

// Rewrite recursively applies a Rewriter in depth-first order.
// The input expression is never modified; subtrees that a rewrite
// applied to are copied.
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	nl, ok := n.(nonleaf)
	if ok {
		rc := r.Walk(n)
		if rc != nil {
			n = nl.rewrite(rc)
		}
	}
	return r.Rewrite(n)
}

type Printable interface {
	// text should write the textual representation
	// of this node to dst, and should redact itself
	// if it is a constant and redact is true
	text(dst *strings.Builder, redact bool)
}

// Node is an expression AST node
type Node interface {
	Printable
	// Equals returns whether this node
	// is syntactically equivalent to another node.
	Equals(Node) bool

	walk(Visitor)
}

// ToString returns the string representation of this AST node and its
// children in approximately EQL syntax.
func ToString(p Printable) string {
	if p == nil {
		return "<nil>"
	}
	var dst strings.Builder
	p.text(&dst, false)
	return dst.String()
}

// ToRedacted returns the string representation of this AST node and
// its children in approximately EQL syntax, but with all constant
// expressions replaced with random (deterministic) values.
func ToRedacted(p Printable) string {
	if p == nil {
		return "<nil>"
	}
	var dst strings.Builder
	p.text(&dst, true)
	return dst.String()
}

// Equal returns whether a and b are equivalent.
// a or b may be nil.
func Equal(a, b Node) bool {
	if a == nil {
		return b == nil
	}
	return b != nil && a.Equals(b)
}

// Equivalent returns whether two nodes are equivalent.
// Two nodes are equivalent if they are identical or
// syntactically equal.
func Equivalent(a, b Node) bool {
	if a == b {
		return true
	}
	return a.Equals(b)
}

// EqualNodes returns whether two expression lists
// are pairwise equivalent.
func EqualNodes(a, b []Node) bool {
	return slices.EqualFunc(a, b, Equivalent)
}

// Bool is a literal boolean AST node
type Bool bool

func (b Bool) text(dst *strings.Builder, redact bool) {
	if b {
		dst.WriteString("true")
	} else {
		dst.WriteString("false")
	}
}

func (b Bool) Equals(e Node) bool {
	eb, ok := e.(Bool)
	return ok && b == eb
}

func (b Bool) walk(v Visitor) {}

// String is a literal string AST node
type String string

func (s String) text(dst *strings.Builder, redact bool) {
	v := string(s)
	if redact {
		v = redactString(v)
	}
	dst.WriteString(strconv.Quote(v))
}

func (s String) Equals(e Node) bool {
	es, ok := e.(String)
	return ok && s == es
}

func (s String) walk(v Visitor) {}

// Integer is a literal integer AST node
type Integer int64

func (i Integer) text(dst *strings.Builder, redact bool) {
	var buf [32]byte
	v := int64(i)
	if redact {
		v = redactInt(v)
	}
	dst.Write(strconv.AppendInt(buf[:0], v, 10))
}

func (i Integer) Equals(e Node) bool {
	ei, ok := e.(Integer)
	return ok && i == ei
}

func (i Integer) walk(v Visitor) {}

// Float is a literal float AST node
type Float float64

func (f Float) text(dst *strings.Builder, redact bool) {
	var buf [32]byte
	v := float64(f)
	if redact {
		v = redactFloat(v)
	}
	dst.Write(strconv.AppendFloat(buf[:0], v, 'g', -1, 64))
}

func (f Float) Equals(e Node) bool {
	ef, ok := e.(Float)
	return ok && f == ef
}

func (f Float) walk(v Visitor) {}

// Attribute is an unresolved reference to a field of the input event,
// e.g. process.name. Resolution against a concrete schema happens
// downstream; this layer only carries the dotted name and the position
// it was written at.
type Attribute struct {
	At   Source
	Name string
}

func (a *Attribute) text(dst *strings.Builder, redact bool) {
	dst.WriteString(a.Name)
}

// Equals compares attributes by name; positions
// are diagnostics only.
func (a *Attribute) Equals(e Node) bool {
	ea, ok := e.(*Attribute)
	return ok && a.Name == ea.Name
}

func (a *Attribute) walk(v Visitor) {}

// CmpOp is a comparison operation
type CmpOp int

const (
	Equals CmpOp = iota // ==
	NotEquals
	Less
	LessEquals
	Greater
	GreaterEquals
)

func (o CmpOp) String() string {
	switch o {
	case Equals:
		return "=="
	case NotEquals:
		return "!="
	case Less:
		return "<"
	case LessEquals:
		return "<="
	case Greater:
		return ">"
	case GreaterEquals:
		return ">="
	}
	return "<unknown cmp op>"
}

// Comparison is a Node that compares two values
type Comparison struct {
	Op          CmpOp
	Left, Right Node
}

// Compare generates a comparison operation
// of the given type and with the given arguments
func Compare(op CmpOp, left, right Node) *Comparison {
	return &Comparison{Op: op, Left: left, Right: right}
}

func (c *Comparison) Equals(x Node) bool {
	ec, ok := x.(*Comparison)
	return ok && ec.Op == c.Op && c.Left.Equals(ec.Left) && c.Right.Equals(ec.Right)
}

func (c *Comparison) walk(v Visitor) {
	if c.Left != nil {
		Walk(v, c.Left)
	}
	if c.Right != nil {
		Walk(v, c.Right)
	}
}

func (c *Comparison) rewrite(r Rewriter) Node {
	left := Rewrite(r, c.Left)
	right := Rewrite(r, c.Right)
	if left == c.Left && right == c.Right {
		return c
	}
	return &Comparison{Op: c.Op, Left: left, Right: right}
}

func (c *Comparison) text(dst *strings.Builder, redact bool) {
	// logical expressions bind looser than comparisons,
	// so they need parentheses on either side; a comparison
	// on the rhs needs them too, or left-associativity would
	// change the meaning
	if _, ok := c.Left.(*Logical); ok {
		dst.WriteByte('(')
		c.Left.text(dst, redact)
		dst.WriteByte(')')
	} else {
		c.Left.text(dst, redact)
	}
	dst.WriteByte(' ')
	dst.WriteString(c.Op.String())
	dst.WriteByte(' ')
	parens := false
	switch c.Right.(type) {
	case *Comparison, *Logical:
		parens = true
	}
	if parens {
		dst.WriteByte('(')
	}
	c.Right.text(dst, redact)
	if parens {
		dst.WriteByte(')')
	}
}

// LogicalOp is a logical operation
type LogicalOp int

const (
	OpAnd LogicalOp = iota // A and B
	OpOr                   // A or B
)

func (l LogicalOp) String() string {
	switch l {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	}
	return "<unknown logical op>"
}

// Logical is a Node that represents
// a logical expression
type Logical struct {
	Op          LogicalOp
	Left, Right Node
}

// And yields '<left> and <right>'
func And(left, right Node) *Logical {
	return &Logical{Op: OpAnd, Left: left, Right: right}
}

// Or yields '<left> or <right>'
func Or(left, right Node) *Logical {
	return &Logical{Op: OpOr, Left: left, Right: right}
}

func (l *Logical) Equals(x Node) bool {
	xl, ok := x.(*Logical)
	return ok && l.Op == xl.Op && l.Left.Equals(xl.Left) && l.Right.Equals(xl.Right)
}

func (l *Logical) walk(v Visitor) {
	if l.Left != nil {
		Walk(v, l.Left)
	}
	if l.Right != nil {
		Walk(v, l.Right)
	}
}

func (l *Logical) rewrite(r Rewriter) Node {
	left := Rewrite(r, l.Left)
	right := Rewrite(r, l.Right)
	if left == l.Left && right == l.Right {
		return l
	}
	return &Logical{Op: l.Op, Left: left, Right: right}
}

func (l *Logical) text(dst *strings.Builder, redact bool) {
	// an unparenthesized logical rhs would re-associate
	l.Left.text(dst, redact)
	dst.WriteByte(' ')
	dst.WriteString(l.Op.String())
	dst.WriteByte(' ')
	if _, ok := l.Right.(*Logical); ok {
		dst.WriteByte('(')
		l.Right.text(dst, redact)
		dst.WriteByte(')')
	} else {
		l.Right.text(dst, redact)
	}
}

// Not is logical negation of a boolean expression
type Not struct {
	Expr Node
}

// Negate yields 'not <inner>'
func Negate(inner Node) *Not {
	return &Not{Expr: inner}
}

func (n *Not) Equals(x Node) bool {
	xn, ok := x.(*Not)
	return ok && n.Expr.Equals(xn.Expr)
}

func (n *Not) walk(v Visitor) {
	if n.Expr != nil {
		Walk(v, n.Expr)
	}
}

func (n *Not) rewrite(r Rewriter) Node {
	inner := Rewrite(r, n.Expr)
	if inner == n.Expr {
		return n
	}
	return &Not{Expr: inner}
}

func (n *Not) text(dst *strings.Builder, redact bool) {
	dst.WriteString("not ")
	switch n.Expr.(type) {
	case *Logical, *Comparison:
		dst.WriteByte('(')
		n.Expr.text(dst, redact)
		dst.WriteByte(')')
	default:
		n.Expr.text(dst, redact)
	}
}
