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

package expr

// Simplify returns a simpler expression that is boolean-equivalent to
// n. Only constant boolean logic is folded; this layer has no schema,
// so no type-directed rewrites happen here. In particular a filter
// condition that is literally false (the synthesized until-term of a
// correlation with no until clause) stays recognizable as Bool(false).
func Simplify(n Node) Node {
	return Rewrite(simplifier{}, n)
}

type simplifier struct{}

func (s simplifier) Walk(n Node) Rewriter { return s }

func (s simplifier) Rewrite(n Node) Node {
	switch e := n.(type) {
	case *Logical:
		return e.simplify()
	case *Not:
		if b, ok := e.Expr.(Bool); ok {
			return !b
		}
		if inner, ok := e.Expr.(*Not); ok {
			// not not A -> A
			return inner.Expr
		}
	}
	return n
}

func (l *Logical) simplify() Node {
	if Equivalent(l.Left, l.Right) {
		// A and A -> A; A or A -> A
		return l.Left
	}
	if b, ok := l.Left.(Bool); ok {
		return foldLogical(l.Op, b, l.Right)
	}
	if b, ok := l.Right.(Bool); ok {
		return foldLogical(l.Op, b, l.Left)
	}
	return l
}

func foldLogical(op LogicalOp, b Bool, other Node) Node {
	switch op {
	case OpAnd:
		if b {
			return other
		}
		return b
	case OpOr:
		if b {
			return b
		}
		return other
	}
	return &Logical{Op: op, Left: b, Right: other}
}
