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

import (
	"fmt"

	"github.com/segmentio/encoding/json"
)

// encoded is the wire form of a Node. The "type" field selects which
// of the remaining fields are meaningful.
type encoded struct {
	Type   string   `json:"type"`
	Bool   bool     `json:"bool,omitempty"`
	Str    string   `json:"str,omitempty"`
	Int    int64    `json:"int,omitempty"`
	Float  float64  `json:"float,omitempty"`
	Name   string   `json:"name,omitempty"`
	Line   int      `json:"line,omitempty"`
	Column int      `json:"column,omitempty"`
	Op     string   `json:"op,omitempty"`
	Left   *encoded `json:"left,omitempty"`
	Right  *encoded `json:"right,omitempty"`
	Inner  *encoded `json:"inner,omitempty"`
}

// EncodeJSON encodes n as type-tagged JSON
// suitable for DecodeJSON.
func EncodeJSON(n Node) ([]byte, error) {
	e := encode(n)
	if e == nil {
		return nil, fmt.Errorf("cannot encode expression of type %T", n)
	}
	return json.Marshal(e)
}

// DecodeJSON decodes an expression encoded with EncodeJSON.
func DecodeJSON(buf []byte) (Node, error) {
	var e encoded
	if err := json.Unmarshal(buf, &e); err != nil {
		return nil, err
	}
	return e.decode()
}

func encode(n Node) *encoded {
	switch n := n.(type) {
	case Bool:
		return &encoded{Type: "bool", Bool: bool(n)}
	case String:
		return &encoded{Type: "string", Str: string(n)}
	case Integer:
		return &encoded{Type: "int", Int: int64(n)}
	case Float:
		return &encoded{Type: "float", Float: float64(n)}
	case *Attribute:
		return &encoded{Type: "attr", Name: n.Name, Line: n.At.Line, Column: n.At.Column}
	case *Comparison:
		return &encoded{Type: "cmp", Op: n.Op.String(), Left: encode(n.Left), Right: encode(n.Right)}
	case *Logical:
		return &encoded{Type: "logical", Op: n.Op.String(), Left: encode(n.Left), Right: encode(n.Right)}
	case *Not:
		return &encoded{Type: "not", Inner: encode(n.Expr)}
	}
	return nil
}

func (e *encoded) decode() (Node, error) {
	switch e.Type {
	case "bool":
		return Bool(e.Bool), nil
	case "string":
		return String(e.Str), nil
	case "int":
		return Integer(e.Int), nil
	case "float":
		return Float(e.Float), nil
	case "attr":
		return &Attribute{At: Source{Line: e.Line, Column: e.Column}, Name: e.Name}, nil
	case "cmp":
		op, ok := parseCmpOp(e.Op)
		if !ok {
			return nil, fmt.Errorf("unknown comparison op %q", e.Op)
		}
		left, right, err := e.operands()
		if err != nil {
			return nil, err
		}
		return &Comparison{Op: op, Left: left, Right: right}, nil
	case "logical":
		op, ok := parseLogicalOp(e.Op)
		if !ok {
			return nil, fmt.Errorf("unknown logical op %q", e.Op)
		}
		left, right, err := e.operands()
		if err != nil {
			return nil, err
		}
		return &Logical{Op: op, Left: left, Right: right}, nil
	case "not":
		if e.Inner == nil {
			return nil, fmt.Errorf("%q expression missing operand", e.Type)
		}
		inner, err := e.Inner.decode()
		if err != nil {
			return nil, err
		}
		return &Not{Expr: inner}, nil
	}
	return nil, fmt.Errorf("unknown expression type %q", e.Type)
}

func (e *encoded) operands() (left, right Node, err error) {
	if e.Left == nil || e.Right == nil {
		return nil, nil, fmt.Errorf("%q expression missing operand", e.Type)
	}
	left, err = e.Left.decode()
	if err != nil {
		return nil, nil, err
	}
	right, err = e.Right.decode()
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func parseCmpOp(s string) (CmpOp, bool) {
	switch s {
	case "==":
		return Equals, true
	case "!=":
		return NotEquals, true
	case "<":
		return Less, true
	case "<=":
		return LessEquals, true
	case ">":
		return Greater, true
	case ">=":
		return GreaterEquals, true
	}
	return 0, false
}

func parseLogicalOp(s string) (LogicalOp, bool) {
	switch s {
	case "and":
		return OpAnd, true
	case "or":
		return OpOr, true
	}
	return 0, false
}
