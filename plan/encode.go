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

	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/encoding/json"

	"github.com/eventql/eventql/expr"
)

// encoded is the wire form of a plan node; the "type" field selects
// which of the remaining fields are meaningful. Expressions are
// embedded in their own wire form (see expr.EncodeJSON).
type encoded struct {
	Type    string            `json:"type"`
	Line    int               `json:"line,omitempty"`
	Column  int               `json:"column,omitempty"`
	From    *encoded          `json:"from,omitempty"`
	Where   json.RawMessage   `json:"where,omitempty"`
	Order   []encodedOrder    `json:"order,omitempty"`
	Child   *encoded          `json:"child,omitempty"`
	Keys    []json.RawMessage `json:"keys,omitempty"`
	Queries []*encoded        `json:"queries,omitempty"`
	Until   *encoded          `json:"until,omitempty"`
	MaxSpan *encodedSpan      `json:"maxspan,omitempty"`
}

type encodedOrder struct {
	Column    json.RawMessage `json:"column"`
	Desc      bool            `json:"desc,omitempty"`
	NullsLast bool            `json:"nulls_last,omitempty"`
}

type encodedSpan struct {
	Value int64  `json:"value"`
	Unit  string `json:"unit"`
}

// Encode encodes p as type-tagged JSON suitable for Decode.
// The encoding is the interchange format handed to the downstream
// resolver; it round-trips everything including source positions.
func Encode(p Logical) ([]byte, error) {
	e, err := encodePlan(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// Decode decodes a plan encoded with Encode.
func Decode(buf []byte) (Logical, error) {
	var e encoded
	if err := json.Unmarshal(buf, &e); err != nil {
		return nil, err
	}
	return e.decode()
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		panic(err)
	}
	zstdEncoder = enc
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	zstdDecoder = dec
}

// EncodeCompressed encodes p and frames the result with zstd.
// Plans for wide correlations repeat attribute names heavily,
// so the framed form stays small in transit and at rest.
func EncodeCompressed(p Logical) ([]byte, error) {
	buf, err := Encode(p)
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(buf, nil), nil
}

// DecodeCompressed reverses EncodeCompressed.
func DecodeCompressed(buf []byte) (Logical, error) {
	raw, err := zstdDecoder.DecodeAll(buf, nil)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

func encodePlan(p Logical) (*encoded, error) {
	at := p.Pos()
	e := &encoded{Line: at.Line, Column: at.Column}
	switch p := p.(type) {
	case *Leaf:
		e.Type = "events"
	case *Filter:
		e.Type = "filter"
		from, err := encodePlan(p.From)
		if err != nil {
			return nil, err
		}
		where, err := expr.EncodeJSON(p.Where)
		if err != nil {
			return nil, err
		}
		e.From, e.Where = from, where
	case *OrderBy:
		e.Type = "order"
		from, err := encodePlan(p.From)
		if err != nil {
			return nil, err
		}
		e.From = from
		for i := range p.Columns {
			col, err := expr.EncodeJSON(p.Columns[i].Column)
			if err != nil {
				return nil, err
			}
			e.Order = append(e.Order, encodedOrder{
				Column:    col,
				Desc:      p.Columns[i].Desc,
				NullsLast: p.Columns[i].NullsLast,
			})
		}
	case *KeyedFilter:
		e.Type = "keyed"
		child, err := encodePlan(p.Child)
		if err != nil {
			return nil, err
		}
		e.Child = child
		for i := range p.Keys {
			key, err := expr.EncodeJSON(p.Keys[i])
			if err != nil {
				return nil, err
			}
			e.Keys = append(e.Keys, key)
		}
	case *Join:
		e.Type = "join"
		if err := e.encodeCorrelated(p.Queries, p.Until); err != nil {
			return nil, err
		}
	case *Sequence:
		e.Type = "sequence"
		if err := e.encodeCorrelated(p.Queries, p.Until); err != nil {
			return nil, err
		}
		if p.MaxSpan.Set() {
			e.MaxSpan = &encodedSpan{Value: p.MaxSpan.Value, Unit: p.MaxSpan.Unit.String()}
		}
	default:
		return nil, fmt.Errorf("cannot encode plan node of type %T", p)
	}
	return e, nil
}

func (e *encoded) encodeCorrelated(queries []*KeyedFilter, until *KeyedFilter) error {
	for i := range queries {
		q, err := encodePlan(queries[i])
		if err != nil {
			return err
		}
		e.Queries = append(e.Queries, q)
	}
	u, err := encodePlan(until)
	if err != nil {
		return err
	}
	e.Until = u
	return nil
}

func (e *encoded) decode() (Logical, error) {
	at := expr.Source{Line: e.Line, Column: e.Column}
	switch e.Type {
	case "events":
		return &Leaf{At: at}, nil
	case "filter":
		if e.From == nil || len(e.Where) == 0 {
			return nil, fmt.Errorf("malformed %q plan node", e.Type)
		}
		from, err := e.From.decode()
		if err != nil {
			return nil, err
		}
		where, err := expr.DecodeJSON(e.Where)
		if err != nil {
			return nil, err
		}
		return &Filter{At: at, From: from, Where: where}, nil
	case "order":
		if e.From == nil || len(e.Order) == 0 {
			return nil, fmt.Errorf("malformed %q plan node", e.Type)
		}
		from, err := e.From.decode()
		if err != nil {
			return nil, err
		}
		cols := make([]Order, 0, len(e.Order))
		for i := range e.Order {
			col, err := expr.DecodeJSON(e.Order[i].Column)
			if err != nil {
				return nil, err
			}
			cols = append(cols, Order{
				Column:    col,
				Desc:      e.Order[i].Desc,
				NullsLast: e.Order[i].NullsLast,
			})
		}
		return &OrderBy{At: at, From: from, Columns: cols}, nil
	case "keyed":
		if e.Child == nil {
			return nil, fmt.Errorf("malformed %q plan node", e.Type)
		}
		child, err := e.Child.decode()
		if err != nil {
			return nil, err
		}
		var keys []expr.Node
		for i := range e.Keys {
			key, err := expr.DecodeJSON(e.Keys[i])
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
		return &KeyedFilter{At: at, Child: child, Keys: keys}, nil
	case "join":
		queries, until, err := e.decodeCorrelated()
		if err != nil {
			return nil, err
		}
		return &Join{At: at, Queries: queries, Until: until}, nil
	case "sequence":
		queries, until, err := e.decodeCorrelated()
		if err != nil {
			return nil, err
		}
		span := NoMaxSpan
		if e.MaxSpan != nil {
			unit, err := parseWireUnit(e.MaxSpan.Unit)
			if err != nil {
				return nil, err
			}
			span = TimeValue{Value: e.MaxSpan.Value, Unit: unit}
		}
		return &Sequence{At: at, Queries: queries, Until: until, MaxSpan: span}, nil
	}
	return nil, fmt.Errorf("unknown plan node type %q", e.Type)
}

func (e *encoded) decodeCorrelated() ([]*KeyedFilter, *KeyedFilter, error) {
	if e.Until == nil {
		return nil, nil, fmt.Errorf("malformed %q plan node: missing until", e.Type)
	}
	queries := make([]*KeyedFilter, 0, len(e.Queries))
	for i := range e.Queries {
		q, err := e.Queries[i].decodeKeyed()
		if err != nil {
			return nil, nil, err
		}
		queries = append(queries, q)
	}
	until, err := e.Until.decodeKeyed()
	if err != nil {
		return nil, nil, err
	}
	return queries, until, nil
}

func (e *encoded) decodeKeyed() (*KeyedFilter, error) {
	p, err := e.decode()
	if err != nil {
		return nil, err
	}
	k, ok := p.(*KeyedFilter)
	if !ok {
		return nil, fmt.Errorf("expected keyed plan node, found %q", e.Type)
	}
	return k, nil
}

func parseWireUnit(s string) (TimeUnit, error) {
	switch s {
	case "s":
		return Seconds, nil
	case "m":
		return Minutes, nil
	case "h":
		return Hours, nil
	case "d":
		return Days, nil
	}
	return 0, fmt.Errorf("unknown time unit %q", s)
}
