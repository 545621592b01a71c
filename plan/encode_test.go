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
	"reflect"
	"testing"

	"github.com/eventql/eventql/expr"
)

func TestEncodeRoundtrip(t *testing.T) {
	seq := testSequence()
	seq.At = expr.Source{Line: 2, Column: 1}
	buf, err := Encode(seq)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !seq.Equals(got) {
		t.Errorf("roundtrip mismatch:\n%s\n%s", got, seq)
	}
	if !reflect.DeepEqual(Logical(seq), got) {
		t.Error("roundtrip should preserve positions")
	}
}

func TestEncodeNoMaxSpan(t *testing.T) {
	seq := testSequence()
	seq.MaxSpan = NoMaxSpan
	buf, err := Encode(seq)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := got.(*Sequence)
	if !ok {
		t.Fatalf("decoded %T, want *Sequence", got)
	}
	if s.MaxSpan != NoMaxSpan {
		t.Errorf("absent maxspan should decode to the sentinel, got %s", s.MaxSpan)
	}
}

func TestEncodeJoin(t *testing.T) {
	j := &Join{
		Queries: []*KeyedFilter{
			{Child: eventPlan("process"), Keys: []expr.Node{attr("user.id")}},
			{Child: eventPlan("file"), Keys: []expr.Node{attr("user.id")}},
		},
		Until: untilFalse(),
	}
	buf, err := Encode(j)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !j.Equals(got) {
		t.Errorf("roundtrip mismatch:\n%s\n%s", got, j)
	}
}

func TestEncodeCompressed(t *testing.T) {
	seq := testSequence()
	buf, err := EncodeCompressed(seq)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeCompressed(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !seq.Equals(got) {
		t.Errorf("compressed roundtrip mismatch:\n%s\n%s", got, seq)
	}
	if _, err := DecodeCompressed([]byte("not a zstd frame")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestDecodeMalformed(t *testing.T) {
	bad := []string{
		`{"type":"bogus"}`,
		`{"type":"filter"}`,
		`{"type":"order","from":{"type":"events"}}`,
		`{"type":"keyed"}`,
		`{"type":"join","queries":[{"type":"events"}],"until":{"type":"keyed","child":{"type":"events"}}}`,
		`{"type":"sequence","queries":[],"until":{"type":"keyed","child":{"type":"events"}},"maxspan":{"value":5,"unit":"w"}}`,
		`{"type":"join","queries":[]}`,
		`{invalid`,
	}
	for i := range bad {
		if _, err := Decode([]byte(bad[i])); err == nil {
			t.Errorf("case %d: expected error for %s", i, bad[i])
		}
	}
}
