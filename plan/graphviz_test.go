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
	"strings"
	"testing"
)

func TestGraphviz(t *testing.T) {
	var buf strings.Builder
	if err := Graphviz(testSequence(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "digraph plan {\n") || !strings.HasSuffix(out, "}\n") {
		t.Fatalf("bad framing:\n%s", out)
	}
	// 2 keyed event plans (4 nodes each), the until (3 nodes),
	// and the sequence root
	nodes := strings.Count(out, "[label=")
	if nodes != 12 {
		t.Errorf("emitted %d nodes, want 12:\n%s", nodes, out)
	}
	edges := strings.Count(out, " -> ")
	if edges != 11 {
		t.Errorf("emitted %d edges, want 11:\n%s", edges, out)
	}
	if !strings.Contains(out, `"SEQUENCE (2 queries) MAXSPAN 30s"`) {
		t.Errorf("missing root label:\n%s", out)
	}
	// edges point from input to consumer; the root is n0
	if !strings.Contains(out, "n1 -> n0;") {
		t.Errorf("missing edge into the root:\n%s", out)
	}
}
