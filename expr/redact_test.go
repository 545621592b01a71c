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
	"strings"
	"testing"
)

func TestToRedacted(t *testing.T) {
	cond := And(
		Compare(Equals, attr("file.hash"), String("deadbeef")),
		Compare(Greater, attr("process.pid"), Integer(4)),
	)
	red := ToRedacted(cond)
	if red == ToString(cond) {
		t.Fatalf("constants not redacted: %q", red)
	}
	if strings.Contains(red, "deadbeef") {
		t.Errorf("literal leaked into redacted form: %q", red)
	}
	if !strings.Contains(red, "file.hash") {
		t.Errorf("attribute names should survive redaction: %q", red)
	}
	if red != ToRedacted(cond) {
		t.Error("redaction must be deterministic")
	}
	// redaction is display-only; the node is unchanged
	if !strings.Contains(ToString(cond), "deadbeef") {
		t.Error("redaction modified the expression")
	}
}
