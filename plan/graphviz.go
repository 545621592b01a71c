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
	"io"
)

// Graphviz dumps the plan 'p'
// to 'dst' as dot(1)-compatible text.
func Graphviz(p Logical, dst io.Writer) error {
	_, err := io.WriteString(dst, "digraph plan {\n")
	if err != nil {
		return err
	}
	_, err = gv(p, dst, 0)
	if err != nil {
		return err
	}
	_, err = io.WriteString(dst, "}\n")
	return err
}

// gv writes the subtree rooted at p with node ids starting at id;
// edges point from input to consumer, so data flows along the arrows.
// It returns the next free id.
func gv(p Logical, dst io.Writer, id int) (int, error) {
	self := id
	_, err := fmt.Fprintf(dst, "n%d [label=%q];\n", self, p.String())
	if err != nil {
		return id, err
	}
	id++
	for _, c := range p.children() {
		child := id
		id, err = gv(c, dst, id)
		if err != nil {
			return id, err
		}
		_, err = fmt.Fprintf(dst, "n%d -> n%d;\n", child, self)
		if err != nil {
			return id, err
		}
	}
	return id, nil
}
