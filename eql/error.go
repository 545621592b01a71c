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
	"fmt"

	"github.com/eventql/eventql/expr"
)

// ErrorKind classifies the structural errors the builder can produce.
type ErrorKind int

const (
	// ErrInconsistentKeys flags a correlated term whose join-key
	// count differs from the first term's.
	ErrInconsistentKeys ErrorKind = iota
	// ErrUnsupported flags a surface construct that is deliberately
	// not accepted, such as a sequence fork.
	ErrUnsupported
	// ErrInvalidSpan flags a maxspan magnitude that is not a
	// positive integer literal.
	ErrInvalidSpan
	// ErrBadTimeUnit flags a maxspan unit spelling outside the
	// accepted set.
	ErrBadTimeUnit
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInconsistentKeys:
		return "inconsistent join keys"
	case ErrUnsupported:
		return "unsupported construct"
	case ErrInvalidSpan:
		return "invalid span magnitude"
	case ErrBadTimeUnit:
		return "unrecognized time unit"
	}
	return "unknown error"
}

// ParseError is a structural error found while building a plan.
// Every ParseError aborts the whole build; there is no recovery
// and no partial result.
type ParseError struct {
	Kind ErrorKind
	At   expr.Source
	Msg  string
}

// Error implements error
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.At.Line, e.At.Column, e.Msg)
}

func errorf(kind ErrorKind, at expr.Source, f string, args ...interface{}) error {
	return &ParseError{Kind: kind, At: at, Msg: fmt.Sprintf(f, args...)}
}
