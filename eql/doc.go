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

// Package eql builds logical query plans from parsed EQL queries.
//
// The package sits between a frontend that turns query text into the
// typed inputs defined here (EventQuery, Join, Sequence) and the
// downstream resolver/optimizer that consumes the resulting plan tree.
// It injects the implicit defaults of the language - the
// event-category match and the ascending timestamp ordering - and
// validates the structural rules of correlations: consistent join-key
// counts across terms, the constant-false fallback for a missing
// until clause, and canonical time spans for sequence bounds.
//
// Building is a single synchronous pass; it either returns a complete
// plan or the first structural error found, never a partial plan.
// Builders share no mutable state and may be used concurrently.
package eql
