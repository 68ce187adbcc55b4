//  Copyright 2023 Stealth Rocket, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package trace implements the per-path trace assembler: a finite state
// machine, keyed off a host.StateStore that the driving engine clones at
// every branch, which reconstructs a compact textual trace of
// interesting calls and their eventual outcome for each analyzed
// function along each feasible path.
package trace

import "github.com/stealthrocket/tracecheck/host"

const endFunctionLoc = "function_end:0:0"

type fixedLocation string

func (l fixedLocation) String() string { return string(l) }

// Checker is the façade wiring the event handlers, frame stack, symbol
// table, and output sink together.
type Checker struct {
	config          Config
	countStatements bool
	out             *Output
	profile         *profileAccumulator
}

// Option configures a Checker at construction.
type Option func(*Checker)

// CountStatements switches the checker's length counter from
// call-counting (the default) to statement-counting.
func CountStatements(enabled bool) Option {
	return func(c *Checker) { c.countStatements = enabled }
}

// WithProfile enables accumulation of a pprof profile of call-count
// samples alongside the text trace (see profile.go).
func WithProfile() Option {
	return func(c *Checker) { c.profile = newProfileAccumulator() }
}

// NewChecker constructs a Checker over the given configuration and
// output sink. It immediately emits a startup line.
func NewChecker(cfg Config, out *Output, opts ...Option) *Checker {
	c := &Checker{config: cfg, out: out}
	for _, opt := range opts {
		opt(c)
	}
	c.out.emit("NEW FILE")
	return c
}

// PreReturn flushes the current frame using the return expression's
// value and type, or Void for a bare return.
func (c *Checker) PreReturn(s host.StateStore, caller host.FunctionDecl, retVal host.Value, retType host.TypeTag, loc host.SourceLocation, cm host.ConstraintManager) host.StateStore {
	retText := VoidMarker
	if retVal != nil {
		retText = printValue(retVal, retType, cm)
	}
	return callerEnd(c, s, caller.Name(), loc, retText, false, cm)
}

// EndFunction flushes the frame if it hasn't been already, then restores
// the parent frame's scalar counter and erases this depth's bookkeeping.
func (c *Checker) EndFunction(s host.StateStore, caller host.FunctionDecl, cm host.ConstraintManager) host.StateStore {
	s = callerEnd(c, s, caller.Name(), fixedLocation(endFunctionLoc), VoidMarker, false, cm)

	depth := s.Depth()
	if n, ok := getLengthSnapshot(s, depth); ok {
		s = s.Remove(tableLengthSnapshot, depth)
		s = setTop(s, n)
	}
	s = clearDepthState(s, depth)
	return s
}

// VoidMarker is the printable form of a Void-typed return.
const VoidMarker = "V"

func (c *Checker) recordSample(segments []string) {
	if c.profile == nil {
		return
	}
	c.profile.record(segments)
}

// Snapshot returns the accumulated pprof profile, or nil if profiling
// was not enabled with WithProfile.
func (c *Checker) Snapshot() *Profile {
	if c.profile == nil {
		return nil
	}
	return c.profile.build()
}
