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

// Package host declares the contract a symbolic-execution engine must
// satisfy to drive a trace.Checker. The engine itself is an external
// collaborator (it enumerates feasible paths, clones state at branches,
// and resolves symbolic values against accumulated constraints); this
// package only names the shape of what it hands to the checker at each
// event, the way wazero's experimental package names the shape of a
// FunctionListener without implementing a guest runtime itself.
package host

// TypeTag identifies how a Value should be rendered. It is a closed set:
// Unknown is a real case, not an out-of-range sentinel.
type TypeTag int

const (
	Int TypeTag = iota
	Bool
	Pointer
	Void
	Unknown
)

func (t TypeTag) String() string {
	switch t {
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Pointer:
		return "pointer"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// Symbol is an opaque identity for a symbolic value leaf. Engines are free
// to back it with whatever representation they use internally; the
// checker only ever compares symbols for equality and uses them as map
// keys.
type Symbol interface {
	// Dump renders the symbol's own textual form, as it would appear on
	// the left of ":=" in a constraint dump.
	Dump() string
}

// Expr is a symbolic expression tree. Leaves returns its leaf symbols in
// declaration order.
type Expr interface {
	Dump() string
	Leaves() []Symbol
}

// Value is a (possibly symbolic) runtime value produced by a call or a
// return expression.
type Value interface {
	// ConcreteInt returns the value's exact integer value and true if it
	// fits a signed 64-bit slot. Values that are symbolic, or whose
	// active bit width exceeds 64, return ok=false.
	ConcreteInt() (v int64, ok bool)
	// Symbol returns the single symbol identifying this value, if the
	// value is fully described by one (no compound expression).
	Symbol() (Symbol, bool)
	// Expr returns the symbolic expression backing this value, if any.
	Expr() (Expr, bool)
	// IsUndef reports whether the value carries no information at all
	// (neither concrete nor constrained).
	IsUndef() bool
}

// ConstraintManager prints accumulated constraints for a symbol and
// answers feasibility questions about assuming a value true or false,
// under the constraints of the current path.
type ConstraintManager interface {
	// Print renders the constraints known about sym at this point on the
	// path, in the engine's own notation.
	Print(sym Symbol) string
	// AssumeTrue reports whether the path remains feasible after
	// assuming v is nonzero/true/non-null.
	AssumeTrue(v Value) bool
	// AssumeFalse reports whether the path remains feasible after
	// assuming v is zero/false/null.
	AssumeFalse(v Value) bool
}

// SourceLocation formats as "path:line:col".
type SourceLocation interface {
	String() string
}

// CallEvent describes a call site, as seen from PreCall/PostCall.
type CallEvent interface {
	// CalleeName returns the called function's name, and false if the
	// callee could not be identified (e.g. an indirect call through a
	// function pointer whose target is unresolved).
	CalleeName() (string, bool)
	Args() []Value
	ArgTypes() []TypeTag
	ResultType() TypeTag
	// ReturnValue is only meaningful from PostCall.
	ReturnValue() Value
	Location() SourceLocation
}

// FunctionDecl describes the function currently being analyzed, as seen
// from PreReturn/EndFunction.
type FunctionDecl interface {
	Name() string
	ReturnType() TypeTag
}

// StateStore is the per-path table of typed, keyed state the engine
// clones at every branch point and discards on infeasible paths. Each
// table is namespaced by a string key so unrelated concerns (frame rows,
// length counters, symbol values, refcounts, simple status) don't
// collide, and Clone is assumed cheap (copy-on-write) because engines
// call it on every feasible branch.
type StateStore interface {
	// Get returns the value stored for (table, key) and whether an
	// entry was present. Callers use the package-level generic Get
	// helper to recover a typed value.
	Get(table string, key any) (any, bool)
	// Set stores value for (table, key), returning the updated store.
	// Implementations must not mutate the receiver in place if Clone has
	// been called on it since the last Set: callers treat StateStore as
	// persistent.
	Set(table string, key any, value any) StateStore
	// Remove deletes the entry for (table, key), returning the updated
	// store.
	Remove(table string, key any) StateStore
	// Depth is the current stack depth (distance from the outermost
	// function under analysis).
	Depth() int
	// Clone returns a copy-on-write snapshot suitable for handing to a
	// sibling path.
	Clone() StateStore
}

// Get loads a typed value stored for (table, key) in s. It reports false
// if no entry is present or the stored value is not a T.
func Get[T any](s StateStore, table string, key any) (T, bool) {
	var zero T
	v, ok := s.Get(table, key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
