// Package hostsim is reference test/demo infrastructure: a tiny scripted
// program format and interpreter implementing the host package's
// interfaces, grounded on wazerotest (experimental/wazerotest) — the
// teacher's own fake host used to drive a FunctionListener without a
// real guest runtime. hostsim plays the same role for trace.Checker: it
// is not a C/C++ symbolic executor, carries no constraint solving beyond
// the boolean assume/refute pairs host.ConstraintManager requires, and
// must never be mistaken for a production symbolic-execution engine.
package hostsim

import (
	"fmt"

	"github.com/stealthrocket/tracecheck/host"
)

// symbol identifies one scripted symbolic value by name.
type symbol string

func (s symbol) Dump() string { return string(s) }

// leafExpr is a single-symbol expression: every symbolic value in this
// reference host is an unadorned leaf (no compound arithmetic), which is
// sufficient to exercise the multi-leaf rendering path in trace/value.go
// for the common case of one leaf per value.
type leafExpr struct{ sym symbol }

func (e leafExpr) Dump() string         { return e.sym.Dump() }
func (e leafExpr) Leaves() []host.Symbol { return []host.Symbol{e.sym} }

// value is the concrete host.Value implementation hostsim hands to the
// checker. A value is either a concrete integer, or symbolic and
// resolved against the path's constraints at print time.
type value struct {
	concrete   int64
	hasConcete bool
	sym        symbol
	isSymbolic bool
	undef      bool
}

func concreteInt(n int64) value { return value{concrete: n, hasConcete: true} }

func symbolicValue(name string) value {
	return value{sym: symbol(name), isSymbolic: true}
}

func undefValue() value { return value{undef: true} }

func (v value) ConcreteInt() (int64, bool) { return v.concrete, v.hasConcete }

func (v value) Symbol() (host.Symbol, bool) {
	if v.isSymbolic {
		return v.sym, true
	}
	return nil, false
}

func (v value) Expr() (host.Expr, bool) {
	if v.isSymbolic {
		return leafExpr{sym: v.sym}, true
	}
	return nil, false
}

func (v value) IsUndef() bool { return v.undef }

// polarity records what a path has assumed about a symbol: unconstrained,
// assumed nonzero/true/nonnull, or assumed zero/false/null.
type polarity int

const (
	unconstrained polarity = iota
	assumedNonzero
	assumedZero
)

// constraints is a per-path constraint manager backed by a plain map, set
// by BranchInstr and read by trace/value.go's printValue through the
// host.ConstraintManager interface.
type constraints struct {
	assumed map[symbol]polarity
	text    map[symbol]string
}

func newConstraints() *constraints {
	return &constraints{assumed: map[symbol]polarity{}, text: map[symbol]string{}}
}

// clone returns an independent copy suitable for a sibling branch.
func (c *constraints) clone() *constraints {
	next := newConstraints()
	for k, v := range c.assumed {
		next.assumed[k] = v
	}
	for k, v := range c.text {
		next.text[k] = v
	}
	return next
}

func (c *constraints) assumeNonzero(s symbol, text string) {
	c.assumed[s] = assumedNonzero
	c.text[s] = text
}

func (c *constraints) assumeZero(s symbol, text string) {
	c.assumed[s] = assumedZero
	c.text[s] = text
}

func (c *constraints) Print(sym host.Symbol) string {
	s, ok := sym.(symbol)
	if !ok {
		return ""
	}
	if text, ok := c.text[s]; ok {
		return text
	}
	return fmt.Sprintf("%s unconstrained", s)
}

func (c *constraints) AssumeTrue(v host.Value) bool {
	sym, ok := v.Symbol()
	if !ok {
		return true
	}
	s, ok := sym.(symbol)
	if !ok {
		return true
	}
	return c.assumed[s] != assumedZero
}

func (c *constraints) AssumeFalse(v host.Value) bool {
	sym, ok := v.Symbol()
	if !ok {
		return true
	}
	s, ok := sym.(symbol)
	if !ok {
		return true
	}
	return c.assumed[s] != assumedNonzero
}

var _ host.ConstraintManager = (*constraints)(nil)
