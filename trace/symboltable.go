package trace

import "github.com/stealthrocket/tracecheck/host"

const (
	tableSymbolValues = "symbolValues"
	tableSymbolRefs   = "symbolRefs"
)

// symbolValue tracks one symbol's current printable rendering: once
// known becomes true it is frozen and never flips back.
type symbolValue struct {
	tick   uint64
	typ    host.TypeTag
	known  bool
	text   string
	value  host.Value
	symbol host.Symbol
}

func newSymbolValue(tick uint64, t host.TypeTag, v host.Value, cm host.ConstraintManager) symbolValue {
	sv := symbolValue{tick: tick, typ: t}
	if sym, ok := v.Symbol(); ok && !isFixed(v) {
		sv.symbol = sym
		sv.value = v
		return sv
	}
	sv.known = true
	sv.text = printValue(v, t, cm)
	return sv
}

// finalize returns the frozen form of sv, snapshotting its printable
// rendering under the constraints valid right now. Once known it stays
// known.
func (sv symbolValue) finalize(cm host.ConstraintManager) symbolValue {
	if sv.known {
		return sv
	}
	sv.known = true
	sv.text = printValue(sv.value, sv.typ, cm)
	sv.value = nil
	return sv
}

func (sv symbolValue) print(cm host.ConstraintManager) string {
	if sv.known {
		return sv.text
	}
	return printValue(sv.value, sv.typ, cm)
}

// isFixed reports whether v is exactly known, i.e. it carries no symbol.
func isFixed(v host.Value) bool {
	_, hasSymbol := v.Symbol()
	_, hasExpr := v.Expr()
	return !hasSymbol && !hasExpr
}

// acquire installs or bumps the refcount for a symbolic value. It is a
// no-op for fully-known values.
func acquire(s host.StateStore, sv symbolValue) host.StateStore {
	if sv.known {
		return s
	}
	count, ok := host.Get[int](s, tableSymbolRefs, sv.symbol)
	if !ok {
		s = s.Set(tableSymbolRefs, sv.symbol, 1)
		s = s.Set(tableSymbolValues, sv.symbol, sv)
		return s
	}
	return s.Set(tableSymbolRefs, sv.symbol, count+1)
}

// release decrements the refcount for sym, dropping both the count and
// the value entry once it reaches zero.
func release(s host.StateStore, sym host.Symbol) host.StateStore {
	count, ok := host.Get[int](s, tableSymbolRefs, sym)
	if !ok {
		return s
	}
	if count <= 1 {
		s = s.Remove(tableSymbolRefs, sym)
		s = s.Remove(tableSymbolValues, sym)
		return s
	}
	return s.Set(tableSymbolRefs, sym, count-1)
}

// finalizeSymbol replaces the entry for sym with its finalized form, if
// present.
func finalizeSymbol(s host.StateStore, sym host.Symbol, cm host.ConstraintManager) host.StateStore {
	sv, ok := host.Get[symbolValue](s, tableSymbolValues, sym)
	if !ok {
		return s
	}
	return s.Set(tableSymbolValues, sym, sv.finalize(cm))
}

func lookupSymbolValue(s host.StateStore, sym host.Symbol) (symbolValue, bool) {
	return host.Get[symbolValue](s, tableSymbolValues, sym)
}
