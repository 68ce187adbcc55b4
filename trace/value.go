package trace

import (
	"strconv"
	"strings"

	"github.com/stealthrocket/tracecheck/host"
)

const (
	prefixInt     = "I"
	prefixBool    = "B"
	prefixPointer = "P"
	prefixVoid    = "V"

	symbolPrefix = "&"
	assignMarker = ":="
	intAssignEnd = `\`
	unknownDelim = " or "
)

var typePrefix = [...]string{
	host.Int:     prefixInt,
	host.Bool:    prefixBool,
	host.Pointer: prefixPointer,
	host.Void:    prefixVoid,
	host.Unknown: "",
}

var nonzeroMarker = [...]string{
	host.Bool:    "true",
	host.Pointer: "notnull",
}

var zeroMarker = [...]string{
	host.Bool:    "false",
	host.Pointer: "null",
}

// printValue renders v, typed as t, into a printable value string. It is
// deterministic for a given (v, t, constraints).
func printValue(v host.Value, t host.TypeTag, cm host.ConstraintManager) string {
	var b strings.Builder

	if int(t) < 0 || int(t) >= len(typePrefix) {
		return b.String()
	}
	b.WriteString(typePrefix[t])

	if t == host.Void || t == host.Unknown {
		return b.String()
	}

	if expr, ok := v.Expr(); ok {
		b.WriteString(symbolPrefix)
		b.WriteString(expr.Dump())
		b.WriteString(assignMarker)
	}

	switch t {
	case host.Int:
		writeIntBody(&b, v, cm)
	case host.Bool, host.Pointer:
		writeBinaryBody(&b, v, t, cm)
	}

	return b.String()
}

func writeIntBody(b *strings.Builder, v host.Value, cm host.ConstraintManager) {
	if n, ok := v.ConcreteInt(); ok {
		b.WriteString(strconv.FormatInt(n, 10))
		return
	}
	expr, ok := v.Expr()
	if !ok {
		return
	}
	for _, leaf := range expr.Leaves() {
		b.WriteString(leaf.Dump())
		b.WriteString(assignMarker)
		b.WriteString(cm.Print(leaf))
		b.WriteString(intAssignEnd)
	}
}

// writeBinaryBody prints whether a Bool/Pointer value is possibly
// nonzero, possibly zero, or both, using explicit branches rather than a
// fallthrough switch since the two type tags use different literal text.
func writeBinaryBody(b *strings.Builder, v host.Value, t host.TypeTag, cm host.ConstraintManager) {
	if v.IsUndef() {
		b.WriteString(nonzeroMarker[t])
		b.WriteString(unknownDelim)
		b.WriteString(zeroMarker[t])
		return
	}

	nonzeroPossible := cm.AssumeTrue(v)
	zeroPossible := cm.AssumeFalse(v)

	if nonzeroPossible {
		b.WriteString(nonzeroMarker[t])
	}
	if zeroPossible {
		if nonzeroPossible {
			b.WriteString(unknownDelim)
		}
		b.WriteString(zeroMarker[t])
	}
}
