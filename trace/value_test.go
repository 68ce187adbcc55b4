package trace

import (
	"testing"

	"github.com/stealthrocket/tracecheck/host"
)

type fakeSymbol string

func (s fakeSymbol) Dump() string { return string(s) }

type fakeExpr struct{ leaves []host.Symbol }

func (e fakeExpr) Dump() string          { return "expr" }
func (e fakeExpr) Leaves() []host.Symbol { return e.leaves }

type fakeValue struct {
	n        int64
	hasN     bool
	sym      host.Symbol
	expr     host.Expr
	hasExpr  bool
	undef    bool
}

func (v fakeValue) ConcreteInt() (int64, bool) { return v.n, v.hasN }
func (v fakeValue) Symbol() (host.Symbol, bool) {
	if v.sym != nil {
		return v.sym, true
	}
	return nil, false
}
func (v fakeValue) Expr() (host.Expr, bool) { return v.expr, v.hasExpr }
func (v fakeValue) IsUndef() bool           { return v.undef }

type fakeConstraints struct {
	texts      map[host.Symbol]string
	assumeTrue bool
	assumeFalse bool
}

func (c fakeConstraints) Print(sym host.Symbol) string { return c.texts[sym] }
func (c fakeConstraints) AssumeTrue(host.Value) bool   { return c.assumeTrue }
func (c fakeConstraints) AssumeFalse(host.Value) bool  { return c.assumeFalse }

func TestPrintValueConcreteInt(t *testing.T) {
	v := fakeValue{n: 3, hasN: true}
	got := printValue(v, host.Int, fakeConstraints{})
	if want := "I3"; got != want {
		t.Errorf("printValue() = %q, want %q", got, want)
	}
}

func TestPrintValueSymbolicInt(t *testing.T) {
	sym := fakeSymbol("x")
	v := fakeValue{sym: sym, expr: fakeExpr{leaves: []host.Symbol{sym}}, hasExpr: true}
	cm := fakeConstraints{texts: map[host.Symbol]string{sym: "5"}}

	got := printValue(v, host.Int, cm)
	if want := `I&expr:=x:=5\`; got != want {
		t.Errorf("printValue() = %q, want %q", got, want)
	}
}

func TestPrintValuePointerBothPossible(t *testing.T) {
	sym := fakeSymbol("p")
	v := fakeValue{sym: sym, expr: fakeExpr{leaves: []host.Symbol{sym}}, hasExpr: true}
	cm := fakeConstraints{assumeTrue: true, assumeFalse: true}

	got := printValue(v, host.Pointer, cm)
	if want := "P&expr:=notnull or null"; got != want {
		t.Errorf("printValue() = %q, want %q", got, want)
	}
}

func TestPrintValuePointerOnlyNonzero(t *testing.T) {
	v := fakeValue{}
	cm := fakeConstraints{assumeTrue: true, assumeFalse: false}

	got := printValue(v, host.Pointer, cm)
	if want := "Pnotnull"; got != want {
		t.Errorf("printValue() = %q, want %q", got, want)
	}
}

func TestPrintValueUndefBool(t *testing.T) {
	v := fakeValue{undef: true}
	got := printValue(v, host.Bool, fakeConstraints{})
	if want := "Btrue or false"; got != want {
		t.Errorf("printValue() = %q, want %q", got, want)
	}
}

func TestPrintValueVoidAndUnknownAreBare(t *testing.T) {
	v := fakeValue{n: 1, hasN: true}
	if got := printValue(v, host.Void, fakeConstraints{}); got != "V" {
		t.Errorf("Void printValue() = %q, want %q", got, "V")
	}
	if got := printValue(v, host.Unknown, fakeConstraints{}); got != "" {
		t.Errorf("Unknown printValue() = %q, want empty", got)
	}
}

func TestPrintValueOutOfRangeTag(t *testing.T) {
	v := fakeValue{n: 1, hasN: true}
	got := printValue(v, host.TypeTag(99), fakeConstraints{})
	if got != "" {
		t.Errorf("out-of-range tag should render empty, got %q", got)
	}
}
