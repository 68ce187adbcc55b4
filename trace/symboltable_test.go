package trace

import (
	"testing"

	"github.com/stealthrocket/tracecheck/host"
)

func TestAcquireReleaseRefcount(t *testing.T) {
	s := host.StateStore(host.NewMapStore(1))
	sym := fakeSymbol("x")
	v := fakeValue{sym: sym, expr: fakeExpr{leaves: []host.Symbol{sym}}, hasExpr: true}
	sv := newSymbolValue(1, host.Int, v, fakeConstraints{})
	if sv.known {
		t.Fatalf("a value with a symbol and no concrete int must not be known")
	}

	s = acquire(s, sv)
	s = acquire(s, sv)
	count, ok := host.Get[int](s, tableSymbolRefs, sym)
	if !ok || count != 2 {
		t.Fatalf("refcount after two acquires = %d, want 2", count)
	}

	s = release(s, sym)
	count, ok = host.Get[int](s, tableSymbolRefs, sym)
	if !ok || count != 1 {
		t.Fatalf("refcount after one release = %d, want 1", count)
	}

	s = release(s, sym)
	if _, ok := host.Get[int](s, tableSymbolRefs, sym); ok {
		t.Fatalf("refcount entry should be gone once it reaches zero")
	}
	if _, ok := lookupSymbolValue(s, sym); ok {
		t.Fatalf("symbol value entry should be gone once refcount reaches zero")
	}
}

func TestAcquireKnownValueIsNoop(t *testing.T) {
	s := host.StateStore(host.NewMapStore(1))
	v := fakeValue{n: 4, hasN: true}
	sv := newSymbolValue(1, host.Int, v, fakeConstraints{})
	if !sv.known {
		t.Fatalf("a concrete int must be known immediately")
	}

	before := s
	s = acquire(s, sv)
	if s != before {
		t.Fatalf("acquire of a known value must not touch the store")
	}
}

func TestFinalizeIsStickyAndSnapshotsRendering(t *testing.T) {
	s := host.StateStore(host.NewMapStore(1))
	sym := fakeSymbol("x")
	v := fakeValue{sym: sym, expr: fakeExpr{leaves: []host.Symbol{sym}}, hasExpr: true}
	sv := newSymbolValue(1, host.Int, v, fakeConstraints{})
	s = acquire(s, sv)

	cmAtDeath := fakeConstraints{texts: map[host.Symbol]string{sym: "7"}}
	s = finalizeSymbol(s, sym, cmAtDeath)

	finalized, ok := lookupSymbolValue(s, sym)
	if !ok || !finalized.known {
		t.Fatalf("finalizeSymbol must leave a known entry")
	}
	if want := `I&expr:=x:=7\`; finalized.text != want {
		t.Errorf("finalized text = %q, want %q", finalized.text, want)
	}

	// A later render under different constraints must reuse the frozen text.
	laterCM := fakeConstraints{texts: map[host.Symbol]string{sym: "999"}}
	if got := finalized.print(laterCM); got != want {
		t.Errorf("print() after finalize = %q, want frozen %q", got, want)
	}

	// Finalizing again must be a no-op (finalization stickiness).
	again := finalized.finalize(laterCM)
	if again.text != finalized.text {
		t.Errorf("re-finalizing changed the frozen text: got %q, want %q", again.text, finalized.text)
	}
}

func TestIsFixed(t *testing.T) {
	if !isFixed(fakeValue{n: 1, hasN: true}) {
		t.Errorf("a concrete value with no symbol/expr must be fixed")
	}
	sym := fakeSymbol("x")
	if isFixed(fakeValue{sym: sym}) {
		t.Errorf("a value carrying a symbol must not be fixed")
	}
}
