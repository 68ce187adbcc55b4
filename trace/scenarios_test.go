package trace_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stealthrocket/tracecheck/host"
	"github.com/stealthrocket/tracecheck/hostsim"
	"github.com/stealthrocket/tracecheck/trace"
)

// outputLines returns the emitted lines following the fixed "NEW FILE"
// startup line, so scenario assertions only see what the scripted
// program itself produced.
func outputLines(t *testing.T, raw string) []string {
	t.Helper()
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")
	if len(lines) == 0 || lines[0] != trace.Preamble+": NEW FILE" {
		t.Fatalf("missing startup line in output: %q", raw)
	}
	return lines[1:]
}

func runScript(t *testing.T, cfg trace.Config, prog *hostsim.Program, opts ...trace.Option) []string {
	t.Helper()
	var buf bytes.Buffer
	checker := trace.NewChecker(cfg, trace.NewOutput(&buf), opts...)
	if err := hostsim.NewInterpreter(checker, prog).Run(); err != nil {
		t.Fatalf("Run: %s", err)
	}
	return outputLines(t, buf.String())
}

// S1: f calls g() (interesting, concrete Int 3), then returns 0.
func TestScenarioS1(t *testing.T) {
	prog := &hostsim.Program{
		Entry: "f",
		Functions: map[string]*hostsim.Function{
			"f": {
				Name: "f", ReturnType: host.Int, File: "f.c",
				Body: []hostsim.Instr{
					hostsim.CallInstr{Callee: "g", Line: 1, ResultType: host.Int, Result: hostsim.Arg{Int: 3}},
					hostsim.ReturnInstr{Line: 2, Value: hostsim.Arg{Int: 0}},
				},
			},
		},
	}
	cfg := trace.Config{Interesting: map[string]struct{}{"g": {}}, Exit: map[string]struct{}{}}

	lines := runScript(t, cfg, prog)
	if len(lines) != 1 {
		t.Fatalf("got %d emitted lines, want 1: %v", len(lines), lines)
	}
	line := lines[0]
	if !strings.Contains(line, "AutoEPEx: g f.c:1:0;I3") {
		t.Errorf("line missing g's rendered return site: %q", line)
	}
	if !strings.HasSuffix(line, ";I0") {
		t.Errorf("line does not end with f's own return value: %q", line)
	}
}

// S2: f calls may_fail() (interesting pointer, possibly null) then exit(1).
func TestScenarioS2(t *testing.T) {
	prog := &hostsim.Program{
		Entry: "f",
		Functions: map[string]*hostsim.Function{
			"f": {
				Name: "f", ReturnType: host.Int, File: "f.c",
				Body: []hostsim.Instr{
					hostsim.CallInstr{Callee: "may_fail", Line: 1, ResultType: host.Pointer, Result: hostsim.Arg{Symbol: "p"}},
					hostsim.CallInstr{Callee: "exit", Line: 2, ResultType: host.Int, Args: []hostsim.Arg{{Int: 1}}, Result: hostsim.Arg{Int: 0}},
				},
			},
		},
	}
	cfg := trace.Config{
		Interesting: map[string]struct{}{"may_fail": {}},
		Exit:        map[string]struct{}{"exit": {}},
	}

	lines := runScript(t, cfg, prog)
	if len(lines) != 1 {
		t.Fatalf("got %d emitted lines, want 1: %v", len(lines), lines)
	}
	line := lines[0]
	if !strings.Contains(line, "may_fail") || !strings.Contains(line, "notnull or null") {
		t.Errorf("line missing may_fail's unresolved pointer rendering: %q", line)
	}
	if !strings.HasSuffix(line, "I1$") {
		t.Errorf("exit line must end in the exit-annotated literal return: %q", line)
	}
}

// S3: f calls g() (symbolic Int), branches on it; two distinct lines with
// path-specific constraint text are expected.
func TestScenarioS3(t *testing.T) {
	prog := &hostsim.Program{
		Entry: "f",
		Functions: map[string]*hostsim.Function{
			"f": {
				Name: "f", ReturnType: host.Int, File: "f.c",
				Body: []hostsim.Instr{
					hostsim.CallInstr{Callee: "g", Line: 1, ResultType: host.Int, Result: hostsim.Arg{Symbol: "gv"}},
					hostsim.BranchInstr{
						Line: 2, On: "gv",
						Then: []hostsim.Instr{hostsim.ReturnInstr{Line: 3, Value: hostsim.Arg{Int: 1}}},
						Else: []hostsim.Instr{hostsim.ReturnInstr{Line: 4, Value: hostsim.Arg{Int: 0}}},
					},
				},
			},
		},
	}
	cfg := trace.Config{Interesting: map[string]struct{}{"g": {}}, Exit: map[string]struct{}{}}

	lines := runScript(t, cfg, prog)
	if len(lines) != 2 {
		t.Fatalf("got %d emitted lines, want 2 (one per branch): %v", len(lines), lines)
	}
	var sawNonzero, sawZero bool
	for _, line := range lines {
		if strings.Contains(line, "gv != 0") {
			sawNonzero = true
		}
		if strings.Contains(line, "gv == 0") {
			sawZero = true
		}
	}
	if !sawNonzero || !sawZero {
		t.Errorf("expected one line per branch constraint, got: %v", lines)
	}
}

// S4: f has no interesting calls and returns void: nothing is emitted.
func TestScenarioS4(t *testing.T) {
	prog := &hostsim.Program{
		Entry: "f",
		Functions: map[string]*hostsim.Function{
			"f": {
				Name: "f", ReturnType: host.Void, File: "f.c",
				Body: []hostsim.Instr{
					hostsim.ReturnInstr{Line: 1, IsVoid: true},
				},
			},
		},
	}
	cfg := trace.Config{Interesting: map[string]struct{}{}, Exit: map[string]struct{}{}}

	lines := runScript(t, cfg, prog)
	if len(lines) != 0 {
		t.Fatalf("a function with no interesting calls must emit nothing, got: %v", lines)
	}
}

// S5: configuration file missing; any recognized-type call is tracked,
// and the failure is reported once.
func TestScenarioS5(t *testing.T) {
	dir := t.TempDir()

	checker, f, err := trace.Open(dir)
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	defer f.Close()

	prog := &hostsim.Program{
		Entry: "f",
		Functions: map[string]*hostsim.Function{
			"f": {
				Name: "f", ReturnType: host.Int, File: "f.c",
				Body: []hostsim.Instr{
					hostsim.CallInstr{Callee: "h", Line: 1, ResultType: host.Int, Result: hostsim.Arg{Int: 9}},
					hostsim.ReturnInstr{Line: 2, Value: hostsim.Arg{Int: 0}},
				},
			},
		},
	}
	if err := hostsim.NewInterpreter(checker, prog).Run(); err != nil {
		t.Fatalf("Run: %s", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(f.Name())))
	if err != nil {
		t.Fatalf("reading log: %s", err)
	}
	content := string(data)
	if !strings.Contains(content, "Failed to load") {
		t.Errorf("missing config-load failure diagnostic: %q", content)
	}
	if !strings.Contains(content, "h f.c:1:0;I9") {
		t.Errorf("call to h was not tracked despite an empty interesting set: %q", content)
	}
}

// S6: statement-counting mode measures segment lengths in statements
// rather than calls.
func TestScenarioS6(t *testing.T) {
	body := []hostsim.Instr{}
	for i := 0; i < 5; i++ {
		body = append(body, hostsim.StmtInstr{Line: i + 1})
	}
	body = append(body, hostsim.CallInstr{Callee: "g", Line: 6, ResultType: host.Int, Result: hostsim.Arg{Int: 1}})
	for i := 0; i < 3; i++ {
		body = append(body, hostsim.StmtInstr{Line: 7 + i})
	}
	body = append(body, hostsim.ReturnInstr{Line: 10, IsVoid: true})

	prog := &hostsim.Program{
		Entry: "f",
		Functions: map[string]*hostsim.Function{
			"f": {Name: "f", ReturnType: host.Void, File: "f.c", Body: body},
		},
	}
	cfg := trace.Config{Interesting: map[string]struct{}{"g": {}}, Exit: map[string]struct{}{}}

	lines := runScript(t, cfg, prog, trace.CountStatements(true))
	if len(lines) != 1 {
		t.Fatalf("got %d emitted lines, want 1: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "#3@f") {
		t.Errorf("expected a 3-statement segment after g, got: %q", lines[0])
	}
}
