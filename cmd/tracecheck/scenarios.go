package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/stealthrocket/tracecheck/host"
	"github.com/stealthrocket/tracecheck/hostsim"
	"github.com/stealthrocket/tracecheck/trace"
)

// scenario is one named check: a program to run, the config to run it
// under, and a predicate over the rendered output lines.
type scenario struct {
	name  string
	cfg   trace.Config
	prog  *hostsim.Program
	opts  []trace.Option
	check func(lines []string) error
}

// runScenarios drives the built-in set of scenarios and reports a
// PASS/FAIL summary to stdout, returning an error if any failed.
func runScenarios(verbose bool) error {
	scenarios := []scenario{
		{
			name: "S1 concrete call then concrete return",
			cfg:  trace.Config{Interesting: map[string]struct{}{"g": {}}, Exit: map[string]struct{}{}},
			prog: singleCallProgram("g", host.Int, hostsim.Arg{Int: 3}, hostsim.Arg{Int: 0}),
			check: func(lines []string) error {
				return expectLineCount(lines, 1)
			},
		},
		{
			name: "S2 unresolved pointer then exit",
			cfg: trace.Config{
				Interesting: map[string]struct{}{"may_fail": {}},
				Exit:        map[string]struct{}{"exit": {}},
			},
			prog: exitProgram(),
			check: func(lines []string) error {
				if err := expectLineCount(lines, 1); err != nil {
					return err
				}
				if !strings.HasSuffix(lines[0], "$") {
					return fmt.Errorf("expected an exit-annotated line, got %q", lines[0])
				}
				return nil
			},
		},
		{
			name: "S4 no interesting calls emits nothing",
			cfg:  trace.Config{Interesting: map[string]struct{}{}, Exit: map[string]struct{}{}},
			prog: voidProgram(),
			check: func(lines []string) error {
				return expectLineCount(lines, 0)
			},
		},
	}

	failures := 0
	for _, sc := range scenarios {
		lines, err := runScenario(sc)
		if err == nil {
			err = sc.check(lines)
		}
		if err != nil {
			failures++
			fmt.Printf("FAIL %s: %s\n", sc.name, err)
		} else {
			fmt.Printf("PASS %s\n", sc.name)
		}
		if verbose {
			for _, l := range lines {
				fmt.Printf("    %s\n", l)
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d scenario(s) failed", failures)
	}
	return nil
}

func runScenario(sc scenario) ([]string, error) {
	var buf bytes.Buffer
	checker := trace.NewChecker(sc.cfg, trace.NewOutput(&buf), sc.opts...)
	if err := hostsim.NewInterpreter(checker, sc.prog).Run(); err != nil {
		return nil, err
	}

	raw := strings.TrimRight(buf.String(), "\n")
	all := strings.Split(raw, "\n")
	if len(all) == 0 {
		return nil, fmt.Errorf("no output at all, missing startup line")
	}
	return all[1:], nil
}

func expectLineCount(lines []string, n int) error {
	if len(lines) != n {
		return fmt.Errorf("got %d emitted lines, want %d: %v", len(lines), n, lines)
	}
	return nil
}

func singleCallProgram(callee string, resultType host.TypeTag, callResult, retValue hostsim.Arg) *hostsim.Program {
	return &hostsim.Program{
		Entry: "f",
		Functions: map[string]*hostsim.Function{
			"f": {
				Name: "f", ReturnType: host.Int, File: "f.c",
				Body: []hostsim.Instr{
					hostsim.CallInstr{Callee: callee, Line: 1, ResultType: resultType, Result: callResult},
					hostsim.ReturnInstr{Line: 2, Value: retValue},
				},
			},
		},
	}
}

func exitProgram() *hostsim.Program {
	return &hostsim.Program{
		Entry: "f",
		Functions: map[string]*hostsim.Function{
			"f": {
				Name: "f", ReturnType: host.Int, File: "f.c",
				Body: []hostsim.Instr{
					hostsim.CallInstr{Callee: "may_fail", Line: 1, ResultType: host.Pointer, Result: hostsim.Arg{Symbol: "p"}},
					hostsim.CallInstr{Callee: "exit", Line: 2, ResultType: host.Int, Args: []hostsim.Arg{{Int: 1}}},
				},
			},
		},
	}
}

func voidProgram() *hostsim.Program {
	return &hostsim.Program{
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
}
