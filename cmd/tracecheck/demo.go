package main

import (
	"github.com/stealthrocket/tracecheck/host"
	"github.com/stealthrocket/tracecheck/hostsim"
	"github.com/stealthrocket/tracecheck/trace"
)

// demoInterpreter wires up a small built-in program: process_request
// allocates a buffer through a pointer-returning malloc call and then
// calls exit(1) unconditionally. It exists so `tracecheck run` has
// something to drive against a real checker without requiring a script
// file format.
func demoInterpreter(checker *trace.Checker) *hostsim.Interpreter {
	prog := &hostsim.Program{
		Entry: "process_request",
		Functions: map[string]*hostsim.Function{
			"process_request": {
				Name:       "process_request",
				ReturnType: host.Int,
				File:       "demo.c",
				Body: []hostsim.Instr{
					hostsim.CallInstr{
						Callee: "malloc", Line: 12, ResultType: host.Pointer,
						Args:   []hostsim.Arg{{Int: 64}},
						Result: hostsim.Arg{Symbol: "buf"},
					},
					hostsim.CallInstr{
						Callee: "exit", Line: 14, ResultType: host.Int,
						Args: []hostsim.Arg{{Int: 1}},
					},
				},
			},
		},
	}
	return hostsim.NewInterpreter(checker, prog)
}
