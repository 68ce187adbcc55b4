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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/stealthrocket/tracecheck/trace"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type program struct {
	workDir         string
	countStatements bool
	profilePath     string
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tracecheck <run|selftest> [flags]")
	}

	switch args[0] {
	case "run":
		return runCommand(args[1:])
	case "selftest":
		return selftestCommand(args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q: usage: tracecheck <run|selftest> [flags]", args[0])
	}
}

func runCommand(args []string) error {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	prog := &program{}
	flags.StringVar(&prog.workDir, "workdir", ".", "Directory holding analyze_func_list.txt; the trace log is written here.")
	flags.BoolVar(&prog.countStatements, "statements", false, "Count segment lengths in statements instead of calls.")
	flags.StringVar(&prog.profilePath, "profile", "", "If set, write a pprof profile of call-count samples to this path.")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return prog.run()
}

func (prog *program) run() error {
	var opts []trace.Option
	if prog.countStatements {
		opts = append(opts, trace.CountStatements(true))
	}
	if prog.profilePath != "" {
		opts = append(opts, trace.WithProfile())
	}

	checker, f, err := trace.Open(prog.workDir, opts...)
	if err != nil {
		return fmt.Errorf("opening checker: %w", err)
	}
	defer f.Close()

	if err := demoInterpreter(checker).Run(); err != nil {
		return fmt.Errorf("running demo program: %w", err)
	}

	if prog.profilePath != "" {
		if snap := checker.Snapshot(); snap != nil {
			pf, err := os.Create(prog.profilePath)
			if err != nil {
				return fmt.Errorf("creating profile file: %w", err)
			}
			defer pf.Close()
			if err := snap.Write(pf); err != nil {
				return fmt.Errorf("writing profile: %w", err)
			}
		}
	}

	return nil
}

func selftestCommand(args []string) error {
	flags := pflag.NewFlagSet("selftest", pflag.ContinueOnError)
	verbose := flags.BoolP("verbose", "v", false, "Print every scenario's rendered trace lines.")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return runScenarios(*verbose)
}
