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

package trace

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Open loads the configuration file from workDir, redirects the trace
// output to a freshly randomized ".ae.log" file in workDir, and
// constructs a Checker that immediately emits the startup line. The
// returned file must be closed by the caller once analysis completes.
func Open(workDir string, opts ...Option) (*Checker, *os.File, error) {
	cfg, stats, cfgErr := LoadConfig(filepath.Join(workDir, ConfigFile))

	logPath := filepath.Join(workDir, RandomLogName(time.Now()))
	f, err := os.Create(logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("tracecheck: creating output file: %w", err)
	}

	out := NewOutput(f)
	reportConfigLoad(out, workDir, cfgErr, stats)

	c := NewChecker(cfg, out, opts...)
	return c, f, nil
}

func reportConfigLoad(out *Output, workDir string, err error, stats LoadStats) {
	if err != nil {
		abs, absErr := filepath.Abs(filepath.Join(workDir, ConfigFile))
		if absErr != nil {
			abs = filepath.Join(workDir, ConfigFile)
		}
		log.Printf("tracecheck: failed to load %s: %s", abs, err)
		out.raw(fmt.Sprintf("Failed to load %s", abs))
		out.raw("")
		return
	}
	out.raw("Success:")
	out.raw(fmt.Sprintf("%d normal functions added", stats.Interesting))
	out.raw(fmt.Sprintf("%d exit functions added", stats.Exit))
	out.raw("")
}
