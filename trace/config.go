package trace

import (
	"bufio"
	"io"
	"os"

	"github.com/dlclark/regexp2"
	"github.com/stealthrocket/tracecheck/host"
)

// ConfigFile is the well-known configuration file name.
const ConfigFile = "analyze_func_list.txt"

// MaxConfigLineLen is the maximum allowed line length in the
// configuration file.
const MaxConfigLineLen = 2048

const exitFuncMarker = '0'

// configLine recognizes a non-empty configuration line and splits off a
// leading exit-function marker byte, capturing the remaining function
// name. A real pattern engine (rather than hand-rolled byte scanning) is
// used here because the grammar — an optional single-byte marker
// followed by an arbitrary (possibly templated/mangled) C++ identifier —
// is exactly the kind of line-oriented text regexp2's backtracking
// engine is built for, and because future marker bytes are easiest to
// add as alternation rather than more special-cased index arithmetic.
var configLine = regexp2.MustCompile(`^(0)?(\S.*)$`, regexp2.None)

// Config holds the interesting/exit function name sets. An empty
// Interesting set means "any function with a tracked return type".
type Config struct {
	Interesting map[string]struct{}
	Exit        map[string]struct{}
}

// LoadStats reports how many names were loaded, for the startup
// diagnostic lines.
type LoadStats struct {
	Interesting int
	Exit        int
}

// LoadConfig reads name in the working directory and populates a
// Config. A missing or unreadable file is tolerated: it yields an empty
// Config (meaning "track everything with a recognized return type") and
// a non-nil error the caller should log, not fail on.
func LoadConfig(name string) (Config, LoadStats, error) {
	f, err := os.Open(name)
	if err != nil {
		return Config{Interesting: map[string]struct{}{}, Exit: map[string]struct{}{}}, LoadStats{}, err
	}
	defer f.Close()
	return parseConfig(f)
}

func parseConfig(r io.Reader) (Config, LoadStats, error) {
	cfg := Config{
		Interesting: map[string]struct{}{},
		Exit:        map[string]struct{}{},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, MaxConfigLineLen), MaxConfigLineLen)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if len(line) > MaxConfigLineLen {
			line = line[:MaxConfigLineLen]
		}

		m, err := configLine.FindStringMatch(line)
		if err != nil || m == nil {
			continue
		}
		groups := m.Groups()
		marker := groups[1].String()
		name := groups[2].String()
		if name == "" {
			continue
		}

		if marker == string(exitFuncMarker) {
			cfg.Exit[name] = struct{}{}
		} else {
			cfg.Interesting[name] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, LoadStats{}, err
	}

	return cfg, LoadStats{Interesting: len(cfg.Interesting), Exit: len(cfg.Exit)}, nil
}

// careFunction reports whether callee should be tracked: either the
// interesting set is empty (track anything with a typed return) or
// callee is listed, and its return type must be recognized.
func (c Config) careFunction(callee string, resultType host.TypeTag) bool {
	if len(c.Interesting) > 0 {
		if _, ok := c.Interesting[callee]; !ok {
			return false
		}
	}
	return resultType != host.Unknown && resultType != host.Void
}

func (c Config) isExit(callee string) bool {
	_, ok := c.Exit[callee]
	return ok
}
