package trace

import "github.com/stealthrocket/tracecheck/host"

const scalarTick = "tick"

// nextTick returns a state with its tick counter advanced, and the tick
// value to stamp a new record with. A monotonic per-state counter is
// used instead of a wall-clock timestamp, since wall-clock ticks are not
// reproducible and may collide under a fast event stream.
func nextTick(s host.StateStore) (host.StateStore, uint64) {
	tick, _ := host.Get[uint64](s, tableScalars, scalarTick)
	tick++
	return s.Set(tableScalars, scalarTick, tick), tick
}

// PreCall starts the caller's frame if this is the first event seen in
// it, advances the call counter (when not counting statements), flushes
// an exit trace if the callee terminates the program, and reserves a row
// for the callee's return value if the callee is of interest.
func (c *Checker) PreCall(s host.StateStore, caller host.FunctionDecl, call host.CallEvent, cm host.ConstraintManager) host.StateStore {
	s = callerStart(s)

	if !c.countStatements {
		s = setTop(s, getTop(s)+1)
	}

	calleeName, ok := call.CalleeName()
	if !ok {
		s = setStarted(s, false)
		return s
	}

	loc := call.Location()

	if c.config.isExit(calleeName) {
		s = c.handleExit(s, caller, call, loc, cm)
	}

	if c.config.careFunction(calleeName, call.ResultType()) {
		depth := s.Depth()
		row, rowOK := getFrameRow(s, depth)
		if !rowOK || !row.printed {
			s, _ = appendReturnSite(s, depth)
		}
	}

	// Anything the callee does from here counts as the callee's frame,
	// not the current one.
	s = setStarted(s, false)
	return s
}

// dummyExitReturn is the synthesized error return for a zero-argument
// exit call, written out literally rather than rendered through
// printValue since there is no real symbol behind it.
const dummyExitReturn = "I&abort_return:=-1"

// handleExit handles a call to a configured exit function: it
// immediately flushes the current frame with exit=true, using
// dummyExitReturn as the return text if the callee takes no arguments.
func (c *Checker) handleExit(s host.StateStore, caller host.FunctionDecl, call host.CallEvent, loc host.SourceLocation, cm host.ConstraintManager) host.StateStore {
	args := call.Args()
	if len(args) == 0 {
		return callerEnd(c, s, caller.Name(), loc, dummyExitReturn, true, cm)
	}
	argTypes := call.ArgTypes()
	var t host.TypeTag
	if len(argTypes) > 0 {
		t = argTypes[0]
	}
	return callerEnd(c, s, caller.Name(), loc, printValue(args[0], t, cm), true, cm)
}

// PostCall resumes the caller's frame, fills the most recently reserved
// row with the callee's return value, and marks the frame as having
// seen interesting activity.
func (c *Checker) PostCall(s host.StateStore, call host.CallEvent, cm host.ConstraintManager) host.StateStore {
	if !isStarted(s) {
		s = setStarted(s, true)
	}

	calleeName, ok := call.CalleeName()
	if !ok {
		return s
	}
	resultType := call.ResultType()
	if !c.config.careFunction(calleeName, resultType) {
		return s
	}

	depth := s.Depth()
	row, ok := getFrameRow(s, depth)
	if !ok || row.printed {
		return s
	}

	var tick uint64
	s, tick = nextTick(s)
	sv := newSymbolValue(tick, resultType, call.ReturnValue(), cm)

	index := row.entries - 1
	key := rowKey{depth: depth, index: index}
	site := returnSite{
		tick:       tick,
		calleeName: calleeName,
		location:   call.Location(),
		depth:      depth,
		lengthAt:   getTop(s),
		fixed:      sv.known,
	}
	if sv.known {
		site.fixedText = sv.text
	} else {
		sym, _ := sv.value.Symbol()
		site.symbol = sym
	}
	s = s.Set(tableReturnSites, key, site)
	s = acquire(s, sv)

	s = markSeen(s, depth)
	return s
}

// PreStmt (statement-counting mode only) starts the frame if needed and
// advances the counter.
func (c *Checker) PreStmt(s host.StateStore) host.StateStore {
	if !c.countStatements {
		return s
	}
	s = callerStart(s)
	return setTop(s, getTop(s)+1)
}

// DeadSymbols snapshots the printable form of every symbol about to be
// garbage-collected by the host, while its constraints are still live.
func (c *Checker) DeadSymbols(s host.StateStore, dead []host.Symbol, cm host.ConstraintManager) host.StateStore {
	for _, sym := range dead {
		s = finalizeSymbol(s, sym, cm)
	}
	return s
}
