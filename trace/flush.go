package trace

import (
	"strconv"
	"strings"

	"github.com/stealthrocket/tracecheck/host"
)

const exitMarker = "$"

// debugAssert panics if cond is false. It backs the invariant that a
// frame already marked printed is never flushed a second time; cheap
// enough to leave compiled in always.
func debugAssert(cond bool, msg string) {
	if !cond {
		panic("trace: assertion failed: " + msg)
	}
}

// callerStart is idempotent: the first PreCall or PreStmt in a frame
// snapshots the current top counter as that frame's entry point;
// subsequent calls in the same frame are no-ops.
func callerStart(s host.StateStore) host.StateStore {
	if isStarted(s) {
		return s
	}
	depth := s.Depth()
	s = s.Set(tableLengthSnapshot, depth, getTop(s))
	s = setStarted(s, true)
	return s
}

// callerEnd is the flush procedure and single authoritative emitter. It
// renders and emits the frame's accumulated return sites followed by the
// caller's own outcome, then marks the frame
// printed so a later call (PreReturn followed by EndFunction on the same
// path, for instance) is a no-op.
func callerEnd(c *Checker, s host.StateStore, callerName string, loc host.SourceLocation, retText string, exit bool, cm host.ConstraintManager) host.StateStore {
	depth := s.Depth()

	if st, ok := getSimpleStatus(s, depth); ok && st.seen && !st.printed {
		s = s.Set(tableSimpleStatus, depth, simpleStatus{printed: true, seen: true, depth: depth})
	}

	row, ok := getFrameRow(s, depth)
	if !ok || row.printed {
		return s
	}
	debugAssert(!row.printed, "callerEnd flushing an already-printed frame")

	base, hasLen := getLengthSnapshot(s, depth)
	if !hasLen {
		if depth == outermostDepth {
			base = 0
		} else {
			return s // stale frame, no entry point recorded: nothing to emit
		}
	}

	segments := make([]string, 0, row.entries+1)
	for i := 0; i < row.entries; i++ {
		key := rowKey{depth: depth, index: i}
		site, ok := getReturnSite(s, key)
		if !ok {
			continue
		}
		segments = append(segments, site.render(s, base, i == 0, cm))
		s = s.Remove(tableReturnSites, key)
		base = site.lengthAt
		if !site.fixed {
			s = release(s, site.symbol)
		}
	}

	s = s.Set(tableFrameRows, depth, frameRow{entries: 0, printed: true})

	top := getTop(s)
	var self strings.Builder
	self.WriteString("#")
	self.WriteString(strconv.Itoa(top - base))
	self.WriteString("@")
	self.WriteString(callerName)
	self.WriteString(" ")
	self.WriteString(loc.String())
	self.WriteString(";")
	self.WriteString(retText)
	if exit {
		self.WriteString(exitMarker)
	}
	segments = append(segments, self.String())

	c.out.emit(strings.Join(segments, " "))
	c.recordSample(segments)

	return s
}

// outermostDepth is the stack depth of the outermost analyzed function.
// The host assigns depths; callerEnd treats this one specially when no
// length snapshot has been recorded, using 0 as the base instead.
const outermostDepth = 1
