package trace

import (
	"strconv"

	"github.com/stealthrocket/tracecheck/host"
)

const (
	tableFrameRows      = "frameRows"
	tableReturnSites    = "returnSites"
	tableLengthSnapshot = "lengthSnapshot"
	tableSimpleStatus   = "simpleStatus"
	tableScalars        = "scalars"

	scalarTop     = "top"
	scalarStarted = "started"
)

// frameRow tracks the number of return-site entries appended at a
// depth, and whether that depth has already been flushed.
type frameRow struct {
	entries int
	printed bool
}

// rowKey addresses one entry within a depth's frame row.
type rowKey struct {
	depth int
	index int
}

// simpleStatus tracks whether an interesting call has been seen at a
// depth (set by PostCall through markSeen) and whether that depth has
// already been printed.
type simpleStatus struct {
	printed bool
	seen    bool
	depth   int
}

// returnSite is one recorded call's entry in a frame. Symbolic sites
// keep only the symbol handle, not a copy of its value: the printable
// form lives in tableSymbolValues and is looked up at render time, so a
// DeadSymbols finalization that lands before the frame flushes is
// actually observed.
type returnSite struct {
	tick       uint64
	calleeName string
	location   host.SourceLocation
	depth      int
	lengthAt   int
	fixed      bool
	fixedText  string
	symbol     host.Symbol
}

// render produces this entry's segment of the trace line. offset is
// the running base (the previous anchor's length); first
// suppresses the leading "#N@" anchor for the first entry in a frame.
func (rs returnSite) render(s host.StateStore, offset int, first bool, cm host.ConstraintManager) string {
	var out string
	if !first {
		out += "#" + strconv.Itoa(rs.lengthAt-offset) + "@"
	}
	out += rs.calleeName + " " + rs.location.String() + ";"
	if rs.fixed {
		out += rs.fixedText
	} else if sv, ok := lookupSymbolValue(s, rs.symbol); ok {
		out += sv.print(cm)
	}
	return out
}

func getFrameRow(s host.StateStore, depth int) (frameRow, bool) {
	return host.Get[frameRow](s, tableFrameRows, depth)
}

func getReturnSite(s host.StateStore, key rowKey) (returnSite, bool) {
	return host.Get[returnSite](s, tableReturnSites, key)
}

func getSimpleStatus(s host.StateStore, depth int) (simpleStatus, bool) {
	return host.Get[simpleStatus](s, tableSimpleStatus, depth)
}

func getLengthSnapshot(s host.StateStore, depth int) (int, bool) {
	return host.Get[int](s, tableLengthSnapshot, depth)
}

func getTop(s host.StateStore) int {
	n, _ := host.Get[int](s, tableScalars, scalarTop)
	return n
}

func setTop(s host.StateStore, n int) host.StateStore {
	return s.Set(tableScalars, scalarTop, n)
}

func isStarted(s host.StateStore) bool {
	v, _ := host.Get[bool](s, tableScalars, scalarStarted)
	return v
}

func setStarted(s host.StateStore, started bool) host.StateStore {
	return s.Set(tableScalars, scalarStarted, started)
}

// appendReturnSite reserves the next slot in depth's frame row. It
// returns the updated store and the index of the reserved slot.
func appendReturnSite(s host.StateStore, depth int) (host.StateStore, int) {
	row, ok := getFrameRow(s, depth)
	if !ok || row.printed {
		index := 0
		if ok {
			index = row.entries
		}
		s = s.Set(tableFrameRows, depth, frameRow{entries: index + 1, printed: false})
		return s, index
	}
	index := row.entries
	s = s.Set(tableFrameRows, depth, frameRow{entries: index + 1, printed: row.printed})
	return s, index
}

func markSeen(s host.StateStore, depth int) host.StateStore {
	st, ok := getSimpleStatus(s, depth)
	if ok && (st.printed || st.seen) {
		return s
	}
	return s.Set(tableSimpleStatus, depth, simpleStatus{printed: false, seen: true, depth: depth})
}

func clearDepthState(s host.StateStore, depth int) host.StateStore {
	s = s.Remove(tableFrameRows, depth)
	s = s.Remove(tableSimpleStatus, depth)
	s = s.Remove(tableLengthSnapshot, depth)
	return s
}
