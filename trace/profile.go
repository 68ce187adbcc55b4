package trace

import (
	"hash/maphash"
	"io"
	"strings"
	"sync"

	"github.com/google/pprof/profile"
	"golang.org/x/exp/slices"
)

// Profile wraps a pprof profile.Profile built from the call-count
// samples a Checker accumulates when constructed WithProfile. It gives
// the text trace a second, machine-readable output without changing the
// trace line grammar.
type Profile struct {
	p *profile.Profile
}

// Write serializes the profile in pprof's gzip+protobuf wire format.
func (pr *Profile) Write(w io.Writer) error {
	return pr.p.Write(w)
}

type callPathSample struct {
	calleeNames []string
	count       int64
}

var profileHashSeed = maphash.MakeSeed()

func (s callPathSample) key() uint64 {
	var h maphash.Hash
	h.SetSeed(profileHashSeed)
	for _, n := range s.calleeNames {
		h.WriteString(n)
		h.WriteByte(0)
	}
	return h.Sum64()
}

// profileAccumulator turns flushed frames into pprof samples: one sample
// per distinct sequence of names in a flushed line (the interesting
// callees observed in a frame, followed by the flushed function's own
// name), with a "calls" value counting how many times that exact
// sequence was flushed across all explored paths.
type profileAccumulator struct {
	mu      sync.Mutex
	samples map[uint64]*callPathSample
}

func newProfileAccumulator() *profileAccumulator {
	return &profileAccumulator{samples: map[uint64]*callPathSample{}}
}

// record is called with the rendered segments of a single flushed frame
// (flush.go's callerEnd); it extracts the name portion of every segment
// (the text after any leading "#N@" anchor and before the first space)
// to build the sample's call path.
func (a *profileAccumulator) record(segments []string) {
	names := make([]string, 0, len(segments))
	for _, seg := range segments {
		names = append(names, calleeNameOf(seg))
	}

	s := callPathSample{calleeNames: names}
	key := s.key()

	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.samples[key]; ok {
		existing.count++
		return
	}
	s.calleeNames = slices.Clone(names)
	s.count = 1
	a.samples[key] = &s
}

func calleeNameOf(segment string) string {
	seg := segment
	if i := strings.IndexByte(seg, '@'); i >= 0 {
		seg = seg[i+1:]
	}
	if i := strings.IndexByte(seg, ' '); i >= 0 {
		seg = seg[:i]
	}
	return strings.TrimSuffix(seg, exitMarker)
}

func (a *profileAccumulator) build() *Profile {
	a.mu.Lock()
	defer a.mu.Unlock()

	prof := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "calls", Unit: "count"},
		},
	}

	funcs := map[string]*profile.Function{}
	locs := map[string]*profile.Location{}

	for _, s := range a.samples {
		locations := make([]*profile.Location, len(s.calleeNames))
		for i, name := range s.calleeNames {
			locations[len(s.calleeNames)-1-i] = locationFor(prof, funcs, locs, name)
		}
		prof.Sample = append(prof.Sample, &profile.Sample{
			Location: locations,
			Value:    []int64{s.count},
		})
	}

	return &Profile{p: prof}
}

func locationFor(prof *profile.Profile, funcs map[string]*profile.Function, locs map[string]*profile.Location, name string) *profile.Location {
	if loc, ok := locs[name]; ok {
		return loc
	}

	fn, ok := funcs[name]
	if !ok {
		fn = &profile.Function{
			ID:         uint64(len(funcs)) + 1,
			Name:       name,
			SystemName: name,
		}
		funcs[name] = fn
		prof.Function = append(prof.Function, fn)
	}

	loc := &profile.Location{
		ID:   uint64(len(locs)) + 1,
		Line: []profile.Line{{Function: fn}},
	}
	locs[name] = loc
	prof.Location = append(prof.Location, loc)
	return loc
}
