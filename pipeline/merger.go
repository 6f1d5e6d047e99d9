// Package pipeline holds the two synchronous stages that sit between raw
// decoded hits and the per-event physics transformation: a k-way
// time-ordered Merger and a sliding coincidence-window EventBuilder.
package pipeline

import "compassevb/decode"

// source is the subset of *decode.Source the Merger needs, named so tests
// can merge plain in-memory hit lists without writing binary files.
type source interface {
	Peek() (decode.Hit, error)
	Consume()
	IsEOF() bool
}

// Merger holds one source per data file and repeatedly selects the source
// whose current hit has the smallest timestamp, emitting hits in
// non-decreasing global order with ties broken by source index.
// Complexity is O(N*K) in hits N and sources K via linear scan; for the
// expected K (tens of files) this matches the reference design and keeps
// the hot loop allocation-free.
type Merger struct {
	sources []source
}

// NewMerger wraps a slice of sources. Order matters only as the tie-break
// key: a source earlier in the slice wins a timestamp tie.
func NewMerger(sources ...source) *Merger {
	return &Merger{sources: sources}
}

// NewMergerFromSources is the entry point callers outside this package
// use, since source is unexported: it wraps concrete *decode.Source
// values the same way NewMerger wraps the test-only source interface.
func NewMergerFromSources(sources []*decode.Source) *Merger {
	wrapped := make([]source, len(sources))
	for i, s := range sources {
		wrapped[i] = s
	}
	return &Merger{sources: wrapped}
}

// Next returns the next globally-ordered hit and true, or the zero Hit and
// false once every source is exhausted.
func (m *Merger) Next() (decode.Hit, bool, error) {
	earliest := -1
	var earliestHit decode.Hit

	for i, s := range m.sources {
		if s.IsEOF() {
			continue
		}
		hit, err := s.Peek()
		if err != nil {
			return decode.Hit{}, false, err
		}
		if s.IsEOF() {
			continue
		}
		if earliest == -1 || hit.Timestamp < earliestHit.Timestamp {
			earliest = i
			earliestHit = hit
		}
	}

	if earliest == -1 {
		return decode.Hit{}, false, nil
	}
	m.sources[earliest].Consume()
	return earliestHit, true, nil
}
