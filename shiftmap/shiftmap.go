package shiftmap

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"compassevb/decode"
)

// Map is a read-only, uuid-keyed lookup from (board, channel) to a time
// shift in nanoseconds. A uuid absent from the file contributes no shift.
type Map struct {
	byUUID map[uint32]float64
}

// New parses a shift-map file: one discarded header line, then
// whitespace-separated "board channel shift_ns" lines.
func New(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("shiftmap: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	m := &Map{byUUID: make(map[uint32]float64)}

	if !scanner.Scan() {
		// Header-only or empty file; nothing more to read.
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("shiftmap: read header %s: %w", path, err)
		}
		return m, nil
	}

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("shiftmap: %s line %d: expected 3 fields, got %d", path, lineNo, len(fields))
		}

		board, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("shiftmap: %s line %d: board: %w", path, lineNo, err)
		}
		channel, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("shiftmap: %s line %d: channel: %w", path, lineNo, err)
		}
		shift, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("shiftmap: %s line %d: shift_ns: %w", path, lineNo, err)
		}

		m.byUUID[decode.Pair(uint32(board), uint32(channel))] = shift
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("shiftmap: read %s: %w", path, err)
	}

	return m, nil
}

// Get returns the timeshift in nanoseconds for uuid, or 0 if unknown.
func (m *Map) Get(uuid uint32) float64 {
	return m.byUUID[uuid]
}

// Lookup adapts Map to the plain function signature decode.NewHit expects,
// so a *Map (or nil, for "no shift map configured") can be passed straight
// into a decode.Source.
func (m *Map) Lookup() func(uint32) float64 {
	if m == nil {
		return func(uint32) float64 { return 0 }
	}
	return m.Get
}
