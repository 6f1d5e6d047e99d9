package channelmap

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"compassevb/decode"
)

// InvalidLocalChannel and InvalidLocalDetID are the sentinel values a
// channel-map line without the optional 4th/5th tokens leaves in place.
const (
	InvalidLocalChannel = -1
	InvalidLocalDetID   = -1
)

// ErrUnknownRole is fatal: a channel-map line named a role spelling this
// package doesn't recognize.
var ErrUnknownRole = errors.New("channelmap: unrecognized role")

// Data is the role and optional per-detector local indices a single
// (board, channel) pair maps to.
type Data struct {
	Role         Role
	LocalChannel int32
	LocalDetID   int32
}

func defaultData() Data {
	return Data{Role: RoleNone, LocalChannel: InvalidLocalChannel, LocalDetID: InvalidLocalDetID}
}

// Map is a read-only, uuid-keyed lookup from (board, channel) to Data.
// Once built it is never mutated, so it is safe to share by reference
// across every run in a job.
type Map struct {
	byUUID map[uint32]Data
}

// New parses a channel-map file: whitespace-separated lines of either
// "board channel role" or "board channel role local_channel local_det_id".
// A line with fewer than 3 tokens is a blank and is skipped. An
// unrecognized role name is fatal. A (board, channel) pair repeated on a
// later line overwrites the earlier one, the same as a plain map insert.
func New(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("channelmap: open %s: %w", path, err)
	}
	defer f.Close()

	m := &Map{byUUID: make(map[uint32]Data)}
	var seen []uint32

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}

		board, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("channelmap: %s line %d: board: %w", path, lineNo, err)
		}
		channel, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("channelmap: %s line %d: channel: %w", path, lineNo, err)
		}

		role, ok := ParseRole(fields[2])
		if !ok {
			return nil, fmt.Errorf("channelmap: %s line %d: %q: %w", path, lineNo, fields[2], ErrUnknownRole)
		}

		data := defaultData()
		data.Role = role
		if len(fields) == 5 {
			lc, err := strconv.ParseInt(fields[3], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("channelmap: %s line %d: local_channel: %w", path, lineNo, err)
			}
			ld, err := strconv.ParseInt(fields[4], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("channelmap: %s line %d: local_det_id: %w", path, lineNo, err)
			}
			data.LocalChannel = int32(lc)
			data.LocalDetID = int32(ld)
		}

		uuid := decode.Pair(uint32(board), uint32(channel))
		m.byUUID[uuid] = data
		seen = append(seen, uuid)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("channelmap: read %s: %w", path, err)
	}

	if dups := lo.FindDuplicates(seen); len(dups) > 0 {
		// Non-fatal: the map is still well-defined (last line wins), but a
		// duplicated (board, channel) pair is almost always a transcription
		// mistake worth surfacing.
		for _, d := range dups {
			b, c := decode.Unpair(d)
			fmt.Fprintf(os.Stderr, "channelmap: %s: board %d channel %d mapped more than once, last line wins\n", path, b, c)
		}
	}

	return m, nil
}

// Get returns the role data for a uuid, or the RoleNone default if the
// uuid was never mapped.
func (m *Map) Get(uuid uint32) Data {
	if d, ok := m.byUUID[uuid]; ok {
		return d
	}
	return defaultData()
}
