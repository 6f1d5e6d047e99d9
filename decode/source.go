package decode

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// bufferHits is the buffered-reader size target, expressed in whole
// records: roughly 24000 hits' worth of bytes per refill.
const bufferHits = 24000

// Source is a single hit file opened for streamed, peekable reading. It
// decodes the two-byte header once at construction, then serves
// fixed-width records through Peek/Consume so a Merger can compare the
// current hit across many sources without re-parsing.
type Source struct {
	file       *os.File
	br         *bufio.Reader
	mask       HeaderMask
	recordSize int
	totalHits  uint64

	shiftNS func(uuid uint32) float64
	rng     Rng

	current Hit
	used    bool
	eof     bool
}

// Open reads path's header, validates it, sizes the buffered reader and
// the total-hit-count estimate, and returns a Source ready for Peek.
// shiftNS looks up a per-uuid time shift (nanoseconds); it must return 0
// for an unrecognized uuid, matching shiftmap.Map's contract. rng supplies
// the dithering offset applied to energy and energy_short.
func Open(path string, shiftNS func(uuid uint32) float64, rng Rng) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode: stat %s: %w", path, err)
	}
	if info.Size() < 2 {
		f.Close()
		return nil, fmt.Errorf("decode: %s: %w", path, ErrShortHeader)
	}

	var hdr [2]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, fmt.Errorf("decode: read header %s: %w", path, err)
	}
	mask := HeaderMask(binary.LittleEndian.Uint16(hdr[:]))
	if mask&MaskWaves != 0 {
		f.Close()
		return nil, fmt.Errorf("decode: %s: %w", path, ErrWaves)
	}

	recSize := RecordSize(mask)
	total := uint64(0)
	if info.Size() > 2 {
		total = uint64(info.Size()-2) / uint64(recSize)
	}

	return &Source{
		file:       f,
		br:         bufio.NewReaderSize(f, recSize*bufferHits),
		mask:       mask,
		recordSize: recSize,
		totalHits:  total,
		shiftNS:    shiftNS,
		rng:        rng,
		used:       true,
	}, nil
}

// TotalHits returns the hit count estimated at construction from file size,
// used for progress reporting.
func (s *Source) TotalHits() uint64 {
	return s.totalHits
}

// IsEOF reports whether this source has no more hits to offer. The Merger
// skips EOF sources.
func (s *Source) IsEOF() bool {
	return s.eof
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	return s.file.Close()
}

// Peek returns the current decoded hit without consuming it. Repeated
// calls without an intervening Consume return the same hit. Once the
// source is exhausted, Peek returns the EOF sentinel hit and IsEOF
// becomes true.
func (s *Source) Peek() (Hit, error) {
	if s.used {
		hit, err := s.decodeOne()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.eof = true
				s.current = InvalidHit()
			} else {
				return Hit{}, err
			}
		} else {
			s.current = hit
		}
		s.used = false
	}
	return s.current, nil
}

// Consume marks the current hit as used; the next Peek decodes the
// following record.
func (s *Source) Consume() {
	s.used = true
}

func (s *Source) decodeOne() (Hit, error) {
	buf := make([]byte, s.recordSize)
	if _, err := io.ReadFull(s.br, buf); err != nil {
		return Hit{}, err
	}

	var raw RawHit
	off := 0
	raw.Board = binary.LittleEndian.Uint16(buf[off:])
	off += 2
	raw.Channel = binary.LittleEndian.Uint16(buf[off:])
	off += 2
	raw.TimestampPS = binary.LittleEndian.Uint64(buf[off:])
	off += 8

	if s.mask&MaskEnergy != 0 {
		raw.Energy = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}
	if s.mask&MaskEnergyCalibrated != 0 {
		raw.EnergyCalibrated = binary.LittleEndian.Uint64(buf[off:])
		off += 8
	}
	if s.mask&MaskEnergyShort != 0 {
		raw.EnergyShort = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}
	raw.Flags = binary.LittleEndian.Uint32(buf[off:])

	return NewHit(raw, s.shiftNS, s.rng), nil
}
