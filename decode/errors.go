package decode

import "errors"

// ErrWaves is returned when a hit file's header bitmask declares waveform
// data. Waveform records are never decoded; the file is rejected outright.
var ErrWaves = errors.New("decode: waveform data is not supported")

// ErrTruncated names a record that starts but ends before its fixed width
// can be fully read. Source does not return it: Peek treats a partial
// trailing record as the end of the stream.
var ErrTruncated = errors.New("decode: truncated record")

// ErrShortHeader is returned when a file is too small to even contain the
// two-byte header bitmask.
var ErrShortHeader = errors.New("decode: file too short for header")
