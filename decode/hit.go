package decode

// HeaderMask is the two-byte little-endian bitmask that announces a hit
// file's per-record layout.
type HeaderMask uint16

const (
	MaskEnergy           HeaderMask = 0x0001
	MaskEnergyShort      HeaderMask = 0x0002
	MaskEnergyCalibrated HeaderMask = 0x0004
	MaskWaves            HeaderMask = 0x0008
)

// baseRecordBytes is board(2) + channel(2) + timestamp(8) + flags(4).
const baseRecordBytes = 16

// RecordSize returns the fixed record width in bytes implied by mask.
// Field order on the wire is board, channel, timestamp, [energy],
// [energy_calibrated], [energy_short], flags -- energy_short is written
// after energy_calibrated even though its bit (0x0002) is lower than
// energy_calibrated's (0x0004). This is a producer-dictated wire contract;
// callers must never reorder it.
func RecordSize(mask HeaderMask) int {
	size := baseRecordBytes
	if mask&MaskEnergy != 0 {
		size += 2
	}
	if mask&MaskEnergyCalibrated != 0 {
		size += 8
	}
	if mask&MaskEnergyShort != 0 {
		size += 2
	}
	return size
}

// RawHit is a single digitizer record exactly as decoded off the wire,
// before UUID derivation, unit conversion, or dithering.
type RawHit struct {
	Board            uint16
	Channel          uint16
	TimestampPS      uint64
	Energy           uint16
	EnergyCalibrated uint64
	EnergyShort      uint16
	Flags            uint32
}

// Hit is a normalized, merge-ready record: a board/channel pair collapsed
// into one UUID, energies cast to float64 and dithered, and the timestamp
// converted from picoseconds to shifted nanoseconds.
type Hit struct {
	UUID        uint32
	Energy      float64
	EnergyShort float64
	Timestamp   float64
}

// InvalidHit is the EOF sentinel: a zero-timestamp hit that a Source
// returns once it has no more data. IsInvalid reports timestamp == 0
// exactly, matching the producer convention that a genuine hit's
// timestamp is always > 0 (see the Invariants in the data model).
func InvalidHit() Hit {
	return Hit{}
}

// IsInvalid reports whether h is the EOF sentinel.
func (h Hit) IsInvalid() bool {
	return h.Timestamp == 0
}

// Pair derives the bijective uint32 identifier for a (board, channel)
// pair using a Cantor-style pairing. This exact formula must be preserved:
// the channel map and shift map are keyed by the uuid it produces.
func Pair(board, channel uint32) uint32 {
	if board >= channel {
		return board*board + board + channel
	}
	return channel*channel + board
}

// Unpair inverts Pair, recovering (board, channel) from a uuid.
func Unpair(uuid uint32) (board, channel uint32) {
	s := uint32(isqrt(uint64(uuid)))
	t := uuid - s*s
	if t >= s {
		return s, t - s
	}
	return t, s
}

// isqrt computes floor(sqrt(n)) without relying on float64 rounding at the
// top of the uint32 range, where math.Sqrt can be off by one.
func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// NewHit builds a normalized Hit from a RawHit, the run's shift map lookup
// (as a plain function so decode has no dependency on the shiftmap
// package), and an injected dithering Rng.
func NewHit(raw RawHit, shiftNS func(uuid uint32) float64, rng Rng) Hit {
	uuid := Pair(uint32(raw.Board), uint32(raw.Channel))
	return Hit{
		UUID:        uuid,
		Energy:      float64(raw.Energy) + rng.Float64(),
		EnergyShort: float64(raw.EnergyShort) + rng.Float64(),
		Timestamp:   float64(raw.TimestampPS)*1e-3 + shiftNS(uuid),
	}
}
