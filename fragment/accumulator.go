package fragment

import (
	"github.com/samber/lo"

	"compassevb/physics"
)

// MaxAccumulatorBytes is the default estimated-size threshold at which an
// Accumulator flushes to a new fragment file.
const MaxAccumulatorBytes = 8_000_000_000

const bytesPerScalarColumn = 8
const bytesPerSabreHit = 24 // two float64 + two int32

// Accumulator is a columnar row buffer: Reserve appends a fresh row (every
// scalar column at physics.Invalid, both Sabre sub-lists empty) and
// returns a pointer to it so the caller mutates it in place -- the Go
// equivalent of the reserve-then-set contract, since a returned struct
// pointer is the idiomatic stand-in for named column setters here.
type Accumulator struct {
	rows []physics.Row
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Reserve appends a new row and returns a pointer to it. The invariant
// that every column's length equals the row count holds by construction:
// Row itself carries every scalar column as a field, so appending one Row
// extends every column simultaneously.
func (a *Accumulator) Reserve() *physics.Row {
	a.rows = append(a.rows, physics.NewRow())
	return &a.rows[len(a.rows)-1]
}

// Rows returns the accumulated rows. Exposed mainly for the writer and
// for tests; callers must not retain the slice across a Flush.
func (a *Accumulator) Rows() []physics.Row {
	return a.rows
}

// Len is the number of rows currently buffered.
func (a *Accumulator) Len() int {
	return len(a.rows)
}

// EstimatedBytes approximates the buffer's in-memory size: a fixed cost
// per scalar column per row, plus the actual accumulated Sabre hit count
// across every row's two sub-lists.
func (a *Accumulator) EstimatedBytes() int64 {
	fixed := int64(len(a.rows)) * int64(len(physics.ColumnOrder)) * bytesPerScalarColumn

	rings := make([][]physics.SabreHit, len(a.rows))
	wedges := make([][]physics.SabreHit, len(a.rows))
	for i, row := range a.rows {
		rings[i] = row.SabreRing
		wedges[i] = row.SabreWedge
	}
	sabreHits := len(lo.Flatten(rings)) + len(lo.Flatten(wedges))

	return fixed + int64(sabreHits)*bytesPerSabreHit
}

// ShouldFlush reports whether EstimatedBytes has crossed threshold.
func (a *Accumulator) ShouldFlush(threshold int64) bool {
	return a.EstimatedBytes() > threshold
}

// Flush writes every buffered row to a fragment file via w and empties the
// buffer. Flushing an empty accumulator is a no-op. numbered selects
// between the bare "run_{run}.parquet" name and the numbered
// "run_{run}_{fragment}.parquet" name -- the caller decides this based on
// whether the run is known to span more than one fragment, not on
// fragment's value alone.
func (a *Accumulator) Flush(w *Writer, run, fragment int, numbered bool) error {
	if len(a.rows) == 0 {
		return nil
	}
	if err := w.WriteFragment(run, fragment, numbered, a.rows); err != nil {
		return err
	}
	a.rows = a.rows[:0]
	return nil
}
