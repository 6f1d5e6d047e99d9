package fragment

import (
	"bytes"
	"fmt"
	"log"

	pq "github.com/parquet-go/parquet-go"

	"compassevb/physics"
)

// Writer serializes a batch of physics.Row values to parquet bytes and
// hands them to a Target under a run-and-fragment-numbered name.
type Writer struct {
	target Target
}

// NewWriter returns a Writer that writes fragments to target.
func NewWriter(target Target) *Writer {
	return &Writer{target: target}
}

// WriteFragment encodes rows as parquet and writes them to
// "run_{run}.parquet" when numbered is false (the run produced exactly
// one fragment, start to finish), or "run_{run}_{fragment}.parquet"
// otherwise, with fragment starting at 0 for the first of several.
func (w *Writer) WriteFragment(run, fragment int, numbered bool, rows []physics.Row) error {
	if len(rows) == 0 {
		return nil
	}

	data, err := encodeRows(rows)
	if err != nil {
		return fmt.Errorf("fragment: encode run %d fragment %d: %w", run, fragment, err)
	}

	name := fmt.Sprintf("run_%d.parquet", run)
	if numbered {
		name = fmt.Sprintf("run_%d_%d.parquet", run, fragment)
	}

	if err := w.target.WriteFile(name, data); err != nil {
		return fmt.Errorf("fragment: write %s: %w", name, err)
	}

	log.Printf("fragment: wrote %s (%d rows, %d bytes)", name, len(rows), len(data))
	return nil
}

func encodeRows(rows []physics.Row) ([]byte, error) {
	var buf bytes.Buffer

	writer := pq.NewGenericWriter[physics.Row](&buf, pq.Compression(&pq.Zstd))
	if _, err := writer.Write(rows); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
