// Package scaler reads a scaler-list configuration, recognizes staged
// files whose names match a registered pattern, and records their hit
// counts as plain counters rather than feeding them into the merge.
package scaler

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"compassevb/decode"
)

// Entry is one counter derived from a file's record count.
type Entry struct {
	FilePattern string
	Name        string
	Value       uint64
}

// List is the set of registered scaler patterns for a run, with each
// entry's Value filled in as matching staged files are discovered.
type List struct {
	entries []Entry
}

// New parses a scaler-list file: one discarded header line, then
// whitespace-separated "file_pattern scaler_name" lines.
func New(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scaler: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	l := &List{}

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scaler: read header %s: %w", path, err)
		}
		return l, nil
	}

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("scaler: %s line %d: expected 2 fields, got %d", path, lineNo, len(fields))
		}
		l.entries = append(l.entries, Entry{FilePattern: fields[0], Name: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scaler: read %s: %w", path, err)
	}

	return l, nil
}

// ReadScaler checks filepath's basename against every registered pattern.
// On the first prefix match, it opens filepath as a decode.Source purely
// to read off its total hit count (the file is otherwise never decoded),
// records that count on the matching entry, and returns true so the
// caller excludes the file from the merge. A file matching no pattern, or
// one that fails to open as a hit file, returns false.
func (l *List) ReadScaler(path string) bool {
	base := filepath.Base(path)
	for i := range l.entries {
		if !strings.HasPrefix(base, l.entries[i].FilePattern) {
			continue
		}
		src, err := decode.Open(path, func(uint32) float64 { return 0 }, decode.FixedRng(0))
		if err != nil {
			return false
		}
		l.entries[i].Value = src.TotalHits()
		src.Close()
		return true
	}
	return false
}

// WriteSummary writes the scaler output file: "SPS Scaler Data\n" then one
// "name value\n" line per entry.
func (l *List) WriteSummary(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scaler: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString("SPS Scaler Data\n"); err != nil {
		return fmt.Errorf("scaler: write %s: %w", path, err)
	}
	for _, e := range l.entries {
		if _, err := fmt.Fprintf(w, "%s %d\n", e.Name, e.Value); err != nil {
			return fmt.Errorf("scaler: write %s: %w", path, err)
		}
	}
	return w.Flush()
}

// Entries exposes the current entries, mainly for tests.
func (l *List) Entries() []Entry {
	return l.entries
}
