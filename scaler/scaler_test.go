package scaler

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeScalerList(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scalers.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeRawHitFile writes a minimal header-only-plus-N-records hit file
// with no optional fields, for use as a scaler source.
func writeRawHitFile(t *testing.T, dir, name string, nRecords int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], 0)
	f.Write(hdr[:])

	rec := make([]byte, 16)
	for i := 0; i < nRecords; i++ {
		f.Write(rec)
	}
	return path
}

func TestScalerListReadScaler(t *testing.T) {
	listPath := writeScalerList(t, "pattern name\nUP1_ up_scaler\n")
	l, err := New(listPath)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	scalerFile := writeRawHitFile(t, dir, "UP1_run0.bin", 5)
	dataFile := writeRawHitFile(t, dir, "DATA_run0.bin", 9)

	if !l.ReadScaler(scalerFile) {
		t.Fatal("expected scaler file to match pattern")
	}
	if l.ReadScaler(dataFile) {
		t.Fatal("expected data file to not match any pattern")
	}

	if l.Entries()[0].Value != 5 {
		t.Errorf("scaler value = %d, want 5", l.Entries()[0].Value)
	}
}

func TestScalerListWriteSummary(t *testing.T) {
	listPath := writeScalerList(t, "pattern name\nUP1_ up_scaler\nDOWN1_ down_scaler\n")
	l, err := New(listPath)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	l.ReadScaler(writeRawHitFile(t, dir, "UP1_a.bin", 3))
	l.ReadScaler(writeRawHitFile(t, dir, "DOWN1_a.bin", 7))

	out := filepath.Join(dir, "scalers_out.txt")
	if err := l.WriteSummary(out); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "SPS Scaler Data\nup_scaler 3\ndown_scaler 7\n"
	if string(got) != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}
