package decode

import "testing"

// TestPairUnpairBijection is Testable Property 1: for all 0 <= b, c <=
// 65535, Unpair(Pair(b, c)) == (b, c). A full 65536x65536 sweep is too
// slow for a unit test, so this samples the space including the
// boundaries and the diagonal, which is where a pairing formula like this
// most commonly breaks.
func TestPairUnpairBijection(t *testing.T) {
	boards := []uint32{0, 1, 2, 7, 255, 256, 1000, 65534, 65535}
	channels := []uint32{0, 1, 2, 7, 255, 256, 1000, 65534, 65535}

	for _, b := range boards {
		for _, c := range channels {
			uuid := Pair(b, c)
			gotB, gotC := Unpair(uuid)
			if gotB != b || gotC != c {
				t.Errorf("Pair(%d,%d)=%d Unpair=(%d,%d), want (%d,%d)", b, c, uuid, gotB, gotC, b, c)
			}
		}
	}
}

func TestPairUnpairDenseSample(t *testing.T) {
	for b := uint32(0); b < 300; b++ {
		for c := uint32(0); c < 300; c++ {
			uuid := Pair(b, c)
			gotB, gotC := Unpair(uuid)
			if gotB != b || gotC != c {
				t.Fatalf("Pair(%d,%d)=%d Unpair=(%d,%d)", b, c, uuid, gotB, gotC)
			}
		}
	}
}

// TestPairS4 is Concrete Scenario S4: channel-map line "0 7 AnodeFront"
// looks up uuid Pair(0,7) = 49.
func TestPairS4(t *testing.T) {
	if got := Pair(0, 7); got != 49 {
		t.Errorf("Pair(0,7) = %d, want 49", got)
	}
}

func TestRecordSize(t *testing.T) {
	cases := []struct {
		mask HeaderMask
		want int
	}{
		{0, 16},
		{MaskEnergy, 18},
		{MaskEnergyShort, 18},
		{MaskEnergyCalibrated, 24},
		{MaskEnergy | MaskEnergyShort, 20},
		{MaskEnergy | MaskEnergyCalibrated | MaskEnergyShort, 28},
	}
	for _, c := range cases {
		if got := RecordSize(c.mask); got != c.want {
			t.Errorf("RecordSize(%#x) = %d, want %d", c.mask, got, c.want)
		}
	}
}

// TestNewHitS1 is Concrete Scenario S1.
func TestNewHitS1(t *testing.T) {
	raw := RawHit{Board: 1, Channel: 2, TimestampPS: 1000, Energy: 100, EnergyShort: 50}
	rng := FixedRng(0.5)
	hit := NewHit(raw, func(uint32) float64 { return 0 }, rng)

	// Pair(1, 2): board < channel, so 2*2 + 1 = 5.
	if hit.UUID != 5 {
		t.Errorf("uuid = %d, want 5", hit.UUID)
	}
	if hit.Timestamp != 1.0 {
		t.Errorf("timestamp = %v, want 1.0", hit.Timestamp)
	}
	if hit.Energy < 100 || hit.Energy >= 101 {
		t.Errorf("energy = %v, want in [100,101)", hit.Energy)
	}
	if hit.EnergyShort < 50 || hit.EnergyShort >= 51 {
		t.Errorf("energy_short = %v, want in [50,51)", hit.EnergyShort)
	}
}

func TestNewHitAppliesShift(t *testing.T) {
	raw := RawHit{Board: 0, Channel: 0, TimestampPS: 5000}
	hit := NewHit(raw, func(uint32) float64 { return 2.5 }, FixedRng(0))
	if hit.Timestamp != 7.5 {
		t.Errorf("timestamp = %v, want 7.5", hit.Timestamp)
	}
}

func TestInvalidHit(t *testing.T) {
	h := InvalidHit()
	if !h.IsInvalid() {
		t.Error("InvalidHit() should report IsInvalid() == true")
	}
	real := Hit{Timestamp: 1}
	if real.IsInvalid() {
		t.Error("a hit with a nonzero timestamp must not be invalid")
	}
}
