package physics

import (
	"math"
	"reflect"
	"testing"

	"compassevb/channelmap"
	"compassevb/decode"
)

func hitAt(t float64) decode.Hit {
	return decode.Hit{Timestamp: t}
}

// TestEventFormatterS5 is Concrete Scenario S5: DelayFrontLeft t=8.2,
// DelayFrontRight t=4.0, DelayBackLeft t=7.96, DelayBackRight t=4.0 gives
// X1=1.0, X2=1.0, d=0 so Theta=pi/2, and Xavg=1.0 with weights (0.5,0.5).
func TestEventFormatterS5(t *testing.T) {
	f := NewEventFormatter(0.5, 0.5, true)
	row := NewRow()

	f.Visit(&row, channelmap.DelayFrontLeft, hitAt(8.2), -1, -1)
	f.Visit(&row, channelmap.DelayFrontRight, hitAt(4.0), -1, -1)
	f.Visit(&row, channelmap.DelayBackLeft, hitAt(7.96), -1, -1)
	f.Visit(&row, channelmap.DelayBackRight, hitAt(4.0), -1, -1)
	f.Close(&row)

	if math.Abs(row.X1-1.0) > 1e-9 {
		t.Errorf("X1 = %v, want 1.0", row.X1)
	}
	if math.Abs(row.X2-1.0) > 1e-9 {
		t.Errorf("X2 = %v, want 1.0", row.X2)
	}
	if math.Abs(row.Theta-math.Pi/2) > 1e-9 {
		t.Errorf("Theta = %v, want pi/2", row.Theta)
	}
	if math.Abs(row.Xavg-1.0) > 1e-9 {
		t.Errorf("Xavg = %v, want 1.0", row.Xavg)
	}
}

// TestEventFormatterTestableProperty7 follows the worked example in
// Testable Property 7: delay times chosen so X1=5, X2=3 (d = X2-X1 = -2 <
// 0), so Theta = pi + atan(-2/36), and Xavg with weights (0.5,0.5) = 4.
// Unlike a hand-reimplemented switch, this drives real DelayFront/DelayBack
// hits through Visit and calls the production Close, so it actually
// exercises the d<0 branch of Close's Theta formula -- the exact formula
// DESIGN.md/SPEC_FULL.md call out as deliberately using spec.md's
// `d = X2 - X1` sign convention rather than the original Rust
// implementation's opposite `diff = X1 - X2`.
func TestEventFormatterTestableProperty7(t *testing.T) {
	f := NewEventFormatter(0.5, 0.5, true)
	row := NewRow()

	// (21 - 0) * 0.5 / 2.1 = 5 = X1
	f.Visit(&row, channelmap.DelayFrontLeft, hitAt(21), -1, -1)
	f.Visit(&row, channelmap.DelayFrontRight, hitAt(0), -1, -1)
	// (11.88 - 0) * 0.5 / 1.98 = 3 = X2
	f.Visit(&row, channelmap.DelayBackLeft, hitAt(11.88), -1, -1)
	f.Visit(&row, channelmap.DelayBackRight, hitAt(0), -1, -1)
	f.Close(&row)

	d := row.X2 - row.X1
	want := math.Pi + math.Atan(d/thetaScale)

	if math.Abs(row.X1-5.0) > 1e-9 {
		t.Errorf("X1 = %v, want 5.0", row.X1)
	}
	if math.Abs(row.X2-3.0) > 1e-9 {
		t.Errorf("X2 = %v, want 3.0", row.X2)
	}
	if math.Abs(row.Theta-want) > 1e-12 {
		t.Errorf("Theta = %v, want %v", row.Theta, want)
	}
	if math.Abs(row.Xavg-4.0) > 1e-9 {
		t.Errorf("Xavg = %v, want 4.0", row.Xavg)
	}
}

// TestEventFormatterCloseThetaPositiveD exercises the d>0 branch of Close
// through real hits, the mirror image of TestEventFormatterTestableProperty7:
// X1=3, X2=5, d = X2-X1 = 2 > 0, so Theta = atan(2/36).
func TestEventFormatterCloseThetaPositiveD(t *testing.T) {
	f := NewEventFormatter(0.5, 0.5, true)
	row := NewRow()

	// (12.6 - 0) * 0.5 / 2.1 = 3 = X1
	f.Visit(&row, channelmap.DelayFrontLeft, hitAt(12.6), -1, -1)
	f.Visit(&row, channelmap.DelayFrontRight, hitAt(0), -1, -1)
	// (19.8 - 0) * 0.5 / 1.98 = 5 = X2
	f.Visit(&row, channelmap.DelayBackLeft, hitAt(19.8), -1, -1)
	f.Visit(&row, channelmap.DelayBackRight, hitAt(0), -1, -1)
	f.Close(&row)

	d := row.X2 - row.X1
	want := math.Atan(d / thetaScale)

	if math.Abs(row.Theta-want) > 1e-12 {
		t.Errorf("Theta = %v, want %v", row.Theta, want)
	}
	if math.Abs(row.Xavg-4.0) > 1e-9 {
		t.Errorf("Xavg = %v, want 4.0", row.Xavg)
	}
}

func TestEventFormatterLastWins(t *testing.T) {
	f := NewEventFormatter(0, 0, false)
	row := NewRow()

	f.Visit(&row, channelmap.AnodeFront, decode.Hit{Energy: 1, EnergyShort: 1, Timestamp: 1}, -1, -1)
	f.Visit(&row, channelmap.AnodeFront, decode.Hit{Energy: 2, EnergyShort: 2, Timestamp: 2}, -1, -1)

	if row.AnodeFrontEnergy != 2 || row.AnodeFrontShort != 2 || row.AnodeFrontTime != 2 {
		t.Errorf("expected the later hit to win, got %+v", row)
	}
}

func TestEventFormatterSabreAccumulation(t *testing.T) {
	f := NewEventFormatter(0, 0, false)
	row := NewRow()

	f.Visit(&row, channelmap.SabreRing, decode.Hit{Energy: 1, Timestamp: 10}, 0, 1)
	f.Visit(&row, channelmap.SabreRing, decode.Hit{Energy: 2, Timestamp: 20}, 1, 1)
	f.Visit(&row, channelmap.SabreRing, decode.Hit{Energy: 3, Timestamp: 30}, 2, 1)

	if len(row.SabreRing) != 3 {
		t.Fatalf("SabreRing length = %d, want 3", len(row.SabreRing))
	}
	for i, want := range []float64{1, 2, 3} {
		if row.SabreRing[i].Energy != want {
			t.Errorf("SabreRing[%d].Energy = %v, want %v (hit order not preserved)", i, row.SabreRing[i].Energy, want)
		}
	}
}

func TestEventFormatterRoleNoneSkipped(t *testing.T) {
	f := NewEventFormatter(0, 0, false)
	row := NewRow()
	f.Visit(&row, channelmap.RoleNone, decode.Hit{Energy: 99, Timestamp: 99}, -1, -1)

	want := NewRow()
	if !reflect.DeepEqual(row, want) {
		t.Errorf("RoleNone hit should leave the row unchanged, got %+v", row)
	}
}

func TestEventFormatterMissingHalfLeavesInvalid(t *testing.T) {
	f := NewEventFormatter(0.5, 0.5, true)
	row := NewRow()
	f.Visit(&row, channelmap.DelayFrontLeft, hitAt(8.2), -1, -1)
	f.Close(&row)

	if row.X1 != Invalid {
		t.Errorf("X1 = %v, want Invalid (DelayFrontRight never visited)", row.X1)
	}
	if row.Theta != Invalid {
		t.Errorf("Theta = %v, want Invalid", row.Theta)
	}
	if row.Xavg != Invalid {
		t.Errorf("Xavg = %v, want Invalid", row.Xavg)
	}
}
