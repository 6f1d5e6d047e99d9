package physics

import (
	"math"

	"compassevb/channelmap"
	"compassevb/decode"
)

// Detector geometry constants. Part of the external output contract;
// preserved verbatim.
const (
	delayFrontScale = 2.1
	delayBackScale  = 1.98
	thetaScale      = 36
)

// EventFormatter turns one coincidence event -- a sequence of (role, hit,
// local_channel, local_det_id) tuples -- into a single Row.
type EventFormatter struct {
	w1, w2     float64
	haveWeight bool
}

// NewEventFormatter builds a formatter using w1, w2 for Xavg. Pass
// haveWeight=false when no weight pair is available for the run, which
// leaves Xavg at Invalid even when both X1 and X2 resolve.
func NewEventFormatter(w1, w2 float64, haveWeight bool) *EventFormatter {
	return &EventFormatter{w1: w1, w2: w2, haveWeight: haveWeight}
}

// Visit records one hit's role, local_channel and local_det_id against
// row. Scalar-triple roles overwrite any prior value for the same role
// within this row (last-wins); Sabre roles append to the row's sub-list,
// preserving call order; RoleNone is skipped.
func (f *EventFormatter) Visit(row *Row, role channelmap.Role, hit decode.Hit, localChannel, localDetID int32) {
	switch role {
	case channelmap.AnodeFront:
		row.AnodeFrontEnergy, row.AnodeFrontShort, row.AnodeFrontTime = hit.Energy, hit.EnergyShort, hit.Timestamp
	case channelmap.AnodeBack:
		row.AnodeBackEnergy, row.AnodeBackShort, row.AnodeBackTime = hit.Energy, hit.EnergyShort, hit.Timestamp
	case channelmap.ScintLeft:
		row.ScintLeftEnergy, row.ScintLeftShort, row.ScintLeftTime = hit.Energy, hit.EnergyShort, hit.Timestamp
	case channelmap.ScintRight:
		row.ScintRightEnergy, row.ScintRightShort, row.ScintRightTime = hit.Energy, hit.EnergyShort, hit.Timestamp
	case channelmap.Cathode:
		row.CathodeEnergy, row.CathodeShort, row.CathodeTime = hit.Energy, hit.EnergyShort, hit.Timestamp
	case channelmap.DelayFrontLeft:
		row.DelayFrontLeftEnergy, row.DelayFrontLeftShort, row.DelayFrontLeftTime = hit.Energy, hit.EnergyShort, hit.Timestamp
	case channelmap.DelayFrontRight:
		row.DelayFrontRightEnergy, row.DelayFrontRightShort, row.DelayFrontRightTime = hit.Energy, hit.EnergyShort, hit.Timestamp
	case channelmap.DelayBackLeft:
		row.DelayBackLeftEnergy, row.DelayBackLeftShort, row.DelayBackLeftTime = hit.Energy, hit.EnergyShort, hit.Timestamp
	case channelmap.DelayBackRight:
		row.DelayBackRightEnergy, row.DelayBackRightShort, row.DelayBackRightTime = hit.Energy, hit.EnergyShort, hit.Timestamp
	case channelmap.SabreRing:
		row.SabreRing = append(row.SabreRing, SabreHit{Energy: hit.Energy, Time: hit.Timestamp, Channel: localChannel, DetID: localDetID})
	case channelmap.SabreWedge:
		row.SabreWedge = append(row.SabreWedge, SabreHit{Energy: hit.Energy, Time: hit.Timestamp, Channel: localChannel, DetID: localDetID})
	case channelmap.RoleNone:
		// no column to write
	}
}

// Close computes X1, X2, Theta and Xavg from whatever DelayFront/DelayBack
// times have already been visited onto row, leaving any column it cannot
// resolve at Invalid. Call Close exactly once, after every hit in the
// event has been visited.
func (f *EventFormatter) Close(row *Row) {
	haveFront := row.DelayFrontLeftTime != Invalid && row.DelayFrontRightTime != Invalid
	haveBack := row.DelayBackLeftTime != Invalid && row.DelayBackRightTime != Invalid

	if haveFront {
		row.X1 = (row.DelayFrontLeftTime - row.DelayFrontRightTime) * 0.5 / delayFrontScale
	}
	if haveBack {
		row.X2 = (row.DelayBackLeftTime - row.DelayBackRightTime) * 0.5 / delayBackScale
	}

	if row.X1 == Invalid || row.X2 == Invalid {
		return
	}

	d := row.X2 - row.X1
	switch {
	case math.Abs(d) < 1e-9:
		// A d within floating-point rounding of zero takes the d == 0 branch.
		row.Theta = math.Pi / 2
	case d > 0:
		row.Theta = math.Atan(d / thetaScale)
	case d < 0:
		row.Theta = math.Pi + math.Atan(d/thetaScale)
	default:
		row.Theta = math.Pi / 2
	}

	if f.haveWeight {
		row.Xavg = f.w1*row.X1 + f.w2*row.X2
	}
}

// FormatEvent formats one closed event into a standalone Row: start from
// NewRow, visit every hit through chmap, close it. evbrun does not call it;
// it visits hits directly onto a row reserved in its Accumulator.
func FormatEvent(f *EventFormatter, hits []decode.Hit, chmap *channelmap.Map) Row {
	row := NewRow()
	for _, hit := range hits {
		data := chmap.Get(hit.UUID)
		f.Visit(&row, data.Role, hit, data.LocalChannel, data.LocalDetID)
	}
	f.Close(&row)
	return row
}
