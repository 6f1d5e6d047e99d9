// Package weights stands in for the kinematics weight calculation: a
// per-run pair of focal-plane weights derived from reaction kinematics
// and an atomic-mass data table. Computing that pair is out of scope
// here (it depends on external mass-table data and is algorithmically
// trivial once the table is loaded) — only the seam that carries its
// output into physics.EventFormatter is.
package weights

import "errors"

// ErrMassData marks a failure to resolve a run's weight pair, standing in
// for the family of errors a real mass-table/kinematics reader could
// raise (missing isotope, malformed table row, and so on).
var ErrMassData = errors.New("weights: mass data unavailable")

// Weights is the (w1, w2) pair EventFormatter combines with X1/X2 to
// produce Xavg. A zero value is never itself meaningful; callers use the
// bool that Provider.Weights returns to decide whether a run is unweighted.
type Weights struct {
	W1 float64
	W2 float64
}

// NoWeighting is returned, together with ok == false, by implementations
// that have no weight pair for a run; a formatter built with
// haveWeight == false leaves Xavg at Invalid.
var NoWeighting = Weights{W1: 0, W2: 0}

// Provider resolves the weight pair for a run number.
type Provider interface {
	Weights(run int) (Weights, bool, error)
}

// Fixed always returns the same pair for every run, regardless of run
// number. It exists so evbrun and its tests have a concrete Provider
// without standing up a real mass-table reader.
type Fixed struct {
	Pair Weights
}

// NewFixed returns a Provider that always answers w1, w2.
func NewFixed(w1, w2 float64) Fixed {
	return Fixed{Pair: Weights{W1: w1, W2: w2}}
}

// Weights always succeeds with the configured pair.
func (f Fixed) Weights(run int) (Weights, bool, error) {
	return f.Pair, true, nil
}

// None is a Provider that never supplies a weight pair, leaving Xavg at
// Invalid for every event.
type None struct{}

// Weights reports no pair available.
func (None) Weights(run int) (Weights, bool, error) {
	return NoWeighting, false, nil
}
