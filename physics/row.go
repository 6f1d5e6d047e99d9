// Package physics turns a completed coincidence event into one fixed-
// schema output row: the nine SPS scalar detector triples, the derived
// focal-plane observables, and the variable-length Sabre sub-lists.
package physics

// Invalid is the sentinel value for any scalar column the event never
// populated. Part of the external output contract; never change it.
const Invalid = -1e6

// SabreHit is one (energy, timestamp, channel, detector id) tuple recorded
// against a SabreRing or SabreWedge role within a single event.
type SabreHit struct {
	Energy  float64 `schema:"dtype=float64,kind=attr"`
	Time    float64 `schema:"dtype=float64,kind=attr"`
	Channel int32   `schema:"dtype=int32,kind=attr"`
	DetID   int32   `schema:"dtype=int32,kind=attr"`
}

// Row is one output row. fragment.Columns derives the column order and
// kind by reflecting over these schema tags; fragment's tests check that
// result against ColumnOrder and SabreColumns. The parquet writer takes its
// own schema from the struct's fields.
type Row struct {
	AnodeFrontEnergy float64 `schema:"dtype=float64,kind=scalar"`
	AnodeFrontShort  float64 `schema:"dtype=float64,kind=scalar"`
	AnodeFrontTime   float64 `schema:"dtype=float64,kind=scalar"`

	AnodeBackEnergy float64 `schema:"dtype=float64,kind=scalar"`
	AnodeBackShort  float64 `schema:"dtype=float64,kind=scalar"`
	AnodeBackTime   float64 `schema:"dtype=float64,kind=scalar"`

	ScintLeftEnergy float64 `schema:"dtype=float64,kind=scalar"`
	ScintLeftShort  float64 `schema:"dtype=float64,kind=scalar"`
	ScintLeftTime   float64 `schema:"dtype=float64,kind=scalar"`

	ScintRightEnergy float64 `schema:"dtype=float64,kind=scalar"`
	ScintRightShort  float64 `schema:"dtype=float64,kind=scalar"`
	ScintRightTime   float64 `schema:"dtype=float64,kind=scalar"`

	CathodeEnergy float64 `schema:"dtype=float64,kind=scalar"`
	CathodeShort  float64 `schema:"dtype=float64,kind=scalar"`
	CathodeTime   float64 `schema:"dtype=float64,kind=scalar"`

	DelayFrontLeftEnergy float64 `schema:"dtype=float64,kind=scalar"`
	DelayFrontLeftShort  float64 `schema:"dtype=float64,kind=scalar"`
	DelayFrontLeftTime   float64 `schema:"dtype=float64,kind=scalar"`

	DelayFrontRightEnergy float64 `schema:"dtype=float64,kind=scalar"`
	DelayFrontRightShort  float64 `schema:"dtype=float64,kind=scalar"`
	DelayFrontRightTime   float64 `schema:"dtype=float64,kind=scalar"`

	DelayBackLeftEnergy float64 `schema:"dtype=float64,kind=scalar"`
	DelayBackLeftShort  float64 `schema:"dtype=float64,kind=scalar"`
	DelayBackLeftTime   float64 `schema:"dtype=float64,kind=scalar"`

	DelayBackRightEnergy float64 `schema:"dtype=float64,kind=scalar"`
	DelayBackRightShort  float64 `schema:"dtype=float64,kind=scalar"`
	DelayBackRightTime   float64 `schema:"dtype=float64,kind=scalar"`

	X1    float64 `schema:"dtype=float64,kind=scalar"`
	X2    float64 `schema:"dtype=float64,kind=scalar"`
	Xavg  float64 `schema:"dtype=float64,kind=scalar"`
	Theta float64 `schema:"dtype=float64,kind=scalar"`

	SabreRing  []SabreHit `schema:"dtype=list,kind=sabre"`
	SabreWedge []SabreHit `schema:"dtype=list,kind=sabre"`
}

// NewRow returns a freshly reserved row: every scalar column at Invalid,
// both Sabre sub-lists empty.
func NewRow() Row {
	return Row{
		AnodeFrontEnergy: Invalid, AnodeFrontShort: Invalid, AnodeFrontTime: Invalid,
		AnodeBackEnergy: Invalid, AnodeBackShort: Invalid, AnodeBackTime: Invalid,
		ScintLeftEnergy: Invalid, ScintLeftShort: Invalid, ScintLeftTime: Invalid,
		ScintRightEnergy: Invalid, ScintRightShort: Invalid, ScintRightTime: Invalid,
		CathodeEnergy: Invalid, CathodeShort: Invalid, CathodeTime: Invalid,
		DelayFrontLeftEnergy: Invalid, DelayFrontLeftShort: Invalid, DelayFrontLeftTime: Invalid,
		DelayFrontRightEnergy: Invalid, DelayFrontRightShort: Invalid, DelayFrontRightTime: Invalid,
		DelayBackLeftEnergy: Invalid, DelayBackLeftShort: Invalid, DelayBackLeftTime: Invalid,
		DelayBackRightEnergy: Invalid, DelayBackRightShort: Invalid, DelayBackRightTime: Invalid,
		X1: Invalid, X2: Invalid, Xavg: Invalid, Theta: Invalid,
	}
}

// ColumnOrder lists the scalar column names in struct-declaration order,
// matching the fixed output schema. Sabre columns are handled separately
// since they are list-of-struct, not scalar.
var ColumnOrder = []string{
	"AnodeFrontEnergy", "AnodeFrontShort", "AnodeFrontTime",
	"AnodeBackEnergy", "AnodeBackShort", "AnodeBackTime",
	"ScintLeftEnergy", "ScintLeftShort", "ScintLeftTime",
	"ScintRightEnergy", "ScintRightShort", "ScintRightTime",
	"CathodeEnergy", "CathodeShort", "CathodeTime",
	"DelayFrontLeftEnergy", "DelayFrontLeftShort", "DelayFrontLeftTime",
	"DelayFrontRightEnergy", "DelayFrontRightShort", "DelayFrontRightTime",
	"DelayBackLeftEnergy", "DelayBackLeftShort", "DelayBackLeftTime",
	"DelayBackRightEnergy", "DelayBackRightShort", "DelayBackRightTime",
	"X1", "X2", "Xavg", "Theta",
}

// SabreColumns lists the two list-of-struct column names, in schema order.
var SabreColumns = []string{"SabreRing", "SabreWedge"}
