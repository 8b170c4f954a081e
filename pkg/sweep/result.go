package sweep

import (
	"math"
	"strconv"
	"time"
)

// Point is one sample of a transmission curve.
type Point struct {
	X float64 `json:"x"`
	T float64 `json:"t"`
}

// Series is the transmission curve of one configuration, in sample order.
type Series struct {
	Label    string  `json:"label"`
	Coupling float64 `json:"coupling"`
	Variable string  `json:"variable"`
	Points   []Point `json:"points"`

	// Complete is false when the series stopped early because of a failure
	// or cancellation. Points then holds the longest completed prefix.
	Complete bool `json:"complete"`

	// Err is the failure that stopped the series, if any.
	Err error `json:"-"`
}

// X returns the swept values.
func (s *Series) X() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.X
	}
	return out
}

// T returns the transmissions.
func (s *Series) T() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.T
	}
	return out
}

// Stats summarizes a run.
type Stats struct {
	Planned  int           `json:"planned"`
	Solved   int           `json:"solved"`
	Cached   int           `json:"cached"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Result holds the series of one run, in configuration order.
type Result struct {
	Energy      float64  `json:"energy"`
	From        int      `json:"from"`
	To          int      `json:"to"`
	Series      []Series `json:"series"`
	Stats       Stats    `json:"stats"`
	Interrupted bool     `json:"interrupted,omitempty"`
}

// LegendEntry pairs a series with its legend label.
type LegendEntry struct {
	Label string
	X     []float64
	T     []float64
}

// Legend returns one entry per series, in configuration order.
func (r *Result) Legend() []LegendEntry {
	out := make([]LegendEntry, len(r.Series))
	for i := range r.Series {
		s := &r.Series[i]
		out[i] = LegendEntry{Label: s.Label, X: s.X(), T: s.T()}
	}
	return out
}

// FormatFloat formats v in shortest round-trip form for labels and titles.
// Integral values keep a trailing ".0" ("1.0", "-0.5", "1e-05").
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	a := math.Abs(v)
	if a != 0 && (a >= 1e16 || a < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) {
		s += ".0"
	}
	return s
}
