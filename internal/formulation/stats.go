package formulation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GainStats summarizes the objective coefficients of the surviving serving
// variables. It is reported after pruning so an operator can judge how
// concentrated the potential savings are before the solve starts.
type GainStats struct {
	Count int
	Mean  float64
	Max   float64
	P90   float64
	Total float64
}

func (g GainStats) String() string {
	return fmt.Sprintf("count=%d mean=%.1f max=%.1f p90=%.1f total=%.1f",
		g.Count, g.Mean, g.Max, g.P90, g.Total)
}

// summarizeGains computes GainStats over a non-empty gain slice. The input
// is not modified.
func summarizeGains(gains []float64) GainStats {
	sorted := make([]float64, len(gains))
	copy(sorted, gains)
	sort.Float64s(sorted)

	return GainStats{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Max:   floats.Max(sorted),
		P90:   stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Total: floats.Sum(sorted),
	}
}
