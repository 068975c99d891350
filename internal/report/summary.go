package report

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the computed scores of one report
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	StdDev   float64 `json:"stdDev"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
}

// Summarize computes summary statistics over scores. An empty slice yields
// a zero Summary.
func Summarize(scores []float64) Summary {
	summary := Summary{Count: len(scores)}
	if len(scores) == 0 {
		return summary
	}
	data := stats.Float64Data(scores)

	// stats only fails on empty input, which is handled above
	summary.Mean, _ = stats.Mean(data)
	summary.Median, _ = stats.Median(data)
	summary.Min, _ = stats.Min(data)
	summary.Max, _ = stats.Max(data)
	summary.StdDev, _ = stats.StandardDeviation(data)

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	summary.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	summary.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)

	// undefined for fewer than two distinct values
	if skew := stat.Skew(sorted, nil); !math.IsNaN(skew) && !math.IsInf(skew, 0) {
		summary.Skewness = skew
	}
	return summary
}
