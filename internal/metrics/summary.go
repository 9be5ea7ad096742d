// internal/metrics/summary.go
package metrics

import (
	"errors"
	"math"
	"sort"

	"github.com/mwiater/syncbench/benchmark"
)

// ErrNoData is returned when there are no successful durations to summarize.
var ErrNoData = errors.New("no successful results to summarize")

// Summarize computes mean, median, p90 and p95 over the given durations using the
// nearest-rank rule. The input is not modified.
func Summarize(values []float64) (benchmark.Summary, error) {
	if len(values) == 0 {
		return benchmark.Summary{}, ErrNoData
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return benchmark.Summary{
		Count:  len(values),
		Mean:   mean(values),
		Median: nearestRank(sorted, 0.5),
		P90:    nearestRank(sorted, 0.9),
		P95:    nearestRank(sorted, 0.95),
	}, nil
}

// SummaryOrNil is Summarize for report building: no data becomes a nil summary.
func SummaryOrNil(values []float64) *benchmark.Summary {
	s, err := Summarize(values)
	if err != nil {
		return nil
	}
	return &s
}

// nearestRank picks sorted[floor(q*n)] clamped to the last element. Reports are
// compared across runs, so this must not be replaced by an interpolating estimator.
func nearestRank(sorted []float64, q float64) float64 {
	n := len(sorted)
	idx := int(math.Floor(q * float64(n)))
	if idx > n-1 {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
