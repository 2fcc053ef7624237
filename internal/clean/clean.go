// Package clean normalizes the raw datasets: date dedup, domain
// validation, gap imputation, and outlier flagging. Policies:
//
//   - duplicate dates collapse by mean (weather) or median (air quality);
//   - domain-impossible values are nulled and flagged "invalid";
//   - interior gaps of at most maxGapDays are linearly interpolated and
//     flagged "imputed"; longer and edge gaps stay null;
//   - values with |z| >= outlierZ are flagged "outlier" and kept.
package clean

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"airmet/internal/models"
)

const (
	// FlagInvalid marks a value nulled for violating a domain bound.
	FlagInvalid = "invalid"
	// FlagImputed marks a value filled by linear interpolation.
	FlagImputed = "imputed"
	// FlagOutlier marks a statistically extreme but retained value.
	FlagOutlier = "outlier"
	// FlagDeduped marks a row collapsed from duplicate-date rows.
	FlagDeduped = "deduped"

	maxGapDays = 3
	outlierZ   = 3.0
)

// series is one numeric column paired with its dates, used by the shared
// imputation and outlier passes.
type series struct {
	dates []time.Time
	vals  []float64
}

// interpolate fills interior NaN runs no wider than maxGapDays calendar
// days, linearly in time between the bounding valid values. Returns the
// indexes that were filled.
func (s *series) interpolate() []int {
	var filled []int
	n := len(s.vals)

	prev := -1 // index of last valid value
	for i := 0; i < n; i++ {
		if models.IsMissing(s.vals[i]) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			gapDays := int(s.dates[i].Sub(s.dates[prev]).Hours()/24) - 1
			if gapDays <= maxGapDays {
				t0 := float64(s.dates[prev].Unix())
				t1 := float64(s.dates[i].Unix())
				v0, v1 := s.vals[prev], s.vals[i]
				for j := prev + 1; j < i; j++ {
					t := float64(s.dates[j].Unix())
					s.vals[j] = v0 + (v1-v0)*(t-t0)/(t1-t0)
					filled = append(filled, j)
				}
			}
		}
		prev = i
	}
	return filled
}

// outliers returns the indexes of valid values with |z| >= outlierZ.
// Fewer than three valid values cannot support a z-score.
func (s *series) outliers() []int {
	var valid []float64
	for _, v := range s.vals {
		if !models.IsMissing(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) < 3 {
		return nil
	}
	mean := stat.Mean(valid, nil)
	std := stat.StdDev(valid, nil)
	if std == 0 || math.IsNaN(std) {
		return nil
	}

	var idxs []int
	for i, v := range s.vals {
		if models.IsMissing(v) {
			continue
		}
		if math.Abs((v-mean)/std) >= outlierZ {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func mean(vals []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if models.IsMissing(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return models.Missing()
	}
	return sum / float64(n)
}

func median(vals []float64) float64 {
	var valid []float64
	for _, v := range vals {
		if !models.IsMissing(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return models.Missing()
	}
	sort.Float64s(valid)
	mid := len(valid) / 2
	if len(valid)%2 == 1 {
		return valid[mid]
	}
	return (valid[mid-1] + valid[mid]) / 2
}
