package domain

import (
	"fmt"
	"math"
	"sort"
)

// DefaultSeverityCeiling is the per-type calibration ceiling for counts.
const DefaultSeverityCeiling = 500.0

// SeverityWeights configures the severity index: a positive weight per
// crime type and the per-type count ceiling used to normalize the score.
type SeverityWeights struct {
	Weights map[CrimeType]float64 `json:"weights" yaml:"weights"`
	Ceiling float64               `json:"ceiling" yaml:"ceiling"`
}

// DefaultSeverityWeights weights violent crimes above property crimes.
func DefaultSeverityWeights() SeverityWeights {
	return SeverityWeights{
		Weights: map[CrimeType]float64{
			CrimeMurder:      5,
			CrimeRape:        4,
			CrimeKidnapping:  3,
			CrimeRobbery:     3,
			CrimeBurglary:    2,
			CrimeDowryDeaths: 4,
		},
		Ceiling: DefaultSeverityCeiling,
	}
}

// Validate rejects unknown crime types, non-positive weights, and a
// negative or non-finite ceiling.
func (w SeverityWeights) Validate() error {
	if math.IsNaN(w.Ceiling) || math.IsInf(w.Ceiling, 0) || w.Ceiling < 0 {
		return fmt.Errorf("%w: ceiling %v", ErrInvalidWeights, w.Ceiling)
	}
	for ct, weight := range w.Weights {
		if _, ok := ParseCrimeType(string(ct)); !ok {
			return fmt.Errorf("%w: unknown crime type %q", ErrInvalidWeights, ct)
		}
		if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
			return fmt.Errorf("%w: weight for %s must be positive, got %v", ErrInvalidWeights, ct, weight)
		}
	}
	return nil
}

// SeverityIndex scores a group of records in [0, 100]. The score is
// independent of record order and never decreases when a weighted count
// grows. An empty group, or weights whose maximum is zero, scores 0.
func SeverityIndex(records []CrimeRecord, w SeverityWeights) float64 {
	if len(records) == 0 {
		return 0
	}

	var weightedSum, maxPossible float64
	for _, ct := range sortedCrimeTypes(w.Weights) {
		weight := w.Weights[ct]
		if weight <= 0 {
			continue
		}
		total := 0
		for i := range records {
			if c := records[i].Counts[ct]; c > 0 {
				total += c
			}
		}
		weightedSum += float64(total) * weight
		maxPossible += w.Ceiling * weight
	}

	if maxPossible <= 0 {
		return 0
	}

	index := 100 * weightedSum / maxPossible
	index = math.Max(0, math.Min(100, index))
	return math.Round(index*100) / 100
}

// sortedCrimeTypes fixes the summation order so float rounding is
// reproducible across map iterations.
func sortedCrimeTypes(weights map[CrimeType]float64) []CrimeType {
	types := make([]CrimeType, 0, len(weights))
	for ct := range weights {
		types = append(types, ct)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
