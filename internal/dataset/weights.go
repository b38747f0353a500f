package dataset

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
)

type weightsFile struct {
	Ceiling *float64           `yaml:"ceiling"`
	Weights map[string]float64 `yaml:"weights"`
}

// LoadWeights reads a YAML weights file:
//
//	ceiling: 500
//	weights:
//	  murder: 5
//	  kidnapping & abduction: 3
//
// Keys accept the same spellings as crime-count column headers. When the
// file sets no ceiling, defaultCeiling is used.
func LoadWeights(r io.Reader, defaultCeiling float64) (domain.SeverityWeights, error) {
	var f weightsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.SeverityWeights{}, fmt.Errorf("%w: empty weights file", domain.ErrInvalidWeights)
		}
		return domain.SeverityWeights{}, fmt.Errorf("decode weights: %w", err)
	}

	w := domain.SeverityWeights{
		Weights: make(map[domain.CrimeType]float64, len(f.Weights)),
		Ceiling: defaultCeiling,
	}
	if f.Ceiling != nil {
		w.Ceiling = *f.Ceiling
	}
	for name, weight := range f.Weights {
		ct, ok := domain.ParseCrimeType(name)
		if !ok {
			return domain.SeverityWeights{}, fmt.Errorf("%w: unknown crime type %q", domain.ErrInvalidWeights, name)
		}
		w.Weights[ct] = weight
	}

	if err := w.Validate(); err != nil {
		return domain.SeverityWeights{}, err
	}
	return w, nil
}
