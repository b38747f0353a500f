package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
)

// Dataset is the immutable in-memory view of all loaded files.
type Dataset struct {
	Records    []domain.CrimeRecord
	Locations  domain.LocationIndex
	Cities     []domain.City
	Categories []domain.CrimeCategory
	Weights    domain.SeverityWeights
	Stats      LoadStats
}

// Sources names the files LoadFiles reads. Empty optional paths are skipped:
// Weights falls back to domain.DefaultSeverityWeights, and empty Cities or
// Categories leave the prediction catalogs empty.
type Sources struct {
	Records    string
	Locations  string
	Cities     string
	Categories string
	Weights    string

	// DefaultCeiling applies when the weights file (or the built-in
	// weights) sets no ceiling of its own.
	DefaultCeiling float64
}

// LoadFiles reads every configured source and assembles a Dataset.
func LoadFiles(src Sources, logger *slog.Logger) (*Dataset, error) {
	ds := &Dataset{Locations: domain.LocationIndex{}}

	records, stats, err := loadRecordsFile(src.Records)
	if err != nil {
		return nil, err
	}
	ds.Records, ds.Stats = records, stats

	if src.Locations != "" {
		if err := withFile(src.Locations, func(r io.Reader) (err error) {
			ds.Locations, err = LoadLocations(r)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if src.Cities != "" {
		if err := withFile(src.Cities, func(r io.Reader) (err error) {
			ds.Cities, err = LoadCities(r)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if src.Categories != "" {
		if err := withFile(src.Categories, func(r io.Reader) (err error) {
			ds.Categories, err = LoadCategories(r)
			return err
		}); err != nil {
			return nil, err
		}
	}

	ceiling := src.DefaultCeiling
	if ceiling <= 0 {
		ceiling = domain.DefaultSeverityCeiling
	}
	ds.Weights = domain.DefaultSeverityWeights()
	ds.Weights.Ceiling = ceiling
	if src.Weights != "" {
		if err := withFile(src.Weights, func(r io.Reader) (err error) {
			ds.Weights, err = LoadWeights(r, ceiling)
			return err
		}); err != nil {
			return nil, err
		}
	}

	logger.Info("dataset loaded",
		"records", stats.Loaded,
		"rows", stats.Rows,
		"missing_geo", stats.MissingGeo,
		"dropped", stats.Dropped(),
		"locations", len(ds.Locations),
		"cities", len(ds.Cities),
		"categories", len(ds.Categories),
	)
	if stats.Dropped() > 0 {
		logger.Warn("dropped malformed crime rows",
			"unknown_severity", stats.UnknownSeverity,
			"malformed_numbers", stats.MalformedNumbers,
		)
	}

	return ds, nil
}

func loadRecordsFile(path string) (records []domain.CrimeRecord, stats LoadStats, err error) {
	err = withFile(path, func(r io.Reader) error {
		var lerr error
		records, stats, lerr = LoadRecords(r)
		return lerr
	})
	return records, stats, err
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// City finds a catalog city by name, ignoring case and extra whitespace.
func (d *Dataset) City(name string) (domain.City, error) {
	for _, c := range d.Cities {
		if domain.SameName(c.Name, name) {
			return c, nil
		}
	}
	return domain.City{}, fmt.Errorf("%w: %q", domain.ErrUnknownCity, name)
}

// Category finds a catalog crime category by name, ignoring case and extra
// whitespace.
func (d *Dataset) Category(name string) (domain.CrimeCategory, error) {
	for _, c := range d.Categories {
		if domain.SameName(c.Name, name) {
			return c, nil
		}
	}
	return domain.CrimeCategory{}, fmt.Errorf("%w: %q", domain.ErrUnknownCrimeCategory, name)
}

// District names one (state, district) pair as spelled in the records.
type District struct {
	State    string `json:"state"`
	District string `json:"district"`
}

// Districts lists the distinct districts present in the records, sorted by
// state then district. Spelling variants that fold to the same key appear
// once, with the first spelling seen.
func (d *Dataset) Districts() []District {
	seen := make(map[domain.LocationKey]bool)
	var out []District
	for _, rec := range d.Records {
		if rec.District == "" {
			continue
		}
		key := domain.NewLocationKey(rec.State, rec.District)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, District{State: rec.State, District: rec.District})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		return out[i].District < out[j].District
	})
	return out
}

// Geolocated returns the records with usable coordinates.
func (d *Dataset) Geolocated() []domain.CrimeRecord {
	out := make([]domain.CrimeRecord, 0, len(d.Records))
	for _, rec := range d.Records {
		if rec.HasValidGeo() {
			out = append(out, rec)
		}
	}
	return out
}
