package domain

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports whether the coordinate lies in valid geographic ranges.
func (g Geo) Validate() error {
	if math.IsNaN(g.Lat) || math.IsInf(g.Lat, 0) || g.Lat < -90 || g.Lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, g.Lat)
	}
	if math.IsNaN(g.Lon) || math.IsInf(g.Lon, 0) || g.Lon < -180 || g.Lon > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinate, g.Lon)
	}
	return nil
}

// Severity is the normalized incident severity label.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// ParseSeverity accepts any casing and surrounding whitespace.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow, nil
	case SeverityModerate:
		return SeverityModerate, nil
	case SeverityHigh:
		return SeverityHigh, nil
	default:
		return "", fmt.Errorf("unknown severity label %q", s)
	}
}

// Score maps a severity to its numeric weight: low=1, moderate=2, high=3.
// Unknown or empty severities score 0.
func (s Severity) Score() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityModerate:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// CrimeType keys a per-type incident count.
type CrimeType string

const (
	CrimeMurder      CrimeType = "murder"
	CrimeRape        CrimeType = "rape"
	CrimeKidnapping  CrimeType = "kidnapping_abduction"
	CrimeRobbery     CrimeType = "robbery"
	CrimeBurglary    CrimeType = "burglary"
	CrimeDowryDeaths CrimeType = "dowry_deaths"
)

// CrimeTypes lists the weighted crime types in canonical order.
var CrimeTypes = []CrimeType{
	CrimeMurder,
	CrimeRape,
	CrimeKidnapping,
	CrimeRobbery,
	CrimeBurglary,
	CrimeDowryDeaths,
}

var crimeTypeSeparatorRe = regexp.MustCompile(`[^a-z0-9]+`)

// ParseCrimeType maps a column header such as "KIDNAPPING & ABDUCTION" or
// "Dowry Deaths" to its CrimeType.
func ParseCrimeType(s string) (CrimeType, bool) {
	key := strings.Trim(crimeTypeSeparatorRe.ReplaceAllString(strings.ToLower(s), "_"), "_")
	for _, ct := range CrimeTypes {
		if string(ct) == key {
			return ct, true
		}
	}
	return "", false
}

// CrimeRecord is one cleaned row of crime data.
type CrimeRecord struct {
	ID       string            `json:"id"`
	Area     string            `json:"area,omitempty"`
	District string            `json:"district,omitempty"`
	State    string            `json:"state,omitempty"`
	Geo      *Geo              `json:"geo,omitempty"`
	Severity Severity          `json:"severity,omitempty"`
	Year     int               `json:"year,omitempty"`
	Counts   map[CrimeType]int `json:"counts,omitempty"`
}

// HasValidGeo reports whether the record carries usable coordinates.
func (r CrimeRecord) HasValidGeo() bool {
	return r.Geo != nil && r.Geo.Validate() == nil
}

// City is an entry of the prediction model's city catalog.
type City struct {
	Code       int     `json:"code"`
	Name       string  `json:"name"`
	Population float64 `json:"population_lakhs"`
	BaseYear   int     `json:"base_year"`
}

// CrimeCategory is an entry of the prediction model's crime-type catalog.
type CrimeCategory struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// LocationKey identifies a district within a state, case-folded and
// whitespace-collapsed so that "West  Godavari" matches "WEST GODAVARI".
type LocationKey struct {
	State    string
	District string
}

// NewLocationKey builds a normalized key.
func NewLocationKey(state, district string) LocationKey {
	return LocationKey{State: foldName(state), District: foldName(district)}
}

func foldName(s string) string {
	// A Caser is stateful; build one per call.
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

// SameName reports whether two entity names are equal after folding.
func SameName(a, b string) bool {
	return foldName(a) == foldName(b)
}

// LocationIndex maps districts to their map-centering coordinates.
type LocationIndex map[LocationKey]Geo

// Lookup returns the coordinates for a district or ErrLocationNotFound.
func (idx LocationIndex) Lookup(state, district string) (Geo, error) {
	g, ok := idx[NewLocationKey(state, district)]
	if !ok {
		return Geo{}, fmt.Errorf("%w: %s, %s", ErrLocationNotFound, district, state)
	}
	return g, nil
}
