package domain

import (
	"fmt"
	"math"
)

// DefaultHotspotRadiusKm is the search radius of the point lookup.
const DefaultHotspotRadiusKm = 5.0

// boundaryToleranceKm absorbs floating-point rounding in the inclusive
// radius check. It is far below any distance the inputs can resolve.
const boundaryToleranceKm = 1e-9

// DefaultHotspotTiers are the severity tiers reported when none are requested.
var DefaultHotspotTiers = []Severity{SeverityHigh, SeverityModerate}

// HotspotQuery selects records around a point.
type HotspotQuery struct {
	Point    Geo     `json:"point"`
	RadiusKm float64 `json:"radius_km"`
}

// Validate checks the query point and radius.
func (q HotspotQuery) Validate() error {
	if err := q.Point.Validate(); err != nil {
		return err
	}
	if math.IsNaN(q.RadiusKm) || math.IsInf(q.RadiusKm, 0) || q.RadiusKm < 0 {
		return fmt.Errorf("%w: %v km", ErrInvalidRadius, q.RadiusKm)
	}
	return nil
}

// Hotspot is a record found within the query radius.
type Hotspot struct {
	Record     CrimeRecord `json:"record"`
	DistanceKm float64     `json:"distance_km"`
}

// HotspotResult groups hotspots by severity tier. Every requested tier is
// present, possibly with an empty slice.
type HotspotResult map[Severity][]Hotspot

// Total returns the number of hotspots across all tiers.
func (r HotspotResult) Total() int {
	n := 0
	for _, hs := range r {
		n += len(hs)
	}
	return n
}

// FindHotspots returns the records whose distance to the query point is at
// most the query radius (inclusive), grouped into the requested tiers
// (DefaultHotspotTiers when none are given). Records without valid
// coordinates, or whose severity is not a requested tier, are skipped.
// Within a tier, hotspots keep the input order.
func FindHotspots(q HotspotQuery, records []CrimeRecord, tiers ...Severity) (HotspotResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		tiers = DefaultHotspotTiers
	}

	result := make(HotspotResult, len(tiers))
	for _, tier := range tiers {
		result[tier] = []Hotspot{}
	}

	for i := range records {
		rec := records[i]
		if _, wanted := result[rec.Severity]; !wanted {
			continue
		}
		if !rec.HasValidGeo() {
			continue
		}
		d := haversineKm(q.Point, *rec.Geo)
		if d > q.RadiusKm+boundaryToleranceKm {
			continue
		}
		result[rec.Severity] = append(result[rec.Severity], Hotspot{Record: rec, DistanceKm: d})
	}

	return result, nil
}
