package domain

import (
	"fmt"
	"math"
	"sort"
)

// Noise is the label of points that belong to no cluster.
const Noise = -1

// unvisited marks points not yet labelled during a Cluster run.
const unvisited = -2

// ClusterParams holds DBSCAN parameters.
type ClusterParams struct {
	EpsilonKm float64 `json:"epsilon_km"` // neighbourhood radius, great-circle
	MinPoints int     `json:"min_points"` // neighbours (self included) needed for a core point
}

// DefaultClusterParams uses an eps of 0.02 radians on the unit sphere,
// which is 127.42 km on Earth.
func DefaultClusterParams() ClusterParams {
	return ClusterParams{EpsilonKm: 0.02 * EarthRadiusKm, MinPoints: 2}
}

// Validate checks the parameter ranges.
func (p ClusterParams) Validate() error {
	if math.IsNaN(p.EpsilonKm) || math.IsInf(p.EpsilonKm, 0) || p.EpsilonKm <= 0 {
		return fmt.Errorf("%w: epsilon %v km must be positive", ErrInvalidClusterParams, p.EpsilonKm)
	}
	if p.MinPoints < 1 {
		return fmt.Errorf("%w: min points %d must be at least 1", ErrInvalidClusterParams, p.MinPoints)
	}
	return nil
}

// Cluster labels each point with a cluster id or Noise, aligned by index.
//
// Two points are neighbours when their great-circle distance is at most
// epsilonKm. A point with at least minPoints neighbours (itself included)
// is a core point; clusters chain core neighbourhoods transitively, and
// non-core points reachable from a core point join the first cluster that
// reaches them. Ids count up from 0 in traversal order, so the same input
// order yields the same labels, but ids carry no meaning across inputs.
func Cluster(points []Geo, epsilonKm float64, minPoints int) ([]int, error) {
	params := ClusterParams{EpsilonKm: epsilonKm, MinPoints: minPoints}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	// Every index enters the seed queue at most once, which keeps a dense
	// input linear in memory. buf is reused between neighbourhood scans.
	queued := make([]bool, len(points))
	var buf, seeds []int
	neighbours := func(i int) []int {
		buf = buf[:0]
		for j := range points {
			if haversineKm(points[i], points[j]) <= epsilonKm {
				buf = append(buf, j)
			}
		}
		return buf
	}
	enqueue := func(candidates []int) {
		for _, j := range candidates {
			if !queued[j] {
				queued[j] = true
				seeds = append(seeds, j)
			}
		}
	}

	next := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}
		nb := neighbours(i)
		if len(nb) < minPoints {
			labels[i] = Noise
			continue
		}

		id := next
		next++
		labels[i] = id
		queued[i] = true

		seeds = seeds[:0]
		enqueue(nb)
		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			if labels[j] == Noise {
				// Border point: reachable, but its own neighbourhood was too sparse.
				labels[j] = id
				continue
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = id
			if more := neighbours(j); len(more) >= minPoints {
				enqueue(more)
			}
		}
	}

	return labels, nil
}

// MembershipSets returns the member indices of every non-noise cluster,
// each sorted ascending, ordered by their smallest member. Two labelings
// describe the same clustering exactly when their membership sets match.
func MembershipSets(labels []int) [][]int {
	byID := make(map[int][]int)
	for i, l := range labels {
		if l == Noise {
			continue
		}
		byID[l] = append(byID[l], i)
	}

	sets := make([][]int, 0, len(byID))
	for _, members := range byID {
		sets = append(sets, members)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i][0] < sets[j][0] })
	return sets
}

// ClusterSummary describes one cluster of records.
type ClusterSummary struct {
	ID                int      `json:"id"`
	Size              int      `json:"size"`
	Centroid          Geo      `json:"centroid"`
	MeanSeverityScore float64  `json:"mean_severity_score"`
	DominantSeverity  Severity `json:"dominant_severity,omitempty"`
}

// SummarizeClusters aggregates records by label. records and labels must be
// aligned by index. Noise is excluded. Summaries are ordered by size
// descending, then id.
func SummarizeClusters(records []CrimeRecord, labels []int) []ClusterSummary {
	type acc struct {
		n, scored      int
		lat, lon       float64
		score          int
		severityCounts map[Severity]int
	}

	accs := make(map[int]*acc)
	for i, l := range labels {
		if l == Noise || i >= len(records) || records[i].Geo == nil {
			continue
		}
		a, ok := accs[l]
		if !ok {
			a = &acc{severityCounts: make(map[Severity]int)}
			accs[l] = a
		}
		rec := records[i]
		a.n++
		a.lat += rec.Geo.Lat
		a.lon += rec.Geo.Lon
		if s := rec.Severity.Score(); s > 0 {
			a.scored++
			a.score += s
			a.severityCounts[rec.Severity]++
		}
	}

	out := make([]ClusterSummary, 0, len(accs))
	for id, a := range accs {
		s := ClusterSummary{
			ID:               id,
			Size:             a.n,
			Centroid:         Geo{Lat: a.lat / float64(a.n), Lon: a.lon / float64(a.n)},
			DominantSeverity: dominantSeverity(a.severityCounts),
		}
		if a.scored > 0 {
			s.MeanSeverityScore = math.Round(float64(a.score)/float64(a.scored)*100) / 100
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// dominantSeverity breaks ties toward the more severe label.
func dominantSeverity(counts map[Severity]int) Severity {
	var best Severity
	bestN := 0
	for _, s := range []Severity{SeverityHigh, SeverityModerate, SeverityLow} {
		if counts[s] > bestN {
			best, bestN = s, counts[s]
		}
	}
	return best
}
