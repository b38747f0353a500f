package domain

import "sort"

// Trend applies SeverityIndex to every year bucket. Years missing from the
// input are missing from the output; a year present with no records scores 0.
func Trend(byYear map[int][]CrimeRecord, w SeverityWeights) map[int]float64 {
	out := make(map[int]float64, len(byYear))
	for year, records := range byYear {
		out[year] = SeverityIndex(records, w)
	}
	return out
}

// TrendPoint is one year of a severity time series.
type TrendPoint struct {
	Year  int     `json:"year"`
	Index float64 `json:"index"`
}

// SortedTrend flattens a trend mapping into a series ordered by year.
func SortedTrend(trend map[int]float64) []TrendPoint {
	points := make([]TrendPoint, 0, len(trend))
	for year, idx := range trend {
		points = append(points, TrendPoint{Year: year, Index: idx})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points
}

// GroupByYear buckets records by year. Records without a year are dropped.
func GroupByYear(records []CrimeRecord) map[int][]CrimeRecord {
	out := make(map[int][]CrimeRecord)
	for _, rec := range records {
		if rec.Year == 0 {
			continue
		}
		out[rec.Year] = append(out[rec.Year], rec)
	}
	return out
}

// FilterDistrict returns the records of one district, matching names
// case-insensitively. The input slice is not modified.
func FilterDistrict(records []CrimeRecord, state, district string) []CrimeRecord {
	key := NewLocationKey(state, district)
	var out []CrimeRecord
	for _, rec := range records {
		if NewLocationKey(rec.State, rec.District) == key {
			out = append(out, rec)
		}
	}
	return out
}

// FilterYear returns the records of one year.
func FilterYear(records []CrimeRecord, year int) []CrimeRecord {
	var out []CrimeRecord
	for _, rec := range records {
		if rec.Year == year {
			out = append(out, rec)
		}
	}
	return out
}
