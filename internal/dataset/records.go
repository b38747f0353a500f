package dataset

import (
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
)

// Column aliases, normalized. The first non-empty alias wins.
var (
	colID       = []string{"id", "record_id"}
	colArea     = []string{"area_name", "area"}
	colDistrict = []string{"district"}
	colState    = []string{"state_ut", "state"}
	colLat      = []string{"latitude", "lat"}
	colLon      = []string{"longitude", "lon", "lng"}
	colSeverity = []string{"crime_severity", "severity"}
	colYear     = []string{"year"}
)

var coordinateNoiseRe = regexp.MustCompile(`[^\d.-]`)

// LoadStats counts what happened to each input row.
type LoadStats struct {
	Rows             int `json:"rows"`
	Loaded           int `json:"loaded"`
	MissingGeo       int `json:"missing_geo"`
	UnknownSeverity  int `json:"unknown_severity"`
	MalformedNumbers int `json:"malformed_numbers"`
}

// Dropped returns the number of rows that did not become records.
func (s LoadStats) Dropped() int {
	return s.UnknownSeverity + s.MalformedNumbers
}

// LoadRecords reads crime rows from a headed CSV. Columns are matched by
// normalized header name, and every header naming a weighted crime type
// (MURDER, "KIDNAPPING & ABDUCTION", ...) becomes a count.
//
// Coordinates are cleaned by stripping everything except digits, '.' and
// '-'; a row whose coordinates are still unusable is kept with a nil Geo.
// Rows with an unrecognised severity label or a malformed year or count
// are dropped and counted in the returned LoadStats.
func LoadRecords(r io.Reader) ([]domain.CrimeRecord, LoadStats, error) {
	header, rows, err := readRows(r)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read crime records: %w", err)
	}

	countCols := make(map[string]domain.CrimeType)
	for _, h := range header {
		if ct, ok := domain.ParseCrimeType(h); ok {
			countCols[h] = ct
		}
	}

	var stats LoadStats
	records := make([]domain.CrimeRecord, 0, len(rows))
	for _, row := range rows {
		stats.Rows++

		rec, ok, reason := parseRecord(row, countCols)
		if !ok {
			switch reason {
			case dropSeverity:
				stats.UnknownSeverity++
			default:
				stats.MalformedNumbers++
			}
			continue
		}
		if rec.Geo == nil {
			stats.MissingGeo++
		}
		records = append(records, rec)
		stats.Loaded++
	}

	return records, stats, nil
}

type dropReason int

const (
	dropNone dropReason = iota
	dropSeverity
	dropNumber
)

func parseRecord(row csvRow, countCols map[string]domain.CrimeType) (domain.CrimeRecord, bool, dropReason) {
	rec := domain.CrimeRecord{
		ID:       row.get(colID...),
		Area:     row.get(colArea...),
		District: row.get(colDistrict...),
		State:    row.get(colState...),
	}
	if rec.ID == "" {
		rec.ID = "row-" + strconv.Itoa(row.lineNum)
	}

	if s := row.get(colSeverity...); s != "" {
		sev, err := domain.ParseSeverity(s)
		if err != nil {
			return rec, false, dropSeverity
		}
		rec.Severity = sev
	}

	if y := row.get(colYear...); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil || year < 0 {
			return rec, false, dropNumber
		}
		rec.Year = year
	}

	for col, ct := range countCols {
		v := row.fields[col]
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return rec, false, dropNumber
		}
		if rec.Counts == nil {
			rec.Counts = make(map[domain.CrimeType]int, len(countCols))
		}
		rec.Counts[ct] += n
	}

	rec.Geo = parseGeo(row.get(colLat...), row.get(colLon...))
	return rec, true, dropNone
}

// parseGeo returns nil unless both cleaned values parse into valid ranges.
func parseGeo(latRaw, lonRaw string) *domain.Geo {
	lat, ok := cleanCoordinate(latRaw)
	if !ok {
		return nil
	}
	lon, ok := cleanCoordinate(lonRaw)
	if !ok {
		return nil
	}
	g := domain.Geo{Lat: lat, Lon: lon}
	if g.Validate() != nil {
		return nil
	}
	return &g
}

// cleanCoordinate parses values such as "16.71°N" or " 81.095 ".
func cleanCoordinate(s string) (float64, bool) {
	s = coordinateNoiseRe.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
