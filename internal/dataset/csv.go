package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/jszwec/csvutil"
)

var headerSeparatorRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeHeader maps "Area Name", "STATE/UT" and "Crime_severity" to
// area_name, state_ut and crime_severity.
func normalizeHeader(h string) string {
	return strings.Trim(headerSeparatorRe.ReplaceAllString(strings.ToLower(h), "_"), "_")
}

// csvRow is a parsed CSV row with field values keyed by normalized header.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

// get returns the first non-empty value among the given column aliases.
func (r csvRow) get(aliases ...string) string {
	for _, a := range aliases {
		if v := r.fields[a]; v != "" {
			return v
		}
	}
	return ""
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// readRows reads a headed CSV into rows keyed by normalized header.
func readRows(r io.Reader) ([]string, []csvRow, error) {
	cr := newCSVReader(r)
	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, errors.New("missing header row")
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = normalizeHeader(h)
	}

	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[h] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return header, rows, nil
}

// decodeTable decodes a catalog CSV into T using its csv struct tags.
// Header names are normalized first, so "Base Year" fills `csv:"base_year"`.
func decodeTable[T any](r io.Reader) ([]T, error) {
	cr := newCSVReader(r)
	raw, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	header := make([]string, len(raw))
	for i, h := range raw {
		header[i] = normalizeHeader(h)
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, err
	}
	dec.DisallowMissingColumns = true

	var out []T
	for line := 2; ; line++ {
		var v T
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, v)
	}
	return out, nil
}
