package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
)

type locationRow struct {
	State    string  `csv:"state"`
	District string  `csv:"district"`
	Lat      float64 `csv:"latitude"`
	Lon      float64 `csv:"longitude"`
}

// LoadLocations reads a (state, district, latitude, longitude) table.
// Duplicate districts keep the last row.
func LoadLocations(r io.Reader) (domain.LocationIndex, error) {
	rows, err := decodeTable[locationRow](r)
	if err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}

	idx := make(domain.LocationIndex, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.District) == "" {
			return nil, fmt.Errorf("read locations: row %d: empty district", i+1)
		}
		g := domain.Geo{Lat: row.Lat, Lon: row.Lon}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("read locations: %s, %s: %w", row.District, row.State, err)
		}
		idx[domain.NewLocationKey(row.State, row.District)] = g
	}
	return idx, nil
}

type cityRow struct {
	Code       int     `csv:"code"`
	Name       string  `csv:"name"`
	Population float64 `csv:"population"`
	BaseYear   int     `csv:"base_year"`
}

// LoadCities reads the city catalog. Population is in lakhs as of BaseYear.
func LoadCities(r io.Reader) ([]domain.City, error) {
	rows, err := decodeTable[cityRow](r)
	if err != nil {
		return nil, fmt.Errorf("read cities: %w", err)
	}

	seen := make(map[int]bool, len(rows))
	cities := make([]domain.City, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" || row.Population <= 0 || row.BaseYear <= 0 {
			return nil, fmt.Errorf("read cities: invalid entry for code %d", row.Code)
		}
		if seen[row.Code] {
			return nil, fmt.Errorf("read cities: duplicate code %d", row.Code)
		}
		seen[row.Code] = true
		cities = append(cities, domain.City(row))
	}
	return cities, nil
}

type categoryRow struct {
	Code int    `csv:"code"`
	Name string `csv:"name"`
}

// LoadCategories reads the crime-category catalog.
func LoadCategories(r io.Reader) ([]domain.CrimeCategory, error) {
	rows, err := decodeTable[categoryRow](r)
	if err != nil {
		return nil, fmt.Errorf("read crime categories: %w", err)
	}

	seen := make(map[int]bool, len(rows))
	categories := make([]domain.CrimeCategory, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			return nil, fmt.Errorf("read crime categories: empty name for code %d", row.Code)
		}
		if seen[row.Code] {
			return nil, fmt.Errorf("read crime categories: duplicate code %d", row.Code)
		}
		seen[row.Code] = true
		categories = append(categories, domain.CrimeCategory(row))
	}
	return categories, nil
}
