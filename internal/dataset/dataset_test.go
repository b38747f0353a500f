package dataset

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crime-hotspot-service/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureSources() Sources {
	return Sources{
		Records:        "testdata/crime_records.csv",
		Locations:      "testdata/locations.csv",
		Cities:         "testdata/cities.csv",
		Categories:     "testdata/crime_categories.csv",
		Weights:        "testdata/severity_weights.yaml",
		DefaultCeiling: 500,
	}
}

func TestLoadFiles(t *testing.T) {
	ds, err := LoadFiles(fixtureSources(), discardLogger())
	require.NoError(t, err)

	assert.Len(t, ds.Records, 5)
	assert.Len(t, ds.Locations, 2)
	assert.Len(t, ds.Cities, 2)
	assert.Len(t, ds.Categories, 2)
	assert.Equal(t, 200.0, ds.Weights.Ceiling)
	assert.Equal(t, map[domain.CrimeType]float64{
		domain.CrimeMurder:     6,
		domain.CrimeKidnapping: 3,
		domain.CrimeBurglary:   1,
	}, ds.Weights.Weights)
	assert.Equal(t, 1, ds.Stats.UnknownSeverity)
}

func TestLoadFiles_OptionalSources(t *testing.T) {
	ds, err := LoadFiles(Sources{Records: "testdata/crime_records.csv", DefaultCeiling: 300}, discardLogger())
	require.NoError(t, err)

	assert.Empty(t, ds.Locations)
	assert.Empty(t, ds.Cities)
	assert.Empty(t, ds.Categories)
	assert.Equal(t, domain.DefaultSeverityWeights().Weights, ds.Weights.Weights)
	assert.Equal(t, 300.0, ds.Weights.Ceiling)
}

func TestLoadFiles_MissingFile(t *testing.T) {
	src := fixtureSources()
	src.Locations = "testdata/does_not_exist.csv"

	_, err := LoadFiles(src, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist.csv")
}

func TestLoadLocations(t *testing.T) {
	in := "State,District,Latitude,Longitude\nAndhra Pradesh,West Godavari,16.71,81.095\n"

	idx, err := LoadLocations(strings.NewReader(in))
	require.NoError(t, err)

	g, err := idx.Lookup("ANDHRA PRADESH", "west godavari")
	require.NoError(t, err)
	assert.Equal(t, domain.Geo{Lat: 16.71, Lon: 81.095}, g)
}

func TestLoadLocations_Invalid(t *testing.T) {
	_, err := LoadLocations(strings.NewReader("state,district,latitude,longitude\nAndhra Pradesh,Krishna,96.1,81.1\n"))
	require.ErrorIs(t, err, domain.ErrInvalidCoordinate)

	_, err = LoadLocations(strings.NewReader("state,district,latitude\nAndhra Pradesh,Krishna,16.1\n"))
	require.Error(t, err, "missing longitude column")

	_, err = LoadLocations(strings.NewReader(""))
	require.Error(t, err)
}

func TestLoadCities(t *testing.T) {
	in := "Code,Name,Population,Base Year\n0,Ahmedabad,63.50,2011\n14,Mumbai,184.10,2011\n"

	cities, err := LoadCities(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []domain.City{
		{Code: 0, Name: "Ahmedabad", Population: 63.5, BaseYear: 2011},
		{Code: 14, Name: "Mumbai", Population: 184.1, BaseYear: 2011},
	}, cities)
}

func TestLoadCities_Invalid(t *testing.T) {
	_, err := LoadCities(strings.NewReader("code,name,population,base_year\n1,Pune,50.5,2011\n1,Surat,45.8,2011\n"))
	require.ErrorContains(t, err, "duplicate code 1")

	_, err = LoadCities(strings.NewReader("code,name,population,base_year\n1,Pune,0,2011\n"))
	require.Error(t, err)

	_, err = LoadCities(strings.NewReader("code,name,population,base_year\n1,Pune,lots,2011\n"))
	require.Error(t, err)
}

func TestLoadCategories(t *testing.T) {
	cats, err := LoadCategories(strings.NewReader("code,name\n6,Cyber Crimes\n7,Economic Offences\n"))
	require.NoError(t, err)
	assert.Equal(t, []domain.CrimeCategory{{Code: 6, Name: "Cyber Crimes"}, {Code: 7, Name: "Economic Offences"}}, cats)

	_, err = LoadCategories(strings.NewReader("code,name\n6,Cyber Crimes\n6,Murder\n"))
	require.Error(t, err)
}

func TestDataset_Lookups(t *testing.T) {
	ds, err := LoadFiles(fixtureSources(), discardLogger())
	require.NoError(t, err)

	city, err := ds.City("  delhi ")
	require.NoError(t, err)
	assert.Equal(t, 4, city.Code)

	_, err = ds.City("Atlantis")
	require.ErrorIs(t, err, domain.ErrUnknownCity)

	cat, err := ds.Category("CRIME AGAINST WOMEN")
	require.NoError(t, err)
	assert.Equal(t, 5, cat.Code)

	_, err = ds.Category("Piracy")
	require.ErrorIs(t, err, domain.ErrUnknownCrimeCategory)
}

func TestDataset_Districts(t *testing.T) {
	ds := &Dataset{Records: []domain.CrimeRecord{
		{State: "Andhra Pradesh", District: "West Godavari"},
		{State: "Andhra Pradesh", District: "Krishna"},
		{State: "ANDHRA PRADESH", District: "krishna"},
		{State: "Andhra Pradesh"},
	}}

	assert.Equal(t, []District{
		{State: "Andhra Pradesh", District: "Krishna"},
		{State: "Andhra Pradesh", District: "West Godavari"},
	}, ds.Districts())
}

func TestDataset_Geolocated(t *testing.T) {
	ds, err := LoadFiles(fixtureSources(), discardLogger())
	require.NoError(t, err)

	geo := ds.Geolocated()
	assert.Len(t, geo, 4)
	for _, rec := range geo {
		assert.NotNil(t, rec.Geo)
	}
}
