package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geoRecord(id string, sev Severity, g *Geo) CrimeRecord {
	return CrimeRecord{ID: id, Area: "area-" + id, Severity: sev, Geo: g}
}

func TestFindHotspots_SelectedPointExample(t *testing.T) {
	records := []CrimeRecord{
		geoRecord("eluru", SeverityHigh, &Geo{Lat: 16.71, Lon: 81.095}),
		geoRecord("far", SeverityLow, &Geo{Lat: 20.0, Lon: 85.0}),
	}
	q := HotspotQuery{Point: Geo{Lat: 16.71, Lon: 81.095}, RadiusKm: 5}

	result, err := FindHotspots(q, records)
	require.NoError(t, err)

	require.Len(t, result[SeverityHigh], 1)
	assert.Equal(t, "eluru", result[SeverityHigh][0].Record.ID)
	assert.Zero(t, result[SeverityHigh][0].DistanceKm)
	assert.Empty(t, result[SeverityModerate])
	assert.Equal(t, 1, result.Total())
}

func TestFindHotspots_RadiusBoundaryInclusive(t *testing.T) {
	origin := Geo{Lat: 0, Lon: 0}
	atFive := northOf(origin, 5)
	justOutside := northOf(origin, 5.001)

	d, err := DistanceKm(origin, atFive)
	require.NoError(t, err)
	require.InDelta(t, 5.0, d, 1e-9)

	records := []CrimeRecord{
		geoRecord("boundary", SeverityHigh, &atFive),
		geoRecord("outside", SeverityHigh, &justOutside),
	}

	// A radius equal to the computed distance must include the record.
	result, err := FindHotspots(HotspotQuery{Point: origin, RadiusKm: d}, records)
	require.NoError(t, err)
	require.Len(t, result[SeverityHigh], 1)
	assert.Equal(t, "boundary", result[SeverityHigh][0].Record.ID)

	result, err = FindHotspots(HotspotQuery{Point: origin, RadiusKm: 5}, records)
	require.NoError(t, err)
	require.Len(t, result[SeverityHigh], 1, "5.000 km is included and 5.001 km excluded at radius 5")
	assert.Equal(t, "boundary", result[SeverityHigh][0].Record.ID)
}

func TestFindHotspots_SkipsMissingAndInvalidCoordinates(t *testing.T) {
	origin := Geo{Lat: 16.71, Lon: 81.095}
	records := []CrimeRecord{
		geoRecord("nil-geo", SeverityHigh, nil),
		geoRecord("bad-lat", SeverityHigh, &Geo{Lat: 116.71, Lon: 81.095}),
		geoRecord("ok", SeverityModerate, &Geo{Lat: 16.72, Lon: 81.1}),
	}

	result, err := FindHotspots(HotspotQuery{Point: origin, RadiusKm: 5}, records)
	require.NoError(t, err)

	assert.Empty(t, result[SeverityHigh])
	require.Len(t, result[SeverityModerate], 1)
	assert.Equal(t, "ok", result[SeverityModerate][0].Record.ID)
}

func TestFindHotspots_CustomTiers(t *testing.T) {
	p := Geo{Lat: 16.71, Lon: 81.095}
	records := []CrimeRecord{
		geoRecord("h", SeverityHigh, &p),
		geoRecord("m", SeverityModerate, &p),
		geoRecord("l", SeverityLow, &p),
	}

	result, err := FindHotspots(HotspotQuery{Point: p, RadiusKm: 1}, records, SeverityLow)
	require.NoError(t, err)

	assert.Len(t, result, 1)
	require.Len(t, result[SeverityLow], 1)
	assert.Equal(t, "l", result[SeverityLow][0].Record.ID)
}

func TestFindHotspots_AllTiersPresentWhenEmpty(t *testing.T) {
	result, err := FindHotspots(HotspotQuery{Point: Geo{Lat: 1, Lon: 1}, RadiusKm: 5}, nil)
	require.NoError(t, err)

	assert.Contains(t, result, SeverityHigh)
	assert.Contains(t, result, SeverityModerate)
	assert.Zero(t, result.Total())
}

func TestFindHotspots_KeepsInputOrder(t *testing.T) {
	origin := Geo{Lat: 16.71, Lon: 81.095}
	far := northOf(origin, 3)
	near := northOf(origin, 1)
	records := []CrimeRecord{
		geoRecord("far", SeverityHigh, &far),
		geoRecord("near", SeverityHigh, &near),
	}

	result, err := FindHotspots(HotspotQuery{Point: origin, RadiusKm: 5}, records)
	require.NoError(t, err)
	require.Len(t, result[SeverityHigh], 2)
	assert.Equal(t, "far", result[SeverityHigh][0].Record.ID)
	assert.Equal(t, "near", result[SeverityHigh][1].Record.ID)
	assert.InDelta(t, 3.0, result[SeverityHigh][0].DistanceKm, 1e-9)
}

func TestFindHotspots_InvalidQuery(t *testing.T) {
	_, err := FindHotspots(HotspotQuery{Point: Geo{Lat: 95, Lon: 0}, RadiusKm: 5}, nil)
	require.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = FindHotspots(HotspotQuery{Point: Geo{Lat: 10, Lon: 10}, RadiusKm: -1}, nil)
	require.ErrorIs(t, err, ErrInvalidRadius)
}
