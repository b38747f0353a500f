package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearRecord(state, district string, year, murders int) CrimeRecord {
	return CrimeRecord{State: state, District: district, Year: year, Counts: map[CrimeType]int{CrimeMurder: murders}}
}

func TestTrend_OneEntryPerYear(t *testing.T) {
	w := DefaultSeverityWeights()
	byYear := map[int][]CrimeRecord{
		2023: {yearRecord("Andhra Pradesh", "Krishna", 2023, 10)},
		2024: {yearRecord("Andhra Pradesh", "Krishna", 2024, 20)},
	}

	trend := Trend(byYear, w)

	require.Len(t, trend, 2)
	assert.Equal(t, SeverityIndex(byYear[2023], w), trend[2023])
	assert.Equal(t, SeverityIndex(byYear[2024], w), trend[2024])
	assert.Greater(t, trend[2024], trend[2023])
}

func TestTrend_EmptyYearScoresZero(t *testing.T) {
	trend := Trend(map[int][]CrimeRecord{2022: {}}, DefaultSeverityWeights())

	v, ok := trend[2022]
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestTrend_MissingYearsAbsent(t *testing.T) {
	trend := Trend(map[int][]CrimeRecord{
		2020: {yearRecord("Andhra Pradesh", "Krishna", 2020, 1)},
		2023: {yearRecord("Andhra Pradesh", "Krishna", 2023, 1)},
	}, DefaultSeverityWeights())

	assert.NotContains(t, trend, 2021)
	assert.NotContains(t, trend, 2022)
}

func TestSortedTrend(t *testing.T) {
	points := SortedTrend(map[int]float64{2024: 3.5, 2021: 1.25, 2023: 0})

	assert.Equal(t, []TrendPoint{
		{Year: 2021, Index: 1.25},
		{Year: 2023, Index: 0},
		{Year: 2024, Index: 3.5},
	}, points)
	assert.Empty(t, SortedTrend(nil))
}

func TestGroupByYear(t *testing.T) {
	records := []CrimeRecord{
		yearRecord("Andhra Pradesh", "Krishna", 2023, 1),
		yearRecord("Andhra Pradesh", "Krishna", 2024, 2),
		yearRecord("Andhra Pradesh", "Krishna", 2023, 3),
		yearRecord("Andhra Pradesh", "Krishna", 0, 4),
	}

	byYear := GroupByYear(records)

	require.Len(t, byYear, 2)
	assert.Len(t, byYear[2023], 2)
	assert.Len(t, byYear[2024], 1)
}

func TestFilterDistrict(t *testing.T) {
	records := []CrimeRecord{
		yearRecord("Andhra Pradesh", "Krishna", 2023, 1),
		yearRecord("ANDHRA PRADESH", "krishna", 2024, 2),
		yearRecord("Andhra Pradesh", "West Godavari", 2023, 3),
		yearRecord("Telangana", "Krishna", 2023, 4),
	}

	got := FilterDistrict(records, "andhra pradesh", " Krishna ")

	require.Len(t, got, 2)
	assert.Equal(t, 2023, got[0].Year)
	assert.Equal(t, 2024, got[1].Year)
	assert.Empty(t, FilterDistrict(records, "Kerala", "Kozhikode"))
}

func TestFilterYear(t *testing.T) {
	records := []CrimeRecord{
		yearRecord("Andhra Pradesh", "Krishna", 2023, 1),
		yearRecord("Andhra Pradesh", "Krishna", 2024, 2),
	}

	got := FilterYear(records, 2024)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Counts[CrimeMurder])
}
