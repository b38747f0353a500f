package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"high", SeverityHigh},
		{"High", SeverityHigh},
		{" MODERATE ", SeverityModerate},
		{"low", SeverityLow},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "severe", "mid"} {
		_, err := ParseSeverity(bad)
		assert.Error(t, err, bad)
	}
}

func TestSeverityScore(t *testing.T) {
	assert.Equal(t, 1, SeverityLow.Score())
	assert.Equal(t, 2, SeverityModerate.Score())
	assert.Equal(t, 3, SeverityHigh.Score())
	assert.Zero(t, Severity("").Score())
}

func TestParseCrimeType(t *testing.T) {
	tests := []struct {
		in   string
		want CrimeType
	}{
		{"MURDER", CrimeMurder},
		{"Rape", CrimeRape},
		{"KIDNAPPING & ABDUCTION", CrimeKidnapping},
		{"kidnapping_abduction", CrimeKidnapping},
		{"ROBBERY", CrimeRobbery},
		{"Burglary", CrimeBurglary},
		{"Dowry Deaths", CrimeDowryDeaths},
	}
	for _, tt := range tests {
		got, ok := ParseCrimeType(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, ok := ParseCrimeType("ARSON")
	assert.False(t, ok)
}

func TestLocationKey_Folding(t *testing.T) {
	assert.Equal(t, NewLocationKey("Andhra Pradesh", "West Godavari"), NewLocationKey("ANDHRA  PRADESH", " west godavari"))
	assert.NotEqual(t, NewLocationKey("Andhra Pradesh", "Krishna"), NewLocationKey("Telangana", "Krishna"))
	assert.True(t, SameName("Kozhikode", "KOZHIKODE"))
	assert.False(t, SameName("Kochi", "Kozhikode"))
}

func TestLocationIndex_Lookup(t *testing.T) {
	idx := LocationIndex{NewLocationKey("Andhra Pradesh", "Krishna"): {Lat: 16.19, Lon: 81.13}}

	g, err := idx.Lookup("andhra pradesh", "KRISHNA")
	require.NoError(t, err)
	assert.Equal(t, Geo{Lat: 16.19, Lon: 81.13}, g)

	_, err = idx.Lookup("Andhra Pradesh", "Guntur")
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestCrimeRecord_HasValidGeo(t *testing.T) {
	assert.False(t, CrimeRecord{}.HasValidGeo())
	assert.False(t, CrimeRecord{Geo: &Geo{Lat: 91, Lon: 0}}.HasValidGeo())
	assert.True(t, CrimeRecord{Geo: &Geo{Lat: 16.71, Lon: 81.095}}.HasValidGeo())
}
