package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_BoundsForAllCitiesAndMonths(t *testing.T) {
	table := MustDefaultProfileTable()

	for _, city := range table.Cities() {
		for month := 1; month <= 12; month++ {
			c := table.Estimate(city, month)
			assert.GreaterOrEqual(t, c.Temperature, 15.0, "%s/%d temperature", city, month)
			assert.GreaterOrEqual(t, c.Humidity, 30.0, "%s/%d humidity", city, month)
			assert.LessOrEqual(t, c.Humidity, 100.0, "%s/%d humidity", city, month)
			assert.GreaterOrEqual(t, c.Rainfall, 0.0, "%s/%d rainfall", city, month)
		}
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	table := MustDefaultProfileTable()
	assert.Equal(t, table.Estimate("Mumbai", 8), table.Estimate("Mumbai", 8))
}

func TestEstimate_ChennaiMonsoon(t *testing.T) {
	table := MustDefaultProfileTable()

	c := table.Estimate("Chennai", 7)

	assert.Equal(t, Conditions{Temperature: 28, Humidity: 90, Rainfall: 190}, c)
}

func TestEstimate_SeasonalBands(t *testing.T) {
	table := MustDefaultProfileTable()

	tests := []struct {
		name  string
		month int
		want  Conditions
	}{
		// Delhi base: 25, 50, 15
		{"shoulder march", 3, Conditions{25, 50, 15}},
		{"pre-monsoon", 5, Conditions{30, 40, 15}},
		{"monsoon", 9, Conditions{23, 70, 165}},
		{"shoulder october", 10, Conditions{25, 50, 15}},
		{"winter december", 12, Conditions{20, 45, 5}},
		{"winter january", 1, Conditions{20, 45, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Estimate("Delhi", tt.month))
		})
	}
}

func TestEstimate_ClampsLowValues(t *testing.T) {
	table := MustDefaultProfileTable()

	// Shimla base 15 drops to 10 in winter; Jaipur humidity 40 drops to 30 pre-monsoon.
	shimla := table.Estimate("Shimla", 1)
	assert.Equal(t, 15.0, shimla.Temperature)
	assert.Equal(t, 10.0, shimla.Rainfall)

	jaipur := table.Estimate("Jaipur", 5)
	assert.Equal(t, 30.0, jaipur.Humidity)

	amritsar := table.Estimate("Amritsar", 12)
	assert.Equal(t, 0.0, amritsar.Rainfall)
}

func TestEstimate_HumidityCappedAt100(t *testing.T) {
	table, err := NewProfileTable(append(DefaultProfiles(), CityProfile{City: "Wet", TempBase: 27, HumBase: 95, RainBase: 80}))
	require.NoError(t, err)

	assert.Equal(t, 100.0, table.Estimate("Wet", 8).Humidity)
}

func TestEstimate_UnknownCityUsesDefault(t *testing.T) {
	table := MustDefaultProfileTable()

	for month := 1; month <= 12; month++ {
		assert.Equal(t, table.Estimate(DefaultCity, month), table.Estimate("UnknownCity", month))
		assert.Equal(t, table.Estimate(DefaultCity, month), table.Estimate("chennai", month), "lookup is case-sensitive")
	}
}

func TestLookup(t *testing.T) {
	table := MustDefaultProfileTable()

	p, ok := table.Lookup("Kochi")
	assert.True(t, ok)
	assert.Equal(t, 80.0, p.HumBase)

	p, ok = table.Lookup("Atlantis")
	assert.False(t, ok)
	assert.Equal(t, DefaultCity, p.City)
}

func TestCities_SortedAndCopied(t *testing.T) {
	table := MustDefaultProfileTable()

	cities := table.Cities()
	require.Len(t, cities, 36)
	assert.IsIncreasing(t, cities)

	cities[0] = "mutated"
	assert.Equal(t, "Agra", table.Cities()[0])
}

func TestNewProfileTable_OverrideReplacesEntry(t *testing.T) {
	profiles := append(DefaultProfiles(), CityProfile{City: "Delhi", TempBase: 30, HumBase: 60, RainBase: 20})

	table, err := NewProfileTable(profiles)
	require.NoError(t, err)

	assert.Equal(t, Conditions{30, 60, 20}, table.Estimate("Delhi", 3))
	assert.Equal(t, Conditions{30, 60, 20}, table.Estimate("Nowhere", 3))
}

func TestNewProfileTable_RequiresDefaultCity(t *testing.T) {
	_, err := NewProfileTable([]CityProfile{{City: "Pune", TempBase: 25, HumBase: 60, RainBase: 20}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), DefaultCity)
}

func TestNewProfileTable_RejectsInvalidProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile CityProfile
		want    string
	}{
		{"missing name", CityProfile{TempBase: 20, HumBase: 50}, "city name"},
		{"humidity too high", CityProfile{City: "X", HumBase: 120}, "hum_base"},
		{"negative rain", CityProfile{City: "X", HumBase: 50, RainBase: -1}, "rain_base"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfileTable(append(DefaultProfiles(), tt.profile))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
