package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultCity is the profile used for cities missing from the table.
const DefaultCity = "Delhi"

// CityProfile holds the baseline climate of a city.
type CityProfile struct {
	City     string  `koanf:"city" json:"city"`
	TempBase float64 `koanf:"temp_base" json:"temp_base"`
	HumBase  float64 `koanf:"hum_base" json:"hum_base"`
	RainBase float64 `koanf:"rain_base" json:"rain_base"`
}

// Validate checks that the profile is usable as a baseline.
func (p CityProfile) Validate() error {
	if p.City == "" {
		return errors.New("city name is required")
	}
	if p.HumBase < 0 || p.HumBase > 100 {
		return fmt.Errorf("%s: hum_base %.1f out of range [0,100]", p.City, p.HumBase)
	}
	if p.RainBase < 0 {
		return fmt.Errorf("%s: rain_base %.1f must not be negative", p.City, p.RainBase)
	}
	return nil
}

// DefaultProfiles returns the built-in baselines for supported cities.
func DefaultProfiles() []CityProfile {
	return []CityProfile{
		{City: "Agra", TempBase: 25, HumBase: 50, RainBase: 15},
		{City: "Ahmedabad", TempBase: 29, HumBase: 55, RainBase: 15},
		{City: "Amritsar", TempBase: 23, HumBase: 50, RainBase: 10},
		{City: "Bangalore", TempBase: 24, HumBase: 60, RainBase: 25},
		{City: "Bhopal", TempBase: 25, HumBase: 50, RainBase: 20},
		{City: "Bhubaneswar", TempBase: 28, HumBase: 70, RainBase: 40},
		{City: "Chandigarh", TempBase: 24, HumBase: 50, RainBase: 15},
		{City: "Chennai", TempBase: 30, HumBase: 70, RainBase: 40},
		{City: "Dehradun", TempBase: 21, HumBase: 60, RainBase: 40},
		{City: "Delhi", TempBase: 25, HumBase: 50, RainBase: 15},
		{City: "Faridabad", TempBase: 25, HumBase: 50, RainBase: 15},
		{City: "Ghaziabad", TempBase: 25, HumBase: 50, RainBase: 15},
		{City: "Guwahati", TempBase: 25, HumBase: 75, RainBase: 60},
		{City: "Hyderabad", TempBase: 26, HumBase: 65, RainBase: 30},
		{City: "Indore", TempBase: 25, HumBase: 50, RainBase: 20},
		{City: "Jaipur", TempBase: 26, HumBase: 40, RainBase: 10},
		{City: "Kanpur", TempBase: 25, HumBase: 55, RainBase: 15},
		{City: "Kochi", TempBase: 29, HumBase: 80, RainBase: 60},
		{City: "Kolkata", TempBase: 27, HumBase: 75, RainBase: 60},
		{City: "Lucknow", TempBase: 25, HumBase: 55, RainBase: 15},
		{City: "Ludhiana", TempBase: 24, HumBase: 50, RainBase: 10},
		{City: "Meerut", TempBase: 24, HumBase: 55, RainBase: 15},
		{City: "Mumbai", TempBase: 28, HumBase: 75, RainBase: 50},
		{City: "Nagpur", TempBase: 27, HumBase: 50, RainBase: 20},
		{City: "Nashik", TempBase: 24, HumBase: 55, RainBase: 20},
		{City: "Patna", TempBase: 26, HumBase: 60, RainBase: 25},
		{City: "Pune", TempBase: 25, HumBase: 60, RainBase: 20},
		{City: "Rajkot", TempBase: 28, HumBase: 55, RainBase: 15},
		{City: "Shimla", TempBase: 15, HumBase: 60, RainBase: 20},
		{City: "Srinagar", TempBase: 15, HumBase: 60, RainBase: 10},
		{City: "Surat", TempBase: 28, HumBase: 60, RainBase: 25},
		{City: "Thane", TempBase: 28, HumBase: 75, RainBase: 50},
		{City: "Thiruvananthapuram", TempBase: 28, HumBase: 80, RainBase: 50},
		{City: "Vadodara", TempBase: 28, HumBase: 55, RainBase: 15},
		{City: "Varanasi", TempBase: 26, HumBase: 60, RainBase: 20},
		{City: "Visakhapatnam", TempBase: 28, HumBase: 70, RainBase: 30},
	}
}

// ProfileTable is an immutable city -> baseline lookup. It is safe for
// concurrent use.
type ProfileTable struct {
	profiles map[string]CityProfile
	fallback CityProfile
	cities   []string
}

// NewProfileTable builds a table from profiles. Later entries with the same
// city name replace earlier ones. The table must contain DefaultCity.
func NewProfileTable(profiles []CityProfile) (*ProfileTable, error) {
	m := make(map[string]CityProfile, len(profiles))
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid city profile: %w", err)
		}
		m[p.City] = p
	}

	fallback, ok := m[DefaultCity]
	if !ok {
		return nil, fmt.Errorf("profile table must include default city %q", DefaultCity)
	}

	cities := make([]string, 0, len(m))
	for c := range m {
		cities = append(cities, c)
	}
	sort.Strings(cities)

	return &ProfileTable{profiles: m, fallback: fallback, cities: cities}, nil
}

// MustDefaultProfileTable returns the table of built-in profiles.
func MustDefaultProfileTable() *ProfileTable {
	t, err := NewProfileTable(DefaultProfiles())
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the profile for city. Unknown cities resolve to the default
// city's profile and ok=false.
func (t *ProfileTable) Lookup(city string) (CityProfile, bool) {
	p, ok := t.profiles[city]
	if !ok {
		return t.fallback, false
	}
	return p, true
}

// Cities returns the supported city names in sorted order.
func (t *ProfileTable) Cities() []string {
	out := make([]string, len(t.cities))
	copy(out, t.cities)
	return out
}

// Estimate returns the seasonal weather estimate for a city and month.
func (t *ProfileTable) Estimate(city string, month int) Conditions {
	p, _ := t.Lookup(city)
	return p.Estimate(month)
}

// Estimate applies the month's seasonal adjustment to the baseline.
func (p CityProfile) Estimate(month int) Conditions {
	temp, hum, rain := p.TempBase, p.HumBase, p.RainBase

	switch {
	case month >= 4 && month <= 6: // pre-monsoon
		temp += 5
		hum -= 10
	case month >= 7 && month <= 9: // monsoon
		temp -= 2
		hum += 20
		rain += 150
	case month >= 11 || month <= 2: // winter
		temp -= 5
		hum -= 5
		rain -= 10
	}

	return Conditions{
		Temperature: math.Max(15, temp),
		Humidity:    Clamp(hum, 30, 100),
		Rainfall:    math.Max(0, rain),
	}
}
