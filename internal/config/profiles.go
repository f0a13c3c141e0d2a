package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
)

// LoadProfiles returns the built-in city profiles merged with the entries of
// the optional YAML file at path. File entries replace built-in cities of the
// same name and add new ones:
//
//	cities:
//	  - city: Goa
//	    temp_base: 28
//	    hum_base: 78
//	    rain_base: 45
func LoadProfiles(path string) ([]domain.CityProfile, error) {
	profiles := domain.DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load city profiles %s: %w", path, err)
	}

	var overrides []domain.CityProfile
	if err := k.Unmarshal("cities", &overrides); err != nil {
		return nil, fmt.Errorf("parse city profiles %s: %w", path, err)
	}

	return append(profiles, overrides...), nil
}

// LoadProfileTable builds the immutable profile table used by the service.
func LoadProfileTable(path string) (*domain.ProfileTable, error) {
	profiles, err := LoadProfiles(path)
	if err != nil {
		return nil, err
	}
	return domain.NewProfileTable(profiles)
}
