package dataset

import (
	"fmt"

	"github.com/couchcryptid/dengue-risk-service/internal/domain"
)

// CheckSample reports the first generation invariant a sample violates.
func CheckSample(s domain.TrainingSample) error {
	switch {
	case !domain.ValidMonth(s.Month):
		return fmt.Errorf("month %d out of range", s.Month)
	case s.Temperature < minTemp || s.Temperature > maxTemp:
		return fmt.Errorf("temperature %.2f out of range [%g,%g]", s.Temperature, minTemp, maxTemp)
	case s.Humidity < minHum || s.Humidity > maxHum:
		return fmt.Errorf("humidity %.2f out of range [%g,%g]", s.Humidity, minHum, maxHum)
	case s.Rainfall < minRain || s.Rainfall > maxRain:
		return fmt.Errorf("rainfall %.2f out of range [%g,%g]", s.Rainfall, minRain, maxRain)
	case s.DengueCases < 0:
		return fmt.Errorf("negative case count %d", s.DengueCases)
	}
	if _, err := domain.ParseRiskLevel(string(s.RiskLevel)); err != nil {
		return err
	}
	return nil
}
