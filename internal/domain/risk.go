package domain

import (
	"errors"
	"fmt"
)

// RiskLevel is the categorical dengue outbreak risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// RiskLevels lists every level in sorted label order, which is also the class
// index order used by the classifier.
var RiskLevels = []RiskLevel{RiskHigh, RiskLow, RiskModerate}

var (
	// ErrModelUnavailable is returned by every prediction path when no
	// trained model is loaded.
	ErrModelUnavailable = errors.New("ML model not loaded")

	// ErrInvalidMonth is returned when a month outside 1-12 is requested.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// ParseRiskLevel converts a label such as "Moderate" into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLow, RiskModerate, RiskHigh:
		return RiskLevel(s), nil
	}
	return "", fmt.Errorf("unknown risk level %q", s)
}

// Color returns the dashboard color for the level.
func (r RiskLevel) Color() string {
	switch r {
	case RiskLow:
		return "green"
	case RiskModerate:
		return "yellow"
	case RiskHigh:
		return "red"
	default:
		return "gray"
	}
}

func (r RiskLevel) String() string { return string(r) }

// ValidMonth reports whether m is a calendar month.
func ValidMonth(m int) bool { return m >= 1 && m <= 12 }
