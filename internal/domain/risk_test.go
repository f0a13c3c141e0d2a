package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskLevel_Color(t *testing.T) {
	assert.Equal(t, "green", RiskLow.Color())
	assert.Equal(t, "yellow", RiskModerate.Color())
	assert.Equal(t, "red", RiskHigh.Color())
	assert.Equal(t, "gray", RiskLevel("Unknown").Color())
	assert.Equal(t, "gray", RiskLevel("").Color())
}

func TestParseRiskLevel(t *testing.T) {
	for _, l := range RiskLevels {
		got, err := ParseRiskLevel(string(l))
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}

	_, err := ParseRiskLevel("high")
	require.Error(t, err)
}

func TestRiskLevels_SortedOrder(t *testing.T) {
	names := make([]string, len(RiskLevels))
	for i, l := range RiskLevels {
		names[i] = string(l)
	}
	assert.IsIncreasing(t, names)
}

func TestValidMonth(t *testing.T) {
	assert.False(t, ValidMonth(0))
	assert.True(t, ValidMonth(1))
	assert.True(t, ValidMonth(12))
	assert.False(t, ValidMonth(13))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 28.3, Round1(28.26))
	assert.Equal(t, 87.57, Round2(87.566))
	assert.Equal(t, 30.0, Clamp(12, 30, 100))
	assert.Equal(t, 100.0, Clamp(120, 30, 100))
}
