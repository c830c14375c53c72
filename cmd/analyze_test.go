package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/proforma"
)

func TestRunAnalysisMergesOverlay(t *testing.T) {
	deal := &model.Deal{
		Name: "Maple Grove",
		Payload: map[string]any{
			"annual_revenue": 10_000_000.0,
			"ebitda":         1_200_000.0,
			"expense_information": map[string]any{
				"total_labor_cost": 4_800_000.0,
			},
		},
		// Server-computed labor ratio replaces the extracted 48%.
		Overlay: map[string]float64{"labor_pct": 45},
	}

	result := runAnalysis(deal, benchmark.Defaults())
	assert.Zero(t, result.TotalOpportunity)

	deal.Overlay = nil
	result = runAnalysis(deal, benchmark.Defaults())
	assert.InDelta(t, 300_000, result.TotalOpportunity, 1e-6)
}

func TestRunAnalysisUsesServerAnalysis(t *testing.T) {
	deal := &model.Deal{
		Payload: map[string]any{"annual_revenue": 10_000_000.0},
		ServerAnalysis: &proforma.ServerAnalysis{
			Opportunities: []proforma.ExternalOpportunity{
				{Category: "Revenue Growth", Amount: 500_000},
			},
		},
	}

	result := runAnalysis(deal, benchmark.Defaults())
	assert.InDelta(t, 500_000, result.TotalOpportunity, 1e-6)
	require.NotNil(t, result.StabilizedRevenue)
	assert.InDelta(t, 10_500_000, *result.StabilizedRevenue, 1e-6)
}

func TestParseOverrides(t *testing.T) {
	overrides, err := parseOverrides([]string{"labor_pct=43", "food_cost_per_day=9.25"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"labor_pct": 43, "food_cost_per_day": 9.25}, overrides)

	_, err = parseOverrides([]string{"labor_pct"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want key=value")

	_, err = parseOverrides([]string{"labor_pct=abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid override value")
}

func TestCommandRegistration(t *testing.T) {
	expected := []string{
		"serve", "analyze", "deals", "scenario", "invite",
		"benchmarks", "import", "recompute", "migrate",
	}
	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "command %s not registered", name)
	}
}
