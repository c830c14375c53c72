package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/store"
)

func TestRecomputeScenarios(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))

	deal, err := s.CreateDeal(ctx, "Maple Grove", model.Facility{}, map[string]any{
		"annual_revenue": 10_000_000.0,
		"ebitda":         1_200_000.0,
		"expense_information": map[string]any{
			"total_labor_cost": 4_800_000.0,
		},
	})
	require.NoError(t, err)

	// One scenario with a stale cache (no result at all), one already
	// current under the default benchmarks.
	stale := &model.Scenario{DealID: deal.ID, Name: "stale", Overrides: map[string]float64{"labor_pct": 43}}
	require.NoError(t, s.SaveScenario(ctx, stale))

	currentCfg, err := benchmark.Defaults().Apply(nil)
	require.NoError(t, err)
	fresh := &model.Scenario{DealID: deal.ID, Name: "fresh", Overrides: map[string]float64{}}
	require.NoError(t, s.SaveScenario(ctx, fresh))
	freshResult := runAnalysis(deal, currentCfg)
	require.NoError(t, s.UpdateScenarioResult(ctx, fresh.ID, &freshResult, currentCfg.Hash()))

	refreshed, skipped, err := recomputeScenarios(ctx, s, benchmark.Defaults(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), refreshed)
	assert.Equal(t, int64(1), skipped)

	got, err := s.GetScenario(ctx, stale.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Result)
	// labor 48 vs overridden 43 -> 5 pts of 10M
	assert.InDelta(t, 500_000, got.Result.TotalOpportunity, 1e-6)
	assert.NotEmpty(t, got.BenchmarkHash)
}

func TestRecomputeRejectsUnknownOverride(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))

	deal, err := s.CreateDeal(ctx, "Maple Grove", model.Facility{}, nil)
	require.NoError(t, err)

	// Simulate an override key that is no longer in the catalog.
	bad := &model.Scenario{DealID: deal.ID, Name: "bad", Overrides: map[string]float64{"retired_key": 1}}
	require.NoError(t, s.SaveScenario(ctx, bad))

	_, _, err = recomputeScenarios(ctx, s, benchmark.Defaults(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
}
