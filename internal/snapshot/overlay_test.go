package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverlayServerWinsForRatios(t *testing.T) {
	s := Extract(fullPayload())
	require.NotNil(t, s.LaborPct)
	assert.InDelta(t, 48.0, *s.LaborPct, 1e-9)

	merged := MergeOverlay(s, map[string]float64{
		"labor_pct":          46.2,
		"direct_care_pct":    31.8,
		"food_cost_per_day":  8.95,
		"direct_care_total":  3_180_000,
	})

	require.NotNil(t, merged.LaborPct)
	assert.InDelta(t, 46.2, *merged.LaborPct, 1e-9)
	require.NotNil(t, merged.DirectCarePct)
	assert.InDelta(t, 31.8, *merged.DirectCarePct, 1e-9)
	require.NotNil(t, merged.FoodCostPerDay)
	assert.InDelta(t, 8.95, *merged.FoodCostPerDay, 1e-9)
	require.NotNil(t, merged.DirectCare)
	assert.InDelta(t, 3_180_000, *merged.DirectCare, 1e-9)

	// Untouched ratio keeps the client-derived value.
	require.NotNil(t, merged.UtilitiesPct)
	assert.InDelta(t, 3.2, *merged.UtilitiesPct, 1e-9)
}

func TestMergeOverlayNeverReplacesPrimaryFigures(t *testing.T) {
	s := Extract(fullPayload())

	merged := MergeOverlay(s, map[string]float64{
		"revenue":   1.0,
		"ebitda":    2.0,
		"ebitdar":   3.0,
		"occupancy": 4.0,
		"beds":      5.0,
	})

	require.NotNil(t, merged.Revenue)
	assert.Equal(t, 10_000_000.0, *merged.Revenue)
	require.NotNil(t, merged.EBITDA)
	assert.Equal(t, 1_200_000.0, *merged.EBITDA)
	require.NotNil(t, merged.EBITDAR)
	assert.Equal(t, 1_800_000.0, *merged.EBITDAR)
	require.NotNil(t, merged.Occupancy)
	assert.Equal(t, 88.0, *merged.Occupancy)
	require.NotNil(t, merged.Beds)
	assert.Equal(t, 120.0, *merged.Beds)
}

func TestMergeOverlayFillsMissingClientFields(t *testing.T) {
	// Client extraction had no expense data at all; overlay supplies it.
	s := Extract(map[string]any{"annual_revenue": 2_000_000.0})
	assert.Nil(t, s.LaborPct)

	merged := MergeOverlay(s, map[string]float64{"labor_pct": 44.0})
	require.NotNil(t, merged.LaborPct)
	assert.Equal(t, 44.0, *merged.LaborPct)
}

func TestMergeOverlayEmptyIsIdentity(t *testing.T) {
	s := Extract(fullPayload())
	assert.Equal(t, s, MergeOverlay(s, nil))
	assert.Equal(t, s, MergeOverlay(s, map[string]float64{}))
}

func TestMergeOverlayDoesNotMutateInput(t *testing.T) {
	s := Extract(fullPayload())
	before := *s.LaborPct

	_ = MergeOverlay(s, map[string]float64{"labor_pct": 1.0})
	assert.Equal(t, before, *s.LaborPct)
}
