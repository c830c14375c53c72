package proforma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
)

func opp(category string, amount float64) OpportunityLineItem {
	return OpportunityLineItem{Category: category, Opportunity: &amount}
}

func TestBuildWaterfallNegativeStart(t *testing.T) {
	// A distressed facility: EBITDA starts deep below zero and the
	// opportunity steps carry the bridge across the axis.
	opps := []OpportunityLineItem{
		opp("Labor", 417_000),
		opp("Agency Labor", 193_000),
		opp("Food Cost", 86_000),
		opp("Bad Debt", 78_000),
	}
	segments := BuildWaterfall(-706_544, opps, 67_456)
	require.Len(t, segments, 6)

	start := segments[0]
	assert.Equal(t, SegmentStart, start.Type)
	assert.Equal(t, -706_544.0, start.Spacer)
	assert.Equal(t, 706_544.0, start.Value)
	assert.Equal(t, -706_544.0, start.DisplayValue)

	// Running total after all steps matches the independently supplied
	// stabilized figure: -706544+417000+193000+86000+78000 = 67,456.
	assert.Equal(t, 67_456.0, segments[4].RunningTotal)

	end := segments[5]
	assert.Equal(t, SegmentEnd, end.Type)
	assert.Equal(t, 0.0, end.Spacer)
	assert.Equal(t, 67_456.0, end.Value)
}

func TestBuildWaterfallSpacerClampBelowZero(t *testing.T) {
	// First step starts from a negative running total: spacer clamps at
	// zero and NegSpacer carries the below-axis base.
	segments := BuildWaterfall(-100_000, []OpportunityLineItem{opp("Labor", 60_000)}, -40_000)

	step := segments[1]
	assert.Equal(t, 0.0, step.Spacer)
	assert.Equal(t, -100_000.0, step.NegSpacer)
	assert.Equal(t, 60_000.0, step.Value)
	assert.Equal(t, -40_000.0, step.RunningTotal)

	// Negative end anchor hangs below the axis.
	end := segments[2]
	assert.Equal(t, -40_000.0, end.Spacer)
	assert.Equal(t, 40_000.0, end.Value)
}

func TestBuildWaterfallPositivePath(t *testing.T) {
	segments := BuildWaterfall(500_000, []OpportunityLineItem{
		opp("Labor", 200_000),
		opp("Utilities", 50_000),
	}, 750_000)
	require.Len(t, segments, 4)

	// Start bar sits on the axis.
	assert.Equal(t, 0.0, segments[0].Spacer)
	assert.Equal(t, 500_000.0, segments[0].Value)

	// Each step floats on the prior running total.
	assert.Equal(t, 500_000.0, segments[1].Spacer)
	assert.Equal(t, 200_000.0, segments[1].Value)
	assert.Equal(t, 700_000.0, segments[1].RunningTotal)

	assert.Equal(t, 700_000.0, segments[2].Spacer)
	assert.Equal(t, 50_000.0, segments[2].Value)
	assert.Equal(t, 750_000.0, segments[2].RunningTotal)

	assert.Equal(t, 0.0, segments[3].Spacer)
	assert.Equal(t, 750_000.0, segments[3].Value)
}

func TestBuildWaterfallNegativeOpportunity(t *testing.T) {
	// The calculator never emits negative opportunities, but the transform
	// must render one: the bar spans newTotal -> running.
	segments := BuildWaterfall(300_000, []OpportunityLineItem{opp("Adjustment", -120_000)}, 180_000)

	step := segments[1]
	assert.Equal(t, 180_000.0, step.Spacer) // bar base at the new total
	assert.Equal(t, 120_000.0, step.Value)  // visible height is |value|
	assert.Equal(t, -120_000.0, step.DisplayValue)
	assert.Equal(t, 180_000.0, step.RunningTotal)
}

func TestBuildWaterfallNegativeOpportunityCrossingZero(t *testing.T) {
	// Falling bar that ends below the axis: spacer clamps, NegSpacer
	// carries the new (negative) total.
	segments := BuildWaterfall(50_000, []OpportunityLineItem{opp("Adjustment", -80_000)}, -30_000)

	step := segments[1]
	assert.Equal(t, 0.0, step.Spacer)
	assert.Equal(t, -30_000.0, step.NegSpacer)
	assert.Equal(t, 80_000.0, step.Value)
	assert.Equal(t, -30_000.0, step.RunningTotal)
}

func TestBuildWaterfallSkipsNilIncludesZero(t *testing.T) {
	segments := BuildWaterfall(100_000, []OpportunityLineItem{
		{Category: "Utilities"}, // nil opportunity: no data, no bar
		opp("Insurance", 0),     // zero is a legitimate flat step
	}, 100_000)

	require.Len(t, segments, 3)
	assert.Equal(t, "Insurance", segments[1].Label)
	assert.Equal(t, 0.0, segments[1].Value)
	assert.Equal(t, 100_000.0, segments[1].RunningTotal)
}

func TestBuildWaterfallEndIndependentOfRunningTotal(t *testing.T) {
	// The end bar always draws from the authoritative stabilized value,
	// even when the opportunity list does not fully account for it.
	segments := BuildWaterfall(100_000, []OpportunityLineItem{opp("Labor", 50_000)}, 200_000)

	end := segments[len(segments)-1]
	assert.Equal(t, 200_000.0, end.Value)
	assert.Equal(t, 200_000.0, end.DisplayValue)
	assert.NotEqual(t, segments[1].RunningTotal, end.DisplayValue)
}

func TestBuildWaterfallNoOpportunities(t *testing.T) {
	segments := BuildWaterfall(250_000, nil, 250_000)
	require.Len(t, segments, 2)
	assert.Equal(t, SegmentStart, segments[0].Type)
	assert.Equal(t, SegmentEnd, segments[1].Type)
}

func TestBuildWaterfallFromAnalysis(t *testing.T) {
	result := Calculate(testSnapshot(), benchmark.Defaults(), nil)
	require.NotNil(t, result.StabilizedEBITDA)

	segments := BuildWaterfall(1_200_000, result.Opportunities, *result.StabilizedEBITDA)

	// 2 anchors + labor + bad debt (the only non-nil opportunities).
	require.Len(t, segments, 4)
	assert.Equal(t, "Labor", segments[1].Label)
	assert.Equal(t, "Bad Debt", segments[2].Label)
	// The bridge is internally consistent for a fully-accounted list.
	assert.Equal(t, *result.StabilizedEBITDA, segments[2].RunningTotal)
}
