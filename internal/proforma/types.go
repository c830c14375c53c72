// Package proforma implements the benchmarking engine: per-line variance
// and opportunity calculation against configurable targets, stabilized
// EBITDA aggregation, and the EBITDA bridge (waterfall) data transform.
package proforma

import (
	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
)

// Status classifies a line item's position relative to its benchmark.
type Status string

const (
	StatusOnTarget    Status = "on_target"
	StatusBelowTarget Status = "below_target" // revenue-side metric under benchmark
	StatusAboveTarget Status = "above_target" // expense-side metric over benchmark
	StatusCritical    Status = "critical"     // more than 10% relative variance, unfavorable
	StatusUnavailable Status = "unavailable"  // actual missing from source data
)

// Priority tags an opportunity for display and waterfall coloring. It is
// presentation-only and carries no weight in the arithmetic.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// LineItem is one benchmarked metric evaluated against its target.
// Actual is the comparison value in benchmark units (a derived
// percent-of-revenue for expense ratios, dollars per resident day for food
// cost). Nil fields mean the source data was insufficient, never zero.
type LineItem struct {
	Key         benchmark.Key  `json:"key"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Unit        benchmark.Unit `json:"unit"`
	Actual      *float64       `json:"actual"`
	Benchmark   float64        `json:"benchmark"`
	Variance    *float64       `json:"variance"`
	PctVariance *float64       `json:"pct_variance"` // relative to benchmark, in percent
	Status      Status         `json:"status"`
	Opportunity *float64       `json:"opportunity"` // annualized dollars; nil if favorable or unknowable
	Priority    Priority       `json:"priority,omitempty"`
}

// OpportunityLineItem is one entry in the ordered opportunity list: the
// annualized dollar improvement available if the metric moved exactly to
// benchmark. Opportunity is nil or positive, never negative.
type OpportunityLineItem struct {
	Category    string         `json:"category"`
	Current     *float64       `json:"current"`
	Target      float64        `json:"target"`
	Unit        benchmark.Unit `json:"unit"`
	Opportunity *float64       `json:"opportunity"`
	Priority    Priority       `json:"priority,omitempty"`
	Description string         `json:"description,omitempty"`
}

// ExternalOpportunity is an opportunity sourced from the server-side
// analysis rather than derived locally (Revenue Growth in practice).
type ExternalOpportunity struct {
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Current     *float64 `json:"current,omitempty"`
	Target      float64  `json:"target,omitempty"`
	Amount      float64  `json:"amount"`
	Priority    Priority `json:"priority,omitempty"`
}

// ServerAnalysis is the optional server-computed analysis overlay: a more
// authoritative stabilized revenue plus externally-derived opportunity
// lines that the local engine cannot produce.
type ServerAnalysis struct {
	StabilizedRevenue *float64              `json:"stabilized_revenue,omitempty"`
	Opportunities     []ExternalOpportunity `json:"opportunities,omitempty"`
}

// AnalysisResult is the full output of one benchmarking pass. It is
// recomputed wholesale on every input change and never patched in place.
type AnalysisResult struct {
	TotalOpportunity  float64               `json:"total_opportunity"`
	StabilizedRevenue *float64              `json:"stabilized_revenue"`
	StabilizedEBITDA  *float64              `json:"stabilized_ebitda"`
	StabilizedEBITDAR *float64              `json:"stabilized_ebitdar"`
	Lines             []LineItem            `json:"lines"`
	Opportunities     []OpportunityLineItem `json:"opportunities"`
	Issues            []LineItem            `json:"issues"`
	BenchmarkHash     string                `json:"benchmark_hash"`
}

// SegmentType distinguishes the waterfall's anchor bars from the
// opportunity steps between them.
type SegmentType string

const (
	SegmentStart       SegmentType = "start"
	SegmentOpportunity SegmentType = "opportunity"
	SegmentEnd         SegmentType = "end"
)

// WaterfallSegment is one floating bar of the EBITDA bridge, expressed as
// a transparent spacer plus a visible value so a stacked-bar chart anchored
// at zero renders it at the right height. NegSpacer carries the below-zero
// base when the bar must hang under the axis; Value is always >= 0 and
// DisplayValue keeps the signed figure for labels.
type WaterfallSegment struct {
	Label        string      `json:"label"`
	Spacer       float64     `json:"spacer"`
	NegSpacer    float64     `json:"neg_spacer"`
	Value        float64     `json:"value"`
	DisplayValue float64     `json:"display_value"`
	RunningTotal float64     `json:"running_total"`
	Type         SegmentType `json:"type"`
	Priority     Priority    `json:"priority,omitempty"`
}
