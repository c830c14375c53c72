package proforma

import "math"

// LineEval is the outcome of evaluating one metric against its benchmark.
type LineEval struct {
	Variance    *float64
	PctVariance *float64
	Status      Status
	Opportunity *float64
}

// EvaluateLine compares an actual value to a benchmark target. The
// comparison value is actualPct when the actual is expressed in different
// units than the benchmark (dollars vs percent-of-revenue), otherwise the
// actual directly. Reversed metrics are expense-type: above benchmark is
// unfavorable. Revenue converts an unfavorable percentage-point variance
// into annual dollars; with no revenue the opportunity is nil.
//
// A nil comparison value yields StatusUnavailable with nil variance and
// opportunity: missing data is surfaced as N/A, never as a perfect match.
func EvaluateLine(actual, actualPct *float64, bench float64, reversed bool, revenue *float64) LineEval {
	comparison := actual
	if actualPct != nil {
		comparison = actualPct
	}
	if comparison == nil {
		return LineEval{Status: StatusUnavailable}
	}

	variance := *comparison - bench
	ev := LineEval{Variance: &variance}

	if bench != 0 {
		pct := variance / bench * 100
		ev.PctVariance = &pct
	}
	ev.Status = classify(variance, ev.PctVariance, reversed)

	// Opportunity only for unfavorable expense-side variances: the dollars
	// recovered annually by moving the metric exactly to benchmark.
	// Favorable variances yield nil, never negative dollars.
	if reversed && variance > 0 {
		ev.Opportunity = opportunityFromPct(variance, revenue)
	}

	return ev
}

// classify applies the 10% relative-variance thresholds.
func classify(variance float64, pctVariance *float64, reversed bool) Status {
	if pctVariance == nil {
		// Zero benchmark: classify on the raw variance sign alone.
		if reversed {
			if variance <= 0 {
				return StatusOnTarget
			}
			return StatusCritical
		}
		if variance >= 0 {
			return StatusOnTarget
		}
		return StatusCritical
	}

	pct := *pctVariance
	if reversed {
		switch {
		case pct <= 0:
			return StatusOnTarget
		case pct <= 10:
			return StatusAboveTarget
		default:
			return StatusCritical
		}
	}
	switch {
	case variance >= 0:
		return StatusOnTarget
	case pct >= -10:
		return StatusBelowTarget
	default:
		return StatusCritical
	}
}

// opportunityFromPct converts a percentage-point variance into annual
// dollars using revenue as the base: (variance_pts / 100) * revenue.
func opportunityFromPct(variancePts float64, revenue *float64) *float64 {
	if revenue == nil {
		return nil
	}
	v := variancePts / 100 * *revenue
	return &v
}

// annualizedPerDiem converts a dollars-per-resident-day variance into
// annual dollars via resident days (beds * occupancy% * 365). Nil when
// beds or occupancy is unknown.
func annualizedPerDiem(variance float64, beds, occupancy *float64) *float64 {
	if beds == nil || occupancy == nil {
		return nil
	}
	v := variance * (*beds) * (*occupancy / 100) * 365
	return &v
}

// priorityFor maps a line's status and relative variance onto a display
// priority. Critical status always wins; otherwise the magnitude of the
// relative variance decides.
func priorityFor(status Status, pctVariance *float64) Priority {
	if status == StatusCritical {
		return PriorityCritical
	}
	if pctVariance == nil {
		return PriorityLow
	}
	switch mag := math.Abs(*pctVariance); {
	case mag > 5:
		return PriorityHigh
	case mag > 2:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
