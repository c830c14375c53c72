package proforma

import (
	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
	"github.com/harborview-partners/dealflow-cli/internal/snapshot"
)

// Calculate runs the full benchmarking pass: every configured line item is
// evaluated independently, unfavorable expense variances are converted to
// annual dollar opportunities, and the stabilized figures are derived
// additively (stabilized EBITDA is defined as current EBITDA plus the
// opportunity total, not re-derived from revenue and expenses).
//
// server is the optional server-computed analysis; its opportunity lines
// (Revenue Growth in practice) lead the opportunity list and its
// stabilized revenue, when present, is authoritative. Pure: identical
// inputs yield identical results.
func Calculate(snap snapshot.Snapshot, cfg benchmark.Config, server *ServerAnalysis) AnalysisResult {
	defs := benchmark.Definitions()
	result := AnalysisResult{
		Lines:         make([]LineItem, 0, len(defs)),
		BenchmarkHash: cfg.Hash(),
	}

	for _, d := range defs {
		bench, _ := cfg.Value(d.Key)
		actual, actualPct := actualsFor(d.Key, snap)

		var ev LineEval
		if d.Key == benchmark.KeyFoodCost {
			ev = evaluateFoodCost(actual, bench, snap.Beds, snap.Occupancy)
		} else {
			ev = EvaluateLine(actual, actualPct, bench, d.Reversed, snap.Revenue)
		}

		comparison := actual
		if actualPct != nil {
			comparison = actualPct
		}

		item := LineItem{
			Key:         d.Key,
			Category:    d.Category,
			Description: d.Description,
			Unit:        d.Unit,
			Actual:      comparison,
			Benchmark:   bench,
			Variance:    ev.Variance,
			PctVariance: ev.PctVariance,
			Status:      ev.Status,
			Opportunity: ev.Opportunity,
		}
		if item.Status != StatusOnTarget && item.Status != StatusUnavailable {
			item.Priority = priorityFor(item.Status, item.PctVariance)
			result.Issues = append(result.Issues, item)
		}
		result.Lines = append(result.Lines, item)
	}

	result.Opportunities = buildOpportunities(result.Lines, server)

	// Missing-data lines contribute zero to the sum, never nil or NaN.
	for _, opp := range result.Opportunities {
		if opp.Opportunity != nil && *opp.Opportunity > 0 {
			result.TotalOpportunity += *opp.Opportunity
		}
	}

	result.StabilizedEBITDA = addTotal(snap.EBITDA, result.TotalOpportunity)
	result.StabilizedEBITDAR = addTotal(snap.EBITDAR, result.TotalOpportunity)
	result.StabilizedRevenue = stabilizedRevenue(snap.Revenue, server)

	return result
}

// actualsFor maps a benchmark key to the snapshot values it compares
// against: the raw figure and, when the benchmark is expressed as a
// percentage while the figure is dollars, the derived percent-of-revenue.
func actualsFor(key benchmark.Key, s snapshot.Snapshot) (actual, actualPct *float64) {
	switch key {
	case benchmark.KeyLabor:
		return s.TotalLabor, s.LaborPct
	case benchmark.KeyAgency:
		return s.AgencyLabor, s.AgencyPct
	case benchmark.KeyDirectCare:
		return s.DirectCare, s.DirectCarePct
	case benchmark.KeyActivities:
		return s.Activities, s.ActivitiesPct
	case benchmark.KeyCulinary:
		return s.Culinary, s.CulinaryPct
	case benchmark.KeyHousekeeping:
		return s.Housekeeping, s.HousekeepingPct
	case benchmark.KeyMaintenance:
		return s.Maintenance, s.MaintenancePct
	case benchmark.KeyAdministration:
		return s.Administration, s.AdministrationPct
	case benchmark.KeyGeneral:
		return s.General, s.GeneralPct
	case benchmark.KeyProperty:
		return s.Property, s.PropertyPct
	case benchmark.KeyFoodCost:
		return s.FoodCostPerDay, nil
	case benchmark.KeyManagementFee:
		return s.ManagementFees, s.ManagementFeePct
	case benchmark.KeyBadDebt:
		return s.BadDebt, s.BadDebtPct
	case benchmark.KeyUtilities:
		return s.Utilities, s.UtilitiesPct
	case benchmark.KeyInsurance:
		return s.Insurance, s.InsurancePct
	case benchmark.KeyOccupancy:
		return s.Occupancy, nil
	case benchmark.KeyMedicareMix:
		return s.MedicareMix, nil
	case benchmark.KeyPrivatePayMix:
		return s.PrivatePayMix, nil
	case benchmark.KeyEBITDAMargin:
		return s.EBITDAMargin, nil
	case benchmark.KeyEBITDARMargin:
		return s.EBITDARMargin, nil
	default:
		return nil, nil
	}
}

// evaluateFoodCost handles the one benchmark expressed in dollars per
// resident day: the variance is in $/day and annualizes through resident
// days rather than percent of revenue.
func evaluateFoodCost(actual *float64, bench float64, beds, occupancy *float64) LineEval {
	if actual == nil {
		return LineEval{Status: StatusUnavailable}
	}

	variance := *actual - bench
	ev := LineEval{Variance: &variance}
	if bench != 0 {
		pct := variance / bench * 100
		ev.PctVariance = &pct
	}
	ev.Status = classify(variance, ev.PctVariance, true)

	if variance > 0 {
		ev.Opportunity = annualizedPerDiem(variance, beds, occupancy)
	}
	return ev
}

// buildOpportunities assembles the ordered opportunity list: externally
// supplied lines first (Revenue Growth), then every reversed line item in
// canonical order. Lines with missing actuals appear with a nil
// opportunity so the table can render them as N/A.
func buildOpportunities(lines []LineItem, server *ServerAnalysis) []OpportunityLineItem {
	var opps []OpportunityLineItem

	if server != nil {
		for _, ext := range server.Opportunities {
			amount := ext.Amount
			opps = append(opps, OpportunityLineItem{
				Category:    ext.Category,
				Current:     ext.Current,
				Target:      ext.Target,
				Unit:        benchmark.UnitDollars,
				Opportunity: &amount,
				Priority:    ext.Priority,
				Description: ext.Description,
			})
		}
	}

	for _, line := range lines {
		def, ok := benchmark.Lookup(line.Key)
		if !ok || !def.Reversed {
			continue
		}
		opps = append(opps, OpportunityLineItem{
			Category:    line.Category,
			Current:     line.Actual,
			Target:      line.Benchmark,
			Unit:        line.Unit,
			Opportunity: line.Opportunity,
			Priority:    line.Priority,
			Description: line.Description,
		})
	}

	return opps
}

func addTotal(base *float64, total float64) *float64 {
	if base == nil {
		return nil
	}
	v := *base + total
	return &v
}

// stabilizedRevenue prefers the server-computed figure; otherwise current
// revenue plus any external Revenue Growth lines. Local expense
// opportunities never move revenue.
func stabilizedRevenue(revenue *float64, server *ServerAnalysis) *float64 {
	if server != nil && server.StabilizedRevenue != nil {
		v := *server.StabilizedRevenue
		return &v
	}
	if revenue == nil {
		return nil
	}
	v := *revenue
	if server != nil {
		for _, ext := range server.Opportunities {
			if ext.Category == "Revenue Growth" {
				v += ext.Amount
			}
		}
	}
	return &v
}
