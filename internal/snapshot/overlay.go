package snapshot

// MergeOverlay lays a server-computed expense recomputation over a
// client-derived snapshot. Server values win for the overlapping ratio and
// department fields; the primary figures (revenue, EBITDA, EBITDAR,
// occupancy, beds) always come from the snapshot and are never replaced.
// Returns a new Snapshot; neither input is mutated.
func MergeOverlay(s Snapshot, overlay map[string]float64) Snapshot {
	if len(overlay) == 0 {
		return s
	}

	merged := s
	apply := func(key string, dst **float64) {
		if v, ok := overlay[key]; ok {
			val := v
			*dst = &val
		}
	}

	apply("labor_pct", &merged.LaborPct)
	apply("agency_pct_of_labor", &merged.AgencyPct)
	apply("food_cost_per_day", &merged.FoodCostPerDay)
	apply("management_fee_pct", &merged.ManagementFeePct)
	apply("bad_debt_pct", &merged.BadDebtPct)
	apply("utilities_pct", &merged.UtilitiesPct)
	apply("insurance_pct", &merged.InsurancePct)

	apply("direct_care_pct", &merged.DirectCarePct)
	apply("activities_pct", &merged.ActivitiesPct)
	apply("culinary_pct", &merged.CulinaryPct)
	apply("housekeeping_pct", &merged.HousekeepingPct)
	apply("maintenance_pct", &merged.MaintenancePct)
	apply("administration_pct", &merged.AdministrationPct)
	apply("general_pct", &merged.GeneralPct)
	apply("property_pct", &merged.PropertyPct)

	apply("direct_care_total", &merged.DirectCare)
	apply("activities_total", &merged.Activities)
	apply("culinary_total", &merged.Culinary)
	apply("housekeeping_total", &merged.Housekeeping)
	apply("maintenance_total", &merged.Maintenance)
	apply("administration_total", &merged.Administration)
	apply("general_total", &merged.General)
	apply("property_total", &merged.Property)
	apply("total_labor_cost", &merged.TotalLabor)
	apply("agency_labor_cost", &merged.AgencyLabor)

	return merged
}
