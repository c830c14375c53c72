// Package benchmark defines the configurable operating-metric targets used
// by the pro forma engine: 20 named line items with industry defaults,
// user overrides, and sparse persistence for saved scenarios.
package benchmark

// Key identifies a benchmarked operating metric.
type Key string

const (
	KeyLabor          Key = "labor_pct"
	KeyAgency         Key = "agency_pct_of_labor"
	KeyDirectCare     Key = "direct_care_pct"
	KeyActivities     Key = "activities_pct"
	KeyCulinary       Key = "culinary_pct"
	KeyHousekeeping   Key = "housekeeping_pct"
	KeyMaintenance    Key = "maintenance_pct"
	KeyAdministration Key = "administration_pct"
	KeyGeneral        Key = "general_pct"
	KeyProperty       Key = "property_pct"
	KeyFoodCost       Key = "food_cost_per_day"
	KeyManagementFee  Key = "management_fee_pct"
	KeyBadDebt        Key = "bad_debt_pct"
	KeyUtilities      Key = "utilities_pct"
	KeyInsurance      Key = "insurance_pct"
	KeyOccupancy      Key = "occupancy_pct"
	KeyMedicareMix    Key = "medicare_mix_pct"
	KeyPrivatePayMix  Key = "private_pay_mix_pct"
	KeyEBITDAMargin   Key = "ebitda_margin_pct"
	KeyEBITDARMargin  Key = "ebitdar_margin_pct"
)

// Unit is the unit a benchmark target is expressed in.
type Unit string

const (
	UnitPercent Unit = "%"
	UnitDollars Unit = "$"
)

// Definition describes one benchmarked line item.
type Definition struct {
	Key         Key    `json:"key"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Unit        Unit   `json:"unit"`
	Default     float64 `json:"default"`
	Reversed    bool   `json:"reversed"` // expense-type metric: above benchmark is unfavorable
}

// definitions fixes the canonical line-item order. Reversed expense metrics
// come first, in the order opportunity records and waterfall bars are
// rendered; informational revenue-side metrics follow.
var definitions = []Definition{
	{KeyLabor, "Labor", "Total labor cost as % of revenue", UnitPercent, 45.0, true},
	{KeyAgency, "Agency Labor", "Agency staffing as % of total labor cost", UnitPercent, 5.0, true},
	{KeyDirectCare, "Direct Care", "Direct care expense as % of revenue", UnitPercent, 32.0, true},
	{KeyActivities, "Activities", "Activities expense as % of revenue", UnitPercent, 2.0, true},
	{KeyCulinary, "Culinary", "Culinary expense as % of revenue", UnitPercent, 7.0, true},
	{KeyHousekeeping, "Housekeeping", "Housekeeping expense as % of revenue", UnitPercent, 3.5, true},
	{KeyMaintenance, "Maintenance", "Maintenance expense as % of revenue", UnitPercent, 3.0, true},
	{KeyAdministration, "Administration", "Administration expense as % of revenue", UnitPercent, 10.0, true},
	{KeyGeneral, "General", "General expense as % of revenue", UnitPercent, 5.0, true},
	{KeyProperty, "Property", "Property expense as % of revenue", UnitPercent, 6.0, true},
	{KeyFoodCost, "Food Cost", "Raw food cost per resident day", UnitDollars, 8.50, true},
	{KeyManagementFee, "Management Fees", "Management fees as % of revenue", UnitPercent, 5.0, true},
	{KeyBadDebt, "Bad Debt", "Bad debt as % of revenue", UnitPercent, 2.0, true},
	{KeyUtilities, "Utilities", "Utilities as % of revenue", UnitPercent, 3.0, true},
	{KeyInsurance, "Insurance", "Insurance as % of revenue", UnitPercent, 4.0, true},
	{KeyOccupancy, "Occupancy", "Average occupancy rate", UnitPercent, 85.0, false},
	{KeyMedicareMix, "Medicare Mix", "Medicare share of patient days", UnitPercent, 20.0, false},
	{KeyPrivatePayMix, "Private Pay Mix", "Private pay share of patient days", UnitPercent, 25.0, false},
	{KeyEBITDAMargin, "EBITDA Margin", "EBITDA as % of revenue", UnitPercent, 12.0, false},
	{KeyEBITDARMargin, "EBITDAR Margin", "EBITDAR as % of revenue", UnitPercent, 18.0, false},
}

// Definitions returns the canonical ordered line-item definitions.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition for a key.
func Lookup(k Key) (Definition, bool) {
	for _, d := range definitions {
		if d.Key == k {
			return d, true
		}
	}
	return Definition{}, false
}

// Keys returns all benchmark keys in canonical order.
func Keys() []Key {
	out := make([]Key, len(definitions))
	for i, d := range definitions {
		out[i] = d.Key
	}
	return out
}
