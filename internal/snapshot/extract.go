// Package snapshot normalizes loosely-structured facility extraction
// payloads into a canonical trailing-twelve-month financial snapshot.
// Extraction quality varies by document, so every field degrades to nil
// rather than failing; nil means "data unavailable", never zero.
package snapshot

// Snapshot is the canonical read-only view of one facility's T12M
// financials. Any field may be nil when the source document did not yield
// it. Derived ratios are nil unless both numerator and revenue resolved.
type Snapshot struct {
	// Primary figures. Never overwritten by the server overlay.
	Revenue   *float64 `json:"revenue"`
	EBITDA    *float64 `json:"ebitda"`
	EBITDAR   *float64 `json:"ebitdar"`
	Occupancy *float64 `json:"occupancy"` // percent
	Beds      *float64 `json:"beds"`

	// Payer mix (percent of patient days).
	MedicareMix   *float64 `json:"medicare_mix"`
	PrivatePayMix *float64 `json:"private_pay_mix"`

	// Raw dollar totals.
	TotalLabor     *float64 `json:"total_labor"`
	AgencyLabor    *float64 `json:"agency_labor"`
	ManagementFees *float64 `json:"management_fees"`
	BadDebt        *float64 `json:"bad_debt"`
	Utilities      *float64 `json:"utilities"`
	Insurance      *float64 `json:"insurance"`
	DirectCare     *float64 `json:"direct_care"`
	Activities     *float64 `json:"activities"`
	Culinary       *float64 `json:"culinary"`
	Housekeeping   *float64 `json:"housekeeping"`
	Maintenance    *float64 `json:"maintenance"`
	Administration *float64 `json:"administration"`
	General        *float64 `json:"general"`
	Property       *float64 `json:"property"`

	// Dollars per resident day.
	FoodCostPerDay *float64 `json:"food_cost_per_day"`

	// Derived ratios (percent).
	LaborPct          *float64 `json:"labor_pct"`
	AgencyPct         *float64 `json:"agency_pct"` // percent of total labor
	ManagementFeePct  *float64 `json:"management_fee_pct"`
	BadDebtPct        *float64 `json:"bad_debt_pct"`
	UtilitiesPct      *float64 `json:"utilities_pct"`
	InsurancePct      *float64 `json:"insurance_pct"`
	EBITDAMargin      *float64 `json:"ebitda_margin"`
	EBITDARMargin     *float64 `json:"ebitdar_margin"`
	DirectCarePct     *float64 `json:"direct_care_pct"`
	ActivitiesPct     *float64 `json:"activities_pct"`
	CulinaryPct       *float64 `json:"culinary_pct"`
	HousekeepingPct   *float64 `json:"housekeeping_pct"`
	MaintenancePct    *float64 `json:"maintenance_pct"`
	AdministrationPct *float64 `json:"administration_pct"`
	GeneralPct        *float64 `json:"general_pct"`
	PropertyPct       *float64 `json:"property_pct"`
}

// fieldChains maps each canonical field to its ordered alias chain:
// structured field group first, then legacy flat aliases. First non-nil
// wins. The chains are data so alias priority stays auditable per field.
var fieldChains = map[string][]accessor{
	"revenue": {
		path("financial_information_t12", "total_revenue"),
		path("annual_revenue"),
		path("t12m_revenue"),
	},
	"ebitda": {
		path("financial_information_t12", "ebitda"),
		path("t12m_ebitda"),
		path("ebitda"),
	},
	"ebitdar": {
		path("financial_information_t12", "ebitdar"),
		path("t12m_ebitdar"),
		path("ebitdar"),
	},
	"occupancy": {
		path("census_information", "occupancy_rate"),
		path("occupancy_pct"),
		path("occupancy"),
	},
	"beds": {
		path("facility_information", "licensed_beds"),
		path("number_of_beds"),
		path("beds"),
	},
	"medicare_mix": {
		path("census_information", "medicare_mix"),
		path("medicare_pct"),
	},
	"private_pay_mix": {
		path("census_information", "private_pay_mix"),
		path("private_pay_pct"),
	},
	"total_labor": {
		path("expense_information", "total_labor_cost"),
		path("total_labor_cost"),
		path("labor_cost"),
	},
	"agency_labor": {
		path("expense_information", "agency_labor_cost"),
		path("agency_labor_cost"),
		path("agency_cost"),
	},
	"food_cost_per_day": {
		path("expense_information", "food_cost_per_day"),
		path("food_cost_per_day"),
	},
	"management_fees": {
		path("expense_information", "management_fees"),
		path("management_fees"),
	},
	"bad_debt": {
		path("expense_information", "bad_debt"),
		path("bad_debt"),
	},
	"utilities": {
		path("expense_information", "utilities"),
		path("utilities"),
	},
	"insurance": {
		path("expense_information", "insurance"),
		path("insurance"),
	},
	"direct_care": {
		path("expense_information", "direct_care_total"),
		path("direct_care_expense"),
		path("direct_care"),
	},
	"activities": {
		path("expense_information", "activities_total"),
		path("activities_expense"),
		path("activities"),
	},
	"culinary": {
		path("expense_information", "culinary_total"),
		path("culinary_expense"),
		path("culinary"),
	},
	"housekeeping": {
		path("expense_information", "housekeeping_total"),
		path("housekeeping_expense"),
		path("housekeeping"),
	},
	"maintenance": {
		path("expense_information", "maintenance_total"),
		path("maintenance_expense"),
		path("maintenance"),
	},
	"administration": {
		path("expense_information", "administration_total"),
		path("administration_expense"),
		path("administration"),
	},
	"general": {
		path("expense_information", "general_total"),
		path("general_expense"),
		path("general"),
	},
	"property": {
		path("expense_information", "property_total"),
		path("property_expense"),
		path("property"),
	},
}

// Extract normalizes a raw extraction payload into a Snapshot. Pure: the
// payload is never mutated and identical inputs yield identical outputs.
func Extract(payload map[string]any) Snapshot {
	resolve := func(field string) *float64 {
		return firstNonNil(payload, fieldChains[field])
	}

	s := Snapshot{
		Revenue:        resolve("revenue"),
		EBITDA:         resolve("ebitda"),
		EBITDAR:        resolve("ebitdar"),
		Occupancy:      resolve("occupancy"),
		Beds:           resolve("beds"),
		MedicareMix:    resolve("medicare_mix"),
		PrivatePayMix:  resolve("private_pay_mix"),
		TotalLabor:     resolve("total_labor"),
		AgencyLabor:    resolve("agency_labor"),
		FoodCostPerDay: resolve("food_cost_per_day"),
		ManagementFees: resolve("management_fees"),
		BadDebt:        resolve("bad_debt"),
		Utilities:      resolve("utilities"),
		Insurance:      resolve("insurance"),
		DirectCare:     resolve("direct_care"),
		Activities:     resolve("activities"),
		Culinary:       resolve("culinary"),
		Housekeeping:   resolve("housekeeping"),
		Maintenance:    resolve("maintenance"),
		Administration: resolve("administration"),
		General:        resolve("general"),
		Property:       resolve("property"),
	}

	s.LaborPct = pctOf(s.TotalLabor, s.Revenue)
	s.AgencyPct = pctOf(s.AgencyLabor, s.TotalLabor)
	s.ManagementFeePct = pctOf(s.ManagementFees, s.Revenue)
	s.BadDebtPct = pctOf(s.BadDebt, s.Revenue)
	s.UtilitiesPct = pctOf(s.Utilities, s.Revenue)
	s.InsurancePct = pctOf(s.Insurance, s.Revenue)
	s.EBITDAMargin = pctOf(s.EBITDA, s.Revenue)
	s.EBITDARMargin = pctOf(s.EBITDAR, s.Revenue)
	s.DirectCarePct = pctOf(s.DirectCare, s.Revenue)
	s.ActivitiesPct = pctOf(s.Activities, s.Revenue)
	s.CulinaryPct = pctOf(s.Culinary, s.Revenue)
	s.HousekeepingPct = pctOf(s.Housekeeping, s.Revenue)
	s.MaintenancePct = pctOf(s.Maintenance, s.Revenue)
	s.AdministrationPct = pctOf(s.Administration, s.Revenue)
	s.GeneralPct = pctOf(s.General, s.Revenue)
	s.PropertyPct = pctOf(s.Property, s.Revenue)

	return s
}

// pctOf returns num/denom*100, or nil when either side is missing or the
// denominator is zero. Every division in this package goes through here.
func pctOf(num, denom *float64) *float64 {
	if num == nil || denom == nil || *denom == 0 {
		return nil
	}
	v := *num / *denom * 100
	return &v
}
