package model

import (
	"time"

	"github.com/harborview-partners/dealflow-cli/internal/proforma"
)

// Scenario is a saved set of benchmark overrides for a deal. Only the
// sparse override set is persisted; reloading applies it over whatever
// the defaults are at read time, so a default change flows into every
// saved scenario. Result is a cache of the last computation, refreshed
// by recompute, never treated as authoritative.
type Scenario struct {
	ID        string             `json:"id"`
	DealID    string             `json:"deal_id"`
	Name      string             `json:"name"`
	Notes     string             `json:"notes,omitempty"`
	Overrides map[string]float64 `json:"overrides"`

	Result        *proforma.AnalysisResult `json:"result,omitempty"`
	BenchmarkHash string                   `json:"benchmark_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
