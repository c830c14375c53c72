package model

import (
	"time"

	"github.com/harborview-partners/dealflow-cli/internal/proforma"
)

// DealStatus represents where a deal sits in the acquisition pipeline.
type DealStatus string

const (
	DealStatusProspect     DealStatus = "prospect"
	DealStatusUnderReview  DealStatus = "under_review"
	DealStatusLOI          DealStatus = "loi"
	DealStatusDueDiligence DealStatus = "due_diligence"
	DealStatusClosed       DealStatus = "closed"
	DealStatusDead         DealStatus = "dead"
)

// ValidDealStatus reports whether s is a known pipeline stage.
func ValidDealStatus(s DealStatus) bool {
	switch s {
	case DealStatusProspect, DealStatusUnderReview, DealStatusLOI,
		DealStatusDueDiligence, DealStatusClosed, DealStatusDead:
		return true
	}
	return false
}

// Facility is the target community's identifying metadata. Beds lives
// here as well as in the financial payload; the payload wins for
// calculations, this copy is for listings.
type Facility struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"` // AL, IL, MC, SNF or a mix
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Beds  int    `json:"beds,omitempty"`
}

// Deal is one target community moving through the pipeline. Payload is
// the raw extraction output, stored verbatim: the snapshot extractor is
// the only component that interprets it. Overlay holds server-computed
// expense figures that take precedence over extracted ones, and
// ServerAnalysis carries revenue-side results the engine cannot derive
// locally.
type Deal struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Status   DealStatus     `json:"status"`
	Facility Facility       `json:"facility"`
	Payload  map[string]any `json:"payload,omitempty"`

	Overlay        map[string]float64       `json:"expense_overlay,omitempty"`
	ServerAnalysis *proforma.ServerAnalysis `json:"server_analysis,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
