package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/proforma"
)

// ErrNotFound marks rows-affected misses on updates and deletes, which
// neither driver reports as a no-rows error.
var ErrNotFound = errors.New("row not found")

// IsNotFound reports whether err stems from a missing row in either
// backend. Both drivers keep their sentinel reachable through eris
// wrapping.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// DealFilter specifies criteria for listing deals.
type DealFilter struct {
	Status model.DealStatus `json:"status,omitempty"`
	State  string           `json:"state,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for the deal pipeline.
type Store interface {
	// Deals
	CreateDeal(ctx context.Context, name string, facility model.Facility, payload map[string]any) (*model.Deal, error)
	GetDeal(ctx context.Context, dealID string) (*model.Deal, error)
	ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error)
	UpdateDealStatus(ctx context.Context, dealID string, status model.DealStatus) error
	UpdateDealPayload(ctx context.Context, dealID string, payload map[string]any) error
	UpdateDealOverlay(ctx context.Context, dealID string, overlay map[string]float64, analysis *proforma.ServerAnalysis) error
	DeleteDeal(ctx context.Context, dealID string) error

	// Scenarios
	SaveScenario(ctx context.Context, s *model.Scenario) error
	GetScenario(ctx context.Context, scenarioID string) (*model.Scenario, error)
	ListScenarios(ctx context.Context, dealID string) ([]model.Scenario, error)
	UpdateScenarioResult(ctx context.Context, scenarioID string, result *proforma.AnalysisResult, benchmarkHash string) error
	DeleteScenario(ctx context.Context, scenarioID string) error

	// Invitations
	CreateInvitation(ctx context.Context, inv *model.Invitation) error
	GetInvitation(ctx context.Context, invitationID string) (*model.Invitation, error)
	ListInvitations(ctx context.Context, dealID string) ([]model.Invitation, error)
	UpdateInvitationStatus(ctx context.Context, invitationID string, status model.InvitationStatus) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
