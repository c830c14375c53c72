package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/proforma"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testFacility() model.Facility {
	return model.Facility{Name: "Maple Grove", Type: "AL/MC", City: "Columbus", State: "OH", Beds: 120}
}

func TestSQLiteDealLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	payload := map[string]any{
		"financial_information_t12": map[string]any{"total_revenue": 10_000_000.0},
	}
	deal, err := s.CreateDeal(ctx, "Maple Grove Senior Living", testFacility(), payload)
	require.NoError(t, err)
	assert.NotEmpty(t, deal.ID)
	assert.Equal(t, model.DealStatusProspect, deal.Status)

	got, err := s.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, deal.Name, got.Name)
	assert.Equal(t, testFacility(), got.Facility)
	assert.Equal(t, 10_000_000.0,
		got.Payload["financial_information_t12"].(map[string]any)["total_revenue"])
	assert.Nil(t, got.Overlay)
	assert.Nil(t, got.ServerAnalysis)

	require.NoError(t, s.UpdateDealStatus(ctx, deal.ID, model.DealStatusUnderReview))

	overlay := map[string]float64{"labor_pct": 47.2}
	analysis := &proforma.ServerAnalysis{
		Opportunities: []proforma.ExternalOpportunity{
			{Category: "Revenue Growth", Amount: 500_000, Priority: proforma.PriorityHigh},
		},
	}
	require.NoError(t, s.UpdateDealOverlay(ctx, deal.ID, overlay, analysis))

	got, err = s.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DealStatusUnderReview, got.Status)
	assert.Equal(t, overlay, got.Overlay)
	require.NotNil(t, got.ServerAnalysis)
	assert.Equal(t, "Revenue Growth", got.ServerAnalysis.Opportunities[0].Category)

	require.NoError(t, s.DeleteDeal(ctx, deal.ID))
	_, err = s.GetDeal(ctx, deal.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLiteListDealsFilter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	oh := testFacility()
	fl := model.Facility{Name: "Palm Court", State: "FL", Beds: 96}

	d1, err := s.CreateDeal(ctx, "Maple Grove", oh, nil)
	require.NoError(t, err)
	_, err = s.CreateDeal(ctx, "Palm Court", fl, nil)
	require.NoError(t, err)
	require.NoError(t, s.UpdateDealStatus(ctx, d1.ID, model.DealStatusLOI))

	byStatus, err := s.ListDeals(ctx, DealFilter{Status: model.DealStatusLOI})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Maple Grove", byStatus[0].Name)

	byState, err := s.ListDeals(ctx, DealFilter{State: "FL"})
	require.NoError(t, err)
	require.Len(t, byState, 1)
	assert.Equal(t, "Palm Court", byState[0].Name)

	limited, err := s.ListDeals(ctx, DealFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteScenarioRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	deal, err := s.CreateDeal(ctx, "Maple Grove", testFacility(), nil)
	require.NoError(t, err)

	sc := &model.Scenario{
		DealID:    deal.ID,
		Name:      "aggressive labor",
		Notes:     "operator claims 43% is achievable",
		Overrides: map[string]float64{"labor_pct": 43, "agency_pct_of_labor": 1},
	}
	require.NoError(t, s.SaveScenario(ctx, sc))
	require.NotEmpty(t, sc.ID)

	got, err := s.GetScenario(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, sc.Overrides, got.Overrides)
	assert.Nil(t, got.Result)

	// Upsert by ID replaces the override set.
	sc.Overrides = map[string]float64{"labor_pct": 44}
	require.NoError(t, s.SaveScenario(ctx, sc))
	got, err = s.GetScenario(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"labor_pct": 44}, got.Overrides)

	result := &proforma.AnalysisResult{TotalOpportunity: 400_000, BenchmarkHash: "abc123"}
	require.NoError(t, s.UpdateScenarioResult(ctx, sc.ID, result, "abc123"))
	got, err = s.GetScenario(ctx, sc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Result)
	assert.Equal(t, 400_000.0, got.Result.TotalOpportunity)
	assert.Equal(t, "abc123", got.BenchmarkHash)

	list, err := s.ListScenarios(ctx, deal.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteScenario(ctx, sc.ID))
	_, err = s.GetScenario(ctx, sc.ID)
	assert.True(t, IsNotFound(err))
}

func TestSQLiteScenarioCascadeOnDealDelete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	deal, err := s.CreateDeal(ctx, "Maple Grove", testFacility(), nil)
	require.NoError(t, err)
	sc := &model.Scenario{DealID: deal.ID, Name: "base", Overrides: map[string]float64{}}
	require.NoError(t, s.SaveScenario(ctx, sc))

	require.NoError(t, s.DeleteDeal(ctx, deal.ID))
	list, err := s.ListScenarios(ctx, deal.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLiteInvitations(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	deal, err := s.CreateDeal(ctx, "Maple Grove", testFacility(), nil)
	require.NoError(t, err)

	inv := &model.Invitation{
		DealID:    deal.ID,
		Email:     "lender@example.com",
		Role:      model.RoleViewer,
		InvitedBy: "analyst@harborview.com",
	}
	require.NoError(t, s.CreateInvitation(ctx, inv))
	assert.Equal(t, model.InvitationPending, inv.Status)

	list, err := s.ListInvitations(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "lender@example.com", list[0].Email)
	assert.Equal(t, model.RoleViewer, list[0].Role)

	got, err := s.GetInvitation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "lender@example.com", got.Email)
	assert.Equal(t, deal.ID, got.DealID)
	assert.Equal(t, "analyst@harborview.com", got.InvitedBy)

	require.NoError(t, s.UpdateInvitationStatus(ctx, inv.ID, model.InvitationApproved))
	got, err = s.GetInvitation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationApproved, got.Status)

	_, err = s.GetInvitation(ctx, "missing-id")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	err = s.UpdateInvitationStatus(ctx, "missing-id", model.InvitationRevoked)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invitation not found")
	assert.True(t, IsNotFound(err))
}

func TestSQLiteUpdateMissingDeal(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	err := s.UpdateDealStatus(ctx, "nope", model.DealStatusDead)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deal not found")
	assert.True(t, IsNotFound(err))

	err = s.UpdateDealPayload(ctx, "nope", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deal not found")
	assert.True(t, IsNotFound(err))

	err = s.DeleteDeal(ctx, "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	err = s.DeleteScenario(ctx, "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLitePing(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}
