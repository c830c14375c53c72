package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
	"github.com/harborview-partners/dealflow-cli/internal/model"
	"github.com/harborview-partners/dealflow-cli/internal/proforma"
	"github.com/harborview-partners/dealflow-cli/internal/store"
)

type apiServer struct {
	store          store.Store
	benchmarks     benchmark.Config
	analyzeLimiter *rate.Limiter
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		zap.L().Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *apiServer) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string         `json:"name"`
		Facility model.Facility `json:"facility"`
		Payload  map[string]any `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	deal, err := a.store.CreateDeal(r.Context(), req.Name, req.Facility, req.Payload)
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deal)
}

func (a *apiServer) handleListDeals(w http.ResponseWriter, r *http.Request) {
	filter := store.DealFilter{
		Status: model.DealStatus(r.URL.Query().Get("status")),
		State:  r.URL.Query().Get("state"),
	}
	if filter.Status != "" && !model.ValidDealStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	deals, err := a.store.ListDeals(r.Context(), filter)
	if err != nil {
		a.storeError(w, err)
		return
	}
	if deals == nil {
		deals = []model.Deal{}
	}
	writeJSON(w, http.StatusOK, deals)
}

func (a *apiServer) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := a.store.GetDeal(r.Context(), chi.URLParam(r, "dealID"))
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (a *apiServer) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteDeal(r.Context(), chi.URLParam(r, "dealID")); err != nil {
		a.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *apiServer) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.DealStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidDealStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	if err := a.store.UpdateDealStatus(r.Context(), chi.URLParam(r, "dealID"), req.Status); err != nil {
		a.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *apiServer) handleUpdatePayload(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.store.UpdateDealPayload(r.Context(), chi.URLParam(r, "dealID"), payload); err != nil {
		a.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *apiServer) handleUpdateOverlay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Overlay  map[string]float64       `json:"expense_overlay"`
		Analysis *proforma.ServerAnalysis `json:"server_analysis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := a.store.UpdateDealOverlay(r.Context(), chi.URLParam(r, "dealID"), req.Overlay, req.Analysis); err != nil {
		a.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalyze recomputes the full analysis for a deal with optional
// one-shot benchmark overrides. Results are never cached here: the
// calculation is pure and cheap, so every response reflects the current
// payload, overlay, and overrides.
func (a *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !a.analyzeLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "analyze rate exceeded, retry shortly")
		return
	}

	var req struct {
		Overrides map[string]float64 `json:"overrides"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	deal, err := a.store.GetDeal(r.Context(), chi.URLParam(r, "dealID"))
	if err != nil {
		a.storeError(w, err)
		return
	}

	benchCfg := a.benchmarks
	if len(req.Overrides) > 0 {
		if benchCfg, err = benchCfg.Apply(req.Overrides); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	result := runAnalysis(deal, benchCfg)

	resp := struct {
		Result    proforma.AnalysisResult     `json:"result"`
		Waterfall []proforma.WaterfallSegment `json:"waterfall,omitempty"`
	}{Result: result}

	snap := dealSnapshot(deal)
	if snap.EBITDA != nil && result.StabilizedEBITDA != nil {
		resp.Waterfall = proforma.BuildWaterfall(*snap.EBITDA, result.Opportunities, *result.StabilizedEBITDA)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *apiServer) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string             `json:"name"`
		Notes     string             `json:"notes"`
		Overrides map[string]float64 `json:"overrides"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	dealID := chi.URLParam(r, "dealID")
	deal, err := a.store.GetDeal(r.Context(), dealID)
	if err != nil {
		a.storeError(w, err)
		return
	}

	// Validate overrides and cache the result at save time.
	benchCfg, err := a.benchmarks.Apply(req.Overrides)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := runAnalysis(deal, benchCfg)

	sc := &model.Scenario{
		DealID:        dealID,
		Name:          req.Name,
		Notes:         req.Notes,
		Overrides:     req.Overrides,
		Result:        &result,
		BenchmarkHash: benchCfg.Hash(),
	}
	if sc.Overrides == nil {
		sc.Overrides = map[string]float64{}
	}
	if err := a.store.SaveScenario(r.Context(), sc); err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

func (a *apiServer) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := a.store.ListScenarios(r.Context(), chi.URLParam(r, "dealID"))
	if err != nil {
		a.storeError(w, err)
		return
	}
	if scenarios == nil {
		scenarios = []model.Scenario{}
	}
	writeJSON(w, http.StatusOK, scenarios)
}

func (a *apiServer) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := a.store.GetScenario(r.Context(), chi.URLParam(r, "scenarioID"))
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (a *apiServer) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteScenario(r.Context(), chi.URLParam(r, "scenarioID")); err != nil {
		a.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *apiServer) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	var inv model.Invitation
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if inv.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if inv.Role == "" {
		inv.Role = model.RoleViewer
	}
	if !model.ValidInvitationRole(inv.Role) {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	inv.ID = ""
	inv.Status = model.InvitationPending

	if err := a.store.CreateInvitation(r.Context(), &inv); err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (a *apiServer) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	invs, err := a.store.ListInvitations(r.Context(), r.URL.Query().Get("deal_id"))
	if err != nil {
		a.storeError(w, err)
		return
	}
	if invs == nil {
		invs = []model.Invitation{}
	}
	writeJSON(w, http.StatusOK, invs)
}

func (a *apiServer) handleUpdateInvitationStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.InvitationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "invitationID")
	inv, err := a.store.GetInvitation(r.Context(), id)
	if err != nil {
		a.storeError(w, err)
		return
	}
	if !inv.CanTransition(req.Status) {
		writeError(w, http.StatusConflict, "invalid status transition")
		return
	}
	if err := a.store.UpdateInvitationStatus(r.Context(), id, req.Status); err != nil {
		a.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *apiServer) storeError(w http.ResponseWriter, err error) {
	if store.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	zap.L().Error("store operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
