package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/services"
)

type CostBasisHandler struct {
	service services.CostBasisService
	logger  *zap.Logger
}

func NewCostBasisHandler(service services.CostBasisService, logger *zap.Logger) *CostBasisHandler {
	return &CostBasisHandler{service: service, logger: logger}
}

// HandleEvents records a batch of manual cost-basis deltas.
// @Summary Record manual cost-basis events
// @Description Append cost-basis delta events for hand-valued assets and recompute the affected balances; a batch that would drive any balance negative fails as a whole
// @Tags costbasis
// @Accept json
// @Produce json
// @Param request body object true "Event batch"
// @Success 201 {array} models.ManualCostBasisCurrent
// @Failure 400 {string} string "Invalid request"
// @Failure 500 {string} string "Internal server error"
// @Router /costbasis/events [post]
func (h *CostBasisHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Events []*models.ManualCostBasisEvent `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	currents, err := h.service.RecordEvents(r.Context(), req.Events)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(currents)
}

// HandleCurrent lists materialized cost-basis balances.
// @Summary Current manual cost-basis balances
// @Description Get the materialized per-(account, asset) balances, optionally scoped by account and asset IDs
// @Tags costbasis
// @Produce json
// @Param account_ids query string false "Comma-separated account IDs"
// @Param asset_ids query string false "Comma-separated asset IDs"
// @Success 200 {array} models.ManualCostBasisCurrent
// @Failure 500 {string} string "Internal server error"
// @Router /costbasis/current [get]
func (h *CostBasisHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var accountIDs, assetIDs []string
	if accounts := r.URL.Query().Get("account_ids"); accounts != "" {
		accountIDs = strings.Split(accounts, ",")
	}
	if assets := r.URL.Query().Get("asset_ids"); assets != "" {
		assetIDs = strings.Split(assets, ",")
	}

	currents, err := h.service.FetchCurrent(r.Context(), accountIDs, assetIDs)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	json.NewEncoder(w).Encode(currents)
}
