package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/services"
)

type PriceHandler struct {
	service services.PriceService
	logger  *zap.Logger
}

func NewPriceHandler(service services.PriceService, logger *zap.Logger) *PriceHandler {
	return &PriceHandler{service: service, logger: logger}
}

// HandleRefresh pulls fresh quotes and rebuilds affected snapshots.
// @Summary Refresh market prices
// @Description Fetch the latest quote for every market-priced asset, persist the new prices and daily closes, and rebuild snapshots for the holding pairs; manual and cash assets are skipped
// @Tags prices
// @Produce json
// @Success 200 {object} services.PriceRefreshSummary
// @Failure 500 {string} string "Internal server error"
// @Router /prices/refresh [post]
func (h *PriceHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.service.RefreshAll(r.Context())
	if summary == nil && err != nil {
		writeError(w, h.logger, err)
		return
	}

	// per-asset failures are reported inside the summary
	json.NewEncoder(w).Encode(summary)
}
