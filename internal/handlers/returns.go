package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/services"
)

type ReturnsHandler struct {
	service services.ReturnsService
	logger  *zap.Logger
}

func NewReturnsHandler(service services.ReturnsService, logger *zap.Logger) *ReturnsHandler {
	return &ReturnsHandler{service: service, logger: logger}
}

// HandleReturns serves the portfolio time-weighted return series.
// @Summary Portfolio return series
// @Description Roll per-asset snapshots into daily portfolio totals and chain them into time-weighted returns
// @Tags reports
// @Produce json
// @Param account_id query string false "Account ID or __ALL__ (default)"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} models.PortfolioReturnPoint
// @Failure 500 {string} string "Internal server error"
// @Router /reports/returns [get]
func (h *ReturnsHandler) HandleReturns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		accountID = models.AllAccounts
	}
	start, end := parseDateRange(r)

	series, err := h.service.PortfolioSeries(r.Context(), accountID, start, end)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	json.NewEncoder(w).Encode(series)
}

// HandleBenchmark serves the portfolio series aligned against a benchmark.
// @Summary Portfolio vs benchmark
// @Description Reindex the portfolio return series onto the benchmark's trading calendar and join the cumulative returns
// @Tags reports
// @Produce json
// @Param account_id query string false "Account ID or __ALL__ (default)"
// @Param benchmark_asset_id query string true "Benchmark asset ID"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} models.AlignedReturnPoint
// @Failure 400 {string} string "Invalid request"
// @Failure 500 {string} string "Internal server error"
// @Router /reports/benchmark [get]
func (h *ReturnsHandler) HandleBenchmark(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		accountID = models.AllAccounts
	}
	benchmarkID := r.URL.Query().Get("benchmark_asset_id")
	if benchmarkID == "" {
		http.Error(w, "benchmark_asset_id is required", http.StatusBadRequest)
		return
	}
	start, end := parseDateRange(r)

	aligned, err := h.service.CompareWithBenchmark(r.Context(), accountID, benchmarkID, start, end)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	json.NewEncoder(w).Encode(aligned)
}

func parseDateRange(r *http.Request) (*time.Time, *time.Time) {
	var start, end *time.Time

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		if date, err := time.Parse("2006-01-02", startDate); err == nil {
			start = &date
		}
	}

	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		if date, err := time.Parse("2006-01-02", endDate); err == nil {
			end = &date
		}
	}

	return start, end
}
