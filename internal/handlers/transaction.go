package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/services"
)

type TransactionHandler struct {
	service services.TransactionService
	logger  *zap.Logger
}

func NewTransactionHandler(service services.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{service: service, logger: logger}
}

// HandleTransactions handles collection-level operations for transactions.
// @Summary List or create transactions
// @Description Get a filtered list of ledger entries or create a new one
// @Tags transactions
// @Accept json
// @Produce json
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param types query string false "Comma-separated trade types (BUY,SELL,INIT,DEPOSIT,WITHDRAW)"
// @Param assets query string false "Comma-separated asset IDs"
// @Param accounts query string false "Comma-separated account IDs"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Param auto_cash query bool false "Synthesize the offsetting cash entry on POST (default true)"
// @Success 200 {array} models.Transaction
// @Failure 400 {string} string "Invalid request"
// @Failure 500 {string} string "Internal server error"
// @Router /transactions [get]
// @Router /transactions [post]
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case "GET":
		h.listTransactions(w, r)
	case "POST":
		h.createTransaction(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTransaction handles item-level operations for a transaction.
// @Summary Get, update, or delete a transaction
// @Description Operate on a single ledger entry by ID; writes relocate the
// cash mirror and rebuild the affected snapshot range
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param auto_cash query bool false "Keep the cash mirror in sync on PUT (default true)"
// @Success 200 {object} models.Transaction
// @Failure 400 {string} string "Bad request"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal server error"
// @Router /transactions/{id} [get]
// @Router /transactions/{id} [put]
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) HandleTransaction(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case "GET":
		h.getTransaction(w, r, id)
	case "PUT":
		h.updateTransaction(w, r, id)
	case "DELETE":
		h.deleteTransaction(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TransactionHandler) listTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.service.ListTransactions(r.Context(), parseTransactionFilter(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	json.NewEncoder(w).Encode(transactions)
}

func (h *TransactionHandler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.CreateTransaction(r.Context(), &tx, autoCashParam(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func (h *TransactionHandler) getTransaction(w http.ResponseWriter, r *http.Request, id string) {
	tx, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	json.NewEncoder(w).Encode(tx)
}

func (h *TransactionHandler) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var update services.TransactionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.UpdateTransaction(r.Context(), id, &update, autoCashParam(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	json.NewEncoder(w).Encode(result)
}

func (h *TransactionHandler) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	result, err := h.service.DeleteTransaction(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	json.NewEncoder(w).Encode(result)
}

// autoCashParam reads the auto_cash query flag; mirroring defaults to on.
func autoCashParam(r *http.Request) bool {
	return r.URL.Query().Get("auto_cash") != "false"
}

func parseTransactionFilter(r *http.Request) *models.TransactionFilter {
	filter := &models.TransactionFilter{}

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		if date, err := time.Parse("2006-01-02", startDate); err == nil {
			filter.StartDate = &date
		}
	}

	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		if date, err := time.Parse("2006-01-02", endDate); err == nil {
			filter.EndDate = &date
		}
	}

	if types := r.URL.Query().Get("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			filter.Types = append(filter.Types, models.TradeType(strings.TrimSpace(t)))
		}
	}

	if assets := r.URL.Query().Get("assets"); assets != "" {
		filter.Assets = strings.Split(assets, ",")
	}

	if accounts := r.URL.Query().Get("accounts"); accounts != "" {
		filter.Accounts = strings.Split(accounts, ",")
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	return filter
}
