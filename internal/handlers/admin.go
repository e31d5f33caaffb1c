package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/models"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/services"
)

type AdminHandler struct {
	service services.AdminService
	logger  *zap.Logger
}

func NewAdminHandler(service services.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: service, logger: logger}
}

// Accounts handlers

// HandleAccounts handles collection-level operations for accounts.
// @Summary List or create accounts
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {array} models.Account
// @Failure 400 {string} string "Invalid request"
// @Failure 500 {string} string "Internal server error"
// @Router /admin/accounts [get]
// @Router /admin/accounts [post]
func (h *AdminHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case "GET":
		h.listAccounts(w, r)
	case "POST":
		h.createAccount(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleAccount handles item-level operations for an account.
// @Summary Get, update, or delete an account
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal server error"
// @Router /admin/accounts/{id} [get]
// @Router /admin/accounts/{id} [put]
// @Router /admin/accounts/{id} [delete]
func (h *AdminHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case "GET":
		h.getAccount(w, r, id)
	case "PUT":
		h.updateAccount(w, r, id)
	case "DELETE":
		h.deleteAccount(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	json.NewEncoder(w).Encode(accounts)
}

func (h *AdminHandler) createAccount(w http.ResponseWriter, r *http.Request) {
	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.CreateAccount(r.Context(), &account); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(&account)
}

func (h *AdminHandler) getAccount(w http.ResponseWriter, r *http.Request, id string) {
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	json.NewEncoder(w).Encode(account)
}

func (h *AdminHandler) updateAccount(w http.ResponseWriter, r *http.Request, id string) {
	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	account.ID = id
	if err := h.service.UpdateAccount(r.Context(), &account); err != nil {
		writeError(w, h.logger, err)
		return
	}

	json.NewEncoder(w).Encode(&account)
}

func (h *AdminHandler) deleteAccount(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Account deleted successfully"})
}

// Assets handlers

// HandleAssets handles collection-level operations for assets.
// @Summary List or create assets
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {array} models.Asset
// @Failure 400 {string} string "Invalid request"
// @Failure 500 {string} string "Internal server error"
// @Router /admin/assets [get]
// @Router /admin/assets [post]
func (h *AdminHandler) HandleAssets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case "GET":
		h.listAssets(w, r)
	case "POST":
		h.createAsset(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleAsset handles item-level operations for an asset.
// @Summary Get, update, or delete an asset
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} models.Asset
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal server error"
// @Router /admin/assets/{id} [get]
// @Router /admin/assets/{id} [put]
// @Router /admin/assets/{id} [delete]
func (h *AdminHandler) HandleAsset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "Asset ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case "GET":
		h.getAsset(w, r, id)
	case "PUT":
		h.updateAsset(w, r, id)
	case "DELETE":
		h.deleteAsset(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.service.ListAssets(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	json.NewEncoder(w).Encode(assets)
}

func (h *AdminHandler) createAsset(w http.ResponseWriter, r *http.Request) {
	var asset models.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.CreateAsset(r.Context(), &asset); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(&asset)
}

func (h *AdminHandler) getAsset(w http.ResponseWriter, r *http.Request, id string) {
	asset, err := h.service.GetAsset(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	json.NewEncoder(w).Encode(asset)
}

func (h *AdminHandler) updateAsset(w http.ResponseWriter, r *http.Request, id string) {
	var asset models.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	asset.ID = id
	if err := h.service.UpdateAsset(r.Context(), &asset); err != nil {
		writeError(w, h.logger, err)
		return
	}

	json.NewEncoder(w).Encode(&asset)
}

func (h *AdminHandler) deleteAsset(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteAsset(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Asset deleted successfully"})
}
