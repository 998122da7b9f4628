package handler

import (
	"encoding/json"
	"net/http"

	"comanda-pos/internal/model"
	"comanda-pos/internal/service"

	"github.com/rs/zerolog"
)

// TabHandler handles order ledger HTTP requests.
type TabHandler struct {
	service service.LedgerService
	logger  zerolog.Logger
}

// NewTabHandler creates a new tab handler.
func NewTabHandler(service service.LedgerService, logger zerolog.Logger) *TabHandler {
	return &TabHandler{
		service: service,
		logger:  logger.With().Str("handler", "tab").Logger(),
	}
}

// Open handles POST /api/tabs requests.
func (h *TabHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req model.OpenTabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	tab, err := h.service.OpenTab(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, tab)
}

// ListOpen handles GET /api/tabs/open requests.
func (h *TabHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	tabs, err := h.service.ListOpenTabs(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, tabs)
}

// Detail handles GET /api/tabs/{id} requests.
func (h *TabHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	detail, err := h.service.GetTabDetail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// AddItem handles POST /api/tabs/{id}/items requests.
func (h *TabHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	item, err := h.service.AddItem(r.Context(), id, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// RemoveItem handles DELETE /api/tabs/{id}/items/{itemId} requests.
func (h *TabHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	itemID, ok := pathID(w, r, "itemId", h.logger)
	if !ok {
		return
	}

	if err := h.service.RemoveItem(r.Context(), id, itemID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Close handles PUT /api/tabs/{id}/close requests.
func (h *TabHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.CloseTabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.CloseTab(r.Context(), id, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reopen handles PUT /api/tabs/{id}/reopen requests.
func (h *TabHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.ReopenTab(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/tabs/{id} requests.
func (h *TabHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteTab(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
