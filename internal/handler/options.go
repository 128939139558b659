package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/options"
)

// OptionsHandler serves the option lists used by the intake form.
type OptionsHandler struct {
	store *options.Store
}

// NewOptionsHandler creates a new OptionsHandler.
func NewOptionsHandler(store *options.Store) *OptionsHandler {
	return &OptionsHandler{store: store}
}

// ListOptions returns every option list.
// GET /api/v1/options
func (h *OptionsHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	lists, err := h.store.All(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to load option lists")
		return
	}
	writeList(w, lists)
}

// GetOptionList returns one option list.
// GET /api/v1/options/{list}
func (h *OptionsHandler) GetOptionList(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "list")
	items, err := h.store.Get(r.Context(), name)
	if err != nil {
		writeDomainError(w, err, "Failed to load option list")
		return
	}
	writeJSON(w, http.StatusOK, model.OptionList{Name: name, Items: items})
}

type optionItemsRequest struct {
	Items []string `json:"items"`
}

// ReplaceOptionList replaces the items of one option list.
// PUT /api/v1/options/{list}
func (h *OptionsHandler) ReplaceOptionList(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "list")

	var req optionItemsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Items == nil {
		writeError(w, http.StatusBadRequest, "items is required")
		return
	}

	items, err := h.store.Set(r.Context(), name, req.Items)
	if err != nil {
		writeDomainError(w, err, "Failed to save option list")
		return
	}
	writeJSON(w, http.StatusOK, model.OptionList{Name: name, Items: items})
}

// ResetOptionList restores one option list to its defaults.
// DELETE /api/v1/options/{list}
func (h *OptionsHandler) ResetOptionList(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "list")
	items, err := h.store.Reset(r.Context(), name)
	if err != nil {
		writeDomainError(w, err, "Failed to reset option list")
		return
	}
	writeJSON(w, http.StatusOK, model.OptionList{Name: name, Items: items})
}
