package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pekatete/electrumsv/internal/history"
	"github.com/pekatete/electrumsv/internal/settings"
)

// RowCounter reports the current size of the history view
type RowCounter interface {
	RowCount() int
}

// SettingsHandler manages runtime display settings
type SettingsHandler struct {
	store   *settings.Store
	history RowCounter
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store *settings.Store, history RowCounter) *SettingsHandler {
	return &SettingsHandler{
		store:   store,
		history: history,
	}
}

// SettingResponse represents one stored setting. Changing a display setting
// invalidates every rendered row, reported through Dirty.
type SettingResponse struct {
	Key   string         `json:"key"`
	Value interface{}    `json:"value"`
	Dirty *RangeResponse `json:"dirty,omitempty"`
}

// SetSettingRequest represents the setting update body. The value arrives as
// a string and is normalized server-side.
type SetSettingRequest struct {
	Value string `json:"value"`
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.store.All(), http.StatusOK)
}

// GetSetting handles GET /settings/{key}
func (h *SettingsHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, ok := h.store.Get(key)
	if !ok {
		respondError(w, "setting not found", http.StatusNotFound)
		return
	}

	respondJSON(w, SettingResponse{Key: key, Value: value}, http.StatusOK)
}

// SetSetting handles PUT /settings/{key}
func (h *SettingsHandler) SetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		respondError(w, "setting key is required", http.StatusBadRequest)
		return
	}

	var req SetSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	value, changed := h.store.Set(key, req.Value)

	resp := SettingResponse{Key: key, Value: value}
	if changed && settings.IsDisplayKey(key) {
		dirty := history.Range{First: 0, Last: h.history.RowCount() - 1}
		if !dirty.IsEmpty() {
			resp.Dirty = &RangeResponse{First: dirty.First, Last: dirty.Last}
		}
	}

	respondJSON(w, resp, http.StatusOK)
}
