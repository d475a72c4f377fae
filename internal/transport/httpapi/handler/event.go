package handler

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pekatete/electrumsv/internal/history"
	"github.com/pekatete/electrumsv/internal/wallet"
)

// HistoryEventService defines the history view mutations needed by EventHandler
type HistoryEventService interface {
	Resync(ctx context.Context) (history.Range, error)
	NoteChainTip(height int64) history.Range
	NoteNewTransaction(ctx context.Context, txHash string) (history.Range, error)
	NoteHeightChange(ctx context.Context, txHash string) (history.Range, error)
	NoteLabelChange(txHash string) (history.Range, error)
	Remove(txHash string) (history.Range, error)
	ChainTip() int64
}

// WalletStore defines the wallet persistence operations needed by EventHandler
type WalletStore interface {
	InsertTransaction(ctx context.Context, e wallet.TxEntry) error
	SetPlacement(ctx context.Context, txHash string, p wallet.Placement) error
	SetLabel(ctx context.Context, txHash, label string) error
	DeleteTransaction(ctx context.Context, txHash string) error
	SetChainTip(ctx context.Context, height int64) error
}

// EventHandler applies wallet events: new transactions, height changes,
// label edits, removals and chain tip moves. Every mutation response carries
// the range of history rows the event invalidated.
type EventHandler struct {
	store   WalletStore
	service HistoryEventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(store WalletStore, service HistoryEventService) *EventHandler {
	return &EventHandler{
		store:   store,
		service: service,
	}
}

// RangeResponse is a half-open row span rendered as inclusive bounds
type RangeResponse struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// EventResponse reports which rows an event invalidated. Dirty is null when
// nothing changed.
type EventResponse struct {
	Dirty *RangeResponse `json:"dirty"`
}

func eventResponse(r history.Range) EventResponse {
	if r.IsEmpty() {
		return EventResponse{}
	}
	return EventResponse{Dirty: &RangeResponse{First: r.First, Last: r.Last}}
}

// CreateTransactionRequest represents a new wallet transaction event
type CreateTransactionRequest struct {
	TxHash    string `json:"tx_hash"`
	Height    int64  `json:"height"`
	Position  int64  `json:"position"`
	Timestamp int64  `json:"timestamp"`
	Received  int64  `json:"received"`
	Sent      int64  `json:"sent"`
	Fee       int64  `json:"fee"`
	Raw       string `json:"raw,omitempty"` // hex encoded
	Label     string `json:"label,omitempty"`
}

// CreateTransaction handles POST /transactions
func (h *EventHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	txHash, err := wallet.ValidateTxHash(req.TxHash)
	if err != nil {
		respondError(w, "invalid transaction hash", http.StatusBadRequest)
		return
	}

	if req.Received < 0 || req.Sent < 0 || req.Fee < 0 {
		respondError(w, "satoshi flows must be non-negative", http.StatusBadRequest)
		return
	}

	var raw []byte
	if req.Raw != "" {
		raw, err = hex.DecodeString(req.Raw)
		if err != nil {
			respondError(w, "raw must be hex encoded", http.StatusBadRequest)
			return
		}
	}

	entry := wallet.TxEntry{
		TxHash:    txHash,
		Height:    req.Height,
		Position:  req.Position,
		Timestamp: req.Timestamp,
		Received:  req.Received,
		Sent:      req.Sent,
		Fee:       req.Fee,
		Raw:       raw,
		Label:     req.Label,
	}

	if err := h.store.InsertTransaction(r.Context(), entry); err != nil {
		if errors.Is(err, wallet.ErrDuplicateTx) {
			respondError(w, "transaction already exists", http.StatusConflict)
			return
		}
		respondError(w, "failed to store transaction", http.StatusInternalServerError)
		return
	}

	dirty, err := h.service.NoteNewTransaction(r.Context(), txHash)
	if err != nil {
		if errors.Is(err, history.ErrDuplicateTx) {
			respondError(w, "transaction already in history", http.StatusConflict)
			return
		}
		respondError(w, "failed to update history", http.StatusInternalServerError)
		return
	}

	respondJSON(w, eventResponse(dirty), http.StatusCreated)
}

// SetHeightRequest represents a chain placement event for a transaction
type SetHeightRequest struct {
	Height    int64 `json:"height"`
	Position  int64 `json:"position"`
	Timestamp int64 `json:"timestamp"`
}

// SetHeight handles PUT /transactions/{txHash}/height
func (h *EventHandler) SetHeight(w http.ResponseWriter, r *http.Request) {
	txHash, err := wallet.ValidateTxHash(chi.URLParam(r, "txHash"))
	if err != nil {
		respondError(w, "invalid transaction hash", http.StatusBadRequest)
		return
	}

	var req SetHeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p := wallet.Placement{
		Height:    req.Height,
		Position:  req.Position,
		Timestamp: req.Timestamp,
	}
	if err := h.store.SetPlacement(r.Context(), txHash, p); err != nil {
		if errors.Is(err, wallet.ErrTxNotFound) {
			respondError(w, "transaction not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to store placement", http.StatusInternalServerError)
		return
	}

	dirty, err := h.service.NoteHeightChange(r.Context(), txHash)
	if err != nil {
		// Not-found here means the transaction never touched the wallet
		// balance, so the view has nothing to refresh.
		if !errors.Is(err, history.ErrTxNotFound) {
			respondError(w, "failed to update history", http.StatusInternalServerError)
			return
		}
		dirty = history.Range{First: 0, Last: -1}
	}

	respondJSON(w, eventResponse(dirty), http.StatusOK)
}

// SetLabelRequest represents a label edit
type SetLabelRequest struct {
	Label string `json:"label"`
}

// SetLabel handles PUT /transactions/{txHash}/label
func (h *EventHandler) SetLabel(w http.ResponseWriter, r *http.Request) {
	txHash, err := wallet.ValidateTxHash(chi.URLParam(r, "txHash"))
	if err != nil {
		respondError(w, "invalid transaction hash", http.StatusBadRequest)
		return
	}

	var req SetLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.SetLabel(r.Context(), txHash, req.Label); err != nil {
		if errors.Is(err, wallet.ErrTxNotFound) {
			respondError(w, "transaction not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to store label", http.StatusInternalServerError)
		return
	}

	dirty, err := h.service.NoteLabelChange(txHash)
	if err != nil {
		if !errors.Is(err, history.ErrTxNotFound) {
			respondError(w, "failed to update history", http.StatusInternalServerError)
			return
		}
		dirty = history.Range{First: 0, Last: -1}
	}

	respondJSON(w, eventResponse(dirty), http.StatusOK)
}

// DeleteTransaction handles DELETE /transactions/{txHash}
func (h *EventHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	txHash, err := wallet.ValidateTxHash(chi.URLParam(r, "txHash"))
	if err != nil {
		respondError(w, "invalid transaction hash", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteTransaction(r.Context(), txHash); err != nil {
		respondError(w, "failed to delete transaction", http.StatusInternalServerError)
		return
	}

	dirty, err := h.service.Remove(txHash)
	if err != nil {
		if !errors.Is(err, history.ErrTxNotFound) {
			respondError(w, "failed to update history", http.StatusInternalServerError)
			return
		}
		dirty = history.Range{First: 0, Last: -1}
	}

	respondJSON(w, eventResponse(dirty), http.StatusOK)
}

// ChainTipResponse reports the locally tracked chain height
type ChainTipResponse struct {
	Height int64 `json:"height"`
}

// GetChainTip handles GET /chain/tip
func (h *EventHandler) GetChainTip(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, ChainTipResponse{Height: h.service.ChainTip()}, http.StatusOK)
}

// SetChainTipRequest represents a chain tip move
type SetChainTipRequest struct {
	Height int64 `json:"height"`
}

// SetChainTip handles PUT /chain/tip
// A tip move changes the confirmation count of every row, so the dirty range
// spans the whole view.
func (h *EventHandler) SetChainTip(w http.ResponseWriter, r *http.Request) {
	var req SetChainTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Height < 0 {
		respondError(w, "height must be non-negative", http.StatusBadRequest)
		return
	}

	if err := h.store.SetChainTip(r.Context(), req.Height); err != nil {
		respondError(w, "failed to store chain tip", http.StatusInternalServerError)
		return
	}

	dirty := h.service.NoteChainTip(req.Height)
	respondJSON(w, eventResponse(dirty), http.StatusOK)
}

// Resync handles POST /resync
// Rebuilds the whole view from the wallet store.
func (h *EventHandler) Resync(w http.ResponseWriter, r *http.Request) {
	dirty, err := h.service.Resync(r.Context())
	if err != nil {
		respondError(w, "failed to resync history", http.StatusInternalServerError)
		return
	}

	respondJSON(w, eventResponse(dirty), http.StatusOK)
}
