package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pekatete/electrumsv/internal/history"
	"github.com/pekatete/electrumsv/internal/wallet"
	"github.com/pekatete/electrumsv/pkg/config"
	"github.com/pekatete/electrumsv/pkg/money"
)

// HistoryReader defines the history view operations needed by HistoryHandler
type HistoryReader interface {
	Rows(ctx context.Context) ([]history.Row, error)
	RowByHash(ctx context.Context, txHash string) (history.Row, int, error)
	ChainTip() int64
}

// LabelReader fetches user labels from the wallet store
type LabelReader interface {
	GetLabel(ctx context.Context, txHash string) (string, error)
}

// FiatValuer values satoshi amounts in fiat at a point in time
type FiatValuer interface {
	HistoricalValue(ctx context.Context, ccy string, at time.Time, sats int64) (string, error)
}

// HistoryHandler serves the rendered transaction history
type HistoryHandler struct {
	service HistoryReader
	labels  LabelReader
	fiat    FiatValuer
	network config.Network
	now     func() time.Time
}

// NewHistoryHandler creates a new history handler. The fiat valuer may be nil
// when no rate provider is configured.
func NewHistoryHandler(service HistoryReader, labels LabelReader, fiat FiatValuer, network config.Network) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		labels:  labels,
		fiat:    fiat,
		network: network,
		now:     time.Now,
	}
}

// HistoryRowResponse is one rendered history line
type HistoryRowResponse struct {
	Row           int    `json:"row"`
	TxHash        string `json:"tx_hash"`
	Height        int64  `json:"height"`
	Position      int64  `json:"position"`
	Timestamp     int64  `json:"timestamp,omitempty"`
	Value         string `json:"value"`
	ValueSats     int64  `json:"value_sats"`
	Balance       string `json:"balance"`
	BalanceSats   int64  `json:"balance_sats"`
	Confirmations int64  `json:"confirmations"`
	Status        string `json:"status"`
	Label         string `json:"label,omitempty"`
	ExplorerURL   string `json:"explorer_url,omitempty"`
	FiatValue     string `json:"fiat_value,omitempty"`
}

// HistoryResponse is the full history listing
type HistoryResponse struct {
	Tip  int64                `json:"tip"`
	Unit string               `json:"unit"`
	Rows []HistoryRowResponse `json:"rows"`
}

// GetHistory handles GET /history
// The optional fiat query parameter adds a fiat valuation column, e.g.
// ?fiat=usd.
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Rows(r.Context())
	if err != nil {
		respondError(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	fiatCcy := r.URL.Query().Get("fiat")

	out := make([]HistoryRowResponse, 0, len(rows))
	for i, row := range rows {
		out = append(out, h.renderRow(r.Context(), row, i, fiatCcy))
	}

	respondJSON(w, HistoryResponse{
		Tip:  h.service.ChainTip(),
		Unit: h.network.UnitName,
		Rows: out,
	}, http.StatusOK)
}

// GetHistoryRow handles GET /history/{txHash}
func (h *HistoryHandler) GetHistoryRow(w http.ResponseWriter, r *http.Request) {
	txHash, err := wallet.ValidateTxHash(chi.URLParam(r, "txHash"))
	if err != nil {
		respondError(w, "invalid transaction hash", http.StatusBadRequest)
		return
	}

	row, idx, err := h.service.RowByHash(r.Context(), txHash)
	if err != nil {
		if errors.Is(err, history.ErrTxNotFound) {
			respondError(w, "transaction not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to load history row", http.StatusInternalServerError)
		return
	}

	respondJSON(w, h.renderRow(r.Context(), row, idx, r.URL.Query().Get("fiat")), http.StatusOK)
}

func (h *HistoryHandler) renderRow(ctx context.Context, row history.Row, idx int, fiatCcy string) HistoryRowResponse {
	rec := row.Record

	resp := HistoryRowResponse{
		Row:           idx,
		TxHash:        rec.TxHash,
		Height:        rec.Height,
		Position:      rec.Position,
		Timestamp:     rec.Timestamp,
		Value:         money.FormatAmount(rec.Value, h.network.UnitDecimals),
		ValueSats:     rec.Value,
		Balance:       money.FormatAmount(row.Balance, h.network.UnitDecimals),
		BalanceSats:   row.Balance,
		Confirmations: row.Confirmations,
		Status:        row.Status.String(),
	}

	if h.network.ExplorerTxURL != "" {
		resp.ExplorerURL = fmt.Sprintf(h.network.ExplorerTxURL, rec.TxHash)
	}

	if h.labels != nil {
		if label, err := h.labels.GetLabel(ctx, rec.TxHash); err == nil {
			resp.Label = label
		}
	}

	if fiatCcy != "" && h.fiat != nil {
		// Unconfirmed rows have no block time yet; value them at the
		// current rate.
		at := h.now()
		if rec.Timestamp > 0 {
			at = time.Unix(rec.Timestamp, 0).UTC()
		}
		if value, err := h.fiat.HistoricalValue(ctx, fiatCcy, at, rec.Value); err == nil {
			resp.FiatValue = value
		}
	}

	return resp
}
