package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/pekatete/electrumsv/pkg/logger"
)

// Row is a fully derived display row: the persistent record plus its running
// balance and the confirmation state computed against the current chain tip.
type Row struct {
	Record        Record
	Balance       int64
	Confirmations int64
	Status        Status
}

// Service owns one projection per wallet-view session and serializes every
// access to it. The projection itself is lock-free by design; the mutex here
// is the single-writer discipline the projection requires, since events arrive
// over HTTP from arbitrary goroutines.
type Service struct {
	mu     sync.Mutex
	proj   *Projection
	tip    int64
	wallet Wallet
	log    *logger.Logger
}

// NewService creates a history service over the given wallet. Call Resync to
// populate it.
func NewService(w Wallet, log *logger.Logger) *Service {
	return &Service{
		proj:   NewProjection(),
		wallet: w,
		log:    log.WithField("component", "history"),
	}
}

// Resync atomically replaces the projection contents with a fresh wallet
// snapshot and refreshes the chain tip. The returned range covers every row.
func (s *Service) Resync(ctx context.Context) (Range, error) {
	records, err := s.wallet.GetHistory(ctx)
	if err != nil {
		return Range{}, fmt.Errorf("load history snapshot: %w", err)
	}
	tip, err := s.wallet.LocalChainHeight(ctx)
	if err != nil {
		return Range{}, fmt.Errorf("load chain height: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	dirty, err := s.proj.Load(records)
	if err != nil {
		return Range{}, err
	}
	s.tip = tip
	s.log.Info("history resynced", "rows", s.proj.Len(), "tip", tip)
	return dirty, nil
}

// ChainTip returns the chain tip the service currently derives against.
func (s *Service) ChainTip() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tip
}

// NoteChainTip records a new chain tip. No record changes, but every derived
// confirmation count does, so the whole view goes stale.
func (s *Service) NoteChainTip(height int64) Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tip = height
	return Range{First: 0, Last: s.proj.Len() - 1}
}

// NoteNewTransaction builds a record for a newly reported transaction from the
// wallet's delta and chain placement, and inserts it at its sorted position.
// Transactions the wallet considers irrelevant are skipped with an empty range.
func (s *Service) NoteNewTransaction(ctx context.Context, txHash string) (Range, error) {
	delta, err := s.wallet.GetTransactionDelta(ctx, txHash)
	if err != nil {
		return Range{}, fmt.Errorf("delta for %s: %w", txHash, err)
	}
	if !delta.Relevant {
		s.log.Debug("ignoring irrelevant transaction", "tx_hash", txHash)
		return Range{First: 0, Last: -1}, nil
	}
	th, err := s.wallet.GetTxHeight(ctx, txHash)
	if err != nil {
		return Range{}, fmt.Errorf("height for %s: %w", txHash, err)
	}

	rec := Record{
		TxHash:    txHash,
		Height:    th.Height,
		Timestamp: th.Timestamp,
		Value:     delta.Value,
		Position:  th.Position,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row, err := s.proj.Insert(rec)
	if err != nil {
		return Range{}, err
	}
	s.log.Debug("transaction inserted", "tx_hash", txHash, "row", row)
	return Range{First: row, Last: s.proj.Len() - 1}, nil
}

// NoteHeightChange refreshes one record's chain placement from the wallet,
// re-sorting it when the placement moved.
func (s *Service) NoteHeightChange(ctx context.Context, txHash string) (Range, error) {
	th, err := s.wallet.GetTxHeight(ctx, txHash)
	if err != nil {
		return Range{}, fmt.Errorf("height for %s: %w", txHash, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	dirty, err := s.proj.Update(txHash, FieldChanges{
		Height:    &th.Height,
		Timestamp: &th.Timestamp,
		Position:  &th.Position,
	})
	if err != nil {
		s.log.Debug("height change for absent entry", "tx_hash", txHash)
		return Range{}, err
	}
	return dirty, nil
}

// NoteLabelChange marks one row stale without touching its record; labels live
// in the wallet and are read back at render time.
func (s *Service) NoteLabelChange(txHash string) (Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proj.Update(txHash, FieldChanges{})
}

// Remove drops a transaction from the view, typically after a reorg has made
// it irrelevant. Absent hashes return ErrTxNotFound, which reorg handlers are
// expected to swallow.
func (s *Service) Remove(txHash string) (Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, row, err := s.proj.Remove(txHash)
	if err != nil {
		return Range{}, err
	}
	s.log.Debug("transaction removed", "tx_hash", txHash, "row", row)
	return Range{First: row, Last: s.proj.Len() - 1}, nil
}

// RowCount returns the number of rows in the view.
func (s *Service) RowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proj.Len()
}

// Rows returns a fully derived snapshot of the view. The projection is copied
// under the lock; status derivation talks to the wallet afterwards so a slow
// lookup never blocks mutations.
func (s *Service) Rows(ctx context.Context) ([]Row, error) {
	s.mu.Lock()
	records, balances := s.proj.Snapshot()
	tip := s.tip
	s.mu.Unlock()

	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = s.deriveRow(ctx, rec, balances[i], tip)
	}
	return rows, nil
}

// RowByHash returns one derived row and its position.
func (s *Service) RowByHash(ctx context.Context, txHash string) (Row, int, error) {
	s.mu.Lock()
	row, ok := s.proj.FindRow(txHash)
	if !ok {
		s.mu.Unlock()
		return Row{}, 0, fmt.Errorf("row %s: %w", txHash, ErrTxNotFound)
	}
	rec, _ := s.proj.RecordAt(row)
	balance, _ := s.proj.BalanceAt(row)
	tip := s.tip
	s.mu.Unlock()

	return s.deriveRow(ctx, rec, balance, tip), row, nil
}

func (s *Service) deriveRow(ctx context.Context, rec Record, balance, tip int64) Row {
	conf := Confirmations(rec, tip)
	resolvable := true
	if conf == 0 {
		// Only unconfirmed rows need the underlying transaction to pick a
		// status class; a failed lookup degrades to StatusUnknown.
		if _, err := s.wallet.GetTransaction(ctx, rec.TxHash); err != nil {
			resolvable = false
		}
	}
	return Row{
		Record:        rec,
		Balance:       balance,
		Confirmations: conf,
		Status:        StatusFor(rec, conf, resolvable),
	}
}
