package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pekatete/electrumsv/internal/history"
	"github.com/pekatete/electrumsv/internal/wallet"
)

// uniqueViolation is the postgres error code for duplicate keys.
const uniqueViolation = "23505"

// Store is the PostgreSQL-backed wallet collaborator. It owns the persistent
// transaction entries, labels, and chain tip; the history service consumes it
// through the history.Wallet port.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL wallet store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InsertTransaction records a newly observed wallet transaction.
func (s *Store) InsertTransaction(ctx context.Context, e wallet.TxEntry) error {
	query := `
		INSERT INTO wallet_transactions
			(tx_hash, height, block_position, timestamp, received, sent, fee, raw_tx, label)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		e.TxHash,
		e.Height,
		e.Position,
		e.Timestamp,
		e.Received,
		e.Sent,
		e.Fee,
		e.Raw,
		e.Label,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert %s: %w", e.TxHash, wallet.ErrDuplicateTx)
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// SetPlacement updates a transaction's chain placement after verification or
// a reorg.
func (s *Store) SetPlacement(ctx context.Context, txHash string, p wallet.Placement) error {
	query := `
		UPDATE wallet_transactions
		SET height = $2, block_position = $3, timestamp = $4
		WHERE tx_hash = $1
	`

	tag, err := s.pool.Exec(ctx, query, txHash, p.Height, p.Position, p.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to update placement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("placement for %s: %w", txHash, wallet.ErrTxNotFound)
	}

	return nil
}

// SetLabel stores the user label for a transaction.
func (s *Store) SetLabel(ctx context.Context, txHash, label string) error {
	query := `UPDATE wallet_transactions SET label = $2 WHERE tx_hash = $1`

	tag, err := s.pool.Exec(ctx, query, txHash, label)
	if err != nil {
		return fmt.Errorf("failed to set label: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("label for %s: %w", txHash, wallet.ErrTxNotFound)
	}

	return nil
}

// GetLabel returns the user label for a transaction, empty when unset.
func (s *Store) GetLabel(ctx context.Context, txHash string) (string, error) {
	query := `SELECT label FROM wallet_transactions WHERE tx_hash = $1`

	var label string
	err := s.pool.QueryRow(ctx, query, txHash).Scan(&label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("label for %s: %w", txHash, wallet.ErrTxNotFound)
		}
		return "", fmt.Errorf("failed to get label: %w", err)
	}

	return label, nil
}

// DeleteTransaction drops a transaction, typically after a reorg made it
// irrelevant. Deleting an untracked hash is not an error.
func (s *Store) DeleteTransaction(ctx context.Context, txHash string) error {
	query := `DELETE FROM wallet_transactions WHERE tx_hash = $1`

	if _, err := s.pool.Exec(ctx, query, txHash); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return nil
}

// SetChainTip stores the wallet's current chain tip.
func (s *Store) SetChainTip(ctx context.Context, height int64) error {
	query := `
		INSERT INTO chain_state (id, tip_height)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET tip_height = EXCLUDED.tip_height
	`

	if _, err := s.pool.Exec(ctx, query, height); err != nil {
		return fmt.Errorf("failed to set chain tip: %w", err)
	}

	return nil
}

// GetHistory returns one history record per tracked transaction that touches
// the wallet. Implements history.Wallet.
func (s *Store) GetHistory(ctx context.Context) ([]history.Record, error) {
	query := `
		SELECT tx_hash, height, block_position, timestamp, received, sent
		FROM wallet_transactions
		WHERE received != 0 OR sent != 0
		ORDER BY height, block_position
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []history.Record
	for rows.Next() {
		var (
			rec            history.Record
			received, sent int64
		)
		if err := rows.Scan(&rec.TxHash, &rec.Height, &rec.Position, &rec.Timestamp,
			&received, &sent); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.Value = received - sent
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return records, nil
}

// LocalChainHeight returns the stored chain tip, zero before the first tip is
// recorded. Implements history.Wallet.
func (s *Store) LocalChainHeight(ctx context.Context) (int64, error) {
	query := `SELECT tip_height FROM chain_state WHERE id = 1`

	var height int64
	err := s.pool.QueryRow(ctx, query).Scan(&height)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get chain height: %w", err)
	}

	return height, nil
}

// GetTxHeight returns a transaction's chain placement. Implements
// history.Wallet.
func (s *Store) GetTxHeight(ctx context.Context, txHash string) (history.TxHeight, error) {
	query := `
		SELECT height, block_position, timestamp
		FROM wallet_transactions
		WHERE tx_hash = $1
	`

	var th history.TxHeight
	err := s.pool.QueryRow(ctx, query, txHash).Scan(&th.Height, &th.Position, &th.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return history.TxHeight{}, fmt.Errorf("height for %s: %w", txHash, wallet.ErrTxNotFound)
		}
		return history.TxHeight{}, fmt.Errorf("failed to get tx height: %w", err)
	}

	return th, nil
}

// GetTransaction resolves the underlying transaction. Implements
// history.Wallet.
func (s *Store) GetTransaction(ctx context.Context, txHash string) (*history.Transaction, error) {
	query := `SELECT tx_hash, raw_tx, label FROM wallet_transactions WHERE tx_hash = $1`

	tx := &history.Transaction{}
	err := s.pool.QueryRow(ctx, query, txHash).Scan(&tx.TxHash, &tx.Raw, &tx.Label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", txHash, wallet.ErrTxNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// GetTransactionDelta reports the transaction's net effect on the wallet.
// Implements history.Wallet.
func (s *Store) GetTransactionDelta(ctx context.Context, txHash string) (history.Delta, error) {
	query := `SELECT received, sent, fee FROM wallet_transactions WHERE tx_hash = $1`

	var e wallet.TxEntry
	err := s.pool.QueryRow(ctx, query, txHash).Scan(&e.Received, &e.Sent, &e.Fee)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return history.Delta{}, fmt.Errorf("delta for %s: %w", txHash, wallet.ErrTxNotFound)
		}
		return history.Delta{}, fmt.Errorf("failed to get transaction delta: %w", err)
	}

	delta := history.Delta{
		Relevant: e.Relevant(),
		Mine:     e.Mine(),
		Value:    e.Value(),
	}
	if delta.Mine {
		delta.Fee = e.Fee
	}
	return delta, nil
}
