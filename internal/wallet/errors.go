package wallet

import "errors"

var (
	// ErrTxNotFound is returned when the store has no entry for a
	// transaction hash.
	ErrTxNotFound = errors.New("transaction not found")

	// ErrDuplicateTx is returned when inserting a transaction hash the
	// store already tracks.
	ErrDuplicateTx = errors.New("transaction already tracked")

	// ErrInvalidTxHash is returned for hashes that are not 64 hex
	// characters.
	ErrInvalidTxHash = errors.New("invalid transaction hash")
)
