package history

import "errors"

var (
	// ErrTxNotFound is returned when an operation references a transaction
	// hash that is not present in the projection. Callers such as reorg
	// handlers are expected to tolerate it.
	ErrTxNotFound = errors.New("transaction not found in history")

	// ErrDuplicateTx is returned when an insert would introduce a second
	// record with the same transaction hash. The caller broke the insert
	// contract; the projection is left untouched.
	ErrDuplicateTx = errors.New("transaction already present in history")

	// ErrBalanceMismatch indicates the running balance no longer sums to
	// the total of all record values. It is an internal consistency defect,
	// never a recoverable condition.
	ErrBalanceMismatch = errors.New("running balance does not match sum of values")
)
