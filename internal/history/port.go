package history

import "context"

// TxHeight is the wallet's current view of a transaction's place in the chain.
type TxHeight struct {
	Height    int64
	Timestamp int64
	Position  int64
}

// Delta is the net effect of a transaction on the wallet, as computed by the
// wallet collaborator.
type Delta struct {
	// Relevant is false when the transaction touches none of the wallet's
	// outputs; such transactions never enter the history.
	Relevant bool
	// Mine is true when the wallet contributed inputs.
	Mine bool
	// Value is the net change in satoshis, negative for spends.
	Value int64
	// Fee is the transaction fee when known (Mine only), else 0.
	Fee int64
}

// Transaction is the resolvable underlying transaction, as much of it as the
// history view needs.
type Transaction struct {
	TxHash string
	Raw    []byte
	Label  string
}

// Wallet is the chain/wallet collaborator the history view consumes. All
// persistence and chain tracking lives behind it; the projection itself never
// touches storage.
type Wallet interface {
	// GetHistory returns the full history snapshot: one record per
	// transaction affecting the wallet, in no particular order.
	GetHistory(ctx context.Context) ([]Record, error)

	// LocalChainHeight returns the wallet's current chain tip.
	LocalChainHeight(ctx context.Context) (int64, error)

	// GetTxHeight returns the chain placement of one transaction.
	GetTxHeight(ctx context.Context, txHash string) (TxHeight, error)

	// GetTransaction resolves the underlying transaction, or an error
	// wrapping a not-found sentinel when the wallet no longer has it.
	GetTransaction(ctx context.Context, txHash string) (*Transaction, error)

	// GetTransactionDelta reports the transaction's net effect on the
	// wallet balance.
	GetTransactionDelta(ctx context.Context, txHash string) (Delta, error)
}
