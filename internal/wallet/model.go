package wallet

// TxEntry is one wallet transaction as the wallet store tracks it: the chain
// placement plus the satoshi flows in and out of the wallet's outputs. The
// history view's net value derives from these flows.
type TxEntry struct {
	TxHash string

	// Height is the confirmation height: >0 confirmed, 0 unconfirmed,
	// <0 unconfirmed with unconfirmed parents.
	Height int64

	// Position is the transaction's index within its block, 0 until mined.
	Position int64

	// Timestamp is the block timestamp in epoch seconds, 0 until
	// timestamped.
	Timestamp int64

	// Received and Sent are the satoshis flowing to and from the wallet's
	// own outputs.
	Received int64
	Sent     int64

	// Fee is the transaction fee when the wallet funded the transaction,
	// else 0.
	Fee int64

	// Raw is the serialized transaction, may be nil when the wallet has
	// dropped it.
	Raw []byte

	// Label is the user's free-text description.
	Label string
}

// Value is the net effect of the entry on the wallet balance.
func (e TxEntry) Value() int64 {
	return e.Received - e.Sent
}

// Relevant reports whether the entry touches the wallet at all.
func (e TxEntry) Relevant() bool {
	return e.Received != 0 || e.Sent != 0
}

// Mine reports whether the wallet contributed inputs.
func (e TxEntry) Mine() bool {
	return e.Sent != 0
}

// Placement is a height update for a tracked transaction, as delivered by
// verification and reorg events.
type Placement struct {
	Height    int64
	Position  int64
	Timestamp int64
}
