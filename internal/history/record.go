package history

// unconfHeightBase pushes records without a usable height past any real block
// height when building sort keys. Must exceed the highest block height the
// wallet will ever see.
const unconfHeightBase = 1_000_000_000

// maxDisplayConfirmations caps the confirmed status ladder; anything deeper
// than six confirmations renders the same.
const maxDisplayConfirmations = 6

// Record is one history line: the persistent, externally supplied fields of a
// transaction as it affects the wallet. Confirmation count and status are
// derived on read (they depend on the chain tip), never stored here.
type Record struct {
	// TxHash is the transaction hash, the record's identity key.
	TxHash string

	// Height is the confirmation height: >0 confirmed, 0 unconfirmed,
	// <0 unconfirmed with unconfirmed parents.
	Height int64

	// Timestamp is the block timestamp in epoch seconds, 0 until the
	// transaction has been timestamped.
	Timestamp int64

	// Value is the net effect on the wallet balance in satoshis. Negative
	// for spends.
	Value int64

	// Position is the transaction's position within its block, used to
	// order records sharing a height once timestamped.
	Position int64
}

// SortKey is the total order over records: ascending (Primary, Secondary).
type SortKey struct {
	Primary   int64
	Secondary int64
}

// sortKey computes the record's sort key.
//
// Timestamped records order by (height, position). Untimestamped records with a
// nonzero height order after all real heights, with more-negative heights
// (deeper unconfirmed ancestry) later. Records with no ordering information at
// all sort last.
func (r Record) sortKey() SortKey {
	if r.Timestamp != 0 {
		return SortKey{Primary: r.Height, Secondary: r.Position}
	}
	if r.Height > 0 {
		return SortKey{Primary: r.Height}
	}
	if r.Height < 0 {
		return SortKey{Primary: unconfHeightBase - r.Height}
	}
	return SortKey{Primary: unconfHeightBase + 1}
}

// Less reports whether k orders strictly before other.
func (k SortKey) Less(other SortKey) bool {
	if k.Primary != other.Primary {
		return k.Primary < other.Primary
	}
	return k.Secondary < other.Secondary
}

// Confirmations derives the confirmation count for a record given the current
// chain tip. Untimestamped records always report zero.
func Confirmations(r Record, tip int64) int64 {
	if r.Timestamp == 0 {
		return 0
	}
	conf := tip - r.Height + 1
	if conf < 0 {
		return 0
	}
	return conf
}

// Status classifies a record for display.
type Status int

const (
	// StatusUnknown means the underlying transaction could not be resolved
	// by the wallet.
	StatusUnknown Status = iota
	// StatusUnconfirmedParent means the record is unconfirmed and depends
	// on unconfirmed inputs.
	StatusUnconfirmedParent
	// StatusUnconfirmed means the record has not been mined.
	StatusUnconfirmed
	// StatusUnverified means the record has a height but no confirmations
	// have been verified yet.
	StatusUnverified
	// StatusConfirmed1 through StatusConfirmed6 count verified
	// confirmations, capped at six.
	StatusConfirmed1
	StatusConfirmed2
	StatusConfirmed3
	StatusConfirmed4
	StatusConfirmed5
	StatusConfirmed6
)

// StatusFor derives the display status from a record, its derived confirmation
// count, and whether the wallet can still resolve the underlying transaction.
func StatusFor(r Record, confirmations int64, resolvable bool) Status {
	if confirmations > 0 {
		if confirmations > maxDisplayConfirmations {
			confirmations = maxDisplayConfirmations
		}
		return StatusUnverified + Status(confirmations)
	}
	if !resolvable {
		return StatusUnknown
	}
	switch {
	case r.Height < 0:
		return StatusUnconfirmedParent
	case r.Height == 0:
		return StatusUnconfirmed
	default:
		return StatusUnverified
	}
}

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusUnconfirmedParent:
		return "unconfirmed parent"
	case StatusUnconfirmed:
		return "unconfirmed"
	case StatusUnverified:
		return "not verified"
	}
	if s >= StatusConfirmed1 && s <= StatusConfirmed6 {
		return [...]string{
			"1 confirmation",
			"2 confirmations",
			"3 confirmations",
			"4 confirmations",
			"5 confirmations",
			"6+ confirmations",
		}[s-StatusConfirmed1]
	}
	return "unknown"
}

// Confirmed reports whether the status is in the confirmed ladder.
func (s Status) Confirmed() bool {
	return s >= StatusConfirmed1 && s <= StatusConfirmed6
}
