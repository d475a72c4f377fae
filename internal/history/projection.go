package history

import (
	"fmt"
	"sort"
)

// Range is a span of display rows made stale by a mutation, inclusive on both
// ends. The rendering side should refresh exactly these rows.
type Range struct {
	First int
	Last  int
}

// IsEmpty reports whether the range covers no rows.
func (r Range) IsEmpty() bool {
	return r.Last < r.First
}

// Projection is the sorted ledger view: history records in ascending sort-key
// order alongside a running balance column maintained incrementally on every
// mutation.
//
// Between public operations the projection guarantees:
//   - records and balances have equal length,
//   - balances[i] is the prefix sum of record values through row i,
//   - records are non-decreasing by sort key,
//   - transaction hashes are unique.
//
// The projection does no locking of its own. It is designed for a single
// owning goroutine; concurrent callers must serialize around it (Service does).
type Projection struct {
	records  []Record
	balances []int64
}

// NewProjection returns an empty projection.
func NewProjection() *Projection {
	return &Projection{}
}

// Load replaces the entire record set. Input order does not matter; records
// are sorted by sort key, ties keeping their input order. Any previously
// reported dirty ranges are void: the returned range covers every row of the
// new contents.
func (p *Projection) Load(records []Record) (Range, error) {
	p.records = make([]Record, len(records))
	copy(p.records, records)
	sort.SliceStable(p.records, func(i, j int) bool {
		return p.records[i].sortKey().Less(p.records[j].sortKey())
	})
	p.balances = make([]int64, len(p.records))
	if err := p.recomputeBalances(0); err != nil {
		return Range{}, err
	}
	return Range{First: 0, Last: len(p.records) - 1}, nil
}

// Len returns the number of rows.
func (p *Projection) Len() int {
	return len(p.records)
}

// RecordAt returns the record at the given row.
func (p *Projection) RecordAt(row int) (Record, bool) {
	if row < 0 || row >= len(p.records) {
		return Record{}, false
	}
	return p.records[row], true
}

// BalanceAt returns the running balance at the given row.
func (p *Projection) BalanceAt(row int) (int64, bool) {
	if row < 0 || row >= len(p.balances) {
		return 0, false
	}
	return p.balances[row], true
}

// Snapshot returns copies of the record list and balance column, index aligned.
func (p *Projection) Snapshot() ([]Record, []int64) {
	records := make([]Record, len(p.records))
	copy(records, p.records)
	balances := make([]int64, len(p.balances))
	copy(balances, p.balances)
	return records, balances
}

// FindRow returns the row holding the transaction, or false if absent. Linear
// scan; wallet histories stay at cardinalities where an index would not pay
// for its bookkeeping.
func (p *Projection) FindRow(txHash string) (int, bool) {
	for i := range p.records {
		if p.records[i].TxHash == txHash {
			return i, true
		}
	}
	return 0, false
}

// insertionPoint finds the row at which the record belongs. The scan runs from
// the tail because new records are almost always near the recent end. Equal
// keys land after all existing records with that key, so ties preserve
// insertion order.
func (p *Projection) insertionPoint(rec Record) int {
	key := rec.sortKey()
	i := len(p.records) - 1
	for i >= 0 && key.Less(p.records[i].sortKey()) {
		i--
	}
	return i + 1
}

// Insert adds a new record at its sorted position and extends the running
// balance from that row onward. The transaction hash must not already be
// present; a duplicate is a caller contract violation and leaves the
// projection untouched. Returns the insertion row; rows from there to the end
// are stale.
func (p *Projection) Insert(rec Record) (int, error) {
	if _, exists := p.FindRow(rec.TxHash); exists {
		return 0, fmt.Errorf("insert %s: %w", rec.TxHash, ErrDuplicateTx)
	}

	row := p.insertionPoint(rec)
	p.records = append(p.records, Record{})
	copy(p.records[row+1:], p.records[row:])
	p.records[row] = rec
	p.balances = append(p.balances, 0)
	copy(p.balances[row+1:], p.balances[row:])
	p.balances[row] = 0

	if err := p.recomputeBalances(row); err != nil {
		return 0, err
	}
	return row, nil
}

// FieldChanges is the set of record fields an update may replace. Nil fields
// keep their current value.
type FieldChanges struct {
	Height    *int64
	Timestamp *int64
	Value     *int64
	Position  *int64
}

func (c FieldChanges) isZero() bool {
	return c.Height == nil && c.Timestamp == nil && c.Value == nil && c.Position == nil
}

func (c FieldChanges) applyTo(rec Record) Record {
	if c.Height != nil {
		rec.Height = *c.Height
	}
	if c.Timestamp != nil {
		rec.Timestamp = *c.Timestamp
	}
	if c.Value != nil {
		rec.Value = *c.Value
	}
	if c.Position != nil {
		rec.Position = *c.Position
	}
	return rec
}

// Update applies field changes to the identified record. If the changes move
// the record's sort key it is re-inserted at its new position and the balance
// column is rebuilt from the first affected row; otherwise the record is
// patched in place and only its own row goes stale. An empty change set is a
// display-only refresh of the row. Returns ErrTxNotFound for unknown hashes;
// callers handling reorgs are expected to tolerate that.
func (p *Projection) Update(txHash string, changes FieldChanges) (Range, error) {
	row, ok := p.FindRow(txHash)
	if !ok {
		return Range{}, fmt.Errorf("update %s: %w", txHash, ErrTxNotFound)
	}
	if changes.isZero() {
		return Range{First: row, Last: row}, nil
	}

	old := p.records[row]
	updated := changes.applyTo(old)

	if updated.sortKey() == old.sortKey() {
		p.records[row] = updated
		if updated.Value == old.Value {
			return Range{First: row, Last: row}, nil
		}
		// Value moved without moving the key; every balance from here on
		// shifts.
		if err := p.recomputeBalances(row); err != nil {
			return Range{}, err
		}
		return Range{First: row, Last: len(p.records) - 1}, nil
	}

	// The key moved: take the record out and re-insert it where it now
	// belongs.
	p.records = append(p.records[:row], p.records[row+1:]...)
	p.balances = append(p.balances[:row], p.balances[row+1:]...)
	newRow := p.insertionPoint(updated)
	p.records = append(p.records, Record{})
	copy(p.records[newRow+1:], p.records[newRow:])
	p.records[newRow] = updated
	p.balances = append(p.balances, 0)
	copy(p.balances[newRow+1:], p.balances[newRow:])
	p.balances[newRow] = 0

	first := row
	if newRow < first {
		first = newRow
	}
	if err := p.recomputeBalances(first); err != nil {
		return Range{}, err
	}

	last := row
	if newRow > last {
		last = newRow
	}
	if updated.Value != old.Value {
		last = len(p.records) - 1
	}
	return Range{First: first, Last: last}, nil
}

// Remove splices out the identified record and rebuilds the running balance
// from the vacated row so the column stays consistent. Returns the removed
// record and the row it occupied; rows from there to the new end are stale.
// An unknown hash is reported as ErrTxNotFound, not treated as fatal.
func (p *Projection) Remove(txHash string) (Record, int, error) {
	row, ok := p.FindRow(txHash)
	if !ok {
		return Record{}, 0, fmt.Errorf("remove %s: %w", txHash, ErrTxNotFound)
	}

	removed := p.records[row]
	p.records = append(p.records[:row], p.records[row+1:]...)
	p.balances = append(p.balances[:row], p.balances[row+1:]...)

	if err := p.recomputeBalances(row); err != nil {
		return Record{}, 0, err
	}
	return removed, row, nil
}

// recomputeBalances rebuilds the running balance from the given row to the
// end, seeding from the preceding row. Afterwards the final balance must equal
// the sum of every record value; a mismatch means corrupted input or a splice
// bug and surfaces as ErrBalanceMismatch rather than being silently corrected.
func (p *Projection) recomputeBalances(from int) error {
	var balance int64
	if from > 0 {
		balance = p.balances[from-1]
	}
	for i := from; i < len(p.records); i++ {
		balance += p.records[i].Value
		p.balances[i] = balance
	}

	var total int64
	for i := range p.records {
		total += p.records[i].Value
	}
	if len(p.balances) > 0 && p.balances[len(p.balances)-1] != total {
		return fmt.Errorf("recompute from row %d: %w", from, ErrBalanceMismatch)
	}
	return nil
}
