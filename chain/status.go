// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "fmt"

// TransactionStatus is the lifecycle classification of a bridge
// transaction, derived from two independent node facts: whether the
// transaction has at least one confirmation and whether it is present in
// the mempool.
type TransactionStatus uint8

const (
	// StatusBroadcasted means the transaction is known to the mempool but
	// has no confirmations yet.
	StatusBroadcasted TransactionStatus = iota

	// StatusConfirmed means the transaction has at least one confirmation
	// and has left the mempool.
	StatusConfirmed

	// StatusRejected means the node knows nothing of the transaction: it
	// is neither confirmed nor waiting in the mempool.
	StatusRejected
)

// String returns the status as a human-readable name.
func (s TransactionStatus) String() string {
	switch s {
	case StatusBroadcasted:
		return "broadcasted"
	case StatusConfirmed:
		return "confirmed"
	case StatusRejected:
		return "rejected"
	}
	return fmt.Sprintf("TransactionStatus(%d)", uint8(s))
}

// ResolveStatus maps the two node facts onto a TransactionStatus.  The
// confirmed and in-mempool facts are mutually exclusive; observing both at
// once yields ErrStatusConflict instead of a status value so that the
// contradiction cannot be silently collapsed into either state.  The two
// facts are read by separate, non-atomic queries, so a conflict may also be
// produced by a race between them; the caller decides whether to re-check
// or abort.
func ResolveStatus(confirmed, inMempool bool) (TransactionStatus, error) {
	switch {
	case confirmed && inMempool:
		return 0, ErrStatusConflict
	case confirmed:
		return StatusConfirmed, nil
	case inMempool:
		return StatusBroadcasted, nil
	default:
		return StatusRejected, nil
	}
}
