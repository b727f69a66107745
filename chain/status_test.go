// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolveStatus checks the full mapping from the two node facts onto
// the tri-state status, including that the contradictory combination is a
// distinct fatal condition rather than a status value.
func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name       string
		confirmed  bool
		inMempool  bool
		wantStatus TransactionStatus
		wantErr    error
	}{{
		name:       "unknown to the node",
		confirmed:  false,
		inMempool:  false,
		wantStatus: StatusRejected,
	}, {
		name:       "waiting in mempool",
		confirmed:  false,
		inMempool:  true,
		wantStatus: StatusBroadcasted,
	}, {
		name:       "mined",
		confirmed:  true,
		inMempool:  false,
		wantStatus: StatusConfirmed,
	}, {
		name:      "contradictory facts",
		confirmed: true,
		inMempool: true,
		wantErr:   ErrStatusConflict,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status, err := ResolveStatus(
				test.confirmed, test.inMempool,
			)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.wantStatus, status)
		})
	}
}
