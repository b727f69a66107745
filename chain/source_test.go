// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestRPCSourceSyncUnspent checks the conversion of listunspent results
// into credits, including the height arithmetic for confirmed and
// unconfirmed outputs.
func TestRPCSourceSyncUnspent(t *testing.T) {
	stub, client := newRPCStub(t)
	stub.bestHeight = 200
	stub.unspentJSON = `[{
		"txid": "e31b2c63d9a23d9b747c1dc15bdbec7d3b7a24fdbee1f17bb63dd7d727aaf8e1",
		"vout": 1,
		"scriptPubKey": "0014000102030405060708090a0b0c0d0e0f10111213",
		"amount": 1.5,
		"confirmations": 6
	}, {
		"txid": "e31b2c63d9a23d9b747c1dc15bdbec7d3b7a24fdbee1f17bb63dd7d727aaf8e1",
		"vout": 2,
		"scriptPubKey": "0014131211100f0e0d0c0b0a09080706050403020100",
		"amount": 0.25,
		"confirmations": 0
	}]`

	source := NewRPCSource(client)
	credits, err := source.SyncUnspent(context.Background())
	require.NoError(t, err)
	require.Len(t, credits, 2)

	require.Equal(t, uint32(1), credits[0].OutPoint.Index)
	require.Equal(t, btcutil.Amount(150000000), credits[0].Amount)
	require.Equal(t, int32(195), credits[0].Height)

	// Unconfirmed outputs are marked with height -1.
	require.Equal(t, int32(-1), credits[1].Height)

	height, err := source.CurrentHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(200), height)
}

// TestRPCSourceMalformedUnspent checks that a corrupt listunspent entry
// fails with the offending value in the error.
func TestRPCSourceMalformedUnspent(t *testing.T) {
	stub, client := newRPCStub(t)
	stub.unspentJSON = `[{
		"txid": "not-a-txid",
		"vout": 0,
		"scriptPubKey": "00",
		"amount": 1,
		"confirmations": 1
	}]`

	source := NewRPCSource(client)
	_, err := source.SyncUnspent(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "not-a-txid")
}
