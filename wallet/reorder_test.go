// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

var (
	scriptA = []byte{0x51}
	scriptB = []byte{0x52}
	scriptC = []byte{0x53}
	scriptD = []byte{0x54}
)

func txOut(script []byte, amount int64) *wire.TxOut {
	return wire.NewTxOut(amount, script)
}

func spec(script []byte, amount int64) OutputSpec {
	return OutputSpec{PkScript: script, Amount: btcutil.Amount(amount)}
}

// TestReorderOutputs checks that declared pairs land at their declared
// positions, unmatched outputs sort last in their original relative order,
// and the output count is always preserved.
func TestReorderOutputs(t *testing.T) {
	tests := []struct {
		name    string
		outputs []*wire.TxOut
		order   []OutputSpec
		want    []*wire.TxOut
	}{{
		name: "already ordered",
		outputs: []*wire.TxOut{
			txOut(scriptA, 1), txOut(scriptB, 2),
		},
		order: []OutputSpec{spec(scriptA, 1), spec(scriptB, 2)},
		want: []*wire.TxOut{
			txOut(scriptA, 1), txOut(scriptB, 2),
		},
	}, {
		name: "reversed declaration",
		outputs: []*wire.TxOut{
			txOut(scriptA, 1), txOut(scriptB, 2),
		},
		order: []OutputSpec{spec(scriptB, 2), spec(scriptA, 1)},
		want: []*wire.TxOut{
			txOut(scriptB, 2), txOut(scriptA, 1),
		},
	}, {
		name: "change sorts last",
		outputs: []*wire.TxOut{
			txOut(scriptD, 99), txOut(scriptB, 2),
			txOut(scriptA, 1),
		},
		order: []OutputSpec{spec(scriptA, 1), spec(scriptB, 2)},
		want: []*wire.TxOut{
			txOut(scriptA, 1), txOut(scriptB, 2),
			txOut(scriptD, 99),
		},
	}, {
		name: "multiple unmatched keep relative order",
		outputs: []*wire.TxOut{
			txOut(scriptC, 3), txOut(scriptA, 1),
			txOut(scriptD, 4),
		},
		order: []OutputSpec{spec(scriptA, 1)},
		want: []*wire.TxOut{
			txOut(scriptA, 1), txOut(scriptC, 3),
			txOut(scriptD, 4),
		},
	}, {
		name: "same script different amounts are distinct pairs",
		outputs: []*wire.TxOut{
			txOut(scriptA, 2), txOut(scriptA, 1),
		},
		order: []OutputSpec{spec(scriptA, 1), spec(scriptA, 2)},
		want: []*wire.TxOut{
			txOut(scriptA, 1), txOut(scriptA, 2),
		},
	}, {
		name: "duplicate declared pairs first occurrence wins",
		outputs: []*wire.TxOut{
			txOut(scriptB, 2), txOut(scriptA, 1),
			txOut(scriptA, 1),
		},
		order: []OutputSpec{
			spec(scriptA, 1), spec(scriptB, 2), spec(scriptA, 1),
		},
		want: []*wire.TxOut{
			txOut(scriptA, 1), txOut(scriptA, 1),
			txOut(scriptB, 2),
		},
	}, {
		name:    "empty outputs",
		outputs: nil,
		order:   []OutputSpec{spec(scriptA, 1)},
		want:    []*wire.TxOut{},
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ReorderOutputs(test.outputs, test.order)
			require.Len(t, got, len(test.outputs))
			require.Equal(t, test.want, got)

			// Reordering an already reordered set must be a no-op.
			again := ReorderOutputs(got, test.order)
			require.Equal(t, got, again)
		})
	}
}
