// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// OutputSpec is a requested transaction output: a script and the satoshi
// amount to pay to it.  The pair itself is the ordering key used by
// ReorderOutputs.
type OutputSpec struct {
	// PkScript is the output script to pay to.
	PkScript []byte

	// Amount is the value of the output.
	Amount btcutil.Amount
}

// TxOut returns the wire output for the spec.
func (o OutputSpec) TxOut() *wire.TxOut {
	return wire.NewTxOut(int64(o.Amount), o.PkScript)
}

// outputKey identifies an output by its (script, amount) pair.
type outputKey struct {
	script string
	amount int64
}

func specKey(script []byte, amount int64) outputKey {
	return outputKey{script: string(script), amount: amount}
}

// ReorderOutputs arranges outputs so that each declared (script, amount)
// pair appears at its declared position.  Peg transactions encode protocol
// metadata in their output order, so the wallet's own placement cannot be
// trusted downstream.
//
// Every output matching a declared pair is assigned that pair's index; when
// two declared pairs are identical the first occurrence wins.  Outputs
// matching no pair, typically the wallet-added change output, are assigned
// a sentinel index past all declared ones.  A stable sort by assigned index
// then preserves the output count exactly, places declared pairs at their
// declared positions, and keeps unmatched outputs after all matched ones in
// their original relative order.
func ReorderOutputs(outputs []*wire.TxOut, order []OutputSpec) []*wire.TxOut {
	indices := make(map[outputKey]int, len(order))
	for i, spec := range order {
		key := specKey(spec.PkScript, int64(spec.Amount))
		if _, ok := indices[key]; !ok {
			indices[key] = i
		}
	}

	rank := func(txOut *wire.TxOut) int {
		if i, ok := indices[specKey(txOut.PkScript, txOut.Value)]; ok {
			return i
		}
		return len(order)
	}

	reordered := make([]*wire.TxOut, len(outputs))
	copy(reordered, outputs)
	sort.SliceStable(reordered, func(i, j int) bool {
		return rank(reordered[i]) < rank(reordered[j])
	})

	return reordered
}
