// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txauthor"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
	"github.com/btcsuite/btcwallet/wtxmgr"
)

// byAmount defines the methods needed to satisify sort.Interface to
// sort credits by their output amount.
type byAmount []wtxmgr.Credit

func (s byAmount) Len() int           { return len(s) }
func (s byAmount) Less(i, j int) bool { return s[i].Amount < s[j].Amount }
func (s byAmount) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func makeInputSource(eligible []wtxmgr.Credit) txauthor.InputSource {
	// Pick largest outputs first.  This is only done for compatibility
	// with previous tx creation code, not because it's a good idea.
	sort.Sort(sort.Reverse(byAmount(eligible)))

	// Current inputs and their total value.  These are closed over by the
	// returned input source and reused across multiple calls.
	currentTotal := btcutil.Amount(0)
	currentInputs := make([]*wire.TxIn, 0, len(eligible))
	currentScripts := make([][]byte, 0, len(eligible))
	currentInputValues := make([]btcutil.Amount, 0, len(eligible))

	return func(target btcutil.Amount) (btcutil.Amount, []*wire.TxIn,
		[]btcutil.Amount, [][]byte, error) {

		for currentTotal < target && len(eligible) != 0 {
			nextCredit := &eligible[0]
			eligible = eligible[1:]
			nextInput := wire.NewTxIn(&nextCredit.OutPoint, nil, nil)
			currentTotal += nextCredit.Amount
			currentInputs = append(currentInputs, nextInput)
			currentScripts = append(currentScripts, nextCredit.PkScript)
			currentInputValues = append(currentInputValues,
				nextCredit.Amount)
		}
		return currentTotal, currentInputs, currentInputValues,
			currentScripts, nil
	}
}

// secretSource is an implementation of txauthor.SecretsSource for the
// wallet's single spend key.
type secretSource struct {
	w *Wallet
}

func (s secretSource) GetKey(addr btcutil.Address) (*btcec.PrivateKey, bool,
	error) {

	keyHash := btcutil.Hash160(
		s.w.spendKey.PubKey().SerializeCompressed(),
	)
	if !bytes.Equal(addr.ScriptAddress(), keyHash) {
		return nil, false, fmt.Errorf("no key for address %v", addr)
	}
	return s.w.spendKey, true, nil
}

func (s secretSource) GetScript(addr btcutil.Address) ([]byte, error) {
	return nil, fmt.Errorf("no redeem script for address %v", addr)
}

func (s secretSource) ChainParams() *chaincfg.Params {
	return s.w.chainParams
}

// changeSource derives change output scripts paying back to the wallet's
// own P2WPKH address.
func (w *Wallet) changeSource() *txauthor.ChangeSource {
	return &txauthor.ChangeSource{
		NewScript: func() ([]byte, error) {
			changeAddr, err := w.SpendAddress()
			if err != nil {
				return nil, err
			}
			return txscript.PayToAddrScript(changeAddr)
		},
		ScriptSize: txsizes.P2WPKHPkScriptSize,
	}
}

// txToOutputs creates a signed transaction which includes each requested
// output.  Previous outputs to redeem are chosen from the eligible credits,
// and an additional change output may be added by the author.  The final
// output order is the caller's declared order with unmatched outputs,
// change included, placed last.
func (w *Wallet) txToOutputs(outputs []OutputSpec,
	eligible []wtxmgr.Credit) (*wire.MsgTx, error) {

	txOuts := make([]*wire.TxOut, 0, len(outputs))
	for _, output := range outputs {
		txOuts = append(txOuts, output.TxOut())
	}

	tx, err := txauthor.NewUnsignedTransaction(
		txOuts, w.feeRatePerKb, makeInputSource(eligible),
		w.changeSource(),
	)
	if err != nil {
		return nil, err
	}

	// Impose the caller's output order before signing.  The authored
	// change index is meaningless afterwards; change is simply the
	// unmatched output sorted last.
	tx.Tx.TxOut = ReorderOutputs(tx.Tx.TxOut, outputs)

	if err := tx.AddAllInputScripts(secretSource{w}); err != nil {
		return nil, err
	}

	err = validateMsgTx(tx.Tx, tx.PrevScripts, tx.PrevInputValues)
	if err != nil {
		return nil, err
	}

	return tx.Tx, nil
}

// validateMsgTx verifies transaction input scripts for tx.  All previous
// output scripts from outputs redeemed by the transaction, in the same
// order they are spent, must be passed in the prevScripts slice along with
// their values.
func validateMsgTx(tx *wire.MsgTx, prevScripts [][]byte,
	inputValues []btcutil.Amount) error {

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, txIn := range tx.TxIn {
		fetcher.AddPrevOut(txIn.PreviousOutPoint, &wire.TxOut{
			Value:    int64(inputValues[i]),
			PkScript: prevScripts[i],
		})
	}

	hashCache := txscript.NewTxSigHashes(tx, fetcher)
	for i, prevScript := range prevScripts {
		vm, err := txscript.NewEngine(
			prevScript, tx, i, txscript.StandardVerifyFlags, nil,
			hashCache, int64(inputValues[i]), fetcher,
		)
		if err != nil {
			return fmt.Errorf("cannot create script engine: %s", err)
		}
		err = vm.Execute()
		if err != nil {
			return fmt.Errorf("cannot validate transaction: %s", err)
		}
	}
	return nil
}
