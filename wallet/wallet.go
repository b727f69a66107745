// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet builds, signs and hands off the bridge's Bitcoin
// transactions.  A Wallet is a single mutex-guarded signing context: the
// sync, build and sign steps of every transaction run under one exclusive
// lock so that two concurrent builds can never race over the same funds.
package wallet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/btcsuite/btcwallet/wtxmgr"
	"github.com/davecgh/go-spew/spew"
)

// signDebounce is how long SignAndBroadcast waits before taking the wallet
// lock, accommodating upstream state propagation after the triggering
// event.  It is a variable so tests can shorten it.
var signDebounce = 3 * time.Second

// defaultMinConf is the confirmation requirement for spendable outputs.
const defaultMinConf = 1

// ChainSource supplies the wallet's view of the chain.  Exactly two
// capabilities are required, so production (node RPC, Electrum gateways)
// and synthetic test implementations are equally substitutable.
type ChainSource interface {
	// SyncUnspent returns the current set of spendable outputs.
	SyncUnspent(ctx context.Context) ([]wtxmgr.Credit, error)

	// CurrentHeight returns the current best block height.
	CurrentHeight(ctx context.Context) (int32, error)
}

// TxPublisher submits fully signed transactions to the network.
type TxPublisher interface {
	// Broadcast submits tx and returns its transaction id.
	Broadcast(tx *wire.MsgTx) (*chainhash.Hash, error)
}

// Config holds the collaborators and policy of a Wallet.
type Config struct {
	// ChainParams identifies the bitcoin network.
	ChainParams *chaincfg.Params

	// Source supplies the synced chain view.
	Source ChainSource

	// Publisher submits signed transactions.
	Publisher TxPublisher

	// SpendKey is the key all wallet funds are held by.
	SpendKey *btcec.PrivateKey

	// FeeRatePerKb is the fee rate used when authoring transactions.
	// Zero selects the default relay fee.
	FeeRatePerKb btcutil.Amount
}

// Wallet is the bridge's signing context.  It is shared by pointer across
// concurrent callers and never cloned; all access to the spendable output
// view happens under its lock.
type Wallet struct {
	// mu serializes the full sync+build+sign span.  Broadcasts and
	// read-only chain queries are intentionally not serialized against
	// it.
	mu sync.Mutex

	chainParams  *chaincfg.Params
	source       ChainSource
	publisher    TxPublisher
	spendKey     *btcec.PrivateKey
	feeRatePerKb btcutil.Amount

	// utxos is the wallet's last synced view of spendable outputs.
	utxos []wtxmgr.Credit
}

// New returns a Wallet for the given configuration.
func New(cfg *Config) (*Wallet, error) {
	switch {
	case cfg.ChainParams == nil:
		return nil, errors.New("missing chain params")
	case cfg.Source == nil:
		return nil, errors.New("missing chain source")
	case cfg.Publisher == nil:
		return nil, errors.New("missing tx publisher")
	case cfg.SpendKey == nil:
		return nil, errors.New("missing spend key")
	}

	feeRate := cfg.FeeRatePerKb
	if feeRate == 0 {
		feeRate = txrules.DefaultRelayFeePerKb
	}

	return &Wallet{
		chainParams:  cfg.ChainParams,
		source:       cfg.Source,
		publisher:    cfg.Publisher,
		spendKey:     cfg.SpendKey,
		feeRatePerKb: feeRate,
	}, nil
}

// SpendAddress returns the wallet's P2WPKH address, which also receives
// change.
func (w *Wallet) SpendAddress() (btcutil.Address, error) {
	keyHash := btcutil.Hash160(w.spendKey.PubKey().SerializeCompressed())
	return btcutil.NewAddressWitnessPubKeyHash(keyHash, w.chainParams)
}

// SignAndBroadcast builds, signs and submits a transaction paying each
// requested output.  The final output order matches the caller's declared
// order exactly, with any wallet-added change placed last.  The wallet lock
// is held from sync through signing; the broadcast happens outside it.  A
// failed broadcast is not retried here: broadcasting an already-known
// transaction is a no-op at the node, so callers may simply re-invoke.
func (w *Wallet) SignAndBroadcast(ctx context.Context,
	outputs []OutputSpec) (*chainhash.Hash, error) {

	// Give upstream state a moment to propagate before locking the
	// wallet.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(signDebounce):
	}

	tx, err := w.buildSignedTx(ctx, outputs)
	if err != nil {
		return nil, err
	}

	log.Tracef("Built transaction %v: %v", tx.TxHash(),
		newLogClosure(func() string { return spew.Sdump(tx) }))

	txid, err := w.publisher.Broadcast(tx)
	if err != nil {
		return nil, err
	}

	log.Infof("Signed and broadcasted transaction %v paying %d outputs",
		txid, len(outputs))
	return txid, nil
}

// buildSignedTx runs the exclusive sync+build+sign sequence.
func (w *Wallet) buildSignedTx(ctx context.Context,
	outputs []OutputSpec) (*wire.MsgTx, error) {

	w.mu.Lock()
	defer w.mu.Unlock()

	// Refresh the view of spendable funds before selecting inputs.
	credits, err := w.source.SyncUnspent(ctx)
	if err != nil {
		return nil, err
	}
	w.utxos = credits

	bestHeight, err := w.source.CurrentHeight(ctx)
	if err != nil {
		return nil, err
	}

	eligible := w.findEligibleOutputs(credits, bestHeight)

	tx, err := w.txToOutputs(outputs, eligible)
	if err != nil {
		return nil, err
	}

	return tx, nil
}

// findEligibleOutputs filters the synced credits down to those spendable
// right now: confirmed to the required depth, with coinbase outputs held
// back until maturity.
func (w *Wallet) findEligibleOutputs(credits []wtxmgr.Credit,
	bestHeight int32) []wtxmgr.Credit {

	eligible := make([]wtxmgr.Credit, 0, len(credits))
	for i := range credits {
		output := &credits[i]

		if !confirmed(defaultMinConf, output.Height, bestHeight) {
			continue
		}
		if output.FromCoinBase {
			target := int32(w.chainParams.CoinbaseMaturity)
			if !confirmed(target, output.Height, bestHeight) {
				continue
			}
		}

		eligible = append(eligible, *output)
	}
	return eligible
}

// confirmed checks whether a transaction at height txHeight has met minconf
// confirmations for a blockchain at height curHeight.
func confirmed(minconf, txHeight, curHeight int32) bool {
	return confirms(txHeight, curHeight) >= minconf
}

// confirms returns the number of confirmations for a transaction in a block
// at height txHeight (or -1 for an unconfirmed tx) given the chain height
// curHeight.
func confirms(txHeight, curHeight int32) int32 {
	switch {
	case txHeight == -1, txHeight > curHeight:
		return 0
	default:
		return curHeight - txHeight + 1
	}
}
