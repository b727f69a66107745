// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bridge supervises the daemon's two long-running chain loops: a
// status poller that re-resolves every tracked transaction on each ticker
// tick, and a block follower that walks the chain one height at a time and
// hands each block to a caller-supplied handler.
package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/ticker"
	"golang.org/x/sync/errgroup"

	"github.com/stacksbridge/pegbridge/chain"
	"github.com/stacksbridge/pegbridge/wallet"
)

// ChainQuery is the read side of the bitcoin node used by the supervision
// loops.
type ChainQuery interface {
	// GetHeight returns the current best block height.
	GetHeight() (int32, error)

	// GetBlock returns the block at the given height, polling until the
	// chain reaches it.  Cancelling ctx aborts the wait.
	GetBlock(ctx context.Context, height int32) (*wire.MsgBlock, error)

	// TxConfirmation reports whether the transaction is confirmed and
	// whether it currently sits in the mempool.
	TxConfirmation(txid *chainhash.Hash) (bool, bool, error)
}

// TxSubmitter signs and broadcasts peg transactions.
type TxSubmitter interface {
	// SignAndBroadcast builds, signs and submits a transaction paying
	// each requested output, returning its transaction id.
	SignAndBroadcast(ctx context.Context,
		outputs []wallet.OutputSpec) (*chainhash.Hash, error)
}

// Config holds the collaborators and policy of a System.
type Config struct {
	// Chain supplies chain queries.
	Chain ChainQuery

	// Wallet signs and broadcasts transactions for Submit.  It may be
	// nil if Submit is never used.
	Wallet TxSubmitter

	// StatusTicker paces the pending transaction re-resolution loop.
	StatusTicker ticker.Ticker

	// OnBlock is invoked for every block the follower walks, in height
	// order.  A nil handler disables the follower.  A returned error
	// stops the system.
	OnBlock func(height int32, block *wire.MsgBlock) error

	// StartHeight is the first height the block follower fetches.  Zero
	// means one past the current tip.
	StartHeight int32
}

// System tracks in-flight transactions and runs the supervision loops.
type System struct {
	cfg *Config

	// mu guards pending.
	mu      sync.Mutex
	pending map[chainhash.Hash]chain.TransactionStatus
}

// New returns a System for the given configuration.
func New(cfg *Config) (*System, error) {
	switch {
	case cfg.Chain == nil:
		return nil, errors.New("missing chain query")
	case cfg.StatusTicker == nil:
		return nil, errors.New("missing status ticker")
	}

	return &System{
		cfg:     cfg,
		pending: make(map[chainhash.Hash]chain.TransactionStatus),
	}, nil
}

// Track registers a broadcasted transaction for status polling.
func (s *System) Track(txid chainhash.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[txid]; !ok {
		s.pending[txid] = chain.StatusBroadcasted
	}
}

// PendingStatus returns the last resolved status of a tracked transaction.
// Transactions that reached a terminal status are no longer tracked.
func (s *System) PendingStatus(txid chainhash.Hash) (chain.TransactionStatus,
	bool) {

	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.pending[txid]
	return status, ok
}

// Submit signs and broadcasts a transaction paying the given outputs and
// registers it for status polling.
func (s *System) Submit(ctx context.Context,
	outputs []wallet.OutputSpec) (*chainhash.Hash, error) {

	if s.cfg.Wallet == nil {
		return nil, errors.New("no wallet configured")
	}

	txid, err := s.cfg.Wallet.SignAndBroadcast(ctx, outputs)
	if err != nil {
		return nil, err
	}

	s.Track(*txid)
	return txid, nil
}

// Run starts the supervision loops and blocks until one of them fails or
// ctx is cancelled.
func (s *System) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.statusLoop(gctx)
	})
	g.Go(func() error {
		return s.blockLoop(gctx)
	})

	return g.Wait()
}

// statusLoop re-resolves every tracked transaction on each ticker tick.
func (s *System) statusLoop(ctx context.Context) error {
	s.cfg.StatusTicker.Resume()
	defer s.cfg.StatusTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-s.cfg.StatusTicker.Ticks():
			if err := s.checkPending(); err != nil {
				return err
			}
		}
	}
}

// checkPending queries the confirmation facts of every tracked transaction
// and resolves them to a status.  Query failures leave the transaction
// tracked for the next tick.  A transaction that is both confirmed and in
// the mempool indicates a broken chain view and stops the system.
func (s *System) checkPending() error {
	s.mu.Lock()
	txids := make([]chainhash.Hash, 0, len(s.pending))
	for txid := range s.pending {
		txids = append(txids, txid)
	}
	s.mu.Unlock()

	for _, txid := range txids {
		txid := txid
		confirmed, inMempool, err := s.cfg.Chain.TxConfirmation(&txid)
		if err != nil {
			log.Warnf("Unable to query confirmation of %v: %v",
				txid, err)
			continue
		}

		status, err := chain.ResolveStatus(confirmed, inMempool)
		if err != nil {
			log.Criticalf("Transaction %v: %v", txid, err)
			return err
		}

		switch status {
		case chain.StatusConfirmed:
			log.Infof("Transaction %v confirmed", txid)
			s.forget(txid)

		case chain.StatusRejected:
			log.Warnf("Transaction %v rejected", txid)
			s.forget(txid)

		default:
			s.mu.Lock()
			s.pending[txid] = status
			s.mu.Unlock()
		}
	}
	return nil
}

func (s *System) forget(txid chainhash.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, txid)
}

// blockLoop walks the chain one height at a time from the configured start
// height, handing each block to the OnBlock handler.
func (s *System) blockLoop(ctx context.Context) error {
	if s.cfg.OnBlock == nil {
		return nil
	}

	height := s.cfg.StartHeight
	if height == 0 {
		best, err := s.cfg.Chain.GetHeight()
		if err != nil {
			return err
		}
		height = best + 1
	}

	log.Infof("Following blocks from height %d", height)

	for {
		block, err := s.cfg.Chain.GetBlock(ctx, height)
		if err != nil {
			return err
		}

		log.Debugf("Processing block %v at height %d",
			block.BlockHash(), height)

		if err := s.cfg.OnBlock(height, block); err != nil {
			return err
		}
		height++
	}
}
