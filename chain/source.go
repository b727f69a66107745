// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wtxmgr"
	"github.com/pkg/errors"
)

// RPCSource provides the wallet's chain view from the node itself, using
// the node's watch-only wallet for unspent output tracking.  It implements
// the two capabilities the signing wallet needs: syncing its view of
// spendable funds and reading the current best height.  Any other
// implementation of those two operations is substitutable.
type RPCSource struct {
	client *BitcoinClient
}

// NewRPCSource returns a chain view backed by the given node client.
func NewRPCSource(client *BitcoinClient) *RPCSource {
	return &RPCSource{client: client}
}

// SyncUnspent returns the node wallet's current unspent outputs as credits.
func (s *RPCSource) SyncUnspent(ctx context.Context) ([]wtxmgr.Credit,
	error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		unspent []btcjsonListUnspent
		height  int32
	)
	err := s.client.do(func(client *rpcclient.Client) error {
		info, err := client.GetBlockChainInfo()
		if err != nil {
			return errors.Wrap(err, "unable to fetch chain info")
		}
		height = info.Blocks

		results, err := client.ListUnspent()
		if err != nil {
			return errors.Wrap(err, "unable to list unspent "+
				"outputs")
		}
		for _, result := range results {
			unspent = append(unspent, btcjsonListUnspent{
				txid:          result.TxID,
				vout:          result.Vout,
				scriptPubKey:  result.ScriptPubKey,
				amount:        result.Amount,
				confirmations: result.Confirmations,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	credits := make([]wtxmgr.Credit, 0, len(unspent))
	for _, utxo := range unspent {
		credit, err := utxo.credit(height)
		if err != nil {
			return nil, err
		}
		credits = append(credits, credit)
	}

	log.Debugf("Synced %d spendable outputs at height %d", len(credits),
		height)
	return credits, nil
}

// CurrentHeight returns the node's best block height.
func (s *RPCSource) CurrentHeight(ctx context.Context) (int32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.client.GetHeight()
}

// btcjsonListUnspent carries the subset of a listunspent result needed to
// build a credit.
type btcjsonListUnspent struct {
	txid          string
	vout          uint32
	scriptPubKey  string
	amount        float64
	confirmations int64
}

// credit converts a listunspent entry into a wtxmgr credit.  Unconfirmed
// outputs are marked with height -1 the way the transaction store does.
func (u btcjsonListUnspent) credit(bestHeight int32) (wtxmgr.Credit, error) {
	txHash, err := chainhash.NewHashFromStr(u.txid)
	if err != nil {
		return wtxmgr.Credit{}, errors.Wrapf(err, "malformed unspent "+
			"txid %q", u.txid)
	}

	pkScript, err := hex.DecodeString(u.scriptPubKey)
	if err != nil {
		return wtxmgr.Credit{}, errors.Wrapf(err, "malformed unspent "+
			"script %q", u.scriptPubKey)
	}

	amount, err := btcutil.NewAmount(u.amount)
	if err != nil {
		return wtxmgr.Credit{}, errors.Wrapf(err, "malformed unspent "+
			"amount %v", u.amount)
	}

	height := int32(-1)
	if u.confirmations > 0 {
		height = bestHeight - int32(u.confirmations) + 1
	}

	return wtxmgr.Credit{
		OutPoint: wire.OutPoint{
			Hash:  *txHash,
			Index: u.vout,
		},
		BlockMeta: wtxmgr.BlockMeta{
			Block: wtxmgr.Block{Height: height},
			Time:  time.Now(),
		},
		Amount:   amount,
		PkScript: pkScript,
	}, nil
}
