// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// defaultBlockPollInterval is how long GetBlock waits between attempts to
// resolve the hash of a block that the node does not know yet.
const defaultBlockPollInterval = 5 * time.Second

// BitcoinClient is a thin gateway to a Bitcoin-Core-compatible JSON-RPC
// endpoint.  It carries no cross-call state: every RPC opens a fresh HTTP
// POST connection scoped to that call using the credentials embedded in the
// configured URL.  Instances are cheap and safe for concurrent use.
type BitcoinClient struct {
	url  *url.URL
	user string
	pass string

	pollInterval time.Duration
}

// NewBitcoinClient returns a client for the node reachable at bitcoinURL.
// The URL must embed the RPC credentials as userinfo; construction fails
// with ErrNoUsername or ErrNoPassword otherwise, since the node requires
// authenticated RPC.
func NewBitcoinClient(bitcoinURL string) (*BitcoinClient, error) {
	u, err := url.Parse(bitcoinURL)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed bitcoin node URL %q",
			bitcoinURL)
	}

	user := u.User.Username()
	if user == "" {
		return nil, errors.Wrap(ErrNoUsername, sanitizedURL(u, false))
	}

	pass, _ := u.User.Password()
	if pass == "" {
		return nil, errors.Wrap(ErrNoPassword, sanitizedURL(u, true))
	}

	return &BitcoinClient{
		url:          u,
		user:         user,
		pass:         pass,
		pollInterval: defaultBlockPollInterval,
	}, nil
}

// sanitizedURL renders u without its credentials.  The username is kept
// when keepUsername is set so a missing password can still be attributed to
// the right account.
func sanitizedURL(u *url.URL, keepUsername bool) string {
	redacted := *u
	redacted.User = nil
	if keepUsername && u.User != nil {
		redacted.User = url.User(u.User.Username())
	}
	return redacted.String()
}

// connect opens a new connection to the node for a single call.  The
// returned client must be shut down by the caller.
func (c *BitcoinClient) connect() (*rpcclient.Client, error) {
	host := c.url.Host + strings.TrimSuffix(c.url.Path, "/")

	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         host,
		User:         c.user,
		Pass:         c.pass,
		HTTPPostMode: true,
		DisableTLS:   c.url.Scheme != "https",
	}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to bitcoin "+
			"node %s", sanitizedURL(c.url, false))
	}

	return client, nil
}

// do runs f against a connection scoped to this single call.
func (c *BitcoinClient) do(f func(*rpcclient.Client) error) error {
	client, err := c.connect()
	if err != nil {
		return err
	}
	defer client.Shutdown()

	return f(client)
}

// Broadcast submits a fully signed transaction to the node and returns its
// transaction id.  Rejection reasons from the node propagate to the caller;
// re-broadcasting an already-known transaction is a no-op at the node level,
// so a failed attempt may simply be re-invoked.
func (c *BitcoinClient) Broadcast(tx *wire.MsgTx) (*chainhash.Hash, error) {
	var txid *chainhash.Hash
	err := c.do(func(client *rpcclient.Client) error {
		hash, err := client.SendRawTransaction(tx, false)
		if err != nil {
			return errors.Wrapf(err, "unable to broadcast "+
				"transaction %v", tx.TxHash())
		}
		txid = hash
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("Broadcasted transaction %v", txid)
	return txid, nil
}

// TxConfirmation reports the two independent node facts that determine a
// transaction's lifecycle state: whether it has at least one confirmation,
// and whether it is present in the mempool.  Node-level errors on either
// query count as a false fact; only the failure to reach the node at all is
// returned as an error.  The tri-state classification is delegated to
// ResolveStatus.
func (c *BitcoinClient) TxConfirmation(txid *chainhash.Hash) (bool, bool,
	error) {

	var confirmed bool
	err := c.do(func(client *rpcclient.Client) error {
		txInfo, err := client.GetRawTransactionVerbose(txid)
		if err == nil && txInfo.Confirmations > 0 {
			confirmed = true
		}
		return nil
	})
	if err != nil {
		return false, false, err
	}

	var inMempool bool
	err = c.do(func(client *rpcclient.Client) error {
		if _, err := client.GetMempoolEntry(txid.String()); err == nil {
			inMempool = true
		}
		return nil
	})
	if err != nil {
		return false, false, err
	}

	return confirmed, inMempool, nil
}

// GetTxStatus resolves the current lifecycle status of a transaction.  It
// returns ErrStatusConflict if the node reports contradictory facts.
func (c *BitcoinClient) GetTxStatus(txid *chainhash.Hash) (TransactionStatus,
	error) {

	confirmed, inMempool, err := c.TxConfirmation(txid)
	if err != nil {
		return 0, err
	}

	status, err := ResolveStatus(confirmed, inMempool)
	if err != nil {
		return 0, errors.Wrapf(err, "status of transaction %v", txid)
	}

	log.Debugf("Transaction %v is %v", txid, status)
	return status, nil
}

// GetBlock fetches the full block at the given height.  The block hash is
// polled until the node knows the height: a "block not found" reply or any
// transport-level failure sleeps for the polling interval and retries, while
// any other RPC error fails immediately.  The loop is unbounded by default;
// ctx is the cancellation hook for callers that need a deadline.
func (c *BitcoinClient) GetBlock(ctx context.Context,
	height int32) (*wire.MsgBlock, error) {

	var blockHash *chainhash.Hash
	for {
		var hash *chainhash.Hash
		err := c.do(func(client *rpcclient.Client) error {
			h, err := client.GetBlockHash(int64(height))
			if err != nil {
				return err
			}
			hash = h
			return nil
		})
		if err == nil {
			log.Tracef("Got block hash at height %d: %v", height,
				hash)
			blockHash = hash
			break
		}

		switch {
		case isNotFoundErr(err):
			log.Tracef("Block at height %d not found, retrying",
				height)

		case isTransportErr(err):
			log.Tracef("Bitcoin node connection error, "+
				"retrying: %v", err)

		default:
			return nil, errors.Wrapf(err, "unable to fetch hash "+
				"of block at height %d", height)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	var block *wire.MsgBlock
	err := c.do(func(client *rpcclient.Client) error {
		blk, err := client.GetBlock(blockHash)
		if err != nil {
			return errors.Wrapf(err, "unable to fetch block %v",
				blockHash)
		}
		block = blk
		return nil
	})
	if err != nil {
		return nil, err
	}

	return block, nil
}

// GetHeight returns the current best block height known to the node.
func (c *BitcoinClient) GetHeight() (int32, error) {
	var height int32
	err := c.do(func(client *rpcclient.Client) error {
		info, err := client.GetBlockChainInfo()
		if err != nil {
			return errors.Wrap(err, "unable to fetch chain info")
		}
		height = info.Blocks
		return nil
	})
	if err != nil {
		return 0, err
	}

	return height, nil
}
