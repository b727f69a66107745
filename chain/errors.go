// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"errors"

	"github.com/btcsuite/btcd/btcjson"
)

var (
	// ErrNoUsername describes a bitcoin node URL whose userinfo carries no
	// username.  The node requires authenticated RPC, so this is a
	// construction-time fault and is never retried.
	ErrNoUsername = errors.New("bitcoin node URL has no username")

	// ErrNoPassword describes a bitcoin node URL whose userinfo carries no
	// password.  Like ErrNoUsername this is fatal at construction.
	ErrNoPassword = errors.New("bitcoin node URL has no password")

	// ErrStatusConflict is returned when the node reports a transaction as
	// both confirmed and present in the mempool.  The two facts are
	// mutually exclusive, so observing both signals either a node
	// inconsistency or a race between the two sequential status queries.
	// Callers must treat it as an unrecoverable defect rather than pick a
	// state.
	ErrStatusConflict = errors.New("transaction is both confirmed and in mempool")
)

// rpcErrCode returns whether err is a JSON-RPC error carrying the given
// error code.
func rpcErrCode(err error, code btcjson.RPCErrorCode) bool {
	var rpcErr *btcjson.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == code
}

// isNotFoundErr returns whether err is the node's "block not found" reply to
// getblockhash.  Bitcoin Core reports a height beyond the tip with the
// invalid parameter code (-8).
func isNotFoundErr(err error) bool {
	return rpcErrCode(err, btcjson.ErrRPCInvalidParameter)
}

// isTransportErr returns whether err originated below the RPC layer, such
// as a refused connection or a dropped socket.  Anything that is not a
// JSON-RPC error from the node is treated as transport level and therefore
// retryable.
func isTransportErr(err error) bool {
	var rpcErr *btcjson.RPCError
	return err != nil && !errors.As(err, &rpcErr)
}
