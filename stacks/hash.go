// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stacks

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

// Hash160Size is the number of bytes in a RIPEMD160(SHA256(x)) digest.
const Hash160Size = 20

// Hash160 is the 20-byte digest used throughout Bitcoin-style addressing.
type Hash160 [Hash160Size]byte

// NewHash160 returns a Hash160 copied from b.  An error is returned if b is
// not exactly Hash160Size bytes.
func NewHash160(b []byte) (Hash160, error) {
	var h Hash160
	if len(b) != Hash160Size {
		return h, fmt.Errorf("%w: got %d bytes, want %d",
			ErrInvalidHashLength, len(b), Hash160Size)
	}
	copy(h[:], b)
	return h, nil
}

// CalcHash160 computes RIPEMD160(SHA256(data)).
func CalcHash160(data []byte) Hash160 {
	var h Hash160
	copy(h[:], btcutil.Hash160(data))
	return h
}

// Bytes returns a copy of the digest as a byte slice.
func (h Hash160) Bytes() []byte {
	b := make([]byte, Hash160Size)
	copy(b, h[:])
	return b
}

// String returns the digest as a hexadecimal string.
func (h Hash160) String() string {
	return hex.EncodeToString(h[:])
}
