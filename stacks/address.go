// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package stacks implements derivation of Stacks addresses from secp256k1
// public keys and a spend policy.  Derivation is pure: the same keys in the
// same order always produce the same 20-byte hash.  The textual c32 codec is
// intentionally not implemented here; an Address only exposes its raw
// version byte and Hash160 for external encoders.
package stacks

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
)

var (
	// ErrInvalidAddressVersion describes a version byte outside the four
	// supported network/policy codes.
	ErrInvalidAddressVersion = errors.New("invalid address version")

	// ErrInvalidHashLength describes an attempt to build a Hash160 from a
	// byte slice that is not exactly 20 bytes.
	ErrInvalidHashLength = errors.New("invalid hash160 length")

	// ErrInvalidPolicy describes a key count or signature threshold that
	// is not satisfiable by the requested hash mode.
	ErrInvalidPolicy = errors.New("invalid spend policy")
)

// AddressVersion is the network and policy tag byte carried by a Stacks
// address.  Exactly four codes are defined, pairing each network with a
// signature arity class.
type AddressVersion byte

// Supported address versions.
const (
	MainnetSingleSig AddressVersion = 22
	MainnetMultiSig  AddressVersion = 20
	TestnetSingleSig AddressVersion = 26
	TestnetMultiSig  AddressVersion = 21
)

// AddressVersionFromByte converts a raw version byte into an AddressVersion,
// returning an error identifying the offending byte for anything outside the
// four supported codes.
func AddressVersionFromByte(b byte) (AddressVersion, error) {
	switch v := AddressVersion(b); v {
	case MainnetSingleSig, MainnetMultiSig, TestnetSingleSig,
		TestnetMultiSig:

		return v, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidAddressVersion, b)
}

// String returns the name of the address version.
func (v AddressVersion) String() string {
	switch v {
	case MainnetSingleSig:
		return "MainnetSingleSig"
	case MainnetMultiSig:
		return "MainnetMultiSig"
	case TestnetSingleSig:
		return "TestnetSingleSig"
	case TestnetMultiSig:
		return "TestnetMultiSig"
	}
	return fmt.Sprintf("AddressVersion(%d)", byte(v))
}

// HashMode selects the script construction used to turn public keys into an
// address hash.
type HashMode uint8

// Supported hash modes.  The legacy modes hash pay-to-pubkey-hash and
// pay-to-script-hash style scripts while the witness modes hash the
// corresponding version 0 witness programs.
const (
	HashModeP2PKH HashMode = iota
	HashModeP2SH
	HashModeP2WPKH
	HashModeP2WSH
)

// String returns the name of the hash mode.
func (m HashMode) String() string {
	switch m {
	case HashModeP2PKH:
		return "p2pkh"
	case HashModeP2SH:
		return "p2sh"
	case HashModeP2WPKH:
		return "p2wpkh"
	case HashModeP2WSH:
		return "p2wsh"
	}
	return fmt.Sprintf("HashMode(%d)", uint8(m))
}

// Address is an immutable (version, Hash160) pair.  It round-trips
// losslessly through the external textual codec.
type Address struct {
	version AddressVersion
	hash    Hash160
}

// NewAddress returns an address for the given version and hash.
func NewAddress(version AddressVersion, hash Hash160) Address {
	return Address{version: version, hash: hash}
}

// Version returns the address version byte.
func (a Address) Version() AddressVersion {
	return a.version
}

// Hash returns the 20-byte address hash.
func (a Address) Hash() Hash160 {
	return a.hash
}

// String returns a debug representation.  This is not the c32 encoding,
// which is handled by an external codec.
func (a Address) String() string {
	return fmt.Sprintf("%s:%s", a.version, a.hash)
}

// NewAddressFromPublicKeys derives an address hash from the supplied public
// keys using the given hash mode and signature threshold.  Key order is
// significant and preserved exactly as supplied.  The single signature modes
// require exactly one key and a threshold of one.
func NewAddressFromPublicKeys(version AddressVersion, mode HashMode,
	nRequired int, keys []*btcec.PublicKey) (Address, error) {

	if len(keys) < nRequired {
		return Address{}, fmt.Errorf("%w: %d signatures required but "+
			"only %d keys supplied", ErrInvalidPolicy, nRequired,
			len(keys))
	}

	if mode == HashModeP2PKH || mode == HashModeP2WPKH {
		if len(keys) != 1 {
			return Address{}, fmt.Errorf("%w: %s requires exactly "+
				"one key, got %d", ErrInvalidPolicy, mode,
				len(keys))
		}
		if nRequired != 1 {
			return Address{}, fmt.Errorf("%w: %s requires exactly "+
				"one signature, got %d", ErrInvalidPolicy, mode,
				nRequired)
		}
	}

	var (
		hash Hash160
		err  error
	)
	switch mode {
	case HashModeP2PKH:
		hash = hashP2PKH(keys[0])
	case HashModeP2SH:
		hash, err = hashP2SH(nRequired, keys)
	case HashModeP2WPKH:
		hash = hashP2WPKH(keys[0])
	case HashModeP2WSH:
		hash = hashP2WSH(nRequired, keys)
	default:
		err = fmt.Errorf("%w: unknown hash mode %d", ErrInvalidPolicy,
			uint8(mode))
	}
	if err != nil {
		return Address{}, err
	}

	return NewAddress(version, hash), nil
}

// hashP2PKH hashes the compressed serialization of a single public key.
func hashP2PKH(key *btcec.PublicKey) Hash160 {
	return CalcHash160(key.SerializeCompressed())
}

// hashP2SH hashes a standard m-of-n CHECKMULTISIG redeem script over the
// keys in their supplied order.
func hashP2SH(nRequired int, keys []*btcec.PublicKey) (Hash160, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddInt64(int64(nRequired))
	for _, key := range keys {
		builder.AddData(key.SerializeCompressed())
	}
	builder.AddInt64(int64(len(keys)))
	builder.AddOp(txscript.OP_CHECKMULTISIG)

	script, err := builder.Script()
	if err != nil {
		return Hash160{}, err
	}
	return CalcHash160(script), nil
}

// hashP2WPKH hashes the version 0 witness program committing to the key
// hash: 0x00 0x14 followed by the 20-byte Hash160 of the key.
func hashP2WPKH(key *btcec.PublicKey) Hash160 {
	keyHash := CalcHash160(key.SerializeCompressed())

	program := make([]byte, 0, Hash160Size+2)
	program = append(program, 0x00, Hash160Size)
	program = append(program, keyHash[:]...)

	return CalcHash160(program)
}

// hashP2WSH hashes the version 0 witness program committing to the SHA256 of
// a CHECKMULTISIG witness script.  The witness script uses the small-int
// opcode encoding (0x50+n) for the threshold and key count, a raw length
// prefix for each key, and OP_CHECKMULTISIG (0xae).
func hashP2WSH(nRequired int, keys []*btcec.PublicKey) Hash160 {
	var script bytes.Buffer
	script.WriteByte(byte(nRequired) + 80)
	for _, key := range keys {
		b := key.SerializeCompressed()
		script.WriteByte(byte(len(b)))
		script.Write(b)
	}
	script.WriteByte(byte(len(keys)) + 80)
	script.WriteByte(txscript.OP_CHECKMULTISIG)

	digest := sha256.Sum256(script.Bytes())

	program := make([]byte, 0, sha256.Size+2)
	program = append(program, 0x00, sha256.Size)
	program = append(program, digest[:]...)

	return CalcHash160(program)
}
