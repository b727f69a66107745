// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stacks

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

// mustParseKey decodes a compressed secp256k1 public key from its hex
// serialization.
func mustParseKey(t *testing.T, keyHex string) *btcec.PublicKey {
	t.Helper()

	b, err := hex.DecodeString(keyHex)
	require.NoError(t, err)

	key, err := btcec.ParsePubKey(b)
	require.NoError(t, err)

	return key
}

// TestDeriveAddressHash checks each hash mode against fixtures generated
// with the stx tooling and blockstack reference code.
func TestDeriveAddressHash(t *testing.T) {
	tests := []struct {
		name      string
		mode      HashMode
		nRequired int
		keys      []string
		wantHash  string
	}{{
		name:      "p2pkh single key",
		mode:      HashModeP2PKH,
		nRequired: 1,
		keys: []string{
			"03556902f83defc6c63a7eb56a2d8ee4baee109f2126aac41e4f9e3a0835f34bc5",
		},
		wantHash: "d24206d58967c61b6b302eb14cd254a8ae7e761a",
	}, {
		name:      "p2sh 1-of-1",
		mode:      HashModeP2SH,
		nRequired: 1,
		keys: []string{
			"028cac21ac93bf697dc31da79e11aad8d285b2e2e81bcfc8de982179c6d468d339",
		},
		wantHash: "fc1058076c56333d7d2d9fbb936aefa632c0e7a8",
	}, {
		name:      "p2sh 2-of-2",
		mode:      HashModeP2SH,
		nRequired: 2,
		keys: []string{
			"0325a1b9799db9852ee1c99280b20695b1889eff7ec0352d634912818d02f91f84",
			"0279d7abd36d41d51e225efbbc8376a257051cecdf8b47eaffeb49b77547bc3bff",
		},
		wantHash: "073503b6e6ef916e4ab40f31abc83217c271d917",
	}, {
		name:      "p2wpkh single key",
		mode:      HashModeP2WPKH,
		nRequired: 1,
		keys: []string{
			"03528351fc1494c66b67e0857fd571e1de37985dd0cae987dbe71c47d2bc7a7712",
		},
		wantHash: "3bb7c80b72757b4bc94bd3cb09171500fb72b4ac",
	}, {
		name:      "p2wsh 1-of-1",
		mode:      HashModeP2WSH,
		nRequired: 1,
		keys: []string{
			"027cf49417052b14d73c3da78ec3c0c859380b19a4971fd8c63ded9037455dd84c",
		},
		wantHash: "599623097df78a0e962108bfb0f1f78ef1d15f57",
	}, {
		name:      "p2wsh 2-of-2",
		mode:      HashModeP2WSH,
		nRequired: 2,
		keys: []string{
			"037c6e4c27b3d39ab73c2cd2fdd2ea34cec3d9b6881a2a4a17e42fcafb6b64c3aa",
			"03a544a1d3fb4238d5841647100c53e371a1d72f027857899256f0c754cf266491",
		},
		wantHash: "d5f3ddac2358f61088d951aead20c270a045d46d",
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			keys := make([]*btcec.PublicKey, len(test.keys))
			for i, keyHex := range test.keys {
				keys[i] = mustParseKey(t, keyHex)
			}

			addr, err := NewAddressFromPublicKeys(
				TestnetSingleSig, test.mode, test.nRequired,
				keys,
			)
			require.NoError(t, err)
			require.Equal(t, test.wantHash, addr.Hash().String())
		})
	}
}

// TestDeriveAddressKeyOrder asserts that reordering the supplied keys
// changes the derived hash for both multisig modes.
func TestDeriveAddressKeyOrder(t *testing.T) {
	key1 := mustParseKey(t,
		"0325a1b9799db9852ee1c99280b20695b1889eff7ec0352d634912818d02f91f84")
	key2 := mustParseKey(t,
		"0279d7abd36d41d51e225efbbc8376a257051cecdf8b47eaffeb49b77547bc3bff")

	for _, mode := range []HashMode{HashModeP2SH, HashModeP2WSH} {
		forward, err := NewAddressFromPublicKeys(
			MainnetMultiSig, mode, 2,
			[]*btcec.PublicKey{key1, key2},
		)
		require.NoError(t, err)

		reversed, err := NewAddressFromPublicKeys(
			MainnetMultiSig, mode, 2,
			[]*btcec.PublicKey{key2, key1},
		)
		require.NoError(t, err)

		require.NotEqual(t, forward.Hash(), reversed.Hash(),
			"key order must be significant for %v", mode)
	}
}

// TestDeriveAddressPolicyValidation checks the policy faults: single sig
// modes demand exactly one key and one signature, and the threshold can
// never exceed the key count.
func TestDeriveAddressPolicyValidation(t *testing.T) {
	key1 := mustParseKey(t,
		"03556902f83defc6c63a7eb56a2d8ee4baee109f2126aac41e4f9e3a0835f34bc5")
	key2 := mustParseKey(t,
		"028cac21ac93bf697dc31da79e11aad8d285b2e2e81bcfc8de982179c6d468d339")

	tests := []struct {
		name      string
		mode      HashMode
		nRequired int
		keys      []*btcec.PublicKey
	}{{
		name:      "threshold exceeds key count",
		mode:      HashModeP2SH,
		nRequired: 3,
		keys:      []*btcec.PublicKey{key1, key2},
	}, {
		name:      "p2pkh with two keys",
		mode:      HashModeP2PKH,
		nRequired: 1,
		keys:      []*btcec.PublicKey{key1, key2},
	}, {
		name:      "p2wpkh with two keys",
		mode:      HashModeP2WPKH,
		nRequired: 1,
		keys:      []*btcec.PublicKey{key1, key2},
	}, {
		name:      "p2pkh with zero threshold",
		mode:      HashModeP2PKH,
		nRequired: 0,
		keys:      []*btcec.PublicKey{key1},
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewAddressFromPublicKeys(
				TestnetMultiSig, test.mode, test.nRequired,
				test.keys,
			)
			require.ErrorIs(t, err, ErrInvalidPolicy)
		})
	}
}

// TestAddressVersionFromByte checks the 1:1 version mapping and rejection
// of unknown bytes.
func TestAddressVersionFromByte(t *testing.T) {
	for _, want := range []AddressVersion{
		MainnetSingleSig, MainnetMultiSig,
		TestnetSingleSig, TestnetMultiSig,
	} {
		got, err := AddressVersionFromByte(byte(want))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := AddressVersionFromByte(0)
	require.ErrorIs(t, err, ErrInvalidAddressVersion)
	require.Contains(t, err.Error(), "0")
}

// TestNewHash160Length checks that malformed digests report the offending
// length.
func TestNewHash160Length(t *testing.T) {
	_, err := NewHash160(make([]byte, 19))
	require.ErrorIs(t, err, ErrInvalidHashLength)
	require.Contains(t, err.Error(), "19")

	h, err := NewHash160(make([]byte, 20))
	require.NoError(t, err)
	require.Equal(t, make([]byte, 20), h.Bytes())
}
