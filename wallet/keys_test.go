// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

// testMnemonic is the well-known all-zero-entropy BIP39 vector.
const testMnemonic = "abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon about"

// TestDeriveSpendKeyDeterministic checks the same mnemonic always yields the
// same key for a given network.
func TestDeriveSpendKeyDeterministic(t *testing.T) {
	first, err := DeriveSpendKey(testMnemonic, &chaincfg.MainNetParams)
	require.NoError(t, err)

	second, err := DeriveSpendKey(testMnemonic, &chaincfg.MainNetParams)
	require.NoError(t, err)

	require.Equal(t, first.Serialize(), second.Serialize())
}

// TestDeriveSpendKeyNetworkSeparation checks mainnet and testnet derive
// distinct keys from the same mnemonic, since the coin type differs.
func TestDeriveSpendKeyNetworkSeparation(t *testing.T) {
	mainKey, err := DeriveSpendKey(testMnemonic, &chaincfg.MainNetParams)
	require.NoError(t, err)

	testKey, err := DeriveSpendKey(testMnemonic, &chaincfg.TestNet3Params)
	require.NoError(t, err)

	require.NotEqual(t, mainKey.Serialize(), testKey.Serialize())
}

// TestDeriveSpendKeyInvalidMnemonic checks word list and checksum
// validation.
func TestDeriveSpendKeyInvalidMnemonic(t *testing.T) {
	tests := []string{
		"",
		"notaword notaword notaword notaword notaword notaword " +
			"notaword notaword notaword notaword notaword notaword",
		// Valid words, wrong checksum.
		"abandon abandon abandon abandon abandon abandon " +
			"abandon abandon abandon abandon abandon abandon",
	}
	for _, mnemonic := range tests {
		_, err := DeriveSpendKey(mnemonic, &chaincfg.MainNetParams)
		require.ErrorIs(t, err, ErrInvalidMnemonic)
	}
}
