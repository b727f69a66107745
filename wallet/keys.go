// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic describes a mnemonic phrase that fails BIP39
// validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

// spendKeyPath is the BIP84-style derivation path of the bridge spend key
// below the coin type level: account 0, external branch, index 0.
var spendKeyPath = []uint32{
	hdkeychain.HardenedKeyStart + 0, // account
	0,                               // external branch
	0,                               // index
}

// DeriveSpendKey derives the wallet's spend key from a BIP39 mnemonic at
// m/84'/coin'/0'/0/0, with the coin type taken from the chain params.
func DeriveSpendKey(mnemonic string,
	params *chaincfg.Params) (*btcec.PrivateKey, error) {

	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, "")

	key, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, err
	}

	path := append([]uint32{
		hdkeychain.HardenedKeyStart + 84,
		hdkeychain.HardenedKeyStart + params.HDCoinType,
	}, spendKeyPath...)

	for _, childIndex := range path {
		key, err = key.Derive(childIndex)
		if err != nil {
			return nil, err
		}
	}

	return key.ECPrivKey()
}
