// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/stacksbridge/pegbridge/stacks"
)

// activeNet is the current network the daemon runs on.  It defaults to
// mainnet and is switched by the network config options.
var activeNet = &mainNetParams

// netParams pairs the bitcoin chain parameters of a network with the Stacks
// address versions used on the same network.
type netParams struct {
	*chaincfg.Params
	stacksSingleSig stacks.AddressVersion
	stacksMultiSig  stacks.AddressVersion
}

// mainNetParams contains parameters specific to running against the main
// bitcoin and Stacks networks.
var mainNetParams = netParams{
	Params:          &chaincfg.MainNetParams,
	stacksSingleSig: stacks.MainnetSingleSig,
	stacksMultiSig:  stacks.MainnetMultiSig,
}

// testNet3Params contains parameters specific to running against bitcoin
// testnet3 and the Stacks test network.
var testNet3Params = netParams{
	Params:          &chaincfg.TestNet3Params,
	stacksSingleSig: stacks.TestnetSingleSig,
	stacksMultiSig:  stacks.TestnetMultiSig,
}

// regressionNetParams contains parameters for a local regression test
// setup, which shares the Stacks test network address versions.
var regressionNetParams = netParams{
	Params:          &chaincfg.RegressionNetParams,
	stacksSingleSig: stacks.TestnetSingleSig,
	stacksMultiSig:  stacks.TestnetMultiSig,
}
