// Copyright (c) 2024-2025 The pegbridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/ticker"

	"github.com/stacksbridge/pegbridge/bridge"
	"github.com/stacksbridge/pegbridge/chain"
	"github.com/stacksbridge/pegbridge/wallet"
)

func main() {
	// Work around defer not working after os.Exit.
	if err := pegbridgeMain(); err != nil {
		os.Exit(1)
	}
}

// pegbridgeMain is a work-around main function that is required since
// deferred functions (such as log flushing) are not called with calls to
// os.Exit.  Instead, main runs this function and checks for a non-nil
// error, at which point any defers have already run, and if the error is
// non-nil, the program can be exited with an error exit status.
func pegbridgeMain() error {
	// Load configuration and parse command line.  This also initializes
	// logging and configures it accordingly.
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	log.Infof("Version %s", version())
	log.Infof("Network %s (stacks address versions %d/%d)",
		activeNet.Params.Name, activeNet.stacksSingleSig,
		activeNet.stacksMultiSig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	addInterruptHandler(cancel)

	client, err := chain.NewBitcoinClient(cfg.BitcoinURL)
	if err != nil {
		log.Errorf("Unable to create bitcoin client: %v", err)
		return err
	}

	mnemonic, err := os.ReadFile(cfg.MnemonicFile)
	if err != nil {
		log.Errorf("Unable to read mnemonic file: %v", err)
		return err
	}
	spendKey, err := wallet.DeriveSpendKey(
		strings.TrimSpace(string(mnemonic)), activeNet.Params,
	)
	if err != nil {
		log.Errorf("Unable to derive spend key: %v", err)
		return err
	}

	w, err := wallet.New(&wallet.Config{
		ChainParams:  activeNet.Params,
		Source:       chain.NewRPCSource(client),
		Publisher:    client,
		SpendKey:     spendKey,
		FeeRatePerKb: btcutil.Amount(cfg.FeeRate),
	})
	if err != nil {
		log.Errorf("Unable to create wallet: %v", err)
		return err
	}

	spendAddr, err := w.SpendAddress()
	if err != nil {
		return err
	}
	log.Infof("Wallet spend address: %v", spendAddr)

	sys, err := bridge.New(&bridge.Config{
		Chain:        client,
		Wallet:       w,
		StatusTicker: ticker.New(cfg.PollInterval),
		StartHeight:  cfg.StartHeight,
		OnBlock: func(height int32, block *wire.MsgBlock) error {
			log.Debugf("Block %v at height %d with %d transactions",
				block.BlockHash(), height,
				len(block.Transactions))
			return nil
		},
	})
	if err != nil {
		log.Errorf("Unable to create bridge: %v", err)
		return err
	}

	log.Infof("Bridge running, polling transaction status every %v",
		cfg.PollInterval)

	if err := sys.Run(ctx); err != nil &&
		!errors.Is(err, context.Canceled) {

		log.Errorf("Bridge stopped: %v", err)
		return err
	}

	log.Info("Shutdown complete")
	return nil
}
