// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the configurable consensus parameters of the
// blockchain engine, the way daglabs-btcd's dagconfig package defines
// network parameters. Genesis construction lives in the blockchain
// package.
package chaincfg

import (
	"time"

	"github.com/holiman/uint256"
)

// Params holds every tunable consensus parameter the blockchain engine
// depends on. A single Params value fully determines block timing,
// difficulty retargeting, reward schedule, and resource bounds.
type Params struct {
	// TargetBlockTime is the desired average spacing between blocks on
	// the main chain.
	TargetBlockTime time.Duration

	// DifficultyAdjustmentInterval is the number of blocks between
	// difficulty retargets.
	DifficultyAdjustmentInterval uint64

	// MaxReorgDepth bounds how many blocks a reorganization may
	// disconnect before it is refused.
	MaxReorgDepth uint64

	// MaxOrphanBlocks bounds the orphan pool's size.
	MaxOrphanBlocks int

	// OrphanExpiry is the maximum age of an orphan before periodic
	// cleanup evicts it.
	OrphanExpiry time.Duration

	// MaxOrphanProcessingAttempts bounds how many times in total the
	// engine attempts to connect an orphan before dropping it.
	MaxOrphanProcessingAttempts int

	// InitialReward is the MiningReward amount at height 0 and for every
	// height before the first halving.
	InitialReward uint64

	// HalvingInterval is the number of blocks between reward halvings.
	HalvingInterval uint64

	// MaxHalvings bounds how many halvings are applied before the
	// reward is treated as permanently zero.
	MaxHalvings uint64

	// MaxFutureBlockTime bounds how far into the future a block's
	// timestamp may lie during basic validation.
	MaxFutureBlockTime time.Duration

	// BlockTimesWindow bounds the retained block-times deque used for
	// average-block-time reporting and retargeting.
	BlockTimesWindow int
}

// MainNetParams are the production consensus parameters: 30-second
// target block time, retargeting every 144 blocks, a 144-block
// maximum reorg depth, and a 50-coin initial reward halving every
// 210,000 blocks.
func MainNetParams() Params {
	return Params{
		TargetBlockTime:              30 * time.Second,
		DifficultyAdjustmentInterval: 144,
		MaxReorgDepth:                144,
		MaxOrphanBlocks:              1000,
		OrphanExpiry:                 time.Hour,
		MaxOrphanProcessingAttempts:  3,
		InitialReward:                50_000_000_000,
		HalvingInterval:              210_000,
		MaxHalvings:                  64,
		MaxFutureBlockTime:           2 * time.Hour,
		BlockTimesWindow:             288,
	}
}

// RegressionNetParams are consensus parameters tuned for deterministic,
// fast-running tests: a short reorg window and a short adjustment
// interval, so integration tests can exercise retargeting and reorg
// refusal without mining thousands of blocks.
func RegressionNetParams() Params {
	p := MainNetParams()
	p.DifficultyAdjustmentInterval = 8
	p.MaxReorgDepth = 8
	p.MaxOrphanBlocks = 50
	p.BlockTimesWindow = 16
	return p
}

// MiningReward returns the block subsidy at height, applying one halving
// every HalvingInterval blocks and saturating to zero after MaxHalvings.
func (p Params) MiningReward(height uint64) uint64 {
	halvings := height / p.HalvingInterval
	if halvings >= p.MaxHalvings {
		return 0
	}
	return p.InitialReward >> halvings
}

// BlockWork is the work contributed by a single block at the given
// difficulty: 2^min(difficulty, 64), capped to keep a chain's cumulative
// work comfortably within the 128-bit range spec.md reserves for it even
// after many thousands of blocks.
func BlockWork(difficulty uint32) *uint256.Int {
	exponent := uint(difficulty)
	if exponent > 64 {
		exponent = 64
	}
	return new(uint256.Int).Lsh(uint256.NewInt(1), exponent)
}
