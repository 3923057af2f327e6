// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements the pool of admitted, unexpired
// transactions that are candidates for inclusion in the next block: fee
// and nonce validated admission, priority ordering, size/count bounds
// with fee-based eviction, per-account rate limiting, and block-template
// selection.
package mempool

import "time"

// Config bounds and tunes a Mempool instance.
type Config struct {
	// MaxBlockSize is the maximum summed transaction size the
	// blockchain engine will place in a single block; mempool capacity
	// is expressed as a multiple of it.
	MaxBlockSize int
	// MaxTransactionsPerBlock is the maximum transaction count the
	// blockchain engine will place in a single block.
	MaxTransactionsPerBlock int

	// MaxAge is the longest an unexpired transaction may sit in the
	// mempool before periodic maintenance drops it.
	MaxAge time.Duration

	// MaxSubmissionsPerHour bounds how many transactions a single
	// sender may submit in a rolling one-hour window.
	MaxSubmissionsPerHour int

	// BaseMinFeeRate is the minimum fee-per-byte required for admission
	// at zero utilization; DynamicMinFeeRate scales it up as the pool
	// fills.
	BaseMinFeeRate uint64
}

// DefaultConfig returns the bounds from spec.md §4.3: a mempool capacity
// of 256 blocks' worth of transactions, a one-hour expiry, and a
// 100-submission-per-hour-per-account anti-spam limit.
func DefaultConfig(maxBlockSize, maxTransactionsPerBlock int) Config {
	return Config{
		MaxBlockSize:            maxBlockSize,
		MaxTransactionsPerBlock: maxTransactionsPerBlock,
		MaxAge:                  time.Hour,
		MaxSubmissionsPerHour:   100,
		BaseMinFeeRate:          1,
	}
}

// MaxMempoolSize is the configured capacity bound in bytes.
func (c Config) MaxMempoolSize() int {
	return 256 * c.MaxBlockSize
}

// MaxTransactions is the configured capacity bound in transaction count.
func (c Config) MaxTransactions() int {
	return 1000 * c.MaxTransactionsPerBlock
}
