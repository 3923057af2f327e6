// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "time"

// recordBlockTimeLocked appends a block-times sample, trims the deque to
// the configured window, and recomputes the rolling average block time.
// Callers must hold bc.mu for writing.
func (bc *Blockchain) recordBlockTimeLocked(height uint64, timestamp time.Time) {
	bc.blockTimes = append(bc.blockTimes, blockTimeEntry{height: height, timestamp: timestamp})

	keep := bc.params.BlockTimesWindow
	if keep < 2 {
		keep = 2
	}
	if len(bc.blockTimes) > keep {
		bc.blockTimes = bc.blockTimes[len(bc.blockTimes)-keep:]
	}

	if len(bc.blockTimes) < 2 {
		return
	}

	var total time.Duration
	for i := 1; i < len(bc.blockTimes); i++ {
		total += bc.blockTimes[i].timestamp.Sub(bc.blockTimes[i-1].timestamp)
	}
	bc.averageBlockTime = total / time.Duration(len(bc.blockTimes)-1)
}

// retargetLocked recomputes the difficulty at height, adjusting every
// DifficultyAdjustmentInterval blocks by comparing the actual time taken
// to produce the last interval's worth of blocks against the target:
// less than half the target time increments difficulty (doubling the
// expected work per block), more than twice the target decrements it,
// and anything in between scales proportionally, clamped to at most 5
// either way and a floor of 1. Callers must hold bc.mu for writing.
func (bc *Blockchain) retargetLocked(height uint64) uint32 {
	interval := bc.params.DifficultyAdjustmentInterval

	if height < interval || height%interval != 0 {
		return bc.currentDifficulty
	}

	if uint64(len(bc.blockTimes)) <= interval {
		return bc.currentDifficulty
	}

	recent := bc.blockTimes[len(bc.blockTimes)-int(interval)-1:]
	actual := recent[len(recent)-1].timestamp.Sub(recent[0].timestamp)
	target := bc.params.TargetBlockTime * time.Duration(interval)

	current := bc.currentDifficulty

	switch {
	case actual < target/2:
		return current + 1
	case actual > target*2:
		if current <= 1 {
			return 1
		}
		return current - 1
	default:
		ratio := float64(target) / float64(actual)
		adjusted := uint32(float64(current) * ratio)
		if adjusted < 1 {
			adjusted = 1
		}
		if adjusted > current+5 {
			adjusted = current + 5
		}
		if current > 5 && adjusted < current-5 {
			adjusted = current - 5
		}
		return adjusted
	}
}
