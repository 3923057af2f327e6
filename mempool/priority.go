// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math"
	"time"

	"github.com/numichain/numichain/crypto"
	"github.com/numichain/numichain/transaction"
)

// entry is the value stored in by_id: the transaction itself plus the
// bookkeeping admission needs to compute priority and enforce bounds.
type entry struct {
	tx       *transaction.Transaction
	addedAt  time.Time
	size     int
	feeRate  uint64
	attempts int
}

// priority is the ordering key from spec.md §4.3:
// (fee_rate, age_penalty, id), compared greatest first. agePenalty is
// math.MaxUint64 minus the entry's age in seconds, so a younger
// transaction outranks an older one at equal fee_rate.
type priority struct {
	feeRate    uint64
	agePenalty uint64
	id         crypto.Hash
}

func entryPriority(e *entry, now time.Time) priority {
	ageSeconds := uint64(now.Sub(e.addedAt) / time.Second)
	agePenalty := uint64(math.MaxUint64)
	if ageSeconds < agePenalty {
		agePenalty = math.MaxUint64 - ageSeconds
	} else {
		agePenalty = 0
	}
	return priority{
		feeRate:    e.feeRate,
		agePenalty: agePenalty,
		id:         e.tx.ID,
	}
}

// less reports whether p ranks strictly below q: q is preferred over p
// when walking the queue greatest-first.
func (p priority) less(q priority) bool {
	if p.feeRate != q.feeRate {
		return p.feeRate < q.feeRate
	}
	if p.agePenalty != q.agePenalty {
		return p.agePenalty < q.agePenalty
	}
	return p.id.Less(q.id)
}

func feeRate(fee uint64, size int) uint64 {
	if size <= 0 {
		return fee
	}
	// ceil(fee/size)
	return (fee + uint64(size) - 1) / uint64(size)
}
