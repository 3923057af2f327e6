// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "time"

// Stats is a point-in-time summary of the mempool's contents, the Go
// rendering of original_source/core/src/mempool.rs's MempoolStats.
type Stats struct {
	TotalTransactions      int
	TotalSizeBytes         int
	PendingByFeeRange      map[string]int
	OldestTransactionAge   time.Duration
	AccountsWithPending    int
	RejectedTransactions1h int
}

// feeRangeBucket names feeRate the same way original_source's get_stats
// does, so the bucket labels line up with the implementation this was
// folded back from.
func feeRangeBucket(rate uint64) string {
	switch {
	case rate <= 1000:
		return "low"
	case rate <= 5000:
		return "medium"
	case rate <= 20000:
		return "high"
	default:
		return "premium"
	}
}

// Stats reports the current mempool summary.
func (mp *Mempool) Stats() Stats {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	s := Stats{
		TotalTransactions:      len(mp.byID),
		TotalSizeBytes:         mp.currentSizeBytes,
		PendingByFeeRange:      make(map[string]int),
		AccountsWithPending:    len(mp.byAccount),
		RejectedTransactions1h: mp.rejectedCount1h,
	}

	now := time.Now().UTC()
	for _, e := range mp.byID {
		s.PendingByFeeRange[feeRangeBucket(e.feeRate)]++
		if age := now.Sub(e.addedAt); age > s.OldestTransactionAge {
			s.OldestTransactionAge = age
		}
	}

	return s
}
