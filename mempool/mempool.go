// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sort"
	"sync"
	"time"

	"github.com/numichain/numichain/crypto"
	"github.com/numichain/numichain/transaction"
)

// BalanceSource lets the mempool consult the blockchain engine's
// account state without owning a reference back to it. The blockchain
// engine owns the mempool; a handle implementing this narrow interface
// is how the mempool reaches back, breaking the ownership cycle spec.md
// §9 describes as a weak reference without requiring Go's runtime to
// support one. A nil BalanceSource is valid: admission then skips the
// balance check and logs a warning, exactly as spec.md §6 requires when
// the weak reference cannot be upgraded.
type BalanceSource interface {
	Balance(pubKey crypto.PublicKey) (uint64, bool)
}

// Mempool is the pool of admitted, unexpired transactions. All indices
// are guarded by a single mutex; multi-index updates take it once and
// touch by_id, by_account, and the scalar counters in that fixed
// sequence, so a concurrent reader can never observe a torn update.
// There is no stored priority queue: SelectForBlock and eviction sort
// the by_id entries by priority when they run.
type Mempool struct {
	mu sync.RWMutex

	config Config
	source BalanceSource

	byID         map[crypto.Hash]*entry
	byAccount    map[string]map[crypto.Hash]struct{}
	accountNonce map[string]uint64

	submissionTimes map[string][]time.Time

	currentSizeBytes int
	rejectedCount1h  int
	lastCleanup      time.Time
}

// New constructs an empty mempool under config. source may be nil; see
// BalanceSource.
func New(config Config, source BalanceSource) *Mempool {
	return &Mempool{
		config:          config,
		source:          source,
		byID:            make(map[crypto.Hash]*entry),
		byAccount:       make(map[string]map[crypto.Hash]struct{}),
		accountNonce:    make(map[string]uint64),
		submissionTimes: make(map[string][]time.Time),
		lastCleanup:     time.Now().UTC(),
	}
}

// SetBalanceSource installs or replaces the handle used to consult
// account balances during admission.
func (mp *Mempool) SetBalanceSource(source BalanceSource) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.source = source
}

func accountKey(pubKey crypto.PublicKey) string {
	return string(pubKey)
}

// AddTransaction runs the admission algorithm from spec.md §4.3 against
// tx and, on success, inserts it into every index.
func (mp *Mempool) AddTransaction(tx *transaction.Transaction) ValidationResult {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.byID[tx.ID]; exists {
		mp.rejectedCount1h++
		return rejectf(DuplicateTransaction, "transaction %s already in mempool", tx.ID)
	}

	if err := tx.ValidateStructure(); err != nil {
		mp.rejectedCount1h++
		if transaction.IsErrorCode(err, transaction.ErrSizeTooLarge) {
			return rejectf(TransactionTooLarge, "%s", err.Error())
		}
		return rejectf(Rejected, "%s", err.Error())
	}

	if tx.Signature == nil || !tx.VerifySignature() {
		mp.rejectedCount1h++
		return rejectf(InvalidSignature, "signature does not verify under from")
	}

	if time.Now().UTC().After(tx.ValidUntil) {
		mp.rejectedCount1h++
		return rejectf(TransactionExpired, "transaction expired at %s", tx.ValidUntil)
	}

	key := accountKey(tx.From)

	if tx.Kind != transaction.KindMiningReward {
		expected := mp.accountNonce[key] + 1
		if tx.Nonce != expected {
			mp.rejectedCount1h++
			return rejectf(InvalidNonce, "nonce %d does not match expected %d", tx.Nonce, expected).
				withNonce(expected, tx.Nonce)
		}
	}

	if mp.source != nil {
		balance, ok := mp.source.Balance(tx.From)
		if !ok {
			balance = 0
		}
		if required := tx.RequiredBalance(); required > balance {
			mp.rejectedCount1h++
			return rejectf(InsufficientBalance, "requires %d, have %d", required, balance).
				withBalance(required, balance)
		}
	} else {
		log.Warnf("mempool: no balance source installed, skipping balance check for %s", tx.ID)
	}

	if result := mp.checkRateLimit(key); !result.IsValid() {
		mp.rejectedCount1h++
		return result
	}

	size := mp.signingSerializationSize(tx)
	rate := feeRate(tx.Fee, size)

	if !mp.hasSpaceFor(size) || rate < mp.dynamicMinFeeRate() {
		if !mp.evictFor(size, rate) {
			mp.rejectedCount1h++
			return rejectf(FeeTooLow, "fee rate %d insufficient after eviction attempt", rate).
				withFee(mp.dynamicMinFeeRate()*uint64(size), tx.Fee)
		}
	}

	mp.insert(tx, size, rate)
	mp.accountNonce[key] = tx.Nonce
	mp.recordSubmission(key)

	return validResult()
}

func (r ValidationResult) withNonce(expected, got uint64) ValidationResult {
	r.ExpectedNonce, r.GotNonce = expected, got
	return r
}

func (r ValidationResult) withBalance(required, available uint64) ValidationResult {
	r.RequiredBalance, r.AvailableBalance = required, available
	return r
}

func (r ValidationResult) withFee(minimum, got uint64) ValidationResult {
	r.MinimumFee, r.GotFee = minimum, got
	return r
}

// signingSerializationSize is the size used for fee-rate purposes: the
// signing payload only, excluding the signature, so fee rate does not
// reward a sender for a larger signature of the same scheme.
func (mp *Mempool) signingSerializationSize(tx *transaction.Transaction) int {
	return len(tx.SigningPayloadForFeeRate())
}

func (mp *Mempool) insert(tx *transaction.Transaction, size int, rate uint64) {
	e := &entry{tx: tx, addedAt: time.Now().UTC(), size: size, feeRate: rate}
	mp.byID[tx.ID] = e

	key := accountKey(tx.From)
	if mp.byAccount[key] == nil {
		mp.byAccount[key] = make(map[crypto.Hash]struct{})
	}
	mp.byAccount[key][tx.ID] = struct{}{}

	mp.currentSizeBytes += size
}

func (mp *Mempool) remove(id crypto.Hash) {
	e, ok := mp.byID[id]
	if !ok {
		return
	}
	delete(mp.byID, id)
	key := accountKey(e.tx.From)
	if set, ok := mp.byAccount[key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(mp.byAccount, key)
		}
	}
	mp.currentSizeBytes -= e.size
}

func (mp *Mempool) hasSpaceFor(size int) bool {
	return mp.currentSizeBytes+size <= mp.config.MaxMempoolSize() &&
		len(mp.byID)+1 <= mp.config.MaxTransactions()
}

// evictFor frees at least size bytes by removing the lowest-priority
// entries whose fee rate is strictly below minRate, returning whether
// enough space was freed.
func (mp *Mempool) evictFor(size int, minRate uint64) bool {
	candidates := make([]*entry, 0, len(mp.byID))
	for _, e := range mp.byID {
		if e.feeRate < minRate {
			candidates = append(candidates, e)
		}
	}
	now := time.Now().UTC()
	sort.Slice(candidates, func(i, j int) bool {
		return entryPriority(candidates[i], now).less(entryPriority(candidates[j], now))
	})

	freed := 0
	for _, e := range candidates {
		if freed >= size {
			break
		}
		mp.remove(e.tx.ID)
		freed += e.size
	}
	return freed >= size && mp.hasSpaceFor(size)
}

// dynamicMinFeeRate scales Config.BaseMinFeeRate by the utilization
// multiplier from spec.md §4.3.
func (mp *Mempool) dynamicMinFeeRate() uint64 {
	sizeUtil := float64(mp.currentSizeBytes) / float64(mp.config.MaxMempoolSize())
	countUtil := float64(len(mp.byID)) / float64(mp.config.MaxTransactions())
	util := sizeUtil
	if countUtil > util {
		util = countUtil
	}

	var multiplier uint64
	switch {
	case util > 0.90:
		multiplier = 5
	case util > 0.75:
		multiplier = 3
	case util > 0.50:
		multiplier = 2
	default:
		multiplier = 1
	}
	return mp.config.BaseMinFeeRate * multiplier
}

func (mp *Mempool) checkRateLimit(key string) ValidationResult {
	now := time.Now().UTC()
	cutoff := now.Add(-time.Hour)

	times := mp.submissionTimes[key]
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	mp.submissionTimes[key] = kept

	if len(kept) >= mp.config.MaxSubmissionsPerHour {
		return rejectf(AccountSpamming, "sender exceeded %d submissions/hour", mp.config.MaxSubmissionsPerHour)
	}
	return validResult()
}

func (mp *Mempool) recordSubmission(key string) {
	mp.submissionTimes[key] = append(mp.submissionTimes[key], time.Now().UTC())
}

// RemoveIncluded removes every id in ids from every index, the way the
// blockchain engine does after a block extends the main chain.
func (mp *Mempool) RemoveIncluded(ids []crypto.Hash) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	for _, id := range ids {
		mp.remove(id)
	}
}

// Restore re-admits a transaction disconnected by a reorganization. It
// bypasses the nonce-sequencing check against the account's highest
// admitted nonce (the disconnect already invalidated that bookkeeping)
// but still enforces every other admission rule.
func (mp *Mempool) Restore(tx *transaction.Transaction) ValidationResult {
	mp.mu.Lock()
	key := accountKey(tx.From)
	prevNonce, hadNonce := mp.accountNonce[key]
	sequenced := tx.Kind != transaction.KindMiningReward && tx.Nonce > 0
	if sequenced {
		mp.accountNonce[key] = tx.Nonce - 1
	}
	mp.mu.Unlock()

	result := mp.AddTransaction(tx)
	if !result.IsValid() && sequenced {
		mp.mu.Lock()
		if hadNonce {
			mp.accountNonce[key] = prevNonce
		} else {
			delete(mp.accountNonce, key)
		}
		mp.mu.Unlock()
	}
	return result
}

// SelectForBlock walks the priority queue greatest-first, accumulating
// transactions whose summed size does not exceed maxSize and whose
// count does not exceed maxCount. A transaction that would overflow
// either bound is skipped, not treated as a stopping point, so smaller,
// lower-priority transactions further down the queue still get a
// chance to fit.
func (mp *Mempool) SelectForBlock(maxSize, maxCount int) []*transaction.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	entries := make([]*entry, 0, len(mp.byID))
	for _, e := range mp.byID {
		entries = append(entries, e)
	}
	now := time.Now().UTC()
	sort.Slice(entries, func(i, j int) bool {
		return entryPriority(entries[j], now).less(entryPriority(entries[i], now))
	})

	selected := make([]*transaction.Transaction, 0, maxCount)
	size := 0
	for _, e := range entries {
		if len(selected) >= maxCount {
			break
		}
		if size+e.size > maxSize {
			continue
		}
		selected = append(selected, e.tx)
		size += e.size
	}
	return selected
}

// PerformMaintenance drops entries older than Config.MaxAge, prunes
// empty submission-rate windows, and resets the hourly rejection
// counter. It should be called periodically by the embedder.
func (mp *Mempool) PerformMaintenance() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	now := time.Now().UTC()
	for id, e := range mp.byID {
		if now.Sub(e.addedAt) > mp.config.MaxAge {
			mp.remove(id)
		}
	}

	for key, times := range mp.submissionTimes {
		if len(times) == 0 {
			delete(mp.submissionTimes, key)
		}
	}

	if now.Sub(mp.lastCleanup) >= time.Hour {
		mp.rejectedCount1h = 0
		mp.lastCleanup = now
	}
}

// Len returns the number of transactions currently admitted.
func (mp *Mempool) Len() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return len(mp.byID)
}

// SizeBytes returns the current total serialized size of admitted
// transactions.
func (mp *Mempool) SizeBytes() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.currentSizeBytes
}

// Contains reports whether id is currently admitted.
func (mp *Mempool) Contains(id crypto.Hash) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	_, ok := mp.byID[id]
	return ok
}

// RejectedCount1h returns the number of rejections since the last hourly
// reset.
func (mp *Mempool) RejectedCount1h() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.rejectedCount1h
}
