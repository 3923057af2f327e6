// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/numichain/numichain/crypto"
	"github.com/numichain/numichain/transaction"
)

func mustKeypair(t *testing.T) *crypto.Keypair {
	t.Helper()
	kp, err := crypto.GenerateKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	return kp
}

// fixedBalanceSource is a BalanceSource backed by a plain map, standing
// in for the blockchain engine in tests.
type fixedBalanceSource map[string]uint64

func (s fixedBalanceSource) Balance(pubKey crypto.PublicKey) (uint64, bool) {
	bal, ok := s[string(pubKey)]
	return bal, ok
}

func signedTransfer(t *testing.T, from *crypto.Keypair, to crypto.PublicKey, amount, nonce uint64) *transaction.Transaction {
	t.Helper()
	tx := transaction.NewTransfer(from.PublicKey(), to, amount, nonce, "")
	if err := tx.Sign(from); err != nil {
		t.Fatalf("sign transfer: %v", err)
	}
	return tx
}

func newTestMempool(source BalanceSource) *Mempool {
	return New(DefaultConfig(1<<20, 1000), source)
}

func TestAddTransactionAdmitsValidTransfer(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	mp := newTestMempool(source)
	tx := signedTransfer(t, sender, recipient.PublicKey(), 1000, 1)

	result := mp.AddTransaction(tx)
	if !result.IsValid() {
		t.Fatalf("expected admission, got %s: %s", result.Code, result.Description)
	}
	if mp.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", mp.Len())
	}
	if !mp.Contains(tx.ID) {
		t.Fatalf("expected mempool to contain %s", tx.ID)
	}
}

func TestAddTransactionRejectsDuplicate(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	mp := newTestMempool(source)
	tx := signedTransfer(t, sender, recipient.PublicKey(), 1000, 1)

	if result := mp.AddTransaction(tx); !result.IsValid() {
		t.Fatalf("first admission failed: %s", result.Description)
	}
	result := mp.AddTransaction(tx)
	if result.Code != DuplicateTransaction {
		t.Fatalf("expected DuplicateTransaction, got %s", result.Code)
	}
}

func TestAddTransactionRejectsBadSignature(t *testing.T) {
	sender := mustKeypair(t)
	other := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	mp := newTestMempool(source)
	tx := transaction.NewTransfer(sender.PublicKey(), recipient.PublicKey(), 1000, 1, "")
	if err := tx.Sign(other); err != nil {
		t.Fatalf("sign: %v", err)
	}

	result := mp.AddTransaction(tx)
	if result.Code != InvalidSignature {
		t.Fatalf("expected InvalidSignature, got %s", result.Code)
	}
}

func TestAddTransactionRejectsWrongNonce(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	mp := newTestMempool(source)
	tx := signedTransfer(t, sender, recipient.PublicKey(), 1000, 5)

	result := mp.AddTransaction(tx)
	if result.Code != InvalidNonce {
		t.Fatalf("expected InvalidNonce, got %s", result.Code)
	}
	if result.ExpectedNonce != 1 || result.GotNonce != 5 {
		t.Fatalf("expected nonce fields 1/5, got %d/%d", result.ExpectedNonce, result.GotNonce)
	}
}

func TestAddTransactionEnforcesNonceSequencingAcrossAdmissions(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	mp := newTestMempool(source)
	first := signedTransfer(t, sender, recipient.PublicKey(), 1000, 1)
	if result := mp.AddTransaction(first); !result.IsValid() {
		t.Fatalf("first admission failed: %s", result.Description)
	}

	// Replaying nonce 1 in a transaction with a different amount and memo
	// (and so a distinct id) must be an InvalidNonce rejection, not a
	// DuplicateTransaction one.
	replay := transaction.NewTransfer(sender.PublicKey(), recipient.PublicKey(), 2000, 1, "replay")
	if err := replay.Sign(sender); err != nil {
		t.Fatalf("sign: %v", err)
	}
	result := mp.AddTransaction(replay)
	if result.Code != InvalidNonce {
		t.Fatalf("expected InvalidNonce for replayed nonce, got %s", result.Code)
	}

	second := signedTransfer(t, sender, recipient.PublicKey(), 1000, 2)
	if result := mp.AddTransaction(second); !result.IsValid() {
		t.Fatalf("second admission failed: %s", result.Description)
	}
}

func TestAddTransactionRejectsInsufficientBalance(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 100}

	mp := newTestMempool(source)
	tx := signedTransfer(t, sender, recipient.PublicKey(), 1_000_000, 1)

	result := mp.AddTransaction(tx)
	if result.Code != InsufficientBalance {
		t.Fatalf("expected InsufficientBalance, got %s", result.Code)
	}
	if result.RequiredBalance != tx.RequiredBalance() || result.AvailableBalance != 100 {
		t.Fatalf("unexpected balance fields: %+v", result)
	}
}

func TestAddTransactionSkipsBalanceCheckWithNilSource(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	mp := newTestMempool(nil)
	tx := signedTransfer(t, sender, recipient.PublicKey(), 1_000_000_000, 1)

	result := mp.AddTransaction(tx)
	if !result.IsValid() {
		t.Fatalf("expected admission with nil balance source, got %s: %s", result.Code, result.Description)
	}
}

func TestAddTransactionRejectsExpired(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	mp := newTestMempool(source)
	tx := transaction.NewTransfer(sender.PublicKey(), recipient.PublicKey(), 1000, 1, "")
	tx.ValidUntil = tx.Timestamp.Add(time.Second)
	if err := tx.Sign(sender); err != nil {
		t.Fatalf("sign: %v", err)
	}
	// ValidateStructure requires ValidUntil after Timestamp, which it
	// still is; the expiry check in AddTransaction compares against
	// wall-clock time, which has already passed it.
	time.Sleep(2 * time.Second)

	result := mp.AddTransaction(tx)
	if result.Code != TransactionExpired {
		t.Fatalf("expected TransactionExpired, got %s", result.Code)
	}
}

func TestAddTransactionEnforcesSubmissionRateLimit(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000_000}

	config := DefaultConfig(1<<20, 1000)
	config.MaxSubmissionsPerHour = 2
	mp := New(config, source)

	for nonce := uint64(1); nonce <= 2; nonce++ {
		tx := signedTransfer(t, sender, recipient.PublicKey(), 100, nonce)
		if result := mp.AddTransaction(tx); !result.IsValid() {
			t.Fatalf("admission %d failed: %s", nonce, result.Description)
		}
	}

	tx := signedTransfer(t, sender, recipient.PublicKey(), 100, 3)
	result := mp.AddTransaction(tx)
	if result.Code != AccountSpamming {
		t.Fatalf("expected AccountSpamming, got %s", result.Code)
	}
}

func TestDynamicMinFeeRateScalesWithUtilization(t *testing.T) {
	mp := newTestMempool(nil)
	if rate := mp.dynamicMinFeeRate(); rate != mp.config.BaseMinFeeRate {
		t.Fatalf("expected base rate %d at zero utilization, got %d", mp.config.BaseMinFeeRate, rate)
	}

	mp.currentSizeBytes = int(float64(mp.config.MaxMempoolSize()) * 0.95)
	if rate := mp.dynamicMinFeeRate(); rate != mp.config.BaseMinFeeRate*5 {
		t.Fatalf("expected 5x base rate above 90%% utilization, got %d", rate)
	}
}

func TestSelectForBlockOrdersByFeeRateThenSkipsOversized(t *testing.T) {
	senderHigh := mustKeypair(t)
	senderLow := mustKeypair(t)
	senderBig := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{
		string(senderHigh.PublicKey()): 1_000_000_000,
		string(senderLow.PublicKey()):  1_000_000_000,
		string(senderBig.PublicKey()):  1_000_000_000,
	}

	mp := newTestMempool(source)

	low := transaction.NewTransfer(senderLow.PublicKey(), recipient.PublicKey(), 100, 1, "")
	if err := low.Sign(senderLow); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if result := mp.AddTransaction(low); !result.IsValid() {
		t.Fatalf("low-fee admission failed: %s", result.Description)
	}

	// The memo makes high's payload larger than low's, so a maxSize just
	// below high's size still leaves room for low.
	high := transaction.NewTransfer(senderHigh.PublicKey(), recipient.PublicKey(), 100, 1, "padding that makes this payload larger")
	high.Fee = low.Fee * 10
	if err := high.Sign(senderHigh); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if result := mp.AddTransaction(high); !result.IsValid() {
		t.Fatalf("high-fee admission failed: %s", result.Description)
	}

	selected := mp.SelectForBlock(1<<20, 1000)
	if len(selected) != 2 {
		t.Fatalf("expected 2 selected transactions, got %d", len(selected))
	}
	if selected[0].ID != high.ID {
		t.Fatalf("expected higher-fee-rate transaction first")
	}

	// A maxCount of 1 should keep only the higher-priority transaction,
	// not stop iteration before reaching it.
	selectedOne := mp.SelectForBlock(1<<20, 1)
	if len(selectedOne) != 1 || selectedOne[0].ID != high.ID {
		t.Fatalf("expected only the high-fee transaction with maxCount=1")
	}

	// A maxSize too small for the high-fee transaction alone should be
	// skipped, not treated as a stop, letting the low-fee one still fit.
	highSize := mp.signingSerializationSize(high)
	selectedSkip := mp.SelectForBlock(highSize-1, 1000)
	if len(selectedSkip) != 1 || selectedSkip[0].ID != low.ID {
		t.Fatalf("expected oversized high-fee entry skipped in favor of low-fee entry")
	}
}

func TestRemoveIncludedDropsEntries(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	mp := newTestMempool(source)
	tx := signedTransfer(t, sender, recipient.PublicKey(), 1000, 1)
	if result := mp.AddTransaction(tx); !result.IsValid() {
		t.Fatalf("admission failed: %s", result.Description)
	}

	mp.RemoveIncluded([]crypto.Hash{tx.ID})
	if mp.Contains(tx.ID) {
		t.Fatalf("expected %s removed", tx.ID)
	}
	if mp.Len() != 0 {
		t.Fatalf("expected empty mempool, got %d entries", mp.Len())
	}
}

func TestRestoreBypassesNonceSequencingButEnforcesBalance(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	mp := newTestMempool(source)

	// Admit nonce 1 and 2 normally, then simulate a disconnect that
	// restores nonce 2 without first restoring nonce 1: Restore must not
	// require nonce 1 to already be admitted.
	first := signedTransfer(t, sender, recipient.PublicKey(), 1000, 1)
	if result := mp.AddTransaction(first); !result.IsValid() {
		t.Fatalf("admission failed: %s", result.Description)
	}
	second := signedTransfer(t, sender, recipient.PublicKey(), 1000, 2)
	if result := mp.AddTransaction(second); !result.IsValid() {
		t.Fatalf("admission failed: %s", result.Description)
	}
	mp.RemoveIncluded([]crypto.Hash{first.ID, second.ID})

	result := mp.Restore(second)
	if !result.IsValid() {
		t.Fatalf("expected restore of nonce 2 without nonce 1 present to succeed, got %s: %s", result.Code, result.Description)
	}

	// Restore still enforces the balance check: a transaction requiring
	// more than the known balance must still be rejected.
	tooExpensive := signedTransfer(t, sender, recipient.PublicKey(), 10_000_000, 9)
	result = mp.Restore(tooExpensive)
	if result.Code != InsufficientBalance {
		t.Fatalf("expected InsufficientBalance from Restore, got %s", result.Code)
	}
}

func TestPerformMaintenanceExpiresOldEntries(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	config := DefaultConfig(1<<20, 1000)
	config.MaxAge = time.Millisecond
	mp := New(config, source)

	tx := signedTransfer(t, sender, recipient.PublicKey(), 1000, 1)
	if result := mp.AddTransaction(tx); !result.IsValid() {
		t.Fatalf("admission failed: %s", result.Description)
	}

	time.Sleep(5 * time.Millisecond)
	mp.PerformMaintenance()

	if mp.Contains(tx.ID) {
		t.Fatalf("expected expired transaction removed by maintenance")
	}
}

func TestRejectedCount1hTracksRejections(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)
	source := fixedBalanceSource{string(sender.PublicKey()): 1_000_000}

	mp := newTestMempool(source)
	tx := signedTransfer(t, sender, recipient.PublicKey(), 1_000_000_000_000, 1)

	mp.AddTransaction(tx)
	if mp.RejectedCount1h() != 1 {
		t.Fatalf("expected 1 rejection recorded, got %d", mp.RejectedCount1h())
	}
}
