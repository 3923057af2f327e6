// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/numichain/numichain/crypto"
	"github.com/numichain/numichain/transaction"
)

// ledger is a copy-on-write scratch space over the engine's account
// map, used so that a whole block's transactions can be validated and
// applied (or inverted) as a single atomic unit: any failure partway
// through leaves bc.accounts untouched, because nothing is written back
// to it until every transaction in the block has succeeded.
type ledger struct {
	bc      *Blockchain
	touched map[string]AccountState
}

func newLedger(bc *Blockchain) *ledger {
	return &ledger{bc: bc, touched: make(map[string]AccountState)}
}

func (l *ledger) get(pubKey crypto.PublicKey) AccountState {
	key := string(pubKey)
	if state, ok := l.touched[key]; ok {
		return state
	}
	return l.bc.accounts[key]
}

func (l *ledger) set(pubKey crypto.PublicKey, state AccountState) {
	l.touched[string(pubKey)] = state
}

// commitLocked writes every touched account back into bc.accounts.
// Callers must hold bc.mu for writing.
func (l *ledger) commitLocked() {
	for key, state := range l.touched {
		l.bc.accounts[key] = state
	}
}

// applyTransactionsLocked validates every transaction in txs against the
// current chain state in order (so that multiple transactions from the
// same sender within one block are checked against each other's
// effects, not just the pre-block state) and applies its effects to a
// scratch ledger. It returns the scratch ledger and the resulting
// change in total supply; on the first validation failure it returns a
// non-fatal RuleError and no mutation has been made to bc.accounts.
func (bc *Blockchain) applyTransactionsLocked(txs []*transaction.Transaction) (*ledger, uint64, error) {
	l := newLedger(bc)
	var supplyDelta uint64

	for _, tx := range txs {
		sender := l.get(tx.From)
		if err := tx.Validate(sender.Balance, sender.Nonce); err != nil {
			return nil, 0, ruleErrorf(ErrInvalidTransaction, "transaction %s invalid in block context: %v", tx.ID, err)
		}

		switch tx.Kind {
		case transaction.KindTransfer:
			recipient := l.get(tx.Transfer.To)

			sender.Balance = saturatingSubU64(sender.Balance, tx.Transfer.Amount)
			sender.Nonce++
			sender.TransactionCount++
			sender.TotalSent = saturatingAddU64(sender.TotalSent, tx.Transfer.Amount)
			l.set(tx.From, sender)

			recipient.Balance = saturatingAddU64(recipient.Balance, tx.Transfer.Amount)
			recipient.TotalReceived = saturatingAddU64(recipient.TotalReceived, tx.Transfer.Amount)
			l.set(tx.Transfer.To, recipient)

		case transaction.KindMiningReward:
			sender.Balance = saturatingAddU64(sender.Balance, tx.Reward.Amount)
			sender.TotalReceived = saturatingAddU64(sender.TotalReceived, tx.Reward.Amount)
			l.set(tx.From, sender)
			supplyDelta = saturatingAddU64(supplyDelta, tx.Reward.Amount)

		default:
			return nil, 0, ruleErrorf(ErrInvalidTransaction, "transaction %s has a non-executable kind", tx.ID)
		}
	}

	return l, supplyDelta, nil
}

// invertTransactionsLocked is the strict inverse of
// applyTransactionsLocked: given the same transactions in the same
// order, it undoes their effects by processing them in reverse.
func (bc *Blockchain) invertTransactionsLocked(txs []*transaction.Transaction) (*ledger, uint64, error) {
	l := newLedger(bc)
	var supplyDelta uint64

	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]

		switch tx.Kind {
		case transaction.KindTransfer:
			sender := l.get(tx.From)
			recipient := l.get(tx.Transfer.To)

			sender.Balance = saturatingAddU64(sender.Balance, tx.Transfer.Amount)
			if sender.Nonce > 0 {
				sender.Nonce--
			}
			if sender.TransactionCount > 0 {
				sender.TransactionCount--
			}
			sender.TotalSent = saturatingSubU64(sender.TotalSent, tx.Transfer.Amount)
			l.set(tx.From, sender)

			recipient.Balance = saturatingSubU64(recipient.Balance, tx.Transfer.Amount)
			recipient.TotalReceived = saturatingSubU64(recipient.TotalReceived, tx.Transfer.Amount)
			l.set(tx.Transfer.To, recipient)

		case transaction.KindMiningReward:
			miner := l.get(tx.From)
			miner.Balance = saturatingSubU64(miner.Balance, tx.Reward.Amount)
			miner.TotalReceived = saturatingSubU64(miner.TotalReceived, tx.Reward.Amount)
			l.set(tx.From, miner)
			supplyDelta = saturatingAddU64(supplyDelta, tx.Reward.Amount)

		default:
			return nil, 0, ruleErrorf(ErrInternalInconsistency, "cannot invert non-executable transaction %s", tx.ID)
		}
	}

	return l, supplyDelta, nil
}

// connectBlockToMainChainLocked validates and applies every transaction
// in the block at hash, then removes the block's transactions from the
// mempool. Callers must hold bc.mu for writing.
func (bc *Blockchain) connectBlockToMainChainLocked(hash crypto.Hash) error {
	node := bc.blocks[hash]

	l, supplyDelta, err := bc.applyTransactionsLocked(node.block.Transactions)
	if err != nil {
		return err
	}

	l.commitLocked()
	bc.totalSupply = saturatingAddU64(bc.totalSupply, supplyDelta)

	ids := make([]crypto.Hash, len(node.block.Transactions))
	for i, tx := range node.block.Transactions {
		ids[i] = tx.ID
	}
	bc.Mempool.RemoveIncluded(ids)

	return nil
}

// disconnectBlockLocked inverts every transaction in the block at hash
// and queues its non-reward transactions for return to the mempool.
// Queueing rather than calling Mempool.Restore directly matters because
// Restore consults the engine's BalanceSource, which takes bc.mu for
// reading: calling it while bc.mu is already held for writing here would
// deadlock. The queue is drained by drainRestoreQueue once the caller
// has released the lock. Callers must hold bc.mu for writing.
func (bc *Blockchain) disconnectBlockLocked(hash crypto.Hash) {
	node, ok := bc.blocks[hash]
	if !ok {
		return
	}

	l, supplyDelta, err := bc.invertTransactionsLocked(node.block.Transactions)
	if err != nil {
		log.Criticalf("internal inconsistency inverting block %s: %v", hash, err)
		return
	}

	l.commitLocked()
	bc.totalSupply = saturatingSubU64(bc.totalSupply, supplyDelta)

	for _, tx := range node.block.Transactions {
		if tx.Kind == transaction.KindMiningReward {
			continue
		}
		bc.restoreQueue = append(bc.restoreQueue, tx)
	}
}

// drainRestoreQueue hands every transaction queued by a disconnect back
// to the mempool. Must be called with bc.mu NOT held.
func (bc *Blockchain) drainRestoreQueue() {
	bc.mu.Lock()
	queue := bc.restoreQueue
	bc.restoreQueue = nil
	bc.mu.Unlock()

	for _, tx := range queue {
		if result := bc.Mempool.Restore(tx); !result.IsValid() {
			log.Debugf("disconnected transaction %s not restored to mempool: %s", tx.ID, result.Description)
		}
	}
}
