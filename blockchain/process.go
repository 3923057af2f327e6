// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/numichain/numichain/block"
	"github.com/numichain/numichain/chaincfg"
	"github.com/numichain/numichain/crypto"
	"github.com/numichain/numichain/transaction"
)

// AddBlock runs the block processing algorithm from spec.md §4.5: basic
// validation, PoW verification, parent lookup (orphaning if unknown),
// block-tree insertion, and fork-choice. It returns whether a
// reorganization (disconnecting at least one main-chain block) occurred;
// a false result without an error may mean the block was a duplicate, a
// plain extension of the best chain, a stale side-chain extension, a
// reorganization refused for exceeding MaxReorgDepth, or parked as an
// orphan.
func (bc *Blockchain) AddBlock(b *block.Block) (bool, error) {
	reorged, err := bc.addBlockLocked(b)
	// drainRestoreQueue takes bc.mu itself and must run with it released,
	// so it happens after addBlockLocked's own lock has been dropped.
	bc.drainRestoreQueue()
	return reorged, err
}

func (bc *Blockchain) addBlockLocked(b *block.Block) (bool, error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	hash := b.Hash()
	if _, exists := bc.blocks[hash]; exists {
		return false, nil
	}

	if err := bc.validateBasic(b); err != nil {
		log.Warnf("block %s failed basic validation: %v", hash, err)
		return false, err
	}

	isGenesis := b.IsGenesis()

	if !isGenesis && !bc.skipPowVerification {
		target := crypto.PowTarget(b.Header.Difficulty)
		ok, err := crypto.VerifyPow(b.Header.SigningPayload(), b.Header.Nonce, target, crypto.ProductionPowParams())
		if err != nil {
			return false, ruleErrorf(ErrInvalidBlock, "verify pow: %v", err)
		}
		if !ok {
			log.Warnf("block %s failed proof-of-work verification", hash)
			return false, ruleErrorf(ErrInvalidBlock, "proof of work verification failed")
		}
	}

	var parent *blockNode
	if !isGenesis {
		node, ok := bc.blocks[b.Header.PreviousHash]
		if !ok {
			bc.parkOrphan(b)
			return false, nil
		}
		parent = node
	}

	var prevHeader *block.Header
	if parent != nil {
		prevHeader = &parent.block.Header
	}
	if err := b.Validate(prevHeader); err != nil {
		log.Warnf("block %s failed structural validation: %v", hash, err)
		return false, err
	}

	reorged, err := bc.connectBlockLocked(b, hash, parent)
	if err != nil {
		return false, err
	}

	bc.drainOrphansLocked()

	return reorged, nil
}

// validateBasic implements spec.md §4.5's basic validation: non-genesis
// blocks must contain at least one transaction, the timestamp must not
// be too far in the future, every transaction must pass structural
// validation, there must be no duplicate transaction ids, and, for
// non-genesis blocks, the first transaction must be a MiningReward of
// at most the schedule's reward plus total fees.
func (bc *Blockchain) validateBasic(b *block.Block) error {
	isGenesis := b.IsGenesis()

	if !isGenesis && len(b.Transactions) == 0 {
		return ruleErrorf(ErrInvalidBlock, "non-genesis block has no transactions")
	}

	if b.Header.Timestamp.After(time.Now().UTC().Add(bc.params.MaxFutureBlockTime)) {
		return ruleErrorf(ErrInvalidBlock, "header timestamp too far in the future")
	}

	seen := make(map[crypto.Hash]struct{}, len(b.Transactions))
	for _, tx := range b.Transactions {
		if err := tx.ValidateStructure(); err != nil {
			return ruleErrorf(ErrInvalidBlock, "transaction %s failed structural validation: %v", tx.ID, err)
		}
		if _, dup := seen[tx.ID]; dup {
			return ruleErrorf(ErrInvalidBlock, "duplicate transaction %s in block", tx.ID)
		}
		seen[tx.ID] = struct{}{}
	}

	if !isGenesis {
		coinbase, ok := b.Coinbase()
		if !ok || coinbase.Kind != transaction.KindMiningReward {
			return ruleErrorf(ErrInvalidBlock, "first transaction is not a mining reward")
		}
		maxReward := bc.params.MiningReward(b.Header.Height) + b.TotalFees()
		if coinbase.Reward == nil || coinbase.Reward.Amount > maxReward {
			return ruleErrorf(ErrInvalidBlock, "coinbase amount exceeds reward+fees bound of %d", maxReward)
		}
	}

	return nil
}

// connectBlockLocked inserts b into the block-tree and triggers
// reorganization when it becomes the new heaviest chain. Callers must
// hold bc.mu for writing.
func (bc *Blockchain) connectBlockLocked(b *block.Block, hash crypto.Hash, parent *blockNode) (bool, error) {
	cumulative := chaincfg.BlockWork(b.Header.Difficulty)
	if parent != nil {
		cumulative = new(uint256.Int).Add(parent.cumulativeWork, cumulative)
	}

	node := &blockNode{
		hash:           hash,
		block:          b,
		cumulativeWork: cumulative,
		height:         b.Header.Height,
		arrivalTime:    time.Now().UTC(),
	}
	bc.blocks[hash] = node

	if parent != nil {
		parent.children = append(parent.children, hash)
	}

	if cumulative.Cmp(bc.cumulativeWork) > 0 {
		return bc.reorganizeToLocked(hash)
	}

	log.Debugf("block %s added to side chain at height %d", hash, node.height)
	return false, nil
}
