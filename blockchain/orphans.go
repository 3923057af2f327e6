// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/numichain/numichain/block"
	"github.com/numichain/numichain/crypto"
)

// parkOrphan adds b to the orphan pool, evicting the oldest-arrived
// orphan first if the pool is already at capacity. Callers must hold
// bc.mu for writing.
func (bc *Blockchain) parkOrphan(b *block.Block) {
	if len(bc.orphans) >= bc.params.MaxOrphanBlocks {
		if oldest, ok := bc.oldestOrphanLocked(); ok {
			delete(bc.orphans, oldest)
			log.Debugf("evicted oldest orphan %s to make room", oldest)
		}
	}

	hash := b.Hash()
	bc.orphans[hash] = &orphanBlock{block: b, arrivalTime: time.Now().UTC()}
	log.Infof("block %s parked in orphan pool (parent %s)", hash, b.Header.PreviousHash)
}

func (bc *Blockchain) oldestOrphanLocked() (crypto.Hash, bool) {
	var oldestHash crypto.Hash
	var oldestTime time.Time
	found := false
	for hash, orphan := range bc.orphans {
		if !found || orphan.arrivalTime.Before(oldestTime) {
			oldestHash = hash
			oldestTime = orphan.arrivalTime
			found = true
		}
	}
	return oldestHash, found
}

// drainOrphansLocked repeatedly scans the orphan pool for blocks whose
// parent has since become available and attempts to connect them,
// continuing until a full pass makes no further progress. A block that
// fails to connect is attempted at most MaxOrphanProcessingAttempts
// times in total before being dropped. Callers must hold bc.mu for writing.
func (bc *Blockchain) drainOrphansLocked() {
	for {
		progressed := false

		for hash, orphan := range bc.orphans {
			if !orphan.block.IsGenesis() {
				if _, ok := bc.blocks[orphan.block.Header.PreviousHash]; !ok {
					continue
				}
			}

			delete(bc.orphans, hash)

			if err := bc.processOrphanLocked(orphan.block); err != nil {
				log.Warnf("orphan block %s failed processing: %v", hash, err)
				orphan.attempts++
				if orphan.attempts < bc.params.MaxOrphanProcessingAttempts {
					bc.orphans[hash] = orphan
				}
				continue
			}

			progressed = true
		}

		if !progressed {
			return
		}
	}
}

// processOrphanLocked runs the same validation and connection steps as
// AddBlock for a block whose parent is now known to be present (or which
// is itself genesis). Callers must hold bc.mu for writing.
func (bc *Blockchain) processOrphanLocked(b *block.Block) error {
	hash := b.Hash()
	if _, exists := bc.blocks[hash]; exists {
		return nil
	}

	if err := bc.validateBasic(b); err != nil {
		return err
	}

	isGenesis := b.IsGenesis()

	if !isGenesis && !bc.skipPowVerification {
		target := crypto.PowTarget(b.Header.Difficulty)
		ok, err := crypto.VerifyPow(b.Header.SigningPayload(), b.Header.Nonce, target, crypto.ProductionPowParams())
		if err != nil {
			return ruleErrorf(ErrInvalidBlock, "verify pow: %v", err)
		}
		if !ok {
			return ruleErrorf(ErrInvalidBlock, "proof of work verification failed")
		}
	}

	var parent *blockNode
	if !isGenesis {
		node, ok := bc.blocks[b.Header.PreviousHash]
		if !ok {
			return ruleErrorf(ErrInvalidBlock, "parent %s not found", b.Header.PreviousHash)
		}
		parent = node
	}

	var prevHeader *block.Header
	if parent != nil {
		prevHeader = &parent.block.Header
	}
	if err := b.Validate(prevHeader); err != nil {
		return err
	}

	_, err := bc.connectBlockLocked(b, hash, parent)
	return err
}

// cleanupOldOrphans removes orphans older than the configured expiry.
func (bc *Blockchain) cleanupOldOrphans() {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	cutoff := time.Now().UTC().Add(-bc.params.OrphanExpiry)
	removed := 0
	for hash, orphan := range bc.orphans {
		if orphan.arrivalTime.Before(cutoff) {
			delete(bc.orphans, hash)
			removed++
		}
	}
	if removed > 0 {
		log.Infof("cleaned up %d expired orphan blocks", removed)
	}
}
