// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

// ValidateChain walks the main chain end to end and checks the
// invariants connectBlockLocked/reorganizeToLocked are supposed to
// maintain at all times: every block's height matches its index,
// every block (other than genesis) links to its predecessor's hash,
// and every block still passes basic validation. It returns a non-nil
// ErrInternalInconsistency RuleError on the first violation found.
// PerformMaintenance calls this periodically to surface such a
// violation before it would otherwise only show up as a confusing
// failure during a later reorganization.
func (bc *Blockchain) ValidateChain() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	for i, hash := range bc.mainChain {
		node, ok := bc.blocks[hash]
		if !ok {
			return ruleErrorf(ErrInternalInconsistency, "main chain block %s at index %d missing from block index", hash, i)
		}

		if node.height != uint64(i) {
			return ruleErrorf(ErrInternalInconsistency, "block %s height %d does not match main chain index %d", hash, node.height, i)
		}

		if i > 0 {
			prevHash := bc.mainChain[i-1]
			if !node.block.Header.PreviousHash.Equal(prevHash) {
				return ruleErrorf(ErrInternalInconsistency, "block %s previous_hash %s does not match main chain predecessor %s", hash, node.block.Header.PreviousHash, prevHash)
			}
		}

		if err := bc.validateBasic(node.block); err != nil {
			return ruleErrorf(ErrInternalInconsistency, "block %s at height %d fails basic validation: %v", hash, i, err)
		}
	}

	return nil
}
