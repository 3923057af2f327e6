// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/numichain/numichain/crypto"

// buildChainToBlockLocked walks parent pointers from hash back to
// genesis and returns the path in forward order (genesis first). An
// unknown hash yields an empty slice. Callers must hold bc.mu.
func (bc *Blockchain) buildChainToBlockLocked(hash crypto.Hash) []crypto.Hash {
	var chain []crypto.Hash
	for {
		node, ok := bc.blocks[hash]
		if !ok {
			break
		}
		chain = append(chain, hash)
		if node.block.IsGenesis() {
			break
		}
		hash = node.block.Header.PreviousHash
	}
	// reverse into forward order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// findForkPointLocked returns the blocks to disconnect from a (exclusive
// of the common ancestor, in forward order) and the blocks to connect
// to reach b (exclusive of the common ancestor, in forward order).
func (bc *Blockchain) findForkPointLocked(a, b crypto.Hash) (oldChain, newChain []crypto.Hash) {
	pathA := bc.buildChainToBlockLocked(a)
	pathB := bc.buildChainToBlockLocked(b)

	common := 0
	for common < len(pathA) && common < len(pathB) && pathA[common].Equal(pathB[common]) {
		common++
	}

	return pathA[common:], pathB[common:]
}

// reorganizeToLocked switches the main chain to newBestHash, per
// spec.md §4.5. Callers must hold bc.mu for writing.
func (bc *Blockchain) reorganizeToLocked(newBestHash crypto.Hash) (bool, error) {
	var oldChain, newChain []crypto.Hash
	if len(bc.mainChain) == 0 {
		// First block ever connected: there is nothing to disconnect.
		newChain = bc.buildChainToBlockLocked(newBestHash)
	} else {
		oldChain, newChain = bc.findForkPointLocked(bc.bestBlockHash, newBestHash)
	}

	if uint64(len(oldChain)) > bc.params.MaxReorgDepth {
		log.Warnf("reorganization depth %d exceeds maximum %d, refusing", len(oldChain), bc.params.MaxReorgDepth)
		return false, nil
	}

	for i := len(oldChain) - 1; i >= 0; i-- {
		bc.disconnectBlockLocked(oldChain[i])
	}

	for _, h := range newChain {
		if err := bc.connectBlockToMainChainLocked(h); err != nil {
			if IsErrorCode(err, ErrInternalInconsistency) {
				log.Criticalf("internal inconsistency while connecting block %s during reorganization: %v", h, err)
			} else {
				log.Warnf("block %s rejected while connecting during reorganization: %v", h, err)
			}
			return false, err
		}
	}

	fullChain := bc.buildChainToBlockLocked(newBestHash)
	bc.mainChain = fullChain

	for _, node := range bc.blocks {
		node.isMainChain = false
	}
	for _, h := range fullChain {
		bc.blocks[h].isMainChain = true
	}

	bestNode := bc.blocks[newBestHash]
	bc.bestBlockHash = newBestHash
	bc.cumulativeWork = bestNode.cumulativeWork
	bc.lastBlockTime = bestNode.block.Header.Timestamp
	bc.recordBlockTimeLocked(bestNode.height, bestNode.block.Header.Timestamp)
	bc.currentDifficulty = bc.retargetLocked(bestNode.height)

	log.Infof("chain reorganization complete: new best block %s at height %d", newBestHash, bestNode.height)
	return len(oldChain) > 0, nil
}
