// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/numichain/numichain/block"
	"github.com/numichain/numichain/crypto"
)

// blockNode is the block-tree metadata spec.md §3 calls a "Block-tree
// node": the block itself plus everything the engine tracks about its
// place in the tree.
type blockNode struct {
	hash           crypto.Hash
	block          *block.Block
	cumulativeWork *uint256.Int
	height         uint64
	isMainChain    bool
	children       []crypto.Hash
	arrivalTime    time.Time
}

// orphanBlock is a block the engine has received but cannot yet connect
// because its parent is unknown.
type orphanBlock struct {
	block       *block.Block
	arrivalTime time.Time
	attempts    int
}

// blockTimeEntry is one sample in the rolling block-times deque used for
// average-block-time reporting and difficulty retargeting.
type blockTimeEntry struct {
	height    uint64
	timestamp time.Time
}
