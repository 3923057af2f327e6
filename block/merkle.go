// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import "github.com/numichain/numichain/crypto"

// MerkleRoot computes the root of the Merkle tree whose leaves are ids,
// in order. An empty input yields the all-zero hash. A level with an odd
// number of nodes duplicates its last node before pairing, so the
// algorithm always produces exactly one root and is reproducible
// bit-for-bit across implementations.
func MerkleRoot(ids []crypto.Hash) crypto.Hash {
	if len(ids) == 0 {
		return crypto.ZeroHash
	}

	level := make([]crypto.Hash, len(ids))
	copy(level, ids)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]crypto.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		level = next
	}

	return level[0]
}

func hashPair(left, right crypto.Hash) crypto.Hash {
	buf := make([]byte, 0, crypto.HashSize*2)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return crypto.ContentHash(buf)
}
