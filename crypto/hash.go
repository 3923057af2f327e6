// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/subtle"
	"encoding/hex"

	"lukechampine.com/blake3"
)

// HashSize is the number of bytes in a content Hash.
const HashSize = 32

// Hash is the result of ContentHash: a 32-byte BLAKE3 digest. It is used
// both as a transaction/block identifier and as an intermediate value in
// proof-of-work evaluation.
type Hash [HashSize]byte

// ZeroHash is the Hash value with all bytes set to zero, used as the
// previous-block hash of genesis.
var ZeroHash Hash

// String returns the hexadecimal encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Equal reports whether h and other are the same hash. It does not need to
// run in constant time: hashes are not secret values.
func (h Hash) Equal(other Hash) bool {
	return h == other
}

// Less reports whether h is numerically less than other under big-endian
// comparison, i.e. treating both as 256-bit unsigned integers. This is the
// comparison PoW verification and target encoding rely on.
func (h Hash) Less(other Hash) bool {
	for i := 0; i < HashSize; i++ {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// LessOrEqual reports whether h <= other under the same big-endian
// comparison as Less.
func (h Hash) LessOrEqual(other Hash) bool {
	return h == other || h.Less(other)
}

// ContentHash computes the collision-resistant, parallelizable BLAKE3 tree
// hash of data. It is the commitment function used for transaction and
// block identifiers and for Merkle leaves.
func ContentHash(data []byte) Hash {
	digest := blake3.Sum256(data)
	return Hash(digest)
}

// ConstantTimeEq reports whether a and b are byte-for-byte equal, first
// checking length (which is not secret) and then comparing contents in
// constant time so that no timing signal depends on where the first
// mismatching byte falls.
func ConstantTimeEq(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
