// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/argon2"
)

// PowParams configures the memory-hard proof-of-work function. The field
// names and bounds follow spec.md §4.1 and original_source's
// Argon2Config: MemoryCost in KiB, TimeCost in iterations, Parallelism in
// [1,16], OutputLength in [16,64] bytes.
type PowParams struct {
	MemoryCost   uint32 // KiB
	TimeCost     uint32 // iterations
	Parallelism  uint8
	OutputLength uint32 // bytes
}

// ProductionPowParams is the PoW cost profile used for real mining: 128
// MiB of memory, 5 iterations.
func ProductionPowParams() PowParams {
	return PowParams{
		MemoryCost:   128 * 1024,
		TimeCost:     5,
		Parallelism:  1,
		OutputLength: 32,
	}
}

// FastPowParams is the PoW cost profile used in tests: 1 MiB of memory, 1
// iteration. It must never be used for real mining.
func FastPowParams() PowParams {
	return PowParams{
		MemoryCost:   1024,
		TimeCost:     1,
		Parallelism:  1,
		OutputLength: 32,
	}
}

// Validate enforces the bounds from spec.md §4.1.
func (p PowParams) Validate() error {
	if p.MemoryCost < 8 {
		return fmt.Errorf("crypto: memory cost %d KiB below minimum of 8 KiB", p.MemoryCost)
	}
	if p.TimeCost < 1 {
		return fmt.Errorf("crypto: time cost %d below minimum of 1", p.TimeCost)
	}
	if p.Parallelism < 1 || p.Parallelism > 16 {
		return fmt.Errorf("crypto: parallelism %d outside [1,16]", p.Parallelism)
	}
	if p.OutputLength < 16 || p.OutputLength > 64 {
		return fmt.Errorf("crypto: output length %d outside [16,64]", p.OutputLength)
	}
	return nil
}

// PowHash is the memory-hard function at the core of proof-of-work
// evaluation: Argon2id over data, salted with salt, under the cost
// parameters in params.
func PowHash(data, salt []byte, params PowParams) ([]byte, error) {
	if err := params.Validate(); err != nil {
		log.Warnf("rejecting pow params: %v", err)
		return nil, err
	}
	return argon2.IDKey(data, salt, params.TimeCost, params.MemoryCost, params.Parallelism, params.OutputLength), nil
}

// PowTarget encodes difficulty as a 32-byte big-endian threshold,
// target = 2^(256-difficulty) - 1, i.e. difficulty leading zero bits
// followed by ones, which TargetToDifficulty inverts. A block's PoW is
// valid iff its final hash is numerically <= target. difficulty == 0
// yields the maximal (all-ones) target.
func PowTarget(difficulty uint32) Hash {
	if difficulty == 0 {
		var max Hash
		for i := range max {
			max[i] = 0xff
		}
		return max
	}
	if difficulty >= 256 {
		return Hash{}
	}

	one := uint256.NewInt(1)
	exponent := 256 - difficulty
	target := new(uint256.Int).Lsh(one, uint(exponent))
	target.Sub(target, uint256.NewInt(1))

	return Hash(target.Bytes32())
}

// TargetToDifficulty is the inverse of PowTarget: it counts the leading
// zero bits of target.
func TargetToDifficulty(target Hash) uint32 {
	var difficulty uint32
	for _, b := range target {
		if b == 0 {
			difficulty += 8
			continue
		}
		difficulty += uint32(leadingZerosByte(b))
		break
	}
	return difficulty
}

func leadingZerosByte(b byte) int {
	n := 0
	for mask := byte(0x80); mask != 0; mask >>= 1 {
		if b&mask != 0 {
			break
		}
		n++
	}
	return n
}

// VerifyPow recomputes the proof-of-work hash for headerBlob and nonce
// under params and reports whether it meets target. The salt is derived
// from the header itself so that it changes whenever the header's
// committed fields change, matching spec.md §4.1's verify_pow procedure:
//
//	salt  = ContentHash(headerBlob)[0:16]
//	pow   = PowHash(headerBlob || nonce_le, salt, params)
//	final = ContentHash(pow)
//	accept iff final <= target
func VerifyPow(headerBlob []byte, nonce uint64, target Hash, params PowParams) (bool, error) {
	final, err := finalPowHash(headerBlob, nonce, params)
	if err != nil {
		return false, err
	}
	return final.LessOrEqual(target), nil
}

func finalPowHash(headerBlob []byte, nonce uint64, params PowParams) (Hash, error) {
	saltSource := ContentHash(headerBlob)
	salt := saltSource[:16]

	powData := make([]byte, len(headerBlob)+8)
	n := copy(powData, headerBlob)
	binary.LittleEndian.PutUint64(powData[n:], nonce)

	powResult, err := PowHash(powData, salt, params)
	if err != nil {
		return Hash{}, err
	}
	return ContentHash(powResult), nil
}
