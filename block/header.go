// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package block implements the block header, its Merkle commitment, and
// the signing/PoW payload the blockchain engine mines and validates
// against.
package block

import (
	"time"

	"github.com/numichain/numichain/crypto"
	"github.com/numichain/numichain/serialize"
)

// HeaderVersion is the only header version this engine produces or
// accepts.
const HeaderVersion = 1

// Header is the portion of a Block that is hashed, signed, and mined
// against. Signature is excluded from both the signing payload and the
// PoW payload.
type Header struct {
	Version        uint32
	Height         uint64
	Timestamp      time.Time
	PreviousHash   crypto.Hash
	MerkleRoot     crypto.Hash
	Difficulty     uint32
	Nonce          uint64
	MinerPublicKey crypto.PublicKey
	Signature      *crypto.Signature
}

// SigningPayload is the stable serialization of every header field
// except Signature. It is both the message signed by the miner and the
// input to proof-of-work evaluation.
func (h *Header) SigningPayload() []byte {
	w := serialize.NewWriter()
	w.WriteUint32(h.Version)
	w.WriteUint64(h.Height)
	w.WriteTime(h.Timestamp)
	w.WriteFixedBytes(h.PreviousHash[:])
	w.WriteFixedBytes(h.MerkleRoot[:])
	w.WriteUint32(h.Difficulty)
	w.WriteUint64(h.Nonce)
	w.WriteBytes(h.MinerPublicKey)
	return w.Bytes()
}

// Hash is the content hash of the header's signing payload. It never
// includes the signature, so signing a header does not change its hash
// once the signature field itself is excluded from the commitment: the
// header hash is stable across sign().
func (h *Header) Hash() crypto.Hash {
	return crypto.ContentHash(h.SigningPayload())
}

// Sign signs the header's payload under keypair and stores the result.
func (h *Header) Sign(keypair *crypto.Keypair) error {
	sig, err := keypair.Sign(h.SigningPayload())
	if err != nil {
		return err
	}
	h.Signature = &sig
	return nil
}

// VerifySignature rebuilds the signing payload and checks it against
// Signature under MinerPublicKey. It returns false without panicking if
// the header is unsigned.
func (h *Header) VerifySignature() bool {
	if h.Signature == nil {
		return false
	}
	return crypto.Verify(h.SigningPayload(), *h.Signature, h.MinerPublicKey)
}
