// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// Fixed sizes of the Dilithium3 quantum-resistant signature scheme, used
// throughout transaction and block validation to reject malformed keys
// and signatures before ever calling into the scheme itself.
const (
	PublicKeySize  = mode3.PublicKeySize
	PrivateKeySize = mode3.PrivateKeySize
	SignatureSize  = mode3.SignatureSize
)

// PublicKey is a Dilithium3 public key. Addresses in this system are
// public keys used verbatim; there is no separate derivation step.
type PublicKey []byte

// Signature is a detached Dilithium3 signature together with the
// information spec.md §3 requires to audit it: the public key that
// produced it, the hash it was computed over, and when it was made.
type Signature struct {
	Bytes       []byte
	PublicKey   PublicKey
	MessageHash Hash
	CreatedAt   time.Time
}

// Keypair is a Dilithium3 keypair. The secret key never leaves this
// struct's methods.
type Keypair struct {
	public []byte
	secret []byte
}

// GenerateKeypair produces a fresh Dilithium3 keypair using r as the
// source of randomness. Pass crypto/rand.Reader outside of tests.
func GenerateKeypair(r io.Reader) (*Keypair, error) {
	pk, sk, err := mode3.GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate keypair: %w", err)
	}
	pub := make([]byte, PublicKeySize)
	sec := make([]byte, PrivateKeySize)
	pk.Pack(pub)
	sk.Pack(sec)
	return &Keypair{public: pub, secret: sec}, nil
}

// PublicKey returns the keypair's public key.
func (k *Keypair) PublicKey() PublicKey {
	out := make([]byte, len(k.public))
	copy(out, k.public)
	return out
}

// Sign produces a detached signature over message itself, recording
// message's content hash alongside it.
func (k *Keypair) Sign(message []byte) (Signature, error) {
	return Sign(k.secret, message, k.public)
}

// Sign produces a detached Dilithium3 signature of message under secret,
// recording publicKey and the message hash alongside it. secret must be
// exactly PrivateKeySize bytes.
func Sign(secret, message, publicKey []byte) (Signature, error) {
	if len(secret) != PrivateKeySize {
		return Signature{}, fmt.Errorf("crypto: secret key is %d bytes, want %d", len(secret), PrivateKeySize)
	}
	var sk mode3.PrivateKey
	sk.Unpack(secret)

	sig := make([]byte, SignatureSize)
	mode3.SignTo(&sk, message, sig)

	pub := make([]byte, len(publicKey))
	copy(pub, publicKey)

	return Signature{
		Bytes:       sig,
		PublicKey:   pub,
		MessageHash: ContentHash(message),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Verify reports whether signature is a valid detached Dilithium3
// signature of message under publicKey. Verification runs in the time
// circl's mode3.Verify takes, which does not branch on the signature's
// byte contents.
func Verify(message []byte, signature Signature, publicKey []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature.Bytes) != SignatureSize {
		return false
	}
	if !ConstantTimeEq(signature.PublicKey, publicKey) {
		return false
	}

	var pk mode3.PublicKey
	pk.Unpack(publicKey)

	return mode3.Verify(&pk, message, signature.Bytes)
}

// GenerateRandomBytes returns n cryptographically secure random bytes.
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("crypto: read random bytes: %w", err)
	}
	return b, nil
}
