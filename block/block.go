// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"time"

	"github.com/numichain/numichain/crypto"
	"github.com/numichain/numichain/transaction"
)

// MaxFutureDrift bounds how far a header's timestamp may lie beyond the
// validator's own clock during structural validation.
const MaxFutureDrift = time.Hour

// Block pairs a Header with the transactions it commits to via
// Header.MerkleRoot.
type Block struct {
	Header       Header
	Transactions []*transaction.Transaction
}

// New constructs an unsigned, unmined block extending prev (nil for
// genesis) at difficulty, with transactions already in their intended
// order (coinbase first, for non-genesis blocks). MerkleRoot is computed
// over the transaction ids.
func New(prev *Header, difficulty uint32, minerPublicKey crypto.PublicKey, txs []*transaction.Transaction) *Block {
	height := uint64(0)
	previousHash := crypto.ZeroHash
	if prev != nil {
		height = prev.Height + 1
		previousHash = prev.Hash()
	}

	return &Block{
		Header: Header{
			Version:        HeaderVersion,
			Height:         height,
			Timestamp:      time.Now().UTC(),
			PreviousHash:   previousHash,
			MerkleRoot:     MerkleRoot(transactionIDs(txs)),
			Difficulty:     difficulty,
			MinerPublicKey: minerPublicKey,
		},
		Transactions: txs,
	}
}

// Hash is the block's identity: its header hash.
func (b *Block) Hash() crypto.Hash {
	return b.Header.Hash()
}

// Sign signs the block's header under keypair.
func (b *Block) Sign(keypair *crypto.Keypair) error {
	return b.Header.Sign(keypair)
}

// VerifySignature checks the header's signature under its miner public
// key.
func (b *Block) VerifySignature() bool {
	return b.Header.VerifySignature()
}

// IsGenesis reports whether this block is the chain's genesis block.
func (b *Block) IsGenesis() bool {
	return b.Header.Height == 0
}

// VerifyMerkleRoot reports whether Header.MerkleRoot matches the root
// recomputed over Transactions.
func (b *Block) VerifyMerkleRoot() bool {
	return b.Header.MerkleRoot.Equal(MerkleRoot(transactionIDs(b.Transactions)))
}

// Coinbase returns the block's first transaction, which for every
// non-genesis block must be a MiningReward, along with whether the
// block has any transactions at all.
func (b *Block) Coinbase() (*transaction.Transaction, bool) {
	if len(b.Transactions) == 0 {
		return nil, false
	}
	return b.Transactions[0], true
}

// TotalFees sums the fee of every non-reward transaction in the block.
func (b *Block) TotalFees() uint64 {
	var total uint64
	for _, tx := range b.Transactions {
		if tx.Kind == transaction.KindMiningReward {
			continue
		}
		total += tx.Fee
	}
	return total
}

// Validate performs the structural validation rules from spec.md §4.4:
// signature, linkage to prev, Merkle root, every transaction's
// signature, and timestamp skew. Chain-context rules (coinbase reward
// bound, balance, nonce sequencing) are the blockchain engine's
// responsibility, not this package's.
func (b *Block) Validate(prev *Header) error {
	if !b.VerifySignature() {
		return ruleErrorf(ErrBadSignature, "block signature does not verify under miner_public_key")
	}

	if prev != nil {
		prevHash := prev.Hash()
		if !b.Header.PreviousHash.Equal(prevHash) {
			return ruleErrorf(ErrBadPreviousHash, "previous_hash %s does not match expected %s", b.Header.PreviousHash, prevHash)
		}
		if b.Header.Height != prev.Height+1 {
			return ruleErrorf(ErrBadHeight, "height %d does not follow parent height %d", b.Header.Height, prev.Height)
		}
	} else if b.Header.Height != 0 {
		return ruleErrorf(ErrBadHeight, "genesis height must be 0, got %d", b.Header.Height)
	}

	if !b.VerifyMerkleRoot() {
		log.Warnf("block %s merkle_root mismatch", b.Hash())
		return ruleErrorf(ErrBadMerkleRoot, "merkle_root does not match computed root over transaction ids")
	}

	for _, tx := range b.Transactions {
		if !tx.VerifySignature() {
			return ruleErrorf(ErrBadTransactionSignature, "transaction %s signature does not verify", tx.ID)
		}
	}

	// Only future drift is bounded: a block may commit to a timestamp
	// arbitrarily far in the past (genesis in particular is routinely
	// pinned to a fixed historical instant for reproducibility), but not
	// one the validator's own clock hasn't reached yet.
	if b.Header.Timestamp.Sub(time.Now().UTC()) > MaxFutureDrift {
		return ruleErrorf(ErrBadTimestamp, "header timestamp %s is more than %s in the future", b.Header.Timestamp, MaxFutureDrift)
	}

	return nil
}

func transactionIDs(txs []*transaction.Transaction) []crypto.Hash {
	ids := make([]crypto.Hash, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return ids
}
