// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transaction implements the typed transaction record, its
// deterministic signing payload, and the structural/contextual validation
// rules a transaction must satisfy before it may be admitted to the
// mempool or applied by the blockchain engine.
package transaction

import (
	"math"
	"time"
	"unicode"

	"github.com/numichain/numichain/crypto"
	"github.com/numichain/numichain/serialize"
)

// Kind identifies the tagged variant a Transaction carries. Exactly one
// of the per-kind data fields on Transaction is populated, selected by
// Kind.
type Kind uint8

const (
	// KindTransfer moves value from From to Transfer.To.
	KindTransfer Kind = iota
	// KindMiningReward credits the block subsidy and fees to a miner.
	// It is produced only by the mining pipeline, never by a user.
	KindMiningReward
	// KindContractDeploy is reserved for future smart-contract support
	// and is rejected by every validator in this engine.
	KindContractDeploy
	// KindContractCall is reserved for future smart-contract support
	// and is rejected by every validator in this engine.
	KindContractCall
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTransfer:
		return "Transfer"
	case KindMiningReward:
		return "MiningReward"
	case KindContractDeploy:
		return "ContractDeploy"
	case KindContractCall:
		return "ContractCall"
	default:
		return "Unknown"
	}
}

// TransferData is the payload of a KindTransfer transaction.
type TransferData struct {
	To     crypto.PublicKey
	Amount uint64
	Memo   string
}

// MiningRewardData is the payload of a KindMiningReward transaction.
// Pool optionally names a pool operator; it is recorded in the signed
// payload only, and the engine neither credits nor interprets it.
type MiningRewardData struct {
	BlockHeight uint64
	Amount      uint64
	Pool        crypto.PublicKey
}

// ContractDeployData is the reserved payload of a KindContractDeploy
// transaction. No validator in this engine executes it.
type ContractDeployData struct {
	InitData []byte
}

// ContractCallData is the reserved payload of a KindContractCall
// transaction. No validator in this engine executes it.
type ContractCallData struct {
	Target crypto.PublicKey
	Input  []byte
}

// Transaction is the engine's single record type for every kind of
// state-mutating operation. Only the field matching Kind is populated.
type Transaction struct {
	ID         crypto.Hash
	From       crypto.PublicKey
	Kind       Kind
	Transfer   *TransferData
	Reward     *MiningRewardData
	Deploy     *ContractDeployData
	Call       *ContractCallData
	Nonce      uint64
	Fee        uint64
	GasLimit   uint64
	Timestamp  time.Time
	ValidUntil time.Time
	Metadata   string
	Signature  *crypto.Signature
}

// New constructs an unsigned transaction of the given kind from from,
// with nonce, filling timestamp, valid_until = timestamp + 1h, and the
// minimum fee for the transaction's serialized size. Callers set the
// kind-specific payload field before calling Sign.
func New(from crypto.PublicKey, kind Kind, nonce uint64) *Transaction {
	now := time.Now().UTC()
	tx := &Transaction{
		From:       from,
		Kind:       kind,
		Nonce:      nonce,
		Timestamp:  now,
		ValidUntil: now.Add(time.Hour),
	}
	tx.Fee = MinFeeForSize(len(tx.signingPayloadBytes()))
	return tx
}

// NewTransfer constructs an unsigned Transfer transaction.
func NewTransfer(from, to crypto.PublicKey, amount uint64, nonce uint64, memo string) *Transaction {
	tx := New(from, KindTransfer, nonce)
	tx.Transfer = &TransferData{To: to, Amount: amount, Memo: memo}
	tx.Fee = MinFeeForSize(len(tx.signingPayloadBytes()))
	return tx
}

// NewMiningReward constructs an unsigned MiningReward transaction. Its
// fee is always zero, regardless of the size-derived minimum fee schedule
// that applies to every other kind.
func NewMiningReward(miner crypto.PublicKey, height, amount uint64, pool crypto.PublicKey) *Transaction {
	tx := New(miner, KindMiningReward, 0)
	tx.Reward = &MiningRewardData{BlockHeight: height, Amount: amount, Pool: pool}
	tx.Fee = 0
	return tx
}

// Sign validates the transaction's structure, signs the signing payload
// under keypair, stores the resulting signature, and recomputes ID over
// the full serialization so that id commits to the signature.
func (tx *Transaction) Sign(keypair *crypto.Keypair) error {
	if err := tx.ValidateStructure(); err != nil {
		return err
	}
	sig, err := keypair.Sign(tx.signingPayloadBytes())
	if err != nil {
		return err
	}
	tx.Signature = &sig
	tx.ID = crypto.ContentHash(tx.fullSerializationBytes())
	return nil
}

// VerifySignature recomputes the signing payload and checks Signature
// against it under From. It returns false, without panicking, if the
// transaction is unsigned.
func (tx *Transaction) VerifySignature() bool {
	if tx.Signature == nil {
		return false
	}
	return crypto.Verify(tx.signingPayloadBytes(), *tx.Signature, tx.From)
}

// RequiredBalance is the amount that must be available in the sender's
// account for this transaction to be admissible: amount+fee for
// Transfer, fee alone for the reserved contract kinds, and 0 for
// MiningReward (which credits rather than debits the sender).
func (tx *Transaction) RequiredBalance() uint64 {
	switch tx.Kind {
	case KindTransfer:
		if tx.Transfer == nil {
			return tx.Fee
		}
		return saturatingAdd(tx.Transfer.Amount, tx.Fee)
	case KindMiningReward:
		return 0
	default:
		return tx.Fee
	}
}

// PriorityScore orders transactions within the mempool: mining rewards
// always sort first via the maximal score, every other kind sorts by
// fee.
func (tx *Transaction) PriorityScore() uint64 {
	if tx.Kind == KindMiningReward {
		return math.MaxUint64
	}
	return tx.Fee
}

// ValidateStructure enforces the rules that do not depend on chain
// context: size, per-kind field constraints, fee bounds, and the
// timestamp window. It does not check the signature or account state.
func (tx *Transaction) ValidateStructure() error {
	if len(tx.From) != crypto.PublicKeySize {
		return ruleErrorf(ErrFromSize, "from is %d bytes, want %d", len(tx.From), crypto.PublicKeySize)
	}

	switch tx.Kind {
	case KindTransfer:
		if err := tx.validateTransfer(); err != nil {
			return err
		}
	case KindMiningReward:
		if err := tx.validateReward(); err != nil {
			return err
		}
	case KindContractDeploy, KindContractCall:
		log.Debugf("rejecting reserved transaction kind %s", tx.Kind)
		return ruleErrorf(ErrReservedKind, "transaction kind %s is not executable", tx.Kind)
	default:
		return ruleErrorf(ErrReservedKind, "unknown transaction kind %d", tx.Kind)
	}

	if tx.GasLimit != 0 {
		return ruleErrorf(ErrGasLimitNonzero, "gas limit must be zero, got %d", tx.GasLimit)
	}

	if len(tx.Metadata) > MaxMetadataLen || !isASCII(tx.Metadata) {
		return ruleErrorf(ErrMetadataTooLong, "metadata is %d bytes or contains non-ASCII bytes", len(tx.Metadata))
	}

	if err := tx.validateTimestampWindow(); err != nil {
		return err
	}

	payloadLen := len(tx.signingPayloadBytes())
	if payloadLen > MaxTransactionSize {
		return ruleErrorf(ErrSizeTooLarge, "transaction is %d bytes, exceeds maximum %d", payloadLen, MaxTransactionSize)
	}

	if tx.Kind == KindMiningReward {
		if tx.Fee != 0 {
			return ruleErrorf(ErrRewardFeeNonzero, "mining reward fee must be zero, got %d", tx.Fee)
		}
		return nil
	}

	minFee := MinFeeForSize(payloadLen)
	if tx.Fee < minFee {
		return ruleErrorf(ErrFeeTooLow, "fee %d below minimum %d for %d-byte transaction", tx.Fee, minFee, payloadLen)
	}
	if tx.Fee > MaxTotalFee {
		return ruleErrorf(ErrFeeTooHigh, "fee %d exceeds maximum %d", tx.Fee, MaxTotalFee)
	}

	return nil
}

func (tx *Transaction) validateTransfer() error {
	if tx.Transfer == nil {
		return ruleErrorf(ErrTransferAmountZero, "transfer transaction is missing its transfer data")
	}
	if tx.Transfer.Amount == 0 {
		return ruleErrorf(ErrTransferAmountZero, "transfer amount must be positive")
	}
	if len(tx.Transfer.To) == 0 || len(tx.Transfer.To) > MaxTransferToLen {
		return ruleErrorf(ErrTransferToSize, "transfer recipient is %d bytes", len(tx.Transfer.To))
	}
	if len(tx.Transfer.Memo) > MaxMemoLen || !isASCII(tx.Transfer.Memo) {
		return ruleErrorf(ErrMemoTooLong, "memo is %d bytes or contains non-ASCII bytes", len(tx.Transfer.Memo))
	}
	return nil
}

func (tx *Transaction) validateReward() error {
	if tx.Reward == nil {
		return ruleErrorf(ErrRewardFeeNonzero, "mining reward transaction is missing its reward data")
	}
	return nil
}

func (tx *Transaction) validateTimestampWindow() error {
	if !tx.ValidUntil.After(tx.Timestamp) {
		return ruleErrorf(ErrTimestampWindow, "valid_until must be after timestamp")
	}
	if tx.ValidUntil.Sub(tx.Timestamp) > MaxValidityWindowSeconds*time.Second {
		return ruleErrorf(ErrTimestampWindow, "validity window exceeds %d seconds", MaxValidityWindowSeconds)
	}
	if tx.Timestamp.After(time.Now().UTC().Add(MaxFutureSkewSeconds * time.Second)) {
		return ruleErrorf(ErrTimestampWindow, "timestamp is more than %d seconds in the future", MaxFutureSkewSeconds)
	}
	return nil
}

// Validate performs full contextual validation given the sender's
// current account balance and nonce: structural validation, signature
// verification, nonce sequencing (skipped for MiningReward, which is
// not sequenced per account), and balance sufficiency.
func (tx *Transaction) Validate(currentBalance, currentNonce uint64) error {
	if err := tx.ValidateStructure(); err != nil {
		return err
	}
	if tx.Signature == nil {
		return ruleErrorf(ErrMissingSignature, "transaction is not signed")
	}
	if !tx.VerifySignature() {
		return ruleErrorf(ErrInvalidSignature, "signature does not verify under from")
	}
	if time.Now().UTC().After(tx.ValidUntil) {
		return ruleErrorf(ErrTransactionExpired, "transaction expired at %s", tx.ValidUntil)
	}

	if tx.Kind != KindMiningReward {
		expected := currentNonce + 1
		if tx.Nonce != expected {
			return ruleErrorf(ErrInvalidNonce, "nonce %d does not match expected %d", tx.Nonce, expected)
		}
	}

	if required := tx.RequiredBalance(); required > currentBalance {
		return ruleErrorf(ErrInsufficientBalance, "requires %d, have %d", required, currentBalance)
	}

	return nil
}

// SigningPayloadForFeeRate returns the same bytes VerifySignature checks
// the signature against: the signing payload excluding signature and
// id. The mempool sizes transactions for fee-rate purposes against this
// payload rather than the full serialization, so fee rate does not
// depend on the size of the signature attached.
func (tx *Transaction) SigningPayloadForFeeRate() []byte {
	return tx.signingPayloadBytes()
}

// signingPayloadBytes is the stable serialization of every field except
// Signature and ID: the message that is signed and, for MiningReward,
// included verbatim (there is no separate PoW payload at the
// transaction level).
func (tx *Transaction) signingPayloadBytes() []byte {
	w := serialize.NewWriter()
	w.WriteUint8(uint8(tx.Kind))
	w.WriteBytes(tx.From)
	w.WriteUint64(tx.Nonce)
	w.WriteUint64(tx.Fee)
	w.WriteUint64(tx.GasLimit)
	w.WriteTime(tx.Timestamp)
	w.WriteTime(tx.ValidUntil)
	w.WriteBytes([]byte(tx.Metadata))

	switch tx.Kind {
	case KindTransfer:
		if tx.Transfer != nil {
			w.WriteBytes(tx.Transfer.To)
			w.WriteUint64(tx.Transfer.Amount)
			w.WriteBytes([]byte(tx.Transfer.Memo))
		}
	case KindMiningReward:
		if tx.Reward != nil {
			w.WriteUint64(tx.Reward.BlockHeight)
			w.WriteUint64(tx.Reward.Amount)
			w.WriteOptionalBytes(tx.Reward.Pool, len(tx.Reward.Pool) > 0)
		}
	case KindContractDeploy:
		if tx.Deploy != nil {
			w.WriteBytes(tx.Deploy.InitData)
		}
	case KindContractCall:
		if tx.Call != nil {
			w.WriteBytes(tx.Call.Target)
			w.WriteBytes(tx.Call.Input)
		}
	}

	return w.Bytes()
}

// fullSerializationBytes is the signing payload with the signature
// appended, the input to the id commitment once the transaction is
// signed.
func (tx *Transaction) fullSerializationBytes() []byte {
	w := serialize.NewWriter()
	w.WriteFixedBytes(tx.signingPayloadBytes())
	if tx.Signature != nil {
		w.WriteOptionalBytes(tx.Signature.Bytes, true)
	} else {
		w.WriteOptionalBytes(nil, false)
	}
	return w.Bytes()
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return math.MaxUint64
	}
	return sum
}
