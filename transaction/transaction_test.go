// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/numichain/numichain/crypto"
)

func mustKeypair(t *testing.T) *crypto.Keypair {
	t.Helper()
	kp, err := crypto.GenerateKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return kp
}

func TestSignAndVerifySignature(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	tx := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 1_000_000, 1, "hello")
	if err := tx.Sign(sender); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if tx.ID.IsZero() {
		t.Fatal("signed transaction has zero id")
	}
	if !tx.VerifySignature() {
		t.Fatal("VerifySignature returned false for a correctly signed transaction")
	}

	// Tampering with a signed field must invalidate the signature.
	tx.Transfer.Amount++
	if tx.VerifySignature() {
		t.Fatal("VerifySignature returned true after the transfer amount was modified")
	}
}

func TestVerifySignatureUnsigned(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	tx := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 1, 1, "")
	if tx.VerifySignature() {
		t.Fatal("VerifySignature returned true for an unsigned transaction")
	}
}

func TestIDCommitsToSignature(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	tx := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 1, 1, "")
	unsignedPayload := tx.signingPayloadBytes()

	if err := tx.Sign(sender); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	idOverPayloadOnly := crypto.ContentHash(unsignedPayload)
	if tx.ID.Equal(idOverPayloadOnly) {
		t.Fatal("id does not commit to the signature")
	}
}

func TestRequiredBalance(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	transfer := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 500, 1, "")
	if got, want := transfer.RequiredBalance(), transfer.Transfer.Amount+transfer.Fee; got != want {
		t.Errorf("RequiredBalance() = %d, want %d", got, want)
	}

	reward := NewMiningReward(sender.PublicKey(), 1, 50_000_000_000, nil)
	if got := reward.RequiredBalance(); got != 0 {
		t.Errorf("RequiredBalance() for a mining reward = %d, want 0", got)
	}
}

func TestPriorityScore(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	transfer := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 500, 1, "")
	if got := transfer.PriorityScore(); got != transfer.Fee {
		t.Errorf("PriorityScore() = %d, want %d", got, transfer.Fee)
	}

	reward := NewMiningReward(sender.PublicKey(), 1, 50_000_000_000, nil)
	if got := reward.PriorityScore(); got != ^uint64(0) {
		t.Errorf("PriorityScore() for a mining reward = %d, want max uint64", got)
	}
}

func TestValidateStructureRejectsZeroAmountTransfer(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	tx := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 0, 1, "")
	err := tx.ValidateStructure()
	if !IsErrorCode(err, ErrTransferAmountZero) {
		t.Fatalf("ValidateStructure() = %v, want ErrTransferAmountZero", err)
	}
}

func TestValidateStructureRejectsReservedKinds(t *testing.T) {
	sender := mustKeypair(t)

	tx := New(sender.PublicKey(), KindContractDeploy, 1)
	tx.Deploy = &ContractDeployData{InitData: []byte("anything")}
	err := tx.ValidateStructure()
	if !IsErrorCode(err, ErrReservedKind) {
		t.Fatalf("ValidateStructure() = %v, want ErrReservedKind", err)
	}
}

func TestValidateStructureRejectsLowFee(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	tx := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 1, 1, "")
	tx.Fee = 1
	err := tx.ValidateStructure()
	if !IsErrorCode(err, ErrFeeTooLow) {
		t.Fatalf("ValidateStructure() = %v, want ErrFeeTooLow", err)
	}
}

func TestValidateStructureRejectsNonzeroRewardFee(t *testing.T) {
	sender := mustKeypair(t)

	tx := NewMiningReward(sender.PublicKey(), 1, 50_000_000_000, nil)
	tx.Fee = 1
	err := tx.ValidateStructure()
	if !IsErrorCode(err, ErrRewardFeeNonzero) {
		t.Fatalf("ValidateStructure() = %v, want ErrRewardFeeNonzero", err)
	}
}

func TestValidateStructureRejectsFutureTimestamp(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	tx := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 1, 1, "")
	tx.Timestamp = time.Now().UTC().Add(time.Hour)
	tx.ValidUntil = tx.Timestamp.Add(time.Hour)
	err := tx.ValidateStructure()
	if !IsErrorCode(err, ErrTimestampWindow) {
		t.Fatalf("ValidateStructure() = %v, want ErrTimestampWindow", err)
	}
}

func TestValidateNonceSequencing(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	tx := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 1, 5, "")
	if err := tx.Sign(sender); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// currentNonce=0 expects nonce=1; this transaction carries nonce=5.
	err := tx.Validate(tx.RequiredBalance(), 0)
	if !IsErrorCode(err, ErrInvalidNonce) {
		t.Fatalf("Validate() = %v, want ErrInvalidNonce", err)
	}
}

func TestValidateMiningRewardSkipsNonceSequencing(t *testing.T) {
	sender := mustKeypair(t)

	tx := NewMiningReward(sender.PublicKey(), 1, 50_000_000_000, nil)
	if err := tx.Sign(sender); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// A mining reward's nonce is never sequenced against the account,
	// regardless of the account's current nonce.
	if err := tx.Validate(0, 999); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateInsufficientBalance(t *testing.T) {
	sender := mustKeypair(t)
	recipient := mustKeypair(t)

	tx := NewTransfer(sender.PublicKey(), recipient.PublicKey(), 1_000_000, 1, "")
	if err := tx.Sign(sender); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	err := tx.Validate(tx.RequiredBalance()-1, 0)
	if !IsErrorCode(err, ErrInsufficientBalance) {
		t.Fatalf("Validate() = %v, want ErrInsufficientBalance", err)
	}
}

func TestMinFeeForSize(t *testing.T) {
	if got, want := MinFeeForSize(0), BaseFee; got != want {
		t.Errorf("MinFeeForSize(0) = %d, want %d", got, want)
	}

	size := 100
	if got, want := MinFeeForSize(size), BaseFee+uint64(size)*PerByteFee; got != want {
		t.Errorf("MinFeeForSize(%d) = %d, want %d", size, got, want)
	}
}
