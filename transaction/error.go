// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import "fmt"

// ErrorCode identifies a kind of rule violation a Transaction can fail.
type ErrorCode int

const (
	// ErrFromSize indicates the From public key is not exactly
	// crypto.PublicKeySize bytes.
	ErrFromSize ErrorCode = iota
	// ErrReservedKind indicates a ContractDeploy/ContractCall
	// transaction, which this engine does not execute.
	ErrReservedKind
	// ErrTransferAmountZero indicates a Transfer with amount == 0.
	ErrTransferAmountZero
	// ErrTransferToSize indicates an empty or over-long recipient key.
	ErrTransferToSize
	// ErrMemoTooLong indicates a memo over 256 bytes or containing
	// non-ASCII bytes.
	ErrMemoTooLong
	// ErrMetadataTooLong indicates metadata over 1 KiB or containing
	// non-ASCII bytes.
	ErrMetadataTooLong
	// ErrRewardFeeNonzero indicates a MiningReward with a nonzero fee.
	ErrRewardFeeNonzero
	// ErrGasLimitNonzero indicates a nonzero gas limit on a Transfer or
	// MiningReward.
	ErrGasLimitNonzero
	// ErrFeeTooLow indicates a fee below the size-derived minimum.
	ErrFeeTooLow
	// ErrFeeTooHigh indicates a fee above the hard cap.
	ErrFeeTooHigh
	// ErrTimestampWindow indicates timestamp/valid_until outside the
	// allowed window (future skew, non-positive validity, or a validity
	// period over one hour).
	ErrTimestampWindow
	// ErrTransactionExpired indicates valid_until has passed.
	ErrTransactionExpired
	// ErrSizeTooLarge indicates the transaction exceeds MaxTransactionSize.
	ErrSizeTooLarge
	// ErrMissingSignature indicates validate() was called before sign().
	ErrMissingSignature
	// ErrInvalidSignature indicates the signature does not verify under
	// From.
	ErrInvalidSignature
	// ErrInvalidNonce indicates nonce != account nonce + 1.
	ErrInvalidNonce
	// ErrInsufficientBalance indicates required_balance() exceeds the
	// account's available balance.
	ErrInsufficientBalance
)

var errorCodeStrings = map[ErrorCode]string{
	ErrFromSize:             "from public key has the wrong size",
	ErrReservedKind:         "reserved transaction kind is not executable",
	ErrTransferAmountZero:   "transfer amount must be positive",
	ErrTransferToSize:       "transfer recipient key has invalid size",
	ErrMemoTooLong:          "memo exceeds 256 ASCII bytes",
	ErrMetadataTooLong:      "metadata exceeds 1 KiB of ASCII bytes",
	ErrRewardFeeNonzero:     "mining reward fee must be zero",
	ErrGasLimitNonzero:      "gas limit must be zero for this kind",
	ErrFeeTooLow:            "fee below required minimum",
	ErrFeeTooHigh:           "fee above hard cap",
	ErrTimestampWindow:      "timestamp outside allowed window",
	ErrTransactionExpired:   "transaction has expired",
	ErrSizeTooLarge:         "transaction exceeds maximum size",
	ErrMissingSignature:     "transaction is not signed",
	ErrInvalidSignature:     "signature does not verify",
	ErrInvalidNonce:         "nonce does not match expected account nonce",
	ErrInsufficientBalance:  "balance insufficient for required amount",
}

// String returns a human-readable description of the error code.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("unknown error code %d", int(e))
}

// RuleError identifies a violation of a transaction validation rule.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	return e.Description
}

func ruleErrorf(code ErrorCode, format string, args ...interface{}) RuleError {
	return RuleError{ErrorCode: code, Description: fmt.Sprintf(format, args...)}
}

// IsErrorCode reports whether err is a RuleError with the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	rerr, ok := err.(RuleError)
	return ok && rerr.ErrorCode == code
}
