// Copyright (c) 2014-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "fmt"

// ResultCode is the failure taxonomy spec.md §4.3 requires admission to
// report to its caller.
type ResultCode int

const (
	// Valid indicates the transaction was admitted.
	Valid ResultCode = iota
	// InvalidSignature indicates verify_signature() failed.
	InvalidSignature
	// InvalidNonce indicates the transaction's nonce was not exactly
	// one greater than the sender's highest admitted nonce.
	InvalidNonce
	// InsufficientBalance indicates required_balance() exceeded the
	// sender's known balance.
	InsufficientBalance
	// DuplicateTransaction indicates the transaction id was already
	// present in the pool.
	DuplicateTransaction
	// TransactionTooLarge indicates the transaction's structural
	// validation rejected it as oversized.
	TransactionTooLarge
	// FeeTooLow indicates the transaction's fee rate was below the
	// dynamic minimum and eviction could not free enough space.
	FeeTooLow
	// AccountSpamming indicates the sender exceeded
	// Config.MaxSubmissionsPerHour.
	AccountSpamming
	// TransactionExpired indicates valid_until had already passed.
	TransactionExpired
	// Rejected is a catch-all for a structural validation failure not
	// covered by a more specific code above.
	Rejected
)

func (c ResultCode) String() string {
	switch c {
	case Valid:
		return "Valid"
	case InvalidSignature:
		return "InvalidSignature"
	case InvalidNonce:
		return "InvalidNonce"
	case InsufficientBalance:
		return "InsufficientBalance"
	case DuplicateTransaction:
		return "DuplicateTransaction"
	case TransactionTooLarge:
		return "TransactionTooLarge"
	case FeeTooLow:
		return "FeeTooLow"
	case AccountSpamming:
		return "AccountSpamming"
	case TransactionExpired:
		return "TransactionExpired"
	case Rejected:
		return "Rejected"
	default:
		return fmt.Sprintf("ResultCode(%d)", int(c))
	}
}

// ValidationResult is the outcome of an admission attempt.
type ValidationResult struct {
	Code        ResultCode
	Description string

	// ExpectedNonce/GotNonce are populated for InvalidNonce.
	ExpectedNonce uint64
	GotNonce      uint64

	// RequiredBalance/AvailableBalance are populated for
	// InsufficientBalance.
	RequiredBalance  uint64
	AvailableBalance uint64

	// MinimumFee/GotFee are populated for FeeTooLow.
	MinimumFee uint64
	GotFee     uint64
}

// Error satisfies the error interface so a ValidationResult can be
// returned and compared like any other error.
func (r ValidationResult) Error() string {
	return r.Description
}

// IsValid reports whether the result represents successful admission.
func (r ValidationResult) IsValid() bool {
	return r.Code == Valid
}

func validResult() ValidationResult {
	return ValidationResult{Code: Valid, Description: "admitted"}
}

func rejectf(code ResultCode, format string, args ...interface{}) ValidationResult {
	return ValidationResult{Code: code, Description: fmt.Sprintf(format, args...)}
}
