// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import "fmt"

// ErrorCode identifies a structural rule a Block can fail.
type ErrorCode int

const (
	// ErrBadSignature indicates the block signature does not verify
	// under the header's miner_public_key.
	ErrBadSignature ErrorCode = iota
	// ErrBadPreviousHash indicates header.previous_hash does not match
	// the parent block's hash.
	ErrBadPreviousHash
	// ErrBadHeight indicates header.height is not parent.height+1 (or,
	// for genesis, not 0).
	ErrBadHeight
	// ErrBadMerkleRoot indicates header.merkle_root does not match the
	// root recomputed over the block's transaction ids.
	ErrBadMerkleRoot
	// ErrBadTransactionSignature indicates a transaction within the
	// block does not verify under its own from key.
	ErrBadTransactionSignature
	// ErrBadTimestamp indicates the header timestamp is more than
	// MaxFutureDrift away from the validator's clock.
	ErrBadTimestamp
)

var errorCodeStrings = map[ErrorCode]string{
	ErrBadSignature:             "block signature verification failed",
	ErrBadPreviousHash:          "previous_hash does not match parent",
	ErrBadHeight:                "height does not follow parent",
	ErrBadMerkleRoot:            "merkle_root does not match computed root",
	ErrBadTransactionSignature:  "a transaction signature failed to verify",
	ErrBadTimestamp:             "timestamp outside allowed drift",
}

// String returns a human-readable description of the error code.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("unknown error code %d", int(e))
}

// RuleError identifies a violation of a block structural validation
// rule.
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
