// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies the taxonomy of failures the engine can report,
// per spec.md §7.
type ErrorCode int

const (
	// ErrInvalidBlock is a structural or consensus violation of a
	// single block.
	ErrInvalidBlock ErrorCode = iota
	// ErrInvalidTransaction is a structural, signature, nonce,
	// balance, fee, or kind-specific transaction failure.
	ErrInvalidTransaction
	// ErrReorgTooDeep indicates a reorganization would disconnect more
	// blocks than Params.MaxReorgDepth allows.
	ErrReorgTooDeep
	// ErrStorageError indicates a failure from the storage
	// collaborator.
	ErrStorageError
	// ErrInternalInconsistency indicates a violated engine invariant:
	// inverting a non-executable transaction kind, or a ValidateChain
	// failure. It is logged at Criticalf and ends the failing
	// operation; the engine does not halt and still accepts later
	// blocks.
	ErrInternalInconsistency
)

func (e ErrorCode) String() string {
	switch e {
	case ErrInvalidBlock:
		return "InvalidBlock"
	case ErrInvalidTransaction:
		return "InvalidTransaction"
	case ErrReorgTooDeep:
		return "ReorgTooDeep"
	case ErrStorageError:
		return "StorageError"
	case ErrInternalInconsistency:
		return "InternalInconsistency"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(e))
	}
}

// RuleError identifies a violation the engine surfaces to its caller
// without mutating state.
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
