// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

// Fee schedule constants (spec.md §4.2, pinned from
// original_source/core/src/transaction.rs).
const (
	// BaseFee is the flat component of the minimum fee for any
	// transaction, regardless of size.
	BaseFee uint64 = 10_000

	// PerByteFee is the size-proportional component of the minimum fee.
	PerByteFee uint64 = 100

	// MinTotalFee is the hard floor under which no fee is accepted, even
	// for a transaction whose size-derived minimum would be lower.
	MinTotalFee uint64 = 1_000

	// MaxTotalFee is the hard cap no fee may exceed.
	MaxTotalFee uint64 = 1_000_000_000_000

	// MaxTransactionSize bounds the signing-payload size of any single
	// transaction, guarding against unbounded memo/metadata/init_data
	// fields.
	MaxTransactionSize = 1024 * 1024

	// MaxMemoLen is the maximum length, in ASCII bytes, of a Transfer
	// memo.
	MaxMemoLen = 256

	// MaxMetadataLen is the maximum length, in ASCII bytes, of the
	// transaction's optional metadata field.
	MaxMetadataLen = 1024

	// MaxTransferToLen bounds the recipient public key field. It is
	// generous relative to crypto.PublicKeySize so that validation
	// reports a specific, size-schedule-driven error rather than
	// silently truncating a too-long value.
	MaxTransferToLen = 10 * 1024

	// MaxValidityWindowSeconds is the longest allowed span, in seconds,
	// between timestamp and valid_until.
	MaxValidityWindowSeconds = 3600

	// MaxFutureSkewSeconds bounds how far into the future a
	// transaction's timestamp may be, relative to the validator's own
	// clock.
	MaxFutureSkewSeconds = 300
)

// MinFeeForSize returns the minimum fee required for a transaction whose
// signing-payload is sizeBytes long: base + size*per_byte, floored at
// MinTotalFee.
func MinFeeForSize(sizeBytes int) uint64 {
	fee := BaseFee + uint64(sizeBytes)*PerByteFee
	if fee < MinTotalFee {
		return MinTotalFee
	}
	return fee
}
