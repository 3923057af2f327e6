// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package serialize provides the fixed little-endian, length-prefixed
// binary encoding used to build the deterministic signing payloads for
// transactions and block headers (spec.md §4.2, §4.4). Every
// implementation of this protocol must produce byte-identical output for
// the same logical record, so the encoding here never varies with
// platform, map iteration order, or struct field order — callers choose
// the field order explicitly by the sequence of Write calls they make.
package serialize

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// MaxByteFieldLen bounds any single length-prefixed byte field, guarding
// against a corrupt or hostile length prefix requesting an absurd
// allocation when decoding.
const MaxByteFieldLen = 16 * 1024 * 1024

// Writer accumulates a deterministic little-endian encoding. The zero
// value is ready to use.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns a ready-to-use Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

// WriteUint32 appends v as 4 little-endian bytes.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteUint64 appends v as 8 little-endian bytes.
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteTime appends t as a little-endian Unix nanosecond timestamp in
// UTC, giving every implementation of this format the same resolution
// and timezone regardless of how t was constructed.
func (w *Writer) WriteTime(t time.Time) {
	w.WriteUint64(uint64(t.UTC().UnixNano()))
}

// WriteBytes appends a 4-byte little-endian length prefix followed by
// data, so the field is self-delimiting regardless of what follows it.
func (w *Writer) WriteBytes(data []byte) {
	w.WriteUint32(uint32(len(data)))
	w.buf.Write(data)
}

// WriteFixedBytes appends data with no length prefix; only use this for
// fields whose length is fixed and already known to every reader (such
// as a 32-byte hash).
func (w *Writer) WriteFixedBytes(data []byte) {
	w.buf.Write(data)
}

// WriteOptionalBytes appends a presence byte (1/0) followed by the
// length-prefixed payload when present. This lets optional fields
// (memo, signature, metadata) serialize deterministically whether or
// not they are set.
func (w *Writer) WriteOptionalBytes(data []byte, present bool) {
	if !present {
		w.WriteUint8(0)
		return
	}
	w.WriteUint8(1)
	w.WriteBytes(data)
}

// Reader decodes the encoding produced by Writer.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("serialize: unexpected end of input reading %d bytes at offset %d", n, r.pos)
	}
	return nil
}

// ReadUint8 decodes a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// ReadUint32 decodes 4 little-endian bytes.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadUint64 decodes 8 little-endian bytes.
func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadTime decodes a timestamp written by WriteTime.
func (r *Reader) ReadTime() (time.Time, error) {
	ns, err := r.ReadUint64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, int64(ns)).UTC(), nil
}

// ReadBytes decodes a length-prefixed byte field written by WriteBytes.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if n > MaxByteFieldLen {
		return nil, fmt.Errorf("serialize: length-prefixed field of %d bytes exceeds maximum %d", n, MaxByteFieldLen)
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

// ReadFixedBytes decodes n raw bytes with no length prefix.
func (r *Reader) ReadFixedBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// ReadOptionalBytes decodes a field written by WriteOptionalBytes.
func (r *Reader) ReadOptionalBytes() ([]byte, bool, error) {
	present, err := r.ReadUint8()
	if err != nil {
		return nil, false, err
	}
	if present == 0 {
		return nil, false, nil
	}
	data, err := r.ReadBytes()
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Remaining reports how many bytes are left to read.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}
