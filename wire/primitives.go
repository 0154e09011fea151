// Copyright (C) 2024 Framegrid Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Buffer is an append-only byte buffer with little-endian primitive
// writers, in the spirit of the teacher's ion.Buffer: callers build up
// a message in one pass and then hand Bytes() to a Writer.
type Buffer struct {
	buf []byte
}

func (b *Buffer) Reset() { b.buf = b.buf[:0] }

func (b *Buffer) Bytes() []byte { return b.buf }

func (b *Buffer) Size() int { return len(b.buf) }

func (b *Buffer) PutUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Buffer) PutUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Buffer) PutUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Buffer) PutInt64(v int64) { b.PutUint64(uint64(v)) }

func (b *Buffer) PutFloat64(v float64) { b.PutUint64(math.Float64bits(v)) }

func (b *Buffer) PutBool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

func (b *Buffer) PutByte(v byte) { b.buf = append(b.buf, v) }

// PutString writes a (u64 length, bytes) pair with no trailing NUL.
func (b *Buffer) PutString(s string) {
	b.PutUint64(uint64(len(s)))
	b.buf = append(b.buf, s...)
}

// PutBytes writes a raw byte run with no length prefix; used when
// the length is implied by the surrounding frame.
func (b *Buffer) PutBytes(p []byte) { b.buf = append(b.buf, p...) }

// PutKey writes a Key as (string name, u32 node).
func (b *Buffer) PutKey(k Key) {
	b.PutString(k.Name)
	b.PutUint32(uint32(k.Node))
}

// Reader walks a byte slice, consuming fixed-width little-endian
// primitives. It never panics on short input; each method returns
// ErrBadMessage instead.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Remaining reports how many bytes are left unconsumed.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// Rest returns every remaining unconsumed byte.
func (r *Reader) Rest() []byte { return r.buf[r.off:] }

func (r *Reader) need(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("wire: need %d bytes, have %d: %w", n, r.Remaining(), ErrBadMessage)
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *Reader) Uint16() (uint16, error) {
	b, err := r.need(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) Uint32() (uint32, error) {
	b, err := r.need(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) Uint64() (uint64, error) {
	b, err := r.need(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

func (r *Reader) Float64() (float64, error) {
	v, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (r *Reader) Bool() (bool, error) {
	b, err := r.need(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *Reader) Byte() (byte, error) {
	b, err := r.need(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) String() (string, error) {
	n, err := r.Uint64()
	if err != nil {
		return "", err
	}
	b, err := r.need(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) Bytes(n int) ([]byte, error) { return r.need(n) }

// Key is a (name, node) pair identifying an entry in some node's
// byte-store. Name is opaque; Node is the home of the key. Keys
// are values and are freely copied.
type Key struct {
	Name string
	Node uint32
}

func (k Key) String() string { return fmt.Sprintf("%s@%d", k.Name, k.Node) }

func (r *Reader) Key() (Key, error) {
	name, err := r.String()
	if err != nil {
		return Key{}, err
	}
	node, err := r.Uint32()
	if err != nil {
		return Key{}, err
	}
	return Key{Name: name, Node: node}, nil
}
