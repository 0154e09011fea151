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

package column

import "github.com/framegrid/framegrid/wire"

// pageSize is the fixed page size of a Full column's backing arena.
// Growth allocates a whole new page rather than reallocating a single
// contiguous slice, so previously observed slice headers into earlier
// pages stay valid.
const pageSize = 512

// FullColumn is an append-only typed vector, one kind per instance,
// backed by fixed-size pages. It is the only column kind that
// supports mutation; a ChunkedColumn is always read-only.
type FullColumn struct {
	kind Kind
	size int

	ints    [][]int64
	bools   [][]bool
	doubles [][]float64
	strings [][]string
}

// NewFullColumn creates an empty column of the given kind.
func NewFullColumn(kind Kind) *FullColumn {
	return &FullColumn{kind: kind}
}

func (c *FullColumn) Kind() Kind { return c.kind }
func (c *FullColumn) Len() int   { return c.size }

// IsLocal is always true for a Full column: it has no remote chunks.
func (c *FullColumn) IsLocal(chunk int) bool { return true }

func (c *FullColumn) pageIndex(i int) (page, offset int) {
	return i / pageSize, i % pageSize
}

func (c *FullColumn) growIfNeeded() {
	p, off := c.pageIndex(c.size)
	if off != 0 {
		return
	}
	switch c.kind {
	case KindInt:
		if p == len(c.ints) {
			c.ints = append(c.ints, make([]int64, pageSize))
		}
	case KindBool:
		if p == len(c.bools) {
			c.bools = append(c.bools, make([]bool, pageSize))
		}
	case KindDouble:
		if p == len(c.doubles) {
			c.doubles = append(c.doubles, make([]float64, pageSize))
		}
	case KindString:
		if p == len(c.strings) {
			c.strings = append(c.strings, make([]string, pageSize))
		}
	}
}

// PushBackInt appends v. c must be of KindInt.
func (c *FullColumn) PushBackInt(v int64) {
	c.growIfNeeded()
	p, off := c.pageIndex(c.size)
	c.ints[p][off] = v
	c.size++
}

// PushBackBool appends v. c must be of KindBool.
func (c *FullColumn) PushBackBool(v bool) {
	c.growIfNeeded()
	p, off := c.pageIndex(c.size)
	c.bools[p][off] = v
	c.size++
}

// PushBackDouble appends v. c must be of KindDouble.
func (c *FullColumn) PushBackDouble(v float64) {
	c.growIfNeeded()
	p, off := c.pageIndex(c.size)
	c.doubles[p][off] = v
	c.size++
}

// PushBackString appends v. c must be of KindString.
func (c *FullColumn) PushBackString(v string) {
	c.growIfNeeded()
	p, off := c.pageIndex(c.size)
	c.strings[p][off] = v
	c.size++
}

func (c *FullColumn) GetInt(i int) int64 {
	p, off := c.pageIndex(i)
	return c.ints[p][off]
}

func (c *FullColumn) GetBool(i int) bool {
	p, off := c.pageIndex(i)
	return c.bools[p][off]
}

func (c *FullColumn) GetDouble(i int) float64 {
	p, off := c.pageIndex(i)
	return c.doubles[p][off]
}

func (c *FullColumn) GetString(i int) string {
	p, off := c.pageIndex(i)
	return c.strings[p][off]
}

func (c *FullColumn) SetInt(i int, v int64) {
	p, off := c.pageIndex(i)
	c.ints[p][off] = v
}

func (c *FullColumn) SetBool(i int, v bool) {
	p, off := c.pageIndex(i)
	c.bools[p][off] = v
}

func (c *FullColumn) SetDouble(i int, v float64) {
	p, off := c.pageIndex(i)
	c.doubles[p][off] = v
}

func (c *FullColumn) SetString(i int, v string) {
	p, off := c.pageIndex(i)
	c.strings[p][off] = v
}

// SerializeChunk encodes the rows of chunk index idx (the slice
// [idx*ChunkSize, min((idx+1)*ChunkSize, Len())) ) into the wire's
// chunk-bytes layout: [u64 count][count x element], where element is
// a fixed 8 bytes for Int/Bool/Double and a (u64 len, bytes) pair for
// String. idx is usually 0, since ingestion keeps each in-memory
// FullColumn to at most one chunk's worth of rows; the parameter
// exists so callers with a larger in-memory column can still address
// an arbitrary chunk of it.
func (c *FullColumn) SerializeChunk(idx int) []byte {
	start := idx * ChunkSize
	end := start + ChunkSize
	if end > c.size {
		end = c.size
	}
	if start > end {
		start = end
	}
	count := end - start

	var b wire.Buffer
	b.PutUint64(uint64(count))
	switch c.kind {
	case KindInt:
		for i := start; i < end; i++ {
			b.PutInt64(c.GetInt(i))
		}
	case KindBool:
		for i := start; i < end; i++ {
			b.PutUint64(boolAsElement(c.GetBool(i)))
		}
	case KindDouble:
		for i := start; i < end; i++ {
			b.PutFloat64(c.GetDouble(i))
		}
	case KindString:
		for i := start; i < end; i++ {
			b.PutString(c.GetString(i))
		}
	}
	return b.Bytes()
}
