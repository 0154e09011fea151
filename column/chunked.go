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

import (
	"fmt"
	"sync"

	"github.com/framegrid/framegrid/wire"
)

// Fetcher is the byte-store capability a ChunkedColumn needs: a
// blocking fetch by key. bytestore.Proxy satisfies this.
type Fetcher interface {
	WaitAndGet(key wire.Key) ([]byte, error)
}

// ChunkedColumn is a read-only, lazily-faulted-in remote column. It
// owns chunkKeys and totalLength for its lifetime; writes are no-ops
// (materializing a remote column for append is a later feature, not
// this one).
type ChunkedColumn struct {
	kind      Kind
	totalLen  int
	chunkKeys []wire.Key
	selfNode  uint32
	fetcher   Fetcher
	logf      func(format string, args ...interface{})

	mu     sync.Mutex
	once   []sync.Once
	chunks []*decodedChunk
	errs   []error
}

// NewChunkedColumn constructs a lazy column over chunkKeys, owning
// them for its lifetime. selfNode is used only by IsLocal.
func NewChunkedColumn(kind Kind, totalLen int, chunkKeys []wire.Key, selfNode uint32, fetcher Fetcher) *ChunkedColumn {
	return &ChunkedColumn{
		kind:      kind,
		totalLen:  totalLen,
		chunkKeys: chunkKeys,
		selfNode:  selfNode,
		fetcher:   fetcher,
		once:      make([]sync.Once, len(chunkKeys)),
		chunks:    make([]*decodedChunk, len(chunkKeys)),
		errs:      make([]error, len(chunkKeys)),
	}
}

// SetLogf installs a logger used to report checksum mismatches on
// fault-in; by default mismatches are silent beyond the returned
// error.
func (c *ChunkedColumn) SetLogf(logf func(format string, args ...interface{})) {
	c.logf = logf
}

func (c *ChunkedColumn) log(format string, args ...interface{}) {
	if c.logf != nil {
		c.logf(format, args...)
	}
}

func (c *ChunkedColumn) Kind() Kind { return c.kind }
func (c *ChunkedColumn) Len() int   { return c.totalLen }

// NumChunks returns the chunk count K = ceil(totalLen / ChunkSize).
func (c *ChunkedColumn) NumChunks() int { return len(c.chunkKeys) }

// IsLocal reports whether chunk index c is homed on this node.
func (c *ChunkedColumn) IsLocal(chunk int) bool {
	return c.chunkKeys[chunk].Node == c.selfNode
}

// ensure faults in chunk idx exactly once, even under concurrent
// callers: the byte-store's own readiness gate provides the
// cross-node rendezvous, but a same-process caller must still only
// issue a single wait_and_get and decode per chunk, hence the
// sync.Once guard (first observer installs).
func (c *ChunkedColumn) ensure(idx int) error {
	c.once[idx].Do(func() {
		raw, err := c.fetcher.WaitAndGet(c.chunkKeys[idx])
		if err != nil {
			c.mu.Lock()
			c.errs[idx] = fmt.Errorf("column: fetching chunk %d (%s): %w", idx, c.chunkKeys[idx], err)
			c.mu.Unlock()
			return
		}
		d, err := DecodeChunk(c.kind, raw)
		if err != nil {
			c.log("column: chunk %d (%s) decode failed: %s", idx, c.chunkKeys[idx], err)
			c.mu.Lock()
			c.errs[idx] = err
			c.mu.Unlock()
			return
		}
		c.mu.Lock()
		c.chunks[idx] = d
		c.mu.Unlock()
	})
	c.mu.Lock()
	err := c.errs[idx]
	c.mu.Unlock()
	return err
}

func (c *ChunkedColumn) slot(i int) *decodedChunk {
	idx := i / ChunkSize
	if err := c.ensure(idx); err != nil {
		panic(err)
	}
	c.mu.Lock()
	d := c.chunks[idx]
	c.mu.Unlock()
	return d
}

func (c *ChunkedColumn) GetInt(i int) int64 {
	return c.slot(i).ints[i%ChunkSize]
}

func (c *ChunkedColumn) GetBool(i int) bool {
	return c.slot(i).bools[i%ChunkSize]
}

func (c *ChunkedColumn) GetDouble(i int) float64 {
	return c.slot(i).doubles[i%ChunkSize]
}

func (c *ChunkedColumn) GetString(i int) string {
	return c.slot(i).strings[i%ChunkSize]
}

// PushBack and Set are no-ops on a ChunkedColumn: writes to a
// materialized remote column are undefined and silently dropped.
func (c *ChunkedColumn) PushBackInt(int64)      {}
func (c *ChunkedColumn) PushBackBool(bool)      {}
func (c *ChunkedColumn) PushBackDouble(float64) {}
func (c *ChunkedColumn) PushBackString(string)  {}
func (c *ChunkedColumn) SetInt(int, int64)      {}
func (c *ChunkedColumn) SetBool(int, bool)      {}
func (c *ChunkedColumn) SetDouble(int, float64) {}
func (c *ChunkedColumn) SetString(int, string)  {}
