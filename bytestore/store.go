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

// Package bytestore implements the per-node key->byte-array mapping
// with a blocking wait_and_get primitive (§4.3), its short-lived remote
// proxy, and the inbound handler that serves KBMessage requests from
// peers.
package bytestore

import (
	"runtime"
	"sync"

	"github.com/dchest/siphash"

	"github.com/framegrid/framegrid/wire"
)

// siphash keys: fixed, process-wide. Only used to pick a shard for
// the local map, never as a security boundary.
const shardK0, shardK1 = 0x5eed5eed5eed5eed, 0xc0ffeec0ffeec0ff

// gate is a single-shot latch: created by the first wait_and_get
// against an absent key, closed when the key is later put. Closing a
// channel is the idiomatic equivalent of a condition-variable wakeup
// and avoids the busy-loop the original implementation used.
type gate struct {
	ch chan struct{}
}

type shard struct {
	mu    sync.Mutex
	data  map[string][]byte
	gates map[string]*gate
}

// Store is one node's byte-store: a key->ByteArray map with blocking
// reads. The map and its readiness gates are covered by a small
// number of striped locks (one per shard) rather than a single global
// mutex, for throughput under concurrent chunk fetches; each stripe on
// its own preserves the spec's invariant that the presence check and
// gate installation for a given key happen inside one critical
// section, since a key always hashes to the same stripe.
type Store struct {
	NodeID uint32
	shards []*shard

	Logf func(format string, args ...interface{})
}

// New creates a Store for the given node id.
func New(nodeID uint32) *Store {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	s := &Store{NodeID: nodeID, shards: make([]*shard, n)}
	for i := range s.shards {
		s.shards[i] = &shard{data: make(map[string][]byte), gates: make(map[string]*gate)}
	}
	return s
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

func (s *Store) shardFor(name string) *shard {
	h := siphash.Hash(shardK0, shardK1, []byte(name))
	return s.shards[h%uint64(len(s.shards))]
}

// Put stores a copy of bytes under key on this node, firing any
// pending readiness gate for key. key.Node must equal s.NodeID; use
// Proxy for remote keys.
func (s *Store) Put(key wire.Key, bytes []byte) {
	sh := s.shardFor(key.Name)
	cp := make([]byte, len(bytes))
	copy(cp, bytes)
	sh.mu.Lock()
	sh.data[key.Name] = cp
	if g, ok := sh.gates[key.Name]; ok {
		close(g.ch)
		delete(sh.gates, key.Name)
	}
	sh.mu.Unlock()
}

// Get returns an unowned view of the stored bytes for key, or
// (nil, false) if key is absent. key.Node must equal s.NodeID.
func (s *Store) Get(key wire.Key) ([]byte, bool) {
	sh := s.shardFor(key.Name)
	sh.mu.Lock()
	v, ok := sh.data[key.Name]
	sh.mu.Unlock()
	return v, ok
}

// WaitAndGet blocks until key is present, then returns its bytes. If
// key is already present, it returns immediately. key.Node must equal
// s.NodeID.
//
// Safety invariant: for every completed WaitAndGet(K) there exists an
// earlier-or-concurrent completed Put(K) whose bytes are the ones
// returned, because the presence check and gate installation below
// run under the same shard lock as Put's store-and-fire.
func (s *Store) WaitAndGet(key wire.Key) []byte {
	sh := s.shardFor(key.Name)
	sh.mu.Lock()
	if v, ok := sh.data[key.Name]; ok {
		sh.mu.Unlock()
		return v
	}
	g, ok := sh.gates[key.Name]
	if !ok {
		g = &gate{ch: make(chan struct{})}
		sh.gates[key.Name] = g
	}
	sh.mu.Unlock()

	<-g.ch

	sh.mu.Lock()
	v := sh.data[key.Name]
	sh.mu.Unlock()
	return v
}
