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

package ingest

import (
	"sync"
	"testing"

	"github.com/framegrid/framegrid/dataframe"
	"github.com/framegrid/framegrid/wire"
)

// memStore is a minimal in-memory stand-in for bytestore.Proxy.
type memStore struct {
	mu   sync.Mutex
	data map[wire.Key][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[wire.Key][]byte)} }

func (m *memStore) Put(key wire.Key, bytes []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), bytes...)
	return nil
}

func (m *memStore) WaitAndGet(key wire.Key) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

// TestScalarRoundTrip is the scalar-round-trip scenario: a 1x1
// dataframe of kind D round-trips through put/get.
func TestScalarRoundTrip(t *testing.T) {
	store := newMemStore()
	key := wire.Key{Name: "v", Node: 0}

	if _, err := FromScalar(key, store, 3, 42.0); err != nil {
		t.Fatal(err)
	}

	df, err := dataframe.Get(key, store, 2)
	if err != nil {
		t.Fatal(err)
	}
	if df.Schema().String() != "D" {
		t.Fatalf("schema = %q, want D", df.Schema().String())
	}
	if df.NumRows() != 1 {
		t.Fatalf("NumRows() = %d, want 1", df.NumRows())
	}
	if df.GetDouble(0, 0) != 42.0 {
		t.Fatalf("value = %v, want 42.0", df.GetDouble(0, 0))
	}
}

// TestArrayRoundTripWithChunking is the array-round-trip scenario:
// SZ = 2_500_001 doubles, one column, chunked across a 3-node
// cluster, chunk_keys[0].node == 0 and chunk_keys[1].node == 1.
func TestArrayRoundTripWithChunking(t *testing.T) {
	const sz = 2_500_001
	store := newMemStore()
	key := wire.Key{Name: "m", Node: 0}

	vs := make([]float64, sz)
	for i := range vs {
		vs[i] = float64(i)
	}

	desc, err := FromArrayDouble(key, store, 3, sz, vs)
	if err != nil {
		t.Fatal(err)
	}
	if len(desc.Columns) != 1 {
		t.Fatalf("got %d columns, want 1", len(desc.Columns))
	}
	cd := desc.Columns[0]
	if cd.TotalLength != sz {
		t.Fatalf("TotalLength = %d, want %d", cd.TotalLength, sz)
	}
	if cd.ChunkCount() != 2 {
		t.Fatalf("ChunkCount() = %d, want 2", cd.ChunkCount())
	}
	if cd.ChunkKeys[0].Node != 0 {
		t.Fatalf("chunk 0 node = %d, want 0", cd.ChunkKeys[0].Node)
	}
	if cd.ChunkKeys[1].Node != 1 {
		t.Fatalf("chunk 1 node = %d, want 1", cd.ChunkKeys[1].Node)
	}

	df, err := dataframe.Get(key, store, 2)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for i := 0; i < sz; i++ {
		sum += df.GetDouble(0, i)
	}
	want := float64(sz) * float64(sz-1) / 2
	if sum != want {
		t.Fatalf("sum = %v, want %v", sum, want)
	}
}

// TestProducerConsumerVerifier is the three-stage scenario: node 0
// ingests an array and publishes a checksum, node 1 consumes the
// array and republishes its own sum, node 2 verifies they match. A
// single in-memory store stands in for the three independent
// byte-stores since only the derived keys and values matter here.
func TestProducerConsumerVerifier(t *testing.T) {
	const sz = 10_000
	store := newMemStore()
	mKey := wire.Key{Name: "m", Node: 0}
	ckKey := wire.Key{Name: "ck", Node: 0}
	verifKey := wire.Key{Name: "verif", Node: 0}

	vs := make([]float64, sz)
	var sum float64
	for i := range vs {
		vs[i] = float64(i)
		sum += vs[i]
	}
	if _, err := FromArrayDouble(mKey, store, 3, sz, vs); err != nil {
		t.Fatal(err)
	}
	if _, err := FromScalar(ckKey, store, 3, sum); err != nil {
		t.Fatal(err)
	}

	df, err := dataframe.Get(mKey, store, 1)
	if err != nil {
		t.Fatal(err)
	}
	var observed float64
	for i := 0; i < df.NumRows(); i++ {
		observed += df.GetDouble(0, i)
	}
	if _, err := FromScalar(verifKey, store, 3, observed); err != nil {
		t.Fatal(err)
	}

	verifDF, err := dataframe.Get(verifKey, store, 2)
	if err != nil {
		t.Fatal(err)
	}
	ckDF, err := dataframe.Get(ckKey, store, 2)
	if err != nil {
		t.Fatal(err)
	}
	if verifDF.GetDouble(0, 0) != ckDF.GetDouble(0, 0) {
		t.Fatalf("verif %v != ck %v", verifDF.GetDouble(0, 0), ckDF.GetDouble(0, 0))
	}
}
