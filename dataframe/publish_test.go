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

package dataframe

import (
	"sync"
	"testing"

	"github.com/framegrid/framegrid/column"
	"github.com/framegrid/framegrid/wire"
)

// memStore is a minimal in-memory stand-in for bytestore.Proxy,
// satisfying both Putter and column.Fetcher.
type memStore struct {
	mu   sync.Mutex
	data map[wire.Key][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[wire.Key][]byte)} }

func (m *memStore) Put(key wire.Key, bytes []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := append([]byte(nil), bytes...)
	m.data[key] = cp
	return nil
}

func (m *memStore) WaitAndGet(key wire.Key) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func TestPutGetRoundTrip(t *testing.T) {
	const n = 3 // cluster size
	store := newMemStore()

	schema, _ := ParseSchema("ID")
	df := New(schema)
	for i := 0; i < 10; i++ {
		row := NewRow(schema)
		row.SetInt(0, int64(i))
		row.SetDouble(1, float64(i)*1.5)
		df.AddRow(row)
	}

	desc := Description{SchemaString: "ID"}
	for col := 0; col < df.NumCols(); col++ {
		full := df.Column(col).(*column.FullColumn)
		k := ChunkKey("u", col, 0, n)
		if err := store.Put(k, column.EncodeChunk(full.SerializeChunk(0), column.EncodeChunkOptions{})); err != nil {
			t.Fatal(err)
		}
		desc.Columns = append(desc.Columns, ColumnDescription{Kind: full.Kind(), TotalLength: full.Len(), ChunkKeys: []wire.Key{k}})
	}
	key := wire.Key{Name: "u", Node: 0}
	if err := PutDescription(key, desc, store); err != nil {
		t.Fatal(err)
	}

	got, err := Get(key, store, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Schema().String() != "ID" {
		t.Fatalf("schema = %q, want ID", got.Schema().String())
	}
	if got.NumRows() != 10 {
		t.Fatalf("NumRows() = %d, want 10", got.NumRows())
	}
	for i := 0; i < 10; i++ {
		if got.GetInt(0, i) != int64(i) {
			t.Fatalf("row %d col 0 = %d, want %d", i, got.GetInt(0, i), i)
		}
		if got.GetDouble(1, i) != float64(i)*1.5 {
			t.Fatalf("row %d col 1 = %v, want %v", i, got.GetDouble(1, i), float64(i)*1.5)
		}
	}
}

// TestLocalMapCoversChunksExactlyOnce publishes a three-chunk,
// single-column dataframe (two full chunks plus one trailing row) over
// a 2-node cluster, so node 0 owns chunks 0 and 2 and node 1 owns
// chunk 1, then runs the real LocalMap as each node in turn: the union
// of rows visited across all nodes must cover every row exactly once,
// and no node may visit a chunk homed elsewhere.
func TestLocalMapCoversChunksExactlyOnce(t *testing.T) {
	const n = 2
	const sz = 2*column.ChunkSize + 1
	store := newMemStore()

	var keys []wire.Key
	for c, start := 0, 0; start < sz; c, start = c+1, start+column.ChunkSize {
		end := start + column.ChunkSize
		if end > sz {
			end = sz
		}
		full := column.NewFullColumn(column.KindInt)
		for v := start; v < end; v++ {
			full.PushBackInt(int64(v))
		}
		k := ChunkKey("lm", 0, c, n)
		if err := store.Put(k, column.EncodeChunk(full.SerializeChunk(0), column.EncodeChunkOptions{})); err != nil {
			t.Fatal(err)
		}
		keys = append(keys, k)
	}
	desc := Description{SchemaString: "I", Columns: []ColumnDescription{
		{Kind: column.KindInt, TotalLength: sz, ChunkKeys: keys},
	}}
	key := wire.Key{Name: "lm", Node: 0}
	if err := PutDescription(key, desc, store); err != nil {
		t.Fatal(err)
	}

	// vs[i] = i, so a visited row identifies itself.
	seen := make([]bool, sz)
	visited := 0
	perNode := make([]int, n)
	for node := 0; node < n; node++ {
		df, err := Get(key, store, uint32(node))
		if err != nil {
			t.Fatal(err)
		}
		df.LocalMap(VisitFunc(func(row *Row) {
			v := row.GetInt(0)
			if seen[v] {
				t.Fatalf("node %d: row %d visited twice", node, v)
			}
			seen[v] = true
			visited++
			perNode[node]++
		}))
	}
	if visited != sz {
		t.Fatalf("visited %d rows across all nodes, want %d", visited, sz)
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("row %d never visited", i)
		}
	}
	// chunks 0 and 2 are homed on node 0, chunk 1 on node 1
	if perNode[0] != column.ChunkSize+1 {
		t.Fatalf("node 0 visited %d rows, want %d", perNode[0], column.ChunkSize+1)
	}
	if perNode[1] != column.ChunkSize {
		t.Fatalf("node 1 visited %d rows, want %d", perNode[1], column.ChunkSize)
	}
}
