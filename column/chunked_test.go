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
	"sync/atomic"
	"testing"

	"github.com/framegrid/framegrid/wire"
)

type countingFetcher struct {
	byKey map[wire.Key][]byte
	calls int32
}

func (f *countingFetcher) WaitAndGet(key wire.Key) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.byKey[key], nil
}

func TestChunkedColumnGet(t *testing.T) {
	full := NewFullColumn(KindInt)
	for i := 0; i < 10; i++ {
		full.PushBackInt(int64(i))
	}
	chunk0 := EncodeChunk(full.SerializeChunk(0), EncodeChunkOptions{})

	k := wire.Key{Name: "m-0-0", Node: 0}
	f := &countingFetcher{byKey: map[wire.Key][]byte{k: chunk0}}
	cc := NewChunkedColumn(KindInt, 10, []wire.Key{k}, 0, f)

	for i := 0; i < 10; i++ {
		if got := cc.GetInt(i); got != int64(i) {
			t.Fatalf("GetInt(%d) = %d, want %d", i, got, i)
		}
	}
	if f.calls != 1 {
		t.Fatalf("fetcher called %d times, want exactly 1 (single-fetch guard)", f.calls)
	}
}

func TestChunkedColumnIsLocal(t *testing.T) {
	keys := []wire.Key{
		{Name: "m-0-0", Node: 0},
		{Name: "m-0-1", Node: 1},
	}
	cc := NewChunkedColumn(KindInt, 2, keys, 1, &countingFetcher{byKey: map[wire.Key][]byte{}})
	if cc.IsLocal(0) {
		t.Fatal("chunk 0 should not be local to node 1")
	}
	if !cc.IsLocal(1) {
		t.Fatal("chunk 1 should be local to node 1")
	}
}

func TestChunkedColumnConcurrentGetSingleFetch(t *testing.T) {
	full := NewFullColumn(KindDouble)
	for i := 0; i < 100; i++ {
		full.PushBackDouble(float64(i))
	}
	chunk0 := EncodeChunk(full.SerializeChunk(0), EncodeChunkOptions{})
	k := wire.Key{Name: "d-0-0", Node: 0}
	f := &countingFetcher{byKey: map[wire.Key][]byte{k: chunk0}}
	cc := NewChunkedColumn(KindDouble, 100, []wire.Key{k}, 0, f)

	done := make(chan struct{})
	for g := 0; g < 20; g++ {
		go func(idx int) {
			cc.GetDouble(idx % 100)
			done <- struct{}{}
		}(g)
	}
	for g := 0; g < 20; g++ {
		<-done
	}
	if f.calls != 1 {
		t.Fatalf("fetcher called %d times, want exactly 1", f.calls)
	}
}
