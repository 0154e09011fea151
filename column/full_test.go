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

import "testing"

func TestFullColumnPushBackGet(t *testing.T) {
	c := NewFullColumn(KindDouble)
	const n = 1500 // spans 3 pages at pageSize=512
	for i := 0; i < n; i++ {
		c.PushBackDouble(float64(i))
	}
	if c.Len() != n {
		t.Fatalf("Len() = %d, want %d", c.Len(), n)
	}
	for i := 0; i < n; i++ {
		if got := c.GetDouble(i); got != float64(i) {
			t.Fatalf("GetDouble(%d) = %v, want %v", i, got, i)
		}
	}
}

func TestFullColumnSet(t *testing.T) {
	c := NewFullColumn(KindInt)
	for i := 0; i < 10; i++ {
		c.PushBackInt(int64(i))
	}
	c.SetInt(5, 999)
	if c.GetInt(5) != 999 {
		t.Fatalf("SetInt did not take effect")
	}
	if c.GetInt(4) != 4 {
		t.Fatalf("neighboring value disturbed")
	}
}

func TestFullColumnSerializeChunkRoundTrip(t *testing.T) {
	c := NewFullColumn(KindString)
	vals := []string{"a", "bb", "ccc", "", "e e", `"quoted"`}
	for _, v := range vals {
		c.PushBackString(v)
	}
	raw := c.SerializeChunk(0)
	d, err := decodeChunkBytes(KindString, raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.strings) != len(vals) {
		t.Fatalf("decoded %d strings, want %d", len(d.strings), len(vals))
	}
	for i, v := range vals {
		if d.strings[i] != v {
			t.Fatalf("string %d = %q, want %q", i, d.strings[i], v)
		}
	}
}

func TestFullColumnSerializeChunkBool(t *testing.T) {
	c := NewFullColumn(KindBool)
	vals := []bool{true, false, true, true, false}
	for _, v := range vals {
		c.PushBackBool(v)
	}
	raw := c.SerializeChunk(0)
	d, err := decodeChunkBytes(KindBool, raw)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vals {
		if d.bools[i] != v {
			t.Fatalf("bool %d = %v, want %v", i, d.bools[i], v)
		}
	}
}
