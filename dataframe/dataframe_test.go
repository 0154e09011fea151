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

import "testing"

func TestSchemaParseAndString(t *testing.T) {
	s, err := ParseSchema("III")
	if err != nil {
		t.Fatal(err)
	}
	if s.Width() != 3 {
		t.Fatalf("Width() = %d, want 3", s.Width())
	}
	if s.String() != "III" {
		t.Fatalf("String() = %q, want III", s.String())
	}
}

func TestSchemaParseRejectsUnknownKind(t *testing.T) {
	if _, err := ParseSchema("IX"); err == nil {
		t.Fatal("expected MalformedSchemaError")
	}
}

func TestAddRowAndMap(t *testing.T) {
	schema, err := ParseSchema("ID")
	if err != nil {
		t.Fatal(err)
	}
	df := New(schema)
	for i := 0; i < 5; i++ {
		row := NewRow(schema)
		row.SetInt(0, int64(i))
		row.SetDouble(1, float64(i)*2.5)
		if err := df.AddRow(row); err != nil {
			t.Fatal(err)
		}
	}
	if df.NumRows() != 5 {
		t.Fatalf("NumRows() = %d, want 5", df.NumRows())
	}

	var seen []int64
	df.Map(VisitFunc(func(row *Row) {
		seen = append(seen, row.GetInt(0))
		if row.GetDouble(1) != float64(row.GetInt(0))*2.5 {
			t.Fatalf("mismatched row: %v", row)
		}
	}))
	if len(seen) != 5 {
		t.Fatalf("Map visited %d rows, want 5", len(seen))
	}
	for i, v := range seen {
		if v != int64(i) {
			t.Fatalf("row %d out of order: %d", i, v)
		}
	}
}

func TestLocalMapNoOpOnFullColumn(t *testing.T) {
	schema, _ := ParseSchema("I")
	df := New(schema)
	row := NewRow(schema)
	row.SetInt(0, 1)
	df.AddRow(row)

	visited := 0
	df.LocalMap(VisitFunc(func(row *Row) { visited++ }))
	if visited != 0 {
		t.Fatalf("LocalMap over a Full column visited %d rows, want 0", visited)
	}
}

func TestChunkKeyDerivation(t *testing.T) {
	k := ChunkKey("m", 0, 1, 3)
	if k.Name != "m-0-1" {
		t.Fatalf("Name = %q, want m-0-1", k.Name)
	}
	if k.Node != 1 {
		t.Fatalf("Node = %d, want 1", k.Node)
	}
}

func TestNumChunks(t *testing.T) {
	cases := []struct {
		total int
		want  int
	}{
		{0, 0},
		{1, 1},
		{2_500_000, 1},
		{2_500_001, 2},
		{5_000_000, 2},
	}
	for _, c := range cases {
		if got := NumChunks(c.total); got != c.want {
			t.Fatalf("NumChunks(%d) = %d, want %d", c.total, got, c.want)
		}
	}
}
