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
	"testing"

	"github.com/framegrid/framegrid/column"
	"github.com/framegrid/framegrid/wire"
)

func TestDescriptionEncodeDecodeRoundTrip(t *testing.T) {
	d := Description{
		SchemaString: "ID",
		Columns: []ColumnDescription{
			{Kind: column.KindInt, TotalLength: 10, ChunkKeys: []wire.Key{{Name: "m-0-0", Node: 0}}},
			{Kind: column.KindDouble, TotalLength: 10, ChunkKeys: []wire.Key{{Name: "m-1-0", Node: 1}}},
		},
	}
	raw := d.Encode()
	got, err := DecodeDescription(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.SchemaString != d.SchemaString {
		t.Fatalf("SchemaString = %q, want %q", got.SchemaString, d.SchemaString)
	}
	if len(got.Columns) != len(d.Columns) {
		t.Fatalf("got %d columns, want %d", len(got.Columns), len(d.Columns))
	}
	for i, cd := range got.Columns {
		want := d.Columns[i]
		if cd.Kind != want.Kind || cd.TotalLength != want.TotalLength {
			t.Fatalf("column %d = %+v, want %+v", i, cd, want)
		}
		if len(cd.ChunkKeys) != 1 || cd.ChunkKeys[0] != want.ChunkKeys[0] {
			t.Fatalf("column %d keys = %v, want %v", i, cd.ChunkKeys, want.ChunkKeys)
		}
	}
}
