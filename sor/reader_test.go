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

package sor

import (
	"strings"
	"testing"

	"github.com/framegrid/framegrid/dataframe"
)

const eightRowFile = `<0> <0> <0>
<0> <1> <1>
<2> <0> <0>
<2> <4967> <4967>
<3> <2> <2>
<3> <0> <0>
<1> <2> <2>
<1> <3> <3>
`

func TestInferSchemaAllInt(t *testing.T) {
	schema, err := InferSchema(strings.NewReader(eightRowFile))
	if err != nil {
		t.Fatal(err)
	}
	if schema.String() != "III" {
		t.Fatalf("schema = %q, want III", schema.String())
	}
}

func TestInferSchemaMixedPriority(t *testing.T) {
	// column 0 sees only bools; column 1 sees a bool then an int,
	// which must win (Bool < Int); column 2 sees a double.
	text := "<0> <0> <1.5>\n<1> <5> <2.5>\n"
	schema, err := InferSchema(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	if schema.String() != "BID" {
		t.Fatalf("schema = %q, want BID", schema.String())
	}
}

func TestInferSchemaMalformedWhenColumnNeverFits(t *testing.T) {
	// quoted string with inner spaces never fits any producer as-is
	// unless quoted; an empty token across every scanned line never
	// fits anything.
	text := "<0> <>\n<1> <>\n"
	if _, err := InferSchema(strings.NewReader(text)); err == nil {
		t.Fatal("expected MalformedSchemaError")
	}
}

func TestRowSourceStreamsRows(t *testing.T) {
	schema, err := dataframe.ParseSchema("III")
	if err != nil {
		t.Fatal(err)
	}
	src := NewRowSource(schema, strings.NewReader(eightRowFile))

	var rows [][]int64
	for !src.Done() {
		row := dataframe.NewRow(schema)
		src.Visit(row)
		rows = append(rows, []int64{row.GetInt(0), row.GetInt(1), row.GetInt(2)})
	}
	if len(rows) != 8 {
		t.Fatalf("got %d rows, want 8", len(rows))
	}
	want := [][]int64{
		{0, 0, 0}, {0, 1, 1}, {2, 0, 0}, {2, 4967, 4967},
		{3, 2, 2}, {3, 0, 0}, {1, 2, 2}, {1, 3, 3},
	}
	for i, w := range want {
		if rows[i][0] != w[0] || rows[i][1] != w[1] || rows[i][2] != w[2] {
			t.Fatalf("row %d = %v, want %v", i, rows[i], w)
		}
	}
}
