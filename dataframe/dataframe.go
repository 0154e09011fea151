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
	"fmt"

	"github.com/framegrid/framegrid/column"
)

// RowVisitor is the collaborator passed to Map and LocalMap.
type RowVisitor interface {
	Visit(row *Row)
}

// VisitFunc adapts a plain function to RowVisitor.
type VisitFunc func(row *Row)

func (f VisitFunc) Visit(row *Row) { f(row) }

// DataFrame is (schema, columns[]); all columns share one length.
// Columns may be a mix of column.FullColumn (mutable, in-memory) and
// column.ChunkedColumn (read-only, remote); LocalMap exploits that
// mix to skip rows not homed on this node.
type DataFrame struct {
	schema *Schema
	cols   []column.Column
	nrows  int
}

// New returns an empty DataFrame with one Full column per schema
// entry, ready for AddRow.
func New(schema *Schema) *DataFrame {
	df := &DataFrame{schema: schema}
	for i := 0; i < schema.Width(); i++ {
		df.cols = append(df.cols, column.NewFullColumn(schema.Kind(i)))
	}
	return df
}

// NewFromColumns assembles a DataFrame directly from existing
// columns (typically a mix of Chunked columns materialized from a
// DataFrame description). All columns must report the same Len().
func NewFromColumns(schema *Schema, cols []column.Column) (*DataFrame, error) {
	if len(cols) != schema.Width() {
		return nil, fmt.Errorf("dataframe: %d columns for schema of width %d", len(cols), schema.Width())
	}
	nrows := 0
	if len(cols) > 0 {
		nrows = cols[0].Len()
	}
	for i, c := range cols {
		if c.Len() != nrows {
			return nil, fmt.Errorf("dataframe: column %d has length %d, want %d", i, c.Len(), nrows)
		}
		if c.Kind() != schema.Kind(i) {
			return nil, fmt.Errorf("dataframe: column %d has kind %s, schema wants %s", i, c.Kind(), schema.Kind(i))
		}
	}
	return &DataFrame{schema: schema, cols: cols, nrows: nrows}, nil
}

func (df *DataFrame) Schema() *Schema { return df.schema }
func (df *DataFrame) NumCols() int    { return df.schema.Width() }
func (df *DataFrame) NumRows() int    { return df.nrows }

// Column returns the idx'th column for direct access (e.g. to check
// column.ChunkedColumn.IsLocal).
func (df *DataFrame) Column(idx int) column.Column { return df.cols[idx] }

// AddColumn appends a fully-built column, rejecting a length mismatch
// against any columns already present and a duplicate name.
func (df *DataFrame) AddColumn(col column.Column, name string) error {
	if len(df.cols) > 0 && col.Len() != df.nrows {
		return fmt.Errorf("dataframe: new column has %d rows, dataframe has %d", col.Len(), df.nrows)
	}
	if name != "" && df.schema.ColIdx(name) != -1 {
		return fmt.Errorf("dataframe: duplicate column name %q", name)
	}
	df.schema.AddColumn(col.Kind(), name)
	df.cols = append(df.cols, col)
	if len(df.cols) == 1 {
		df.nrows = col.Len()
	}
	return nil
}

// AddRow appends row's slots to every column, which must all be
// column.FullColumn (mutable). Appending to a chunked column is
// rejected.
func (df *DataFrame) AddRow(row *Row) error {
	for i, c := range df.cols {
		full, ok := c.(*column.FullColumn)
		if !ok {
			return fmt.Errorf("dataframe: column %d is not appendable (chunked)", i)
		}
		switch full.Kind() {
		case column.KindInt:
			full.PushBackInt(row.GetInt(i))
		case column.KindBool:
			full.PushBackBool(row.GetBool(i))
		case column.KindDouble:
			full.PushBackDouble(row.GetDouble(i))
		case column.KindString:
			full.PushBackString(row.GetString(i))
		}
	}
	df.nrows++
	return nil
}

// FillRow copies row idx's values into row, reusing row's buffers
// across repeated calls (as Map and LocalMap do).
func (df *DataFrame) FillRow(idx int, row *Row) {
	row.SetIdx(idx)
	for i, c := range df.cols {
		switch c.Kind() {
		case column.KindInt:
			row.SetInt(i, c.GetInt(idx))
		case column.KindBool:
			row.SetBool(i, c.GetBool(idx))
		case column.KindDouble:
			row.SetDouble(i, c.GetDouble(idx))
		case column.KindString:
			row.SetString(i, c.GetString(idx))
		}
	}
}

// Map visits every row in order, reusing one Row buffer.
func (df *DataFrame) Map(v RowVisitor) {
	row := NewRow(df.schema)
	for i := 0; i < df.nrows; i++ {
		df.FillRow(i, row)
		v.Visit(row)
	}
}

// LocalMap is only meaningful when column 0 is a chunked column: it
// iterates the chunks of column 0 for which IsLocal is true and
// visits every row of each, skipping chunks owned by other nodes. If
// column 0 is a Full column (pre-publish), LocalMap is a no-op — a
// dataframe must be round-tripped through put/get to exercise
// locality.
func (df *DataFrame) LocalMap(v RowVisitor) {
	if len(df.cols) == 0 {
		return
	}
	cc, ok := df.cols[0].(*column.ChunkedColumn)
	if !ok {
		return
	}
	row := NewRow(df.schema)
	for c := 0; c < cc.NumChunks(); c++ {
		if !cc.IsLocal(c) {
			continue
		}
		start := c * column.ChunkSize
		end := start + column.ChunkSize
		if end > df.nrows {
			end = df.nrows
		}
		for i := start; i < end; i++ {
			df.FillRow(i, row)
			v.Visit(row)
		}
	}
}

func (df *DataFrame) GetInt(col, row int) int64      { return df.cols[col].GetInt(row) }
func (df *DataFrame) GetBool(col, row int) bool      { return df.cols[col].GetBool(row) }
func (df *DataFrame) GetDouble(col, row int) float64 { return df.cols[col].GetDouble(row) }
func (df *DataFrame) GetString(col, row int) string  { return df.cols[col].GetString(row) }

// Set writes v into (col, row) of a Full column; setting a chunked
// column's slot is undefined and silently dropped, per
// column.ChunkedColumn's write contract.
func (df *DataFrame) Set(col, row int, v interface{}) {
	full, ok := df.cols[col].(*column.FullColumn)
	if !ok {
		return
	}
	switch x := v.(type) {
	case int64:
		full.SetInt(row, x)
	case bool:
		full.SetBool(row, x)
	case float64:
		full.SetDouble(row, x)
	case string:
		full.SetString(row, x)
	}
}
