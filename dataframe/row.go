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

// Row is a transient, fixed-width value buffer bound to a schema at
// construction; it is not a stored entity. Only the typed slot
// matching a column's kind is meaningful; reading the wrong kind's
// getter for a column is a programmer error (undefined).
type Row struct {
	schema  *Schema
	idx     int
	ints    []int64
	bools   []bool
	doubles []float64
	strings []string
}

// NewRow returns a Row sized to schema's width, ready for SetX calls
// before AddRow.
func NewRow(schema *Schema) *Row {
	w := schema.Width()
	return &Row{
		schema:  schema,
		ints:    make([]int64, w),
		bools:   make([]bool, w),
		doubles: make([]float64, w),
		strings: make([]string, w),
	}
}

func (r *Row) Width() int { return r.schema.Width() }

// SetIdx records which dataframe row index this buffer currently
// views. Purely informational: nothing in the core reads it back
// except Idx.
func (r *Row) SetIdx(i int) { r.idx = i }

// Idx returns the row index recorded by the last SetIdx call.
func (r *Row) Idx() int { return r.idx }

// SetInt, SetBool, SetDouble, SetString fill the slot at col; which
// one applies is determined by the schema, not enforced here (per
// column.Column, wrong-kind access is undefined).
func (r *Row) SetInt(col int, v int64)      { r.ints[col] = v }
func (r *Row) SetBool(col int, v bool)      { r.bools[col] = v }
func (r *Row) SetDouble(col int, v float64) { r.doubles[col] = v }
func (r *Row) SetString(col int, v string)  { r.strings[col] = v }

func (r *Row) GetInt(col int) int64      { return r.ints[col] }
func (r *Row) GetBool(col int) bool      { return r.bools[col] }
func (r *Row) GetDouble(col int) float64 { return r.doubles[col] }
func (r *Row) GetString(col int) string  { return r.strings[col] }
