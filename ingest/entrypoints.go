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
	"fmt"

	"github.com/framegrid/framegrid/column"
	"github.com/framegrid/framegrid/dataframe"
	"github.com/framegrid/framegrid/wire"
)

func scalarKind(v interface{}) (column.Kind, error) {
	switch v.(type) {
	case int64:
		return column.KindInt, nil
	case bool:
		return column.KindBool, nil
	case float64:
		return column.KindDouble, nil
	case string:
		return column.KindString, nil
	default:
		return 0, fmt.Errorf("ingest: unsupported scalar type %T", v)
	}
}

// FromScalar publishes a one-row, one-column dataframe of v's
// inferred kind under key.
func FromScalar(key wire.Key, putter dataframe.Putter, n int, v interface{}) (dataframe.Description, error) {
	kind, err := scalarKind(v)
	if err != nil {
		return dataframe.Description{}, err
	}
	done := false
	return FromLambda(key, putter, n, string(rune(kind)), func(df *dataframe.DataFrame) {
		row := dataframe.NewRow(df.Schema())
		switch x := v.(type) {
		case int64:
			row.SetInt(0, x)
		case bool:
			row.SetBool(0, x)
		case float64:
			row.SetDouble(0, x)
		case string:
			row.SetString(0, x)
		}
		df.AddRow(row)
	}, func() bool {
		ready := !done
		done = true
		return ready
	}, EncodeOptions{})
}

// FromArrayDouble publishes a single-column dataframe of `rows` rows
// of kind Double, vs[i] per row i, over a cluster of n nodes. vs must
// have length >= rows.
func FromArrayDouble(key wire.Key, putter dataframe.Putter, n int, rows int, vs []float64) (dataframe.Description, error) {
	schema, err := dataframe.ParseSchema("D")
	if err != nil {
		return dataframe.Description{}, err
	}
	i := 0
	return FromLambda(key, putter, n, schema.String(), func(df *dataframe.DataFrame) {
		row := dataframe.NewRow(df.Schema())
		row.SetDouble(0, vs[i])
		df.AddRow(row)
		i++
	}, func() bool {
		return i < rows
	}, EncodeOptions{})
}

// FromArrayInt is FromArrayDouble's Int-kind counterpart.
func FromArrayInt(key wire.Key, putter dataframe.Putter, n int, rows int, vs []int64) (dataframe.Description, error) {
	schema, err := dataframe.ParseSchema("I")
	if err != nil {
		return dataframe.Description{}, err
	}
	i := 0
	return FromLambda(key, putter, n, schema.String(), func(df *dataframe.DataFrame) {
		row := dataframe.NewRow(df.Schema())
		row.SetInt(0, vs[i])
		df.AddRow(row)
		i++
	}, func() bool {
		return i < rows
	}, EncodeOptions{})
}

// Writer is the collaborator passed to FromVisitor: Done gates the
// row loop, Visit fills each row before it is added.
type Writer interface {
	Done() bool
	Visit(row *dataframe.Row)
}

// FromVisitor streams rows from writer into a dataframe published
// under key.
func FromVisitor(key wire.Key, putter dataframe.Putter, n int, schemaStr string, writer Writer) (dataframe.Description, error) {
	return FromLambda(key, putter, n, schemaStr, func(df *dataframe.DataFrame) {
		row := dataframe.NewRow(df.Schema())
		writer.Visit(row)
		df.AddRow(row)
	}, func() bool {
		return !writer.Done()
	}, EncodeOptions{})
}
