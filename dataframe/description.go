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
	"github.com/framegrid/framegrid/wire"
)

// ColumnDescription is one column's entry in a Description: its kind,
// total row count, and the keys of its scattered chunks.
type ColumnDescription struct {
	Kind        column.Kind
	TotalLength int
	ChunkKeys   []wire.Key
}

// ChunkCount returns ceil(TotalLength / ChunkSize).
func (cd ColumnDescription) ChunkCount() int {
	return len(cd.ChunkKeys)
}

// Description is the single "index object" a dataframe is stored
// under: the schema string plus each column's ColumnDescription. It
// is the only thing physically stored at the user-visible key; chunk
// bytes are scattered across the cluster per ChunkKey(key, col, c, N).
type Description struct {
	SchemaString string
	Columns      []ColumnDescription
}

// Encode serializes d as
// [string schema][u64 num_cols][num_cols x ColumnDescription], with
// ColumnDescription = [u64 chunks][u64 total_length][u8 kind][chunks x key].
func (d Description) Encode() []byte {
	var b wire.Buffer
	b.PutString(d.SchemaString)
	b.PutUint64(uint64(len(d.Columns)))
	for _, cd := range d.Columns {
		b.PutUint64(uint64(len(cd.ChunkKeys)))
		b.PutUint64(uint64(cd.TotalLength))
		b.PutByte(byte(cd.Kind))
		for _, k := range cd.ChunkKeys {
			b.PutKey(k)
		}
	}
	return b.Bytes()
}

// DecodeDescription parses the layout written by Description.Encode.
func DecodeDescription(raw []byte) (Description, error) {
	r := wire.NewReader(raw)
	schemaStr, err := r.String()
	if err != nil {
		return Description{}, fmt.Errorf("dataframe: description schema: %w", err)
	}
	numCols, err := r.Uint64()
	if err != nil {
		return Description{}, fmt.Errorf("dataframe: description num_cols: %w", err)
	}
	d := Description{SchemaString: schemaStr, Columns: make([]ColumnDescription, 0, numCols)}
	for i := uint64(0); i < numCols; i++ {
		chunks, err := r.Uint64()
		if err != nil {
			return Description{}, fmt.Errorf("dataframe: column %d chunks: %w", i, err)
		}
		totalLength, err := r.Uint64()
		if err != nil {
			return Description{}, fmt.Errorf("dataframe: column %d total_length: %w", i, err)
		}
		kindByte, err := r.Byte()
		if err != nil {
			return Description{}, fmt.Errorf("dataframe: column %d kind: %w", i, err)
		}
		kind := column.Kind(kindByte)
		if !kind.Valid() {
			return Description{}, &MalformedSchemaError{Kind: kindByte}
		}
		keys := make([]wire.Key, chunks)
		for c := range keys {
			keys[c], err = r.Key()
			if err != nil {
				return Description{}, fmt.Errorf("dataframe: column %d chunk %d key: %w", i, c, err)
			}
		}
		d.Columns = append(d.Columns, ColumnDescription{Kind: kind, TotalLength: int(totalLength), ChunkKeys: keys})
	}
	return d, nil
}

// ToColumns materializes each ColumnDescription as a lazy
// column.ChunkedColumn, ready to be wrapped in a DataFrame via
// NewFromColumns.
func (d Description) ToColumns(selfNode uint32, fetcher column.Fetcher) ([]column.Column, error) {
	schema, err := ParseSchema(d.SchemaString)
	if err != nil {
		return nil, err
	}
	if schema.Width() != len(d.Columns) {
		return nil, fmt.Errorf("dataframe: schema width %d does not match %d column descriptions", schema.Width(), len(d.Columns))
	}
	cols := make([]column.Column, len(d.Columns))
	for i, cd := range d.Columns {
		cols[i] = column.NewChunkedColumn(cd.Kind, cd.TotalLength, cd.ChunkKeys, selfNode, fetcher)
	}
	return cols, nil
}
