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

// Package ingest implements the dataframe publishing paths: one
// shared streaming primitive (FromLambda) and the convenience entry
// points built on it (FromScalar, FromArrayDouble, FromArrayInt,
// FromVisitor, FromFile).
// Every path writes chunk bytes to their home nodes as soon as a
// chunk fills, then writes the DataFrame description last, so memory
// use is bounded by one chunk's worth of rows regardless of the
// overall dataframe size.
package ingest

import (
	"github.com/framegrid/framegrid/column"
	"github.com/framegrid/framegrid/dataframe"
	"github.com/framegrid/framegrid/wire"
)

// EncodeOptions controls chunk compression for everything published
// through this package; see column.EncodeChunkOptions.
type EncodeOptions = column.EncodeChunkOptions

// Populate adds exactly one row to df per call.
type Populate func(df *dataframe.DataFrame)

// HasMore gates FromLambda's row loop.
type HasMore func() bool

// FromLambda is the shared streaming ingestion primitive: it repeatedly
// calls populate to grow an in-memory Full-column dataframe, flushing
// a chunk's worth of rows to the byte-store (and starting a fresh
// in-memory dataframe) every time it reaches column.ChunkSize rows,
// until hasMore reports false. It returns the DataFrame description
// built from the resulting chunk keys and writes it to key last.
func FromLambda(key wire.Key, putter dataframe.Putter, n int, schemaStr string, populate Populate, hasMore HasMore, opts EncodeOptions) (dataframe.Description, error) {
	schema, err := dataframe.ParseSchema(schemaStr)
	if err != nil {
		return dataframe.Description{}, err
	}

	df := dataframe.New(schema)
	chunks := 0
	rows := 0
	allKeys := make([][]wire.Key, schema.Width()) // allKeys[col] accumulates chunk keys across flushes

	flush := func() error {
		keys, err := putDataframeChunk(key.Name, df, chunks, n, 0, putter, opts)
		if err != nil {
			return err
		}
		for c, k := range keys {
			allKeys[c] = append(allKeys[c], k)
		}
		chunks++
		return nil
	}

	for hasMore() {
		populate(df)
		rows++
		if df.NumRows() == column.ChunkSize {
			if err := flush(); err != nil {
				return dataframe.Description{}, err
			}
			df = dataframe.New(schema)
		}
	}
	if df.NumRows() > 0 {
		if err := flush(); err != nil {
			return dataframe.Description{}, err
		}
	}

	desc := dataframe.Description{SchemaString: schemaStr}
	for c := 0; c < schema.Width(); c++ {
		desc.Columns = append(desc.Columns, dataframe.ColumnDescription{
			Kind:        schema.Kind(c),
			TotalLength: rows,
			ChunkKeys:   allKeys[c],
		})
	}
	if err := dataframe.PutDescription(key, desc, putter); err != nil {
		return dataframe.Description{}, err
	}
	return desc, nil
}

// putDataframeChunk writes chunk index c of every column of df (an
// in-memory dataframe holding only that chunk's rows) to its derived
// home, returning the per-column keys used. serializedChunkIdx lets
// the caller address a sub-chunk of a df that holds more than one
// chunk's worth of rows in memory; FromLambda always passes 0 because
// it keeps df to at most one chunk before flushing.
func putDataframeChunk(name string, df *dataframe.DataFrame, c, n, serializedChunkIdx int, putter dataframe.Putter, opts EncodeOptions) ([]wire.Key, error) {
	keys := make([]wire.Key, df.NumCols())
	for col := 0; col < df.NumCols(); col++ {
		full, ok := df.Column(col).(*column.FullColumn)
		if !ok {
			continue
		}
		k := dataframe.ChunkKey(name, col, c, n)
		raw := full.SerializeChunk(serializedChunkIdx)
		if err := putter.Put(k, column.EncodeChunk(raw, opts)); err != nil {
			return nil, err
		}
		keys[col] = k
	}
	return keys, nil
}
