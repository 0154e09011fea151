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

// Putter is the byte-store capability needed to publish a
// description or chunk; bytestore.Proxy satisfies this.
type Putter interface {
	Put(key wire.Key, bytes []byte) error
}

// PutDescription stores desc at key, the single index object a
// dataframe is published under; its chunks must already be written
// to their respective homes (see package ingest) before this call.
func PutDescription(key wire.Key, desc Description, putter Putter) error {
	return putter.Put(key, desc.Encode())
}

// Get fetches the Description stored at key (blocking until it is
// available) and materializes a DataFrame of lazily-faulted-in
// ChunkedColumns over it. get does not consume key; the returned
// DataFrame is independent of the caller's store reference beyond
// fetcher.
func Get(key wire.Key, fetcher column.Fetcher, selfNode uint32) (*DataFrame, error) {
	raw, err := fetcher.WaitAndGet(key)
	if err != nil {
		return nil, fmt.Errorf("dataframe: get %s: %w", key, err)
	}
	desc, err := DecodeDescription(raw)
	if err != nil {
		return nil, fmt.Errorf("dataframe: get %s: %w", key, err)
	}
	schema, err := ParseSchema(desc.SchemaString)
	if err != nil {
		return nil, err
	}
	cols, err := desc.ToColumns(selfNode, fetcher)
	if err != nil {
		return nil, err
	}
	return NewFromColumns(schema, cols)
}
