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
	"os"

	"github.com/framegrid/framegrid/dataframe"
	"github.com/framegrid/framegrid/sor"
	"github.com/framegrid/framegrid/wire"
)

// FromFile schema-infers the first <=500 lines of the SoR file at
// path, then streams every well-formed row of the same file into the
// dataframe published under key.
func FromFile(key wire.Key, putter dataframe.Putter, n int, path string) (dataframe.Description, error) {
	inferF, err := os.Open(path)
	if err != nil {
		return dataframe.Description{}, fmt.Errorf("ingest: from_file: %w", err)
	}
	schema, err := sor.InferSchema(inferF)
	inferF.Close()
	if err != nil {
		return dataframe.Description{}, fmt.Errorf("ingest: from_file: %w", err)
	}

	rowsF, err := os.Open(path)
	if err != nil {
		return dataframe.Description{}, fmt.Errorf("ingest: from_file: %w", err)
	}
	defer rowsF.Close()
	src := sor.NewRowSource(schema, rowsF)

	return FromVisitor(key, putter, n, schema.String(), src)
}
