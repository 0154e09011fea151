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

// ChunkKey derives the byte-store key of chunk chunkIdx of column
// colIdx of the dataframe published under name, for a cluster of size
// n at write time: name = "{name}-{colIdx}-{chunkIdx}", node =
// chunkIdx mod n. Chunks of one column are spread round-robin over
// the nodes, independent of the description's home node; n is
// captured here and baked into the resulting key, so a later change
// in cluster size never invalidates an already-written dataframe.
func ChunkKey(name string, colIdx, chunkIdx, n int) wire.Key {
	return wire.Key{
		Name: fmt.Sprintf("%s-%d-%d", name, colIdx, chunkIdx),
		Node: uint32(chunkIdx % n),
	}
}

// NumChunks returns ceil(totalLength / column.ChunkSize), the chunk
// count for a column of totalLength rows.
func NumChunks(totalLength int) int {
	if totalLength == 0 {
		return 0
	}
	return (totalLength + column.ChunkSize - 1) / column.ChunkSize
}
