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

package column

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"

	"github.com/framegrid/framegrid/wire"
)

func boolAsElement(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// decodedChunk is the in-memory materialization of one fetched chunk,
// one typed slice per kind (only the slice matching the column's kind
// is populated).
type decodedChunk struct {
	ints    []int64
	bools   []bool
	doubles []float64
	strings []string
}

func (d *decodedChunk) count() int {
	switch {
	case d.ints != nil:
		return len(d.ints)
	case d.bools != nil:
		return len(d.bools)
	case d.doubles != nil:
		return len(d.doubles)
	default:
		return len(d.strings)
	}
}

// decodeChunkBytes parses the raw [u64 count][count x element] layout
// for kind. It does not touch compression; callers that stored
// compressed chunks must inflate first (see DecodeChunk).
func decodeChunkBytes(kind Kind, raw []byte) (*decodedChunk, error) {
	r := wire.NewReader(raw)
	count, err := r.Uint64()
	if err != nil {
		return nil, fmt.Errorf("column: chunk count: %w", err)
	}
	d := &decodedChunk{}
	switch kind {
	case KindInt:
		d.ints = make([]int64, count)
		for i := range d.ints {
			d.ints[i], err = r.Int64()
			if err != nil {
				return nil, fmt.Errorf("column: chunk element %d: %w", i, err)
			}
		}
	case KindBool:
		d.bools = make([]bool, count)
		for i := range d.bools {
			v, err := r.Uint64()
			if err != nil {
				return nil, fmt.Errorf("column: chunk element %d: %w", i, err)
			}
			d.bools[i] = v != 0
		}
	case KindDouble:
		d.doubles = make([]float64, count)
		for i := range d.doubles {
			d.doubles[i], err = r.Float64()
			if err != nil {
				return nil, fmt.Errorf("column: chunk element %d: %w", i, err)
			}
		}
	case KindString:
		d.strings = make([]string, count)
		for i := range d.strings {
			d.strings[i], err = r.String()
			if err != nil {
				return nil, fmt.Errorf("column: chunk element %d: %w", i, err)
			}
		}
	default:
		return nil, fmt.Errorf("column: decode chunk: bad kind %s", kind)
	}
	return d, nil
}

// envelope wraps a serialized chunk for byte-store storage:
// [u8 compressed][32-byte blake2b checksum of the (possibly
// compressed) payload][payload]. Compression is optional per-ingest
// (see EncodeChunkOptions); the envelope format is always present so
// DecodeChunk can tell the two apart and verify integrity either way.
const checksumSize = 32

// EncodeChunkOptions controls chunk-level compression, off by default:
// CHUNK_SIZE-sized chunks of small scalar types rarely earn back the
// zstd round-trip cost under typical row workloads, so compression is
// an explicit opt-in per ingest call, not a blanket default.
type EncodeChunkOptions struct {
	Compress bool
}

var zstdEncoder *zstd.Encoder

func init() {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	zstdEncoder = enc
}

// EncodeChunk serializes the count x element payload raw already
// produced by FullColumn.SerializeChunk, optionally zstd-compressing
// it, and wraps it in a checksummed envelope ready for
// byte_store.put.
func EncodeChunk(raw []byte, opts EncodeChunkOptions) []byte {
	payload := raw
	compressed := false
	if opts.Compress {
		payload = zstdEncoder.EncodeAll(raw, nil)
		compressed = true
	}
	sum := blake2b.Sum256(payload)

	var b wire.Buffer
	b.PutBool(compressed)
	b.PutBytes(sum[:])
	b.PutBytes(payload)
	return b.Bytes()
}

// DecodeChunk reverses EncodeChunk and then parses the resulting
// count x element payload for kind. DecodeChunk itself does not log: a
// checksum mismatch is reported only as the returned error (there is
// no sentinel error value for it). ChunkedColumn logs any decode
// failure, mismatches included, through the logger set by SetLogf.
func DecodeChunk(kind Kind, envelope []byte) (*decodedChunk, error) {
	r := wire.NewReader(envelope)
	compressed, err := r.Bool()
	if err != nil {
		return nil, fmt.Errorf("column: chunk envelope: %w", err)
	}
	wantSum, err := r.Bytes(checksumSize)
	if err != nil {
		return nil, fmt.Errorf("column: chunk envelope checksum: %w", err)
	}
	payload := r.Rest()

	gotSum := blake2b.Sum256(payload)
	if string(gotSum[:]) != string(wantSum) {
		return nil, fmt.Errorf("column: chunk checksum mismatch (compressed=%v, %d bytes)", compressed, len(payload))
	}

	if compressed {
		inflated, err := zstdDecoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("column: zstd decode: %w", err)
		}
		payload = inflated
	}
	return decodeChunkBytes(kind, payload)
}

var zstdDecoder *zstd.Decoder

func init() {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	zstdDecoder = dec
}
