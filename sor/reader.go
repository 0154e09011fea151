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
	"bufio"
	"fmt"
	"io"

	"github.com/framegrid/framegrid/column"
	"github.com/framegrid/framegrid/dataframe"
)

// inferenceLines bounds how many lines schema inference scans before
// deciding each column's kind.
const inferenceLines = 500

// MalformedSchemaError reports that column col never had a single
// token fit any kind across the scanned lines.
type MalformedSchemaError struct {
	Column int
}

func (e *MalformedSchemaError) Error() string {
	return fmt.Sprintf("sor: column %d: no token fit any kind in the first %d lines", e.Column, inferenceLines)
}

// InferSchema scans up to inferenceLines non-malformed lines of r,
// inferring each column's kind as the maximum-priority kind observed
// across the tokens seen for that column (Bool < Int < Double <
// String). A column whose kind is never determined (every line either
// lacked that column or was malformed) fails with MalformedSchemaError.
func InferSchema(r io.Reader) (*dataframe.Schema, error) {
	sc := bufio.NewScanner(r)
	var kinds []column.Kind
	var seen []bool

	lines := 0
	for lines < inferenceLines && sc.Scan() {
		tokens, ok := Tokenize(sc.Text())
		if !ok || len(tokens) == 0 {
			continue
		}
		lines++
		for i, tok := range tokens {
			for i >= len(kinds) {
				kinds = append(kinds, column.KindBool)
				seen = append(seen, false)
			}
			k, ok := kindOf(tok)
			if !ok {
				continue
			}
			if !seen[i] {
				kinds[i] = k
				seen[i] = true
			} else {
				kinds[i] = column.MaxPriority(kinds[i], k)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for i, ok := range seen {
		if !ok {
			return nil, &MalformedSchemaError{Column: i}
		}
	}

	schema := dataframe.NewSchema()
	for _, k := range kinds {
		schema.AddColumn(k, "")
	}
	return schema, nil
}

// RowSource streams populated dataframe.Row values from a SoR stream
// already bound to schema, skipping malformed lines. It implements
// ingest.Writer's shape (Done/Visit) so it plugs directly into
// ingest.FromVisitor.
type RowSource struct {
	schema *dataframe.Schema
	sc     *bufio.Scanner
	next   []string
	done   bool
}

// NewRowSource wraps r, which must start at the beginning of the SoR
// stream (InferSchema's caller is expected to have read from a
// separate, re-opened reader, or to seek r back to zero).
func NewRowSource(schema *dataframe.Schema, r io.Reader) *RowSource {
	return &RowSource{schema: schema, sc: bufio.NewScanner(r)}
}

// Done reports whether the stream is exhausted, prefetching the next
// well-formed, non-empty line's tokens as a side effect.
func (s *RowSource) Done() bool {
	if s.next != nil || s.done {
		return s.done
	}
	for s.sc.Scan() {
		tokens, ok := Tokenize(s.sc.Text())
		if !ok || len(tokens) == 0 {
			continue
		}
		s.next = tokens
		return false
	}
	s.done = true
	return true
}

// Visit fills row from the tokens prefetched by Done, per the
// producer matching row's schema column, and drops the prefetch.
func (s *RowSource) Visit(row *dataframe.Row) {
	tokens := s.next
	s.next = nil
	for i := 0; i < s.schema.Width(); i++ {
		if i >= len(tokens) {
			continue
		}
		switch s.schema.Kind(i) {
		case column.KindInt:
			row.SetInt(i, produceInt(tokens[i]))
		case column.KindBool:
			row.SetBool(i, produceBool(tokens[i]))
		case column.KindDouble:
			row.SetDouble(i, produceDouble(tokens[i]))
		case column.KindString:
			row.SetString(i, produceString(tokens[i]))
		}
	}
}
