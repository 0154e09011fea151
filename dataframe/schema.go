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

// Package dataframe implements the columnar DataFrame built on top of
// package column: Schema, Row, DataFrame, and the DataFrame
// description (the single index object a dataframe is published
// under).
package dataframe

import (
	"github.com/framegrid/framegrid/column"
)

// Schema is an ordered sequence of column kinds with optional names.
// The kinds are also exposed as a compact string (one tag char per
// column), matching the wire layout's schema_string.
type Schema struct {
	kinds []column.Kind
	names []string // "" when unnamed
}

// NewSchema returns an empty schema.
func NewSchema() *Schema { return &Schema{} }

// ParseSchema builds a Schema from a tag-character string such as
// "III", with no column names.
func ParseSchema(s string) (*Schema, error) {
	sc := NewSchema()
	for _, r := range s {
		k := column.Kind(r)
		if !k.Valid() {
			return nil, &MalformedSchemaError{Kind: byte(r)}
		}
		sc.AddColumn(k, "")
	}
	return sc, nil
}

// MalformedSchemaError is returned when a schema string (ParseSchema)
// or a decoded Description holds a byte that isn't one of the four
// defined kinds. Schema inference reports its own
// sor.MalformedSchemaError.
type MalformedSchemaError struct {
	Kind byte
}

func (e *MalformedSchemaError) Error() string {
	return "dataframe: malformed schema: unknown column kind " + string(rune(e.Kind))
}

// AddColumn appends a column kind, optionally named. Names, when
// non-empty, must be unique.
func (s *Schema) AddColumn(kind column.Kind, name string) {
	s.kinds = append(s.kinds, kind)
	s.names = append(s.names, name)
}

// Width returns the number of columns.
func (s *Schema) Width() int { return len(s.kinds) }

// Kind returns column idx's kind.
func (s *Schema) Kind(idx int) column.Kind { return s.kinds[idx] }

// Name returns column idx's name, or "" if unnamed.
func (s *Schema) Name(idx int) string { return s.names[idx] }

// ColIdx returns the index of the column named name, or -1 if absent
// or unnamed.
func (s *Schema) ColIdx(name string) int {
	if name == "" {
		return -1
	}
	for i, n := range s.names {
		if n == name {
			return i
		}
	}
	return -1
}

// String renders the schema as its compact kind-tag string, e.g. "III".
func (s *Schema) String() string {
	b := make([]byte, len(s.kinds))
	for i, k := range s.kinds {
		b[i] = byte(k)
	}
	return string(b)
}
