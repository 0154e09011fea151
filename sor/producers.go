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
	"strconv"
	"strings"

	"github.com/framegrid/framegrid/column"
)

// isValidNumber reports whether str is all digits with an optional
// leading sign and, if allowDecimal, a single '.'.
func isValidNumber(str string, allowDecimal bool) bool {
	digits, dots := 0, 0
	for i, r := range str {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case (r == '-' || r == '+') && i == 0:
		case r == '.' && allowDecimal && dots == 0:
			dots++
		default:
			return false
		}
	}
	return digits > 0
}

func hasQuotes(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// canProduceKind reports whether token fits kind, tried in the
// producers' priority order (Bool, Int, Double, String — lowest
// priority first, matching the reference tokenizer's producer list).
func canProduceKind(token string, kind column.Kind) bool {
	switch kind {
	case column.KindBool:
		return token == "0" || token == "1"
	case column.KindInt:
		return isValidNumber(token, false)
	case column.KindDouble:
		return isValidNumber(token, true)
	case column.KindString:
		hasSpace := strings.ContainsRune(token, ' ')
		return token != "" && (!hasSpace || hasQuotes(token))
	default:
		return false
	}
}

// kindOf returns the first kind (in priority order) that can produce
// token, or (0, false) if none can — an "Unknown" token.
func kindOf(token string) (column.Kind, bool) {
	for _, k := range []column.Kind{column.KindBool, column.KindInt, column.KindDouble, column.KindString} {
		if canProduceKind(token, k) {
			return k, true
		}
	}
	return 0, false
}

// produceInt, produceBool, produceDouble, produceString parse token
// per kind's wire representation, assuming canProduceKind(token,kind)
// already holds.
func produceInt(token string) int64 {
	v, _ := strconv.ParseInt(token, 10, 64)
	return v
}

func produceBool(token string) bool {
	return token == "1"
}

func produceDouble(token string) float64 {
	v, _ := strconv.ParseFloat(token, 64)
	return v
}

func produceString(token string) string {
	if hasQuotes(token) {
		return token[1 : len(token)-1]
	}
	return token
}
