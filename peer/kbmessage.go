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

package peer

import (
	"fmt"

	"github.com/framegrid/framegrid/wire"
)

// KBMessage is one request or response in the byte-store's remote
// protocol, carried as the payload of a wire.Data frame. The wire
// layout is [u8 sub-type][body], where body depends on the sub-type:
//
//	Put:          [key][bytes...]   (remainder of frame is the blob)
//	Get/GetAndWait: [key]
//	ResponseData: [bytes...]        (may be empty: absent)
//	Ack:          empty
type KBMessage struct {
	Type    KBType
	Key     wire.Key // valid for Put, Get, GetAndWait
	Payload []byte   // the stored/returned blob, valid for Put, ResponseData
}

// EncodeKBMessage serializes m into a payload suitable for
// wire.WriteMessage(w, wire.Data, ...).
func EncodeKBMessage(m KBMessage) []byte {
	var b wire.Buffer
	b.PutByte(byte(m.Type))
	switch m.Type {
	case Put:
		b.PutKey(m.Key)
		b.PutBytes(m.Payload)
	case Get, GetAndWait:
		b.PutKey(m.Key)
	case ResponseData:
		b.PutBytes(m.Payload)
	case Ack:
		// empty
	}
	return b.Bytes()
}

// DecodeKBMessage parses the payload of a wire.Data frame into a KBMessage.
func DecodeKBMessage(body []byte) (KBMessage, error) {
	r := wire.NewReader(body)
	typByte, err := r.Byte()
	if err != nil {
		return KBMessage{}, err
	}
	typ := KBType(typByte)
	var m KBMessage
	m.Type = typ
	switch typ {
	case Put:
		k, err := r.Key()
		if err != nil {
			return KBMessage{}, err
		}
		m.Key = k
		m.Payload = append([]byte(nil), r.Rest()...)
	case Get, GetAndWait:
		k, err := r.Key()
		if err != nil {
			return KBMessage{}, err
		}
		m.Key = k
	case ResponseData:
		m.Payload = append([]byte(nil), r.Rest()...)
	case Ack:
		// empty
	default:
		return KBMessage{}, fmt.Errorf("peer: unknown KBMessage sub-type %d: %w", typByte, wire.ErrBadMessage)
	}
	return m, nil
}
