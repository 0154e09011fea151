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

// Package wire implements the length-prefixed message framing shared by
// every peer-to-peer and rendezvous connection in the cluster.
package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Type is the one-byte discriminant at the front of every frame.
type Type byte

const (
	Handshake  Type = 0
	ClientInfo Type = 1
	Data       Type = 2
	Teardown   Type = 3
)

func (t Type) String() string {
	switch t {
	case Handshake:
		return "Handshake"
	case ClientInfo:
		return "ClientInfo"
	case Data:
		return "Data"
	case Teardown:
		return "Teardown"
	default:
		return fmt.Sprintf("Type(%d)", byte(t))
	}
}

// HeaderSize is the width, in bytes, of the frame header:
// one byte of message type plus a four-byte total length.
const HeaderSize = 5

// MaxFrame bounds the total_length field so that a malformed
// header cannot make a reader attempt an enormous allocation.
const MaxFrame = 1 << 28

// ErrPeerGone is returned from any read or write that fails
// because the remote end of the connection closed or reset it.
var ErrPeerGone = errors.New("wire: peer gone")

// ErrBadMessage is returned when a header or length invariant
// is violated: a total_length shorter than the header, or one
// exceeding MaxFrame.
var ErrBadMessage = errors.New("wire: bad message")

// putHeader writes a 5-byte header for a frame of total size
// 'total' (header included) and type 'typ' into dst.
func putHeader(dst []byte, typ Type, total int) {
	dst[0] = byte(typ)
	binary.LittleEndian.PutUint32(dst[1:5], uint32(total))
}

func getHeader(src []byte) (Type, int) {
	return Type(src[0]), int(binary.LittleEndian.Uint32(src[1:5]))
}

// WriteMessage writes a single framed message of the given type
// with payload as its body. total_length = HeaderSize + len(payload).
func WriteMessage(w io.Writer, typ Type, payload []byte) error {
	if len(payload)+HeaderSize > MaxFrame {
		return fmt.Errorf("wire: payload of %d bytes exceeds MaxFrame: %w", len(payload), ErrBadMessage)
	}
	var hdr [HeaderSize]byte
	putHeader(hdr[:], typ, HeaderSize+len(payload))
	if _, err := w.Write(hdr[:]); err != nil {
		return peerErr(err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return peerErr(err)
		}
	}
	return nil
}

// MessageReader reads exactly total_length bytes per message off
// of an underlying stream, handing back (type, payload) pairs.
//
// A MessageReader never blocks inside a single header read except
// for the bytes of the header itself; it blocks for the remainder
// of the payload only once the header has been read in full.
type MessageReader struct {
	r   *bufio.Reader
	hdr [HeaderSize]byte
}

// NewMessageReader wraps r in buffered framing reads.
func NewMessageReader(r io.Reader) *MessageReader {
	return &MessageReader{r: bufio.NewReader(r)}
}

// Next blocks until a full message is available, then
// returns its type and payload. The returned payload slice
// is only valid until the next call to Next.
func (m *MessageReader) Next() (Type, []byte, error) {
	if _, err := io.ReadFull(m.r, m.hdr[:]); err != nil {
		return 0, nil, peerErr(err)
	}
	typ, total := getHeader(m.hdr[:])
	if total < HeaderSize || total > MaxFrame {
		return 0, nil, fmt.Errorf("wire: total_length %d out of range: %w", total, ErrBadMessage)
	}
	body := make([]byte, total-HeaderSize)
	if len(body) > 0 {
		if _, err := io.ReadFull(m.r, body); err != nil {
			return 0, nil, peerErr(err)
		}
	}
	return typ, body, nil
}

// peerErr normalizes short reads, resets, and closes
// into ErrPeerGone, as required by the socket-boundary
// error handling contract.
func peerErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrPeerGone, err)
	}
	return fmt.Errorf("%w: %s", ErrPeerGone, err)
}
