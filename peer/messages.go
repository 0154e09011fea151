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

// Package peer defines the message payloads exchanged between cluster
// nodes (and between a node and the rendezvous server): handshake and
// cluster-membership framing, plus the KBMessage sub-protocol carried
// inside wire.Data frames that drives the byte-store.
package peer

import (
	"fmt"
	"net"

	"github.com/framegrid/framegrid/wire"
)

// KBType is the KBMessage sub-type, carried as the first byte
// of a wire.Data frame's payload.
type KBType byte

const (
	Put          KBType = 0
	Get          KBType = 1
	GetAndWait   KBType = 2
	ResponseData KBType = 3
	Ack          KBType = 4
)

func (k KBType) String() string {
	switch k {
	case Put:
		return "Put"
	case Get:
		return "Get"
	case GetAndWait:
		return "GetAndWait"
	case ResponseData:
		return "ResponseData"
	case Ack:
		return "Ack"
	default:
		return fmt.Sprintf("KBType(%d)", byte(k))
	}
}

// HandshakeRequest is the payload of a wire.Handshake frame sent from
// a joining node to the rendezvous server: [u32 ip][u16 port].
type HandshakeRequest struct {
	IP   net.IP // always 4 bytes, network byte order semantics folded into u32
	Port uint16
}

func EncodeHandshakeRequest(h HandshakeRequest) []byte {
	var b wire.Buffer
	b.PutUint32(ipToUint32(h.IP))
	b.PutUint16(h.Port)
	return b.Bytes()
}

func DecodeHandshakeRequest(body []byte) (HandshakeRequest, error) {
	r := wire.NewReader(body)
	ip, err := r.Uint32()
	if err != nil {
		return HandshakeRequest{}, err
	}
	port, err := r.Uint16()
	if err != nil {
		return HandshakeRequest{}, err
	}
	return HandshakeRequest{IP: uint32ToIP(ip), Port: port}, nil
}

// HandshakeResponse is the payload of the Data reply to a Handshake:
// [u32 node_id].
type HandshakeResponse struct {
	NodeID uint32
}

func EncodeHandshakeResponse(h HandshakeResponse) []byte {
	var b wire.Buffer
	b.PutUint32(h.NodeID)
	return b.Bytes()
}

func DecodeHandshakeResponse(body []byte) (HandshakeResponse, error) {
	r := wire.NewReader(body)
	id, err := r.Uint32()
	if err != nil {
		return HandshakeResponse{}, err
	}
	return HandshakeResponse{NodeID: id}, nil
}

// PeerAddr is one entry of a ClientInfo directory: (ip, port).
type PeerAddr struct {
	IP   net.IP
	Port uint16
}

func (p PeerAddr) String() string {
	return fmt.Sprintf("%s:%d", p.IP, p.Port)
}

// ClientInfo is the payload broadcast by the rendezvous server
// whenever cluster membership changes: [u32 n][n x (u16 port, u32 ip)].
//
// Node ordering defines node ids: ClientInfo.Peers[i] is node i.
type ClientInfo struct {
	Peers []PeerAddr
}

func EncodeClientInfo(ci ClientInfo) []byte {
	var b wire.Buffer
	b.PutUint32(uint32(len(ci.Peers)))
	for _, p := range ci.Peers {
		b.PutUint16(p.Port)
		b.PutUint32(ipToUint32(p.IP))
	}
	return b.Bytes()
}

func DecodeClientInfo(body []byte) (ClientInfo, error) {
	r := wire.NewReader(body)
	n, err := r.Uint32()
	if err != nil {
		return ClientInfo{}, err
	}
	out := ClientInfo{Peers: make([]PeerAddr, 0, n)}
	for i := uint32(0); i < n; i++ {
		port, err := r.Uint16()
		if err != nil {
			return ClientInfo{}, err
		}
		ip, err := r.Uint32()
		if err != nil {
			return ClientInfo{}, err
		}
		out.Peers = append(out.Peers, PeerAddr{IP: uint32ToIP(ip), Port: port})
	}
	return out, nil
}

func ipToUint32(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}

func uint32ToIP(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
