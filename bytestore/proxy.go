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

package bytestore

import (
	"fmt"
	"net"
	"time"

	"github.com/framegrid/framegrid/peer"
	"github.com/framegrid/framegrid/wire"
)

// Resolver maps a node id to a dialable "host:port" address, backed
// in practice by cluster.Directory.Addr.
type Resolver func(node uint32) (string, error)

// DialTimeout bounds how long a remote byte-store call waits to
// establish its short-lived connection. wait_and_get itself is
// unbounded once the connection is up (§4.3): it is the caller's
// responsibility that producers exist.
var DialTimeout = 5 * time.Second

// Proxy is the entry point applications use for byte-store access: it
// dispatches to the local Store when key.Node == NodeID, and opens a
// short-lived connection to the owning peer otherwise.
type Proxy struct {
	Store   *Store
	Resolve Resolver
	Logf    func(format string, args ...interface{})
}

func (p *Proxy) logf(format string, args ...interface{}) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

// Put stores bytes under key, locally or on key's home node.
func (p *Proxy) Put(key wire.Key, bytes []byte) error {
	if key.Node == p.Store.NodeID {
		p.Store.Put(key, bytes)
		return nil
	}
	_, err := p.remoteCall(key, peer.Put, bytes)
	return err
}

// Get returns the bytes stored under key, or (nil, false) if absent,
// locally or on key's home node.
func (p *Proxy) Get(key wire.Key) ([]byte, bool, error) {
	if key.Node == p.Store.NodeID {
		v, ok := p.Store.Get(key)
		return v, ok, nil
	}
	v, err := p.remoteCall(key, peer.Get, nil)
	if err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}

// WaitAndGet blocks until key is present, then returns its bytes,
// locally or on key's home node. Unbounded: see DialTimeout for the
// connection-establishment bound only.
func (p *Proxy) WaitAndGet(key wire.Key) ([]byte, error) {
	if key.Node == p.Store.NodeID {
		return p.Store.WaitAndGet(key), nil
	}
	return p.remoteCall(key, peer.GetAndWait, nil)
}

// remoteCall performs exactly one request/response exchange over a
// freshly dialed connection to key's home node.
func (p *Proxy) remoteCall(key wire.Key, typ peer.KBType, payload []byte) ([]byte, error) {
	cid := wire.NewCorrelationID()
	addr, err := p.Resolve(key.Node)
	if err != nil {
		return nil, err
	}
	conn, err := wire.Dial(addr, DialTimeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	p.logf("bytestore: [%s] %s %s -> %s", cid, typ, key.Name, addr)

	req := peer.KBMessage{Type: typ, Key: key, Payload: payload}
	if err := wire.WriteMessage(conn, wire.Data, peer.EncodeKBMessage(req)); err != nil {
		return nil, err
	}

	// GetAndWait may block arbitrarily long on the remote end;
	// only the handshake/dial above is time-bounded.
	if typ == peer.GetAndWait {
		conn.SetReadDeadline(time.Time{})
	}

	mr := wire.NewMessageReader(conn)
	respTyp, body, err := mr.Next()
	if err != nil {
		return nil, err
	}
	if respTyp != wire.Data {
		return nil, fmt.Errorf("bytestore: unexpected frame type %s from %s", respTyp, addr)
	}
	resp, err := peer.DecodeKBMessage(body)
	if err != nil {
		return nil, err
	}
	switch typ {
	case peer.Put:
		if resp.Type != peer.Ack {
			return nil, fmt.Errorf("bytestore: expected Ack, got %s", resp.Type)
		}
		return nil, nil
	case peer.Get, peer.GetAndWait:
		if resp.Type != peer.ResponseData {
			return nil, fmt.Errorf("bytestore: expected ResponseData, got %s", resp.Type)
		}
		if len(resp.Payload) == 0 {
			return nil, nil
		}
		return resp.Payload, nil
	}
	return nil, fmt.Errorf("bytestore: unreachable: type %s", typ)
}

// Serve accepts inbound peer connections on l, spawning a detached
// handler goroutine per connection; each handler serves exactly one
// KBMessage request/response and then returns, matching the
// short-lived peer-to-peer connection model (§5).
func (p *Proxy) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		go p.handle(conn)
	}
}

func (p *Proxy) handle(conn net.Conn) {
	defer conn.Close()
	mr := wire.NewMessageReader(conn)
	typ, body, err := mr.Next()
	if err != nil {
		p.logf("bytestore: inbound read failed: %s", err)
		return
	}
	if typ != wire.Data {
		p.logf("bytestore: inbound frame type %s, want Data", typ)
		return
	}
	req, err := peer.DecodeKBMessage(body)
	if err != nil {
		p.logf("bytestore: bad KBMessage: %s", err)
		return
	}

	var resp peer.KBMessage
	switch req.Type {
	case peer.Put:
		p.Store.Put(req.Key, req.Payload)
		resp = peer.KBMessage{Type: peer.Ack}
	case peer.Get:
		v, _ := p.Store.Get(req.Key)
		resp = peer.KBMessage{Type: peer.ResponseData, Payload: v}
	case peer.GetAndWait:
		v := p.Store.WaitAndGet(req.Key)
		resp = peer.KBMessage{Type: peer.ResponseData, Payload: v}
	default:
		p.logf("bytestore: unexpected inbound KBMessage type %s", req.Type)
		return
	}
	if err := wire.WriteMessage(conn, wire.Data, peer.EncodeKBMessage(resp)); err != nil {
		p.logf("bytestore: writing response: %s", err)
	}
}
