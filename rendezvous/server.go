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

// Package rendezvous implements the bootstrap service that assigns
// node ids and broadcasts cluster membership to every connected peer.
package rendezvous

import (
	"net"
	"sync"

	"github.com/framegrid/framegrid/peer"
	"github.com/framegrid/framegrid/wire"
)

// DefaultPort is the fixed default rendezvous server port (§6).
const DefaultPort = 30000

// DefaultAddr is ":30000", ready to pass to Listen.
const DefaultAddr = ":30000"

type client struct {
	conn net.Conn
	addr peer.PeerAddr
}

// Server is the rendezvous server: it accepts Handshake connections,
// assigns sequential node ids, and broadcasts the updated directory
// to every connected client (including the one that just joined).
//
// The server does not forward peer traffic; once a client has its
// directory, it addresses peers directly.
type Server struct {
	Logf func(format string, args ...interface{})

	mu      sync.Mutex
	clients []*client
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// Serve accepts connections on l until l.Close is called, handling one
// handshake per accepted connection. Teardown does not close l, so
// Serve keeps accepting after it.
func (s *Server) Serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	mr := wire.NewMessageReader(conn)
	typ, body, err := mr.Next()
	if err != nil {
		s.logf("rendezvous: handshake read failed: %s", err)
		conn.Close()
		return
	}
	if typ != wire.Handshake {
		s.logf("rendezvous: expected Handshake, got %s", typ)
		wire.WriteMessage(conn, wire.Teardown, nil)
		conn.Close()
		return
	}
	req, err := peer.DecodeHandshakeRequest(body)
	if err != nil {
		s.logf("rendezvous: bad handshake payload: %s", err)
		conn.Close()
		return
	}

	c := &client{
		conn: conn,
		addr: peer.PeerAddr{IP: req.IP, Port: req.Port},
	}

	s.mu.Lock()
	nodeID := uint32(len(s.clients))
	s.clients = append(s.clients, c)
	dir := s.directoryLocked()
	s.mu.Unlock()

	resp := peer.EncodeHandshakeResponse(peer.HandshakeResponse{NodeID: nodeID})
	if err := wire.WriteMessage(conn, wire.Data, resp); err != nil {
		s.logf("rendezvous: replying to node %d: %s", nodeID, err)
		return
	}
	s.logf("rendezvous: node %d joined from %s", nodeID, c.addr)
	s.broadcast(dir)
}

// directoryLocked builds the current ClientInfo snapshot. Callers
// must hold s.mu.
func (s *Server) directoryLocked() peer.ClientInfo {
	ci := peer.ClientInfo{Peers: make([]peer.PeerAddr, len(s.clients))}
	for i, c := range s.clients {
		ci.Peers[i] = c.addr
	}
	return ci
}

// broadcast sends dir to every currently registered client. A client
// whose connection has gone away is simply skipped; the rendezvous
// server does not retry or evict (peer-loss recovery is out of scope).
func (s *Server) broadcast(dir peer.ClientInfo) {
	body := peer.EncodeClientInfo(dir)
	s.mu.Lock()
	targets := make([]*client, len(s.clients))
	copy(targets, s.clients)
	s.mu.Unlock()
	for _, c := range targets {
		if err := wire.WriteMessage(c.conn, wire.ClientInfo, body); err != nil {
			s.logf("rendezvous: broadcasting to %s: %s", c.addr, err)
		}
	}
}

// Teardown sends a Teardown message to every client and closes their
// connections. It is the normal end-of-life signal, not an error.
func (s *Server) Teardown() {
	s.mu.Lock()
	targets := make([]*client, len(s.clients))
	copy(targets, s.clients)
	s.clients = nil
	s.mu.Unlock()
	for _, c := range targets {
		wire.WriteMessage(c.conn, wire.Teardown, nil)
		c.conn.Close()
	}
}

// NumClients reports the current directory size, mostly useful in tests.
func (s *Server) NumClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
