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

// Package cluster maintains each node's view of cluster membership:
// the rendezvous handshake, and a background poller that keeps a
// lock-free snapshot of the current (num_nodes, per_node(ip, port))
// directory up to date, in the spirit of the teacher's peerCmd
// (cmd/snellerd/peercmd.go), which polls an external peer source on
// a ticker and stores the result in a sync/atomic.Value.
package cluster

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slices"

	"github.com/framegrid/framegrid/peer"
	"github.com/framegrid/framegrid/wire"
)

// Directory is an immutable snapshot of cluster membership. Node
// ordering defines node ids: Peers[i] is node i's address.
type Directory struct {
	Peers []peer.PeerAddr
}

// Size returns the number of nodes currently in the directory.
func (d Directory) Size() int { return len(d.Peers) }

// Addr returns the dialable "host:port" string for node id.
func (d Directory) Addr(node uint32) (string, error) {
	if int(node) >= len(d.Peers) {
		return "", fmt.Errorf("cluster: node %d not in directory of size %d", node, len(d.Peers))
	}
	p := d.Peers[node]
	return fmt.Sprintf("%s:%d", p.IP, p.Port), nil
}

// sorted returns a copy of d's peers sorted by IP then port, purely
// so that tests and logs get a deterministic rendering; node ids
// (index into Peers) are unaffected since this is only used for
// display, never to reassign positions.
func (d Directory) sorted() []peer.PeerAddr {
	out := append([]peer.PeerAddr(nil), d.Peers...)
	slices.SortFunc(out, func(a, b peer.PeerAddr) bool {
		if !a.IP.Equal(b.IP) {
			return string(a.IP) < string(b.IP)
		}
		return a.Port < b.Port
	})
	return out
}

// String renders the directory in a deterministic (IP, port) order
// for logging, independent of node-id assignment order.
func (d Directory) String() string {
	out := "["
	for i, p := range d.sorted() {
		if i > 0 {
			out += " "
		}
		out += p.String()
	}
	return out + "]"
}

// Client holds a node's live connection to the rendezvous server and
// exposes the current directory snapshot plus this node's assigned id.
type Client struct {
	NodeID uint32
	Self   peer.PeerAddr

	// JoinID tags this client's handshake in log output, the same
	// role uuid.New().String() plays for queryID in the teacher's
	// query handler.
	JoinID string

	conn net.Conn
	mr   *wire.MessageReader

	dir atomic.Value // Directory

	Logf func(format string, args ...interface{})
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// Join dials the rendezvous server at addr, performs the Handshake,
// and returns a Client with the node id the server assigned. The
// caller must call Client.Poll (typically in its own goroutine) to
// keep the directory up to date.
func Join(rendezvousAddr string, self peer.PeerAddr, timeout time.Duration) (*Client, error) {
	cid := wire.NewCorrelationID()
	conn, err := wire.Dial(rendezvousAddr, timeout)
	if err != nil {
		return nil, fmt.Errorf("cluster: [%s] joining %s: %w", cid, rendezvousAddr, err)
	}
	req := peer.EncodeHandshakeRequest(peer.HandshakeRequest{IP: self.IP, Port: self.Port})
	if err := wire.WriteMessage(conn, wire.Handshake, req); err != nil {
		conn.Close()
		return nil, err
	}
	mr := wire.NewMessageReader(conn)
	typ, body, err := mr.Next()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if typ != wire.Data {
		conn.Close()
		return nil, fmt.Errorf("cluster: expected handshake response, got %s", typ)
	}
	resp, err := peer.DecodeHandshakeResponse(body)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c := &Client{
		NodeID: resp.NodeID,
		Self:   self,
		JoinID: cid,
		conn:   conn,
		mr:     mr,
	}
	c.dir.Store(Directory{})
	c.logf("cluster: [%s] joined as node %d", cid, resp.NodeID)
	return c, nil
}

// Directory returns the most recently observed cluster membership.
// Safe for concurrent use; lock-free on the read path, matching the
// teacher's "single-writer-multiple-reader" directory policy (§5).
func (c *Client) Directory() Directory {
	return c.dir.Load().(Directory)
}

// Poll blocks, reading ClientInfo and Teardown frames from the
// rendezvous connection until the connection closes or a Teardown
// arrives, updating the stored Directory as updates come in. It is
// meant to run in its own goroutine for the lifetime of the node.
func (c *Client) Poll() error {
	for {
		typ, body, err := c.mr.Next()
		if err != nil {
			return err
		}
		switch typ {
		case wire.ClientInfo:
			ci, err := peer.DecodeClientInfo(body)
			if err != nil {
				c.logf("cluster: bad ClientInfo: %s", err)
				continue
			}
			c.dir.Store(Directory{Peers: ci.Peers})
			c.logf("cluster: directory now has %d nodes", len(ci.Peers))
		case wire.Teardown:
			c.conn.Close()
			return nil
		default:
			c.logf("cluster: unexpected frame %s from rendezvous", typ)
		}
	}
}

// Close closes the rendezvous connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
