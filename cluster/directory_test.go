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

package cluster

import (
	"net"
	"testing"
	"time"

	"github.com/framegrid/framegrid/peer"
	"github.com/framegrid/framegrid/rendezvous"
)

func startRendezvous(t *testing.T) (net.Listener, *rendezvous.Server) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := &rendezvous.Server{}
	go srv.Serve(l)
	return l, srv
}

func TestJoinAssignsSequentialIDs(t *testing.T) {
	l, srv := startRendezvous(t)
	defer l.Close()
	defer srv.Teardown()

	var clients []*Client
	for i := 0; i < 3; i++ {
		c, err := Join(l.Addr().String(), peer.PeerAddr{IP: net.IPv4(127, 0, 0, 1), Port: uint16(41000 + i)}, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if c.NodeID != uint32(i) {
			t.Fatalf("node %d: got id %d", i, c.NodeID)
		}
		clients = append(clients, c)
		go c.Poll()
	}

	// give the pollers a moment to observe the final broadcast
	deadline := time.Now().Add(2 * time.Second)
	for {
		if clients[0].Directory().Size() == 3 && clients[2].Directory().Size() == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("directory never reached size 3: %v %v", clients[0].Directory(), clients[2].Directory())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
