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

package wire

import (
	"fmt"
	"net"
	"time"
)

// Dial opens a short-lived TCP connection to addr, tuned for the
// request/response pattern used by peer-to-peer byte-store calls.
func Dial(addr string, timeout time.Duration) (*net.TCPConn, error) {
	raddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("wire: resolving %s: %w", addr, err)
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.Dial("tcp", raddr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %s", ErrPeerGone, addr, err)
	}
	tc := conn.(*net.TCPConn)
	if err := tuneConn(tc); err != nil {
		tc.Close()
		return nil, err
	}
	return tc, nil
}

// Listen opens a listening socket on addr with SO_REUSEADDR set,
// so a node can restart and immediately rebind its advertised port.
func Listen(addr string) (*net.TCPListener, error) {
	laddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("wire: resolving %s: %w", addr, err)
	}
	l, err := net.ListenTCP("tcp", laddr)
	if err != nil {
		return nil, err
	}
	if err := tuneListener(l); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}
