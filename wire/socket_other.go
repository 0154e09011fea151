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

//go:build !linux && !freebsd && !openbsd && !netbsd && !aix && !dragonfly && !darwin
// +build !linux,!freebsd,!openbsd,!netbsd,!aix,!dragonfly,!darwin

package wire

import "net"

// tuneConn only disables Nagle's algorithm on platforms without
// golang.org/x/sys/unix socket-option support; SO_REUSEADDR is not
// set. tuneListener is a no-op there.
func tuneConn(c *net.TCPConn) error {
	c.SetNoDelay(true)
	return nil
}

func tuneListener(l *net.TCPListener) error { return nil }
