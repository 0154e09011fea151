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

//go:build linux || freebsd || openbsd || netbsd || aix || dragonfly || darwin
// +build linux freebsd openbsd netbsd aix dragonfly darwin

package wire

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// tuneConn disables Nagle's algorithm and enables SO_REUSEADDR on c,
// the same tuning knobs a low-latency request/response protocol like
// ours wants on every peer connection.
func tuneConn(c *net.TCPConn) error {
	c.SetNoDelay(true)
	raw, err := c.SyscallConn()
	if err != nil {
		return err
	}
	var setErr error
	err = raw.Control(func(fd uintptr) {
		setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return setErr
}

func tuneListener(l *net.TCPListener) error {
	raw, err := l.SyscallConn()
	if err != nil {
		return err
	}
	var setErr error
	err = raw.Control(func(fd uintptr) {
		setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	if setErr == syscall.ENOPROTOOPT {
		return nil
	}
	return setErr
}
