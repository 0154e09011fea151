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

// Command rendezvous runs the bootstrap service nodes connect to once
// at startup: it assigns node ids and broadcasts cluster membership.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/framegrid/framegrid/rendezvous"
	"github.com/framegrid/framegrid/wire"
)

func main() {
	fs := flag.NewFlagSet("rendezvous", flag.ExitOnError)
	listen := fs.String("listen", rendezvous.DefaultAddr, "address to accept node handshakes on")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	logger := log.New(os.Stdout, "", 0)

	l, err := wire.Listen(*listen)
	if err != nil {
		logger.Fatalf("rendezvous: listen %s: %s", *listen, err)
	}
	logger.Printf("rendezvous: listening on %s", l.Addr())

	srv := &rendezvous.Server{Logf: logger.Printf}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Printf("rendezvous: shutting down")
		srv.Teardown()
		l.Close()
	}()

	if err := srv.Serve(l); err != nil {
		logger.Printf("rendezvous: serve: %s", err)
	}
}
