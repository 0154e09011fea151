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

// Command dfnode runs one peer of the cluster: it joins the
// rendezvous server, accepts inbound byte-store connections from
// other peers, and keeps its view of cluster membership up to date.
//
// dfnode only stands the core up; it does not itself ingest or
// publish anything (that's left to code built on package ingest and
// package dataframe, out of scope per spec.md §1's "application
// layer" non-goal).
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/framegrid/framegrid/bytestore"
	"github.com/framegrid/framegrid/cluster"
	"github.com/framegrid/framegrid/peer"
	"github.com/framegrid/framegrid/rendezvous"
	"github.com/framegrid/framegrid/wire"
)

func main() {
	fs := flag.NewFlagSet("dfnode", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML cluster-config file")
	rendezvousAddr := fs.String("rendezvous", "", "rendezvous server address (overrides config)")
	listenAddr := fs.String("listen", "", "address to accept peer byte-store connections on (overrides config)")
	advertiseAddr := fs.String("advertise", "", "address other peers can reach this node on (overrides config)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *rendezvousAddr != "" {
		cfg.Rendezvous = *rendezvousAddr
	}
	if *listenAddr != "" {
		cfg.Listen = *listenAddr
	}
	if *advertiseAddr != "" {
		cfg.Advertise = *advertiseAddr
	}
	if cfg.Rendezvous == "" {
		cfg.Rendezvous = fmt.Sprintf("127.0.0.1:%d", rendezvous.DefaultPort)
	}
	if cfg.Listen == "" {
		log.Fatal("dfnode: -listen (or config listen:) is required")
	}
	if cfg.Advertise == "" {
		cfg.Advertise = cfg.Listen
	}

	logger := log.New(os.Stdout, "", 0)

	self, err := parseAdvertise(cfg.Advertise)
	if err != nil {
		logger.Fatalf("dfnode: parsing advertise address %s: %s", cfg.Advertise, err)
	}

	client, err := cluster.Join(cfg.Rendezvous, self, 5*time.Second)
	if err != nil {
		logger.Fatalf("dfnode: joining rendezvous at %s: %s", cfg.Rendezvous, err)
	}
	client.Logf = logger.Printf
	logger.Printf("dfnode: joined as node %d, advertising %s", client.NodeID, self)

	l, err := wire.Listen(cfg.Listen)
	if err != nil {
		logger.Fatalf("dfnode: listen %s: %s", cfg.Listen, err)
	}
	logger.Printf("dfnode: accepting peer connections on %s", l.Addr())

	store := bytestore.New(client.NodeID)
	store.Logf = logger.Printf
	proxy := &bytestore.Proxy{
		Store: store,
		Resolve: func(node uint32) (string, error) {
			return client.Directory().Addr(node)
		},
		Logf: logger.Printf,
	}

	go func() {
		if err := client.Poll(); err != nil {
			logger.Printf("dfnode: rendezvous connection ended: %s", err)
		}
	}()

	errs := make(chan error, 1)
	go func() { errs <- proxy.Serve(l) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Printf("dfnode: shutting down")
		l.Close()
		client.Close()
	case err := <-errs:
		logger.Printf("dfnode: serve: %s", err)
	}
}

// parseAdvertise splits "host:port" into a peer.PeerAddr, resolving
// host to its first IPv4 address.
func parseAdvertise(addr string) (peer.PeerAddr, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return peer.PeerAddr{}, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return peer.PeerAddr{}, fmt.Errorf("bad port %q: %w", portStr, err)
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return peer.PeerAddr{}, err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return peer.PeerAddr{IP: v4, Port: uint16(port)}, nil
		}
	}
	return peer.PeerAddr{}, fmt.Errorf("no IPv4 address found for %s", host)
}
