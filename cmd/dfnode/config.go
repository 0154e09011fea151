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

package main

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Config is the small YAML cluster-config file a node can be started
// from, mirroring cmd/sdb's use of sigs.k8s.io/yaml for config
// decoding. Rendezvous, Listen and Advertise can also be set or
// overridden by a CLI flag; ChunkSizeOverride has no flag.
type Config struct {
	Rendezvous string `json:"rendezvous"`
	Listen     string `json:"listen"`
	Advertise  string `json:"advertise"`

	// ChunkSizeOverride is accepted for forward compatibility with
	// cluster-config files that set it, but is not applied: CHUNK_SIZE
	// is a protocol invariant baked into every already-published
	// DataFrame description's chunk count, so a node cannot locally
	// override it without disagreeing with the rest of the cluster.
	ChunkSizeOverride int `json:"chunkSize,omitempty"`
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("dfnode: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("dfnode: parsing config %s: %w", path, err)
	}
	return cfg, nil
}
