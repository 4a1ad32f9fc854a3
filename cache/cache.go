// Package cache persists a JSON descriptor (name, endpoints) per node to a
// local directory, so the boundary adapter can answer /api/node/ without a
// round trip to the stick.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"

	"github.com/ahsparrow/zwave/network"
	"github.com/ahsparrow/zwave/node"
)

// EndpointDescriptor is the cached shape of one of a node's endpoints.
type EndpointDescriptor struct {
	ID   uint8  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// NodeDescriptor is the cached shape of a node: just enough to answer
// listing and naming queries without contacting the device.
type NodeDescriptor struct {
	ID        uint8                `json:"id"`
	Name      string               `json:"name"`
	Endpoints []EndpointDescriptor `json:"endpoints"`
}

// NodeCache reads and writes NodeDescriptor files under Directory, one per
// node id.
type NodeCache struct {
	Directory string
}

func describe(n *node.Node) NodeDescriptor {
	eps := n.Endpoints()
	descriptors := make([]EndpointDescriptor, len(eps))
	for i, ep := range eps {
		descriptors[i] = EndpointDescriptor{ID: ep.ID, Name: ep.Name, Kind: ep.Kind()}
	}
	return NodeDescriptor{ID: n.ID, Name: n.Name, Endpoints: descriptors}
}

func (cache *NodeCache) path(id uint8) string {
	return path.Join(cache.Directory, fmt.Sprintf("%d.json", id))
}

// Refresh writes a descriptor file for every node currently known to net,
// creating Directory if it doesn't already exist. Files whose content is
// unchanged are left untouched.
func (cache *NodeCache) Refresh(net *network.Network) error {
	if err := os.MkdirAll(cache.Directory, 0755); err != nil {
		return err
	}

	for _, n := range net.GetNodes() {
		data, err := json.MarshalIndent(describe(n), "", "  ")
		if err != nil {
			return err
		}

		file := cache.path(n.ID)
		existing, err := ioutil.ReadFile(file)
		if err == nil && bytes.Equal(existing, data) {
			continue
		}
		if err != nil && !os.IsNotExist(err) {
			return err
		}

		if err := ioutil.WriteFile(file, data, 0644); err != nil {
			return err
		}
	}

	return nil
}

// Load reads every cached descriptor from Directory, keyed by node id. A
// missing directory is treated as an empty cache, not an error.
func (cache *NodeCache) Load() (map[uint8]NodeDescriptor, error) {
	entries, err := ioutil.ReadDir(cache.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return map[uint8]NodeDescriptor{}, nil
		}
		return nil, err
	}

	descriptors := make(map[uint8]NodeDescriptor, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := ioutil.ReadFile(path.Join(cache.Directory, entry.Name()))
		if err != nil {
			return nil, err
		}

		var descriptor NodeDescriptor
		if err := json.Unmarshal(data, &descriptor); err != nil {
			return nil, fmt.Errorf("cache: decode %s: %w", entry.Name(), err)
		}
		descriptors[descriptor.ID] = descriptor
	}

	return descriptors, nil
}
