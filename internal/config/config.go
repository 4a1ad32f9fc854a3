// Package config decodes the topology configuration file and the per-node
// parameter-map files, and builds the node/endpoint graph they describe
// against a running network.Network and api.ZWAPI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ahsparrow/zwave/api"
	"github.com/ahsparrow/zwave/command"
	"github.com/ahsparrow/zwave/network"
	"github.com/ahsparrow/zwave/node"
)

// NodeEntry is one entry of the topology file's `nodes` list.
type NodeEntry struct {
	ID     string `yaml:"id"`
	Node   uint8  `yaml:"node"`
	Name   string `yaml:"name"`
	Config string `yaml:"config"`
}

// EndpointEntry is one entry of the topology file's `switches` or `dimmers`
// list.
type EndpointEntry struct {
	ID       string `yaml:"id"`
	NodeID   string `yaml:"nodeid"`
	Endpoint uint8  `yaml:"endpoint"`
	Name     string `yaml:"name"`
}

// Topology is the top-level shape of the topology configuration file.
type Topology struct {
	Nodes    []NodeEntry     `yaml:"nodes"`
	Switches []EndpointEntry `yaml:"switches"`
	Dimmers  []EndpointEntry `yaml:"dimmers"`
}

// ParamEntry is one entry of a per-node config file's `config` map.
type ParamEntry struct {
	Address uint8  `yaml:"address"`
	Format  string `yaml:"format"`
}

// NodeConfig is the shape of a per-node parameter-map file.
type NodeConfig struct {
	Config map[string]ParamEntry `yaml:"config"`
}

// LoadTopology reads and decodes the topology configuration file at path.
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read topology: %w", err)
	}

	var topo Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("config: decode topology: %w", err)
	}
	return &topo, nil
}

// LoadNodeConfig reads and decodes a per-node parameter-map file at path.
func LoadNodeConfig(path string) (*NodeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read node config %s: %w", path, err)
	}

	var cfg NodeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode node config %s: %w", path, err)
	}
	return &cfg, nil
}

// ParseFormat maps a per-node config file's "B"/"H"/"I" format letters to a
// command.ConfigurationFormat.
func ParseFormat(letter string) (command.ConfigurationFormat, error) {
	switch letter {
	case "B":
		return command.ConfigurationFormatByte, nil
	case "H":
		return command.ConfigurationFormatShort, nil
	case "I":
		return command.ConfigurationFormatInt, nil
	default:
		return 0, fmt.Errorf("config: unknown format %q", letter)
	}
}

// Build decodes topo's node entries (resolving each one's per-node config
// file relative to baseDir), constructs the node.Node/node.Endpoint graph,
// and registers it with both net and zwapi.
func Build(net *network.Network, zwapi *api.ZWAPI, topo *Topology, baseDir string) error {
	nodesByID := make(map[string]*node.Node, len(topo.Nodes))

	for _, entry := range topo.Nodes {
		params, err := loadConfigParams(entry, baseDir)
		if err != nil {
			return err
		}

		n := node.MakeNode(entry.Node, entry.Name, net, params)
		net.RegisterNode(n)
		zwapi.RegisterNode(entry.ID, entry.Name, n)
		nodesByID[entry.ID] = n
	}

	for _, entry := range topo.Switches {
		n, ok := nodesByID[entry.NodeID]
		if !ok {
			return fmt.Errorf("config: switch %q: unknown node %q", entry.ID, entry.NodeID)
		}
		ep := node.NewBinarySwitchEndpoint(endpointID(entry), entry.Name)
		n.RegisterEndpoint(ep)
		zwapi.RegisterSwitch(entry.ID, entry.Name, ep)
	}

	for _, entry := range topo.Dimmers {
		n, ok := nodesByID[entry.NodeID]
		if !ok {
			return fmt.Errorf("config: dimmer %q: unknown node %q", entry.ID, entry.NodeID)
		}
		ep := node.NewMultilevelSwitchEndpoint(endpointID(entry), entry.Name)
		n.RegisterEndpoint(ep)
		zwapi.RegisterDimmer(entry.ID, entry.Name, ep)
	}

	return nil
}

// endpointID applies the topology file's documented default of endpoint 1.
func endpointID(entry EndpointEntry) uint8 {
	if entry.Endpoint == 0 {
		return 1
	}
	return entry.Endpoint
}

func loadConfigParams(entry NodeEntry, baseDir string) (map[string]node.ConfigParam, error) {
	if entry.Config == "" {
		return nil, nil
	}

	nodeConfig, err := LoadNodeConfig(filepath.Join(baseDir, entry.Config))
	if err != nil {
		return nil, err
	}

	params := make(map[string]node.ConfigParam, len(nodeConfig.Config))
	for name, p := range nodeConfig.Config {
		format, err := ParseFormat(p.Format)
		if err != nil {
			return nil, fmt.Errorf("config: node %q parameter %q: %w", entry.ID, name, err)
		}
		params[name] = node.ConfigParam{Address: p.Address, Format: format}
	}
	return params, nil
}
