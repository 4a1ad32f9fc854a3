package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ahsparrow/zwave/api"
	"github.com/ahsparrow/zwave/network"
)

const topologyYAML = `
nodes:
  - id: lamp
    node: 4
    name: Living room lamp
    config: lamp.yaml
switches:
  - id: lamp-switch
    nodeid: lamp
    name: Living room lamp switch
dimmers:
  - id: lamp-dimmer
    nodeid: lamp
    endpoint: 2
    name: Living room dimmer
`

const nodeConfigYAML = `
config:
  minimum_brightness:
    address: 1
    format: B
`

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "topology.yaml"), []byte(topologyYAML), 0644); err != nil {
		t.Fatalf("write topology: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lamp.yaml"), []byte(nodeConfigYAML), 0644); err != nil {
		t.Fatalf("write node config: %v", err)
	}
	return dir
}

func TestLoadTopologyAndBuild(t *testing.T) {
	dir := writeFixtures(t)

	topo, err := LoadTopology(filepath.Join(dir, "topology.yaml"))
	if err != nil {
		t.Fatalf("LoadTopology: %v", err)
	}
	if len(topo.Nodes) != 1 || topo.Nodes[0].ID != "lamp" {
		t.Fatalf("got %+v", topo.Nodes)
	}

	net := &network.Network{}
	zwapi := api.NewZWAPI(net)

	if err := Build(net, zwapi, topo, dir); err != nil {
		t.Fatalf("Build: %v", err)
	}

	nodes := zwapi.ListNodes()
	if len(nodes) != 1 || nodes[0].ID != "lamp" {
		t.Fatalf("got %+v", nodes)
	}

	names, err := zwapi.ListConfigParams("lamp")
	if err != nil {
		t.Fatalf("ListConfigParams: %v", err)
	}
	if len(names) != 1 || names[0] != "minimum_brightness" {
		t.Fatalf("got %v", names)
	}

	switches := zwapi.ListSwitches()
	if len(switches) != 1 || switches[0].ID != "lamp-switch" {
		t.Fatalf("got %+v", switches)
	}

	dimmers := zwapi.ListDimmers()
	if len(dimmers) != 1 || dimmers[0].ID != "lamp-dimmer" {
		t.Fatalf("got %+v", dimmers)
	}
}

func TestBuildUnknownNodeReference(t *testing.T) {
	topo := &Topology{
		Switches: []EndpointEntry{{ID: "orphan", NodeID: "missing", Name: "orphan switch"}},
	}

	net := &network.Network{}
	zwapi := api.NewZWAPI(net)

	if err := Build(net, zwapi, topo, "."); err == nil {
		t.Fatal("expected error for unknown node reference")
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]bool{"B": true, "H": true, "I": true, "X": false}
	for letter, wantOK := range cases {
		_, err := ParseFormat(letter)
		if (err == nil) != wantOK {
			t.Errorf("ParseFormat(%q): err=%v, want ok=%v", letter, err, wantOK)
		}
	}
}
