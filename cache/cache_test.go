package cache

import (
	"testing"

	"github.com/ahsparrow/zwave/network"
	"github.com/ahsparrow/zwave/node"
)

type fakeSender struct{}

func (fakeSender) SendData(nodeID uint8, commandPayload []uint8) error { return nil }

func TestRefreshThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()

	n := node.MakeNode(4, "lamp", fakeSender{}, nil)
	n.RegisterEndpoint(node.NewBinarySwitchEndpoint(1, "switch"))

	net := &network.Network{}
	net.RegisterNode(n)

	c := &NodeCache{Directory: dir}
	if err := c.Refresh(net); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	descriptors, err := c.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	descriptor, ok := descriptors[4]
	if !ok {
		t.Fatalf("expected descriptor for node 4, got %+v", descriptors)
	}
	if descriptor.Name != "lamp" {
		t.Errorf("got name %q want lamp", descriptor.Name)
	}
	if len(descriptor.Endpoints) != 1 || descriptor.Endpoints[0].Kind != "binary_switch" {
		t.Errorf("got endpoints %+v", descriptor.Endpoints)
	}
}

func TestLoadMissingDirectoryIsEmptyNotError(t *testing.T) {
	c := &NodeCache{Directory: "/nonexistent/path/for/cache/test"}

	descriptors, err := c.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descriptors) != 0 {
		t.Errorf("got %d descriptors, want 0", len(descriptors))
	}
}

func TestRefreshLeavesUnchangedFileAlone(t *testing.T) {
	dir := t.TempDir()

	n := node.MakeNode(4, "lamp", fakeSender{}, nil)
	net := &network.Network{}
	net.RegisterNode(n)

	c := &NodeCache{Directory: dir}
	if err := c.Refresh(net); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := c.Refresh(net); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}

	descriptors, err := c.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(descriptors) != 1 {
		t.Errorf("got %d descriptors, want 1", len(descriptors))
	}
}
