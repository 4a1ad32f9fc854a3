package api

/*
Copyright (C) 2017 Jan Kasiak

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

import (
	"testing"
	"time"

	"github.com/ahsparrow/zwave/node"
)

// fakeSender is a node.Sender that never actually transmits; tests that
// need a report delivered call n.HandleIncoming directly.
type fakeSender struct {
	fail error
}

func (s *fakeSender) SendData(nodeID uint8, commandPayload []uint8) error {
	return s.fail
}

func newTestAPI() (*ZWAPI, *node.Node) {
	api := NewZWAPI(nil)
	n := node.MakeNode(4, "lamp", &fakeSender{}, map[string]node.ConfigParam{
		"minimum_brightness": {Address: 1, Format: 1},
	})
	ep := node.NewBinarySwitchEndpoint(1, "switch")
	n.RegisterEndpoint(ep)
	api.RegisterNode("lamp", "Lamp", n)
	api.RegisterSwitch("lamp-switch", "Lamp Switch", ep)
	return api, n
}

func TestListNodesAndConfigParams(t *testing.T) {
	api, _ := newTestAPI()

	nodes := api.ListNodes()
	if len(nodes) != 1 || nodes[0].ID != "lamp" {
		t.Fatalf("got %+v", nodes)
	}

	names, err := api.ListConfigParams("lamp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 || names[0] != "minimum_brightness" {
		t.Fatalf("got %v", names)
	}
}

func TestListConfigParamsUnknownNode(t *testing.T) {
	api, _ := newTestAPI()

	if _, err := api.ListConfigParams("missing"); err == nil {
		t.Fatal("expected error for unknown node")
	} else if apiErr, ok := err.(*Error); !ok || apiErr.Kind != UnknownEntity {
		t.Errorf("got %v, want UnknownEntity", err)
	}
}

func TestGetConfigTimesOut(t *testing.T) {
	api, _ := newTestAPI()

	_, err := api.GetConfig("lamp", "minimum_brightness")
	if err == nil {
		t.Fatal("expected timeout, no report was ever delivered")
	}
	apiErr, ok := err.(*Error)
	if !ok || apiErr.Kind != Timeout {
		t.Errorf("got %v, want Timeout", err)
	}
}

func TestSetConfigUnknownParam(t *testing.T) {
	api, _ := newTestAPI()

	err := api.SetConfig("lamp", "no_such_param", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if apiErr, ok := err.(*Error); !ok || apiErr.Kind != UnknownEntity {
		t.Errorf("got %v, want UnknownEntity", err)
	}
}

func TestSwitchGetSet(t *testing.T) {
	api, n := newTestAPI()

	done := make(chan struct{})
	go func() {
		on, err := api.GetSwitch("lamp-switch")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !on {
			t.Errorf("expected switch reported on")
		}
		close(done)
	}()

	// Give the Get a moment to arm its slot before the report arrives.
	time.Sleep(5 * time.Millisecond)
	n.HandleIncoming([]uint8{0x25, 0x03, 0xff})
	<-done

	if err := api.SetSwitch("lamp-switch", false); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSwitchUnknownID(t *testing.T) {
	api, _ := newTestAPI()

	if _, err := api.GetSwitch("missing"); err == nil {
		t.Fatal("expected error")
	} else if apiErr, ok := err.(*Error); !ok || apiErr.Kind != UnknownEntity {
		t.Errorf("got %v, want UnknownEntity", err)
	}
}

func TestSetDimmerRejectsOutOfRangeValue(t *testing.T) {
	api, n := newTestAPI()
	ep := node.NewMultilevelSwitchEndpoint(1, "dimmer")
	n.RegisterEndpoint(ep)
	api.RegisterDimmer("lamp-dimmer", "Lamp Dimmer", ep)

	err := api.SetDimmer("lamp-dimmer", 150)
	if err == nil {
		t.Fatal("expected error")
	}
	if apiErr, ok := err.(*Error); !ok || apiErr.Kind != BadInput {
		t.Errorf("got %v, want BadInput", err)
	}
}

func TestSetDimmerAcceptsOnLastValue(t *testing.T) {
	api, n := newTestAPI()
	ep := node.NewMultilevelSwitchEndpoint(1, "dimmer")
	n.RegisterEndpoint(ep)
	api.RegisterDimmer("lamp-dimmer", "Lamp Dimmer", ep)

	if err := api.SetDimmer("lamp-dimmer", 255); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
