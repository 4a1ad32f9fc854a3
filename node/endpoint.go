package node

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
	"sync"
	"time"

	"github.com/ahsparrow/zwave/command"
)

// GetTimeout bounds how long a typed Endpoint.Get waits for its report.
const GetTimeout = 2 * time.Second

// endpointKind distinguishes the command classes a Basic/BinarySwitch/
// MultilevelSwitch endpoint sends and accepts.
type endpointKind int

const (
	kindBasic endpointKind = iota
	kindBinarySwitch
	kindMultilevelSwitch
)

// Endpoint is a logical sub-device of a node: a Basic endpoint (the default,
// capability-less get/set), a BinarySwitch, or a MultilevelSwitch dimmer.
// endpoint 1 is canonical for single-endpoint nodes.
type Endpoint struct {
	ID   uint8
	Name string
	kind endpointKind

	node *Node

	mutex  sync.Mutex
	getCh  chan uint8
}

// NewBasicEndpoint creates an Endpoint addressed with BasicSet/BasicGet.
func NewBasicEndpoint(id uint8, name string) *Endpoint {
	return &Endpoint{ID: id, Name: name, kind: kindBasic}
}

// NewBinarySwitchEndpoint creates an Endpoint addressed with
// BinarySwitchSet/BinarySwitchGet.
func NewBinarySwitchEndpoint(id uint8, name string) *Endpoint {
	return &Endpoint{ID: id, Name: name, kind: kindBinarySwitch}
}

// NewMultilevelSwitchEndpoint creates an Endpoint addressed with
// MultilevelSwitchSet/MultilevelSwitchGet.
func NewMultilevelSwitchEndpoint(id uint8, name string) *Endpoint {
	return &Endpoint{ID: id, Name: name, kind: kindMultilevelSwitch}
}

// Kind names the endpoint's command-class family, for descriptor caches and
// diagnostics.
func (ep *Endpoint) Kind() string {
	switch ep.kind {
	case kindBinarySwitch:
		return "binary_switch"
	case kindMultilevelSwitch:
		return "multilevel_switch"
	default:
		return "basic"
	}
}

// Set sends the typed Set command for value. It does not await a report.
func (ep *Endpoint) Set(value uint8) error {
	var cmd command.Command
	switch ep.kind {
	case kindBinarySwitch:
		cmd = command.BinarySwitchSet{Value: value}
	case kindMultilevelSwitch:
		cmd = command.MultilevelSwitchSet{Value: value}
	default:
		cmd = command.BasicSet{Value: value}
	}
	return ep.node.sendEndpointCommand(ep, cmd)
}

// Get arms a fresh completion slot, sends the typed Get, and suspends up to
// GetTimeout. Returns the reported value and true, or false on timeout. At
// most one Get is outstanding per endpoint: a second call replaces the
// slot, and the first caller observes a timeout.
func (ep *Endpoint) Get() (uint8, bool) {
	ch := make(chan uint8, 1)

	ep.mutex.Lock()
	ep.getCh = ch
	ep.mutex.Unlock()

	var cmd command.Command
	switch ep.kind {
	case kindBinarySwitch:
		cmd = command.BinarySwitchGet{}
	case kindMultilevelSwitch:
		cmd = command.MultilevelSwitchGet{}
	default:
		cmd = command.BasicGet{}
	}

	if err := ep.node.sendEndpointCommand(ep, cmd); err != nil {
		return 0, false
	}

	select {
	case v := <-ch:
		return v, true
	case <-time.After(GetTimeout):
		return 0, false
	}
}

// handleIncoming resolves any armed Get slot with a reported value. The value
// is not stored: a report that arrives with no Get armed is dropped.
// BinarySwitch and MultilevelSwitch reports also satisfy a Basic get, since
// they carry the same single value byte.
func (ep *Endpoint) handleIncoming(cmd command.Command) {
	var value uint8
	switch c := cmd.(type) {
	case command.BasicReport:
		value = c.Value
	case command.BinarySwitchReport:
		value = c.Value
	case command.MultilevelSwitchReport:
		value = c.Value
	default:
		return
	}

	ep.mutex.Lock()
	ch := ep.getCh
	ep.getCh = nil
	ep.mutex.Unlock()

	if ch != nil {
		ch <- value
	}
}
