// Package api is the boundary adapter: it translates gateway-style calls
// (list nodes, get/set configuration, get/set switches and dimmers,
// get/set/remove multi-channel association) into network/node/endpoint
// calls, and classifies every error into the kind the HTTP layer maps to a
// status code.
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
	"errors"
	"fmt"
	"sync"

	"github.com/ahsparrow/zwave/network"
	"github.com/ahsparrow/zwave/node"
)

// ErrorKind classifies a failure returned by the api package, per the error
// table in spec.md §7.
type ErrorKind int

const (
	// BadInput: the caller-supplied payload was syntactically invalid.
	BadInput ErrorKind = iota + 1
	// UnknownEntity: node, endpoint, parameter, or group is not registered.
	UnknownEntity
	// Timeout: an awaited report never arrived.
	Timeout
	// TransmitError: the stick reported a non-OK completion code.
	TransmitError
)

// Error wraps an api-level failure with its classification.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func badInput(format string, args ...interface{}) error {
	return &Error{Kind: BadInput, Err: fmt.Errorf(format, args...)}
}

func unknownEntity(format string, args ...interface{}) error {
	return &Error{Kind: UnknownEntity, Err: fmt.Errorf(format, args...)}
}

// classify turns an error returned by node/network into an *Error, choosing
// Timeout/TransmitError/UnknownEntity as appropriate. A nil err classifies
// to nil.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, node.ErrUnknownParameter) {
		return &Error{Kind: UnknownEntity, Err: err}
	}
	if errors.Is(err, node.ErrTimeout) || errors.Is(err, network.ErrTimeout) {
		return &Error{Kind: Timeout, Err: err}
	}

	var txErr *network.TransmitError
	if errors.As(err, &txErr) {
		return &Error{Kind: TransmitError, Err: err}
	}

	return &Error{Kind: UnknownEntity, Err: err}
}

// NodeInfo is the {id,name} pair the HTTP layer lists nodes, switches and
// dimmers as.
type NodeInfo struct {
	ID   string
	Name string
}

type nodeEntry struct {
	id   string
	name string
	node *node.Node
}

type endpointEntry struct {
	id       string
	name     string
	endpoint *node.Endpoint
}

// ZWAPI is the boundary adapter instance: a registry of symbolic node,
// switch and dimmer ids (populated by internal/config from the topology
// file) layered over a *network.Network.
type ZWAPI struct {
	Network *network.Network

	mutex    sync.RWMutex
	nodes    map[string]*nodeEntry
	switches map[string]*endpointEntry
	dimmers  map[string]*endpointEntry
}

// NewZWAPI constructs an adapter over an already-built network.Network.
func NewZWAPI(net *network.Network) *ZWAPI {
	return &ZWAPI{
		Network:  net,
		nodes:    make(map[string]*nodeEntry),
		switches: make(map[string]*endpointEntry),
		dimmers:  make(map[string]*endpointEntry),
	}
}

// RegisterNode associates a symbolic id and display name with a *node.Node,
// per a `nodes` entry in the topology file.
func (api *ZWAPI) RegisterNode(id, name string, n *node.Node) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	api.nodes[id] = &nodeEntry{id: id, name: name, node: n}
}

// RegisterSwitch associates a symbolic id and display name with a
// BinarySwitch endpoint, per a `switches` entry in the topology file.
func (api *ZWAPI) RegisterSwitch(id, name string, ep *node.Endpoint) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	api.switches[id] = &endpointEntry{id: id, name: name, endpoint: ep}
}

// RegisterDimmer associates a symbolic id and display name with a
// MultilevelSwitch endpoint, per a `dimmers` entry in the topology file.
func (api *ZWAPI) RegisterDimmer(id, name string, ep *node.Endpoint) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	api.dimmers[id] = &endpointEntry{id: id, name: name, endpoint: ep}
}

func (api *ZWAPI) lookupNode(id string) (*node.Node, error) {
	api.mutex.RLock()
	defer api.mutex.RUnlock()
	entry, ok := api.nodes[id]
	if !ok {
		return nil, unknownEntity("api: unknown node %q", id)
	}
	return entry.node, nil
}

func (api *ZWAPI) lookupEndpoint(registry map[string]*endpointEntry, id string) (*node.Endpoint, error) {
	api.mutex.RLock()
	defer api.mutex.RUnlock()
	entry, ok := registry[id]
	if !ok {
		return nil, unknownEntity("api: unknown entity %q", id)
	}
	return entry.endpoint, nil
}

// ListNodes returns every registered node's id and name. goroutine safe.
func (api *ZWAPI) ListNodes() []NodeInfo {
	api.mutex.RLock()
	defer api.mutex.RUnlock()

	out := make([]NodeInfo, 0, len(api.nodes))
	for _, entry := range api.nodes {
		out = append(out, NodeInfo{ID: entry.id, Name: entry.name})
	}
	return out
}

// ListSwitches returns every registered switch's id and name. goroutine
// safe.
func (api *ZWAPI) ListSwitches() []NodeInfo {
	api.mutex.RLock()
	defer api.mutex.RUnlock()

	out := make([]NodeInfo, 0, len(api.switches))
	for _, entry := range api.switches {
		out = append(out, NodeInfo{ID: entry.id, Name: entry.name})
	}
	return out
}

// ListDimmers returns every registered dimmer's id and name. goroutine
// safe.
func (api *ZWAPI) ListDimmers() []NodeInfo {
	api.mutex.RLock()
	defer api.mutex.RUnlock()

	out := make([]NodeInfo, 0, len(api.dimmers))
	for _, entry := range api.dimmers {
		out = append(out, NodeInfo{ID: entry.id, Name: entry.name})
	}
	return out
}
