// Package node models a single ZWave node: its command builders, its
// configuration-parameter map, and its endpoint registry.
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
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ahsparrow/zwave/command"
)

// ConfigTimeout bounds how long GetConfiguration/GetAssociation wait for a
// report.
const ConfigTimeout = time.Second

// ErrTimeout is returned when an awaited report never arrives in time.
var ErrTimeout = errors.New("node: timeout waiting for report")

// ErrUnknownParameter is returned by GetConfiguration/SetConfiguration when
// parameter is a symbolic name absent from the node's configuration map.
var ErrUnknownParameter = errors.New("node: unknown configuration parameter")

// Sender is the transport-layer primitive a Node needs: wrap an already
// serialized command-class frame in a SEND_DATA request and wait for far-end
// transmit completion. Implemented by *network.Network; declared here to
// avoid an import cycle between node and network.
type Sender interface {
	SendData(nodeID uint8, commandPayload []uint8) error
}

// ConfigParam describes where a named configuration parameter lives and how
// wide its value is.
type ConfigParam struct {
	Address uint8
	Format  command.ConfigurationFormat
}

// Node represents one device on the network.
type Node struct {
	ID   uint8
	Name string

	sender Sender
	config map[string]ConfigParam

	mutex                          sync.Mutex
	endpoints                      map[uint8]*Endpoint
	configWaiters                  map[uint8]chan int32
	associationWaiters             map[uint8]chan *command.AssociationReport
	multiChannelAssociationWaiters map[uint8]chan *command.MultiChannelAssociationReport
}

// MakeNode constructs a Node. config may be nil if the node has no named
// configuration parameters.
func MakeNode(id uint8, name string, sender Sender, config map[string]ConfigParam) *Node {
	return &Node{
		ID:                             id,
		Name:                           name,
		sender:                         sender,
		config:                         config,
		endpoints:                      make(map[uint8]*Endpoint),
		configWaiters:                  make(map[uint8]chan int32),
		associationWaiters:             make(map[uint8]chan *command.AssociationReport),
		multiChannelAssociationWaiters: make(map[uint8]chan *command.MultiChannelAssociationReport),
	}
}

// ConfigParamNames returns the symbolic configuration parameter names known
// for this node, in no particular order.
func (n *Node) ConfigParamNames() []string {
	names := make([]string, 0, len(n.config))
	for name := range n.config {
		names = append(names, name)
	}
	return names
}

// Endpoints returns the node's registered endpoints, in no particular order.
func (n *Node) Endpoints() []*Endpoint {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	eps := make([]*Endpoint, 0, len(n.endpoints))
	for _, ep := range n.endpoints {
		eps = append(eps, ep)
	}
	return eps
}

// RegisterEndpoint adds ep to the node's endpoint table, keyed by ep.ID.
func (n *Node) RegisterEndpoint(ep *Endpoint) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.endpoints[ep.ID] = ep
	ep.node = n
}

// sendCommand serializes cmd and hands it to the transport layer addressed
// to this node.
func (n *Node) sendCommand(cmd command.Command) error {
	payload, err := command.Serialize(cmd)
	if err != nil {
		return err
	}
	return n.sender.SendData(n.ID, payload)
}

// sendEndpointCommand wraps cmd in a MultiChannelEncap addressed to ep
// if and only if this node has more than one registered endpoint.
func (n *Node) sendEndpointCommand(ep *Endpoint, cmd command.Command) error {
	n.mutex.Lock()
	multi := len(n.endpoints) > 1
	n.mutex.Unlock()

	if multi {
		cmd = command.MultiChannelEncap{Endpoint: ep.ID, Command: cmd}
	}
	return n.sendCommand(cmd)
}

// HandleIncoming decodes an ApplicationCommandHandler payload (class,
// command, then command-specific bytes) and routes it.
func (n *Node) HandleIncoming(payload []uint8) {
	if len(payload) < 2 {
		log.Printf("WARN node %d: incoming payload too short: %v", n.ID, payload)
		return
	}

	cmd, err := command.Deserialize(payload[0], payload[1], payload[2:])
	if err != nil {
		log.Printf("WARN node %d: can't deserialize: %v", n.ID, err)
		return
	}

	n.route(cmd)
}

// route dispatches a decoded command per spec.md §4.5: a ConfigurationReport
// resolves its address waiter, an AssociationReport or
// MultiChannelAssociationReport resolves its group waiter, a
// MultiChannelEncap is unwrapped to the named endpoint, otherwise endpoint 1
// (if registered) receives it.
func (n *Node) route(cmd command.Command) {
	switch c := cmd.(type) {
	case command.ConfigurationReport:
		n.resolveConfig(c.Parameter, c.Value)

	case command.MultiChannelAssociationReport:
		report := c
		n.resolveMultiChannelAssociation(c.Group, &report)

	case command.AssociationReport:
		report := c
		n.resolveAssociation(c.Group, &report)

	case command.MultiChannelEncap:
		n.mutex.Lock()
		ep, ok := n.endpoints[c.Endpoint]
		n.mutex.Unlock()

		if !ok {
			log.Printf("WARN node %d: unknown endpoint %d", n.ID, c.Endpoint)
			return
		}
		ep.handleIncoming(c.Command)

	default:
		n.mutex.Lock()
		ep, ok := n.endpoints[1]
		n.mutex.Unlock()

		if ok {
			ep.handleIncoming(cmd)
		} else {
			log.Printf("WARN node %d: unhandled command %T", n.ID, cmd)
		}
	}
}

// resolveParam resolves a symbolic or raw-integer parameter reference to a
// ConfigParam, per Node.set_configuration in spec.md §4.5: a raw integer
// parameter requires an explicit format.
func (n *Node) resolveParam(parameter interface{}, format command.ConfigurationFormat) (ConfigParam, bool) {
	switch p := parameter.(type) {
	case string:
		cp, ok := n.config[p]
		return cp, ok
	case int:
		if format == 0 {
			return ConfigParam{}, false
		}
		return ConfigParam{Address: uint8(p), Format: format}, true
	case uint8:
		if format == 0 {
			return ConfigParam{}, false
		}
		return ConfigParam{Address: p, Format: format}, true
	default:
		return ConfigParam{}, false
	}
}

// resolveAddress resolves a symbolic or raw-integer parameter reference to
// a bare address, per Node.get_configuration in spec.md §4.5: format is
// irrelevant to a Get, only the address is needed.
func resolveAddress(config map[string]ConfigParam, parameter interface{}) (uint8, bool) {
	switch p := parameter.(type) {
	case string:
		cp, ok := config[p]
		return cp.Address, ok
	case int:
		return uint8(p), true
	case uint8:
		return p, true
	default:
		return 0, false
	}
}

// GetConfiguration resolves parameter (a symbolic name or a raw address),
// sends ConfigurationGet, and suspends up to ConfigTimeout for the matching
// ConfigurationReport.
func (n *Node) GetConfiguration(parameter interface{}) (int32, error) {
	address, ok := resolveAddress(n.config, parameter)
	if !ok {
		return 0, ErrUnknownParameter
	}
	cp := ConfigParam{Address: address}

	ch := make(chan int32, 1)
	n.mutex.Lock()
	n.configWaiters[cp.Address] = ch
	n.mutex.Unlock()

	if err := n.sendCommand(command.ConfigurationGet{Parameter: cp.Address}); err != nil {
		n.mutex.Lock()
		delete(n.configWaiters, cp.Address)
		n.mutex.Unlock()
		return 0, err
	}

	select {
	case v := <-ch:
		return v, nil
	case <-time.After(ConfigTimeout):
		n.mutex.Lock()
		delete(n.configWaiters, cp.Address)
		n.mutex.Unlock()
		return 0, ErrTimeout
	}
}

// SetConfiguration resolves parameter and sends ConfigurationSet. A raw
// integer parameter requires an explicit format. It does not await a
// report.
func (n *Node) SetConfiguration(parameter interface{}, value int32, format command.ConfigurationFormat) error {
	cp, ok := n.resolveParam(parameter, format)
	if !ok {
		return ErrUnknownParameter
	}

	return n.sendCommand(command.ConfigurationSet{Parameter: cp.Address, Format: cp.Format, Value: value})
}

func (n *Node) resolveConfig(address uint8, value int32) {
	n.mutex.Lock()
	ch, ok := n.configWaiters[address]
	if ok {
		delete(n.configWaiters, address)
	}
	n.mutex.Unlock()

	if !ok {
		log.Printf("INFO node %d: ConfigurationReport for unarmed address %d", n.ID, address)
		return
	}
	ch <- value
}

// GetAssociation arms a waiter for group and sends AssociationGet.
func (n *Node) GetAssociation(group uint8) (*command.AssociationReport, error) {
	ch := make(chan *command.AssociationReport, 1)
	n.mutex.Lock()
	n.associationWaiters[group] = ch
	n.mutex.Unlock()

	if err := n.sendCommand(command.AssociationGet{Group: group}); err != nil {
		n.mutex.Lock()
		delete(n.associationWaiters, group)
		n.mutex.Unlock()
		return nil, err
	}

	select {
	case report := <-ch:
		return report, nil
	case <-time.After(ConfigTimeout):
		n.mutex.Lock()
		delete(n.associationWaiters, group)
		n.mutex.Unlock()
		return nil, ErrTimeout
	}
}

// SetAssociation sends AssociationSet. Fire and forget.
func (n *Node) SetAssociation(group uint8, nodes []uint8) error {
	return n.sendCommand(command.AssociationSet{Group: group, Nodes: nodes})
}

// RemoveAssociation sends AssociationRemove. Fire and forget.
func (n *Node) RemoveAssociation(group uint8, nodes []uint8) error {
	return n.sendCommand(command.AssociationRemove{Group: group, Nodes: nodes})
}

func (n *Node) resolveAssociation(group uint8, report *command.AssociationReport) {
	n.mutex.Lock()
	ch, ok := n.associationWaiters[group]
	if ok {
		delete(n.associationWaiters, group)
	}
	n.mutex.Unlock()

	if !ok {
		log.Printf("INFO node %d: AssociationReport for unarmed group %d", n.ID, group)
		return
	}
	ch <- report
}

// GetMultiChannelAssociation arms a waiter for group and sends
// MultiChannelAssociationGet.
func (n *Node) GetMultiChannelAssociation(group uint8) (*command.MultiChannelAssociationReport, error) {
	ch := make(chan *command.MultiChannelAssociationReport, 1)
	n.mutex.Lock()
	n.multiChannelAssociationWaiters[group] = ch
	n.mutex.Unlock()

	if err := n.sendCommand(command.MultiChannelAssociationGet{Group: group}); err != nil {
		n.mutex.Lock()
		delete(n.multiChannelAssociationWaiters, group)
		n.mutex.Unlock()
		return nil, err
	}

	select {
	case report := <-ch:
		return report, nil
	case <-time.After(ConfigTimeout):
		n.mutex.Lock()
		delete(n.multiChannelAssociationWaiters, group)
		n.mutex.Unlock()
		return nil, ErrTimeout
	}
}

func (n *Node) resolveMultiChannelAssociation(group uint8, report *command.MultiChannelAssociationReport) {
	n.mutex.Lock()
	ch, ok := n.multiChannelAssociationWaiters[group]
	if ok {
		delete(n.multiChannelAssociationWaiters, group)
	}
	n.mutex.Unlock()

	if !ok {
		log.Printf("INFO node %d: MultiChannelAssociationReport for unarmed group %d", n.ID, group)
		return
	}
	ch <- report
}

// SetMultiChannelAssociation sends MultiChannelAssociationSet. Fire and
// forget, matching original_source/zwave/node.py.
func (n *Node) SetMultiChannelAssociation(group uint8, nodes []uint8, multiChannelNodes []command.MultiChannelNode) error {
	return n.sendCommand(command.MultiChannelAssociationSet{Group: group, Nodes: nodes, MultiChannelNode: multiChannelNodes})
}

// RemoveMultiChannelAssociation sends MultiChannelAssociationRemove. Fire
// and forget, matching original_source/zwave/node.py.
func (n *Node) RemoveMultiChannelAssociation(group uint8, nodes []uint8, multiChannelNodes []command.MultiChannelNode) error {
	return n.sendCommand(command.MultiChannelAssociationRemove{Group: group, Nodes: nodes, MultiChannelNode: multiChannelNodes})
}

// String implements fmt.Stringer for debug logging.
func (n *Node) String() string {
	return fmt.Sprintf("Node{ID: %d, Name: %q}", n.ID, n.Name)
}
