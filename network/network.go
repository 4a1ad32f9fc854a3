// Package network manages a network of ZWave nodes through a serial controller.
// All public methods are goroutine safe.
package network

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

	"github.com/ahsparrow/zwave/controller"
	"github.com/ahsparrow/zwave/message"
	"github.com/ahsparrow/zwave/node"
	"github.com/ahsparrow/zwave/packet"
)

// SendTimeout bounds how long SendData waits for the stick's asynchronous
// transmit-completion report once the frame itself has been ACKed on the
// wire.
const SendTimeout = 5 * time.Second

// syncRequestTimeout bounds the bootstrap request/response calls made
// during Initialize.
const syncRequestTimeout = 2 * time.Second

const (
	callbackIDMin uint8 = 0x20
	callbackIDMax uint8 = 0xff
)

// ErrTimeout is returned by SendData when the stick never reports transmit
// completion for the allocated callback id within SendTimeout.
var ErrTimeout = errors.New("network: send data timeout")

// TransmitError reports a non-OK transmit completion code returned by the
// stick for a SendData call.
type TransmitError struct {
	Code uint8
}

func (e *TransmitError) Error() string {
	return fmt.Sprintf("network: transmit failed, completion code 0x%02x", e.Code)
}

// Network instance
type Network struct {
	DevicePath   string // Path to ZWave controller
	DebugLogging bool   // Enable debug logging

	mutex      sync.Mutex
	controller *controller.Controller

	nextCallbackID uint8
	outstanding    map[uint8]chan *message.ZWSendData
	pending        map[uint8]chan *packet.Packet

	nodesMutex sync.RWMutex
	nodes      map[uint8]*node.Node

	initData             *message.SerialAPIGetInitData
	supportedMessageTypes []uint8
}

func (network *Network) isOpen() bool {
	return network.controller != nil
}

// Open network. goroutine safe.
func (network *Network) Open() error {
	network.mutex.Lock()
	defer network.mutex.Unlock()

	if network.isOpen() {
		return nil
	}

	con := &controller.Controller{DevicePath: network.DevicePath}
	con.SetDispatcher(network)

	if err := con.Open(); err != nil {
		return err
	}

	network.controller = con
	network.outstanding = make(map[uint8]chan *message.ZWSendData)
	network.pending = make(map[uint8]chan *packet.Packet)
	network.nextCallbackID = callbackIDMin

	network.nodesMutex.Lock()
	network.nodes = make(map[uint8]*node.Node)
	network.nodesMutex.Unlock()

	return nil
}

// Close network. goroutine safe.
func (network *Network) Close() error {
	network.mutex.Lock()
	defer network.mutex.Unlock()

	if !network.isOpen() {
		return nil
	}

	err := network.controller.Close()
	network.controller = nil
	return err
}

// Dispatch implements controller.Dispatcher. It is invoked on its own
// goroutine by the controller for every unsolicited data frame.
func (network *Network) Dispatch(p *packet.Packet) {
	if network.DebugLogging {
		log.Printf("DEBUG network dispatch: %s", p)
	}

	switch p.MessageType {
	case message.MessageTypeApplicationCommandHandler:
		network.handleApplicationCommand(p)

	case message.MessageTypeZWSendData:
		network.handleSendDataCompletion(p)

	default:
		network.mutex.Lock()
		ch, ok := network.pending[p.MessageType]
		network.mutex.Unlock()

		if ok {
			ch <- p
			return
		}

		log.Printf("INFO network: unhandled MessageType 0x%02x", p.MessageType)
	}
}

func (network *Network) handleApplicationCommand(p *packet.Packet) {
	resp, err := message.ApplicationCommandHandlerResponse(p)
	if err != nil {
		log.Printf("ERROR network: decoding ApplicationCommandHandler: %v", err)
		return
	}

	n := network.GetNode(resp.NodeID)
	if n == nil {
		log.Printf("INFO network: ApplicationCommandHandler for unknown node %d", resp.NodeID)
		return
	}

	n.HandleIncoming(resp.Body)
}

func (network *Network) handleSendDataCompletion(p *packet.Packet) {
	resp, err := message.ZWSendDataResponse(p)
	if err != nil {
		log.Printf("ERROR network: decoding ZWSendData: %v", err)
		return
	}

	network.mutex.Lock()
	ch, ok := network.outstanding[resp.CallbackID]
	if ok {
		delete(network.outstanding, resp.CallbackID)
	}
	network.mutex.Unlock()

	if !ok {
		log.Printf("INFO network: ZWSendData completion for unknown callback id 0x%02x", resp.CallbackID)
		return
	}

	ch <- resp
}

// allocateCallbackID returns the next callback id in the cyclic range
// [0x20, 0xff]. Must be called with network.mutex held.
func (network *Network) allocateCallbackID() uint8 {
	id := network.nextCallbackID
	if network.nextCallbackID == callbackIDMax {
		network.nextCallbackID = callbackIDMin
	} else {
		network.nextCallbackID++
	}
	return id
}

// SendData is the sole caller-visible transmit primitive: it wraps
// commandPayload in an API_ZW_SEND_DATA request addressed to nodeID,
// assigns a fresh callback id, and suspends the caller until the stick
// reports transmit completion or SendTimeout elapses.
func (network *Network) SendData(nodeID uint8, commandPayload []uint8) error {
	network.mutex.Lock()
	if !network.isOpen() {
		network.mutex.Unlock()
		return errors.New("network: not open")
	}
	callbackID := network.allocateCallbackID()
	done := make(chan *message.ZWSendData, 1)
	network.outstanding[callbackID] = done
	con := network.controller
	network.mutex.Unlock()

	cleanup := func() {
		network.mutex.Lock()
		delete(network.outstanding, callbackID)
		network.mutex.Unlock()
	}

	req, err := message.ZWSendDataRequest(nodeID, commandPayload,
		message.TransmitOptionACK|message.TransmitOptionAutoRoute, callbackID)
	if err != nil {
		cleanup()
		return err
	}

	if err := con.Send(req); err != nil {
		cleanup()
		return err
	}

	select {
	case resp := <-done:
		if resp.Status != message.TransmitCompleteOK {
			return &TransmitError{Code: resp.Status}
		}
		return nil
	case <-time.After(SendTimeout):
		cleanup()
		return ErrTimeout
	}
}

// doSyncRequest sends req and waits for the next frame of the same
// MessageType, for the handful of bootstrap calls that still follow a bare
// request/response shape rather than the callback-id scheme.
func (network *Network) doSyncRequest(req *packet.Packet, timeout time.Duration) (*packet.Packet, error) {
	network.mutex.Lock()
	if !network.isOpen() {
		network.mutex.Unlock()
		return nil, errors.New("network: not open")
	}
	ch := make(chan *packet.Packet, 1)
	network.pending[req.MessageType] = ch
	con := network.controller
	network.mutex.Unlock()

	defer func() {
		network.mutex.Lock()
		delete(network.pending, req.MessageType)
		network.mutex.Unlock()
	}()

	if err := con.Send(req); err != nil {
		return nil, err
	}

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("network: timeout waiting for response to message type 0x%02x", req.MessageType)
	}
}

// Initialize queries the controller for its capabilities and populates the
// node table from the stick's init data. goroutine safe.
func (network *Network) Initialize() error {
	capabilities, err := network.initialSerialAPIGetCapabilities()
	if err != nil {
		return err
	}
	network.supportedMessageTypes = capabilities.MessageTypes

	version, err := network.initialGetVersion()
	if err != nil {
		return err
	}

	memoryID, err := network.initialGetMemoryID()
	if err != nil {
		return err
	}
	if memoryID.NodeID != 0x1 {
		return fmt.Errorf("network: expected controller node 0x01, got 0x%02x", memoryID.NodeID)
	}

	initData, err := network.initialSerialAPIGetInitData()
	if err != nil {
		return err
	}
	network.initData = initData

	if network.DebugLogging {
		log.Printf("DEBUG GetVersion: %+v", version)
		log.Printf("DEBUG GetMemoryID: %+v", memoryID)
		log.Printf("DEBUG SerialAPIGetCapabilities: %+v", capabilities)
		log.Printf("DEBUG SerialAPIGetInitData: %+v", initData)
	}

	network.nodesMutex.Lock()
	defer network.nodesMutex.Unlock()
	for _, id := range initData.Nodes {
		if id == memoryID.NodeID {
			continue
		}
		if _, ok := network.nodes[id]; !ok {
			network.nodes[id] = node.MakeNode(id, fmt.Sprintf("node-%d", id), network, nil)
		}
	}

	return nil
}

func (network *Network) initialGetVersion() (*message.GetVersion, error) {
	resp, err := network.doSyncRequest(message.GetVersionRequest(), syncRequestTimeout)
	if err != nil {
		return nil, err
	}
	return message.GetVersionResponse(resp)
}

func (network *Network) initialGetMemoryID() (*message.MemoryGetID, error) {
	resp, err := network.doSyncRequest(message.MemoryGetIDRequest(), syncRequestTimeout)
	if err != nil {
		return nil, err
	}
	return message.MemoryGetIDResponse(resp)
}

func (network *Network) initialSerialAPIGetCapabilities() (*message.SerialAPIGetCapabilities, error) {
	resp, err := network.doSyncRequest(message.SerialAPIGetCapabilitiesRequest(), syncRequestTimeout)
	if err != nil {
		return nil, err
	}
	return message.SerialAPIGetCapabilitiesResponse(resp)
}

func (network *Network) initialSerialAPIGetInitData() (*message.SerialAPIGetInitData, error) {
	resp, err := network.doSyncRequest(message.SerialAPIGetInitDataRequest(), syncRequestTimeout)
	if err != nil {
		return nil, err
	}
	return message.SerialAPIGetInitDataResponse(resp)
}

// GetNode returns the node or nil if it doesn't exist. goroutine safe.
func (network *Network) GetNode(nodeID uint8) *node.Node {
	network.nodesMutex.RLock()
	defer network.nodesMutex.RUnlock()

	return network.nodes[nodeID]
}

// GetNodes returns a copy of the node list. goroutine safe.
func (network *Network) GetNodes() []*node.Node {
	network.nodesMutex.RLock()
	defer network.nodesMutex.RUnlock()

	nodes := make([]*node.Node, 0, len(network.nodes))
	for _, n := range network.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// RegisterNode adds n to the node table, keyed by its id. Used by callers
// that build the topology from configuration rather than discovery.
func (network *Network) RegisterNode(n *node.Node) {
	network.nodesMutex.Lock()
	defer network.nodesMutex.Unlock()
	if network.nodes == nil {
		network.nodes = make(map[uint8]*node.Node)
	}
	network.nodes[n.ID] = n
}
