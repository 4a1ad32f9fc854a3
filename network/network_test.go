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
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/ahsparrow/zwave/controller"
	"github.com/ahsparrow/zwave/message"
	"github.com/ahsparrow/zwave/node"
	"github.com/ahsparrow/zwave/packet"
)

// fakePort is an in-memory serial device, mirroring controller's own test
// fake so the network layer can be exercised without hardware.
type fakePort struct {
	mutex   sync.Mutex
	written bytes.Buffer
	replies chan []byte
	closed  bool
}

func newFakePort() *fakePort {
	return &fakePort{replies: make(chan []byte, 64)}
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.mutex.Lock()
	f.written.Write(p)
	f.mutex.Unlock()
	return len(p), nil
}

func (f *fakePort) Read(p []byte) (int, error) {
	chunk, ok := <-f.replies
	if !ok {
		time.Sleep(10 * time.Millisecond)
		return 0, nil
	}
	return copy(p, chunk), nil
}

func (f *fakePort) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if !f.closed {
		close(f.replies)
		f.closed = true
	}
	return nil
}

func (f *fakePort) queue(b []byte) {
	defer func() { recover() }()
	f.replies <- b
}

// autoACK acknowledges every frame the controller writes so sendFrame
// always succeeds without needing to model the wire byte-for-byte.
func (f *fakePort) autoACK(stop <-chan struct{}) {
	go func() {
		var lastLen int
		for {
			select {
			case <-stop:
				return
			default:
			}
			f.mutex.Lock()
			n := f.written.Len()
			f.mutex.Unlock()
			if n > lastLen {
				lastLen = n
				f.queue([]byte{packet.PacketPreambleACK})
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

// autoComplete resolves every SendData call issued against net with an OK
// transmit completion shortly after it's issued, so tests that exercise
// higher layers (Node, Endpoint) built on SendData don't need to hand-roll
// the completion frame themselves.
func autoComplete(net *Network, stop <-chan struct{}) {
	seen := make(map[uint8]bool)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			net.mutex.Lock()
			for id := range net.outstanding {
				if !seen[id] {
					seen[id] = true
					cbID := id
					go func() {
						time.Sleep(5 * time.Millisecond)
						p := &packet.Packet{MessageType: message.MessageTypeZWSendData,
							Body: []uint8{cbID, message.TransmitCompleteOK, 0, 0}}
						net.Dispatch(p)
					}()
				}
			}
			net.mutex.Unlock()
			time.Sleep(time.Millisecond)
		}
	}()
}

func newTestNetwork(t *testing.T) (*Network, *fakePort, chan struct{}) {
	t.Helper()
	port := newFakePort()
	con := &controller.Controller{DevicePath: "fake"}

	net := &Network{}
	con.SetDispatcher(net)

	if err := con.Start(port); err != nil {
		t.Fatalf("start: %v", err)
	}

	net.controller = con
	net.outstanding = make(map[uint8]chan *message.ZWSendData)
	net.pending = make(map[uint8]chan *packet.Packet)
	net.nextCallbackID = callbackIDMin
	net.nodes = make(map[uint8]*node.Node)

	stop := make(chan struct{})
	port.autoACK(stop)

	return net, port, stop
}

func TestSendDataResolvesOnOKCompletion(t *testing.T) {
	net, _, stop := newTestNetwork(t)
	defer close(stop)
	defer net.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		net.mutex.Lock()
		var cbID uint8
		for id := range net.outstanding {
			cbID = id
		}
		net.mutex.Unlock()

		resp, _ := message.ZWSendDataRequest(4, []uint8{0x25, 0x01, 0xff}, 0, cbID)
		resp.Body = []uint8{cbID, message.TransmitCompleteOK, 0, 0}
		net.Dispatch(resp)
	}()

	if err := net.SendData(4, []uint8{0x25, 0x01, 0xff}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestSendDataSurfacesTransmitError(t *testing.T) {
	net, _, stop := newTestNetwork(t)
	defer close(stop)
	defer net.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		net.mutex.Lock()
		var cbID uint8
		for id := range net.outstanding {
			cbID = id
		}
		net.mutex.Unlock()

		resp, _ := message.ZWSendDataRequest(4, []uint8{0x25, 0x01, 0xff}, 0, cbID)
		resp.Body = []uint8{cbID, message.TransmitCompleteNoACK, 0, 0}
		net.Dispatch(resp)
	}()

	err := net.SendData(4, []uint8{0x25, 0x01, 0xff})
	txErr, ok := err.(*TransmitError)
	if !ok {
		t.Fatalf("expected *TransmitError, got %v (%T)", err, err)
	}
	if txErr.Code != message.TransmitCompleteNoACK {
		t.Errorf("got code 0x%02x want 0x%02x", txErr.Code, message.TransmitCompleteNoACK)
	}
}

func TestApplicationCommandHandlerRoutesToNode(t *testing.T) {
	net, _, stop := newTestNetwork(t)
	defer close(stop)
	defer net.Close()

	autoComplete(net, stop)

	sender := net
	n := node.MakeNode(4, "lamp", sender, nil)
	ep := node.NewBinarySwitchEndpoint(1, "switch")
	n.RegisterEndpoint(ep)
	net.RegisterNode(n)

	done := make(chan uint8, 1)
	go func() {
		v, ok := ep.Get()
		if ok {
			done <- v
		}
	}()

	time.Sleep(20 * time.Millisecond)

	p := &packet.Packet{
		Preamble:    packet.PacketPreambleSOF,
		PacketType:  packet.PacketTypeResponse,
		MessageType: message.MessageTypeApplicationCommandHandler,
		Body:        []uint8{0x00, 4, 3, 0x25, 0x03, 0xff},
	}
	net.Dispatch(p)

	select {
	case v := <-done:
		if v != 0xff {
			t.Errorf("got %d want 0xff", v)
		}
	case <-time.After(time.Second):
		t.Fatal("endpoint get never resolved")
	}
}

func TestApplicationCommandHandlerUnknownNodeIsDropped(t *testing.T) {
	net, _, stop := newTestNetwork(t)
	defer close(stop)
	defer net.Close()

	p := &packet.Packet{
		Preamble:    packet.PacketPreambleSOF,
		PacketType:  packet.PacketTypeResponse,
		MessageType: message.MessageTypeApplicationCommandHandler,
		Body:        []uint8{0x00, 99, 3, 0x25, 0x03, 0xff},
	}

	// Must not panic.
	net.Dispatch(p)
}
