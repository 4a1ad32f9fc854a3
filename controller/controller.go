// Package controller implements the Z-Wave Serial API link layer: framing,
// checksum, and the ACK/NAK/CAN handshake with bounded retransmission. It
// owns the serial device exclusively and runs the single transmitter and
// single receiver task described by the driver's concurrency model.
package controller

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

	"github.com/ahsparrow/zwave/packet"
	"go.bug.st/serial"
)

// ACKTimeout is how long the transmitter waits for the stick to deposit
// ACK/NAK/CAN after a frame is written.
const ACKTimeout = 750 * time.Millisecond

// MaxRetries is the number of attempts (including the first) made for a
// frame the stick answers with CAN. Conservative end of the 3-20 range the
// Z-Wave Serial API spec allows.
const MaxRetries = 3

// CANBackoff is the pause before retrying a frame after a CAN.
const CANBackoff = 50 * time.Millisecond

// SerialReadTimeout bounds each blocking Read on the serial device so the
// receive task can periodically check for a stop signal.
const SerialReadTimeout = 1 * time.Second

// SerialBaud is the default baud rate exposed by the OS for a typical
// Z-Wave USB stick.
const SerialBaud = 115200

var ackFrame = []byte{packet.PacketPreambleACK}

// serialPort is the subset of go.bug.st/serial.Port this package uses,
// factored out so tests can substitute a fake.
type serialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Dispatcher receives unsolicited and solicited data frames read off the
// wire, after the link layer has already ACKed them.
type Dispatcher interface {
	Dispatch(p *packet.Packet)
}

type txJob struct {
	frame  *packet.Packet
	result chan error
}

// Controller owns the serial device and the outbound frame queue.
type Controller struct {
	DevicePath string

	mutex      sync.Mutex
	port       serialPort
	dispatcher Dispatcher

	queue chan *txJob
	frame chan *packet.Packet // parsed frames (data or control) from the receive task

	stop    chan struct{}
	stopped chan struct{}
}

// SetDispatcher installs the callback invoked for every data frame read off
// the wire. Must be called before Open.
func (c *Controller) SetDispatcher(d Dispatcher) {
	c.dispatcher = d
}

// IsOpen reports whether the serial device is open.
func (c *Controller) IsOpen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.port != nil
}

// Open binds the serial port and starts the transmitter and receiver tasks.
func (c *Controller) Open() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.port != nil {
		return nil
	}

	mode := &serial.Mode{BaudRate: SerialBaud}
	port, err := serial.Open(c.DevicePath, mode)
	if err != nil {
		return fmt.Errorf("controller: open %s: %w", c.DevicePath, err)
	}
	if err := port.SetReadTimeout(SerialReadTimeout); err != nil {
		port.Close()
		return fmt.Errorf("controller: set read timeout: %w", err)
	}

	return c.Start(port)
}

// Start wires up the queues and spawns the transmit/receive tasks against an
// already-open port. Split out from Open so tests (in this package or
// others, such as network's) can inject a fake port satisfying the same
// Read/Write/Close shape as go.bug.st/serial.Port.
func (c *Controller) Start(port serialPort) error {
	c.port = port
	c.queue = make(chan *txJob, 16)
	c.frame = make(chan *packet.Packet)
	c.stop = make(chan struct{})
	c.stopped = make(chan struct{}, 2)

	go c.receiveTask()
	go c.transmitTask()

	return nil
}

// Close signals both tasks to stop and closes the serial port.
func (c *Controller) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.port == nil {
		return nil
	}

	close(c.stop)
	// Closing the port unblocks a receive task parked in Read.
	err := c.port.Close()
	<-c.stopped
	<-c.stopped

	c.port = nil
	return err
}

// Send enqueues a fully-built data frame and waits for the link layer to
// either get it ACKed, exhaust its CAN retries, give up on NAK, or time out
// waiting for a handshake byte.
func (c *Controller) Send(frame *packet.Packet) error {
	if !c.IsOpen() {
		return errors.New("controller: not open")
	}

	job := &txJob{frame: frame, result: make(chan error, 1)}
	c.queue <- job
	return <-job.result
}

// receiveTask reads bytes from the serial port, parses them into frames and
// control bytes, and forwards each to the transmitter's select loop.
func (c *Controller) receiveTask() {
	parser := packet.Parser{}
	buf := make([]byte, 512)

	for {
		select {
		case <-c.stop:
			c.stopped <- struct{}{}
			return
		default:
		}

		n, err := c.port.Read(buf)
		if err != nil {
			continue
		}
		for _, b := range buf[:n] {
			p, err := parser.Parse(b)
			if err != nil {
				log.Printf("ERROR controller: parse error: %v", err)
				continue
			}
			if p == nil {
				continue
			}
			select {
			case c.frame <- p:
			case <-c.stop:
				c.stopped <- struct{}{}
				return
			}
		}
	}
}

// transmitTask is the sole writer of the serial port. It serves the
// outbound queue FIFO, and reacts to unsolicited frames (routing them to
// the dispatcher and sending a lone ACK byte) between and during sends.
func (c *Controller) transmitTask() {
	for {
		select {
		case <-c.stop:
			c.stopped <- struct{}{}
			return

		case p := <-c.frame:
			c.handleUnsolicited(p)

		case job := <-c.queue:
			job.result <- c.sendFrame(job.frame)
		}
	}
}

// handleUnsolicited processes a frame that arrived while the transmitter
// was not waiting on a handshake byte for a send in progress.
func (c *Controller) handleUnsolicited(p *packet.Packet) {
	switch p.Preamble {
	case packet.PacketPreambleSOF:
		if err := c.writeFully(ackFrame); err != nil {
			log.Printf("ERROR controller: ACK write failed: %v", err)
		}
		c.dispatch(p)
	case packet.PacketPreambleACK, packet.PacketPreambleNAK, packet.PacketPreambleCAN:
		log.Printf("ERROR controller: unexpected handshake byte with no send in flight: 0x%02x", p.Preamble)
	default:
		log.Printf("ERROR controller: unknown preamble: 0x%02x", p.Preamble)
	}
}

func (c *Controller) dispatch(p *packet.Packet) {
	if c.dispatcher == nil {
		return
	}
	go c.dispatcher.Dispatch(p)
}

// sendFrame performs the write-and-wait-for-handshake cycle for one frame,
// retrying on CAN up to MaxRetries total attempts. It never retries on NAK
// or on a handshake timeout.
func (c *Controller) sendFrame(frame *packet.Packet) error {
	requestBytes, err := frame.Bytes()
	if err != nil {
		return fmt.Errorf("controller: encode frame: %w", err)
	}

	for attempt := 1; attempt <= MaxRetries; attempt++ {
		if err := c.writeFully(requestBytes); err != nil {
			return fmt.Errorf("controller: write: %w", err)
		}

		outcome, err := c.awaitHandshake()
		if err != nil {
			log.Printf("ERROR controller: %v", err)
			return err
		}

		switch outcome {
		case packet.PacketPreambleACK:
			return nil

		case packet.PacketPreambleCAN:
			log.Printf("DEBUG controller: CAN on attempt %d, retrying", attempt)
			time.Sleep(CANBackoff)
			continue

		case packet.PacketPreambleNAK:
			log.Printf("ERROR controller: NAK, giving up on frame")
			return errors.New("controller: frame NAKed")
		}
	}

	return fmt.Errorf("controller: exhausted %d attempts", MaxRetries)
}

// awaitHandshake waits for ACK/NAK/CAN, routing any unsolicited data frame
// that arrives in the meantime to the dispatcher (and ACKing it) without
// treating it as the handshake byte.
func (c *Controller) awaitHandshake() (uint8, error) {
	deadline := time.NewTimer(ACKTimeout)
	defer deadline.Stop()

	for {
		select {
		case p := <-c.frame:
			switch p.Preamble {
			case packet.PacketPreambleSOF:
				if err := c.writeFully(ackFrame); err != nil {
					log.Printf("ERROR controller: ACK write failed: %v", err)
				}
				c.dispatch(p)
				continue
			case packet.PacketPreambleACK, packet.PacketPreambleNAK, packet.PacketPreambleCAN:
				return p.Preamble, nil
			default:
				continue
			}

		case <-deadline.C:
			return 0, errors.New("controller: timed out waiting for handshake byte")

		case <-c.stop:
			return 0, errors.New("controller: closed")
		}
	}
}

func (c *Controller) writeFully(b []byte) error {
	written := 0
	for written < len(b) {
		n, err := c.port.Write(b[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}
