package packet_test

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
	"fmt"

	"github.com/ahsparrow/zwave/packet"
)

func ExamplePacket_Bytes() {
	p := packet.Packet{Preamble: packet.PacketPreambleACK}
	if b, err := p.Bytes(); err != nil {
		fmt.Printf("Failed to encode: %v\n", err)
	} else {
		fmt.Printf("Bytes: %v\n", b)
	}
	// Output: Bytes: [6]
}

func ExamplePacket_Update() {
	p := packet.Packet{Preamble: packet.PacketPreambleSOF,
		PacketType:  packet.PacketTypeRequest,
		MessageType: 0x02}
	if err := p.Update(); err != nil {
		fmt.Printf("Failed to update: %v\n", err)
	}
	fmt.Printf("Packet: %+v\n", p)
	// Output: Packet: {Preamble:1 Length:3 PacketType:1 MessageType:2 Body:[] Checksum:255}
}

func ExampleParser_Parse() {
	parser := packet.Parser{}
	data := []byte{0x01, 0x05, 0x01, 0x78, 0x65, 0xd3, 0x34, 0x06, 0x23, 0x15}
	for _, x := range data {
		if pkt, err := parser.Parse(x); err != nil {
			fmt.Printf("Failed to parse: %v\n", err)
		} else if pkt != nil {
			fmt.Printf("Got Packet: %+v\n", pkt)
		}
	}
	// Output: Got Packet: {Preamble:1 Length:5 PacketType:1 MessageType:120 Body:[101 211] Checksum:52}
	// Got Packet: {Preamble:6 Length:0 PacketType:0 MessageType:0 Body:[] Checksum:0}
	// Failed to parse: bad preamble: 35
	// Got Packet: {Preamble:21 Length:0 PacketType:0 MessageType:0 Body:[] Checksum:0}
}
