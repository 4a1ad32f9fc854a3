package command

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
	"github.com/ahsparrow/zwave/device"
)

type signature struct {
	class   uint8
	command uint8
}

type decoder func(payload []byte) (Command, error)

// lookup is filled in init: decodeMultiChannelEncap recurses through
// Deserialize, which reads lookup, so a package-level initializer would form
// an initialization cycle.
var lookup map[signature]decoder

func init() {
	lookup = map[signature]decoder{
		{device.CommandClassBasic, CommandBasicSet}:    decodeValueByte(func(v uint8) Command { return BasicSet{Value: v} }),
		{device.CommandClassBasic, CommandBasicGet}:    decodeEmpty(BasicGet{}),
		{device.CommandClassBasic, CommandBasicReport}: decodeValueByte(func(v uint8) Command { return BasicReport{Value: v} }),

		{device.CommandClassBinarySwitch, CommandSwitchSet}:    decodeValueByte(func(v uint8) Command { return BinarySwitchSet{Value: v} }),
		{device.CommandClassBinarySwitch, CommandSwitchGet}:    decodeEmpty(BinarySwitchGet{}),
		{device.CommandClassBinarySwitch, CommandSwitchReport}: decodeValueByte(func(v uint8) Command { return BinarySwitchReport{Value: v} }),

		{device.CommandClassMultilevelSwitch, CommandSwitchSet}:    decodeValueByte(func(v uint8) Command { return MultilevelSwitchSet{Value: v} }),
		{device.CommandClassMultilevelSwitch, CommandSwitchGet}:    decodeEmpty(MultilevelSwitchGet{}),
		{device.CommandClassMultilevelSwitch, CommandSwitchReport}: decodeValueByte(func(v uint8) Command { return MultilevelSwitchReport{Value: v} }),

		{device.CommandClassConfiguration, CommandConfigurationGet}:    decodeConfigurationGet,
		{device.CommandClassConfiguration, CommandConfigurationReport}: decodeConfigurationReport,

		{device.CommandClassAssociation, CommandAssociationSet}:    decodeAssociationSet,
		{device.CommandClassAssociation, CommandAssociationGet}:    decodeAssociationGet,
		{device.CommandClassAssociation, CommandAssociationRemove}: decodeAssociationRemove,
		{device.CommandClassAssociation, CommandAssociationReport}: decodeAssociationReport,

		{device.CommandClassMultiChannelAssociation, CommandAssociationGet}:    decodeMultiChannelAssociationGet,
		{device.CommandClassMultiChannelAssociation, CommandAssociationSet}:    decodeMultiChannelAssociationSet,
		{device.CommandClassMultiChannelAssociation, CommandAssociationRemove}: decodeMultiChannelAssociationRemove,
		{device.CommandClassMultiChannelAssociation, CommandAssociationReport}: decodeMultiChannelAssociationReport,

		{device.CommandClassMultiChannel, CommandMultiChannelEncap}: decodeMultiChannelEncap,

		{device.CommandClassMeter, CommandMeterReport}: decodeMeterReport,
	}
}

// Deserialize reads class, command and the remaining payload bytes and
// returns the decoded Command. Unknown (class, command) pairs, or payloads
// too short for their signature, fail with *DeserializeError; such frames
// MUST be logged and dropped by the caller, never treated as fatal.
func Deserialize(class uint8, cmd uint8, payload []byte) (Command, error) {
	decode, ok := lookup[signature{class, cmd}]
	if !ok {
		return nil, &DeserializeError{Class: class, Command: cmd, Reason: "unrecognised signature"}
	}
	return decode(payload)
}

func decodeEmpty(c Command) decoder {
	return func(payload []byte) (Command, error) { return c, nil }
}

func decodeValueByte(ctor func(uint8) Command) decoder {
	return func(payload []byte) (Command, error) {
		if len(payload) < 1 {
			return nil, &DeserializeError{Reason: "payload too short for value byte"}
		}
		return ctor(payload[0]), nil
	}
}

func decodeConfigurationGet(payload []byte) (Command, error) {
	if len(payload) < 1 {
		return nil, &DeserializeError{Reason: "payload too short for ConfigurationGet"}
	}
	return ConfigurationGet{Parameter: payload[0]}, nil
}

func decodeConfigurationReport(payload []byte) (Command, error) {
	if len(payload) < 2 {
		return nil, &DeserializeError{Reason: "payload too short for ConfigurationReport header"}
	}
	parameter := payload[0]
	size := payload[1]
	if size != 1 && size != 2 && size != 4 {
		return nil, &DeserializeError{Reason: "bad ConfigurationReport size"}
	}
	if len(payload) < 2+int(size) {
		return nil, &DeserializeError{Reason: "payload too short for ConfigurationReport value"}
	}
	value := decodeSigned(payload[2 : 2+int(size)])
	return ConfigurationReport{Parameter: parameter, Format: ConfigurationFormat(size), Value: value}, nil
}

func decodeAssociationSet(payload []byte) (Command, error) {
	if len(payload) < 1 {
		return nil, &DeserializeError{Reason: "payload too short for AssociationSet"}
	}
	return AssociationSet{Group: payload[0], Nodes: append([]uint8{}, payload[1:]...)}, nil
}

func decodeAssociationGet(payload []byte) (Command, error) {
	if len(payload) < 1 {
		return nil, &DeserializeError{Reason: "payload too short for AssociationGet"}
	}
	return AssociationGet{Group: payload[0]}, nil
}

func decodeAssociationRemove(payload []byte) (Command, error) {
	if len(payload) < 1 {
		return nil, &DeserializeError{Reason: "payload too short for AssociationRemove"}
	}
	return AssociationRemove{Group: payload[0], Nodes: append([]uint8{}, payload[1:]...)}, nil
}

func decodeAssociationReport(payload []byte) (Command, error) {
	if len(payload) < 3 {
		return nil, &DeserializeError{Reason: "payload too short for AssociationReport header"}
	}
	nodes := append([]uint8{}, payload[3:]...)
	return AssociationReport{
		Group:      payload[0],
		MaxNodes:   payload[1],
		NumReports: payload[2],
		Nodes:      nodes,
	}, nil
}

func decodeMultiChannelAssociationGet(payload []byte) (Command, error) {
	if len(payload) < 1 {
		return nil, &DeserializeError{Reason: "payload too short for MultiChannelAssociationGet"}
	}
	return MultiChannelAssociationGet{Group: payload[0]}, nil
}

// splitMultiChannelNodeList splits the tail of an association command
// (after the group, or after group/max/num for a report) into plain node
// ids and (node, endpoint) pairs, divided by the 0x00 marker byte.
func splitMultiChannelNodeList(tail []byte) (plain []uint8, pairs []MultiChannelNode) {
	marker := len(tail)
	for i, b := range tail {
		if b == 0x00 {
			marker = i
			break
		}
	}
	plain = append([]uint8{}, tail[:marker]...)
	rest := tail[marker:]
	if len(rest) > 0 {
		rest = rest[1:] // skip the marker itself
	}
	for i := 0; i+2 <= len(rest); i += 2 {
		pairs = append(pairs, MultiChannelNode{NodeID: rest[i], Endpoint: rest[i+1]})
	}
	return plain, pairs
}

func decodeMultiChannelAssociationSet(payload []byte) (Command, error) {
	if len(payload) < 1 {
		return nil, &DeserializeError{Reason: "payload too short for MultiChannelAssociationSet"}
	}
	plain, pairs := splitMultiChannelNodeList(payload[1:])
	return MultiChannelAssociationSet{Group: payload[0], Nodes: plain, MultiChannelNode: pairs}, nil
}

func decodeMultiChannelAssociationRemove(payload []byte) (Command, error) {
	if len(payload) < 1 {
		return nil, &DeserializeError{Reason: "payload too short for MultiChannelAssociationRemove"}
	}
	plain, pairs := splitMultiChannelNodeList(payload[1:])
	return MultiChannelAssociationRemove{Group: payload[0], Nodes: plain, MultiChannelNode: pairs}, nil
}

func decodeMultiChannelAssociationReport(payload []byte) (Command, error) {
	if len(payload) < 3 {
		return nil, &DeserializeError{Reason: "payload too short for MultiChannelAssociationReport header"}
	}
	plain, pairs := splitMultiChannelNodeList(payload[3:])
	return MultiChannelAssociationReport{
		Group:            payload[0],
		MaxNodes:         payload[1],
		NumReports:       payload[2],
		Nodes:            plain,
		MultiChannelNode: pairs,
	}, nil
}

func decodeMultiChannelEncap(payload []byte) (Command, error) {
	if len(payload) < 2 {
		return nil, &DeserializeError{Reason: "payload too short for MultiChannelEncap header"}
	}
	// payload[0] is the source endpoint; payload[1] (destination bit mask)
	// is skipped.
	endpoint := payload[0]
	inner, err := deserializeFrame(payload[2:])
	if err != nil {
		return nil, err
	}
	return MultiChannelEncap{Endpoint: endpoint, Command: inner}, nil
}

func decodeMeterReport(payload []byte) (Command, error) {
	return MeterReport{Raw: append([]uint8{}, payload...)}, nil
}

// deserializeFrame reads class, command off the front of data and dispatches
// to Deserialize.
func deserializeFrame(data []byte) (Command, error) {
	if len(data) < 2 {
		return nil, &DeserializeError{Reason: "frame too short for class/command"}
	}
	return Deserialize(data[0], data[1], data[2:])
}

// decodeSigned decodes a big-endian two's-complement integer of len(b) bytes
// (1, 2 or 4) and sign-extends it into an int32.
func decodeSigned(b []byte) int32 {
	var u uint32
	for _, x := range b {
		u = u<<8 | uint32(x)
	}
	bits := uint(len(b)) * 8
	shift := 32 - bits
	return int32(u<<shift) >> shift
}
