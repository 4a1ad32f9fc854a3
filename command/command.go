// Package command encodes and decodes Z-Wave command-class frames: the
// payload carried inside a ZWSendData request or an ApplicationCommandHandler
// response, once the Serial API envelope has been stripped away.
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
	"fmt"

	"github.com/ahsparrow/zwave/device"
)

// Command class / command id pairs
const (
	CommandBasicSet    uint8 = 0x01
	CommandBasicGet    uint8 = 0x02
	CommandBasicReport uint8 = 0x03

	CommandSwitchSet    uint8 = 0x01
	CommandSwitchGet    uint8 = 0x02
	CommandSwitchReport uint8 = 0x03

	CommandConfigurationSet    uint8 = 0x04
	CommandConfigurationGet    uint8 = 0x05
	CommandConfigurationReport uint8 = 0x06

	CommandAssociationSet    uint8 = 0x01
	CommandAssociationGet    uint8 = 0x02
	CommandAssociationReport uint8 = 0x03
	CommandAssociationRemove uint8 = 0x04

	CommandMeterReport uint8 = 0x02

	CommandMultiChannelEncap uint8 = 0x0d
)

// DeserializeError reports a frame whose (class, command) signature is
// unrecognised, or whose body is too short for its signature. Such frames
// are logged and dropped by callers; they never propagate as a fatal error.
type DeserializeError struct {
	Class   uint8
	Command uint8
	Reason  string
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("command: cannot deserialize class=0x%02x command=0x%02x: %s",
		e.Class, e.Command, e.Reason)
}

// Command is a tagged variant of a Z-Wave command-class frame. Every variant
// carries its own (class, command) signature.
type Command interface {
	Signature() (class uint8, command uint8)
}

// BasicSet sets a device's basic state.
type BasicSet struct{ Value uint8 }

// Signature implements Command.
func (BasicSet) Signature() (uint8, uint8) { return device.CommandClassBasic, CommandBasicSet }

// BasicGet requests a device's basic state.
type BasicGet struct{}

// Signature implements Command.
func (BasicGet) Signature() (uint8, uint8) { return device.CommandClassBasic, CommandBasicGet }

// BasicReport carries a device's reported basic state.
type BasicReport struct{ Value uint8 }

// Signature implements Command.
func (BasicReport) Signature() (uint8, uint8) { return device.CommandClassBasic, CommandBasicReport }

// BinarySwitchSet sets an on/off switch.
type BinarySwitchSet struct{ Value uint8 }

// Signature implements Command.
func (BinarySwitchSet) Signature() (uint8, uint8) {
	return device.CommandClassBinarySwitch, CommandSwitchSet
}

// BinarySwitchGet requests an on/off switch's state.
type BinarySwitchGet struct{}

// Signature implements Command.
func (BinarySwitchGet) Signature() (uint8, uint8) {
	return device.CommandClassBinarySwitch, CommandSwitchGet
}

// BinarySwitchReport carries a reported on/off switch state.
type BinarySwitchReport struct{ Value uint8 }

// Signature implements Command.
func (BinarySwitchReport) Signature() (uint8, uint8) {
	return device.CommandClassBinarySwitch, CommandSwitchReport
}

// MultilevelSwitchSet sets a dimmer level in [0,99] or 0xFF ("restore previous").
type MultilevelSwitchSet struct{ Value uint8 }

// Signature implements Command.
func (MultilevelSwitchSet) Signature() (uint8, uint8) {
	return device.CommandClassMultilevelSwitch, CommandSwitchSet
}

// MultilevelSwitchGet requests a dimmer's level.
type MultilevelSwitchGet struct{}

// Signature implements Command.
func (MultilevelSwitchGet) Signature() (uint8, uint8) {
	return device.CommandClassMultilevelSwitch, CommandSwitchGet
}

// MultilevelSwitchReport carries a reported dimmer level.
type MultilevelSwitchReport struct{ Value uint8 }

// Signature implements Command.
func (MultilevelSwitchReport) Signature() (uint8, uint8) {
	return device.CommandClassMultilevelSwitch, CommandSwitchReport
}

// ConfigurationFormat names the signed big-endian width of a configuration
// parameter's value.
type ConfigurationFormat uint8

// Configuration formats
const (
	ConfigurationFormatByte  ConfigurationFormat = 1 // "B"
	ConfigurationFormatShort ConfigurationFormat = 2 // "H"
	ConfigurationFormatInt   ConfigurationFormat = 4 // "I"
)

// ConfigurationSet writes a device configuration parameter.
type ConfigurationSet struct {
	Parameter uint8
	Format    ConfigurationFormat
	Value     int32
}

// Signature implements Command.
func (ConfigurationSet) Signature() (uint8, uint8) {
	return device.CommandClassConfiguration, CommandConfigurationSet
}

// ConfigurationGet requests a device configuration parameter.
type ConfigurationGet struct{ Parameter uint8 }

// Signature implements Command.
func (ConfigurationGet) Signature() (uint8, uint8) {
	return device.CommandClassConfiguration, CommandConfigurationGet
}

// ConfigurationReport carries a reported configuration parameter value.
type ConfigurationReport struct {
	Parameter uint8
	Format    ConfigurationFormat
	Value     int32
}

// Signature implements Command.
func (ConfigurationReport) Signature() (uint8, uint8) {
	return device.CommandClassConfiguration, CommandConfigurationReport
}

// AssociationGet requests the contents of a plain association group.
type AssociationGet struct{ Group uint8 }

// Signature implements Command.
func (AssociationGet) Signature() (uint8, uint8) {
	return device.CommandClassAssociation, CommandAssociationGet
}

// AssociationSet adds members to a plain association group.
type AssociationSet struct {
	Group uint8
	Nodes []uint8
}

// Signature implements Command.
func (AssociationSet) Signature() (uint8, uint8) {
	return device.CommandClassAssociation, CommandAssociationSet
}

// AssociationRemove removes members from a plain association group, or the
// whole group when Nodes is empty.
type AssociationRemove struct {
	Group uint8
	Nodes []uint8
}

// Signature implements Command.
func (AssociationRemove) Signature() (uint8, uint8) {
	return device.CommandClassAssociation, CommandAssociationRemove
}

// AssociationReport carries the contents of a plain association group.
type AssociationReport struct {
	Group      uint8
	MaxNodes   uint8
	NumReports uint8
	Nodes      []uint8
}

// Signature implements Command.
func (AssociationReport) Signature() (uint8, uint8) {
	return device.CommandClassAssociation, CommandAssociationReport
}

// MultiChannelAssociationGet requests the contents of a multi-channel
// association group.
type MultiChannelAssociationGet struct{ Group uint8 }

// Signature implements Command.
func (MultiChannelAssociationGet) Signature() (uint8, uint8) {
	return device.CommandClassMultiChannelAssociation, CommandAssociationGet
}

// MultiChannelNode is a (node id, endpoint id) pair in a multi-channel
// association group.
type MultiChannelNode struct {
	NodeID   uint8
	Endpoint uint8
}

// MultiChannelAssociationSet adds members to a multi-channel association
// group.
type MultiChannelAssociationSet struct {
	Group            uint8
	Nodes            []uint8
	MultiChannelNode []MultiChannelNode
}

// Signature implements Command.
func (MultiChannelAssociationSet) Signature() (uint8, uint8) {
	return device.CommandClassMultiChannelAssociation, CommandAssociationSet
}

// MultiChannelAssociationRemove removes members from a multi-channel
// association group, or the whole group when both lists are empty.
type MultiChannelAssociationRemove struct {
	Group            uint8
	Nodes            []uint8
	MultiChannelNode []MultiChannelNode
}

// Signature implements Command.
func (MultiChannelAssociationRemove) Signature() (uint8, uint8) {
	return device.CommandClassMultiChannelAssociation, CommandAssociationRemove
}

// MultiChannelAssociationReport carries the contents of a multi-channel
// association group.
type MultiChannelAssociationReport struct {
	Group            uint8
	MaxNodes         uint8
	NumReports       uint8
	Nodes            []uint8
	MultiChannelNode []MultiChannelNode
}

// Signature implements Command.
func (MultiChannelAssociationReport) Signature() (uint8, uint8) {
	return device.CommandClassMultiChannelAssociation, CommandAssociationReport
}

// MultiChannelEncap wraps Command for delivery to a specific endpoint on a
// multi-endpoint node.
type MultiChannelEncap struct {
	Endpoint uint8
	Command  Command
}

// Signature implements Command.
func (MultiChannelEncap) Signature() (uint8, uint8) {
	return device.CommandClassMultiChannel, CommandMultiChannelEncap
}

// MeterReport carries a meter reading. The body is opaque to this driver: it
// is accepted but not parsed, and does not round-trip through Serialize.
type MeterReport struct{ Raw []uint8 }

// Signature implements Command.
func (MeterReport) Signature() (uint8, uint8) {
	return device.CommandClassMeter, CommandMeterReport
}
