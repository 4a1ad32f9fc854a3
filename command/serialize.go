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

import "fmt"

// Serialize encodes cmd as a command-class frame: [class, command, ...].
// It is total over every variant defined in this package.
func Serialize(cmd Command) ([]byte, error) {
	class, command := cmd.Signature()
	out := []byte{class, command}

	switch c := cmd.(type) {
	case BasicSet:
		out = append(out, c.Value)
	case BasicGet:
	case BasicReport:
		out = append(out, c.Value)

	case BinarySwitchSet:
		out = append(out, c.Value)
	case BinarySwitchGet:
	case BinarySwitchReport:
		out = append(out, c.Value)

	case MultilevelSwitchSet:
		out = append(out, c.Value)
	case MultilevelSwitchGet:
	case MultilevelSwitchReport:
		out = append(out, c.Value)

	case ConfigurationSet:
		size := uint8(c.Format)
		out = append(out, c.Parameter, size)
		out = append(out, encodeSigned(c.Value, size)...)
	case ConfigurationGet:
		out = append(out, c.Parameter)
	case ConfigurationReport:
		size := uint8(c.Format)
		out = append(out, c.Parameter, size)
		out = append(out, encodeSigned(c.Value, size)...)

	case AssociationSet:
		out = append(out, c.Group)
		out = append(out, c.Nodes...)
	case AssociationRemove:
		out = append(out, c.Group)
		out = append(out, c.Nodes...)
	case AssociationGet:
		out = append(out, c.Group)
	case AssociationReport:
		out = append(out, c.Group, c.MaxNodes, c.NumReports)
		out = append(out, c.Nodes...)

	case MultiChannelAssociationGet:
		out = append(out, c.Group)
	case MultiChannelAssociationSet:
		out = append(out, c.Group)
		out = append(out, c.Nodes...)
		out = append(out, 0x00)
		for _, mc := range c.MultiChannelNode {
			out = append(out, mc.NodeID, mc.Endpoint)
		}
	case MultiChannelAssociationRemove:
		out = append(out, c.Group)
		out = append(out, c.Nodes...)
		out = append(out, 0x00)
		for _, mc := range c.MultiChannelNode {
			out = append(out, mc.NodeID, mc.Endpoint)
		}
	case MultiChannelAssociationReport:
		out = append(out, c.Group, c.MaxNodes, c.NumReports)
		out = append(out, c.Nodes...)
		out = append(out, 0x00)
		for _, mc := range c.MultiChannelNode {
			out = append(out, mc.NodeID, mc.Endpoint)
		}

	case MultiChannelEncap:
		inner, err := Serialize(c.Command)
		if err != nil {
			return nil, err
		}
		// Source endpoint is always reported as 0 by this driver.
		out = append(out, 0x00, c.Endpoint)
		out = append(out, inner...)

	case MeterReport:
		out = append(out, c.Raw...)

	default:
		return nil, fmt.Errorf("command: unknown variant %T", cmd)
	}

	return out, nil
}

// encodeSigned returns the size-byte signed big-endian encoding of v.
func encodeSigned(v int32, size uint8) []byte {
	buf := make([]byte, size)
	u := uint32(v)
	for i := int(size) - 1; i >= 0; i-- {
		buf[i] = byte(u)
		u >>= 8
	}
	return buf
}
