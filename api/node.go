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
	"fmt"

	"github.com/ahsparrow/zwave/command"
)

// Binary switch and dimmer wire values, per spec.md §6.
const (
	switchOn     uint8 = 0xff
	switchOff    uint8 = 0x00
	dimmerMax    uint8 = 99
	dimmerOnLast uint8 = 255
)

func getTimeout(id string) error {
	return &Error{Kind: Timeout, Err: fmt.Errorf("api: timeout reading %q", id)}
}

// ListConfigParams returns the symbolic configuration parameter names known
// for nodeID.
func (api *ZWAPI) ListConfigParams(nodeID string) ([]string, error) {
	n, err := api.lookupNode(nodeID)
	if err != nil {
		return nil, err
	}
	return n.ConfigParamNames(), nil
}

// GetConfig reads a named configuration parameter from nodeID, blocking up
// to node.ConfigTimeout for the device's report.
func (api *ZWAPI) GetConfig(nodeID, param string) (int32, error) {
	n, err := api.lookupNode(nodeID)
	if err != nil {
		return 0, err
	}

	value, err := n.GetConfiguration(param)
	if err != nil {
		return 0, classify(err)
	}
	return value, nil
}

// SetConfig writes a named configuration parameter on nodeID. Does not
// await a report.
func (api *ZWAPI) SetConfig(nodeID, param string, value int32) error {
	n, err := api.lookupNode(nodeID)
	if err != nil {
		return err
	}

	// format is ignored by Node.SetConfiguration for a symbolic name: the
	// format comes from the node's own parameter map.
	if err := n.SetConfiguration(param, value, 0); err != nil {
		return classify(err)
	}
	return nil
}

// GetSwitch reports whether the named binary switch is on.
func (api *ZWAPI) GetSwitch(id string) (bool, error) {
	ep, err := api.lookupEndpoint(api.switches, id)
	if err != nil {
		return false, err
	}

	value, ok := ep.Get()
	if !ok {
		return false, getTimeout(id)
	}
	return value != switchOff, nil
}

// SetSwitch turns the named binary switch on or off.
func (api *ZWAPI) SetSwitch(id string, on bool) error {
	ep, err := api.lookupEndpoint(api.switches, id)
	if err != nil {
		return err
	}

	value := switchOff
	if on {
		value = switchOn
	}
	if err := ep.Set(value); err != nil {
		return classify(err)
	}
	return nil
}

// GetDimmer reports the named dimmer's level: 0..99, or 255 for "on at the
// level it was last set to".
func (api *ZWAPI) GetDimmer(id string) (uint8, error) {
	ep, err := api.lookupEndpoint(api.dimmers, id)
	if err != nil {
		return 0, err
	}

	value, ok := ep.Get()
	if !ok {
		return 0, getTimeout(id)
	}
	return value, nil
}

// SetDimmer sets the named dimmer's level. value must be in [0,99] or 255.
func (api *ZWAPI) SetDimmer(id string, value uint8) error {
	if value > dimmerMax && value != dimmerOnLast {
		return badInput("api: dimmer value %d out of range", value)
	}

	ep, err := api.lookupEndpoint(api.dimmers, id)
	if err != nil {
		return err
	}

	if err := ep.Set(value); err != nil {
		return classify(err)
	}
	return nil
}

// GetAssociation reads the contents of a plain (V1) association group on
// nodeID, blocking up to node.ConfigTimeout.
func (api *ZWAPI) GetAssociation(nodeID string, group uint8) ([]uint8, error) {
	n, err := api.lookupNode(nodeID)
	if err != nil {
		return nil, err
	}

	report, err := n.GetAssociation(group)
	if err != nil {
		return nil, classify(err)
	}
	return report.Nodes, nil
}

// SetAssociation adds members to a plain (V1) association group on nodeID.
// Does not await a report.
func (api *ZWAPI) SetAssociation(nodeID string, group uint8, nodes []uint8) error {
	n, err := api.lookupNode(nodeID)
	if err != nil {
		return err
	}

	if err := n.SetAssociation(group, nodes); err != nil {
		return classify(err)
	}
	return nil
}

// RemoveAssociation removes members from a plain (V1) association group on
// nodeID, or the whole group when nodes is empty. Does not await a report.
func (api *ZWAPI) RemoveAssociation(nodeID string, group uint8, nodes []uint8) error {
	n, err := api.lookupNode(nodeID)
	if err != nil {
		return err
	}

	if err := n.RemoveAssociation(group, nodes); err != nil {
		return classify(err)
	}
	return nil
}

// MultiChannelAssociation is the {nodes, multi_channel_nodes} shape the
// HTTP layer exchanges for a multi-channel association group.
type MultiChannelAssociation struct {
	Nodes            []uint8
	MultiChannelNode []command.MultiChannelNode
}

// GetMultiChannelAssociation reads the contents of a multi-channel
// association group on nodeID, blocking up to node.ConfigTimeout.
func (api *ZWAPI) GetMultiChannelAssociation(nodeID string, group uint8) (*MultiChannelAssociation, error) {
	n, err := api.lookupNode(nodeID)
	if err != nil {
		return nil, err
	}

	report, err := n.GetMultiChannelAssociation(group)
	if err != nil {
		return nil, classify(err)
	}
	return &MultiChannelAssociation{Nodes: report.Nodes, MultiChannelNode: report.MultiChannelNode}, nil
}

// SetMultiChannelAssociation adds members to a multi-channel association
// group on nodeID. Does not await a report.
func (api *ZWAPI) SetMultiChannelAssociation(nodeID string, group uint8, assoc MultiChannelAssociation) error {
	n, err := api.lookupNode(nodeID)
	if err != nil {
		return err
	}

	if err := n.SetMultiChannelAssociation(group, assoc.Nodes, assoc.MultiChannelNode); err != nil {
		return classify(err)
	}
	return nil
}

// RemoveMultiChannelAssociation removes members from a multi-channel
// association group on nodeID. Does not await a report.
func (api *ZWAPI) RemoveMultiChannelAssociation(nodeID string, group uint8, assoc MultiChannelAssociation) error {
	n, err := api.lookupNode(nodeID)
	if err != nil {
		return err
	}

	if err := n.RemoveMultiChannelAssociation(group, assoc.Nodes, assoc.MultiChannelNode); err != nil {
		return classify(err)
	}
	return nil
}
