package api_test

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

	"github.com/ahsparrow/zwave/api"
	"github.com/ahsparrow/zwave/network"
)

func Example() {
	net := &network.Network{DevicePath: "/dev/ttyACM0"}
	if err := net.Open(); err != nil {
		fmt.Printf("failed to open: %v", err)
		return
	}
	defer net.Close()

	if err := net.Initialize(); err != nil {
		fmt.Printf("failed to initialize: %v", err)
		return
	}

	// A real process builds this registration from the topology file via
	// internal/config; here it's done by hand for the example.
	zwapi := api.NewZWAPI(net)
	if n := net.GetNode(4); n != nil {
		zwapi.RegisterNode("lamp", "Living room lamp", n)
		if ep := n.Endpoints(); len(ep) > 0 {
			zwapi.RegisterSwitch("lamp-switch", "Living room lamp switch", ep[0])
		}
	}

	for _, info := range zwapi.ListNodes() {
		fmt.Printf("node %s: %s\n", info.ID, info.Name)
	}

	if on, err := zwapi.GetSwitch("lamp-switch"); err != nil {
		fmt.Printf("failed to read switch: %v\n", err)
	} else {
		fmt.Printf("lamp-switch is on: %v\n", on)
	}

	if err := zwapi.SetSwitch("lamp-switch", true); err != nil {
		fmt.Printf("failed to turn on switch: %v\n", err)
	}
}
