// Command zwave-gatewayd is the process entry point: it opens the Z-Wave
// stick, loads the topology configuration, and serves the HTTP boundary
// adapter.
package main

import (
	"path/filepath"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2"

	"github.com/ahsparrow/zwave/api"
	"github.com/ahsparrow/zwave/cache"
	"github.com/ahsparrow/zwave/internal/config"
	"github.com/ahsparrow/zwave/internal/httpapi"
	"github.com/ahsparrow/zwave/network"
)

func main() {
	devicePath := pflag.StringP("device", "d", "/dev/ttyACM0", "path to the Z-Wave serial device")
	topologyPath := pflag.StringP("topology", "t", "topology.yaml", "path to the topology configuration file")
	cacheDir := pflag.StringP("cache-dir", "c", "./cache", "directory for the node descriptor cache")
	listenAddr := pflag.StringP("listen", "l", ":8080", "address the HTTP boundary adapter listens on")
	debug := pflag.BoolP("debug", "v", false, "enable debug logging on the serial link")
	pflag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	net := &network.Network{DevicePath: *devicePath, DebugLogging: *debug}
	if err := net.Open(); err != nil {
		logger.Fatal("failed to open network", zap.Error(err))
	}
	defer net.Close()

	if err := net.Initialize(); err != nil {
		logger.Fatal("failed to initialize network", zap.Error(err))
	}

	zwapi := api.NewZWAPI(net)

	topo, err := config.LoadTopology(*topologyPath)
	if err != nil {
		logger.Fatal("failed to load topology", zap.Error(err))
	}
	if err := config.Build(net, zwapi, topo, filepath.Dir(*topologyPath)); err != nil {
		logger.Fatal("failed to build topology", zap.Error(err))
	}

	nodeCache := &cache.NodeCache{Directory: *cacheDir}
	if err := nodeCache.Refresh(net); err != nil {
		logger.Error("failed to refresh node cache", zap.Error(err))
	}

	app := fiber.New()
	httpapi.NewHandler(zwapi).SetupRoutes(app)

	logger.Info("serving boundary adapter", zap.String("addr", *listenAddr))
	if err := app.Listen(*listenAddr); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
