package gracefulshutdown

import (
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/configuration"

	"github.com/truckfleet/odometer/pkg/node"
	"github.com/truckfleet/odometer/pkg/shutdown"
)

func init() {
	CorePlugin = &node.CorePlugin{
		Pluggable: node.Pluggable{
			Name:      "Graceful Shutdown",
			DepsFunc:  func(cDeps dependencies) { deps = cDeps },
			Params:    params,
			Provide:   provide,
			Configure: configure,
		},
	}
}

var (
	CorePlugin *node.CorePlugin
	deps       dependencies
)

type dependencies struct {
	dig.In
	ShutdownHandler *shutdown.ShutdownHandler
}

func provide(c *dig.Container) {

	type handlerDeps struct {
		dig.In
		NodeConfig *configuration.Configuration `name:"nodeConfig"`
	}

	if err := c.Provide(func(deps handlerDeps) *shutdown.ShutdownHandler {
		return shutdown.NewShutdownHandler(CorePlugin.Logger(), CorePlugin.Daemon(), deps.NodeConfig.Duration(CfgNodeShutdownTimeout))
	}); err != nil {
		CorePlugin.LogPanic(err)
	}
}

func configure() {
	deps.ShutdownHandler.Run()
}
