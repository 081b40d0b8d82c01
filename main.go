package main

import (
	"github.com/truckfleet/odometer/core/app"
	"github.com/truckfleet/odometer/core/gracefulshutdown"
	"github.com/truckfleet/odometer/core/ingest"
	"github.com/truckfleet/odometer/core/tally"
	"github.com/truckfleet/odometer/pkg/node"
	"github.com/truckfleet/odometer/plugins/profiling"
	"github.com/truckfleet/odometer/plugins/prometheus"
	"github.com/truckfleet/odometer/plugins/restapi"
)

func main() {
	node.Run(
		node.WithInitPlugin(app.InitPlugin),
		node.WithCorePlugins(
			gracefulshutdown.CorePlugin,
			tally.CorePlugin,
			ingest.CorePlugin,
		),
		node.WithPlugins(
			prometheus.Plugin,
			restapi.Plugin,
			profiling.Plugin,
		),
	)
}
