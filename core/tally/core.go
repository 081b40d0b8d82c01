package tally

import (
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/configuration"

	"github.com/truckfleet/odometer/pkg/metrics"
	"github.com/truckfleet/odometer/pkg/node"
	"github.com/truckfleet/odometer/pkg/shutdown"
	"github.com/truckfleet/odometer/pkg/tally"
)

func init() {
	CorePlugin = &node.CorePlugin{
		Pluggable: node.Pluggable{
			Name:     "Tally",
			DepsFunc: func(cDeps dependencies) { deps = cDeps },
			Params:   params,
			Provide:  provide,
			Run:      run,
		},
	}
}

var (
	CorePlugin *node.CorePlugin
	deps       dependencies
)

type dependencies struct {
	dig.In
	NodeConfig *configuration.Configuration `name:"nodeConfig"`
	Tally      *tally.Tally
}

func provide(c *dig.Container) {

	if err := c.Provide(tally.New); err != nil {
		CorePlugin.LogPanic(err)
	}

	if err := c.Provide(func() *metrics.IngestMetrics {
		return &metrics.IngestMetrics{}
	}); err != nil {
		CorePlugin.LogPanic(err)
	}
}

func run() {

	reporter, err := tally.NewReporter(CorePlugin.Logger(), deps.Tally, deps.NodeConfig.Duration(CfgStatsInterval))
	if err != nil {
		CorePlugin.LogFatalf("invalid %s: %s", CfgStatsInterval, err)
	}

	// create a background worker that prints the connection watermark every interval
	if err := CorePlugin.Daemon().BackgroundWorker("Stats reporter", reporter.Run, shutdown.PriorityStatsReporter); err != nil {
		CorePlugin.LogPanicf("failed to start worker: %s", err)
	}
}
