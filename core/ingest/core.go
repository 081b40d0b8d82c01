package ingest

import (
	"context"

	"github.com/dustin/go-humanize"
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/events"

	"github.com/truckfleet/odometer/pkg/ingest"
	"github.com/truckfleet/odometer/pkg/metrics"
	"github.com/truckfleet/odometer/pkg/network"
	"github.com/truckfleet/odometer/pkg/network/tcp"
	"github.com/truckfleet/odometer/pkg/node"
	"github.com/truckfleet/odometer/pkg/shutdown"
	"github.com/truckfleet/odometer/pkg/tally"
)

func init() {
	CorePlugin = &node.CorePlugin{
		Pluggable: node.Pluggable{
			Name:      "Ingest",
			DepsFunc:  func(cDeps dependencies) { deps = cDeps },
			Params:    params,
			Provide:   provide,
			Configure: configure,
			Run:       run,
		},
	}
}

var (
	CorePlugin *node.CorePlugin
	deps       dependencies

	onConnect     *events.Closure
	onAcceptError *events.Closure
	onListening   *events.Closure
)

type dependencies struct {
	dig.In
	NodeConfig    *configuration.Configuration `name:"nodeConfig"`
	Server        *tcp.Server
	Handler       *ingest.Handler
	IngestMetrics *metrics.IngestMetrics
}

func provide(c *dig.Container) {

	if err := c.Provide(tcp.NewServer); err != nil {
		CorePlugin.LogPanic(err)
	}

	type handlerDeps struct {
		dig.In
		NodeConfig    *configuration.Configuration `name:"nodeConfig"`
		Tally         *tally.Tally
		IngestMetrics *metrics.IngestMetrics
	}

	if err := c.Provide(func(deps handlerDeps) *ingest.Handler {
		return ingest.NewHandler(
			CorePlugin.Logger(),
			deps.Tally,
			deps.IngestMetrics,
			ingest.WithStrictParsing(deps.NodeConfig.Bool(CfgIngestStrictParsing)),
		)
	}); err != nil {
		CorePlugin.LogPanic(err)
	}
}

func configure() {
	onListening = events.NewClosure(func(addr string) {
		CorePlugin.LogInfof("Server listening on %s", addr)
	})

	idleTimeout := deps.NodeConfig.Duration(CfgIngestIdleTimeout)

	onConnect = events.NewClosure(func(conn *network.ManagedConnection) {
		deps.IngestMetrics.AcceptedConnections.Inc()
		CorePlugin.LogDebugf("Accepted connection from %s", conn.RemoteAddr())

		remoteAddr := conn.RemoteAddr().String()
		conn.Events.Close.Attach(events.NewClosure(func() {
			CorePlugin.LogDebugf("Connection from %s closed (read: %s, written: %s)",
				remoteAddr, humanize.Bytes(conn.BytesRead()), humanize.Bytes(conn.BytesWritten()))
		}))

		if err := conn.SetReadTimeout(idleTimeout); err != nil {
			CorePlugin.LogWarnf("Setting the idle timeout for %s failed: %s", remoteAddr, err)
			_ = conn.Close()
			return
		}

		go deps.Handler.Handle(conn)
	})

	onAcceptError = events.NewClosure(func(err error) {
		deps.IngestMetrics.AcceptErrors.Inc()
		CorePlugin.LogWarn(err)
	})
}

func run() {

	bindAddr := deps.NodeConfig.String(CfgIngestBindAddress)

	attachEvents()
	if err := deps.Server.Listen(context.Background(), bindAddr); err != nil {
		CorePlugin.LogFatalf("unable to start the ingest server: %s", err)
	}

	if err := CorePlugin.Daemon().BackgroundWorker("Ingest server", func(ctx context.Context) {
		go func() {
			if err := deps.Server.Serve(); err != nil {
				CorePlugin.LogErrorf("Ingest server stopped: %s", err)
			}
		}()

		<-ctx.Done()
		CorePlugin.LogInfo("Stopping ingest server ...")

		deps.Server.Shutdown()
		detachEvents()

		CorePlugin.LogInfo("Stopping ingest server ... done")
	}, shutdown.PriorityTCPServer); err != nil {
		CorePlugin.LogPanicf("failed to start worker: %s", err)
	}
}

func attachEvents() {
	deps.Server.Events.Start.Attach(onListening)
	deps.Server.Events.Connect.Attach(onConnect)
	deps.Server.Events.Error.Attach(onAcceptError)
}

func detachEvents() {
	deps.Server.Events.Start.Detach(onListening)
	deps.Server.Events.Connect.Detach(onConnect)
	deps.Server.Events.Error.Detach(onAcceptError)
}
