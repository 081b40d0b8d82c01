package profiling

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/configuration"

	"github.com/truckfleet/odometer/pkg/node"
	"github.com/truckfleet/odometer/pkg/shutdown"
)

func init() {
	Plugin = &node.Plugin{
		Status: node.StatusDisabled,
		Pluggable: node.Pluggable{
			Name:     "Profiling",
			DepsFunc: func(cDeps dependencies) { deps = cDeps },
			Params:   params,
			Run:      run,
		},
	}
}

var (
	Plugin *node.Plugin
	deps   dependencies
)

type dependencies struct {
	dig.In
	NodeConfig *configuration.Configuration `name:"nodeConfig"`
}

func run() {
	// the tally lock is shared by all connections, make its contention visible
	runtime.SetMutexProfileFraction(5)
	runtime.SetBlockProfileRate(5)

	bindAddr := deps.NodeConfig.String(CfgProfilingBindAddress)
	server := &http.Server{Addr: bindAddr, Handler: http.DefaultServeMux}

	if err := Plugin.Daemon().BackgroundWorker("Profiling server", func(ctx context.Context) {
		go func() {
			Plugin.LogInfof("You can now access the profiling server using: http://%s/debug/pprof/", bindAddr)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Plugin.LogWarnf("Stopped profiling server due to an error (%s)", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCtxCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			Plugin.LogWarn(err)
		}
	}, shutdown.PriorityProfiling); err != nil {
		Plugin.LogPanicf("failed to start worker: %s", err)
	}
}
