package restapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/configuration"

	"github.com/truckfleet/odometer/pkg/metrics"
	"github.com/truckfleet/odometer/pkg/network/tcp"
	"github.com/truckfleet/odometer/pkg/node"
	"github.com/truckfleet/odometer/pkg/restapi"
	"github.com/truckfleet/odometer/pkg/shutdown"
	"github.com/truckfleet/odometer/pkg/tally"
)

func init() {
	Plugin = &node.Plugin{
		Status: node.StatusDisabled,
		Pluggable: node.Pluggable{
			Name:      "RestAPI",
			DepsFunc:  func(cDeps dependencies) { deps = cDeps },
			Params:    params,
			Provide:   provide,
			Configure: configure,
			Run:       run,
		},
	}
}

var (
	Plugin *node.Plugin
	deps   dependencies
)

type dependencies struct {
	dig.In
	NodeConfig    *configuration.Configuration `name:"nodeConfig"`
	Echo          *echo.Echo                   `name:"restAPIEcho"`
	Tally         *tally.Tally
	Server        *tcp.Server
	IngestMetrics *metrics.IngestMetrics
}

func provide(c *dig.Container) {

	type echoResult struct {
		dig.Out
		Echo *echo.Echo `name:"restAPIEcho"`
	}

	if err := c.Provide(func() echoResult {
		return echoResult{Echo: newEcho()}
	}); err != nil {
		Plugin.LogPanic(err)
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Gzip())

	return e
}

func configure() {
	errorHandler := restapi.ErrorHandler()
	deps.Echo.HTTPErrorHandler = func(err error, c echo.Context) {
		Plugin.LogDebugf("HTTP request failed: %s", err)
		errorHandler(err, c)
	}

	setupRoutes(deps.Echo, deps.Tally, deps.Server, deps.IngestMetrics)
}

func run() {

	Plugin.LogInfo("Starting REST-API server ...")

	if err := Plugin.Daemon().BackgroundWorker("REST-API server", func(ctx context.Context) {
		Plugin.LogInfo("Starting REST-API server ... done")

		bindAddr := deps.NodeConfig.String(CfgRestAPIBindAddress)

		go func() {
			Plugin.LogInfof("You can now access the API using: http://%s", bindAddr)
			if err := deps.Echo.Start(bindAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Plugin.LogWarnf("Stopped REST-API server due to an error (%s)", err)
			}
		}()

		<-ctx.Done()
		Plugin.LogInfo("Stopping REST-API server ...")

		shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := deps.Echo.Shutdown(shutdownCtx); err != nil {
			Plugin.LogWarn(err)
		}
		shutdownCtxCancel()
		Plugin.LogInfo("Stopping REST-API server ... done")
	}, shutdown.PriorityRestAPI); err != nil {
		Plugin.LogPanicf("failed to start worker: %s", err)
	}
}
