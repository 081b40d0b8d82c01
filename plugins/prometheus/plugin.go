package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/configuration"

	"github.com/truckfleet/odometer/core/app"
	"github.com/truckfleet/odometer/pkg/metrics"
	"github.com/truckfleet/odometer/pkg/node"
	"github.com/truckfleet/odometer/pkg/shutdown"
	"github.com/truckfleet/odometer/pkg/tally"
)

// RouteMetrics is the route for getting the prometheus metrics.
// GET returns metrics.
const (
	RouteMetrics = "/metrics"
)

func init() {
	Plugin = &node.Plugin{
		Status: node.StatusDisabled,
		Pluggable: node.Pluggable{
			Name:      "Prometheus",
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

	registry = prometheus.NewRegistry()
	collects []func()

	ingest *ingestCollector
)

type dependencies struct {
	dig.In
	AppInfo        *app.Info
	NodeConfig     *configuration.Configuration `name:"nodeConfig"`
	Tally          *tally.Tally
	IngestMetrics  *metrics.IngestMetrics
	PrometheusEcho *echo.Echo `name:"prometheusEcho"`
	RestAPIEcho    *echo.Echo `name:"restAPIEcho" optional:"true"`
}

func provide(c *dig.Container) {

	type depsOut struct {
		dig.Out
		PrometheusEcho *echo.Echo `name:"prometheusEcho"`
	}

	if err := c.Provide(func() depsOut {
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Use(middleware.Recover())
		return depsOut{
			PrometheusEcho: e,
		}
	}); err != nil {
		Plugin.LogPanic(err)
	}
}

func configure() {
	configureInfo(registry, deps.AppInfo.Name, deps.AppInfo.Version)

	ingest = newIngestCollector(registry, deps.Tally, deps.IngestMetrics)
	addCollect(ingest.collect)

	if deps.NodeConfig.Bool(CfgPrometheusGoMetrics) {
		registry.MustRegister(collectors.NewGoCollector())
	}
	if deps.NodeConfig.Bool(CfgPrometheusProcessMetrics) {
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	// the REST API echo is only provided if the RestAPI plugin is enabled
	if deps.RestAPIEcho != nil && deps.NodeConfig.Bool(CfgPrometheusRestAPIMetrics) {
		configureRestAPI(registry, deps.RestAPIEcho)
	}

	deps.PrometheusEcho.GET(RouteMetrics, metricsHandler(deps.NodeConfig.Bool(CfgPrometheusPromhttpMetrics)))
}

func addCollect(collect func()) {
	collects = append(collects, collect)
}

func metricsHandler(instrument bool) echo.HandlerFunc {
	handler := promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	)
	if instrument {
		handler = promhttp.InstrumentMetricHandler(registry, handler)
	}

	return func(c echo.Context) error {
		for _, collect := range collects {
			collect()
		}

		handler.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	}
}

func run() {
	Plugin.LogInfo("Starting Prometheus exporter ...")

	if err := Plugin.Daemon().BackgroundWorker("Prometheus exporter", func(ctx context.Context) {
		ingest.attach()
		Plugin.LogInfo("Starting Prometheus exporter ... done")

		bindAddr := deps.NodeConfig.String(CfgPrometheusBindAddress)

		go func() {
			Plugin.LogInfof("You can now access the Prometheus exporter using: http://%s%s", bindAddr, RouteMetrics)
			if err := deps.PrometheusEcho.Start(bindAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Plugin.LogWarnf("Stopped Prometheus exporter due to an error (%s)", err)
			}
		}()

		<-ctx.Done()
		Plugin.LogInfo("Stopping Prometheus exporter ...")

		ingest.detach()

		shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := deps.PrometheusEcho.Shutdown(shutdownCtx)
		if err != nil {
			Plugin.LogWarn(err)
		}
		shutdownCtxCancel()
		Plugin.LogInfo("Stopping Prometheus exporter ... done")
	}, shutdown.PriorityPrometheus); err != nil {
		Plugin.LogPanicf("failed to start worker: %s", err)
	}
}
