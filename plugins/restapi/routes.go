package restapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/truckfleet/odometer/pkg/metrics"
	"github.com/truckfleet/odometer/pkg/network/tcp"
	"github.com/truckfleet/odometer/pkg/restapi"
	"github.com/truckfleet/odometer/pkg/tally"
)

const (
	// RouteHealth is the route for querying the health of the node.
	// GET returns http status code 200 if the ingest server accepts connections, 503 otherwise.
	RouteHealth = "/health"

	// RouteStats is the route for getting the current tally.
	// GET returns the stats as JSON.
	RouteStats = "/api/v1/stats"
)

// StatsResponse defines the response of a GET stats REST API call.
type StatsResponse struct {
	tally.Snapshot
	// The number of messages answered with a rejection.
	RejectedMessages uint64 `json:"rejectedMessages"`
}

func setupRoutes(e *echo.Echo, t *tally.Tally, server *tcp.Server, ingestMetrics *metrics.IngestMetrics) {

	e.GET(RouteHealth, func(c echo.Context) error {
		if !server.IsRunning() {
			return restapi.ErrServiceUnavailable
		}

		return c.NoContent(http.StatusOK)
	})

	e.GET(RouteStats, func(c echo.Context) error {
		return restapi.JSONResponse(c, http.StatusOK, &StatsResponse{
			Snapshot:         t.Snapshot(),
			RejectedMessages: ingestMetrics.RejectedMessages.Load(),
		})
	})
}
