package prometheus

import (
	echoprometheus "github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// configureRestAPI instruments all requests served by the given REST API echo instance.
func configureRestAPI(reg *prometheus.Registry, e *echo.Echo) {
	p := echoprometheus.NewPrometheus("odometer_restapi", nil)
	for _, m := range p.MetricsList {
		reg.MustRegister(m.MetricCollector)
	}
	e.Use(p.HandlerFunc)
}
