package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	infoApp *prometheus.GaugeVec
)

func configureInfo(registry *prometheus.Registry, name string, version string) {
	infoApp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "odometer_info_app",
			Help: "Node software name and version.",
		},
		[]string{"name", "version"},
	)

	infoApp.WithLabelValues(name, version).Set(1)

	registry.MustRegister(infoApp)
}
