package prometheus

import (
	flag "github.com/spf13/pflag"

	"github.com/truckfleet/odometer/pkg/node"
)

const (
	// the bind address on which the Prometheus exporter listens on.
	CfgPrometheusBindAddress = "prometheus.bindAddress"
	// include go metrics.
	CfgPrometheusGoMetrics = "prometheus.goMetrics"
	// include process metrics.
	CfgPrometheusProcessMetrics = "prometheus.processMetrics"
	// include promhttp metrics.
	CfgPrometheusPromhttpMetrics = "prometheus.promhttpMetrics"
	// include REST API request metrics.
	CfgPrometheusRestAPIMetrics = "prometheus.restAPIMetrics"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.String(CfgPrometheusBindAddress, "localhost:9311", "the bind address on which the Prometheus exporter listens on")
			fs.Bool(CfgPrometheusGoMetrics, false, "include go metrics")
			fs.Bool(CfgPrometheusProcessMetrics, false, "include process metrics")
			fs.Bool(CfgPrometheusPromhttpMetrics, false, "include promhttp metrics")
			fs.Bool(CfgPrometheusRestAPIMetrics, true, "include REST API request metrics")
			return fs
		}(),
	},
	Masked: nil,
}
