package tally

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/truckfleet/odometer/pkg/node"
)

const (
	// the interval in which the connection watermark is reported.
	CfgStatsInterval = "stats.interval"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.Duration(CfgStatsInterval, 5*time.Second, "the interval in which the connection watermark is reported")
			return fs
		}(),
	},
	Masked: nil,
}
