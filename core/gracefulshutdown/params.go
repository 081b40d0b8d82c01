package gracefulshutdown

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/truckfleet/odometer/pkg/node"
)

const (
	// the maximum time to wait for the background workers to stop. After that the process is killed.
	CfgNodeShutdownTimeout = "node.shutdownTimeout"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.Duration(CfgNodeShutdownTimeout, 30*time.Second, "the maximum time to wait for the background workers to stop")
			return fs
		}(),
	},
	Masked: nil,
}
