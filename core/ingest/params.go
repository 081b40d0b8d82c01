package ingest

import (
	flag "github.com/spf13/pflag"

	"github.com/truckfleet/odometer/pkg/node"
)

const (
	// the bind address on which the kilometer ingest server listens on.
	CfgIngestBindAddress = "ingest.bindAddress"
	// whether messages which are not plain decimal numbers are rejected instead of counted as zero.
	CfgIngestStrictParsing = "ingest.strictParsing"
	// the time after which a connection without any received data gets closed. Zero disables it.
	CfgIngestIdleTimeout = "ingest.idleTimeout"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.String(CfgIngestBindAddress, "0.0.0.0:12345", "the bind address on which the kilometer ingest server listens on")
			fs.Bool(CfgIngestStrictParsing, false, "reject messages which are not plain decimal numbers instead of counting them as zero")
			fs.Duration(CfgIngestIdleTimeout, 0, "the time after which a connection without any received data gets closed (0 = disabled)")
			return fs
		}(),
	},
	Masked: nil,
}
