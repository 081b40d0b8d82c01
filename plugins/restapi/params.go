package restapi

import (
	flag "github.com/spf13/pflag"

	"github.com/truckfleet/odometer/pkg/node"
)

const (
	// the bind address on which the REST API listens on.
	CfgRestAPIBindAddress = "restAPI.bindAddress"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.String(CfgRestAPIBindAddress, "localhost:14265", "the bind address on which the REST API listens on")
			return fs
		}(),
	},
	Masked: nil,
}
