package app

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/dig"

	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/logger"

	"github.com/truckfleet/odometer/pkg/node"
)

var (
	// Name of the app.
	Name = "Odometer"

	// Version of the app.
	Version = "0.1.0"
)

var (
	version  = flag.BoolP("version", "v", false, "Prints the Odometer version")
	help     = flag.BoolP("help", "h", false, "Prints the Odometer help (--full for all parameters)")
	helpFull = flag.Bool("full", false, "Prints full Odometer help (only in combination with -h)")

	nodeConfig = configuration.New()

	// config file flags
	configFilesFlagSet = flag.NewFlagSet("config_files", flag.ContinueOnError)
	nodeCfgFilePath    = configFilesFlagSet.StringP(CfgConfigFilePathNodeConfig, "c", "config.json", "file path of the config file")

	nonHiddenFlag = map[string]struct{}{
		"config":               {},
		"node.disablePlugins":  {},
		"node.enablePlugins":   {},
		"ingest.bindAddress":   {},
		"ingest.strictParsing": {},
		"stats.interval":       {},
		"version":              {},
		"help":                 {},
	}

	cfgNames = map[string]struct{}{
		"nodeConfig": {},
	}

	ErrConfigDoesNotExist = errors.New("config does not exist")
)

// Info describes the running application.
type Info struct {
	Name    string
	Version string
}

func init() {
	InitPlugin = &node.InitPlugin{
		Pluggable: node.Pluggable{
			Name:           "App",
			Params:         params,
			InitConfigPars: initConfigPars,
			Provide:        provide,
			Configure:      configure,
		},
		Configs: map[string]*configuration.Configuration{
			"nodeConfig": nodeConfig,
		},
		Init: initialize,
	}
}

var (
	InitPlugin *node.InitPlugin
)

func initialize(params map[string][]*flag.FlagSet, maskedKeys []string) (*node.InitConfig, error) {

	configFlagSets, err := normalizeFlagSets(params)
	if err != nil {
		return nil, err
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage of %s (%s %s):

Command line flags:
`, os.Args[0], Name, Version)
		flag.PrintDefaults()
	}

	flagSetsToParse := make(map[string]*flag.FlagSet, len(configFlagSets)+1)
	for name, fs := range configFlagSets {
		flagSetsToParse[name] = fs
	}
	flagSetsToParse["config_files"] = configFilesFlagSet

	parseFlags(flagSetsToParse)
	printVersion(configFlagSets)

	if err = loadCfg(configFlagSets); err != nil {
		return nil, err
	}

	if err = nodeConfig.SetDefault(logger.ConfigurationKeyDisableCaller, true); err != nil {
		panic(err)
	}

	if err = logger.InitGlobalLogger(nodeConfig); err != nil {
		panic(err)
	}

	fmt.Printf(`
   ___     _                    _
  / _ \ __| | ___  _ __ ___   ___| |_ ___ _ __
 | | | / _`+"`"+` |/ _ \| '_ `+"`"+` _ \ / _ \ __/ _ \ '__|
 | |_| | (_| | (_) | | | | | |  __/ ||  __/ |
  \___/ \__,_|\___/|_| |_| |_|\___|\__\___|_|
                  v%s
`+"\n", Version)

	printConfig(maskedKeys)

	return &node.InitConfig{
		EnabledPlugins:  nodeConfig.Strings(CfgNodeEnablePlugins),
		DisabledPlugins: nodeConfig.Strings(CfgNodeDisablePlugins),
	}, nil
}

func initConfigPars(c *dig.Container) {

	type cfgResult struct {
		dig.Out
		NodeConfig *configuration.Configuration `name:"nodeConfig"`
	}

	if err := c.Provide(func() cfgResult {
		return cfgResult{
			NodeConfig: nodeConfig,
		}
	}); err != nil {
		InitPlugin.LogPanic(err)
	}
}

func provide(c *dig.Container) {

	if err := c.Provide(func() *Info {
		return &Info{
			Name:    Name,
			Version: Version,
		}
	}); err != nil {
		InitPlugin.LogPanic(err)
	}
}

func configure() {
	InitPlugin.LogInfof("Loading plugins of %s %s ...", Name, Version)
}
