package config

import "flag"

var (
	flags = flag.NewFlagSet("tiledconv", flag.ContinueOnError)

	flagConfig = flags.String("config", "", "Path to config file")
	flagDebug  = flags.Bool("debug", false, "Enable debug logging")
	flagIDMap  = flags.String("idmap", "", "Path to the mota id map")
	flagOut    = flags.String("out", "", "Output directory for mota maps")
	flagLog    = flags.String("log", "", "Log file path")
)

// ParseFlags parses the flags of a subcommand. Call it before Load.
func ParseFlags(args []string) error {
	return flags.Parse(args)
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flags.Args()
}

// PrintDefaults writes flag usage to stderr.
func PrintDefaults() {
	flags.PrintDefaults()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagIDMap != "" {
		cfg.Convert.IDMap = *flagIDMap
	}
	if *flagOut != "" {
		cfg.Convert.OutputDir = *flagOut
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
}
