package flags

// This file contains all the flags used in the cmd package.
// Should be consulted when adding new flags to avoid conflicts.

type Flag struct {
	Full  string
	Short string
}

var (
	ScenariosFlag   = Flag{Full: "scenarios", Short: "s"}
	AggregationFlag = Flag{Full: "aggregation", Short: "a"}
	DryRunFlag      = Flag{Full: "dry-run"}
	LimitFlag       = Flag{Full: "limit", Short: "n"}
	NoHistoryFlag   = Flag{Full: "no-history"}
	JSONFlag        = Flag{Full: "json"}

	// Scaffolding
	RepositoryFlag = Flag{Full: "repository", Short: "r"}
	LibOSFlag      = Flag{Full: "libos", Short: "l"}
	DebugFlag      = Flag{Full: "debug", Short: "d"}
	ServerNameFlag = Flag{Full: "server-name"}
	ClientNameFlag = Flag{Full: "client-name"}
	SudoFlag       = Flag{Full: "sudo"}
	DelayFlag      = Flag{Full: "delay"}
	ConfigPathFlag = Flag{Full: "config-path"}
	LogDirFlag     = Flag{Full: "log-dir"}
	ServerIPFlag   = Flag{Full: "server-ip"}
	TimeoutFlag    = Flag{Full: "timeout", Short: "t"}

	// Parent flags
	ConfigFlag    = Flag{Full: "config"}
	ConfigDirFlag = Flag{Full: "config-dir"}
	LogLevelFlag  = Flag{Full: "log-level"}
)
