package config

import (
	"time"

	"github.com/cedana/netbench/pkg/scenario"
)

// XXX: Config file should have a version field to manage future changes to schema

type (
	// Netbench configuration. Each of the below fields can also be set
	// through an environment variable with the same name, prefixed, and in uppercase. E.g.
	// `Scaffolding.ServerIP` can be set with `NETBENCH_SCAFFOLDING_SERVER_IP`. The `env_aliases` tag below specifies
	// alternative (alias) environment variable names (comma-separated).
	Config struct {
		// LogLevel is the default log level
		LogLevel string `json:"log_level" mapstructure:"log_level" yaml:"log_level"`
		// Aggregation selects how per-scenario verdicts fold into the suite verdict (all, last)
		Aggregation string `json:"aggregation" mapstructure:"aggregation" yaml:"aggregation"`
		// ScenariosFile is a YAML/JSON file with the parameter sets to sweep
		ScenariosFile string `json:"scenarios_file" mapstructure:"scenarios_file" yaml:"scenarios_file"`
		// Scenarios is an inline list of parameter sets, used when no file is given
		Scenarios []scenario.ParameterSet `json:"scenarios" mapstructure:"scenarios" yaml:"scenarios"`

		// Scaffolding shared by every scenario run
		Scaffolding Scaffolding `json:"scaffolding" mapstructure:"scaffolding" yaml:"scaffolding"`
		// Run history database
		DB DB `json:"db" mapstructure:"db" yaml:"db"`
		// Tracing export of per-scenario spans
		Tracing Tracing `json:"tracing" mapstructure:"tracing" yaml:"tracing"`
	}

	Scaffolding struct {
		// Repository is the checkout holding the benchmark binaries
		Repository string `json:"repository" mapstructure:"repository" yaml:"repository"`
		// LibOS selects the networking stack the binaries run on
		LibOS string `json:"libos" mapstructure:"libos" yaml:"libos" env_aliases:"LIBOS"`
		// Debug runs debug builds with verbose logging
		Debug bool `json:"debug" mapstructure:"debug" yaml:"debug"`
		// ServerName is the name of the server binary
		ServerName string `json:"server_name" mapstructure:"server_name" yaml:"server_name"`
		// ClientName is the name of the client binary
		ClientName string `json:"client_name" mapstructure:"client_name" yaml:"client_name"`
		// Sudo elevates both binaries with sudo
		Sudo bool `json:"sudo" mapstructure:"sudo" yaml:"sudo"`
		// Delay between starting the server and starting the client
		Delay time.Duration `json:"delay" mapstructure:"delay" yaml:"delay"`
		// ConfigPath is handed to the binaries through the environment
		ConfigPath string `json:"config_path" mapstructure:"config_path" yaml:"config_path"`
		// LogDirectory receives one log file per process per scenario
		LogDirectory string `json:"log_directory" mapstructure:"log_directory" yaml:"log_directory"`
		// ServerIP is the address the server binds to, and the client dials
		ServerIP string `json:"server_ip" mapstructure:"server_ip" yaml:"server_ip" env_aliases:"SERVER_IP"`
		// Timeout for a single scenario, 0 disables it
		Timeout time.Duration `json:"timeout" mapstructure:"timeout" yaml:"timeout"`
	}

	DB struct {
		// Backend is the history store implementation (bolt, sqlite, none)
		Backend string `json:"backend" mapstructure:"backend" yaml:"backend"`
		// Path is the local path to the database file. E.g. /tmp/netbench.db
		Path string `json:"path" mapstructure:"path" yaml:"path"`
	}

	Tracing struct {
		// Enabled exports spans to an OTLP collector
		Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
		// Endpoint is the host:port of the OTLP gRPC collector
		Endpoint string `json:"endpoint" mapstructure:"endpoint" yaml:"endpoint"`
		// Insecure disables TLS towards the collector
		Insecure bool `json:"insecure" mapstructure:"insecure" yaml:"insecure"`
	}
)
