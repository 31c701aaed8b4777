package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cedana/netbench/pkg/utils"
	"github.com/spf13/viper"
)

const (
	DIR_NAME   = ".netbench"
	FILE_NAME  = "config"
	FILE_TYPE  = "json"
	DIR_PERM   = 0o755
	FILE_PERM  = 0o644
	ENV_PREFIX = "NETBENCH"

	DEFAULT_LOG_LEVEL   = "info"
	DEFAULT_AGGREGATION = "all"

	DEFAULT_REPOSITORY    = "."
	DEFAULT_LIBOS         = "catnap"
	DEFAULT_DEBUG         = false
	DEFAULT_SERVER_NAME   = "tcp-ping-pong"
	DEFAULT_CLIENT_NAME   = "tcp-ping-pong"
	DEFAULT_SUDO          = false
	DEFAULT_DELAY         = 2 * time.Second
	DEFAULT_CONFIG_PATH   = ""
	DEFAULT_LOG_DIRECTORY = "/tmp/netbench"
	DEFAULT_SERVER_IP     = "127.0.0.1"
	DEFAULT_TIMEOUT       = 2 * time.Minute

	DEFAULT_DB_BACKEND = "bolt"
	DEFAULT_DB_PATH    = "/tmp/netbench.db"

	DEFAULT_TRACING_ENABLED  = false
	DEFAULT_TRACING_ENDPOINT = "localhost:4317"
	DEFAULT_TRACING_INSECURE = true
)

// The defaults, also what a fresh config file is written with.
var Default = Config{
	LogLevel:    DEFAULT_LOG_LEVEL,
	Aggregation: DEFAULT_AGGREGATION,
	Scaffolding: Scaffolding{
		Repository:   DEFAULT_REPOSITORY,
		LibOS:        DEFAULT_LIBOS,
		Debug:        DEFAULT_DEBUG,
		ServerName:   DEFAULT_SERVER_NAME,
		ClientName:   DEFAULT_CLIENT_NAME,
		Sudo:         DEFAULT_SUDO,
		Delay:        DEFAULT_DELAY,
		ConfigPath:   DEFAULT_CONFIG_PATH,
		LogDirectory: DEFAULT_LOG_DIRECTORY,
		ServerIP:     DEFAULT_SERVER_IP,
		Timeout:      DEFAULT_TIMEOUT,
	},
	DB: DB{
		Backend: DEFAULT_DB_BACKEND,
		Path:    DEFAULT_DB_PATH,
	},
	Tracing: Tracing{
		Enabled:  DEFAULT_TRACING_ENABLED,
		Endpoint: DEFAULT_TRACING_ENDPOINT,
		Insecure: DEFAULT_TRACING_INSECURE,
	},
}

// The global config. Starts out as the defaults, and gets overwritten
// by the config file, env vars and flags during startup, if they exist.
var Global Config = Default

// The current config directory, set during Init
var Dir string

func init() {
	setDefaults(viper.GetViper())
	bindEnvVars()
	viper.Unmarshal(&Global)
}

type InitArgs struct {
	Config    string
	ConfigDir string
}

func Init(args InitArgs) error {
	user, err := utils.GetUser()
	if err != nil {
		return err
	}

	if args.ConfigDir == "" {
		Dir = filepath.Join(user.HomeDir, DIR_NAME)
	} else {
		Dir = args.ConfigDir
	}

	viper.AddConfigPath(Dir)
	viper.SetConfigPermissions(FILE_PERM)
	viper.SetConfigType(FILE_TYPE)
	viper.SetConfigName(FILE_NAME)

	// Create config directory if it does not exist
	_, err = os.Stat(Dir)
	if os.IsNotExist(err) {
		err = os.MkdirAll(Dir, DIR_PERM)
		if err != nil {
			return err
		}
		// hand it back to the invoking user when running under sudo
		uid, _ := strconv.Atoi(user.Uid)
		gid, _ := strconv.Atoi(user.Gid)
		os.Chown(Dir, uid, gid)
	}

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("Config file %s is either outdated or invalid. Please delete or update it: %w", viper.ConfigFileUsed(), err)
		}
	}

	if args.Config != "" {
		reader := strings.NewReader(args.Config)
		err = viper.MergeConfig(reader)
		if err != nil {
			return fmt.Errorf("Provided config string is invalid: %w", err)
		}
	} else {
		writeDefaults() // Will only write if file does not exist, ignore errors
	}

	err = viper.UnmarshalExact(&Global)
	if err != nil {
		return fmt.Errorf("Config file %s is either outdated or invalid. Please delete or update it: %w", viper.ConfigFileUsed(), err)
	}

	return nil
}

// Loads the defaults into v
func setDefaults(v *viper.Viper) {
	for _, leaf := range utils.Leaves(Default, FILE_TYPE) {
		v.SetDefault(leaf.Key, leaf.Value)
	}
	v.SetTypeByDefaultValue(true)
}

// Writes the defaults to the config file, if there is none yet. A separate
// viper instance is used, as the global one also holds env vars and flags
// of this invocation, which must not outlive it.
func writeDefaults() error {
	v := viper.New()
	v.AddConfigPath(Dir)
	v.SetConfigPermissions(FILE_PERM)
	v.SetConfigType(FILE_TYPE)
	v.SetConfigName(FILE_NAME)
	setDefaults(v)
	return v.SafeWriteConfig()
}

// Add bindings for env vars so env vars can be used as backup
// when a value is not found in config. Goes through all the json keys
// in the config type and binds an env var for it. The env var
// is prefixed with the envVarPrefix, all uppercase.
//
// Example: The field `scaffolding.server_ip` will bind to env var `NETBENCH_SCAFFOLDING_SERVER_IP`.
func bindEnvVars() {
	for _, leaf := range utils.Leaves(Config{}, FILE_TYPE) {
		bindings := append([]string{leaf.Key, EnvVar(leaf.Key)}, leaf.EnvAliases...)
		viper.MustBindEnv(bindings...)
	}

	viper.AutomaticEnv()
}

// EnvVar returns the environment variable bound to a config key.
func EnvVar(key string) string {
	return ENV_PREFIX + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
