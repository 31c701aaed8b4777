package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/cedana/netbench/pkg/config"
	"github.com/cedana/netbench/pkg/flags"
	"github.com/cedana/netbench/pkg/logging"
	"github.com/cedana/netbench/pkg/metrics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Background work (span export) that must finish before exit
var wg sync.WaitGroup

func init() {
	cobra.EnableTraverseRunHooks = true

	// Add main subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)

	// Add root flags
	rootCmd.PersistentFlags().
		String(flags.ConfigFlag.Full, "", "one-time config JSON string (merge with existing config)")
	rootCmd.PersistentFlags().String(flags.ConfigDirFlag.Full, "", "custom config directory")
	rootCmd.MarkPersistentFlagDirname(flags.ConfigDirFlag.Full)
	rootCmd.MarkFlagsMutuallyExclusive(flags.ConfigFlag.Full, flags.ConfigDirFlag.Full)
	rootCmd.PersistentFlags().
		String(flags.LogLevelFlag.Full, "", "log level (trace, debug, info, warn, error)")

	// Bind to config
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup(flags.LogLevelFlag.Full))
}

var rootCmd = &cobra.Command{
	Use:   "netbench",
	Short: "Scenario driver for the TCP ping-pong benchmark",
	Long: "Runs the TCP ping-pong server and client against each other for every" +
		"\nconfigured (rounds, buffer size) scenario, and reports the verdicts.",

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conf, _ := cmd.Flags().GetString(flags.ConfigFlag.Full)
		confDir, _ := cmd.Flags().GetString(flags.ConfigDirFlag.Full)

		if confDir == "" {
			confDir = os.Getenv("NETBENCH_CONFIG_DIR")
		}

		if err := config.Init(config.InitArgs{
			Config:    conf,
			ConfigDir: confDir,
		}); err != nil {
			return fmt.Errorf("Failed to initialize config: %w", err)
		}

		logging.InitLogger(config.Global.LogLevel)

		if err := metrics.InitTracer(cmd.Context(), &wg, config.Global.Tracing, cmd.Root().Version); err != nil {
			log.Warn().Err(err).Msg("failed to initialize tracing, spans will not be exported")
		}

		ctx := log.With().Str("context", "cmd").Logger().WithContext(cmd.Context())
		cmd.SetContext(ctx)

		return nil
	},
}

func Execute(ctx context.Context, version string) error {
	rootCmd.Version = version
	revision := getRevision()
	versionTemplate := rootCmd.VersionTemplate()
	if revision != "" {
		versionTemplate = fmt.Sprintf("git: %s\n%s", revision, versionTemplate)
	}
	rootCmd.SetVersionTemplate(versionTemplate)

	rootCmd.Long = rootCmd.Long + "\n " + version
	rootCmd.SilenceUsage = true // only show usage when true usage error

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()

	return rootCmd.ExecuteContext(ctx)
}
