package cmd

import (
	"fmt"

	"github.com/cedana/netbench/internal/db"
	"github.com/cedana/netbench/pkg/config"
	"github.com/cedana/netbench/pkg/flags"
	"github.com/cedana/netbench/pkg/job"
	"github.com/cedana/netbench/pkg/runner"
	"github.com/cedana/netbench/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Scenario selection, shared with list
	for _, c := range []*cobra.Command{runCmd, listCmd} {
		c.Flags().
			StringP(flags.ScenariosFlag.Full, flags.ScenariosFlag.Short, "", "YAML/JSON file with the scenarios to run")
		c.Flags().String(flags.ServerIPFlag.Full, "", "address the server binds to and the client dials")
	}

	runCmd.Flags().
		StringP(flags.AggregationFlag.Full, flags.AggregationFlag.Short, "", "how verdicts fold into the suite verdict (all, last)")
	runCmd.Flags().Bool(flags.DryRunFlag.Full, false, "only print the scenarios that would run")
	runCmd.Flags().Bool(flags.NoHistoryFlag.Full, false, "do not store this run in the history")

	runCmd.Flags().
		StringP(flags.RepositoryFlag.Full, flags.RepositoryFlag.Short, "", "repository holding the benchmark binaries")
	runCmd.MarkFlagDirname(flags.RepositoryFlag.Full)
	runCmd.Flags().StringP(flags.LibOSFlag.Full, flags.LibOSFlag.Short, "", "networking stack to run on")
	runCmd.Flags().BoolP(flags.DebugFlag.Full, flags.DebugFlag.Short, false, "use debug builds with verbose logging")
	runCmd.Flags().String(flags.ServerNameFlag.Full, "", "server binary name")
	runCmd.Flags().String(flags.ClientNameFlag.Full, "", "client binary name")
	runCmd.Flags().Bool(flags.SudoFlag.Full, false, "run the binaries with sudo")
	runCmd.Flags().Duration(flags.DelayFlag.Full, 0, "delay between starting the server and the client")
	runCmd.Flags().String(flags.ConfigPathFlag.Full, "", "config file handed to the binaries")
	runCmd.Flags().String(flags.LogDirFlag.Full, "", "directory for the server/client logs")
	runCmd.MarkFlagDirname(flags.LogDirFlag.Full)
	runCmd.Flags().DurationP(flags.TimeoutFlag.Full, flags.TimeoutFlag.Short, 0, "timeout per scenario (0 to disable)")

	// Bind to config
	viper.BindPFlag("scenarios_file", runCmd.Flags().Lookup(flags.ScenariosFlag.Full))
	viper.BindPFlag("aggregation", runCmd.Flags().Lookup(flags.AggregationFlag.Full))
	viper.BindPFlag("scaffolding.repository", runCmd.Flags().Lookup(flags.RepositoryFlag.Full))
	viper.BindPFlag("scaffolding.libos", runCmd.Flags().Lookup(flags.LibOSFlag.Full))
	viper.BindPFlag("scaffolding.debug", runCmd.Flags().Lookup(flags.DebugFlag.Full))
	viper.BindPFlag("scaffolding.server_name", runCmd.Flags().Lookup(flags.ServerNameFlag.Full))
	viper.BindPFlag("scaffolding.client_name", runCmd.Flags().Lookup(flags.ClientNameFlag.Full))
	viper.BindPFlag("scaffolding.sudo", runCmd.Flags().Lookup(flags.SudoFlag.Full))
	viper.BindPFlag("scaffolding.delay", runCmd.Flags().Lookup(flags.DelayFlag.Full))
	viper.BindPFlag("scaffolding.config_path", runCmd.Flags().Lookup(flags.ConfigPathFlag.Full))
	viper.BindPFlag("scaffolding.log_directory", runCmd.Flags().Lookup(flags.LogDirFlag.Full))
	viper.BindPFlag("scaffolding.server_ip", runCmd.Flags().Lookup(flags.ServerIPFlag.Full))
	viper.BindPFlag("scaffolding.timeout", runCmd.Flags().Lookup(flags.TimeoutFlag.Full))
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every configured scenario, and report the suite verdict",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := log.Ctx(ctx)

		sets, err := loadScenarios(afero.NewOsFs())
		if err != nil {
			return err
		}
		if len(sets) == 0 {
			log.Warn().Msg("no scenarios configured, the suite cannot pass")
		}

		scaffolding := config.Global.Scaffolding

		printScaffolding(cmd.OutOrStdout(), scaffolding)

		dryRun, _ := cmd.Flags().GetBool(flags.DryRunFlag.Full)
		if dryRun {
			printScenarios(cmd.OutOrStdout(), sets, scaffolding.ServerIP)
			return nil
		}

		reducer, err := runner.ReducerFor(config.Global.Aggregation)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		r := runner.New(
			job.NewLocal(),
			scaffolding,
			runner.WithReducer(config.Global.Aggregation, reducer),
			runner.WithVerdictCallback(func(v runner.Verdict) {
				fmt.Fprintf(out, "%s %s (%s)\n", style.PassStr(v.Passed), v.Alias, v.Label)
			}),
		)

		report, runErr := r.Execute(ctx, sets)

		noHistory, _ := cmd.Flags().GetBool(flags.NoHistoryFlag.Full)
		if !noHistory {
			saveReport(cmd, report)
		}

		fmt.Fprintln(out)
		printReport(out, report)

		if runErr != nil {
			return runErr
		}
		if !report.Passed {
			return fmt.Errorf("suite failed (%s aggregation, %d of %d scenarios failed)",
				report.Aggregation, len(report.Failed()), len(report.Verdicts))
		}

		return nil
	},
}

// saveReport stores the report in the history. Failing to do so never
// changes the verdict.
func saveReport(cmd *cobra.Command, report *runner.Report) {
	ctx := cmd.Context()
	log := log.Ctx(ctx)

	store, err := db.New(ctx, config.Global.DB.Backend, config.Global.DB.Path)
	if err != nil {
		log.Warn().Err(err).Msg("failed to open history, run not saved")
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	if err := store.PutRun(ctx, report); err != nil {
		log.Warn().Err(err).Msg("failed to save run to history")
		return
	}

	log.Debug().Str("run", report.ID).Str("db", config.Global.DB.Path).Msg("run saved to history")
}
