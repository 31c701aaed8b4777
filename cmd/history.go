package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cedana/netbench/internal/db"
	"github.com/cedana/netbench/pkg/config"
	"github.com/cedana/netbench/pkg/flags"
	"github.com/cedana/netbench/pkg/keys"
	"github.com/cedana/netbench/pkg/utils"
	"github.com/spf13/cobra"
)

func init() {
	historyCmd.AddCommand(listHistoryCmd)
	historyCmd.AddCommand(showHistoryCmd)
	historyCmd.AddCommand(deleteHistoryCmd)

	listHistoryCmd.Flags().IntP(flags.LimitFlag.Full, flags.LimitFlag.Short, 20, "number of runs to show (0 for all)")
	showHistoryCmd.Flags().Bool(flags.JSONFlag.Full, false, "print the run as JSON")

	// Sync flags with aliases
	runsCmd.Flags().AddFlagSet(listHistoryCmd.Flags())
	rootCmd.AddCommand(runsCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past runs",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.New(cmd.Context(), config.Global.DB.Backend, config.Global.DB.Path)
		if err != nil {
			return fmt.Errorf("Error opening history: %v", err)
		}
		if store == nil {
			return fmt.Errorf("history is disabled (db backend %q)", db.BACKEND_NONE)
		}

		ctx := context.WithValue(cmd.Context(), keys.DB_CONTEXT_KEY, store)
		cmd.SetContext(ctx)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store := utils.GetContextValSafe[db.DB](cmd.Context(), keys.DB_CONTEXT_KEY, nil); store != nil {
			return store.Close()
		}
		return nil
	},
}

var listHistoryCmd = &cobra.Command{
	Use:   "list",
	Short: "List past runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := utils.GetContextValSafe[db.DB](cmd.Context(), keys.DB_CONTEXT_KEY, nil)
		if store == nil {
			return fmt.Errorf("invalid history in context")
		}

		limit, _ := cmd.Flags().GetInt(flags.LimitFlag.Full)

		reports, err := store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(reports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs found")
			return nil
		}

		printRuns(cmd.OutOrStdout(), reports)

		return nil
	},
}

var showHistoryCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show every verdict of a past run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := utils.GetContextValSafe[db.DB](cmd.Context(), keys.DB_CONTEXT_KEY, nil)
		if store == nil {
			return fmt.Errorf("invalid history in context")
		}

		report, err := store.GetRun(cmd.Context(), args[0])
		if db.IsNotFound(err) {
			return fmt.Errorf("no such run %s, see `netbench history list`", args[0])
		}
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool(flags.JSONFlag.Full); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printReport(cmd.OutOrStdout(), report)

		return nil
	},
}

var deleteHistoryCmd = &cobra.Command{
	Use:     "delete <run-id>...",
	Short:   "Delete past runs",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := utils.GetContextValSafe[db.DB](cmd.Context(), keys.DB_CONTEXT_KEY, nil)
		if store == nil {
			return fmt.Errorf("invalid history in context")
		}

		for _, id := range args {
			err := store.DeleteRun(cmd.Context(), id)
			if db.IsNotFound(err) {
				return fmt.Errorf("no such run %s, see `netbench history list`", id)
			}
			if err != nil {
				return fmt.Errorf("failed to delete run %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
		}

		return nil
	},
}

////////////////////
///// Aliases //////
////////////////////

var runsCmd = &cobra.Command{
	Use:   utils.AliasCommandUse(listHistoryCmd, "runs"),
	Short: listHistoryCmd.Short,
	Args:  listHistoryCmd.Args,
	RunE:  utils.AliasCommandRunE(listHistoryCmd),
}
