package cmd

import (
	"github.com/cedana/netbench/pkg/config"
	"github.com/cedana/netbench/pkg/flags"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the configured scenarios, and the arguments each role gets",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The viper keys are bound to the run flags, so apply ours by hand
		if file, _ := cmd.Flags().GetString(flags.ScenariosFlag.Full); file != "" {
			config.Global.ScenariosFile = file
		}
		serverIP := config.Global.Scaffolding.ServerIP
		if ip, _ := cmd.Flags().GetString(flags.ServerIPFlag.Full); ip != "" {
			serverIP = ip
		}

		sets, err := loadScenarios(afero.NewOsFs())
		if err != nil {
			return err
		}

		printScenarios(cmd.OutOrStdout(), sets, serverIP)

		return nil
	},
}
