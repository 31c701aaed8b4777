package utils

// Utility functions for the cobra CLI

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

// AliasCommandRunE makes a command an alias of another command's RunE. The
// hooks of the aliased command's parent that cobra would not run for the
// alias are invoked around it. The post hook runs even when RunE fails, so
// whatever the pre hook opened (e.g. the history store) is released.
func AliasCommandRunE(aliasOf *cobra.Command) func(cmd *cobra.Command, args []string) error {
	if aliasOf == nil {
		return nil
	}

	return func(cmd *cobra.Command, args []string) (err error) {
		parent := aliasOf.Parent()

		if parent != nil && parent.PersistentPreRunE != nil {
			if err := parent.PersistentPreRunE(cmd, args); err != nil {
				return err
			}
		}

		if parent != nil && parent.PersistentPostRunE != nil {
			defer func() {
				err = errors.Join(err, parent.PersistentPostRunE(cmd, args))
			}()
		}

		return aliasOf.RunE(cmd, args)
	}
}

// AliasCommandUse returns the usage line of aliasOf under a new name,
// keeping its argument placeholders.
func AliasCommandUse(aliasOf *cobra.Command, name string) string {
	if aliasOf == nil {
		return name
	}
	fields := strings.Fields(aliasOf.Use)
	if len(fields) <= 1 {
		return name
	}
	return name + " " + strings.Join(fields[1:], " ")
}
