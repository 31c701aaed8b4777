package utils

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// family builds a parent with hooks and a child, and records hook calls.
func family(runErr error) (*cobra.Command, *cobra.Command, *[]string) {
	calls := &[]string{}
	parent := &cobra.Command{
		Use: "history",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			*calls = append(*calls, "pre")
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			*calls = append(*calls, "post")
			return nil
		},
	}
	child := &cobra.Command{
		Use: "show <run-id>",
		RunE: func(cmd *cobra.Command, args []string) error {
			*calls = append(*calls, "run")
			return runErr
		},
	}
	parent.AddCommand(child)
	return parent, child, calls
}

func TestAliasCommandRunE(t *testing.T) {
	_, child, calls := family(nil)

	alias := &cobra.Command{Use: "runs"}
	require.NoError(t, AliasCommandRunE(child)(alias, nil))
	assert.Equal(t, []string{"pre", "run", "post"}, *calls)
}

func TestAliasCommandRunE_PostRunsOnError(t *testing.T) {
	boom := errors.New("no such run")
	_, child, calls := family(boom)

	err := AliasCommandRunE(child)(&cobra.Command{Use: "runs"}, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"pre", "run", "post"}, *calls)
}

func TestAliasCommandRunE_PreFails(t *testing.T) {
	parent, child, calls := family(nil)
	parent.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return errors.New("history disabled")
	}

	err := AliasCommandRunE(child)(&cobra.Command{Use: "runs"}, nil)
	assert.Error(t, err)
	assert.Empty(t, *calls, "nothing runs when the store could not be opened")
}

func TestAliasCommandUse(t *testing.T) {
	_, child, _ := family(nil)
	assert.Equal(t, "inspect <run-id>", AliasCommandUse(child, "inspect"))
	assert.Equal(t, "runs", AliasCommandUse(&cobra.Command{Use: "list"}, "runs"))
	assert.Equal(t, "runs", AliasCommandUse(nil, "runs"))
}
