// Package cli implements the moonpack command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/moonpack-dev/moonpack/pkg/constants"
)

// NewRootCommand creates the root moonpack command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           constants.CLIName,
		Short:         "Bundle MoonLoader Lua projects into a single script",
		Long: `moonpack bundles a multi-file MoonLoader Lua project into one
self-contained script. The entry file and everything it requires via
relative imports ("./module", "../shared/util") is discovered, linted, and
concatenated under a small loader shim; all other requires are passed
through to the host at runtime.`,
		Version:       constants.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(NewInitCommand())
	root.AddCommand(NewBuildCommand())
	root.AddCommand(NewWatchCommand())
	root.AddCommand(NewVersionCommand())

	return root
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the moonpack version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s %s\n", constants.CLIName, constants.Version)
		},
	}
}
