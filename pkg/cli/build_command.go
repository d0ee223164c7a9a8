package cli

import (
	"github.com/spf13/cobra"

	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var buildCommandLog = logger.New("cli:build_command")

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bundle the project once and write the output script",
		Long: `Build reads moonpack.json (merged with moonpack.local.json when present),
discovers every module reachable from the entry file, runs the linter, and
writes <outDir>/<name>.lua.

Examples:
  moonpack build                 # Build the project in the current directory
  moonpack build --dir ../proj   # Build a project elsewhere
  moonpack build --verbose       # Show per-module progress`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			verbose, _ := cmd.Flags().GetBool("verbose")

			buildCommandLog.Printf("Running build command: dir=%s, verbose=%v", dir, verbose)

			_, err := RunBuild(BuildRunConfig{Dir: dir, Verbose: verbose})
			return err
		},
	}

	cmd.Flags().StringP("dir", "d", ".", "Project directory containing moonpack.json")
	cmd.Flags().BoolP("verbose", "v", false, "Verbose output")

	return cmd
}
