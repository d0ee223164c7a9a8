// This file implements the init scaffolder.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/moonpack-dev/moonpack/pkg/console"
	"github.com/moonpack-dev/moonpack/pkg/constants"
	"github.com/moonpack-dev/moonpack/pkg/fileutil"
	"github.com/moonpack-dev/moonpack/pkg/logger"
	"github.com/moonpack-dev/moonpack/pkg/project"
)

var initCommandLog = logger.New("cli:init_command")

// InitOptions configures project scaffolding.
type InitOptions struct {
	Dir    string
	Name   string
	Entry  string
	OutDir string

	// Yes skips the interactive form and accepts defaults.
	Yes bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new moonpack project",
		Long: `Init creates moonpack.json, a starter entry script, and a .gitignore in
the target directory. Without --yes it asks for the project name, entry
path, and output directory interactively.

Examples:
  moonpack init                      # Interactive setup in the current directory
  moonpack init --name my-script -y  # Non-interactive with defaults`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			name, _ := cmd.Flags().GetString("name")
			yes, _ := cmd.Flags().GetBool("yes")

			return RunInit(InitOptions{Dir: dir, Name: name, Yes: yes})
		},
	}

	cmd.Flags().StringP("dir", "d", ".", "Target directory")
	cmd.Flags().StringP("name", "n", "", "Project name (defaults to the directory name)")
	cmd.Flags().BoolP("yes", "y", false, "Accept defaults without prompting")

	return cmd
}

// RunInit scaffolds a project in opts.Dir.
func RunInit(opts InitOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	projectRoot, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	configPath := filepath.Join(projectRoot, constants.ConfigFileName)
	if fileutil.FileExists(configPath) {
		return fmt.Errorf("%s already exists in %s", constants.ConfigFileName, projectRoot)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(projectRoot)
	}
	entry := opts.Entry
	if entry == "" {
		entry = constants.DefaultEntry
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = constants.DefaultOutDir
	}

	if !opts.Yes {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Project name").
					Value(&name).
					Validate(func(s string) error {
						if s == "" {
							return errors.New("name must not be empty")
						}
						return nil
					}),
				huh.NewInput().
					Title("Entry point").
					Description("The script MoonLoader would load directly").
					Value(&entry),
				huh.NewInput().
					Title("Output directory").
					Value(&outDir),
			),
		).WithAccessible(console.IsAccessibleMode())

		if err := form.Run(); err != nil {
			return fmt.Errorf("failed to get project details: %w", err)
		}
	}

	initCommandLog.Printf("Scaffolding project: root=%s, name=%s, entry=%s", projectRoot, name, entry)

	config := project.Config{
		Name:   name,
		Entry:  entry,
		OutDir: outDir,
	}
	configJSON, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(configPath, append(configJSON, '\n')); err != nil {
		return err
	}

	entryPath := filepath.Join(projectRoot, filepath.FromSlash(entry))
	if !fileutil.FileExists(entryPath) {
		starter := "function main()\n" +
			"    while not isSampAvailable() do wait(100) end\n" +
			"    sampAddChatMessage('{00FF00}" + name + " loaded', -1)\n" +
			"    wait(-1)\n" +
			"end\n"
		if err := fileutil.WriteFileAtomic(entryPath, []byte(starter)); err != nil {
			return err
		}
	}

	gitignorePath := filepath.Join(projectRoot, ".gitignore")
	if !fileutil.FileExists(gitignorePath) {
		ignore := outDir + "/\n" + constants.LocalConfigFileName + "\n"
		if err := fileutil.WriteFileAtomic(gitignorePath, []byte(ignore)); err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf(
		"Created %s project in %s", name, projectRoot)))
	fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Run 'moonpack build' to produce your first bundle"))
	return nil
}
