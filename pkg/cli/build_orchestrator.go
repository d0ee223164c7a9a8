// This file orchestrates a single build: config, graph, lint, emit, write.

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/moonpack-dev/moonpack/pkg/bundler"
	"github.com/moonpack-dev/moonpack/pkg/console"
	"github.com/moonpack-dev/moonpack/pkg/fileutil"
	"github.com/moonpack-dev/moonpack/pkg/logger"
	"github.com/moonpack-dev/moonpack/pkg/project"
)

var buildOrchestratorLog = logger.New("cli:build_orchestrator")

// BuildRunConfig configures one build run.
type BuildRunConfig struct {
	// Dir is the project directory containing moonpack.json.
	Dir string

	// Verbose enables per-module progress output.
	Verbose bool

	// Quiet suppresses the success line.
	Quiet bool
}

// BuildResult summarizes a successful build.
type BuildResult struct {
	OutputPath  string
	ModuleCount int
	Size        int
	Lint        *bundler.LintResult
}

// RunBuild performs one full build of the project in config.Dir.
func RunBuild(config BuildRunConfig) (*BuildResult, error) {
	dir := config.Dir
	if dir == "" {
		dir = "."
	}
	projectRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	buildOrchestratorLog.Printf("Starting build: root=%s", projectRoot)

	cfg, err := project.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	entryPath := cfg.EntryPath(projectRoot)
	sourceRoot := filepath.Dir(entryPath)

	spinner := console.NewSpinner(fmt.Sprintf("Building %s...", cfg.Name))
	spinner.Start()

	graph, err := bundler.BuildDependencyGraph(bundler.BuildOptions{
		EntryPath:  entryPath,
		SourceRoot: sourceRoot,
	})
	if err != nil {
		spinner.Stop()
		return nil, err
	}

	if config.Verbose {
		spinner.Stop()
		for _, moduleID := range graph.Order {
			node := graph.Modules[moduleID]
			fmt.Fprintln(os.Stderr, console.FormatDimMessage(
				fmt.Sprintf("  %s (%d bytes)", moduleID, len(node.Source))))
		}
		spinner = console.NewSpinner("Emitting bundle...")
		spinner.Start()
	}

	lint := bundler.LintGraph(graph)
	bundle := bundler.GenerateBundle(graph, cfg.Metadata())
	spinner.Stop()

	printLintFindings(lint)

	outputPath := cfg.OutputPath(projectRoot)
	if err := fileutil.WriteFileAtomic(outputPath, []byte(bundle)); err != nil {
		return nil, err
	}

	result := &BuildResult{
		OutputPath:  outputPath,
		ModuleCount: len(graph.Order),
		Size:        len(bundle),
		Lint:        lint,
	}

	if !config.Quiet {
		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf(
			"Bundled %d modules into %s (%d bytes)", result.ModuleCount, result.OutputPath, result.Size)))
	}

	buildOrchestratorLog.Printf("Build complete: output=%s, modules=%d, size=%d",
		result.OutputPath, result.ModuleCount, result.Size)
	return result, nil
}

// printLintFindings prints every advisory finding to stderr. Findings never
// fail the build.
func printLintFindings(lint *bundler.LintResult) {
	for _, dup := range lint.DuplicateAssignments {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf(
			"%s is assigned in %d files; only the last assignment survives at runtime",
			dup.PropertyPath, countFiles(dup))))
		for _, occurrence := range dup.Occurrences {
			fmt.Fprintf(os.Stderr, "    %s\n",
				console.FormatLocationMessage(occurrence.FilePath, occurrence.Line))
		}
	}

	for _, event := range lint.MoonLoaderEventsInModules {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf(
			"%s is a MoonLoader event but is declared outside the entry script; it will never be called %s",
			event.EventName, console.FormatLocationMessage(event.FilePath, event.Line))))
	}

	for _, unused := range lint.UnusedRequires {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf(
			"%s (%s) is required but never used %s",
			unused.VarName, unused.ModuleName, console.FormatLocationMessage(unused.FilePath, unused.Line))))
	}
}

func countFiles(dup bundler.DuplicateAssignment) int {
	files := make(map[string]bool)
	for _, occurrence := range dup.Occurrences {
		files[occurrence.FilePath] = true
	}
	return len(files)
}
