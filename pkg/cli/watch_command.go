// This file implements watch mode: rebuild on every relevant file change.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/moonpack-dev/moonpack/pkg/console"
	"github.com/moonpack-dev/moonpack/pkg/constants"
	"github.com/moonpack-dev/moonpack/pkg/fileutil"
	"github.com/moonpack-dev/moonpack/pkg/logger"
	"github.com/moonpack-dev/moonpack/pkg/project"
)

var watchCommandLog = logger.New("cli:watch_command")

// watchDebounce coalesces editor save bursts into one rebuild.
const watchDebounce = 200 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild automatically when source files change",
		Long: `Watch performs an initial build, then watches the source tree and the
config files and rebuilds on every change. A failed rebuild reports the
error and keeps watching. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			verbose, _ := cmd.Flags().GetBool("verbose")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return RunWatch(ctx, BuildRunConfig{Dir: dir, Verbose: verbose})
		},
	}

	cmd.Flags().StringP("dir", "d", ".", "Project directory containing moonpack.json")
	cmd.Flags().BoolP("verbose", "v", false, "Verbose output")

	return cmd
}

// RunWatch builds once, then rebuilds on changes until ctx is cancelled.
func RunWatch(ctx context.Context, config BuildRunConfig) error {
	dir := config.Dir
	if dir == "" {
		dir = "."
	}
	projectRoot, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	// The initial build may fail (for example while the entry file is still
	// being written); watch mode reports it and keeps going.
	if _, err := RunBuild(config); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(projectRoot); err != nil {
		return err
	}
	if root := sourceRootFor(projectRoot); root != "" {
		if err := addRecursive(watcher, root); err != nil {
			watchCommandLog.Printf("Failed to watch source root: %v", err)
		}
	}

	fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Watching for changes... (Ctrl-C to stop)"))

	var timer *time.Timer
	rebuild := make(chan struct{}, 1)

	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(watchDebounce, func() {
			select {
			case rebuild <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Stopped watching"))
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantWatchEvent(event) {
				continue
			}
			watchCommandLog.Printf("Filesystem event: op=%s, name=%s", event.Op, event.Name)

			// New directories must be watched too so nested files are seen.
			if event.Op.Has(fsnotify.Create) && fileutil.DirExists(event.Name) {
				if err := addRecursive(watcher, event.Name); err != nil {
					watchCommandLog.Printf("Failed to watch new directory %s: %v", event.Name, err)
				}
			}
			schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			watchCommandLog.Printf("Watcher error: %v", err)

		case <-rebuild:
			fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Change detected, rebuilding..."))
			if _, err := RunBuild(config); err != nil {
				fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			}
		}
	}
}

// relevantWatchEvent reports whether the event can affect the bundle:
// Lua sources and the config files, on write/create/remove/rename.
func relevantWatchEvent(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	if fileutil.DirExists(event.Name) {
		return true
	}
	base := filepath.Base(event.Name)
	return strings.HasSuffix(base, constants.LuaFileExtension) ||
		base == constants.ConfigFileName ||
		base == constants.LocalConfigFileName
}

// sourceRootFor resolves the directory of the configured entry, or "" when
// the config cannot be loaded yet.
func sourceRootFor(projectRoot string) string {
	cfg, err := project.Load(projectRoot)
	if err != nil {
		return ""
	}
	return filepath.Dir(cfg.EntryPath(projectRoot))
}

// addRecursive watches root and every directory below it.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			if err := watcher.Add(path); err != nil {
				watchCommandLog.Printf("Failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}
