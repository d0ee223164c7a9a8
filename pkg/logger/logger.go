// Package logger provides namespaced debug logging controlled by the DEBUG
// environment variable, following https://www.npmjs.com/package/debug patterns.
package logger

import (
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger represents a debug logger for a specific namespace.
type Logger struct {
	namespace string
	enabled   bool
	lastLog   time.Time
	mu        sync.Mutex
	color     string
}

var (
	// DEBUG environment variable value, read once at initialization.
	debugEnv = os.Getenv("DEBUG")

	// DEBUG_COLORS environment variable to control color output.
	debugColors = os.Getenv("DEBUG_COLORS") != "0"

	// Check if stderr is a terminal (for color support).
	isTTY = stderrIsTerminal()

	// Color palette - chosen to be readable on both light and dark backgrounds.
	// Using ANSI 256-color codes for better compatibility.
	colorPalette = []string{
		"\033[38;5;33m",  // Blue
		"\033[38;5;35m",  // Green
		"\033[38;5;166m", // Orange
		"\033[38;5;125m", // Purple
		"\033[38;5;37m",  // Cyan
		"\033[38;5;161m", // Magenta
		"\033[38;5;136m", // Yellow
		"\033[38;5;124m", // Red
		"\033[38;5;28m",  // Dark green
		"\033[38;5;63m",  // Light blue
		"\033[38;5;95m",  // Brown
		"\033[38;5;21m",  // Dark blue
	}

	colorReset = "\033[0m"
)

// New creates a new Logger for the given namespace.
// The enabled state is computed at construction time based on the DEBUG environment variable.
// DEBUG syntax follows https://www.npmjs.com/package/debug patterns:
//
//	DEBUG=*              - enables all loggers
//	DEBUG=namespace:*    - enables all loggers in a namespace
//	DEBUG=ns1,ns2        - enables specific namespaces
//	DEBUG=ns:*,-ns:skip  - enables namespace but excludes specific patterns
//
// Colors are automatically assigned to each namespace if DEBUG_COLORS != "0" and stderr is a TTY.
func New(namespace string) *Logger {
	enabled := computeEnabled(namespace)
	color := selectColor(namespace)
	return &Logger{
		namespace: namespace,
		enabled:   enabled,
		lastLog:   time.Now(),
		color:     color,
	}
}

// stderrIsTerminal reports whether stderr is attached to a character device.
func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// selectColor selects a color for the namespace based on its hash.
func selectColor(namespace string) string {
	if !debugColors || !isTTY {
		return ""
	}

	// Use FNV-1a hash for consistent color assignment
	h := fnv.New32a()
	if _, err := h.Write([]byte(namespace)); err != nil {
		return ""
	}
	hash := h.Sum32()

	return colorPalette[hash%uint32(len(colorPalette))]
}

// Enabled returns whether this logger is enabled
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf prints a formatted message if the logger is enabled.
// A newline is always added at the end.
// Time diff since last log is displayed like the debug npm package.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Print prints a message if the logger is enabled.
// A newline is always added at the end.
// Time diff since last log is displayed like the debug npm package.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprint(args...))
}

func (l *Logger) write(message string) {
	l.mu.Lock()
	now := time.Now()
	diff := now.Sub(l.lastLog)
	l.lastLog = now
	l.mu.Unlock()

	if l.color != "" {
		fmt.Fprintf(os.Stderr, "%s%s%s %s +%s\n", l.color, l.namespace, colorReset, message, formatDuration(diff))
	} else {
		fmt.Fprintf(os.Stderr, "%s %s +%s\n", l.namespace, message, formatDuration(diff))
	}
}

// formatDuration renders a duration compactly, the way the debug npm package does.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%.0fh", d.Hours())
	case d >= time.Minute:
		return fmt.Sprintf("%.0fm", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.0fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// computeEnabled computes whether a namespace matches the DEBUG patterns
func computeEnabled(namespace string) bool {
	patterns := strings.Split(debugEnv, ",")

	enabled := false

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)

		// Handle exclusion patterns (starting with -)
		if after, ok := strings.CutPrefix(pattern, "-"); ok {
			if matchPattern(namespace, after) {
				return false // Exclusions take precedence
			}
			continue
		}

		if matchPattern(namespace, pattern) {
			enabled = true
		}
	}

	return enabled
}

// matchPattern checks if a namespace matches a pattern
// Supports wildcards (*) for pattern matching
func matchPattern(namespace, pattern string) bool {
	// Exact match or wildcard-all
	if pattern == "*" || pattern == namespace {
		return true
	}

	// Pattern with wildcard
	if strings.Contains(pattern, "*") {
		if before, ok := strings.CutSuffix(pattern, "*"); ok {
			return strings.HasPrefix(namespace, before)
		}
		if after, ok := strings.CutPrefix(pattern, "*"); ok {
			return strings.HasSuffix(namespace, after)
		}
		parts := strings.SplitN(pattern, "*", 2)
		if len(parts) == 2 {
			return strings.HasPrefix(namespace, parts[0]) && strings.HasSuffix(namespace, parts[1])
		}
	}

	return false
}
