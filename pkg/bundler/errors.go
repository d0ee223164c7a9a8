// This file defines the closed error taxonomy for a build.
//
// Every fatal condition a build can hit is represented as a *BuildError
// carrying a stable machine-readable code, a human message, and a typed
// details payload. Lint findings are never errors; they travel in LintResult.

package bundler

import (
	"fmt"
	"strings"
)

// ErrorCode identifies a failure category. The set is closed.
type ErrorCode string

const (
	// CodeConfigNotFound indicates the project config file is missing.
	CodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"

	// CodeConfigParseError indicates a JSON parse failure on the config or
	// local-config file.
	CodeConfigParseError ErrorCode = "CONFIG_PARSE_ERROR"

	// CodeInvalidConfig indicates one or more config schema violations.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// CodeModuleNotFound indicates a bundled import could not be resolved
	// to a file.
	CodeModuleNotFound ErrorCode = "MODULE_NOT_FOUND"

	// CodeCircularDependency indicates at least one require cycle.
	CodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
)

// BuildError is the error type returned by the config loader and the graph
// builder. Details holds a code-specific payload (one of the *Details types).
type BuildError struct {
	Code    ErrorCode
	Message string
	Details any
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ConfigNotFoundDetails describes a missing config file.
type ConfigNotFoundDetails struct {
	Directory  string `json:"directory"`
	ConfigPath string `json:"configPath"`
}

// ConfigParseErrorDetails describes a JSON parse failure.
type ConfigParseErrorDetails struct {
	ConfigPath string `json:"configPath"`
	Underlying error  `json:"-"`
}

// InvalidConfigDetails carries every schema violation found in one pass.
type InvalidConfigDetails struct {
	Errors     []string `json:"errors"`
	ConfigPath string   `json:"configPath"`
}

// ModuleNotFoundDetails describes an unresolvable bundled import.
type ModuleNotFoundDetails struct {
	ModuleName string `json:"moduleName"`
	RequiredBy string `json:"requiredBy"`
	Line       int    `json:"line"`
}

// CircularDependencyDetails carries every distinct cycle found in the graph.
type CircularDependencyDetails struct {
	Cycles [][]string `json:"cycles"`
}

// NewConfigNotFoundError reports a missing config file in directory.
func NewConfigNotFoundError(directory, configPath string) *BuildError {
	return &BuildError{
		Code:    CodeConfigNotFound,
		Message: fmt.Sprintf("config file %s not found in %s", configPath, directory),
		Details: ConfigNotFoundDetails{Directory: directory, ConfigPath: configPath},
	}
}

// NewConfigParseError reports a JSON parse failure on configPath.
func NewConfigParseError(configPath string, underlying error) *BuildError {
	return &BuildError{
		Code:    CodeConfigParseError,
		Message: fmt.Sprintf("failed to parse %s: %v", configPath, underlying),
		Details: ConfigParseErrorDetails{ConfigPath: configPath, Underlying: underlying},
	}
}

// NewInvalidConfigError aggregates all schema violations for configPath.
func NewInvalidConfigError(errs []string, configPath string) *BuildError {
	return &BuildError{
		Code:    CodeInvalidConfig,
		Message: fmt.Sprintf("invalid config %s: %s", configPath, strings.Join(errs, "; ")),
		Details: InvalidConfigDetails{Errors: errs, ConfigPath: configPath},
	}
}

// NewModuleNotFoundError reports an unresolvable bundled import.
func NewModuleNotFoundError(moduleName, requiredBy string, line int) *BuildError {
	return &BuildError{
		Code:    CodeModuleNotFound,
		Message: fmt.Sprintf("module %q required by %s:%d not found", moduleName, requiredBy, line),
		Details: ModuleNotFoundDetails{ModuleName: moduleName, RequiredBy: requiredBy, Line: line},
	}
}

// NewCircularDependencyError reports every distinct cycle in the graph.
// The message enumerates each cycle as "a → b → a".
func NewCircularDependencyError(cycles [][]string) *BuildError {
	rendered := make([]string, 0, len(cycles))
	for _, cycle := range cycles {
		rendered = append(rendered, strings.Join(cycle, " → "))
	}
	return &BuildError{
		Code:    CodeCircularDependency,
		Message: "circular dependency detected: " + strings.Join(rendered, "; "),
		Details: CircularDependencyDetails{Cycles: cycles},
	}
}
