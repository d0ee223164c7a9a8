// Package constants defines shared constants used across the moonpack CLI
// and the bundler pipeline.
package constants

// CLIName is the binary name used in help text and error messages.
const CLIName = "moonpack"

// Version is the CLI version, overridden at build time via -ldflags.
var Version = "dev"

const (
	// ConfigFileName is the project configuration file looked up in the
	// project root.
	ConfigFileName = "moonpack.json"

	// LocalConfigFileName is the optional local override configuration,
	// shallow-merged on top of ConfigFileName before validation.
	LocalConfigFileName = "moonpack.local.json"

	// DefaultOutDir is the output directory used when the config omits outDir.
	DefaultOutDir = "dist"

	// DefaultEntry is the entry point suggested by the init scaffolder.
	DefaultEntry = "src/main.lua"

	// LuaFileExtension is the script source file extension.
	LuaFileExtension = ".lua"
)

// MoonLoaderEvents is the closed set of callback names the MoonLoader host
// invokes globally. They only take effect when defined at the top level of
// the entry script, which is why the linter flags them in bundled modules.
var MoonLoaderEvents = []string{
	"main",
	"onExitScript",
	"onQuitGame",
	"onScriptLoad",
	"onScriptTerminate",
	"onSystemInitialized",
	"onScriptMessage",
	"onSystemMessage",
	"onReceivePacket",
	"onReceiveRpc",
	"onSendPacket",
	"onSendRpc",
	"onWindowMessage",
	"onStartNewGame",
	"onLoadGame",
	"onSaveGame",
}

// IsMoonLoaderEvent reports whether name is one of the host callback names.
func IsMoonLoaderEvent(name string) bool {
	for _, event := range MoonLoaderEvents {
		if event == name {
			return true
		}
	}
	return false
}
