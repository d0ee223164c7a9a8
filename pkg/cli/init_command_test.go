//go:build !integration

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInitNonInteractive(t *testing.T) {
	dir := t.TempDir()

	err := RunInit(InitOptions{Dir: dir, Name: "my-script", Yes: true})
	require.NoError(t, err)

	configData, err := os.ReadFile(filepath.Join(dir, "moonpack.json"))
	require.NoError(t, err)

	var config map[string]any
	require.NoError(t, json.Unmarshal(configData, &config))
	assert.Equal(t, "my-script", config["name"])
	assert.Equal(t, "src/main.lua", config["entry"])
	assert.Equal(t, "dist", config["outDir"])

	// Starter entry script and .gitignore exist.
	entryData, err := os.ReadFile(filepath.Join(dir, "src", "main.lua"))
	require.NoError(t, err)
	assert.Contains(t, string(entryData), "function main()")

	ignoreData, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignoreData), "dist/")
	assert.Contains(t, string(ignoreData), "moonpack.local.json")
}

func TestRunInitDefaultsNameToDirectory(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "cool-project")
	require.NoError(t, os.Mkdir(dir, 0o755))

	err := RunInit(InitOptions{Dir: dir, Yes: true})
	require.NoError(t, err)

	configData, err := os.ReadFile(filepath.Join(dir, "moonpack.json"))
	require.NoError(t, err)
	assert.Contains(t, string(configData), `"name": "cool-project"`)
}

func TestRunInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "moonpack.json"), []byte("{}"), 0o644))

	err := RunInit(InitOptions{Dir: dir, Name: "x", Yes: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRunInitKeepsExistingEntry(t *testing.T) {
	dir := t.TempDir()
	entryPath := filepath.Join(dir, "src", "main.lua")
	require.NoError(t, os.MkdirAll(filepath.Dir(entryPath), 0o755))
	require.NoError(t, os.WriteFile(entryPath, []byte("-- mine\n"), 0o644))

	err := RunInit(InitOptions{Dir: dir, Name: "x", Yes: true})
	require.NoError(t, err)

	data, err := os.ReadFile(entryPath)
	require.NoError(t, err)
	assert.Equal(t, "-- mine\n", string(data))
}

func TestInitProducesBuildableProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, RunInit(InitOptions{Dir: dir, Name: "fresh", Yes: true}))

	result, err := RunBuild(BuildRunConfig{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ModuleCount)
	assert.FileExists(t, filepath.Join(dir, "dist", "fresh.lua"))
}
