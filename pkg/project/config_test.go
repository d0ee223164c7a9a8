//go:build !integration

package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonpack-dev/moonpack/pkg/bundler"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "moonpack.json", `{
		"name": "my-script",
		"version": "1.2.3",
		"author": "Alice",
		"description": "demo",
		"url": "https://example.com",
		"entry": "src/main.lua",
		"outDir": "build"
	}`)

	config, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "my-script", config.Name)
	assert.Equal(t, "1.2.3", config.Version)
	assert.Equal(t, AuthorList{"Alice"}, config.Author)
	assert.Equal(t, "src/main.lua", config.Entry)
	assert.Equal(t, "build", config.OutDir)
}

func TestLoadAuthorList(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "moonpack.json", `{
		"name": "s",
		"author": ["Alice", "Bob"],
		"entry": "main.lua"
	}`)

	config, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, AuthorList{"Alice", "Bob"}, config.Author)
}

func TestLoadOutDirDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "moonpack.json", `{"name": "s", "entry": "main.lua"}`)

	config, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "dist", config.OutDir)
}

func TestLoadConfigNotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	var buildErr *bundler.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, bundler.CodeConfigNotFound, buildErr.Code)

	details, ok := buildErr.Details.(bundler.ConfigNotFoundDetails)
	require.True(t, ok)
	assert.Equal(t, dir, details.Directory)
}

func TestLoadConfigParseError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "moonpack.json", `{not json`)

	_, err := Load(dir)
	var buildErr *bundler.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, bundler.CodeConfigParseError, buildErr.Code)
}

func TestLoadConfigMustBeObject(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "moonpack.json", `["not", "an", "object"]`)

	_, err := Load(dir)
	var buildErr *bundler.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, bundler.CodeConfigParseError, buildErr.Code)
}

func TestLoadInvalidConfigAggregatesErrors(t *testing.T) {
	dir := t.TempDir()
	// Missing entry, empty name: both violations must be reported together.
	writeConfig(t, dir, "moonpack.json", `{"name": ""}`)

	_, err := Load(dir)
	var buildErr *bundler.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, bundler.CodeInvalidConfig, buildErr.Code)

	details, ok := buildErr.Details.(bundler.InvalidConfigDetails)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(details.Errors), 2)
}

func TestLoadUnknownFieldsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "moonpack.json", `{"name": "s", "entry": "main.lua", "futureField": 42}`)

	_, err := Load(dir)
	assert.NoError(t, err)
}

func TestLoadLocalConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "moonpack.json", `{"name": "s", "entry": "main.lua", "outDir": "dist"}`)
	writeConfig(t, dir, "moonpack.local.json", `{"outDir": "local-dist"}`)

	config, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "local-dist", config.OutDir)
	assert.Equal(t, "s", config.Name)
}

func TestLoadLocalConfigParseError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "moonpack.json", `{"name": "s", "entry": "main.lua"}`)
	writeConfig(t, dir, "moonpack.local.json", `{broken`)

	_, err := Load(dir)
	var buildErr *bundler.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, bundler.CodeConfigParseError, buildErr.Code)

	details, ok := buildErr.Details.(bundler.ConfigParseErrorDetails)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "moonpack.local.json"), details.ConfigPath)
}

func TestLoadLocalMergeHappensBeforeValidation(t *testing.T) {
	dir := t.TempDir()
	// Base config is incomplete; the local file supplies the missing entry.
	writeConfig(t, dir, "moonpack.json", `{"name": "s"}`)
	writeConfig(t, dir, "moonpack.local.json", `{"entry": "main.lua"}`)

	config, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "main.lua", config.Entry)
}

func TestOutputPath(t *testing.T) {
	config := &Config{Name: "demo", OutDir: "dist"}
	assert.Equal(t, filepath.Join("/proj", "dist", "demo.lua"), config.OutputPath("/proj"))

	config.OutDir = "/abs/out"
	assert.Equal(t, filepath.Join("/abs/out", "demo.lua"), config.OutputPath("/proj"))
}

func TestEntryPath(t *testing.T) {
	config := &Config{Entry: "src/main.lua"}
	assert.Equal(t, filepath.Join("/proj", "src", "main.lua"), config.EntryPath("/proj"))

	config.Entry = "/abs/main.lua"
	assert.Equal(t, "/abs/main.lua", config.EntryPath("/proj"))
}

func TestMetadataConversion(t *testing.T) {
	config := &Config{
		Name:    "demo",
		Version: "1.0.0",
		Author:  AuthorList{"Alice", "Bob"},
	}
	meta := config.Metadata()
	assert.Equal(t, "demo", meta.Name)
	assert.Equal(t, []string{"Alice", "Bob"}, meta.Authors)
}
