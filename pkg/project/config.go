// Package project loads and validates the moonpack.json project
// configuration.
//
// # Configuration Loading
//
// The config is read from moonpack.json in the project root. An optional
// moonpack.local.json in the same directory is shallow-merged on top (local
// fields win) before validation, so developers can override entry or outDir
// without touching the shared file. Validation runs the embedded JSON schema
// and reports every violation in one INVALID_CONFIG error instead of
// stopping at the first. Unknown fields are ignored for forward
// compatibility.

package project

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/moonpack-dev/moonpack/pkg/bundler"
	"github.com/moonpack-dev/moonpack/pkg/constants"
	"github.com/moonpack-dev/moonpack/pkg/fileutil"
	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var configLog = logger.New("project:config")

//go:embed moonpack.schema.json
var configSchemaJSON string

// Config is the validated project configuration.
type Config struct {
	Name        string     `json:"name"`
	Version     string     `json:"version,omitempty"`
	Author      AuthorList `json:"author,omitempty"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url,omitempty"`
	Entry       string     `json:"entry"`
	OutDir      string     `json:"outDir,omitempty"`
}

// AuthorList accepts either a single string or a list of strings in JSON.
type AuthorList []string

// UnmarshalJSON implements the string-or-list form.
func (a *AuthorList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = AuthorList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("author must be a string or a list of strings")
	}
	*a = AuthorList(list)
	return nil
}

// MarshalJSON writes a single author back as a plain string.
func (a AuthorList) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// compiledSchema is built once from the embedded schema document.
var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(configSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("embedded config schema is not valid JSON: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("moonpack.schema.json", doc); err != nil {
		panic(fmt.Sprintf("adding config schema resource: %v", err))
	}
	schema, err := compiler.Compile("moonpack.schema.json")
	if err != nil {
		panic(fmt.Sprintf("compiling config schema: %v", err))
	}
	return schema
}

// Load reads, merges, and validates the project configuration in dir.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, constants.ConfigFileName)
	if !fileutil.FileExists(configPath) {
		configLog.Printf("Config not found: %s", configPath)
		return nil, bundler.NewConfigNotFoundError(dir, configPath)
	}

	merged, err := readConfigObject(configPath)
	if err != nil {
		return nil, err
	}

	localPath := filepath.Join(dir, constants.LocalConfigFileName)
	if fileutil.FileExists(localPath) {
		local, err := readConfigObject(localPath)
		if err != nil {
			return nil, err
		}
		configLog.Printf("Merging local config: %s", localPath)
		for key, value := range local {
			merged[key] = value
		}
	}

	if err := validate(merged, configPath); err != nil {
		return nil, err
	}

	config, err := decode(merged)
	if err != nil {
		// The schema pass rejects anything decode would reject, so this is
		// effectively unreachable; treat it as a validation failure anyway.
		return nil, bundler.NewInvalidConfigError([]string{err.Error()}, configPath)
	}

	if config.OutDir == "" {
		config.OutDir = constants.DefaultOutDir
	}

	configLog.Printf("Config loaded: name=%s, entry=%s, outDir=%s", config.Name, config.Entry, config.OutDir)
	return config, nil
}

// readConfigObject parses one config file into a JSON object.
func readConfigObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, bundler.NewConfigParseError(path, err)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		configLog.Printf("Config parse failure: path=%s, err=%v", path, err)
		return nil, bundler.NewConfigParseError(path, err)
	}

	object, ok := value.(map[string]any)
	if !ok {
		return nil, bundler.NewConfigParseError(path, fmt.Errorf("config must be a JSON object"))
	}
	return object, nil
}

// validate runs the JSON schema and aggregates every violation.
func validate(merged map[string]any, configPath string) error {
	err := compiledSchema.Validate(any(merged))
	if err == nil {
		return nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return bundler.NewInvalidConfigError([]string{err.Error()}, configPath)
	}

	errs := flattenValidationError(validationErr)
	configLog.Printf("Config invalid: path=%s, violations=%d", configPath, len(errs))
	return bundler.NewInvalidConfigError(errs, configPath)
}

var schemaMessagePrinter = message.NewPrinter(language.English)

// flattenValidationError collects leaf violations as "<location>: <message>".
func flattenValidationError(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		location := "/" + strings.Join(ve.InstanceLocation, "/")
		return []string{fmt.Sprintf("%s: %s", location, ve.ErrorKind.LocalizedString(schemaMessagePrinter))}
	}
	var errs []string
	for _, cause := range ve.Causes {
		errs = append(errs, flattenValidationError(cause)...)
	}
	return errs
}

// decode converts the merged object into a Config.
func decode(merged map[string]any) (*Config, error) {
	data, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// EntryPath resolves the configured entry relative to the project root.
func (c *Config) EntryPath(projectRoot string) string {
	if filepath.IsAbs(c.Entry) {
		return c.Entry
	}
	return filepath.Join(projectRoot, c.Entry)
}

// OutputPath resolves <outDir>/<name>.lua relative to the project root;
// an absolute outDir is used as-is.
func (c *Config) OutputPath(projectRoot string) string {
	outDir := c.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(projectRoot, outDir)
	}
	return filepath.Join(outDir, c.Name+constants.LuaFileExtension)
}

// Metadata converts the config into bundle header metadata.
func (c *Config) Metadata() bundler.Metadata {
	return bundler.Metadata{
		Name:        c.Name,
		Version:     c.Version,
		Authors:     []string(c.Author),
		Description: c.Description,
		URL:         c.URL,
	}
}
