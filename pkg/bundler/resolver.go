// This file implements the module resolver.
//
// The relative-path dialect is used: an import name starting with ./ or ../
// is bundled, everything else is passed through to the host's require at
// runtime. Resolution joins the importing file's directory with the import
// name, appends .lua when missing, and falls back to <name>/init.lua. The
// moduleId is the resolved path relative to the source root with the
// extension stripped, a trailing /init collapsed, and forward slashes.

package bundler

import (
	"path/filepath"
	"strings"

	"github.com/moonpack-dev/moonpack/pkg/fileutil"
	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var resolverLog = logger.New("bundler:resolver")

// ResolutionKind classifies the outcome of resolving an import name.
type ResolutionKind int

const (
	// ResolutionBundled means the import maps to a file under the source
	// root and will be wrapped into the bundle.
	ResolutionBundled ResolutionKind = iota
	// ResolutionExternal means the import is left to the host's require.
	ResolutionExternal
	// ResolutionNotFound means a local import did not match any file.
	ResolutionNotFound
)

// ResolvedModule is a successfully resolved bundled import.
type ResolvedModule struct {
	ModuleID     string
	AbsolutePath string
}

// Resolver maps import names to files under a source root.
type Resolver struct {
	// SourceRoot anchors moduleId derivation.
	SourceRoot string

	// Externals optionally names external import prefixes whose aliases the
	// linter tracks for duplicate-assignment detection. An empty list means
	// every external import is tracked.
	Externals []string

	// FileExists is injectable for tests; defaults to fileutil.FileExists.
	FileExists func(string) bool
}

// NewResolver creates a resolver rooted at sourceRoot.
func NewResolver(sourceRoot string, externals []string) *Resolver {
	return &Resolver{
		SourceRoot: sourceRoot,
		Externals:  externals,
		FileExists: fileutil.FileExists,
	}
}

// IsLocal reports whether importName is a bundled (relative) import.
func (r *Resolver) IsLocal(importName string) bool {
	return strings.HasPrefix(importName, "./") || strings.HasPrefix(importName, "../")
}

// Resolve maps (importName, requester) to a bundled module, an external
// pass-through, or not-found. requester is the absolute path of the file
// containing the import.
func (r *Resolver) Resolve(importName, requester string) (ResolutionKind, *ResolvedModule) {
	if !r.IsLocal(importName) {
		return ResolutionExternal, nil
	}

	joined := filepath.Join(filepath.Dir(requester), importName)

	// Direct file beats init file.
	candidate := joined
	if !strings.HasSuffix(candidate, ".lua") {
		candidate += ".lua"
	}
	if r.fileExists(candidate) {
		resolved := &ResolvedModule{ModuleID: r.ModuleIDFromPath(candidate), AbsolutePath: candidate}
		resolverLog.Printf("Resolved import: name=%s, id=%s, path=%s", importName, resolved.ModuleID, candidate)
		return ResolutionBundled, resolved
	}

	initCandidate := filepath.Join(joined, "init.lua")
	if r.fileExists(initCandidate) {
		resolved := &ResolvedModule{ModuleID: r.ModuleIDFromPath(initCandidate), AbsolutePath: initCandidate}
		resolverLog.Printf("Resolved import via init: name=%s, id=%s, path=%s", importName, resolved.ModuleID, initCandidate)
		return ResolutionBundled, resolved
	}

	resolverLog.Printf("Import not found: name=%s, requester=%s", importName, requester)
	return ResolutionNotFound, nil
}

// TracksExternal reports whether the linter should track alias assignments
// for the given external import name.
func (r *Resolver) TracksExternal(importName string) bool {
	if r.IsLocal(importName) {
		return false
	}
	if len(r.Externals) == 0 {
		return true
	}
	for _, external := range r.Externals {
		if importName == external || strings.HasPrefix(importName, external+".") {
			return true
		}
	}
	return false
}

// ModuleIDFromPath derives the canonical moduleId for an absolute path under
// the source root: relative path, extension stripped, trailing init segment
// collapsed, forward slashes.
func (r *Resolver) ModuleIDFromPath(absolutePath string) string {
	rel, err := filepath.Rel(r.SourceRoot, absolutePath)
	if err != nil {
		rel = absolutePath
	}
	id := filepath.ToSlash(rel)
	id = strings.TrimSuffix(id, ".lua")
	if trimmed, ok := strings.CutSuffix(id, "/init"); ok {
		id = trimmed
	}
	return id
}

// PathFromModuleID maps a moduleId back to the file it names, preferring the
// direct file over the init file.
func (r *Resolver) PathFromModuleID(moduleID string) string {
	base := filepath.Join(r.SourceRoot, filepath.FromSlash(moduleID))
	direct := base + ".lua"
	if r.fileExists(direct) {
		return direct
	}
	return filepath.Join(base, "init.lua")
}

func (r *Resolver) fileExists(path string) bool {
	if r.FileExists != nil {
		return r.FileExists(path)
	}
	return fileutil.FileExists(path)
}
