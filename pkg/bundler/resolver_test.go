//go:build !integration

package bundler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeResolver(files ...string) *Resolver {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f] = true
	}
	r := NewResolver("/proj/src", nil)
	r.FileExists = func(path string) bool { return set[path] }
	return r
}

func TestResolveRelativeImport(t *testing.T) {
	r := fakeResolver("/proj/src/util.lua")

	kind, resolved := r.Resolve("./util", "/proj/src/main.lua")
	require.Equal(t, ResolutionBundled, kind)
	assert.Equal(t, "util", resolved.ModuleID)
	assert.Equal(t, "/proj/src/util.lua", resolved.AbsolutePath)
}

func TestResolveParentImport(t *testing.T) {
	r := fakeResolver("/proj/src/shared.lua")

	kind, resolved := r.Resolve("../shared", "/proj/src/sub/mod.lua")
	require.Equal(t, ResolutionBundled, kind)
	assert.Equal(t, "shared", resolved.ModuleID)
}

func TestResolveInitFallback(t *testing.T) {
	r := fakeResolver("/proj/src/lib/init.lua")

	kind, resolved := r.Resolve("./lib", "/proj/src/main.lua")
	require.Equal(t, ResolutionBundled, kind)
	assert.Equal(t, "lib", resolved.ModuleID)
	assert.Equal(t, "/proj/src/lib/init.lua", resolved.AbsolutePath)
}

func TestResolveDirectFileBeatsInit(t *testing.T) {
	r := fakeResolver("/proj/src/lib.lua", "/proj/src/lib/init.lua")

	kind, resolved := r.Resolve("./lib", "/proj/src/main.lua")
	require.Equal(t, ResolutionBundled, kind)
	assert.Equal(t, "/proj/src/lib.lua", resolved.AbsolutePath)
}

func TestResolveExternalNames(t *testing.T) {
	r := fakeResolver()

	for _, name := range []string{"samp.events", "moonloader", "lib.samp.events"} {
		kind, _ := r.Resolve(name, "/proj/src/main.lua")
		assert.Equal(t, ResolutionExternal, kind, "import %q", name)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := fakeResolver()

	kind, _ := r.Resolve("./missing", "/proj/src/main.lua")
	assert.Equal(t, ResolutionNotFound, kind)
}

func TestModuleIDFromPath(t *testing.T) {
	r := fakeResolver()

	tests := []struct {
		path string
		want string
	}{
		{"/proj/src/util.lua", "util"},
		{"/proj/src/a/b.lua", "a/b"},
		{"/proj/src/lib/init.lua", "lib"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.ModuleIDFromPath(tt.path), "path %s", tt.path)
	}
}

func TestModuleIDRoundTrip(t *testing.T) {
	// For any file under the root, resolving the derived id maps back to the
	// same path (direct files shadow init files by construction).
	files := []string{
		"/proj/src/util.lua",
		"/proj/src/a/b.lua",
		"/proj/src/lib/init.lua",
	}
	r := fakeResolver(files...)

	for _, path := range files {
		id := r.ModuleIDFromPath(path)
		assert.Equal(t, path, r.PathFromModuleID(id), "id %q", id)
	}
}

func TestTracksExternal(t *testing.T) {
	r := fakeResolver()
	r.Externals = []string{"samp", "lib.samp"}

	assert.True(t, r.TracksExternal("samp.events"))
	assert.True(t, r.TracksExternal("samp"))
	assert.True(t, r.TracksExternal("lib.samp.events"))
	assert.False(t, r.TracksExternal("sampev"))
	assert.False(t, r.TracksExternal("moonloader"))
	assert.False(t, r.TracksExternal("./local"))

	// Empty list tracks every external import.
	r.Externals = nil
	assert.True(t, r.TracksExternal("moonloader"))
	assert.False(t, r.TracksExternal("./local"))
}
