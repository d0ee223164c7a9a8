//go:build !integration

package bundler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGraph(t *testing.T, entry string, files map[string]string) *DependencyGraph {
	t.Helper()
	graph, err := BuildDependencyGraph(memFS(entry, files))
	require.NoError(t, err)
	return graph
}

func TestLintDuplicateExternalAssignmentAcrossFiles(t *testing.T) {
	// Two modules hook the same handler of the same external events table.
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "require('./a')\nrequire('./b')\n",
		"/proj/src/a.lua":    "local sampev = require('lib.samp.events')\nfunction sampev.onServerMessage(color, text) end\nreturn {}\n",
		"/proj/src/b.lua":    "local sampev = require('lib.samp.events')\nfunction sampev.onServerMessage(color, text) end\nreturn {}\n",
	})

	result := LintGraph(graph)
	require.Len(t, result.DuplicateAssignments, 1)

	dup := result.DuplicateAssignments[0]
	assert.Equal(t, "sampev.onServerMessage", dup.PropertyPath)
	require.Len(t, dup.Occurrences, 2)
	assert.NotEqual(t, dup.Occurrences[0].FilePath, dup.Occurrences[1].FilePath)
	assert.Equal(t, "lib.samp.events", dup.Occurrences[0].ModuleName)
}

func TestLintDuplicateAssignmentSameFileIgnored(t *testing.T) {
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "require('./a')\n",
		"/proj/src/a.lua": "local sampev = require('lib.samp.events')\n" +
			"function sampev.onServerMessage(c, t) end\n" +
			"function sampev.onServerMessage(c, t) end\n" +
			"return {}\n",
	})

	result := LintGraph(graph)
	assert.Empty(t, result.DuplicateAssignments)
}

func TestLintDuplicateAssignmentEqualsForm(t *testing.T) {
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "require('./a')\nrequire('./b')\n",
		"/proj/src/a.lua":    "local ev = require('samp.events')\nev.onPlayerChat = function() end\nreturn {}\n",
		"/proj/src/b.lua":    "local ev = require('samp.events')\nev.onPlayerChat = function() end\nreturn {}\n",
	})

	result := LintGraph(graph)
	require.Len(t, result.DuplicateAssignments, 1)
	assert.Equal(t, "ev.onPlayerChat", result.DuplicateAssignments[0].PropertyPath)
}

func TestLintComparisonIsNotAssignment(t *testing.T) {
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "require('./a')\nrequire('./b')\n",
		"/proj/src/a.lua":    "local ev = require('samp.events')\nif ev.onPlayerChat == nil then end\nreturn {}\n",
		"/proj/src/b.lua":    "local ev = require('samp.events')\nif ev.onPlayerChat == nil then end\nreturn {}\n",
	})

	result := LintGraph(graph)
	assert.Empty(t, result.DuplicateAssignments)
}

func TestLintMoonLoaderEventInModule(t *testing.T) {
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "require('./worker')\nfunction main() end\n",
		"/proj/src/worker.lua": "function main() end\nreturn {}\n",
	})

	result := LintGraph(graph)
	require.Len(t, result.MoonLoaderEventsInModules, 1)

	event := result.MoonLoaderEventsInModules[0]
	assert.Equal(t, "main", event.EventName)
	assert.Equal(t, "/proj/src/worker.lua", event.FilePath)
	assert.Equal(t, 1, event.Line)
}

func TestLintMoonLoaderEventInEntryNotWarned(t *testing.T) {
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "function main() end\nfunction onScriptTerminate() end\n",
	})

	result := LintGraph(graph)
	assert.Empty(t, result.MoonLoaderEventsInModules)
}

func TestLintLocalEventFunctionNotWarned(t *testing.T) {
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "require('./worker')\n",
		"/proj/src/worker.lua": "local function main() end\nreturn {}\n",
	})

	result := LintGraph(graph)
	assert.Empty(t, result.MoonLoaderEventsInModules)
}

func TestLintUnusedRequire(t *testing.T) {
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "local unused = require('./util')\nprint('hi')\n",
		"/proj/src/util.lua": "return {}\n",
	})

	result := LintGraph(graph)
	require.Len(t, result.UnusedRequires, 1)
	assert.Equal(t, "unused", result.UnusedRequires[0].VarName)
	assert.Equal(t, "./util", result.UnusedRequires[0].ModuleName)
	assert.Equal(t, 1, result.UnusedRequires[0].Line)
}

func TestLintUsedRequireNotWarned(t *testing.T) {
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "local util = require('./util')\nutil.go()\n",
		"/proj/src/util.lua": "return {}\n",
	})

	result := LintGraph(graph)
	assert.Empty(t, result.UnusedRequires)
}

func TestLintUsageInsideStringDoesNotCount(t *testing.T) {
	graph := buildGraph(t, "main.lua", map[string]string{
		"/proj/src/main.lua": "local util = require('./util')\nprint(\"util\")\n",
		"/proj/src/util.lua": "return {}\n",
	})

	result := LintGraph(graph)
	require.Len(t, result.UnusedRequires, 1)
}

func TestLintResultStableOrder(t *testing.T) {
	files := map[string]string{
		"/proj/src/main.lua": "require('./a')\nrequire('./b')\n",
		"/proj/src/a.lua": "local zev = require('z.events')\nlocal aev = require('a.events')\n" +
			"function zev.onZ() end\nfunction aev.onA() end\nreturn {}\n",
		"/proj/src/b.lua": "local zev = require('z.events')\nlocal aev = require('a.events')\n" +
			"function zev.onZ() end\nfunction aev.onA() end\nreturn {}\n",
	}

	var first *LintResult
	for range 3 {
		result := LintGraph(buildGraph(t, "main.lua", files))
		if first == nil {
			first = result
			require.Len(t, result.DuplicateAssignments, 2)
			// Ordered by property path.
			assert.Equal(t, "aev.onA", result.DuplicateAssignments[0].PropertyPath)
			assert.Equal(t, "zev.onZ", result.DuplicateAssignments[1].PropertyPath)
			continue
		}
		assert.Equal(t, first, result)
	}
}

func TestLintHasFindings(t *testing.T) {
	empty := &LintResult{}
	assert.False(t, empty.HasFindings())

	withEvent := &LintResult{MoonLoaderEventsInModules: []MoonLoaderEventInModule{{EventName: "main"}}}
	assert.True(t, withEvent.HasFindings())
}
