// This file implements the bundle emitter.
//
// # Output Layout
//
// The bundle is a single Lua file: a comment header with script metadata
// calls, the loader shim, one deferred thunk per bundled module in
// dependency order, and finally the entry source itself. Module thunks run
// at most once; __load memoizes their return value, and unknown names fall
// through to the host's native require.

package bundler

import (
	"fmt"
	"strings"

	"github.com/moonpack-dev/moonpack/pkg/constants"
	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var emitLog = logger.New("bundler:emit")

// Metadata carries the config fields rendered into the bundle header.
type Metadata struct {
	Name        string
	Version     string
	Authors     []string
	Description string
	URL         string
}

// loaderShim is the runtime loader prepended to every bundle. Its shape is
// part of the output contract.
const loaderShim = `local __modules = {}
local __loaded = {}

local function __load(name)
    if __loaded[name] then return __loaded[name] end
    if __modules[name] then
        __loaded[name] = __modules[name]()
        return __loaded[name]
    end
    return require(name)
end`

// GenerateBundle produces the final bundle text for a built graph.
func GenerateBundle(graph *DependencyGraph, meta Metadata) string {
	emitLog.Printf("Generating bundle: name=%s, modules=%d", meta.Name, len(graph.Order))

	var blocks []string
	blocks = append(blocks, headerBlock(meta))
	blocks = append(blocks, loaderShim)

	for _, moduleID := range graph.Order {
		if moduleID == graph.Entry {
			continue
		}
		blocks = append(blocks, moduleBlock(graph.Modules[moduleID]))
	}

	blocks = append(blocks, entryBlock(graph.Modules[graph.Entry]))

	bundle := strings.Join(blocks, "\n\n")
	emitLog.Printf("Bundle generated: size=%d bytes", len(bundle))
	return bundle
}

// headerBlock renders the comment header and the script metadata calls.
func headerBlock(meta Metadata) string {
	var b strings.Builder

	title := meta.Name
	if meta.Version != "" {
		title += " v" + meta.Version
	}
	fmt.Fprintf(&b, "-- %s\n", title)
	fmt.Fprintf(&b, "-- Bundled by %s. Do not edit: changes will be overwritten.\n", constants.CLIName)

	fmt.Fprintf(&b, "\nscript_name(%s)", quoteLua(meta.Name))
	if meta.Version != "" {
		fmt.Fprintf(&b, "\nscript_version(%s)", quoteLua(meta.Version))
	}
	switch len(meta.Authors) {
	case 0:
	case 1:
		fmt.Fprintf(&b, "\nscript_author(%s)", quoteLua(meta.Authors[0]))
	default:
		quoted := make([]string, 0, len(meta.Authors))
		for _, author := range meta.Authors {
			quoted = append(quoted, quoteLua(author))
		}
		fmt.Fprintf(&b, "\nscript_authors(%s)", strings.Join(quoted, ", "))
	}
	if meta.Description != "" {
		fmt.Fprintf(&b, "\nscript_description(%s)", quoteLua(meta.Description))
	}
	if meta.URL != "" {
		fmt.Fprintf(&b, "\nscript_url(%s)", quoteLua(meta.URL))
	}

	return b.String()
}

// moduleBlock localizes and rewrites one bundled module and wraps it as a
// deferred thunk. Both passes collect edits against the original buffer and
// apply them in one back-to-front pass, so their offsets never interfere.
func moduleBlock(node *ModuleNode) string {
	spans := node.spans
	if spans == nil {
		spans = ScanSpans(node.Source)
	}

	edits := localizeEdits(node.Source, spans)
	edits = append(edits, requireEdits(node.Requires, node.RequireMappings)...)
	body := applyEdits(node.Source, edits)

	var b strings.Builder
	fmt.Fprintf(&b, "__modules[%q] = function()\n", node.ModuleID)
	b.WriteString(indentBody(string(body)))
	b.WriteString("\nend")
	return b.String()
}

// entryBlock rewrites the entry's require sites; the entry is neither
// localized nor wrapped.
func entryBlock(node *ModuleNode) string {
	return string(RewriteRequires(node.Source, node.Requires, node.RequireMappings))
}

// indentBody indents every non-empty line by four spaces.
func indentBody(body string) string {
	body = strings.TrimRight(body, "\n")
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = "    " + line
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// quoteLua renders s as a single-quoted Lua string with backslash escapes.
func quoteLua(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
