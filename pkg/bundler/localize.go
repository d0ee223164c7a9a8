// This file implements auto-localization of top-level function declarations.
//
// Bundled modules run inside a thunk, so a plain `function name(...)` would
// leak a global with that name every time the module loads. Prefixing
// `local` keeps the declaration scoped to the module body. Dotted and colon
// forms assign into an existing table and are left alone, as is anything
// already declared local and anything inside strings or comments. The entry
// source is never localized: MoonLoader calls its callbacks as globals.

package bundler

import (
	"regexp"

	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var localizeLog = logger.New("bundler:localize")

// functionDeclRe matches `function <ident>(` with word boundaries on both
// sides of the identifier. Dotted (a.b) and colon (a:b) forms cannot match:
// the identifier is followed directly by the opening paren.
var functionDeclRe = regexp.MustCompile(`\bfunction\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// LocalizeFunctions prefixes `local ` to every non-dotted function
// declaration in src outside the excluded ranges. Declarations already
// preceded by the local keyword are untouched. The pass is idempotent.
func LocalizeFunctions(src []byte, spans *SpanSet) []byte {
	return applyEdits(src, localizeEdits(src, spans))
}

// localizeEdits builds the insertion list for LocalizeFunctions.
func localizeEdits(src []byte, spans *SpanSet) []edit {
	var edits []edit
	for _, m := range functionDeclRe.FindAllSubmatchIndex(src, -1) {
		start := m[0]
		if spans.Contains(start) {
			continue
		}
		if precededByLocal(src, start) {
			continue
		}
		edits = append(edits, edit{start: start, end: start, replacement: "local "})
	}
	localizeLog.Printf("Localize edits: size=%d bytes, edits=%d", len(src), len(edits))
	return edits
}

// precededByLocal reports whether the token immediately before offset
// (separated only by spaces or tabs) is the keyword local.
func precededByLocal(src []byte, offset int) bool {
	i := offset - 1
	for i >= 0 && (src[i] == ' ' || src[i] == '\t') {
		i--
	}

	const keyword = "local"
	end := i + 1
	start := end - len(keyword)
	if start < 0 || string(src[start:end]) != keyword {
		return false
	}

	// Word boundary before the keyword.
	if start > 0 && isIdentByte(src[start-1]) {
		return false
	}
	return true
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
