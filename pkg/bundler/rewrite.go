// This file implements the require rewriter and the shared edit machinery.
//
// Rewrites never mutate a buffer mid-scan: each pass collects
// (start, end, replacement) edits against the original buffer and the edits
// are applied back-to-front, so earlier offsets stay valid throughout.

package bundler

import (
	"fmt"
	"sort"

	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var rewriteLog = logger.New("bundler:rewrite")

// edit replaces src[start:end] (end exclusive) with replacement.
type edit struct {
	start       int
	end         int
	replacement string
}

// applyEdits applies edits to src back-to-front. Overlapping edits are
// dropped in favor of the earliest-collected one.
func applyEdits(src []byte, edits []edit) []byte {
	if len(edits) == 0 {
		return src
	}

	var kept []edit
	for _, e := range edits {
		if overlapsEdit(e, kept) {
			rewriteLog.Printf("Dropping overlapping edit: start=%d, end=%d", e.start, e.end)
			continue
		}
		kept = append(kept, e)
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].start > kept[j].start })

	out := append([]byte{}, src...)
	for _, e := range kept {
		tail := append([]byte(e.replacement), out[e.end:]...)
		out = append(out[:e.start], tail...)
	}
	return out
}

func overlapsEdit(e edit, kept []edit) bool {
	for _, other := range kept {
		if e.start < other.end && other.start < e.end {
			return true
		}
	}
	return false
}

// RewriteRequires replaces bundled require sites with __load calls. Sites
// whose module name is absent from mapping (external or unresolved imports)
// are left untouched, and the original quote character is preserved.
func RewriteRequires(src []byte, sites []RequireSite, mapping map[string]string) []byte {
	return applyEdits(src, requireEdits(sites, mapping))
}

// requireEdits builds the replacement list for RewriteRequires.
func requireEdits(sites []RequireSite, mapping map[string]string) []edit {
	var edits []edit
	for _, site := range sites {
		moduleID, bundled := mapping[site.ModuleName]
		if !bundled {
			continue
		}

		var replacement string
		if site.Kind == RequirePcall {
			replacement = fmt.Sprintf("pcall(__load, %c%s%c)", site.Quote, moduleID, site.Quote)
		} else {
			replacement = fmt.Sprintf("__load(%c%s%c)", site.Quote, moduleID, site.Quote)
		}

		edits = append(edits, edit{
			start:       site.ByteOffset,
			end:         site.ByteOffset + len(site.RawText),
			replacement: replacement,
		})
	}
	rewriteLog.Printf("Require rewrite edits: sites=%d, edits=%d", len(sites), len(edits))
	return edits
}
