// This file implements the static lint pass.
//
// # Lint Checks
//
// Three advisory checks run over the built graph:
//
//  1. Cross-file duplicate assignments to host-provided event tables: two
//     different files assigning the same property of the same external
//     import overwrite each other at runtime, and only the later one wins.
//  2. MoonLoader event handlers declared in bundled modules: the host only
//     calls these callbacks as globals in the entry script, so a handler in
//     a module thunk silently never fires (the auto-localizer makes it
//     module-local on top of that).
//  3. Unused imports: a local alias for a require that is never referenced
//     again.
//
// Modules are scanned concurrently; every output list is ordered
// deterministically afterwards, so lint output is stable across runs.

package bundler

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/moonpack-dev/moonpack/pkg/constants"
	"github.com/moonpack-dev/moonpack/pkg/logger"
	"github.com/sourcegraph/conc/iter"
)

var lintLog = logger.New("bundler:lint")

// ExternalAssignment is one assignment to a property of an external import
// alias.
type ExternalAssignment struct {
	VarName      string
	PropertyPath string
	ModuleName   string
	FilePath     string
	Line         int
}

// DuplicateAssignment groups assignments to the same property path across
// more than one file.
type DuplicateAssignment struct {
	PropertyPath string
	Occurrences  []ExternalAssignment
}

// MoonLoaderEventInModule is a host callback declared in a bundled module.
type MoonLoaderEventInModule struct {
	EventName string
	FilePath  string
	Line      int
}

// UnusedRequire is a local require alias that is never referenced.
type UnusedRequire struct {
	VarName    string
	ModuleName string
	FilePath   string
	Line       int
}

// LintResult carries every advisory finding of a lint pass.
type LintResult struct {
	DuplicateAssignments      []DuplicateAssignment
	MoonLoaderEventsInModules []MoonLoaderEventInModule
	UnusedRequires            []UnusedRequire
}

// HasFindings reports whether the result carries any warning.
func (r *LintResult) HasFindings() bool {
	return len(r.DuplicateAssignments) > 0 ||
		len(r.MoonLoaderEventsInModules) > 0 ||
		len(r.UnusedRequires) > 0
}

// requireAliasRe matches `<var> = require <str>` statements, parenthesized
// or bare, with an optional local prefix. Groups: local keyword, variable
// name, single-quoted name, double-quoted name.
var requireAliasRe = regexp.MustCompile(`(?m)^[ \t]*(local[ \t]+)?([A-Za-z_][A-Za-z0-9_]*)[ \t]*=[ \t]*require\b[ \t]*\(?[ \t]*(?:'([^'\n]*)'|"([^"\n]*)")`)

// LintGraph runs all checks over the graph and returns the aggregated,
// deterministically ordered findings.
func LintGraph(graph *DependencyGraph) *LintResult {
	ids := graph.Order
	if len(ids) == 0 {
		ids = make([]string, 0, len(graph.Modules))
		for id := range graph.Modules {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	// Scan modules concurrently; iter.Map keeps results in input order.
	scans := iter.Map(ids, func(id *string) *moduleScan {
		node := graph.Modules[*id]
		return scanModule(node, *id == graph.Entry, graph.Resolver())
	})

	result := &LintResult{}

	// Merge assignments across files, then keep groups spanning more than
	// one distinct file.
	byPath := make(map[string][]ExternalAssignment)
	var paths []string
	for _, scan := range scans {
		for _, assignment := range scan.assignments {
			if _, seen := byPath[assignment.PropertyPath]; !seen {
				paths = append(paths, assignment.PropertyPath)
			}
			byPath[assignment.PropertyPath] = append(byPath[assignment.PropertyPath], assignment)
		}
		result.MoonLoaderEventsInModules = append(result.MoonLoaderEventsInModules, scan.events...)
		result.UnusedRequires = append(result.UnusedRequires, scan.unused...)
	}

	sort.Strings(paths)
	for _, path := range paths {
		occurrences := byPath[path]
		if countDistinctFiles(occurrences) < 2 {
			continue
		}
		result.DuplicateAssignments = append(result.DuplicateAssignments, DuplicateAssignment{
			PropertyPath: path,
			Occurrences:  occurrences,
		})
	}

	lintLog.Printf("Lint complete: duplicates=%d, events=%d, unused=%d",
		len(result.DuplicateAssignments), len(result.MoonLoaderEventsInModules), len(result.UnusedRequires))
	return result
}

type moduleScan struct {
	assignments []ExternalAssignment
	events      []MoonLoaderEventInModule
	unused      []UnusedRequire
}

type requireAlias struct {
	varName    string
	moduleName string
	local      bool
	offset     int
	line       int
}

// scanModule runs the per-module half of every check.
func scanModule(node *ModuleNode, isEntry bool, resolver *Resolver) *moduleScan {
	scan := &moduleScan{}
	src := node.Source
	spans := node.spans
	if spans == nil {
		spans = ScanSpans(src)
	}

	aliases := findRequireAliases(src, spans)

	for _, alias := range aliases {
		if resolver.TracksExternal(alias.moduleName) {
			scan.assignments = append(scan.assignments,
				findExternalAssignments(node, src, spans, alias)...)
		}
		if alias.local && !aliasUsed(src, spans, alias) {
			scan.unused = append(scan.unused, UnusedRequire{
				VarName:    alias.varName,
				ModuleName: alias.moduleName,
				FilePath:   node.AbsolutePath,
				Line:       alias.line,
			})
		}
	}

	if !isEntry {
		scan.events = findEventHandlers(node, src, spans)
	}

	return scan
}

// findRequireAliases collects `<var> = require <str>` statements outside
// excluded ranges.
func findRequireAliases(src []byte, spans *SpanSet) []requireAlias {
	var aliases []requireAlias
	for _, m := range requireAliasRe.FindAllSubmatchIndex(src, -1) {
		varStart, varEnd := m[4], m[5]
		if spans.Contains(varStart) {
			continue
		}
		nameStart, nameEnd := m[6], m[7]
		if nameStart < 0 {
			nameStart, nameEnd = m[8], m[9]
		}
		line, _ := lineColumn(src, varStart)
		aliases = append(aliases, requireAlias{
			varName:    string(src[varStart:varEnd]),
			moduleName: string(src[nameStart:nameEnd]),
			local:      m[2] >= 0,
			offset:     varStart,
			line:       line,
		})
	}
	return aliases
}

// findExternalAssignments finds assignments and function declarations
// targeting <var>(.<prop>)+ outside excluded ranges.
func findExternalAssignments(node *ModuleNode, src []byte, spans *SpanSet, alias requireAlias) []ExternalAssignment {
	quoted := regexp.QuoteMeta(alias.varName)

	// `=` assignment; the trailing [^=] keeps comparisons (==) out.
	assignRe := regexp.MustCompile(`(?m)(^|[^.:A-Za-z0-9_])(` + quoted + `(?:\.[A-Za-z_][A-Za-z0-9_]*)+)[ \t]*=([^=]|$)`)
	// function declaration form.
	funcRe := regexp.MustCompile(`\bfunction[ \t]+(` + quoted + `(?:\.[A-Za-z_][A-Za-z0-9_]*)+)[ \t]*\(`)

	var assignments []ExternalAssignment

	record := func(pathStart, pathEnd int) {
		if spans.Contains(pathStart) {
			return
		}
		line, _ := lineColumn(src, pathStart)
		assignments = append(assignments, ExternalAssignment{
			VarName:      alias.varName,
			PropertyPath: string(src[pathStart:pathEnd]),
			ModuleName:   alias.moduleName,
			FilePath:     node.AbsolutePath,
			Line:         line,
		})
	}

	for _, m := range assignRe.FindAllSubmatchIndex(src, -1) {
		record(m[4], m[5])
	}
	for _, m := range funcRe.FindAllSubmatchIndex(src, -1) {
		record(m[2], m[3])
	}

	sort.Slice(assignments, func(i, j int) bool { return assignments[i].Line < assignments[j].Line })
	return assignments
}

// findEventHandlers finds MoonLoader callback declarations using the same
// masking and local-prefix exclusion as the auto-localizer.
func findEventHandlers(node *ModuleNode, src []byte, spans *SpanSet) []MoonLoaderEventInModule {
	var events []MoonLoaderEventInModule
	for _, m := range functionDeclRe.FindAllSubmatchIndex(src, -1) {
		start := m[0]
		if spans.Contains(start) || precededByLocal(src, start) {
			continue
		}
		name := string(src[m[2]:m[3]])
		if !constants.IsMoonLoaderEvent(name) {
			continue
		}
		line, _ := lineColumn(src, start)
		events = append(events, MoonLoaderEventInModule{
			EventName: name,
			FilePath:  node.AbsolutePath,
			Line:      line,
		})
	}
	return events
}

// aliasUsed reports whether the alias identifier appears in any non-excluded
// region outside its own declaration line.
func aliasUsed(src []byte, spans *SpanSet, alias requireAlias) bool {
	usageRe := regexp.MustCompile(fmt.Sprintf(`\b%s\b`, regexp.QuoteMeta(alias.varName)))
	for _, m := range usageRe.FindAllIndex(src, -1) {
		if spans.Contains(m[0]) {
			continue
		}
		line, _ := lineColumn(src, m[0])
		if line == alias.line {
			continue
		}
		return true
	}
	return false
}

func countDistinctFiles(occurrences []ExternalAssignment) int {
	files := make(map[string]bool)
	for _, occurrence := range occurrences {
		files[occurrence.FilePath] = true
	}
	return len(files)
}
