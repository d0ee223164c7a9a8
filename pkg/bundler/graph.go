// This file builds the dependency graph.
//
// # Graph Construction
//
// Discovery starts at the entry file and walks require sites recursively.
// Every distinct file is read exactly once; external imports are skipped and
// unresolvable local imports abort the build. After discovery, cycle
// detection runs over the whole graph (every cycle is reported, not just the
// first), then a post-order depth-first traversal from the entry yields the
// emit order: dependencies first, entry last.
//
// Cycles are canonicalized by rotating the node sequence to its
// lexicographically smallest rotation, so the same loop discovered from
// different start nodes is reported once.

package bundler

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var graphLog = logger.New("bundler:graph")

// ModuleNode is one discovered module.
type ModuleNode struct {
	ModuleID     string
	AbsolutePath string
	Source       []byte
	Requires     []RequireSite

	// Dependencies lists bundled dependency moduleIds in first-appearance
	// order, de-duplicated.
	Dependencies []string

	// RequireMappings maps each raw bundled import literal in this module's
	// source to its resolved moduleId, for the require rewriter.
	RequireMappings map[string]string

	spans *SpanSet
}

// DependencyGraph is the result of module discovery.
type DependencyGraph struct {
	Entry   string
	Modules map[string]*ModuleNode

	// Order is a topological sort: dependencies precede dependents, the
	// entry is last.
	Order []string

	resolver *Resolver
}

// BuildOptions configures graph construction.
type BuildOptions struct {
	// EntryPath is the entry source file.
	EntryPath string

	// SourceRoot anchors moduleId derivation. Defaults to the entry's
	// directory.
	SourceRoot string

	// Externals optionally names external import prefixes for the linter's
	// duplicate-assignment tracking.
	Externals []string

	// ReadFile is injectable for tests; defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// BuildDependencyGraph reads the entry file, discovers the module graph,
// rejects cycles, and computes the emit order.
func BuildDependencyGraph(opts BuildOptions) (*DependencyGraph, error) {
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	entryPath, err := filepath.Abs(opts.EntryPath)
	if err != nil {
		return nil, err
	}
	sourceRoot := opts.SourceRoot
	if sourceRoot == "" {
		sourceRoot = filepath.Dir(entryPath)
	}
	if sourceRoot, err = filepath.Abs(sourceRoot); err != nil {
		return nil, err
	}

	resolver := NewResolver(sourceRoot, opts.Externals)
	if opts.ReadFile != nil {
		// Keep existence checks consistent with the injected reader.
		resolver.FileExists = func(path string) bool {
			_, err := readFile(path)
			return err == nil
		}
	}
	graphLog.Printf("Building dependency graph: entry=%s, root=%s", entryPath, sourceRoot)

	graph := &DependencyGraph{
		Modules:  make(map[string]*ModuleNode),
		resolver: resolver,
	}

	builder := &graphBuilder{graph: graph, resolver: resolver, readFile: readFile}

	entry, err := builder.loadModule(entryPath)
	if err != nil {
		return nil, err
	}
	graph.Entry = entry.ModuleID
	graph.Modules[entry.ModuleID] = entry

	if err := builder.discover(entry); err != nil {
		return nil, err
	}

	if cycles := detectCycles(graph); len(cycles) > 0 {
		return nil, NewCircularDependencyError(cycles)
	}

	graph.Order = topologicalOrder(graph)

	graphLog.Printf("Graph built: modules=%d, order=%v", len(graph.Modules), graph.Order)
	return graph, nil
}

// Resolver exposes the resolver the graph was built with, for the linter's
// external-import classification.
func (g *DependencyGraph) Resolver() *Resolver {
	return g.resolver
}

type graphBuilder struct {
	graph    *DependencyGraph
	resolver *Resolver
	readFile func(string) ([]byte, error)
}

// loadModule reads and scans one file.
func (b *graphBuilder) loadModule(absolutePath string) (*ModuleNode, error) {
	source, err := b.readFile(absolutePath)
	if err != nil {
		return nil, err
	}

	spans := ScanSpans(source)
	requires := ExtractRequires(source, spans)

	node := &ModuleNode{
		ModuleID:        b.resolver.ModuleIDFromPath(absolutePath),
		AbsolutePath:    absolutePath,
		Source:          source,
		Requires:        requires,
		RequireMappings: make(map[string]string),
		spans:           spans,
	}
	graphLog.Printf("Loaded module: id=%s, size=%d bytes, requires=%d",
		node.ModuleID, len(source), len(requires))
	return node, nil
}

// discover resolves node's require sites, recursing into newly found
// modules.
func (b *graphBuilder) discover(node *ModuleNode) error {
	for _, site := range node.Requires {
		kind, resolved := b.resolver.Resolve(site.ModuleName, node.AbsolutePath)
		switch kind {
		case ResolutionExternal:
			continue
		case ResolutionNotFound:
			return NewModuleNotFoundError(site.ModuleName, node.AbsolutePath, site.Line)
		}

		node.RequireMappings[site.ModuleName] = resolved.ModuleID
		if !containsString(node.Dependencies, resolved.ModuleID) {
			node.Dependencies = append(node.Dependencies, resolved.ModuleID)
		}

		if _, seen := b.graph.Modules[resolved.ModuleID]; seen {
			continue
		}
		dep, err := b.loadModule(resolved.AbsolutePath)
		if err != nil {
			return err
		}
		b.graph.Modules[resolved.ModuleID] = dep
		if err := b.discover(dep); err != nil {
			return err
		}
	}
	return nil
}

// detectCycles runs a depth-first sweep from every node and returns every
// distinct cycle, canonicalized and sorted for deterministic reporting.
func detectCycles(graph *DependencyGraph) [][]string {
	ids := make([]string, 0, len(graph.Modules))
	for id := range graph.Modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	seen := make(map[string]bool)
	var cycles [][]string
	var path []string

	var visit func(id string)
	visit = func(id string) {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, dep := range graph.Modules[id].Dependencies {
			if onStack[dep] {
				cycle := extractCycle(path, dep)
				key := cycleKey(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
				continue
			}
			if !visited[dep] {
				visit(dep)
			}
		}

		path = path[:len(path)-1]
		onStack[id] = false
	}

	for _, id := range ids {
		if !visited[id] {
			visit(id)
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycleKey(cycles[i]) < cycleKey(cycles[j])
	})
	return cycles
}

// extractCycle slices path from the first occurrence of start to the end and
// appends start again, producing a → … → a.
func extractCycle(path []string, start string) []string {
	idx := 0
	for i, id := range path {
		if id == start {
			idx = i
			break
		}
	}
	cycle := append([]string{}, path[idx:]...)
	return append(cycle, start)
}

// cycleKey canonicalizes a cycle (with its duplicated closing node) to the
// lexicographically smallest rotation of its node list.
func cycleKey(cycle []string) string {
	nodes := cycle[:len(cycle)-1]
	best := ""
	for i := range nodes {
		rotated := make([]string, 0, len(nodes))
		rotated = append(rotated, nodes[i:]...)
		rotated = append(rotated, nodes[:i]...)
		key := joinIDs(rotated)
		if best == "" || key < best {
			best = key
		}
	}
	return best
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += "\x00"
		}
		out += id
	}
	return out
}

// topologicalOrder performs a post-order depth-first traversal from the
// entry: every dependency precedes its dependents and the entry is last.
func topologicalOrder(graph *DependencyGraph) []string {
	visited := make(map[string]bool)
	var order []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range graph.Modules[id].Dependencies {
			visit(dep)
		}
		order = append(order, id)
	}

	visit(graph.Entry)
	return order
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
