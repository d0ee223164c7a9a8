// This file implements require-site extraction.
//
// Three textual forms are recognized, all with the require keyword guarded
// by word boundaries:
//
//	require("name")        standard, any whitespace between tokens
//	require "name"         compact, no parentheses (zero whitespace allowed)
//	pcall(require, "name") protected call
//
// Matches whose starting offset falls inside a string or comment span are
// discarded. Overlapping matches are de-duplicated keeping the longer raw
// text, so a require inside a pcall is reported once as a pcall site.

package bundler

import (
	"regexp"
	"sort"

	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var requiresLog = logger.New("bundler:requires")

// RequireKind identifies the textual form of a require site.
type RequireKind int

const (
	// RequireStandard is require(<str>).
	RequireStandard RequireKind = iota
	// RequireCompact is require <str> with no parentheses.
	RequireCompact
	// RequirePcall is pcall(require, <str>).
	RequirePcall
)

// String returns a string representation of the RequireKind.
func (k RequireKind) String() string {
	switch k {
	case RequireStandard:
		return "standard"
	case RequireCompact:
		return "compact"
	case RequirePcall:
		return "pcall"
	default:
		return "unknown"
	}
}

// RequireSite is one textual require occurrence in a source buffer.
type RequireSite struct {
	ModuleName string
	Kind       RequireKind
	RawText    string
	ByteOffset int
	Line       int
	Column     int
	Quote      byte
}

// Quote characters must match on both ends, so each pattern is spelled out
// per quote style (RE2 has no backreferences). Group 1/2 capture the
// single- and double-quoted names respectively.
var (
	standardRequireRe = regexp.MustCompile(`\brequire\s*\(\s*(?:'([^'\n]*)'|"([^"\n]*)")\s*\)`)
	compactRequireRe  = regexp.MustCompile(`\brequire\s*(?:'([^'\n]*)'|"([^"\n]*)")`)
	pcallRequireRe    = regexp.MustCompile(`\bpcall\s*\(\s*require\s*,\s*(?:'([^'\n]*)'|"([^"\n]*)")\s*\)`)
)

// ExtractRequires yields every require site in src whose offset is outside
// the excluded ranges, sorted by byte offset.
func ExtractRequires(src []byte, spans *SpanSet) []RequireSite {
	var sites []RequireSite

	sites = append(sites, matchSites(src, spans, pcallRequireRe, RequirePcall)...)
	sites = append(sites, matchSites(src, spans, standardRequireRe, RequireStandard)...)
	sites = append(sites, matchSites(src, spans, compactRequireRe, RequireCompact)...)

	sites = dedupeSites(sites)

	sort.Slice(sites, func(i, j int) bool { return sites[i].ByteOffset < sites[j].ByteOffset })

	for i := range sites {
		sites[i].Line, sites[i].Column = lineColumn(src, sites[i].ByteOffset)
	}

	requiresLog.Printf("Extracted require sites: size=%d bytes, sites=%d", len(src), len(sites))
	return sites
}

// matchSites runs one pattern over src and converts its matches to sites.
func matchSites(src []byte, spans *SpanSet, re *regexp.Regexp, kind RequireKind) []RequireSite {
	var sites []RequireSite

	for _, m := range re.FindAllSubmatchIndex(src, -1) {
		start, end := m[0], m[1]
		if spans.Contains(start) {
			continue
		}

		nameStart, nameEnd := m[2], m[3]
		if nameStart < 0 {
			nameStart, nameEnd = m[4], m[5]
		}

		// A compact match whose next non-space character is a closing paren
		// is the tail of a parenthesized form; drop it to avoid counting the
		// same import twice.
		if kind == RequireCompact && nextNonSpaceIs(src, end, ')') {
			continue
		}

		sites = append(sites, RequireSite{
			ModuleName: string(src[nameStart:nameEnd]),
			Kind:       kind,
			RawText:    string(src[start:end]),
			ByteOffset: start,
			Quote:      src[nameStart-1],
		})
	}

	return sites
}

// nextNonSpaceIs reports whether the first non-space byte at or after offset
// equals want.
func nextNonSpaceIs(src []byte, offset int, want byte) bool {
	for i := offset; i < len(src); i++ {
		switch src[i] {
		case ' ', '\t':
			continue
		default:
			return src[i] == want
		}
	}
	return false
}

// dedupeSites drops sites whose byte range overlaps an already kept site;
// when two overlap, the longer raw text wins.
func dedupeSites(sites []RequireSite) []RequireSite {
	// Longest first so the widest match claims its range.
	ordered := make([]RequireSite, len(sites))
	copy(ordered, sites)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].RawText) > len(ordered[j].RawText)
	})

	var kept []RequireSite
	for _, site := range ordered {
		if overlapsAny(site, kept) {
			continue
		}
		kept = append(kept, site)
	}
	return kept
}

// overlapsAny reports whether site's byte range intersects any kept site.
func overlapsAny(site RequireSite, kept []RequireSite) bool {
	start := site.ByteOffset
	end := site.ByteOffset + len(site.RawText)
	for _, other := range kept {
		otherStart := other.ByteOffset
		otherEnd := other.ByteOffset + len(other.RawText)
		if start < otherEnd && otherStart < end {
			return true
		}
	}
	return false
}
