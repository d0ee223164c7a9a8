// This file implements the lexical span scanner.
//
// # Span Scanning
//
// Every later pass in the pipeline matches textual patterns (require calls,
// function declarations, assignments) with regular expressions. Those matches
// are only meaningful in code, not inside string literals or comments, so the
// scanner computes the byte ranges occupied by strings and comments once per
// buffer and every pattern search filters its matches against them.
//
// String literals are recognized first: quoted forms with naive backslash
// escapes, and long-bracket forms [[...]], [=[...]=], ... distinguished by
// their exact = count. Comments are recognized in a second pass that consults
// the string spans, so a -- inside a string never opens a comment. Both
// passes tolerate unterminated constructs by extending the span to the end
// of the buffer.

package bundler

import (
	"bytes"

	"github.com/moonpack-dev/moonpack/pkg/logger"
)

var scannerLog = logger.New("bundler:scanner")

// Span is an inclusive byte range [Start, End] within one source buffer.
type Span struct {
	Start int
	End   int
}

// contains reports whether offset falls inside the span.
func (s Span) contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// SpanSet holds the string and comment spans of one source buffer.
// String spans are disjoint from each other, and so are comment spans. A
// comment never starts inside a string span, but a quote inside a comment
// still opens a string span, so the two sets can overlap.
type SpanSet struct {
	Strings  []Span
	Comments []Span
}

// Contains reports whether offset falls inside any string or comment span.
func (set *SpanSet) Contains(offset int) bool {
	for _, s := range set.Strings {
		if s.contains(offset) {
			return true
		}
	}
	for _, s := range set.Comments {
		if s.contains(offset) {
			return true
		}
	}
	return false
}

// inString reports whether offset falls inside a string span only.
func (set *SpanSet) inString(offset int) bool {
	for _, s := range set.Strings {
		if s.contains(offset) {
			return true
		}
	}
	return false
}

// ScanSpans scans src and returns its string and comment spans.
func ScanSpans(src []byte) *SpanSet {
	set := &SpanSet{
		Strings: scanStrings(src),
	}
	set.Comments = scanComments(src, set)
	scannerLog.Printf("Scanned spans: size=%d bytes, strings=%d, comments=%d",
		len(src), len(set.Strings), len(set.Comments))
	return set
}

// scanStrings finds quoted and long-bracket string literals.
func scanStrings(src []byte) []Span {
	var spans []Span

	for i := 0; i < len(src); {
		c := src[i]

		switch {
		case c == '"' || c == '\'':
			end := scanQuoted(src, i, c)
			spans = append(spans, Span{Start: i, End: end})
			i = end + 1

		case c == '[':
			if end, ok := scanLongBracket(src, i); ok {
				spans = append(spans, Span{Start: i, End: end})
				i = end + 1
			} else {
				i++
			}

		default:
			i++
		}
	}

	return spans
}

// scanQuoted scans a quoted literal starting at start (which holds quote).
// Returns the inclusive end offset: the closing quote, or the last byte of
// the buffer if the literal is unterminated.
func scanQuoted(src []byte, start int, quote byte) int {
	i := start + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			// Naive escape: the next byte is absorbed even when it is not
			// a legal escape sequence.
			i += 2
		case quote:
			return i
		default:
			i++
		}
	}
	return len(src) - 1
}

// scanLongBracket attempts to match a long-bracket opener at start (which
// holds '['). On success it returns the inclusive end offset of the whole
// bracketed region: through the matching closer, or the end of the buffer
// when unterminated.
func scanLongBracket(src []byte, start int) (int, bool) {
	level := 0
	i := start + 1
	for i < len(src) && src[i] == '=' {
		level++
		i++
	}
	if i >= len(src) || src[i] != '[' {
		return 0, false
	}

	closer := longBracketCloser(level)
	rest := src[i+1:]
	idx := bytes.Index(rest, closer)
	if idx < 0 {
		return len(src) - 1, true
	}
	return i + 1 + idx + len(closer) - 1, true
}

// longBracketCloser builds the closing sequence for a level-k long bracket.
func longBracketCloser(level int) []byte {
	closer := make([]byte, 0, level+2)
	closer = append(closer, ']')
	for range level {
		closer = append(closer, '=')
	}
	return append(closer, ']')
}

// scanComments finds -- line comments and --[[ ]] long comments, skipping
// any -- that falls inside a string span.
func scanComments(src []byte, set *SpanSet) []Span {
	var spans []Span

	for i := 0; i+1 < len(src); {
		if src[i] != '-' || src[i+1] != '-' || set.inString(i) {
			i++
			continue
		}

		// Long comment: -- immediately followed by a long-bracket opener.
		if i+2 < len(src) && src[i+2] == '[' {
			if end, ok := scanLongBracket(src, i+2); ok {
				spans = append(spans, Span{Start: i, End: end})
				i = end + 1
				continue
			}
		}

		// Line comment: through the byte before the next newline.
		end := len(src) - 1
		if idx := bytes.IndexByte(src[i:], '\n'); idx >= 0 {
			end = i + idx - 1
		}
		spans = append(spans, Span{Start: i, End: end})
		i = end + 2
	}

	return spans
}

// lineColumn derives the 1-based line and column of a byte offset.
func lineColumn(src []byte, offset int) (line, column int) {
	line = 1 + bytes.Count(src[:offset], []byte{'\n'})
	last := bytes.LastIndexByte(src[:offset], '\n')
	column = offset - last
	return line, column
}
