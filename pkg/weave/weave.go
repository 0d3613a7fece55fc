// Package weave rebuilds a host document from formatted segment
// replacements. It restores the escaping and indentation the extraction
// step removed, preserves each segment's original trailing-newline run, and
// splices replacements back to front so earlier byte offsets stay valid.
//
// The engine guarantees that applying weave with unchanged replacement text
// reproduces the host byte-for-byte.
package weave

import (
	"fmt"

	"github.com/yaklabco/weavefmt/pkg/injection"
	"github.com/yaklabco/weavefmt/pkg/textutil"
)

// Replacement pairs a segment with its formatted content and the transforms
// to undo on re-embedding.
type Replacement struct {
	// Segment identifies the host range being replaced.
	Segment injection.Segment

	// Formatted is the formatter output for the segment, unescaped and
	// unindented.
	Formatted []byte

	// Indent is the column count re-applied to every line after the first.
	Indent int

	// IndentFirstLine re-prefixes the first line too. Set when the indent
	// was derived from the segment's own content rather than its host
	// column, so the host text before the segment does not supply it.
	IndentFirstLine bool

	// TrailingNewlines is the segment's original trailing \n/\r run,
	// restored on the replacement regardless of what the formatter emitted.
	TrailingNewlines []byte
}

// Apply splices every replacement into host and returns the rebuilt
// document. Replacements must be sorted by segment start and
// non-overlapping; both are guaranteed by the extractor.
func Apply(host []byte, replacements []Replacement) []byte {
	result := make([]byte, len(host))
	copy(result, host)

	// Back to front: splicing never disturbs the offsets still pending.
	for i := len(replacements) - 1; i >= 0; i-- {
		repl := replacements[i]
		embedded := Embed(repl)

		r := repl.Segment.Range
		rebuilt := make([]byte, 0, len(result)-r.Len()+len(embedded))
		rebuilt = append(rebuilt, result[:r.StartByte]...)
		rebuilt = append(rebuilt, embedded...)
		rebuilt = append(rebuilt, result[r.EndByte:]...)
		result = rebuilt
	}

	return result
}

// Embed produces the final host bytes for one replacement: re-escape,
// restore the trailing-newline run, then re-indent.
func Embed(repl Replacement) []byte {
	out := repl.Formatted

	if len(repl.Segment.EscapeChars) > 0 {
		chars := textutil.SortEscapeChars(repl.Segment.EscapeChars)
		out = []byte(textutil.EscapeText(string(out), chars))
	}

	out = textutil.StripTrailingNewlines(out)
	out = append(out, repl.TrailingNewlines...)

	if repl.IndentFirstLine && repl.Indent > 0 && len(out) > 0 && out[0] != '\n' && out[0] != '\r' {
		prefixed := make([]byte, 0, len(out)+repl.Indent)
		for i := 0; i < repl.Indent; i++ {
			prefixed = append(prefixed, ' ')
		}
		out = append(prefixed, out...)
	}

	return textutil.OffsetLines(out, repl.Indent)
}

// SplitCombined redistributes the formatted output of a combined group
// across its n member sites. The output is split on newlines after the
// trailing run is stripped; a count other than n means the formatter broke
// the one-line-per-member contract and the caller must keep the original
// member bytes.
func SplitCombined(formatted []byte, n int) ([][]byte, error) {
	trimmed := textutil.StripTrailingNewlines(formatted)

	pieces := split(trimmed, '\n')
	if len(pieces) != n {
		return nil, fmt.Errorf("combined group has %d members but formatter produced %d lines", n, len(pieces))
	}
	return pieces, nil
}

// split divides data on sep without the empty-tail surprise of bytes.Split
// on empty input: zero bytes split into one empty piece.
func split(data []byte, sep byte) [][]byte {
	pieces := [][]byte{}
	start := 0
	for i, b := range data {
		if b == sep {
			pieces = append(pieces, data[start:i])
			start = i + 1
		}
	}
	return append(pieces, data[start:])
}
