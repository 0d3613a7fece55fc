package injection

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/weavefmt/internal/logging"
	"github.com/yaklabco/weavefmt/pkg/registry"
)

// Capture names every injection query is expected to use.
const (
	captureContent  = "injection.content"
	captureLanguage = "injection.language"
)

// Extract parses source with the grammar and returns the injection segments
// of the document, sorted by start offset and non-overlapping. When two
// segments overlap, the later-starting one is dropped and logged.
//
// Sources not ending in a newline are parsed with one appended so that
// line-anchored query patterns still match the last line; ranges are
// remapped back before returning, so no segment ever reaches past the real
// input.
func Extract(ctx context.Context, grammar *registry.Grammar, source []byte) ([]Segment, error) {
	if grammar == nil || grammar.Injections == nil {
		return nil, nil
	}

	parseSource, appendedAt := withFinalNewline(source)

	parser := sitter.NewParser()
	parser.SetLanguage(grammar.Lang)

	tree, err := parser.ParseCtx(ctx, nil, parseSource)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", grammar.Name, err)
	}
	defer tree.Close()

	ignoreRanges := collectIgnoreRanges(tree.RootNode(), parseSource)

	segments := runQuery(ctx, grammar, tree, parseSource, ignoreRanges)

	for i := range segments {
		segments[i].Range = remapAppendedNewline(segments[i].Range, source, appendedAt)
	}

	return dropOverlaps(sortSegments(segments)), nil
}

// runQuery executes the injection query and materializes raw segments.
func runQuery(ctx context.Context, grammar *registry.Grammar, tree *sitter.Tree, source []byte, ignoreRanges []Range) []Segment {
	logger := logging.FromContext(ctx)

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(grammar.Injections, tree.RootNode())

	var segments []Segment

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}

		// Evaluates #eq?, #match? and #not-match?; a failed pattern comes
		// back with its captures removed.
		match = cursor.FilterPredicates(match, source)

		segment, ok := segmentFromMatch(grammar, match, source)
		if !ok {
			continue
		}

		if isIgnored(segment.Range, ignoreRanges) {
			logger.Debug("segment inside ignore marker, skipping",
				logging.FieldLanguage, segment.Language,
				logging.FieldByteRange, fmt.Sprintf("%d..%d", segment.Range.StartByte, segment.Range.EndByte))
			continue
		}

		segments = append(segments, segment)
	}

	return segments
}

// segmentFromMatch resolves one query match into a segment.
func segmentFromMatch(grammar *registry.Grammar, match *sitter.QueryMatch, source []byte) (Segment, bool) {
	query := grammar.Injections
	dirs := parseDirectives(query, uint32(match.PatternIndex))

	var content, langCapture *sitter.QueryCapture
	for i := range match.Captures {
		capture := &match.Captures[i]
		switch query.CaptureNameForId(capture.Index) {
		case captureContent:
			content = capture
		case captureLanguage:
			langCapture = capture
		}
	}

	if content == nil {
		return Segment{}, false
	}

	lang := dirs.language
	if lang == "" && langCapture != nil {
		lang = langCapture.Node.Content(source)
		if rules := dirs.gsubs[langCapture.Index]; len(rules) > 0 {
			lang = applyGsubRules(lang, rules)
		}
	}
	if lang == "" {
		return Segment{}, false
	}

	r := nodeRange(content.Node)
	if offset, ok := dirs.offsets[content.Index]; ok {
		r = applyOffset(source, r, offset)
	}
	if trim, ok := dirs.trims[content.Index]; ok {
		start, end := applyTrim(source, r.StartByte, r.EndByte, trim)
		r = rebuildRange(source, start, end)
	}

	escapes := dirs.escapes[content.Index]
	if escapes == nil {
		escapes = make(map[string]struct{})
	}

	return Segment{
		Language:    lang,
		Range:       r,
		ParentSite:  parentSiteRange(match, content, source),
		EscapeChars: escapes,
		Combined:    dirs.combined,
	}, true
}

// parentSiteRange identifies the host construct a match occurred under: the
// parent of the match's outermost captured node. Sibling matches under the
// same construct share it; matches under unrelated constructs do not, which
// keeps their combined groups apart. A match whose outermost capture is the
// tree root maps to the whole document.
func parentSiteRange(match *sitter.QueryMatch, content *sitter.QueryCapture, source []byte) Range {
	outer := content.Node
	for i := range match.Captures {
		node := match.Captures[i].Node
		if node.StartByte() <= outer.StartByte() && node.EndByte() >= outer.EndByte() {
			outer = node
		}
	}

	if parent := outer.Parent(); parent != nil {
		return nodeRange(parent)
	}
	return rebuildRange(source, 0, len(source))
}

// nodeRange converts a node's span into this package's Range.
func nodeRange(node *sitter.Node) Range {
	return Range{
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
		Start:     Point{Row: int(node.StartPoint().Row), Col: int(node.StartPoint().Column)},
		End:       Point{Row: int(node.EndPoint().Row), Col: int(node.EndPoint().Column)},
	}
}

// rebuildRange recomputes the point positions for a byte span.
func rebuildRange(source []byte, start, end int) Range {
	return Range{
		StartByte: start,
		EndByte:   end,
		Start:     byteToPoint(source, start),
		End:       byteToPoint(source, end),
	}
}

// byteToPoint computes the row/column of a byte offset.
func byteToPoint(source []byte, byteIndex int) Point {
	if byteIndex > len(source) {
		byteIndex = len(source)
	}
	p := Point{}
	for _, b := range source[:byteIndex] {
		if b == '\n' {
			p.Row++
			p.Col = 0
		} else {
			p.Col++
		}
	}
	return p
}

// withFinalNewline returns the source with a trailing newline appended when
// missing, plus the byte offset where the append happened (-1 otherwise).
func withFinalNewline(source []byte) ([]byte, int) {
	if len(source) > 0 && source[len(source)-1] == '\n' {
		return source, -1
	}
	appended := make([]byte, 0, len(source)+1)
	appended = append(appended, source...)
	appended = append(appended, '\n')
	return appended, len(source)
}

// remapAppendedNewline pulls a range's end back onto the real input when it
// reaches into the appended newline.
func remapAppendedNewline(r Range, source []byte, appendedAt int) Range {
	if appendedAt < 0 || r.EndByte <= appendedAt {
		return r
	}
	r.EndByte = appendedAt
	r.End = byteToPoint(source, appendedAt)
	if r.StartByte > r.EndByte {
		r.StartByte = r.EndByte
		r.Start = r.End
	}
	return r
}

// sortSegments orders segments by start offset, longer spans first on ties
// so the overlap pass keeps the outermost.
func sortSegments(segments []Segment) []Segment {
	sort.SliceStable(segments, func(i, j int) bool {
		if segments[i].Range.StartByte != segments[j].Range.StartByte {
			return segments[i].Range.StartByte < segments[j].Range.StartByte
		}
		return segments[i].Range.EndByte > segments[j].Range.EndByte
	})
	return segments
}

// dropOverlaps removes any segment overlapping an earlier-starting one.
func dropOverlaps(segments []Segment) []Segment {
	if len(segments) < 2 {
		return segments
	}

	logger := logging.Default()
	kept := segments[:1]

	for _, segment := range segments[1:] {
		last := kept[len(kept)-1]
		if segment.Range.overlaps(last.Range) {
			logger.Warn("overlapping injection segment dropped",
				logging.FieldLanguage, segment.Language,
				logging.FieldByteRange, fmt.Sprintf("%d..%d", segment.Range.StartByte, segment.Range.EndByte))
			continue
		}
		kept = append(kept, segment)
	}

	return kept
}
