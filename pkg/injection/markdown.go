package injection

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractMarkdownFences locates fenced code blocks with a goldmark parse.
// It is the default extraction path for markdown hosts: fenced content is
// embedded verbatim in markdown, so the plain fence scan covers it without
// any injection query. Supplying a markdown injections.scm on query_paths
// switches markdown to the query-driven extractor instead.
//
// The returned segments carry no escape or combined semantics, and all
// share the document as their parent site.
func ExtractMarkdownFences(source []byte) []Segment {
	reader := text.NewReader(source)
	doc := goldmark.DefaultParser().Parse(reader)

	docRange := rebuildRange(source, 0, len(source))

	var segments []Segment

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fence, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lang := string(fence.Language(source))
		if lang == "" || fence.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}

		start := fence.Lines().At(0).Start
		stop := fence.Lines().At(fence.Lines().Len() - 1).Stop

		segments = append(segments, Segment{
			Language:    lang,
			Range:       rebuildRange(source, start, stop),
			ParentSite:  docRange,
			EscapeChars: make(map[string]struct{}),
		})

		return ast.WalkContinue, nil
	})

	return dropOverlaps(sortSegments(segments))
}
