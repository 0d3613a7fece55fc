package injection

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ignoreMarker inside any comment node preserves the next non-comment
// sibling verbatim: injection segments within that sibling are skipped.
const ignoreMarker = "weavefmt-ignore"

// collectIgnoreRanges walks the tree for comment nodes carrying the ignore
// marker and returns the ranges they shield: the marker comment itself and
// the next non-comment named sibling.
func collectIgnoreRanges(root *sitter.Node, source []byte) []Range {
	var ranges []Range

	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		if isCommentNode(node) && strings.Contains(node.Content(source), ignoreMarker) {
			ranges = append(ranges, nodeRange(node))
			if target := nextNonCommentSibling(node); target != nil {
				ranges = append(ranges, nodeRange(target))
			}
		}

		for i := 0; i < int(node.NamedChildCount()); i++ {
			visit(node.NamedChild(i))
		}
	}
	visit(root)

	return ranges
}

// nextNonCommentSibling skips over trailing comments to the shielded node.
func nextNonCommentSibling(node *sitter.Node) *sitter.Node {
	target := node.NextNamedSibling()
	for target != nil && isCommentNode(target) {
		target = target.NextNamedSibling()
	}
	return target
}

func isCommentNode(node *sitter.Node) bool {
	return strings.Contains(node.Type(), "comment")
}

// isIgnored reports whether r is fully contained in any ignore range.
func isIgnored(r Range, ignoreRanges []Range) bool {
	for _, ignore := range ignoreRanges {
		if r.StartByte >= ignore.StartByte && r.EndByte <= ignore.EndByte {
			return true
		}
	}
	return false
}
