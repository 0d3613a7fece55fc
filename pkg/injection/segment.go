// Package injection discovers embedded-language regions in a parsed host
// document. It runs the language's injection query, resolves the directive
// vocabulary (#offset!, #escape!, #trim!, #gsub!, #set!) and produces a
// sorted, non-overlapping list of segments for the formatting pipeline.
//
// The extractor never recurses into segments; recursion is driven by the
// pipeline.
package injection

// Point is a zero-based row/column position in the host text.
type Point struct {
	Row int
	Col int
}

// Range is a half-open [StartByte, EndByte) span of the host text, with the
// corresponding points.
type Range struct {
	StartByte int
	EndByte   int
	Start     Point
	End       Point
}

// Len returns the byte length of the range.
func (r Range) Len() int { return r.EndByte - r.StartByte }

// overlaps reports whether two ranges share any byte.
func (r Range) overlaps(other Range) bool {
	return r.StartByte < other.EndByte && other.StartByte < r.EndByte
}

// Segment is one embedded-language region of the host document.
type Segment struct {
	// Language is the resolved target language tag.
	Language string

	// Range is the content span after #offset! and #trim! application.
	Range Range

	// ParentSite is the span of the host construct the injection match
	// occurred under (the parent of the match's outermost captured node).
	// Combined grouping is scoped to it: two combined matches merge only
	// when they share both parent site and language.
	ParentSite Range

	// EscapeChars are the characters escaped with a backslash inside the
	// host; they are unescaped before formatting and re-escaped after.
	EscapeChars map[string]struct{}

	// Combined marks the segment as a member of the combined group for its
	// parent site and language: all members format as one \n-joined blob
	// and the result is redistributed line-wise.
	Combined bool
}
