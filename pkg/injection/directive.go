package injection

import (
	"bytes"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// rangeOffset is a parsed #offset! directive: row/column deltas applied to
// a capture's range, typically to strip delimiters like surrounding quotes.
type rangeOffset struct {
	startRow int
	startCol int
	endRow   int
	endCol   int
}

// trimSpec is a parsed #trim! directive. The one-argument form trims
// trailing blank lines only; the five-argument form selects each side and
// granularity independently.
type trimSpec struct {
	startLinewise bool
	startCharwise bool
	endLinewise   bool
	endCharwise   bool
}

// gsubRule is a parsed #gsub! directive: a Lua pattern and replacement
// applied to a capture's text (in practice, the language tag).
type gsubRule struct {
	pattern     string
	replacement string
}

// directives holds every parsed directive of one query pattern, keyed by
// capture index where applicable.
type directives struct {
	offsets  map[uint32]rangeOffset
	escapes  map[uint32]map[string]struct{}
	trims    map[uint32]trimSpec
	gsubs    map[uint32][]gsubRule
	language string // #set! injection.language literal, "" when unset
	combined bool   // #set! injection.combined
}

// predicateArg is one decoded predicate argument: either a capture index or
// a string literal.
type predicateArg struct {
	isCapture bool
	capture   uint32
	str       string
}

// parseDirectives decodes the general predicates of one query pattern.
// Unknown operators are ignored: the filter predicates (#eq?, #match?,
// #not-match?) are evaluated by the query cursor, and queries may carry
// editor-specific directives this engine has no use for.
func parseDirectives(q *sitter.Query, patternIndex uint32) directives {
	dirs := directives{
		offsets: make(map[uint32]rangeOffset),
		escapes: make(map[uint32]map[string]struct{}),
		trims:   make(map[uint32]trimSpec),
		gsubs:   make(map[uint32][]gsubRule),
	}

	for _, steps := range q.PredicatesForPattern(patternIndex) {
		op, args, ok := decodePredicate(q, steps)
		if !ok {
			continue
		}

		switch op {
		case "offset!":
			parseOffset(&dirs, args)
		case "escape!":
			parseEscape(&dirs, args)
		case "trim!":
			parseTrim(&dirs, args)
		case "gsub!":
			parseGsub(&dirs, args)
		case "set!":
			parseSet(&dirs, args)
		}
	}

	return dirs
}

// decodePredicate turns raw predicate steps into an operator and arguments.
func decodePredicate(q *sitter.Query, steps []sitter.QueryPredicateStep) (string, []predicateArg, bool) {
	if len(steps) == 0 || steps[0].Type != sitter.QueryPredicateStepTypeString {
		return "", nil, false
	}

	op := q.StringValueForId(steps[0].ValueId)
	args := make([]predicateArg, 0, len(steps)-1)

	for _, step := range steps[1:] {
		switch step.Type {
		case sitter.QueryPredicateStepTypeCapture:
			args = append(args, predicateArg{isCapture: true, capture: step.ValueId})
		case sitter.QueryPredicateStepTypeString:
			args = append(args, predicateArg{str: q.StringValueForId(step.ValueId)})
		case sitter.QueryPredicateStepTypeDone:
			// Terminator; nothing to record.
		}
	}

	return op, args, true
}

// parseOffset handles (#offset! @capture sr sc er ec).
func parseOffset(dirs *directives, args []predicateArg) {
	if len(args) != 5 || !args[0].isCapture {
		return
	}

	deltas := make([]int, 0, 4)
	for _, arg := range args[1:] {
		n, err := strconv.Atoi(arg.str)
		if err != nil {
			return
		}
		deltas = append(deltas, n)
	}

	dirs.offsets[args[0].capture] = rangeOffset{
		startRow: deltas[0],
		startCol: deltas[1],
		endRow:   deltas[2],
		endCol:   deltas[3],
	}
}

// parseEscape handles (#escape! @capture "c" ...). Repeated directives for
// the same capture accumulate.
func parseEscape(dirs *directives, args []predicateArg) {
	if len(args) < 2 || !args[0].isCapture {
		return
	}

	set := dirs.escapes[args[0].capture]
	if set == nil {
		set = make(map[string]struct{})
		dirs.escapes[args[0].capture] = set
	}
	for _, arg := range args[1:] {
		if arg.isCapture || arg.str == "" {
			continue
		}
		set[arg.str] = struct{}{}
	}
}

// parseTrim handles (#trim! @capture) and (#trim! @capture sl sc el ec).
func parseTrim(dirs *directives, args []predicateArg) {
	if len(args) == 0 || !args[0].isCapture {
		return
	}

	switch len(args) {
	case 1:
		dirs.trims[args[0].capture] = trimSpec{endLinewise: true}
	case 5:
		flags := make([]bool, 0, 4)
		for _, arg := range args[1:] {
			switch arg.str {
			case "0":
				flags = append(flags, false)
			case "1":
				flags = append(flags, true)
			default:
				return
			}
		}
		dirs.trims[args[0].capture] = trimSpec{
			startLinewise: flags[0],
			startCharwise: flags[1],
			endLinewise:   flags[2],
			endCharwise:   flags[3],
		}
	}
}

// parseGsub handles (#gsub! @capture pattern replacement).
func parseGsub(dirs *directives, args []predicateArg) {
	if len(args) != 3 || !args[0].isCapture || args[1].isCapture || args[2].isCapture {
		return
	}
	dirs.gsubs[args[0].capture] = append(dirs.gsubs[args[0].capture], gsubRule{
		pattern:     args[1].str,
		replacement: args[2].str,
	})
}

// parseSet handles (#set! injection.language "x") and
// (#set! injection.combined).
func parseSet(dirs *directives, args []predicateArg) {
	if len(args) == 0 || args[0].isCapture {
		return
	}

	switch args[0].str {
	case "injection.language":
		if len(args) >= 2 && !args[1].isCapture {
			dirs.language = args[1].str
		}
	case "injection.combined":
		dirs.combined = true
	}
}

// applyOffset shifts a range by the directive's row/column deltas and
// clamps the result to the original capture boundary; #offset! may strip
// delimiters but never grow the region beyond what the query matched.
func applyOffset(source []byte, r Range, offset rangeOffset) Range {
	start := Point{Row: r.Start.Row + offset.startRow, Col: r.Start.Col + offset.startCol}
	end := Point{Row: r.End.Row + offset.endRow, Col: r.End.Col + offset.endCol}

	startByte, ok := pointToByte(source, start)
	if !ok {
		return r
	}
	endByte, ok := pointToByte(source, end)
	if !ok {
		return r
	}

	if startByte < r.StartByte {
		startByte, start = r.StartByte, r.Start
	}
	if endByte > r.EndByte {
		endByte, end = r.EndByte, r.End
	}
	if startByte > endByte {
		return r
	}

	return Range{StartByte: startByte, EndByte: endByte, Start: start, End: end}
}

// pointToByte resolves a row/column point to a byte offset in source.
func pointToByte(source []byte, p Point) (int, bool) {
	if p.Row < 0 || p.Col < 0 {
		return 0, false
	}

	byteIndex := 0
	row := 0
	for line := range strings.Lines(string(source)) {
		if row == p.Row {
			col := p.Col
			if col > len(line) {
				col = len(line)
			}
			return byteIndex + col, true
		}
		byteIndex += len(line)
		row++
	}

	return 0, false
}

// applyTrim narrows [start, end) per the trim spec. Linewise trimming drops
// whitespace-only lines from the chosen side; charwise trimming drops
// individual whitespace bytes.
func applyTrim(source []byte, start, end int, spec trimSpec) (int, int) {
	if start >= end || end > len(source) {
		return start, end
	}

	if spec.startLinewise {
		start = trimStartLinewise(source, start, end)
	}
	if spec.startCharwise {
		start = trimStartCharwise(source, start, end)
	}
	if spec.endLinewise {
		end = trimEndLinewise(source, start, end)
	}
	if spec.endCharwise {
		end = trimEndCharwise(source, start, end)
	}

	return start, end
}

func isLineWhitespaceOnly(line []byte) bool {
	for _, b := range line {
		if b != ' ' && b != '\t' && b != '\r' {
			return false
		}
	}
	return true
}

func trimStartLinewise(source []byte, start, end int) int {
	for start < end {
		slice := source[start:end]
		nl := bytes.IndexByte(slice, '\n')
		if nl < 0 {
			if isLineWhitespaceOnly(slice) {
				return end
			}
			return start
		}
		if !isLineWhitespaceOnly(slice[:nl]) {
			break
		}
		start += nl + 1
		if start > end {
			start = end
		}
	}
	return start
}

func trimEndLinewise(source []byte, start, end int) int {
	for end > start {
		lineEnd := end
		if source[end-1] == '\n' {
			lineEnd = end - 1
		}

		lineStart := start
		if prev := bytes.LastIndexByte(source[start:lineEnd], '\n'); prev >= 0 {
			lineStart = start + prev + 1
		}

		if !isLineWhitespaceOnly(source[lineStart:lineEnd]) {
			break
		}
		end = lineStart
	}
	return end
}

func isCharwiseWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func trimStartCharwise(source []byte, start, end int) int {
	for start < end && isCharwiseWhitespace(source[start]) {
		start++
	}
	return start
}

func trimEndCharwise(source []byte, start, end int) int {
	for end > start && isCharwiseWhitespace(source[end-1]) {
		end--
	}
	return end
}
