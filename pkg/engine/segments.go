package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/weavefmt/internal/logging"
	"github.com/yaklabco/weavefmt/pkg/injection"
	"github.com/yaklabco/weavefmt/pkg/textutil"
	"github.com/yaklabco/weavefmt/pkg/weave"
)

// extracted is a segment's content after offset/trim/unescape and indent
// stripping — the Extracted state of the pipeline.
type extracted struct {
	segment injection.Segment

	// content is the text handed to the nested pipeline.
	content []byte

	// indent is the column budget the embedding consumes on every line.
	indent int

	// indentFromContent records that the indent came from the segment body
	// rather than its host column.
	indentFromContent bool

	// trailing is the original trailing-newline run.
	trailing []byte
}

// unit is one formatter invocation: a single segment, or a combined group
// formatted as one \n-joined blob and redistributed.
type unit struct {
	members  []extracted
	combined bool
}

// formatSegments walks the document's segments in source order, recursing
// into each and collecting weave replacements for those that succeed. A
// failed segment is logged and skipped — its host bytes stay put. The
// returned error, if any, is the first consistency violation.
func (e *Engine) formatSegments(ctx context.Context, source []byte, segments []injection.Segment, width int) ([]weave.Replacement, error) {
	logger := logging.FromContext(ctx)

	var replacements []weave.Replacement
	var consistencyErr error

	for _, u := range groupUnits(source, segments) {
		// Cancellation is cooperative at the segment boundary.
		if ctx.Err() != nil {
			break
		}

		if u.combined {
			repls, err := e.formatCombined(ctx, u, width)
			if err != nil {
				var cerr *ConsistencyError
				if errors.As(err, &cerr) && consistencyErr == nil {
					consistencyErr = err
				}
				logger.Warn("combined group preserved",
					logging.FieldLanguage, u.members[0].segment.Language,
					"state", StatePreserved,
					logging.FieldError, err)
				continue
			}
			replacements = append(replacements, repls...)
			continue
		}

		member := u.members[0]
		repl, err := e.formatSingle(ctx, member, width)
		if err != nil {
			logger.Warn("segment preserved",
				logging.FieldLanguage, member.segment.Language,
				logging.FieldByteRange, fmt.Sprintf("%d..%d", member.segment.Range.StartByte, member.segment.Range.EndByte),
				"state", StatePreserved,
				logging.FieldError, err)
			continue
		}
		logger.Debug("segment formatted",
			logging.FieldLanguage, member.segment.Language,
			logging.FieldByteRange, fmt.Sprintf("%d..%d", member.segment.Range.StartByte, member.segment.Range.EndByte),
			"state", StateEmbedded)
		replacements = append(replacements, repl)
	}

	return replacements, consistencyErr
}

// formatSingle runs the nested pipeline over one segment's content.
func (e *Engine) formatSingle(ctx context.Context, member extracted, width int) (weave.Replacement, error) {
	formatted, err := e.format(ctx, member.content, e.cfg.ResolveAlias(member.segment.Language),
		effectiveWidth(width, member.indent), false, false)
	if err != nil {
		return weave.Replacement{}, err
	}

	return weave.Replacement{
		Segment:          member.segment,
		Formatted:        formatted,
		Indent:           member.indent,
		IndentFirstLine:  member.indentFromContent,
		TrailingNewlines: member.trailing,
	}, nil
}

// formatCombined joins the group's member contents with single newlines,
// formats the blob once, and splits the result back across the members.
func (e *Engine) formatCombined(ctx context.Context, u unit, width int) ([]weave.Replacement, error) {
	contents := make([][]byte, len(u.members))
	for i, member := range u.members {
		contents[i] = member.content
	}
	joined := bytes.Join(contents, []byte{'\n'})

	first := u.members[0]
	formatted, err := e.format(ctx, joined, e.cfg.ResolveAlias(first.segment.Language),
		effectiveWidth(width, first.indent), false, false)
	if err != nil {
		return nil, err
	}

	pieces, err := weave.SplitCombined(formatted, len(u.members))
	if err != nil {
		return nil, &ConsistencyError{Reason: "combined redistribution failed", Err: err}
	}

	replacements := make([]weave.Replacement, len(u.members))
	for i, member := range u.members {
		replacements[i] = weave.Replacement{
			Segment:          member.segment,
			Formatted:        pieces[i],
			Indent:           member.indent,
			IndentFirstLine:  member.indentFromContent,
			TrailingNewlines: member.trailing,
		}
	}
	return replacements, nil
}

// combinedKey scopes a combined group: members merge only when they share
// both the parent injection site and the language.
type combinedKey struct {
	site injection.Range
	lang string
}

// groupUnits extracts every segment's content and folds combined segments
// sharing (parent site, language) into one unit anchored at the first
// member's position. Single segments become one-member units.
func groupUnits(source []byte, segments []injection.Segment) []unit {
	var units []unit
	combinedIndex := make(map[combinedKey]int)

	for _, segment := range segments {
		member := extractContent(source, segment)

		if segment.Combined {
			key := combinedKey{site: segment.ParentSite, lang: segment.Language}
			if idx, ok := combinedIndex[key]; ok {
				units[idx].members = append(units[idx].members, member)
				continue
			}
			combinedIndex[key] = len(units)
			units = append(units, unit{members: []extracted{member}, combined: true})
			continue
		}

		units = append(units, unit{members: []extracted{member}})
	}

	return units
}

// extractContent performs the Extracted transition: slice the range,
// unescape, and strip the embedding indent.
func extractContent(source []byte, segment injection.Segment) extracted {
	r := segment.Range
	slice := source[r.StartByte:r.EndByte]
	trailing := textutil.TrailingNewlines(slice)

	content := string(slice)
	if len(segment.EscapeChars) > 0 {
		content = textutil.UnescapeText(content, textutil.SortEscapeChars(segment.EscapeChars))
	}

	indent := textutil.ColumnForByte(source, r.StartByte)
	indentFromContent := false
	if indent > 0 {
		content = textutil.StripLeadingIndent(content, indent)
	} else if min := textutil.MinLeadingIndent(content); min > 0 {
		content = textutil.StripLeadingIndent(content, min)
		indent = min
		indentFromContent = true
	}

	return extracted{
		segment:           segment,
		content:           []byte(content),
		indent:            indent,
		indentFromContent: indentFromContent,
		trailing:          trailing,
	}
}
