// Package engine implements the recursive formatting pipeline: parse the
// document, discover injection segments, recurse into each segment at a
// reduced print width, re-embed the results, and finally format the root.
//
// Traversal is post-order — inner regions finalize before their enclosing
// region is formatted — so the root formatter always sees already-formatted
// embedded text. Within one document segments are processed sequentially in
// source order, which keeps byte-offset accounting trivially correct and
// the output fully deterministic.
package engine

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/weavefmt/internal/logging"
	"github.com/yaklabco/weavefmt/pkg/config"
	"github.com/yaklabco/weavefmt/pkg/formatter"
	"github.com/yaklabco/weavefmt/pkg/injection"
	"github.com/yaklabco/weavefmt/pkg/registry"
	"github.com/yaklabco/weavefmt/pkg/weave"
)

// MinPrintWidth is the floor applied when nesting indentation eats into the
// configured width.
const MinPrintWidth = 20

// State tracks a segment through the pipeline.
type State string

const (
	// StateDiscovered: the query matched and the segment is queued.
	StateDiscovered State = "discovered"

	// StateExtracted: offset/trim/unescape applied, content in hand.
	StateExtracted State = "extracted"

	// StateRecursed: the inner pipeline ran over the content.
	StateRecursed State = "recursed"

	// StateFormatted: the segment's own formatter ran.
	StateFormatted State = "formatted"

	// StateEmbedded: the result was woven back into the host.
	StateEmbedded State = "embedded"

	// StatePreserved: a transition failed; the host bytes are kept
	// verbatim. Not an error for the document as a whole.
	StatePreserved State = "preserved"
)

// ConsistencyError reports a violation the engine refuses to paper over: a
// combined group whose formatted line count does not match its member
// count, or root formatter output the host grammar can no longer parse.
// The document is returned in its pre-offending state alongside it.
type ConsistencyError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("consistency: %s: %v", e.Reason, e.Err)
	}
	return "consistency: " + e.Reason
}

// Unwrap returns the underlying error.
func (e *ConsistencyError) Unwrap() error { return e.Err }

// Options carries the per-document formatting parameters.
type Options struct {
	// Language is the root language tag.
	Language string

	// PrintWidth is the initial print width. Zero means the default.
	PrintWidth int

	// SkipRoot suppresses the root formatter; injected regions still
	// format and re-embed.
	SkipRoot bool
}

// Engine orchestrates registry, extractor, formatters and weaving.
type Engine struct {
	registry *registry.Registry
	resolver *formatter.Resolver
	cfg      *config.Config
}

// New creates an engine over the given collaborators.
func New(reg *registry.Registry, resolver *formatter.Resolver, cfg *config.Config) *Engine {
	return &Engine{registry: reg, resolver: resolver, cfg: cfg}
}

// FormatDocument formats one document. Errors inside injected regions never
// abort the document — the worst outcome for a region is that it is emitted
// verbatim. A returned error concerns the root: a missing root grammar, a
// root formatter failure, or a consistency violation. The returned text is
// always usable; on error it is the document's pre-offending state.
func (e *Engine) FormatDocument(ctx context.Context, source []byte, opts Options) ([]byte, error) {
	width := opts.PrintWidth
	if width <= 0 {
		width = config.DefaultPrintWidth
	}

	return e.format(ctx, source, e.cfg.ResolveAlias(opts.Language), width, opts.SkipRoot, true)
}

// format is the recursive pipeline entry. isRoot marks the outermost
// document, whose failures surface instead of preserving.
func (e *Engine) format(ctx context.Context, source []byte, lang string, width int, skipRoot, isRoot bool) ([]byte, error) {
	logger := logging.FromContext(ctx)

	grammar, err := e.registry.Get(lang)
	var queryErr *registry.QueryError
	switch {
	case errors.As(err, &queryErr):
		// A broken query is fatal for the language; the document cannot be
		// safely dissected.
		return source, err
	case errors.Is(err, registry.ErrGrammarUnavailable):
		grammar = nil
	case err != nil:
		return source, err
	}

	var segments []injection.Segment
	switch {
	case grammar != nil && grammar.Injections != nil:
		segments, err = injection.Extract(ctx, grammar, source)
		if err != nil {
			return source, err
		}
	case lang == "markdown":
		// Markdown ships without an injection query: fenced code blocks are
		// located with a goldmark scan by default. A markdown injections.scm
		// on query_paths takes the query-driven branch above instead.
		segments = injection.ExtractMarkdownFences(source)
	case grammar == nil:
		logger.Warn("no parser for language, leaving text unchanged", logging.FieldLanguage, lang)
		if isRoot {
			return source, fmt.Errorf("%w: %s", registry.ErrGrammarUnavailable, lang)
		}
		return source, nil
	}

	replacements, consistencyErr := e.formatSegments(ctx, source, segments, width)
	if ctx.Err() != nil {
		return source, fmt.Errorf("cancelled: %w", ctx.Err())
	}

	woven := weave.Apply(source, replacements)
	if consistencyErr != nil {
		return woven, consistencyErr
	}

	if skipRoot {
		return woven, nil
	}

	runner, ok := e.resolver.ForLanguage(lang)
	if !ok {
		return woven, nil
	}

	formatted, err := runner.Format(ctx, woven, formatter.Options{Language: lang, PrintWidth: width})
	if err != nil {
		return woven, err
	}

	if err := e.checkHostIntegrity(ctx, grammar, woven, formatted); err != nil {
		return woven, err
	}

	return formatted, nil
}

// checkHostIntegrity re-parses the root formatter's output. When the input
// parsed cleanly but the output no longer does, the formatter corrupted the
// host syntax and the pre-format text is the one the caller gets back.
func (e *Engine) checkHostIntegrity(ctx context.Context, grammar *registry.Grammar, before, after []byte) error {
	if grammar == nil {
		return nil
	}

	beforeOK, err := parsesCleanly(ctx, grammar, before)
	if err != nil || !beforeOK {
		return nil
	}

	afterOK, err := parsesCleanly(ctx, grammar, after)
	if err != nil {
		return nil
	}
	if !afterOK {
		return &ConsistencyError{Reason: "root formatter output no longer parses as " + grammar.Name}
	}
	return nil
}

// parsesCleanly reports whether text parses without error nodes.
func parsesCleanly(ctx context.Context, grammar *registry.Grammar, text []byte) (bool, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(grammar.Lang)

	tree, err := parser.ParseCtx(ctx, nil, text)
	if err != nil {
		return false, err
	}
	defer tree.Close()

	return !tree.RootNode().HasError(), nil
}

// effectiveWidth reduces width by the embedding indent, bounded below.
func effectiveWidth(width, indent int) int {
	adjusted := width - indent
	if adjusted < MinPrintWidth {
		return MinPrintWidth
	}
	return adjusted
}
