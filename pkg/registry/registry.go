// Package registry resolves language tags to loadable parsers and compiled
// injection queries. Grammars come from the bundled tree-sitter grammar
// packages; injection queries are layered from an embedded default set and
// the configured query search paths.
//
// The registry is safe for concurrent use. Entries are compiled once per
// invocation and shared read-only afterwards.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"
)

// ErrGrammarUnavailable is returned when no parser exists for a language tag.
var ErrGrammarUnavailable = errors.New("grammar unavailable")

// QueryError indicates an injection query that failed to compile. It is
// fatal for the affected language; other languages proceed.
type QueryError struct {
	Language string
	Path     string
	Err      error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("injection query for %s (%s): %v", e.Language, e.Path, e.Err)
	}
	return fmt.Sprintf("injection query for %s: %v", e.Language, e.Err)
}

// Unwrap returns the underlying compile error.
func (e *QueryError) Unwrap() error { return e.Err }

// Grammar bundles everything the engine needs for one language tag.
type Grammar struct {
	// Name is the canonical language tag.
	Name string

	// Lang is the loadable tree-sitter language.
	Lang *sitter.Language

	// Injections is the compiled injection query. Nil when the language has
	// no injection query; such documents simply have no embedded regions.
	Injections *sitter.Query
}

// entry caches the resolution outcome for one tag, success or failure.
type entry struct {
	grammar *Grammar
	err     error
}

// Registry maps language tags to grammars and compiled queries.
type Registry struct {
	queryPaths []string

	mu    sync.RWMutex
	cache map[string]*entry
}

// New creates a registry searching the given query paths, in order, for
// <lang>/injections.scm files.
func New(queryPaths []string) *Registry {
	return &Registry{
		queryPaths: queryPaths,
		cache:      make(map[string]*entry),
	}
}

// Get resolves a language tag. It returns ErrGrammarUnavailable when no
// parser is bundled for the tag, or a *QueryError when the injection query
// fails to compile. Both outcomes are cached.
func (r *Registry) Get(lang string) (*Grammar, error) {
	r.mu.RLock()
	if e, ok := r.cache[lang]; ok {
		r.mu.RUnlock()
		return e.grammar, e.err
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if e, ok := r.cache[lang]; ok {
		return e.grammar, e.err
	}

	grammar, err := r.load(lang)
	r.cache[lang] = &entry{grammar: grammar, err: err}
	return grammar, err
}

// load resolves a tag without touching the cache. Caller holds the lock.
func (r *Registry) load(lang string) (*Grammar, error) {
	tsLang, ok := builtinLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGrammarUnavailable, lang)
	}

	src, path, err := resolveInjectionsQuery(lang, r.queryPaths)
	if err != nil {
		return nil, &QueryError{Language: lang, Path: path, Err: err}
	}

	grammar := &Grammar{Name: lang, Lang: tsLang}

	if src != "" {
		query, err := sitter.NewQuery([]byte(src), tsLang)
		if err != nil {
			return nil, &QueryError{Language: lang, Path: path, Err: err}
		}
		grammar.Injections = query
	}

	return grammar, nil
}

// Preload resolves the given tags concurrently before a parallel file phase,
// so that workers only ever read the cache. Unavailable grammars are not an
// error here; they surface per document.
func (r *Registry) Preload(ctx context.Context, langs []string) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, lang := range langs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			_, err := r.Get(lang)
			if err != nil && !errors.Is(err, ErrGrammarUnavailable) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// Known returns the sorted list of language tags with bundled parsers.
func (r *Registry) Known() []string {
	tags := builtinTags()
	sort.Strings(tags)
	return tags
}
