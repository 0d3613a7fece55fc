package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUnknownLanguage(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Get("klingon")
	require.ErrorIs(t, err, ErrGrammarUnavailable)
}

func TestGetMarkdownHasNoDefaultQuery(t *testing.T) {
	t.Parallel()

	// Markdown fence extraction is goldmark-based by default; the query
	// path only engages when query_paths supplies markdown/injections.scm.
	grammar, err := New(nil).Get("markdown")
	require.NoError(t, err)
	assert.Equal(t, "markdown", grammar.Name)
	assert.NotNil(t, grammar.Lang)
	assert.Nil(t, grammar.Injections)
}

func TestGetHTMLHasDefaultQuery(t *testing.T) {
	t.Parallel()

	grammar, err := New(nil).Get("html")
	require.NoError(t, err)
	assert.NotNil(t, grammar.Injections)
}

func TestGetCachesResult(t *testing.T) {
	t.Parallel()

	reg := New(nil)
	first, err := reg.Get("markdown")
	require.NoError(t, err)
	second, err := reg.Get("markdown")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGetBadQueryFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeQuery(t, dir, "go", "(((")

	_, err := New([]string{dir}).Get("go")

	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, "go", queryErr.Language)
}

func TestKnownIncludesCoreLanguages(t *testing.T) {
	t.Parallel()

	known := New(nil).Known()
	assert.Contains(t, known, "markdown")
	assert.Contains(t, known, "sql")
	assert.Contains(t, known, "javascript")
	assert.IsIncreasing(t, known)
}

func TestPreload(t *testing.T) {
	t.Parallel()

	reg := New(nil)
	err := reg.Preload(context.Background(), []string{"markdown", "nosuchlang"})
	require.NoError(t, err)

	_, err = reg.Get("markdown")
	assert.NoError(t, err)
}

func TestResolveInjectionsQueryReplaceAndExtend(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	overlay := t.TempDir()

	writeQuery(t, base, "go", "(comment) @injection.content\n")
	writeQuery(t, overlay, "go", ";; extends\n(raw_string_literal) @injection.content\n")

	// Later path extends the earlier one.
	src, _, err := resolveInjectionsQuery("go", []string{base, overlay})
	require.NoError(t, err)
	assert.Contains(t, src, "(comment)")
	assert.Contains(t, src, "(raw_string_literal)")

	// Without the extends marker the later path replaces.
	replacing := t.TempDir()
	writeQuery(t, replacing, "go", "(interpreted_string_literal) @injection.content\n")

	src, _, err = resolveInjectionsQuery("go", []string{base, replacing})
	require.NoError(t, err)
	assert.NotContains(t, src, "(comment)")
	assert.Contains(t, src, "(interpreted_string_literal)")
}

func TestResolveInjectionsQueryEmbeddedDefault(t *testing.T) {
	t.Parallel()

	src, _, err := resolveInjectionsQuery("html", nil)
	require.NoError(t, err)
	assert.Contains(t, src, "injection.content")

	src, _, err = resolveInjectionsQuery("markdown", nil)
	require.NoError(t, err)
	assert.Empty(t, src)
}

func writeQuery(t *testing.T, dir, lang, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, lang), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, lang, "injections.scm"), []byte(contents), 0644))
}
