package injection_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/weavefmt/pkg/injection"
	"github.com/yaklabco/weavefmt/pkg/registry"
)

// fenceQuery is the standard markdown fence injection query, supplied as a
// query_paths override so these tests exercise the query-driven extractor
// (the engine's default markdown path is the goldmark fence scan).
const fenceQuery = `(fenced_code_block
  (info_string
    (language) @injection.language)
  (code_fence_content) @injection.content)
`

func markdownGrammar(t *testing.T) *registry.Grammar {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "markdown"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "markdown", "injections.scm"), []byte(fenceQuery), 0644))

	grammar, err := registry.New([]string{dir}).Get("markdown")
	require.NoError(t, err)
	require.NotNil(t, grammar.Injections)
	return grammar
}

func TestExtractFencedCodeBlock(t *testing.T) {
	t.Parallel()

	source := []byte("# Title\n\n```javascript\nconsole.log(1)\n```\n")

	segments, err := injection.Extract(context.Background(), markdownGrammar(t), source)
	require.NoError(t, err)
	require.Len(t, segments, 1)

	segment := segments[0]
	assert.Equal(t, "javascript", segment.Language)
	assert.Equal(t, "console.log(1)\n", string(source[segment.Range.StartByte:segment.Range.EndByte]))
	assert.False(t, segment.Combined)
	assert.Empty(t, segment.EscapeChars)
}

func TestExtractMultipleSegmentsSorted(t *testing.T) {
	t.Parallel()

	source := []byte("```go\na()\n```\n\ntext\n\n```sql\nSELECT 1\n```\n")

	segments, err := injection.Extract(context.Background(), markdownGrammar(t), source)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "go", segments[0].Language)
	assert.Equal(t, "sql", segments[1].Language)
	assert.Less(t, segments[0].Range.StartByte, segments[1].Range.StartByte)

	// Each fence is its own injection site.
	assert.NotEqual(t, segments[0].ParentSite, segments[1].ParentSite)
}

func TestExtractNoTrailingNewline(t *testing.T) {
	t.Parallel()

	// The parse appends a newline internally; no segment may reach past the
	// real input.
	source := []byte("```go\na()\n```")

	segments, err := injection.Extract(context.Background(), markdownGrammar(t), source)
	require.NoError(t, err)

	for _, segment := range segments {
		assert.LessOrEqual(t, segment.Range.EndByte, len(source))
	}
}

func TestExtractNilGrammar(t *testing.T) {
	t.Parallel()

	segments, err := injection.Extract(context.Background(), nil, []byte("anything"))
	require.NoError(t, err)
	assert.Nil(t, segments)
}

func TestExtractMarkdownFences(t *testing.T) {
	t.Parallel()

	source := []byte("intro\n\n```sql\nSELECT 1\n```\n\n```\nno language\n```\n")

	segments := injection.ExtractMarkdownFences(source)
	require.Len(t, segments, 1)

	segment := segments[0]
	assert.Equal(t, "sql", segment.Language)
	assert.Equal(t, "SELECT 1\n", string(source[segment.Range.StartByte:segment.Range.EndByte]))
	assert.Equal(t, 0, segment.ParentSite.StartByte)
	assert.Equal(t, len(source), segment.ParentSite.EndByte)
}
