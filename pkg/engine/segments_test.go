package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/weavefmt/pkg/config"
	"github.com/yaklabco/weavefmt/pkg/formatter"
	"github.com/yaklabco/weavefmt/pkg/injection"
	"github.com/yaklabco/weavefmt/pkg/registry"
	"github.com/yaklabco/weavefmt/pkg/weave"
)

// cannedRunner returns fixed output for every invocation.
type cannedRunner struct {
	name   string
	output string
	err    error
	inputs []string
}

func (c *cannedRunner) Name() string    { return c.name }
func (c *cannedRunner) Installed() bool { return true }

func (c *cannedRunner) Format(_ context.Context, source []byte, _ formatter.Options) ([]byte, error) {
	c.inputs = append(c.inputs, string(source))
	if c.err != nil {
		return nil, c.err
	}
	if c.output == "" {
		return source, nil
	}
	return []byte(c.output), nil
}

func testEngine(lang string, runner formatter.Runner) *Engine {
	cfg := config.NewConfig()
	cfg.Languages[lang] = []string{runner.Name()}
	resolver := formatter.NewResolver(cfg)
	resolver.Register(runner.Name(), runner)
	return New(registry.New(nil), resolver, cfg)
}

func combinedSegment(site injection.Range, start, end int) injection.Segment {
	return injection.Segment{
		Language:    "bash",
		Range:       injection.Range{StartByte: start, EndByte: end},
		ParentSite:  site,
		EscapeChars: map[string]struct{}{},
		Combined:    true,
	}
}

func TestGroupUnitsFoldsCombined(t *testing.T) {
	t.Parallel()

	site := injection.Range{StartByte: 0, EndByte: 33}
	source := []byte(`a "echo hi" b "echo ho" c "other"`)
	segments := []injection.Segment{
		combinedSegment(site, 3, 10),
		{Language: "sql", Range: injection.Range{StartByte: 15, EndByte: 20}, EscapeChars: map[string]struct{}{}},
		combinedSegment(site, 26, 32),
	}

	units := groupUnits(source, segments)
	require.Len(t, units, 2)
	assert.True(t, units[0].combined)
	assert.Len(t, units[0].members, 2)
	assert.False(t, units[1].combined)
}

func TestGroupUnitsSeparatesParentSites(t *testing.T) {
	t.Parallel()

	// Same language, both combined, but under two unrelated host constructs:
	// the groups must not merge into one formatter invocation.
	source := []byte(`f { "echo hi" } g { "echo ho" }`)
	segments := []injection.Segment{
		combinedSegment(injection.Range{StartByte: 2, EndByte: 15}, 5, 12),
		combinedSegment(injection.Range{StartByte: 18, EndByte: 31}, 21, 28),
	}

	units := groupUnits(source, segments)
	require.Len(t, units, 2)
	assert.True(t, units[0].combined)
	assert.Len(t, units[0].members, 1)
	assert.True(t, units[1].combined)
	assert.Len(t, units[1].members, 1)
}

func TestFormatCombinedJoinsAndRedistributes(t *testing.T) {
	t.Parallel()

	runner := &cannedRunner{name: "bash-fmt", output: "echo HI\necho HO\n"}
	eng := testEngine("bash", runner)

	source := []byte(`x "echo hi" y "echo ho"`)
	site := injection.Range{StartByte: 0, EndByte: len(source)}
	segments := []injection.Segment{combinedSegment(site, 3, 10), combinedSegment(site, 15, 22)}

	replacements, err := eng.formatSegments(context.Background(), source, segments, 80)
	require.NoError(t, err)
	require.Len(t, replacements, 2)

	// The formatter saw one blob joined with a single newline.
	require.Len(t, runner.inputs, 1)
	assert.Equal(t, "echo hi\necho ho", runner.inputs[0])

	out := weave.Apply(source, replacements)
	assert.Equal(t, `x "echo HI" y "echo HO"`, string(out))
}

func TestFormatCombinedCountMismatch(t *testing.T) {
	t.Parallel()

	runner := &cannedRunner{name: "bash-fmt", output: "collapsed\n"}
	eng := testEngine("bash", runner)

	source := []byte(`x "echo hi" y "echo ho"`)
	site := injection.Range{StartByte: 0, EndByte: len(source)}
	segments := []injection.Segment{combinedSegment(site, 3, 10), combinedSegment(site, 15, 22)}

	replacements, err := eng.formatSegments(context.Background(), source, segments, 80)

	var cerr *ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Empty(t, replacements, "members keep their original bytes")
}

func TestExtractContentUnescapesAndStripsIndent(t *testing.T) {
	t.Parallel()

	source := []byte("    s = \"a \\\"b\\\"\"\n")
	segment := injection.Segment{
		Language:    "sql",
		Range:       injection.Range{StartByte: 9, EndByte: 16},
		EscapeChars: map[string]struct{}{`"`: {}},
	}

	member := extractContent(source, segment)
	assert.Equal(t, `a "b"`, string(member.content))
	assert.Equal(t, 9, member.indent)
	assert.False(t, member.indentFromContent)
}

func TestExtractContentDerivesIndentFromBody(t *testing.T) {
	t.Parallel()

	// Segment starts at column zero but its body is uniformly indented.
	source := []byte("  sql a\n  sql b\n")
	segment := injection.Segment{
		Language:    "sql",
		Range:       injection.Range{StartByte: 0, EndByte: len(source)},
		EscapeChars: map[string]struct{}{},
	}

	member := extractContent(source, segment)
	assert.Equal(t, "sql a\nsql b\n", string(member.content))
	assert.Equal(t, 2, member.indent)
	assert.True(t, member.indentFromContent)
}

func TestEffectiveWidth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 76, effectiveWidth(80, 4))
	assert.Equal(t, MinPrintWidth, effectiveWidth(24, 10))
	assert.Equal(t, MinPrintWidth, effectiveWidth(10, 0))
}
