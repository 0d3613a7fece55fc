package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/weavefmt/pkg/textutil"
)

func TestOffsetLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		indent int
		want   string
	}{
		{
			name:   "zero indent is a no-op",
			input:  "a\nb\n",
			indent: 0,
			want:   "a\nb\n",
		},
		{
			name:   "indents continuation lines only",
			input:  "a\nb\nc",
			indent: 2,
			want:   "a\n  b\n  c",
		},
		{
			name:   "blank lines stay blank",
			input:  "a\n\nb\n",
			indent: 4,
			want:   "a\n\n    b\n",
		},
		{
			name:   "trailing newline gains nothing",
			input:  "a\n",
			indent: 2,
			want:   "a\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := textutil.OffsetLines([]byte(tt.input), tt.indent)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestTrailingNewlines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\n", string(textutil.TrailingNewlines([]byte("abc\n"))))
	assert.Equal(t, "\r\n\n", string(textutil.TrailingNewlines([]byte("abc\r\n\n"))))
	assert.Empty(t, textutil.TrailingNewlines([]byte("abc")))
	assert.Equal(t, "abc", string(textutil.StripTrailingNewlines([]byte("abc\r\n\n"))))
}

func TestColumnForByte(t *testing.T) {
	t.Parallel()

	source := []byte("one\ntwo three\n")
	assert.Equal(t, 0, textutil.ColumnForByte(source, 0))
	assert.Equal(t, 2, textutil.ColumnForByte(source, 2))
	assert.Equal(t, 0, textutil.ColumnForByte(source, 4))
	assert.Equal(t, 4, textutil.ColumnForByte(source, 8))
}

func TestIndentMinAndStrip(t *testing.T) {
	t.Parallel()

	text := "  select a\n  from t\n"
	assert.Equal(t, 2, textutil.MinLeadingIndent(text))

	stripped := textutil.StripLeadingIndent(text, 2)
	assert.Equal(t, "select a\nfrom t\n", stripped)

	// Blank lines do not contribute to the minimum.
	assert.Equal(t, 2, textutil.MinLeadingIndent("  a\n\n  b"))

	// Short lines lose only what they have.
	assert.Equal(t, "a\nb\n", textutil.StripLeadingIndent(" a\nb\n", 4))
}

func TestEscapeRoundTrip(t *testing.T) {
	t.Parallel()

	chars := []string{`"`}

	tests := []struct {
		name      string
		escaped   string
		unescaped string
	}{
		{
			name:      "simple quote",
			escaped:   `say \"hi\"`,
			unescaped: `say "hi"`,
		},
		{
			name:      "literal backslash survives",
			escaped:   `a \\ b`,
			unescaped: `a \ b`,
		},
		{
			name:      "no escapes",
			escaped:   "plain",
			unescaped: "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.unescaped, textutil.UnescapeText(tt.escaped, chars))
			assert.Equal(t, tt.escaped, textutil.EscapeText(tt.unescaped, chars))
		})
	}
}

func TestSortEscapeChars(t *testing.T) {
	t.Parallel()

	set := map[string]struct{}{
		`"`:   {},
		"```": {},
		"'":   {},
	}

	got := textutil.SortEscapeChars(set)
	require.Len(t, got, 3)
	assert.Equal(t, "```", got[0])
	assert.Equal(t, []string{`"`, "'"}, got[1:])
}

func FuzzEscapeRoundTrip(f *testing.F) {
	f.Add(`say "hi"`)
	f.Add(`back\slash`)
	f.Add("")
	f.Add(`"" \" \\`)

	chars := []string{`"`}

	f.Fuzz(func(t *testing.T, text string) {
		escaped := textutil.EscapeText(text, chars)
		back := textutil.UnescapeText(escaped, chars)
		if back != text {
			t.Fatalf("round trip mismatch: %q -> %q -> %q", text, escaped, back)
		}
	})
}
