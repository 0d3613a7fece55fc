// Package langdetect resolves the root language tag for a file when none
// is given on the command line. It uses go-enry, which combines filename,
// extension, shebang and content classification.
package langdetect

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// normalized maps enry's display names to the grammar tags the registry
// uses. Names missing from the table lowercase as-is, which already matches
// for most languages.
//
//nolint:gochecknoglobals // Read-only lookup table.
var normalized = map[string]string{
	"C++":        "cpp",
	"C#":         "csharp",
	"Shell":      "bash",
	"Vim Script": "vim",
	"TSX":        "tsx",
}

// DetectFile returns the language tag for a path, consulting content when
// the filename alone is ambiguous. Returns "" when detection fails.
func DetectFile(path string, content []byte) string {
	lang := enry.GetLanguage(path, content)
	if lang == "" {
		if shebang, safe := enry.GetLanguageByShebang(content); safe {
			lang = shebang
		}
	}
	return normalize(lang)
}

// normalize converts an enry language name to a grammar tag.
func normalize(lang string) string {
	if lang == "" {
		return ""
	}
	if tag, ok := normalized[lang]; ok {
		return tag
	}
	return strings.ToLower(lang)
}
