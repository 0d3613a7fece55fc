package registry

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Embedded default injection queries, one directory per language tag.
//
//go:embed queries/*/injections.scm
var defaultQueries embed.FS

// extendsMarker opens a query file that layers onto the previous query
// instead of replacing it, mirroring the editor-ecosystem convention.
const extendsMarker = ";; extends"

// resolveInjectionsQuery builds the injection query source for a language.
// The embedded default (if any) is the base layer; each search path that
// contains <lang>/injections.scm then either replaces the accumulated query
// or, when the file starts with ";; extends", appends to it. Returns the
// final source (possibly empty), and the last file path that contributed.
func resolveInjectionsQuery(lang string, searchPaths []string) (src, path string, err error) {
	result := ""

	if data, readErr := defaultQueries.ReadFile("queries/" + lang + "/injections.scm"); readErr == nil {
		result = string(data)
	}

	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, lang, "injections.scm")
		data, readErr := os.ReadFile(candidate)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				continue
			}
			return "", candidate, fmt.Errorf("read query: %w", readErr)
		}

		contents := string(data)
		path = candidate
		if isExtending(contents) {
			result = mergeQueries(result, contents)
		} else {
			result = contents
		}
	}

	if strings.TrimSpace(result) == "" {
		return "", path, nil
	}
	return result, path, nil
}

// isExtending reports whether the query's first line carries the extends
// marker.
func isExtending(contents string) bool {
	first, _, _ := strings.Cut(contents, "\n")
	return strings.HasPrefix(strings.TrimSpace(first), extendsMarker)
}

// mergeQueries concatenates two query sources with a separating newline.
func mergeQueries(base, overlay string) string {
	if base == "" {
		return overlay
	}
	if overlay == "" {
		return base
	}
	if !strings.HasSuffix(base, "\n") {
		base += "\n"
	}
	return base + overlay
}
