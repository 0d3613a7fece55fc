package configloader

import "github.com/yaklabco/weavefmt/pkg/config"

// merge overlays higher-precedence values from overlay onto base and returns
// the merged config. Merge rules follow the documented profile semantics:
// scalars replace, lists concatenate, maps deep-merge per key.
func merge(base, overlay *config.Config) *config.Config {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay
	}

	result := *base

	result.QueryPaths = mergeList(base.QueryPaths, overlay.QueryPaths)
	result.GrammarPaths = mergeList(base.GrammarPaths, overlay.GrammarPaths)

	if overlay.GrammarDownloadDir != "" {
		result.GrammarDownloadDir = overlay.GrammarDownloadDir
	}
	if overlay.GrammarBuildDir != "" {
		result.GrammarBuildDir = overlay.GrammarBuildDir
	}

	result.Grammars = mergeMap(base.Grammars, overlay.Grammars)
	result.Formatters = mergeMap(base.Formatters, overlay.Formatters)
	result.Plugins = mergeMap(base.Plugins, overlay.Plugins)
	result.Languages = mergeMap(base.Languages, overlay.Languages)
	result.LanguageAliases = mergeMap(base.LanguageAliases, overlay.LanguageAliases)
	result.Profiles = mergeMap(base.Profiles, overlay.Profiles)

	// CLI-level scalars replace when set.
	if overlay.Lang != "" {
		result.Lang = overlay.Lang
	}
	if overlay.PrintWidth != 0 {
		result.PrintWidth = overlay.PrintWidth
	}
	if overlay.SkipRoot {
		result.SkipRoot = true
	}
	if overlay.Check {
		result.Check = true
	}
	result.Exclude = mergeList(base.Exclude, overlay.Exclude)
	if overlay.Jobs != 0 {
		result.Jobs = overlay.Jobs
	}

	return &result
}

// mergeList concatenates base and overlay, preserving order.
func mergeList[T any](base, overlay []T) []T {
	if len(overlay) == 0 {
		return base
	}
	if len(base) == 0 {
		return overlay
	}
	merged := make([]T, 0, len(base)+len(overlay))
	merged = append(merged, base...)
	merged = append(merged, overlay...)
	return merged
}

// mergeMap overlays entries of overlay onto a copy of base.
func mergeMap[K comparable, V any](base, overlay map[K]V) map[K]V {
	if len(overlay) == 0 {
		return base
	}
	merged := make(map[K]V, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}
