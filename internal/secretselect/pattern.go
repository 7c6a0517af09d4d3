// Package secretselect expands glob patterns against a vault's secret
// names, used by commands that operate on a subset of secrets (run's
// --key filter, export's --key filter) instead of the whole vault.
package secretselect

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandPattern expands a single pattern against availableNames. A
// pattern with no glob metacharacters (*?[) must match exactly; a glob
// pattern may match any number of names.
func ExpandPattern(pattern string, availableNames []string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	if !strings.ContainsAny(pattern, "*?[") {
		for _, name := range availableNames {
			if name == pattern {
				return []string{pattern}, nil
			}
		}
		return nil, fmt.Errorf("secret %q not found", pattern)
	}

	var matches []string
	for _, name := range availableNames {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no secrets match pattern %q", pattern)
	}
	return matches, nil
}

// ExpandPatterns expands every pattern and returns the union of matches,
// deduplicated and in order of first match.
func ExpandPatterns(patterns []string, availableNames []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, pattern := range patterns {
		matches, err := ExpandPattern(pattern, availableNames)
		if err != nil {
			return nil, err
		}
		for _, name := range matches {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}
	return result, nil
}

// SortNames returns a sorted copy of names, leaving the input untouched.
func SortNames(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return sorted
}
