package helpers

import (
	"regexp"
	"strings"
)

var separatorRun = regexp.MustCompile(`[-_.]+`)

// NormalizeLibraryName canonicalizes a library name so that spellings the
// package manager treats as equal compare equal ("Typing_Extensions" and
// "typing-extensions").
func NormalizeLibraryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return separatorRun.ReplaceAllString(strings.ToLower(name), "-")
}

// NormalizeLibraryNames normalizes every name and drops empty entries
func NormalizeLibraryNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if n := NormalizeLibraryName(name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// SplitNameList splits a comma separated list as printed by the package
// manager ("a, b, c"). An empty or blank input yields no names.
func SplitNameList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if n := NormalizeLibraryName(part); n != "" {
			names = append(names, n)
		}
	}
	return names
}
