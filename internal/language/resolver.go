// Package language maps free-text language names to LeetCode display slugs,
// alias sets and submission codes.
package language

import (
	"sort"
	"strings"
)

// Spec describes one known language.
type Spec struct {
	Key     string   // table key, e.g. "go"
	Slug    string   // canonical display slug, e.g. "golang"
	Aliases []string // declared aliases, not yet normalized
}

// Resolution is the display-side view of a language name.
type Resolution struct {
	Slug    string   // canonical slug, or the normalized input for unknown names
	Display string   // lowercased, trimmed input
	Aliases []string // normalized, sorted, never empty when Slug is set
}

// Empty reports whether no language was requested.
func (r Resolution) Empty() bool {
	return r.Slug == "" && len(r.Aliases) == 0
}

var table = []Spec{
	{Key: "python", Slug: "python", Aliases: []string{"python", "python3", "py"}},
	{Key: "cpp", Slug: "cpp", Aliases: []string{"cpp", "c++", "cxx"}},
	{Key: "java", Slug: "java", Aliases: []string{"java"}},
	{Key: "javascript", Slug: "javascript", Aliases: []string{"javascript", "js"}},
	{Key: "typescript", Slug: "typescript", Aliases: []string{"typescript", "ts"}},
	{Key: "c", Slug: "c", Aliases: []string{"c"}},
	{Key: "csharp", Slug: "csharp", Aliases: []string{"csharp", "c#", "cs"}},
	{Key: "go", Slug: "golang", Aliases: []string{"golang", "go"}},
	{Key: "rust", Slug: "rust", Aliases: []string{"rust"}},
	{Key: "kotlin", Slug: "kotlin", Aliases: []string{"kotlin"}},
	{Key: "swift", Slug: "swift", Aliases: []string{"swift"}},
}

// submissionCodes is keyed by normalized token.
var submissionCodes = map[string]string{
	"python":     "python3",
	"python3":    "python3",
	"py":         "python3",
	"cpp":        "cpp",
	"c++":        "cpp",
	"cxx":        "cpp",
	"java":       "java",
	"javascript": "javascript",
	"js":         "javascript",
	"typescript": "typescript",
	"ts":         "typescript",
	"c":          "c",
	"csharp":     "csharp",
	"c#":         "csharp",
	"cs":         "csharp",
	"golang":     "golang",
	"go":         "golang",
	"rust":       "rust",
	"kotlin":     "kotlin",
	"swift":      "swift",
}

// Languages returns a copy of the static language table.
func Languages() []Spec {
	out := make([]Spec, len(table))
	for i, entry := range table {
		entry.Aliases = append([]string(nil), entry.Aliases...)
		out[i] = entry
	}
	return out
}

// Normalize lowercases text and drops every rune outside [a-z0-9+#].
func Normalize(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '#':
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// NormalizeAll normalizes every value, dropping empties and duplicates.
// The result is sorted.
func NormalizeAll(values []string) []string {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		if key := Normalize(value); key != "" {
			set[key] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// ResolveDisplay maps a language name to its display slug and alias set.
func ResolveDisplay(name string) Resolution {
	display := strings.ToLower(strings.TrimSpace(name))
	if display == "" {
		return Resolution{}
	}

	entry, ok := lookup(display)
	if !ok {
		key := Normalize(display)
		if key == "" {
			key = display
		}
		return Resolution{Slug: key, Display: display, Aliases: []string{key}}
	}

	values := append([]string{entry.Slug, display}, entry.Aliases...)
	return Resolution{
		Slug:    entry.Slug,
		Display: display,
		Aliases: NormalizeAll(values),
	}
}

// ResolveSubmissionCode returns the judge language code for name.
// ok is false when the language is not supported.
func ResolveSubmissionCode(name string) (code string, ok bool) {
	normalized := Normalize(name)
	if normalized == "" {
		return "", false
	}
	if code, ok := submissionCodes[normalized]; ok {
		return code, true
	}

	for _, entry := range table {
		values := append([]string{entry.Key, entry.Slug}, entry.Aliases...)
		for _, alias := range NormalizeAll(values) {
			if alias != normalized {
				continue
			}
			if code, ok := submissionCodes[Normalize(entry.Slug)]; ok {
				return code, true
			}
			if code, ok := submissionCodes[entry.Key]; ok {
				return code, true
			}
		}
	}
	return "", false
}

// lookup matches a lowercased name against table keys first, then aliases.
func lookup(name string) (Spec, bool) {
	for _, entry := range table {
		if entry.Key == name {
			return entry, true
		}
	}
	normalized := Normalize(name)
	for _, entry := range table {
		for _, alias := range entry.Aliases {
			if alias == name || (normalized != "" && Normalize(alias) == normalized) {
				return entry, true
			}
		}
	}
	return Spec{}, false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
