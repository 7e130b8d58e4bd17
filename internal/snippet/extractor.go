// Package snippet finds the code block in a community post that best matches
// a target language.
package snippet

import (
	"regexp"
	"strings"
	"unicode"

	"lcbridge/internal/language"
)

// Tier is the precedence level a snippet matched at. Lower wins.
type Tier int

const (
	TierExactTag Tier = iota + 1
	TierContext
	TierHeuristic
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierExactTag:
		return "exact-tag"
	case TierContext:
		return "context"
	case TierHeuristic:
		return "heuristic"
	case TierFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Snippet is an extracted code sample.
type Snippet struct {
	Code string
	Tier Tier
}

// contextLines is how many lines before an untagged fence are searched for a
// language mention.
const contextLines = 6

var fencePattern = regexp.MustCompile("(?s)```([^\n]*)\n(.*?)```")

// Extractor selects snippets using a detector registry for the heuristic tier.
type Extractor struct {
	detectors *Registry
}

// NewExtractor creates an Extractor. A nil registry uses DefaultRegistry.
func NewExtractor(detectors *Registry) *Extractor {
	if detectors == nil {
		detectors = DefaultRegistry()
	}
	return &Extractor{detectors: detectors}
}

// Extract returns the best snippet in document for the given aliases.
// Fenced blocks are searched first; HTML blocks only when no fence yields code.
// CRLF line endings are read as LF.
func (e *Extractor) Extract(document string, aliases []string) (Snippet, bool) {
	if document == "" {
		return Snippet{}, false
	}
	document = strings.ReplaceAll(document, "\r\n", "\n")
	normalized := language.NormalizeAll(aliases)
	if len(normalized) == 0 {
		return Snippet{}, false
	}
	if s, ok := e.scanFences(document, normalized); ok {
		return s, true
	}
	return scanHTML(document, normalized)
}

// Code is a convenience wrapper returning only the snippet text.
func (e *Extractor) Code(document string, aliases []string) string {
	s, ok := e.Extract(document, aliases)
	if !ok {
		return ""
	}
	return s.Code
}

func (e *Extractor) scanFences(document string, aliases []string) (Snippet, bool) {
	var best Snippet
	for _, loc := range fencePattern.FindAllStringSubmatchIndex(document, -1) {
		info := document[loc[2]:loc[3]]
		body := strings.TrimRightFunc(document[loc[4]:loc[5]], unicode.IsSpace)
		if strings.TrimSpace(body) == "" {
			continue
		}

		tier := TierFallback
		switch {
		case tagMatches(info, aliases):
			return Snippet{Code: body, Tier: TierExactTag}, true
		case strings.TrimSpace(info) != "":
			// tagged for another language
		case contextMentions(document[:loc[0]], aliases):
			tier = TierContext
		case e.detectors.Matches(body, aliases):
			tier = TierHeuristic
		}

		if best.Tier == 0 || tier < best.Tier {
			best = Snippet{Code: body, Tier: tier}
		}
	}
	return best, best.Tier != 0
}

// tagMatches reports whether a fence info string or HTML language attribute
// names one of the aliases, allowing substring overlap either way.
func tagMatches(tag string, aliases []string) bool {
	key := language.Normalize(tag)
	if key == "" {
		return false
	}
	for _, alias := range aliases {
		if overlaps(key, alias) {
			return true
		}
	}
	return false
}

func contextMentions(before string, aliases []string) bool {
	lines := strings.Split(strings.TrimSuffix(before, "\n"), "\n")
	if len(lines) > contextLines {
		lines = lines[len(lines)-contextLines:]
	}
	for i := len(lines) - 1; i >= 0; i-- {
		key := language.Normalize(lines[i])
		if key == "" {
			continue
		}
		for _, alias := range aliases {
			if overlaps(key, alias) {
				return true
			}
		}
	}
	return false
}

func overlaps(a, b string) bool {
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

var defaultExtractor = NewExtractor(nil)

// Extract runs the default extractor.
func Extract(document string, aliases []string) (Snippet, bool) {
	return defaultExtractor.Extract(document, aliases)
}
