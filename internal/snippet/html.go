package snippet

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlCodePattern = regexp.MustCompile(`(?is)<code[^>]*class="([^"]*)"[^>]*>(.*?)</code>`)
	htmlPrePattern  = regexp.MustCompile(`(?is)<pre[^>]*data-language="([^"]+)"[^>]*>(.*?)</pre>`)

	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraphEnd = regexp.MustCompile(`(?i)</p>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
)

// CleanHTML turns an HTML code fragment into plain text. It returns "" when
// nothing but whitespace remains.
func CleanHTML(raw string) string {
	if raw == "" {
		return ""
	}
	text := lineBreakTag.ReplaceAllString(raw, "\n")
	text = paragraphEnd.ReplaceAllString(text, "\n")
	text = anyTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	return trimBlankLines(text)
}

func trimBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// scanHTML applies tag matching to <code class> blocks, then <pre data-language>
// blocks, falling back to the first non-empty block of either kind.
func scanHTML(document string, aliases []string) (Snippet, bool) {
	var fallback string
	for _, pattern := range []*regexp.Regexp{htmlCodePattern, htmlPrePattern} {
		for _, match := range pattern.FindAllStringSubmatch(document, -1) {
			code := CleanHTML(match[2])
			if code == "" {
				continue
			}
			if tagMatches(match[1], aliases) {
				return Snippet{Code: code, Tier: TierExactTag}, true
			}
			if fallback == "" {
				fallback = code
			}
		}
	}
	if fallback == "" {
		return Snippet{}, false
	}
	return Snippet{Code: fallback, Tier: TierFallback}, true
}
