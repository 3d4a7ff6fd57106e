package guard

import (
	"regexp"
	"strings"
)

// Promotional phrase patterns for the keyword-spam check. Two or more
// distinct matches in one submission count as a violation.
var spamKeywordPatterns = []string{
	"buy now",
	"act fast",
	"act now",
	"limited time",
	"click here",
	"guaranteed",
	"winner",
	"free money",
	"make money fast",
	"100% free",
	"double your",
	"earn cash",
	"no risk",
	"exclusive deal",
	"dm me",
}

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

// countKeywordMatches returns how many distinct promotional patterns
// appear in the content, case-insensitive.
func countKeywordMatches(content string) int {
	lower := strings.ToLower(content)
	matches := 0
	for _, pattern := range spamKeywordPatterns {
		if strings.Contains(lower, pattern) {
			matches++
		}
	}
	return matches
}

// extractURLs pulls URL-like substrings out of the content, normalized
// for comparison across submissions.
func extractURLs(content string) []string {
	raw := urlPattern.FindAllString(content, -1)
	urls := make([]string, 0, len(raw))
	for _, u := range raw {
		urls = append(urls, strings.TrimRight(strings.ToLower(u), ".,!?;:)"))
	}
	return urls
}

func sharesURL(content string, previous []submission) bool {
	urls := extractURLs(content)
	if len(urls) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		seen[u] = struct{}{}
	}
	for _, s := range previous {
		for _, u := range extractURLs(s.Content) {
			if _, ok := seen[u]; ok {
				return true
			}
		}
	}
	return false
}
