package moderation

import (
	"strings"

	"github.com/murmurhq/murmur/internal/adapters/classifier"
)

// Literal high-risk phrases checked locally, independent of the
// external classifier. Direct expressions of intent outrank general
// self-harm references.
var (
	criticalPhrases = []string{
		"want to die",
		"kill myself",
		"end my life",
		"better off dead",
		"going to end it all",
	}

	concerningPhrases = []string{
		"hurt myself",
		"self harm",
		"self-harm",
		"cutting myself",
		"hate my life",
	}
)

// localSeverity scans for literal phrases and returns the severity the
// local path asserts on its own, with the categories it implies. This
// path must produce a verdict even when the external call is down.
func localSeverity(text string) (int, []string) {
	lower := strings.ToLower(text)

	for _, phrase := range criticalPhrases {
		if strings.Contains(lower, phrase) {
			return 3, []string{classifier.CategorySelfHarmIntent}
		}
	}
	for _, phrase := range concerningPhrases {
		if strings.Contains(lower, phrase) {
			return 2, []string{classifier.CategorySelfHarm}
		}
	}
	return 0, nil
}
