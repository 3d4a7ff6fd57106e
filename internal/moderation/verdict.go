package moderation

import (
	"github.com/murmurhq/murmur/internal/adapters/classifier"
)

type Action string

const (
	ActionAllow  Action = "allow"
	ActionHide   Action = "hide"
	ActionReview Action = "review"
)

// Verdict is the ephemeral, per-submission moderation result. Only the
// action and severity level are attached to the stored item.
type Verdict struct {
	Flagged        bool       `json:"flagged"`
	SeverityLevel  int        `json:"severityLevel"`
	Categories     []string   `json:"categories,omitempty"`
	Action         Action     `json:"action"`
	SupportMessage string     `json:"supportMessage,omitempty"`
	Resources      []Resource `json:"resources,omitempty"`
}

// severity-3 categories: imminent-risk content that is stored hidden.
var hideCategories = map[string]struct{}{
	classifier.CategorySelfHarmIntent:        {},
	classifier.CategorySelfHarmInstructions:  {},
	classifier.CategoryViolenceGraphic:       {},
	classifier.CategoryHarassmentThreatening: {},
	classifier.CategoryHateThreatening:       {},
}

// severity-2 categories: flagged for review, stored visible.
var reviewCategories = map[string]struct{}{
	classifier.CategorySelfHarm:   {},
	classifier.CategoryHarassment: {},
	classifier.CategoryViolence:   {},
	classifier.CategoryHate:       {},
}

// severityFromCategories maps a flagged category set to the 0-3 scale.
func severityFromCategories(flagged bool, categories []string) int {
	severity := 0
	if flagged {
		severity = 1
	}
	for _, c := range categories {
		if _, ok := hideCategories[c]; ok {
			return 3
		}
		if _, ok := reviewCategories[c]; ok {
			severity = 2
			continue
		}
		if severity < 1 {
			severity = 1
		}
	}
	return severity
}

func actionForSeverity(severity int) Action {
	switch severity {
	case 3:
		return ActionHide
	case 2:
		return ActionReview
	default:
		return ActionAllow
	}
}
