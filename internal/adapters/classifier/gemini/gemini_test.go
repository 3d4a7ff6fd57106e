package gemini

import (
	"reflect"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		answer  string
		flagged bool
		want    []string
	}{
		{
			name:   "none",
			answer: "none",
		},
		{
			name:   "empty",
			answer: "   ",
		},
		{
			name:    "single category",
			answer:  "harassment",
			flagged: true,
			want:    []string{"harassment"},
		},
		{
			name:    "multiple with spacing",
			answer:  "hate, violence/graphic",
			flagged: true,
			want:    []string{"hate", "violence/graphic"},
		},
		{
			name:    "uppercase normalized",
			answer:  "Sexual/Minors",
			flagged: true,
			want:    []string{"sexual/minors"},
		},
		{
			name:   "hallucinated category ignored",
			answer: "gossip, mild sarcasm",
		},
		{
			name:    "mixed known and unknown",
			answer:  "self-harm, exaggeration",
			flagged: true,
			want:    []string{"self-harm"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseAnswer(tt.answer)
			if got.Flagged != tt.flagged {
				t.Errorf("flagged = %v, want %v", got.Flagged, tt.flagged)
			}
			if !reflect.DeepEqual(got.Categories, tt.want) {
				t.Errorf("categories = %v, want %v", got.Categories, tt.want)
			}
		})
	}
}
