package review

import (
	"strings"

	"github.com/lucasreis/reviewdeck/internal/models"
)

// Grade compares a submission against a question's canonical answer.
// Comparison ignores case and leading/trailing whitespace on both sides;
// there is no fuzzy matching and no partial credit. For choice questions the
// submission must also be one of the offered options.
func Grade(q models.Question, submitted string) bool {
	sub := normalize(submitted)
	if len(q.Options) > 0 && !isOption(q.Options, sub) {
		return false
	}
	return sub == normalize(q.Answer)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isOption(options []string, normalized string) bool {
	for _, opt := range options {
		if normalize(opt) == normalized {
			return true
		}
	}
	return false
}
