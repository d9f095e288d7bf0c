package review_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucasreis/reviewdeck/internal/models"
	"github.com/lucasreis/reviewdeck/internal/review"
)

func TestGrade_CaseAndWhitespaceInsensitive(t *testing.T) {
	q := models.Question{ID: "q1", Prompt: "Capital of France?", Answer: "Paris"}

	tests := []struct {
		name      string
		submitted string
		want      bool
	}{
		{"exact", "Paris", true},
		{"lowercase", "paris", true},
		{"padded", "  Paris  ", true},
		{"padded lowercase", " paris ", true},
		{"wrong", "Lyon", false},
		{"empty", "", false},
		{"no punctuation stripping", "Paris.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, review.Grade(q, tt.submitted))
		})
	}
}

func TestGrade_ChoiceQuestions(t *testing.T) {
	q := models.Question{
		ID:      "q1",
		Prompt:  "Pick one",
		Options: []string{"Mitochondria", "Nucleus", "Ribosome"},
		Answer:  "Mitochondria",
	}

	assert.True(t, review.Grade(q, "mitochondria"))
	assert.True(t, review.Grade(q, " Mitochondria "))
	assert.False(t, review.Grade(q, "Nucleus"), "an offered but wrong option is incorrect")
	assert.False(t, review.Grade(q, "Chloroplast"), "a submission outside the options is never correct")
}

func TestGrade_IsPure(t *testing.T) {
	q := models.Question{ID: "q1", Answer: "42", Options: []string{"41", "42"}}
	before := q
	review.Grade(q, "42")
	assert.Equal(t, before, q)
}
