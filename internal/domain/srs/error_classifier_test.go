package srs

import (
	"strings"
	"testing"

	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func words(n int, word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		user     string
		expected string
		want     domain.ErrorType
	}{
		{
			name:     "answer shorter than half the expected",
			user:     "short",
			expected: "a considerably longer expected answer",
			want:     domain.ErrorIncompleteAnswer,
		},
		{
			name:     "expected explains but user does not",
			user:     "it is faster overall",
			expected: "it is faster because of caching",
			want:     domain.ErrorMissingExplanation,
		},
		{
			name:     "explanation keyword in any case",
			user:     "It is faster, BECAUSE reasons",
			expected: "It is faster Because of caching",
			want:     domain.ErrorTooBrief,
		},
		{
			name:     "fewer than twenty tokens",
			user:     words(19, "token"),
			expected: words(10, "token"),
			want:     domain.ErrorTooBrief,
		},
		{
			name:     "missing examples",
			user:     words(25, "token"),
			expected: "lists such as arrays",
			want:     domain.ErrorMissingExamples,
		},
		{
			name:     "examples present",
			user:     words(25, "token") + " for example this",
			expected: "for instance arrays",
			want:     domain.ErrorConceptualGap,
		},
		{
			name:     "long answer with nothing obviously missing",
			user:     words(25, "token"),
			expected: "arrays",
			want:     domain.ErrorConceptualGap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyError(tt.user, tt.expected))
		})
	}
}
