package srs

import (
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/prep-api/internal/domain"
)

const briefAnswerTokens = 20

// ClassifyError guesses why an answer was wrong. It is bookkeeping only and
// never affects scheduling. Rules are checked in order, first match wins.
func ClassifyError(userAnswer, expectedAnswer string) domain.ErrorType {
	user := strings.ToLower(userAnswer)
	expected := strings.ToLower(expectedAnswer)

	if float64(utf8.RuneCountInString(userAnswer)) < 0.5*float64(utf8.RuneCountInString(expectedAnswer)) {
		return domain.ErrorIncompleteAnswer
	}
	if strings.Contains(expected, "because") &&
		!strings.Contains(user, "because") && !strings.Contains(user, "why") {
		return domain.ErrorMissingExplanation
	}
	if len(strings.Fields(userAnswer)) < briefAnswerTokens {
		return domain.ErrorTooBrief
	}
	if containsAny(expected, "example", "such as", "for instance") &&
		!containsAny(user, "example", "such as", "for instance") {
		return domain.ErrorMissingExamples
	}
	return domain.ErrorConceptualGap
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
