package srs

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxFingerprintLength = 100
	fingerprintTokens    = 5
	minTokenLength       = 4
)

// Fingerprint derives a stable concept key from a question and its topic.
// It ignores case and punctuation. Distinct questions in the same topic
// that share their leading content words map to the same key.
//
//	Fingerprint("What Is Closures?", "JS") == "js-closures-what"
func Fingerprint(questionText, topic string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
			return r
		}
		return -1
	}, strings.ToLower(questionText))

	tokens := make([]string, 0, fingerprintTokens)
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) < minTokenLength {
			continue
		}
		tokens = append(tokens, tok)
		if len(tokens) == fingerprintTokens {
			break
		}
	}
	sort.Strings(tokens)

	normalizedTopic := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, strings.ToLower(topic))

	key := normalizedTopic + "-" + strings.Join(tokens, "-")
	return truncate(key, maxFingerprintLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
