package srs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		question string
		topic    string
		want     string
	}{
		{
			name:     "drops short tokens and sorts",
			question: "What Is Closures?",
			topic:    "JS",
			want:     "js-closures-what",
		},
		{
			name:     "keeps only the first five long tokens",
			question: "Explain how binary search trees balance themselves after insertion",
			topic:    "Data Structures",
			want:     "data-structures-balance-binary-explain-search-trees",
		},
		{
			name:     "non alphanumeric topic characters become dashes",
			question: "rotate array algorithm",
			topic:    "C++/Arrays",
			want:     "c---arrays-algorithm-array-rotate",
		},
		{
			name:     "no long tokens",
			question: "Why is it so?",
			topic:    "Go",
			want:     "go-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Fingerprint(tt.question, tt.topic))
		})
	}
}

func TestFingerprintIsCaseAndPunctuationInsensitive(t *testing.T) {
	t.Parallel()

	a := Fingerprint("What Is Closures?", "JS")
	b := Fingerprint("what is closures", "js")
	c := Fingerprint("WHAT, is... closures!!", "Js")

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Equal(t, a, Fingerprint("What Is Closures?", "JS"))
}

func TestFingerprintTruncates(t *testing.T) {
	t.Parallel()

	topic := strings.Repeat("t", 150)
	got := Fingerprint("some question text here", topic)
	assert.Len(t, got, maxFingerprintLength)
}
