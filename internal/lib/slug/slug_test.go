package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple two words", input: "Modern Art", expected: "modern-art"},
		{name: "already a slug", input: "abstract", expected: "abstract"},
		{name: "mixed punctuation", input: "Black & White!", expected: "black-white"},
		{name: "digits kept", input: "Top 10 Prints", expected: "top-10-prints"},
		{name: "surrounding whitespace", input: "  Minimalist  ", expected: "minimalist"},
		{name: "collapses separator runs", input: "a --  b", expected: "a-b"},
		{name: "empty input", input: "", expected: ""},
		{name: "only punctuation", input: "!!!", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("modern-art"))
	assert.True(t, Valid("tag-10"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("Modern"))
	assert.False(t, Valid("with space"))
	assert.False(t, Valid("under_score"))
}
