package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"windows line endings", "one\r\ntwo", "one\ntwo"},
		{"bare carriage returns", "one\rtwo", "one\ntwo"},
		{"space runs collapse", "one    two\tthree", "one two three"},
		{"blank lines collapse", "one\n\n\n\ntwo", "one\n\ntwo"},
		{"surrounding whitespace trimmed", "  one two \n", "one two"},
		{"control characters dropped", "one\x00\x08two", "onetwo"},
		{"paragraph break preserved", "para one.\n\npara two.", "para one.\n\npara two."},
		{"mixed newline and spaces", "one \n two", "one\ntwo"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanTextStable(t *testing.T) {
	// Cleaning is idempotent: a cleaned document passes through unchanged.
	cleaned := CleanText("a  document\r\n\r\nwith\tmessy   whitespace\n\n\n")
	assert.Equal(t, cleaned, CleanText(cleaned))
}
