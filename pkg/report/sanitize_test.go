package report

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizerDisabledPassesThrough(t *testing.T) {
	s := Sanitizer{}
	assert.Equal(t, "Summer2023", s.Value("Summer2023"))
	row := []string{"alice", "Summer2023"}
	assert.Equal(t, row, s.Row(row, []int{1}, nil))
}

func TestSanitizerValue(t *testing.T) {
	s := Sanitizer{Enabled: true}

	tests := []struct {
		in, want string
	}{
		{"4210e68078724566518b8ad3f197a4a6", "4210************************a4a6"},
		{"Summer2023", "S********3"},
		{"abc", "a*c"},
		{"ab", "ab"},
		{"a", "a"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Value(tt.in), "input %q", tt.in)
	}
}

func TestSanitizerValueMultibyte(t *testing.T) {
	s := Sanitizer{Enabled: true}

	tests := []struct {
		in, want string
	}{
		{"étoile", "é****e"},
		{"café", "c**é"},
		{"über2023ß", "ü*******ß"},
	}
	for _, tt := range tests {
		got := s.Value(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.True(t, utf8.ValidString(got), "input %q", tt.in)
	}
}

func TestSanitizerRow(t *testing.T) {
	s := Sanitizer{Enabled: true}
	row := []string{"corp\\alice", "Summer2023", "4210e68078724566518b8ad3f197a4a6", "10"}
	got := s.Row(row, []int{1}, []int{2})

	assert.Equal(t, "corp\\alice", got[0], "username column untouched")
	assert.Equal(t, "S********3", got[1])
	assert.Equal(t, "4210************************a4a6", got[2])
	assert.Equal(t, "10", got[3])

	assert.Equal(t, "Summer2023", row[1], "input row is not mutated")
}

func TestSanitizerRowIgnoresOutOfRangeColumns(t *testing.T) {
	s := Sanitizer{Enabled: true}
	row := []string{"abc"}
	got := s.Row(row, []int{5}, []int{-1})
	assert.Equal(t, []string{"abc"}, got)
}
