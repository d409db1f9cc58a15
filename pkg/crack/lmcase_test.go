package crack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverLMCase(t *testing.T) {
	tests := []struct {
		name        string
		password    string // true password; LM plaintext is its uppercase
		lmPlaintext string
	}{
		{"two halves", "Pass1word2", "PASS1WORD2"},
		{"all lower", "summer", "SUMMER"},
		{"all upper", "SUMMER", "SUMMER"},
		{"mixed with digits", "S3cr3tPw", "S3CR3TPW"},
		{"symbols do not branch", "a!b@c#", "A!B@C#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := NTLM(tt.password)
			require.NoError(t, err)

			got, ok, err := RecoverLMCase(target, tt.lmPlaintext)
			require.NoError(t, err)
			require.True(t, ok, "expected a recovered password")
			assert.Equal(t, tt.password, got)

			// Round-trip properties.
			hash, err := NTLM(got)
			require.NoError(t, err)
			assert.Equal(t, target, hash)
			assert.Equal(t, strings.ToUpper(tt.lmPlaintext), strings.ToUpper(got))
		})
	}
}

func TestRecoverLMCaseNoMatch(t *testing.T) {
	// Target is the hash of a different password entirely.
	target, err := NTLM("unrelated")
	require.NoError(t, err)

	got, ok, err := RecoverLMCase(target, "PASSWORD")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestRecoverLMCaseFirstMatchWins(t *testing.T) {
	// Lowercase variants are tried before uppercase, earliest
	// character cycling fastest, so "a" beats "A".
	target, err := NTLM("a")
	require.NoError(t, err)
	got, ok, err := RecoverLMCase(target, "A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", got)

	target, err = NTLM("A")
	require.NoError(t, err)
	got, ok, err = RecoverLMCase(target, "A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", got)
}

func TestRecoverLMCaseUppercaseTarget(t *testing.T) {
	// Hash comparison is case-insensitive on the target hex.
	target, err := NTLM("Word")
	require.NoError(t, err)
	got, ok, err := RecoverLMCase(strings.ToUpper(target), "WORD")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Word", got)
}

func TestRecoverLMCaseCap(t *testing.T) {
	// More case-varying characters than the cap is abandoned as
	// unrecoverable, not searched.
	long := strings.Repeat("AB", (MaxCaseVaryingChars+2)/2)
	target, err := NTLM(strings.ToLower(long))
	require.NoError(t, err)

	got, ok, err := RecoverLMCase(target, long)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}
