package report

import "strings"

// Sanitizer partially redacts display strings so a report can be
// shared without disclosing recovered material. Disabled, it passes
// values through untouched.
type Sanitizer struct {
	Enabled bool
}

// Value redacts one password or hash. 32-character strings (hashes)
// keep their first and last four characters; anything longer than two
// characters keeps only its first and last. Lengths and slices are in
// runes so a multibyte password is never cut mid-character.
func (s Sanitizer) Value(v string) string {
	if !s.Enabled {
		return v
	}
	runes := []rune(v)
	n := len(runes)
	switch {
	case n == 32:
		return string(runes[:4]) + strings.Repeat("*", n-8) + string(runes[n-4:])
	case n > 2:
		return string(runes[:1]) + strings.Repeat("*", n-2) + string(runes[n-1:])
	default:
		return v
	}
}

// Row redacts the named password and hash columns of a display row,
// leaving the rest untouched.
func (s Sanitizer) Row(row []string, passwordCols, hashCols []int) []string {
	if !s.Enabled {
		return row
	}
	out := make([]string, len(row))
	copy(out, row)
	for _, idx := range append(passwordCols, hashCols...) {
		if idx >= 0 && idx < len(out) {
			out[idx] = s.Value(out[idx])
		}
	}
	return out
}
