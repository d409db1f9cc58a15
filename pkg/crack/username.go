package crack

import (
	"strings"
	"unicode"
)

// UsernameCandidates expands the plausible strings a user might have
// set as their password from their own account name: the raw username
// and full username, the bare name with any domain\ prefix or @domain
// suffix stripped, and lower/upper/capitalized variants of each.
//
// The result is deduplicated but keeps a deterministic insertion
// order, so the first hash match is stable across runs.
func UsernameCandidates(username, usernameFull string) []string {
	var bases []string
	seen := make(map[string]bool)
	addBase := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		bases = append(bases, s)
	}

	for _, val := range []string{username, usernameFull} {
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		addBase(val)
		if i := strings.Index(val, `\`); i >= 0 {
			addBase(val[i+1:])
		}
		if i := strings.Index(val, "@"); i >= 0 {
			addBase(val[:i])
		}
	}

	var out []string
	dup := make(map[string]bool)
	add := func(s string) {
		if s == "" || dup[s] {
			return
		}
		dup[s] = true
		out = append(out, s)
	}
	for _, b := range bases {
		add(b)
		add(strings.ToLower(b))
		add(strings.ToUpper(b))
		add(capitalize(b))
	}
	return out
}

// DeriveUsernamePassword checks whether any username candidate hashes
// to the target NT hash and returns the first match.
func DeriveUsernamePassword(username, usernameFull, ntHash string) (string, bool, error) {
	target := strings.ToLower(ntHash)
	for _, cand := range UsernameCandidates(username, usernameFull) {
		hash, err := NTLM(cand)
		if err != nil {
			return "", false, err
		}
		if hash == target {
			return cand, true, nil
		}
	}
	return "", false, nil
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
