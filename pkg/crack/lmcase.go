package crack

import (
	"strings"
	"unicode"
)

// MaxCaseVaryingChars caps the LM case-recovery search. An LM
// plaintext is at most 14 characters, so 2^14 would already be the
// natural ceiling; anything beyond 20 case-varying characters is
// abandoned as unrecoverable instead of burning a million hashes on
// input that cannot be a real LM password.
const MaxCaseVaryingChars = 20

// RecoverLMCase restores the case of a password recovered through LM
// cracking.
//
// EDUCATIONAL: LM Case Recovery (lm2ntcrack)
//
// The legacy LM scheme uppercases the password and splits it into two
// 7-character halves before hashing, so cracking an LM hash yields
// the password with its case destroyed. The same account's NT hash
// still encodes the true case. Enumerate every case variant of the
// uppercased plaintext (2^k variants for k letters; digits and
// symbols contribute no branching), NT-hash each one, and the first
// variant matching the target is the real password.
//
// The enumeration order is fixed: the earliest character cycles
// fastest, lowercase before uppercase, so "pass" is tried before
// "Pass" before "pAss". The search short-circuits on the first match.
//
// Returns the recovered password and true on a match, or false when
// no variant matches or the input exceeds MaxCaseVaryingChars.
func RecoverLMCase(ntHash, lmPlaintext string) (string, bool, error) {
	target := strings.ToLower(ntHash)
	runes := []rune(lmPlaintext)

	// Positions where upper and lower case differ.
	var varying []int
	for i, r := range runes {
		if unicode.ToLower(r) != unicode.ToUpper(r) {
			varying = append(varying, i)
		}
	}
	if len(varying) > MaxCaseVaryingChars {
		return "", false, nil
	}

	// Start from all-lowercase; mask bit i flips varying position i
	// to uppercase. Bit 0 is the earliest position, so it cycles
	// fastest, matching the documented enumeration order.
	for i := range runes {
		runes[i] = unicode.ToLower(runes[i])
	}
	guess := make([]rune, len(runes))

	for mask := 0; mask < 1<<len(varying); mask++ {
		copy(guess, runes)
		for bit, pos := range varying {
			if mask&(1<<bit) != 0 {
				guess[pos] = unicode.ToUpper(guess[pos])
			}
		}
		candidate := string(guess)
		hash, err := NTLM(candidate)
		if err != nil {
			return "", false, err
		}
		if hash == target {
			return candidate, true, nil
		}
	}
	return "", false, nil
}
