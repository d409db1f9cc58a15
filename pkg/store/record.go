package store

import "strings"

// Well-known hash values.
const (
	// BlankLMHash is what secretsdump emits when no LM hash is stored.
	BlankLMHash = "aad3b435b51404eeaad3b435b51404ee"

	// EmptyNTHash is the NT hash of the empty password.
	EmptyNTHash = "31d6cfe0d16ae931b73c59d7e0c089c0"
)

// Record is one parsed credential dump line.
type Record struct {
	// UsernameFull is the account identifier exactly as dumped,
	// usually domain\user, possibly with a _history<N> suffix.
	UsernameFull string

	// Username is UsernameFull with any domain prefix stripped.
	Username string

	// LMHash is the 32-hex-digit LM hash, or BlankLMHash when the
	// domain stores none. LMHashLeft and LMHashRight are the two
	// independent DES halves.
	LMHash      string
	LMHashLeft  string
	LMHashRight string

	// NTHash is the 32-hex-digit NT hash, always present.
	NTHash string

	// Password is the recovered plaintext. HasPassword distinguishes
	// a cracked empty password from "not cracked".
	Password    string
	HasPassword bool

	// LMPassLeft and LMPassRight are the uppercased plaintext halves
	// recovered from LM cracking. They are only interesting while no
	// full-case password has been found.
	LMPassLeft  string
	HasLMLeft   bool
	LMPassRight string
	HasLMRight  bool

	// OnlyLMCracked marks a password recovered through LM case
	// recovery rather than a direct potfile hit.
	OnlyLMCracked bool

	// HistoryIndex is -1 for a current account and >= 0 for a
	// <base>_history<N> record. HistoryBaseUsername is the account
	// the history entry belongs to.
	HistoryIndex        int
	HistoryBaseUsername string

	// Groups holds the names of every supplied group roster this
	// account appears in.
	Groups map[string]bool
}

// IsCurrent reports whether the record is a live account rather than a
// password history entry.
func (r *Record) IsCurrent() bool {
	return r.HistoryIndex == -1
}

// HasBlankLM reports whether the account stores no real LM hash.
func (r *Record) HasBlankLM() bool {
	return r.LMHash == BlankLMHash
}

// InGroup reports membership in a tagged group.
func (r *Record) InGroup(name string) bool {
	return r.Groups[name]
}

// PasswordLength returns the length of the recovered password in runes,
// or 0 when nothing has been recovered.
func (r *Record) PasswordLength() int {
	if !r.HasPassword {
		return 0
	}
	return len([]rune(r.Password))
}

// SetPassword records a potfile-confirmed plaintext. It overwrites a
// previous potfile hit (last entry wins, as with repeated UPDATEs) but
// clears OnlyLMCracked since this is the higher-confidence source.
func (r *Record) SetPassword(password string) {
	r.Password = password
	r.HasPassword = true
	r.OnlyLMCracked = false
}

// SetLMRecovered records a password derived through LM case recovery.
// A potfile-confirmed password is never overwritten by this path.
func (r *Record) SetLMRecovered(password string) {
	if r.HasPassword {
		return
	}
	r.Password = password
	r.HasPassword = true
	r.OnlyLMCracked = true
}

func normKey(s string) string {
	return strings.ToLower(s)
}
