package audit

import (
	"sort"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/ntdsaudit/ntdsaudit/pkg/crack"
	"github.com/ntdsaudit/ntdsaudit/pkg/store"
)

// HashRow is one account in the all-hashes and only-LM-cracked views.
type HashRow struct {
	UsernameFull  string
	Password      string
	HasPassword   bool
	Length        int
	NTHash        string
	OnlyLMCracked bool
}

// AllHashes returns every current account, cracked rows first ordered
// by password length descending then password, uncracked rows after
// in ingestion order.
func (a *Auditor) AllHashes() []HashRow {
	rows := make([]HashRow, 0, len(a.cur))
	for _, r := range a.cur {
		rows = append(rows, HashRow{
			UsernameFull:  r.UsernameFull,
			Password:      r.Password,
			HasPassword:   r.HasPassword,
			Length:        r.PasswordLength(),
			NTHash:        r.NTHash,
			OnlyLMCracked: r.OnlyLMCracked,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].HasPassword != rows[j].HasPassword {
			return rows[i].HasPassword
		}
		if !rows[i].HasPassword {
			return false
		}
		if rows[i].Length != rows[j].Length {
			return rows[i].Length > rows[j].Length
		}
		return rows[i].Password < rows[j].Password
	})
	return rows
}

// Counts are the headline totals of the audit.
type Counts struct {
	Total         int // current records
	UniqueNT      int // distinct NT hashes
	Duplicate     int // Total - UniqueNT
	Cracked       int // records with a recovered password
	UniqueCracked int // distinct recovered passwords
}

// Counts computes the headline totals. Unique + Duplicate == Total
// holds for every run.
func (a *Auditor) Counts() Counts {
	hashes := make([]string, 0, len(a.cur))
	var passwords []string
	cracked := 0
	for _, r := range a.cur {
		hashes = append(hashes, r.NTHash)
		if r.HasPassword {
			cracked++
			passwords = append(passwords, r.Password)
		}
	}
	unique := len(funk.UniqString(hashes))
	return Counts{
		Total:         len(a.cur),
		UniqueNT:      unique,
		Duplicate:     len(a.cur) - unique,
		Cracked:       cracked,
		UniqueCracked: len(funk.UniqString(passwords)),
	}
}

// KerbCrackedRow is one cracked Kerberoastable account.
type KerbCrackedRow struct {
	UsernameFull string
	NTHash       string
	Password     string
}

// KerberoastableCracked returns the cracked accounts among the
// registered Kerberoastable set.
func (a *Auditor) KerberoastableCracked() []KerbCrackedRow {
	var rows []KerbCrackedRow
	for _, r := range a.cur {
		if !r.HasPassword || !a.kerb[strings.ToLower(r.UsernameFull)] {
			continue
		}
		rows = append(rows, KerbCrackedRow{
			UsernameFull: r.UsernameFull,
			NTHash:       r.NTHash,
			Password:     r.Password,
		})
	}
	return rows
}

// GroupMemberRow details one member of a reported group.
type GroupMemberRow struct {
	UsernameFull string
	NTHash       string
	SharedWith   string // names sharing the hash, or "Too Many to List"
	ShareCount   int
	Password     string
	HasPassword  bool
	NonBlankLM   bool
}

// GroupCrackedRow is one cracked member of a reported group.
type GroupCrackedRow struct {
	UsernameFull  string
	Length        int
	Password      string
	OnlyLMCracked bool
}

// GroupStats aggregates one group roster.
type GroupStats struct {
	Name           string
	Members        []GroupMemberRow
	Cracked        []GroupCrackedRow
	MemberCount    int
	CrackedCount   int
	PercentCracked float64
}

// Groups computes membership and crack-rate statistics for every
// registered group, in roster order.
func (a *Auditor) Groups() []GroupStats {
	out := make([]GroupStats, 0, len(a.groups))
	for _, name := range a.groups {
		out = append(out, a.groupStats(name))
	}
	return out
}

func (a *Auditor) groupStats(name string) GroupStats {
	gs := GroupStats{Name: name}

	for _, r := range a.cur {
		if !r.InGroup(name) {
			continue
		}

		sharing := a.currentByNTHash(r.NTHash)
		shared := "Too Many to List"
		if len(sharing) < a.cfg.ShareListCap {
			names := make([]string, 0, len(sharing))
			for _, s := range sharing {
				names = append(names, s.UsernameFull)
			}
			shared = strings.Join(names, ", ")
		}

		// Password and LM state are read from the first record
		// sharing the hash; after correlation every sharer carries
		// the same password.
		rep := sharing[0]
		gs.Members = append(gs.Members, GroupMemberRow{
			UsernameFull: r.UsernameFull,
			NTHash:       r.NTHash,
			SharedWith:   shared,
			ShareCount:   len(sharing),
			Password:     rep.Password,
			HasPassword:  rep.HasPassword,
			NonBlankLM:   !rep.HasBlankLM(),
		})

		if r.HasPassword && r.Password != "" {
			gs.Cracked = append(gs.Cracked, GroupCrackedRow{
				UsernameFull:  r.UsernameFull,
				Length:        r.PasswordLength(),
				Password:      r.Password,
				OnlyLMCracked: r.OnlyLMCracked,
			})
		}
	}
	sort.SliceStable(gs.Cracked, func(i, j int) bool {
		return gs.Cracked[i].Length < gs.Cracked[j].Length
	})

	gs.MemberCount = len(gs.Members)
	gs.CrackedCount = len(gs.Cracked)
	gs.PercentCracked = Percent(gs.CrackedCount, gs.MemberCount)
	return gs
}

func (a *Auditor) currentByNTHash(hash string) []*store.Record {
	var out []*store.Record
	for _, r := range a.st.ByNTHash(hash) {
		if r.IsCurrent() {
			out = append(out, r)
		}
	}
	return out
}

// PolicyRow is one account whose cracked password is shorter than the
// policy minimum.
type PolicyRow struct {
	Username  string
	Length    int
	MinLength int
	Password  string
}

// PolicyViolations returns the cracked accounts violating the
// configured minimum password length.
func (a *Auditor) PolicyViolations() []PolicyRow {
	var rows []PolicyRow
	for _, r := range a.cur {
		if !r.HasPassword || r.PasswordLength() >= a.cfg.MinPasswordLength {
			continue
		}
		rows = append(rows, PolicyRow{
			Username:  r.Username,
			Length:    r.PasswordLength(),
			MinLength: a.cfg.MinPasswordLength,
			Password:  r.Password,
		})
	}
	return rows
}

// UserPassRow is one account using its own username as its password.
type UserPassRow struct {
	Username string
	Password string
	Length   int
	NTHash   string
}

// UsernameEqualsPassword runs the two username-as-password passes.
//
// Pass one is direct string equality between the cracked password and
// the username. Pass two covers the accounts pass one did not catch:
// a case-insensitive equality check on cracked passwords, then an NT
// hash comparison against username-derived candidates for everything
// still unmatched, cracked or not. The two result sets are disjoint
// by construction; no account is reported twice.
//
// A hash backend failure aborts pass two, since no candidate can be
// verified without it.
func (a *Auditor) UsernameEqualsPassword() (direct, derived []UserPassRow, err error) {
	flagged := make(map[string]bool)
	for _, r := range a.cur {
		if !r.HasPassword || r.Username == "" || r.Password == "" {
			continue
		}
		if r.Username == r.Password {
			direct = append(direct, UserPassRow{
				Username: r.Username,
				Password: r.Password,
				Length:   r.PasswordLength(),
				NTHash:   r.NTHash,
			})
			flagged[r.Username] = true
		}
	}

	for _, r := range a.cur {
		if flagged[r.Username] {
			continue
		}

		if r.HasPassword && r.Password != "" &&
			(r.Password == r.Username || strings.EqualFold(r.Password, r.Username)) {
			derived = append(derived, UserPassRow{
				Username: r.UsernameFull,
				Password: r.Password,
				Length:   r.PasswordLength(),
				NTHash:   r.NTHash,
			})
			continue
		}

		// Cracked accounts fall through too: the username variants can
		// still hash-match a password the equality check cannot see,
		// such as a bare name inside a UPN-style account.
		cand, ok, derr := crack.DeriveUsernamePassword(r.Username, r.UsernameFull, r.NTHash)
		if derr != nil {
			return direct, derived, derr
		}
		if ok {
			derived = append(derived, UserPassRow{
				Username: r.UsernameFull,
				Password: cand,
				Length:   len([]rune(cand)),
				NTHash:   r.NTHash,
			})
		}
	}
	return direct, derived, nil
}

// LMCounts covers the legacy LM hash presence statistics.
type LMCounts struct {
	NonBlank       int // accounts storing a real LM hash
	UniqueNonBlank int // distinct non-blank LM hashes
}

// LMHashCounts counts the accounts still storing LM hashes.
func (a *Auditor) LMHashCounts() LMCounts {
	var hashes []string
	count := 0
	for _, r := range a.cur {
		if r.HasBlankLM() {
			continue
		}
		count++
		hashes = append(hashes, r.LMHash)
	}
	return LMCounts{NonBlank: count, UniqueNonBlank: len(funk.UniqString(hashes))}
}

// LMNotCrackedRow is one LM hash with recovered material but no
// NT-hash password.
type LMNotCrackedRow struct {
	LMHash    string
	LeftPass  string
	HasLeft   bool
	RightPass string
	HasRight  bool
	NTHash    string
}

// LMCrackedNTUncracked returns the distinct LM hash groups where at
// least one half was recovered but the NT hash remains uncracked.
// These are the accounts where case recovery failed or was never
// possible, and where finishing the LM crack would pay off.
func (a *Auditor) LMCrackedNTUncracked() []LMNotCrackedRow {
	seen := make(map[string]bool)
	var rows []LMNotCrackedRow
	for _, r := range a.cur {
		if r.HasPassword || r.HasBlankLM() {
			continue
		}
		if !r.HasLMLeft && !r.HasLMRight {
			continue
		}
		if seen[r.LMHash] {
			continue
		}
		seen[r.LMHash] = true
		rows = append(rows, LMNotCrackedRow{
			LMHash:    r.LMHash,
			LeftPass:  r.LMPassLeft,
			HasLeft:   r.HasLMLeft,
			RightPass: r.LMPassRight,
			HasRight:  r.HasLMRight,
			NTHash:    r.NTHash,
		})
	}
	return rows
}

// OnlyLMCracked returns the accounts whose password came from LM case
// recovery, ordered by password length, plus the count of distinct NT
// hashes among them.
func (a *Auditor) OnlyLMCracked() ([]HashRow, int) {
	var rows []HashRow
	var hashes []string
	for _, r := range a.cur {
		if !r.OnlyLMCracked {
			continue
		}
		rows = append(rows, HashRow{
			UsernameFull:  r.UsernameFull,
			Password:      r.Password,
			HasPassword:   r.HasPassword,
			Length:        r.PasswordLength(),
			NTHash:        r.NTHash,
			OnlyLMCracked: true,
		})
		hashes = append(hashes, r.NTHash)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Length < rows[j].Length })
	return rows, len(funk.UniqString(hashes))
}

// LengthBucket is one password length with its accounts.
type LengthBucket struct {
	Length    int
	Count     int
	Usernames []string
}

// LengthCount is one entry of the ranked length view.
type LengthCount struct {
	Count  int
	Length int
}

// LengthDistribution groups cracked, non-empty passwords by length,
// ascending by length.
func (a *Auditor) LengthDistribution() []LengthBucket {
	byLen := make(map[int]*LengthBucket)
	for _, r := range a.cur {
		plen := r.PasswordLength()
		if !r.HasPassword || plen == 0 {
			continue
		}
		b, ok := byLen[plen]
		if !ok {
			b = &LengthBucket{Length: plen}
			byLen[plen] = b
		}
		b.Count++
		b.Usernames = append(b.Usernames, r.Username)
	}

	lengths := funk.Keys(byLen).([]int)
	sort.Ints(lengths)
	out := make([]LengthBucket, 0, len(lengths))
	for _, l := range lengths {
		out = append(out, *byLen[l])
	}
	return out
}

// RankedLengths returns the length distribution ordered by count
// descending, shorter length first on ties.
func (a *Auditor) RankedLengths() []LengthCount {
	dist := a.LengthDistribution()
	out := make([]LengthCount, 0, len(dist))
	for _, b := range dist {
		out = append(out, LengthCount{Count: b.Count, Length: b.Length})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Length < out[j].Length
	})
	return out
}

// PasswordCount is one entry of the top-passwords view.
type PasswordCount struct {
	Password string
	Count    int
}

// TopPasswords ranks the cracked, non-empty passwords by use count,
// truncated to the configured top N.
func (a *Auditor) TopPasswords() []PasswordCount {
	counts := make(map[string]int)
	for _, r := range a.cur {
		if r.HasPassword && r.Password != "" {
			counts[r.Password]++
		}
	}
	out := make([]PasswordCount, 0, len(counts))
	for pw, n := range counts {
		out = append(out, PasswordCount{Password: pw, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Password < out[j].Password
	})
	if len(out) > a.cfg.TopN {
		out = out[:a.cfg.TopN]
	}
	return out
}

// ReuseRow is one shared NT hash with its member accounts.
type ReuseRow struct {
	NTHash      string
	Count       int
	Password    string
	HasPassword bool
	Usernames   []string
}

// PasswordReuse groups current accounts by NT hash, excluding the
// well-known empty-password hash, ranked by sharing count and
// truncated to the configured top N.
func (a *Auditor) PasswordReuse() []ReuseRow {
	byHash := make(map[string]*ReuseRow)
	var order []string
	for _, r := range a.cur {
		if r.NTHash == store.EmptyNTHash {
			continue
		}
		row, ok := byHash[r.NTHash]
		if !ok {
			row = &ReuseRow{
				NTHash:      r.NTHash,
				Password:    r.Password,
				HasPassword: r.HasPassword,
			}
			byHash[r.NTHash] = row
			order = append(order, r.NTHash)
		}
		row.Count++
		row.Usernames = append(row.Usernames, r.Username)
	}

	out := make([]ReuseRow, 0, len(order))
	for _, h := range order {
		out = append(out, *byHash[h])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].NTHash < out[j].NTHash
	})
	if len(out) > a.cfg.TopN {
		out = out[:a.cfg.TopN]
	}
	return out
}

// History returns the coalesced password history chains and the
// maximum history index observed (-1 when the dump had no history).
func (a *Auditor) History() ([]store.HistoryChain, int) {
	return a.st.HistoryChains(), a.st.MaxHistoryIndex()
}
