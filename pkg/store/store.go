package store

import "sort"

// Store is the indexed in-memory record set. It is built once during
// ingestion and owned exclusively by the audit pipeline; nothing here
// is safe for concurrent mutation and nothing needs to be.
type Store struct {
	records []*Record

	byNTHash   map[string][]*Record
	byLMLeft   map[string][]*Record
	byLMRight  map[string][]*Record
	byUserFull map[string][]*Record
	byUsername map[string][]*Record
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byNTHash:   make(map[string][]*Record),
		byLMLeft:   make(map[string][]*Record),
		byLMRight:  make(map[string][]*Record),
		byUserFull: make(map[string][]*Record),
		byUsername: make(map[string][]*Record),
	}
}

// Insert adds a record and indexes it. Records are never removed.
func (s *Store) Insert(r *Record) {
	if r.Groups == nil {
		r.Groups = make(map[string]bool)
	}
	s.records = append(s.records, r)

	s.byNTHash[r.NTHash] = append(s.byNTHash[r.NTHash], r)
	if r.LMHashLeft != "" {
		s.byLMLeft[r.LMHashLeft] = append(s.byLMLeft[r.LMHashLeft], r)
	}
	if r.LMHashRight != "" {
		s.byLMRight[r.LMHashRight] = append(s.byLMRight[r.LMHashRight], r)
	}
	s.byUserFull[normKey(r.UsernameFull)] = append(s.byUserFull[normKey(r.UsernameFull)], r)
	s.byUsername[normKey(r.Username)] = append(s.byUsername[normKey(r.Username)], r)
}

// Len returns the total number of records, history entries included.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns every record in insertion order.
func (s *Store) Records() []*Record {
	return s.records
}

// Current returns the records with HistoryIndex == -1, the set all
// top-level statistics are computed over.
func (s *Store) Current() []*Record {
	var out []*Record
	for _, r := range s.records {
		if r.IsCurrent() {
			out = append(out, r)
		}
	}
	return out
}

// ByNTHash returns every record sharing an NT hash.
func (s *Store) ByNTHash(hash string) []*Record {
	return s.byNTHash[hash]
}

// ByUsername returns every record with the given short username,
// matched case-insensitively.
func (s *Store) ByUsername(name string) []*Record {
	return s.byUsername[normKey(name)]
}

// ByUsernameFull returns every record with the given full username,
// matched case-insensitively.
func (s *Store) ByUsernameFull(name string) []*Record {
	return s.byUserFull[normKey(name)]
}

// ApplyPotEntry merges one potfile line into the store. A 32-digit
// hash is an NT hash and sets the password on every record sharing
// it. A 16-digit hash is an LM half and is tried against both the
// left and right slot of every record whose half matches; a single
// LM half can legitimately belong to many accounts, and to either
// side of each.
func (s *Store) ApplyPotEntry(hash, plaintext string) {
	hash = normKey(hash)
	switch len(hash) {
	case 32:
		for _, r := range s.byNTHash[hash] {
			r.SetPassword(plaintext)
		}
	case 16:
		for _, r := range s.byLMLeft[hash] {
			r.LMPassLeft = plaintext
			r.HasLMLeft = true
		}
		for _, r := range s.byLMRight[hash] {
			r.LMPassRight = plaintext
			r.HasLMRight = true
		}
	}
}

// TagGroup marks every record whose full username matches the roster
// identity as a member of the named group. Identities that match no
// record are ignored: rosters routinely reference accounts that the
// machine-account and krbtgt filters excluded.
func (s *Store) TagGroup(identity, group string) bool {
	recs := s.byUserFull[normKey(identity)]
	for _, r := range recs {
		r.Groups[group] = true
	}
	return len(recs) > 0
}

// MaxHistoryIndex returns the largest history index seen, or -1 when
// the dump carried no history.
func (s *Store) MaxHistoryIndex() int {
	max := -1
	for _, r := range s.records {
		if r.HistoryIndex > max {
			max = r.HistoryIndex
		}
	}
	return max
}

// HistoryChain is the password sequence for one base account. Slot 0
// is the current password, slot i+1 is history index i. Known marks
// which slots hold a recovered password; indices are sparse.
type HistoryChain struct {
	BaseUsername string
	Passwords    []string
	Known        []bool
}

// HistoryChains coalesces all records onto one chain per base
// username, ordered by base username. Chains with no recovered
// password in any slot are dropped.
func (s *Store) HistoryChains() []HistoryChain {
	max := s.MaxHistoryIndex()
	if max < 0 {
		return nil
	}
	slots := max + 2 // current plus history 0..max

	byBase := make(map[string]*HistoryChain)
	var order []string
	for _, r := range s.records {
		key := normKey(r.HistoryBaseUsername)
		ch, ok := byBase[key]
		if !ok {
			ch = &HistoryChain{
				BaseUsername: r.HistoryBaseUsername,
				Passwords:    make([]string, slots),
				Known:        make([]bool, slots),
			}
			byBase[key] = ch
			order = append(order, key)
		}
		if !r.HasPassword {
			continue
		}
		slot := r.HistoryIndex + 1
		if slot >= 0 && slot < slots && !ch.Known[slot] {
			ch.Passwords[slot] = r.Password
			ch.Known[slot] = true
		}
	}

	sort.Strings(order)
	var out []HistoryChain
	for _, key := range order {
		ch := byBase[key]
		any := false
		for _, k := range ch.Known {
			if k {
				any = true
				break
			}
		}
		if any {
			out = append(out, *ch)
		}
	}
	return out
}
