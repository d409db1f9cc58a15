package audit

import (
	"errors"
	"math"
	"strings"

	"github.com/ntdsaudit/ntdsaudit/pkg/store"
)

// ErrNoRecords is the distinguished empty condition: nothing survived
// account filtering, so aggregation has nothing to divide by.
var ErrNoRecords = errors.New("no password hashes to audit")

// Defaults for the display-oriented knobs.
const (
	DefaultTopN         = 20 // ranked views are truncated to this
	DefaultShareListCap = 30 // longest hash-sharing list spelled out by name
)

// Config carries the audit policy inputs.
type Config struct {
	// MinPasswordLength is the domain policy minimum; any cracked
	// password shorter than this is a violation.
	MinPasswordLength int

	TopN         int
	ShareListCap int
}

// Auditor computes statistics over a finalized store.
type Auditor struct {
	st  *store.Store
	cfg Config

	cur    []*store.Record
	kerb   map[string]bool
	groups []string
}

// New binds an auditor to a store. The store must already have had
// potfile correlation and both cracking passes applied.
func New(st *store.Store, cfg Config) *Auditor {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.ShareListCap <= 0 {
		cfg.ShareListCap = DefaultShareListCap
	}
	return &Auditor{
		st:   st,
		cfg:  cfg,
		cur:  st.Current(),
		kerb: make(map[string]bool),
	}
}

// SetKerberoastable registers the Kerberoastable full usernames.
func (a *Auditor) SetKerberoastable(usernames []string) {
	for _, u := range usernames {
		a.kerb[strings.ToLower(u)] = true
	}
}

// SetGroups registers the group names to report on, in roster order.
func (a *Auditor) SetGroups(names []string) {
	a.groups = names
}

// Empty reports the no-data condition. Callers must short-circuit to
// a "no data" report instead of running queries.
func (a *Auditor) Empty() bool {
	return len(a.cur) == 0
}

// GroupNames returns the registered group names.
func (a *Auditor) GroupNames() []string {
	return a.groups
}

// HasKerberoastable reports whether any Kerberoastable accounts were
// registered.
func (a *Auditor) HasKerberoastable() bool {
	return len(a.kerb) > 0
}

// Percent returns part/whole as a percentage rounded to two decimal
// places, and 0.0 when the whole is zero.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0.0
	}
	return math.Round(float64(part)/float64(whole)*100*100) / 100
}
