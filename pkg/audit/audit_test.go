package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntdsaudit/ntdsaudit/pkg/crack"
	"github.com/ntdsaudit/ntdsaudit/pkg/store"
)

const (
	summerNT = "4210e68078724566518b8ad3f197a4a6" // Summer2023
	passwdNT = "64f12cddaa88057e06a81b54e73b949b" // Password1
	blankLM  = store.BlankLMHash
)

func nt(t *testing.T, password string) string {
	t.Helper()
	h, err := crack.NTLM(password)
	require.NoError(t, err)
	return h
}

func mkRecord(userFull, ntHash string) *store.Record {
	user := userFull
	if i := strings.LastIndex(userFull, `\`); i >= 0 {
		user = userFull[i+1:]
	}
	return &store.Record{
		UsernameFull:        userFull,
		Username:            user,
		LMHash:              blankLM,
		NTHash:              ntHash,
		HistoryIndex:        -1,
		HistoryBaseUsername: user,
	}
}

// fixtureAuditor builds a small but representative domain: password
// reuse, an uncracked account, username-as-password in three shapes,
// a recovered LM half, an LM-only crack, an empty-password account,
// and one history entry.
func fixtureAuditor(t *testing.T, cfg Config) (*Auditor, *store.Store) {
	t.Helper()
	st := store.New()

	alice := mkRecord(`corp\alice`, summerNT)
	alice.SetPassword("Summer2023")
	bob := mkRecord(`corp\bob`, summerNT)
	bob.SetPassword("Summer2023")
	carol := mkRecord(`corp\carol`, passwdNT)
	carol.SetPassword("Password1")
	dave := mkRecord(`corp\dave`, strings.Repeat("d", 32))
	eve := mkRecord(`corp\eve`, nt(t, "eve"))
	frank := mkRecord(`corp\frank`, nt(t, "frank"))
	frank.SetPassword("frank")
	grace := mkRecord(`corp\Grace`, nt(t, "grace"))
	grace.SetPassword("grace")

	harry := mkRecord(`corp\harry`, strings.Repeat("c", 32))
	harry.LMHash = "0182bd0bd4444bf836077a718ccdf409"
	harry.LMHashLeft = "0182bd0bd4444bf8"
	harry.LMHashRight = "36077a718ccdf409"
	harry.LMPassLeft = "PASSWOR"
	harry.HasLMLeft = true

	iris := mkRecord(`corp\iris`, nt(t, "Passw0rd"))
	iris.SetLMRecovered("Passw0rd")

	nopass := mkRecord(`corp\nopass`, store.EmptyNTHash)

	for _, r := range []*store.Record{
		alice, bob, carol, dave, eve, frank, grace, harry, iris, nopass,
	} {
		st.Insert(r)
	}

	hist := mkRecord(`corp\alice_history0`, nt(t, "OldSummer"))
	hist.HistoryIndex = 0
	hist.HistoryBaseUsername = "alice"
	hist.SetPassword("OldSummer")
	st.Insert(hist)

	require.True(t, st.TagGroup(`corp\carol`, "Domain Admins"))

	a := New(st, cfg)
	a.SetGroups([]string{"Domain Admins"})
	a.SetKerberoastable([]string{`CORP\carol`})
	return a, st
}

func TestCounts(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	c := a.Counts()

	assert.Equal(t, 10, c.Total)
	assert.Equal(t, 9, c.UniqueNT, "alice and bob share a hash")
	assert.Equal(t, 1, c.Duplicate)
	assert.Equal(t, c.Total, c.UniqueNT+c.Duplicate)
	assert.Equal(t, 6, c.Cracked)
	assert.Equal(t, 5, c.UniqueCracked)
}

func TestAllHashesOrdering(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	rows := a.AllHashes()
	require.Len(t, rows, 10)

	var users []string
	for _, r := range rows {
		users = append(users, r.UsernameFull)
	}
	assert.Equal(t, []string{
		// cracked, length descending, password as tie-break
		`corp\alice`, `corp\bob`, // Summer2023, 10
		`corp\carol`, // Password1, 9
		`corp\iris`,  // Passw0rd, 8
		`corp\frank`, `corp\Grace`, // frank < grace, 5
		// uncracked, ingestion order
		`corp\dave`, `corp\eve`, `corp\harry`, `corp\nopass`,
	}, users)

	assert.True(t, rows[3].OnlyLMCracked, "iris came from LM case recovery")
	assert.False(t, rows[6].HasPassword)
	assert.Zero(t, rows[6].Length)
}

func TestPolicyViolations(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	rows := a.PolicyViolations()
	require.Len(t, rows, 2)
	assert.Equal(t, "frank", rows[0].Username)
	assert.Equal(t, 5, rows[0].Length)
	assert.Equal(t, 8, rows[0].MinLength)
	assert.Equal(t, "Grace", rows[1].Username)
}

func TestUsernameEqualsPasswordPassesAreDisjoint(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	direct, derived, err := a.UsernameEqualsPassword()
	require.NoError(t, err)

	require.Len(t, direct, 1)
	assert.Equal(t, "frank", direct[0].Username)
	assert.Equal(t, "frank", direct[0].Password)

	require.Len(t, derived, 2)
	assert.Equal(t, `corp\eve`, derived[0].Username, "hash match on an uncracked account")
	assert.Equal(t, "eve", derived[0].Password)
	assert.Equal(t, `corp\Grace`, derived[1].Username, "case-insensitive match on a cracked account")
	assert.Equal(t, "grace", derived[1].Password)

	for _, d := range derived {
		assert.NotEqual(t, "frank", d.Password, "direct hits are not re-reported")
	}
}

func TestUsernameEqualsPasswordCrackedUPNAccount(t *testing.T) {
	st := store.New()
	svc := mkRecord("svc@corp.com", nt(t, "svc"))
	svc.SetPassword("svc")
	other := mkRecord(`corp\alice`, summerNT)
	other.SetPassword("Summer2023")
	st.Insert(svc)
	st.Insert(other)

	a := New(st, Config{MinPasswordLength: 8})
	direct, derived, err := a.UsernameEqualsPassword()
	require.NoError(t, err)

	assert.Empty(t, direct, "password does not equal the full UPN")
	require.Len(t, derived, 1,
		"the bare name stripped from the UPN hash-matches the cracked password")
	assert.Equal(t, "svc@corp.com", derived[0].Username)
	assert.Equal(t, "svc", derived[0].Password)
}

func TestKerberoastableCracked(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	assert.True(t, a.HasKerberoastable())

	rows := a.KerberoastableCracked()
	require.Len(t, rows, 1)
	assert.Equal(t, `corp\carol`, rows[0].UsernameFull)
	assert.Equal(t, "Password1", rows[0].Password)
}

func TestGroups(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	groups := a.Groups()
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "Domain Admins", g.Name)
	require.Len(t, g.Members, 1)
	assert.Equal(t, `corp\carol`, g.Members[0].UsernameFull)
	assert.Equal(t, 1, g.Members[0].ShareCount)
	assert.Equal(t, `corp\carol`, g.Members[0].SharedWith)
	assert.False(t, g.Members[0].NonBlankLM)

	require.Len(t, g.Cracked, 1)
	assert.Equal(t, 1, g.CrackedCount)
	assert.Equal(t, 100.0, g.PercentCracked)
}

func TestGroupShareListCap(t *testing.T) {
	_, st := fixtureAuditor(t, Config{MinPasswordLength: 8, ShareListCap: 2})
	shared := mkRecord(`corp\carol2`, passwdNT)
	shared.SetPassword("Password1")
	st.Insert(shared)
	require.True(t, st.TagGroup(`corp\carol2`, "Domain Admins"))

	// rebuild so the cached current set sees the new record
	a2 := New(st, Config{MinPasswordLength: 8, ShareListCap: 2})
	a2.SetGroups([]string{"Domain Admins"})

	g := a2.Groups()[0]
	require.Len(t, g.Members, 2)
	assert.Equal(t, "Too Many to List", g.Members[0].SharedWith)
	assert.Equal(t, 2, g.Members[0].ShareCount)
}

func TestLMHashCounts(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	c := a.LMHashCounts()
	assert.Equal(t, 1, c.NonBlank)
	assert.Equal(t, 1, c.UniqueNonBlank)
}

func TestLMCrackedNTUncracked(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	rows := a.LMCrackedNTUncracked()
	require.Len(t, rows, 1)
	assert.Equal(t, "0182bd0bd4444bf836077a718ccdf409", rows[0].LMHash)
	assert.True(t, rows[0].HasLeft)
	assert.Equal(t, "PASSWOR", rows[0].LeftPass)
	assert.False(t, rows[0].HasRight)
}

func TestOnlyLMCracked(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	rows, unique := a.OnlyLMCracked()
	require.Len(t, rows, 1)
	assert.Equal(t, `corp\iris`, rows[0].UsernameFull)
	assert.Equal(t, "Passw0rd", rows[0].Password)
	assert.Equal(t, 1, unique)
}

func TestLengthDistribution(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	dist := a.LengthDistribution()
	require.Len(t, dist, 4)

	assert.Equal(t, 5, dist[0].Length)
	assert.Equal(t, 2, dist[0].Count)
	assert.ElementsMatch(t, []string{"frank", "Grace"}, dist[0].Usernames)
	assert.Equal(t, 8, dist[1].Length)
	assert.Equal(t, 9, dist[2].Length)
	assert.Equal(t, 10, dist[3].Length)
	assert.Equal(t, 2, dist[3].Count)
}

func TestRankedLengths(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	ranked := a.RankedLengths()
	assert.Equal(t, []LengthCount{
		{Count: 2, Length: 5},
		{Count: 2, Length: 10},
		{Count: 1, Length: 8},
		{Count: 1, Length: 9},
	}, ranked)
}

func TestTopPasswords(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	top := a.TopPasswords()
	require.Len(t, top, 5)
	assert.Equal(t, PasswordCount{Password: "Summer2023", Count: 2}, top[0])
	assert.Equal(t, "Passw0rd", top[1].Password, "singletons ranked by password")
	assert.Equal(t, "Password1", top[2].Password)
	assert.Equal(t, "frank", top[3].Password)
	assert.Equal(t, "grace", top[4].Password)
}

func TestTopPasswordsTruncation(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8, TopN: 2})
	top := a.TopPasswords()
	require.Len(t, top, 2)
	assert.Equal(t, "Summer2023", top[0].Password)
}

func TestPasswordReuse(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	rows := a.PasswordReuse()
	require.NotEmpty(t, rows)

	assert.Equal(t, summerNT, rows[0].NTHash)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, []string{"alice", "bob"}, rows[0].Usernames)

	for _, row := range rows {
		assert.NotEqual(t, store.EmptyNTHash, row.NTHash, "empty-password hash is excluded")
	}
}

func TestHistory(t *testing.T) {
	a, _ := fixtureAuditor(t, Config{MinPasswordLength: 8})
	chains, maxIdx := a.History()
	assert.Equal(t, 0, maxIdx)
	require.NotEmpty(t, chains)

	assert.Equal(t, "alice", chains[0].BaseUsername)
	require.Len(t, chains[0].Passwords, 2)
	assert.Equal(t, "Summer2023", chains[0].Passwords[0])
	assert.Equal(t, "OldSummer", chains[0].Passwords[1])
	assert.True(t, chains[0].Known[0])
	assert.True(t, chains[0].Known[1])
}

func TestEmpty(t *testing.T) {
	a := New(store.New(), Config{})
	assert.True(t, a.Empty())

	b, _ := fixtureAuditor(t, Config{})
	assert.False(t, b.Empty())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 66.67, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(7, 7))
	assert.Equal(t, 0.0, Percent(0, 9))
}
