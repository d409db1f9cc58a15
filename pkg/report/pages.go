package report

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ntdsaudit/ntdsaudit/pkg/audit"
)

// Renderer writes the full report directory for one audit run.
type Renderer struct {
	Dir      string // report directory, created on demand
	MainFile string // filename of the summary front page
	San      Sanitizer
}

var unsafeFilenameRe = regexp.MustCompile(`[<>:"/\\|?*]`)

// Render produces every report page and returns the main page
// filename. With an empty auditor it short-circuits to a "no data"
// page instead of computing statistics.
func (rn *Renderer) Render(a *audit.Auditor) (string, error) {
	if a.Empty() {
		nb := NewBuilder("Domain Password Audit Report")
		nb.AddText("<div class='text-left'>No password hashes were found after account " +
			"filtering. Check the NTDS file format and the machine-account and krbtgt " +
			"filter flags.</div>")
		return nb.Write(rn.Dir, rn.MainFile)
	}

	main := NewBuilder("Domain Password Audit Report")
	var summary [][]string
	addSummary := func(count, percent, desc, moreInfo string) {
		summary = append(summary, []string{count, percent, desc, moreInfo})
	}

	counts := a.Counts()

	// All hashes.
	allRows := make([][]string, 0, counts.Total)
	for _, r := range a.AllHashes() {
		row := []string{r.UsernameFull, passwordCell(r.Password, r.HasPassword),
			lengthCell(r.Length, r.HasPassword), r.NTHash, yesOrEmpty(r.OnlyLMCracked)}
		allRows = append(allRows, rn.San.Row(row, []int{1}, []int{3}))
	}
	fn, err := rn.writeTable("all hashes.html", allRows,
		[]string{"Username", "Password", "Password Length", "NT Hash", "Only LM Cracked"})
	if err != nil {
		return "", err
	}
	addSummary(itoa(counts.Total), "", "Password Hashes", link(fn))
	addSummary(itoa(counts.UniqueNT), pct(counts.UniqueNT, counts.Total),
		"Unique Password Hashes", "")
	addSummary(itoa(counts.Duplicate), pct(counts.Duplicate, counts.Total),
		"Duplicate Password Hashes Identified Through Audit", "")
	addSummary(itoa(counts.Cracked), pct(counts.Cracked, counts.Total),
		"Passwords Discovered Through Cracking", "")
	addSummary(itoa(counts.UniqueCracked), pct(counts.UniqueCracked, counts.Total),
		"Unique Passwords Discovered Through Cracking", "")

	// Kerberoastable accounts.
	if a.HasKerberoastable() {
		kerb := a.KerberoastableCracked()
		if len(kerb) > 0 {
			rows := make([][]string, 0, len(kerb))
			for _, r := range kerb {
				row := []string{r.UsernameFull, r.NTHash, r.Password}
				rows = append(rows, rn.San.Row(row, []int{2}, []int{1}))
			}
			fn, err = rn.writeTable("kerberoast_cracked.html", rows,
				[]string{"Username", "NT Hash", "Password"})
			if err != nil {
				return "", err
			}
			addSummary(itoa(len(kerb)), pct(len(kerb), counts.Total),
				"Cracked Kerberoastable Accounts", link(fn))
		}
	}

	// Per-group pages plus the groups summary page.
	if err := rn.renderGroups(a, addSummary); err != nil {
		return "", err
	}

	// Password policy violations.
	if violations := a.PolicyViolations(); len(violations) > 0 {
		rows := make([][]string, 0, len(violations))
		for _, v := range violations {
			row := []string{v.Username, itoa(v.Length), itoa(v.MinLength), v.Password}
			rows = append(rows, rn.San.Row(row, []int{3}, nil))
		}
		fn, err = rn.writeTable("password_policy_violations.html", rows,
			[]string{"Username", "Password Length", "Policy Min Length", "Password"})
		if err != nil {
			return "", err
		}
		addSummary(itoa(len(violations)), pct(len(violations), counts.Total),
			fmt.Sprintf("Accounts With Passwords Shorter Than %d Characters",
				violations[0].MinLength), link(fn))
	}

	// Username as password, both passes.
	direct, derived, err := a.UsernameEqualsPassword()
	if err != nil {
		return "", err
	}
	if len(direct) > 0 {
		fn, err = rn.writeUserPass("username_equals_password.html", direct,
			[]string{"Username", "Password", "Password Length", "NT Hash"})
		if err != nil {
			return "", err
		}
		addSummary(itoa(len(direct)), pct(len(direct), counts.Total),
			"Accounts Using Username As Password", link(fn))
	}
	if len(derived) > 0 {
		fn, err = rn.writeUserPass("username_equals_password_by_hash.html", derived,
			[]string{"Username", "Derived Password (from username)", "Password Length", "NT Hash"})
		if err != nil {
			return "", err
		}
		addSummary(itoa(len(derived)), pct(len(derived), counts.Total),
			"Accounts Using Username As Password Not Cracked (by hash)", link(fn))
	}

	// LM hash presence.
	lm := a.LMHashCounts()
	addSummary(itoa(lm.NonBlank), pct(lm.NonBlank, counts.Total), "LM Hashes (Non-blank)", "")
	addSummary(itoa(lm.UniqueNonBlank), pct(lm.UniqueNonBlank, counts.Total),
		"Unique LM Hashes (Non-blank)", "")

	// LM cracked where NT hash was not.
	if lmRows := a.LMCrackedNTUncracked(); len(lmRows) > 0 {
		rows := make([][]string, 0, len(lmRows))
		for _, r := range lmRows {
			row := []string{r.LMHash, r.LeftPass, r.RightPass, r.NTHash}
			rows = append(rows, rn.San.Row(row, []int{1, 2}, []int{0, 3}))
		}
		fn, err = rn.writeTable("lm_noncracked.html", rows,
			[]string{"LM Hash", "Left Portion of Password", "Right Portion of Password", "NT Hash"})
		if err != nil {
			return "", err
		}
		main.AddText(fmt.Sprintf("<div class='text-left'>WARNING there were %d unique LM "+
			"hashes for which you do not have the password. %s<br><br>Cracking these to "+
			"their 7-character upcased representation is easy with Hashcat and this tool "+
			"will determine the correct case and concatenate the two halves of the "+
			"password for you!<br><br>Try this Hashcat command to crack all LM hashes:<br>"+
			"<strong>./hashcat64.bin -m 3000 -a 3 customer.ntds -1 ?a ?1?1?1?1?1?1?1 "+
			"--increment</strong><br><br>Or for John, try this:<br>"+
			"<strong>john --format=LM customer.ntds</strong></div>",
			len(lmRows), link(fn)))
	}

	// Passwords only recovered through the LM hash.
	onlyLM, uniqueOnlyLM := a.OnlyLMCracked()
	rows := make([][]string, 0, len(onlyLM))
	for _, r := range onlyLM {
		row := []string{r.UsernameFull, r.Password, itoa(r.Length), yesOrEmpty(r.OnlyLMCracked)}
		rows = append(rows, rn.San.Row(row, []int{1}, nil))
	}
	fn, err = rn.writeTable("users_only_cracked_through_lm.html", rows,
		[]string{"Username", "Password", "Password Length", "Only LM Cracked"})
	if err != nil {
		return "", err
	}
	addSummary(itoa(len(onlyLM)), pct(len(onlyLM), counts.Total),
		"Passwords Only Cracked via LM Hash", link(fn))
	addSummary(itoa(uniqueOnlyLM), pct(uniqueOnlyLM, counts.Total),
		"Unique LM Hashes Cracked Where NT Hash Was Not Cracked", "")

	// Password length distribution.
	if fn, err = rn.renderLengths(a); err != nil {
		return "", err
	}
	addSummary("", "", "Password Length Stats", link(fn))

	// Top passwords.
	top := a.TopPasswords()
	rows = rows[:0]
	for _, t := range top {
		rows = append(rows, rn.San.Row([]string{t.Password, itoa(t.Count)}, []int{0}, nil))
	}
	fn, err = rn.writeTable("top_password_stats.html", rows, []string{"Password", "Count"})
	if err != nil {
		return "", err
	}
	addSummary("", "", "Top Password Use Stats", link(fn))

	// Password reuse.
	if fn, err = rn.renderReuse(a); err != nil {
		return "", err
	}
	addSummary("", "", "Password Reuse Stats", link(fn))

	// Password history.
	if fn, err = rn.renderHistory(a); err != nil {
		return "", err
	}
	addSummary("", "", "Password History", link(fn))

	main.AddTable(summary, []string{"Count", "Percent", "Description", "More Info"},
		[]int{3}, "")
	return main.Write(rn.Dir, rn.MainFile)
}

func (rn *Renderer) renderGroups(a *audit.Auditor, addSummary func(c, p, d, m string)) error {
	groups := a.Groups()
	if len(groups) == 0 {
		return nil
	}

	var groupRows [][]string
	for _, g := range groups {
		safe := unsafeFilenameRe.ReplaceAllString(g.Name, "_")

		memberRows := make([][]string, 0, len(g.Members))
		for _, m := range g.Members {
			row := []string{m.UsernameFull, m.NTHash, m.SharedWith, itoa(m.ShareCount),
				passwordCell(m.Password, m.HasPassword), yesNo(m.NonBlankLM)}
			memberRows = append(memberRows, rn.San.Row(row, []int{4}, []int{1}))
		}
		membersFn, err := rn.writeTable(safe+"_members.html", memberRows,
			[]string{"Username", "NT Hash", "Users Sharing this Hash", "Share Count",
				"Password", "Non-Blank LM Hash?"})
		if err != nil {
			return err
		}

		crackedRows := make([][]string, 0, len(g.Cracked))
		for _, c := range g.Cracked {
			row := []string{c.UsernameFull, itoa(c.Length), c.Password, yesOrEmpty(c.OnlyLMCracked)}
			crackedRows = append(crackedRows, rn.San.Row(row, []int{2}, nil))
		}
		crackedFn, err := rn.writeTable(safe+"_cracked_passwords.html", crackedRows,
			[]string{fmt.Sprintf("Username of %q Member", g.Name), "Password Length",
				"Password", "Only LM Cracked"})
		if err != nil {
			return err
		}

		groupRows = append(groupRows, []string{
			g.Name, itoa(g.MemberCount), itoa(g.CrackedCount),
			fmtFloat(g.PercentCracked) + "%",
			link(membersFn), link(crackedFn),
		})
	}

	gb := NewBuilder("Group Cracking Statistics")
	gb.AddTable(groupRows, []string{"Group Name", "# Members", "# Passwords Cracked",
		"% Cracked", "Members Details", "Cracked PW Details"}, []int{4, 5}, "")
	fn, err := gb.Write(rn.Dir, "groups_stats.html")
	if err != nil {
		return err
	}
	addSummary("", "", "Group Cracking Statistics", link(fn))
	return nil
}

func (rn *Renderer) renderLengths(a *audit.Auditor) (string, error) {
	dist := a.LengthDistribution()

	rows := make([][]string, 0, len(dist))
	for i, b := range dist {
		userRows := make([][]string, 0, len(b.Usernames))
		for _, u := range b.Usernames {
			userRows = append(userRows, []string{u})
		}
		detailFn, err := rn.writeTable(fmt.Sprintf("%dlength_usernames.html", i), userRows,
			[]string{fmt.Sprintf("Users with a password length of %d", b.Length)})
		if err != nil {
			return "", err
		}
		rows = append(rows, []string{itoa(b.Length), itoa(b.Count), link(detailFn)})
	}

	lb := NewBuilder("Password Length Stats")
	lb.AddTable(rows, []string{"Password Length", "Count", "Details"}, []int{2}, "")

	ranked := a.RankedLengths()
	rankedRows := make([][]string, 0, len(ranked))
	for _, r := range ranked {
		rankedRows = append(rankedRows, []string{itoa(r.Count), itoa(r.Length)})
	}
	lb.AddTable(rankedRows, []string{"Count", "Password Length"}, nil, "")

	return lb.Write(rn.Dir, "password_length_stats.html")
}

func (rn *Renderer) renderReuse(a *audit.Auditor) (string, error) {
	reuse := a.PasswordReuse()

	rows := make([][]string, 0, len(reuse))
	for i, r := range reuse {
		userRows := make([][]string, 0, len(r.Usernames))
		for _, u := range r.Usernames {
			userRows = append(userRows, []string{u})
		}
		caption := fmt.Sprintf("Users Sharing a hash:password of %s:%s",
			rn.San.Value(r.NTHash), rn.San.Value(r.Password))
		detailFn, err := rn.writeTable(fmt.Sprintf("%dreuse_usernames.html", i), userRows,
			[]string{caption})
		if err != nil {
			return "", err
		}
		row := rn.San.Row([]string{r.NTHash, itoa(r.Count),
			passwordCell(r.Password, r.HasPassword)}, []int{2}, []int{0})
		rows = append(rows, append(row, link(detailFn)))
	}

	rb := NewBuilder("Password Reuse Stats")
	rb.AddTable(rows, []string{"NT Hash", "Count", "Password", "Details"}, []int{3}, "")
	return rb.Write(rn.Dir, "password_reuse_stats.html")
}

func (rn *Renderer) renderHistory(a *audit.Auditor) (string, error) {
	chains, maxIdx := a.History()

	hb := NewBuilder("Password History")
	if maxIdx < 0 {
		hb.AddText("<div class='text-left'>There was no history contained in the password " +
			"files. If you would like to get the password history, run secretsdump.py with " +
			"the flag \"-history\".<br><br>Sample secretsdump.py command: secretsdump.py " +
			"-system registry/SYSTEM -ntds \"Active Directory/ntds.dit\" LOCAL " +
			"-outputfile customer -history</div>")
		return hb.Write(rn.Dir, "password_history.html")
	}

	headers := []string{"Username", "Current Password"}
	for i := 0; i <= maxIdx; i++ {
		headers = append(headers, fmt.Sprintf("History %d", i))
	}

	rows := make([][]string, 0, len(chains))
	var passwordCols []int
	for i := 1; i <= maxIdx+2; i++ {
		passwordCols = append(passwordCols, i)
	}
	for _, ch := range chains {
		row := []string{ch.BaseUsername}
		for i, pw := range ch.Passwords {
			row = append(row, passwordCell(pw, ch.Known[i]))
		}
		rows = append(rows, rn.San.Row(row, passwordCols, nil))
	}
	hb.AddTable(rows, headers, nil, "")
	return hb.Write(rn.Dir, "password_history.html")
}

func (rn *Renderer) writeTable(filename string, rows [][]string, headers []string) (string, error) {
	b := NewBuilder("Domain Password Audit Report")
	b.AddTable(rows, headers, nil, "")
	return b.Write(rn.Dir, filename)
}

func (rn *Renderer) writeUserPass(filename string, rows []audit.UserPassRow, headers []string) (string, error) {
	display := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := []string{r.Username, r.Password, itoa(r.Length), r.NTHash}
		display = append(display, rn.San.Row(row, []int{1}, []int{3}))
	}
	return rn.writeTable(filename, display, headers)
}

func passwordCell(password string, known bool) string {
	if !known {
		return ""
	}
	return password
}

func lengthCell(length int, known bool) string {
	if !known {
		return ""
	}
	return strconv.Itoa(length)
}

func yesOrEmpty(b bool) string {
	if b {
		return "Yes"
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func itoa(n int) string { return strconv.Itoa(n) }

func pct(part, whole int) string {
	return fmtFloat(audit.Percent(part, whole))
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
