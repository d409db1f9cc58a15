package ingest

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ntdsaudit/ntdsaudit/pkg/store"
)

var (
	hexHash32 = regexp.MustCompile(`^[0-9a-f]{32}$`)
	historyRe = regexp.MustCompile(`(?i)^(.*)_history([0-9]+)$`)
)

// Filter decides which parsed accounts enter the store. Machine
// accounts and krbtgt are excluded by default: machine passwords are
// 120 random characters nobody audits, and krbtgt's hash deserves no
// unnecessary disclosure.
type Filter struct {
	IncludeMachineAccounts bool
	IncludeKrbtgt          bool
}

// Excludes reports whether the short username is filtered out.
func (f Filter) Excludes(username string) bool {
	if !f.IncludeMachineAccounts && strings.HasSuffix(username, "$") {
		return true
	}
	if !f.IncludeKrbtgt && username == "krbtgt" {
		return true
	}
	return false
}

// ParseDumpLine parses one canonical dump line of the form
// domain\user:rid:lmhash:nthash:... into a record. The second return
// is false for malformed lines, which callers skip and count; a bad
// line is never an error.
func ParseDumpLine(line string) (*store.Record, bool) {
	line = strings.TrimRight(line, "\r\n")
	vals := strings.Split(line, ":")
	if len(vals) < 4 {
		return nil, false
	}

	usernameFull := vals[0]
	lmHash := strings.ToLower(vals[2])
	ntHash := strings.ToLower(vals[3])
	if !hexHash32.MatchString(ntHash) {
		return nil, false
	}

	username := usernameFull
	if i := strings.LastIndex(usernameFull, `\`); i >= 0 {
		username = usernameFull[i+1:]
	}

	r := &store.Record{
		UsernameFull:        usernameFull,
		Username:            username,
		LMHash:              lmHash,
		NTHash:              ntHash,
		HistoryIndex:        -1,
		HistoryBaseUsername: usernameFull,
		Groups:              make(map[string]bool),
	}
	if hexHash32.MatchString(lmHash) {
		r.LMHashLeft = lmHash[:16]
		r.LMHashRight = lmHash[16:]
	}
	if m := historyRe.FindStringSubmatch(usernameFull); m != nil {
		r.HistoryBaseUsername = m[1]
		if idx, err := strconv.Atoi(m[2]); err == nil {
			r.HistoryIndex = idx
		}
	}
	return r, true
}

// DumpResult is the outcome of loading one NTDS dump file.
type DumpResult struct {
	Records  []*store.Record
	Read     int // well-formed account lines
	Filtered int // excluded by the account filter
	Unparsed int // malformed lines skipped
}

// LoadDump reads an NTDS dump file, applying the account filter.
// Filtering is counted separately from parse failures so the report
// can state both.
func LoadDump(path string, filter Filter) (*DumpResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open NTDS file")
	}
	defer f.Close()

	res := &DumpResult{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := ParseDumpLine(line)
		if !ok {
			res.Unparsed++
			continue
		}
		res.Read++
		if filter.Excludes(rec.Username) {
			res.Filtered++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read NTDS file")
	}
	return res, nil
}
