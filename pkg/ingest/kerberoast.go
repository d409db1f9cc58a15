package ingest

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ntdsaudit/ntdsaudit/internal/textenc"
)

// Kerberoastable account lines arrive in one of two layouts: a plain
// domain\user:nthash:... export, or a full pwdump-style NTDS line.
var (
	kerbDomainRe = regexp.MustCompile(`^([^\\]+\\[^:]+):([0-9A-Fa-f]{32}).*$`)
	kerbPwdumpRe = regexp.MustCompile(`^([^:]+):(\d+):([0-9A-Fa-f]{32}|\*):([0-9A-Fa-f]{32}|\*):.*$`)

	noHashPlaceholder = strings.Repeat("*", 32)
)

// KerbEntry identifies one Kerberoastable account.
type KerbEntry struct {
	UsernameFull string // lowercased
	NTHash       string // lowercase hex
}

// ParseKerbLine parses one Kerberoastable-account line. A 32-star NT
// hash means "no hash recorded" and is rejected as not actionable.
func ParseKerbLine(line string) (KerbEntry, bool) {
	line = strings.TrimSpace(line)

	var user, nt string
	if m := kerbDomainRe.FindStringSubmatch(line); m != nil {
		user, nt = m[1], m[2]
	} else if m := kerbPwdumpRe.FindStringSubmatch(line); m != nil {
		user, nt = m[1], m[4]
	} else {
		return KerbEntry{}, false
	}

	nt = strings.ToLower(nt)
	if nt == noHashPlaceholder || nt == "*" {
		return KerbEntry{}, false
	}
	return KerbEntry{
		UsernameFull: strings.ToLower(user),
		NTHash:       nt,
	}, true
}

// LoadKerberoastFile reads a Kerberoastable-account file in the named
// code page. A file with zero valid lines yields an empty set, not an
// error; the downstream statistic is simply omitted.
func LoadKerberoastFile(path, encName string, log zerolog.Logger) ([]KerbEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open kerberoast file")
	}
	defer f.Close()

	r, err := textenc.NewReader(f, encName)
	if err != nil {
		return nil, err
	}

	var entries []KerbEntry
	lineNo := 0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		e, ok := ParseKerbLine(sc.Text())
		if !ok {
			log.Debug().Int("line", lineNo).Msg("kerberoast line skipped")
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read kerberoast file")
	}
	return entries, nil
}
