package ingest

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ntdsaudit/ntdsaudit/internal/textenc"
)

// Group is one roster: a display name and the identities it lists.
// Identities are in the same domain\user form as the NTDS file.
type Group struct {
	Name    string
	Members []string
}

// ParseRoster extracts group member identities from a roster file's
// raw bytes. Two formats are auto-detected:
//
// PowerView export, as produced by
//
//	Get-NetGroupMember -GroupName "Enterprise Admins" ... > EA.txt
//
// which PowerShell redirects as UTF-16 and which carries
// MemberDomain:/MemberName: line pairs, recombined into domain\user.
//
// If that yields zero identities the file is re-read as a flat list
// of one identity per line in the named code page.
func ParseRoster(data []byte, encName string) ([]string, error) {
	if members := parsePowerView(data); len(members) > 0 {
		return members, nil
	}

	r, err := textenc.NewReader(strings.NewReader(string(data)), encName)
	if err != nil {
		return nil, err
	}
	var members []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line != "" {
			members = append(members, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read roster")
	}
	return members, nil
}

func parsePowerView(data []byte) []string {
	text, err := textenc.DecodeUTF16(data)
	if err != nil {
		return nil
	}

	var members []string
	domain := ""
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "MemberDomain") {
			if _, v, ok := strings.Cut(line, ":"); ok {
				domain = strings.TrimSpace(v)
			}
		}
		if strings.Contains(line, "MemberName") {
			if _, v, ok := strings.Cut(line, ":"); ok {
				members = append(members, domain+`\`+strings.TrimSpace(v))
			}
		}
	}
	return members
}

// LoadGroupDir loads every roster file in a directory, sorted by
// filename. Each file's base name (extension stripped) becomes the
// group label. Entries that are not regular files, or that are empty,
// are skipped with a diagnostic.
func LoadGroupDir(dir, encName string, log zerolog.Logger) ([]Group, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read groups directory")
	}

	var groups []Group
	for _, ent := range entries {
		if !ent.Type().IsRegular() {
			log.Warn().Str("entry", ent.Name()).Msg("skipping non-regular groups entry")
			continue
		}
		path := filepath.Join(dir, ent.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", ent.Name()).Msg("skipping unreadable group file")
			continue
		}
		if len(data) == 0 {
			log.Warn().Str("file", ent.Name()).Msg("skipping empty group file")
			continue
		}

		members, err := ParseRoster(data, encName)
		if err != nil {
			log.Warn().Err(err).Str("file", ent.Name()).Msg("skipping unparsable group file")
			continue
		}

		name := strings.TrimSuffix(ent.Name(), filepath.Ext(ent.Name()))
		groups = append(groups, Group{Name: name, Members: members})
		log.Info().Str("group", name).Int("members", len(members)).Msg("loaded group roster")
	}
	return groups, nil
}
