package ingest

import (
	"bufio"
	"encoding/hex"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	hexHash16 = regexp.MustCompile(`^[0-9a-f]{16}$`)
	hexWrapRe = regexp.MustCompile(`\$HEX\[([^\]]+)`)
)

// PotEntry is one hash:plaintext pair from a cracking tool's potfile.
// A 32-digit hash is an NT hash; a 16-digit hash is either half of an
// LM hash.
type PotEntry struct {
	Hash      string // lowercase hex, 16 or 32 digits
	Plaintext string
}

// IsNT reports whether the entry carries a full NT hash rather than
// an LM half.
func (e PotEntry) IsNT() bool {
	return len(e.Hash) == 32
}

// ParsePotLine parses one potfile line. John the Ripper prefixes
// hashes with $NT$ or $LM$; hashcat wraps non-printable plaintexts in
// $HEX[...]. The $HEX wrapper is only honored when no John prefix was
// present, since John never emits it.
func ParsePotLine(line string) (PotEntry, bool) {
	line = strings.TrimRight(line, "\r\n")
	idx := strings.Index(line, ":")
	if idx < 0 {
		return PotEntry{}, false
	}
	hash := line[:idx]
	plaintext := line[idx+1:]

	jtr := false
	if strings.HasPrefix(hash, "$NT$") || strings.HasPrefix(hash, "$LM$") {
		hash = hash[len("$NT$"):]
		jtr = true
	}
	hash = strings.ToLower(hash)
	if !hexHash32.MatchString(hash) && !hexHash16.MatchString(hash) {
		return PotEntry{}, false
	}

	if !jtr && strings.HasPrefix(plaintext, "$HEX[") {
		m := hexWrapRe.FindAllStringSubmatch(plaintext, -1)
		if len(m) == 0 {
			return PotEntry{}, false
		}
		raw, err := hex.DecodeString(m[len(m)-1][1])
		if err != nil {
			return PotEntry{}, false
		}
		// The wrapped value is a raw byte string; map each byte to
		// its character as hashcat's own tooling does.
		var sb strings.Builder
		for _, b := range raw {
			sb.WriteRune(rune(b))
		}
		plaintext = sb.String()
	}

	return PotEntry{Hash: hash, Plaintext: plaintext}, true
}

// LoadPotfile reads a potfile, returning the valid entries and the
// number of lines skipped.
func LoadPotfile(path string) ([]PotEntry, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open potfile")
	}
	defer f.Close()

	var entries []PotEntry
	skipped := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, ok := ParsePotLine(line)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "read potfile")
	}
	return entries, skipped, nil
}
