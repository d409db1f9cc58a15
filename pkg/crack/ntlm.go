package crack

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/md4" //nolint:staticcheck // NT hashes are MD4 by protocol definition
	"golang.org/x/text/encoding/unicode"
)

// ErrBackendUnavailable is returned when the hash backend cannot
// produce an NT hash. Both cracking passes treat it as a hard failure
// for the affected computation rather than silently producing nothing.
var ErrBackendUnavailable = fmt.Errorf("NT hash backend unavailable")

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

// NTLM returns the NT hash of a password as lowercase hex.
//
// EDUCATIONAL: The NT Hash
//
// Windows stores passwords as MD4(UTF-16LE(password)). MD4 is
// cryptographically broken, which is precisely why a case-recovery
// search over 2^k candidates is affordable: a single hash costs one
// short MD4 block in the common case.
//
//	NTLM("")  == "31d6cfe0d16ae931b73c59d7e0c089c0"
//
// The function is case-preserving on input; the output is always
// lowercase hex.
func NTLM(password string) (string, error) {
	encoded, err := utf16le.String(password)
	if err != nil {
		return "", fmt.Errorf("%w: utf-16le encode: %v", ErrBackendUnavailable, err)
	}

	h := md4.New()
	if _, err := h.Write([]byte(encoded)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
