// Package textenc maps code page names onto decoders for the legacy
// 8-bit and UTF-16 text files this tool ingests.
package textenc

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DefaultName is the code page used when none is configured. Windows
// tooling that emits account lists almost always writes cp1252.
const DefaultName = "cp1252"

var encodings = map[string]encoding.Encoding{
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"cp850":        charmap.CodePage850,
	"cp437":        charmap.CodePage437,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"utf-8":        nil, // passthrough
	"utf8":         nil,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf16":        unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
}

// Lookup resolves a code page name. The nil return for UTF-8 means no
// transformation is needed.
func Lookup(name string) (encoding.Encoding, error) {
	if name == "" {
		name = DefaultName
	}
	enc, ok := encodings[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unknown encoding %q", name)
	}
	return enc, nil
}

// NewReader wraps r so that it yields UTF-8 regardless of the named
// source encoding.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return enc.NewDecoder().Reader(r), nil
}

// DecodeUTF16 decodes a byte buffer that may be UTF-16 with or
// without a BOM, defaulting to little endian. PowerView group dumps
// redirected with PowerShell's ">" arrive in this shape.
func DecodeUTF16(b []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return "", errors.Wrap(err, "utf-16 decode")
	}
	return string(out), nil
}
