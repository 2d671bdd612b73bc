// Package stringsfile implements reading and writing of Apple .strings
// files.
//
// Format: a property list in the "strings file" text dialect: one
// "key" = "value"; pair per line, C-style comments allowed:
//
//	/* Greeting on the home screen */
//	"hello" = "Hello";
//	"Count = %lld" = "Count = %lld";
//
// Values are opaque: format specifiers such as %@ or %lld pass through
// unchanged. Files are commonly stored as UTF-16 (Xcode's historical
// default) or UTF-8; both are accepted on input, output is always UTF-8.
//
// File naming convention: one file per table per language:
//
//	en.lproj/Localizable.strings
//	ja.lproj/Localizable.strings
package stringsfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"howett.net/plist"
)

// Ext is the file extension of singular legacy files, without the dot.
const Ext = "strings"

// ErrEncoding is returned when the input is neither valid UTF-8 nor UTF-16.
var ErrEncoding = errors.New("stringsfile: invalid text encoding")

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .strings file from disk.
func ParseFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes .strings content into a key → value map.
func Parse(data []byte) (map[string]string, error) {
	text, err := toUTF8(data)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return map[string]string{}, nil
	}

	var m map[string]string
	if _, err := plist.Unmarshal(text, &m); err != nil {
		return nil, fmt.Errorf("stringsfile: %w", err)
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// toUTF8 converts data to UTF-8. UTF-16 is recognised by its byte order
// mark, or failing that by a NUL byte in the first code unit, which
// plain-text .strings content never has in UTF-8.
func toUTF8(data []byte) ([]byte, error) {
	var enc encoding.Encoding
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case len(data) >= 2 && data[0] == 0 && data[1] != 0:
		enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case len(data) >= 2 && data[0] != 0 && data[1] == 0:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	}

	if enc != nil {
		if len(data)%2 != 0 {
			return nil, ErrEncoding
		}
		out, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		data = out
	}

	if !utf8.Valid(data) {
		return nil, ErrEncoding
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal renders values as "key" = "value"; lines sorted by key and
// joined by newlines.
func Marshal(values map[string]string) []byte {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, Line(k, values[k]))
	}
	return []byte(strings.Join(lines, "\n"))
}

// Line renders a single key/value pair.
func Line(key, value string) string {
	return Quote(key) + " = " + Quote(value) + ";"
}

// Quote returns s as a quoted property-list string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\U%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// WriteFile serialises values and writes them to path, creating parent
// directories with 0755 permissions.
func WriteFile(path string, values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, Marshal(values), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
