// Package xcstrings implements reading and writing of Xcode string catalogs
// (.xcstrings files).
//
// A catalog is a single JSON document holding every language of one table:
//
//	{
//	  "sourceLanguage" : "en",
//	  "strings" : {
//	    "hello" : {
//	      "localizations" : {
//	        "en" : { "stringUnit" : { "state" : "translated", "value" : "Hello" } },
//	        "ja" : { "stringUnit" : { "state" : "translated", "value" : "こんにちは" } }
//	      }
//	    }
//	  },
//	  "version" : "1.0"
//	}
//
// A localization is either a string unit or a set of plural variations.
// Output is canonical: keys sorted at every level, slashes unescaped, two
// space indentation and Xcode's " : " key separator.
package xcstrings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Ext is the catalog file extension, without the dot.
const Ext = "xcstrings"

// Version is the catalog schema version written by this package.
const Version = "1.0"

// StateTranslated is the string unit state of every value written here.
const StateTranslated = "translated"

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Catalog is the top-level document. Field order matches sorted key order.
type Catalog struct {
	SourceLanguage string           `json:"sourceLanguage"`
	Strings        map[string]Entry `json:"strings"`
	Version        string           `json:"version"`
}

// New returns an empty catalog for sourceLanguage.
func New(sourceLanguage string) Catalog {
	return Catalog{
		SourceLanguage: sourceLanguage,
		Strings:        make(map[string]Entry),
		Version:        Version,
	}
}

// Entry holds every language's localization of one key.
type Entry struct {
	Localizations map[string]Localization `json:"localizations"`
}

// Set stores loc for language, replacing any previous value.
func (c Catalog) Set(key, language string, loc Localization) {
	e, ok := c.Strings[key]
	if !ok || e.Localizations == nil {
		e = Entry{Localizations: make(map[string]Localization)}
	}
	e.Localizations[language] = loc
	c.Strings[key] = e
}

// Localization is one language's value: StringLocalization or
// PluralLocalization.
type Localization interface {
	isLocalization()
}

// StringUnit is a translated string and its state.
type StringUnit struct {
	State string `json:"state"`
	Value string `json:"value"`
}

// Unit returns a translated StringUnit for value.
func Unit(value string) StringUnit {
	return StringUnit{State: StateTranslated, Value: value}
}

// StringLocalization is a plain localized string.
type StringLocalization struct {
	StringUnit StringUnit `json:"stringUnit"`
}

// PluralLocalization is a set of plural variations.
type PluralLocalization struct {
	Variations Variations `json:"variations"`
}

// Variations maps CLDR plural rule → variation. Only rules that are
// present are stored.
type Variations struct {
	Plural map[string]PluralVariation `json:"plural"`
}

// PluralVariation is the value used for one plural rule.
type PluralVariation struct {
	StringUnit StringUnit `json:"stringUnit"`
}

func (StringLocalization) isLocalization() {}
func (PluralLocalization) isLocalization() {}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// ErrNoShape is returned for a localization holding neither a string unit
// nor variations.
var ErrNoShape = errors.New("localization has neither stringUnit nor variations")

// UnmarshalJSON decodes each localization into its concrete shape. A string
// unit takes precedence over variations.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Localizations map[string]json.RawMessage `json:"localizations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Localizations == nil {
		e.Localizations = nil
		return nil
	}

	e.Localizations = make(map[string]Localization, len(raw.Localizations))
	for lang, msg := range raw.Localizations {
		loc, err := decodeLocalization(msg)
		if err != nil {
			return fmt.Errorf("localization %q: %w", lang, err)
		}
		e.Localizations[lang] = loc
	}
	return nil
}

func decodeLocalization(msg json.RawMessage) (Localization, error) {
	var probe struct {
		StringUnit *StringUnit `json:"stringUnit"`
		Variations *Variations `json:"variations"`
	}
	if err := json.Unmarshal(msg, &probe); err != nil {
		return nil, err
	}
	switch {
	case probe.StringUnit != nil:
		return StringLocalization{StringUnit: *probe.StringUnit}, nil
	case probe.Variations != nil:
		return PluralLocalization{Variations: *probe.Variations}, nil
	}
	return nil, ErrNoShape
}

// Parse decodes catalog JSON. sourceLanguage, strings and version are
// required.
func Parse(data []byte) (Catalog, error) {
	var raw struct {
		SourceLanguage *string          `json:"sourceLanguage"`
		Strings        map[string]Entry `json:"strings"`
		Version        *string          `json:"version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Catalog{}, fmt.Errorf("xcstrings: %w", err)
	}
	switch {
	case raw.SourceLanguage == nil:
		return Catalog{}, errors.New("xcstrings: missing sourceLanguage")
	case raw.Version == nil:
		return Catalog{}, errors.New("xcstrings: missing version")
	case raw.Strings == nil:
		return Catalog{}, errors.New("xcstrings: missing strings")
	}
	return Catalog{
		SourceLanguage: *raw.SourceLanguage,
		Strings:        raw.Strings,
		Version:        *raw.Version,
	}, nil
}

// ParseFile reads and parses a catalog from disk.
func ParseFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Marshal encodes c in canonical form. The result has no trailing newline.
func Marshal(c Catalog) ([]byte, error) {
	if c.Strings == nil {
		c.Strings = map[string]Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("xcstrings: %w", err)
	}
	return spaceColons(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// spaceColons rewrites the ": " key separators of indented JSON to " : ",
// leaving string contents untouched.
func spaceColons(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/16)
	inString, escaped := false, false
	for _, c := range data {
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == ':':
			out = append(out, ' ')
		}
		out = append(out, c)
	}
	return out
}

// WriteFile encodes c and writes it to path, creating parent directories
// with 0755 permissions.
func WriteFile(path string, c Catalog) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
