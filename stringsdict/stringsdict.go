// Package stringsdict implements reading and writing of Apple .stringsdict
// plural rule files.
//
// A .stringsdict file is a property list whose top-level dictionary maps each
// localization key to a format description:
//
//	<key>%lld item(s)</key>
//	<dict>
//	    <key>NSStringLocalizedFormatKey</key>
//	    <string>%#@format@</string>
//	    <key>format</key>
//	    <dict>
//	        <key>NSStringFormatSpecTypeKey</key>
//	        <string>NSStringPluralRuleType</string>
//	        <key>NSStringFormatValueTypeKey</key>
//	        <string>li</string>
//	        <key>one</key>
//	        <string>%lld item</string>
//	        <key>other</key>
//	        <string>%lld items</string>
//	    </dict>
//	</dict>
//
// Only the plural rule type is understood; the variable named inside the
// format key selects the sub-dictionary holding the CLDR rule strings.
package stringsdict

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/xcstrings-migrator/xcstrings-migrator/l10n"
	"howett.net/plist"
)

// Ext is the file extension of plural legacy files, without the dot.
const Ext = "stringsdict"

// Property list keys.
const (
	KeyLocalizedFormat = "NSStringLocalizedFormatKey"
	KeySpecType        = "NSStringFormatSpecTypeKey"
	KeyValueType       = "NSStringFormatValueTypeKey"

	// PluralRuleType is the only supported NSStringFormatSpecTypeKey value.
	PluralRuleType = "NSStringPluralRuleType"
)

// Values written on export.
const (
	exportVariable  = "format"
	exportValueType = "li"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

var reVariable = regexp.MustCompile(`%#@([^@]+)@`)

// VariableName extracts the variable name from a format key such as
// "%#@format@". The first variable wins.
func VariableName(formatKey string) (string, bool) {
	m := reVariable.FindStringSubmatch(formatKey)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseFile reads and parses a .stringsdict file from disk.
func ParseFile(path string) (map[string]map[string]string, error) {
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

// Parse decodes a .stringsdict property list (XML, binary or text) into
// key → rule → text. Entries that are not well-formed plural rule
// descriptions, or that carry no CLDR rule, are left out.
func Parse(data []byte) (map[string]map[string]string, error) {
	var doc map[string]interface{}
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("stringsdict: %w", err)
	}

	out := make(map[string]map[string]string, len(doc))
	for key, raw := range doc {
		if rules := parseEntry(raw); len(rules) > 0 {
			out[key] = rules
		}
	}
	return out, nil
}

// parseEntry returns the rule strings of one top-level entry, or nil.
func parseEntry(raw interface{}) map[string]string {
	entry, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	formatKey, ok := entry[KeyLocalizedFormat].(string)
	if !ok {
		return nil
	}
	name, ok := VariableName(formatKey)
	if !ok {
		return nil
	}
	spec, ok := entry[name].(map[string]interface{})
	if !ok {
		return nil
	}
	if typ, _ := spec[KeySpecType].(string); typ != PluralRuleType {
		return nil
	}

	rules := make(map[string]string)
	for _, rule := range l10n.Rules {
		if text, ok := spec[string(rule)].(string); ok {
			rules[string(rule)] = text
		}
	}
	if len(rules) == 0 {
		return nil
	}
	return rules
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal encodes plural entries as an XML property list. Each entry gets a
// "%#@format@" format key and a "format" sub-dictionary with its rules.
func Marshal(entries map[string]l10n.Plural) ([]byte, error) {
	doc := make(map[string]interface{}, len(entries))
	for key, p := range entries {
		spec := map[string]string{
			KeySpecType:  PluralRuleType,
			KeyValueType: exportValueType,
		}
		for _, v := range p.Variants {
			spec[string(v.Rule)] = v.Text
		}
		doc[key] = map[string]interface{}{
			KeyLocalizedFormat: "%#@" + exportVariable + "@",
			exportVariable:     spec,
		}
	}

	data, err := plist.MarshalIndent(doc, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("stringsdict: %w", err)
	}
	return data, nil
}

// WriteFile encodes entries and writes them to path, creating parent
// directories with 0755 permissions.
func WriteFile(path string, entries map[string]l10n.Plural) error {
	data, err := Marshal(entries)
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
