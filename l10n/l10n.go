// Package l10n holds the canonical in-memory representation shared by the
// migration and reversion pipelines.
//
// A Table is the decoded content of one legacy file: one table name, one
// language, and an ordered list of entries. Every entry value is either a
// Singular string or a Plural set of CLDR variants, never both.
package l10n

import (
	"sort"
)

// ---------------------------------------------------------------------------
// Plural rules
// ---------------------------------------------------------------------------

// Rule is one of the six CLDR plural categories.
type Rule string

const (
	RuleZero  Rule = "zero"
	RuleOne   Rule = "one"
	RuleTwo   Rule = "two"
	RuleFew   Rule = "few"
	RuleMany  Rule = "many"
	RuleOther Rule = "other"
)

// Rules lists every supported category in CLDR order.
var Rules = []Rule{RuleZero, RuleOne, RuleTwo, RuleFew, RuleMany, RuleOther}

// ParseRule maps a plural keyword to its Rule.
func ParseRule(s string) (Rule, bool) {
	for _, r := range Rules {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Entry values
// ---------------------------------------------------------------------------

// Value is the localized value of an entry: Singular or Plural.
type Value interface {
	isValue()
}

// Singular is a plain localized string.
type Singular struct {
	Text string
}

// Variant is the text used for one plural rule.
type Variant struct {
	Rule Rule
	Text string
}

// Plural is a set of variants, at most one per rule, sorted by rule name.
type Plural struct {
	Variants []Variant
}

func (Singular) isValue() {}
func (Plural) isValue()   {}

// NewPlural builds a Plural from a rule → text mapping. Unknown keys are
// dropped. ok is false when no recognized rule remains.
func NewPlural(m map[string]string) (p Plural, ok bool) {
	for k, text := range m {
		rule, known := ParseRule(k)
		if !known {
			continue
		}
		p.Variants = append(p.Variants, Variant{Rule: rule, Text: text})
	}
	sort.Slice(p.Variants, func(i, j int) bool {
		return p.Variants[i].Rule < p.Variants[j].Rule
	})
	return p, len(p.Variants) > 0
}

// Map returns the variants as rule keyword → text.
func (p Plural) Map() map[string]string {
	m := make(map[string]string, len(p.Variants))
	for _, v := range p.Variants {
		m[string(v.Rule)] = v.Text
	}
	return m
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

// Entry is a single key with its localized value.
type Entry struct {
	Key   string
	Value Value
}

// Table is the content of one legacy file for one language.
type Table struct {
	// Name is the table name, e.g. "Localizable".
	Name string
	// Language is the .lproj directory name without its suffix.
	Language string
	// Entries are unique by key.
	Entries []Entry
}

// SortEntries orders the entries by key.
func (t *Table) SortEntries() {
	sort.SliceStable(t.Entries, func(i, j int) bool {
		return t.Entries[i].Key < t.Entries[j].Key
	})
}

// SingularTable builds a table of Singular entries sorted by key.
func SingularTable(name, language string, values map[string]string) Table {
	t := Table{Name: name, Language: language, Entries: make([]Entry, 0, len(values))}
	for k, v := range values {
		t.Entries = append(t.Entries, Entry{Key: k, Value: Singular{Text: v}})
	}
	t.SortEntries()
	return t
}

// PluralTable builds a table of Plural entries sorted by key. Keys whose
// variants contain no recognized rule are left out.
func PluralTable(name, language string, values map[string]map[string]string) Table {
	t := Table{Name: name, Language: language, Entries: make([]Entry, 0, len(values))}
	for k, rules := range values {
		p, ok := NewPlural(rules)
		if !ok {
			continue
		}
		t.Entries = append(t.Entries, Entry{Key: k, Value: p})
	}
	t.SortEntries()
	return t
}
