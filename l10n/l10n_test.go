package l10n

import (
	"reflect"
	"testing"
)

func TestParseRule(t *testing.T) {
	for _, r := range Rules {
		got, ok := ParseRule(string(r))
		if !ok || got != r {
			t.Fatalf("ParseRule(%q) = %q, %v", r, got, ok)
		}
	}
	if _, ok := ParseRule("=0"); ok {
		t.Fatalf("ParseRule(=0) ok = true, want false")
	}
	if _, ok := ParseRule("Other"); ok {
		t.Fatalf("ParseRule(Other) ok = true, want false")
	}
}

func TestNewPlural_SortsByRuleName(t *testing.T) {
	p, ok := NewPlural(map[string]string{"other": "x", "zero": "y", "one": "z"})
	if !ok {
		t.Fatal("NewPlural ok = false")
	}
	want := []Variant{
		{Rule: RuleOne, Text: "z"},
		{Rule: RuleOther, Text: "x"},
		{Rule: RuleZero, Text: "y"},
	}
	if !reflect.DeepEqual(p.Variants, want) {
		t.Fatalf("Variants = %#v, want %#v", p.Variants, want)
	}
}

func TestNewPlural_DropsUnknownRules(t *testing.T) {
	p, ok := NewPlural(map[string]string{"one": "a", "NSStringFormatValueTypeKey": "li"})
	if !ok {
		t.Fatal("NewPlural ok = false")
	}
	if len(p.Variants) != 1 || p.Variants[0].Rule != RuleOne {
		t.Fatalf("Variants = %#v", p.Variants)
	}

	if _, ok := NewPlural(map[string]string{"foo": "bar"}); ok {
		t.Fatal("NewPlural with no known rule: ok = true, want false")
	}
}

func TestNewPlural_MissingOtherIsKept(t *testing.T) {
	p, ok := NewPlural(map[string]string{"one": "1 item"})
	if !ok {
		t.Fatal("NewPlural ok = false")
	}
	if got := p.Map(); !reflect.DeepEqual(got, map[string]string{"one": "1 item"}) {
		t.Fatalf("Map() = %#v", got)
	}
}

func TestSingularTable_SortedByKey(t *testing.T) {
	tbl := SingularTable("Localizable", "en", map[string]string{"b": "B", "a": "A", "c": "C"})
	var keys []string
	for _, e := range tbl.Entries {
		keys = append(keys, e.Key)
	}
	if !reflect.DeepEqual(keys, []string{"a", "b", "c"}) {
		t.Fatalf("keys = %v", keys)
	}
	if v, ok := tbl.Entries[0].Value.(Singular); !ok || v.Text != "A" {
		t.Fatalf("Entries[0].Value = %#v", tbl.Entries[0].Value)
	}
}

func TestPluralTable_SkipsEmptyRuleSets(t *testing.T) {
	tbl := PluralTable("Localizable", "en", map[string]map[string]string{
		"%lld items": {"one": "%lld item", "other": "%lld items"},
		"broken":     {"foo": "bar"},
	})
	if len(tbl.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(tbl.Entries))
	}
	if tbl.Entries[0].Key != "%lld items" {
		t.Fatalf("Entries[0].Key = %q", tbl.Entries[0].Key)
	}
}
