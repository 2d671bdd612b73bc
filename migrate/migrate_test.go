package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xcstrings-migrator/xcstrings-migrator/apperr"
	"github.com/xcstrings-migrator/xcstrings-migrator/l10n"
	"github.com/xcstrings-migrator/xcstrings-migrator/xcstrings"
)

const pluralDict = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>%lld item(s)</key>
	<dict>
		<key>NSStringLocalizedFormatKey</key>
		<string>%#@format@</string>
		<key>format</key>
		<dict>
			<key>NSStringFormatSpecTypeKey</key>
			<string>NSStringPluralRuleType</string>
			<key>NSStringFormatValueTypeKey</key>
			<string>lld</string>
			<key>other</key>
			<string>%lld items</string>
			<key>zero</key>
			<string>%lld item</string>
			<key>one</key>
			<string>%lld item</string>
		</dict>
	</dict>
</dict>
</plist>
`

// writeTree creates files (relative path → content) under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("os.MkdirAll() error: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("os.WriteFile() error: %v", err)
		}
	}
	return root
}

func TestDiscover_NoInputFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"dummy/Localizable.strings": `"a" = "b";`,
		"empty.lproj/README.md":     "nothing",
	})
	tests := []struct {
		name  string
		paths []string
	}{
		{name: "no paths", paths: nil},
		{name: "not lproj", paths: []string{filepath.Join(root, "dummy")}},
		{name: "lproj missing", paths: []string{filepath.Join(root, "not-exist.lproj")}},
		{name: "lproj without strings files", paths: []string{filepath.Join(root, "empty.lproj")}},
	}
	for _, tc := range tests {
		m := New(Options{Paths: tc.paths})
		_, err := m.Discover()
		if !errors.Is(err, apperr.NoInputFiles) {
			t.Fatalf("%s: Discover() error = %v, want NoInputFiles", tc.name, err)
		}
	}
}

func TestDiscover_ListsBothKinds(t *testing.T) {
	root := writeTree(t, map[string]string{
		"full.lproj/Localizable.strings":     `"key" = "value";`,
		"full.lproj/Localizable.stringsdict": pluralDict,
		"full.lproj/InfoPlist.strings":       `"CFBundleName" = "App";`,
		"full.lproj/notes.txt":               "ignored",
	})
	m := New(Options{Paths: []string{filepath.Join(root, "full.lproj") + "/"}})
	files, err := m.Discover()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, f := range files {
		got = append(got, fmt.Sprintf("%s/%s/%d", f.Language, f.Table, f.Kind))
	}
	want := []string{
		"full/InfoPlist/0",
		"full/Localizable/0",
		"full/Localizable/1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Discover() = %v, want %v", got, want)
	}
}

func TestExtract_SkipsMalformedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"en.lproj/Good.strings":   `"hello" = "Hello";`,
		"en.lproj/Broken.strings": `"hello" "Hello"`,
	})
	var warnings []string
	m := New(Options{
		Paths:   []string{filepath.Join(root, "en.lproj")},
		Verbose: true,
		OnWarn: func(format string, args ...any) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		},
	})
	tables, err := m.Extract()
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 1 || tables[0].Name != "Good" {
		t.Fatalf("Extract() = %#v, want only Good", tables)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Broken.strings") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestExtract_SingularAndPlural(t *testing.T) {
	root := writeTree(t, map[string]string{
		"full.lproj/Localizable.strings":     "\"\\\"Hello %@\\\"\" = \"\\\"Hello %@\\\"\";\n\"path\" = \"/\";\n",
		"full.lproj/Localizable.stringsdict": pluralDict,
	})
	m := New(Options{Paths: []string{filepath.Join(root, "full.lproj")}})
	got, err := m.Extract()
	if err != nil {
		t.Fatal(err)
	}
	want := []l10n.Table{
		{
			Name:     "Localizable",
			Language: "full",
			Entries: []l10n.Entry{
				{Key: `"Hello %@"`, Value: l10n.Singular{Text: `"Hello %@"`}},
				{Key: "path", Value: l10n.Singular{Text: "/"}},
			},
		},
		{
			Name:     "Localizable",
			Language: "full",
			Entries: []l10n.Entry{
				{Key: "%lld item(s)", Value: l10n.Plural{Variants: []l10n.Variant{
					{Rule: l10n.RuleOne, Text: "%lld item"},
					{Rule: l10n.RuleOther, Text: "%lld items"},
					{Rule: l10n.RuleZero, Text: "%lld item"},
				}}},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %#v, want %#v", got, want)
	}
}

func TestClassify(t *testing.T) {
	input := []l10n.Table{
		{Name: "Module1", Language: "en"},
		{Name: "Module2", Language: "en"},
		{Name: "Module1", Language: "ja"},
		{Name: "Module2", Language: "ja"},
	}
	got := Classify(input)
	want := []Bucket{
		{Table: "Module1", Records: []l10n.Table{{Name: "Module1", Language: "en"}, {Name: "Module1", Language: "ja"}}},
		{Table: "Module2", Records: []l10n.Table{{Name: "Module2", Language: "en"}, {Name: "Module2", Language: "ja"}}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Classify() = %#v, want %#v", got, want)
	}
}

func TestConvert(t *testing.T) {
	m := New(Options{SourceLanguage: "test"})
	one, _ := l10n.NewPlural(map[string]string{"one": "%lld item", "other": "%lld items"})
	b := Bucket{Table: "Module1", Records: []l10n.Table{
		{Name: "Module1", Language: "en", Entries: []l10n.Entry{
			{Key: "language", Value: l10n.Singular{Text: "English"}},
			{Key: "%lld item(s)", Value: one},
		}},
		{Name: "Module1", Language: "ja", Entries: []l10n.Entry{
			{Key: "language", Value: l10n.Singular{Text: "日本語"}},
		}},
	}}
	got := m.Convert(b)

	want := xcstrings.New("test")
	want.Set("language", "en", xcstrings.StringLocalization{StringUnit: xcstrings.Unit("English")})
	want.Set("language", "ja", xcstrings.StringLocalization{StringUnit: xcstrings.Unit("日本語")})
	want.Set("%lld item(s)", "en", xcstrings.PluralLocalization{Variations: xcstrings.Variations{
		Plural: map[string]xcstrings.PluralVariation{
			"one":   {StringUnit: xcstrings.Unit("%lld item")},
			"other": {StringUnit: xcstrings.Unit("%lld items")},
		},
	}})
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Convert() = %#v, want %#v", got, want)
	}
}

func TestConvert_LastWriteWins(t *testing.T) {
	m := New(Options{SourceLanguage: "en"})
	b := Bucket{Table: "Localizable", Records: []l10n.Table{
		{Name: "Localizable", Language: "en", Entries: []l10n.Entry{{Key: "k", Value: l10n.Singular{Text: "first"}}}},
		{Name: "Localizable", Language: "en", Entries: []l10n.Entry{{Key: "k", Value: l10n.Singular{Text: "second"}}}},
	}}
	got := m.Convert(b)
	loc, ok := got.Strings["k"].Localizations["en"].(xcstrings.StringLocalization)
	if !ok || loc.StringUnit.Value != "second" {
		t.Fatalf("k.en = %#v, want second", got.Strings["k"].Localizations["en"])
	}
}

func TestExport_WriteFailure(t *testing.T) {
	m := New(Options{
		OutputDir: "output",
		WriteFile: func(string, []byte) error { return os.ErrPermission },
	})
	err := m.Export("Localizable", xcstrings.New("test"))
	if !errors.Is(err, apperr.ExportCatalog) {
		t.Fatalf("Export() error = %v, want ExportCatalog", err)
	}
}

func TestExport_Verbose(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		var stdout bytes.Buffer
		var logs []string
		var paths []string
		m := New(Options{
			OutputDir: "output",
			Verbose:   verbose,
			Stdout:    &stdout,
			OnLog: func(format string, args ...any) {
				logs = append(logs, fmt.Sprintf(format, args...))
			},
			WriteFile: func(path string, _ []byte) error {
				paths = append(paths, path)
				return nil
			},
		})
		c := xcstrings.New("test")
		c.Set("path", "en", xcstrings.StringLocalization{StringUnit: xcstrings.Unit("/")})
		if err := m.Export("Localizable", c); err != nil {
			t.Fatal(err)
		}

		if want := []string{filepath.Join("output", "Localizable.xcstrings")}; !reflect.DeepEqual(paths, want) {
			t.Fatalf("verbose=%v: paths = %v, want %v", verbose, paths, want)
		}
		if len(logs) != 1 {
			t.Fatalf("verbose=%v: logs = %v, want one line", verbose, logs)
		}
		printed := stdout.String()
		if verbose && !strings.Contains(printed, `"value" : "/"`) {
			t.Fatalf("verbose output = %q, want catalog JSON", printed)
		}
		if !verbose && printed != "" {
			t.Fatalf("quiet output = %q, want empty", printed)
		}
	}
}

func TestRun_ConcreteScenario(t *testing.T) {
	root := writeTree(t, map[string]string{
		"en.lproj/Localizable.strings": `"hello" = "Hello";`,
		"ja.lproj/Localizable.strings": `"hello" = "こんにちは";`,
	})
	out := filepath.Join(root, "out")
	m := New(Options{
		SourceLanguage: "en",
		Paths:          []string{filepath.Join(root, "en.lproj"), filepath.Join(root, "ja.lproj")},
		OutputDir:      out,
	})
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}

	c, err := xcstrings.ParseFile(filepath.Join(out, "Localizable.xcstrings"))
	if err != nil {
		t.Fatal(err)
	}
	if c.SourceLanguage != "en" || c.Version != "1.0" {
		t.Fatalf("catalog header = %q/%q", c.SourceLanguage, c.Version)
	}
	for lang, want := range map[string]string{"en": "Hello", "ja": "こんにちは"} {
		loc, ok := c.Strings["hello"].Localizations[lang].(xcstrings.StringLocalization)
		if !ok || loc.StringUnit.Value != want || loc.StringUnit.State != "translated" {
			t.Fatalf("hello.%s = %#v, want %q", lang, c.Strings["hello"].Localizations[lang], want)
		}
	}
}

func TestRun_OneCatalogPerTable(t *testing.T) {
	root := writeTree(t, map[string]string{
		"en.lproj/Module1.strings": `"a" = "A";`,
		"en.lproj/Module2.strings": `"b" = "B";`,
		"en.lproj/Broken.strings":  `"c" = ;`,
	})
	out := filepath.Join(root, "out")
	m := New(Options{SourceLanguage: "en", Paths: []string{filepath.Join(root, "en.lproj")}, OutputDir: out})
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Module1.xcstrings", "Module2.xcstrings"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "Broken.xcstrings")); !os.IsNotExist(err) {
		t.Fatalf("Broken.xcstrings exists or stat failed: %v", err)
	}
}

func TestRun_ExportsRemainingTablesAfterFailure(t *testing.T) {
	root := writeTree(t, map[string]string{
		"en.lproj/A.strings": `"a" = "A";`,
		"en.lproj/B.strings": `"b" = "B";`,
	})
	var written []string
	m := New(Options{
		SourceLanguage: "en",
		Paths:          []string{filepath.Join(root, "en.lproj")},
		OutputDir:      "out",
		WriteFile: func(path string, _ []byte) error {
			if filepath.Base(path) == "A.xcstrings" {
				return os.ErrPermission
			}
			written = append(written, filepath.Base(path))
			return nil
		},
	})
	err := m.Run()
	if apperr.ExitCode(err) != apperr.ExportCatalog.ExitCode() {
		t.Fatalf("Run() error = %v, want ExportCatalog", err)
	}
	if !reflect.DeepEqual(written, []string{"B.xcstrings"}) {
		t.Fatalf("written = %v, want [B.xcstrings]", written)
	}
}

func TestRun_DuplicateFilesLastWins(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Module1/en.lproj/Localizable.strings": `"k" = "first";`,
		"Module2/en.lproj/Localizable.strings": `"k" = "second";`,
	})
	out := filepath.Join(root, "out")
	m := New(Options{
		SourceLanguage: "en",
		Paths: []string{
			filepath.Join(root, "Module1", "en.lproj"),
			filepath.Join(root, "Module2", "en.lproj"),
		},
		OutputDir: out,
	})
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	c, err := xcstrings.ParseFile(filepath.Join(out, "Localizable.xcstrings"))
	if err != nil {
		t.Fatal(err)
	}
	loc := c.Strings["k"].Localizations["en"].(xcstrings.StringLocalization)
	if loc.StringUnit.Value != "second" {
		t.Fatalf("k.en = %q, want %q", loc.StringUnit.Value, "second")
	}
}
