// Package revert splits a string catalog back into legacy .lproj files.
//
// Every language of the catalog yields <output>/<lang>.lproj/Localizable.strings
// for its plain strings and, when it has plural variations,
// <output>/<lang>.lproj/Localizable.stringsdict. A catalog does not remember
// which legacy table its keys came from, so all output uses the
// "Localizable" table.
package revert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/xcstrings-migrator/xcstrings-migrator/apperr"
	"github.com/xcstrings-migrator/xcstrings-migrator/l10n"
	"github.com/xcstrings-migrator/xcstrings-migrator/stringsdict"
	"github.com/xcstrings-migrator/xcstrings-migrator/stringsfile"
	"github.com/xcstrings-migrator/xcstrings-migrator/xcstrings"
)

// TableName is the table every reverted file belongs to.
const TableName = "Localizable"

// Options configures a reversion run.
type Options struct {
	// Path is the .xcstrings file to read.
	Path string
	// OutputDir receives the <lang>.lproj directories.
	OutputDir string

	// OnLog emits progress messages.
	OnLog func(format string, args ...any)
	// OnWarn emits warnings about catalog content that cannot be reverted.
	OnWarn func(format string, args ...any)
	// MkdirAll creates a directory and its parents (default os.MkdirAll).
	MkdirAll func(path string) error
	// WriteFile writes one output file (default os.WriteFile, mode 0644).
	WriteFile func(path string, data []byte) error
}

func (o *Options) logf(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) warnf(format string, args ...any) {
	if o.OnWarn != nil {
		o.OnWarn(format, args...)
	}
}

// Reverter runs the reversion pipeline.
type Reverter struct {
	opts Options
}

// New returns a Reverter for opts, filling in defaults.
func New(opts Options) *Reverter {
	if opts.MkdirAll == nil {
		opts.MkdirAll = func(path string) error { return os.MkdirAll(path, 0755) }
	}
	if opts.WriteFile == nil {
		opts.WriteFile = func(path string, data []byte) error { return os.WriteFile(path, data, 0644) }
	}
	return &Reverter{opts: opts}
}

// Run executes the whole pipeline. All files are attempted; written files
// are kept when a later one fails, and the export errors are joined.
func (r *Reverter) Run() error {
	c, err := r.Extract()
	if err != nil {
		return err
	}

	singular, plural := r.Split(c)
	var errs []error
	for _, t := range singular {
		if err := r.ExportStrings(t); err != nil {
			errs = append(errs, err)
		}
	}
	for _, t := range plural {
		if err := r.ExportStringsDict(t); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	r.opts.logf("Completed.")
	return nil
}

// ---------------------------------------------------------------------------
// Extract
// ---------------------------------------------------------------------------

// Extract reads and decodes the catalog at Path.
func (r *Reverter) Extract() (xcstrings.Catalog, error) {
	path := r.opts.Path
	if filepath.Ext(path) != "."+xcstrings.Ext {
		return xcstrings.Catalog{}, apperr.New(apperr.CatalogNotFound, path, nil)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return xcstrings.Catalog{}, apperr.New(apperr.CatalogNotFound, path, err)
	}

	c, err := xcstrings.ParseFile(path)
	if err != nil {
		return xcstrings.Catalog{}, apperr.New(apperr.CatalogCorrupt, path, err)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Split
// ---------------------------------------------------------------------------

// Split regroups the catalog by language: plain strings into the first
// result, plural variations into the second. Tables are ordered by
// language and entries by key.
func (r *Reverter) Split(c xcstrings.Catalog) (singular, plural []l10n.Table) {
	strs := make(map[string]*l10n.Table)
	dicts := make(map[string]*l10n.Table)
	bucket := func(m map[string]*l10n.Table, lang string) *l10n.Table {
		t, ok := m[lang]
		if !ok {
			t = &l10n.Table{Name: TableName, Language: lang}
			m[lang] = t
		}
		return t
	}

	for _, key := range sortedKeys(c.Strings) {
		locs := c.Strings[key].Localizations
		for _, lang := range sortedKeys(locs) {
			switch loc := locs[lang].(type) {
			case xcstrings.StringLocalization:
				t := bucket(strs, lang)
				t.Entries = append(t.Entries, l10n.Entry{Key: key, Value: l10n.Singular{Text: loc.StringUnit.Value}})
			case xcstrings.PluralLocalization:
				rules := make(map[string]string, len(loc.Variations.Plural))
				for rule, v := range loc.Variations.Plural {
					rules[rule] = v.StringUnit.Value
				}
				p, ok := l10n.NewPlural(rules)
				if !ok {
					r.opts.warnf("skipping %q (%s): no plural rule to revert", key, lang)
					continue
				}
				t := bucket(dicts, lang)
				t.Entries = append(t.Entries, l10n.Entry{Key: key, Value: p})
			default:
				panic(fmt.Sprintf("revert: unhandled localization type %T", loc))
			}
		}
	}
	return flatten(strs), flatten(dicts)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flatten(m map[string]*l10n.Table) []l10n.Table {
	out := make([]l10n.Table, 0, len(m))
	for _, lang := range sortedKeys(m) {
		t := *m[lang]
		t.SortEntries()
		out = append(out, t)
	}
	return out
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// lprojDir returns <OutputDir>/<lang>.lproj.
func (r *Reverter) lprojDir(lang string) string {
	return filepath.Join(r.opts.OutputDir, lang+".lproj")
}

// ExportStrings writes the singular entries of t as a .strings file.
func (r *Reverter) ExportStrings(t l10n.Table) error {
	dir := r.lprojDir(t.Language)
	path := filepath.Join(dir, t.Name+"."+stringsfile.Ext)
	if err := r.opts.MkdirAll(dir); err != nil {
		return apperr.New(apperr.ExportStrings, path, err)
	}

	values := make(map[string]string, len(t.Entries))
	for _, e := range t.Entries {
		if v, ok := e.Value.(l10n.Singular); ok {
			values[e.Key] = v.Text
		}
	}
	if err := r.opts.WriteFile(path, stringsfile.Marshal(values)); err != nil {
		return apperr.New(apperr.ExportStrings, path, err)
	}
	r.opts.logf("Succeeded to export strings file: %s (%s)", path, languageName(t.Language))
	return nil
}

// ExportStringsDict writes the plural entries of t as a .stringsdict file.
func (r *Reverter) ExportStringsDict(t l10n.Table) error {
	dir := r.lprojDir(t.Language)
	path := filepath.Join(dir, t.Name+"."+stringsdict.Ext)
	if err := r.opts.MkdirAll(dir); err != nil {
		return apperr.New(apperr.ExportStringsDict, path, err)
	}

	entries := make(map[string]l10n.Plural, len(t.Entries))
	for _, e := range t.Entries {
		if p, ok := e.Value.(l10n.Plural); ok {
			entries[e.Key] = p
		}
	}
	data, err := stringsdict.Marshal(entries)
	if err != nil {
		return apperr.New(apperr.ExportStringsDict, path, err)
	}
	if err := r.opts.WriteFile(path, data); err != nil {
		return apperr.New(apperr.ExportStringsDict, path, err)
	}
	r.opts.logf("Succeeded to export stringsdict file: %s (%s)", path, languageName(t.Language))
	return nil
}

// languageName returns the language's name in its own language, or the
// directory name itself when it is not a known tag.
func languageName(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return lang
}
