// Package migrate converts legacy .lproj tables into string catalogs.
//
// Run goes through Discover, Extract, Classify, Convert and Export in
// that order. Files that fail to decode are skipped; each table name ends
// up in <output>/<table>.xcstrings.
package migrate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/xcstrings-migrator/xcstrings-migrator/apperr"
	"github.com/xcstrings-migrator/xcstrings-migrator/l10n"
	"github.com/xcstrings-migrator/xcstrings-migrator/stringsdict"
	"github.com/xcstrings-migrator/xcstrings-migrator/stringsfile"
	"github.com/xcstrings-migrator/xcstrings-migrator/xcstrings"
)

// LprojExt is the suffix of language directories.
const LprojExt = ".lproj"

// baseLanguage is Xcode's base internationalization directory name.
const baseLanguage = "Base"

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options configures a migration run.
type Options struct {
	// SourceLanguage is recorded as the catalog's sourceLanguage.
	SourceLanguage string
	// Paths are the .lproj directories to read.
	Paths []string
	// OutputDir receives one .xcstrings file per table.
	OutputDir string
	// Verbose prints every catalog to Stdout before it is written and
	// reports skipped inputs.
	Verbose bool

	// Stdout receives the catalog JSON in verbose mode (default os.Stdout).
	Stdout io.Writer
	// OnLog emits progress messages.
	OnLog func(format string, args ...any)
	// OnWarn emits warnings (verbose mode only).
	OnWarn func(format string, args ...any)
	// WriteFile writes one output file (default: create parent directories,
	// then os.WriteFile).
	WriteFile func(path string, data []byte) error
}

func (o *Options) logf(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) warnf(format string, args ...any) {
	if o.Verbose && o.OnWarn != nil {
		o.OnWarn(format, args...)
	}
}

// Migrator runs the migration pipeline.
type Migrator struct {
	opts Options
}

// New returns a Migrator for opts, filling in defaults.
func New(opts Options) *Migrator {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.WriteFile == nil {
		opts.WriteFile = writeFile
	}
	return &Migrator{opts: opts}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Run executes the whole pipeline. Every table is exported even if an
// earlier one fails; the export errors are joined.
func (m *Migrator) Run() error {
	tables, err := m.Extract()
	if err != nil {
		return err
	}

	var errs []error
	for _, b := range Classify(tables) {
		if err := m.Export(b.Table, m.Convert(b)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	m.opts.logf("Completed.")
	return nil
}

// ---------------------------------------------------------------------------
// Discover
// ---------------------------------------------------------------------------

// FileKind tells which legacy format a file uses.
type FileKind int

const (
	// KindStrings is a flat .strings file.
	KindStrings FileKind = iota
	// KindStringsDict is a plural .stringsdict file.
	KindStringsDict
)

// File is a discovered legacy file.
type File struct {
	Path     string
	Language string
	Table    string
	Kind     FileKind
}

// kindOf maps a file name to its legacy format.
func kindOf(name string) (FileKind, bool) {
	switch filepath.Ext(name) {
	case "." + stringsfile.Ext:
		return KindStrings, true
	case "." + stringsdict.Ext:
		return KindStringsDict, true
	}
	return 0, false
}

// Discover lists the legacy files of every existing .lproj directory in
// Paths. Children are visited in name order.
func (m *Migrator) Discover() ([]File, error) {
	var files []File
	for _, p := range m.opts.Paths {
		dir := filepath.Clean(p)
		if filepath.Ext(dir) != LprojExt {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			m.opts.warnf("reading %s: %v", dir, err)
			continue
		}

		lang := strings.TrimSuffix(filepath.Base(dir), LprojExt)
		if lang != baseLanguage {
			if _, err := language.Parse(lang); err != nil {
				m.opts.warnf("%s is not a BCP 47 language tag; using it verbatim", lang)
			}
		}

		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			kind, ok := kindOf(e.Name())
			if !ok {
				continue
			}
			files = append(files, File{
				Path:     filepath.Join(dir, e.Name()),
				Language: lang,
				Table:    strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
				Kind:     kind,
			})
		}
	}

	if len(files) == 0 {
		return nil, apperr.New(apperr.NoInputFiles, "", nil)
	}
	return files, nil
}

// ---------------------------------------------------------------------------
// Extract
// ---------------------------------------------------------------------------

// Decode reads one legacy file into a table.
func Decode(f File) (l10n.Table, error) {
	switch f.Kind {
	case KindStrings:
		values, err := stringsfile.ParseFile(f.Path)
		if err != nil {
			return l10n.Table{}, err
		}
		return l10n.SingularTable(f.Table, f.Language, values), nil
	case KindStringsDict:
		values, err := stringsdict.ParseFile(f.Path)
		if err != nil {
			return l10n.Table{}, err
		}
		return l10n.PluralTable(f.Table, f.Language, values), nil
	}
	return l10n.Table{}, fmt.Errorf("unknown file kind %d", f.Kind)
}

// Extract discovers and decodes every legacy file. Files that fail to
// decode are dropped.
func (m *Migrator) Extract() ([]l10n.Table, error) {
	files, err := m.Discover()
	if err != nil {
		return nil, err
	}

	tables := make([]l10n.Table, 0, len(files))
	for _, f := range files {
		t, err := Decode(f)
		if err != nil {
			m.opts.warnf("skipping %s: %v", f.Path, err)
			continue
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ---------------------------------------------------------------------------
// Classify
// ---------------------------------------------------------------------------

// Bucket holds every table sharing one table name.
type Bucket struct {
	Table   string
	Records []l10n.Table
}

// Classify groups tables by name. Buckets keep first-seen order and
// records keep input order.
func Classify(tables []l10n.Table) []Bucket {
	var buckets []Bucket
	index := make(map[string]int)
	for _, t := range tables {
		i, ok := index[t.Name]
		if !ok {
			i = len(buckets)
			index[t.Name] = i
			buckets = append(buckets, Bucket{Table: t.Name})
		}
		buckets[i].Records = append(buckets[i].Records, t)
	}
	return buckets
}

// ---------------------------------------------------------------------------
// Convert
// ---------------------------------------------------------------------------

// Convert merges a bucket into one catalog. When a (key, language) pair is
// contributed more than once, the last record wins.
func (m *Migrator) Convert(b Bucket) xcstrings.Catalog {
	c := xcstrings.New(m.opts.SourceLanguage)
	for _, rec := range b.Records {
		for _, e := range rec.Entries {
			c.Set(e.Key, rec.Language, Localization(e.Value))
		}
	}
	return c
}

// Localization converts an entry value into its catalog shape.
func Localization(v l10n.Value) xcstrings.Localization {
	switch v := v.(type) {
	case l10n.Singular:
		return xcstrings.StringLocalization{StringUnit: xcstrings.Unit(v.Text)}
	case l10n.Plural:
		plural := make(map[string]xcstrings.PluralVariation, len(v.Variants))
		for _, variant := range v.Variants {
			plural[string(variant.Rule)] = xcstrings.PluralVariation{StringUnit: xcstrings.Unit(variant.Text)}
		}
		return xcstrings.PluralLocalization{Variations: xcstrings.Variations{Plural: plural}}
	}
	panic(fmt.Sprintf("migrate: unhandled value type %T", v))
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// Export writes c to <OutputDir>/<name>.xcstrings.
func (m *Migrator) Export(name string, c xcstrings.Catalog) error {
	path := filepath.Join(m.opts.OutputDir, name+"."+xcstrings.Ext)

	data, err := xcstrings.Marshal(c)
	if err != nil {
		return apperr.New(apperr.ExportCatalog, path, err)
	}
	if m.opts.Verbose {
		fmt.Fprintln(m.opts.Stdout, string(data))
	}
	if err := m.opts.WriteFile(path, data); err != nil {
		return apperr.New(apperr.ExportCatalog, path, err)
	}
	m.opts.logf("Succeeded to export xcstrings file: %s", path)
	return nil
}
