// xcstrings-migrator converts legacy .strings/.stringsdict tables into Xcode
// string catalogs (.xcstrings) and back.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xcstrings-migrator/xcstrings-migrator/apperr"
	"github.com/xcstrings-migrator/xcstrings-migrator/config"
	"github.com/xcstrings-migrator/xcstrings-migrator/i18n"
	"github.com/xcstrings-migrator/xcstrings-migrator/migrate"
	"github.com/xcstrings-migrator/xcstrings-migrator/revert"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// translated adapts a logger so that library messages go through i18n.
func translated(log func(string, ...any)) func(string, ...any) {
	return func(format string, args ...any) {
		log(i18n.T(format), args...)
	}
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var configPath string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	f := &migrateFlags{}

	root := &cobra.Command{
		Use:   "xcstrings-migrator",
		Short: "Migrate legacy strings files to xcstrings files and back",
		Long: `xcstrings-migrator is a tool to migrate legacy .strings/.stringsdict files
to Xcode string catalogs (.xcstrings), and to revert catalogs to legacy files.

Commands:
  migrate     Migrate .lproj directories to xcstrings files (default)
  revert      Revert an xcstrings file to .lproj directories
  version     Show version information

Flag defaults can be stored in .xcstrings-migrator.yaml and overridden with
XCSTRINGS_MIGRATOR_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Flags(), f)
		},
	}

	// Global persistent flag, inherited by all subcommands
	root.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default ./"+config.FileName+")")

	// migrate is the default subcommand
	bindMigrateFlags(root.Flags(), f)

	root.AddCommand(
		newMigrateCmd(),
		newRevertCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%s", errorLine(err))
		os.Exit(apperr.ExitCode(err))
	}
}

// errorLine renders err as a single translated diagnostic line.
func errorLine(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		parts := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			parts = append(parts, errorLine(e))
		}
		return strings.Join(parts, "; ")
	}

	var e *apperr.Error
	if errors.As(err, &e) {
		msg := i18n.T(e.Kind.Message())
		if e.Path != "" {
			msg += " (" + e.Path + ")"
		}
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return strings.ReplaceAll(msg, "\n", "; ")
	}
	if k, ok := apperr.KindOf(err); ok {
		return i18n.T(k.Message())
	}
	return strings.ReplaceAll(err.Error(), "\n", "; ")
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xcstrings-migrator version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// migrate (.lproj → .xcstrings)
// ---------------------------------------------------------------------------

type migrateFlags struct {
	sourceLanguage string
	paths          []string
	outputDir      string
	verbose        bool
}

func bindMigrateFlags(fs *pflag.FlagSet, f *migrateFlags) {
	fs.StringVarP(&f.sourceLanguage, "source-language", "l", config.DefaultSourceLanguage, "Source language of the xcstrings file")
	fs.StringArrayVarP(&f.paths, "path", "p", nil, "Path to an lproj directory (repeatable)")
	fs.StringVarP(&f.outputDir, "output-directory", "o", "", "Directory where the xcstrings files are saved")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Print every generated xcstrings file")
}

func newMigrateCmd() *cobra.Command {
	f := &migrateFlags{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate legacy strings files to xcstrings files",
		Long: `Read every .strings and .stringsdict file of the given .lproj directories
and write one .xcstrings catalog per table into the output directory.

Files that cannot be decoded are skipped (reported with --verbose).

Example:
  xcstrings-migrator migrate -l en -p Resources/en.lproj -p Resources/ja.lproj -o Resources`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Flags(), f)
		},
	}

	bindMigrateFlags(cmd.Flags(), f)

	return cmd
}

// migrateOptions merges configuration and explicitly set flags.
func migrateOptions(fs *pflag.FlagSet, f *migrateFlags, cfg *config.Config) (migrate.Options, error) {
	opts := migrate.Options{
		SourceLanguage: cfg.SourceLanguage,
		Paths:          cfg.Paths,
		OutputDir:      cfg.OutputDirectory,
		Verbose:        cfg.Verbose,
	}
	if fs.Changed("source-language") {
		opts.SourceLanguage = f.sourceLanguage
	}
	if fs.Changed("path") {
		opts.Paths = f.paths
	}
	if fs.Changed("output-directory") {
		opts.OutputDir = f.outputDir
	}
	if fs.Changed("verbose") {
		opts.Verbose = f.verbose
	}

	if len(opts.Paths) == 0 {
		return opts, errors.New(`required flag "path" not set`)
	}
	if opts.OutputDir == "" {
		return opts, errors.New(`required flag "output-directory" not set`)
	}
	return opts, nil
}

func runMigrate(fs *pflag.FlagSet, f *migrateFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := migrateOptions(fs, f, cfg)
	if err != nil {
		return err
	}

	n := len(opts.Paths)
	logInfo(i18n.N("Migrating %d .lproj directory", "Migrating %d .lproj directories", n), n)

	opts.OnLog = translated(logSuccess)
	opts.OnWarn = translated(logWarning)
	return migrate.New(opts).Run()
}

// ---------------------------------------------------------------------------
// revert (.xcstrings → .lproj)
// ---------------------------------------------------------------------------

func newRevertCmd() *cobra.Command {
	var (
		path      string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "revert",
		Short: "Revert an xcstrings file to legacy strings files",
		Long: `Split an .xcstrings catalog into <lang>.lproj/Localizable.strings and
<lang>.lproj/Localizable.stringsdict files in the output directory.

The catalog does not record which legacy table a key came from, so every
key is written to the Localizable table.

Example:
  xcstrings-migrator revert -p Resources/Localizable.xcstrings -o Resources`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output-directory") {
				outputDir = cfg.OutputDirectory
			}
			if outputDir == "" {
				return errors.New(`required flag "output-directory" not set`)
			}

			logInfo(i18n.T("Reverting %s"), path)
			return revert.New(revert.Options{
				Path:      path,
				OutputDir: outputDir,
				OnLog:     translated(logSuccess),
				OnWarn:    translated(logWarning),
			}).Run()
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "Path to the xcstrings file")
	cmd.Flags().StringVarP(&outputDir, "output-directory", "o", "", "Directory where the lproj directories are saved")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, ".")
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		logInfo(i18n.T("Using config file %s"), cfg.Path())
	}
	return cfg, nil
}
