// Package config loads the .xcstrings-migrator.yaml configuration file.
//
// The configuration file supplies defaults for command-line flags so a
// project can keep its migration settings under version control:
//
//	source_language: en
//	output_directory: Resources
//	verbose: false
//	paths:
//	  - Resources/en.lproj
//	  - Resources/ja.lproj
//
// Environment variables (XCSTRINGS_MIGRATOR_*) override the file, and
// explicit flags override both.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".xcstrings-migrator.yaml"

// DefaultSourceLanguage is used when neither file, env nor flag sets one.
const DefaultSourceLanguage = "en"

// Config holds flag defaults.
type Config struct {
	// SourceLanguage is written as the catalog's sourceLanguage.
	SourceLanguage string `yaml:"source_language,omitempty" env:"XCSTRINGS_MIGRATOR_SOURCE_LANGUAGE"`
	// OutputDirectory receives generated files.
	OutputDirectory string `yaml:"output_directory,omitempty" env:"XCSTRINGS_MIGRATOR_OUTPUT_DIRECTORY"`
	// Verbose prints generated catalogs.
	Verbose bool `yaml:"verbose,omitempty" env:"XCSTRINGS_MIGRATOR_VERBOSE"`
	// Paths are the .lproj directories to migrate, relative to the
	// working directory.
	Paths []string `yaml:"paths,omitempty" env:"XCSTRINGS_MIGRATOR_PATHS" envSeparator:","`

	path string
}

// Path returns the file the configuration was read from, or "" when no
// file was found.
func (c *Config) Path() string { return c.path }

// Load reads the configuration. When explicit is non-empty that file must
// exist; otherwise FileName in dir is used if present. Environment
// overrides are applied last.
func Load(explicit, dir string) (*Config, error) {
	cfg := &Config{}

	path := explicit
	if path == "" {
		path = filepath.Join(dir, FileName)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.path = path
	case os.IsNotExist(err) && explicit == "":
		// No project config; defaults and env only.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = DefaultSourceLanguage
	}
	return cfg, nil
}
