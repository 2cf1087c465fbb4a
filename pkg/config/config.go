// Package config loads the YAML run configuration: which languages to
// scan, where the on-disk analysis cache lives, and the type-expansion
// option overrides the expander should apply. Mirrors the teacher's own
// Config/DefaultConfig split (pkg/tracer.Config) one level up, since
// nothing about this core's config shape differs from the teacher's own.
package config

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/hatlesswizard/hakanaflow/pkg/ttype"
)

// TypeExpansionConfig mirrors the subset of ttype.Options a user would
// reasonably want to override from a config file, rather than exposing
// every expander knob (several of which only make sense set per call site,
// like HasFilePath/FilePath).
type TypeExpansionConfig struct {
	EvaluateClassConstants   bool `yaml:"evaluate_class_constants"`
	EvaluateConditionalTypes bool `yaml:"evaluate_conditional_types"`
	ExpandGeneric            bool `yaml:"expand_generic"`
	ExpandTemplates          bool `yaml:"expand_templates"`
	ExpandHakanaTypes        bool `yaml:"expand_hakana_types"`
	ExpandTypenames          bool `yaml:"expand_typenames"`
	ExpandAllTypeAliases     bool `yaml:"expand_all_type_aliases"`
}

// ToOptions builds a ttype.Options from the config overrides, keeping
// every option this config type doesn't expose at its ttype.DefaultOptions
// value.
func (c TypeExpansionConfig) ToOptions() ttype.Options {
	opts := ttype.DefaultOptions()
	opts.EvaluateClassConstants = c.EvaluateClassConstants
	opts.EvaluateConditionalTypes = c.EvaluateConditionalTypes
	opts.ExpandGeneric = c.ExpandGeneric
	opts.ExpandTemplates = c.ExpandTemplates
	opts.ExpandHakanaTypes = c.ExpandHakanaTypes
	opts.ExpandTypenames = c.ExpandTypenames
	opts.ExpandAllTypeAliases = c.ExpandAllTypeAliases
	return opts
}

// Config is the top-level run configuration.
type Config struct {
	// Languages to analyze (empty = all supported). Named the same as the
	// teacher's tracer.Config.Languages for the same purpose.
	Languages []string `yaml:"languages"`

	// Workers is the number of parallel per-file analysis workers; <= 0
	// means runtime.NumCPU(), matching tracer.DefaultConfig.
	Workers int `yaml:"workers"`

	// CacheDBPath is where pkg/cache opens its SQLite store. Empty
	// disables the persisted cache (every run is a full rescan).
	CacheDBPath string `yaml:"cache_db_path"`

	// SkipDirs mirrors tracer.Config.SkipDirs.
	SkipDirs []string `yaml:"skip_dirs"`

	TypeExpansion TypeExpansionConfig `yaml:"type_expansion"`
}

// Default returns the configuration used when no config file is present,
// mirroring the teacher's tracer.DefaultConfig defaults pattern.
func Default() *Config {
	return &Config{
		Languages:   []string{},
		Workers:     runtime.NumCPU(),
		CacheDBPath: "",
		SkipDirs:    []string{".git", "vendor", ".hhvm", "hh_server"},
	}
}

// Load reads and parses a YAML config file at path, falling back to
// Default for any field the file doesn't set (yaml.Unmarshal only
// overwrites fields present in the document).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
