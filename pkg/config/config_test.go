package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesExpectedBaseline(t *testing.T) {
	cfg := Default()

	if cfg.Workers <= 0 {
		t.Fatalf("expected Default to pick a positive worker count, got %d", cfg.Workers)
	}
	if cfg.CacheDBPath != "" {
		t.Fatalf("expected an empty CacheDBPath by default, got %q", cfg.CacheDBPath)
	}
	want := map[string]bool{".git": true, "vendor": true, ".hhvm": true, "hh_server": true}
	if len(cfg.SkipDirs) != len(want) {
		t.Fatalf("expected %d default skip dirs, got %v", len(want), cfg.SkipDirs)
	}
	for _, d := range cfg.SkipDirs {
		if !want[d] {
			t.Fatalf("unexpected default skip dir %q", d)
		}
	}
}

func TestLoadOverridesOnlyFieldsPresentInDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := "workers: 3\ncache_db_path: /tmp/cache.db\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned an error: %v", err)
	}

	if cfg.Workers != 3 {
		t.Fatalf("expected Workers=3, got %d", cfg.Workers)
	}
	if cfg.CacheDBPath != "/tmp/cache.db" {
		t.Fatalf("expected the cache path to be loaded, got %q", cfg.CacheDBPath)
	}
	if len(cfg.SkipDirs) != len(Default().SkipDirs) {
		t.Fatalf("expected SkipDirs to keep its default since the document didn't set it, got %v", cfg.SkipDirs)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatalf("expected an error loading a nonexistent config file")
	}
}

func TestTypeExpansionConfigToOptionsOverridesOnlyExposedFields(t *testing.T) {
	tec := TypeExpansionConfig{
		EvaluateClassConstants: true,
		ExpandGeneric:          true,
		ExpandTypenames:        false,
	}

	opts := tec.ToOptions()

	if !opts.EvaluateClassConstants {
		t.Fatalf("expected EvaluateClassConstants to carry through")
	}
	if !opts.ExpandGeneric {
		t.Fatalf("expected ExpandGeneric to carry through")
	}
	if opts.ExpandTypenames {
		t.Fatalf("expected ExpandTypenames to be overridden to false")
	}
}
