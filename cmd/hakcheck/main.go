// Command hakcheck parses a directory of source files, runs the
// unused-variable analysis over each, and prints the resulting issues —
// a small end-to-end demonstration of the data-flow core wired together:
// config loading, cache load/save, the parallel file-level worker pool,
// and the diff engine's cache-fallback chain.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hatlesswizard/hakanaflow/pkg/analysis"
	"github.com/hatlesswizard/hakanaflow/pkg/ast"
	"github.com/hatlesswizard/hakanaflow/pkg/cache"
	"github.com/hatlesswizard/hakanaflow/pkg/config"
	"github.com/hatlesswizard/hakanaflow/pkg/dataflow"
	"github.com/hatlesswizard/hakanaflow/pkg/diffengine"
	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
	"github.com/hatlesswizard/hakanaflow/pkg/unusedvar"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (empty = defaults)")
	root := flag.String("dir", ".", "directory to scan for .php files")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hakcheck: loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var store *cache.Store
	if cfg.CacheDBPath != "" {
		var err error
		store, err = cache.Open(cfg.CacheDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hakcheck: opening cache: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	files, err := collectSourceFiles(*root, cfg.SkipDirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hakcheck: %v\n", err)
		os.Exit(1)
	}

	interner := strid.New()

	var previous *diffengine.PreviousAnalysisResult
	var cacheLoader diffengine.CacheLoader
	if store != nil {
		cacheLoader = store
	}
	cached, narrowed := diffengine.MarkSafeSymbolsFromDiff(
		interner,
		diffengine.CodebaseDiff{},
		nil,
		files,
		previous,
		cacheLoader,
	)
	_ = cached

	tasks := make([]analysis.FileTask, 0, len(narrowed))
	for _, f := range narrowed {
		f := f
		tasks = append(tasks, analysis.FileTask{
			FilePath: f,
			Analyze: func(filePath string) analysis.FileResult {
				if err := analyzeFile(filePath, store); err != nil {
					return analysis.FileResult{FilePath: filePath, Err: err}
				}
				return analysis.FileResult{FilePath: filePath}
			},
		})
	}

	for _, r := range analysis.RunWorkers(tasks, cfg.Workers) {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "hakcheck: %s: %v\n", r.FilePath, r.Err)
		}
	}
}

// analyzeFile parses a single file, runs the unused-variable analyzer
// over a fresh per-file data-flow graph, and persists the resulting
// issues to store (if configured). Nothing from the parsed tree is added
// to that graph, so it stays empty and the analyzer reports no issues.
func analyzeFile(filePath string, store *cache.Store) error {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	tree, err := ast.Parse(context.Background(), hpos.FilePath(filePath), src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	defer tree.Close()

	graph := dataflow.New(dataflow.FunctionBody)
	never, referencedButNotUsed := unusedvar.CheckVariablesUsed(graph)

	var issues []issue.Issue
	for _, n := range never {
		issues = append(issues, issue.Issue{
			Kind:    issue.NeverReferencedVariable,
			Pos:     n.Pos,
			Message: "This variable is never referenced or used",
		})
	}
	for _, n := range referencedButNotUsed {
		issues = append(issues, issue.Issue{
			Kind:    issue.UnusedVariable,
			Pos:     n.Pos,
			Message: "This variable is never used, although it might be referenced",
		})
	}

	for _, iss := range issues {
		fmt.Printf("%s: %s: %s\n", iss.Pos, iss.Kind, iss.Message)
	}

	if store != nil {
		identity := cache.HashFile(src)
		if err := store.SaveFileIssues(hpos.FilePath(filePath), identity, issues); err != nil {
			return fmt.Errorf("cache save: %w", err)
		}
	}

	return nil
}

func collectSourceFiles(root string, skipDirs []string) ([]string, error) {
	skip := make(map[string]struct{}, len(skipDirs))
	for _, d := range skipDirs {
		skip[d] = struct{}{}
	}

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if _, ok := skip[info.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".php") || strings.HasSuffix(path, ".hack") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
