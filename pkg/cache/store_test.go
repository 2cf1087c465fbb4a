package cache

import (
	"path/filepath"
	"testing"

	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned an error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadFileIssuesRoundTrip(t *testing.T) {
	s := openTestStore(t)

	issues := []issue.Issue{
		{Kind: issue.UnusedVariable, Pos: hpos.HPos{File: "a.hack", StartOffset: 1, EndOffset: 2}, Message: "unused"},
	}
	if err := s.SaveFileIssues("a.hack", FileIdentity(42), issues); err != nil {
		t.Fatalf("SaveFileIssues returned an error: %v", err)
	}

	loaded, ok := s.LoadExistingIssues()
	if !ok {
		t.Fatalf("expected a successful load")
	}
	got, present := loaded["a.hack"]
	if !present || len(got) != 1 || got[0].Message != "unused" {
		t.Fatalf("expected the saved issue to round-trip, got %+v", got)
	}
}

func TestSaveFileIssuesUpsertsOnRepeatedSave(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveFileIssues("a.hack", 1, []issue.Issue{{Message: "first"}}); err != nil {
		t.Fatalf("first SaveFileIssues returned an error: %v", err)
	}
	if err := s.SaveFileIssues("a.hack", 2, []issue.Issue{{Message: "second"}}); err != nil {
		t.Fatalf("second SaveFileIssues returned an error: %v", err)
	}

	loaded, ok := s.LoadExistingIssues()
	if !ok {
		t.Fatalf("expected a successful load")
	}
	got := loaded["a.hack"]
	if len(got) != 1 || got[0].Message != "second" {
		t.Fatalf("expected the second save to replace the first, got %+v", got)
	}
}

func TestLoadExistingIssuesOnEmptyStoreIsOkWithNoEntries(t *testing.T) {
	s := openTestStore(t)

	loaded, ok := s.LoadExistingIssues()
	if !ok {
		t.Fatalf("expected ok=true for an empty but valid cache")
	}
	if len(loaded) != 0 {
		t.Fatalf("expected no entries in a freshly opened store, got %v", loaded)
	}
}

func TestSaveAndLoadReferencesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	in := strid.New()
	sym := in.Intern("SomeClass")

	idx := NewReferenceIndex()
	idx.AllSymbols[sym] = struct{}{}
	idx.AddReference(issue.SymbolRef{Symbol: sym}, sym)

	if err := s.SaveReferences(idx); err != nil {
		t.Fatalf("SaveReferences returned an error: %v", err)
	}

	loaded, ok := s.LoadExistingReferences()
	if !ok {
		t.Fatalf("expected a successful load of references")
	}
	reloaded, isRefIndex := loaded.(*ReferenceIndex)
	if !isRefIndex {
		t.Fatalf("expected the loaded references to be a *ReferenceIndex")
	}
	if _, present := reloaded.AllSymbols[sym]; !present {
		t.Fatalf("expected the saved symbol to round-trip")
	}
}

func TestLoadExistingReferencesOnEmptyStoreIsCacheMiss(t *testing.T) {
	s := openTestStore(t)

	if _, ok := s.LoadExistingReferences(); ok {
		t.Fatalf("expected no reference_cache row to be a cache miss")
	}
}
