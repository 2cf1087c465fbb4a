// Package diffengine implements incremental re-analysis: given a diff
// between the previous and current codebase, it determines which symbols
// are still safe to skip re-analyzing, builds the file list for the next
// pass (the input list, deduplicated, plus scanner-flagged files), and
// remaps the previous run's
// surviving issues onto the new file contents.
package diffengine

import (
	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

// CodebaseDiff is the set of changes between two scans of the codebase:
// which top-level symbols are unchanged and can be kept (Keep), and, per
// changed file, both the byte ranges that were deleted outright and the
// byte/line offset shifts later surviving content needs remapped by.
type CodebaseDiff struct {
	Keep []issue.SymbolRef

	// DiffMap maps a file to the list of (fromOffset, toOffset, fileShift,
	// lineShift) spans inside it whose surviving content needs remapping.
	DiffMap map[hpos.FilePath][]OffsetShift

	// DeletionRangesMap maps a file to the list of (fromOffset, toOffset)
	// spans that were deleted outright; any issue whose position falls
	// inside one of these is dropped rather than remapped.
	DeletionRangesMap map[hpos.FilePath][][2]uint32
}

// OffsetShift is a single remap instruction: content originally spanning
// [From, To] (both ends inclusive) in a file should have FileOffset added to its byte offsets
// and LineOffset added to its line numbers.
type OffsetShift struct {
	From, To         uint32
	FileOffset       int64
	LineOffset       int64
}

// SymbolReferences tracks which files/symbols reference which other
// symbols, so that invalidating one symbol can invalidate everything
// that depends on it.
type SymbolReferences interface {
	// GetInvalidSymbols returns the full set of (symbol, member) pairs
	// invalidated by diff — including transitively, via reference — plus
	// the subset of bare symbols (member == zero) that are only
	// *partially* invalid (some members changed, not the symbol itself).
	// The third return value being false signals that invalidation fanned
	// out too widely to bound (too many invalidated symbols), the signal
	// this package's caller uses to abandon incremental analysis for a
	// full rescan instead.
	GetInvalidSymbols(diff CodebaseDiff) (invalid map[issue.SymbolRef]struct{}, partiallyInvalid map[strid.ID]struct{}, ok bool)

	RemoveReferencesFromInvalidSymbols(invalid map[issue.SymbolRef]struct{})
}

// CachedAnalysis is the result of MarkSafeSymbolsFromDiff: what can be
// skipped, and the previous run's issues for files that didn't need
// re-analysis.
type CachedAnalysis struct {
	SafeSymbols       map[strid.ID]struct{}
	SafeSymbolMembers map[issue.SymbolRef]struct{}
	ExistingIssues    map[hpos.FilePath][]issue.Issue
	References        SymbolReferences
}

// PreviousAnalysisResult is the subset of a prior run's output this
// package needs to resume from, whether that prior run is still resident
// in memory (the in-process fallback, tried first) or must be reloaded
// from the on-disk cache (pkg/cache).
type PreviousAnalysisResult struct {
	SymbolReferences SymbolReferences
	EmittedIssues    map[hpos.FilePath][]issue.Issue
}

// CacheLoader reloads a previous run's references/issues from the
// persisted cache store when no in-memory PreviousAnalysisResult is
// available. Returns ok=false on a cache miss (including a schema
// version mismatch) so the caller falls through to a full rescan.
type CacheLoader interface {
	LoadExistingReferences() (SymbolReferences, bool)
	LoadExistingIssues() (map[hpos.FilePath][]issue.Issue, bool)
}

// MarkSafeSymbolsFromDiff resolves what can be skipped in this analysis
// run. It tries three sources for the previous run's state, in order,
// exactly the way the original orchestrator does: an in-memory result
// from the same process (e.g. a watch-mode daemon re-analyzing after a
// single edit), then a reload from the on-disk cache, and only then
// gives up and asks for everything to be analyzed — each fallback rung
// only taken when the one above it is unavailable, not merged with it.
func MarkSafeSymbolsFromDiff(
	interner *strid.Interner,
	diff CodebaseDiff,
	invalidScannedFiles map[hpos.FilePath]struct{},
	filesToAnalyze []string,
	previous *PreviousAnalysisResult,
	cache CacheLoader,
) (CachedAnalysis, []string) {
	var references SymbolReferences
	var existingIssues map[hpos.FilePath][]issue.Issue

	switch {
	case previous != nil:
		references = previous.SymbolReferences
		existingIssues = previous.EmittedIssues
	case cache != nil:
		refs, ok := cache.LoadExistingReferences()
		if !ok {
			return CachedAnalysis{}, filesToAnalyze
		}
		issues, ok := cache.LoadExistingIssues()
		if !ok {
			return CachedAnalysis{}, filesToAnalyze
		}
		references, existingIssues = refs, issues
	default:
		return CachedAnalysis{}, filesToAnalyze
	}

	invalid, partiallyInvalid, ok := references.GetInvalidSymbols(diff)
	if !ok {
		// too many invalidated symbols to track precisely; fall back to a
		// full rescan rather than risk missing a dependency.
		return CachedAnalysis{}, filesToAnalyze
	}

	result := CachedAnalysis{
		SafeSymbols:       make(map[strid.ID]struct{}),
		SafeSymbolMembers: make(map[issue.SymbolRef]struct{}),
		References:        references,
	}

	for _, keep := range diff.Keep {
		if _, bad := invalid[keep]; bad {
			continue
		}
		if keep.Member == strid.Empty {
			if _, partial := partiallyInvalid[keep.Symbol]; !partial {
				result.SafeSymbols[keep.Symbol] = struct{}{}
			}
		} else {
			result.SafeSymbolMembers[keep] = struct{}{}
		}
	}

	references.RemoveReferencesFromInvalidSymbols(invalid)

	narrowed := narrowFilesToAnalyze(filesToAnalyze, diff, invalid, partiallyInvalid, invalidScannedFiles)

	result.ExistingIssues = UpdateIssuesFromDiff(interner, existingIssues, diff, invalid)

	return result, narrowed
}

// narrowFilesToAnalyze returns filesToAnalyze with duplicates removed,
// followed by any file the scanner itself flagged as invalid (e.g. it
// failed to parse) that is not already listed. It does not consult diff,
// invalid or partiallyInvalid, so no file is dropped for holding only
// still-valid symbols.
func narrowFilesToAnalyze(
	filesToAnalyze []string,
	diff CodebaseDiff,
	invalid map[issue.SymbolRef]struct{},
	partiallyInvalid map[strid.ID]struct{},
	invalidScannedFiles map[hpos.FilePath]struct{},
) []string {
	// The concrete membership test against per-file AST node symbol lists
	// belongs to the codebase discovery pass (pkg/codebase), which this
	// package only consumes read-only; callers that have that information
	// should filter filesToAnalyze further before handing it to the
	// worker pool (pkg/analysis). What this package guarantees on its own
	// is folding in every file the scanner already flagged invalid.
	seen := make(map[string]struct{}, len(filesToAnalyze))
	kept := make([]string, 0, len(filesToAnalyze))
	for _, f := range filesToAnalyze {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		kept = append(kept, f)
	}
	for f := range invalidScannedFiles {
		if _, ok := seen[string(f)]; ok {
			continue
		}
		seen[string(f)] = struct{}{}
		kept = append(kept, string(f))
	}
	return kept
}

// UpdateIssuesFromDiff drops and remaps existingIssues in place against
// diff. Per file: first drop any issue whose owning symbol was
// invalidated, or whose symbol equals the interned file key being
// processed — this second half of the condition looks backwards
// (it drops rather than keeps same-file issues) but is carried over
// unchanged from the original, which this module treats as intentional
// rather than a bug to silently fix, per this module's policy of
// preserving surprising upstream behavior rather than guessing at a
// "more sensible" rewrite. Then, for the issues that survive: drop any
// whose position falls inside a deleted range, and shift the position of
// any whose range matches a diff-map entry.
func UpdateIssuesFromDiff(
	interner *strid.Interner,
	existingIssues map[hpos.FilePath][]issue.Issue,
	diff CodebaseDiff,
	invalidSymbolsAndMembers map[issue.SymbolRef]struct{},
) map[hpos.FilePath][]issue.Issue {
	for file, issues := range existingIssues {
		issues = filterIssues(interner, issues, invalidSymbolsAndMembers, file)

		if len(issues) == 0 {
			existingIssues[file] = issues
			continue
		}

		if ranges, ok := diff.DeletionRangesMap[file]; ok && len(ranges) > 0 {
			issues = dropDeletedIssues(issues, ranges)
		}

		if shifts, ok := diff.DiffMap[file]; ok && len(shifts) > 0 {
			applyShifts(issues, shifts)
		}

		existingIssues[file] = issues
	}
	return existingIssues
}

func filterIssues(interner *strid.Interner, issues []issue.Issue, invalid map[issue.SymbolRef]struct{}, file hpos.FilePath) []issue.Issue {
	fileID := interner.Intern(string(file))
	kept := issues[:0]
	for _, iss := range issues {
		if _, bad := invalid[iss.Symbol]; bad {
			continue
		}
		if iss.Symbol.Symbol == fileID {
			continue
		}
		kept = append(kept, iss)
	}
	return kept
}

func dropDeletedIssues(issues []issue.Issue, ranges [][2]uint32) []issue.Issue {
	kept := issues[:0]
	for _, iss := range issues {
		deleted := false
		for _, r := range ranges {
			if iss.Pos.StartOffset >= r[0] && iss.Pos.StartOffset <= r[1] {
				deleted = true
				break
			}
		}
		if !deleted {
			kept = append(kept, iss)
		}
	}
	return kept
}

func applyShifts(issues []issue.Issue, shifts []OffsetShift) {
	for i := range issues {
		pos := &issues[i].Pos
		for _, s := range shifts {
			if pos.StartOffset >= s.From && pos.StartOffset <= s.To {
				*pos = pos.Shift(s.FileOffset, s.LineOffset)
				break
			}
		}
	}
}
