package cache

import (
	"github.com/hatlesswizard/hakanaflow/pkg/diffengine"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

// maxInvalidatedSymbols bounds ReferenceIndex.GetInvalidSymbols's
// transitive-closure walk. Exceeding it returns ok=false, the signal
// MarkSafeSymbolsFromDiff uses to abandon incremental analysis for a full
// rescan rather than spend the rest of the run chasing an invalidation
// that swallowed most of the codebase anyway.
const maxInvalidatedSymbols = 50_000

// ReferenceIndex is this module's concrete diffengine.SymbolReferences:
// a reverse-reference graph (referenced symbol -> the symbols that
// reference it) used to propagate invalidation transitively. The defining
// source of the original's equivalent (symbol_references.rs) isn't present
// among the reference material this module was built from, so
// GetInvalidSymbols/RemoveReferencesFromInvalidSymbols below are a
// from-scratch but behavior-compatible reconstruction against
// orchestrator/diff.rs's call-site contract (get_invalid_symbols returns
// Option<(invalidated, partially_invalidated)>, None on overflow;
// remove_references_from_invalid_symbols prunes the index in place) rather
// than a port of a specific implementation.
type ReferenceIndex struct {
	// AllSymbols is every bare symbol (Member == strid.Empty) known as of
	// the last full scan or cache load.
	AllSymbols map[strid.ID]struct{}

	// ReferencedBy maps a symbol to every other symbol whose analysis
	// consulted it — so invalidating the key symbol must also invalidate
	// every value entry, transitively.
	ReferencedBy map[strid.ID][]issue.SymbolRef
}

// NewReferenceIndex returns an empty, ready-to-populate ReferenceIndex.
func NewReferenceIndex() *ReferenceIndex {
	return &ReferenceIndex{
		AllSymbols:   make(map[strid.ID]struct{}),
		ReferencedBy: make(map[strid.ID][]issue.SymbolRef),
	}
}

// AddReference records that referencer's analysis depended on referenced,
// so a future change to referenced also invalidates referencer.
func (idx *ReferenceIndex) AddReference(referencer issue.SymbolRef, referenced strid.ID) {
	idx.ReferencedBy[referenced] = append(idx.ReferencedBy[referenced], referencer)
}

// GetInvalidSymbols implements diffengine.SymbolReferences. A bare symbol
// is directly invalidated when it is known to this index but absent from
// diff.Keep (i.e. the diff no longer asserts it survived unchanged);
// invalidation then propagates to every symbol ReferencedBy records as
// depending on it, breadth-first, until the frontier empties or the
// maxInvalidatedSymbols budget is exceeded.
func (idx *ReferenceIndex) GetInvalidSymbols(diff diffengine.CodebaseDiff) (map[issue.SymbolRef]struct{}, map[strid.ID]struct{}, bool) {
	kept := make(map[strid.ID]struct{}, len(diff.Keep))
	for _, k := range diff.Keep {
		if k.Member == strid.Empty {
			kept[k.Symbol] = struct{}{}
		}
	}

	invalid := make(map[issue.SymbolRef]struct{})
	partiallyInvalid := make(map[strid.ID]struct{})

	var frontier []strid.ID
	for sym := range idx.AllSymbols {
		if _, ok := kept[sym]; !ok {
			ref := issue.SymbolRef{Symbol: sym}
			invalid[ref] = struct{}{}
			frontier = append(frontier, sym)
		}
	}

	for len(frontier) > 0 {
		if len(invalid) > maxInvalidatedSymbols {
			return nil, nil, false
		}

		next := frontier[0]
		frontier = frontier[1:]

		for _, referencer := range idx.ReferencedBy[next] {
			if _, already := invalid[referencer]; already {
				continue
			}
			invalid[referencer] = struct{}{}
			if referencer.Member != strid.Empty {
				partiallyInvalid[referencer.Symbol] = struct{}{}
				continue
			}
			frontier = append(frontier, referencer.Symbol)
		}
	}

	return invalid, partiallyInvalid, true
}

// RemoveReferencesFromInvalidSymbols implements diffengine.SymbolReferences,
// dropping every reverse-reference edge whose key or referencer symbol was
// invalidated so a later diff round doesn't keep re-propagating through a
// symbol that no longer exists.
func (idx *ReferenceIndex) RemoveReferencesFromInvalidSymbols(invalid map[issue.SymbolRef]struct{}) {
	invalidSymbols := make(map[strid.ID]struct{}, len(invalid))
	for ref := range invalid {
		if ref.Member == strid.Empty {
			invalidSymbols[ref.Symbol] = struct{}{}
			delete(idx.AllSymbols, ref.Symbol)
		}
	}

	for key, referencers := range idx.ReferencedBy {
		if _, gone := invalidSymbols[key]; gone {
			delete(idx.ReferencedBy, key)
			continue
		}
		kept := referencers[:0]
		for _, r := range referencers {
			if _, bad := invalid[r]; bad {
				continue
			}
			kept = append(kept, r)
		}
		idx.ReferencedBy[key] = kept
	}
}
