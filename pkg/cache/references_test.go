package cache

import (
	"testing"

	"github.com/hatlesswizard/hakanaflow/pkg/diffengine"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

func TestGetInvalidSymbolsDirectlyInvalidatesDroppedSymbol(t *testing.T) {
	in := strid.New()
	foo := in.Intern("Foo")
	bar := in.Intern("Bar")

	idx := NewReferenceIndex()
	idx.AllSymbols[foo] = struct{}{}
	idx.AllSymbols[bar] = struct{}{}

	diff := diffengine.CodebaseDiff{Keep: []issue.SymbolRef{{Symbol: bar}}}

	invalid, partial, ok := idx.GetInvalidSymbols(diff)
	if !ok {
		t.Fatalf("expected ok=true for a small invalidation set")
	}
	if _, bad := invalid[issue.SymbolRef{Symbol: foo}]; !bad {
		t.Fatalf("expected Foo (dropped from Keep) to be invalid")
	}
	if _, bad := invalid[issue.SymbolRef{Symbol: bar}]; bad {
		t.Fatalf("expected Bar (kept) to remain valid")
	}
	if len(partial) != 0 {
		t.Fatalf("expected no partially-invalid symbols, got %v", partial)
	}
}

func TestGetInvalidSymbolsPropagatesTransitively(t *testing.T) {
	in := strid.New()
	base := in.Intern("Base")
	derived := in.Intern("Derived")

	idx := NewReferenceIndex()
	idx.AllSymbols[base] = struct{}{}
	idx.AddReference(issue.SymbolRef{Symbol: derived}, base)

	diff := diffengine.CodebaseDiff{}

	invalid, _, ok := idx.GetInvalidSymbols(diff)
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if _, bad := invalid[issue.SymbolRef{Symbol: derived}]; !bad {
		t.Fatalf("expected Derived to be transitively invalidated through its reference to Base")
	}
}

func TestGetInvalidSymbolsMarksMemberReferencesPartial(t *testing.T) {
	in := strid.New()
	base := in.Intern("Base")
	class := in.Intern("SomeClass")
	method := in.Intern("someMethod")

	idx := NewReferenceIndex()
	idx.AllSymbols[base] = struct{}{}
	idx.AddReference(issue.SymbolRef{Symbol: class, Member: method}, base)

	invalid, partial, ok := idx.GetInvalidSymbols(diffengine.CodebaseDiff{})
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if _, bad := invalid[issue.SymbolRef{Symbol: class, Member: method}]; !bad {
		t.Fatalf("expected the member reference itself to be invalid")
	}
	if _, bad := partial[class]; !bad {
		t.Fatalf("expected the owning class to be marked only partially invalid")
	}
}

func TestRemoveReferencesFromInvalidSymbolsPrunesIndex(t *testing.T) {
	in := strid.New()
	base := in.Intern("Base")
	derived := in.Intern("Derived")

	idx := NewReferenceIndex()
	idx.AllSymbols[base] = struct{}{}
	idx.AllSymbols[derived] = struct{}{}
	idx.AddReference(issue.SymbolRef{Symbol: derived}, base)

	invalid := map[issue.SymbolRef]struct{}{{Symbol: base}: {}}
	idx.RemoveReferencesFromInvalidSymbols(invalid)

	if _, present := idx.AllSymbols[base]; present {
		t.Fatalf("expected Base to be removed from AllSymbols")
	}
	if _, present := idx.ReferencedBy[base]; present {
		t.Fatalf("expected Base's reverse-reference entry to be dropped")
	}
}
