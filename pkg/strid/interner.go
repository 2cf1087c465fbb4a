// Package strid maps symbol and variable names to dense integer IDs.
//
// Every other package in this module compares identifiers by ID rather
// than by string, the same way the original type checker does: a handful of
// "well-known" names (the this-type, the three magic constants) are compared
// by identity everywhere, so they are reserved at construction time instead
// of being looked up lazily.
package strid

import "sync"

// ID is a dense integer identifier for an interned string.
type ID uint32

// Well-known IDs, stable across every Interner instance so that code can
// compare against them without holding a reference to the interner that
// produced them.
const (
	Empty ID = iota
	This
	FileConst
	DirConst
	FunctionConst

	firstDynamic
)

var wellKnown = [...]string{
	Empty:         "",
	This:          "this",
	FileConst:     "__FILE__",
	DirConst:      "__DIR__",
	FunctionConst: "__FUNCTION__",
}

// Interner is a bidirectional string<->ID table guarded by a RWMutex. It is
// read-mostly once the scanning pass that populates it has finished;
// analysis itself never mutates it, matching the read-only contract the
// rest of the core assumes for codebase info and the interner.
type Interner struct {
	mu      sync.RWMutex
	strings []string
	ids     map[string]ID
}

// New returns an Interner pre-populated with the well-known IDs.
func New() *Interner {
	in := &Interner{
		strings: make([]string, len(wellKnown), len(wellKnown)*4),
		ids:     make(map[string]ID, 256),
	}
	copy(in.strings, wellKnown[:])
	for id, s := range wellKnown {
		in.ids[s] = ID(id)
	}
	return in
}

// Intern returns the dense ID for s, assigning a new one if s has not been
// seen before.
func (in *Interner) Intern(s string) ID {
	in.mu.RLock()
	if id, ok := in.ids[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()

	if id, ok := in.ids[s]; ok {
		return id
	}

	id := ID(len(in.strings))
	in.strings = append(in.strings, s)
	in.ids[s] = id
	return id
}

// Lookup returns the string for id, or "" and false if id is unknown.
func (in *Interner) Lookup(id ID) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if int(id) >= len(in.strings) {
		return "", false
	}
	return in.strings[id], true
}

// MustLookup returns the string for id, or "<unknown>" if id is unknown.
// Intended for diagnostics and debug formatting only.
func (in *Interner) MustLookup(id ID) string {
	s, ok := in.Lookup(id)
	if !ok {
		return "<unknown>"
	}
	return s
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.strings)
}
