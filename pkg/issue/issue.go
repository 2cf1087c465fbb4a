// Package issue defines the diagnostics and autofix primitives the analysis
// packages (pkg/unusedvar, pkg/analysis) emit, and the diff engine
// (pkg/diffengine) remaps across incremental re-analysis runs.
package issue

import (
	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

// SymbolRef names the symbol an Issue belongs to, optionally scoped to a
// member of it (a method or class constant). A zero Member means "the
// symbol itself". It lives here rather than in pkg/diffengine, which
// consumes it, to avoid a cycle back into pkg/issue for Issue.Symbol.
type SymbolRef struct {
	Symbol strid.ID
	Member strid.ID
}

// Kind names a category of diagnostic. New analyses should add a constant
// here rather than stringly-typing the kind at the call site.
type Kind uint8

const (
	UnusedVariable Kind = iota
	NeverReferencedVariable
	TaintedSink
	NonExistentConstant
	MixedSourceAssignment
)

func (k Kind) String() string {
	switch k {
	case UnusedVariable:
		return "UnusedVariable"
	case NeverReferencedVariable:
		return "NeverReferencedVariable"
	case TaintedSink:
		return "TaintedSink"
	case NonExistentConstant:
		return "NonExistentConstant"
	case MixedSourceAssignment:
		return "MixedSourceAssignment"
	default:
		return "Kind(?)"
	}
}

// Issue is a single reported diagnostic, optionally carrying a suggested
// autofix.
type Issue struct {
	Kind    Kind
	Pos     hpos.HPos
	Message string
	Fix     []Replacement
	// Symbol is the symbol this issue was raised against, used by
	// pkg/diffengine to decide whether a cached issue survives an
	// incremental re-analysis.
	Symbol SymbolRef
}

// ActionTag distinguishes the three byte-range edit actions an autofix
// Replacement can perform.
type ActionTag uint8

const (
	Substitute ActionTag = iota
	Remove
	TrimPrecedingWhitespace
)

// Replacement is one byte-range edit in an autofix. Offsets are absolute
// into the original source file, matching HPos. Multiple Replacements for
// the same Issue are applied in the order given; callers that batch
// Replacements across Issues must sort by StartOffset descending before
// applying, so earlier edits don't invalidate later offsets.
type Replacement struct {
	Action      ActionTag
	StartOffset uint32
	EndOffset   uint32
	// NewText is meaningful only for Substitute.
	NewText string
}

// SubstituteText builds a Replacement that swaps the byte range
// [start, end) for text.
func SubstituteText(start, end uint32, text string) Replacement {
	return Replacement{Action: Substitute, StartOffset: start, EndOffset: end, NewText: text}
}

// RemoveRange builds a Replacement that deletes the byte range [start, end).
func RemoveRange(start, end uint32) Replacement {
	return Replacement{Action: Remove, StartOffset: start, EndOffset: end}
}

// TrimPrecedingWhitespaceAt builds a Replacement that, in addition to
// deleting [start, end), also strips any run of horizontal whitespace
// immediately preceding start — used when removing a whole statement so the
// autofix doesn't leave a blank, indented line behind.
func TrimPrecedingWhitespaceAt(start, end uint32) Replacement {
	return Replacement{Action: TrimPrecedingWhitespace, StartOffset: start, EndOffset: end}
}
