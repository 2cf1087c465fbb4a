package ttype

import "github.com/hatlesswizard/hakanaflow/pkg/hpos"
import "github.com/hatlesswizard/hakanaflow/pkg/strid"

// StaticClassTypeTag distinguishes the three ways a `this` type can be
// bound during expansion.
type StaticClassTypeTag uint8

const (
	StaticClassNone StaticClassTypeTag = iota
	StaticClassName
	StaticClassObject
)

// StaticClassType resolves a TNamedObject marked IsThis during expansion.
type StaticClassType struct {
	Tag    StaticClassTypeTag
	Name   strid.ID // StaticClassName
	Object *TAtomic // StaticClassObject
}

// Options controls how ExpandUnion resolves self/static/parent, class
// constants, generics and type aliases. The zero value is not a usable
// default — call DefaultOptions.
type Options struct {
	SelfClass       strid.ID
	HasSelfClass    bool
	StaticClassType StaticClassType
	ParentClass     strid.ID
	HasParentClass  bool
	FilePath        hpos.FilePath
	HasFilePath     bool

	EvaluateClassConstants  bool
	EvaluateConditionalTypes bool
	FunctionIsFinal          bool
	ExpandGeneric            bool
	ExpandTemplates          bool
	ExpandHakanaTypes        bool
	ExpandTypenames          bool
	ExpandAllTypeAliases     bool
}

// DefaultOptions mirrors the defaults of the original expander: class
// constants, templates, typenames and shape-taint-bearing type expansion
// are all on by default; generic and blanket type-alias expansion are
// opt-in, since both can discard information a caller still needs
// (respectively, template identity and newtype boundary enforcement).
func DefaultOptions() Options {
	return Options{
		EvaluateClassConstants:   true,
		ExpandTemplates:          true,
		ExpandHakanaTypes:        true,
		ExpandTypenames:          true,
		ExpandAllTypeAliases:     false,
		ExpandGeneric:            false,
		EvaluateConditionalTypes: false,
	}
}
