// Package ttype implements the type expander: recursive resolution of
// structural types (dicts, vecs, keysets, awaitables, named objects,
// closures, generic params, classname/typename references, enum literal
// cases, member references, type aliases and class type constants)
// against a codebase.Reader, feeding any taint the resolution uncovers
// into a dataflow.Graph.
//
// TAtomic and TUnion here are deliberately minimal: just the variants
// this package's dispatch table names, not a full type-inference engine.
package ttype

import "github.com/hatlesswizard/hakanaflow/pkg/strid"

// AtomicTag enumerates the atomic type variants the expander knows how to
// resolve. TAtomic is a flat, discriminated struct rather than one Go type
// per variant, matching this module's NodeID/PathKind idiom.
type AtomicTag uint8

const (
	TMixed AtomicTag = iota
	TScalar
	TDict
	TVec
	TKeyset
	TAwaitable
	TNamedObject
	TClosure
	TGenericParam
	TClassname
	TTypename
	TEnumLiteralCase
	TEnum
	TMemberReference
	TTypeAlias
	TClassTypeConstant
	TClosureAlias
)

// DictKeyTag distinguishes the three shapes a dict/shape field key can take.
// DictKeyEnum is the variant the original implementation left as an
// explicit unimplemented case, resolved here per this module's own
// decision (see DictKey.String below).
type DictKeyTag uint8

const (
	DictKeyInt DictKeyTag = iota
	DictKeyString
	DictKeyEnum
)

// DictKey is a single dict/shape field key.
type DictKey struct {
	Tag       DictKeyTag
	Int       int64
	Str       string
	EnumName  strid.ID // DictKeyEnum
	EnumCase  strid.ID // DictKeyEnum
}

// String renders a DictKey the way a shape-taint edge label needs it: a
// bare literal for Int/String, and "<EnumName>::<CaseName>" for Enum — the
// principled extension this module applies where the original left the
// case unimplemented, since a shape field keyed by an enum case still
// needs a stable, distinct string to key the taint-injection edge on.
func (k DictKey) String(interner *strid.Interner) string {
	switch k.Tag {
	case DictKeyInt:
		return itoa(k.Int)
	case DictKeyString:
		return k.Str
	case DictKeyEnum:
		name, _ := interner.Lookup(k.EnumName)
		caseName, _ := interner.Lookup(k.EnumCase)
		return name + "::" + caseName
	default:
		return ""
	}
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// KnownItem is one statically-known field of a dict or vec.
type KnownItem struct {
	Key      DictKey
	Possibly bool
	Type     *TUnion
}

// ShapeName identifies the type alias a dict atomic was expanded from,
// carried through so diagnostics can still name the shape instead of just
// printing its structural expansion.
type ShapeName struct {
	Name   strid.ID
	Member strid.ID // set when the shape comes from a class type constant
	HasMember bool
}

// TAtomic is a single member of a TUnion.
type TAtomic struct {
	Tag AtomicTag

	// TDict / TVec
	KnownItems []KnownItem
	KeyParam   *TUnion // TDict
	ValueParam *TUnion // TDict, TVec (vec's single type param)
	ShapeName  *ShapeName

	// TKeyset, TAwaitable: single type parameter
	Inner *TUnion

	// TNamedObject
	ClassName  strid.ID
	IsThis     bool
	TypeParams []*TUnion

	// TClosure
	ClosureParams []*TUnion
	ClosureReturn *TUnion

	// TGenericParam
	ParamName      strid.ID
	DefiningClass strid.ID

	// TClassname, TTypename; also the bound of a TGenericParam or of a
	// TClassTypeConstant, and the backing type of TEnumLiteralCase / TEnum
	AsType *TUnion

	// TEnumLiteralCase, TEnum
	EnumName strid.ID
	CaseName strid.ID
	HasCase  bool

	// TMemberReference, TClassTypeConstant, TClosureAlias
	RefClass  strid.ID
	RefMember strid.ID
	// RefClassIsThis marks a TClassTypeConstant referenced via `this::`
	// (late static binding) rather than a fixed class name.
	RefClassIsThis bool

	// TTypeAlias
	AliasName   strid.ID
	AliasParams []*TUnion

	// TScalar: a literal-string tag, matching the original's
	// TStringWithFlags(is_literal) used for "literal-string" typedefs.
	IsLiteralString bool
}
