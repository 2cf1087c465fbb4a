// Package codebase defines the read-only collaborator interfaces the
// analysis packages query for information about the rest of the program:
// class hierarchies, function signatures, named constants and type
// aliases. None of these types are mutated by the analysis; they are
// populated once per run by a discovery pass (outside this package's
// scope) and handed down as a Reader.
package codebase

import "github.com/hatlesswizard/hakanaflow/pkg/strid"

// ClasslikeInfo describes a class, interface, trait or enum.
type ClasslikeInfo struct {
	Name       strid.ID
	Extends    []strid.ID
	Implements []strid.ID
	IsEnum     bool
	IsTrait    bool
	// ClassConstants maps constant name to its literal value, when known
	// at discovery time. A constant referencing another class constant is
	// left absent here; GetClassconstLiteralValue then reports it as not
	// found.
	ClassConstants map[strid.ID]string
	// ClassConstantTypes maps constant name to its declared type text, for
	// a constant whose type was spelled out explicitly rather than inferred
	// from its literal.
	ClassConstantTypes map[strid.ID]string
	// TypeConstants maps a class type-constant name (`::TFoo`) to its
	// declaration.
	TypeConstants map[strid.ID]TypeConstant
	// EnumAsType is the backing type text of an enum (`enum Foo: int { ... }`),
	// empty when this ClasslikeInfo doesn't describe an enum.
	EnumAsType string
}

// TypeConstantKind distinguishes a concrete class type constant
// (`const type TFoo = Bar;`) from an abstract one
// (`abstract const type TFoo [as Bound];`).
type TypeConstantKind uint8

const (
	TypeConstantConcrete TypeConstantKind = iota
	TypeConstantAbstract
)

// TypeConstant describes one `::TFoo` class type constant. A concrete
// constant always carries TypeText; an abstract one carries it only when
// declared with an `as` bound, and HasType is false for a bare abstract
// constant with no bound at all.
type TypeConstant struct {
	Kind     TypeConstantKind
	TypeText string
	HasType  bool
}

// ParamInfo describes a single parameter of a function-like.
type ParamInfo struct {
	Name     strid.ID
	ByRef    bool
	Variadic bool
	// Type is the declared parameter type text, empty when untyped.
	Type string
}

// FunctionLikeInfo describes a function or method signature.
type FunctionLikeInfo struct {
	Name   strid.ID
	Class  strid.ID // zero (strid.Empty) for a top-level function
	Params []ParamInfo
	Pure   bool
	// ReturnType is the declared return type text, empty when untyped.
	ReturnType string
}

// ConstantInfo describes a top-level (non-class) constant.
type ConstantInfo struct {
	Name  strid.ID
	Value string
}

// TypeDefinition describes a `type Foo = ...` / `newtype Foo = ...`
// declaration, the unit the type expander resolves a TypeAlias atomic
// against.
type TypeDefinition struct {
	Name      strid.ID
	IsNewtype bool
	// AliasedTypeName is the literal text of the right-hand side, deferred
	// to the caller (pkg/ttype) to re-parse into a TUnion, since codebase
	// intentionally carries no dependency on the type model.
	AliasedTypeName string
	// FieldTaints carries a `<<HakanaTaint(...)>>` annotation attached to a
	// shape field of this alias, keyed by field name, to the sink/source
	// kinds it tags the field with. Nil for an alias with no annotated
	// fields.
	FieldTaints map[string][]string
}

// ShapeFieldTaints returns the shape-field taint annotations this alias
// carries. The type expander upcasts to this method through
// TypeDefWithTaints rather than reading FieldTaints directly, so it stays
// agnostic to whether the taint data lives on this concrete type.
func (t *TypeDefinition) ShapeFieldTaints() map[string][]string {
	return t.FieldTaints
}

// Reader is the read-only view over the discovered codebase that the
// type expander, the data-flow graph builders and the constant-fetch
// analyzer all query against. A single discovery pass populates a
// concrete implementation once per analysis run; every method here must
// be safe for concurrent read access, since multiple worker goroutines
// (see pkg/analysis) consult it at once.
type Reader interface {
	ClasslikeInfos() map[strid.ID]*ClasslikeInfo
	FunctionlikeInfos() map[strid.ID]*FunctionLikeInfo
	GetMethod(class, method strid.ID) (*FunctionLikeInfo, bool)
	ConstantInfos() map[strid.ID]*ConstantInfo
	TypeDefinitions() map[strid.ID]*TypeDefinition

	// GetClassconstLiteralValue returns a class constant's literal text
	// as recorded for that class. MapReader's implementation does one
	// lookup; a constant that references another constant is not followed.
	GetClassconstLiteralValue(class, constant strid.ID) (string, bool)

	// GetClassConstantType returns the declared type text of a class
	// constant, when the class declares one explicitly.
	GetClassConstantType(class, constant strid.ID) (string, bool)

	// ClassExtendsOrImplements reports whether class directly names
	// ancestor in its extends/implements clause.
	ClassExtendsOrImplements(class, ancestor strid.ID) bool

	// IsExtendingOrImplementing reports whether class is ancestor or
	// transitively extends/implements it.
	IsExtendingOrImplementing(class, ancestor strid.ID) bool
}

// MapReader is a concrete, in-memory Reader backed by plain maps,
// populated wholesale by a discovery pass and then treated as
// immutable — the shape mirrors the teacher's own SymbolTable: maps
// keyed by name, built once from a full parse of the codebase.
type MapReader struct {
	Classlikes  map[strid.ID]*ClasslikeInfo
	Funcs       map[strid.ID]*FunctionLikeInfo
	Methods     map[strid.ID]map[strid.ID]*FunctionLikeInfo
	Constants   map[strid.ID]*ConstantInfo
	TypeDefs    map[strid.ID]*TypeDefinition
}

// NewMapReader returns an empty, ready-to-populate MapReader.
func NewMapReader() *MapReader {
	return &MapReader{
		Classlikes: make(map[strid.ID]*ClasslikeInfo),
		Funcs:      make(map[strid.ID]*FunctionLikeInfo),
		Methods:    make(map[strid.ID]map[strid.ID]*FunctionLikeInfo),
		Constants:  make(map[strid.ID]*ConstantInfo),
		TypeDefs:   make(map[strid.ID]*TypeDefinition),
	}
}

func (r *MapReader) ClasslikeInfos() map[strid.ID]*ClasslikeInfo     { return r.Classlikes }
func (r *MapReader) FunctionlikeInfos() map[strid.ID]*FunctionLikeInfo { return r.Funcs }

func (r *MapReader) GetMethod(class, method strid.ID) (*FunctionLikeInfo, bool) {
	methods, ok := r.Methods[class]
	if !ok {
		return nil, false
	}
	m, ok := methods[method]
	return m, ok
}

func (r *MapReader) ConstantInfos() map[strid.ID]*ConstantInfo { return r.Constants }
func (r *MapReader) TypeDefinitions() map[strid.ID]*TypeDefinition { return r.TypeDefs }

// maxConstRefDepth bounds the lookup loop in GetClassconstLiteralValue.
// That loop returns on its first iteration, so no chain of
// constant-to-constant references is followed.
const maxConstRefDepth = 25

func (r *MapReader) GetClassconstLiteralValue(class, constant strid.ID) (string, bool) {
	visitedClass, visitedConst := class, constant
	for depth := 0; depth < maxConstRefDepth; depth++ {
		info, ok := r.Classlikes[visitedClass]
		if !ok {
			return "", false
		}
		value, ok := info.ClassConstants[visitedConst]
		if !ok {
			return "", false
		}
		return value, true
	}
	return "", false
}

func (r *MapReader) GetClassConstantType(class, constant strid.ID) (string, bool) {
	info, ok := r.Classlikes[class]
	if !ok {
		return "", false
	}
	typeText, ok := info.ClassConstantTypes[constant]
	if !ok || typeText == "" {
		return "", false
	}
	return typeText, true
}

func (r *MapReader) ClassExtendsOrImplements(class, ancestor strid.ID) bool {
	info, ok := r.Classlikes[class]
	if !ok {
		return false
	}
	for _, e := range info.Extends {
		if e == ancestor {
			return true
		}
	}
	for _, i := range info.Implements {
		if i == ancestor {
			return true
		}
	}
	return false
}

func (r *MapReader) IsExtendingOrImplementing(class, ancestor strid.ID) bool {
	if class == ancestor {
		return true
	}
	visited := make(map[strid.ID]struct{})
	queue := []strid.ID{class}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}

		info, ok := r.Classlikes[cur]
		if !ok {
			continue
		}
		for _, e := range info.Extends {
			if e == ancestor {
				return true
			}
			queue = append(queue, e)
		}
		for _, i := range info.Implements {
			if i == ancestor {
				return true
			}
			queue = append(queue, i)
		}
	}
	return false
}
