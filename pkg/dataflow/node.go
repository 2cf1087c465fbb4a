package dataflow

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

// FunctionLikeID identifies a function or a method, the way the checker's
// codebase index does: either a bare function name, or a (class, method)
// pair. It is comparable and is embedded directly in NodeID so that
// CallTo/SpecializedCallTo nodes can be used as Go map keys without any
// stringification.
type FunctionLikeID struct {
	IsMethod bool
	Class    strid.ID // zero (strid.Empty) when IsMethod is false
	Name     strid.ID
}

// Function returns a FunctionLikeID naming a top-level function.
func Function(name strid.ID) FunctionLikeID {
	return FunctionLikeID{Name: name}
}

// Method returns a FunctionLikeID naming a class method.
func Method(class, name strid.ID) FunctionLikeID {
	return FunctionLikeID{IsMethod: true, Class: class, Name: name}
}

// NodeIDKind tags which variant a NodeID holds. Only the fields relevant to
// the tag are meaningful on a given NodeID value; this mirrors the flat,
// discriminated-struct shape the rest of this codebase's data types use
// (see pkg/hpos, and the teacher's own FlowNode) rather than a Go interface
// per variant, so that NodeID stays a plain comparable value usable as a
// map key.
type NodeIDKind uint8

const (
	KindVar NodeIDKind = iota
	KindParam
	KindCallTo
	KindSpecializedCallTo
	KindProperty
	KindSpecializedProperty
	KindShapeFieldAccess
	KindSynthetic
)

// SpecializationKey scopes a specialized node to the call site that produced
// it.
type SpecializationKey struct {
	File   hpos.FilePath
	Offset uint32
}

// NodeID is a tagged identifier for a data-flow graph node. Two NodeIDs are
// equal iff all of their fields are equal, which Go gives us for free since
// NodeID is a plain comparable struct.
type NodeID struct {
	Kind NodeIDKind

	Func       FunctionLikeID // Var (owning function), Param, CallTo, SpecializedCallTo
	VarName    strid.ID       // Var
	Pos        hpos.HPos      // Var
	ParamIndex int            // Param

	Class strid.ID // Property, SpecializedProperty
	Field strid.ID // Property, SpecializedProperty

	ShapeType strid.ID // ShapeFieldAccess
	FieldName string   // ShapeFieldAccess (raw dict-key text, not interned)

	Spec SpecializationKey // SpecializedCallTo, SpecializedProperty

	Synth uint64 // Synthetic
}

// Var builds a NodeID for a local variable use at pos inside fn.
func Var(fn FunctionLikeID, name strid.ID, pos hpos.HPos) NodeID {
	return NodeID{Kind: KindVar, Func: fn, VarName: name, Pos: pos}
}

// Param builds a NodeID for the index-th parameter of fn.
func Param(fn FunctionLikeID, index int) NodeID {
	return NodeID{Kind: KindParam, Func: fn, ParamIndex: index}
}

// CallTo builds a NodeID for an (unspecialized) call to fn.
func CallTo(fn FunctionLikeID) NodeID {
	return NodeID{Kind: KindCallTo, Func: fn}
}

// SpecializedCallTo builds a NodeID for a call to fn scoped to a single call
// site.
func SpecializedCallTo(fn FunctionLikeID, file hpos.FilePath, offset uint32) NodeID {
	return NodeID{Kind: KindSpecializedCallTo, Func: fn, Spec: SpecializationKey{File: file, Offset: offset}}
}

// PropertyID builds a NodeID for an (unspecialized) class property.
func PropertyID(class, field strid.ID) NodeID {
	return NodeID{Kind: KindProperty, Class: class, Field: field}
}

// SpecializedProperty builds a NodeID for a class property access scoped to
// a single call site.
func SpecializedProperty(class, field strid.ID, file hpos.FilePath, offset uint32) NodeID {
	return NodeID{Kind: KindSpecializedProperty, Class: class, Field: field, Spec: SpecializationKey{File: file, Offset: offset}}
}

// ShapeFieldAccess builds a NodeID for a single tainted field of a
// structural shape type, as injected by the type expander.
func ShapeFieldAccess(shapeType strid.ID, field string) NodeID {
	return NodeID{Kind: KindShapeFieldAccess, ShapeType: shapeType, FieldName: field}
}

// SyntheticID builds an opaque NodeID from a caller-chosen u64.
func SyntheticID(v uint64) NodeID {
	return NodeID{Kind: KindSynthetic, Synth: v}
}

// NewSyntheticID mints a fresh opaque NodeID from a random uuid, the same
// way the teacher mints flow-node IDs (uuid.New().String()) rather than a
// hand-rolled counter.
func NewSyntheticID() NodeID {
	id := uuid.New()
	return SyntheticID(binary.BigEndian.Uint64(id[8:16]))
}

// IsSpecialized reports whether id is one of the call-site-scoped variants.
func (id NodeID) IsSpecialized() bool {
	return id.Kind == KindSpecializedCallTo || id.Kind == KindSpecializedProperty
}

// Unspecialize strips the (file, offset) tail from a specialized id,
// returning the base id plus the stripped key. If id is not specialized it
// is returned unchanged with an empty key.
func (id NodeID) Unspecialize() (NodeID, SpecializationKey) {
	switch id.Kind {
	case KindSpecializedCallTo:
		base := NodeID{Kind: KindCallTo, Func: id.Func}
		return base, id.Spec
	case KindSpecializedProperty:
		base := NodeID{Kind: KindProperty, Class: id.Class, Field: id.Field}
		return base, id.Spec
	default:
		return id, SpecializationKey{}
	}
}
