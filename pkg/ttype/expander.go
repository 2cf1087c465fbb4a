package ttype

import (
	"fmt"
	"strings"

	"github.com/hatlesswizard/hakanaflow/pkg/codebase"
	"github.com/hatlesswizard/hakanaflow/pkg/dataflow"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

// Expander resolves TUnion values against a codebase.Reader, injecting any
// shape-field taint it discovers into a dataflow.Graph as it goes. It holds
// an optional *strid.Interner, matching the original's
// `interner: &Option<&Interner>` — when nil, no shape-field taint is
// injected at all.
type Expander struct {
	Codebase codebase.Reader
	Interner *strid.Interner
	Graph    *dataflow.Graph
}

// NewExpander returns an Expander over cb, optionally wired to interner
// and graph for shape-taint injection.
func NewExpander(cb codebase.Reader, interner *strid.Interner, graph *dataflow.Graph) *Expander {
	return &Expander{Codebase: cb, Interner: interner, Graph: graph}
}

// ExpandUnion resolves every member of u in place against opts. A member
// that expandAtomic replaces is dropped from u.Types and its replacements
// collected; once every member has been visited, a replaced fan-out of more
// than one atomic is run through combineAtomics — the canonical-merge step
// the original calls type_combiner::combine — rather than just appended.
func (e *Expander) ExpandUnion(u *TUnion, opts Options) {
	var newParts []TAtomic
	var extra []dataflow.NodeID
	skipped := make(map[int]bool, len(u.Types))

	for i := range u.Types {
		skip, expanded := e.expandAtomic(u.Types[i], opts, &extra)
		if skip {
			skipped[i] = true
			newParts = append(newParts, expanded...)
		}
	}

	if len(skipped) > 0 {
		kept := make([]TAtomic, 0, len(u.Types)-len(skipped))
		for i, part := range u.Types {
			if !skipped[i] {
				kept = append(kept, part)
			}
		}
		newParts = append(newParts, kept...)

		if len(newParts) > 1 {
			u.Types = combineAtomics(newParts)
		} else {
			u.Types = newParts
		}
	}

	u.ParentNodes = extendParentNodesUniquely(u.ParentNodes, extra)
}

// combineAtomics canonically merges a replacement fan-out from a single
// union member into the smallest equivalent set: exact duplicates collapse
// to one, and more than one dict/shape atomic (e.g. from a this-qualified
// class type constant resolving against more than one concrete bound)
// merges its known fields into a single dict. This is a reconstruction of
// the original's type_combiner::combine, scoped to the merge shapes
// ExpandUnion can actually produce — that module's source wasn't part of
// the retrieved original sources, so it isn't ported line-for-line.
func combineAtomics(parts []TAtomic) []TAtomic {
	if len(parts) <= 1 {
		return parts
	}

	var dicts []TAtomic
	var rest []TAtomic
	seen := make(map[string]bool, len(parts))

	for _, p := range parts {
		if p.Tag == TDict {
			dicts = append(dicts, p)
			continue
		}
		key := atomicDedupeKey(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		rest = append(rest, p)
	}

	if len(dicts) <= 1 {
		return append(dicts, rest...)
	}

	merged := dicts[0]
	sameShape := merged.ShapeName != nil
	for _, d := range dicts[1:] {
		merged.KnownItems = append(merged.KnownItems, d.KnownItems...)
		if !sameShape || d.ShapeName == nil || *d.ShapeName != *merged.ShapeName {
			sameShape = false
		}
	}
	if !sameShape {
		merged.ShapeName = nil
	}

	return append([]TAtomic{merged}, rest...)
}

// atomicDedupeKey is a cheap structural fingerprint used only to collapse
// exact duplicates in combineAtomics; it is not a general type-equality
// check.
func atomicDedupeKey(a TAtomic) string {
	return fmt.Sprintf("%d|%d|%d|%d|%t|%t", a.Tag, a.ClassName, a.EnumName, a.CaseName, a.IsThis, a.IsLiteralString)
}

// expandAtomic resolves a single atomic. It returns skip=true when a is
// replaced by zero or more new members (expanded); skip=false means a is
// kept at its original position (after any in-place recursive expansion of
// its own type parameters, which works through a's pointer-typed fields
// even though a itself is a by-value copy).
func (e *Expander) expandAtomic(a TAtomic, opts Options, extra *[]dataflow.NodeID) (bool, []TAtomic) {
	switch a.Tag {
	case TDict:
		result := a
		if result.KeyParam != nil {
			e.ExpandUnion(result.KeyParam, opts)
		}
		if result.ValueParam != nil {
			e.ExpandUnion(result.ValueParam, opts)
		}
		for i := range result.KnownItems {
			if result.KnownItems[i].Type != nil {
				e.ExpandUnion(result.KnownItems[i].Type, opts)
			}
		}
		if opts.ExpandAllTypeAliases && result.ShapeName != nil {
			result.ShapeName = nil
			return true, []TAtomic{result}
		}
		return false, nil

	case TVec:
		if a.ValueParam != nil {
			e.ExpandUnion(a.ValueParam, opts)
		}
		for i := range a.KnownItems {
			if a.KnownItems[i].Type != nil {
				e.ExpandUnion(a.KnownItems[i].Type, opts)
			}
		}
		return false, nil

	case TKeyset, TAwaitable:
		if a.Inner != nil {
			e.ExpandUnion(a.Inner, opts)
		}
		return false, nil

	case TNamedObject:
		if !a.IsThis {
			for _, tp := range a.TypeParams {
				e.ExpandUnion(tp, opts)
			}
			return false, nil
		}
		switch opts.StaticClassType.Tag {
		case StaticClassNone:
			return false, nil
		case StaticClassName:
			renamed := a
			renamed.ClassName = opts.StaticClassType.Name
			renamed.IsThis = false
			return true, []TAtomic{renamed}
		case StaticClassObject:
			return true, []TAtomic{*opts.StaticClassType.Object}
		}
		return false, nil

	case TClosure:
		for _, p := range a.ClosureParams {
			e.ExpandUnion(p, opts)
		}
		if a.ClosureReturn != nil {
			e.ExpandUnion(a.ClosureReturn, opts)
		}
		return false, nil

	case TGenericParam:
		if !opts.ExpandGeneric {
			return false, nil
		}
		if a.AsType != nil {
			e.ExpandUnion(a.AsType, opts)
		}
		return false, nil

	case TClassname, TTypename:
		if a.AsType != nil {
			e.ExpandUnion(a.AsType, opts)
		}
		return false, nil

	case TEnumLiteralCase, TEnum, TMemberReference, TClassTypeConstant, TClosureAlias:
		return e.expandClassReference(a, opts)

	case TTypeAlias:
		return e.expandTypeAlias(a, opts, extra)

	default:
		return false, nil
	}
}

// expandClassReference resolves the class-relative variants that all
// bottom out in a lookup against codebase.Reader: enum case/enum
// themselves, a member reference (::T on a class), a class type constant,
// or a closure alias (function pointer literal type).
func (e *Expander) expandClassReference(a TAtomic, opts Options) (bool, []TAtomic) {
	if !opts.EvaluateClassConstants {
		return false, nil
	}

	switch a.Tag {
	case TEnumLiteralCase:
		return e.expandEnumLiteralCase(a, opts)

	case TEnum:
		return e.expandEnum(a, opts)

	case TMemberReference:
		return e.expandMemberReference(a, opts)

	case TClassTypeConstant:
		return e.expandClassTypeConstant(a, opts)

	case TClosureAlias:
		return e.expandClosureAlias(a, opts)
	}

	return false, nil
}

// expandEnumLiteralCase attaches an enum case's backing type when it
// hasn't been attached yet, then expands that backing type in place.
func (e *Expander) expandEnumLiteralCase(a TAtomic, opts Options) (bool, []TAtomic) {
	result := a
	changed := false

	if result.AsType == nil {
		if info, ok := e.Codebase.ClasslikeInfos()[a.EnumName]; ok && info.EnumAsType != "" {
			result.AsType = ParseAliasedType(info.EnumAsType)
			changed = changed || result.AsType != nil
		}
	}

	if result.AsType != nil {
		e.ExpandUnion(result.AsType, opts)
		changed = true
	}

	if !changed {
		return false, nil
	}
	return true, []TAtomic{result}
}

// expandEnum unconditionally resolves and expands an enum's backing type,
// regardless of whether AsType was already populated.
func (e *Expander) expandEnum(a TAtomic, opts Options) (bool, []TAtomic) {
	info, ok := e.Codebase.ClasslikeInfos()[a.EnumName]
	if !ok || info.EnumAsType == "" {
		return false, nil
	}

	backing := ParseAliasedType(info.EnumAsType)
	if backing == nil {
		return false, nil
	}
	e.ExpandUnion(backing, opts)

	result := a
	result.AsType = backing
	return true, []TAtomic{result}
}

// expandMemberReference resolves a bare `Class::CONST` reference: the
// literal constant value if one is known, else the constant's declared
// type, else Mixed. This variant always replaces its union position (the
// original always sets skip_key for it), even when the result is a single
// Mixed atomic.
func (e *Expander) expandMemberReference(a TAtomic, opts Options) (bool, []TAtomic) {
	if _, ok := e.Codebase.GetClassconstLiteralValue(a.RefClass, a.RefMember); ok {
		literalAtomic := TAtomic{Tag: TScalar, IsLiteralString: true}
		var extra []dataflow.NodeID
		if skip, expanded := e.expandAtomic(literalAtomic, opts, &extra); skip {
			return true, expanded
		}
		return true, []TAtomic{literalAtomic}
	}

	if constTypeText, ok := e.Codebase.GetClassConstantType(a.RefClass, a.RefMember); ok {
		constType := ParseAliasedType(constTypeText)
		if constType != nil {
			e.ExpandUnion(constType, opts)
			return true, constType.Types
		}
	}

	return true, []TAtomic{{Tag: TMixed}}
}

// expandClassTypeConstant resolves `Class::TConstant`: the class
// reference first (substituting `this` per opts.StaticClassType, requiring
// it resolve to a named object), then the named type constant on that
// class. A concrete constant, or an abstract one with a bound accessed
// non-polymorphically, expands and emits with shape_name=(class,member)
// attached to any resulting shape. An abstract-with-bound constant
// accessed through `this` instead keeps the TClassTypeConstant atomic and
// stores the expanded bound on AsType, since the concrete type still
// depends on the eventual runtime subclass.
func (e *Expander) expandClassTypeConstant(a TAtomic, opts Options) (bool, []TAtomic) {
	className := a.RefClass
	isThis := a.RefClassIsThis

	if isThis {
		switch opts.StaticClassType.Tag {
		case StaticClassName:
			className = opts.StaticClassType.Name
			isThis = false
		case StaticClassObject:
			obj := opts.StaticClassType.Object
			if obj == nil || obj.Tag != TNamedObject {
				return true, []TAtomic{{Tag: TMixed}}
			}
			if e.Codebase.ClassExtendsOrImplements(obj.ClassName, a.RefClass) {
				className = obj.ClassName
			} else {
				isThis = false
			}
		case StaticClassNone:
			isThis = false
		}
	}

	info, ok := e.Codebase.ClasslikeInfos()[className]
	if !ok {
		return true, []TAtomic{{Tag: TMixed}}
	}

	tc, ok := info.TypeConstants[a.RefMember]
	if !ok {
		return true, []TAtomic{{Tag: TMixed}}
	}

	switch {
	case tc.Kind == codebase.TypeConstantConcrete && tc.HasType,
		tc.Kind == codebase.TypeConstantAbstract && tc.HasType && !isThis:
		underlying := ParseAliasedType(tc.TypeText)
		if underlying == nil {
			return true, []TAtomic{{Tag: TMixed}}
		}
		e.ExpandUnion(underlying, opts)

		result := make([]TAtomic, len(underlying.Types))
		for i, t := range underlying.Types {
			if t.Tag == TDict && t.KnownItems != nil {
				t.ShapeName = &ShapeName{Name: className, Member: a.RefMember, HasMember: true}
			}
			result[i] = t
		}
		return true, result

	case tc.Kind == codebase.TypeConstantAbstract && tc.HasType && isThis:
		bound := ParseAliasedType(tc.TypeText)
		if bound == nil {
			return false, nil
		}
		e.ExpandUnion(bound, opts)

		withBound := a
		withBound.AsType = bound
		return true, []TAtomic{withBound}

	default:
		return false, nil
	}
}

// expandClosureAlias resolves a closure-alias literal (a function pointer
// type, `Class::method<>` or a bare function name) into a fresh TClosure
// atomic whose parameter and return types are expanded copies of the
// callee's own signature.
func (e *Expander) expandClosureAlias(a TAtomic, opts Options) (bool, []TAtomic) {
	var fn *codebase.FunctionLikeInfo
	var ok bool
	if a.RefClass != strid.Empty {
		fn, ok = e.Codebase.GetMethod(a.RefClass, a.RefMember)
	} else {
		fn, ok = e.Codebase.FunctionlikeInfos()[a.RefMember]
	}
	if !ok {
		return true, []TAtomic{{Tag: TMixed}}
	}

	closure := TAtomic{Tag: TClosure}
	for _, p := range fn.Params {
		paramType := ParseAliasedType(p.Type)
		if paramType == nil {
			paramType = WrapAtomic(TAtomic{Tag: TMixed})
		}
		e.ExpandUnion(paramType, opts)
		closure.ClosureParams = append(closure.ClosureParams, paramType)
	}
	if fn.ReturnType != "" {
		if retType := ParseAliasedType(fn.ReturnType); retType != nil {
			e.ExpandUnion(retType, opts)
			closure.ClosureReturn = retType
		}
	}

	return true, []TAtomic{closure}
}

// expandTypeAlias resolves a `type`/`newtype` reference against the
// codebase's type definitions. Whether the alias is allowed to expand
// (rather than staying opaque) follows the exact rule the original
// implementation uses as far as this codebase model allows: a plain
// `type` alias always expands; a newtype expands only when the caller has
// no file_path (e.g. a whole-program pass with no single owning file) and
// has set expand_all_type_aliases. With a file_path set, a newtype stays
// opaque, since its declaring file is not tracked and cannot be compared.
func (e *Expander) expandTypeAlias(a TAtomic, opts Options, extra *[]dataflow.NodeID) (bool, []TAtomic) {
	if !opts.ExpandTypenames {
		return false, nil
	}

	def, ok := e.Codebase.TypeDefinitions()[a.AliasName]
	if !ok {
		return true, []TAtomic{{Tag: TMixed}}
	}

	// The declaring file of a newtype isn't tracked in this minimal
	// codebase.TypeDefinition (pkg/codebase deliberately carries no
	// dependency on this package's types), so no file-equality check is
	// made: with a file_path present a newtype never expands; absent one, a
	// newtype expands exactly when the caller has asked for every alias to
	// expand regardless of file — as upstream does, since a caller with no
	// single owning file (e.g. a whole-program pass) has no file boundary
	// left to enforce either way.
	canExpand := true
	if def.IsNewtype {
		if opts.HasFilePath {
			canExpand = false
		} else {
			canExpand = opts.ExpandAllTypeAliases
		}
	}

	if !canExpand {
		return false, nil
	}

	// Re-resolve the alias's right-hand side. This minimal model stores it
	// as unparsed text rather than a pre-built TUnion (pkg/codebase
	// intentionally carries no dependency on this package's type model),
	// so ParseAliasedType owns turning that text into structure.
	underlying := ParseAliasedType(def.AliasedTypeName)
	if underlying == nil {
		return true, []TAtomic{{Tag: TMixed}}
	}

	e.ExpandUnion(underlying, opts)

	expanded := make([]TAtomic, len(underlying.Types))
	copy(expanded, underlying.Types)

	for i := range expanded {
		if expanded[i].Tag != TDict || expanded[i].KnownItems == nil {
			continue
		}
		e.injectShapeTaint(a.AliasName, def, &expanded[i])
		if !opts.ExpandAllTypeAliases {
			expanded[i].ShapeName = &ShapeName{Name: a.AliasName}
		}
	}

	*extra = extendParentNodesUniquely(*extra, underlying.ParentNodes)
	return true, expanded
}

// TypeDefWithTaints augments codebase.TypeDefinition with the shape-field
// taint annotations a type alias can carry (`<<HakanaTaint(...)>>` on a
// shape field in the subject language). The expander upcasts to this
// richer interface rather than reading codebase.TypeDefinition.FieldTaints
// directly, so it stays agnostic to where the taint data actually lives.
type TypeDefWithTaints interface {
	ShapeFieldTaints() map[string][]string
}

// injectShapeTaint wires a TaintSource node for every annotated field of a
// shape-backed type alias into e.Graph, mirroring the original's per-field
// DataFlowNode::ShapeFieldAccess wiring. Silently does nothing if e.Graph
// or e.Interner is nil, def doesn't implement TypeDefWithTaints, or it
// carries no taint annotations.
func (e *Expander) injectShapeTaint(aliasName strid.ID, def *codebase.TypeDefinition, dict *TAtomic) {
	if e.Graph == nil || e.Interner == nil {
		return
	}
	tainted, ok := interface{}(def).(TypeDefWithTaints)
	if !ok {
		return
	}
	fieldTaints := tainted.ShapeFieldTaints()
	if len(fieldTaints) == 0 {
		return
	}

	shapeNode := dataflow.VertexNode(dataflow.ShapeFieldAccess(aliasName, ""), nil, false)
	e.Graph.AddNode(shapeNode)

	for fieldName, taints := range fieldTaints {
		fieldNode := dataflow.TaintSourceNode(
			dataflow.ShapeFieldAccess(aliasName, fieldName),
			nil,
			taints,
		)
		e.Graph.AddNode(fieldNode)
		e.Graph.AddPath(fieldNode.ID, shapeNode.ID, dataflow.ArrayAssignment(dataflow.ArrayValue, fieldName), nil, nil)
	}
}

// ParseAliasedType parses the literal right-hand-side text of a type alias
// (or a class constant's declared type, or a closure parameter/return
// type — every caller here hands it the same unparsed text) into a
// TUnion. The one structural form it recognizes is a shape literal —
// `shape('field' => Type, ...)` — since that's the form the shape-taint
// injection path needs to see land as a TDict; anything else (a scalar
// type name, a class reference, a nullable prefix, and so on) falls back
// to a bare Mixed member. A full type grammar belongs to the (not-yet
// built) type parser that feeds discovery, not this expander.
func ParseAliasedType(text string) *TUnion {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if fields, ok := parseShapeLiteral(text); ok {
		items := make([]KnownItem, 0, len(fields))
		for _, f := range fields {
			fieldType := ParseAliasedType(f.typeText)
			if fieldType == nil {
				fieldType = WrapAtomic(TAtomic{Tag: TMixed})
			}
			items = append(items, KnownItem{
				Key:  DictKey{Tag: DictKeyString, Str: f.name},
				Type: fieldType,
			})
		}
		return WrapAtomic(TAtomic{Tag: TDict, KnownItems: items})
	}

	return WrapAtomic(TAtomic{Tag: TMixed})
}

// shapeField is one `'name' => Type` pair inside a shape literal.
type shapeField struct {
	name     string
	typeText string
}

// parseShapeLiteral recognizes `shape('k1' => T1, 'k2' => T2, ...)`,
// splitting on top-level commas (ignoring ones nested inside a field's own
// parenthesized type) so it can be recursed into for a nested shape field.
func parseShapeLiteral(text string) ([]shapeField, bool) {
	if !strings.HasPrefix(text, "shape(") || !strings.HasSuffix(text, ")") {
		return nil, false
	}

	body := text[len("shape(") : len(text)-1]
	if strings.TrimSpace(body) == "" {
		return []shapeField{}, true
	}

	var fields []shapeField
	for _, part := range splitTopLevel(body, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		arrow := strings.Index(part, "=>")
		if arrow < 0 {
			return nil, false
		}
		key := strings.TrimSpace(part[:arrow])
		key = strings.Trim(key, "'\"")
		typeText := strings.TrimSpace(part[arrow+2:])
		fields = append(fields, shapeField{name: key, typeText: typeText})
	}
	return fields, true
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// parentheses.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
