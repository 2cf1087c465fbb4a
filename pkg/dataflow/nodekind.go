package dataflow

import "github.com/hatlesswizard/hakanaflow/pkg/hpos"

// VariableSourceKind distinguishes how a VariableUseSource node came to
// exist, which the unused-variable analyzer (pkg/unusedvar) uses to decide
// whether a never-referenced source is a "hard" removable statement or a
// "soft" one.
type VariableSourceKind uint8

const (
	VarDefault VariableSourceKind = iota
	VarPrivateParam
	VarNonPrivateParam
	VarInoutParam
	VarClosure
)

// NodeKindTag enumerates the node-kind variants of the data model.
type NodeKindTag uint8

const (
	KindTagVertex NodeKindTag = iota
	KindTagTaintSource
	KindTagVariableUseSource
	KindTagVariableUseSink
	KindTagTaintSink
	KindTagDataSource
	KindTagForLoopInit
)

// Node is a single data-flow graph node. Like PathKind, it is a flat struct
// with a discriminator (Tag) rather than one Go type per variant, so fields
// shared across call sites (Pos, SinkTypes) don't need a type switch to
// reach.
type Node struct {
	ID  NodeID
	Tag NodeKindTag

	// Pos is nil for an unspecialized Vertex that was never given a source
	// location (e.g. a purely synthetic node), and for a TaintSource,
	// TaintSink or DataSource built with a nil position.
	Pos *hpos.HPos

	// IsSpecialized is meaningful only for KindTagVertex; it controls
	// whether Graph.AddNode also updates the specialization index.
	IsSpecialized bool

	// SinkTypes is meaningful for KindTagTaintSource and KindTagTaintSink.
	SinkTypes []string

	// VarKind and Pure are meaningful for KindTagVariableUseSource.
	VarKind VariableSourceKind
	Pure    bool
}

// VertexNode builds a plain Vertex node.
func VertexNode(id NodeID, pos *hpos.HPos, isSpecialized bool) Node {
	return Node{ID: id, Tag: KindTagVertex, Pos: pos, IsSpecialized: isSpecialized}
}

// TaintSourceNode builds a TaintSource node.
func TaintSourceNode(id NodeID, pos *hpos.HPos, sinkTypes []string) Node {
	return Node{ID: id, Tag: KindTagTaintSource, Pos: pos, SinkTypes: sinkTypes}
}

// TaintSinkNode builds a TaintSink node.
func TaintSinkNode(id NodeID, pos *hpos.HPos, sinkTypes []string) Node {
	return Node{ID: id, Tag: KindTagTaintSink, Pos: pos, SinkTypes: sinkTypes}
}

// VariableUseSourceNode builds a VariableUseSource node.
func VariableUseSourceNode(id NodeID, pos hpos.HPos, kind VariableSourceKind, pure bool) Node {
	p := pos
	return Node{ID: id, Tag: KindTagVariableUseSource, Pos: &p, VarKind: kind, Pure: pure}
}

// VariableUseSinkNode builds a VariableUseSink node.
func VariableUseSinkNode(id NodeID, pos hpos.HPos) Node {
	p := pos
	return Node{ID: id, Tag: KindTagVariableUseSink, Pos: &p}
}

// DataSourceNode builds a DataSource node.
func DataSourceNode(id NodeID, pos *hpos.HPos) Node {
	return Node{ID: id, Tag: KindTagDataSource, Pos: pos}
}

// ForLoopInitNode builds a ForLoopInit node.
func ForLoopInitNode(id NodeID, pos hpos.HPos) Node {
	p := pos
	return Node{ID: id, Tag: KindTagForLoopInit, Pos: &p}
}

// isSourceKind reports whether a node kind belongs in Graph.Sources.
func (n Node) isSourceKind() bool {
	switch n.Tag {
	case KindTagTaintSource, KindTagVariableUseSource, KindTagDataSource, KindTagForLoopInit:
		return true
	default:
		return false
	}
}

// isSinkKind reports whether a node kind belongs in Graph.Sinks.
func (n Node) isSinkKind() bool {
	switch n.Tag {
	case KindTagTaintSink, KindTagVariableUseSink:
		return true
	default:
		return false
	}
}
