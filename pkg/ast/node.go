// Package ast adapts tree-sitter's concrete syntax tree into the thin
// surface the rest of this module's analysis packages need: positions,
// node kinds, children, a handful of pattern predicates, and comment
// extraction. It wraps the PHP grammar (github.com/smacker/go-tree-sitter),
// the same tree-sitter binding the teacher's own multi-language extractor
// registry used, narrowed down to the single subject-language grammar this
// module's analysis actually needs.
package ast

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
)

// Node wraps a single tree-sitter node together with the source bytes it
// was parsed from, so callers never need to thread the source buffer
// around separately.
type Node struct {
	raw *sitter.Node
	src []byte
	// file is stamped onto every HPos this Node produces.
	file hpos.FilePath
}

// Tree is a parsed file: its root Node plus the byte source it was parsed
// from, returned by Parse. Close must be called once the caller is done
// with it to release the underlying tree-sitter tree memory.
type Tree struct {
	Root Node
	Src  []byte
	raw  *sitter.Tree
}

// Close releases the underlying tree-sitter tree. Safe to call on a zero
// Tree.
func (t *Tree) Close() {
	if t != nil && t.raw != nil {
		t.raw.Close()
	}
}

// Wrap adapts a raw tree-sitter node plus its source buffer into a Node.
func Wrap(raw *sitter.Node, src []byte, file hpos.FilePath) Node {
	return Node{raw: raw, src: src, file: file}
}

// IsValid reports whether the Node wraps a non-nil tree-sitter node.
func (n Node) IsValid() bool { return n.raw != nil }

// Kind returns the tree-sitter grammar rule name for this node
// ("assignment_expression", "function_call_expression", ...).
func (n Node) Kind() string {
	if n.raw == nil {
		return ""
	}
	return n.raw.Type()
}

// Text returns the exact source text this node spans.
func (n Node) Text() string {
	if n.raw == nil {
		return ""
	}
	return string(n.src[n.raw.StartByte():n.raw.EndByte()])
}

// Pos returns this node's source span as an HPos.
func (n Node) Pos() hpos.HPos {
	if n.raw == nil {
		return hpos.HPos{File: n.file}
	}
	return hpos.HPos{
		File:        n.file,
		StartOffset: n.raw.StartByte(),
		EndOffset:   n.raw.EndByte(),
		StartLine:   n.raw.StartPoint().Row + 1,
		EndLine:     n.raw.EndPoint().Row + 1,
		StartCol:    n.raw.StartPoint().Column,
		EndCol:      n.raw.EndPoint().Column,
	}
}

// Children returns this node's direct children, skipping nil slots.
func (n Node) Children() []Node {
	if n.raw == nil {
		return nil
	}
	count := int(n.raw.ChildCount())
	children := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.raw.Child(i)
		if child == nil {
			continue
		}
		children = append(children, Node{raw: child, src: n.src, file: n.file})
	}
	return children
}

// ChildByFieldName returns the named field child, if the grammar rule for
// this node defines one with that name.
func (n Node) ChildByFieldName(name string) (Node, bool) {
	if n.raw == nil {
		return Node{}, false
	}
	child := n.raw.ChildByFieldName(name)
	if child == nil {
		return Node{}, false
	}
	return Node{raw: child, src: n.src, file: n.file}, true
}

// Parent returns this node's parent, if any.
func (n Node) Parent() (Node, bool) {
	if n.raw == nil || n.raw.Parent() == nil {
		return Node{}, false
	}
	return Node{raw: n.raw.Parent(), src: n.src, file: n.file}, true
}

// Walk calls visit for n and every descendant, depth-first, pre-order.
func Walk(n Node, visit func(Node)) {
	if n.raw == nil {
		return
	}
	visit(n)
	for _, child := range n.Children() {
		Walk(child, visit)
	}
}
