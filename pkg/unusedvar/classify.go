// Package unusedvar implements the unused-variable analyzer: a bounded
// forward reachability search from every VariableUseSource node that
// classifies it NeverReferenced, ReferencedButNotUsed or Used, plus an
// AST-walker-driven autofix that turns a "not used" result into a
// Replacement.
package unusedvar

import (
	"github.com/hatlesswizard/hakanaflow/pkg/dataflow"
)

// Usage is the three-way classification a single VariableUseSource node
// receives after its reachability search completes.
type Usage uint8

const (
	NeverReferenced Usage = iota
	ReferencedButNotUsed
	Used
)

// searchRoundBudget bounds isVariableUsed's forward BFS. 200 rounds is
// generous enough that no real function body would ever legitimately need
// more hops between a variable's declaration and its last read; any
// remaining live sources after the budget are conservatively reported as
// used-but-unreachable-in-budget (classified ReferencedButNotUsed, never
// silently dropped).
const searchRoundBudget = 200

// CheckVariablesUsed scans every VariableUseSource node in graph and
// returns the nodes classified NeverReferenced and the nodes classified
// ReferencedButNotUsed (Used nodes are simply omitted from both slices,
// mirroring the original two-list return shape).
func CheckVariablesUsed(graph *dataflow.Graph) (never, referencedButNotUsed []dataflow.Node) {
	for _, source := range graph.Sources {
		if source.Tag != dataflow.KindTagVariableUseSource {
			continue
		}

		switch isVariableUsed(graph, source) {
		case NeverReferenced:
			if source.Pure && source.VarKind == dataflow.VarDefault {
				never = append(never, source)
			} else {
				referencedButNotUsed = append(referencedButNotUsed, source)
			}
		case ReferencedButNotUsed:
			referencedButNotUsed = append(referencedButNotUsed, source)
		case Used:
		}
	}
	return never, referencedButNotUsed
}

// VariableUseNode is the per-round search state threaded through
// isVariableUsed/getVariableChildNodes: the original position and kind of
// the variable being tracked, plus the path labels accumulated so far.
type VariableUseNode struct {
	Pos      dataflow.Node
	PathKinds []dataflow.PathKind
	VarKind   dataflow.VariableSourceKind
}

// NewVariableUseNode adapts a graph node into search state. It returns an
// error instead of panicking on a node kind the search never expects to
// see (any kind other than Vertex, VariableUseSource or VariableUseSink),
// since a malformed caller-supplied node shouldn't bring down a
// long-running multi-file analysis run.
func NewVariableUseNode(n dataflow.Node) (VariableUseNode, error) {
	switch n.Tag {
	case dataflow.KindTagVertex, dataflow.KindTagVariableUseSink:
		return VariableUseNode{Pos: n, VarKind: dataflow.VarDefault}, nil
	case dataflow.KindTagVariableUseSource:
		return VariableUseNode{Pos: n, VarKind: n.VarKind}, nil
	default:
		return VariableUseNode{}, errUnsupportedNodeKind(n.Tag)
	}
}

type errUnsupportedNodeKind dataflow.NodeKindTag

func (e errUnsupportedNodeKind) Error() string {
	return "unusedvar: cannot build a VariableUseNode from this node kind"
}

func isVariableUsed(graph *dataflow.Graph, sourceNode dataflow.Node) Usage {
	visited := make(map[dataflow.NodeID]struct{})

	start, err := NewVariableUseNode(sourceNode)
	if err != nil {
		return Used
	}

	sources := map[dataflow.NodeID]VariableUseNode{sourceNode.ID: start}

	round := 0
	for ; round < searchRoundBudget; round++ {
		if len(sources) == 0 {
			break
		}

		newChildren := make(map[dataflow.NodeID]VariableUseNode)

		for id, source := range sources {
			visited[id] = struct{}{}

			children, stillLive := getVariableChildNodes(graph, id, source, visited)
			if !stillLive {
				return Used
			}
			for childID, child := range children {
				newChildren[childID] = child
			}
		}

		sources = newChildren
	}

	if round == 1 {
		return NeverReferenced
	}
	return ReferencedButNotUsed
}

// getVariableChildNodes expands one BFS round from generatedSourceID. The
// second return is false exactly when the search should stop entirely
// because it reached a sink (the variable is used); true otherwise, even
// if the resulting map is empty.
func getVariableChildNodes(
	graph *dataflow.Graph,
	generatedSourceID dataflow.NodeID,
	generatedSource VariableUseNode,
	visited map[dataflow.NodeID]struct{},
) (map[dataflow.NodeID]VariableUseNode, bool) {
	newChildren := make(map[dataflow.NodeID]VariableUseNode)

	edges, ok := graph.ForwardEdges[generatedSourceID]
	if !ok {
		return newChildren, true
	}

	for toID, path := range edges {
		if _, isSink := graph.Sinks[toID]; isSink {
			return nil, false
		}

		if _, seen := visited[toID]; seen {
			continue
		}

		if shouldIgnoreArrayFetch(path.Kind, dataflow.ArrayKey, generatedSource.PathKinds) {
			continue
		}
		if shouldIgnoreArrayFetch(path.Kind, dataflow.ArrayValue, generatedSource.PathKinds) {
			continue
		}
		if shouldIgnorePropertyFetch(path.Kind, generatedSource.PathKinds) {
			continue
		}

		nextPathKinds := make([]dataflow.PathKind, len(generatedSource.PathKinds), len(generatedSource.PathKinds)+1)
		copy(nextPathKinds, generatedSource.PathKinds)
		nextPathKinds = append(nextPathKinds, path.Kind)

		newChildren[toID] = VariableUseNode{
			Pos:       generatedSource.Pos,
			VarKind:   generatedSource.VarKind,
			PathKinds: nextPathKinds,
		}
	}

	return newChildren, true
}

// shouldIgnoreArrayFetch reports whether a forward edge reading an
// unkeyed (wildcard) array element of the given kind should be skipped
// rather than counted as a use — a generic "iterate the whole array"
// fetch can't be attributed back to any one assignment, so following it
// would make every element assignment look used regardless of whether
// that specific element is ever read.
func shouldIgnoreArrayFetch(path dataflow.PathKind, kind dataflow.ArrayDataKind, traversed []dataflow.PathKind) bool {
	if path.Tag != dataflow.PathArrayFetch || path.ArrayKind != kind {
		return false
	}
	return path.Key == ""
}

// shouldIgnorePropertyFetch reports whether a forward edge reading an
// object property with no statically known field name should be skipped,
// for the same reason shouldIgnoreArrayFetch skips a wildcard array read.
func shouldIgnorePropertyFetch(path dataflow.PathKind, traversed []dataflow.PathKind) bool {
	if path.Tag != dataflow.PathPropertyFetch {
		return false
	}
	return path.Field == 0
}
