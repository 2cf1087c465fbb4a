package ttype

import "github.com/hatlesswizard/hakanaflow/pkg/dataflow"

// TUnion is a union type: one or more TAtomic members plus the set of
// data-flow graph nodes this value's taint traces back to. ParentNodes is
// threaded straight through as []dataflow.NodeID — rather than requiring
// pkg/dataflow to import this package's TUnion — so the two packages
// don't form an import cycle; callers that need the parent-node set
// extract it from the TUnion themselves before calling into
// dataflow.Graph.
type TUnion struct {
	Types       []TAtomic
	ParentNodes []dataflow.NodeID
}

// WrapAtomic builds a single-member TUnion, the common case for a freshly
// synthesized type.
func WrapAtomic(a TAtomic) *TUnion {
	return &TUnion{Types: []TAtomic{a}}
}

// extendParentNodesUniquely appends newNodes to existing without
// duplicating an id already present.
func extendParentNodesUniquely(existing []dataflow.NodeID, newNodes []dataflow.NodeID) []dataflow.NodeID {
	seen := make(map[dataflow.NodeID]struct{}, len(existing))
	for _, id := range existing {
		seen[id] = struct{}{}
	}
	for _, id := range newNodes {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		existing = append(existing, id)
	}
	return existing
}
