// Package dataflow implements the data-flow graph: vertices and directed,
// path-labeled edges recording where values originate, where they flow, and
// where they are observed. It is the hard core the type expander
// (pkg/ttype) injects nodes into and the unused-variable analyzer
// (pkg/unusedvar) performs bounded reachability searches over.
package dataflow

import (
	"fmt"

	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

// originWalkBudget bounds DataFlowGraph.GetOriginNodeIDs: a safety limit
// against pathological cycles, not a correctness requirement. Exceeding it
// yields a conservative (partial) answer.
const originWalkBudget = 50

// Kind distinguishes a per-function-body graph (which tracks backward edges
// for reachability walks) from a whole-program graph (which tracks call-site
// specializations instead). Merging requires matching kinds.
type Kind uint8

const (
	FunctionBody Kind = iota
	WholeProgramTaint
	WholeProgramQuery
)

func (k Kind) String() string {
	switch k {
	case FunctionBody:
		return "FunctionBody"
	case WholeProgramTaint:
		return "WholeProgram(Taint)"
	case WholeProgramQuery:
		return "WholeProgram(Query)"
	default:
		return "Kind(?)"
	}
}

// Graph is the data-flow graph for either a single function body or the
// whole program, per Kind.
type Graph struct {
	Kind Kind

	Vertices map[NodeID]Node
	Sources  map[NodeID]Node
	Sinks    map[NodeID]Node

	ForwardEdges  map[NodeID]map[NodeID]Path
	BackwardEdges map[NodeID]map[NodeID]struct{} // FunctionBody only

	MixedSourceCounts map[NodeID]map[string]struct{} // FunctionBody only

	Specializations map[NodeID]map[SpecializationKey]struct{} // WholeProgram only
	specializedCalls map[SpecializationKey]map[NodeID]struct{}
}

// New returns an empty graph of the given kind.
func New(kind Kind) *Graph {
	return &Graph{
		Kind:              kind,
		Vertices:          make(map[NodeID]Node),
		Sources:           make(map[NodeID]Node),
		Sinks:             make(map[NodeID]Node),
		ForwardEdges:      make(map[NodeID]map[NodeID]Path),
		BackwardEdges:     make(map[NodeID]map[NodeID]struct{}),
		MixedSourceCounts: make(map[NodeID]map[string]struct{}),
		Specializations:   make(map[NodeID]map[SpecializationKey]struct{}),
		specializedCalls:  make(map[SpecializationKey]map[NodeID]struct{}),
	}
}

// AddNode routes n into Vertices, Sources or Sinks by its kind. For
// whole-program graphs, a specialized Vertex also updates the
// Specializations/specializedCalls mutual-inverse index.
func (g *Graph) AddNode(n Node) {
	switch {
	case n.Tag == KindTagVertex:
		if g.Kind != FunctionBody && n.IsSpecialized {
			unspecialized, key := n.ID.Unspecialize()
			if g.Specializations[unspecialized] == nil {
				g.Specializations[unspecialized] = make(map[SpecializationKey]struct{})
			}
			g.Specializations[unspecialized][key] = struct{}{}

			if g.specializedCalls[key] == nil {
				g.specializedCalls[key] = make(map[NodeID]struct{})
			}
			g.specializedCalls[key][unspecialized] = struct{}{}
		}
		g.Vertices[n.ID] = n
	case n.isSourceKind():
		g.Sources[n.ID] = n
	case n.isSinkKind():
		g.Sinks[n.ID] = n
	default:
		g.Vertices[n.ID] = n
	}
}

// AddPath records a directed, labeled edge from "from" to "to". Self-loops
// (from == to) are silently dropped. In FunctionBody mode the reverse edge
// is also recorded for use by GetOriginNodeIDs.
func (g *Graph) AddPath(from, to NodeID, kind PathKind, addedTaints, removedTaints []string) {
	if from == to {
		return
	}

	if g.Kind == FunctionBody {
		if g.BackwardEdges[to] == nil {
			g.BackwardEdges[to] = make(map[NodeID]struct{})
		}
		g.BackwardEdges[to][from] = struct{}{}
	}

	if g.ForwardEdges[from] == nil {
		g.ForwardEdges[from] = make(map[NodeID]Path)
	}
	g.ForwardEdges[from][to] = Path{Kind: kind, AddedTaints: addedTaints, RemovedTaints: removedTaints}
}

// AddGraph merges other into g. It fails if the two graphs' kinds differ —
// a mismatched merge is a caller bug, surfaced as an error rather than a
// panic since multiple workers may be merging per-file graphs concurrently
// (see the module's concurrency model) and a panic would take the whole
// process down for what the caller can recover from.
func (g *Graph) AddGraph(other *Graph) error {
	if g.Kind != other.Kind {
		return fmt.Errorf("dataflow: cannot merge graph of kind %s into graph of kind %s", other.Kind, g.Kind)
	}

	for from, edges := range other.ForwardEdges {
		if g.ForwardEdges[from] == nil {
			g.ForwardEdges[from] = make(map[NodeID]Path, len(edges))
		}
		for to, p := range edges {
			g.ForwardEdges[from][to] = p
		}
	}

	if g.Kind == FunctionBody {
		for to, froms := range other.BackwardEdges {
			if g.BackwardEdges[to] == nil {
				g.BackwardEdges[to] = make(map[NodeID]struct{}, len(froms))
			}
			for from := range froms {
				g.BackwardEdges[to][from] = struct{}{}
			}
		}
		for id, positions := range other.MixedSourceCounts {
			if g.MixedSourceCounts[id] == nil {
				g.MixedSourceCounts[id] = make(map[string]struct{}, len(positions))
			}
			for pos := range positions {
				g.MixedSourceCounts[id][pos] = struct{}{}
			}
		}
	} else {
		for id, keys := range other.Specializations {
			if g.Specializations[id] == nil {
				g.Specializations[id] = make(map[SpecializationKey]struct{}, len(keys))
			}
			for key := range keys {
				g.Specializations[id][key] = struct{}{}
				if g.specializedCalls[key] == nil {
					g.specializedCalls[key] = make(map[NodeID]struct{})
				}
				g.specializedCalls[key][id] = struct{}{}
			}
		}
	}

	for id, n := range other.Vertices {
		g.Vertices[id] = n
	}
	for id, n := range other.Sources {
		g.Sources[id] = n
	}
	for id, n := range other.Sinks {
		g.Sinks[id] = n
	}

	return nil
}

// Node returns the node for id, checking Vertices, then Sources, then Sinks.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if n, ok := g.Vertices[id]; ok {
		return n, true
	}
	if n, ok := g.Sources[id]; ok {
		return n, true
	}
	if n, ok := g.Sinks[id]; ok {
		return n, true
	}
	return Node{}, false
}

func (g *Graph) isVertexOrSource(id NodeID) bool {
	if _, ok := g.Vertices[id]; ok {
		return true
	}
	_, ok := g.Sources[id]
	return ok
}

// GetOriginNodeIDs performs a bounded backward walk from id over
// BackwardEdges, returning the set of nodes with no further (unignored)
// parents. The walk runs for at most originWalkBudget rounds; exceeding the
// budget yields a conservative, partial result rather than an error, the
// same way the 200-round unused-variable search does (pkg/unusedvar).
//
// If varIDsOnly is set, a Var or Param node is itself treated as an origin
// and its own parents are not explored further.
func (g *Graph) GetOriginNodeIDs(id NodeID, ignorePaths []PathKind, varIDsOnly bool) []NodeID {
	visited := make(map[NodeID]struct{})
	var origins []NodeID

	var childIDs []NodeID
	if g.isVertexOrSource(id) {
		childIDs = append(childIDs, id)
	}

	for round := 0; round < originWalkBudget; round++ {
		var allParents []NodeID

		for _, child := range childIDs {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}

			if varIDsOnly && (child.Kind == KindVar || child.Kind == KindParam) {
				origins = append(origins, child)
				continue
			}

			newParents := make(map[NodeID]struct{})
			hasVisitedParentAlready := false

			if backward, ok := g.BackwardEdges[child]; ok {
				for from := range backward {
					if edges, ok := g.ForwardEdges[from]; ok {
						if path, ok := edges[child]; ok {
							if containsPathKind(ignorePaths, path.Kind) {
								break
							}
						}
					}

					if g.isVertexOrSource(from) {
						if _, seen := visited[from]; !seen {
							newParents[from] = struct{}{}
						} else {
							hasVisitedParentAlready = true
						}
					}
				}
			}

			if len(newParents) == 0 {
				if !hasVisitedParentAlready {
					origins = append(origins, child)
				}
			} else {
				for from := range newParents {
					if _, seen := visited[from]; !seen {
						allParents = append(allParents, from)
					}
				}
			}
		}

		childIDs = allParents
		if len(childIDs) == 0 {
			break
		}
	}

	return origins
}

// AddMixedData records pos against every call-site origin of
// assignmentID, used to flag assignments whose value is a mix of several
// call results.
func (g *Graph) AddMixedData(assignmentID NodeID, pos hpos.HPos) {
	for _, origin := range g.GetOriginNodeIDs(assignmentID, nil, false) {
		if origin.Kind != KindCallTo && origin.Kind != KindSpecializedCallTo {
			continue
		}
		if g.MixedSourceCounts[origin] == nil {
			g.MixedSourceCounts[origin] = make(map[string]struct{})
		}
		g.MixedSourceCounts[origin][pos.String()] = struct{}{}
	}
}

// GetSourceFunctions walks the origins of every node in parentNodes and
// collects the function-like identifiers of any Vertex-kind call origin.
func (g *Graph) GetSourceFunctions(parentNodes []NodeID, ignorePaths []PathKind) []FunctionLikeID {
	var origins []NodeID
	for _, parent := range parentNodes {
		origins = append(origins, g.GetOriginNodeIDs(parent, ignorePaths, false)...)
	}

	var sourceFunctions []FunctionLikeID
	for _, origin := range origins {
		if origin.Kind != KindCallTo && origin.Kind != KindSpecializedCallTo {
			continue
		}
		node, ok := g.Node(origin)
		if !ok || node.Tag != KindTagVertex {
			continue
		}
		sourceFunctions = append(sourceFunctions, origin.Func)
	}
	return sourceFunctions
}

// PropertyRef names a single class property.
type PropertyRef struct {
	Class strid.ID
	Field strid.ID
}

// GetSourceProperties walks the origins of every node in parentNodes and
// collects the (class, field) pairs of any property origin.
func (g *Graph) GetSourceProperties(parentNodes []NodeID) []PropertyRef {
	var origins []NodeID
	for _, parent := range parentNodes {
		origins = append(origins, g.GetOriginNodeIDs(parent, nil, false)...)
	}

	var sourceProperties []PropertyRef
	for _, origin := range origins {
		if origin.Kind != KindProperty && origin.Kind != KindSpecializedProperty {
			continue
		}
		sourceProperties = append(sourceProperties, PropertyRef{Class: origin.Class, Field: origin.Field})
	}
	return sourceProperties
}

// IsFromParam reports whether any origin of parentNodes is a
// VariableUseSource of kind PrivateParam or NonPrivateParam.
func (g *Graph) IsFromParam(parentNodes []NodeID) bool {
	var origins []NodeID
	for _, parent := range parentNodes {
		origins = append(origins, g.GetOriginNodeIDs(parent, nil, false)...)
	}

	for _, origin := range origins {
		node, ok := g.Node(origin)
		if !ok || node.Tag != KindTagVariableUseSource {
			continue
		}
		if node.VarKind == VarPrivateParam || node.VarKind == VarNonPrivateParam {
			return true
		}
	}
	return false
}
