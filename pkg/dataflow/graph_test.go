package dataflow

import (
	"testing"

	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
)

func pos(file string, start, end uint32) hpos.HPos {
	return hpos.HPos{File: hpos.FilePath(file), StartOffset: start, EndOffset: end}
}

func TestAddPathIgnoresSelfLoop(t *testing.T) {
	g := New(FunctionBody)
	fn := Function(strid.This)
	a := Var(fn, strid.This, pos("a.hack", 0, 1))

	g.AddPath(a, a, Default(), nil, nil)

	if len(g.ForwardEdges) != 0 {
		t.Fatalf("expected no forward edges recorded for a self-loop, got %v", g.ForwardEdges)
	}
	if len(g.BackwardEdges) != 0 {
		t.Fatalf("expected no backward edges recorded for a self-loop, got %v", g.BackwardEdges)
	}
}

func TestAddPathFunctionBodyBidirectional(t *testing.T) {
	g := New(FunctionBody)
	fn := Function(strid.This)
	a := Var(fn, strid.This, pos("a.hack", 0, 1))
	b := Var(fn, strid.This, pos("a.hack", 2, 3))

	g.AddPath(a, b, Default(), nil, nil)

	if _, ok := g.ForwardEdges[a][b]; !ok {
		t.Fatalf("expected forward edge a->b")
	}
	if _, ok := g.BackwardEdges[b][a]; !ok {
		t.Fatalf("expected backward edge b<-a recorded in FunctionBody mode")
	}
}

func TestAddPathWholeProgramHasNoBackwardEdges(t *testing.T) {
	g := New(WholeProgramTaint)
	fn := Function(strid.This)
	a := Var(fn, strid.This, pos("a.hack", 0, 1))
	b := Var(fn, strid.This, pos("a.hack", 2, 3))

	g.AddPath(a, b, Default(), nil, nil)

	if len(g.BackwardEdges) != 0 {
		t.Fatalf("expected no backward edges recorded in WholeProgram mode, got %v", g.BackwardEdges)
	}
}

func TestAddGraphRejectsMismatchedKind(t *testing.T) {
	a := New(FunctionBody)
	b := New(WholeProgramTaint)

	if err := a.AddGraph(b); err == nil {
		t.Fatalf("expected an error merging graphs of different kinds")
	}
}

func TestAddGraphEmptyIsIdentity(t *testing.T) {
	fn := Function(strid.This)
	a := Var(fn, strid.This, pos("a.hack", 0, 1))
	b := Var(fn, strid.This, pos("a.hack", 2, 3))

	g := New(FunctionBody)
	g.AddPath(a, b, Default(), nil, nil)
	g.AddNode(VertexNode(a, nil, false))
	g.AddNode(VertexNode(b, nil, false))

	before := len(g.ForwardEdges[a])

	if err := g.AddGraph(New(FunctionBody)); err != nil {
		t.Fatalf("merging an empty graph should never fail: %v", err)
	}

	if len(g.ForwardEdges[a]) != before {
		t.Fatalf("merging an empty graph changed forward edges: got %d want %d", len(g.ForwardEdges[a]), before)
	}
	if _, ok := g.Node(a); !ok {
		t.Fatalf("expected node a to survive an empty merge")
	}
}

func TestGetOriginNodeIDsFindsRootOfChain(t *testing.T) {
	g := New(FunctionBody)
	fn := Function(strid.This)
	root := Var(fn, strid.This, pos("a.hack", 0, 1))
	mid := Var(fn, strid.This, pos("a.hack", 2, 3))
	leaf := Var(fn, strid.This, pos("a.hack", 4, 5))

	g.AddNode(VertexNode(root, nil, false))
	g.AddNode(VertexNode(mid, nil, false))
	g.AddNode(VertexNode(leaf, nil, false))
	g.AddPath(root, mid, Default(), nil, nil)
	g.AddPath(mid, leaf, Default(), nil, nil)

	origins := g.GetOriginNodeIDs(leaf, nil, false)
	if len(origins) != 1 || origins[0] != root {
		t.Fatalf("expected origin [root], got %v", origins)
	}
}

func TestGetOriginNodeIDsIsIdempotent(t *testing.T) {
	g := New(FunctionBody)
	fn := Function(strid.This)
	root := Var(fn, strid.This, pos("a.hack", 0, 1))
	leaf := Var(fn, strid.This, pos("a.hack", 2, 3))

	g.AddNode(VertexNode(root, nil, false))
	g.AddNode(VertexNode(leaf, nil, false))
	g.AddPath(root, leaf, Default(), nil, nil)

	first := g.GetOriginNodeIDs(leaf, nil, false)
	second := g.GetOriginNodeIDs(leaf, nil, false)

	if len(first) != len(second) {
		t.Fatalf("expected repeated calls to agree: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected repeated calls to agree: %v vs %v", first, second)
		}
	}
}

func TestGetOriginNodeIDsBreaksOnIgnoredPath(t *testing.T) {
	g := New(FunctionBody)
	fn := Function(strid.This)
	root := Var(fn, strid.This, pos("a.hack", 0, 1))
	leaf := Var(fn, strid.This, pos("a.hack", 2, 3))

	g.AddNode(VertexNode(root, nil, false))
	g.AddNode(VertexNode(leaf, nil, false))

	ignored := ArrayAssignment(ArrayKey, "k")
	g.AddPath(root, leaf, ignored, nil, nil)

	origins := g.GetOriginNodeIDs(leaf, []PathKind{ignored}, false)
	if len(origins) != 1 || origins[0] != leaf {
		t.Fatalf("expected an ignored incoming path to stop the walk at leaf itself, got %v", origins)
	}
}

func TestAddNodeIndexesSpecializationInWholeProgramGraph(t *testing.T) {
	g := New(WholeProgramTaint)
	fn := Function(strid.This)
	call := SpecializedCallTo(fn, "a.hack", 10)

	g.AddNode(VertexNode(call, nil, true))

	base, key := call.Unspecialize()
	if _, ok := g.Specializations[base][key]; !ok {
		t.Fatalf("expected specialized vertex to be indexed under its unspecialized base")
	}
}

func TestIsFromParamDetectsParamOrigin(t *testing.T) {
	g := New(FunctionBody)
	fn := Function(strid.This)
	param := Var(fn, strid.This, pos("a.hack", 0, 1))
	leaf := Var(fn, strid.This, pos("a.hack", 2, 3))

	g.AddNode(VariableUseSourceNode(param, pos("a.hack", 0, 1), VarNonPrivateParam, false))
	g.AddNode(VertexNode(leaf, nil, false))
	g.AddPath(param, leaf, Default(), nil, nil)

	if !g.IsFromParam([]NodeID{leaf}) {
		t.Fatalf("expected leaf's origin chain to be recognized as parameter-derived")
	}
}
