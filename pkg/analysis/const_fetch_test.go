package analysis

import (
	"testing"

	"github.com/hatlesswizard/hakanaflow/pkg/codebase"
	"github.com/hatlesswizard/hakanaflow/pkg/dataflow"
	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
	"github.com/hatlesswizard/hakanaflow/pkg/ttype"
)

func TestResolveConstantFileConst(t *testing.T) {
	in := strid.New()
	cb := codebase.NewMapReader()
	cb.Constants[strid.FileConst] = &codebase.ConstantInfo{Name: strid.FileConst}
	g := dataflow.New(dataflow.FunctionBody)

	typ, raised := ResolveConstant(cb, in, g, strid.FileConst, "/src/a.hack", strid.Empty, hpos.HPos{})

	if raised != nil {
		t.Fatalf("expected no issue for __FILE__, got %+v", raised)
	}
	if len(typ.Types) != 1 || typ.Types[0].Tag != ttype.TScalar || !typ.Types[0].IsLiteralString {
		t.Fatalf("expected a literal-string scalar, got %+v", typ.Types)
	}
}

func TestResolveConstantUnknownRaisesIssue(t *testing.T) {
	in := strid.New()
	cb := codebase.NewMapReader()
	g := dataflow.New(dataflow.FunctionBody)

	name := in.Intern("NOT_DEFINED")
	fn := in.Intern("someFunc")

	typ, raised := ResolveConstant(cb, in, g, name, "/src/a.hack", fn, hpos.HPos{})

	if raised == nil {
		t.Fatalf("expected a NonExistentConstant issue for an unknown constant")
	}
	if raised.Kind != issue.NonExistentConstant {
		t.Fatalf("expected NonExistentConstant, got %v", raised.Kind)
	}
	if raised.Symbol.Symbol != fn {
		t.Fatalf("expected the issue to be attributed to the enclosing function")
	}
	if len(typ.Types) != 1 || typ.Types[0].Tag != ttype.TMixed {
		t.Fatalf("expected a mixed fallback type, got %+v", typ.Types)
	}
}

func TestResolveConstantKnownNamedConstant(t *testing.T) {
	in := strid.New()
	cb := codebase.NewMapReader()
	name := in.Intern("APP_ENV")
	cb.Constants[name] = &codebase.ConstantInfo{Name: name, Value: "prod"}
	g := dataflow.New(dataflow.FunctionBody)

	typ, raised := ResolveConstant(cb, in, g, name, "/src/a.hack", strid.Empty, hpos.HPos{})

	if raised != nil {
		t.Fatalf("expected no issue for a known constant, got %+v", raised)
	}
	if len(typ.Types) != 1 || !typ.Types[0].IsLiteralString {
		t.Fatalf("expected a literal-string scalar, got %+v", typ.Types)
	}
}
