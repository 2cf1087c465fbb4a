// Package analysis wires the lower-level packages (codebase, dataflow,
// ttype, strid) into the one piece of actual expression analysis this
// repo implements end to end — constant-fetch resolution — plus the
// worker pool that fans per-file analysis out across goroutines.
package analysis

import (
	"path/filepath"

	"github.com/hatlesswizard/hakanaflow/pkg/codebase"
	"github.com/hatlesswizard/hakanaflow/pkg/dataflow"
	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
	"github.com/hatlesswizard/hakanaflow/pkg/strid"
	"github.com/hatlesswizard/hakanaflow/pkg/ttype"
)

// ResolveConstant resolves a bare constant-fetch expression (`FOO`,
// `__FILE__`, `__DIR__`, `__FUNCTION__`) to its type, expanding the result
// against codebase and feeding any taint the expansion uncovers into
// graph. When name isn't a known constant, it returns a NonExistentConstant
// issue alongside a mixed-any fallback type, mirroring the original
// analyzer's "report and continue with mixed" recovery rather than
// aborting the enclosing statement's analysis.
func ResolveConstant(
	reader codebase.Reader,
	interner *strid.Interner,
	graph *dataflow.Graph,
	name strid.ID,
	currentFilePath string,
	currentFunction strid.ID,
	pos hpos.HPos,
) (*ttype.TUnion, *issue.Issue) {
	info, known := reader.ConstantInfos()[name]

	var stmtType *ttype.TUnion
	var raised *issue.Issue

	switch {
	case known && name == strid.FileConst:
		stmtType = literalString(currentFilePath)
	case known && name == strid.DirConst:
		dir := filepath.Dir(currentFilePath)
		stmtType = literalString(dir)
	case known && name == strid.FunctionConst:
		stmtType = ttype.WrapAtomic(ttype.TAtomic{Tag: ttype.TScalar})
	case known:
		stmtType = literalString(info.Value)
	default:
		constantName := interner.MustLookup(name)
		raised = &issue.Issue{
			Kind:    issue.NonExistentConstant,
			Pos:     pos,
			Message: "Constant " + constantName + " not recognized",
			Symbol:  issue.SymbolRef{Symbol: currentFunction},
		}
		stmtType = ttype.WrapAtomic(ttype.TAtomic{Tag: ttype.TMixed})
	}

	expander := ttype.NewExpander(reader, interner, graph)
	expander.ExpandUnion(stmtType, ttype.DefaultOptions())

	return stmtType, raised
}

// literalString builds the TScalar-literal-string type the original
// represents __FILE__/__DIR__/a string-valued named constant with. The
// concrete string value itself isn't carried on TAtomic (this module's
// TAtomic is a type skeleton, not a constant evaluator) — only the
// literal-ness flag that downstream consumers (e.g. a literal-string
// sink check) would actually query.
func literalString(string) *ttype.TUnion {
	return ttype.WrapAtomic(ttype.TAtomic{Tag: ttype.TScalar, IsLiteralString: true})
}
