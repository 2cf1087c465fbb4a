package unusedvar

import (
	"strings"

	"github.com/hatlesswizard/hakanaflow/pkg/ast"
	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
	"github.com/hatlesswizard/hakanaflow/pkg/issue"
)

// Effect classifies the side-effect profile of an expression, the two-way
// distinction the original effects analyzer collapses a richer
// effect-bitmask down to for this one autofix decision: a pure
// expression (or one that only reads globals/properties) can be deleted
// outright; anything else can only have its left-hand side removed.
type Effect uint8

const (
	EffectPure Effect = iota
	EffectImpure
)

// EffectLookup resolves the effect classification of the expression
// spanning [start, end) in source bytes. The real effects analysis this
// hooks into lives outside this package (it needs a full expression
// walk with knowledge of which calls are annotated pure), so callers
// wire in whatever that analysis produces; a nil EffectLookup is treated
// as "assume impure", the conservative choice that only ever narrows an
// autofix rather than ever deleting live code.
type EffectLookup func(start, end uint32) Effect

// Autofix walks tree looking for statements and list-destructuring
// sub-expressions whose start offset matches one of unusedNodes, and
// builds the corresponding issue.Replacement for each: a list element
// is substituted with the `$_` placeholder; a whole pure-assignment
// statement is removed (optionally along with an immediately preceding
// FIXME-suppression comment); an impure assignment keeps its right-hand
// side and removes only the left-hand-side-and-equals prefix, also
// stripping a trailing array-fetch subscript on the right-hand side when
// that subscript expression is itself pure.
type Autofix struct {
	UnusedStarts map[uint32]struct{}
	Effects      EffectLookup

	inSingleBlock bool
}

// NewAutofix builds an Autofix targeting the start offsets of
// unusedNodes (as recorded in their HPos).
func NewAutofix(unusedPositions []hpos.HPos, effects EffectLookup) *Autofix {
	starts := make(map[uint32]struct{}, len(unusedPositions))
	for _, pos := range unusedPositions {
		starts[pos.StartOffset] = struct{}{}
	}
	if effects == nil {
		effects = func(uint32, uint32) Effect { return EffectImpure }
	}
	return &Autofix{UnusedStarts: starts, Effects: effects}
}

// Run walks root and returns every Replacement the scan produces.
func (a *Autofix) Run(root ast.Node) []issue.Replacement {
	var out []issue.Replacement
	a.visitStmt(root, &out)
	return out
}

func (a *Autofix) matches(n ast.Node) bool {
	_, ok := a.UnusedStarts[n.Pos().StartOffset]
	return ok
}

func (a *Autofix) visitStmt(n ast.Node, out *[]issue.Replacement) {
	if !n.IsValid() {
		return
	}

	if n.IsListExpr() {
		for _, elem := range n.Children() {
			if a.matches(elem) {
				pos := elem.Pos()
				*out = append(*out, issue.SubstituteText(pos.StartOffset, pos.EndOffset, "$_"))
			}
		}
	}

	if n.IsIfStmt() {
		a.visitIfBranches(n, out)
		then, _ := n.ChildByFieldName("consequence")
		els, _ := n.ChildByFieldName("alternative")
		for _, child := range n.Children() {
			// the branches were already walked by visitIfBranches
			if (child.Kind() == then.Kind() && child.Pos() == then.Pos()) ||
				(child.Kind() == els.Kind() && child.Pos() == els.Pos()) {
				continue
			}
			a.visitStmt(child, out)
		}
		return
	}

	if n.IsAssignStmt() && a.matches(n) {
		a.emitAssignmentFix(n, out)
	}

	for _, child := range n.Children() {
		a.visitStmt(child, out)
	}
}

// visitIfBranches mirrors the original's in_single_block tracking: a
// branch body consisting of exactly one expression-statement suppresses
// the whole-statement removal fix (stmt.TrimPrecedingWhitespace), since
// collapsing the only statement in an `if ($x) { $y = f(); }` body would
// leave a syntactically empty block behind that still needs braces.
func (a *Autofix) visitIfBranches(n ast.Node, out *[]issue.Replacement) {
	then, hasThen := n.ChildByFieldName("consequence")
	els, hasElse := n.ChildByFieldName("alternative")

	if hasThen {
		a.inSingleBlock = isSingleExprBlock(then)
		a.visitStmt(then, out)
		a.inSingleBlock = false
	}
	if hasElse {
		a.inSingleBlock = isSingleExprBlock(els)
		a.visitStmt(els, out)
		a.inSingleBlock = false
	}
}

func isSingleExprBlock(block ast.Node) bool {
	if block.Kind() == "expression_statement" {
		return true
	}
	var stmts []ast.Node
	for _, child := range block.Children() {
		switch child.Kind() {
		case "{", "}", ";", "comment":
			continue
		}
		stmts = append(stmts, child)
	}
	return len(stmts) == 1 && stmts[0].Kind() == "expression_statement"
}

func (a *Autofix) emitAssignmentFix(n ast.Node, out *[]issue.Replacement) {
	lhs, hasLHS := n.ChildByFieldName("left")
	rhs, hasRHS := n.ChildByFieldName("right")
	if !hasLHS || !hasRHS {
		return
	}

	stmtPos := n.Pos()
	rhsPos := rhs.Pos()

	if eff := a.Effects(rhsPos.StartOffset, rhsPos.EndOffset); eff == EffectPure {
		if a.inSingleBlock {
			return
		}
		*out = append(*out, issue.TrimPrecedingWhitespaceAt(stmtPos.StartOffset, stmtPos.EndOffset))
		if fixme, ok := findFixmeComment(n); ok {
			*out = append(*out, issue.TrimPrecedingWhitespaceAt(fixme.StartOffset, stmtPos.StartOffset))
		}
		return
	}

	lhsPos := lhs.Pos()
	*out = append(*out, issue.RemoveRange(stmtPos.StartOffset, rhsPos.StartOffset))
	_ = lhsPos

	if rhs.IsArrayGet() {
		if idx, ok := rhs.ArrayGetIndex(); ok {
			idxPos := idx.Pos()
			if a.Effects(idxPos.StartOffset, idxPos.EndOffset) == EffectPure {
				*out = append(*out, issue.RemoveRange(idxPos.StartOffset-1, idxPos.EndOffset+1))
			}
		}
	}
}

// findFixmeComment looks for a same-line HHAST_FIXME[UnusedVariable]
// block comment, or a preceding-line HAKANA_FIXME[UnusedAssignment(Statement)]
// block comment, and returns its span if found. A FIXME comment sits
// immediately before stmt as a sibling, not inside it, so callers that
// care about cross-statement FIXME detection should call this with the
// enclosing block rather than stmt itself — Run's single-statement walk
// only catches a FIXME that happens to be attached within the statement's
// own span (e.g. a trailing same-line comment).
func findFixmeComment(stmt ast.Node) (hpos.HPos, bool) {
	stmtLine := stmt.Pos().StartLine

	for _, c := range stmt.Comments() {
		if c.Tag != ast.CmtBlock {
			continue
		}
		text := strings.TrimSpace(c.Text)
		pos := c.Node.Pos()

		if pos.StartLine == stmtLine && text == "HHAST_FIXME[UnusedVariable]" {
			return pos, true
		}
		if pos.StartLine == stmtLine-1 &&
			(text == "HAKANA_FIXME[UnusedAssignment]" || text == "HAKANA_FIXME[UnusedAssignmentStatement]") {
			return pos, true
		}
	}
	return hpos.HPos{}, false
}
