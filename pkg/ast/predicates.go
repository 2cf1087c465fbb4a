package ast

// Pattern predicates over node kind, grounded on the teacher's own
// isAssignmentType/isCallType style string-set membership checks
// (pkg/ast/extractor.go in the reference tree), narrowed to the single
// subject-language grammar this module targets instead of a
// multi-language fallback list.

var assignStmtKinds = map[string]struct{}{
	"assignment_expression":           {},
	"augmented_assignment_expression": {},
}

var listExprKinds = map[string]struct{}{
	"list_literal":       {},
	"destructure_pattern": {},
}

var ifStmtKinds = map[string]struct{}{
	"if_statement": {},
}

var arrayGetKinds = map[string]struct{}{
	"subscript_expression": {},
	"array_get_expression": {},
}

// IsAssignStmt reports whether n is a (possibly compound) assignment.
func (n Node) IsAssignStmt() bool {
	_, ok := assignStmtKinds[n.Kind()]
	return ok
}

// IsListExpr reports whether n is a list-destructuring pattern.
func (n Node) IsListExpr() bool {
	_, ok := listExprKinds[n.Kind()]
	return ok
}

// IsIfStmt reports whether n is an if statement.
func (n Node) IsIfStmt() bool {
	_, ok := ifStmtKinds[n.Kind()]
	return ok
}

// IsArrayGet reports whether n is an array/dict subscript read.
func (n Node) IsArrayGet() bool {
	_, ok := arrayGetKinds[n.Kind()]
	return ok
}

// ArrayGetIndex returns the index (subscript) sub-expression of an
// IsArrayGet node, if present.
func (n Node) ArrayGetIndex() (Node, bool) {
	if !n.IsArrayGet() {
		return Node{}, false
	}
	return n.ChildByFieldName("index")
}
