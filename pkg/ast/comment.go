package ast

import "strings"

// CommentTag distinguishes a block comment from a line comment.
type CommentTag uint8

const (
	CmtLine CommentTag = iota
	CmtBlock
)

// Comment is a single comment token, with its text stripped of delimiters.
type Comment struct {
	Tag  CommentTag
	Text string
	Node Node
}

var commentKinds = map[string]struct{}{
	"comment": {},
}

// Comments walks n's subtree and returns every comment token found,
// in source order.
func (n Node) Comments() []Comment {
	var out []Comment
	Walk(n, func(child Node) {
		if _, ok := commentKinds[child.Kind()]; !ok {
			return
		}
		raw := child.Text()
		out = append(out, Comment{
			Tag:  classifyComment(raw),
			Text: stripCommentDelimiters(raw),
			Node: child,
		})
	})
	return out
}

func classifyComment(raw string) CommentTag {
	if strings.HasPrefix(raw, "/*") {
		return CmtBlock
	}
	return CmtLine
}

func stripCommentDelimiters(raw string) string {
	switch {
	case strings.HasPrefix(raw, "/**"):
		return strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")
	case strings.HasPrefix(raw, "/*"):
		return strings.TrimSuffix(strings.TrimPrefix(raw, "/*"), "*/")
	case strings.HasPrefix(raw, "//"):
		return strings.TrimPrefix(raw, "//")
	case strings.HasPrefix(raw, "#"):
		return strings.TrimPrefix(raw, "#")
	default:
		return raw
	}
}

// HasFixmeSuppression reports whether any comment attached to n's subtree
// contains a FIXME suppression marker. The unused-variable autofix
// (pkg/unusedvar) does not call it; it matches exact FIXME comment texts
// itself.
func (n Node) HasFixmeSuppression() bool {
	for _, c := range n.Comments() {
		if strings.Contains(c.Text, "FIXME") {
			return true
		}
	}
	return false
}
