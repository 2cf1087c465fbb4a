package ast

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/hatlesswizard/hakanaflow/pkg/hpos"
)

// Parse parses src as a single source file and returns its root Node. The
// caller owns the returned Tree and must call Tree.Close when done with it
// to release the underlying tree-sitter memory, the same discipline the
// teacher's own parse cache enforces on eviction (pkg/parser/cache.go's
// Tree.Close calls).
func Parse(ctx context.Context, file hpos.FilePath, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(php.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}

	return &Tree{
		Root: Wrap(tree.RootNode(), src, file),
		Src:  src,
		raw:  tree,
	}, nil
}
