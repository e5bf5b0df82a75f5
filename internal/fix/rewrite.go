package fix

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"unicecream/internal/cst"
	"unicecream/internal/diag"
	"unicecream/internal/source"
)

// ErrBrokenOutput is returned when the rewritten text no longer parses.
var ErrBrokenOutput = errors.New("rewritten source does not parse")

// Result holds the outcome of rewriting one file.
type Result struct {
	Original []byte
	Content  []byte
	Edits    []Edit
	Applied  Applied
	Changed  bool
}

// Rewrite parses file and strips icecream usage belonging to codes. A parse
// failure is returned as is (it wraps cst.ErrSyntax); callers treat such
// files as clean.
func Rewrite(ctx context.Context, file *source.File, codes []diag.Code) (*Result, error) {
	tree, err := cst.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	res, err := NewTransformer(codes).Rewrite(tree)
	if err != nil || !res.Changed {
		return res, err
	}
	if err := verify(ctx, file.Path, res.Content); err != nil {
		return nil, err
	}
	return res, nil
}

// verify re-parses rewritten content. The grammar recovers from some broken
// line continuations without error nodes, so this only catches what the
// transformer itself must never produce: unbalanced brackets, dangling
// statements and the like.
func verify(ctx context.Context, path string, content []byte) error {
	if _, err := cst.ParseSource(ctx, path, content); err != nil {
		if errors.Is(err, cst.ErrSyntax) {
			return fmt.Errorf("%s: %w", path, ErrBrokenOutput)
		}
		return err
	}
	return nil
}

// Rewrite applies the transformer's edits to the tree's source.
func (t *Transformer) Rewrite(tree *cst.Tree) (*Result, error) {
	content := tree.Source()
	res := &Result{Original: content, Content: content}

	res.Edits = t.Transform(tree)
	out, applied, err := Apply(content, res.Edits)
	if errors.Is(err, ErrNoFixes) {
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tree.File.Path, err)
	}
	res.Content = out
	res.Applied = applied
	res.Changed = !bytes.Equal(out, content)
	return res, nil
}
