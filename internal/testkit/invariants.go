package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"unicecream/internal/cst"
)

// CheckTreeInvariants runs a minimal set of span invariants on a parsed tree:
// 1) the root span lies within file content bounds
// 2) every child span is contained in its parent span
// 3) siblings appear in source order and never overlap
func CheckTreeInvariants(tree *cst.Tree) error {
	if tree == nil || tree.Root == nil || tree.File == nil {
		return fmt.Errorf("nil tree, root or file")
	}

	lenContent, err := safecast.Conv[uint32](len(tree.File.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if tree.Root.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", tree.Root.End, lenContent)
	}
	if tree.Root.Start > tree.Root.End {
		return fmt.Errorf("root span is inverted: %d > %d", tree.Root.Start, tree.Root.End)
	}
	return checkNode(tree.Root)
}

func checkNode(n *cst.Node) error {
	var prevEnd uint32
	for i, c := range n.Children {
		if c.Start > c.End {
			return fmt.Errorf("%s child %d (%s) has inverted span %d-%d", n.Kind, i, c.Kind, c.Start, c.End)
		}
		if c.Start < n.Start || c.End > n.End {
			return fmt.Errorf("%s child %d (%s) %d-%d escapes parent %d-%d", n.Kind, i, c.Kind, c.Start, c.End, n.Start, n.End)
		}
		if i > 0 && c.Start < prevEnd {
			return fmt.Errorf("%s child %d (%s) overlaps previous sibling: %d < %d", n.Kind, i, c.Kind, c.Start, prevEnd)
		}
		prevEnd = c.End
		if err := checkNode(c); err != nil {
			return err
		}
	}
	return nil
}
