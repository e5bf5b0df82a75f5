package cst

import (
	"fortio.org/safecast"

	"unicecream/internal/source"
)

// Tree is an immutable concrete syntax tree over one source file.
type Tree struct {
	File *source.File
	Root *Node
}

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.File.Content
}

// Text returns the exact source text covered by n.
func (t *Tree) Text(n *Node) string {
	if n == nil {
		return ""
	}
	return string(t.File.Content[n.Start:n.End])
}

// Position resolves the 1-based line and column at which n starts.
func (t *Tree) Position(n *Node) source.LineCol {
	return t.File.LineCol(n.Start)
}

// Span returns the byte span of n tagged with the tree's file.
func (t *Tree) Span(n *Node) source.Span {
	return source.Span{File: t.File.ID, Start: n.Start, End: n.End}
}

// LineStart returns the offset of the first byte of the line containing off.
func (t *Tree) LineStart(off uint32) uint32 {
	lc := t.File.LineCol(off)
	return t.File.LineStart(lc.Line)
}

// LineEnd returns the offset just past the line break ending the line that
// contains off, or the end of the file.
func (t *Tree) LineEnd(off uint32) uint32 {
	content := t.File.Content
	size := len(content)
	for i := int(off); i < size; i++ {
		if content[i] == '\n' {
			end, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				return off
			}
			return end
		}
	}
	end, err := safecast.Conv[uint32](size)
	if err != nil {
		return off
	}
	return end
}
