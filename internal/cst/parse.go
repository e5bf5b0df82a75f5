package cst

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"unicecream/internal/source"
)

// ErrSyntax is the sentinel behind every SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports the first ERROR or MISSING node of a failed parse.
type SyntaxError struct {
	Path string
	Pos  source.LineCol
	Kind string
}

func (e *SyntaxError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Pos.Line, e.Pos.Col, ErrSyntax)
	}
	return fmt.Sprintf("%s:%d:%d: %v near %s", e.Path, e.Pos.Line, e.Pos.Col, ErrSyntax, e.Kind)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Parse builds a Tree for file. A fresh tree-sitter parser is created per
// call, so Parse is safe for concurrent use.
func Parse(ctx context.Context, file *source.File) (*Tree, error) {
	if file == nil {
		return nil, fmt.Errorf("cst: nil file")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	st, err := parser.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer st.Close()

	root := st.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%s: tree-sitter returned nil root node", file.Path)
	}
	if root.HasError() {
		se := &SyntaxError{Path: file.Path, Pos: file.LineCol(0)}
		if bad := firstError(root); bad != nil {
			se.Pos = file.LineCol(bad.StartByte())
			se.Kind = bad.Type()
		}
		return nil, se
	}

	return &Tree{File: file, Root: convert(root, "")}, nil
}

// ParseSource parses an in-memory snippet registered as a virtual file.
func ParseSource(ctx context.Context, name string, content []byte) (*Tree, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, content)
	return Parse(ctx, fs.Get(id))
}

func convert(sn *sitter.Node, field string) *Node {
	n := &Node{
		Kind:  sn.Type(),
		Start: sn.StartByte(),
		End:   sn.EndByte(),
		Named: sn.IsNamed(),
		Field: field,
	}
	count := int(sn.ChildCount())
	if count == 0 {
		return n
	}
	n.Children = make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		child := sn.Child(i)
		if child == nil {
			continue
		}
		n.Children = append(n.Children, convert(child, sn.FieldNameForChild(i)))
	}
	return n
}

func firstError(sn *sitter.Node) *sitter.Node {
	if sn.IsError() || sn.IsMissing() {
		return sn
	}
	for i := 0; i < int(sn.ChildCount()); i++ {
		child := sn.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return nil
}
