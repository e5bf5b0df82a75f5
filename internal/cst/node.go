package cst

// Node is one element of the concrete syntax tree. A node only knows its
// kind, its byte span in the source and its children; positions are
// resolved through the owning Tree.
type Node struct {
	Kind     string
	Start    uint32 // byte offset, inclusive
	End      uint32 // byte offset, exclusive
	Named    bool
	Field    string // field name inside the parent, "" if unbound
	Children []*Node
}

// Is reports whether the node has one of the given kinds.
func (n *Node) Is(kinds ...string) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// ChildByField returns the first child bound to field, or nil.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns every child bound to field in source order.
func (n *Node) ChildrenByField(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns named children, skipping comments.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named && c.Kind != KindComment {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the byte length of the node.
func (n *Node) Len() uint32 {
	return n.End - n.Start
}
