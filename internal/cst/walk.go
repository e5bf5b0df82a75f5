package cst

// Context is threaded down the walk so that a visitor always knows where a
// node sits without keeping parent maps.
type Context struct {
	Parent *Node
	Depth  int
}

// VisitFunc is called for every node in preorder. Returning false skips the
// node's children.
type VisitFunc func(n *Node, ctx Context) bool

// Walk traverses root in source order.
func Walk(root *Node, visit VisitFunc) {
	if root == nil {
		return
	}
	walk(root, Context{}, visit)
}

func walk(n *Node, ctx Context, visit VisitFunc) {
	if !visit(n, ctx) {
		return
	}
	childCtx := Context{Parent: n, Depth: ctx.Depth + 1}
	for _, c := range n.Children {
		walk(c, childCtx, visit)
	}
}

// Preorder calls fn for every node whose kind is listed, in source order.
// An empty kinds list matches every node.
func Preorder(root *Node, kinds []string, fn func(n *Node, ctx Context)) {
	filter := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		filter[k] = struct{}{}
	}
	Walk(root, func(n *Node, ctx Context) bool {
		if _, ok := filter[n.Kind]; ok || len(filter) == 0 {
			fn(n, ctx)
		}
		return true
	})
}
