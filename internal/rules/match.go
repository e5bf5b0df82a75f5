package rules

import (
	"unicecream/internal/cst"
)

const (
	// CallName is the debug call the linter hunts for.
	CallName = "ic"
	// ModuleName is the module that provides CallName.
	ModuleName = "icecream"
)

// IsTrackedCall reports whether n is a call whose callee is the bare
// identifier ic.
func IsTrackedCall(tree *cst.Tree, n *cst.Node) bool {
	if !n.Is(cst.KindCall) {
		return false
	}
	fn := n.ChildByField(cst.FieldFunction)
	return fn.Is(cst.KindIdentifier) && tree.Text(fn) == CallName
}

// ImportedModule returns the dotted name an import list entry refers to:
// the entry itself for "import a.b" and the aliased name for "import a as b".
func ImportedModule(entry *cst.Node) *cst.Node {
	switch entry.Kind {
	case cst.KindDottedName:
		return entry
	case cst.KindAliasedImport:
		return entry.ChildByField(cst.FieldName)
	}
	return nil
}

// IsTrackedModule reports whether a dotted name is exactly "icecream".
// Dotted paths such as icecream.core do not match.
func IsTrackedModule(tree *cst.Tree, name *cst.Node) bool {
	return name.Is(cst.KindDottedName) && tree.Text(name) == ModuleName
}

// TrackedImports returns the entries of an import statement that import the
// tracked module, in source order.
func TrackedImports(tree *cst.Tree, stmt *cst.Node) []*cst.Node {
	if !stmt.Is(cst.KindImport) {
		return nil
	}
	var out []*cst.Node
	for _, entry := range stmt.ChildrenByField(cst.FieldName) {
		if IsTrackedModule(tree, ImportedModule(entry)) {
			out = append(out, entry)
		}
	}
	return out
}

// IsTrackedFromImport reports whether stmt is "from icecream import ...".
// Relative imports never match.
func IsTrackedFromImport(tree *cst.Tree, stmt *cst.Node) bool {
	if !stmt.Is(cst.KindImportFrom) {
		return false
	}
	return IsTrackedModule(tree, stmt.ChildByField(cst.FieldModuleName))
}

// IsTrackedCallImport reports whether a from-import entry brings in ic,
// with or without an alias.
func IsTrackedCallImport(tree *cst.Tree, entry *cst.Node) bool {
	name := ImportedModule(entry)
	return name.Is(cst.KindDottedName) && tree.Text(name) == CallName
}

// IsWildcardImport reports whether stmt is "from m import *".
func IsWildcardImport(stmt *cst.Node) bool {
	for _, c := range stmt.Children {
		if c.Kind == cst.KindWildcardImport {
			return true
		}
	}
	return false
}
