package rules

import (
	"unicecream/internal/cst"
	"unicecream/internal/diag"
)

// Rule is a self-contained detector for one violation pattern.
type Rule interface {
	Code() diag.Code
	Message() string
	Check(tree *cst.Tree, r diag.Reporter)
}

// CallRule reports every ic(...) call (IC001).
type CallRule struct{}

func (CallRule) Code() diag.Code { return diag.CallUsage }

func (CallRule) Message() string { return diag.CallUsage.Title() }

func (rule CallRule) Check(tree *cst.Tree, r diag.Reporter) {
	cst.Preorder(tree.Root, []string{cst.KindCall}, func(n *cst.Node, _ cst.Context) {
		if IsTrackedCall(tree, n) {
			r.Report(diag.New(rule.Code(), tree.Span(n), tree.Position(n)))
		}
	})
}

// ImportRule reports "import icecream" (IC002), once per matching name,
// positioned at the statement.
type ImportRule struct{}

func (ImportRule) Code() diag.Code { return diag.ImportUsage }

func (ImportRule) Message() string { return diag.ImportUsage.Title() }

func (rule ImportRule) Check(tree *cst.Tree, r diag.Reporter) {
	cst.Preorder(tree.Root, []string{cst.KindImport}, func(n *cst.Node, _ cst.Context) {
		for range TrackedImports(tree, n) {
			r.Report(diag.New(rule.Code(), tree.Span(n), tree.Position(n)))
		}
	})
}

// FromImportRule reports "from icecream import ..." (IC003), once per
// statement whatever names it imports.
type FromImportRule struct{}

func (FromImportRule) Code() diag.Code { return diag.FromImportUsage }

func (FromImportRule) Message() string { return diag.FromImportUsage.Title() }

func (rule FromImportRule) Check(tree *cst.Tree, r diag.Reporter) {
	cst.Preorder(tree.Root, []string{cst.KindImportFrom}, func(n *cst.Node, _ cst.Context) {
		if IsTrackedFromImport(tree, n) {
			r.Report(diag.New(rule.Code(), tree.Span(n), tree.Position(n)))
		}
	})
}

// Collect runs rules over tree and returns their violations sorted by
// (line, column, code) with duplicates removed.
func Collect(tree *cst.Tree, active []Rule) *diag.Bag {
	bag := diag.NewBag()
	reporter := diag.BagReporter{Bag: bag}
	for _, rule := range active {
		rule.Check(tree, reporter)
	}
	bag.Sort()
	bag.Dedup()
	return bag
}
