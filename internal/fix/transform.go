package fix

import (
	"strings"

	"fortio.org/safecast"

	"unicecream/internal/cst"
	"unicecream/internal/diag"
	"unicecream/internal/rules"
	"unicecream/internal/source"
)

// Transformer computes the edits that strip icecream usage from a tree.
// It never mutates the tree; printing the result means applying the edits
// to the original bytes.
type Transformer struct {
	enabled map[diag.Code]bool
}

// NewTransformer returns a transformer limited to codes. With no codes it
// produces no edits.
func NewTransformer(codes []diag.Code) *Transformer {
	enabled := make(map[diag.Code]bool, len(codes))
	for _, c := range codes {
		enabled[c] = true
	}
	return &Transformer{enabled: enabled}
}

// Transform returns non-overlapping edits against tree's source.
func (t *Transformer) Transform(tree *cst.Tree) []Edit {
	if tree == nil || tree.Root == nil {
		return nil
	}
	w := &rewriter{
		tree:    tree,
		enabled: t.enabled,
	}
	w.body(tree.Root)
	return w.edits
}

type rewriter struct {
	tree    *cst.Tree
	enabled map[diag.Code]bool
	edits   []Edit
	// nest counts the brackets around the node being visited; inside any of
	// them line breaks need no continuation.
	nest int
}

func (w *rewriter) on(code diag.Code) bool {
	return w.enabled[code]
}

func (w *rewriter) span(start, end uint32) source.Span {
	return source.Span{File: w.tree.File.ID, Start: start, End: end}
}

func (w *rewriter) text(start, end uint32) string {
	return string(w.tree.Source()[start:end])
}

func (w *rewriter) emit(e Edit) {
	if !e.IsNoop() {
		w.edits = append(w.edits, e)
	}
}

func (w *rewriter) replace(start, end uint32, newText string, code diag.Code) {
	w.emit(ReplaceSpan(w.span(start, end), newText, WithGuard(w.text(start, end)), WithCode(code)))
}

// visit walks an expression or compound statement looking for calls to
// unwrap and nested bodies.
func (w *rewriter) visit(n, parent *cst.Node) {
	if n.Is(cst.KindModule, cst.KindBlock) {
		w.body(n)
		return
	}
	if w.on(diag.CallUsage) && rules.IsTrackedCall(w.tree, n) && w.unwrap(n, parent) {
		return
	}
	for _, c := range n.Children {
		inside := encloses(n, c)
		if inside {
			w.nest++
		}
		w.visit(c, n)
		if inside {
			w.nest--
		}
	}
}

// encloses reports whether child sits between brackets of n.
func encloses(n, child *cst.Node) bool {
	switch n.Kind {
	case "argument_list", "parameters", "list", "tuple", "set", "dictionary",
		"parenthesized_expression", "list_comprehension", "set_comprehension",
		"dictionary_comprehension", "generator_expression":
		return true
	case "subscript":
		return child.Field == cst.FieldSubscript
	}
	return false
}

// singleArg returns the only argument of call when it is a plain positional
// expression, or nil.
func singleArg(call *cst.Node) *cst.Node {
	args := call.ChildByField(cst.FieldArguments)
	if args.Is(cst.KindGeneratorExpression) {
		return args
	}
	if !args.Is(cst.KindArgumentList) {
		return nil
	}
	named := args.NamedChildren()
	if len(named) != 1 {
		return nil
	}
	arg := named[0]
	if arg.Is(cst.KindKeywordArgument, cst.KindListSplat, cst.KindDictionarySplat, "parenthesized_list_splat") {
		return nil
	}
	return arg
}

// innermost follows a chain ic(ic(...)) down to the first expression that
// is not an unwrappable ic call.
func (w *rewriter) innermost(call *cst.Node) *cst.Node {
	n := call
	for rules.IsTrackedCall(w.tree, n) {
		arg := singleArg(n)
		if arg == nil {
			break
		}
		n = arg
	}
	return n
}

// unwrap replaces call by its innermost argument. It reports false when the
// call has no single plain argument and is left as is.
func (w *rewriter) unwrap(call, parent *cst.Node) bool {
	inner := w.innermost(call)
	if inner == call {
		return false
	}
	wrap := needsParens(inner, call, parent) || (w.nest == 0 && w.bareNewline(inner))
	open, closing := "", ""
	if wrap {
		open, closing = "(", ")"
		w.nest++
	}
	w.replace(call.Start, inner.Start, open, diag.CallUsage)
	w.replace(inner.End, call.End, closing, diag.CallUsage)
	w.visit(inner, parent)
	if wrap {
		w.nest--
	}
	return true
}

// closedKinds keep their line breaks to themselves: brackets and strings.
var closedKinds = map[string]bool{
	"string":                   true,
	"argument_list":            true,
	"parameters":               true,
	"list":                     true,
	"tuple":                    true,
	"set":                      true,
	"dictionary":               true,
	"parenthesized_expression": true,
	"list_comprehension":       true,
	"set_comprehension":        true,
	"dictionary_comprehension": true,
	"generator_expression":     true,
}

// bareNewline reports whether arg breaks a line outside its own brackets,
// strings and backslash continuations. Such text only parses while the
// brackets of the removed call hold it together.
func (w *rewriter) bareNewline(arg *cst.Node) bool {
	src := w.tree.Source()
	var closed, comments [][2]uint32
	var collect func(n *cst.Node)
	collect = func(n *cst.Node) {
		switch {
		case closedKinds[n.Kind]:
			closed = append(closed, [2]uint32{n.Start, n.End})
			return
		case n.Kind == cst.KindComment:
			comments = append(comments, [2]uint32{n.Start, n.End})
			return
		}
		for _, c := range n.Children {
			if n.Is("subscript") && c.Kind == "[" {
				closed = append(closed, [2]uint32{c.Start, n.End})
			}
			collect(c)
		}
	}
	collect(arg)

	for off := arg.Start; off < arg.End; off++ {
		if src[off] != '\n' || within(closed, off) {
			continue
		}
		prev := off
		if prev > arg.Start && src[prev-1] == '\r' {
			prev--
		}
		if prev > arg.Start && src[prev-1] == '\\' && !within(comments, prev-1) {
			continue
		}
		return true
	}
	return false
}

func within(spans [][2]uint32, off uint32) bool {
	for _, sp := range spans {
		if off >= sp[0] && off < sp[1] {
			return true
		}
	}
	return false
}

// atomic kinds print the same regardless of surrounding operators.
var atomicKinds = map[string]bool{
	"identifier":               true,
	"string":                   true,
	"concatenated_string":      true,
	"integer":                  true,
	"float":                    true,
	"true":                     true,
	"false":                    true,
	"none":                     true,
	"ellipsis":                 true,
	"call":                     true,
	"attribute":                true,
	"subscript":                true,
	"parenthesized_expression": true,
	"list":                     true,
	"tuple":                    true,
	"dictionary":               true,
	"set":                      true,
	"list_comprehension":       true,
	"dictionary_comprehension": true,
	"set_comprehension":        true,
	"generator_expression":     true,
}

// looseParents accept any expression in the slot the call occupied.
var looseParents = map[string]bool{
	"expression_statement":     true,
	"return_statement":         true,
	"argument_list":            true,
	"parenthesized_expression": true,
	"list":                     true,
	"set":                      true,
	"tuple":                    true,
	"expression_list":          true,
	"pair":                     true,
	"interpolation":            true,
}

// needsParens decides whether arg, replacing call under parent, has to be
// wrapped to keep its meaning.
func needsParens(arg, call, parent *cst.Node) bool {
	if arg.Is(cst.KindNamedExpression) {
		return true
	}
	if parent == nil {
		return false
	}
	if arg.Is("integer", "float") {
		// 1.real is not an attribute access
		return parent.Is("attribute") && call.Field == cst.FieldObject
	}
	if atomicKinds[arg.Kind] {
		return false
	}
	if looseParents[parent.Kind] {
		return false
	}
	switch parent.Kind {
	case "assignment", "augmented_assignment":
		return call.Field != cst.FieldRight
	case "keyword_argument":
		return call.Field != cst.FieldValue
	case "subscript":
		return call.Field != cst.FieldSubscript
	}
	return true
}

// body rewrites the statements of a module or block, deleting the ones that
// only exist for icecream.
func (w *rewriter) body(body *cst.Node) {
	lines := w.logicalLines(body)
	removed := make([][]bool, len(lines))
	total, dropped := 0, 0
	for i, line := range lines {
		removed[i] = make([]bool, len(line))
		for j, stmt := range line {
			total++
			if w.statement(stmt, body) {
				removed[i][j] = true
				dropped++
			}
		}
	}
	if dropped == 0 {
		return
	}

	if dropped == total && body.Is(cst.KindBlock) {
		first := lines[0]
		last := first[len(first)-1]
		w.replace(first[0].Start, last.End, "pass", removalCode(first[0]))
		for _, line := range lines[1:] {
			w.dropLine(line)
		}
		return
	}

	for i, line := range lines {
		w.prune(line, removed[i])
	}
}

// logicalLines groups the statements of body by the physical line they
// share via ';'.
func (w *rewriter) logicalLines(body *cst.Node) [][]*cst.Node {
	var lines [][]*cst.Node
	prevRow := uint32(0)
	for _, stmt := range body.NamedChildren() {
		row := w.tree.Position(stmt).Line
		if len(lines) > 0 && row == prevRow {
			lines[len(lines)-1] = append(lines[len(lines)-1], stmt)
		} else {
			lines = append(lines, []*cst.Node{stmt})
		}
		prevRow = w.tree.File.LineCol(stmt.End).Line
	}
	return lines
}

// statement emits edits inside stmt and reports whether the whole
// statement has to go.
func (w *rewriter) statement(stmt, body *cst.Node) bool {
	switch stmt.Kind {
	case cst.KindImport:
		if !w.on(diag.ImportUsage) {
			return false
		}
		entries := stmt.ChildrenByField(cst.FieldName)
		tracked := rules.TrackedImports(w.tree, stmt)
		if len(tracked) == 0 {
			return false
		}
		if len(tracked) == len(entries) {
			return true
		}
		w.keepEntries(entries, func(e *cst.Node) bool {
			return !rules.IsTrackedModule(w.tree, rules.ImportedModule(e))
		}, diag.ImportUsage)
		return false

	case cst.KindImportFrom:
		if !w.on(diag.FromImportUsage) || !rules.IsTrackedFromImport(w.tree, stmt) {
			return false
		}
		if rules.IsWildcardImport(stmt) {
			return true
		}
		entries := stmt.ChildrenByField(cst.FieldName)
		keep := func(e *cst.Node) bool { return !rules.IsTrackedCallImport(w.tree, e) }
		kept := 0
		for _, e := range entries {
			if keep(e) {
				kept++
			}
		}
		if kept == 0 {
			return true
		}
		if kept < len(entries) {
			w.keepEntries(entries, keep, diag.FromImportUsage)
		}
		return false

	case cst.KindExpressionStatement:
		if w.on(diag.CallUsage) {
			exprs := stmt.NamedChildren()
			if len(exprs) == 1 && rules.IsTrackedCall(w.tree, exprs[0]) &&
				rules.IsTrackedCall(w.tree, w.innermost(exprs[0])) {
				return true
			}
		}
	}

	w.visit(stmt, body)
	return false
}

// keepEntries rewrites an import name list to the entries accepted by keep.
// Each kept entry is followed by the separator that followed it originally;
// the text before the first and after the last entry is untouched.
func (w *rewriter) keepEntries(entries []*cst.Node, keep func(*cst.Node) bool, code diag.Code) {
	var b strings.Builder
	prev := -1
	for i, e := range entries {
		if !keep(e) {
			continue
		}
		if prev >= 0 {
			b.WriteString(w.text(entries[prev].End, entries[prev+1].Start))
		}
		b.WriteString(w.text(e.Start, e.End))
		prev = i
	}
	first, last := entries[0], entries[len(entries)-1]
	w.replace(first.Start, last.End, b.String(), code)
}

// prune deletes the removed statements of one logical line.
func (w *rewriter) prune(line []*cst.Node, removed []bool) {
	lastKept := -1
	for j := range line {
		if !removed[j] {
			lastKept = j
		}
	}
	if lastKept < 0 {
		w.dropLine(line)
		return
	}
	for j := 0; j < lastKept; j++ {
		if removed[j] {
			w.replace(line[j].Start, line[j+1].Start, "", removalCode(line[j]))
		}
	}
	if lastKept < len(line)-1 {
		tail := line[len(line)-1]
		w.replace(line[lastKept].End, tail.End, "", removalCode(line[lastKept+1]))
	}
}

// dropLine removes a whole logical line: indentation, statements, trailing
// separator and comment, and the line break.
func (w *rewriter) dropLine(line []*cst.Node) {
	first, last := line[0], line[len(line)-1]
	code := removalCode(first)
	start := w.tree.LineStart(first.Start)
	if !blank(w.tree.Source()[start:first.Start]) {
		w.replace(first.Start, last.End, "", code)
		return
	}
	w.replace(start, w.lineTail(last.End), "", code)
}

// lineTail returns the offset just past the line break that ends the line
// after off, skipping a trailing ';' and comment. It stops early at
// anything else.
func (w *rewriter) lineTail(off uint32) uint32 {
	src := w.tree.Source()
	i := int(off)
scan:
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\r', ';', '\f':
			i++
		case '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case '\n':
			i++
			break scan
		default:
			break scan
		}
	}
	end, err := safecast.Conv[uint32](i)
	if err != nil {
		return off
	}
	return end
}

func blank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\f' {
			return false
		}
	}
	return true
}

func removalCode(stmt *cst.Node) diag.Code {
	switch stmt.Kind {
	case cst.KindImport:
		return diag.ImportUsage
	case cst.KindImportFrom:
		return diag.FromImportUsage
	}
	return diag.CallUsage
}
