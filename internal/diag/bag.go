package diag

import (
	"sort"
)

// Bag collects violations of a single file.
type Bag struct {
	items []Violation
}

func NewBag() *Bag {
	return &Bag{items: make([]Violation, 0, 8)}
}

// Add appends a violation. Unknown codes are dropped.
func (b *Bag) Add(v Violation) bool {
	if !v.Code.Known() {
		return false
	}
	b.items = append(b.items, v)
	return true
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice нарушений.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Violation {
	return b.items
}

// Merge объединяет нарушения из другого Bag.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// Sort сортирует нарушения по line, column, code для детерминированного вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		return b.items[i].Less(b.items[j])
	})
}

// Dedup drops repeated (line, column, code) triples, keeping the first one.
// Call it after Sort.
func (b *Bag) Dedup() {
	type key struct {
		line, col int
		code      Code
	}
	seen := make(map[key]bool, len(b.items))
	newitems := make([]Violation, 0, len(b.items))
	for _, v := range b.items {
		k := key{line: v.Line, col: v.Column, code: v.Code}
		if seen[k] {
			continue
		}
		seen[k] = true
		newitems = append(newitems, v)
	}
	b.items = newitems
}

// Filter keeps only violations whose code is accepted by keep.
func (b *Bag) Filter(keep func(Code) bool) {
	newitems := b.items[:0]
	for _, v := range b.items {
		if keep(v.Code) {
			newitems = append(newitems, v)
		}
	}
	b.items = newitems
}
