package diag

// Reporter — минимальный контракт получения нарушений от правил.
// Реализации: BagReporter (кладёт в Bag), FilterReporter (отбрасывает коды).
type Reporter interface {
	Report(v Violation)
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(v Violation) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(v)
}

// FilterReporter forwards only violations whose code is enabled.
type FilterReporter struct {
	next    Reporter
	enabled map[Code]bool
}

// NewFilterReporter wraps next so that only the listed codes pass through.
func NewFilterReporter(next Reporter, codes []Code) *FilterReporter {
	enabled := make(map[Code]bool, len(codes))
	for _, c := range codes {
		enabled[c] = true
	}
	return &FilterReporter{next: next, enabled: enabled}
}

func (r *FilterReporter) Report(v Violation) {
	if r == nil || r.next == nil || !r.enabled[v.Code] {
		return
	}
	r.next.Report(v)
}
