package fix

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"unicecream/internal/diag"
)

var (
	// ErrNoFixes is returned when there is nothing to apply.
	ErrNoFixes = errors.New("no applicable fixes found")
	// ErrConflict is returned when two edits touch the same bytes.
	ErrConflict = errors.New("conflicting edits")
)

// Applied summarises what Apply changed.
type Applied struct {
	Edits  int
	ByCode map[diag.Code]int
}

// Apply splices edits into content and returns the new bytes. Edits are
// applied all-or-nothing: an out-of-range span, a failed guard or two
// overlapping spans abort the whole batch and content is left untouched.
func Apply(content []byte, edits []Edit) ([]byte, Applied, error) {
	applied := Applied{ByCode: make(map[diag.Code]int)}

	pending := make([]Edit, 0, len(edits))
	for _, e := range edits {
		if !e.IsNoop() {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return content, applied, ErrNoFixes
	}

	sortEdits(pending)

	size := len(content)
	var reach *Edit // earlier edit reaching furthest right
	for i, e := range pending {
		start, end := int(e.Span.Start), int(e.Span.End)
		if start < 0 || end < start || end > size {
			return content, applied, fmt.Errorf("edit span [%d,%d) out of range (size %d)", start, end, size)
		}
		if e.OldText != "" && string(content[start:end]) != e.OldText {
			return content, applied, fmt.Errorf("existing text at [%d,%d) does not match expected content", start, end)
		}
		if reach != nil && spansConflict(*reach, e) {
			return content, applied, fmt.Errorf("%w: [%d,%d) and [%d,%d)",
				ErrConflict, reach.Span.Start, reach.Span.End, e.Span.Start, e.Span.End)
		}
		if reach == nil || e.Span.End > reach.Span.End {
			reach = &pending[i]
		}
	}

	var out bytes.Buffer
	out.Grow(size)
	cursor := 0
	for _, e := range pending {
		start, end := int(e.Span.Start), int(e.Span.End)
		out.Write(content[cursor:start])
		out.WriteString(e.NewText)
		cursor = end
		applied.Edits++
		applied.ByCode[e.Code]++
	}
	out.Write(content[cursor:])

	return out.Bytes(), applied, nil
}

// sortEdits orders edits by start, then by end, keeping insertion order for
// identical spans.
func sortEdits(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Span.Start != edits[j].Span.Start {
			return edits[i].Span.Start < edits[j].Span.Start
		}
		return edits[i].Span.End < edits[j].Span.End
	})
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are treated as half-open intervals [Start, End). Two zero-length edits
// at the same offset conflict, since their relative order would be ambiguous.
// A zero-length edit conflicts with a non-zero span if its position is
// strictly inside that span.
func spansConflict(a, b Edit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return aStart == bStart
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}
