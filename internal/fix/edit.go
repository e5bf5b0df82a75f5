package fix

import (
	"unicecream/internal/diag"
	"unicecream/internal/source"
)

// Edit replaces the bytes covered by Span with NewText. OldText, when set,
// guards the edit: it is only applied if the original bytes match.
type Edit struct {
	Span    source.Span
	NewText string
	OldText string
	// Code is the rule whose construct the edit removes.
	Code diag.Code
}

// Option mutates an edit during construction.
type Option func(*Edit)

// WithCode tags the edit with the rule code it belongs to.
func WithCode(code diag.Code) Option {
	return func(e *Edit) {
		e.Code = code
	}
}

// WithGuard sets the text the edit expects to replace.
func WithGuard(expect string) Option {
	return func(e *Edit) {
		e.OldText = expect
	}
}

func applyOptions(e Edit, opts []Option) Edit {
	for _, opt := range opts {
		if opt != nil {
			opt(&e)
		}
	}
	return e
}

// DeleteSpan removes text covered by span.
func DeleteSpan(span source.Span, opts ...Option) Edit {
	return applyOptions(Edit{Span: span}, opts)
}

// ReplaceSpan replaces text covered by span with newText.
func ReplaceSpan(span source.Span, newText string, opts ...Option) Edit {
	return applyOptions(Edit{Span: span, NewText: newText}, opts)
}

// InsertText inserts text at a zero-width position.
func InsertText(file source.FileID, at uint32, text string, opts ...Option) Edit {
	return applyOptions(Edit{
		Span:    source.Span{File: file, Start: at, End: at},
		NewText: text,
	}, opts)
}

// IsNoop reports whether applying the edit cannot change anything.
func (e Edit) IsNoop() bool {
	return e.Span.Start == e.Span.End && e.NewText == ""
}
