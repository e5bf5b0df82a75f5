package diagfmt

import (
	"encoding/json"
	"io"

	"unicecream/internal/diag"
)

// ViolationJSON представляет нарушение в JSON формате
type ViolationJSON struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Start   uint32 `json:"start_byte"`
	End     uint32 `json:"end_byte"`
}

// ErrorJSON описывает ошибку обработки файла
type ErrorJSON struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// JSONReport накапливает результаты прогона и пишет их одним документом.
type JSONReport struct {
	opts PrettyOpts
	doc  jsonDoc
}

type jsonDoc struct {
	Violations []ViolationJSON `json:"violations"`
	Fixed      []string        `json:"fixed,omitempty"`
	Errors     []ErrorJSON     `json:"errors,omitempty"`
	Count      int             `json:"count"`
}

// NewJSONReport creates an empty report.
func NewJSONReport(opts PrettyOpts) *JSONReport {
	return &JSONReport{
		opts: opts,
		doc:  jsonDoc{Violations: make([]ViolationJSON, 0)},
	}
}

// AddViolations appends the violations of one file.
func (r *JSONReport) AddViolations(path string, items []diag.Violation) {
	shown := r.opts.DisplayPath(path)
	for _, v := range items {
		r.doc.Violations = append(r.doc.Violations, ViolationJSON{
			File:    shown,
			Line:    v.Line,
			Column:  v.Column,
			Code:    v.Code.ID(),
			Message: v.Message,
			Start:   v.Primary.Start,
			End:     v.Primary.End,
		})
	}
	r.doc.Count = len(r.doc.Violations)
}

// AddFixed records a rewritten file.
func (r *JSONReport) AddFixed(path string) {
	r.doc.Fixed = append(r.doc.Fixed, r.opts.DisplayPath(path))
}

// AddError records a per-file failure.
func (r *JSONReport) AddError(path string, err error) {
	r.doc.Errors = append(r.doc.Errors, ErrorJSON{File: r.opts.DisplayPath(path), Error: err.Error()})
}

// Write encodes the report.
func (r *JSONReport) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.doc)
}
