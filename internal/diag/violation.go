package diag

import (
	"fmt"

	"unicecream/internal/source"
)

// Violation is a located report that source text matches a disallowed
// pattern. Line and Column are 1-based; Column counts code points.
type Violation struct {
	Line    int
	Column  int
	Code    Code
	Message string
	Primary source.Span
}

// New builds a violation carrying the default message of code.
func New(code Code, primary source.Span, pos source.LineCol) Violation {
	return Violation{
		Line:    int(pos.Line),
		Column:  int(pos.Col),
		Code:    code,
		Message: code.Title(),
		Primary: primary,
	}
}

// Format renders the violation as "path:line:col: CODE message".
func (v Violation) Format(path string) string {
	return fmt.Sprintf("%s:%d:%d: %s %s", path, v.Line, v.Column, v.Code.ID(), v.Message)
}

// Less orders violations by line, column and code.
func (v Violation) Less(other Violation) bool {
	if v.Line != other.Line {
		return v.Line < other.Line
	}
	if v.Column != other.Column {
		return v.Column < other.Column
	}
	return v.Code < other.Code
}
