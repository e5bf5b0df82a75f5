package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeDriver covers the whole run.
	ScopeDriver Scope = iota + 1
	// ScopeFile covers one source file.
	ScopeFile
	// ScopePass covers one pass over a file (read, parse, rules, fix, write).
	ScopePass
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeFile:
		return "file"
	case ScopePass:
		return "pass"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	Error    bool              // error points pass LevelError
	SpanID   uint64            // unique span identifier, 0 for points
	ParentID uint64            // parent span (0 if root)
	Name     string            // e.g. "discover", "file", "parse"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
