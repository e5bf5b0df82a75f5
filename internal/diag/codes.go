package diag

import (
	"fmt"
	"strings"
)

// Code identifies a rule. The set is closed: the only way to get a Code
// from text is ParseCode, which rejects anything unknown.
type Code uint8

const (
	// UnknownCode is the zero value and never reported.
	UnknownCode Code = 0

	CallUsage       Code = 1 // IC001: ic(...) call
	ImportUsage     Code = 2 // IC002: import icecream
	FromImportUsage Code = 3 // IC003: from icecream import ic
)

var (
	codeDescription = map[Code]string{
		UnknownCode:     "unknown rule",
		CallUsage:       "remove icecream call",
		ImportUsage:     "remove icecream import",
		FromImportUsage: "remove icecream from-import",
	}

	allCodes = []Code{CallUsage, ImportUsage, FromImportUsage}
)

// AllCodes returns every known code in ascending order.
func AllCodes() []Code {
	out := make([]Code, len(allCodes))
	copy(out, allCodes)
	return out
}

// ParseCode converts "IC001"-style text into a Code. Matching is case
// insensitive and ignores surrounding whitespace.
func ParseCode(s string) (Code, bool) {
	id := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range allCodes {
		if c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}

// Known reports whether c is one of the rule codes.
func (c Code) Known() bool {
	return c >= CallUsage && c <= FromImportUsage
}

// ID returns the stable textual identifier, e.g. "IC001".
func (c Code) ID() string {
	if !c.Known() {
		return "IC000"
	}
	return fmt.Sprintf("IC%03d", int(c))
}

// Title returns the default violation message of the code.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return c.ID()
}
