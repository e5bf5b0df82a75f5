package rules

import (
	"unicecream/internal/diag"
)

// registry is built once and never mutated.
var registry = [...]Rule{
	CallRule{},
	ImportRule{},
	FromImportRule{},
}

// All returns every rule in code order.
func All() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry[:])
	return out
}

// ByCode looks a rule up by its code.
func ByCode(code diag.Code) (Rule, bool) {
	for _, r := range registry {
		if r.Code() == code {
			return r, true
		}
	}
	return nil, false
}

// Select computes the active rules. A non-empty selectCodes restricts the
// set to the named codes; ignoreCodes is applied afterwards. Unknown codes
// are silently dropped. The result keeps registry order.
func Select(selectCodes, ignoreCodes []string) []Rule {
	selected := make(map[diag.Code]bool, len(registry))
	if len(selectCodes) == 0 {
		for _, r := range registry {
			selected[r.Code()] = true
		}
	} else {
		for _, s := range selectCodes {
			if code, ok := diag.ParseCode(s); ok {
				selected[code] = true
			}
		}
	}
	for _, s := range ignoreCodes {
		if code, ok := diag.ParseCode(s); ok {
			delete(selected, code)
		}
	}

	out := make([]Rule, 0, len(selected))
	for _, r := range registry {
		if selected[r.Code()] {
			out = append(out, r)
		}
	}
	return out
}

// Codes lists the codes of rules in order.
func Codes(active []Rule) []diag.Code {
	out := make([]diag.Code, 0, len(active))
	for _, r := range active {
		out = append(out, r.Code())
	}
	return out
}
