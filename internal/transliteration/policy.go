package transliteration

import (
	"fmt"
	"unicode"
)

type Route int

const (
	RoutePassthrough Route = iota
	RouteTransliterate
	// RouteUnresolved marks a word that was sent to the converter but had
	// no complete rule segmentation. Its text is kept as is.
	RouteUnresolved
)

func (r Route) String() string {
	switch r {
	case RoutePassthrough:
		return "passthrough"
	case RouteTransliterate:
		return "transliterate"
	case RouteUnresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("Route(%d)", int(r))
	}
}

// Policy decides which tokens are converted.
type Policy struct {
	registry *Registry
}

func NewPolicy(registry *Registry) Policy {
	return Policy{registry: registry}
}

// Route returns RouteTransliterate only for words that are neither
// registered nor written without lowercase letters (ATM, DS, P.M).
// Everything else passes through.
func (p Policy) Route(tok Token) Route {
	if tok.Kind != KindWord {
		return RoutePassthrough
	}
	if p.registry.Contains(tok.Text) || !hasLower(tok.Text) {
		return RoutePassthrough
	}
	return RouteTransliterate
}

func hasLower(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}
