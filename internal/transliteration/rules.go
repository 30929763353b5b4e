package transliteration

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrRuleConflict is returned when two rules share a pattern and a priority.
	ErrRuleConflict = errors.New("conflicting rules")
	// ErrInvalidRule is returned for rules that can never apply.
	ErrInvalidRule = errors.New("invalid rule")
)

// ConfigurationError reports a rule table that was rejected at load time.
type ConfigurationError struct {
	Pattern string
	Detail  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Pattern == "" {
		return fmt.Sprintf("rule table: %s: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("rule table: pattern %q: %s: %s", e.Pattern, e.Err, e.Detail)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

type RuleKind int

const (
	Vowel RuleKind = iota + 1
	Consonant
)

func (k RuleKind) String() string {
	switch k {
	case Vowel:
		return "vowel"
	case Consonant:
		return "consonant"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// Context restricts where a rule may apply inside a word.
// After is compared against the lowercased text preceding the match.
type Context struct {
	After     string
	WordStart bool
	WordEnd   bool
}

func (c Context) holds(lower string, pos, n int) bool {
	if c.WordStart && pos != 0 {
		return false
	}
	if c.WordEnd && pos+n != len(lower) {
		return false
	}
	return strings.HasSuffix(lower[:pos], c.After)
}

// RuleEntry maps a romanized pattern to Sinhala script.
//
// For vowels Output is the independent letter and Sign the dependent mark
// written after a consonant. For consonants Output is the base letter and
// Conjunct, when set, replaces it directly after a dead consonant.
type RuleEntry struct {
	Pattern  string
	Kind     RuleKind
	Output   string
	Sign     string
	Conjunct string
	Context  Context
	Priority int
}

// RuleTable is an immutable set of phonetic rules. It is safe for
// concurrent use.
type RuleTable struct {
	virama    string
	byPattern map[string][]RuleEntry
	longest   int
	size      int
}

// NewRuleTable validates entries and builds a table. Two entries with the
// same pattern and priority are rejected with ErrRuleConflict.
func NewRuleTable(virama string, entries []RuleEntry) (*RuleTable, error) {
	if virama == "" {
		return nil, &ConfigurationError{Detail: "virama is required", Err: ErrInvalidRule}
	}

	t := &RuleTable{
		virama:    virama,
		byPattern: make(map[string][]RuleEntry, len(entries)),
	}
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, err
		}
		e.Context.After = strings.ToLower(e.Context.After)
		t.byPattern[e.Pattern] = append(t.byPattern[e.Pattern], e)
		t.longest = max(t.longest, len(e.Pattern))
		t.size++
	}

	for _, pattern := range slices.Sorted(maps.Keys(t.byPattern)) {
		rules := t.byPattern[pattern]
		slices.SortStableFunc(rules, func(a, b RuleEntry) int {
			return cmp.Compare(b.Priority, a.Priority)
		})
		for i := 1; i < len(rules); i++ {
			if rules[i].Priority == rules[i-1].Priority {
				return nil, &ConfigurationError{
					Pattern: pattern,
					Detail:  fmt.Sprintf("duplicate rule at priority %d", rules[i].Priority),
					Err:     ErrRuleConflict,
				}
			}
		}
	}
	return t, nil
}

func validateEntry(e RuleEntry) error {
	invalid := func(detail string) error {
		return &ConfigurationError{Pattern: e.Pattern, Detail: detail, Err: ErrInvalidRule}
	}
	if e.Pattern == "" {
		return invalid("empty pattern")
	}
	for i := 0; i < len(e.Pattern); i++ {
		if !isASCIILetter(e.Pattern[i]) {
			return invalid("patterns may only contain ASCII letters")
		}
	}
	if e.Kind != Vowel && e.Kind != Consonant {
		return invalid("unknown rule kind")
	}
	if e.Output == "" {
		return invalid("missing output")
	}
	if e.Kind == Vowel && e.Conjunct != "" {
		return invalid("vowels have no conjunct form")
	}
	if e.Kind == Consonant && e.Sign != "" {
		return invalid("consonants have no vowel sign")
	}
	return nil
}

// Len reports the number of rules in the table.
func (t *RuleTable) Len() int { return t.size }

// Longest reports the length of the longest pattern.
func (t *RuleTable) Longest() int { return t.longest }

// Virama is the sign that silences a consonant's inherent vowel.
func (t *RuleTable) Virama() string { return t.virama }

// Match finds the rule that applies at byte offset pos of word and returns
// it with the number of bytes it consumes.
func (t *RuleTable) Match(word string, pos int) (RuleEntry, int, bool) {
	return t.match(word, asciiLower(word), pos)
}

// match prefers the longest pattern, then an exact-case match over a
// case-folded one, then the highest priority whose context holds.
func (t *RuleTable) match(word, lower string, pos int) (RuleEntry, int, bool) {
	for n := min(t.longest, len(word)-pos); n > 0; n-- {
		exact := word[pos : pos+n]
		if r, ok := t.pick(exact, lower, pos, n); ok {
			return r, n, true
		}
		if folded := lower[pos : pos+n]; folded != exact {
			if r, ok := t.pick(folded, lower, pos, n); ok {
				return r, n, true
			}
		}
	}
	return RuleEntry{}, 0, false
}

func (t *RuleTable) pick(pattern, lower string, pos, n int) (RuleEntry, bool) {
	for _, r := range t.byPattern[pattern] {
		if r.Context.holds(lower, pos, n) {
			return r, true
		}
	}
	return RuleEntry{}, false
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// asciiLower folds only A-Z so byte offsets are preserved.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
