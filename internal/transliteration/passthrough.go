package transliteration

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// defaultPassthrough lists English words and names that commonly appear in
// Singlish chat and must survive conversion unchanged. Words that are also
// valid Singlish (mama, api, eka, oya) must not be added here.
var defaultPassthrough = []string{
	// school and work
	"school", "class", "exam", "campus", "university", "lecturers", "lecture",
	"assignment", "project", "deadline", "report", "meeting", "office", "boss",
	"DS", "P.M", "A.M", "ATM",
	// phones and the internet
	"call", "email", "whatsapp", "facebook", "youtube", "google", "zoom",
	"wifi", "connection", "online", "link", "message", "sms", "phone",
	"laptop", "computer", "tap", "card",
	// everyday English
	"cake", "shopping", "accident", "party", "birthday", "coffee", "pizza",
	"lunch", "dinner", "hotel", "taxi", "bus", "train", "ticket",
	"bro", "thx", "thanks", "sorry", "please", "ok", "okay", "hi", "hello", "bye",
	"let's", "go", "but", "sometimes", "example", "only", "urgent",
	"the", "and", "for", "with", "from", "this", "that", "is",
	// places and months
	"kandy", "colombo", "galle", "jaffna",
	"january", "february", "march", "april", "june", "july", "august",
	"september", "october", "november", "december",
	// currency
	"Rs", "LKR", "USD",
}

// Registry is an immutable, case-insensitive set of words that are never
// transliterated.
type Registry struct {
	words map[string]struct{}
}

// NewRegistry builds a registry from words. Blank entries are ignored.
func NewRegistry(words ...string) *Registry {
	r := &Registry{words: make(map[string]struct{}, len(words))}
	for _, w := range normalizeWords(words) {
		r.words[w] = struct{}{}
	}
	return r
}

// DefaultRegistry returns the built-in passthrough words.
func DefaultRegistry() *Registry {
	return NewRegistry(defaultPassthrough...)
}

func normalizeWords(words []string) []string {
	normalized := lo.Map(words, func(w string, _ int) string {
		return strings.ToLower(strings.TrimSpace(w))
	})
	return lo.Uniq(lo.Compact(normalized))
}

// Contains reports whether word is registered, ignoring case.
func (r *Registry) Contains(word string) bool {
	if r == nil {
		return false
	}
	_, ok := r.words[strings.ToLower(word)]
	return ok
}

// With returns a new registry holding the receiver's words plus words.
// The receiver is not modified.
func (r *Registry) With(words ...string) *Registry {
	next := &Registry{words: make(map[string]struct{}, r.Len()+len(words))}
	if r != nil {
		for w := range r.words {
			next.words[w] = struct{}{}
		}
	}
	for _, w := range normalizeWords(words) {
		next.words[w] = struct{}{}
	}
	return next
}

// Words returns the registered words, lowercased and sorted.
func (r *Registry) Words() []string {
	if r == nil {
		return nil
	}
	words := lo.Keys(r.words)
	slices.Sort(words)
	return words
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.words)
}
