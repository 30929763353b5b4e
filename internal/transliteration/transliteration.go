// Package transliteration converts Singlish (romanized Sinhala) to Sinhala
// script using a phonetic rule table. English words, numbers, addresses and
// symbols embedded in the text are left as they are.
package transliteration

import (
	"fmt"
	"strings"
)

// Config holds the reference data an Engine converts with. A nil Rules
// loads the built-in table and a nil Registry passes no words through.
type Config struct {
	Rules    *RuleTable
	Registry *Registry
}

// Engine converts text. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	rules    *RuleTable
	registry *Registry
	policy   Policy
}

// Span locates a word that could not be converted.
type Span struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Part is the outcome for one token.
type Part struct {
	Token  Token
	Route  Route
	Output string
}

// Result is the outcome of one conversion.
type Result struct {
	Output     string
	Unresolved []Span
	Parts      []Part
}

func New(cfg Config) (*Engine, error) {
	rules := cfg.Rules
	if rules == nil {
		var err error
		if rules, err = DefaultRules(); err != nil {
			return nil, fmt.Errorf("loading default rules: %w", err)
		}
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Engine{
		rules:    rules,
		registry: registry,
		policy:   NewPolicy(registry),
	}, nil
}

// Default returns an engine using the built-in rules and passthrough words.
func Default() (*Engine, error) {
	return New(Config{Registry: DefaultRegistry()})
}

func (e *Engine) Rules() *RuleTable { return e.rules }

func (e *Engine) Registry() *Registry { return e.registry }

// Convert transliterates s. It accepts any input and never fails; words it
// cannot convert are copied unchanged.
func (e *Engine) Convert(s string) string {
	return e.run(s, nil).Output
}

// ConvertDetailed is Convert that also reports unresolved words and the
// route taken by every token.
func (e *Engine) ConvertDetailed(s string) Result {
	var parts []Part
	res := e.run(s, func(p Part) { parts = append(parts, p) })
	res.Parts = parts
	return res
}

func (e *Engine) run(s string, visit func(Part)) Result {
	var (
		res Result
		b   strings.Builder
	)
	b.Grow(len(s) * 2)

	for tok := range Tokens(s) {
		p := Part{Token: tok, Route: e.policy.Route(tok), Output: tok.Text}
		if p.Route == RouteTransliterate {
			if out, ok := e.rules.Segment(tok.Text); ok {
				p.Output = out
			} else {
				p.Route = RouteUnresolved
				res.Unresolved = append(res.Unresolved, Span{Text: tok.Text, Start: tok.Start, End: tok.End})
			}
		}
		b.WriteString(p.Output)
		if visit != nil {
			visit(p)
		}
	}

	res.Output = b.String()
	return res
}
