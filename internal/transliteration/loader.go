package transliteration

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed sinhala.yaml
var sinhalaRules []byte

type ruleFile struct {
	Virama     string     `yaml:"virama"`
	Vowels     []ruleDef `yaml:"vowels"`
	Consonants []ruleDef `yaml:"consonants"`
}

type ruleDef struct {
	Pattern   string `yaml:"pattern"`
	Output    string `yaml:"output"`
	Sign      string `yaml:"sign"`
	Conjunct  string `yaml:"conjunct"`
	After     string `yaml:"after"`
	WordStart bool   `yaml:"word_start"`
	WordEnd   bool   `yaml:"word_end"`
	Priority  int    `yaml:"priority"`
}

func (s ruleDef) entry(kind RuleKind) RuleEntry {
	return RuleEntry{
		Pattern:  s.Pattern,
		Kind:     kind,
		Output:   norm.NFC.String(s.Output),
		Sign:     norm.NFC.String(s.Sign),
		Conjunct: norm.NFC.String(s.Conjunct),
		Context: Context{
			After:     s.After,
			WordStart: s.WordStart,
			WordEnd:   s.WordEnd,
		},
		Priority: s.Priority,
	}
}

// DefaultRules returns the built-in Sinhala rule table.
func DefaultRules() (*RuleTable, error) {
	return ParseRules(sinhalaRules)
}

// LoadRulesFile reads a YAML rule file from disk.
func LoadRulesFile(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	t, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ParseRules decodes a YAML rule document. Unknown fields are rejected.
func ParseRules(data []byte) (*RuleTable, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f ruleFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Detail: "empty rule document", Err: ErrInvalidRule}
		}
		return nil, fmt.Errorf("decoding rules: %w", err)
	}

	entries := make([]RuleEntry, 0, len(f.Vowels)+len(f.Consonants))
	for _, s := range f.Vowels {
		entries = append(entries, s.entry(Vowel))
	}
	for _, s := range f.Consonants {
		entries = append(entries, s.entry(Consonant))
	}
	return NewRuleTable(norm.NFC.String(f.Virama), entries)
}
