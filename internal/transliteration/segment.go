package transliteration

import "strings"

// Segment converts a single word to Sinhala. It reports false when some
// position of the word has no rule; the word is then left untouched as a
// whole and never partially converted.
func (t *RuleTable) Segment(word string) (string, bool) {
	if word == "" {
		return "", false
	}

	lower := asciiLower(word)
	var b strings.Builder
	b.Grow(len(word) * 3)

	// pending holds a consonant whose vowel is not known yet.
	pending := ""
	for pos := 0; pos < len(word); {
		r, n, ok := t.match(word, lower, pos)
		if !ok {
			return "", false
		}

		switch r.Kind {
		case Consonant:
			if pending == "" {
				pending = r.Output
				break
			}
			b.WriteString(pending)
			b.WriteString(t.virama)
			pending = r.Output
			if r.Conjunct != "" {
				pending = r.Conjunct
			}
		case Vowel:
			if pending == "" {
				b.WriteString(r.Output)
				break
			}
			b.WriteString(pending)
			b.WriteString(r.Sign)
			pending = ""
		}
		pos += n
	}

	if pending != "" {
		b.WriteString(pending)
		b.WriteString(t.virama)
	}
	return b.String(), true
}
