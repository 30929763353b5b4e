package transliteration

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Kind int

const (
	KindWord Kind = iota + 1
	KindNumber
	KindSymbol
	KindWhitespace
	KindPunctuation
	// KindMixed covers emails, URLs, handles and hashtags.
	KindMixed
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindNumber:
		return "number"
	case KindSymbol:
		return "symbol"
	case KindWhitespace:
		return "whitespace"
	case KindPunctuation:
		return "punctuation"
	case KindMixed:
		return "mixed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a classified run of the input. Start and End are byte offsets
// into the source string.
type Token struct {
	Text  string
	Kind  Kind
	Start int
	End   int
}

// maxAddressLen bounds the look-ahead for bare emails and hostnames.
const maxAddressLen = 254

var knownTLDs = map[string]bool{
	"com": true, "org": true, "net": true, "edu": true, "gov": true,
	"io": true, "co": true, "info": true, "biz": true, "app": true,
	"dev": true, "lk": true, "uk": true, "us": true, "in": true,
	"au": true, "ai": true, "tv": true,
}

// Tokens returns the tokens of s in order. The sequence can be ranged over
// any number of times and the token texts concatenate back to s.
func Tokens(s string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for pos := 0; pos < len(s); {
			kind, n := scan(s[pos:])
			if !yield(Token{Text: s[pos : pos+n], Kind: kind, Start: pos, End: pos + n}) {
				return
			}
			pos += n
		}
	}
}

// Tokenize collects Tokens(s).
func Tokenize(s string) []Token {
	var out []Token
	for tok := range Tokens(s) {
		out = append(out, tok)
	}
	return out
}

// scan classifies the token at the start of s and returns its length,
// which is always at least one byte.
func scan(s string) (Kind, int) {
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsSpace(r) {
		n := size
		for n < len(s) {
			r, size := utf8.DecodeRuneInString(s[n:])
			if !unicode.IsSpace(r) {
				break
			}
			n += size
		}
		return KindWhitespace, n
	}
	if n := scanMixed(s); n > 0 {
		return KindMixed, n
	}
	if n := scanNumber(s); n > 0 {
		return KindNumber, n
	}
	if n := scanAbbreviation(s); n > 0 {
		return KindWord, n
	}
	if isLatinLetter(r) {
		return KindWord, scanWord(s)
	}
	return scanOther(s)
}

func scanWord(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if isLatinLetter(r) {
			n += size
			continue
		}
		// apostrophes only join letters: let's, don't
		if r == '\'' && n > 0 && n+1 < len(s) {
			if next, _ := utf8.DecodeRuneInString(s[n+1:]); isLatinLetter(next) {
				n += size
				continue
			}
		}
		break
	}
	return n
}

// scanAbbreviation matches dotted single letters such as P.M or a.m.
func scanAbbreviation(s string) int {
	if len(s) < 3 || !isASCIILetter(s[0]) || s[1] != '.' {
		return 0
	}
	n := 1
	for n+1 < len(s) && s[n] == '.' && isASCIILetter(s[n+1]) {
		if n+2 < len(s) && isASCIILetter(s[n+2]) {
			break
		}
		n += 2
	}
	if n == 1 {
		return 0
	}
	return n
}

// scanNumber matches digits joined by . , : / - with an optional currency
// prefix: 6.00, 2026-01-10, Rs. 5000, $20.
func scanNumber(s string) int {
	n := 0
	switch {
	case s[0] == '$':
		n = 1
	case strings.HasPrefix(s, "Rs"):
		n = 2
		if n < len(s) && s[n] == '.' {
			n++
		}
		for n < len(s) && s[n] == ' ' {
			n++
		}
	}
	if n >= len(s) || !isDigit(s[n]) {
		return 0
	}
	for {
		for n < len(s) && isDigit(s[n]) {
			n++
		}
		if n+1 < len(s) && strings.IndexByte(".,:/-", s[n]) >= 0 && isDigit(s[n+1]) {
			n++
			continue
		}
		return n
	}
}

func scanMixed(s string) int {
	if n := scanURL(s); n > 0 {
		return n
	}
	if n := scanHandle(s); n > 0 {
		return n
	}
	return scanAddress(s)
}

func scanURL(s string) int {
	prefix := 0
	for _, p := range []string{"https://", "http://", "www."} {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			prefix = len(p)
			break
		}
	}
	if prefix == 0 {
		return 0
	}
	n := prefix
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if unicode.IsSpace(r) {
			break
		}
		n += size
	}
	return max(prefix, len(strings.TrimRight(s[:n], `.,!?;:)'"`)))
}

// scanHandle matches @mentions and #hashtags.
func scanHandle(s string) int {
	if s[0] != '@' && s[0] != '#' {
		return 0
	}
	n := 1
	for n < len(s) && (isASCIIAlnum(s[n]) || s[n] == '_' || s[n] == '.') {
		n++
	}
	n = len(strings.TrimRight(s[:n], "."))
	if n == 1 {
		return 0
	}
	return n
}

// scanAddress matches bare emails (kamal@gmail.com) and hostnames with a
// known top level domain (zoom.lk).
func scanAddress(s string) int {
	if !isASCIIAlnum(s[0]) {
		return 0
	}
	n := 0
	for n < len(s) && n < maxAddressLen && isAddressByte(s[n]) {
		n++
	}
	cand := strings.TrimRight(s[:n], ".-_")
	if local, domain, ok := strings.Cut(cand, "@"); ok {
		if local != "" && isDomain(domain, false) {
			return len(cand)
		}
		return 0
	}
	host, _, _ := strings.Cut(cand, "/")
	if isDomain(host, true) {
		return len(cand)
	}
	return 0
}

func isDomain(s string, knownTLD bool) bool {
	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" {
			return false
		}
		for i := 0; i < len(l); i++ {
			if !isASCIIAlnum(l[i]) && l[i] != '-' {
				return false
			}
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for i := 0; i < len(tld); i++ {
		if !isASCIILetter(tld[i]) {
			return false
		}
	}
	return !knownTLD || knownTLDs[strings.ToLower(tld)]
}

// scanOther consumes a run of symbols, punctuation or other scripts up to
// the next character that starts a different token.
func scanOther(s string) (Kind, int) {
	kind := KindPunctuation
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if n > 0 && startsToken(s[n:], r) {
			break
		}
		if !unicode.IsPunct(r) {
			kind = KindSymbol
		}
		n += size
	}
	return kind, n
}

func startsToken(s string, r rune) bool {
	switch {
	case unicode.IsSpace(r), isLatinLetter(r), r < utf8.RuneSelf && isDigit(byte(r)):
		return true
	case r == '@' || r == '#':
		return scanHandle(s) > 0
	case r == '$':
		return scanNumber(s) > 0
	}
	return false
}

func isLatinLetter(r rune) bool {
	return unicode.IsLetter(r) && unicode.Is(unicode.Latin, r)
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isASCIIAlnum(c byte) bool { return isDigit(c) || isASCIILetter(c) }

func isAddressByte(c byte) bool {
	return isASCIIAlnum(c) || strings.IndexByte(".-_+%@/", c) >= 0
}
