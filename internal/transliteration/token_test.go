package transliteration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kt struct {
	text string
	kind Kind
}

func kinds(s string) []kt {
	var out []kt
	for tok := range Tokens(s) {
		out = append(out, kt{tok.Text, tok.Kind})
	}
	return out
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []kt
	}{
		{"empty", "", nil},
		{"words and punctuation", "puluvandha?", []kt{{"puluvandha", KindWord}, {"?", KindPunctuation}}},
		{"whitespace run", "a \t\nb", []kt{{"a", KindWord}, {" \t\n", KindWhitespace}, {"b", KindWord}}},
		{"currency with space", "Rs. 5000", []kt{{"Rs. 5000", KindNumber}}},
		{"currency without space", "Rs.5000", []kt{{"Rs.5000", KindNumber}}},
		{"currency alone", "Rs", []kt{{"Rs", KindWord}}},
		{"dollar", "$20", []kt{{"$20", KindNumber}}},
		{"date", "2026-01-10 mama", []kt{{"2026-01-10", KindNumber}, {" ", KindWhitespace}, {"mama", KindWord}}},
		{"time", "6.00 P.M DS", []kt{
			{"6.00", KindNumber}, {" ", KindWhitespace}, {"P.M", KindWord}, {" ", KindWhitespace}, {"DS", KindWord},
		}},
		{"trailing separator", "5000.", []kt{{"5000", KindNumber}, {".", KindPunctuation}}},
		{"apostrophe", "let's go", []kt{{"let's", KindWord}, {" ", KindWhitespace}, {"go", KindWord}}},
		{"quoted word", "'mama'", []kt{{"'", KindPunctuation}, {"mama", KindWord}, {"'", KindPunctuation}}},
		{"email", "example@gmail.com.", []kt{{"example@gmail.com", KindMixed}, {".", KindPunctuation}}},
		{"bare host", "zoom.lk", []kt{{"zoom.lk", KindMixed}}},
		{"url", "https://example.com/a?b=1)", []kt{{"https://example.com/a?b=1", KindMixed}, {")", KindPunctuation}}},
		{"handle", "@Colombo!", []kt{{"@Colombo", KindMixed}, {"!", KindPunctuation}}},
		{"hashtag", "#srilanka", []kt{{"#srilanka", KindMixed}}},
		{"symbols", "!@#$%^&*()", []kt{{"!@#$%^&*()", KindSymbol}}},
		{"punctuation", "?!...", []kt{{"?!...", KindPunctuation}}},
		{"emoji", "naa 😅", []kt{{"naa", KindWord}, {" ", KindWhitespace}, {"😅", KindSymbol}}},
		{"sentence end", "eeka.mama", []kt{{"eeka", KindWord}, {".", KindPunctuation}, {"mama", KindWord}}},
		{"not an email", "g@rble", []kt{{"g", KindWord}, {"@rble", KindMixed}}},
		{"arithmetic", "2+2=4", []kt{
			{"2", KindNumber}, {"+", KindSymbol}, {"2", KindNumber}, {"=", KindSymbol}, {"4", KindNumber},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(tt.input))
		})
	}
}

func TestTokensCoverInput(t *testing.T) {
	inputs := []string{
		"mama gedhara yanavaa 2025-12-01 @Colombo api kathaa example@gmail.com 2+2=4 zoom.lk 😅 $$$ Rs.5000!!!",
		"mamageedharagiyaa2023december25eethhethapassebalannaavashyayakkarala",
		"\xff\xfe broken utf8",
		"ශ්‍රී ලංකාව",
	}
	for _, input := range inputs {
		var b strings.Builder
		prev := 0
		for tok := range Tokens(input) {
			require.Equal(t, prev, tok.Start, "gap or overlap before %q", tok.Text)
			require.Equal(t, input[tok.Start:tok.End], tok.Text)
			require.NotEmpty(t, tok.Text)
			b.WriteString(tok.Text)
			prev = tok.End
		}
		assert.Equal(t, input, b.String())
	}
}

func TestTokensRestartable(t *testing.T) {
	seq := Tokens("mata heta 6.00")
	var first, second []Token
	for tok := range seq {
		first = append(first, tok)
	}
	for tok := range seq {
		second = append(second, tok)
	}
	assert.Equal(t, first, second)
	assert.Len(t, first, 5)
}

func TestTokensStopEarly(t *testing.T) {
	n := 0
	for range Tokens("a b c d") {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "word", KindWord.String())
	assert.Equal(t, "mixed", KindMixed.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
