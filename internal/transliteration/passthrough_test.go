package transliteration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry("School", " cake ", "", "CAKE")
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"cake", "school"}, r.Words())
	assert.True(t, r.Contains("school"))
	assert.True(t, r.Contains("SCHOOL"))
	assert.False(t, r.Contains("mama"))
}

func TestRegistryWithDoesNotMutate(t *testing.T) {
	base := NewRegistry("boss")
	next := base.With("zoom", "Boss")

	assert.Equal(t, 1, base.Len())
	assert.False(t, base.Contains("zoom"))
	assert.Equal(t, []string{"boss", "zoom"}, next.Words())
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	assert.False(t, r.Contains("school"))
	assert.Zero(t, r.Len())
	assert.Nil(t, r.Words())
	assert.True(t, r.With("a").Contains("A"))
}

func TestDefaultRegistryExcludesSinglish(t *testing.T) {
	r := DefaultRegistry()
	for _, w := range []string{"school", "call", "boss", "whatsapp", "cake", "shopping", "ATM", "DS", "P.M"} {
		assert.True(t, r.Contains(w), w)
	}
	for _, w := range []string{"mama", "api", "eka", "oya", "me", "hari", "ta", "a", "ee", "nam"} {
		assert.False(t, r.Contains(w), w)
	}
}

func TestPolicyRoute(t *testing.T) {
	p := NewPolicy(NewRegistry("cake"))
	tests := []struct {
		tok  Token
		want Route
	}{
		{Token{Text: "mama", Kind: KindWord}, RouteTransliterate},
		{Token{Text: "Mama", Kind: KindWord}, RouteTransliterate},
		{Token{Text: "Cake", Kind: KindWord}, RoutePassthrough},
		{Token{Text: "ATM", Kind: KindWord}, RoutePassthrough},
		{Token{Text: "P.M", Kind: KindWord}, RoutePassthrough},
		{Token{Text: "5000", Kind: KindNumber}, RoutePassthrough},
		{Token{Text: "!", Kind: KindPunctuation}, RoutePassthrough},
		{Token{Text: "😅", Kind: KindSymbol}, RoutePassthrough},
		{Token{Text: " ", Kind: KindWhitespace}, RoutePassthrough},
		{Token{Text: "a@b.com", Kind: KindMixed}, RoutePassthrough},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Route(tt.tok), tt.tok.Text)
	}
}
