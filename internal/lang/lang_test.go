package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "en", true},
		{"en", "en", true},
		{"EN", "en", true},
		{"pl", "pl", true},
		{"pt_br", "pt-BR", true},
		{"not a language!", "", false},
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestBase(t *testing.T) {
	assert.Equal(t, "pt", Base("pt-BR"))
	assert.Equal(t, "pl", Base("pl"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Polish", DisplayName("pl"))
	assert.Equal(t, "English", DisplayName("en-GB"))
}

func TestOrDefaultKeepsLabel(t *testing.T) {
	assert.Equal(t, "en", OrDefault("  "))
	assert.Equal(t, "polish", OrDefault(" polish "))
	assert.Equal(t, "EN", OrDefault("EN"))
}

func TestSource(t *testing.T) {
	assert.Equal(t, "pl", Source("pl"))
	assert.Equal(t, "pt", Source("pt_BR"))
	assert.Equal(t, "en", Source(""))
	assert.Equal(t, "", Source("not a language!"))
}
