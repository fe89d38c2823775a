package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForUser(t *testing.T) {
	a := ForUser("usr-abc")
	assert.Regexp(t, hexColor, a)
	assert.Equal(t, a, ForUser("usr-abc"))
	assert.Regexp(t, hexColor, ForUser(""))
}

func TestHSLToRGB(t *testing.T) {
	r, g, b := hslToRGB(0, 1, 0.5)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})

	r, g, b = hslToRGB(120, 0, 0.5)
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Ada Lovelace":        "AL",
		"ada":                 "A",
		"  jean  luc picard ": "JL",
		"":                    "?",
		"— !":                 "?",
		"émile zola":          "ÉZ",
	}
	for in, want := range tests {
		assert.Equal(t, want, Initials(in), in)
	}
}
