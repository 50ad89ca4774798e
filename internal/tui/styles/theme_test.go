package styles

import (
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerFallsBackToDefault(t *testing.T) {
	m := NewManager("no-such-theme")
	assert.Equal(t, DefaultTheme, m.Current().Name)

	m = NewManager("fire")
	assert.Equal(t, "fire", m.Current().Name)
}

func TestSetTheme(t *testing.T) {
	m := NewManager(DefaultTheme)
	require.NoError(t, m.SetTheme("dark"))
	assert.Equal(t, "dark", m.Current().Name)

	err := m.SetTheme("missing")
	assert.EqualError(t, err, "theme missing not found")
	assert.Equal(t, "dark", m.Current().Name)
}

func TestListIsSorted(t *testing.T) {
	m := NewManager(DefaultTheme)
	m.Register(&Theme{Name: "custom"})
	assert.Equal(t, []string{"custom", "dark", "fire", "locomplete"}, m.List())
}

func TestStylesAreBuiltOnce(t *testing.T) {
	theme := NewDarkTheme()
	assert.Same(t, theme.S(), theme.S())
}

func TestParseHex(t *testing.T) {
	c := ParseHex("#ff8000")
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}, c)
	assert.Equal(t, "#ff8000", colorToHex(c))
}

func TestApplyGradient(t *testing.T) {
	assert.Empty(t, ApplyGradient("", ParseHex("#000000"), ParseHex("#ffffff"), false))

	out := ApplyGradient("héllo", ParseHex("#000000"), ParseHex("#ffffff"), true)
	assert.Equal(t, "héllo", ansi.Strip(out))
}

func TestBlendColors(t *testing.T) {
	black, white := ParseHex("#000000"), ParseHex("#ffffff")
	assert.Nil(t, blendColors(0, black, white))
	assert.Equal(t, []color.Color{black}, blendColors(1, black, white))

	colors := blendColors(5, black, white)
	require.Len(t, colors, 5)
	assert.NotEqual(t, colorToHex(colors[0]), colorToHex(colors[4]))
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("**alpha** is a word", 40)
	plain := ansi.Strip(out)
	assert.Contains(t, plain, "alpha")
	assert.Contains(t, plain, "word")
	assert.False(t, strings.HasPrefix(out, "\n"))

	r1, err := GetMarkdownRenderer(40)
	require.NoError(t, err)
	r2, err := GetMarkdownRenderer(40)
	require.NoError(t, err)
	assert.Same(t, r1, r2)
}
