package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// RenderThemeGradient renders text with the current theme's primary gradient.
func RenderThemeGradient(text string, bold bool) string {
	t := CurrentTheme()
	return ApplyGradient(text, t.Primary, t.Secondary, bold)
}

// ApplyGradient colors each grapheme of text along a gradient from color1 to
// color2.
func ApplyGradient(text string, color1, color2 color.Color, bold bool) string {
	if text == "" {
		return ""
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	var out strings.Builder
	colors := blendColors(len(clusters), color1, color2)
	for i, cluster := range clusters {
		out.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Bold(bold).Render(cluster))
	}
	return out.String()
}

// blendColors returns steps colors between color1 and color2, blended in HCL
// space.
func blendColors(steps int, color1, color2 color.Color) []color.Color {
	if steps <= 0 {
		return nil
	}
	if steps == 1 {
		return []color.Color{color1}
	}

	c1, _ := colorful.MakeColor(color1)
	c2, _ := colorful.MakeColor(color2)

	colors := make([]color.Color, steps)
	for i := range steps {
		colors[i] = c1.BlendHcl(c2, float64(i)/float64(steps-1))
	}
	return colors
}
