// Package styles holds the editor's color themes and the lipgloss and glamour
// styles derived from them.
package styles

import (
	"fmt"
	"image/color"
	"slices"
	"sync"

	"github.com/charmbracelet/glamour/v2/ansi"
	"github.com/charmbracelet/lipgloss/v2"
)

// Theme is a named palette.
type Theme struct {
	Name   string
	IsDark bool

	Primary   color.Color
	Secondary color.Color
	Accent    color.Color

	BgBase      color.Color
	BgSubtle    color.Color
	BgHighlight color.Color

	FgBase     color.Color
	FgMuted    color.Color
	FgSubtle   color.Color
	FgInverted color.Color

	Border      color.Color
	BorderFocus color.Color

	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	// Match colors the typed characters inside list items.
	Match color.Color

	once   sync.Once
	styles *Styles
}

// Styles are the rendered styles of a theme.
type Styles struct {
	Base   lipgloss.Style
	Title  lipgloss.Style
	Muted  lipgloss.Style
	Subtle lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Editor
	Editor lipgloss.Style
	Cursor lipgloss.Style
	Span   lipgloss.Style

	// Completion popup
	Popup            lipgloss.Style
	Item             lipgloss.Style
	ItemSelected     lipgloss.Style
	ItemSoftSelected lipgloss.Style
	ItemMatch        lipgloss.Style
	ItemSuffix       lipgloss.Style
	FilterOn         lipgloss.Style
	FilterOff        lipgloss.Style
	FilterGone       lipgloss.Style
	Description      lipgloss.Style

	Status lipgloss.Style

	Markdown ansi.StyleConfig
}

// S returns the theme's styles, building them on first use.
func (t *Theme) S() *Styles {
	t.once.Do(func() { t.styles = t.buildStyles() })
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)

	return &Styles{
		Base:   base,
		Title:  base.Foreground(t.Accent).Bold(true),
		Muted:  base.Foreground(t.FgMuted),
		Subtle: base.Foreground(t.FgSubtle),

		Success: base.Foreground(t.Success),
		Error:   base.Foreground(t.Error),
		Warning: base.Foreground(t.Warning),
		Info:    base.Foreground(t.Info),

		Editor: base.
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),
		Cursor: lipgloss.NewStyle().Background(t.Primary).Foreground(t.FgInverted),
		Span:   base.Underline(true),

		Popup: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus),
		Item:             base.Foreground(t.FgMuted).PaddingRight(1),
		ItemSelected:     base.Background(t.Accent).Foreground(t.BgBase).PaddingRight(1),
		ItemSoftSelected: base.Foreground(t.Accent).Underline(true).PaddingRight(1),
		ItemMatch:        lipgloss.NewStyle().Foreground(t.Match).Bold(true),
		ItemSuffix:       base.Foreground(t.FgSubtle).Italic(true),
		FilterOn:         base.Foreground(t.BgBase).Background(t.Secondary).Padding(0, 1),
		FilterOff:        base.Foreground(t.FgMuted).Padding(0, 1),
		FilterGone:       base.Foreground(t.FgSubtle).Strikethrough(true).Padding(0, 1),
		Description: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		Status: base.Background(t.BgSubtle).Padding(0, 1),

		Markdown: t.buildMarkdownStyles(),
	}
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// buildMarkdownStyles styles item descriptions. Descriptions are short, so
// only the blocks sources actually emit are themed.
func (t *Theme) buildMarkdownStyles() ansi.StyleConfig {
	fg := stringPtr(colorToHex(t.FgBase))
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: fg},
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(colorToHex(t.Secondary)),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr(colorToHex(t.FgInverted)),
				BackgroundColor: stringPtr(colorToHex(t.Primary)),
				Bold:            boolPtr(true),
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix: "## ",
				Color:  stringPtr(colorToHex(t.Accent)),
				Bold:   boolPtr(true),
			},
		},
		Text: ansi.StylePrimitive{Color: fg},
		Paragraph: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{BlockSuffix: "\n"},
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
		Emph:        ansi.StylePrimitive{Italic: boolPtr(true)},
		Strong:      ansi.StylePrimitive{Bold: boolPtr(true)},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:           stringPtr(colorToHex(t.Accent)),
				BackgroundColor: stringPtr(colorToHex(t.BgSubtle)),
			},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: fg},
				Margin:         uintPtr(1),
			},
			Chroma: &ansi.Chroma{
				Text:          ansi.StylePrimitive{Color: fg},
				Comment:       ansi.StylePrimitive{Color: stringPtr(colorToHex(t.FgMuted)), Italic: boolPtr(true)},
				Keyword:       ansi.StylePrimitive{Color: stringPtr(colorToHex(t.Primary)), Bold: boolPtr(true)},
				KeywordType:   ansi.StylePrimitive{Color: stringPtr(colorToHex(t.Info))},
				NameFunction:  ansi.StylePrimitive{Color: stringPtr(colorToHex(t.Secondary))},
				LiteralString: ansi.StylePrimitive{Color: stringPtr(colorToHex(t.Success))},
				LiteralNumber: ansi.StylePrimitive{Color: stringPtr(colorToHex(t.Warning))},
				Operator:      ansi.StylePrimitive{Color: stringPtr(colorToHex(t.Accent))},
				Punctuation:   ansi.StylePrimitive{Color: stringPtr(colorToHex(t.FgSubtle))},
			},
		},
		Link:     ansi.StylePrimitive{Color: stringPtr(colorToHex(t.Info)), Underline: boolPtr(true)},
		LinkText: ansi.StylePrimitive{Color: stringPtr(colorToHex(t.Info))},
	}
}

// Manager handles theme switching and registration
type Manager struct {
	mu      sync.RWMutex
	themes  map[string]*Theme
	current *Theme
}

var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// DefaultTheme is used when no theme is configured.
const DefaultTheme = "locomplete"

func SetDefaultManager(m *Manager) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = m
}

func DefaultManager() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultManager == nil {
		defaultManager = NewManager(DefaultTheme)
	}
	return defaultManager
}

// CurrentTheme returns the default manager's theme.
func CurrentTheme() *Theme {
	return DefaultManager().Current()
}

// NewManager registers the built-in themes and selects defaultTheme, falling
// back to DefaultTheme for unknown names.
func NewManager(defaultTheme string) *Manager {
	m := &Manager{themes: make(map[string]*Theme)}
	for _, t := range []*Theme{NewLocompleteTheme(), NewDarkTheme(), NewFireTheme()} {
		m.Register(t)
	}

	m.current = m.themes[defaultTheme]
	if m.current == nil {
		m.current = m.themes[DefaultTheme]
	}
	return m
}

func (m *Manager) Register(theme *Theme) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[theme.Name] = theme
}

func (m *Manager) Current() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) SetTheme(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if theme, ok := m.themes[name]; ok {
		m.current = theme
		return nil
	}
	return fmt.Errorf("theme %s not found", name)
}

// List returns the registered theme names, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParseHex converts hex string to color
func ParseHex(hex string) color.Color {
	var r, g, b uint8
	fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// colorToHex converts color to the #rrggbb form glamour expects.
func colorToHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
