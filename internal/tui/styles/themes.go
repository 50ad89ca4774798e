package styles

// NewLocompleteTheme is the default theme: slate background, ember accents.
func NewLocompleteTheme() *Theme {
	return &Theme{
		Name:   "locomplete",
		IsDark: true,

		Primary:   ParseHex("#C0392B"), // Fire red
		Secondary: ParseHex("#F4D03F"), // Bright yellow
		Accent:    ParseHex("#F39C12"), // Golden orange

		BgBase:      ParseHex("#2C3E50"),
		BgSubtle:    ParseHex("#3D566E"),
		BgHighlight: ParseHex("#5D6D7E"),

		FgBase:     ParseHex("#f5f6fa"),
		FgMuted:    ParseHex("#a0a0a0"),
		FgSubtle:   ParseHex("#6F6F70"),
		FgInverted: ParseHex("#1e1e1e"),

		Border:      ParseHex("#5D6D7E"),
		BorderFocus: ParseHex("#F39C12"),

		Success: ParseHex("#27AE60"),
		Error:   ParseHex("#E74C3C"),
		Warning: ParseHex("#F39C12"),
		Info:    ParseHex("#3498DB"),

		Match: ParseHex("#F4D03F"),
	}
}

// NewDarkTheme is a cool blue theme.
func NewDarkTheme() *Theme {
	return &Theme{
		Name:   "dark",
		IsDark: true,

		Primary:   ParseHex("#60a5fa"), // Sky blue
		Secondary: ParseHex("#a78bfa"), // Violet
		Accent:    ParseHex("#34d399"), // Emerald

		BgBase:      ParseHex("#0f172a"),
		BgSubtle:    ParseHex("#334155"),
		BgHighlight: ParseHex("#64748b"),

		FgBase:     ParseHex("#f8fafc"),
		FgMuted:    ParseHex("#cbd5e1"),
		FgSubtle:   ParseHex("#94a3b8"),
		FgInverted: ParseHex("#0f172a"),

		Border:      ParseHex("#334155"),
		BorderFocus: ParseHex("#60a5fa"),

		Success: ParseHex("#34d399"),
		Error:   ParseHex("#f87171"),
		Warning: ParseHex("#fbbf24"),
		Info:    ParseHex("#60a5fa"),

		Match: ParseHex("#f472b6"),
	}
}

// NewFireTheme is a red to yellow theme on a light slate background.
func NewFireTheme() *Theme {
	return &Theme{
		Name:   "fire",
		IsDark: true,

		Primary:   ParseHex("#C0392B"), // Deep red
		Secondary: ParseHex("#F4D03F"), // Bright yellow
		Accent:    ParseHex("#F39C12"), // Orange

		BgBase:      ParseHex("#708090"),
		BgSubtle:    ParseHex("#696969"),
		BgHighlight: ParseHex("#C0C0C0"),

		FgBase:     ParseHex("#FFFFFF"),
		FgMuted:    ParseHex("#F5F5F5"),
		FgSubtle:   ParseHex("#DCDCDC"),
		FgInverted: ParseHex("#000000"),

		Border:      ParseHex("#A9A9A9"),
		BorderFocus: ParseHex("#F39C12"),

		Success: ParseHex("#2ECC71"),
		Error:   ParseHex("#E74C3C"),
		Warning: ParseHex("#F1C40F"),
		Info:    ParseHex("#3498DB"),

		Match: ParseHex("#E74C3C"),
	}
}
