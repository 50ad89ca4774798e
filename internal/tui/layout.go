package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// overlay draws fg over bg with its top left corner at cell (x, y). Lines of
// fg that fall outside bg are dropped.
func overlay(bg, fg string, x, y int) string {
	if fg == "" {
		return bg
	}
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")
	fgW := lipgloss.Width(fg)
	x, y = max(x, 0), max(y, 0)

	for i := 0; i < len(fgLines) && y+i < len(bgLines); i++ {
		bgLine := bgLines[y+i]
		bgW := ansi.StringWidth(bgLine)
		if bgW < x {
			bgLine += strings.Repeat(" ", x-bgW)
			bgW = x
		}
		left := ansi.Cut(bgLine, 0, x)
		right := ""
		if x+fgW < bgW {
			right = ansi.Cut(bgLine, x+fgW, bgW)
		}

		fgLine := fgLines[i]
		if n := ansi.StringWidth(fgLine); n < fgW {
			fgLine += strings.Repeat(" ", fgW-n)
		}
		bgLines[y+i] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}

// placePopup picks where a w by h popup goes for a caret at (cx, cy) inside
// a screen of width by height cells: below the caret when it fits, above it
// otherwise, shifted left to stay on screen.
func placePopup(cx, cy, w, h, width, height int) (x, y int) {
	x = cx
	if x+w > width {
		x = max(width-w, 0)
	}
	y = cy + 1
	if y+h > height && cy-h >= 0 {
		y = cy - h
	}
	return x, y
}

// clipLines keeps the first n lines of s.
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if n < 0 {
		n = 0
	}
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
