package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"github.com/billie-coop/locomplete/internal/text"
)

const tabWidth = 4

// lineCol converts a byte offset into a zero-based line and the byte offset
// inside that line.
func lineCol(s string, pos int) (line, col int) {
	pos = min(max(pos, 0), len(s))
	line = strings.Count(s[:pos], "\n")
	col = pos - (strings.LastIndexByte(s[:pos], '\n') + 1)
	return line, col
}

// lineBounds returns the byte range of line, excluding its newline.
func lineBounds(s string, line int) (start, end int) {
	for i := 0; i < line; i++ {
		next := strings.IndexByte(s[start:], '\n')
		if next < 0 {
			return len(s), len(s)
		}
		start += next + 1
	}
	end = strings.IndexByte(s[start:], '\n')
	if end < 0 {
		return start, len(s)
	}
	return start, start + end
}

// offsetAt maps a line and a display column back to a byte offset, clamping
// to the end of the line.
func offsetAt(s string, line, column int) int {
	start, end := lineBounds(s, line)
	width := 0
	for i, r := range s[start:end] {
		w := runeWidth(r)
		if width+w > column {
			return start + i
		}
		width += w
	}
	return end
}

// displayWidth is the number of cells s takes once tabs are expanded.
func displayWidth(s string) int {
	width := 0
	for _, r := range s {
		width += runeWidth(r)
	}
	return width
}

func runeWidth(r rune) int {
	if r == '\t' {
		return tabWidth
	}
	return ansi.StringWidth(string(r))
}

// prevRune returns the start of the rune before pos.
func prevRune(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	_, size := utf8.DecodeLastRuneInString(s[:pos])
	return pos - size
}

// nextRune returns the end of the rune at pos.
func nextRune(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	_, size := utf8.DecodeRuneInString(s[pos:])
	return pos + size
}

// wordStartBefore returns where a backward word deletion from pos stops:
// trailing blanks are skipped first, then one run of word or non-word runes.
func wordStartBefore(s string, pos int) int {
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:pos])
		if r != ' ' && r != '\t' {
			break
		}
		pos -= size
	}
	if pos == 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	if r == '\n' {
		return pos - 1
	}
	word := text.IsWordRune(r)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:pos])
		if r == '\n' || r == ' ' || r == '\t' || text.IsWordRune(r) != word {
			break
		}
		pos -= size
	}
	return pos
}
