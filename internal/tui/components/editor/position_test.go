package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineCol(t *testing.T) {
	s := "ab\ncde\n\nf"
	tests := []struct {
		pos       int
		line, col int
	}{
		{0, 0, 0},
		{2, 0, 2},
		{3, 1, 0},
		{6, 1, 3},
		{7, 2, 0},
		{8, 3, 0},
		{9, 3, 1},
		{99, 3, 1},
		{-1, 0, 0},
	}
	for _, tt := range tests {
		line, col := lineCol(s, tt.pos)
		assert.Equal(t, tt.line, line, "line at %d", tt.pos)
		assert.Equal(t, tt.col, col, "col at %d", tt.pos)
	}
}

func TestLineBounds(t *testing.T) {
	s := "ab\ncde\n\nf"
	tests := []struct {
		line       int
		start, end int
	}{
		{0, 0, 2},
		{1, 3, 6},
		{2, 7, 7},
		{3, 8, 9},
		{4, 9, 9},
	}
	for _, tt := range tests {
		start, end := lineBounds(s, tt.line)
		assert.Equal(t, tt.start, start, "start of %d", tt.line)
		assert.Equal(t, tt.end, end, "end of %d", tt.line)
	}
}

func TestOffsetAt(t *testing.T) {
	s := "abcdef\n\tx\nhé!"
	assert.Equal(t, 3, offsetAt(s, 0, 3))
	assert.Equal(t, 6, offsetAt(s, 0, 40), "clamped to the line end")
	assert.Equal(t, 7, offsetAt(s, 1, 2), "inside the tab")
	assert.Equal(t, 8, offsetAt(s, 1, 4))
	assert.Equal(t, 13, offsetAt(s, 2, 2), "after the two byte rune")
}

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 0, displayWidth(""))
	assert.Equal(t, 3, displayWidth("abc"))
	assert.Equal(t, 5, displayWidth("\tx"))
	assert.Equal(t, 4, displayWidth("日本"))
}

func TestRuneSteps(t *testing.T) {
	s := "aé"
	assert.Equal(t, 1, prevRune(s, 3))
	assert.Equal(t, 0, prevRune(s, 1))
	assert.Equal(t, 0, prevRune(s, 0))
	assert.Equal(t, 3, nextRune(s, 1))
	assert.Equal(t, 3, nextRune(s, 3))
}

func TestWordStartBefore(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want int
	}{
		{"word", "foo bar", 4},
		{"trailing blanks", "foo bar  \t", 4},
		{"punctuation run", "foo(...", 3},
		{"stops at newline", "foo\nbar", 4},
		{"joins lines", "foo\n", 3},
		{"start of buffer", "   ", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wordStartBefore(tt.s, len(tt.s)))
		})
	}
}
