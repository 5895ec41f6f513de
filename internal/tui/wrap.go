package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const quizPlaceholder = '□'

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildQuizRunes styles each target glyph by what the player typed at the
// same position. Untyped glyphs stay hidden behind a placeholder.
func buildQuizRunes(targetRunes, inputRunes []rune) []styledRune {
	out := make([]styledRune, 0, len(targetRunes))
	cursorIndex := len(inputRunes)
	for i, target := range targetRunes {
		var (
			displayed rune
			style     = pendingStyle
		)
		switch {
		case i < len(inputRunes) && inputRunes[i] == target:
			displayed = target
			style = correctStyle
		case i < len(inputRunes):
			displayed = inputRunes[i]
			style = incorrectStyle
		default:
			displayed = quizPlaceholder
		}
		if i == cursorIndex {
			style = cursorStyle
		}
		out = append(out, styledRune{
			s:     style.Render(string(displayed)),
			width: runewidth.RuneWidth(displayed),
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapText breaks s at spaces into lines no wider than width. Words wider
// than width are split. At most maxLines lines are returned; the last one is
// truncated with an ellipsis when text remains.
func wrapText(s string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return nil
	}
	runes := make([]styledRune, 0, len(s))
	for _, r := range s {
		runes = append(runes, styledRune{s: string(r), width: runewidth.RuneWidth(r), isSpace: r == ' '})
	}
	var lines []string
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				lines = append(lines, renderStyledRunes(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				lines = append(lines, renderStyledRunes(line[:lastSpaceIdx]))
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				lines = append(lines, renderStyledRunes(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		if item.isSpace && len(line) == 0 {
			i++
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	if len(line) > 0 {
		lines = append(lines, renderStyledRunes(line))
	}
	if len(lines) > maxLines {
		last := lines[maxLines-1] + " " + strings.Join(lines[maxLines:], " ")
		cut := strings.TrimRight(runewidth.Truncate(last, width-1, ""), " ")
		lines = append(lines[:maxLines-1], cut+"…")
	}
	return lines
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
