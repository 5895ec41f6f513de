package game

import (
	"sort"
	"unicode"
)

// QuizGate records which glyphs passed the handwriting quiz this session.
type QuizGate struct {
	passed map[rune]struct{}
}

// NewQuizGate returns an empty gate.
func NewQuizGate() *QuizGate {
	return &QuizGate{passed: map[rune]struct{}{}}
}

// Passed reports whether glyph has passed the quiz.
func (g *QuizGate) Passed(glyph rune) bool {
	_, ok := g.passed[glyph]
	return ok
}

// PassedAll reports whether every glyph of text has passed. Text without
// Han glyphs never needs a quiz.
func (g *QuizGate) PassedAll(text string) bool {
	for _, r := range Glyphs(text) {
		if !g.Passed(r) {
			return false
		}
	}
	return true
}

// Mark records every glyph of text as passed.
func (g *QuizGate) Mark(text string) {
	for _, r := range Glyphs(text) {
		g.passed[r] = struct{}{}
	}
}

// List returns the passed glyphs in a stable order.
func (g *QuizGate) List() []string {
	out := make([]string, 0, len(g.passed))
	for r := range g.passed {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

// Glyphs returns the distinct Han runes of text in order of appearance.
func Glyphs(text string) []rune {
	var out []rune
	seen := map[rune]struct{}{}
	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
