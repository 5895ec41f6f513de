package statsui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// wordPicker is the dialog that chooses the words on the trends tab.
type wordPicker struct {
	active bool
	input  textinput.Model
}

func newWordPicker() wordPicker {
	in := newInput("Words: ")
	in.Placeholder = "你好 谢谢"
	return wordPicker{input: in}
}

func (p *wordPicker) open(selection []string) tea.Cmd {
	p.active = true
	p.input.SetValue(strings.Join(selection, " "))
	p.input.CursorEnd()
	return p.input.Focus()
}

func (p *wordPicker) close() {
	p.active = false
	p.input.Blur()
}

func (p *wordPicker) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *wordPicker) setWidth(width int) {
	_, inner := modalSize(width)
	p.input.Width = max(10, inner-lipgloss.Width(p.input.Prompt))
}

func (p *wordPicker) view(width, height int) string {
	outer, _ := modalSize(width)
	box := modalStyle.Width(outer).Render(strings.Join([]string{
		cardValueStyle.Render("Trend words"),
		p.input.View(),
		mutedStyle.Render("Spaces or commas between words. Leave empty for the most missed."),
		mutedStyle.Render("enter apply  esc cancel"),
	}, "\n"))
	return fitBlock(lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box), width, height)
}

// parseWords splits on spaces and ASCII or full-width commas and drops
// repeats, keeping the first occurrence.
func parseWords(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '，' || unicode.IsSpace(r)
	})
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
