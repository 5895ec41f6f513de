package statsui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// frame splits the terminal into header, body and footer rows.
type frame struct {
	width  int
	header int
	body   int
	footer int
}

func (m *Model) frame() frame {
	f := frame{
		width:  m.width,
		header: max(1, lipgloss.Height(tabActiveStyle.Render("X"))) + 1,
		footer: 1,
	}
	if !m.filter.active && m.loadErr != "" {
		f.footer++
	}
	f.body = max(1, m.height-f.header-f.footer)
	return f
}

func (f frame) render(header, body, footer string) string {
	return strings.Join([]string{
		fitBlock(header, f.width, f.header),
		fitBlock(body, f.width, f.body),
		fitBlock(footer, f.width, f.footer),
	}, "\n")
}

// modalSize returns the outer width of a centered dialog and the width left
// for its content.
func modalSize(width int) (outer, inner int) {
	outer = min(max(width-4, 40), 80)
	inner = max(10, outer-modalStyle.GetHorizontalFrameSize())
	return outer, inner
}

// fitBlock pads every line to width and clips or pads to height rows.
func fitBlock(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if gap := width - lipgloss.Width(line); gap > 0 {
			lines[i] = line + strings.Repeat(" ", gap)
		}
	}
	return strings.Join(lines, "\n")
}

func clipLine(s string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(s) <= width:
		return s
	case width <= 3:
		return runewidth.Truncate(s, width, "")
	default:
		return runewidth.Truncate(s, width, "...")
	}
}
