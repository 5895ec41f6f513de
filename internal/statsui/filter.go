package statsui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuici/internal/model"
)

const dateLayout = "2006-01-02"

type filterField int

const (
	fieldBand filterField = iota
	fieldSince
	fieldLast
	fieldWindow
	fieldCount
)

var filterPrompts = [fieldCount]string{
	fieldBand:   "Band: ",
	fieldSince:  "Since (YYYY-MM-DD): ",
	fieldLast:   "Last sessions: ",
	fieldWindow: "Trend window: ",
}

// filterForm edits the session filter in place of the body.
type filterForm struct {
	active bool
	inputs [fieldCount]textinput.Model
	focus  filterField
	err    string
}

func newFilterForm() filterForm {
	var f filterForm
	for i, prompt := range filterPrompts {
		f.inputs[i] = newInput(prompt)
	}
	return f
}

func newInput(prompt string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.CharLimit = 0
	in.Cursor.SetMode(cursor.CursorBlink)
	return in
}

func (f *filterForm) open(cfg model.StatsConfig) tea.Cmd {
	f.active = true
	f.err = ""
	since, last := "", ""
	if cfg.Since != nil {
		since = cfg.Since.Format(dateLayout)
	}
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	f.inputs[fieldBand].SetValue(cfg.Band)
	f.inputs[fieldSince].SetValue(since)
	f.inputs[fieldLast].SetValue(last)
	f.inputs[fieldWindow].SetValue(strconv.Itoa(cfg.CurveWindow))
	return f.focusOn(fieldBand)
}

func (f *filterForm) close() {
	f.active = false
	f.err = ""
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// focusOn wraps around in both directions.
func (f *filterForm) focusOn(field filterField) tea.Cmd {
	f.focus = (field%fieldCount + fieldCount) % fieldCount
	var cmd tea.Cmd
	for i := range f.inputs {
		if filterField(i) == f.focus {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

func (f *filterForm) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *filterForm) setWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-len(f.inputs[i].Prompt)-2)
	}
}

func (f *filterForm) value(field filterField) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// config parses the form. An empty field leaves that filter unset.
func (f *filterForm) config() (model.StatsConfig, error) {
	cfg := model.StatsConfig{Band: f.value(fieldBand), CurveWindow: 1}
	if v := f.value(fieldSince); v != "" {
		since, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("since must be a date like 2024-05-01")
		}
		cfg.Since = &since
	}
	if v := f.value(fieldLast); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("last must be 0 or a positive number of sessions")
		}
		cfg.Last = n
	}
	if v := f.value(fieldWindow); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("trend window must be at least 1")
		}
		cfg.CurveWindow = n
	}
	return cfg, nil
}

func (f *filterForm) view() string {
	lines := []string{cardValueStyle.Render("Filter sessions")}
	for i := range f.inputs {
		lines = append(lines, f.inputs[i].View())
	}
	if f.err != "" {
		lines = append(lines, "", errStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func filterSummary(cfg model.StatsConfig) string {
	band, since, last := "any", "any", "all"
	if cfg.Band != "" {
		band = cfg.Band
	}
	if cfg.Since != nil {
		since = cfg.Since.Format(dateLayout)
	}
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	return fmt.Sprintf("band=%s  since=%s  last=%s  window=%d", band, since, last, cfg.CurveWindow)
}

// stepWindow moves the trend window to the next multiple of windowStep in
// dir, bottoming out at 1.
func stepWindow(n, dir int) int {
	if dir > 0 {
		if n < windowStep {
			return windowStep
		}
		return (n/windowStep + 1) * windowStep
	}
	if n <= windowStep {
		return 1
	}
	if n%windowStep == 0 {
		return n - windowStep
	}
	return n / windowStep * windowStep
}
