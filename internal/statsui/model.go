// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuici/internal/model"
	"github.com/verte-zerg/tuici/internal/stats"
	"github.com/verte-zerg/tuici/internal/store"
)

const (
	tabOverview = iota
	tabWordTable
	tabWordTrends
	tabCount
)

const (
	trendWords = 5
	windowStep = 5
	noSessions = "No sessions found."
)

var tabTitles = [tabCount]string{"Overview", "Word Table", "Word Trends"}

var (
	jade = lipgloss.Color("#3AA37A")
	rust = lipgloss.Color("#C8553A")
	ink  = lipgloss.Color("#EDEAE0")
	ash  = lipgloss.Color("#4A4A4A")

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(ash).Foreground(lipgloss.Color("#A8A8A0"))
	tabActiveStyle = tabStyle.Copy().BorderForeground(rust).Foreground(ink).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#75756E"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5484D"))
	weakStyle      = lipgloss.NewStyle().Foreground(rust)
	cardStyle      = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(jade)
	cardLabelStyle = mutedStyle.Copy()
	cardValueStyle = lipgloss.NewStyle().Foreground(ink).Bold(true)
	tableStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#BDBDB4"))
	modalStyle     = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.ThickBorder(), true).BorderForeground(jade)
)

var wordColumns = []table.Column{
	{Title: "Word", Width: 8},
	{Title: "Pinyin", Width: 14},
	{Title: "Meaning", Width: 24},
	{Title: "Accuracy", Width: 9},
	{Title: "Correct", Width: 7},
	{Title: "Incorrect", Width: 9},
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig
	info  map[string]model.Word
	keys  keyMap

	report  stats.Report
	loadErr string

	tab       int
	panes     [tabCount]viewport.Model
	wordTable table.Model

	width  int
	height int

	filter filterForm
	picker wordPicker

	// Words plotted on the trends tab. Custom once the user picked them,
	// otherwise they follow the report's most missed words.
	trendWords  []string
	trendCustom bool
	trendStats  map[int64]map[string]model.WordAggregate
	trendErr    string
}

// NewModel constructs a stats UI model. info supplies pinyin and meanings
// for the word table.
func NewModel(st *store.Store, cfg model.StatsConfig, info map[string]model.Word) *Model {
	cfg.CurveWindow = max(1, cfg.CurveWindow)
	m := &Model{
		store:     st,
		cfg:       cfg,
		info:      info,
		keys:      defaultKeyMap(),
		filter:    newFilterForm(),
		picker:    newWordPicker(),
		wordTable: newWordTable(),
	}
	for i := range m.panes {
		m.panes[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

func newWordTable() table.Model {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(ash).
		Foreground(ink).
		Bold(true).
		Padding(0, 1, 0, 0)
	styles.Cell = styles.Cell.Padding(0, 1, 0, 0)
	styles.Selected = styles.Cell.Foreground(jade).Bold(true)
	t := table.New(table.WithColumns(wordColumns), table.WithHeight(1))
	t.SetStyles(styles)
	return t
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.renderPanes()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.filter.active:
			return m, m.updateFilter(msg)
		case m.picker.active:
			return m, m.updatePicker(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(-1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Wider):
		m.setWindow(stepWindow(m.cfg.CurveWindow, 1))
		return m, nil
	case key.Matches(msg, m.keys.Narrower):
		m.setWindow(stepWindow(m.cfg.CurveWindow, -1))
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		return m, m.filter.open(m.cfg)
	case key.Matches(msg, m.keys.Edit):
		if m.tab != tabWordTrends {
			return m, nil
		}
		return m, m.picker.open(m.trendWords)
	case key.Matches(msg, m.keys.Top), key.Matches(msg, m.keys.Bottom):
		top := key.Matches(msg, m.keys.Top)
		switch {
		case m.tab == tabWordTable && top:
			m.wordTable.GotoTop()
		case m.tab == tabWordTable:
			m.wordTable.GotoBottom()
		case top:
			m.panes[m.tab].GotoTop()
		default:
			m.panes[m.tab].GotoBottom()
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.tab == tabWordTable {
		m.wordTable, cmd = m.wordTable.Update(msg)
	} else {
		m.panes[m.tab], cmd = m.panes[m.tab].Update(msg)
	}
	return m, cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.filter.close()
		return nil
	case key.Matches(msg, m.keys.Apply):
		cfg, err := m.filter.config()
		if err != nil {
			m.filter.err = err.Error()
			return nil
		}
		m.filter.close()
		m.cfg = cfg
		m.refreshReport()
		return nil
	case key.Matches(msg, m.keys.NextField):
		return m.filter.focusOn(m.filter.focus + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m.filter.focusOn(m.filter.focus - 1)
	}
	return m.filter.forward(msg)
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.picker.close()
		return nil
	case key.Matches(msg, m.keys.Apply):
		words := parseWords(m.picker.input.Value())
		m.picker.close()
		m.pickTrendWords(words)
		return nil
	}
	return m.picker.forward(msg)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.picker.active {
		return m.picker.view(m.width, m.height)
	}
	return m.frame().render(m.header(), m.body(), m.footer())
}

func (m *Model) header() string {
	tabs := make([]string, 0, tabCount)
	for i, title := range tabTitles {
		style := tabStyle
		if i == m.tab {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n" +
		mutedStyle.Render(clipLine(filterSummary(m.cfg), m.width))
}

func (m *Model) body() string {
	switch {
	case m.filter.active:
		return m.filter.view()
	case m.tab != tabWordTable:
		return m.panes[m.tab].View()
	case len(m.report.Sessions) == 0:
		return noSessions
	case len(m.report.WordAggsAll) == 0:
		return "No word stats found."
	}
	return tableStyle.Render(m.wordTable.View())
}

func (m *Model) footer() string {
	k := m.keys
	var help string
	switch {
	case m.filter.active:
		help = helpLine(k.NextField, k.Apply, k.Cancel)
	case m.tab == tabWordTrends:
		help = helpLine(k.PrevTab, k.NextTab, k.Edit, k.Narrower, k.Wider, k.Filter, k.Quit)
	default:
		help = helpLine(k.PrevTab, k.NextTab, k.Scroll, k.Narrower, k.Wider, k.Filter, k.Quit)
	}
	out := mutedStyle.Render(clipLine(help, m.width))
	if !m.filter.active && m.loadErr != "" {
		out += "\n" + errStyle.Render(clipLine(m.loadErr, m.width))
	}
	return out
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	body := m.frame().body
	for i := range m.panes {
		m.panes[i].Width = m.width
		m.panes[i].Height = body
	}
	m.wordTable.SetWidth(m.width)
	m.wordTable.SetHeight(max(1, body-1))
	m.filter.setWidth(m.width)
	m.picker.setWidth(m.width)
}

func (m *Model) switchTab(delta int) {
	m.tab = (m.tab + delta + tabCount) % tabCount
	if m.tab == tabWordTable {
		m.wordTable.Focus()
		return
	}
	m.wordTable.Blur()
}

func (m *Model) setWindow(n int) {
	m.cfg.CurveWindow = n
	m.refreshReport()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.loadErr = err.Error()
		for i := range m.panes {
			m.panes[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.loadErr = ""
	m.report = report
	if !m.trendCustom {
		m.trendWords = mostMissed(report)
	}
	m.loadTrendStats()
	m.wordTable.SetRows(wordRows(report.WordAggsAll, m.info))
	m.resize()
	m.renderPanes()
}

func (m *Model) pickTrendWords(words []string) {
	m.trendCustom = len(words) > 0
	if m.trendCustom {
		m.trendWords = words
	} else {
		m.trendWords = mostMissed(m.report)
	}
	m.loadTrendStats()
	m.renderPanes()
}

// mostMissed falls back to the most practiced words when nothing was
// missed.
func mostMissed(report stats.Report) []string {
	if len(report.WeakWords) == 0 {
		return stats.TopWordsByFrequency(report.WordAggsAll, trendWords)
	}
	return report.WeakWords[:min(trendWords, len(report.WeakWords))]
}

func (m *Model) loadTrendStats() {
	m.trendErr = ""
	m.trendStats = nil
	if len(m.report.Sessions) == 0 || len(m.trendWords) == 0 {
		return
	}
	perSession, err := m.store.ListWordStatsForSessions(context.Background(), stats.SessionIDs(m.report.Sessions), m.trendWords)
	if err != nil {
		m.trendErr = err.Error()
		return
	}
	m.trendStats = perSession
}

func (m *Model) renderPanes() {
	if m.loadErr != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.panes[tabOverview].SetContent(overview(m.report, m.cfg.CurveWindow, width))
	m.panes[tabWordTrends].SetContent(m.trends(width))
}

func overview(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return noSessions
	}
	sections := []string{summaryCards(stats.Summarize(report.Sessions), width)}
	var buf bytes.Buffer
	if err := stats.RenderTrends(&buf, report.Sessions, window, width); err != nil {
		sections = append(sections, errStyle.Render("Trends unavailable: "+err.Error()))
	} else {
		sections = append(sections, strings.TrimRight(buf.String(), "\n"))
	}
	if len(report.WeakWords) > 0 {
		sections = append(sections, "Most missed: "+weakStyle.Render(strings.Join(report.WeakWords, " ")))
	}
	return strings.Join(sections, "\n\n")
}

// summaryCards lays the metrics out three per row, or one per row on
// narrow terminals.
func summaryCards(sum stats.Summary, width int) string {
	metrics := [][2]string{
		{"Sessions", fmt.Sprint(sum.Sessions)},
		{"Stars", fmt.Sprint(sum.Stars)},
		{"Best Streak", fmt.Sprint(sum.BestStreak)},
		{"Accuracy", fmt.Sprintf("%.1f%%", sum.AvgAccuracy*100)},
		{"Answers/min", fmt.Sprintf("%.1f", sum.AvgAPM)},
		{"Played", sum.Played.Round(time.Minute).String()},
	}
	perRow := 3
	if width < 80 {
		perRow = 1
	}
	rows := make([]string, 0, len(metrics)/perRow+1)
	for start := 0; start < len(metrics); start += perRow {
		cards := make([]string, 0, perRow)
		for _, mt := range metrics[start:min(start+perRow, len(metrics))] {
			cards = append(cards, cardStyle.Render(cardLabelStyle.Render(mt[0])+"\n"+cardValueStyle.Render(mt[1])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func wordRows(aggs []model.WordAggregate, info map[string]model.Word) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range stats.SortWeakestFirst(aggs) {
		w := info[agg.Word]
		rows = append(rows, table.Row{
			agg.Word,
			w.Pinyin,
			runewidth.Truncate(w.English, wordColumns[2].Width, "..."),
			fmt.Sprintf("%.2f%%", stats.WordAccuracy(agg)*100),
			fmt.Sprint(agg.Correct),
			fmt.Sprint(agg.Incorrect),
		})
	}
	return rows
}

func (m *Model) trends(width int) string {
	switch {
	case len(m.report.Sessions) == 0:
		return noSessions
	case m.trendErr != "":
		return errStyle.Render("Word trends unavailable: " + m.trendErr)
	case len(m.trendWords) == 0:
		return "No words selected. Press enter to pick some."
	}
	var buf bytes.Buffer
	if err := stats.RenderWordTrends(&buf, m.report.Sessions, m.trendStats, m.trendWords, m.cfg.CurveWindow, width); err != nil {
		return errStyle.Render("Word trends unavailable: " + err.Error())
	}
	label := "Most missed"
	if m.trendCustom {
		label = "Picked"
	}
	return mutedStyle.Render(label+": "+strings.Join(m.trendWords, ", ")) + "\n" + strings.TrimRight(buf.String(), "\n")
}
