// Package tui provides the Bubble Tea game interface.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/tuici/internal/game"
	"github.com/verte-zerg/tuici/internal/mascot"
	"github.com/verte-zerg/tuici/internal/model"
	"github.com/verte-zerg/tuici/internal/progress"
	"github.com/verte-zerg/tuici/internal/rotation"
)

type screen int

const (
	screenMenu screen = iota
	screenPlaying
	screenComplete
)

const (
	mascotTick    = 150 * time.Millisecond
	flashDuration = 600 * time.Millisecond
	shakeStep     = 80 * time.Millisecond
	slotBarWidth  = 12
	slotLabelRows = 2
	minCellWidth  = 18
	maxCellWidth  = 30
	defaultWidth  = 80
)

// SessionFactory builds a session wired to deps.
type SessionFactory func(deps game.Deps) (*game.Session, error)

// Options configures the game UI.
type Options struct {
	Config  model.Config
	Keys    KeyMap
	NewGame SessionFactory
	// Resume restores the saved session and returns nil when there is none.
	Resume SessionFactory
	// CanResume tells the menu a saved session exists.
	CanResume bool
	// ResumeOnStart skips the menu.
	ResumeOnStart bool
	// Deps supplies the announcer, persister and recorder. The model is the
	// renderer and the quizzer.
	Deps game.Deps
	Now  func() time.Time
}

type effect struct {
	kind  game.CueKind
	start time.Time
	until time.Time
}

type quizState struct {
	word     model.Word
	target   []rune
	input    textinput.Model
	attempts int
}

// Timer messages carry the run that armed them; each started or resumed
// session is a new run, even when it keeps its session id.
type tickMsg struct{ run int }

type effectMsg struct{ run int }

// Model implements the Bubble Tea game UI. It is also the session's
// renderer and quizzer; the session calls both from inside Update.
type Model struct {
	opts    Options
	keys    KeyMap
	now     func() time.Time
	initCmd tea.Cmd

	width  int
	height int

	screen    screen
	menuIndex int
	canResume bool
	status    string

	session    *game.Session
	run        int
	view       game.View
	cues       []game.Cue
	effects    map[int]effect
	cardFlash  time.Time
	mascot     *mascot.Mascot
	quiz       *quizState
	quizCmd    tea.Cmd
	display    game.Display
	showPinyin bool
	bars       map[progress.Tier]bar.Model
}

var (
	correctStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FD37F"))
	incorrectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle     = pendingStyle.Copy().Underline(true)
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	menuActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	menuStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardStyle       = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Foreground(lipgloss.Color("#B0B0B0")).
			Padding(0, 1)
	activeCardStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder(), true).
			BorderForeground(lipgloss.Color("#C8553A")).
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(1, 2)
	slotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
)

var tierColors = map[progress.Tier]string{
	progress.Bronze:   "#CD7F32",
	progress.Silver:   "#C0C0C0",
	progress.Gold:     "#FFD700",
	progress.Mastered: "#7FD37F",
}

var effectColors = map[game.CueKind]string{
	game.CueShake:        "#FF4D4F",
	game.CueMiss:         "#A05050",
	game.CueDemoted:      "#9B6BD1",
	game.CueTierUp:       "#FFD700",
	game.CueStarBurst:    "#7FD37F",
	game.CueNewWord:      "#5AB0E0",
	game.CueSlotComplete: "#5A5A5A",
}

// NewModel constructs the game UI.
func NewModel(opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Keys.Slots[0].Keys()) == 0 {
		opts.Keys = DefaultKeyMap()
	}
	m := &Model{
		opts:      opts,
		keys:      opts.Keys,
		now:       opts.Now,
		canResume: opts.CanResume,
		effects:   map[int]effect{},
		display: game.Display{
			Label:       labelMode(opts.Config.Label),
			Traditional: opts.Config.Traditional,
		},
		showPinyin: opts.Config.ShowPinyin,
		bars:       map[progress.Tier]bar.Model{},
	}
	for tier, color := range tierColors {
		m.bars[tier] = bar.New(bar.WithWidth(slotBarWidth), bar.WithoutPercentage(), bar.WithSolidFill(color))
	}
	if opts.ResumeOnStart {
		m.initCmd = m.resumeSession()
	}
	return m
}

func labelMode(s string) game.LabelMode {
	if strings.EqualFold(strings.TrimSpace(s), "pinyin") {
		return game.LabelPinyin
	}
	return game.LabelEnglish
}

// Render implements game.Renderer.
func (m *Model) Render(v game.View) {
	m.view = v
}

// Cue implements game.Renderer.
func (m *Model) Cue(c game.Cue) {
	m.cues = append(m.cues, c)
}

// RequestQuiz implements game.Quizzer.
func (m *Model) RequestQuiz(word model.Word) {
	if m.quiz != nil && m.quiz.word.ID == word.ID {
		m.quiz.attempts++
		m.quiz.input.Reset()
		m.status = "Not quite. Try again, or ctrl+o to skip."
		m.quizCmd = m.quiz.input.Focus()
		return
	}
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "type the characters"
	target := game.Glyphs(word.Script(m.display.Traditional))
	input.CharLimit = len(target) * 4
	m.quiz = &quizState{word: word, target: target, input: input}
	m.quizCmd = m.quiz.input.Focus()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.initCmd
}

// Close leaves the current session, saving it when still in play.
func (m *Model) Close() {
	if m.session == nil {
		return
	}
	m.session.Close()
	m.session = nil
	m.quiz = nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.currentRun(msg.run) {
			return m, nil
		}
		m.mascot.Tick(m.now())
		m.expireEffects(m.now())
		return m, m.tick()
	case effectMsg:
		if !m.currentRun(msg.run) {
			return m, nil
		}
		m.expireEffects(m.now())
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.Close()
			return m, tea.Quit
		}
		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenComplete:
			return m.updateComplete(msg)
		default:
			return m.updatePlaying(msg)
		}
	}
	return m, nil
}

func (m *Model) menuItems() []string {
	if m.canResume {
		return []string{"Resume", "New game", "Quit"}
	}
	return []string{"New game", "Quit"}
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.menuItems()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.menuIndex = (m.menuIndex - 1 + len(items)) % len(items)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.menuIndex = (m.menuIndex + 1) % len(items)
		return m, nil
	case key.Matches(msg, m.keys.Select):
		return m.chooseMenu(items[m.menuIndex])
	}
	switch msg.String() {
	case "r":
		if m.canResume {
			return m.chooseMenu("Resume")
		}
	case "n":
		return m.chooseMenu("New game")
	case "q":
		return m.chooseMenu("Quit")
	}
	return m, nil
}

func (m *Model) chooseMenu(item string) (tea.Model, tea.Cmd) {
	switch item {
	case "Resume":
		return m, m.resumeSession()
	case "New game":
		return m, m.beginSession(m.opts.NewGame)
	default:
		return m, tea.Quit
	}
}

func (m *Model) updateComplete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Menu):
		m.Close()
		m.screen = screenMenu
		m.menuIndex = 0
		m.canResume = false
		return m, nil
	case msg.String() == "q":
		m.Close()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		m.screen = screenMenu
		return m, nil
	}
	m.mascot.Interact(m.now())
	if m.quiz != nil {
		return m.updateQuiz(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Menu):
		m.leaveToMenu()
		return m, nil
	case key.Matches(msg, m.keys.Replay):
		m.session.ReplayAudio()
		return m, nil
	case key.Matches(msg, m.keys.Script):
		m.display.Traditional = !m.display.Traditional
		m.session.SetDisplay(m.display)
		return m, nil
	case key.Matches(msg, m.keys.Label):
		if m.display.Label == game.LabelEnglish {
			m.display.Label = game.LabelPinyin
		} else {
			m.display.Label = game.LabelEnglish
		}
		m.session.SetDisplay(m.display)
		return m, nil
	}
	slot := m.keys.SlotFor(msg)
	if slot < 0 {
		return m, nil
	}
	if _, err := m.session.SubmitAnswer(slot); err != nil {
		switch {
		case errors.Is(err, game.ErrEmptySlot):
			m.status = "That slot is done."
		default:
			log.Debug().Err(err).Int("slot", slot).Msg("answer ignored")
		}
		return m, nil
	}
	m.status = ""
	return m, m.afterSession()
}

func (m *Model) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Menu):
		m.leaveToMenu()
		return m, nil
	case key.Matches(msg, m.keys.Override):
		m.quiz = nil
		if err := m.session.OverrideQuiz(); err != nil {
			log.Warn().Err(err).Msg("override quiz")
		}
		m.status = ""
		return m, m.afterSession()
	case msg.Type == tea.KeyEnter:
		word := m.quiz.word
		passed := equalRunes(game.Glyphs(m.quiz.input.Value()), m.quiz.target)
		if passed {
			m.quiz = nil
			m.status = ""
		}
		if err := m.session.ResolveQuiz(word.ID, passed); err != nil {
			log.Warn().Err(err).Str("word", word.ID).Msg("resolve quiz")
			m.quiz = nil
		}
		return m, m.afterSession()
	}
	var cmd tea.Cmd
	m.quiz.input, cmd = m.quiz.input.Update(msg)
	return m, cmd
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (m *Model) resumeSession() tea.Cmd {
	if m.opts.Resume == nil {
		m.status = "Nothing to resume."
		m.canResume = false
		return nil
	}
	cmd, err := m.startWith(m.opts.Resume)
	if errors.Is(err, game.ErrBadSnapshot) {
		log.Warn().Err(err).Msg("saved session unreadable, starting a new game")
		m.canResume = false
		cmd = m.beginSession(m.opts.NewGame)
		m.status = "Saved session was unreadable; started a new game."
		return cmd
	}
	if err != nil {
		m.status = fmt.Sprintf("Could not resume: %v", err)
		return nil
	}
	return cmd
}

func (m *Model) beginSession(factory SessionFactory) tea.Cmd {
	cmd, err := m.startWith(factory)
	if err != nil {
		m.status = fmt.Sprintf("Could not start: %v", err)
		return nil
	}
	return cmd
}

func (m *Model) startWith(factory SessionFactory) (tea.Cmd, error) {
	if factory == nil {
		return nil, errors.New("no session source")
	}
	deps := m.opts.Deps
	deps.Renderer = m
	deps.Quizzer = m
	if deps.Now == nil {
		deps.Now = m.now
	}
	s, err := factory(deps)
	if err != nil {
		log.Warn().Err(err).Msg("start session")
		return nil, err
	}
	if s == nil {
		m.canResume = false
		m.status = "Nothing to resume."
		return nil, nil
	}
	m.Close()
	m.session = s
	m.run++
	m.effects = map[int]effect{}
	m.cues = nil
	m.quiz = nil
	m.mascot = mascot.New(m.now())
	m.status = ""
	s.SetDisplay(m.display)
	if err := s.Start(); err != nil {
		m.session = nil
		return nil, err
	}
	m.screen = screenPlaying
	m.canResume = false
	log.Info().Str("session", s.ID()).Int("words", m.view.Total).Msg("session started")
	return tea.Batch(m.afterSession(), m.tick()), nil
}

func (m *Model) leaveToMenu() {
	if m.session != nil && m.session.State() == game.Active {
		m.canResume = true
	}
	m.Close()
	m.screen = screenMenu
	m.menuIndex = 0
	m.status = ""
}

// afterSession applies cues the session emitted and reports follow-up
// commands.
func (m *Model) afterSession() tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.drainCues(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.quizCmd != nil {
		cmds = append(cmds, m.quizCmd)
		m.quizCmd = nil
	}
	if m.view.State == game.Completed {
		m.screen = screenComplete
		m.quiz = nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) drainCues() tea.Cmd {
	now := m.now()
	id := m.sessionID()
	cues := m.cues
	m.cues = nil
	var longest time.Duration
	for _, c := range cues {
		if c.SessionID != id {
			continue
		}
		m.mascot.React(c, now)
		d := flashDuration
		switch c.Kind {
		case game.CueShake:
			d = game.ShakeDuration
			m.effects[c.Slot] = effect{kind: c.Kind, start: now, until: now.Add(d)}
		case game.CueMiss, game.CueDemoted, game.CueTierUp, game.CueStarBurst, game.CueNewWord, game.CueSlotComplete:
			if c.Slot < 0 {
				continue
			}
			if cur, ok := m.effects[c.Slot]; ok && cur.kind == game.CueShake && now.Before(cur.until) {
				continue
			}
			m.effects[c.Slot] = effect{kind: c.Kind, start: now, until: now.Add(d)}
		case game.CueSlideOutActive, game.CueSlideInTail:
			m.cardFlash = now.Add(d)
		default:
			continue
		}
		if d > longest {
			longest = d
		}
	}
	if longest == 0 {
		return nil
	}
	run := m.run
	return tea.Tick(longest, func(time.Time) tea.Msg { return effectMsg{run: run} })
}

func (m *Model) expireEffects(now time.Time) {
	for slot, e := range m.effects {
		if !now.Before(e.until) {
			delete(m.effects, slot)
		}
	}
}

func (m *Model) tick() tea.Cmd {
	run := m.run
	return tea.Tick(mascotTick, func(time.Time) tea.Msg { return tickMsg{run: run} })
}

func (m *Model) currentRun(run int) bool {
	return m.session != nil && run == m.run
}

func (m *Model) sessionID() string {
	if m.session == nil {
		return ""
	}
	return m.session.ID()
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	var content string
	switch m.screen {
	case screenMenu:
		content = m.renderMenu()
	case screenComplete:
		content = m.renderComplete()
	default:
		content = m.renderGame(width)
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderMenu() string {
	lines := []string{titleStyle.Render("tuici"), menuStyle.Render(bandLine(m.opts.Config)), ""}
	for i, item := range m.menuItems() {
		if i == m.menuIndex {
			lines = append(lines, menuActiveStyle.Render("› "+item))
		} else {
			lines = append(lines, menuStyle.Render("  "+item))
		}
	}
	if m.status != "" {
		lines = append(lines, "", statusStyle.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func bandLine(cfg model.Config) string {
	band := cfg.Band
	if band == "" {
		band = "hsk1"
	}
	rng := "all words"
	if cfg.Start > 0 || cfg.End > 0 {
		end := "end"
		if cfg.End > 0 {
			end = fmt.Sprintf("%d", cfg.End)
		}
		rng = fmt.Sprintf("words %d-%s", maxInt(cfg.Start, 1), end)
	}
	return fmt.Sprintf("%s · %s", band, rng)
}

func (m *Model) renderComplete() string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("All %d words mastered!", m.view.Total)),
		"",
		correctStyle.Render(strings.Repeat("★", minInt(m.view.Stars, 20))),
		fmt.Sprintf("Stars %d", m.view.Stars),
	}
	if m.mascot != nil {
		lines = append(lines, "", m.mascot.Frame(m.now()))
	}
	lines = append(lines, "", footerStyle.Render("enter: menu · q: quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderGame(width int) string {
	now := m.now()
	parts := []string{m.renderHeader(width, now), m.renderWindow(width, now)}
	if m.quiz != nil {
		parts = append(parts, m.renderQuiz())
	} else {
		parts = append(parts, m.renderSlots(width, now))
	}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) renderHeader(width int, now time.Time) string {
	left := fmt.Sprintf("★ %d  %d/%d mastered", m.view.Stars, m.view.Completed, m.view.Total)
	if m.view.Streak > 1 {
		left += fmt.Sprintf("  streak %d", m.view.Streak)
	}
	right := ""
	if m.mascot != nil {
		right = m.mascot.Frame(now)
	}
	gap := minInt(width, 3*maxCellWidth) - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return titleStyle.Render(left) + strings.Repeat(" ", gap) + right
}

func (m *Model) renderWindow(width int, now time.Time) string {
	if len(m.view.Window) == 0 {
		return ""
	}
	inner := 0
	for _, c := range m.view.Window {
		inner = maxInt(inner, runewidth.StringWidth(c.Script))
	}
	cards := make([]string, 0, len(m.view.Window))
	used := 0
	for i, c := range m.view.Window {
		var card string
		if i == 0 {
			text := c.Script
			if m.showPinyin {
				text += "\n" + pendingStyle.Render(c.Word.Pinyin)
			}
			style := activeCardStyle
			if now.Before(m.cardFlash) {
				style = style.Copy().BorderForeground(lipgloss.Color("#7FD37F"))
			}
			card = style.Render(lipgloss.PlaceHorizontal(inner, lipgloss.Center, text))
		} else {
			card = cardStyle.Render(lipgloss.PlaceHorizontal(inner, lipgloss.Center, c.Script))
		}
		w := lipgloss.Width(card) + 1
		if i > 0 && used+w > width {
			break
		}
		used += w
		cards = append(cards, card, " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cards...)
}

func (m *Model) cellWidth(width int) int {
	w := (width - 6) / 3
	if w < minCellWidth {
		w = minCellWidth
	}
	if w > maxCellWidth {
		w = maxCellWidth
	}
	return w
}

func (m *Model) renderSlots(width int, now time.Time) string {
	if len(m.view.Slots) == 0 {
		return ""
	}
	cw := m.cellWidth(width)
	var rows []string
	for start := 0; start < len(m.view.Slots); start += 3 {
		end := minInt(start+3, len(m.view.Slots))
		cells := make([]string, 0, 3)
		for _, sv := range m.view.Slots[start:end] {
			cells = append(cells, m.renderSlot(sv, cw, now))
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
		if len(cells) < 3 && len(rows) > 0 {
			row = lipgloss.PlaceHorizontal(lipgloss.Width(rows[0]), lipgloss.Center, row)
		}
		rows = append(rows, row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderSlot(sv game.SlotView, cw int, now time.Time) string {
	inner := cw - 4
	keyLabel := keyStyle.Render(m.keys.SlotKey(sv.Index))
	lines := make([]string, 0, slotLabelRows+1)
	switch sv.State {
	case rotation.SlotActive:
		label := wrapText(sv.Label, inner-2, slotLabelRows)
		for len(label) < slotLabelRows {
			label = append(label, "")
		}
		lines = append(lines, keyLabel+" "+label[0])
		for _, l := range label[1:] {
			lines = append(lines, "  "+l)
		}
		b := m.bars[sv.Tier]
		lines = append(lines, b.ViewAs(sv.Fraction)+" "+mutedStyle.Render(fmt.Sprintf("%d", sv.Count)))
	case rotation.SlotComplete:
		lines = append(lines, keyLabel+" "+correctStyle.Render("✓ done"))
		for len(lines) < slotLabelRows+1 {
			lines = append(lines, "")
		}
	default:
		lines = append(lines, keyLabel+" "+mutedStyle.Render("—"))
		for len(lines) < slotLabelRows+1 {
			lines = append(lines, "")
		}
	}
	style := slotStyle.Copy().Width(inner + 2)
	if e, ok := m.effects[sv.Index]; ok && now.Before(e.until) {
		style = style.BorderForeground(lipgloss.Color(effectColors[e.kind]))
		if e.kind == game.CueShake && (now.Sub(e.start)/shakeStep)%2 == 1 {
			style = style.MarginLeft(1)
		} else {
			style = style.MarginRight(1)
		}
	} else {
		style = style.MarginRight(1)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderQuiz() string {
	q := m.quiz
	lines := []string{
		titleStyle.Render("Write it from memory"),
		fmt.Sprintf("%s  %s", q.word.Pinyin, pendingStyle.Render(q.word.English)),
		"",
		renderStyledRunes(buildQuizRunes(q.target, game.Glyphs(q.input.Value()))),
		q.input.View(),
	}
	if q.attempts > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("attempt %d", q.attempts+1)))
	}
	return slotStyle.Copy().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	switch m.screen {
	case screenMenu:
		return footerStyle.Render("↑/↓ choose · enter select · n new · q quit")
	case screenComplete:
		return ""
	}
	if m.quiz != nil {
		return footerStyle.Render("enter check · ctrl+o skip · esc menu")
	}
	segments := []string{
		fmt.Sprintf("Stars %d", m.view.Stars),
		fmt.Sprintf("Mastered %d/%d", m.view.Completed, m.view.Total),
	}
	if m.view.Requirement > 0 {
		segments = append(segments, fmt.Sprintf("R=%d", m.view.Requirement))
	}
	segments = append(segments, fmt.Sprintf("%s replay · esc menu", m.keys.Replay.Help().Key))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
