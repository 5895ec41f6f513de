package tui

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuici/internal/game"
	"github.com/verte-zerg/tuici/internal/model"
	"github.com/verte-zerg/tuici/internal/rotation"
)

type memoryStore struct {
	snap     *game.Snapshot
	saves    int
	clears   int
	sessions []model.SessionStats
}

func (s *memoryStore) Save(_ context.Context, snap game.Snapshot) error {
	s.saves++
	s.snap = &snap
	return nil
}

func (s *memoryStore) Load(context.Context) (*game.Snapshot, error) {
	return s.snap, nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.clears++
	s.snap = nil
	return nil
}

func (s *memoryStore) RecordSession(_ context.Context, stats model.SessionStats, _ []model.WordStats) error {
	s.sessions = append(s.sessions, stats)
	return nil
}

var testWords = []model.Word{
	{ID: "你", Pinyin: "nǐ", English: "you"},
	{ID: "好", Pinyin: "hǎo", English: "good"},
	{ID: "我", Pinyin: "wǒ", English: "I; me"},
	{ID: "他", Pinyin: "tā", English: "he"},
}

func newTestModel(t *testing.T, words []model.Word, requirement int, writing bool) (*Model, *memoryStore) {
	t.Helper()
	st := &memoryStore{}
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(2 * time.Second)
		return clock
	}
	m := NewModel(Options{
		Config: model.Config{Band: "hsk1"},
		NewGame: func(deps game.Deps) (*game.Session, error) {
			return game.New(game.Config{
				Words:           words,
				Band:            "hsk1",
				TierRequirement: requirement,
				Policy:          rotation.Sequential,
				WritingRequired: writing,
				Rand:            rand.New(rand.NewSource(1)),
			}, deps)
		},
		Resume: func(deps game.Deps) (*game.Session, error) {
			if st.snap == nil {
				return nil, nil
			}
			return game.Resume(*st.snap, game.Display{}, deps)
		},
		Deps: game.Deps{
			Persister: st,
			Recorder:  st,
			Go:        func(f func()) { f() },
		},
		Now: now,
	})
	return m, st
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (m *Model) activeSlot(t *testing.T) int {
	t.Helper()
	if m.view.Active == nil {
		t.Fatalf("expected an active card")
	}
	for _, sv := range m.view.Slots {
		if sv.State == rotation.SlotActive && sv.Word.ID == m.view.Active.Word.ID {
			return sv.Index
		}
	}
	t.Fatalf("active word %q has no slot", m.view.Active.Word.ID)
	return -1
}

func (m *Model) wrongSlot(t *testing.T) int {
	t.Helper()
	for _, sv := range m.view.Slots {
		if sv.State == rotation.SlotActive && sv.Word.ID != m.view.Active.Word.ID {
			return sv.Index
		}
	}
	t.Fatalf("expected a second bound slot")
	return -1
}

func (m *Model) press(t *testing.T, slot int) {
	t.Helper()
	m.Update(runes(m.keys.SlotKey(slot)))
}

func TestNewGameFromMenu(t *testing.T) {
	m, _ := newTestModel(t, testWords, 3, false)
	if m.screen != screenMenu {
		t.Fatalf("expected menu screen")
	}
	m.Update(runes("n"))
	if m.screen != screenPlaying {
		t.Fatalf("expected playing screen, status %q", m.status)
	}
	if len(m.view.Window) != rotation.WindowSize {
		t.Fatalf("expected %d cards, got %d", rotation.WindowSize, len(m.view.Window))
	}
	if len(m.view.Slots) != rotation.SlotCount {
		t.Fatalf("expected %d slots, got %d", rotation.SlotCount, len(m.view.Slots))
	}
	if out := m.View(); !strings.Contains(out, m.view.Active.Script) {
		t.Fatalf("expected active card in view")
	}
}

func TestAnswersDriveSession(t *testing.T) {
	m, st := newTestModel(t, testWords, 3, false)
	m.Update(runes("n"))

	word := m.view.Active.Word.ID
	m.press(t, m.activeSlot(t))
	if got := m.session.Progress(word).Count; got != 1 {
		t.Fatalf("expected count 1 for %s, got %d", word, got)
	}

	correct := m.activeSlot(t)
	m.press(t, m.wrongSlot(t))
	e, ok := m.effects[correct]
	if !ok || e.kind != game.CueShake {
		t.Fatalf("expected shake on slot %d, got %+v", correct, m.effects)
	}
	if st.saves < 3 {
		t.Fatalf("expected a save per mutation, got %d", st.saves)
	}
	if !strings.Contains(m.renderFooter(), "Mastered 0/4") {
		t.Fatalf("unexpected footer %q", m.renderFooter())
	}
}

func TestEscapeSavesAndResumes(t *testing.T) {
	m, st := newTestModel(t, testWords, 3, false)
	m.Update(runes("n"))
	word := m.view.Active.Word.ID
	m.press(t, m.activeSlot(t))
	id := m.session.ID()
	run := m.run

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenMenu || m.session != nil {
		t.Fatalf("expected menu without session")
	}
	if !m.canResume || st.snap == nil {
		t.Fatalf("expected resumable snapshot")
	}
	if _, cmd := m.Update(tickMsg{run: run}); cmd != nil {
		t.Fatalf("expected stale tick to be dropped")
	}

	m.Update(runes("r"))
	if m.screen != screenPlaying || m.session == nil {
		t.Fatalf("expected resumed session, status %q", m.status)
	}
	if m.session.ID() != id {
		t.Fatalf("expected session %s, got %s", id, m.session.ID())
	}
	if got := m.session.Progress(word).Count; got != 1 {
		t.Fatalf("expected restored count 1, got %d", got)
	}
	if _, cmd := m.Update(tickMsg{run: run}); cmd != nil {
		t.Fatalf("expected tick from the closed run to be dropped after resume")
	}
	if _, cmd := m.Update(tickMsg{run: m.run}); cmd == nil {
		t.Fatalf("expected tick from the resumed run to re-arm")
	}
}

func TestQuizGateFlow(t *testing.T) {
	words := []model.Word{{ID: "好", Pinyin: "hǎo", English: "good"}}
	m, st := newTestModel(t, words, 1, true)
	m.Update(runes("n"))

	for i := 0; i < 3; i++ {
		m.press(t, 0)
	}
	if m.quiz == nil {
		t.Fatalf("expected quiz after mastery")
	}
	if !strings.Contains(m.View(), "hǎo") {
		t.Fatalf("expected pinyin prompt in quiz view")
	}

	m.Update(runes("子"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.quiz == nil || m.quiz.attempts != 1 {
		t.Fatalf("expected retry after wrong glyph")
	}
	if m.screen != screenPlaying {
		t.Fatalf("expected to stay in play")
	}

	m.Update(runes("好"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenComplete {
		t.Fatalf("expected complete screen, got %d", m.screen)
	}
	if len(st.sessions) != 1 || st.sessions[0].Stars != 1 {
		t.Fatalf("expected recorded session with 1 star, got %+v", st.sessions)
	}
	if st.snap != nil {
		t.Fatalf("expected snapshot cleared")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenMenu || m.canResume {
		t.Fatalf("expected fresh menu after completion")
	}
}

func TestQuizOverride(t *testing.T) {
	words := []model.Word{{ID: "好", Pinyin: "hǎo", English: "good"}}
	m, _ := newTestModel(t, words, 1, true)
	m.Update(runes("n"))
	for i := 0; i < 3; i++ {
		m.press(t, 0)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.screen != screenComplete {
		t.Fatalf("expected complete screen after override")
	}
	if m.view.Stars != 1 {
		t.Fatalf("expected star after override, got %d", m.view.Stars)
	}
}

func TestResumeWithoutSnapshot(t *testing.T) {
	m, _ := newTestModel(t, testWords, 3, false)
	m.canResume = true
	m.Update(runes("r"))
	if m.screen != screenMenu {
		t.Fatalf("expected to stay on menu")
	}
	if m.canResume || m.status == "" {
		t.Fatalf("expected resume disabled with status, got %v %q", m.canResume, m.status)
	}
}

func TestKeyMapValidation(t *testing.T) {
	if _, err := NewKeyMap("123", " "); err == nil {
		t.Fatalf("expected length error")
	}
	if _, err := NewKeyMap("1123456789", " "); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if _, err := NewKeyMap(DefaultSlotKeys, "7"); err == nil {
		t.Fatalf("expected replay clash error")
	}
	km := DefaultKeyMap()
	if got := km.SlotFor(runes("7")); got != 0 {
		t.Fatalf("expected slot 0 for 7, got %d", got)
	}
	if got := km.SlotFor(runes("0")); got != 9 {
		t.Fatalf("expected slot 9 for 0, got %d", got)
	}
	if got := km.SlotFor(runes("x")); got != -1 {
		t.Fatalf("expected no slot for x, got %d", got)
	}
}
