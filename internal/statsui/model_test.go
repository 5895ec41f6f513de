package statsui

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuici/internal/model"
	"github.com/verte-zerg/tuici/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuici.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b"} {
		end := base.Add(time.Duration(i) * time.Hour)
		_, err := st.InsertSession(context.Background(), model.SessionStats{
			SessionID:       id,
			StartedAt:       end.Add(-time.Minute),
			EndedAt:         end,
			Band:            "hsk1",
			Words:           2,
			TierRequirement: 3,
			Policy:          "sequential",
			Stars:           2,
			Correct:         12,
			Incorrect:       2,
			BestStreak:      5,
			DurationMs:      60000,
		}, []model.WordStats{
			{Word: "你好", Correct: 6, Incorrect: 2},
			{Word: "谢谢", Correct: 6},
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return st
}

func sized(t *testing.T, m *Model) {
	t.Helper()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
}

func TestModelDefaultsToWeakWords(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{}, map[string]model.Word{
		"你好": {ID: "你好", Pinyin: "nǐ hǎo", English: "hello"},
	})
	sized(t, m)
	if m.loadErr != "" {
		t.Fatalf("unexpected error: %s", m.loadErr)
	}
	if len(m.report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(m.report.Sessions))
	}
	if !reflect.DeepEqual(m.trendWords, []string{"你好"}) {
		t.Fatalf("expected weak word selection, got %v", m.trendWords)
	}
	if len(m.trendStats) != 2 {
		t.Fatalf("expected per-session stats for 2 sessions, got %d", len(m.trendStats))
	}
	view := m.View()
	if !strings.Contains(view, "Overview") || !strings.Contains(view, "band=any") {
		t.Fatalf("expected header in view, got %q", view)
	}
	if !strings.Contains(view, "-/= window") {
		t.Fatalf("expected joined window help in footer, got %q", view)
	}
}

func TestModelWordTableUsesInfo(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{}, map[string]model.Word{
		"你好": {ID: "你好", Pinyin: "nǐ hǎo", English: "hello"},
	})
	rows := m.wordTable.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "你好" || rows[0][1] != "nǐ hǎo" || rows[0][2] != "hello" {
		t.Fatalf("expected weakest word first with info, got %v", rows[0])
	}
	if rows[1][1] != "" {
		t.Fatalf("expected empty pinyin for unknown word, got %q", rows[1][1])
	}
}

func TestModelFilterAppliesBand(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{}, nil)
	sized(t, m)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filter.active {
		t.Fatalf("expected filter form")
	}
	m.filter.inputs[fieldBand].SetValue("hsk2")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filter.active {
		t.Fatalf("expected filter form to close")
	}
	if m.cfg.Band != "hsk2" {
		t.Fatalf("expected band hsk2, got %q", m.cfg.Band)
	}
	if len(m.report.Sessions) != 0 {
		t.Fatalf("expected no sessions for hsk2, got %d", len(m.report.Sessions))
	}
}

func TestModelFilterKeepsBadInputOpen(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{Band: "hsk1"}, nil)
	sized(t, m)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.filter.focus != fieldSince {
		t.Fatalf("expected focus on since, got %d", m.filter.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.filter.focus != fieldWindow {
		t.Fatalf("expected focus to wrap to window, got %d", m.filter.focus)
	}
	m.filter.inputs[fieldWindow].SetValue("0")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filter.active || m.filter.err == "" {
		t.Fatalf("expected form to stay open with an error")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filter.active || m.cfg.Band != "hsk1" {
		t.Fatalf("expected cancel to keep the old filter, got %+v", m.cfg)
	}
}

func TestModelWordPicker(t *testing.T) {
	m := NewModel(seededStore(t), model.StatsConfig{}, nil)
	sized(t, m)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.tab != tabWordTrends {
		t.Fatalf("expected word trends tab, got %d", m.tab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.picker.active {
		t.Fatalf("expected word picker")
	}
	m.picker.input.SetValue("谢谢, 你好 谢谢")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !reflect.DeepEqual(m.trendWords, []string{"谢谢", "你好"}) {
		t.Fatalf("unexpected selection: %v", m.trendWords)
	}
	if !m.trendCustom {
		t.Fatalf("expected custom selection")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.picker.input.SetValue("")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.trendCustom || !reflect.DeepEqual(m.trendWords, []string{"你好"}) {
		t.Fatalf("expected reset to weak words, got %v", m.trendWords)
	}
}

func TestFilterFormRejectsBadInput(t *testing.T) {
	f := newFilterForm()
	f.inputs[fieldSince].SetValue("yesterday")
	if _, err := f.config(); err == nil {
		t.Fatalf("expected error for bad date")
	}
	f.inputs[fieldSince].SetValue("")
	f.inputs[fieldLast].SetValue("-3")
	if _, err := f.config(); err == nil {
		t.Fatalf("expected error for negative last")
	}
	f.inputs[fieldLast].SetValue("")
	f.inputs[fieldWindow].SetValue("0")
	if _, err := f.config(); err == nil {
		t.Fatalf("expected error for bad window")
	}
	f.inputs[fieldWindow].SetValue("")
	cfg, err := f.config()
	if err != nil || cfg.CurveWindow != 1 {
		t.Fatalf("expected empty form to default the window, got %+v %v", cfg, err)
	}
}

func TestStepWindow(t *testing.T) {
	cases := []struct{ n, dir, want int }{
		{1, 1, 5},
		{7, 1, 10},
		{10, 1, 15},
		{5, -1, 1},
		{12, -1, 10},
		{15, -1, 10},
	}
	for _, tc := range cases {
		if got := stepWindow(tc.n, tc.dir); got != tc.want {
			t.Fatalf("stepWindow(%d, %d): expected %d, got %d", tc.n, tc.dir, tc.want, got)
		}
	}
}

func TestFitBlock(t *testing.T) {
	got := fitBlock("ab\ncd\nef", 4, 2)
	if got != "ab  \ncd  " {
		t.Fatalf("unexpected block %q", got)
	}
	if got := fitBlock("你", 3, 2); got != "你 \n   " {
		t.Fatalf("expected wide rune padding, got %q", got)
	}
}
