package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuici/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	apm, acc := SessionMetrics(45, 15, 120000)
	if math.Abs(apm-30) > 1e-9 || math.Abs(acc-0.75) > 1e-9 {
		t.Fatalf("expected 30 apm and 0.75 accuracy, got %v %v", apm, acc)
	}
	if apm, acc := SessionMetrics(0, 0, 0); apm != 0 || acc != 0 {
		t.Fatalf("expected zero metrics, got %v %v", apm, acc)
	}
}

func TestMovingAverageAndShrink(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	shrunk := Shrink([]float64{1, 3, 5, 7}, 2)
	if len(shrunk) != 2 || shrunk[0] != 2 || shrunk[1] != 6 {
		t.Fatalf("unexpected shrink %v", shrunk)
	}
	if len(Shrink([]float64{1, 2}, 10)) != 2 {
		t.Fatalf("expected short series to stay as is")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 50, 100}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3}); got != "++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
}

func TestSelectWeakWords(t *testing.T) {
	aggs := []model.WordAggregate{
		{Word: "好", Correct: 8, Incorrect: 2},
		{Word: "你", Correct: 10, Incorrect: 0},
		{Word: "是", Correct: 1, Incorrect: 3},
		{Word: "人", Correct: 4, Incorrect: 1},
	}
	weak := SelectWeakWords(aggs, 2)
	if len(weak) != 2 || weak[0] != "是" || weak[1] != "好" {
		t.Fatalf("unexpected weak words %v", weak)
	}
	if all := SelectWeakWords(aggs, 0); len(all) != 3 {
		t.Fatalf("expected every missed word, got %v", all)
	}
}

func TestSortWeakestFirstTies(t *testing.T) {
	rows := SortWeakestFirst([]model.WordAggregate{
		{Word: "人", Correct: 4, Incorrect: 1},
		{Word: "好", Correct: 8, Incorrect: 2},
		{Word: "大", Correct: 4, Incorrect: 1},
	})
	got := []string{rows[0].Word, rows[1].Word, rows[2].Word}
	want := []string{"好", "人", "大"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRenderSummaryAndWordTable(t *testing.T) {
	sessions := []model.SessionAggregate{
		{ID: 1, Stars: 3, Words: 3, Correct: 30, Incorrect: 10, BestStreak: 4, DurationMs: 60000},
		{ID: 2, Stars: 5, Words: 5, Correct: 40, Incorrect: 0, BestStreak: 9, DurationMs: 60000},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Stars: 8", "Avg Accuracy: 87.50%", "Best Streak: 9", "Time Played: 2m0s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}

	buf.Reset()
	info := map[string]model.Word{"好": {ID: "好", Pinyin: "hǎo", English: "good"}}
	err := RenderWordTable(&buf, []model.WordAggregate{
		{Word: "你", Correct: 5},
		{Word: "好", Correct: 1, Incorrect: 1},
	}, info, false)
	if err != nil {
		t.Fatalf("word table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected title, header and 2 rows, got %q", lines)
	}
	if !strings.HasPrefix(lines[2], "好") || !strings.Contains(lines[2], "hǎo") {
		t.Fatalf("expected weakest word first with pinyin, got %q", lines[2])
	}
}

func TestRenderTrends(t *testing.T) {
	var sessions []model.SessionAggregate
	end := time.Unix(0, 0)
	for i := 0; i < 30; i++ {
		sessions = append(sessions, model.SessionAggregate{ID: int64(i), EndedAt: end, Stars: i % 5, Correct: 10 + i, Incorrect: 5, DurationMs: 60000})
	}
	var buf bytes.Buffer
	if err := RenderTrends(&buf, sessions, 3, 40); err != nil {
		t.Fatalf("trends: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Accuracy") || !strings.Contains(out, "Stars") {
		t.Fatalf("expected both series:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if displayWidth(line) > 40 {
			t.Fatalf("line wider than 40: %q", line)
		}
	}
}

func TestWordSeriesCarriesLastValue(t *testing.T) {
	sessions := []model.SessionAggregate{{ID: 1}, {ID: 2}, {ID: 3}}
	per := map[int64]map[string]model.WordAggregate{
		1: {"好": {Word: "好", Correct: 1, Incorrect: 1}},
		3: {"好": {Word: "好", Correct: 1}},
	}
	got := WordSeries(sessions, per, "好")
	if got[0] != 50 || got[1] != 50 || got[2] != 100 {
		t.Fatalf("unexpected series %v", got)
	}
}
