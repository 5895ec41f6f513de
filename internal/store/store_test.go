package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuici/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tuici.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleSession(id string, band string, end time.Time) model.SessionStats {
	return model.SessionStats{
		SessionID:       id,
		StartedAt:       end.Add(-time.Minute),
		EndedAt:         end,
		Band:            band,
		Words:           3,
		TierRequirement: 3,
		Policy:          "random",
		Stars:           3,
		Correct:         30,
		Incorrect:       4,
		BestStreak:      6,
		DurationMs:      60000,
	}
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	first, err := st.InsertSession(ctx, sampleSession("s1", "hsk1", base), []model.WordStats{
		{Word: "你", Correct: 10, Incorrect: 1},
		{Word: "好", Correct: 9, Incorrect: 3},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertSession(ctx, sampleSession("s2", "hsk2", base.Add(time.Hour)), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	again, err := st.InsertSession(ctx, sampleSession("s1", "hsk1", base), nil)
	if err != nil {
		t.Fatalf("insert duplicate: %v", err)
	}
	if again != first {
		t.Fatalf("expected duplicate session to return id %d, got %d", first, again)
	}

	all, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(all))
	}
	if all[0].ID != first || !all[0].EndedAt.Equal(base) || all[0].Band != "hsk1" {
		t.Fatalf("unexpected first session %+v", all[0])
	}

	filtered, err := st.ListSessions(ctx, model.StatsConfig{Band: "hsk2"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Band != "hsk2" {
		t.Fatalf("expected only hsk2, got %+v", filtered)
	}
	since := base.Add(30 * time.Minute)
	recent, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent session, got %d", len(recent))
	}
}

func TestWordAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 2; i++ {
		id, err := st.InsertSession(ctx, sampleSession(string(rune('a'+i)), "hsk1", base.Add(time.Duration(i)*time.Hour)), []model.WordStats{
			{Word: "你", Correct: 5, Incorrect: i},
			{Word: "好", Correct: 2, Incorrect: 2},
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, id)
	}

	aggs, err := st.ListWordAggregatesForSessions(ctx, ids)
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	byWord := map[string]model.WordAggregate{}
	for _, a := range aggs {
		byWord[a.Word] = a
	}
	if byWord["你"].Correct != 10 || byWord["你"].Incorrect != 1 {
		t.Fatalf("unexpected aggregate %+v", byWord["你"])
	}

	per, err := st.ListWordStatsForSessions(ctx, ids, []string{"好"})
	if err != nil {
		t.Fatalf("per session: %v", err)
	}
	if len(per) != 2 || per[ids[1]]["好"].Incorrect != 2 {
		t.Fatalf("unexpected per-session stats %+v", per)
	}
	if _, ok := per[ids[0]]["你"]; ok {
		t.Fatalf("expected unrequested word to be absent")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	data, err := st.LoadSnapshot(ctx)
	if err != nil || data != nil {
		t.Fatalf("expected no snapshot, got %q %v", data, err)
	}
	now := time.Now()
	if err := st.SaveSnapshot(ctx, []byte(`{"a":1}`), now); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.SaveSnapshot(ctx, []byte(`{"a":2}`), now); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err = st.LoadSnapshot(ctx)
	if err != nil || string(data) != `{"a":2}` {
		t.Fatalf("expected last write to win, got %q %v", data, err)
	}
	if err := st.ClearSnapshot(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if data, _ := st.LoadSnapshot(ctx); data != nil {
		t.Fatalf("expected snapshot cleared")
	}
}
