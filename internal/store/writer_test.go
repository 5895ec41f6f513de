package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/tuici/internal/game"
	"github.com/verte-zerg/tuici/internal/model"
)

func TestWriterKeepsOrderAndLastSave(t *testing.T) {
	st := openTestStore(t)
	w := NewWriter(st)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := w.Save(ctx, game.Snapshot{Version: game.SnapshotVersion, SessionID: "s", Stars: i}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	snap, err := w.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap == nil || snap.Stars != 5 {
		t.Fatalf("expected the latest snapshot, got %+v", snap)
	}

	end := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	if err := w.RecordSession(ctx, sampleSession("s", "hsk1", end), []model.WordStats{{Word: "你", Correct: 3}}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := w.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if snap, err := w.Load(ctx); err != nil || snap != nil {
		t.Fatalf("expected cleared snapshot, got %+v %v", snap, err)
	}
	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Stars != 3 {
		t.Fatalf("expected the recorded session, got %+v", sessions)
	}

	w.Close()
	if err := w.Save(ctx, game.Snapshot{}); !errors.Is(err, ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed, got %v", err)
	}
	w.Close()
}

func TestWriterDrainsOnClose(t *testing.T) {
	st := openTestStore(t)
	w := NewWriter(st)
	ctx := context.Background()
	if err := w.Save(ctx, game.Snapshot{Version: game.SnapshotVersion, SessionID: "drain", Streak: 4}); err != nil {
		t.Fatalf("save: %v", err)
	}
	w.Close()
	snap, err := LoadSnapshot(ctx, st)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap == nil || snap.Streak != 4 {
		t.Fatalf("expected queued save to be written before close, got %+v", snap)
	}
}

func TestLoadSnapshotRejectsGarbage(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.SaveSnapshot(ctx, []byte("not json"), time.Now()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := LoadSnapshot(ctx, st); !errors.Is(err, game.ErrBadSnapshot) {
		t.Fatalf("expected ErrBadSnapshot, got %v", err)
	}
}
