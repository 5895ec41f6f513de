package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/tuici/internal/game"
	"github.com/verte-zerg/tuici/internal/model"
)

// ErrWriterClosed is returned after Close.
var ErrWriterClosed = errors.New("store writer is closed")

type opKind int

const (
	opSave opKind = iota
	opClear
	opRecord
	opFlush
)

type op struct {
	kind  opKind
	snap  game.Snapshot
	stats model.SessionStats
	words []model.WordStats
	done  chan struct{}
}

// Writer applies session persistence on one goroutine, in submission order.
// Consecutive snapshot saves collapse into the latest one. It implements
// game.Persister and game.Recorder.
type Writer struct {
	st *Store

	mu     sync.Mutex
	queue  []op
	closed bool
	wake   chan struct{}
	exited chan struct{}
}

// NewWriter starts the writer goroutine.
func NewWriter(st *Store) *Writer {
	w := &Writer{
		st:     st,
		wake:   make(chan struct{}, 1),
		exited: make(chan struct{}),
	}
	go w.run()
	return w
}

// Save queues a snapshot write.
func (w *Writer) Save(_ context.Context, snap game.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	if n := len(w.queue); n > 0 && w.queue[n-1].kind == opSave {
		w.queue[n-1].snap = snap
		return nil
	}
	w.pushLocked(op{kind: opSave, snap: snap})
	return nil
}

// Clear queues removal of the snapshot.
func (w *Writer) Clear(context.Context) error {
	return w.push(op{kind: opClear})
}

// RecordSession queues a finished session for the history tables.
func (w *Writer) RecordSession(_ context.Context, stats model.SessionStats, words []model.WordStats) error {
	return w.push(op{kind: opRecord, stats: stats, words: append([]model.WordStats(nil), words...)})
}

// Load waits for queued writes and reads the snapshot.
func (w *Writer) Load(ctx context.Context) (*game.Snapshot, error) {
	if err := w.Flush(ctx); err != nil && !errors.Is(err, ErrWriterClosed) {
		return nil, err
	}
	return LoadSnapshot(ctx, w.st)
}

// Flush blocks until everything queued before it has been written.
func (w *Writer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if err := w.push(op{kind: opFlush, done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and stops the goroutine.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.exited
		return
	}
	w.closed = true
	w.mu.Unlock()
	w.signal()
	<-w.exited
}

func (w *Writer) push(o op) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	w.pushLocked(o)
	return nil
}

func (w *Writer) pushLocked(o op) {
	w.queue = append(w.queue, o)
	w.signal()
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.exited)
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			closed := w.closed
			w.mu.Unlock()
			if closed {
				return
			}
			<-w.wake
			continue
		}
		next := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()
		w.apply(next)
	}
}

func (w *Writer) apply(o op) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	switch o.kind {
	case opSave:
		if err := SaveSnapshot(ctx, w.st, o.snap); err != nil {
			log.Warn().Err(err).Str("session", o.snap.SessionID).Msg("save snapshot")
		}
	case opClear:
		if err := w.st.ClearSnapshot(ctx); err != nil {
			log.Warn().Err(err).Msg("clear snapshot")
		}
	case opRecord:
		id, err := w.st.InsertSession(ctx, o.stats, o.words)
		if err != nil {
			log.Error().Err(err).Str("session", o.stats.SessionID).Msg("record session")
			return
		}
		log.Info().Int64("id", id).Str("session", o.stats.SessionID).Int("stars", o.stats.Stars).Msg("session recorded")
	case opFlush:
		close(o.done)
	}
}

// SaveSnapshot encodes and stores a snapshot.
func SaveSnapshot(ctx context.Context, st *Store, snap game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return st.SaveSnapshot(ctx, data, snap.SavedAt)
}

// LoadSnapshot reads and decodes the stored snapshot, or returns nil.
func LoadSnapshot(ctx context.Context, st *Store) (*game.Snapshot, error) {
	data, err := st.LoadSnapshot(ctx)
	if err != nil || data == nil {
		return nil, err
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrBadSnapshot, err)
	}
	return &snap, nil
}
