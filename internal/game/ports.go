package game

import (
	"context"
	"time"

	"github.com/verte-zerg/tuici/internal/model"
)

// Renderer receives view models and animation cues. It never mutates the
// session except through its public methods.
type Renderer interface {
	Render(View)
	Cue(Cue)
}

// Announcer pronounces text. Announce returns once playback has started or
// failed; retries are the announcer's own business.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// Quizzer runs the handwriting quiz for a word. The result is reported back
// through Session.ResolveQuiz or Session.OverrideQuiz.
type Quizzer interface {
	RequestQuiz(word model.Word)
}

// Persister stores the resumable snapshot. Save and Clear must not block the
// caller for long; store.Writer queues them on its own goroutine.
type Persister interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}

// Recorder stores finished sessions for the stats views.
type Recorder interface {
	RecordSession(ctx context.Context, stats model.SessionStats, words []model.WordStats) error
}

// Deps bundles the collaborators of a Session. Nil members are replaced
// with no-op implementations.
type Deps struct {
	Renderer  Renderer
	Announcer Announcer
	Quizzer   Quizzer
	Persister Persister
	Recorder  Recorder
	// Now defaults to time.Now.
	Now func() time.Time
	// Go runs fire-and-forget work; defaults to a new goroutine.
	Go func(func())
}

func (d Deps) withDefaults() Deps {
	if d.Renderer == nil {
		d.Renderer = nopRenderer{}
	}
	if d.Announcer == nil {
		d.Announcer = nopAnnouncer{}
	}
	if d.Quizzer == nil {
		d.Quizzer = nopQuizzer{}
	}
	if d.Persister == nil {
		d.Persister = nopPersister{}
	}
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Go == nil {
		d.Go = func(f func()) { go f() }
	}
	return d
}

type nopRenderer struct{}

func (nopRenderer) Render(View) {}
func (nopRenderer) Cue(Cue)     {}

type nopAnnouncer struct{}

func (nopAnnouncer) Announce(context.Context, string) error { return nil }

type nopQuizzer struct{}

func (nopQuizzer) RequestQuiz(model.Word) {}

type nopPersister struct{}

func (nopPersister) Save(context.Context, Snapshot) error    { return nil }
func (nopPersister) Load(context.Context) (*Snapshot, error) { return nil, nil }
func (nopPersister) Clear(context.Context) error             { return nil }

type nopRecorder struct{}

func (nopRecorder) RecordSession(context.Context, model.SessionStats, []model.WordStats) error {
	return nil
}
