package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/tuici/internal/model"
	"github.com/verte-zerg/tuici/internal/progress"
	"github.com/verte-zerg/tuici/internal/rotation"
)

// SnapshotVersion is bumped when the snapshot layout changes incompatibly.
const SnapshotVersion = 1

// ErrBadSnapshot is returned when a saved snapshot cannot be resumed.
var ErrBadSnapshot = errors.New("saved session is not resumable")

// Snapshot is the serializable state of an unfinished session.
type Snapshot struct {
	Version         int                          `json:"version"`
	SessionID       string                       `json:"session_id"`
	Band            string                       `json:"band"`
	Policy          string                       `json:"policy"`
	TierRequirement int                          `json:"tier_requirement"`
	EasyMode        bool                         `json:"easy_mode"`
	WritingRequired bool                         `json:"writing_required"`
	Pool            []model.Word                 `json:"pool"`
	Engine          rotation.State               `json:"engine"`
	Progress        map[string]progress.Progress `json:"progress"`
	Tallies         map[string]model.WordTally   `json:"tallies,omitempty"`
	Stars           int                          `json:"stars"`
	Completed       int                          `json:"completed"`
	Streak          int                          `json:"streak"`
	BestStreak      int                          `json:"best_streak"`
	LastCorrectAt   time.Time                    `json:"last_correct_at"`
	PenaltyArmed    bool                         `json:"penalty_armed"`
	QuizPassed      []string                     `json:"quiz_passed,omitempty"`
	PendingQuiz     *pendingQuiz                 `json:"pending_quiz,omitempty"`
	StartedAt       time.Time                    `json:"started_at"`
	SavedAt         time.Time                    `json:"saved_at"`
}

// Snapshot captures the session for persistence.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Version:         SnapshotVersion,
		SessionID:       s.id,
		Band:            s.band,
		Policy:          s.rules.policy.String(),
		TierRequirement: s.rules.requirement,
		EasyMode:        s.rules.easyMode,
		WritingRequired: s.rules.writingRequired,
		Pool:            append([]model.Word(nil), s.engine.Pool()...),
		Engine:          s.engine.State(),
		Progress:        make(map[string]progress.Progress, len(s.progress)),
		Tallies:         make(map[string]model.WordTally, len(s.tallies)),
		Stars:           s.stars,
		Completed:       s.completed,
		Streak:          s.streak,
		BestStreak:      s.bestStreak,
		LastCorrectAt:   s.lastCorrectAt,
		PenaltyArmed:    s.penaltyArmed,
		QuizPassed:      s.gate.List(),
		StartedAt:       s.startedAt,
		SavedAt:         s.deps.Now(),
	}
	for id, p := range s.progress {
		snap.Progress[id] = p
	}
	for id, t := range s.tallies {
		snap.Tallies[id] = t
	}
	if s.pending != nil {
		p := *s.pending
		snap.PendingQuiz = &p
	}
	return snap
}

// Resume rebuilds a NotStarted session from a snapshot. Call Start to
// continue play.
func Resume(snap Snapshot, display Display, deps Deps) (*Session, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadSnapshot, snap.Version)
	}
	if snap.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrBadSnapshot)
	}
	policy, err := rotation.ParsePolicy(snap.Policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	tracker, err := progress.NewTracker(snap.TierRequirement, snap.EasyMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if snap.Completed < 0 || snap.Completed >= len(snap.Pool) {
		return nil, fmt.Errorf("%w: %d of %d words completed", ErrBadSnapshot, snap.Completed, len(snap.Pool))
	}

	s := newSession(snap.SessionID, snap.Band, display, tracker, policy, snap.WritingRequired, deps)
	mastered := 0
	for _, w := range snap.Pool {
		p := snap.Progress[w.ID]
		if p.Count < 0 {
			return nil, fmt.Errorf("%w: negative count for %q", ErrBadSnapshot, w.ID)
		}
		s.progress[w.ID] = p
		if tracker.IsMastered(p) {
			mastered++
		}
	}
	if mastered < snap.Completed {
		return nil, fmt.Errorf("%w: completed count exceeds mastered words", ErrBadSnapshot)
	}
	for id, t := range snap.Tallies {
		s.tallies[id] = t
	}
	s.engine, err = rotation.Restore(snap.Pool, rotation.Options{Policy: policy, Eligible: s.eligible}, snap.Engine)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if snap.PendingQuiz != nil {
		w, ok := s.engine.Slot(snap.PendingQuiz.Slot)
		if !ok || w.ID != snap.PendingQuiz.WordID || !tracker.IsMastered(s.progress[w.ID]) {
			return nil, fmt.Errorf("%w: pending quiz for %q does not match its slot", ErrBadSnapshot, snap.PendingQuiz.WordID)
		}
		p := *snap.PendingQuiz
		s.pending = &p
	}
	for i := 0; i < rotation.SlotCount; i++ {
		w, ok := s.engine.Slot(i)
		if !ok || !tracker.IsMastered(s.progress[w.ID]) {
			continue
		}
		if s.pending == nil || s.pending.WordID != w.ID {
			return nil, fmt.Errorf("%w: mastered word %q still bound without a pending quiz", ErrBadSnapshot, w.ID)
		}
	}
	for _, g := range snap.QuizPassed {
		s.gate.Mark(g)
	}
	s.stars = snap.Stars
	s.completed = snap.Completed
	s.streak = snap.Streak
	s.bestStreak = snap.BestStreak
	s.lastCorrectAt = snap.LastCorrectAt
	s.penaltyArmed = snap.PenaltyArmed
	s.startedAt = snap.StartedAt
	return s, nil
}
