// Package game runs a drilling session: answer submission, mastery gating,
// stars, and the view models pushed to the renderer.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/tuici/internal/model"
	"github.com/verte-zerg/tuici/internal/progress"
	"github.com/verte-zerg/tuici/internal/rotation"
)

const (
	// StreakWindow is the longest gap between correct answers that keeps a streak.
	StreakWindow = time.Second
	// ShakeDuration is how long a shake cue blocks the next shake.
	ShakeDuration = 800 * time.Millisecond
)

// Errors returned by Session operations. None of them changes state.
var (
	ErrInvalidConfig = errors.New("invalid game config")
	ErrNotActive     = errors.New("session is not active")
	ErrNoActiveCard  = errors.New("no active card")
	ErrEmptySlot     = errors.New("option slot has no word")
	ErrQuizPending   = errors.New("handwriting quiz pending")
	ErrNoPendingQuiz = errors.New("no handwriting quiz pending for word")
)

// Config is read once at session start.
type Config struct {
	Words           []model.Word
	Band            string
	Start           int
	End             int
	TierRequirement int
	Policy          rotation.Policy
	Shuffle         bool
	WritingRequired bool
	EasyMode        bool
	Display         Display
	Rand            *rand.Rand
}

// Display holds presentation preferences that do not affect the rules.
type Display struct {
	Label       LabelMode
	Traditional bool
}

// Outcome describes what one SubmitAnswer did.
type Outcome struct {
	Correct      bool
	Word         model.Word
	Selected     int
	CorrectSlot  int
	Result       progress.Result
	Retired      bool
	Replacement  *model.Word
	QuizRequired bool
	Completed    bool
	Streak       int
}

type pendingQuiz struct {
	WordID string `json:"word_id"`
	Slot   int    `json:"slot"`
}

// Session owns all mutable game state. It is not safe for concurrent use;
// callers drive it from a single goroutine.
type Session struct {
	id      string
	band    string
	display Display
	rules   rules
	deps    Deps

	ctx    context.Context
	cancel context.CancelFunc

	tracker  progress.Tracker
	engine   *rotation.Engine
	progress map[string]progress.Progress
	tallies  map[string]model.WordTally
	gate     *QuizGate
	pending  *pendingQuiz

	state         State
	stars         int
	completed     int
	streak        int
	bestStreak    int
	lastCorrectAt time.Time
	penaltyArmed  bool
	shakeUntil    time.Time
	startedAt     time.Time

	cues       []Cue
	announceOn bool
}

type rules struct {
	requirement     int
	policy          rotation.Policy
	writingRequired bool
	easyMode        bool
}

// New validates cfg and builds a session in the NotStarted state.
func New(cfg Config, deps Deps) (*Session, error) {
	pool, err := SelectPool(cfg)
	if err != nil {
		return nil, err
	}
	tracker, err := progress.NewTracker(cfg.TierRequirement, cfg.EasyMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s := newSession(uuid.NewString(), cfg.Band, cfg.Display, tracker, cfg.Policy, cfg.WritingRequired, deps)
	for _, w := range pool {
		s.progress[w.ID] = progress.Progress{}
	}
	s.engine, err = rotation.New(pool, rotation.Options{Policy: cfg.Policy, Rand: cfg.Rand, Eligible: s.eligible})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return s, nil
}

// SelectPool slices the configured 1-based inclusive range out of the word
// list and shuffles it when asked. A zero Start or End leaves that bound
// unset.
func SelectPool(cfg Config) ([]model.Word, error) {
	if len(cfg.Words) == 0 {
		return nil, fmt.Errorf("%w: word list is empty", ErrInvalidConfig)
	}
	if cfg.Start < 0 || cfg.End < 0 {
		return nil, fmt.Errorf("%w: negative range %d-%d", ErrInvalidConfig, cfg.Start, cfg.End)
	}
	start, end := cfg.Start, cfg.End
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = len(cfg.Words)
	}
	if start > end || end > len(cfg.Words) {
		return nil, fmt.Errorf("%w: range %d-%d outside word list of %d", ErrInvalidConfig, start, end, len(cfg.Words))
	}
	pool := make([]model.Word, end-start+1)
	copy(pool, cfg.Words[start-1:end])
	seen := make(map[string]struct{}, len(pool))
	for _, w := range pool {
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate word %q", ErrInvalidConfig, w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	if cfg.Shuffle {
		rnd := cfg.Rand
		if rnd == nil {
			rnd = rotation.NewRand()
		}
		rotation.Shuffle(rnd, pool)
	}
	return pool, nil
}

func newSession(id, band string, display Display, tracker progress.Tracker, policy rotation.Policy, writing bool, deps Deps) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:      id,
		band:    band,
		display: display,
		rules: rules{
			requirement:     tracker.Requirement(),
			policy:          policy,
			writingRequired: writing,
			easyMode:        tracker.EasyMode(),
		},
		deps:         deps.withDefaults(),
		ctx:          ctx,
		cancel:       cancel,
		tracker:      tracker,
		progress:     map[string]progress.Progress{},
		tallies:      map[string]model.WordTally{},
		gate:         NewQuizGate(),
		penaltyArmed: true,
	}
}

func (s *Session) eligible(w model.Word) bool {
	return !s.tracker.IsMastered(s.progress[w.ID])
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Stars returns the stars earned so far.
func (s *Session) Stars() int { return s.stars }

// CompletedWords returns how many words reached mastery.
func (s *Session) CompletedWords() int { return s.completed }

// Streak returns the current quick-answer streak.
func (s *Session) Streak() int { return s.streak }

// Tracker returns the progress rules.
func (s *Session) Tracker() progress.Tracker { return s.tracker }

// Progress returns the record for a word.
func (s *Session) Progress(id string) progress.Progress { return s.progress[id] }

// QuizGate returns the per-session handwriting record.
func (s *Session) QuizGate() *QuizGate { return s.gate }

// Engine exposes the rotation state for inspection.
func (s *Session) Engine() *rotation.Engine { return s.engine }

// PendingQuiz returns the word awaiting its handwriting quiz, if any.
func (s *Session) PendingQuiz() (model.Word, bool) {
	if s.pending == nil {
		return model.Word{}, false
	}
	w, ok := s.engine.Slot(s.pending.Slot)
	return w, ok
}

// SetDisplay changes presentation preferences and re-renders.
func (s *Session) SetDisplay(d Display) {
	s.display = d
	if s.state != NotStarted {
		s.deps.Renderer.Render(s.View())
	}
}

// Start moves the session to Active and announces the first card.
func (s *Session) Start() error {
	if s.state != NotStarted {
		return fmt.Errorf("%w: already %s", ErrNotActive, s.state)
	}
	if s.ctx.Err() != nil {
		return fmt.Errorf("%w: session closed", ErrNotActive)
	}
	s.state = Active
	if s.startedAt.IsZero() {
		s.startedAt = s.deps.Now()
	}
	s.announceOn = true
	if s.pending != nil {
		if w, ok := s.PendingQuiz(); ok {
			s.emit(CueQuizRequired, s.pending.Slot)
			s.flush()
			s.deps.Quizzer.RequestQuiz(w)
			return nil
		}
	}
	s.flush()
	return nil
}

// SubmitAnswer handles the player choosing an option slot.
func (s *Session) SubmitAnswer(slot int) (Outcome, error) {
	if s.state != Active {
		return Outcome{}, ErrNotActive
	}
	if s.pending != nil {
		return Outcome{}, ErrQuizPending
	}
	card, ok := s.engine.Active()
	if !ok {
		return Outcome{}, ErrNoActiveCard
	}
	selected, ok := s.engine.Slot(slot)
	if !ok {
		return Outcome{}, ErrEmptySlot
	}
	now := s.deps.Now()
	var out Outcome
	if selected.ID == card.Word.ID {
		out = s.answerCorrect(card.Word, slot, now)
	} else {
		out = s.answerIncorrect(card.Word, slot, now)
	}
	s.flush()
	if out.QuizRequired {
		s.deps.Quizzer.RequestQuiz(card.Word)
	}
	return out, nil
}

func (s *Session) answerCorrect(word model.Word, slot int, now time.Time) Outcome {
	if !s.lastCorrectAt.IsZero() && now.Sub(s.lastCorrectAt) < StreakWindow {
		s.streak++
	} else {
		s.streak = 1
	}
	s.lastCorrectAt = now
	if s.streak > s.bestStreak {
		s.bestStreak = s.streak
	}
	tally := s.tallies[word.ID]
	tally.Correct++
	s.tallies[word.ID] = tally

	res := s.tracker.RecordCorrect(s.progress[word.ID])
	s.progress[word.ID] = res.Progress
	s.penaltyArmed = true

	out := Outcome{Correct: true, Word: word, Selected: slot, CorrectSlot: slot, Result: res, Streak: s.streak}
	if res.Signal == progress.SignalMastered {
		if s.rules.writingRequired && !s.gate.PassedAll(word.Script(s.display.Traditional)) {
			s.pending = &pendingQuiz{WordID: word.ID, Slot: slot}
			s.emit(CueQuizRequired, slot)
			out.QuizRequired = true
			return out
		}
		s.completeMastery(word, slot, &out)
		return out
	}
	if res.Signal == progress.SignalTierUp {
		s.emit(CueTierUp, slot)
	}
	if _, ok := s.engine.AdvanceActiveCard(); ok {
		s.emit(CueSlideOutActive, -1)
		s.emit(CueSlideInTail, -1)
		s.announceOn = true
	}
	return out
}

func (s *Session) answerIncorrect(active model.Word, selected int, now time.Time) Outcome {
	s.streak = 0
	tally := s.tallies[active.ID]
	tally.Incorrect++
	s.tallies[active.ID] = tally

	correctSlot := s.engine.SlotOf(active.ID)
	res := s.tracker.RecordIncorrect(s.progress[active.ID], s.penaltyArmed)
	s.progress[active.ID] = res.Progress
	if !s.rules.easyMode {
		s.penaltyArmed = false
	}
	if res.Signal == progress.SignalDemoted {
		s.emit(CueDemoted, correctSlot)
	} else {
		s.emit(CueMiss, selected)
	}
	if correctSlot >= 0 && !now.Before(s.shakeUntil) {
		s.shakeUntil = now.Add(ShakeDuration)
		s.emit(CueShake, correctSlot)
	}
	return Outcome{Word: active, Selected: selected, CorrectSlot: correctSlot, Result: res}
}

func (s *Session) completeMastery(word model.Word, slot int, out *Outcome) {
	s.stars++
	s.completed++
	s.emit(CueStarBurst, slot)
	change, err := s.engine.RetireAndReplace(word.ID, slot)
	if err != nil {
		log.Error().Err(err).Str("session", s.id).Str("word", word.ID).Msg("retire mastered word")
		return
	}
	out.Retired = true
	s.emit(CueSlideOutActive, -1)
	if change.Replaced {
		w := change.Replacement
		out.Replacement = &w
		s.emit(CueNewWord, change.Slot)
	} else {
		s.emit(CueSlotComplete, change.Slot)
	}
	if change.Appended > 0 {
		s.emit(CueSlideInTail, -1)
	}
	if s.completed >= len(s.engine.Pool()) {
		s.state = Completed
		out.Completed = true
		s.emit(CueComplete, -1)
		return
	}
	s.announceOn = true
}

// ResolveQuiz reports the handwriting quiz result for a pending word. A
// failed quiz keeps the word pending and asks for the quiz again.
func (s *Session) ResolveQuiz(wordID string, passed bool) error {
	if s.state != Active {
		return ErrNotActive
	}
	if s.pending == nil || s.pending.WordID != wordID {
		return fmt.Errorf("%w: %q", ErrNoPendingQuiz, wordID)
	}
	word, ok := s.engine.Slot(s.pending.Slot)
	if !ok || word.ID != wordID {
		return fmt.Errorf("%w: %q", ErrNoPendingQuiz, wordID)
	}
	if !passed {
		s.emit(CueQuizRequired, s.pending.Slot)
		s.flush()
		s.deps.Quizzer.RequestQuiz(word)
		return nil
	}
	s.gate.Mark(word.Script(s.display.Traditional))
	s.resumeMastery(word)
	return nil
}

// OverrideQuiz skips the pending quiz: the star is awarded but no glyph is
// recorded as passed.
func (s *Session) OverrideQuiz() error {
	if s.state != Active {
		return ErrNotActive
	}
	if s.pending == nil {
		return ErrNoPendingQuiz
	}
	word, ok := s.engine.Slot(s.pending.Slot)
	if !ok {
		s.pending = nil
		return ErrNoPendingQuiz
	}
	s.resumeMastery(word)
	return nil
}

func (s *Session) resumeMastery(word model.Word) {
	slot := s.pending.Slot
	s.pending = nil
	var out Outcome
	s.completeMastery(word, slot, &out)
	s.flush()
}

// ReplayAudio announces the active card again.
func (s *Session) ReplayAudio() {
	if s.state != Active {
		return
	}
	s.announceActive()
}

// ShakeInProgress reports whether a shake cue is still playing at now.
func (s *Session) ShakeInProgress(now time.Time) bool {
	return now.Before(s.shakeUntil)
}

// Close leaves an active session. The resumable snapshot is saved first;
// pending announcements are cancelled.
func (s *Session) Close() {
	if s.state == Active {
		s.save()
		s.state = NotStarted
	}
	s.shakeUntil = time.Time{}
	s.cues = nil
	s.cancel()
}

func (s *Session) emit(kind CueKind, slot int) {
	s.cues = append(s.cues, Cue{Kind: kind, Slot: slot, SessionID: s.id})
}

// flush publishes the settled state: view, cues, announcement, snapshot.
func (s *Session) flush() {
	s.deps.Renderer.Render(s.View())
	cues := s.cues
	s.cues = nil
	for _, c := range cues {
		s.deps.Renderer.Cue(c)
	}
	if s.announceOn {
		s.announceOn = false
		s.announceActive()
	}
	if s.state == Completed {
		s.finish()
		return
	}
	s.save()
}

func (s *Session) announceActive() {
	card, ok := s.engine.Active()
	if !ok {
		return
	}
	text := card.Word.Script(s.display.Traditional)
	ctx := s.ctx
	announcer := s.deps.Announcer
	id := s.id
	s.deps.Go(func() {
		if err := announcer.Announce(ctx, text); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("session", id).Str("text", text).Msg("announce failed")
		}
	})
}

func (s *Session) save() {
	if err := s.deps.Persister.Save(s.ctx, s.Snapshot()); err != nil {
		log.Warn().Err(err).Str("session", s.id).Msg("save snapshot")
	}
}

func (s *Session) finish() {
	now := s.deps.Now()
	stats := model.SessionStats{
		SessionID:       s.id,
		StartedAt:       s.startedAt,
		EndedAt:         now,
		Band:            s.band,
		Words:           len(s.engine.Pool()),
		TierRequirement: s.rules.requirement,
		Policy:          s.rules.policy.String(),
		Stars:           s.stars,
		BestStreak:      s.bestStreak,
		DurationMs:      now.Sub(s.startedAt).Milliseconds(),
	}
	words := make([]model.WordStats, 0, len(s.tallies))
	for _, w := range s.engine.Pool() {
		t, ok := s.tallies[w.ID]
		if !ok {
			continue
		}
		stats.Correct += t.Correct
		stats.Incorrect += t.Incorrect
		words = append(words, model.WordStats{Word: w.ID, Correct: t.Correct, Incorrect: t.Incorrect})
	}
	ctx := context.Background()
	if err := s.deps.Recorder.RecordSession(ctx, stats, words); err != nil {
		log.Warn().Err(err).Str("session", s.id).Msg("record finished session")
	}
	if err := s.deps.Persister.Clear(ctx); err != nil {
		log.Warn().Err(err).Str("session", s.id).Msg("clear snapshot")
	}
}

// View builds the current screen model.
func (s *Session) View() View {
	v := View{
		SessionID:   s.id,
		State:       s.state,
		Requirement: s.rules.requirement,
		Stars:       s.stars,
		Completed:   s.completed,
		Total:       len(s.engine.Pool()),
		Streak:      s.streak,
	}
	for i, c := range s.engine.Window() {
		cv := CardView{ID: c.ID, Word: c.Word, Script: c.Word.Script(s.display.Traditional)}
		v.Window = append(v.Window, cv)
		if i == 0 {
			active := cv
			v.Active = &active
		}
	}
	for i, slot := range s.engine.Slots() {
		sv := SlotView{Index: i, State: slot.State, Locked: slot.State != rotation.SlotActive}
		if slot.State == rotation.SlotActive {
			p := s.progress[slot.Word.ID]
			sv.Word = slot.Word
			sv.Label = s.label(slot.Word)
			sv.Tier = s.tracker.TierOf(p)
			sv.Count = p.Count
			sv.Fraction = s.tracker.Fraction(p)
		}
		v.Slots = append(v.Slots, sv)
	}
	if w, ok := s.PendingQuiz(); ok {
		v.QuizWord = &w
	}
	return v
}

func (s *Session) label(w model.Word) string {
	if s.display.Label == LabelPinyin {
		return w.Pinyin
	}
	return w.English
}
