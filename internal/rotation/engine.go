package rotation

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/verte-zerg/tuici/internal/model"
)

const (
	// WindowSize is the number of cards kept on screen.
	WindowSize = 8
	// SlotCount is the number of answer options.
	SlotCount = 10
)

// ErrNotInWorkingSet is returned when retiring a word no slot holds.
var ErrNotInWorkingSet = errors.New("word is not in the working set")

// SlotState describes an option slot.
type SlotState int

// Slot states.
const (
	SlotEmpty SlotState = iota
	SlotActive
	SlotComplete
)

func (s SlotState) String() string {
	switch s {
	case SlotActive:
		return "active"
	case SlotComplete:
		return "complete"
	default:
		return "empty"
	}
}

// Slot is one answer option. Word is only meaningful when State is SlotActive.
type Slot struct {
	Word  model.Word
	State SlotState
}

// Card is one character card in the window.
type Card struct {
	ID   uint64
	Word model.Word
}

// Change reports what a rotation step did to the window and slots.
type Change struct {
	Removed     int
	Appended    int
	Replacement model.Word
	Replaced    bool
	Slot        int
}

// Options configures an Engine.
type Options struct {
	Policy Policy
	Rand   *rand.Rand
	// Eligible reports whether a pool word may still enter the working set.
	Eligible func(model.Word) bool
}

// State is the resumable part of an Engine.
type State struct {
	Slots         []string    `json:"slots"`
	SlotStates    []SlotState `json:"slot_states"`
	Window        []string    `json:"window"`
	NextWordIndex int         `json:"next_word_index"`
	NextCardIndex int         `json:"next_card_index"`
}

// Engine owns the working set and the on-screen window.
type Engine struct {
	pool     []model.Word
	byID     map[string]model.Word
	slots    [SlotCount]Slot
	window   []Card
	policy   Policy
	rnd      *rand.Rand
	eligible func(model.Word) bool

	nextWordIndex int
	nextCardIndex int
	nextCardID    uint64
}

// New binds the first pool words to the slots and fills the window.
func New(pool []model.Word, opts Options) (*Engine, error) {
	e, err := newEngine(pool, opts)
	if err != nil {
		return nil, err
	}
	n := len(pool)
	if n > SlotCount {
		n = SlotCount
	}
	for i := 0; i < n; i++ {
		e.slots[i] = Slot{Word: pool[i], State: SlotActive}
	}
	e.nextWordIndex = n % len(pool)
	e.fillWindow()
	return e, nil
}

// Restore rebuilds an Engine from a saved State.
func Restore(pool []model.Word, opts Options, st State) (*Engine, error) {
	e, err := newEngine(pool, opts)
	if err != nil {
		return nil, err
	}
	if len(st.Slots) != SlotCount || len(st.SlotStates) != SlotCount {
		return nil, fmt.Errorf("expected %d slots, got %d", SlotCount, len(st.Slots))
	}
	seen := map[string]struct{}{}
	for i, id := range st.Slots {
		state := st.SlotStates[i]
		if state != SlotActive {
			e.slots[i] = Slot{State: state}
			continue
		}
		w, ok := e.byID[id]
		if !ok {
			return nil, fmt.Errorf("slot %d holds unknown word %q", i, id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("word %q bound to more than one slot", id)
		}
		seen[id] = struct{}{}
		e.slots[i] = Slot{Word: w, State: SlotActive}
	}
	for _, id := range st.Window {
		if _, ok := seen[id]; !ok {
			return nil, fmt.Errorf("window card %q is not in the working set", id)
		}
		e.window = append(e.window, e.SpawnCard(e.byID[id]))
	}
	e.nextWordIndex = mod(st.NextWordIndex, len(pool))
	e.nextCardIndex = mod(st.NextCardIndex, SlotCount)
	e.fillWindow()
	return e, nil
}

func newEngine(pool []model.Word, opts Options) (*Engine, error) {
	if len(pool) == 0 {
		return nil, errors.New("selection pool is empty")
	}
	byID := make(map[string]model.Word, len(pool))
	for _, w := range pool {
		if w.ID == "" {
			return nil, errors.New("word with empty id in pool")
		}
		if _, dup := byID[w.ID]; dup {
			return nil, fmt.Errorf("duplicate word %q in pool", w.ID)
		}
		byID[w.ID] = w
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = NewRand()
	}
	eligible := opts.Eligible
	if eligible == nil {
		eligible = func(model.Word) bool { return true }
	}
	return &Engine{
		pool:     pool,
		byID:     byID,
		policy:   opts.Policy,
		rnd:      rnd,
		eligible: eligible,
		window:   make([]Card, 0, WindowSize),
	}, nil
}

// State returns the resumable engine state.
func (e *Engine) State() State {
	st := State{
		Slots:         make([]string, SlotCount),
		SlotStates:    make([]SlotState, SlotCount),
		Window:        make([]string, 0, len(e.window)),
		NextWordIndex: e.nextWordIndex,
		NextCardIndex: e.nextCardIndex,
	}
	for i, s := range e.slots {
		st.SlotStates[i] = s.State
		if s.State == SlotActive {
			st.Slots[i] = s.Word.ID
		}
	}
	for _, c := range e.window {
		st.Window = append(st.Window, c.Word.ID)
	}
	return st
}

// Policy returns the selection policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Pool returns the selection pool.
func (e *Engine) Pool() []model.Word {
	return e.pool
}

// Slots returns a copy of the option slots.
func (e *Engine) Slots() []Slot {
	out := make([]Slot, SlotCount)
	copy(out, e.slots[:])
	return out
}

// Slot returns the word bound to slot i, if any.
func (e *Engine) Slot(i int) (model.Word, bool) {
	if i < 0 || i >= SlotCount || e.slots[i].State != SlotActive {
		return model.Word{}, false
	}
	return e.slots[i].Word, true
}

// SlotOf returns the slot holding id, or -1.
func (e *Engine) SlotOf(id string) int {
	for i, s := range e.slots {
		if s.State == SlotActive && s.Word.ID == id {
			return i
		}
	}
	return -1
}

// WorkingSet returns the words currently bound to slots, in slot order.
func (e *Engine) WorkingSet() []model.Word {
	out := make([]model.Word, 0, SlotCount)
	for _, s := range e.slots {
		if s.State == SlotActive {
			out = append(out, s.Word)
		}
	}
	return out
}

// Window returns a copy of the card window.
func (e *Engine) Window() []Card {
	out := make([]Card, len(e.window))
	copy(out, e.window)
	return out
}

// Active returns the card the player must answer for.
func (e *Engine) Active() (Card, bool) {
	if len(e.window) == 0 {
		return Card{}, false
	}
	return e.window[0], true
}

// SpawnCard creates the card for a word.
func (e *Engine) SpawnCard(w model.Word) Card {
	e.nextCardID++
	return Card{ID: e.nextCardID, Word: w}
}

// PickReplacement chooses an eligible pool word that is not in the working set.
func (e *Engine) PickReplacement() (model.Word, bool) {
	candidate := func(w model.Word) bool {
		return e.eligible(w) && e.SlotOf(w.ID) < 0
	}
	if e.policy == Sequential {
		n := len(e.pool)
		for step := 0; step < n; step++ {
			idx := (e.nextWordIndex + step) % n
			if candidate(e.pool[idx]) {
				e.nextWordIndex = (idx + 1) % n
				return e.pool[idx], true
			}
		}
		return model.Word{}, false
	}
	var candidates []model.Word
	for _, w := range e.pool {
		if candidate(w) {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return model.Word{}, false
	}
	return candidates[e.rnd.Intn(len(candidates))], true
}

// RetireAndReplace removes a mastered word from its slot and from every
// card in the window. The freed slot gets a replacement when the pool has
// one and is marked complete otherwise; the window is then refilled.
func (e *Engine) RetireAndReplace(id string, slot int) (Change, error) {
	if slot < 0 || slot >= SlotCount || e.slots[slot].State != SlotActive || e.slots[slot].Word.ID != id {
		slot = e.SlotOf(id)
	}
	if slot < 0 {
		return Change{}, fmt.Errorf("%w: %q", ErrNotInWorkingSet, id)
	}
	change := Change{Slot: slot}
	e.slots[slot] = Slot{State: SlotComplete}
	if w, ok := e.PickReplacement(); ok {
		e.slots[slot] = Slot{Word: w, State: SlotActive}
		change.Replacement = w
		change.Replaced = true
	}

	kept := e.window[:0]
	for _, c := range e.window {
		if c.Word.ID == id {
			change.Removed++
			continue
		}
		kept = append(kept, c)
	}
	e.window = kept
	change.Appended = e.fillWindow()
	return change, nil
}

// AdvanceActiveCard drops the active card and appends one fresh card.
func (e *Engine) AdvanceActiveCard() (Change, bool) {
	if len(e.window) == 0 {
		return Change{Slot: -1}, false
	}
	e.window = append(e.window[:0], e.window[1:]...)
	change := Change{Slot: -1, Removed: 1}
	change.Appended = e.fillWindow()
	return change, len(e.window) > 0
}

func (e *Engine) fillWindow() int {
	added := 0
	for len(e.window) < WindowSize {
		w, ok := e.drawCard()
		if !ok {
			break
		}
		e.window = append(e.window, e.SpawnCard(w))
		added++
	}
	return added
}

func (e *Engine) drawCard() (model.Word, bool) {
	if e.policy == Sequential {
		for step := 0; step < SlotCount; step++ {
			idx := (e.nextCardIndex + step) % SlotCount
			if e.slots[idx].State == SlotActive {
				e.nextCardIndex = (idx + 1) % SlotCount
				return e.slots[idx].Word, true
			}
		}
		return model.Word{}, false
	}
	active := e.WorkingSet()
	if len(active) == 0 {
		return model.Word{}, false
	}
	return active[e.rnd.Intn(len(active))], true
}

func mod(v, n int) int {
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
