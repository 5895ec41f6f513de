package game

import (
	"github.com/verte-zerg/tuici/internal/model"
	"github.com/verte-zerg/tuici/internal/progress"
	"github.com/verte-zerg/tuici/internal/rotation"
)

// State is the lifecycle state of a Session.
type State int

// Session states.
const (
	NotStarted State = iota
	Active
	Completed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return "not-started"
	}
}

// LabelMode selects the text shown on option slots.
type LabelMode int

// Label modes.
const (
	LabelEnglish LabelMode = iota
	LabelPinyin
)

// CueKind names an animation the renderer plays on its own timing.
type CueKind int

// Cue kinds.
const (
	CueShake CueKind = iota
	CueTierUp
	CueDemoted
	CueMiss
	CueStarBurst
	CueSlideOutActive
	CueSlideInTail
	CueNewWord
	CueSlotComplete
	CueQuizRequired
	CueComplete
)

func (k CueKind) String() string {
	switch k {
	case CueShake:
		return "shake"
	case CueTierUp:
		return "tier-up"
	case CueDemoted:
		return "demoted"
	case CueMiss:
		return "miss"
	case CueStarBurst:
		return "star-burst"
	case CueSlideOutActive:
		return "slide-out-active"
	case CueSlideInTail:
		return "slide-in-tail"
	case CueNewWord:
		return "new-word"
	case CueSlotComplete:
		return "slot-complete"
	case CueQuizRequired:
		return "quiz-required"
	case CueComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Cue is one animation request. Slot is -1 when the cue is not tied to an
// option slot.
type Cue struct {
	Kind      CueKind
	Slot      int
	SessionID string
}

// CardView is a card in the window.
type CardView struct {
	ID     uint64
	Word   model.Word
	Script string
}

// SlotView is one option slot.
type SlotView struct {
	Index    int
	Word     model.Word
	Label    string
	State    rotation.SlotState
	Tier     progress.Tier
	Count    int
	Fraction float64
	Locked   bool
}

// View is the full screen model pushed to the renderer.
type View struct {
	SessionID   string
	State       State
	Active      *CardView
	Window      []CardView
	Slots       []SlotView
	Requirement int
	Stars       int
	Completed   int
	Total       int
	Streak      int
	QuizWord    *model.Word
}
