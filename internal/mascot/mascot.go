// Package mascot drives the mascot's animation state from game cues.
//
// The state machine has no timers of its own: callers pass the current time
// to every method and call Tick periodically.
package mascot

import (
	"time"

	"github.com/verte-zerg/tuici/internal/game"
)

// Animation is one mascot clip.
type Animation int

// Animations.
const (
	Walk Animation = iota
	Idle
	Rally
	Sad
	Celebrate
	Ouch
)

func (a Animation) String() string {
	switch a {
	case Idle:
		return "idle"
	case Rally:
		return "rally"
	case Sad:
		return "sad"
	case Celebrate:
		return "celebrate"
	case Ouch:
		return "ouch"
	default:
		return "walk"
	}
}

// Duration is the length of one play of a.
func (a Animation) Duration() time.Duration {
	switch a {
	case Idle:
		return 1200 * time.Millisecond
	case Walk:
		return 800 * time.Millisecond
	case Rally:
		return time.Second
	case Sad:
		return 5400 * time.Millisecond
	case Celebrate:
		return 1100 * time.Millisecond
	case Ouch:
		return 650 * time.Millisecond
	default:
		return time.Second
	}
}

const (
	// IdleAfter is how long without input before the mascot idles.
	IdleAfter = 5 * time.Second
	// OuchCooldown limits how often ouch restarts.
	OuchCooldown = time.Second
)

// Mascot is the animation state machine.
type Mascot struct {
	current   Animation
	startedAt time.Time

	playing   bool
	playUntil time.Time
	queue     []Animation
	sadActive bool

	lastOuch        time.Time
	lastInteraction time.Time
}

// New returns a walking mascot.
func New(now time.Time) *Mascot {
	return &Mascot{current: Walk, startedAt: now, lastInteraction: now}
}

// Current returns the clip on screen and when it started.
func (m *Mascot) Current() (Animation, time.Time) {
	return m.current, m.startedAt
}

// Queued returns the number of clips waiting.
func (m *Mascot) Queued() int {
	return len(m.queue)
}

// Interact records player input; an idle mascot starts walking again.
func (m *Mascot) Interact(now time.Time) {
	m.lastInteraction = now
	if m.current == Idle {
		m.Queue(Walk, now)
	}
}

// React maps a session cue to a clip.
func (m *Mascot) React(c game.Cue, now time.Time) {
	switch c.Kind {
	case game.CueTierUp:
		m.Queue(Rally, now)
	case game.CueStarBurst, game.CueComplete:
		m.Queue(Celebrate, now)
	case game.CueDemoted:
		m.Queue(Sad, now)
	case game.CueMiss:
		m.Queue(Ouch, now)
	}
}

// Queue requests a clip. Walk and idle only apply when nothing else is
// going on; sad blocks everything else until it ends; celebrate and sad
// wait their turn; rally is dropped when busy.
func (m *Mascot) Queue(a Animation, now time.Time) {
	switch a {
	case Walk, Idle:
		if !m.playing && len(m.queue) == 0 && !m.sadActive {
			m.set(a, now)
		}
	case Ouch:
		if m.sadActive {
			return
		}
		if m.current != Ouch || now.Sub(m.lastOuch) > OuchCooldown {
			m.set(Ouch, now)
			m.lastOuch = now
		}
	case Sad:
		if !m.sadActive {
			m.sadActive = true
			m.queue = append(m.queue, Sad)
			m.next(now)
		}
	default:
		if m.sadActive {
			return
		}
		if a == Celebrate || (!m.playing && len(m.queue) == 0) {
			m.queue = append(m.queue, a)
			m.next(now)
		}
	}
}

// Tick advances timed transitions. It reports whether the clip changed.
func (m *Mascot) Tick(now time.Time) bool {
	before, started := m.current, m.startedAt
	if m.playing && !now.Before(m.playUntil) {
		finished := m.current
		m.playing = false
		if finished == Sad {
			m.sadActive = false
		}
		m.set(Walk, m.playUntil)
		m.lastInteraction = now
		m.next(now)
	}
	if m.current == Ouch && !m.playing && now.Sub(m.startedAt) >= Ouch.Duration() {
		m.set(Walk, now)
		m.lastInteraction = now
	}
	if m.current == Walk && !m.playing && len(m.queue) == 0 && now.Sub(m.lastInteraction) > IdleAfter {
		m.Queue(Idle, now)
	}
	return m.current != before || !m.startedAt.Equal(started)
}

func (m *Mascot) next(now time.Time) {
	if m.playing || len(m.queue) == 0 {
		return
	}
	a := m.queue[0]
	m.queue = m.queue[1:]
	m.playing = true
	m.playUntil = now.Add(a.Duration())
	m.set(a, now)
}

func (m *Mascot) set(a Animation, now time.Time) {
	m.current = a
	m.startedAt = now
}
