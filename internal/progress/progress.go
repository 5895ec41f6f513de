// Package progress tracks per-word mastery through tiers.
package progress

import "fmt"

// Tier is a mastery level derived from a correct-answer count.
type Tier int

// Tiers in ascending order.
const (
	Bronze Tier = iota
	Silver
	Gold
	Mastered
)

func (t Tier) String() string {
	switch t {
	case Bronze:
		return "bronze"
	case Silver:
		return "silver"
	case Gold:
		return "gold"
	case Mastered:
		return "mastered"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Signal describes what a single transition did.
type Signal int

// Transition signals.
const (
	SignalNone Signal = iota
	SignalTierUp
	SignalMastered
	SignalDemoted
	SignalMiss
)

func (s Signal) String() string {
	switch s {
	case SignalTierUp:
		return "tier-up"
	case SignalMastered:
		return "mastered"
	case SignalDemoted:
		return "demoted"
	case SignalMiss:
		return "miss"
	default:
		return "none"
	}
}

// Progress is the mutable record for one word. Only the count is stored;
// the tier is always derived from it.
type Progress struct {
	Count int `json:"count"`
}

// Result is the outcome of a transition.
type Result struct {
	Progress Progress
	Before   Tier
	After    Tier
	Signal   Signal
}

// Changed reports whether the transition crossed a tier boundary.
func (r Result) Changed() bool {
	return r.Before != r.After
}

// Tracker applies transitions for a fixed tier requirement.
type Tracker struct {
	requirement int
	easyMode    bool
}

// NewTracker returns a Tracker; requirement must be at least 1.
func NewTracker(requirement int, easyMode bool) (Tracker, error) {
	if requirement < 1 {
		return Tracker{}, fmt.Errorf("tier requirement must be >= 1, got %d", requirement)
	}
	return Tracker{requirement: requirement, easyMode: easyMode}, nil
}

// Requirement returns the number of correct answers per tier.
func (t Tracker) Requirement() int {
	return t.requirement
}

// EasyMode reports whether misses leave progress untouched.
func (t Tracker) EasyMode() bool {
	return t.easyMode
}

// MasteryCount is the count at which a word becomes Mastered.
func (t Tracker) MasteryCount() int {
	return t.requirement * 3
}

// TierOf derives the tier for a progress record.
func (t Tracker) TierOf(p Progress) Tier {
	return TierFor(p.Count, t.requirement)
}

// IsMastered reports whether the record has reached retirement eligibility.
func (t Tracker) IsMastered(p Progress) bool {
	return p.Count >= t.MasteryCount()
}

// Fraction is the share of the current tier completed, in [0, 1].
func (t Tracker) Fraction(p Progress) float64 {
	if t.IsMastered(p) {
		return 1
	}
	return float64(p.Count%t.requirement) / float64(t.requirement)
}

// RecordCorrect advances the count by one.
func (t Tracker) RecordCorrect(p Progress) Result {
	before := t.TierOf(p)
	next := Progress{Count: p.Count + 1}
	after := t.TierOf(next)
	res := Result{Progress: next, Before: before, After: after}
	switch {
	case after == Mastered && before != Mastered:
		res.Signal = SignalMastered
	case after != before:
		res.Signal = SignalTierUp
	}
	return res
}

// RecordIncorrect applies the one-step demotion rule. A demotion only
// happens when armed is true and easy mode is off; the word lands one count
// below the tier it fell from.
func (t Tracker) RecordIncorrect(p Progress, armed bool) Result {
	before := t.TierOf(p)
	res := Result{Progress: p, Before: before, After: before, Signal: SignalMiss}
	if t.easyMode || !armed {
		return res
	}
	switch before {
	case Gold:
		res.Progress = Progress{Count: 2*t.requirement - 1}
	case Silver:
		res.Progress = Progress{Count: t.requirement - 1}
	default:
		return res
	}
	res.After = t.TierOf(res.Progress)
	res.Signal = SignalDemoted
	return res
}

// TierFor maps a count to a tier for requirement r.
func TierFor(count, r int) Tier {
	if r < 1 {
		r = 1
	}
	switch {
	case count >= 3*r:
		return Mastered
	case count >= 2*r:
		return Gold
	case count >= r:
		return Silver
	default:
		return Bronze
	}
}
