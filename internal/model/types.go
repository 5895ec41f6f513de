// Package model defines shared data structures.
package model

import "time"

// Word is an immutable vocabulary entry. ID is the simplified form and is
// unique within a band.
type Word struct {
	ID          string `json:"id"`
	Traditional string `json:"traditional,omitempty"`
	Pinyin      string `json:"pinyin"`
	English     string `json:"english"`
}

// Script returns the form shown on cards.
func (w Word) Script(traditional bool) string {
	if traditional && w.Traditional != "" {
		return w.Traditional
	}
	return w.ID
}

// Config defines game settings read at session start.
type Config struct {
	Band            string
	Start           int
	End             int
	TierRequirement int
	Policy          string
	Shuffle         bool
	WritingRequired bool
	EasyMode        bool
	Label           string
	Traditional     bool
	ShowPinyin      bool
	AudioEnabled    bool
	AudioCommand    string
	SlotKeys        string
	ReplayKey       string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Band        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// WordTally counts answers for one word within a session.
type WordTally struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// SessionStats captures a finished game.
type SessionStats struct {
	SessionID       string
	StartedAt       time.Time
	EndedAt         time.Time
	Band            string
	Words           int
	TierRequirement int
	Policy          string
	Stars           int
	Correct         int
	Incorrect       int
	BestStreak      int
	DurationMs      int64
}

// WordStats stores per-word tallies for a session.
type WordStats struct {
	Word      string
	Correct   int
	Incorrect int
}

// WordAggregate aggregates word stats across sessions.
type WordAggregate struct {
	Word      string `db:"word"`
	Correct   int    `db:"correct"`
	Incorrect int    `db:"incorrect"`
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	ID         int64
	EndedAt    time.Time
	Band       string
	Stars      int
	Words      int
	Correct    int
	Incorrect  int
	BestStreak int
	DurationMs int64
}
