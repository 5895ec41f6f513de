package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuici/internal/rotation"
)

const (
	// DefaultSlotKeys follows a numeric keypad: the top row is 7 8 9.
	DefaultSlotKeys = "7894561230"
	// DefaultReplayKey replays the active card's audio.
	DefaultReplayKey = " "
)

// KeyMap holds the game hotkeys.
type KeyMap struct {
	Slots    [rotation.SlotCount]key.Binding
	Replay   key.Binding
	Override key.Binding
	Script   key.Binding
	Label    key.Binding
	Menu     key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
}

// NewKeyMap builds a key map from ten distinct slot keys and a replay key.
func NewKeyMap(slots, replay string) (KeyMap, error) {
	runes := []rune(slots)
	if len(runes) != rotation.SlotCount {
		return KeyMap{}, fmt.Errorf("slot keys must be %d characters, got %d", rotation.SlotCount, len(runes))
	}
	seen := map[string]struct{}{}
	var km KeyMap
	for i, r := range runes {
		k := string(r)
		if _, dup := seen[k]; dup {
			return KeyMap{}, fmt.Errorf("slot key %q is used twice", k)
		}
		seen[k] = struct{}{}
		km.Slots[i] = key.NewBinding(key.WithKeys(keyNames(r)...), key.WithHelp(helpName(r), fmt.Sprintf("slot %d", i+1)))
	}
	replayRunes := []rune(replay)
	if len(replayRunes) != 1 {
		return KeyMap{}, fmt.Errorf("replay key must be a single character")
	}
	rr := replayRunes[0]
	if _, dup := seen[string(rr)]; dup {
		return KeyMap{}, fmt.Errorf("replay key %q is also a slot key", string(rr))
	}
	km.Replay = key.NewBinding(key.WithKeys(keyNames(rr)...), key.WithHelp(helpName(rr), "replay"))
	km.Override = key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "skip quiz"))
	km.Script = key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "script"))
	km.Label = key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "labels"))
	km.Menu = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu"))
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	km.Up = key.NewBinding(key.WithKeys("up", "k"))
	km.Down = key.NewBinding(key.WithKeys("down", "j"))
	km.Select = key.NewBinding(key.WithKeys("enter"))
	return km, nil
}

// DefaultKeyMap returns the numpad layout with space as replay.
func DefaultKeyMap() KeyMap {
	km, err := NewKeyMap(DefaultSlotKeys, DefaultReplayKey)
	if err != nil {
		panic(err)
	}
	return km
}

// SlotFor returns the slot bound to msg, or -1.
func (km KeyMap) SlotFor(msg tea.KeyMsg) int {
	for i, b := range km.Slots {
		if key.Matches(msg, b) {
			return i
		}
	}
	return -1
}

// SlotKey returns the label shown for slot i.
func (km KeyMap) SlotKey(i int) string {
	if i < 0 || i >= len(km.Slots) {
		return ""
	}
	return km.Slots[i].Help().Key
}

// keyNames covers both spellings Bubble Tea has used for the space bar.
func keyNames(r rune) []string {
	if r == ' ' {
		return []string{" ", "space"}
	}
	return []string{string(r)}
}

func helpName(r rune) string {
	if r == ' ' {
		return "space"
	}
	return string(r)
}
