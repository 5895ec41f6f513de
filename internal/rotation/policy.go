// Package rotation keeps the option slots and the card window in step as
// words are retired from play.
package rotation

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Policy selects how new words and cards are chosen.
type Policy int

// Selection policies.
const (
	Random Policy = iota
	Sequential
)

func (p Policy) String() string {
	if p == Sequential {
		return "sequential"
	}
	return "random"
}

// ParsePolicy maps a config value to a Policy. Empty means random.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random":
		return Random, nil
	case "sequential", "seq":
		return Sequential, nil
	default:
		return Random, fmt.Errorf("unknown selection policy %q (want random or sequential)", s)
	}
}

// NewRand returns a source seeded with the current time.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle permutes items in place with Fisher-Yates.
func Shuffle[T any](rnd *rand.Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
