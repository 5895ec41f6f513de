// Package audio pronounces words through an external speech command.
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DedupeWindow drops a repeated request for the same text.
	DedupeWindow = 500 * time.Millisecond
	// Attempts is how many times a failed start is tried.
	Attempts = 3
	// RetryDelay separates failed attempts.
	RetryDelay = 200 * time.Millisecond
)

// Playback is one running utterance.
type Playback interface {
	Wait() error
}

// Speaker starts an utterance. Cancelling ctx stops it.
type Speaker interface {
	Start(ctx context.Context, text string) (Playback, error)
}

// Announcer serializes utterances: a new one stops the one in flight, and a
// repeat of the same text inside DedupeWindow is dropped.
type Announcer struct {
	speaker    Speaker
	window     time.Duration
	attempts   int
	retryDelay time.Duration
	now        func() time.Time

	mu       sync.Mutex
	lastText string
	lastAt   time.Time
	stop     context.CancelFunc
	done     chan struct{}
}

// NewAnnouncer wraps speaker with the default timing.
func NewAnnouncer(speaker Speaker) *Announcer {
	return &Announcer{
		speaker:    speaker,
		window:     DedupeWindow,
		attempts:   Attempts,
		retryDelay: RetryDelay,
		now:        time.Now,
	}
}

// Announce returns once playback has started, after all attempts failed, or
// when ctx is cancelled.
func (a *Announcer) Announce(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if text == a.lastText && now.Sub(a.lastAt) < a.window {
		log.Debug().Str("text", text).Msg("duplicate announce dropped")
		return nil
	}
	a.lastText = text
	a.lastAt = now
	a.stopLocked()

	playCtx, cancel := context.WithCancel(ctx)
	var lastErr error
	for attempt := 0; attempt < a.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-playCtx.Done():
				cancel()
				return playCtx.Err()
			case <-time.After(a.retryDelay):
			}
		}
		pb, err := a.speaker.Start(playCtx, text)
		if err != nil {
			lastErr = err
			log.Debug().Err(err).Int("attempt", attempt+1).Str("text", text).Msg("speech start failed")
			continue
		}
		done := make(chan struct{})
		a.stop = cancel
		a.done = done
		go func() {
			defer close(done)
			if err := pb.Wait(); err != nil && playCtx.Err() == nil {
				log.Debug().Err(err).Str("text", text).Msg("speech playback ended with error")
			}
		}()
		return nil
	}
	cancel()
	return fmt.Errorf("failed to speak %q after %d attempts: %w", text, a.attempts, lastErr)
}

// Stop ends the utterance in flight, if any.
func (a *Announcer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Announcer) stopLocked() {
	if a.stop == nil {
		return
	}
	a.stop()
	<-a.done
	a.stop = nil
	a.done = nil
}

// ErrNoCommand is returned by a CommandSpeaker with an empty command.
var ErrNoCommand = errors.New("no speech command configured")
