// Package speech defines text-to-speech and speech-recognition contracts and
// the settle-once utterance outcome shared by both.
package speech

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSpeech means a recognition turn ended without producing a transcript.
var ErrNoSpeech = errors.New("no speech detected")

// Synthesizer speaks text aloud.
type Synthesizer interface {
	// Speak blocks until the utterance finishes, fails, or ctx is done.
	Speak(ctx context.Context, text, lang string) error
	// Cancel stops any in-flight utterance. Idempotent.
	Cancel(ctx context.Context) error
}

// Recognizer captures one spoken utterance per call.
type Recognizer interface {
	// Listen blocks until a final transcript is available, returning
	// ErrNoSpeech when the turn ends silent. Continuous capture is built
	// by calling Listen in a loop.
	Listen(ctx context.Context, lang string) (string, error)
}

// Outcome is the terminal result of one spoken utterance.
type Outcome struct {
	Err error
}

// Utterance settles exactly once: concurrent end and error callbacks from
// the underlying speech engine collapse to a single outcome, first one wins.
type Utterance struct {
	once sync.Once
	done chan Outcome
}

// NewUtterance returns an unsettled utterance.
func NewUtterance() *Utterance {
	return &Utterance{done: make(chan Outcome, 1)}
}

// End settles the utterance as completed.
func (u *Utterance) End() {
	u.settle(Outcome{})
}

// Fail settles the utterance with err.
func (u *Utterance) Fail(err error) {
	u.settle(Outcome{Err: err})
}

func (u *Utterance) settle(o Outcome) {
	u.once.Do(func() {
		u.done <- o
		close(u.done)
	})
}

// Done yields the outcome once settled.
func (u *Utterance) Done() <-chan Outcome {
	return u.done
}

// Wait blocks until the utterance settles or ctx is done.
func (u *Utterance) Wait(ctx context.Context) error {
	select {
	case o := <-u.done:
		return o.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
