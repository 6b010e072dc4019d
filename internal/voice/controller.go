// Package voice runs continuous speech capture: a recognition loop that
// restarts itself while enabled, feeding transcripts into a FIFO queue that
// is processed one utterance at a time.
package voice

import (
	"context"
	"errors"
	"sync"
	"time"

	"voxmate/internal/logging"
	"voxmate/internal/speech"
)

// Handler consumes one recognized utterance. Handlers run serially; a slow
// handler delays later utterances but never drops or reorders them.
type Handler func(ctx context.Context, transcript string)

const queueCapacity = 16

// Controller toggles continuous voice capture on and off.
type Controller struct {
	recognizer speech.Recognizer
	language   func() string
	handle     Handler
	// restartDelay spaces out recognition restarts after engine errors.
	restartDelay time.Duration

	mu      sync.Mutex
	enabled bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewController creates a disabled controller. language is consulted per
// recognition turn.
func NewController(recognizer speech.Recognizer, language func() string, handle Handler) *Controller {
	if language == nil {
		language = func() string { return "en" }
	}
	return &Controller{
		recognizer:   recognizer,
		language:     language,
		handle:       handle,
		restartDelay: 500 * time.Millisecond,
	}
}

// Enabled reports whether capture is running.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Toggle flips capture on or off and returns the new state.
func (c *Controller) Toggle() bool {
	if c.Enabled() {
		c.Disable()
		return false
	}
	c.Enable()
	return true
}

// Enable starts continuous capture. No-op when already enabled.
func (c *Controller) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled {
		return
	}
	c.enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	queue := make(chan string, queueCapacity)

	c.wg.Add(2)
	go c.captureLoop(ctx, queue)
	go c.processLoop(ctx, queue)
	logging.Voice("voice capture enabled")
}

// Disable stops capture and waits for both loops to exit. The in-flight
// utterance handler is cancelled through its context. No-op when disabled.
func (c *Controller) Disable() {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = false
	c.cancel()
	c.cancel = nil
	c.mu.Unlock()

	c.wg.Wait()
	logging.Voice("voice capture disabled")
}

// captureLoop runs recognition turns back to back, restarting after silent
// turns and engine errors, until the controller is disabled.
func (c *Controller) captureLoop(ctx context.Context, queue chan<- string) {
	defer c.wg.Done()
	for ctx.Err() == nil {
		transcript, err := c.recognizer.Listen(ctx, c.language())
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if !errors.Is(err, speech.ErrNoSpeech) {
				logging.VoiceError("recognition error: %v", err)
				select {
				case <-time.After(c.restartDelay):
				case <-ctx.Done():
					return
				}
			}
			continue
		}
		if transcript == "" {
			continue
		}

		select {
		case queue <- transcript:
		case <-ctx.Done():
			return
		}
	}
}

// processLoop drains the utterance queue serially in arrival order.
func (c *Controller) processLoop(ctx context.Context, queue <-chan string) {
	defer c.wg.Done()
	for {
		select {
		case transcript := <-queue:
			c.handle(ctx, transcript)
		case <-ctx.Done():
			return
		}
	}
}
