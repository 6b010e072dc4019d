// Package reading implements the page read-aloud engine: sequential
// traversal of collected segments with highlight marking, pause/resume, and
// stop semantics.
package reading

import (
	"context"
	"errors"
	"sync"

	"voxmate/internal/logging"
	"voxmate/internal/page"
	"voxmate/internal/speech"
)

// State is the engine's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateReading State = "reading"
	StatePaused  State = "paused"
)

// ErrNoReadableContent means collection found nothing worth reading.
var ErrNoReadableContent = errors.New("no readable text found")

// Session reads a page aloud segment by segment. One loop is active at a
// time; Start, Pause, and Stop are safe to call from any goroutine.
//
// Pause keeps the index at the segment that was speaking, so resuming
// replays that segment from its beginning. Stop resets to the first segment
// and discards the collected snapshot; the next Start re-collects.
type Session struct {
	collector page.Collector
	marker    page.Marker
	synth     speech.Synthesizer
	language  func() string

	mu         sync.Mutex
	state      State
	segments   []page.Segment
	index      int
	generation int
	cancelLoop context.CancelFunc
	loopDone   chan struct{}
}

// NewSession creates an idle session. language is consulted per utterance so
// a preference change mid-read takes effect on the next segment.
func NewSession(collector page.Collector, marker page.Marker, synth speech.Synthesizer, language func() string) *Session {
	if language == nil {
		language = func() string { return "en" }
	}
	return &Session{
		collector: collector,
		marker:    marker,
		synth:     synth,
		language:  language,
		state:     StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns the next segment index and the total collected count.
func (s *Session) Progress() (index, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, len(s.segments)
}

// Start begins or resumes reading. Idle starts re-collect the page and fail
// with ErrNoReadableContent when it has no readable text; paused starts
// resume at the saved segment; starting while already reading is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReading:
		s.mu.Unlock()
		return nil
	case StatePaused:
		logging.Reading("resuming at segment %d/%d", s.index, len(s.segments))
	case StateIdle:
		s.mu.Unlock()
		segments, err := s.collector.Collect(ctx)
		if err != nil {
			return err
		}
		if len(segments) == 0 {
			return ErrNoReadableContent
		}
		s.mu.Lock()
		if s.state != StateIdle {
			// Lost a race with another Start.
			s.mu.Unlock()
			return nil
		}
		s.segments = segments
		s.index = 0
		logging.Reading("starting read of %d segments", len(segments))
	}

	s.state = StateReading
	s.generation++
	gen := s.generation
	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancelLoop = cancel
	done := make(chan struct{})
	s.loopDone = done
	s.mu.Unlock()

	go s.loop(loopCtx, gen, done)
	return nil
}

// Pause suspends reading, cancelling the in-flight utterance best-effort.
// The index stays at the segment that was speaking. No-op unless reading.
func (s *Session) Pause(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateReading {
		s.mu.Unlock()
		return
	}
	s.state = StatePaused
	s.stopLoopLocked()
	index := s.index
	s.mu.Unlock()

	_ = s.synth.Cancel(ctx)
	logging.Reading("paused at segment %d", index)
}

// Stop halts reading and resets to the beginning. Idempotent; safe while
// idle, reading, or paused.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	wasIdle := s.state == StateIdle
	s.state = StateIdle
	s.index = 0
	s.segments = nil
	s.stopLoopLocked()
	s.mu.Unlock()

	_ = s.synth.Cancel(ctx)
	if s.marker != nil {
		_ = s.marker.Clear(ctx)
	}
	if !wasIdle {
		logging.Reading("stopped")
	}
}

// stopLoopLocked cancels the active loop. Caller holds s.mu.
func (s *Session) stopLoopLocked() {
	if s.cancelLoop != nil {
		s.cancelLoop()
		s.cancelLoop = nil
	}
}

// loop speaks segments sequentially until done, cancelled, or superseded.
func (s *Session) loop(ctx context.Context, gen int, done chan struct{}) {
	defer close(done)

	for {
		s.mu.Lock()
		if s.generation != gen || s.state != StateReading {
			s.mu.Unlock()
			return
		}
		if s.index >= len(s.segments) {
			// Finished the page.
			s.state = StateIdle
			s.index = 0
			s.segments = nil
			s.cancelLoop = nil
			s.mu.Unlock()
			logging.Reading("finished page")
			return
		}
		seg := s.segments[s.index]
		s.mu.Unlock()

		if err := s.speakSegment(ctx, seg); err != nil {
			if errors.Is(err, context.Canceled) {
				// Paused or stopped mid-utterance; index untouched so a
				// resume replays this segment.
				return
			}
			// Speech errors count as completion; keep going.
			logging.ReadingError("segment %d: %v", seg.ID, err)
		}

		s.advance(gen, seg)
	}
}

// speakSegment marks, voices, and unmarks one segment. A vanished segment is
// skipped silently.
func (s *Session) speakSegment(ctx context.Context, seg page.Segment) error {
	if s.marker != nil {
		if err := s.marker.Mark(ctx, seg); err != nil {
			if errors.Is(err, page.ErrSegmentVanished) {
				logging.ReadingDebug("segment %d vanished, skipping", seg.ID)
				return nil
			}
			if ctx.Err() != nil {
				return context.Canceled
			}
			logging.ReadingError("mark segment %d: %v", seg.ID, err)
		}
	}

	err := s.synth.Speak(ctx, seg.Text, s.language())
	if ctx.Err() != nil {
		return context.Canceled
	}

	if s.marker != nil {
		_ = s.marker.Unmark(ctx, seg)
	}
	return err
}

// advance moves past seg if this loop still owns the session and the index
// was not reset underneath it.
func (s *Session) advance(gen int, seg page.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateReading {
		return
	}
	if s.index < len(s.segments) && s.segments[s.index].ID == seg.ID {
		s.index++
	}
}
