package reading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"voxmate/internal/page"
)

type fakeCollector struct {
	mu       sync.Mutex
	segments []page.Segment
	calls    int
}

func (c *fakeCollector) Collect(ctx context.Context) ([]page.Segment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return append([]page.Segment(nil), c.segments...), nil
}

func (c *fakeCollector) collectCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeMarker struct {
	mu       sync.Mutex
	marked   []int
	unmarked []int
	vanished map[int]bool
}

func (m *fakeMarker) Mark(ctx context.Context, seg page.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vanished[seg.ID] {
		return page.ErrSegmentVanished
	}
	m.marked = append(m.marked, seg.ID)
	return nil
}

func (m *fakeMarker) Unmark(ctx context.Context, seg page.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unmarked = append(m.unmarked, seg.ID)
	return nil
}

func (m *fakeMarker) Clear(ctx context.Context) error { return nil }

func (m *fakeMarker) markedIDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.marked...)
}

// fakeSynth speaks instantly unless gate is set, in which case Speak blocks
// until the gate is released or the context is cancelled.
type fakeSynth struct {
	mu     sync.Mutex
	spoken []string
	errOn  map[string]bool
	gate   chan struct{}
}

func (s *fakeSynth) Speak(ctx context.Context, text, lang string) error {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	if s.errOn[text] {
		return errors.New("speech engine error")
	}
	return nil
}

func (s *fakeSynth) Cancel(ctx context.Context) error { return nil }

func (s *fakeSynth) spokenTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func segments(texts ...string) []page.Segment {
	segs := make([]page.Segment, len(texts))
	for i, t := range texts {
		segs[i] = page.Segment{ID: i, Text: t}
	}
	return segs
}

func waitForState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("session never reached state %s (stuck at %s)", want, s.State())
}

func TestStart_ReadsAllSegmentsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	collector := &fakeCollector{segments: segments("alpha one", "beta two", "gamma three")}
	marker := &fakeMarker{}
	synth := &fakeSynth{}
	s := NewSession(collector, marker, synth, nil)

	require.NoError(t, s.Start(context.Background()))
	waitForState(t, s, StateIdle)

	assert.Equal(t, []string{"alpha one", "beta two", "gamma three"}, synth.spokenTexts())
	assert.Equal(t, []int{0, 1, 2}, marker.markedIDs())
}

func TestStart_EmptyPage(t *testing.T) {
	s := NewSession(&fakeCollector{}, &fakeMarker{}, &fakeSynth{}, nil)
	err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoReadableContent)
	assert.Equal(t, StateIdle, s.State())
}

func TestSpeechErrorCountsAsCompletion(t *testing.T) {
	defer goleak.VerifyNone(t)

	collector := &fakeCollector{segments: segments("first segment", "broken segment", "third segment")}
	synth := &fakeSynth{errOn: map[string]bool{"broken segment": true}}
	s := NewSession(collector, &fakeMarker{}, synth, nil)

	require.NoError(t, s.Start(context.Background()))
	waitForState(t, s, StateIdle)

	assert.Equal(t, []string{"first segment", "broken segment", "third segment"}, synth.spokenTexts())
}

func TestVanishedSegmentSkipped(t *testing.T) {
	defer goleak.VerifyNone(t)

	collector := &fakeCollector{segments: segments("kept one", "vanished", "kept two")}
	marker := &fakeMarker{vanished: map[int]bool{1: true}}
	synth := &fakeSynth{}
	s := NewSession(collector, marker, synth, nil)

	require.NoError(t, s.Start(context.Background()))
	waitForState(t, s, StateIdle)

	assert.Equal(t, []int{0, 2}, marker.markedIDs())
}

func TestPauseResumeReplaysInterruptedSegment(t *testing.T) {
	defer goleak.VerifyNone(t)

	collector := &fakeCollector{segments: segments("segment zero", "segment one", "segment two")}
	synth := &fakeSynth{gate: make(chan struct{})}
	s := NewSession(collector, &fakeMarker{}, synth, nil)

	require.NoError(t, s.Start(context.Background()))
	waitForState(t, s, StateReading)

	// Pause while the first segment is still speaking.
	s.Pause(context.Background())
	assert.Equal(t, StatePaused, s.State())
	index, total := s.Progress()
	assert.Equal(t, 0, index, "pause must keep the index at the started segment")
	assert.Equal(t, 3, total)

	// Pausing again is a no-op.
	s.Pause(context.Background())
	assert.Equal(t, StatePaused, s.State())

	// Resume with the gate open: the interrupted segment is spoken again.
	synth.mu.Lock()
	close(synth.gate)
	synth.gate = nil
	synth.mu.Unlock()

	require.NoError(t, s.Start(context.Background()))
	waitForState(t, s, StateIdle)

	assert.Equal(t, []string{"segment zero", "segment one", "segment two"}, synth.spokenTexts())
	assert.Equal(t, 1, collector.collectCalls(), "resume must not re-collect")
}

func TestStopResetsAndRestartRecollects(t *testing.T) {
	defer goleak.VerifyNone(t)

	collector := &fakeCollector{segments: segments("aaa aaa", "bbb bbb", "ccc ccc", "ddd ddd", "eee eee")}
	synth := &fakeSynth{gate: make(chan struct{})}
	s := NewSession(collector, &fakeMarker{}, synth, nil)

	require.NoError(t, s.Start(context.Background()))
	waitForState(t, s, StateReading)

	s.Stop(context.Background())
	assert.Equal(t, StateIdle, s.State())
	index, total := s.Progress()
	assert.Zero(t, index)
	assert.Zero(t, total, "stop discards the collected snapshot")

	// Stopping again is a no-op.
	s.Stop(context.Background())
	assert.Equal(t, StateIdle, s.State())

	synth.mu.Lock()
	close(synth.gate)
	synth.gate = nil
	synth.mu.Unlock()

	require.NoError(t, s.Start(context.Background()))
	waitForState(t, s, StateIdle)
	assert.Equal(t, 2, collector.collectCalls(), "restart after stop re-collects the page")
}

func TestStartWhileReadingIsNoOp(t *testing.T) {
	defer goleak.VerifyNone(t)

	collector := &fakeCollector{segments: segments("only segment here")}
	synth := &fakeSynth{gate: make(chan struct{})}
	s := NewSession(collector, &fakeMarker{}, synth, nil)

	require.NoError(t, s.Start(context.Background()))
	waitForState(t, s, StateReading)
	require.NoError(t, s.Start(context.Background()))

	synth.mu.Lock()
	close(synth.gate)
	synth.gate = nil
	synth.mu.Unlock()
	waitForState(t, s, StateIdle)

	assert.Equal(t, []string{"only segment here"}, synth.spokenTexts())
	assert.Equal(t, 1, collector.collectCalls())
}
