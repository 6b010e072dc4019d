package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxmate/internal/broker"
	"voxmate/internal/command"
	"voxmate/internal/notify"
	"voxmate/internal/page"
	"voxmate/internal/reading"
)

type recordingNotifier struct {
	mu    sync.Mutex
	shown []notify.Notification
}

func (n *recordingNotifier) Show(ctx context.Context, notification notify.Notification) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = append(n.shown, notification)
	return "id"
}

func (n *recordingNotifier) Dismiss(ctx context.Context, id string) {}

func (n *recordingNotifier) byKind(kind notify.Kind) []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notify.Notification
	for _, s := range n.shown {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

type fakePage struct {
	body    string
	bodyErr error
	applied string
}

func (p *fakePage) BodyText(ctx context.Context, limit int) (string, error) {
	if p.bodyErr != nil {
		return "", p.bodyErr
	}
	if limit > 0 && len(p.body) > limit {
		return p.body[:limit], nil
	}
	return p.body, nil
}

func (p *fakePage) ApplyTranslation(ctx context.Context, translated string) error {
	p.applied = translated
	return nil
}

type fakePrefs struct {
	user      string
	selected  string
	voiceMode bool
}

func (p *fakePrefs) UserLanguage() string     { return p.user }
func (p *fakePrefs) SelectedLanguage() string { return p.selected }
func (p *fakePrefs) SetVoiceMode(enabled bool) error {
	p.voiceMode = enabled
	return nil
}

type fakeToggler struct{ enabled bool }

func (t *fakeToggler) Toggle() bool {
	t.enabled = !t.enabled
	return t.enabled
}

type fakeSynth struct {
	mu     sync.Mutex
	spoken []string
	langs  []string
}

func (s *fakeSynth) Speak(ctx context.Context, text, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	s.langs = append(s.langs, lang)
	return nil
}

func (s *fakeSynth) Cancel(ctx context.Context) error { return nil }

type emptyCollector struct{}

func (emptyCollector) Collect(ctx context.Context) ([]page.Segment, error) { return nil, nil }

func newTestDispatcher(t *testing.T, b *broker.Broker, pg *fakePage) (*Dispatcher, *recordingNotifier, *fakeSynth, *fakePrefs) {
	t.Helper()
	notifier := &recordingNotifier{}
	synth := &fakeSynth{}
	prefs := &fakePrefs{user: "es", selected: "es"}
	session := reading.NewSession(emptyCollector{}, nil, synth, func() string { return prefs.user })
	d := New(Options{
		Session:  session,
		Broker:   b,
		Synth:    synth,
		Notifier: notifier,
		Page:     pg,
		Prefs:    prefs,
		Voice:    &fakeToggler{},
	})
	return d, notifier, synth, prefs
}

func TestRead_NoContentNotifies(t *testing.T) {
	b := broker.New()
	defer b.Close()
	d, notifier, _, _ := newTestDispatcher(t, b, &fakePage{})

	d.Dispatch(context.Background(), command.Command{Kind: command.KindRead, Raw: "read"})

	errs := notifier.byKind(notify.KindError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Body, "No readable text")
}

func TestTranslatePage_AppliesResultAndNotifiesSuccess(t *testing.T) {
	b := broker.New()
	defer b.Close()
	b.Handle(broker.KindTranslateAuto, func(ctx context.Context, req broker.Request) broker.Result {
		assert.Equal(t, "es", req.Payload.Language)
		assert.Equal(t, "original body text", req.Payload.Text)
		return broker.Result{Success: true, Result: "texto traducido"}
	})

	pg := &fakePage{body: "original body text"}
	d, notifier, _, _ := newTestDispatcher(t, b, pg)

	d.TranslatePage(context.Background())

	assert.Equal(t, "texto traducido", pg.applied)
	require.Len(t, notifier.byKind(notify.KindSuccess), 1)
	require.Len(t, notifier.byKind(notify.KindLoading), 1)
}

func TestTranslatePage_BodyCappedAtLimit(t *testing.T) {
	b := broker.New()
	defer b.Close()
	var gotLen int
	b.Handle(broker.KindTranslateAuto, func(ctx context.Context, req broker.Request) broker.Result {
		gotLen = len(req.Payload.Text)
		return broker.Result{Success: true, Result: "ok"}
	})

	pg := &fakePage{body: strings.Repeat("x", DefaultTranslateLimit+500)}
	d, _, _, _ := newTestDispatcher(t, b, pg)

	d.TranslatePage(context.Background())
	assert.Equal(t, DefaultTranslateLimit, gotLen)
}

func TestTranslatePage_FailureNotifiesError(t *testing.T) {
	b := broker.New()
	defer b.Close()
	b.Handle(broker.KindTranslateAuto, func(ctx context.Context, req broker.Request) broker.Result {
		return broker.Failure(broker.ReasonUnavailable, errors.New("no model for pair"))
	})

	pg := &fakePage{body: "text to translate"}
	d, notifier, _, _ := newTestDispatcher(t, b, pg)

	d.TranslatePage(context.Background())

	assert.Empty(t, pg.applied)
	errs := notifier.byKind(notify.KindError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Body, "no model for pair")
}

func TestShowCommands_SpeaksLocalizedCard(t *testing.T) {
	b := broker.New()
	defer b.Close()
	d, notifier, synth, _ := newTestDispatcher(t, b, &fakePage{})

	d.ShowCommands(context.Background())

	require.Len(t, synth.spoken, 1)
	assert.Contains(t, synth.spoken[0], "Comandos de voz")
	assert.Contains(t, synth.spoken[0], "Di 'leer'")
	assert.Equal(t, "es", synth.langs[0])
	require.Len(t, notifier.byKind(notify.KindInfo), 1)
}

func TestAsk_SpeaksAnswer(t *testing.T) {
	b := broker.New()
	defer b.Close()
	b.Handle(broker.KindAsk, func(ctx context.Context, req broker.Request) broker.Result {
		assert.Equal(t, "es", req.Payload.Language)
		assert.Equal(t, "Spanish", req.Payload.LanguageFullName)
		return broker.Result{Success: true, Answer: "  Trata de pájaros.  "}
	})

	d, notifier, synth, _ := newTestDispatcher(t, b, &fakePage{body: "page"})

	d.Ask(context.Background(), "de qué trata esta página")

	require.Len(t, synth.spoken, 1)
	assert.Equal(t, "Trata de pájaros.", synth.spoken[0])
	require.Len(t, notifier.byKind(notify.KindSuccess), 1)
}

func TestAsk_FailureNotifiesWithoutSpeaking(t *testing.T) {
	b := broker.New()
	defer b.Close()
	b.Handle(broker.KindAsk, func(ctx context.Context, req broker.Request) broker.Result {
		return broker.Failure(broker.ReasonNotReady, errors.New("model not ready"))
	})

	d, notifier, synth, _ := newTestDispatcher(t, b, &fakePage{})

	d.Ask(context.Background(), "anything")

	assert.Empty(t, synth.spoken)
	require.Len(t, notifier.byKind(notify.KindError), 1)
}

func TestSummarise_EmptyPageWarns(t *testing.T) {
	b := broker.New()
	defer b.Close()
	d, notifier, synth, _ := newTestDispatcher(t, b, &fakePage{body: "   "})

	d.SummarisePage(context.Background())

	assert.Empty(t, synth.spoken)
	errs := notifier.byKind(notify.KindError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Body, "No readable text")
}

func TestSummarise_SpeaksSummary(t *testing.T) {
	b := broker.New()
	defer b.Close()
	b.Handle(broker.KindRunSummarizer, func(ctx context.Context, req broker.Request) broker.Result {
		return broker.Result{Success: true, Summary: "- key point one"}
	})

	d, _, synth, _ := newTestDispatcher(t, b, &fakePage{body: "long article text"})

	d.SummarisePage(context.Background())

	require.Len(t, synth.spoken, 1)
	assert.Equal(t, "- key point one", synth.spoken[0])
}

func TestToggleVoice_PersistsState(t *testing.T) {
	b := broker.New()
	defer b.Close()
	d, _, _, prefs := newTestDispatcher(t, b, &fakePage{})

	assert.True(t, d.ToggleVoice(context.Background()))
	assert.True(t, prefs.voiceMode)
	assert.False(t, d.ToggleVoice(context.Background()))
	assert.False(t, prefs.voiceMode)
}

func TestDispatch_UnknownIgnored(t *testing.T) {
	b := broker.New()
	defer b.Close()
	d, notifier, synth, _ := newTestDispatcher(t, b, &fakePage{})

	d.Dispatch(context.Background(), command.Unknown("mumbling"))

	assert.Empty(t, synth.spoken)
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Empty(t, notifier.shown)
}

func TestRegister_RoutesBrokerKinds(t *testing.T) {
	b := broker.New()
	defer b.Close()
	b.Handle(broker.KindAsk, func(ctx context.Context, req broker.Request) broker.Result {
		return broker.Result{Success: true, Answer: "answer"}
	})

	d, _, synth, _ := newTestDispatcher(t, b, &fakePage{body: "content"})
	d.Register(b)

	res := b.Send(context.Background(), broker.KindAskCommand, broker.Payload{Question: "what"})
	assert.True(t, res.Success)
	require.Len(t, synth.spoken, 1)

	res = b.Send(context.Background(), broker.KindStopRead, broker.Payload{})
	assert.True(t, res.Success)
}