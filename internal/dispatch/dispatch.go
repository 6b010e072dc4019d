// Package dispatch maps resolved voice commands to their operations: the
// reading engine for read/pause/stop, and broker round trips for
// translation, question answering, and summarization. Every outcome is
// rendered through the Notifier and, where the original speaks, voiced
// through the Synthesizer.
package dispatch

import (
	"context"
	"errors"
	"strings"

	"voxmate/internal/broker"
	"voxmate/internal/command"
	"voxmate/internal/logging"
	"voxmate/internal/notify"
	"voxmate/internal/reading"
	"voxmate/internal/speech"
)

// PageText provides the active page's text and applies translations to it.
type PageText interface {
	BodyText(ctx context.Context, limit int) (string, error)
	ApplyTranslation(ctx context.Context, translated string) error
}

// Prefs exposes the stored user preferences the dispatcher consults.
type Prefs interface {
	UserLanguage() string
	SelectedLanguage() string
	SetVoiceMode(enabled bool) error
}

// VoiceToggler flips continuous voice capture.
type VoiceToggler interface {
	Toggle() bool
}

// DefaultTranslateLimit caps page text sent for translation.
const DefaultTranslateLimit = 20000

// Dispatcher executes commands. Stateless beyond its collaborators.
type Dispatcher struct {
	session  *reading.Session
	broker   *broker.Broker
	synth    speech.Synthesizer
	notifier notify.Notifier
	page     PageText
	prefs    Prefs
	voice    VoiceToggler

	translateLimit int
}

// Options collects the dispatcher's collaborators.
type Options struct {
	Session  *reading.Session
	Broker   *broker.Broker
	Synth    speech.Synthesizer
	Notifier notify.Notifier
	Page     PageText
	Prefs    Prefs
	Voice    VoiceToggler
	// TranslateLimit caps translation input; zero means the default.
	TranslateLimit int
}

// New creates a dispatcher.
func New(opts Options) *Dispatcher {
	limit := opts.TranslateLimit
	if limit <= 0 {
		limit = DefaultTranslateLimit
	}
	return &Dispatcher{
		session:        opts.Session,
		broker:         opts.Broker,
		synth:          opts.Synth,
		notifier:       opts.Notifier,
		page:           opts.Page,
		prefs:          opts.Prefs,
		voice:          opts.Voice,
		translateLimit: limit,
	}
}

// Dispatch executes one resolved command. Unknown commands are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd command.Command) {
	logging.Commands("dispatching %s (raw %q)", cmd.Kind, cmd.Raw)
	switch cmd.Kind {
	case command.KindRead:
		d.Read(ctx)
	case command.KindPause:
		d.Pause(ctx)
	case command.KindStop:
		d.Stop(ctx)
	case command.KindTranslate:
		d.TranslatePage(ctx)
	case command.KindShowCommands:
		d.ShowCommands(ctx)
	case command.KindSummarise:
		d.SummarisePage(ctx)
	case command.KindAsk:
		question := cmd.Question
		if question == "" {
			question = cmd.Raw
		}
		d.Ask(ctx, question)
	default:
		logging.CommandsDebug("ignoring unknown command %q", cmd.Raw)
	}
}

// Read starts or resumes reading the page aloud.
func (d *Dispatcher) Read(ctx context.Context) {
	if err := d.session.Start(ctx); err != nil {
		if errors.Is(err, reading.ErrNoReadableContent) {
			notify.Errorf(ctx, d.notifier, "No Content", "No readable text found on this page.")
			return
		}
		notify.Errorf(ctx, d.notifier, "Reading Error", err.Error())
	}
}

// Pause suspends reading at the current segment.
func (d *Dispatcher) Pause(ctx context.Context) {
	d.session.Pause(ctx)
}

// Stop halts reading and resets to the beginning of the page.
func (d *Dispatcher) Stop(ctx context.Context) {
	d.session.Stop(ctx)
}

// TranslatePage translates the page's visible text into the selected
// language and applies it in place.
func (d *Dispatcher) TranslatePage(ctx context.Context) {
	loadingID := notify.Loading(ctx, d.notifier, "Translation", "Translating page content...")
	defer d.notifier.Dismiss(ctx, loadingID)

	body, err := d.page.BodyText(ctx, d.translateLimit)
	if err != nil {
		notify.Errorf(ctx, d.notifier, "Translation Error", err.Error())
		return
	}

	res := d.broker.Send(ctx, broker.KindTranslateAuto, broker.Payload{
		Text:     body,
		Language: d.prefs.SelectedLanguage(),
	})
	if !res.Success {
		notify.Errorf(ctx, d.notifier, "Translation Error", failureText(res, "Translation failed"))
		return
	}

	if err := d.page.ApplyTranslation(ctx, res.Result); err != nil {
		notify.Errorf(ctx, d.notifier, "Application Error", "Error applying translation to page")
		return
	}
	notify.Success(ctx, d.notifier, "Translation Complete", "Page translation completed successfully!")
}

// ShowCommands presents and speaks the localized command card.
func (d *Dispatcher) ShowCommands(ctx context.Context) {
	lang := d.prefs.UserLanguage()
	card := command.CommandsCard(lang)
	notify.Info(ctx, d.notifier, card.Title, strings.Join(card.Commands, ". "))
	d.speak(ctx, card.Title+". "+strings.Join(card.Commands, ". "), lang)
}

// SummarisePage condenses the page and speaks the summary.
func (d *Dispatcher) SummarisePage(ctx context.Context) {
	loadingID := notify.Loading(ctx, d.notifier, "Generating Summary",
		"Reading page content and generating concise summary...")
	defer d.notifier.Dismiss(ctx, loadingID)

	body, err := d.page.BodyText(ctx, 0)
	if err != nil {
		notify.Errorf(ctx, d.notifier, "Service Error", err.Error())
		return
	}
	if strings.TrimSpace(body) == "" {
		notify.Errorf(ctx, d.notifier, "No Content", "No readable text found on this page to summarize.")
		return
	}

	lang := d.prefs.UserLanguage()
	res := d.broker.Send(ctx, broker.KindRunSummarizer, broker.Payload{
		Text:     body,
		Language: lang,
		Context:  "Summarize this webpage content for a listener.",
	})
	if !res.Success {
		notify.Errorf(ctx, d.notifier, "Service Error", failureText(res, "Could not generate summary at this time."))
		return
	}

	notify.Success(ctx, d.notifier, "Summary", res.Summary)
	d.speak(ctx, res.Summary, lang)
}

// Ask answers a question from the page content and speaks the answer.
func (d *Dispatcher) Ask(ctx context.Context, question string) {
	if strings.TrimSpace(question) == "" {
		return
	}

	loadingID := notify.Loading(ctx, d.notifier, "Asking",
		"Analyzing page content and finding the best answer...")
	defer d.notifier.Dismiss(ctx, loadingID)

	lang := d.prefs.UserLanguage()
	res := d.broker.Send(ctx, broker.KindAsk, broker.Payload{
		Question:         question,
		Language:         lang,
		LanguageFullName: command.LanguageFullName(lang),
	})
	if !res.Success {
		notify.Errorf(ctx, d.notifier, "Answer Not Found",
			"I couldn't find a clear answer to your question in the page content.")
		return
	}

	answer := strings.TrimSpace(res.Answer)
	if answer == "" {
		answer = "No clear answer found in the page content."
	}
	notify.Success(ctx, d.notifier, "Answer", answer)
	d.speak(ctx, answer, lang)
}

// ToggleVoice flips voice capture and persists the new state.
func (d *Dispatcher) ToggleVoice(ctx context.Context) bool {
	enabled := d.voice.Toggle()
	if err := d.prefs.SetVoiceMode(enabled); err != nil {
		logging.VoiceError("persisting voice mode: %v", err)
	}
	if enabled {
		notify.Info(ctx, d.notifier, "Voice Commands", "Voice capture enabled. Say 'show commands' for help.")
	} else {
		notify.Info(ctx, d.notifier, "Voice Commands", "Voice capture disabled.")
	}
	return enabled
}

// Register installs the page-directed broker handlers, so the operations are
// reachable as correlated requests as well as direct calls.
func (d *Dispatcher) Register(b *broker.Broker) {
	b.Handle(broker.KindReadText, func(ctx context.Context, req broker.Request) broker.Result {
		if err := d.session.Start(ctx); err != nil {
			return broker.Failure(broker.ReasonPromptFailed, err)
		}
		return broker.Result{Success: true}
	})
	b.Handle(broker.KindPauseRead, func(ctx context.Context, req broker.Request) broker.Result {
		d.session.Pause(ctx)
		return broker.Result{Success: true}
	})
	b.Handle(broker.KindStopRead, func(ctx context.Context, req broker.Request) broker.Result {
		d.session.Stop(ctx)
		return broker.Result{Success: true}
	})
	b.Handle(broker.KindTranslatePage, func(ctx context.Context, req broker.Request) broker.Result {
		d.TranslatePage(ctx)
		return broker.Result{Success: true}
	})
	b.Handle(broker.KindAskCommand, func(ctx context.Context, req broker.Request) broker.Result {
		d.Ask(ctx, req.Payload.Question)
		return broker.Result{Success: true}
	})
	b.Handle(broker.KindSummarisePage, func(ctx context.Context, req broker.Request) broker.Result {
		d.SummarisePage(ctx)
		return broker.Result{Success: true}
	})
	b.Handle(broker.KindShowCommands, func(ctx context.Context, req broker.Request) broker.Result {
		d.ShowCommands(ctx)
		return broker.Result{Success: true}
	})
	b.Handle(broker.KindToggleVoice, func(ctx context.Context, req broker.Request) broker.Result {
		d.ToggleVoice(ctx)
		return broker.Result{Success: true}
	})
}

// speak cancels any current utterance and voices text in lang.
func (d *Dispatcher) speak(ctx context.Context, text, lang string) {
	if d.synth == nil || text == "" {
		return
	}
	_ = d.synth.Cancel(ctx)
	if err := d.synth.Speak(ctx, text, speechLang(lang)); err != nil {
		logging.ReadingError("speaking response: %v", err)
	}
}

// speechLang widens two-letter codes to the locale tags speech engines
// expect for English and Chinese.
func speechLang(lang string) string {
	switch lang {
	case "en":
		return "en-US"
	case "zh":
		return "zh-CN"
	default:
		return lang
	}
}

func failureText(res broker.Result, fallback string) string {
	if res.Error != "" {
		return res.Error
	}
	if res.Reason != "" {
		return fallback + " (" + string(res.Reason) + ")"
	}
	return fallback
}
