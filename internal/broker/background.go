package broker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voxmate/internal/capability"
	"voxmate/internal/command"
	"voxmate/internal/logging"
)

// classifierFunc is the fallback classification hop. In production it runs
// through the page's main world; callers only see the result.
type classifierFunc interface {
	Classify(ctx context.Context, raw, lang string) (command.Command, error)
}

// pageTextFunc extracts the active page's visible text up to limit chars.
type pageTextFunc func(ctx context.Context, limit int) (string, error)

// Background owns the AI capabilities and serves the background-directed
// request kinds.
type Background struct {
	model       capability.LanguageModel
	detector    capability.LanguageDetector
	summarizer  capability.Summarizer
	translators *capability.TranslatorCache
	classifier  classifierFunc
	pageText    pageTextFunc

	readyTimeout time.Duration
	pollInterval time.Duration
	askLimit     int
}

// BackgroundOptions collects the collaborators for a Background.
type BackgroundOptions struct {
	Model       capability.LanguageModel
	Detector    capability.LanguageDetector
	Summarizer  capability.Summarizer
	Translators *capability.TranslatorCache
	Classifier  classifierFunc
	PageText    pageTextFunc

	ReadyTimeout time.Duration
	PollInterval time.Duration
	// AskLimit caps page text fed into question answering. Zero means the
	// default 8000 characters.
	AskLimit int
}

// NewBackground creates the background coordinator.
func NewBackground(opts BackgroundOptions) *Background {
	askLimit := opts.AskLimit
	if askLimit <= 0 {
		askLimit = 8000
	}
	return &Background{
		model:        opts.Model,
		detector:     opts.Detector,
		summarizer:   opts.Summarizer,
		translators:  opts.Translators,
		classifier:   opts.Classifier,
		pageText:     opts.PageText,
		readyTimeout: opts.ReadyTimeout,
		pollInterval: opts.PollInterval,
		askLimit:     askLimit,
	}
}

// Register installs the background handlers on b.
func (bg *Background) Register(b *Broker) {
	b.Handle(KindTranslateAuto, bg.handleTranslateAuto)
	b.Handle(KindClassifyCommand, bg.handleClassify)
	b.Handle(KindAsk, bg.handleAsk)
	b.Handle(KindRunSummarizer, bg.handleRunSummarizer)
	b.Handle(KindCheckModel, bg.handleCheckModel)
}

// reasonFor maps capability errors to typed broker reasons.
func reasonFor(err error) Reason {
	switch {
	case errors.Is(err, capability.ErrUnavailable):
		return ReasonUnavailable
	case errors.Is(err, capability.ErrDownloading):
		return ReasonDownloading
	case errors.Is(err, capability.ErrNotReady):
		return ReasonNotReady
	default:
		return ReasonPromptFailed
	}
}

// handleTranslateAuto detects the text's language and translates it to the
// requested target. Same-language input short-circuits: the text comes back
// untouched and no translator is created.
func (bg *Background) handleTranslateAuto(ctx context.Context, req Request) Result {
	text := req.Payload.Text
	target := req.Payload.Language
	if target == "" {
		target = "en"
	}

	source := "en"
	if bg.detector != nil {
		detections, err := bg.detector.Detect(ctx, text)
		if err != nil {
			return Failure(reasonFor(err), err)
		}
		if len(detections) > 0 {
			source = detections[0].DetectedLanguage
		}
	}

	if source == target {
		logging.Broker("same language detected (%s), skipping translation", source)
		return Result{Success: true, Result: text}
	}

	translator, err := bg.translators.Get(ctx, source, target, func(loaded float64) {
		logging.Capability("translator model download: %.1f%%", loaded*100)
	})
	if err != nil {
		return Failure(reasonFor(err), err)
	}

	out, err := translator.Translate(ctx, text)
	if err != nil {
		return Failure(ReasonPromptFailed, err)
	}
	return Result{Success: true, Result: out}
}

// handleClassify resolves an unmatched utterance through the AI classifier.
func (bg *Background) handleClassify(ctx context.Context, req Request) Result {
	if bg.classifier == nil {
		return Failure(ReasonUnavailable, errors.New("classifier not configured"))
	}
	cmd, err := bg.classifier.Classify(ctx, req.Payload.Text, req.Payload.Language)
	if err != nil {
		return Failure(reasonFor(err), err)
	}
	return Result{Success: true, Commands: []command.Command{cmd}}
}

// handleAsk answers a question from the current page's text only.
func (bg *Background) handleAsk(ctx context.Context, req Request) Result {
	question := req.Payload.Question
	if strings.TrimSpace(question) == "" {
		return Failure(ReasonPromptFailed, errors.New("empty question"))
	}
	lang := req.Payload.Language
	if lang == "" {
		lang = "en"
	}
	fullName := req.Payload.LanguageFullName
	if fullName == "" {
		fullName = command.LanguageFullName(lang)
	}

	pageText := ""
	if bg.pageText != nil {
		var err error
		pageText, err = bg.pageText(ctx, bg.askLimit)
		if err != nil {
			return Failure(ReasonChannelError, err)
		}
	}

	err := capability.WaitUntilReady(ctx, bg.model.Availability, bg.readyTimeout, bg.pollInterval)
	if err != nil {
		return Failure(reasonFor(err), err)
	}

	session, err := bg.model.Create(ctx, capability.SessionConfig{
		InputLanguages: []string{"en"},
		OutputLanguage: "en",
	})
	if err != nil {
		return Failure(ReasonPromptFailed, err)
	}
	defer session.Destroy()

	prompt := fmt.Sprintf(`You are an assistant that answers questions about the current webpage content.
Use only the information available in the provided text.
If the answer is not found, respond with: "I couldn't find that in this page."
Always answer in %s-%s.

Webpage content:
"""%s"""

User question: %q

Respond clearly and concisely.`, lang, fullName, pageText, question)

	answer, err := session.Prompt(ctx, prompt, nil)
	if err != nil {
		return Failure(ReasonPromptFailed, err)
	}
	return Result{Success: true, Answer: answer}
}

// handleRunSummarizer condenses text into spoken-friendly key points.
func (bg *Background) handleRunSummarizer(ctx context.Context, req Request) Result {
	text := strings.Join(strings.Fields(req.Payload.Text), " ")
	if text == "" {
		return Failure(ReasonPromptFailed, errors.New("nothing to summarize"))
	}

	err := capability.WaitUntilReady(ctx, bg.summarizer.Availability, bg.readyTimeout, bg.pollInterval)
	if err != nil {
		return Failure(reasonFor(err), err)
	}

	summary, err := bg.summarizer.Summarize(ctx, text, capability.SummarizeOptions{
		Type:           "key-points",
		Format:         "markdown",
		Length:         "medium",
		Context:        req.Payload.Context,
		OutputLanguage: req.Payload.Language,
	})
	if err != nil {
		return Failure(ReasonPromptFailed, err)
	}
	return Result{Success: true, Summary: summary}
}

// handleCheckModel reports whether the language model is usable right now,
// distinguishing still-downloading from missing and from session failures.
func (bg *Background) handleCheckModel(ctx context.Context, req Request) Result {
	err := capability.WaitUntilReady(ctx, bg.model.Availability, bg.readyTimeout, bg.pollInterval)
	if err != nil {
		return Failure(reasonFor(err), err)
	}

	avail, err := bg.model.Availability(ctx)
	if err != nil {
		return Failure(ReasonPromptFailed, err)
	}

	// Availability alone can lie; prove the model answers by creating a
	// session.
	session, err := bg.model.Create(ctx, capability.SessionConfig{})
	if err != nil {
		return Failure(ReasonPromptFailed, fmt.Errorf("session creation failed: %w", err))
	}
	_ = session.Destroy()

	return Result{Success: true, Availability: string(avail)}
}
