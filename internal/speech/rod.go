package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"

	"voxmate/internal/logging"
)

// RodSynthesizer speaks through the page's Web Speech synthesis API over the
// DevTools protocol. Each Speak call issues one utterance and awaits its
// terminal event; the promise below settles exactly once even when the
// engine fires both end and error.
type RodSynthesizer struct {
	page *rod.Page
}

// NewRodSynthesizer creates a synthesizer bound to the given page.
func NewRodSynthesizer(page *rod.Page) *RodSynthesizer {
	return &RodSynthesizer{page: page}
}

const speakJS = `
(text, lang) => new Promise((resolve) => {
	if (!window.speechSynthesis) {
		resolve({ ok: false, error: 'speech synthesis unsupported' });
		return;
	}
	const utterance = new SpeechSynthesisUtterance(text);
	if (lang) utterance.lang = lang;
	let settled = false;
	const settle = (result) => {
		if (settled) return;
		settled = true;
		resolve(result);
	};
	utterance.onend = () => settle({ ok: true });
	utterance.onerror = (e) => {
		// Cancellation surfaces as an error event; treat it as a clean end.
		if (e.error === 'canceled' || e.error === 'interrupted') {
			settle({ ok: true });
			return;
		}
		settle({ ok: false, error: String(e.error || 'speech error') });
	};
	window.speechSynthesis.speak(utterance);
})
`

// Speak voices text in lang, blocking until the utterance settles.
func (s *RodSynthesizer) Speak(ctx context.Context, text, lang string) error {
	if text == "" {
		return nil
	}

	res, err := s.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           speakJS,
		JSArgs:       []interface{}{text, lang},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	if !res.Value.Get("ok").Bool() {
		reason := res.Value.Get("error").String()
		logging.Browser("utterance failed: %s", reason)
		return fmt.Errorf("speech synthesis failed: %s", reason)
	}
	return nil
}

// Cancel stops the current utterance and clears the synthesis queue.
func (s *RodSynthesizer) Cancel(ctx context.Context) error {
	_, err := s.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      `() => { if (window.speechSynthesis) window.speechSynthesis.cancel(); }`,
		ByValue: true,
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("cancel speech: %w", err)
	}
	return nil
}

// RodRecognizer captures speech through the page's Web Speech recognition
// API. One Listen call is one recognition turn.
type RodRecognizer struct {
	page *rod.Page
}

// NewRodRecognizer creates a recognizer bound to the given page.
func NewRodRecognizer(page *rod.Page) *RodRecognizer {
	return &RodRecognizer{page: page}
}

const listenJS = `
(lang) => new Promise((resolve) => {
	const Recognition = window.SpeechRecognition || window.webkitSpeechRecognition;
	if (!Recognition) {
		resolve({ status: 'unsupported' });
		return;
	}
	const recognition = new Recognition();
	recognition.lang = lang || 'en-US';
	recognition.continuous = false;
	recognition.interimResults = false;
	recognition.maxAlternatives = 1;
	let settled = false;
	const settle = (result) => {
		if (settled) return;
		settled = true;
		resolve(result);
	};
	recognition.onresult = (event) => {
		const transcript = event.results[0][0].transcript;
		settle({ status: 'ok', transcript: transcript });
	};
	recognition.onerror = (e) => settle({ status: 'error', error: String(e.error) });
	recognition.onend = () => settle({ status: 'silent' });
	recognition.start();
})
`

// Listen blocks until one final transcript arrives. A turn that ends without
// speech (including the engine's no-speech error) returns ErrNoSpeech.
func (r *RodRecognizer) Listen(ctx context.Context, lang string) (string, error) {
	res, err := r.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           listenJS,
		JSArgs:       []interface{}{lang},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	switch res.Value.Get("status").String() {
	case "ok":
		transcript := res.Value.Get("transcript").String()
		logging.Voice("transcript: %q", transcript)
		return transcript, nil
	case "silent":
		return "", ErrNoSpeech
	case "unsupported":
		return "", errors.New("speech recognition unsupported in this page")
	default:
		reason := res.Value.Get("error").String()
		if reason == "no-speech" || reason == "aborted" {
			return "", ErrNoSpeech
		}
		return "", fmt.Errorf("speech recognition failed: %s", reason)
	}
}
