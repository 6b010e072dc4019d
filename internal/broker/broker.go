// Package broker carries correlated request/response round trips between
// the page-side actor and the background coordinator. Every Send yields
// exactly one Result; transport failures never surface as Go errors but as
// synthesized channel_error results, matching how a dead message channel
// behaves.
package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"voxmate/internal/command"
	"voxmate/internal/logging"
)

// Kind names one request type.
type Kind string

// Background-directed kinds (AI capabilities).
const (
	KindTranslateAuto    Kind = "translate_auto"
	KindClassifyCommand  Kind = "translate_with_gemini"
	KindAsk              Kind = "ask_with_gemini"
	KindRunSummarizer    Kind = "run_summarizer"
	KindCheckModel       Kind = "check_model"
)

// Page-directed kinds (operations on the active page).
const (
	KindReadText      Kind = "read_text"
	KindPauseRead     Kind = "pause_read"
	KindStopRead      Kind = "stop_read"
	KindTranslatePage Kind = "translate_page"
	KindAskCommand    Kind = "ask_command"
	KindSummarisePage Kind = "summarise_page"
	KindShowCommands  Kind = "show_commands"
	KindToggleVoice   Kind = "toggle_voice"
)

// Reason is a typed failure cause carried in results.
type Reason string

const (
	ReasonChannelError  Reason = "channel_error"
	ReasonNotReady      Reason = "not_ready"
	ReasonDownloading   Reason = "downloading"
	ReasonUnavailable   Reason = "unavailable"
	ReasonPromptFailed  Reason = "prompt_failed"
	ReasonUnknownAction Reason = "unknown_action"
)

// Payload is the request body. Fields are kind-specific; unused ones stay
// zero.
type Payload struct {
	Text             string `json:"text,omitempty"`
	Question         string `json:"question,omitempty"`
	Language         string `json:"userLanguage,omitempty"`
	LanguageFullName string `json:"languageFullName,omitempty"`
	Context          string `json:"context,omitempty"`
}

// Request is one correlated message.
type Request struct {
	ID      string
	Kind    Kind
	Payload Payload
}

// Result is the single response to a request. Errors never cross the broker
// as Go errors; failures carry a Reason and a human-readable Error.
type Result struct {
	Success      bool   `json:"success"`
	Reason       Reason `json:"reason,omitempty"`
	Error        string `json:"error,omitempty"`
	Result       string `json:"result,omitempty"`
	Answer       string `json:"answer,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Availability string `json:"availability,omitempty"`

	// Commands carries classification results for KindClassifyCommand.
	Commands []command.Command `json:"commands,omitempty"`
}

// Failure builds a failed result.
func Failure(reason Reason, err error) Result {
	r := Result{Reason: reason}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Handler serves one request kind.
type Handler func(ctx context.Context, req Request) Result

type envelope struct {
	ctx     context.Context
	req     Request
	respond chan Result
}

// Broker routes requests to registered handlers. Handlers run concurrently,
// one goroutine per in-flight request; each request gets exactly one
// response.
type Broker struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler

	requests chan envelope
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a started broker.
func New() *Broker {
	b := &Broker{
		handlers: make(map[Kind]Handler),
		requests: make(chan envelope),
		quit:     make(chan struct{}),
	}
	b.wg.Add(1)
	go b.serve()
	return b
}

// Handle registers the handler for kind, replacing any previous one.
func (b *Broker) Handle(kind Kind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = h
}

// Close stops accepting requests and waits for in-flight handlers. Sends
// after Close synthesize channel_error.
func (b *Broker) Close() {
	b.stopOnce.Do(func() { close(b.quit) })
	b.wg.Wait()
}

// Send routes one request and blocks for its single response. A closed
// broker, cancelled context, or handler panic synthesizes
// {success:false, reason:channel_error}.
func (b *Broker) Send(ctx context.Context, kind Kind, payload Payload) Result {
	env := envelope{
		ctx:     ctx,
		req:     Request{ID: uuid.NewString(), Kind: kind, Payload: payload},
		respond: make(chan Result, 1),
	}

	select {
	case b.requests <- env:
	case <-b.quit:
		return Failure(ReasonChannelError, fmt.Errorf("broker closed"))
	case <-ctx.Done():
		return Failure(ReasonChannelError, ctx.Err())
	}

	select {
	case res := <-env.respond:
		return res
	case <-ctx.Done():
		return Failure(ReasonChannelError, ctx.Err())
	}
}

func (b *Broker) serve() {
	defer b.wg.Done()
	for {
		select {
		case env := <-b.requests:
			b.wg.Add(1)
			go func(env envelope) {
				defer b.wg.Done()
				env.respond <- b.dispatch(env.ctx, env.req)
			}(env)
		case <-b.quit:
			return
		}
	}
}

// dispatch runs the handler for one request, converting panics and missing
// handlers into failed results.
func (b *Broker) dispatch(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.BrokerWarn("handler for %s panicked: %v", req.Kind, r)
			res = Failure(ReasonChannelError, fmt.Errorf("handler panic: %v", r))
		}
	}()

	b.mu.RLock()
	handler, ok := b.handlers[req.Kind]
	b.mu.RUnlock()
	if !ok {
		logging.BrokerWarn("no handler for %s", req.Kind)
		return Failure(ReasonUnknownAction, fmt.Errorf("no handler for action %q", req.Kind))
	}

	logging.Broker("%s %s", req.Kind, req.ID)
	res = handler(ctx, req)
	if !res.Success && res.Reason != "" {
		logging.Broker("%s %s failed: %s", req.Kind, req.ID, res.Reason)
	}
	return res
}
