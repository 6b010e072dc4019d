package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"voxmate/internal/capability"
	"voxmate/internal/logging"
)

// ErrClassificationFailed marks a transient failure calling the model.
// Callers degrade to the unknown command; never fatal.
var ErrClassificationFailed = errors.New("command classification failed")

const classifierSystemInstruction = `You are an AI assistant that interprets spoken or written user commands into
one of the following English commands: read, pause, stop, translate,
show_commands, ask, summarise.

Rules:
- Always choose only ONE command that best represents the user's intent.
- If the user says something like "read and pause", select the one that sounds
  like the *main* or *first* intent.
- Output must always follow this schema:
    { "command": "<command>", "question": "<optional>" }
- Only include "question" if the command is "ask".
- No explanations, text, or formatting outside valid JSON.`

// commandSchema constrains classifier output to the closed vocabulary.
var commandSchema = &capability.Schema{
	Type: "object",
	Properties: map[string]*capability.Schema{
		"command": {
			Type: "string",
			Enum: []string{"read", "pause", "stop", "translate", "show_commands", "ask", "summarise"},
		},
		"question": {Type: "string"},
	},
	Required: []string{"command"},
}

// Classifier maps raw utterances to commands via a schema-constrained
// language model prompt. Invoked only when the matcher yields unknown.
type Classifier struct {
	model        capability.LanguageModel
	readyTimeout time.Duration
	pollInterval time.Duration

	mu      sync.Mutex
	session capability.ModelSession
}

// NewClassifier creates a classifier over the given language model.
// Zero durations fall back to the default polling bounds.
func NewClassifier(model capability.LanguageModel, readyTimeout, pollInterval time.Duration) *Classifier {
	return &Classifier{
		model:        model,
		readyTimeout: readyTimeout,
		pollInterval: pollInterval,
	}
}

// Classify resolves raw text into a single command.
//
// Returns capability.ErrNotReady (or ErrDownloading) when the model does not
// become ready within the polling window, and ErrClassificationFailed on
// session or prompt errors. A response that is not valid JSON degrades to
// the unknown command with a nil error: parse failures are never fatal.
func (c *Classifier) Classify(ctx context.Context, raw, lang string) (Command, error) {
	if c.model == nil {
		return Command{}, capability.ErrUnavailable
	}

	err := capability.WaitUntilReady(ctx, func(ctx context.Context) (capability.Availability, error) {
		return c.model.Availability(ctx)
	}, c.readyTimeout, c.pollInterval)
	if err != nil {
		return Command{}, err
	}

	session, err := c.getSession(ctx, lang)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}

	prompt := fmt.Sprintf(
		"User said (in %s): %q\nDetermine which one command applies, and respond strictly following the JSON schema.",
		lang, raw,
	)

	result, err := session.Prompt(ctx, prompt, &capability.PromptOptions{ResponseSchema: commandSchema})
	if err != nil {
		// The cached session may have died with the model; drop it so
		// the next attempt creates a fresh one.
		c.dropSession()
		return Command{}, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}

	var parsed struct {
		Command  string `json:"command"`
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		logging.CommandsWarn("classifier returned invalid JSON, degrading to unknown: %q", result)
		return Unknown(raw), nil
	}

	cmd := Command{Kind: normalizeKind(parsed.Command), Question: parsed.Question, Raw: raw}
	logging.Commands("classifier resolved %q -> %s", raw, cmd.Kind)
	return cmd, nil
}

func (c *Classifier) getSession(ctx context.Context, lang string) (capability.ModelSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}

	inputLanguages := []string{"en"}
	if lang != "" && lang != "en" {
		inputLanguages = append(inputLanguages, lang)
	}
	session, err := c.model.Create(ctx, capability.SessionConfig{
		SystemInstruction: classifierSystemInstruction,
		InputLanguages:    inputLanguages,
		OutputLanguage:    "en",
	})
	if err != nil {
		return nil, err
	}
	c.session = session
	return session, nil
}

func (c *Classifier) dropSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		_ = c.session.Destroy()
		c.session = nil
	}
}

// normalizeKind maps model output to a Kind, tolerating the space-separated
// spelling of show commands.
func normalizeKind(s string) Kind {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "read":
		return KindRead
	case "pause":
		return KindPause
	case "stop":
		return KindStop
	case "translate":
		return KindTranslate
	case "show_commands", "show commands":
		return KindShowCommands
	case "summarise", "summarize":
		return KindSummarise
	case "ask":
		return KindAsk
	default:
		return KindUnknown
	}
}
