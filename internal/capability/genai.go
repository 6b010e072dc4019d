package capability

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"voxmate/internal/logging"
)

// Runtime provides every AI capability through the Gemini API. It is the
// production implementation behind the capability interfaces; tests swap in
// local fakes.
type Runtime struct {
	client         *genai.Client
	modelName      string
	summarizerName string
}

// NewRuntime creates a Gemini-backed capability runtime.
func NewRuntime(ctx context.Context, apiKey, model, summarizerModel string) (*Runtime, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if summarizerModel == "" {
		summarizerModel = model
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Runtime{
		client:         client,
		modelName:      model,
		summarizerName: summarizerModel,
	}, nil
}

// LanguageModel returns the prompt capability.
func (r *Runtime) LanguageModel() LanguageModel {
	return &genaiLanguageModel{runtime: r}
}

// TranslatorFactory returns the translation capability.
func (r *Runtime) TranslatorFactory() TranslatorFactory {
	return &genaiTranslatorFactory{runtime: r}
}

// Summarizer returns the summarization capability.
func (r *Runtime) Summarizer() Summarizer {
	return &genaiSummarizer{runtime: r}
}

// LanguageDetector returns the language detection capability.
func (r *Runtime) LanguageDetector() LanguageDetector {
	return &genaiDetector{runtime: r}
}

// generate sends one request and returns the concatenated text response.
func (r *Runtime) generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := r.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("GenAI request failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("GenAI returned an empty response")
	}
	return text, nil
}

// genaiLanguageModel implements LanguageModel. The remote API has no local
// download phase, so availability is always readily once the client exists.
type genaiLanguageModel struct {
	runtime *Runtime
}

func (m *genaiLanguageModel) Availability(ctx context.Context) (Availability, error) {
	return AvailabilityReadily, nil
}

func (m *genaiLanguageModel) Create(ctx context.Context, cfg SessionConfig) (ModelSession, error) {
	session := &genaiSession{
		runtime: m.runtime,
	}
	if cfg.SystemInstruction != "" {
		session.system = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	logging.Capability("created model session (input=%v output=%s)", cfg.InputLanguages, cfg.OutputLanguage)
	return session, nil
}

// genaiSession is a multi-turn session. History is kept locally and replayed
// with every prompt, matching how session state works upstream.
type genaiSession struct {
	runtime *Runtime
	system  *genai.Content

	mu      sync.Mutex
	history []*genai.Content
}

func (s *genaiSession) Prompt(ctx context.Context, text string, opts *PromptOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents := append(append([]*genai.Content{}, s.history...),
		genai.NewContentFromText(text, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: s.system,
	}
	if opts != nil && opts.ResponseSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = toGenAISchema(opts.ResponseSchema)
	}

	reply, err := s.runtime.generate(ctx, s.runtime.modelName, contents, config)
	if err != nil {
		return "", err
	}

	s.history = append(s.history,
		genai.NewContentFromText(text, genai.RoleUser),
		genai.NewContentFromText(reply, genai.RoleModel))
	return reply, nil
}

func (s *genaiSession) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	return nil
}

// toGenAISchema converts the capability schema subset to the SDK's type.
func toGenAISchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Enum:     s.Enum,
		Required: s.Required,
	}
	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenAISchema(prop)
		}
	}
	return out
}
