package capability

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"voxmate/internal/logging"
)

type genaiTranslatorFactory struct {
	runtime *Runtime
}

func (f *genaiTranslatorFactory) Availability(ctx context.Context, source, target string) (Availability, error) {
	if source == "" || target == "" {
		return AvailabilityUnavailable, nil
	}
	return AvailabilityReadily, nil
}

func (f *genaiTranslatorFactory) Create(ctx context.Context, source, target string, monitor DownloadProgress) (Translator, error) {
	avail, err := f.Availability(ctx, source, target)
	if err != nil {
		return nil, err
	}
	if avail == AvailabilityUnavailable {
		return nil, fmt.Errorf("%w: translation %s -> %s", ErrUnavailable, source, target)
	}
	// No download phase for the remote backend; report completion once.
	if monitor != nil {
		monitor(1.0)
	}
	logging.Capability("created translator %s -> %s", source, target)
	return &genaiTranslator{runtime: f.runtime, source: source, target: target}, nil
}

// genaiTranslator translates text for one fixed language pair.
type genaiTranslator struct {
	runtime *Runtime
	source  string
	target  string
}

func (t *genaiTranslator) SourceLanguage() string { return t.source }
func (t *genaiTranslator) TargetLanguage() string { return t.target }

func (t *genaiTranslator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	instruction := fmt.Sprintf(
		"You are a translation engine. Translate the user's text from language %q to language %q. "+
			"Preserve meaning, tone, and formatting. Output only the translated text with no "+
			"explanations or quotation marks.",
		t.source, t.target,
	)
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	}

	out, err := t.runtime.generate(ctx, t.runtime.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("translation %s -> %s failed: %w", t.source, t.target, err)
	}
	return strings.TrimSpace(out), nil
}
