package capability

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type genaiSummarizer struct {
	runtime *Runtime
}

func (s *genaiSummarizer) Availability(ctx context.Context) (Availability, error) {
	return AvailabilityReadily, nil
}

func (s *genaiSummarizer) Summarize(ctx context.Context, text string, opts SummarizeOptions) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("nothing to summarize")
	}

	summaryType := opts.Type
	if summaryType == "" {
		summaryType = "key-points"
	}
	format := opts.Format
	if format == "" {
		format = "markdown"
	}
	length := opts.Length
	if length == "" {
		length = "medium"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a summarizer. Produce a %s length %s summary formatted as %s.",
		length, summaryType, format)
	if opts.Context != "" {
		fmt.Fprintf(&b, " Context: %s", opts.Context)
	}
	if opts.OutputLanguage != "" {
		fmt.Fprintf(&b, " Write the summary in language %q.", opts.OutputLanguage)
	}
	b.WriteString(" Output only the summary.")

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(b.String(), genai.RoleUser),
	}

	out, err := s.runtime.generate(ctx, s.runtime.summarizerName, contents, config)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}
