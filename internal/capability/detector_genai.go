package capability

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

type genaiDetector struct {
	runtime *Runtime
}

func (d *genaiDetector) Availability(ctx context.Context) (Availability, error) {
	return AvailabilityReadily, nil
}

// detectionSchema constrains detection output to a ranked candidate list.
var detectionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"detectedLanguage": {Type: genai.TypeString},
			"confidence":       {Type: genai.TypeNumber},
		},
		Required: []string{"detectedLanguage", "confidence"},
	},
}

func (d *genaiDetector) Detect(ctx context.Context, text string) ([]Detection, error) {
	instruction := "Identify the language of the user's text. Respond with a JSON array of " +
		"candidates ordered by confidence. Use two-letter BCP-47 language codes."

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    detectionSchema,
	}

	out, err := d.runtime.generate(ctx, d.runtime.modelName, contents, config)
	if err != nil {
		return nil, fmt.Errorf("language detection failed: %w", err)
	}

	var parsed []struct {
		DetectedLanguage string  `json:"detectedLanguage"`
		Confidence       float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, fmt.Errorf("language detection returned invalid JSON: %w", err)
	}

	detections := make([]Detection, 0, len(parsed))
	for _, p := range parsed {
		detections = append(detections, Detection{
			DetectedLanguage: p.DetectedLanguage,
			Confidence:       p.Confidence,
		})
	}
	return detections, nil
}
