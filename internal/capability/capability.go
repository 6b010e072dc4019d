// Package capability defines the contracts for the on-device AI features
// VoxMate depends on but does not implement: language model prompting,
// translation, summarization, and language detection. Each capability
// exposes an availability probe so callers can poll for model readiness
// before use.
package capability

import (
	"context"
	"errors"
)

// Availability reports whether a capability's underlying model is usable.
type Availability string

const (
	// AvailabilityUnavailable means the capability cannot be used at all.
	AvailabilityUnavailable Availability = "unavailable"
	// AvailabilityAfterDownload means the capability works once its model
	// finishes downloading.
	AvailabilityAfterDownload Availability = "after-download"
	// AvailabilityAvailable means the model is present and usable.
	AvailabilityAvailable Availability = "available"
	// AvailabilityReadily means the model is loaded and immediately usable.
	AvailabilityReadily Availability = "readily"
)

// Ready reports whether this availability state permits immediate use.
// A model still downloading is not ready; polling continues until it
// becomes available or the deadline passes.
func (a Availability) Ready() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityReadily:
		return true
	default:
		return false
	}
}

// Sentinel errors shared across capabilities.
var (
	// ErrUnavailable means the required capability is missing entirely.
	// Non-retriable; surfaced to the user with guidance.
	ErrUnavailable = errors.New("capability unavailable")
	// ErrNotReady means the capability exists but its model did not become
	// ready within the polling window. Retriable later.
	ErrNotReady = errors.New("model not ready")
	// ErrDownloading means the model download is still in progress.
	ErrDownloading = errors.New("model downloading")
)

// Schema is a minimal JSON-schema subset used to constrain model output.
type Schema struct {
	Type       string
	Properties map[string]*Schema
	Enum       []string
	Required   []string
}

// SessionConfig configures a language model session.
type SessionConfig struct {
	// SystemInstruction primes the session, e.g. restricting output to a
	// closed command vocabulary.
	SystemInstruction string
	// InputLanguages and OutputLanguage hint expected languages.
	InputLanguages []string
	OutputLanguage string
}

// PromptOptions carries per-prompt options.
type PromptOptions struct {
	// ResponseSchema, when set, constrains the model to JSON matching it.
	ResponseSchema *Schema
}

// ModelSession is a created language model session.
type ModelSession interface {
	// Prompt sends one prompt and returns the model's text response.
	Prompt(ctx context.Context, text string, opts *PromptOptions) (string, error)
	// Destroy releases the session.
	Destroy() error
}

// LanguageModel is the prompt-capable AI capability.
type LanguageModel interface {
	Availability(ctx context.Context) (Availability, error)
	Create(ctx context.Context, cfg SessionConfig) (ModelSession, error)
}

// DownloadProgress reports model download progress in [0, 1].
type DownloadProgress func(loaded float64)

// Translator converts text between a fixed language pair.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
	SourceLanguage() string
	TargetLanguage() string
}

// TranslatorFactory creates translators for language pairs.
type TranslatorFactory interface {
	Availability(ctx context.Context, source, target string) (Availability, error)
	Create(ctx context.Context, source, target string, monitor DownloadProgress) (Translator, error)
}

// SummarizeOptions mirrors the original summarizer configuration.
type SummarizeOptions struct {
	Type           string // e.g. "key-points"
	Format         string // e.g. "markdown"
	Length         string // e.g. "medium"
	InputLanguages []string
	OutputLanguage string
	Context        string
}

// Summarizer condenses text.
type Summarizer interface {
	Availability(ctx context.Context) (Availability, error)
	Summarize(ctx context.Context, text string, opts SummarizeOptions) (string, error)
}

// Detection is one language detection candidate.
type Detection struct {
	DetectedLanguage string
	Confidence       float64
}

// LanguageDetector identifies the language of a text.
type LanguageDetector interface {
	Availability(ctx context.Context) (Availability, error)
	Detect(ctx context.Context, text string) ([]Detection, error)
}
