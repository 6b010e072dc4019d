package command

import (
	"context"

	"voxmate/internal/logging"
)

// ClassifierFunc is the fallback classification contract consumed by the
// resolver. *Classifier satisfies it via its Classify method.
type ClassifierFunc interface {
	Classify(ctx context.Context, raw, lang string) (Command, error)
}

// Resolver resolves raw utterances: local phrase matching first, with the
// AI classifier as fallback when the matcher yields only unknown.
type Resolver struct {
	classifier ClassifierFunc
}

// NewResolver creates a resolver. classifier may be nil, in which case
// unmatched utterances stay unknown.
func NewResolver(classifier ClassifierFunc) *Resolver {
	return &Resolver{classifier: classifier}
}

// Resolve maps raw text to an ordered command list. Almost always length 1;
// callers execute commands in list order.
//
// Classifier failures (including timeouts) are logged and swallowed: the
// result simply stays unknown, so resolution itself never fails.
func (r *Resolver) Resolve(ctx context.Context, raw, lang string) []Command {
	commands := Match(raw, lang)
	if !isSoleUnknown(commands) {
		logging.Commands("matcher resolved %q -> %s", raw, commands[0].Kind)
		return commands
	}

	if r.classifier == nil {
		return commands
	}

	result, err := r.classifier.Classify(ctx, raw, lang)
	if err != nil {
		logging.CommandsWarn("classifier fallback failed for %q: %v", raw, err)
		return commands
	}
	if result.Kind == "" {
		return commands
	}
	return []Command{result}
}

func isSoleUnknown(commands []Command) bool {
	return len(commands) == 1 && commands[0].Kind == KindUnknown
}
