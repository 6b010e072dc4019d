// Package notify delivers user-facing status notifications. Every operation
// outcome is rendered through a Notifier, so transports can range from log
// lines to an in-page overlay.
package notify

import (
	"context"

	"github.com/google/uuid"

	"voxmate/internal/logging"
)

// Kind classifies a notification's visual treatment.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindLoading Kind = "loading"
)

// Notification is one user-facing message.
type Notification struct {
	ID         string
	Title      string
	Body       string
	Kind       Kind
	AutoHide   bool
	DurationMs int
}

// Notifier shows and dismisses notifications.
type Notifier interface {
	// Show displays the notification and returns its id. Loading
	// notifications stay up until dismissed; the others auto-hide when
	// AutoHide is set.
	Show(ctx context.Context, n Notification) string
	// Dismiss removes a notification by id. Unknown ids are ignored.
	Dismiss(ctx context.Context, id string)
}

// Info shows a standard auto-hiding message.
func Info(ctx context.Context, n Notifier, title, body string) {
	n.Show(ctx, Notification{Title: title, Body: body, Kind: KindInfo, AutoHide: true, DurationMs: 4000})
}

// Success shows an auto-hiding success message.
func Success(ctx context.Context, n Notifier, title, body string) {
	n.Show(ctx, Notification{Title: title, Body: body, Kind: KindSuccess, AutoHide: true, DurationMs: 4000})
}

// Errorf shows a sticky error message.
func Errorf(ctx context.Context, n Notifier, title, body string) {
	n.Show(ctx, Notification{Title: title, Body: body, Kind: KindError})
}

// Loading shows a persistent progress message and returns the id to dismiss
// when the operation settles.
func Loading(ctx context.Context, n Notifier, title, body string) string {
	return n.Show(ctx, Notification{Title: title, Body: body, Kind: KindLoading})
}

// LogNotifier renders notifications as log lines. Used headless and as the
// fallback when no page overlay is attached.
type LogNotifier struct{}

// NewLogNotifier returns a log-backed notifier.
func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (l *LogNotifier) Show(ctx context.Context, n Notification) string {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	log := logging.Get(logging.CategoryBrowser)
	switch n.Kind {
	case KindError:
		log.Error("[%s] %s: %s", n.Kind, n.Title, n.Body)
	case KindWarning:
		log.Warn("[%s] %s: %s", n.Kind, n.Title, n.Body)
	default:
		log.Info("[%s] %s: %s", n.Kind, n.Title, n.Body)
	}
	return n.ID
}

func (l *LogNotifier) Dismiss(ctx context.Context, id string) {}
