package notify

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/google/uuid"

	"voxmate/internal/logging"
)

// OverlayNotifier renders notifications as floating cards injected into the
// live page, mirroring the behavior of an in-page toast stack.
type OverlayNotifier struct {
	page *rod.Page
}

// NewOverlayNotifier creates a notifier bound to the given page.
func NewOverlayNotifier(page *rod.Page) *OverlayNotifier {
	return &OverlayNotifier{page: page}
}

var kindColors = map[Kind]string{
	KindInfo:    "#2196f3",
	KindSuccess: "#4caf50",
	KindWarning: "#ff9800",
	KindError:   "#f44336",
	KindLoading: "#9e9e9e",
}

const showJS = `
(id, title, body, color, autoHide, durationMs) => {
	let stack = document.getElementById('__voxmate_toasts');
	if (!stack) {
		stack = document.createElement('div');
		stack.id = '__voxmate_toasts';
		stack.style.cssText = 'position:fixed;top:16px;right:16px;z-index:2147483647;' +
			'display:flex;flex-direction:column;gap:8px;font-family:sans-serif;';
		document.documentElement.appendChild(stack);
	}
	const card = document.createElement('div');
	card.id = id;
	card.style.cssText = 'background:#fff;border-left:4px solid ' + color + ';' +
		'box-shadow:0 2px 8px rgba(0,0,0,.25);border-radius:4px;padding:10px 14px;' +
		'max-width:320px;font-size:13px;color:#222;';
	const strong = document.createElement('strong');
	strong.textContent = title;
	const p = document.createElement('div');
	p.textContent = body;
	card.appendChild(strong);
	card.appendChild(p);
	stack.appendChild(card);
	if (autoHide) setTimeout(() => card.remove(), durationMs > 0 ? durationMs : 4000);
}
`

func (o *OverlayNotifier) Show(ctx context.Context, n Notification) string {
	if n.ID == "" {
		n.ID = "voxmate_toast_" + uuid.NewString()
	}
	color, ok := kindColors[n.Kind]
	if !ok {
		color = kindColors[KindInfo]
	}
	_, err := o.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      showJS,
		JSArgs:  []interface{}{n.ID, n.Title, n.Body, color, n.AutoHide, n.DurationMs},
		ByValue: true,
	})
	if err != nil {
		logging.BrowserDebug("overlay notification failed: %v", err)
	}
	return n.ID
}

func (o *OverlayNotifier) Dismiss(ctx context.Context, id string) {
	_, _ = o.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      `(id) => { const el = document.getElementById(id); if (el) el.remove(); }`,
		JSArgs:  []interface{}{id},
		ByValue: true,
	})
}
