package page

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"

	"voxmate/internal/logging"
)

// RodPage drives a live browser page: segment collection, highlight marking,
// body-text extraction, and translated-text application. Node references are
// held page-side in a shared registry so Go addresses segments by position.
type RodPage struct {
	page   *rod.Page
	minLen int
}

// NewRodPage wraps an attached page.
func NewRodPage(page *rod.Page) *RodPage {
	return &RodPage{page: page, minLen: defaultMinSegmentLength}
}

// SetMinSegmentLength overrides the minimum readable segment length.
// Non-positive values keep the default.
func (p *RodPage) SetMinSegmentLength(n int) {
	if n > 0 {
		p.minLen = n
	}
}

const collectJS = `
(minLen) => {
	const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT, {
		acceptNode(node) {
			const text = node.nodeValue.trim();
			if (!text) return NodeFilter.FILTER_REJECT;
			const el = node.parentElement;
			if (!el) return NodeFilter.FILTER_REJECT;
			const tag = el.tagName.toLowerCase();
			if (['script','style','img','video','svg','noscript','iframe'].includes(tag))
				return NodeFilter.FILTER_REJECT;
			const style = getComputedStyle(el);
			if (style.display === 'none' || style.visibility === 'hidden')
				return NodeFilter.FILTER_REJECT;
			if (el.closest('header, footer, nav, aside, [role="banner"], [role="alert"], [aria-modal="true"]'))
				return NodeFilter.FILTER_REJECT;
			if (!el.innerText || el.innerText.length < minLen)
				return NodeFilter.FILTER_REJECT;
			return NodeFilter.FILTER_ACCEPT;
		}
	});
	const nodes = [];
	const texts = [];
	while (walker.nextNode()) {
		nodes.push(walker.currentNode);
		texts.push(walker.currentNode.nodeValue.trim());
	}
	window.__voxmateSegments = nodes;
	window.__voxmateMark = null;
	return texts;
}
`

// Collect walks the live DOM and returns its readable segments. The page-side
// node registry is replaced on every call, so stale ids from an earlier
// collection never address the wrong node.
func (p *RodPage) Collect(ctx context.Context) ([]Segment, error) {
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      collectJS,
		JSArgs:  []interface{}{p.minLen},
		ByValue: true,
	})
	if err != nil {
		return nil, fmt.Errorf("segment collection failed: %w", err)
	}

	var texts []string
	if err := res.Value.Unmarshal(&texts); err != nil {
		return nil, fmt.Errorf("segment collection returned unexpected shape: %w", err)
	}

	segments := make([]Segment, 0, len(texts))
	for i, text := range texts {
		segments = append(segments, Segment{ID: i, Text: text})
	}
	logging.Browser("collected %d segments", len(segments))
	return segments, nil
}

const markJS = `
(id) => {
	const prev = window.__voxmateMark;
	if (prev && prev.parentNode) {
		prev.parentNode.replaceChild(document.createTextNode(prev.textContent), prev);
	}
	window.__voxmateMark = null;

	const nodes = window.__voxmateSegments || [];
	const node = nodes[id];
	if (!node || !node.parentNode) return { ok: false };

	const span = document.createElement('span');
	span.style.backgroundColor = '#ffeb3b80';
	span.style.borderRadius = '3px';
	span.textContent = node.nodeValue;
	node.parentNode.replaceChild(span, node);
	window.__voxmateMark = span;
	// Keep the registry addressing the live text node inside the span.
	nodes[id] = span.firstChild;
	return { ok: true };
}
`

// Mark highlights the segment's node, removing any previous highlight first.
func (p *RodPage) Mark(ctx context.Context, seg Segment) error {
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      markJS,
		JSArgs:  []interface{}{seg.ID},
		ByValue: true,
	})
	if err != nil {
		return fmt.Errorf("mark segment %d: %w", seg.ID, err)
	}
	if !res.Value.Get("ok").Bool() {
		return ErrSegmentVanished
	}
	return nil
}

const unmarkJS = `
() => {
	const span = window.__voxmateMark;
	if (span && span.style) span.style.backgroundColor = 'transparent';
	window.__voxmateMark = null;
}
`

// Unmark fades the current highlight. Vanished nodes are ignored.
func (p *RodPage) Unmark(ctx context.Context, seg Segment) error {
	_, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      unmarkJS,
		ByValue: true,
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("unmark segment %d: %w", seg.ID, err)
	}
	return nil
}

// Clear removes the highlight and restores the original text node.
func (p *RodPage) Clear(ctx context.Context) error {
	_, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS: `
		() => {
			const span = window.__voxmateMark;
			if (span && span.parentNode) {
				span.parentNode.replaceChild(document.createTextNode(span.textContent), span);
			}
			window.__voxmateMark = null;
		}`,
		ByValue: true,
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("clear mark: %w", err)
	}
	return nil
}

// BodyText returns the page's visible text, truncated to limit characters.
// limit <= 0 means no truncation.
func (p *RodPage) BodyText(ctx context.Context, limit int) (string, error) {
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      `(limit) => limit > 0 ? document.body.innerText.slice(0, limit) : document.body.innerText`,
		JSArgs:  []interface{}{limit},
		ByValue: true,
	})
	if err != nil {
		return "", fmt.Errorf("body text extraction failed: %w", err)
	}
	return res.Value.String(), nil
}

const applyTranslationJS = `
(translated) => {
	const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT);
	const translatedWords = translated.split(/\s+/);
	let index = 0;
	let applied = 0;
	while (walker.nextNode()) {
		const node = walker.currentNode;
		const words = node.nodeValue.trim().split(/\s+/);
		if (words.length > 2) {
			node.nodeValue = translatedWords.slice(index, index + words.length).join(' ');
			index += words.length;
			applied++;
		}
	}
	return applied;
}
`

// ApplyTranslation redistributes translated text across the page's multi-word
// text nodes in document order, leaving short UI strings untouched.
func (p *RodPage) ApplyTranslation(ctx context.Context, translated string) error {
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      applyTranslationJS,
		JSArgs:  []interface{}{translated},
		ByValue: true,
	})
	if err != nil {
		return fmt.Errorf("applying translation failed: %w", err)
	}
	logging.Browser("translation applied to %d text nodes", res.Value.Int())
	return nil
}
