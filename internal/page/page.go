// Package page collects readable text segments from a web page and marks the
// segment currently being read. Two implementations share one exclusion
// policy: a live-DOM one driving a browser over the DevTools protocol, and a
// static HTML one for headless use and tests.
package page

import (
	"context"
	"errors"
)

// Segment is one readable run of page text. ID is the collector-assigned
// position used to address the segment's node on the live page.
type Segment struct {
	ID   int
	Text string
}

// ErrSegmentVanished means a segment's node left the DOM after collection.
// Readers skip the segment and continue.
var ErrSegmentVanished = errors.New("segment no longer in page")

// Collector extracts the readable segments of the current page in document
// order.
type Collector interface {
	Collect(ctx context.Context) ([]Segment, error)
}

// Marker visually marks the segment being read.
type Marker interface {
	// Mark highlights the segment, replacing any previous mark.
	// Returns ErrSegmentVanished when the node is gone.
	Mark(ctx context.Context, seg Segment) error
	// Unmark clears the segment's highlight. Safe on vanished segments.
	Unmark(ctx context.Context, seg Segment) error
	// Clear removes any mark unconditionally.
	Clear(ctx context.Context) error
}

// excludedTags never contribute readable text.
var excludedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"img":      true,
	"video":    true,
	"svg":      true,
	"noscript": true,
	"iframe":   true,
}

// excludedAncestors are chrome regions skipped wholesale.
var excludedAncestors = map[string]bool{
	"header": true,
	"footer": true,
	"nav":    true,
	"aside":  true,
}

// defaultMinSegmentLength filters out tiny UI text.
const defaultMinSegmentLength = 5
