package page

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// StaticCollector extracts readable segments from parsed HTML without a
// browser. It applies the same exclusion policy as the live collector, minus
// the computed-style checks a static document cannot answer; inline
// style="display:none" is still honored.
type StaticCollector struct {
	root   *html.Node
	minLen int
}

// NewStaticCollector parses the document from r.
func NewStaticCollector(r io.Reader) (*StaticCollector, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &StaticCollector{root: root, minLen: defaultMinSegmentLength}, nil
}

// SetMinSegmentLength overrides the minimum readable segment length.
// Non-positive values keep the default.
func (c *StaticCollector) SetMinSegmentLength(n int) {
	if n > 0 {
		c.minLen = n
	}
}

// ParseStatic is a convenience for string input.
func ParseStatic(doc string) (*StaticCollector, error) {
	return NewStaticCollector(strings.NewReader(doc))
}

// Collect returns the document's readable segments in document order.
func (c *StaticCollector) Collect(ctx context.Context) ([]Segment, error) {
	body := findElement(c.root, "body")
	if body == nil {
		return nil, nil
	}

	var segments []Segment
	var walk func(n *html.Node, excluded bool)
	walk = func(n *html.Node, excluded bool) {
		if n.Type == html.ElementNode {
			if excludedTags[n.Data] || hiddenByAttrs(n) {
				return
			}
			if excludedAncestors[n.Data] || chromeByRole(n) {
				excluded = true
			}
		}
		if n.Type == html.TextNode && !excluded {
			text := strings.TrimSpace(n.Data)
			if len(text) >= c.minLen {
				segments = append(segments, Segment{ID: len(segments), Text: collapseSpace(text)})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child, excluded)
		}
	}
	walk(body, false)
	return segments, nil
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, name); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func hiddenByAttrs(n *html.Node) bool {
	// The hidden attribute is boolean: presence hides, whatever the value.
	if hasAttr(n, "hidden") || n.Data == "template" {
		return true
	}
	style := strings.ReplaceAll(strings.ToLower(attr(n, "style")), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

func chromeByRole(n *html.Node) bool {
	switch attr(n, "role") {
	case "banner", "alert":
		return true
	}
	return attr(n, "aria-modal") == "true"
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
