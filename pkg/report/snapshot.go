package report

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultSnapshotLength bounds cleaned snapshots in terminal output.
const DefaultSnapshotLength = 4000

// CleanedSnapshot is a failure snapshot reduced to its structure.
type CleanedSnapshot struct {
	HTML      string
	Labels    []string
	Truncated bool
}

// CleanSnapshot strips scripts, styles and noise attributes from captured
// markup, keeping what identifies save panel items. Labels collects the text
// of every checkbox label, which for the save panel is the dirty entity list.
func CleanSnapshot(rawHTML string, maxLength int) (*CleanedSnapshot, error) {
	if maxLength <= 0 {
		maxLength = DefaultSnapshotLength
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(rawHTML), body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	c := &cleaner{max: maxLength}
	for _, n := range nodes {
		if c.node(n, 0) {
			c.result.Truncated = true
			break
		}
	}
	for _, n := range nodes {
		c.result.Labels = append(c.result.Labels, labels(n)...)
	}

	c.result.HTML = strings.TrimSpace(c.b.String())
	return &c.result, nil
}

type cleaner struct {
	b      strings.Builder
	length int
	max    int
	result CleanedSnapshot
}

// node writes n and reports whether output was truncated.
func (c *cleaner) node(n *html.Node, depth int) bool {
	if c.length >= c.max {
		return true
	}

	switch n.Type {
	case html.CommentNode:
		return false
	case html.TextNode:
		return c.text(n)
	case html.ElementNode:
		if isSkippedElement(n.Data) {
			return false
		}
		return c.element(n, depth)
	}
	return c.children(n, depth)
}

func (c *cleaner) text(n *html.Node) bool {
	text := strings.TrimSpace(n.Data)
	if text == "" {
		return false
	}

	if c.length+len(text) > c.max {
		c.b.WriteString(html.EscapeString(text[:c.max-c.length]) + "...")
		c.length = c.max
		return true
	}

	c.b.WriteString(html.EscapeString(text))
	c.length += len(text)
	return false
}

func (c *cleaner) element(n *html.Node, depth int) bool {
	tag := strings.ToLower(n.Data)

	if isBlockElement(tag) {
		c.b.WriteString("\n")
		c.b.WriteString(strings.Repeat("  ", depth))
	}

	c.b.WriteString("<" + tag)
	for _, attr := range n.Attr {
		if keepAttribute(tag, attr.Key) {
			fmt.Fprintf(&c.b, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
		}
	}
	c.b.WriteString(">")
	c.length += len(tag) + 2

	truncated := c.children(n, depth+1)

	if !isVoidElement(tag) {
		if isBlockElement(tag) {
			c.b.WriteString("\n")
			c.b.WriteString(strings.Repeat("  ", depth))
		}
		c.b.WriteString("</" + tag + ">")
		c.length += len(tag) + 3
	}
	return truncated
}

func (c *cleaner) children(n *html.Node, depth int) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if c.node(child, depth) {
			return true
		}
	}
	return false
}

// labels returns the text of every label element below n.
func labels(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Label {
			if text := strings.Join(strings.Fields(textContent(n)), " "); text != "" {
				out = append(out, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
		b.WriteString(" ")
	}
	return b.String()
}

func isSkippedElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "script", "style", "noscript", "iframe", "svg", "path":
		return true
	}
	return false
}

func isBlockElement(tag string) bool {
	switch tag {
	case "div", "p", "section", "header", "footer", "ul", "ol", "li", "form", "fieldset", "label", "h1", "h2", "h3":
		return true
	}
	return false
}

func isVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "source", "wbr":
		return true
	}
	return false
}

// keepAttribute keeps attributes that selectors and state checks rely on.
func keepAttribute(tag, key string) bool {
	key = strings.ToLower(key)
	switch {
	case key == "id", key == "class", key == "role":
		return true
	case strings.HasPrefix(key, "aria-"), strings.HasPrefix(key, "data-"):
		return true
	case tag == "input":
		return key == "type" || key == "checked" || key == "name"
	case tag == "button":
		return key == "type" || key == "disabled"
	}
	return false
}
