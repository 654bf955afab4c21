package reconstruct

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ExtractDocument normalizes a raw model reply into a standalone HTML
// document: markdown fences are stripped, a missing DOCTYPE is
// prepended, and the result must parse with actual element content.
// Anything else is ErrMalformedOutput — the caller never sees a
// partially-formed document.
func ExtractDocument(raw string) (string, error) {
	doc := strings.TrimSpace(raw)
	if doc == "" {
		return "", fmt.Errorf("%w: empty reply", ErrMalformedOutput)
	}

	doc = stripFences(doc)

	// The reply must begin at a document root, not prose around one.
	if !strings.HasPrefix(doc, "<") {
		return "", fmt.Errorf("%w: reply does not start with markup", ErrMalformedOutput)
	}

	if !strings.HasPrefix(strings.ToLower(doc), "<!doctype") {
		doc = "<!DOCTYPE html>\n" + doc
	}

	parsed, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if !hasElementContent(parsed) {
		return "", fmt.Errorf("%w: no element content", ErrMalformedOutput)
	}

	return doc, nil
}

// stripFences removes a surrounding markdown code fence (``` or ```html).
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		return s
	}
	body = strings.TrimRight(strings.TrimSpace(body), "`")
	return strings.TrimSpace(body)
}

// hasElementContent reports whether the parsed tree contains anything
// beyond the skeleton the lenient parser always synthesizes.
func hasElementContent(doc *html.Node) bool {
	var head, body *html.Node
	var find func(n *html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "head":
				head = n
			case "body":
				body = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)

	for _, n := range []*html.Node{head, body} {
		if n == nil {
			continue
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				return true
			}
			if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
				return true
			}
		}
	}
	return false
}
