package capture

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CountAssets walks serialized DOM content and tallies the elements that
// reference page assets: <img>, <link rel="stylesheet">, <script> and <a>.
// The parser is lenient, so any input yields an inventory; a page with
// zero assets is a valid result, not an error.
func CountAssets(rawHTML string) AssetInventory {
	var inv AssetInventory

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return inv
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Img:
				inv.Images++
			case atom.Link:
				if isStylesheet(n) {
					inv.Stylesheets++
				}
			case atom.Script:
				inv.Scripts++
			case atom.A:
				inv.Links++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return inv
}

// isStylesheet reports whether a <link> node carries rel=stylesheet.
// The rel attribute is a space-separated token list and case-insensitive.
func isStylesheet(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "rel" {
			continue
		}
		for _, token := range strings.Fields(a.Val) {
			if strings.EqualFold(token, "stylesheet") {
				return true
			}
		}
	}
	return false
}
