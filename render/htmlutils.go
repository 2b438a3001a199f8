package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// extractNodeBySelector supports #id, .class and tag selectors
func extractNodeBySelector(doc *html.Node, selector string) (*html.Node, error) {
	switch {
	case strings.HasPrefix(selector, "#"):
		return findNodeByID(doc, strings.TrimPrefix(selector, "#"))
	case strings.HasPrefix(selector, "."):
		return findNodeByClass(doc, strings.TrimPrefix(selector, "."))
	default:
		return findNodeByTag(doc, selector)
	}
}

func findNodeByID(n *html.Node, id string) (*html.Node, error) {
	if found := findNode(n, func(n *html.Node) bool {
		return attr(n, "id") == id
	}); found != nil {
		return found, nil
	}
	return nil, fmt.Errorf("element with id '%s' not found", id)
}

func findNodeByClass(n *html.Node, class string) (*html.Node, error) {
	if found := findNode(n, func(n *html.Node) bool {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}); found != nil {
		return found, nil
	}
	return nil, fmt.Errorf("element with class '%s' not found", class)
}

func findNodeByTag(n *html.Node, tag string) (*html.Node, error) {
	if found := findNode(n, func(n *html.Node) bool {
		return n.Data == tag
	}); found != nil {
		return found, nil
	}
	return nil, fmt.Errorf("element with tag '%s' not found", tag)
}

// findNode returns the first element node in document order matching fn
func findNode(n *html.Node, fn func(n *html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && fn(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, fn); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

// extractTitle extracts the title element of an html document
func extractTitle(doc *html.Node) string {
	if title, err := findNodeByTag(doc, "title"); err == nil {
		return strings.TrimSpace(textContent(title))
	}
	return ""
}
