// Package render turns html topic attributes into markdown
package render

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/foomo/contentserver-topics/service/vo"
	"golang.org/x/net/html"
)

// Markdown converts an html fragment, an empty selector converts the whole body
func Markdown(fragment, selector string) (vo.Markdown, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	if selector == "" {
		selector = "body"
	}
	selectedNode, err := extractNodeBySelector(doc, selector)
	if err != nil {
		return "", fmt.Errorf("failed to extract node with selector '%s': %w", selector, err)
	}
	markdownBytes, err := htmltomarkdown.ConvertNode(selectedNode)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return vo.Markdown(strings.TrimSpace(string(markdownBytes))), nil
}

// Attributes renders the listed attributes of a topic in order, joined by blank lines.
// Attributes that are missing or empty are skipped.
func Attributes(attributes map[string]string, keys []string, selector string) (vo.Markdown, error) {
	var parts []string
	for _, key := range keys {
		value, ok := attributes[key]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		md, err := Markdown(value, selector)
		if err != nil {
			return "", fmt.Errorf("failed to render attribute %q: %w", key, err)
		}
		if md != "" {
			parts = append(parts, string(md))
		}
	}
	return vo.Markdown(strings.Join(parts, "\n\n")), nil
}

// Headline returns the text of the first heading of an html fragment
func Headline(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	for _, tag := range []string{"h1", "h2", "h3"} {
		if node, err := findNodeByTag(doc, tag); err == nil {
			return strings.TrimSpace(textContent(node))
		}
	}
	return extractTitle(doc)
}
