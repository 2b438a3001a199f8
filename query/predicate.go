package query

import (
	"strings"

	"github.com/foomo/contentserver-topics/topic"
)

// IsValid reports whether node qualifies for the result given the remaining budget.
// A remaining budget of Unbounded never runs out.
func IsValid(node topic.Node, opts Options, remaining int) bool {
	if !opts.ShowAll && !node.IsVisible() {
		return false
	}
	if !opts.ShowNestedTopics && node.ContentType() == topic.ContentTypeList {
		return false
	}
	if remaining == 0 {
		return false
	}
	if opts.HasAttributeFilter() && !matchAttribute(node, opts) {
		return false
	}
	if !matchQuery(node, opts.Query) {
		return false
	}
	return true
}

func matchAttribute(node topic.Node, opts Options) bool {
	var actual string
	if opts.AttributeName == AttributeContentType {
		actual = node.ContentType()
	} else {
		actual = node.Attributes()[opts.AttributeName]
	}
	switch opts.attributeMatch() {
	case MatchContains:
		return strings.Contains(actual, opts.AttributeValue)
	case MatchLegacyPartial:
		if !strings.Contains(actual, opts.AttributeValue) {
			return false
		}
		return actual == opts.AttributeValue
	default:
		return actual == opts.AttributeValue
	}
}

// matchQuery requires every term to occur in at least one attribute value
func matchQuery(node topic.Node, query string) bool {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return true
	}
	attributes := node.Attributes()
	values := make([]string, 0, len(attributes))
	for _, value := range attributes {
		values = append(values, strings.ToLower(value))
	}
	for _, term := range terms {
		term = strings.ToLower(term)
		found := false
		for _, value := range values {
			if strings.Contains(value, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
