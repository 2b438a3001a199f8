package query

import (
	"fmt"

	"github.com/foomo/contentserver-topics/topic"
)

// Unbounded disables the result limit
const Unbounded = -1

// AttributeName that filters on the node content type instead of its attributes
const AttributeContentType = "ContentType"

// AttributeMatch selects how AttributeValue is compared
type AttributeMatch int

const (
	// MatchDefault derives the mode from UsePartialMatch
	MatchDefault AttributeMatch = iota
	// MatchExact requires the value to be equal
	MatchExact
	// MatchLegacyPartial requires a substring match and an exact match, which
	// collapses to exact matching. Kept for compatibility with existing pickers.
	MatchLegacyPartial
	// MatchContains only requires a substring match
	MatchContains
)

func (m AttributeMatch) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchLegacyPartial:
		return "legacy-partial"
	case MatchContains:
		return "contains"
	default:
		return "default"
	}
}

// Options configures a topic query, use DefaultOptions as the starting point
type Options struct {
	// ShowRoot includes the root itself instead of starting with its children
	ShowRoot bool
	// ShowAll bypasses the visibility check
	ShowAll      bool
	UseKeyAsText bool
	// IsRecursive descends into the children of valid nodes
	IsRecursive bool
	// FlattenStructure emits every match into one list and descends regardless of validity
	FlattenStructure bool
	// ShowNestedTopics includes List containers
	ShowNestedTopics bool
	UsePartialMatch  bool
	AttributeMatch   AttributeMatch
	// ResultLimit caps the number of matches across the traversal, Unbounded disables it
	ResultLimit int
	// AttributeName enables the attribute filter, an empty AttributeValue filters on the empty value
	AttributeName  string
	AttributeValue string
	// Query holds whitespace separated search terms
	Query string

	RelatedTopicID   int
	RelatedNamespace string

	ForceMarkRelated      bool
	ForceCheckboxes       bool
	SuppressExpandRelated bool
}

func DefaultOptions() Options {
	return Options{
		ShowAll:     true,
		IsRecursive: true,
		ResultLimit: Unbounded,
	}
}

// MarkRelated enables checked state annotation from the related set
func (o Options) MarkRelated() bool {
	return o.RelatedTopicID > 0 || o.RelatedNamespace != "" || o.ForceMarkRelated
}

// EnableCheckboxes enables emitting a checked value at all
func (o Options) EnableCheckboxes() bool {
	return o.MarkRelated() || o.ForceCheckboxes
}

// ExpandRelated enables expanding ancestors of related topics
func (o Options) ExpandRelated() bool {
	return o.MarkRelated() && !o.SuppressExpandRelated
}

// HasAttributeFilter reports whether the attribute filter applies
func (o Options) HasAttributeFilter() bool {
	return o.AttributeName != ""
}

func (o Options) attributeMatch() AttributeMatch {
	if o.AttributeMatch != MatchDefault {
		return o.AttributeMatch
	}
	if o.UsePartialMatch {
		return MatchLegacyPartial
	}
	return MatchExact
}

// Validate rejects combinations that would otherwise be silently ignored
func (o Options) Validate() error {
	if o.ResultLimit < Unbounded {
		return fmt.Errorf("%w: result limit %d, use %d for unbounded", topic.ErrInvalidArgument, o.ResultLimit, Unbounded)
	}
	if o.AttributeName == "" && o.AttributeValue != "" {
		return fmt.Errorf("%w: attribute value %q without attribute name", topic.ErrInvalidArgument, o.AttributeValue)
	}
	if o.AttributeMatch < MatchDefault || o.AttributeMatch > MatchContains {
		return fmt.Errorf("%w: unknown attribute match mode %d", topic.ErrInvalidArgument, o.AttributeMatch)
	}
	if o.AttributeMatch == MatchContains && !o.UsePartialMatch {
		return fmt.Errorf("%w: contains matching requires partial match", topic.ErrInvalidArgument)
	}
	return nil
}
