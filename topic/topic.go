package topic

import (
	"sort"
	"strings"
)

const (
	// ContentTypeList marks a nested topic container
	ContentTypeList = "List"

	AttributeDisableDelete = "DisableDelete"
	AttributeIsHidden      = "IsHidden"

	uniqueKeySeparator = ":"
)

// Node is a read-only view of a topic in the content hierarchy
type Node interface {
	ID() int
	Key() string
	// Title may be empty, consumers fall back to Key
	Title() string
	ContentType() string
	// UniqueKey is the colon delimited path from the graph root e.g. Root:Web:Config
	UniqueKey() string
	// WebPath is the http style path e.g. /Web/Config/
	WebPath() string
	Attributes() map[string]string
	Children() []Node
	// Parent returns nil for the graph root
	Parent() Node
	IsVisible() bool
}

// Topic is the in-memory Node implementation
type Topic struct {
	id            int
	key           string
	title         string
	contentType   string
	attributes    map[string]string
	children      []*Topic
	parent        *Topic
	relationships map[string][]*Topic
}

var _ Node = (*Topic)(nil)

// New creates a detached topic, attach it with AddChild or use it as a graph root
func New(id int, key, contentType string) *Topic {
	return &Topic{
		id:          id,
		key:         key,
		contentType: contentType,
		attributes:  map[string]string{},
	}
}

func (t *Topic) ID() int             { return t.id }
func (t *Topic) Key() string         { return t.key }
func (t *Topic) Title() string       { return t.title }
func (t *Topic) ContentType() string { return t.contentType }

// WithTitle sets the display title and returns the topic for chaining
func (t *Topic) WithTitle(title string) *Topic {
	t.title = title
	return t
}

// SetAttribute sets an attribute value and returns the topic for chaining
func (t *Topic) SetAttribute(key, value string) *Topic {
	t.attributes[key] = value
	return t
}

// Attributes returns the live attribute map, callers must not modify it
func (t *Topic) Attributes() map[string]string {
	return t.attributes
}

// AddChild appends child to the ordered child list and sets its parent
func (t *Topic) AddChild(child *Topic) *Topic {
	child.parent = t
	t.children = append(t.children, child)
	return child
}

func (t *Topic) Children() []Node {
	nodes := make([]Node, len(t.children))
	for i, child := range t.children {
		nodes[i] = child
	}
	return nodes
}

func (t *Topic) Parent() Node {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

func (t *Topic) IsVisible() bool {
	return !IsTruthy(t.attributes[AttributeIsHidden])
}

func (t *Topic) UniqueKey() string {
	if t.parent == nil {
		return t.key
	}
	return t.parent.UniqueKey() + uniqueKeySeparator + t.key
}

func (t *Topic) WebPath() string {
	if t.parent == nil {
		return "/"
	}
	return t.parent.WebPath() + t.key + "/"
}

// Relate records target as related to t within namespace
func (t *Topic) Relate(namespace string, target *Topic) {
	if t.relationships == nil {
		t.relationships = map[string][]*Topic{}
	}
	t.relationships[namespace] = append(t.relationships[namespace], target)
}

// Related lists the related topics of a namespace, an empty namespace yields all of them
func (t *Topic) Related(namespace string) []Node {
	var nodes []Node
	if namespace != "" {
		for _, target := range t.relationships[namespace] {
			nodes = append(nodes, target)
		}
		return nodes
	}
	namespaces := make([]string, 0, len(t.relationships))
	for ns := range t.relationships {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	for _, ns := range namespaces {
		for _, target := range t.relationships[ns] {
			nodes = append(nodes, target)
		}
	}
	return nodes
}

// Relator is implemented by nodes that carry namespaced relationships
type Relator interface {
	Related(namespace string) []Node
}

// IsTruthy interprets attribute flags, the editor stores them as "1"/"0"
func IsTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
