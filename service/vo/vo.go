package vo

import "encoding/json"

type Markdown string

type Format string

const (
	FormatTree   Format = "tree"
	FormatTokens Format = "tokens"
)

// ResultNode is the projection of a matched topic
type ResultNode struct {
	ID        int    `json:"id"`
	Key       string `json:"key"`
	Title     string `json:"text"`
	UniqueKey string `json:"path"`
	WebPath   string `json:"webPath"`
	// IsChecked is nil unless checkboxes are enabled
	IsChecked   *bool         `json:"checked,omitempty"`
	IsDraggable bool          `json:"draggable"`
	IsLeaf      bool          `json:"leaf"`
	IsExpanded  bool          `json:"expanded"`
	Children    []*ResultNode `json:"children"`
}

// Token is the flat shape consumed by tokenized pickers
type Token struct {
	ID        int    `json:"id"`
	Key       string `json:"key"`
	Title     string `json:"text"`
	UniqueKey string `json:"path"`
	IsChecked *bool  `json:"checked,omitempty"`
}

// Tokens flattens result nodes depth first into picker tokens
func Tokens(nodes []*ResultNode) []Token {
	tokens := []Token{}
	var add func(nodes []*ResultNode)
	add = func(nodes []*ResultNode) {
		for _, node := range nodes {
			tokens = append(tokens, Token{
				ID:        node.ID,
				Key:       node.Key,
				Title:     node.Title,
				UniqueKey: node.UniqueKey,
				IsChecked: node.IsChecked,
			})
			add(node.Children)
		}
	}
	add(nodes)
	return tokens
}

type QueryRequest struct {
	// RootKey is the unique key of the query root, empty for the graph root
	RootKey          string   `json:"rootKey,omitempty"`
	ShowRoot         bool     `json:"showRoot"`
	ShowAll          *bool    `json:"showAll,omitempty"`
	UseKeyAsText     bool     `json:"useKeyAsText"`
	IsRecursive      *bool    `json:"isRecursive,omitempty"`
	FlattenStructure bool     `json:"flattenStructure"`
	ShowNestedTopics bool     `json:"showNestedTopics"`
	UsePartialMatch  bool     `json:"usePartialMatch"`
	RelaxedMatch     bool     `json:"relaxedMatch"`
	ResultLimit      *int     `json:"resultLimit,omitempty"`
	AttributeName    string   `json:"attributeName,omitempty"`
	AttributeValue   string   `json:"attributeValue,omitempty"`
	Query            string   `json:"query,omitempty"`
	RelatedTopicID   int      `json:"relatedTopicId,omitempty"`
	RelatedNamespace string   `json:"relatedNamespace,omitempty"`
	RelatedKeys      []string `json:"relatedKeys,omitempty"`
	MarkRelated      bool     `json:"markRelated"`
	EnableCheckboxes bool     `json:"enableCheckboxes"`
	NoExpandRelated  bool     `json:"noExpandRelated"`
	Format           Format   `json:"format,omitempty"`
}

type QueryResponse struct {
	Format Format        `json:"format"`
	Nodes  []*ResultNode `json:"nodes,omitempty"`
	Tokens []Token       `json:"tokens,omitempty"`
	Count  int           `json:"count"`
}

// MarshalJSON always emits the result list of the response format, empty when nothing matched
func (r QueryResponse) MarshalJSON() ([]byte, error) {
	if r.Format == FormatTokens {
		tokens := r.Tokens
		if tokens == nil {
			tokens = []Token{}
		}
		return json.Marshal(struct {
			Format Format  `json:"format"`
			Tokens []Token `json:"tokens"`
			Count  int     `json:"count"`
		}{r.Format, tokens, r.Count})
	}
	nodes := r.Nodes
	if nodes == nil {
		nodes = []*ResultNode{}
	}
	return json.Marshal(struct {
		Format Format        `json:"format"`
		Nodes  []*ResultNode `json:"nodes"`
		Count  int           `json:"count"`
	}{FormatTree, nodes, r.Count})
}

type ResolvePathRequest struct {
	UniqueKey           string `json:"uniqueKey"`
	AttributeKey        string `json:"attributeKey"`
	InheritValue        *bool  `json:"inheritValue,omitempty"`
	RelativeToTopicPath *bool  `json:"relativeToTopicPath,omitempty"`
	IncludeCurrentTopic *bool  `json:"includeCurrentTopic,omitempty"`
	BaseTopicPath       string `json:"baseTopicPath,omitempty"`
}

type TopicSummary struct {
	ID          int    `json:"id"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	UniqueKey   string `json:"uniqueKey"`
	WebPath     string `json:"webPath"`
	ContentType string `json:"contentType"`
}

type TopicDocument struct {
	TopicSummary `json:"summary"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Markdown     Markdown          `json:"markdown,omitempty"`

	Breadcrumb   []TopicSummary `json:"breadcrumb,omitempty"`
	Children     []TopicSummary `json:"children,omitempty"`
	PrevSiblings []TopicSummary `json:"prev,omitempty"`
	NextSiblings []TopicSummary `json:"next,omitempty"`
}
