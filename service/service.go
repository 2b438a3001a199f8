package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/foomo/contentserver-topics/query"
	"github.com/foomo/contentserver-topics/render"
	"github.com/foomo/contentserver-topics/service/vo"
	"github.com/foomo/contentserver-topics/topic"
	"github.com/foomo/contentserver-topics/topicpath"
)

// ErrTopicNotFound is returned for unknown topic keys and ids
var ErrTopicNotFound = fmt.Errorf("topic not found: %w", topic.ErrInvalidArgument)

type Service interface {
	QueryTopics(ctx context.Context, req *vo.QueryRequest) (*vo.QueryResponse, error)
	ResolvePath(ctx context.Context, req *vo.ResolvePathRequest) (string, error)
	GetTopic(ctx context.Context, uniqueKey string) (*vo.TopicDocument, error)
}

type DocumentSettings struct {
	MarkdownAttributes []string
	ContentSelector    string
}

type service struct {
	logger           *zap.Logger
	source           Source
	documentSettings DocumentSettings
}

func NewService(logger *zap.Logger, source Source, documentSettings DocumentSettings) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		logger:           logger,
		source:           source,
		documentSettings: documentSettings,
	}
}

func (s *service) QueryTopics(ctx context.Context, req *vo.QueryRequest) (*vo.QueryResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: query request is nil", topic.ErrInvalidArgument)
	}
	format := req.Format
	if format == "" {
		format = vo.FormatTree
	}
	if format != vo.FormatTree && format != vo.FormatTokens {
		// unknown formats share one label
		queriesTotal.WithLabelValues(formatInvalid, status(topic.ErrInvalidArgument)).Inc()
		return nil, fmt.Errorf("%w: unknown format %q", topic.ErrInvalidArgument, format)
	}
	start := time.Now()
	resp, err := s.queryTopics(ctx, req, format)
	queryDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	queriesTotal.WithLabelValues(string(format), status(err)).Inc()
	if err != nil {
		s.logger.Warn("topic query failed", zap.String("rootKey", req.RootKey), zap.Error(err))
		return nil, err
	}
	queryResults.Observe(float64(resp.Count))
	s.logger.Debug("topic query",
		zap.String("rootKey", req.RootKey),
		zap.String("format", string(format)),
		zap.Int("count", resp.Count),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func (s *service) queryTopics(ctx context.Context, req *vo.QueryRequest, format vo.Format) (*vo.QueryResponse, error) {
	graph, err := s.source.Root(ctx)
	if err != nil {
		return nil, err
	}
	root := graph
	if req.RootKey != "" {
		if root = topic.FindByUniqueKey(graph, req.RootKey); root == nil {
			return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, req.RootKey)
		}
	}
	related, err := relatedSet(graph, req)
	if err != nil {
		return nil, err
	}
	nodes, err := query.RunContext(ctx, root, queryOptions(req), related)
	if err != nil {
		return nil, err
	}
	resp := &vo.QueryResponse{Format: format, Count: query.Count(nodes)}
	if format == vo.FormatTokens {
		resp.Tokens = vo.Tokens(nodes)
	} else {
		resp.Nodes = nodes
	}
	return resp, nil
}

func queryOptions(req *vo.QueryRequest) query.Options {
	opts := query.DefaultOptions()
	opts.ShowRoot = req.ShowRoot
	if req.ShowAll != nil {
		opts.ShowAll = *req.ShowAll
	}
	opts.UseKeyAsText = req.UseKeyAsText
	if req.IsRecursive != nil {
		opts.IsRecursive = *req.IsRecursive
	}
	opts.FlattenStructure = req.FlattenStructure
	opts.ShowNestedTopics = req.ShowNestedTopics
	opts.UsePartialMatch = req.UsePartialMatch
	if req.RelaxedMatch {
		opts.AttributeMatch = query.MatchContains
	}
	if req.ResultLimit != nil {
		opts.ResultLimit = *req.ResultLimit
	}
	opts.AttributeName = req.AttributeName
	opts.AttributeValue = req.AttributeValue
	opts.Query = req.Query
	opts.RelatedTopicID = req.RelatedTopicID
	opts.RelatedNamespace = req.RelatedNamespace
	opts.ForceMarkRelated = req.MarkRelated || len(req.RelatedKeys) > 0
	opts.ForceCheckboxes = req.EnableCheckboxes
	opts.SuppressExpandRelated = req.NoExpandRelated
	return opts
}

// relatedSet prefers explicit keys over the relationships of RelatedTopicID.
// A namespace without a topic id marks nothing as related.
func relatedSet(graph topic.Node, req *vo.QueryRequest) (topic.RelatedSet, error) {
	if len(req.RelatedKeys) > 0 {
		nodes := make([]topic.Node, 0, len(req.RelatedKeys))
		for _, key := range req.RelatedKeys {
			node := topic.FindByUniqueKey(graph, key)
			if node == nil {
				return nil, fmt.Errorf("%w: related %s", ErrTopicNotFound, key)
			}
			nodes = append(nodes, node)
		}
		return topic.NewRelated(nodes...), nil
	}
	if req.RelatedTopicID <= 0 {
		return topic.NewRelated(), nil
	}
	node := topic.FindByID(graph, req.RelatedTopicID)
	if node == nil {
		return nil, fmt.Errorf("%w: related topic id %d", ErrTopicNotFound, req.RelatedTopicID)
	}
	relator, ok := node.(topic.Relator)
	if !ok {
		return topic.NewRelated(), nil
	}
	return topic.NewRelated(relator.Related(req.RelatedNamespace)...), nil
}

func (s *service) ResolvePath(ctx context.Context, req *vo.ResolvePathRequest) (string, error) {
	filePath, err := s.resolvePath(ctx, req)
	pathResolutionsTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		s.logger.Warn("path resolution failed", zap.Error(err))
		return "", err
	}
	return filePath, nil
}

func (s *service) resolvePath(ctx context.Context, req *vo.ResolvePathRequest) (string, error) {
	if req == nil || req.UniqueKey == "" {
		return "", fmt.Errorf("%w: unique key is required", topic.ErrInvalidArgument)
	}
	node, err := s.find(ctx, req.UniqueKey)
	if err != nil {
		return "", err
	}
	opts := topicpath.DefaultOptions()
	if req.InheritValue != nil {
		opts.InheritValue = *req.InheritValue
	}
	if req.RelativeToTopicPath != nil {
		opts.RelativeToTopicPath = *req.RelativeToTopicPath
	}
	if req.IncludeCurrentTopic != nil {
		opts.IncludeCurrentTopic = *req.IncludeCurrentTopic
	}
	opts.BaseTopicPath = req.BaseTopicPath
	return topicpath.Resolve(node, req.AttributeKey, opts)
}

func (s *service) GetTopic(ctx context.Context, uniqueKey string) (*vo.TopicDocument, error) {
	node, err := s.find(ctx, uniqueKey)
	if err != nil {
		return nil, err
	}
	markdown, err := render.Attributes(node.Attributes(), s.documentSettings.MarkdownAttributes, s.documentSettings.ContentSelector)
	if err != nil {
		return nil, err
	}

	doc := &vo.TopicDocument{
		TopicSummary: s.summary(node),
		Attributes:   make(map[string]string, len(node.Attributes())),
		Markdown:     markdown,
	}
	for key, value := range node.Attributes() {
		doc.Attributes[key] = value
	}
	if node.Title() == "" {
		for _, key := range s.documentSettings.MarkdownAttributes {
			if headline := render.Headline(node.Attributes()[key]); headline != "" {
				doc.Title = headline
				break
			}
		}
	}
	for _, ancestor := range topic.Ancestors(node) {
		doc.Breadcrumb = append(doc.Breadcrumb, s.summary(ancestor))
	}
	for _, child := range node.Children() {
		doc.Children = append(doc.Children, s.summary(child))
	}
	if parent := node.Parent(); parent != nil {
		isPrevious := true
		for _, sibling := range parent.Children() {
			if sibling.UniqueKey() == node.UniqueKey() {
				isPrevious = false
				continue
			}
			if isPrevious {
				doc.PrevSiblings = append(doc.PrevSiblings, s.summary(sibling))
			} else {
				doc.NextSiblings = append(doc.NextSiblings, s.summary(sibling))
			}
		}
	}
	return doc, nil
}

// find resolves a unique key in the current graph, an empty key yields the root
func (s *service) find(ctx context.Context, uniqueKey string) (topic.Node, error) {
	graph, err := s.source.Root(ctx)
	if err != nil {
		return nil, err
	}
	if uniqueKey == "" {
		return graph, nil
	}
	node := topic.FindByUniqueKey(graph, uniqueKey)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrTopicNotFound, uniqueKey)
	}
	return node, nil
}

func (s *service) summary(node topic.Node) vo.TopicSummary {
	title := node.Title()
	if title == "" {
		title = node.Key()
	}
	return vo.TopicSummary{
		ID:          node.ID(),
		Key:         node.Key(),
		Title:       title,
		UniqueKey:   node.UniqueKey(),
		WebPath:     node.WebPath(),
		ContentType: node.ContentType(),
	}
}

// IsInvalidArgument reports whether err was caused by the caller
func IsInvalidArgument(err error) bool {
	return errors.Is(err, topic.ErrInvalidArgument)
}
