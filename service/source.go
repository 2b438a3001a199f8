package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	contentserverclient "github.com/foomo/contentserver/client"
	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"

	"github.com/foomo/contentserver-topics/topic"
)

// Source provides the topic graph a request is answered from
type Source interface {
	Root(ctx context.Context) (topic.Node, error)
}

// StaticSource serves a graph that is held in memory
type StaticSource struct {
	root topic.Node
}

func NewStaticSource(root topic.Node) *StaticSource {
	return &StaticSource{root: root}
}

func (s *StaticSource) Root(ctx context.Context) (topic.Node, error) {
	if s.root == nil {
		return nil, errors.New("static source has no topic graph")
	}
	return s.root, nil
}

type ContentServerSettings struct {
	URL       string
	RootID    string
	RootKey   string
	MimeTypes []string
	Env       *requests.Env
	Timeout   time.Duration
}

// nodesClient is the part of the contentserver client the source uses
type nodesClient interface {
	GetNodes(ctx context.Context, env *requests.Env, nodes map[string]*requests.Node) (map[string]*content.Node, error)
}

// ContentServerSource loads the topic graph from a contentserver on every request
type ContentServerSource struct {
	settings ContentServerSettings
	client   nodesClient
}

func NewContentServerSource(settings ContentServerSettings, httpClient *http.Client) *ContentServerSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			settings.URL,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))
	return newContentServerSource(settings, client)
}

func newContentServerSource(settings ContentServerSettings, client nodesClient) *ContentServerSource {
	if settings.Env == nil {
		settings.Env = &requests.Env{}
	}
	return &ContentServerSource{
		settings: settings,
		client:   client,
	}
}

func (s *ContentServerSource) Root(ctx context.Context) (topic.Node, error) {
	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}
	nodes, err := s.client.GetNodes(ctx, s.settings.Env, map[string]*requests.Node{
		s.settings.RootID: {
			ID:        s.settings.RootID,
			MimeTypes: s.settings.MimeTypes,
			Expand:    true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load topic graph: %w", err)
	}
	node, ok := nodes[s.settings.RootID]
	if !ok || node == nil {
		return nil, fmt.Errorf("root node %q not found", s.settings.RootID)
	}
	root := topic.FromContentNode(node, s.settings.RootKey)
	if root == nil {
		return nil, errors.New("root node has no item")
	}
	return root, nil
}
