package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foomo/contentserver-topics/topic"
)

type fakeNodesClient struct {
	env   *requests.Env
	nodes map[string]*requests.Node
	reply map[string]*content.Node
	err   error
}

func (c *fakeNodesClient) GetNodes(ctx context.Context, env *requests.Env, nodes map[string]*requests.Node) (map[string]*content.Node, error) {
	c.env = env
	c.nodes = nodes
	return c.reply, c.err
}

func TestContentServerSourceRoot(t *testing.T) {
	client := &fakeNodesClient{
		reply: map[string]*content.Node{
			"home": {
				Item:  &content.Item{ID: "home", URI: "/", Name: "Home"},
				Index: []string{"about"},
				Nodes: map[string]*content.Node{
					"about": {Item: &content.Item{ID: "about", URI: "/about", Name: "About"}},
				},
			},
		},
	}
	source := newContentServerSource(ContentServerSettings{
		RootID:    "home",
		RootKey:   "Root",
		MimeTypes: []string{"page"},
	}, client)

	root, err := source.Root(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Root", root.Key())
	require.NotNil(t, topic.FindByUniqueKey(root, "Root:about"))

	require.Contains(t, client.nodes, "home")
	assert.Equal(t, "home", client.nodes["home"].ID)
	assert.Equal(t, []string{"page"}, client.nodes["home"].MimeTypes)
	assert.True(t, client.nodes["home"].Expand)
	assert.NotNil(t, client.env)
}

func TestContentServerSourceRootErrors(t *testing.T) {
	settings := ContentServerSettings{RootID: "home", RootKey: "Root"}
	for name, client := range map[string]*fakeNodesClient{
		"client error": {err: errors.New("connection refused")},
		"missing root": {reply: map[string]*content.Node{"other": {Item: &content.Item{ID: "other"}}}},
		"nil root":     {reply: map[string]*content.Node{"home": nil}},
		"nil item":     {reply: map[string]*content.Node{"home": {}}},
	} {
		t.Run(name, func(t *testing.T) {
			root, err := newContentServerSource(settings, client).Root(context.Background())
			require.Error(t, err)
			assert.Nil(t, root)
		})
	}
}

func TestContentServerSourceHTTP(t *testing.T) {
	var path, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewContentServerSource(ContentServerSettings{
		URL:       server.URL,
		RootID:    "home-id",
		MimeTypes: []string{"text/html"},
	}, server.Client())
	_, err := source.Root(context.Background())
	require.Error(t, err)
	assert.Contains(t, path, "getNodes")
	assert.Contains(t, body, "home-id")
	assert.Contains(t, body, "text/html")
}
