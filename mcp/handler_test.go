package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/foomo/contentserver-topics/service"
	"github.com/foomo/contentserver-topics/service/vo"
	"github.com/foomo/contentserver-topics/topic"
)

func newTestService(t *testing.T) service.Service {
	t.Helper()
	root, err := topic.LoadFile("testdata/topics.yaml")
	require.NoError(t, err)
	return service.NewService(zaptest.NewLogger(t), service.NewStaticSource(root), service.DocumentSettings{
		MarkdownAttributes: []string{"Body"},
	})
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func callRequest(name string, args interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	server := NewServer(zaptest.NewLogger(t), newTestService(t))
	require.NotNil(t, server)
}

func TestQueryTopicsHandler(t *testing.T) {
	handler := getQueryTopicsHandler(zaptest.NewLogger(t), newTestService(t))
	args := QueryTopicsRequest{
		FlattenStructure: true,
		Query:            "golang",
		Format:           "tokens",
	}
	result, err := handler(context.Background(), callRequest("queryTopics", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	resp := &vo.QueryResponse{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Tokens, 2)
	assert.Equal(t, "Root:Web:Blog", resp.Tokens[0].UniqueKey)
}

func TestQueryTopicsHandlerRelatedKeys(t *testing.T) {
	handler := getQueryTopicsHandler(zaptest.NewLogger(t), newTestService(t))
	args := QueryTopicsRequest{
		RootKey:     "Root:Tags",
		RelatedKeys: " Root:Tags:Rust, ,",
	}
	result, err := handler(context.Background(), callRequest("queryTopics", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	resp := &vo.QueryResponse{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), resp))
	require.Len(t, resp.Nodes, 2)
	assert.False(t, *resp.Nodes[0].IsChecked)
	assert.True(t, *resp.Nodes[1].IsChecked)
}

func TestQueryTopicsHandlerCheckboxes(t *testing.T) {
	handler := getQueryTopicsHandler(zaptest.NewLogger(t), newTestService(t))
	args := QueryTopicsRequest{
		RootKey:          "Root:Web",
		FlattenStructure: true,
		EnableCheckboxes: true,
		Format:           "tokens",
	}
	result, err := handler(context.Background(), callRequest("queryTopics", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	resp := &vo.QueryResponse{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), resp))
	require.NotEmpty(t, resp.Tokens)
	for _, token := range resp.Tokens {
		require.NotNil(t, token.IsChecked, token.UniqueKey)
		assert.True(t, *token.IsChecked, token.UniqueKey)
	}
}

func TestQueryTopicsHandlerNoExpandRelated(t *testing.T) {
	handler := getQueryTopicsHandler(zaptest.NewLogger(t), newTestService(t))
	for _, expand := range []bool{true, false} {
		args := QueryTopicsRequest{
			RelatedKeys:     "Root:Web:About",
			NoExpandRelated: !expand,
		}
		result, err := handler(context.Background(), callRequest("queryTopics", args), args)
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))

		resp := &vo.QueryResponse{}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), resp))
		require.NotEmpty(t, resp.Nodes)
		assert.Equal(t, "Root:Web", resp.Nodes[0].UniqueKey)
		assert.Equal(t, expand, resp.Nodes[0].IsExpanded)
	}
}

func TestQueryTopicsHandlerError(t *testing.T) {
	handler := getQueryTopicsHandler(zaptest.NewLogger(t), newTestService(t))
	args := QueryTopicsRequest{RootKey: "Root:Missing"}
	result, err := handler(context.Background(), callRequest("queryTopics", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "topic not found")
}

func TestResolvePathHandler(t *testing.T) {
	handler := getResolvePathHandler(zaptest.NewLogger(t), newTestService(t))
	include := true
	args := ResolvePathRequest{
		UniqueKey:           "Root:Web:About",
		AttributeKey:        "FilePath",
		IncludeCurrentTopic: &include,
	}
	result, err := handler(context.Background(), callRequest("resolvePath", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	resp := &ResolvePathResponse{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), resp))
	assert.Equal(t, "/var/www/About/", resp.Path)
}

func TestResolvePathHandlerValidation(t *testing.T) {
	handler := getResolvePathHandler(zaptest.NewLogger(t), newTestService(t))
	for _, args := range []ResolvePathRequest{
		{AttributeKey: "FilePath"},
		{UniqueKey: "Root:Web"},
	} {
		result, err := handler(context.Background(), callRequest("resolvePath", args), args)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	}
}

func TestGetTopicHandler(t *testing.T) {
	handler := getTopicHandler(zaptest.NewLogger(t), newTestService(t))
	args := GetTopicRequest{UniqueKey: "Root:Web"}
	ctx := withHTTPRequest(context.Background(), httptest.NewRequest(http.MethodPost, "/mcp", nil))
	result, err := handler(ctx, callRequest("getTopic", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	resp := &GetTopicResponse{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), resp))
	require.NotNil(t, resp.Topic)
	assert.Equal(t, "Website", resp.Topic.Title)
	assert.Contains(t, string(resp.Topic.Markdown), "Welcome")
	assert.Len(t, resp.Topic.Children, 3)
}

func TestHTTPRequestContext(t *testing.T) {
	_, ok := httpRequestFromContext(context.Background())
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	got, ok := httpRequestFromContext(httpContextFunc(context.Background(), req))
	require.True(t, ok)
	assert.Equal(t, req, got)
}

func TestQueryTopicsRequestMapping(t *testing.T) {
	limit := 3
	req := QueryTopicsRequest{
		RootKey:     "Root:Web",
		ResultLimit: &limit,
		RelatedKeys:      "Root:A,Root:B",
		MarkRelated:      true,
		EnableCheckboxes: true,
		NoExpandRelated:  true,
		Format:           "tree",
	}.toQueryRequest()
	assert.True(t, req.MarkRelated)
	assert.True(t, req.EnableCheckboxes)
	assert.True(t, req.NoExpandRelated)
	assert.Equal(t, []string{"Root:A", "Root:B"}, req.RelatedKeys)
	assert.Equal(t, vo.FormatTree, req.Format)
	assert.Equal(t, 3, *req.ResultLimit)
	assert.Nil(t, QueryTopicsRequest{RelatedKeys: strings.Repeat(" ", 3)}.toQueryRequest().RelatedKeys)
}
