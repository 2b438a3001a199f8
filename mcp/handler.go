package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-topics/service"
	"github.com/foomo/contentserver-topics/service/vo"
)

const Version = "0.1.0"

// QueryTopicsRequest are the queryTopics tool arguments
type QueryTopicsRequest struct {
	RootKey          string `json:"rootKey"`
	Query            string `json:"query"`
	AttributeName    string `json:"attributeName"`
	AttributeValue   string `json:"attributeValue"`
	UsePartialMatch  bool   `json:"usePartialMatch"`
	RelaxedMatch     bool   `json:"relaxedMatch"`
	FlattenStructure bool   `json:"flattenStructure"`
	ShowRoot         bool   `json:"showRoot"`
	ShowAll          *bool  `json:"showAll"`
	ShowNestedTopics bool   `json:"showNestedTopics"`
	IsRecursive      *bool  `json:"isRecursive"`
	UseKeyAsText     bool   `json:"useKeyAsText"`
	ResultLimit      *int   `json:"resultLimit"`
	RelatedTopicID   int    `json:"relatedTopicId"`
	RelatedNamespace string `json:"relatedNamespace"`
	// RelatedKeys is a comma separated list of unique keys
	RelatedKeys      string `json:"relatedKeys"`
	MarkRelated      bool   `json:"markRelated"`
	EnableCheckboxes bool   `json:"enableCheckboxes"`
	NoExpandRelated  bool   `json:"noExpandRelated"`
	Format           string `json:"format"`
}

func (r QueryTopicsRequest) toQueryRequest() *vo.QueryRequest {
	req := &vo.QueryRequest{
		RootKey:          r.RootKey,
		Query:            r.Query,
		AttributeName:    r.AttributeName,
		AttributeValue:   r.AttributeValue,
		UsePartialMatch:  r.UsePartialMatch,
		RelaxedMatch:     r.RelaxedMatch,
		FlattenStructure: r.FlattenStructure,
		ShowRoot:         r.ShowRoot,
		ShowAll:          r.ShowAll,
		ShowNestedTopics: r.ShowNestedTopics,
		IsRecursive:      r.IsRecursive,
		UseKeyAsText:     r.UseKeyAsText,
		ResultLimit:      r.ResultLimit,
		RelatedTopicID:   r.RelatedTopicID,
		RelatedNamespace: r.RelatedNamespace,
		MarkRelated:      r.MarkRelated,
		EnableCheckboxes: r.EnableCheckboxes,
		NoExpandRelated:  r.NoExpandRelated,
		Format:           vo.Format(r.Format),
	}
	for _, key := range strings.Split(r.RelatedKeys, ",") {
		if key = strings.TrimSpace(key); key != "" {
			req.RelatedKeys = append(req.RelatedKeys, key)
		}
	}
	return req
}

type ResolvePathRequest struct {
	UniqueKey           string `json:"uniqueKey"`
	AttributeKey        string `json:"attributeKey"`
	InheritValue        *bool  `json:"inheritValue"`
	RelativeToTopicPath *bool  `json:"relativeToTopicPath"`
	IncludeCurrentTopic *bool  `json:"includeCurrentTopic"`
	BaseTopicPath       string `json:"baseTopicPath"`
}

type ResolvePathResponse struct {
	Path string `json:"path"`
}

type GetTopicRequest struct {
	UniqueKey string `json:"uniqueKey"` // Empty for the graph root
}

type GetTopicResponse struct {
	Topic *vo.TopicDocument `json:"topic"`
}

// NewServer creates a new MCP server exposing the topic service as tools
func NewServer(logger *zap.Logger, serviceInstance service.Service) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := server.NewMCPServer(
		"Content Topics MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	queryTopicsTool := mcp.NewTool("queryTopics",
		mcp.WithDescription("Query the topic tree and return a filtered, size bounded projection as a tree or a flat token list"),
		mcp.WithString("rootKey", mcp.Description("Unique key of the topic to query below, e.g. 'Root:Web'. Defaults to the graph root")),
		mcp.WithString("query", mcp.Description("Whitespace separated search terms, every term must occur in an attribute value")),
		mcp.WithString("attributeName", mcp.Description("Attribute to filter on, 'ContentType' filters on the content type")),
		mcp.WithString("attributeValue", mcp.Description("Value the attribute filter compares against, empty matches topics without the attribute")),
		mcp.WithBoolean("usePartialMatch", mcp.Description("Use partial matching for the attribute filter")),
		mcp.WithBoolean("relaxedMatch", mcp.Description("With usePartialMatch, accept any topic whose attribute contains the value")),
		mcp.WithBoolean("flattenStructure", mcp.Description("Return all matches as a flat list")),
		mcp.WithBoolean("showRoot", mcp.Description("Include the root topic itself")),
		mcp.WithBoolean("showAll", mcp.Description("Include hidden topics, defaults to true")),
		mcp.WithBoolean("showNestedTopics", mcp.Description("Include nested topic lists")),
		mcp.WithBoolean("isRecursive", mcp.Description("Descend into children of matching topics, defaults to true")),
		mcp.WithBoolean("useKeyAsText", mcp.Description("Use the key instead of the title as text")),
		mcp.WithNumber("resultLimit", mcp.Description("Maximum number of matches, -1 for unbounded")),
		mcp.WithNumber("relatedTopicId", mcp.Description("Id of the topic whose relationships mark topics as checked")),
		mcp.WithString("relatedNamespace", mcp.Description("Relationship namespace, empty for all namespaces")),
		mcp.WithString("relatedKeys", mcp.Description("Comma separated unique keys of related topics")),
		mcp.WithBoolean("markRelated", mcp.Description("Mark related topics even without a relationship source")),
		mcp.WithBoolean("enableCheckboxes", mcp.Description("Add a checked state to every result, all checked unless related topics are marked")),
		mcp.WithBoolean("noExpandRelated", mcp.Description("Do not expand topics above related topics")),
		mcp.WithString("format", mcp.Enum(string(vo.FormatTree), string(vo.FormatTokens)), mcp.Description("Result shape")),
	)
	s.AddTool(queryTopicsTool, mcp.NewTypedToolHandler(getQueryTopicsHandler(logger, serviceInstance)))

	resolvePathTool := mcp.NewTool("resolvePath",
		mcp.WithDescription("Resolve a file path inherited from the closest ancestor topic defining an attribute"),
		mcp.WithString("uniqueKey", mcp.Required(), mcp.Description("Unique key of the topic to resolve the path for")),
		mcp.WithString("attributeKey", mcp.Required(), mcp.Description("Attribute holding the base path, e.g. 'FilePath'")),
		mcp.WithBoolean("inheritValue", mcp.Description("Inherit the value from ancestors, defaults to true")),
		mcp.WithBoolean("relativeToTopicPath", mcp.Description("Append the topic path below the defining ancestor, defaults to true")),
		mcp.WithBoolean("includeCurrentTopic", mcp.Description("Include the topic itself in the relative path")),
		mcp.WithString("baseTopicPath", mcp.Description("Comma separated keys to truncate the relative path after")),
	)
	s.AddTool(resolvePathTool, mcp.NewTypedToolHandler(getResolvePathHandler(logger, serviceInstance)))

	getTopicTool := mcp.NewTool("getTopic",
		mcp.WithDescription("Get a topic with attributes, markdown body, breadcrumb, siblings and children"),
		mcp.WithString("uniqueKey", mcp.Description("Unique key of the topic, empty for the graph root")),
	)
	s.AddTool(getTopicTool, mcp.NewTypedToolHandler(getTopicHandler(logger, serviceInstance)))

	return s
}

func getQueryTopicsHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args QueryTopicsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args QueryTopicsRequest) (*mcp.CallToolResult, error) {
		logRequest(ctx, logger, "queryTopics")
		resp, err := serviceInstance.QueryTopics(ctx, args.toQueryRequest())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to query topics: %v", err)), nil
		}
		return jsonResult(resp)
	}
}

func getResolvePathHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ResolvePathRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ResolvePathRequest) (*mcp.CallToolResult, error) {
		logRequest(ctx, logger, "resolvePath")
		if args.UniqueKey == "" {
			return mcp.NewToolResultError("uniqueKey is required"), nil
		}
		if args.AttributeKey == "" {
			return mcp.NewToolResultError("attributeKey is required"), nil
		}
		filePath, err := serviceInstance.ResolvePath(ctx, &vo.ResolvePathRequest{
			UniqueKey:           args.UniqueKey,
			AttributeKey:        args.AttributeKey,
			InheritValue:        args.InheritValue,
			RelativeToTopicPath: args.RelativeToTopicPath,
			IncludeCurrentTopic: args.IncludeCurrentTopic,
			BaseTopicPath:       args.BaseTopicPath,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to resolve path: %v", err)), nil
		}
		return jsonResult(ResolvePathResponse{Path: filePath})
	}
}

func getTopicHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args GetTopicRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetTopicRequest) (*mcp.CallToolResult, error) {
		logRequest(ctx, logger, "getTopic")
		doc, err := serviceInstance.GetTopic(ctx, args.UniqueKey)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get topic: %v", err)), nil
		}
		return jsonResult(GetTopicResponse{Topic: doc})
	}
}

func jsonResult(response interface{}) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

func logRequest(ctx context.Context, logger *zap.Logger, tool string) {
	fields := []zap.Field{zap.String("tool", tool)}
	if req, ok := httpRequestFromContext(ctx); ok {
		fields = append(fields, zap.String("remoteAddr", req.RemoteAddr))
	}
	logger.Debug("tool call", fields...)
}
