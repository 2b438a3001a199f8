package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/foomo/contentserver/requests"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-topics/config"
	"github.com/foomo/contentserver-topics/mcp"
	"github.com/foomo/contentserver-topics/service"
	"github.com/foomo/contentserver-topics/topic"
)

func main() {
	configFile := flag.String("config", "", "Path to the yaml config file")
	topicsFile := flag.String("topics", "", "Path to a yaml topic graph, overrides source.file")
	httpAddr := flag.String("http", "", "HTTP server address (e.g., ':8080'), overrides http.addr")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Default()
	if *configFile != "" {
		if cfg, err = config.Load(*configFile); err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
		}
	}
	if *topicsFile != "" {
		cfg.Source.File = *topicsFile
	}
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	source, err := newSource(cfg.Source)
	if err != nil {
		logger.Fatal("failed to create topic source", zap.Error(err))
	}
	serviceInstance := service.NewService(logger, source, service.DocumentSettings{
		MarkdownAttributes: cfg.Document.MarkdownAttributes,
		ContentSelector:    cfg.Document.ContentSelector,
	})
	s := mcp.NewServer(logger, serviceInstance)

	if cfg.HTTP.Addr != "" {
		logger.Info("Starting MCP server", zap.String("addr", cfg.HTTP.Addr), zap.String("endpoint", cfg.HTTP.Endpoint))
		handler := mcp.NewMcpHTTPSSEServer(logger, s, serviceInstance, cfg.HTTP.Endpoint, cfg.HTTP.Metrics, &mcp.SSEServerConfig{
			KeepaliveInterval: cfg.SSE.KeepaliveInterval,
			BufferSize:        cfg.SSE.BufferSize,
			ClientTimeout:     cfg.SSE.ClientTimeout,
		})
		defer handler.GetSSEServer().Close()
		if err := http.ListenAndServe(cfg.HTTP.Addr, handler); err != nil {
			logger.Error("MCP server stopped", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	logger.Info("Starting MCP server in stdio mode")
	if err := server.ServeStdio(s); err != nil {
		logger.Fatal("MCP server stopped", zap.Error(err))
	}
}

func newSource(cfg config.Source) (service.Source, error) {
	if cfg.File != "" {
		root, err := topic.LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		return service.NewStaticSource(root), nil
	}
	cs := cfg.ContentServer
	return service.NewContentServerSource(service.ContentServerSettings{
		URL:       cs.URL,
		RootID:    cs.RootID,
		RootKey:   cs.RootKey,
		MimeTypes: cs.MimeTypes,
		Env: &requests.Env{
			Dimensions: cs.Dimensions,
			Groups:     cs.Groups,
		},
		Timeout: cs.Timeout,
	}, nil), nil
}
