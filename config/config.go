package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Source   Source   `yaml:"source"`
	Document Document `yaml:"document"`
	HTTP     HTTP     `yaml:"http"`
	SSE      SSE      `yaml:"sse"`
}

// Source selects where the topic graph comes from, File wins over ContentServer
type Source struct {
	File          string        `yaml:"file"`
	ContentServer ContentServer `yaml:"contentServer"`
}

type ContentServer struct {
	URL        string        `yaml:"url"`
	RootID     string        `yaml:"rootId"`
	RootKey    string        `yaml:"rootKey"`
	MimeTypes  []string      `yaml:"mimeTypes"`
	Dimensions []string      `yaml:"dimensions"`
	Groups     []string      `yaml:"groups"`
	Timeout    time.Duration `yaml:"timeout"`
}

type Document struct {
	// MarkdownAttributes are html attributes rendered into the topic markdown
	MarkdownAttributes []string `yaml:"markdownAttributes"`
	ContentSelector    string   `yaml:"contentSelector"`
}

type HTTP struct {
	Addr     string `yaml:"addr"`
	Endpoint string `yaml:"endpoint"`
	Metrics  bool   `yaml:"metrics"`
}

type SSE struct {
	KeepaliveInterval time.Duration `yaml:"keepaliveInterval"`
	BufferSize        int           `yaml:"bufferSize"`
	ClientTimeout     time.Duration `yaml:"clientTimeout"`
}

func Default() Config {
	return Config{
		Source: Source{
			ContentServer: ContentServer{
				RootKey: "Root",
				Timeout: 10 * time.Second,
			},
		},
		Document: Document{
			MarkdownAttributes: []string{"Body"},
		},
		HTTP: HTTP{
			Endpoint: "/mcp",
			Metrics:  true,
		},
		SSE: SSE{
			KeepaliveInterval: 30 * time.Second,
			BufferSize:        100,
			ClientTimeout:     60 * time.Second,
		},
	}
}

// Load reads a yaml file on top of the defaults, call Validate once overrides are applied
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Source.File == "" && c.Source.ContentServer.URL == "" {
		return fmt.Errorf("either source.file or source.contentServer.url is required")
	}
	if c.Source.File == "" && c.Source.ContentServer.RootID == "" {
		return fmt.Errorf("source.contentServer.rootId is required")
	}
	if c.SSE.BufferSize < 0 {
		return fmt.Errorf("sse.bufferSize must not be negative")
	}
	return nil
}
