package config

import "time"

// Config holds all application configuration.
type Config struct {
	Engine   Engine   `mapstructure:"engine"`
	Gemini   Gemini   `mapstructure:"gemini"`
	Chunking Chunking `mapstructure:"chunking"`
	Fetcher  Fetcher  `mapstructure:"fetcher"`
	Archive  Archive  `mapstructure:"archive"`
	Crawler  Crawler  `mapstructure:"crawler"`
	MCP      MCP      `mapstructure:"mcp"`
	Username string   `mapstructure:"username"`
}

// Engine selects and configures the vector engine backend.
type Engine struct {
	Backend string  `mapstructure:"backend"` // "bolt", "elastic" or "memory"
	Path    string  `mapstructure:"path"`    // bolt database file
	Elastic Elastic `mapstructure:"elastic"`
}

// Elastic holds Elasticsearch connection configuration.
type Elastic struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Gemini holds remote embedding and generation configuration.
type Gemini struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	EmbeddingModel  string `mapstructure:"embedding_model"`
	GenerationModel string `mapstructure:"generation_model"`
	Dimension       int    `mapstructure:"dimension"`
}

// Chunking holds chunker configuration.
type Chunking struct {
	MaxChunkSize int `mapstructure:"max_chunk_size"`
}

// Fetcher holds web content fetcher configuration.
type Fetcher struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	FollowLinks bool          `mapstructure:"follow_links"`
	MaxLinks    int           `mapstructure:"max_links"`
	LinkDelay   time.Duration `mapstructure:"link_delay"`
}

// Archive holds S3/MinIO upload archive configuration.
type Archive struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Crawler holds site crawl configuration.
type Crawler struct {
	MaxDepth int           `mapstructure:"max_depth"`
	Delay    time.Duration `mapstructure:"delay"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Engine: Engine{
			Backend: "bolt",
			Path:    "./vector-database/store.db",
			Elastic: Elastic{
				Addresses: []string{"http://localhost:9200"},
			},
		},
		Gemini: Gemini{
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			EmbeddingModel:  "text-embedding-004",
			GenerationModel: "gemini-2.0-flash",
			Dimension:       768,
		},
		Chunking: Chunking{
			MaxChunkSize: 1000,
		},
		Fetcher: Fetcher{
			Timeout:     30 * time.Second,
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			FollowLinks: false,
			MaxLinks:    5,
			LinkDelay:   1 * time.Second,
		},
		Archive: Archive{
			Enabled:         false,
			Endpoint:        "localhost:9000",
			Bucket:          "docvector",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		Crawler: Crawler{
			MaxDepth: 3,
			Delay:    1 * time.Second,
		},
		MCP: MCP{
			Name:    "docvector",
			Version: "1.0.0",
		},
		Username: "default",
	}
}
