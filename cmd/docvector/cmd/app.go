package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/archive"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/config"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/embeddings"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/extractor"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/fetcher"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/ingest"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/llm"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/retrieval"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/store"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine/bolt"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine/elastic"
	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine/memory"
	"github.com/arashghezavati/Document-Vectorization-Service/pkg/models"
)

// app holds the wired components shared by the commands.
type app struct {
	engine    vectorengine.Engine
	store     *store.Store
	service   *ingest.Service
	retriever *retrieval.Retriever
	responder *retrieval.Responder
	config    config.Config
}

// newApp builds the component graph from the loaded configuration.
func newApp(ctx context.Context) (*app, error) {
	cfg := GetConfig()

	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	// Without an API key every embedding comes from the deterministic
	// fallback, which still yields a usable store for tests and offline use.
	var remote embeddings.RemoteEmbedder
	if cfg.Gemini.APIKey != "" {
		client, err := embeddings.NewClient(embeddings.Config{
			BaseURL: cfg.Gemini.BaseURL,
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.EmbeddingModel,
		})
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("failed to create embedding client: %w", err)
		}
		remote = client
	} else {
		slog.Warn("no API key configured, embeddings use the local fallback")
	}
	provider := embeddings.NewProvider(remote, cfg.Gemini.Dimension)

	st := store.New(engine, provider)

	var archiver ingest.Archiver
	if cfg.Archive.Enabled {
		client, err := archive.New(archive.Config{
			Endpoint:        cfg.Archive.Endpoint,
			Bucket:          cfg.Archive.Bucket,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
			UseSSL:          cfg.Archive.UseSSL,
		})
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("failed to create archive client: %w", err)
		}
		if err := client.EnsureBucket(ctx); err != nil {
			engine.Close()
			return nil, fmt.Errorf("failed to ensure archive bucket: %w", err)
		}
		archiver = client
	}

	service := ingest.New(
		extractor.New(),
		fetcher.New(fetcher.Config{
			Timeout:   cfg.Fetcher.Timeout,
			UserAgent: cfg.Fetcher.UserAgent,
			LinkDelay: cfg.Fetcher.LinkDelay,
		}),
		st,
		archiver,
		ingest.Config{
			MaxChunkSize: cfg.Chunking.MaxChunkSize,
			FollowLinks:  cfg.Fetcher.FollowLinks,
			MaxLinks:     cfg.Fetcher.MaxLinks,
		},
	)

	generator, err := llm.New(llm.Config{
		BaseURL: cfg.Gemini.BaseURL,
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.GenerationModel,
	})
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	retriever := retrieval.New(engine, provider)
	return &app{
		engine:    engine,
		store:     st,
		service:   service,
		retriever: retriever,
		responder: retrieval.NewResponder(retriever, generator),
		config:    cfg,
	}, nil
}

func newEngine(cfg config.Config) (vectorengine.Engine, error) {
	switch cfg.Engine.Backend {
	case "bolt", "":
		engine, err := bolt.Open(cfg.Engine.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		return engine, nil
	case "elastic":
		engine, err := elastic.New(elastic.Config{
			Addresses: cfg.Engine.Elastic.Addresses,
			Username:  cfg.Engine.Elastic.Username,
			Password:  cfg.Engine.Elastic.Password,
			Dimension: cfg.Gemini.Dimension,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create elastic engine: %w", err)
		}
		return engine, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine backend %q", cfg.Engine.Backend)
	}
}

func (a *app) Close() {
	if err := a.engine.Close(); err != nil {
		slog.Warn("failed to close engine", "error", err)
	}
}

// collection is the current user's collection name.
func (a *app) collection() string {
	return models.UserCollection(a.config.Username)
}
