package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/config"
)

var (
	cfgFile  string
	verbose  bool
	username string
	cfg      config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "docvector",
	Short: "docvector: per-user document ingestion and retrieval",
	Long: `docvector ingests documents and web content into per-user vector
collections and answers questions grounded in the stored chunks.

Commands:
  ingest     Process local documents into a user's collection
  fetch      Fetch web pages or online PDFs into a user's collection
  crawl      Crawl a site and store every page
  query      Ask a question against stored documents
  documents  List stored documents
  delete     Remove documents, folders or whole collections
  serve      Start the MCP server for chat-assistant integration`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "username owning the collection")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/docvector")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// DOCVECTOR_GEMINI_API_KEY -> gemini.api_key
	viper.SetEnvPrefix("DOCVECTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("engine.backend", "DOCVECTOR_ENGINE_BACKEND")
	viper.BindEnv("engine.path", "DOCVECTOR_ENGINE_PATH")
	viper.BindEnv("engine.elastic.addresses", "DOCVECTOR_ENGINE_ELASTIC_ADDRESSES")
	viper.BindEnv("engine.elastic.username", "DOCVECTOR_ENGINE_ELASTIC_USERNAME")
	viper.BindEnv("engine.elastic.password", "DOCVECTOR_ENGINE_ELASTIC_PASSWORD")
	viper.BindEnv("gemini.api_key", "DOCVECTOR_GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY")
	viper.BindEnv("gemini.embedding_model", "DOCVECTOR_GEMINI_EMBEDDING_MODEL")
	viper.BindEnv("gemini.generation_model", "DOCVECTOR_GEMINI_GENERATION_MODEL", "GEMINI_MODEL")
	viper.BindEnv("gemini.dimension", "DOCVECTOR_GEMINI_DIMENSION", "EMBEDDING_DIMENSION")
	viper.BindEnv("chunking.max_chunk_size", "DOCVECTOR_CHUNKING_MAX_CHUNK_SIZE")
	viper.BindEnv("fetcher.follow_links", "DOCVECTOR_FETCHER_FOLLOW_LINKS")
	viper.BindEnv("fetcher.max_links", "DOCVECTOR_FETCHER_MAX_LINKS")
	viper.BindEnv("archive.enabled", "DOCVECTOR_ARCHIVE_ENABLED")
	viper.BindEnv("archive.endpoint", "DOCVECTOR_ARCHIVE_ENDPOINT")
	viper.BindEnv("archive.bucket", "DOCVECTOR_ARCHIVE_BUCKET")
	viper.BindEnv("archive.access_key_id", "DOCVECTOR_ARCHIVE_ACCESS_KEY_ID")
	viper.BindEnv("archive.secret_access_key", "DOCVECTOR_ARCHIVE_SECRET_ACCESS_KEY")
	viper.BindEnv("crawler.max_depth", "DOCVECTOR_CRAWLER_MAX_DEPTH")
	viper.BindEnv("mcp.name", "DOCVECTOR_MCP_NAME")
	viper.BindEnv("mcp.version", "DOCVECTOR_MCP_VERSION")
	viper.BindEnv("username", "DOCVECTOR_USERNAME")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Addresses as a comma-separated string from env
	if addrs := os.Getenv("DOCVECTOR_ENGINE_ELASTIC_ADDRESSES"); addrs != "" {
		cfg.Engine.Elastic.Addresses = strings.Split(addrs, ",")
	}

	if username != "" {
		cfg.Username = username
	}
}
