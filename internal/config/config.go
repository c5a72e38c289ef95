package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"vocatus"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"vocatus"`

	// Embedding / chat providers
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"openai"`
	// Empty selects the provider's default model.
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL"`
	ChatModel         string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	// Ingestion
	SourceDir        string `envconfig:"SOURCE_DIR" default:"rag_source"`
	StoreDir         string `envconfig:"STORE_DIR" default:"rag_store"`
	ChunkWords       int    `envconfig:"CHUNK_WORDS" default:"450"`
	OverlapWords     int    `envconfig:"OVERLAP_WORDS" default:"80"`
	MinChunkChars    int    `envconfig:"MIN_CHUNK_CHARS" default:"200"`
	EmbedConcurrency int    `envconfig:"EMBED_CONCURRENCY" default:"4"`
	EmbedTimeoutSecs int    `envconfig:"EMBED_TIMEOUT_SECONDS" default:"60"`
	EmbedRetries     int    `envconfig:"EMBED_RETRIES" default:"3"`
	IngestFailFast   bool   `envconfig:"INGEST_FAIL_FAST" default:"false"`

	// Retrieval
	RetrievalTopK int `envconfig:"RETRIEVAL_TOP_K" default:"3"`

	// Server
	ServerPort   int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	BootstrapRetryAttempts     int    `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int    `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
	MigrationPath              string `envconfig:"MIGRATION_PATH" default:"file://migrations"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell instead, so a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkWords <= 0 {
		return fmt.Errorf("%w: CHUNK_WORDS must be positive", ErrMissingRequired)
	}
	if c.OverlapWords < 0 || c.OverlapWords >= c.ChunkWords {
		return fmt.Errorf("%w: OVERLAP_WORDS must be in [0, CHUNK_WORDS)", ErrMissingRequired)
	}
	switch c.EmbeddingProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("%w: EMBEDDING_PROVIDER must be openai or gemini", ErrMissingRequired)
	}
	return nil
}
