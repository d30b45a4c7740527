package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"rag-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL"`
	ChatModel      string `envconfig:"CHAT_MODEL"`

	// APITokens maps bearer tokens to user emails as
	// "token1:alice@example.com,token2:bob@example.com".
	APITokens string `envconfig:"API_TOKENS"`

	RetrievalTopK    int    `envconfig:"RETRIEVAL_TOP_K" default:"5"`
	HydeEnabled      bool   `envconfig:"HYDE_ENABLED" default:"true"`
	LogFlushInterval string `envconfig:"LOG_FLUSH_INTERVAL" default:"10s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("RAG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// ParseAPITokens decodes the token table. Malformed pairs are reported
// rather than silently skipped so a typo in a token list fails loudly.
func (c *Config) ParseAPITokens() (map[string]string, error) {
	tokens := make(map[string]string)
	if c.APITokens == "" {
		return tokens, nil
	}
	for _, pair := range strings.Split(c.APITokens, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, email, found := strings.Cut(pair, ":")
		if !found || token == "" || email == "" {
			return nil, fmt.Errorf("malformed api token entry %q", pair)
		}
		tokens[strings.TrimSpace(token)] = strings.TrimSpace(email)
	}
	return tokens, nil
}
