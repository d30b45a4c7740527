package admin

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/888Greys/rag-ai/internal/config"
	"github.com/888Greys/rag-ai/internal/database"
	"github.com/888Greys/rag-ai/internal/domain"
	"github.com/888Greys/rag-ai/internal/openai"
	"github.com/888Greys/rag-ai/internal/repository"
	"github.com/888Greys/rag-ai/internal/service"
	"github.com/888Greys/rag-ai/internal/storage"
	openaigo "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// IngestCmd returns the ingest command for bulk-loading documents
// straight into a namespace, bypassing the HTTP API.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest local files into a namespace",
		Long:  "Chunk, embed, and store local text files under the given namespace",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().StringP("namespace", "n", domain.NamespaceShared, "Target namespace (e.g. shared, kca, or a user email)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	namespace, _ := cmd.Flags().GetString("namespace")
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required for ingestion")
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		EmbeddingModel: openaigo.EmbeddingModel(cfg.EmbeddingModel),
		ChatModel:      cfg.ChatModel,
	})
	ingestSvc := service.NewIngestService(client, repository.NewChunkRepository(pool))

	// Mirror the raw documents into object storage when configured so
	// file listings match what the API would have produced.
	var s3Client *storage.S3Client
	if cfg.HasS3() {
		s3Client, err = storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
	}

	for _, file := range args {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		name := filepath.Base(file)
		count, err := ingestSvc.Ingest(ctx, namespace, name, string(content))
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", file, err)
		}

		if s3Client != nil {
			key := domain.DocumentPath(namespace, name)
			if err := s3Client.PutObject(ctx, key, content, "text/plain; charset=utf-8"); err != nil {
				return fmt.Errorf("failed to store %s: %w", file, err)
			}
		}

		log.Printf("ingested %s as %s (%d chunks)", file, domain.DocumentPath(namespace, name), count)
	}

	return nil
}
