package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/888Greys/rag-ai/internal/config"
	"github.com/888Greys/rag-ai/internal/database"
	"github.com/888Greys/rag-ai/internal/repository"
	"github.com/888Greys/rag-ai/internal/storage"
	"github.com/spf13/cobra"
)

// DeleteCmd returns the delete command for removing a document and its
// chunks without going through the HTTP API.
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a document by path",
		Long:  "Remove a document's chunks and its stored blob, e.g. ragd delete shared/handbook.txt",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	deleted, err := repository.NewChunkRepository(pool).DeleteByPath(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
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
		if err := s3Client.DeleteObject(ctx, path); err != nil {
			return fmt.Errorf("failed to delete blob: %w", err)
		}
	}

	log.Printf("deleted %s (%d chunks)", path, deleted)
	return nil
}
