package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/888Greys/rag-ai/internal/api/handlers"
	"github.com/888Greys/rag-ai/internal/config"
	"github.com/888Greys/rag-ai/internal/database"
	"github.com/888Greys/rag-ai/internal/domain"
	"github.com/888Greys/rag-ai/internal/jobs"
	"github.com/888Greys/rag-ai/internal/openai"
	"github.com/888Greys/rag-ai/internal/repository"
	"github.com/888Greys/rag-ai/internal/server"
	"github.com/888Greys/rag-ai/internal/service"
	"github.com/888Greys/rag-ai/internal/storage"
	"github.com/888Greys/rag-ai/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	openaigo "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the rag-ai API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunkRepo := repository.NewChunkRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	retrievalLogRepo := repository.NewRetrievalLogRepository(pool)

	tokens, err := cfg.ParseAPITokens()
	if err != nil {
		return fmt.Errorf("failed to parse API tokens: %w", err)
	}
	if len(tokens) == 0 {
		log.Println("warning: RAG_API_TOKENS is empty, no bearer token will authenticate")
	}
	validator := service.NewStaticTokenValidator(tokens)

	var blobStore service.BlobStoreInterface
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		blobStore = s3Client
	} else {
		blobStore = &NoOpBlobStore{}
	}

	var generator service.Generator
	var ingester service.Ingester
	var logWorker *jobs.Worker
	if cfg.HasOpenAI() {
		client := openai.NewClientWithConfig(openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			EmbeddingModel: openaigo.EmbeddingModel(cfg.EmbeddingModel),
			ChatModel:      cfg.ChatModel,
		})

		ingester = service.NewIngestService(client, chunkRepo)
		retriever := service.NewRetriever(chunkRepo, cfg.RetrievalTopK)
		classifier := service.NewRuleClassifier()
		logBuffer := service.NewRetrievalLogBuffer(0)

		opts := []service.RAGOption{service.WithRetrievalLog(logBuffer)}
		if cfg.HydeEnabled {
			opts = append(opts, service.WithQueryExpander(service.NewHydeExpander(client)))
		}
		generator = service.NewRAGGenerator(
			service.NewChatGenerator(client, ""),
			classifier,
			client,
			retriever,
			opts...,
		)

		flushInterval, err := time.ParseDuration(cfg.LogFlushInterval)
		if err != nil {
			return fmt.Errorf("invalid RAG_LOG_FLUSH_INTERVAL: %w", err)
		}
		logWorker = jobs.NewWorker(service.NewRetrievalLogFlusher(logBuffer, retrievalLogRepo), flushInterval)
		go logWorker.Start(ctx)
		log.Println("retrieval log flusher started")
	} else {
		log.Println("warning: OPENAI_API_KEY is not set, chat and ingestion are disabled")
		generator = &NoOpGenerator{}
		ingester = &NoOpIngester{}
	}

	chatSvc := service.NewChatService(generator, conversationRepo)
	documentSvc := service.NewDocumentService(blobStore, ingester)

	routerCfg := server.RouterConfig{
		AuthValidator: validator,
		ChatHandler:   handlers.NewChatHandler(chatSvc),
		FilesHandler:  handlers.NewFilesHandler(documentSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if logWorker != nil {
		logWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// NoOpGenerator rejects chat turns when no model provider is configured.
type NoOpGenerator struct{}

func (g *NoOpGenerator) Generate(ctx context.Context, req service.GenerateRequest) (<-chan domain.StreamEvent, error) {
	return nil, fmt.Errorf("chat not configured: OPENAI_API_KEY required")
}

// NoOpIngester rejects document ingestion when no embedding provider is
// configured.
type NoOpIngester struct{}

func (i *NoOpIngester) Ingest(ctx context.Context, namespace, documentName, content string) (int, error) {
	return 0, fmt.Errorf("ingestion not configured: OPENAI_API_KEY required")
}

func (i *NoOpIngester) Delete(ctx context.Context, path string) (int64, error) {
	return 0, fmt.Errorf("ingestion not configured: OPENAI_API_KEY required")
}

// NoOpBlobStore rejects blob operations when object storage is not
// configured.
type NoOpBlobStore struct{}

func (s *NoOpBlobStore) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	return fmt.Errorf("storage not configured: S3_ENDPOINT required")
}

func (s *NoOpBlobStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("storage not configured: S3_ENDPOINT required")
}

func (s *NoOpBlobStore) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	return nil, fmt.Errorf("storage not configured: S3_ENDPOINT required")
}

func (s *NoOpBlobStore) DeleteObject(ctx context.Context, key string) error {
	return fmt.Errorf("storage not configured: S3_ENDPOINT required")
}

func (s *NoOpBlobStore) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	return "", fmt.Errorf("storage not configured: S3_ENDPOINT required")
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
