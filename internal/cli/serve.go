// Package cli contains the askdocd commands.
package cli

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

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/askdoc-io/askdoc/internal/api/handlers"
	"github.com/askdoc-io/askdoc/internal/config"
	"github.com/askdoc-io/askdoc/internal/database"
	"github.com/askdoc-io/askdoc/internal/embedding"
	"github.com/askdoc-io/askdoc/internal/jobs"
	"github.com/askdoc-io/askdoc/internal/llm"
	"github.com/askdoc-io/askdoc/internal/repository"
	"github.com/askdoc-io/askdoc/internal/server"
	"github.com/askdoc-io/askdoc/internal/service"
	"github.com/askdoc-io/askdoc/internal/storage"
	"github.com/askdoc-io/askdoc/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the askdoc API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-worker", false, "Disable the background ingest worker")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HasSentry() {
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
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

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunkRepo := repository.NewChunkRepository(pool, cfg.EmbeddingDimensions)
	documentRepo := repository.NewDocumentRepository(pool)
	ingestJobRepo := repository.NewIngestJobRepository(pool)

	// Schema sync is belt and braces on top of migrations; a failure here is
	// a warning, ingestion surfaces its own error if the table is missing.
	if err := chunkRepo.EnsureSchema(ctx); err != nil {
		log.Printf("warning: chunk schema sync failed: %v", err)
	}

	ollamaClient := llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaChatModel, cfg.OllamaEmbedModel)

	var strategies []embedding.Strategy
	var chatClient llm.ChatClient = ollamaClient
	if cfg.HasOpenAI() {
		openaiClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIChatModel)
		strategies = append(strategies, embedding.Strategy{Name: "openai-embed", Embed: openaiClient.Embed})
		chatClient = openaiClient
	}
	strategies = append(strategies,
		embedding.Strategy{Name: "ollama-embed", Embed: ollamaClient.Embed},
		embedding.Strategy{Name: "ollama-embed-legacy", Embed: ollamaClient.EmbedLegacy},
		embedding.FromTextCompletion("ollama-chat-json", cfg.EmbeddingDimensions,
			func(ctx context.Context, prompt string) (string, error) {
				return ollamaClient.Chat(ctx, "You convert text into numeric vectors.", prompt)
			}),
		embedding.FromTextCompletion("ollama-generate-json", cfg.EmbeddingDimensions, ollamaClient.Generate),
		embedding.HashStrategy(cfg.EmbeddingDimensions),
	)
	provider := embedding.NewProvider(cfg.EmbeddingDimensions, strategies...)

	var texts service.TextStore
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
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		texts = s3Client
	}

	coordinator := service.NewCoordinator(chunkRepo, documentRepo, provider, service.ChunkConfig{
		Size:    cfg.ChunkSize,
		Overlap: cfg.ChunkOverlap,
	})
	documentSvc := service.NewDocumentService(documentRepo, ingestJobRepo, chunkRepo, coordinator, texts)
	retriever := service.NewRetriever(documentRepo, chunkRepo, provider, service.RetrieverConfig{
		SimilarityFloor:   cfg.SimilarityFloor,
		MetadataScanLimit: 100,
	})
	synthesizer := service.NewSynthesizer(retriever, chunkRepo, chatClient)

	var ingestWorker *jobs.Worker
	noWorker, _ := cmd.Flags().GetBool("no-worker")
	if !noWorker {
		processor := jobs.NewIngestWorker(ingestJobRepo, documentSvc)
		ingestWorker = jobs.NewWorker(processor, 10*time.Second)
		go ingestWorker.Start(ctx)
		log.Println("ingest worker started")
	}

	documentHandler := handlers.NewDocumentHandler(documentSvc, synthesizer, cfg.DefaultTopK)

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: documentHandler,
	})

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

	if ingestWorker != nil {
		ingestWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: no migrations applied yet")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else {
		log.Printf("migrations: database at version %d", version)
	}

	return nil
}
