package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/access"
	"github.com/docgate-io/docgate/internal/ai"
	"github.com/docgate-io/docgate/internal/config"
	"github.com/docgate-io/docgate/internal/db"
	"github.com/docgate-io/docgate/internal/embedcache"
	"github.com/docgate-io/docgate/internal/extract"
	"github.com/docgate-io/docgate/internal/filestore"
	"github.com/docgate-io/docgate/internal/handler"
	"github.com/docgate-io/docgate/internal/job"
	"github.com/docgate-io/docgate/internal/middleware"
	"github.com/docgate-io/docgate/internal/repo"
	"github.com/docgate-io/docgate/internal/schedule"
	"github.com/docgate-io/docgate/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docgate",
		Short: "docgate knowledge base server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the docgate server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg, database)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "seed the default client, project and super admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup(configPath)
			if err != nil {
				return err
			}
			return runBootstrap(cfg, database)
		},
	}
	bootstrapCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(bootstrapCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(database); err != nil {
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, database, nil
}

func runServer(cfg *config.Config, database *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	userRepo := repo.NewUserRepo(database)
	clientRepo := repo.NewClientRepo(database)
	projectRepo := repo.NewProjectRepo(database)
	docRepo := repo.NewDocumentRepo(database)
	chunkRepo := repo.NewChunkRepo(database)
	cacheRepo := repo.NewEmbeddingCacheRepo(database)

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedder := ai.NewEmbedder(aiProvider, cfg.AI.EmbedModel)
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, cacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(embedder, 4096, time.Hour)
	aiMgr := ai.NewManager(ai.NewGenerator(aiProvider, cfg.AI.Model), embedder, ai.ManagerConfig{
		Timeout:       cfg.AI.Timeout,
		MaxInputChars: cfg.AI.MaxInputChars,
	})

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	extractor, err := extract.New(cfg.Extractor)
	if err != nil {
		return fmt.Errorf("init extractor: %w", err)
	}

	resolver := access.NewResolver(userRepo)
	filter := access.NewFilter(docRepo, cfg.Access.StrictOwnership)

	retrieveService := service.NewRetrieveService(aiMgr, chunkRepo)
	composeService := service.NewComposeService(aiMgr)
	chatService := service.NewChatService(resolver, retrieveService, filter, composeService, cfg.Chat.MaxResults, cfg.Chat.OverfetchFactor)
	documentService := service.NewDocumentService(docRepo, chunkRepo, projectRepo, store, extractor, aiMgr, resolver, filter)
	adminService := service.NewAdminService(clientRepo, projectRepo, userRepo)
	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))

	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService),
		Chat:          handler.NewChatHandler(chatService),
		Documents:     handler.NewDocumentHandler(documentService),
		Admin:         handler.NewAdminHandler(adminService),
		Files:         handler.NewFileHandler(store),
		JWTSecret:     []byte(cfg.JWTSecret),
		ChatRateLimit: time.Duration(cfg.Chat.RateLimitMillis) * time.Millisecond,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewDocumentIndexJob(docRepo, documentService, 10), "* * * * *"); err != nil {
		return err
	}
	if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, 30), "0 4 * * *"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
