package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SAP-F-2025/exam-session-service/internal/api"
	"github.com/SAP-F-2025/exam-session-service/internal/auth"
	"github.com/SAP-F-2025/exam-session-service/internal/cache"
	"github.com/SAP-F-2025/exam-session-service/internal/config"
	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/handlers"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-session-service/internal/services"
	"github.com/SAP-F-2025/exam-session-service/internal/session"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
	"github.com/SAP-F-2025/exam-session-service/internal/validator"
	"github.com/SAP-F-2025/exam-session-service/pkg"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "exam-session-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)

	zapLogger, err := newZapLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to init cache logger: %w", err)
	}
	defer zapLogger.Sync()

	// Upstream platform
	client, err := gateway.New(gateway.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.UpstreamTimeout,
		Tokens:  gateway.ContextTokens,
		Logger:  slogger,
	})
	if err != nil {
		return err
	}
	practice := api.NewPractice(client)

	// Snapshot cache, skipped when redis is down
	var fetcher session.SnapshotFetcher = practice
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, test content will not be cached", "error", err)
	} else {
		defer redisClient.Close()
		fetcher = cache.NewSnapshotCache(cache.NewRedisCache(redisClient, zapLogger), practice, cfg.SnapshotCacheTTL, zapLogger)
	}

	// Submission store
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	submissions := postgres.NewSubmissionPostgreSQL(db)

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	v := validator.New()

	users := api.NewUsers(client)
	sessionService := services.NewSessionService(fetcher, practice, submissions, publisher, slogger, v, services.SessionServiceConfig{
		Identities:         users,
		DefaultPartMinutes: cfg.DefaultPartMinutes,
		AutoSubmitOnTimeUp: cfg.AutoSubmitOnTimeUp,
	})
	defer sessionService.Close()
	resultService := services.NewResultService(api.NewResults(client), slogger)

	catalog := handlers.CatalogAPIs{
		Tests:              api.NewTests(client),
		TestInfo:           api.NewTestInfo(client),
		Practice:           practice,
		Questions:          api.NewQuestions(client),
		QuestionSets:       api.NewQuestionSets(client),
		QuestionCategories: api.NewQuestionCategories(client),
		QuestionTypes:      api.NewQuestionTypes(client),
		Parts:              api.NewParts(client),
		Skills:             api.NewSkills(client),
		TestCategories:     api.NewTestCategories(client),
	}
	guard := auth.NewGuard(auth.NewInspector(cfg.TokenLeeway), slogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.ContextLogger(logger), utils.LoggerMiddleware(logger))

	handlers.NewHandlerManager(
		sessionService,
		resultService,
		api.NewAuth(client),
		users,
		catalog,
		guard,
		v,
		logger,
	).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func newZapLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
