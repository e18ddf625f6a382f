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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mixalchemist/internal/api"
	"mixalchemist/internal/config"
	"mixalchemist/internal/logger"
	"mixalchemist/internal/metrics"
	"mixalchemist/internal/platform/gemini"
	"mixalchemist/internal/platform/imagen"
	"mixalchemist/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(".")
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.Development})
	defer log.Sync()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:              cfg.GeminiAPIKey,
		Model:               cfg.TextModel,
		RecommendationCount: cfg.RecommendationCount,
	}, log)
	if err != nil {
		return fmt.Errorf("error creating gemini client: %w", err)
	}
	defer geminiClient.Close()

	imagenClient, err := imagen.NewClient(ctx, imagen.Config{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.ImageModel,
		MaxWidth: cfg.ImageMaxWidth,
	}, log)
	if err != nil {
		return fmt.Errorf("error creating imagen client: %w", err)
	}

	sess := session.New(ctx, geminiClient, imagenClient, session.Options{
		Timeout: cfg.GenerationTimeout,
		Logger:  log,
	})
	go sess.LoadRecommendations(ctx)

	r, err := newRouter(cfg, sess, log)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	sess.Wait()
	return nil
}

func newRouter(cfg *config.Config, sess api.Session, log *zap.Logger) (*gin.Engine, error) {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log))

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler := api.NewHandler(sess, log)
	if err := handler.Register(r); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r, nil
}
