package main

import (
	"Sidekick/internal/config"
	"Sidekick/internal/fixtures"
	"Sidekick/internal/handlers"
	"Sidekick/internal/middleware"
	"Sidekick/internal/repo"
	"Sidekick/internal/service"
	"Sidekick/internal/stats"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var buildVersion = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.NewConfig()
	if cfg.Version {
		fmt.Println("sidekick-server", buildVersion)
		return
	}

	// создаём регистратор zap с уровнем из конфигурации
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	middleware.SetTokenTTL(time.Duration(cfg.AuthTTLMinutes) * time.Minute)
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sugar); err != nil {
		sugar.Fatalw("server failed", "error", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func run(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) error {
	gormDB, err := repo.InitDB(cfg.DatabaseType, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := repo.Close(gormDB); err != nil {
			sugar.Errorw("failed to close database", "error", err)
		}
	}()

	fsys, err := fixtures.Open(cfg.FixturesDir)
	if err != nil {
		return fmt.Errorf("fixtures: %w", err)
	}

	collector, err := stats.NewPrometheus(nil)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	docRepo := repo.NewDocumentRepository(gormDB)
	tagRepo := repo.NewTagRepository(gormDB)
	tx := repo.NewTransactor(gormDB)

	docService := service.NewDocumentService(userRepo, docRepo, tagRepo, tx, sugar, collector)
	seeder := service.NewSeeder(fsys, docService, sugar)
	opts := []service.UserOption{service.WithStats(collector)}
	if cfg.BcryptCost > 0 {
		opts = append(opts, service.WithBcryptCost(cfg.BcryptCost))
	}
	userService := service.NewUserService(userRepo, docService, tagRepo, tx, seeder, sugar, opts...)
	settingsService := service.NewSettingsService(fsys, docService, sugar)

	if err := service.Bootstrap(ctx, userService, settingsService, cfg.AdminPassword, sugar); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	h := handlers.NewHandler(handlers.Services{
		Users:     userService,
		Documents: docService,
		Settings:  settingsService,
		Stats:     collector,
		Metrics:   promhttp.Handler(),
		PingDB:    func() error { return repo.Ping(gormDB) },
		Snapshot:  collector.Snapshot,
		Version:   buildVersion,
	}, sugar, cfg)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server",
		"addr", cfg.BaseURL,
		"version", buildVersion,
	)
	sugar.Infow("Config",
		"DatabaseType", cfg.DatabaseType,
		"EnableHTTPS", cfg.EnableHTTPS,
		"FixturesDir", cfg.FixturesDir,
		"LogLevel", cfg.LogLevel,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	sugar.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
