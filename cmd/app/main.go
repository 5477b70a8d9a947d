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

	"optideliver/cmd"
	"optideliver/internal/adapters/out/mongoaudit"
	"optideliver/internal/adapters/out/postgres/migrations"
	"optideliver/internal/adapters/out/rediscache"
	"optideliver/internal/pkg/logger"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const configPath = "config.toml"

func main() {
	cfg, err := cmd.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	l := logger.Must(cfg.AppEnv)
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = migrate(ctx, cfg, l); err != nil {
		l.Fatal("migrations failed", zap.Error(err))
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		l.Fatal("failed to connect to database", zap.Error(err))
	}

	adapters, closeAdapters := connectAdapters(ctx, cfg, l)
	defer closeAdapters()

	root := cmd.NewCompositionRoot(cfg, gormDB, adapters, l)

	e, err := root.NewEcho(ctx)
	if err != nil {
		l.Fatal("failed to build http server", zap.Error(err))
	}
	if cfg.AppEnv == "production" {
		e.Logger.SetLevel(log.WARN)
	} else {
		e.Logger.SetLevel(log.DEBUG)
	}

	jobManager := root.NewJobManager()
	if err = jobManager.StartAll(); err != nil {
		l.Fatal("failed to start jobs", zap.Error(err))
	}

	server := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}).Handler(e),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		l.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		l.Error("graceful shutdown failed", zap.Error(err))
	}
	jobManager.StopAll()

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	l.Info("stopped")
}

func migrate(ctx context.Context, cfg cmd.Config, l *zap.Logger) error {
	m, err := migrations.NewMigrator(cfg.DSN(), l)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	return m.Up(ctx)
}

// connectAdapters opens the optional redis cache and mongo audit trail.
// Either one failing to connect is logged and the service runs without it.
func connectAdapters(ctx context.Context, cfg cmd.Config, l *zap.Logger) (cmd.Adapters, func()) {
	var (
		adapters cmd.Adapters
		closers  []func()
	)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()

		if err != nil {
			l.Warn("redis unavailable, rankings will not be cached", zap.Error(err))
			_ = client.Close()
		} else {
			adapters.Cache = rediscache.NewRankingCache(client)
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := mongoaudit.Connect(connectCtx, cfg.MongoURI)
		cancel()

		if err != nil {
			l.Warn("mongo unavailable, slot events will not be recorded", zap.Error(err))
		} else {
			recorder := mongoaudit.NewSlotEventRecorder(client.Database(cfg.MongoDatabase))
			if err = recorder.EnsureIndexes(ctx); err != nil {
				l.Warn("failed to create slot event indexes", zap.Error(err))
			}
			adapters.Events = recorder
			closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		}
	}

	return adapters, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
