package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/eastertrail/internal/adminauth"
	"github.com/playperu/eastertrail/internal/config"
	"github.com/playperu/eastertrail/internal/configstore"
	"github.com/playperu/eastertrail/internal/database"
	"github.com/playperu/eastertrail/internal/handler/health"
	"github.com/playperu/eastertrail/internal/migrations"
	"github.com/playperu/eastertrail/internal/server"
	"github.com/playperu/eastertrail/internal/storybook"
	"github.com/playperu/eastertrail/internal/upload"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	content, err := storybook.LoadContent()
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	// --- Site config ---
	store, checker, closeStore, err := openConfigStore(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Admin auth ---
	auth, err := adminauth.NewAuthenticator(cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		return fmt.Errorf("ADMIN_PASSWORD_HASH: %w", err)
	}
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		if secret, err = adminauth.RandomSecret(); err != nil {
			return err
		}
		if auth.Enabled() {
			logger.Warn("SESSION_SECRET not set, admin sessions end on restart")
		}
	}
	if !auth.Enabled() {
		logger.Warn("ADMIN_PASSWORD not set, admin pages are open")
	}

	// --- HTTP Server ---
	uploads := upload.New(cfg.UploadsDir, content.ItemImages)
	broker := server.NewBroker()
	sessions := server.NewSessions(logger, broker, cfg.PlaySessionTTL)
	uploadsCheck := health.CheckerFunc(func(context.Context) error { return uploads.Check() })

	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Content:  content,
		Config:   store,
		Uploads:  uploads,
		Gate:     &adminauth.Gate{Auth: auth, Signer: adminauth.NewSigner(secret), Secure: cfg.Production()},
		Sessions: sessions,
		Broker:   broker,
		Health: map[string]health.Checker{
			"config":  checker,
			"uploads": uploadsCheck,
		},
		SPADir: cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr, "config_backend", cfg.ConfigBackend)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		return sessions.Run(gctx)
	})

	return g.Wait()
}

// openConfigStore connects the site config backend named by
// CONFIG_BACKEND and returns it with its health check.
func openConfigStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) (configstore.Store, health.Checker, func(), error) {
	switch cfg.ConfigBackend {
	case config.BackendSQLite:
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to sqlite: %w", err)
		}
		if err := migrations.Run(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("connected to sqlite", "path", cfg.DBPath)
		return configstore.NewDocStore(db), database.Checker{DB: db}, func() { db.Close() }, nil

	case config.BackendRedis:
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("connected to redis", "key", cfg.RedisKey)
		s := configstore.NewRedisStore(rdb, cfg.RedisKey)
		return s, health.CheckerFunc(s.Check), func() { rdb.Close() }, nil

	default:
		s := configstore.NewFileStore(cfg.DataDir)
		logger.Info("using file config store", "path", s.Path())
		return s, health.CheckerFunc(s.Check), func() {}, nil
	}
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
