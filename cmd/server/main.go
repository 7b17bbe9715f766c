// Package main runs the guest desk HTTP API with the in-process archive worker and graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/guestdesk/backend/config"
	"github.com/guestdesk/backend/internal/auth"
	"github.com/guestdesk/backend/internal/companies"
	"github.com/guestdesk/backend/internal/document"
	"github.com/guestdesk/backend/internal/forms"
	"github.com/guestdesk/backend/internal/guestbook"
	"github.com/guestdesk/backend/internal/labels"
	"github.com/guestdesk/backend/internal/metrics"
	"github.com/guestdesk/backend/internal/worker"
	"github.com/guestdesk/backend/pkg/database"
	"github.com/guestdesk/backend/pkg/queue"
	"github.com/guestdesk/backend/pkg/redis"
	"github.com/guestdesk/backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{MaxConns: int32(cfg.Database.MaxConns)}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	authRepo := auth.NewRepository(pool)
	hash, err := auth.HashPassword(cfg.Auth.DefaultAdminPassword)
	if err != nil {
		logger.Fatal("hash admin password", zap.Error(err))
	}
	created, err := authRepo.EnsureDefaultAdmin(ctx, cfg.Auth.DefaultAdminUsername, hash)
	if err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}
	if created {
		logger.Info("default admin created", zap.String("username", cfg.Auth.DefaultAdminUsername))
	}

	// A nil Cmdable keeps the template cache and queue off when Redis is not configured.
	var rdb goredis.Cmdable
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer client.Close()
		rdb = client.Client
	} else {
		logger.Warn("redis disabled: template cache and document archive are off")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	jwtService := auth.NewJWTService(cfg.JWT.Secret,
		time.Duration(cfg.JWT.ExpireMinutes)*time.Minute,
		time.Duration(cfg.JWT.RememberDays)*24*time.Hour)

	formStore := forms.NewCachedStore(forms.NewRepository(pool), rdb, cfg.Cache.FormTTL, logger)
	companyRepo := companies.NewRepository(pool)
	ledger := guestbook.NewRepository(pool)
	renderer := document.NewRenderer(document.DefaultLayout(), labels.Default())

	registration := guestbook.NewService(formStore, renderer, ledger, companyRepo, logger)
	registration.SetMetrics(m)

	var processor *worker.ArchiveProcessor
	if rdb != nil && cfg.AWS.DocumentsBucket != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			DocumentsBucket: cfg.AWS.DocumentsBucket,
			Endpoint:        cfg.AWS.Endpoint,
			UsePathStyle:    cfg.AWS.UsePathStyle,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			jobQueue := queue.NewQueue(rdb, logger)
			registration.SetArchiver(jobQueue)
			processor = worker.NewArchiveProcessor(ledger, s3Client, jobQueue, m, logger)
		}
	}

	router := newRouter(routes{
		apiKey:      cfg.Auth.APIKey,
		corsOrigins: cfg.Server.CORSAllowedOrigins,
		jwt:         jwtService,
		gatherer:    reg,
		auth:        auth.NewHandler(authRepo, jwtService, logger),
		forms:       forms.NewHandler(formStore, logger),
		companies:   companies.NewHandler(companyRepo, logger),
		guestBook:   guestbook.NewHandler(registration, ledger, logger),
		logger:      logger,
	})
	if cfg.Auth.APIKey == "" {
		logger.Warn("API_KEY not set: API key check disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if processor != nil {
		g.Go(func() error {
			logger.Info("archive worker started")
			processor.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
