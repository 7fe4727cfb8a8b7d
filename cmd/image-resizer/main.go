package main

import (
	"context"
	"errors"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	apitask "image-resizer/internal/api/handlers/task"
	"image-resizer/internal/api/router"
	"image-resizer/internal/api/server"
	"image-resizer/internal/config"
	"image-resizer/internal/fetcher"
	"image-resizer/internal/format"
	"image-resizer/internal/infra/kafka/consumer"
	"image-resizer/internal/infra/kafka/producer"
	taskmsg "image-resizer/internal/kafka/handlers/task"
	"image-resizer/internal/processor"
	"image-resizer/internal/queue"
	taskrepo "image-resizer/internal/repository/task"
	tasksvc "image-resizer/internal/service/task"
	filestorage "image-resizer/internal/storage/file"
	miniostorage "image-resizer/internal/storage/minio"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config/config.yml")

	// Connect to PostgreSQL (master and slaves).
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Retry strategy for Kafka and other external calls.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Output storage backend: local filesystem or MinIO.
	var store interface {
		Save(ctx context.Context, relPath string, src io.Reader) (string, error)
	}
	switch cfg.Storage.Backend {
	case config.StorageBackendMinio:
		m := cfg.Storage.Minio
		store, err = miniostorage.NewStorage(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.BucketName, m.UseSSL)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
		}
	default:
		store = filestorage.NewStorage(cfg.Storage.BaseDir)
	}

	// Engine, repository, fetcher and service layer.
	repo := taskrepo.NewRepository(db)
	eng := processor.New(store, format.NewRegistry())
	f := fetcher.New(cfg.Fetcher.Timeout)

	var (
		svc *tasksvc.Service
		p   *producer.Producer
		c   *consumer.Consumer
		wg  sync.WaitGroup
	)

	switch cfg.Queue.Mode {
	case config.QueueModeInline:
		// Degenerate transport: jobs run synchronously in-process.
		iq := queue.NewInline(strategy)
		svc = tasksvc.NewService(repo, iq, f, eng)
		iq.SetHandler(svc.ProcessJob)

	default:
		p = producer.New(&cfg.Kafka, strategy)
		svc = tasksvc.NewService(repo, p, f, eng)

		jobHandler := taskmsg.NewJobHandler(svc)
		c = consumer.New(&cfg.Kafka, strategy, jobHandler, cfg.Queue.Workers)

		wg.Add(1)
		go c.Consume(ctx, &wg)
	}

	// HTTP surface.
	h := apitask.NewHandler(svc)
	r := router.Setup(h)
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		if err := s.ListenAndServe(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Wait for the consumer goroutine and its in-flight jobs to finish.
	wg.Wait()

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Close master and slave databases.
	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}
	for i, slave := range db.Slaves {
		if err := slave.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	// Close Kafka producer and consumer clients.
	if p != nil {
		if err := p.Client.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
		}
	}
	if c != nil {
		if err := c.Client.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
		}
	}
}
