package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/novachat/nova-chat/pkg/chat"
	"github.com/novachat/nova-chat/pkg/config"
	"github.com/novachat/nova-chat/pkg/store"
)

func openStore(cfg *config.Config, log *slog.Logger) chat.Store {
	if err := store.EnsureSchema(cfg.ScyllaHosts, cfg.Keyspace); err != nil {
		log.Warn("message store unreachable, running on in-memory fallback", "error", err)
		return store.Unavailable{}
	}
	sc, err := store.New(cfg.ScyllaHosts, cfg.Keyspace, cfg.SnowflakeNode)
	if err != nil {
		log.Warn("message store unreachable, running on in-memory fallback", "error", err)
		return store.Unavailable{}
	}
	log.Info("connected to scylla", "hosts", cfg.ScyllaHosts, "keyspace", cfg.Keyspace)
	return sc
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	st := openStore(cfg, logger)
	if sc, ok := st.(*store.Scylla); ok {
		defer sc.Close()
	}

	presence := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer presence.Close()

	var producer *kafka.Writer
	if len(cfg.KafkaBrokers) > 0 {
		producer = &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaTopic,
			Balancer: &kafka.LeastBytes{},
			Async:    true,
		}
		defer producer.Close()
	}

	hub := NewHub(presence, producer, logger)
	go hub.Run()

	buffer := chat.NewFallbackBuffer(cfg.BufferCapacity)
	svc := chat.NewService(st, buffer, hub, cfg.HistoryLimit, logger)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      CORSMiddleware(cfg.AllowedOrigin, newRoutes(svc, hub, logger)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
