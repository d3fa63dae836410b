// Package main runs the dormant-customer analysis web service.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"trendd/internal/analysis"
	"trendd/internal/config"
	"trendd/internal/logger"
	"trendd/internal/reportstore"
	"trendd/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (defaults apply when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New("info", "text").Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ttl := time.Duration(cfg.Redis.ReportTTLMinutes) * time.Minute

	var store reportstore.Store
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisStore, err := reportstore.NewRedisStore(ctx, cfg.Redis.Addr, ttl)
		cancel()
		if err != nil {
			log.Error("redis connection failed", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()

		store = redisStore

		log.Info("report store: redis", "addr", cfg.Redis.Addr, "ttl", ttl)
	} else {
		store = reportstore.NewMemoryStore(ttl)

		log.Info("report store: in-memory", "ttl", ttl)
	}

	pipeline := analysis.New(cfg, log)

	server, err := web.NewServer(cfg, log, pipeline, store)
	if err != nil {
		log.Error("server setup failed", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("listening", "addr", cfg.Server.ListenAddr)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
