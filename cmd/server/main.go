package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"prophet/internal/boundedcontext"
	"prophet/internal/config"
	"prophet/internal/logging"
	"prophet/internal/metrics"
	"prophet/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithWuPalmer(cfg.UseWuPalmer),
	}
	if cfg.MetricsEnabled {
		opts = append(opts, server.WithMetrics(metrics.EnablePrometheus()))
	}

	srv := server.New(boundedcontext.NewHTTPClient(cfg.BoundedContext()), opts...)

	fmt.Printf("🚀 Prophet Analysis Server\n")
	fmt.Printf("📡 服务地址: %s\n", cfg.ListenAddr)
	fmt.Printf("🔗 限界上下文服务: %s\n\n", cfg.BoundedContextURL())

	logger.Info("server starting", "addr", cfg.ListenAddr, "metrics", cfg.MetricsEnabled)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, srv.Routes()))
}
