package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zozs/scan-stream/internal/config"
	"github.com/zozs/scan-stream/internal/feed"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	if *port > 0 {
		cfg.Feed.Port = *port
	}

	f := feed.New(cfg.Feed.HistorySize)
	server := feed.NewServer(f, cfg.Feed.Token)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sim := feed.NewSimulator(f, cfg.Feed.PublishInterval, cfg.Feed.FailRatio)
	sim.Start(ctx)

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		os.Exit(0)
	}()

	if err := feed.ListenAndServe(cfg.Feed.Host, cfg.Feed.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
