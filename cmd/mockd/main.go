// Command mockd serves scripted decompilation runs over the agent wire
// protocol, for developing the console without a live backend.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dwilliams27/gc-decomp/internal/config"
	"github.com/dwilliams27/gc-decomp/internal/mock"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	port := flag.Int("port", 0, "Override listen port")
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
		cfg.Mock.Port = *port
	}

	hub := mock.NewHub()
	server := mock.NewServer(hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mock.NewGenerator(hub).Start(ctx, cfg.Mock.TickInterval)

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

	if err := mock.ListenAndServe(cfg.Mock.Host, cfg.Mock.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
