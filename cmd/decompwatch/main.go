// Command decompwatch is a terminal console for the decomp agent: it
// follows the live event stream and shows per-function progress.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dwilliams27/gc-decomp/internal/app"
	"github.com/dwilliams27/gc-decomp/internal/client"
	"github.com/dwilliams27/gc-decomp/internal/config"
	"github.com/dwilliams27/gc-decomp/internal/eventlog"
	"github.com/dwilliams27/gc-decomp/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	serverURL := flag.String("url", "", "Backend base URL (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}

	lg := eventlog.New(cfg.Stream.LogCapacity)
	agg := worker.NewAggregator()
	session := client.NewSession(
		deriveStreamURL(cfg.Server.URL),
		lg, agg,
		client.WithReconnectDelay(cfg.Stream.ReconnectDelay),
		client.WithKeepaliveInterval(cfg.Stream.KeepaliveInterval),
	)
	defer session.Close()

	httpClient := client.NewHTTPClient(cfg.Server.URL)

	m := app.New(session, lg, agg, httpClient)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deriveStreamURL converts http://host:port → ws://host:port/ws/events.
func deriveStreamURL(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return "ws://127.0.0.1:8000/ws/events"
	}
	scheme := "ws"
	if strings.HasPrefix(u.Scheme, "https") {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s/ws/events", scheme, u.Host)
}
