package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zozs/scan-stream/internal/app"
	"github.com/zozs/scan-stream/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (optional)")
	url := flag.String("url", "", "Override push endpoint URL")
	token := flag.String("token", "", "Override bearer token")
	cookie := flag.String("cookie", "", "Override session cookie (name=value)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if *url != "" {
		cfg.Watch.URL = *url
	}
	if *token != "" {
		cfg.Watch.Token = *token
	}
	if *cookie != "" {
		cfg.Watch.Cookie = *cookie
	}

	m := app.New(cfg.Watch)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
