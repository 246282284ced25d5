package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/junkd0g/worldmap/internal/config"
	"github.com/junkd0g/worldmap/internal/tools"
	"github.com/junkd0g/worldmap/internal/worldmap"
)

func main() {
	configPath := flag.String("config", "", "configuration file (YAML)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Logging.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	shapes := worldmap.DefaultShapes()
	if cfg.Map.ShapesPath != "" {
		if shapes, err = worldmap.LoadShapes(cfg.Map.ShapesPath); err != nil {
			logger.Fatal("Failed to load country shapes", zap.Error(err))
		}
	}

	s := server.NewMCPServer(
		"worldmap",
		"1.0.0",
	)

	tools.Register(s, tools.NewToolset(cfg, shapes, logger))

	if err := server.ServeStdio(s); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
