// Package main is the entry point for the devblog API server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
//  1. Read configuration (from env vars and flags)
//  2. Create the logger
//  3. Build and start the server
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points. This
// project has two: cmd/server (the API) and cmd/adduser (account creation).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-chi/docgen"

	"github.com/sakif/devblog/internal/config"
	"github.com/sakif/devblog/internal/server"
)

func main() {
	routes := flag.Bool("routes", false, "print the route documentation as markdown and exit")
	flag.Parse()

	// === 1. READ CONFIGURATION ===
	// Everything comes from environment variables; see internal/config for
	// names and defaults. JWT_SECRET has no default and must be set:
	//   JWT_SECRET=$(openssl rand -hex 32)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Log levels (from least to most severe): Debug → Info → Warn → Error.
	// LOG_LEVEL picks the minimum; Validate already rejected unknown values.
	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// Documenting the routes must not touch the real database.
	if *routes {
		cfg.Database.Path = ":memory:"
	}

	// === 3. DATABASE DIRECTORY ===
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	if cfg.Database.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. CREATE THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *routes {
		fmt.Println(docgen.MarkdownRoutesDoc(srv.Router(), docgen.MarkdownOpts{
			ProjectPath: "github.com/sakif/devblog",
			Intro:       "Routes served by the devblog API.",
		}))
		srv.Close()
		return
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
