package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ballotbox/cli"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/handlers"
	"github.com/danielhkuo/ballotbox/router"
)

func main() {
	// Load .env if present; real env vars take precedence
	godotenv.Load()

	// Console subcommands run against the database directly, no server
	if len(os.Args) > 1 && cli.IsCommand(os.Args[1]) {
		os.Exit(cli.Run(os.Args[1], os.Args[2:]))
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the configured backend
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Background permit expiry sweep
	if cfg.PermitSweepSchedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.PermitSweepSchedule, func() {
			expired, err := handlers.ExpireOverduePermits(dbConn)
			if err != nil {
				slog.Error("permit sweep failed", "error", err)
				return
			}
			if len(expired) > 0 {
				slog.Info("permit sweep expired permits", "count", len(expired))
			}
		})
		if err != nil {
			slog.Error("invalid permit sweep schedule", "schedule", cfg.PermitSweepSchedule, "error", err)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
		slog.Info("Permit sweep scheduled", "schedule", cfg.PermitSweepSchedule)
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
