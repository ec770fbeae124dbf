package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/teamfeed/app/api"
	"github.com/lysyi3m/teamfeed/app/cfg"
	"github.com/lysyi3m/teamfeed/app/database"
	"github.com/lysyi3m/teamfeed/app/feed"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Team Feed server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	stores := feed.Stores{
		Users:         database.NewUserStore(db),
		Clients:       database.NewClientStore(db),
		Guilds:        database.NewGuildStore(db),
		Projects:      database.NewProjectStore(db),
		Links:         database.NewProjectGuildStore(db),
		Tasks:         database.NewTaskStore(db),
		Notifications: database.NewNotificationStore(db),
	}

	seeder := feed.NewSeeder(stores.Users, stores.Clients, stores.Projects, stores.Guilds)
	if err := seeder.Run(context.Background(), appCfg.SeedFile); err != nil {
		slog.Error("Failed to apply seed file", "path", appCfg.SeedFile, "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(stores, database.NewPostStore(db), appCfg.FeedLimit)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "public_url", appCfg.PublicURL())
		slog.Debug("Endpoints",
			"feed", appCfg.PublicURL()+"/feed.rss",
			"health", appCfg.PublicURL()+"/health",
			"api", appCfg.PublicURL()+"/api")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Team Feed server shutdown complete")
}
