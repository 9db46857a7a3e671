package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/internal/gateway/rabbit"
	"github.com/busview/busview/internal/settingsdb"
	"github.com/busview/busview/pkg/metrics"
	"github.com/busview/busview/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the management API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Settings database: persisted connection string and admin users
	settingsdb.SetDbPath(cfg.SettingsPath)
	if _, err := os.Stat(cfg.SettingsPath); os.IsNotExist(err) {
		log.Info().Msg("Settings database not found. Creating a new one...")
		if err := settingsdb.InitDB(); err != nil {
			return err
		}
	}
	if err := settingsdb.OpenDB(); err != nil {
		return err
	}
	defer settingsdb.CloseDB()

	exists, err := settingsdb.UserExists(cfg.Username)
	if err != nil {
		return err
	}
	if !exists {
		user := settingsdb.UserCreateDTO{Username: cfg.Username, Password: cfg.Password}
		if err := settingsdb.AddUser(user); err != nil {
			log.Error().Err(err).Msg("Failed to add default user")
		}
	}

	// A previously persisted descriptor wins over config defaults
	if saved, err := settingsdb.GetSetting(settingsdb.KeyConnectionString); err == nil && saved != "" && flagConnection == "" {
		cfg.ConnectionString = saved
	}

	registry := prometheus.NewRegistry()
	var collector *metrics.Collector
	if cfg.EnableMetrics {
		collector = metrics.NewCollector(registry)
	}

	gw, err := rabbit.New(rabbit.Config{
		ConnectionString: cfg.ConnectionString,
		ManagementURL:    cfg.ManagementURL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	svc := explorer.New(cfg.ConnectionString, gw, rabbit.NewFactory(cfg.ManagementURL), collector)
	defer svc.Close()

	// Warm the namespace before serving
	ctx := context.Background()
	if _, err := svc.ListQueues(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial queue load failed")
	}
	if _, err := svc.ListTopics(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial topic load failed")
	}

	if !cfg.EnableWebAPI {
		log.Info().Msg("Web API disabled - nothing to serve")
		return nil
	}

	webConfig := &web.Config{
		JwtKey:        cfg.JwtSecret,
		WebServerPort: cfg.WebPort,
		EnableMetrics: cfg.EnableMetrics,
		PeekTimeout:   cfg.PeekTimeout,
	}
	webServer, err := web.NewWebServer(webConfig, svc, registry)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	// open "server.log" for appending
	logfile, err := os.OpenFile("server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logfile.Close()

	app := webServer.SetupApp(logfile)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.WebPort)
		log.Info().Str("addr", addr).Msg("Starting web server")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("Web server error")
		}
	}()

	// Handle OS signals for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down busview...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown web server: %w", err)
	}
	log.Info().Msg("Server gracefully stopped")
	return nil
}
