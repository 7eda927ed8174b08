package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lysyi3m/putcast/app/api"
	"github.com/lysyi3m/putcast/app/cfg"
	"github.com/lysyi3m/putcast/app/database"
	"github.com/lysyi3m/putcast/app/feed"
	"github.com/lysyi3m/putcast/app/putio"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Putcast stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting Putcast server", "version", appCfg.Version)

	if appCfg.PutioClientID == "" || appCfg.PutioClientSecret == "" {
		slog.Warn("PUTIO_CLIENT_ID or PUTIO_CLIENT_SECRET not set, sign-in will fail")
	}
	if appCfg.SessionSecret == "change-me" {
		slog.Warn("SESSION_SECRET uses the default value, set it in production")
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	mediaTypes, err := feed.LoadMediaTypes(appCfg.MediaTypesFile)
	if err != nil {
		return err
	}

	feedRepo := database.NewFeedRepository(db)

	client := putio.NewClient(appCfg.PutioAPIURL, &http.Client{},
		putio.WithUserAgent(appCfg.UserAgent),
		putio.WithTimeout(appCfg.GetRequestTimeout()),
		putio.WithMaxRetries(appCfg.ProviderMaxRetries))

	crawler := feed.NewCrawler(client, feed.NewClassifier(mediaTypes),
		feed.WithMaxDepth(appCfg.CrawlMaxDepth),
		feed.WithConcurrency(appCfg.CrawlConcurrency))

	service := feed.NewService(feedRepo, crawler, appCfg.PublicURL())
	oauth := putio.OAuthConfig(appCfg.PutioAPIURL, appCfg.PutioClientID, appCfg.PutioClientSecret, appCfg.RedirectURL())

	handler := api.NewHandler(service, feedRepo, client, oauth, appCfg.PublicURL())
	router, err := api.NewServer(handler, appCfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	// Feed fetches walk whole folder trees, so writes get the crawl budget
	// on top of the usual allowance.
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30*time.Second + time.Duration(appCfg.ProviderMaxRetries+1)*appCfg.GetRequestTimeout(),
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "public_url", appCfg.PublicURL())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		return err
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("Putcast server shutdown complete")
	return nil
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
