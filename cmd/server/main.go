package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/errtrack"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docshelf/backend/internal/infrastructure/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Flags override environment
	port := flag.String("port", "", "Server port (overrides PORT)")
	host := flag.String("host", "", "Server host (overrides HOST)")
	dataDir := flag.String("data-dir", "", "Application data directory (overrides DOCS_DATA_DIR)")
	strict := flag.Bool("strict", false, "Enforce containment under custom document locations")
	dev := flag.Bool("dev", false, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *dataDir != "" {
		cfg.Documents.DataDir = *dataDir
	}
	if *strict {
		cfg.Documents.StrictContainment = true
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	reporter, err := errtrack.New(cfg.Sentry.DSN, cfg.Sentry.Environment, "docshelf")
	if err != nil {
		logger.Warn("Error reporting disabled", zap.Error(err))
	}
	defer reporter.RecoverAndCapture()

	srv, err := server.NewServer(cfg, logger, reporter)
	if err != nil {
		reporter.CaptureError(err, map[string]string{"phase": "startup"})
		reporter.Flush(server.FlushTimeout)
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Shutting down gracefully", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
}
