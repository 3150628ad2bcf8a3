// Package main provides the entry point for the Tooldex server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/tooldexapp/tooldex-server/internal/di"
	"github.com/tooldexapp/tooldex-server/internal/di/providers"
	"github.com/tooldexapp/tooldex-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown error")
	}

	// Database, event log, and search index use wrapper types and need
	// explicit shutdown after everything else has drained.
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		log.Info("Closing database...")
		if err := storeHandle.Shutdown(); err != nil {
			log.WithError(err).Error("Failed to close database")
		} else {
			log.Info("Database closed successfully")
		}
	}

	if eventLogHandle, err := do.Invoke[*providers.EventLogHandle](injector); err == nil {
		log.Info("Closing event log...")
		if err := eventLogHandle.Shutdown(); err != nil {
			log.WithError(err).Error("Failed to close event log")
		}
	}

	if searchHandle, err := do.Invoke[*providers.SearchIndexHandle](injector); err == nil {
		log.Info("Closing search index...")
		if err := searchHandle.Shutdown(); err != nil {
			log.WithError(err).Error("Failed to close search index")
		} else {
			log.Info("Search index closed successfully")
		}
	}

	log.Info("Tooldex signing off...")
}
