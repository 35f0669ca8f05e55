package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kumarabd/gokit/logger"
	"github.com/kumarabd/validation-plane/tuner/internal/config"
	"github.com/kumarabd/validation-plane/tuner/internal/metrics"
	"github.com/kumarabd/validation-plane/tuner/pkg/cache"
	"github.com/kumarabd/validation-plane/tuner/pkg/notifier"
	"github.com/kumarabd/validation-plane/tuner/pkg/server"
	"github.com/kumarabd/validation-plane/tuner/pkg/service"
	"github.com/kumarabd/validation-plane/tuner/pkg/store"
)

// main is the entry point of the application
func main() {
	// Initialize a new logger with the application name and syslog format
	log, err := logger.New(config.ApplicationName, logger.Options{
		Format: logger.SyslogLogFormat,
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Initialize a new configuration handler
	configHandler, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("")
		os.Exit(1)
	}

	// Initialize a new metrics handler with the application name as namespace
	metricsHandler, err := metrics.New(config.ApplicationName)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Initialize the options store
	storeHandler, err := store.New(configHandler.Store, log)
	if err != nil {
		log.Error().Err(err).Msg("store initialization failed")
		os.Exit(1)
	}

	// Initialize the revision history
	historyHandler, err := cache.New(configHandler.History)
	if err != nil {
		log.Error().Err(err).Msg("history initialization failed")
		os.Exit(1)
	}

	// Initialize the revision notifier
	notifierHandler := notifier.New(configHandler.Notifier, log, metricsHandler)

	// Initialize the options service (loads the persisted document)
	serviceHandler, err := service.New(log, metricsHandler, storeHandler, historyHandler, notifierHandler)
	if err != nil {
		log.Error().Err(err).Msg("service initialization failed")
		os.Exit(1)
	}
	log.Info().Msg("service initialized")

	// Start distributing accepted revisions
	if err := notifierHandler.Start(); err != nil {
		log.Error().Err(err).Msg("notifier start failed")
		os.Exit(1)
	}

	// Watch the options file for external edits
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if configHandler.Store.Watch {
		err := storeHandler.Watch(ctx, func() {
			if err := serviceHandler.Reload(ctx); err != nil {
				log.Error().Err(err).Msg("rejected externally edited options")
			}
		})
		if err != nil {
			log.Error().Err(err).Msg("store watch failed")
			os.Exit(1)
		}
		log.Info().Msg("options file watch started")
	}

	// Create server instance
	srv, err := server.New(log, metricsHandler, configHandler.Server, serviceHandler)
	if err != nil {
		log.Error().Err(err).Msg("server initialization failed")
		os.Exit(1)
	}
	log.Info().Msg("server initialized")

	// Run the server with graceful shutdown
	ch := make(chan struct{})
	srv.Start(ch)
	<-ch
	log.Info().Msg("server stopped")

	// Stop the notifier gracefully
	if err := notifierHandler.Stop(); err != nil {
		log.Error().Err(err).Msg("notifier stop failed")
	}
	log.Info().Msg("notifier stopped")
}
