package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/kumarlokesh/trie-server/internal/api"
	"github.com/kumarlokesh/trie-server/internal/config"
	"github.com/kumarlokesh/trie-server/internal/logging"
	"github.com/kumarlokesh/trie-server/internal/trie"
)

func main() {
	flags := pflag.NewFlagSet("trieserver", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to config file")
	flags.String("server-host", "0.0.0.0", "address to listen on")
	flags.Int("server-port", 8080, "port to listen on")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console or json)")
	flags.Bool("ratelimit-enabled", false, "enable request rate limiting")
	flags.Float64("ratelimit-requests-per-second", 100, "sustained request rate when rate limiting is enabled")
	flags.Int("ratelimit-burst", 50, "request burst when rate limiting is enabled")
	flags.Parse(os.Args[1:])

	path := *configPath
	if path == "" {
		path = config.GetConfigPath()
	}

	cfg, err := config.LoadConfig(path, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	if path != "" {
		logger.Info().Str("path", path).Msg("loaded config file")
	}

	// One trie for the lifetime of the process, shared by every request
	server := api.NewServer(cfg, trie.New(), logger)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("starting trie server")
		serverErrors <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Fatal().Err(err).Msg("server error")
		}
		return
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	logger.Info().Msg("server stopped")
}
