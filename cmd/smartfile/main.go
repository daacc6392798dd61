package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartfile/internal/config"
	"smartfile/internal/database"
	"smartfile/internal/exitcodes"
	"smartfile/internal/logging"
	"smartfile/internal/metrics"
	"smartfile/internal/runner"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to configuration file")
	serve := flag.Bool("serve", false, "Keep reading commands until EOF instead of exiting after one")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Logger setup depends on config, so config errors go to stderr raw
		os.Stderr.WriteString("ERROR: Failed to load config: " + err.Error() + "\n")
		os.Exit(exitcodes.InvalidConfig)
	}

	logger := logging.NewWithConfig(cfg)
	logger.Println("SmartFile engine starting...")
	logger.Printf("Config file: %s", *configPath)

	metrics.Init()
	if cfg.MetricsEnabled() {
		logger.Printf("Starting Prometheus metrics on %s", cfg.PrometheusAddress())
		metrics.StartServer(cfg.PrometheusAddress(), logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metrics.Shutdown(ctx, logger)
		}()
	}

	r := runner.New(cfg, logger)
	r.SetVerboseWriter(os.Stderr)

	if cfg.DatabasePath != "" {
		logger.Printf("Opening operation history database: %s", cfg.DatabasePath)
		db, err := database.NewHistoryDB(cfg.DatabasePath)
		if err != nil {
			// History is an audit aid; a missing journal must not block
			// operations on a host without the state directory
			logger.Printf("WARNING: operation history disabled: %v", err)
		} else {
			r.AttachHistory(db)
			defer func() {
				if err := db.Close(); err != nil {
					logger.Printf("ERROR: Failed to close database: %v", err)
				}
			}()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	var ok bool
	if *serve {
		ok, err = r.Run(ctx, os.Stdin, os.Stdout)
	} else {
		ok, err = r.RunSingle(ctx, os.Stdin, os.Stdout)
	}
	if err != nil && err != context.Canceled {
		if errors.Is(err, runner.ErrInvalidCommand) {
			os.Exit(exitcodes.InvalidCommand)
		}
		logger.Printf("ERROR: command loop failed: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}

	if !ok {
		os.Exit(exitcodes.OperationFailed)
	}
	logger.Println("SmartFile engine stopped")
}
