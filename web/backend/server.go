package main

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"smartfile/internal/config"
	"smartfile/internal/database"
	"smartfile/internal/metrics"
	"smartfile/internal/runner"
	"smartfile/web/backend/api"
	"smartfile/web/backend/auth"
	"smartfile/web/backend/middleware"
	"smartfile/web/backend/websocket"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

const (
	ServerAddr      = ":8443"
	ReadTimeout     = 15 * time.Second
	WriteTimeout    = 15 * time.Second
	IdleTimeout     = 60 * time.Second
	ShutdownTimeout = 10 * time.Second
)

func main() {
	logger := log.New(os.Stdout, "[smartfile-web] ", log.LstdFlags|log.Lshortfile)

	// Get JWT secret from file (Docker secrets) or environment variable (fallback)
	var jwtSecret string
	secretFile := os.Getenv("JWT_SECRET_FILE")
	if secretFile != "" {
		secretBytes, err := os.ReadFile(secretFile)
		if err != nil {
			logger.Printf("ERROR: Failed to read JWT secret file %s: %v", secretFile, err)
			logger.Fatalf("Cannot start without valid JWT secret")
		}
		jwtSecret = strings.TrimSpace(string(secretBytes))
		logger.Println("Loaded JWT secret from file (Docker secrets)")
	} else {
		jwtSecret = os.Getenv("JWT_SECRET")
		if jwtSecret == "" {
			jwtSecret = "your-secret-key-change-this" // Fallback for dev only
			logger.Println("WARNING: Using default JWT secret. Set JWT_SECRET_FILE or JWT_SECRET env var in production!")
		} else {
			logger.Println("WARNING: Using JWT_SECRET env var. Consider using JWT_SECRET_FILE with Docker secrets for better security.")
		}
	}

	jwtExpiryStr := os.Getenv("JWT_EXPIRY")
	if jwtExpiryStr == "" {
		jwtExpiryStr = "24h"
	}
	jwtExpiry, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiry = 24 * time.Hour
		logger.Printf("Invalid JWT_EXPIRY, using default: %v", err)
	}

	jwtManager := auth.NewJWTManager(jwtSecret, jwtExpiry)

	// Metrics must be initialized before the instrumentation middleware
	// records anything
	metrics.Init()

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// The API executes operations through the same pipeline as the
	// stdin-driven engine; dangerous operations still require force
	run := runner.New(cfg, logger)

	var historyDB *database.HistoryDB
	if cfg.DatabasePath != "" {
		historyDB, err = database.NewHistoryDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("WARNING: operation history unavailable: %v", err)
			historyDB = nil
		} else {
			run.AttachHistory(historyDB)
			defer historyDB.Close()
		}
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Create router
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.MetricsMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.SecurityHeadersMiddleware)
	// Limit request body size to 1MB to prevent DoS attacks
	router.Use(middleware.RequestBodySizeLimitMiddleware(1 << 20))
	// Global rate limiting: 100 requests per second with burst of 200
	router.Use(middleware.RateLimitMiddleware(rate.Limit(100), 200))

	// Public routes (no auth required)
	// Stricter rate limiting for login endpoint: 5 requests per second with burst of 10
	loginRouter := router.PathPrefix("/api/v1/auth").Subrouter()
	loginRouter.Use(middleware.RateLimitMiddleware(rate.Limit(5), 10))
	loginRouter.HandleFunc("/login", api.LoginHandler(jwtManager)).Methods("POST")

	router.HandleFunc("/api/v1/health", api.HealthHandler).Methods("GET", "HEAD")

	// Protected routes (require JWT)
	protected := router.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.AuthMiddleware(jwtManager))

	// Config management endpoints
	protected.HandleFunc("/config", api.GetConfigHandler).Methods("GET")
	protected.HandleFunc("/config", api.UpdateConfigHandler).Methods("PUT")
	protected.HandleFunc("/config/validate", api.ValidateConfigHandler).Methods("POST")

	// Operation execution and history
	protected.HandleFunc("/operations", api.ExecuteOperationHandler(run, hub)).Methods("POST")
	protected.HandleFunc("/operations/log", api.GetOperationsLogHandler(historyDB)).Methods("GET")

	// WebSocket endpoint for live operation results
	protected.HandleFunc("/ws/operations", websocket.HandleOperationsWebSocket(hub)).Methods("GET")

	// TLS configuration (strict)
	tlsConfig := &tls.Config{
		MinVersion:               tls.VersionTLS13,
		CurvePreferences:         []tls.CurveID{tls.CurveP521, tls.CurveP384, tls.CurveP256},
		PreferServerCipherSuites: true,
		CipherSuites: []uint16{
			tls.TLS_AES_256_GCM_SHA384,
			tls.TLS_AES_128_GCM_SHA256,
			tls.TLS_CHACHA20_POLY1305_SHA256,
		},
	}

	// Create HTTPS server
	srv := &http.Server{
		Addr:         ServerAddr,
		Handler:      router,
		TLSConfig:    tlsConfig,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Printf("Starting HTTPS server on %s", ServerAddr)

		// Get TLS cert/key paths from environment, with fallback to defaults
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")

		if certPath == "" || keyPath == "" {
			// Default paths: try /app/certs (container), then certs/ (local), then ../certs (local dev)
			certPath = "/app/certs/server.crt"
			keyPath = "/app/certs/server.key"
			if _, err := os.Stat(certPath); os.IsNotExist(err) {
				certPath = "certs/server.crt"
				keyPath = "certs/server.key"
				if _, err := os.Stat(certPath); os.IsNotExist(err) {
					certPath = "../certs/server.crt"
					keyPath = "../certs/server.key"
				}
			}
		}

		logger.Printf("Using TLS certificate: %s", certPath)
		logger.Printf("Using TLS key: %s", keyPath)

		if _, err := os.Stat(certPath); err != nil {
			logger.Fatalf("Cannot access TLS certificate at %s: %v", certPath, err)
		}
		if _, err := os.Stat(keyPath); err != nil {
			logger.Fatalf("Cannot access TLS key at %s: %v", keyPath, err)
		}

		if err := srv.ListenAndServeTLS(certPath, keyPath); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	logger.Println("Server started successfully")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server exited cleanly")
}
