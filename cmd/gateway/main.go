package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinechat/api"
	"cinechat/auth"
	"cinechat/internal"
	"cinechat/relay"
	"cinechat/repositories"
	"cinechat/services"
	"cinechat/ws"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Stores, authentication, relay
	userRepository := repositories.NewUserRepository(db)
	movieRepository := repositories.NewMovieRepository(db)
	genreRepository := repositories.NewGenreRepository(db)

	authenticator := auth.NewAuthenticator([]byte(config.JWTSecret), config.AuthTokenDuration, userRepository)
	gate := auth.NewGate(authenticator, log)
	authService := services.NewAuthService(userRepository, authenticator)

	messageRelay := relay.New(log, config.BroadcastToSender)

	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, nil, func() map[string]any {
			return map[string]any{
				"connections":       messageRelay.Connections(),
				"delivery_failures": messageRelay.DeliveryFailures(),
			}
		})
		log.Info("Debug inspection server enabled", "port", config.DebugPort)
	}

	// 4. HTTP surface
	router := api.NewRouter(
		log,
		gate,
		api.NewAuthHandler(log, authService),
		api.NewUserHandler(log, authService),
		api.NewMovieHandler(log, movieRepository),
		api.NewGenreHandler(log, genreRepository),
		ws.NewHandler(log, messageRelay, authenticator, config.RequireSocketAuth, config.ConnectionBufferSize),
	)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:         address,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Use an error channel to capture ListenAndServe issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting gateway", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup: stop accepting requests, then drain live sockets.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown incomplete", "error", err)
	}
	messageRelay.Shutdown()
	log.Info("Program stopped cleanly")

	return nil
}
