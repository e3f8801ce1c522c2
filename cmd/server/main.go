package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"github.com/SergioBarbosa7/socket-chat/group"
	"github.com/SergioBarbosa7/socket-chat/infrastructure/ws"
	"github.com/SergioBarbosa7/socket-chat/internal"
	"github.com/SergioBarbosa7/socket-chat/moderation"
	"github.com/SergioBarbosa7/socket-chat/repositories"
	"github.com/SergioBarbosa7/socket-chat/runtime/workers"
	"github.com/SergioBarbosa7/socket-chat/services"
	"github.com/SergioBarbosa7/socket-chat/session"
	"github.com/SergioBarbosa7/socket-chat/storage"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (like the database close)
// executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Delivery audit log (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	history := repositories.NewHistoryRepository(db, logger, config.HistoryLimit)

	// 3. Core registries and router
	directory := session.NewUserDirectory()
	sessions := session.NewManager(directory, logger)
	groups := group.NewRegistry(logger)
	offline := storage.NewOfflineQueue(logger)

	var moderator *moderation.Moderator
	if words := config.Words(); len(words) > 0 {
		m, err := moderation.NewModerator(words, charReplacement, logger)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
		}
		moderator = &m
	}

	service := services.NewChatService(sessions, groups, offline, history, moderator, logger)

	// 4. Supervised workers: the transport and the heartbeat fan-out.
	server := ws.NewServer(config.Addr(), config.MaxFrameBytes, service, logger)
	heartbeat := workers.NewHeartbeatWorker(logger, sessions, config.HeartbeatInterval)

	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(server, heartbeat)

	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The execution blocks here until a signal is received.
	supervisor.Run(ctx)
	logger.Info("Shutdown complete")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
