// floatchat - terminal front-end for the floating chat widget backend
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/floatchat/floatchat-go/internal/chat"
	"github.com/floatchat/floatchat-go/internal/config"
	"github.com/floatchat/floatchat-go/internal/identity"
	"github.com/floatchat/floatchat-go/internal/store"
	"github.com/floatchat/floatchat-go/internal/transport"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Durable scope: the localStorage stand-in. Session scope defaults to a
	// per-run memory store unless configured persistent.
	persistent, err := store.NewSQLite(cfg.StateDBPath)
	if err != nil {
		slog.Error("Failed to open state store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := persistent.Close(); closeErr != nil {
			slog.Error("Failed to close state store", "error", closeErr)
		}
	}()

	var sessionStore store.Store = store.NewMemory()
	if cfg.SessionScope == config.SessionScopePersistent {
		sessionStore = persistent
	}

	ctx := context.Background()
	ids := identity.NewManager(persistent, sessionStore, logger)
	userID, err := ids.UserID(ctx)
	if err != nil {
		slog.Error("Failed to resolve user id", "error", err)
		os.Exit(1)
	}
	sessionID, err := ids.SessionID(ctx)
	if err != nil {
		slog.Error("Failed to resolve session id", "error", err)
		os.Exit(1)
	}
	slog.Info("Identity ready", "user_id", userID, "session_id", sessionID)

	rest := transport.NewClient(transport.ClientConfig{
		BaseURL:         cfg.APIBase(),
		Timeout:         cfg.APITimeout,
		SecurityHeaders: cfg.SecurityHeaders,
	}, logger)

	ui := newRenderer(os.Stdout)

	if err := rest.Health(ctx); err != nil {
		// The widget stays usable without the probe; sends will surface
		// their own failures as chat bubbles.
		slog.Warn("Backend health probe failed", "error", err)
	}

	channel := transport.NewChannel(cfg.WSURL(), sessionID, logger)
	ctrl := chat.New(chat.Config{
		SessionID:      sessionID,
		TypingDebounce: cfg.TypingDebounce,
		OnUpdate:       nil, // renderer pulls snapshots after each interaction
		OnPeerTyping:   ui.peerTyping,
		Logger:         logger,
	}, channel, rest)
	channel.OnMessage(ctrl.HandleRealtimeEvent)

	if err := channel.Connect(ctx); err != nil {
		slog.Warn("Real-time channel unavailable, continuing with REST only", "error", err)
	}
	ui.indicator(ctrl.Connected())

	ctrl.LoadHistory(ctx)
	ui.catchUp(ctrl.Messages())
	ui.welcome()

	// Guaranteed teardown on interrupt.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		ctrl.Close()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	ui.prompt()
	for scanner.Scan() {
		line := scanner.Text()

		// A line of input is the closest stand-in for keystrokes.
		ctrl.HandleTyping()

		before := ctrl.Connected()
		ctrl.SendMessage(line)
		ctrl.Wait()
		ui.catchUp(ctrl.Messages())

		if now := ctrl.Connected(); now != before {
			ui.indicator(now)
		}
		ui.prompt()
	}
	if err := scanner.Err(); err != nil {
		slog.Error("Input error", "error", err)
	}

	ctrl.Close()
	fmt.Println()
}
