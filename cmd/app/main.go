package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"order_bot/internal/app"
	"order_bot/internal/engine"
	"order_bot/internal/event"
	"order_bot/internal/infra/chat"
	"order_bot/internal/service"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Core: order state service + outbound responder + dispatcher
	event.Warmup()
	svc := service.NewOrderService()

	poster := chat.NewPoster(cfg.Gateway.RestURL, cfg.Gateway.Token)
	responder := chat.NewResponder(poster, bootstrap.Snapshots, bootstrap.Images)

	dispatcher := engine.NewDispatcher(cfg.Gateway.InboxSize, svc, cfg.Orders.DefaultImageURL, responder.Handle)
	go dispatcher.Run(ctx)
	slog.InfoContext(ctx, "✅ Dispatcher started")

	// 5. Gateway worker (socket mode)
	worker := chat.NewWorker(cfg.Gateway.WSURL, cfg.Gateway.Token, dispatcher.Inbox(), bootstrap.Snapshots)
	if err := worker.Connect(ctx); err != nil {
		slog.Error("Failed to start gateway worker", slog.Any("error", err))
		os.Exit(1)
	}
	defer worker.Disconnect()
	slog.InfoContext(ctx, "✅ Gateway worker started")

	slog.InfoContext(ctx, "✨ Order Bot fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
