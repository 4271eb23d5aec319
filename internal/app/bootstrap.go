package app

import (
	"log/slog"

	"order_bot/internal/infra"
	"order_bot/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config    *infra.Config
	Snapshots *storage.Store
	Images    *infra.ImageCache
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB).
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Order Bot...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize snapshot store
	store, err := storage.NewStore()
	if err != nil {
		return err
	}
	b.Snapshots = store
	if ids, err := store.ListOrderIDs(); err == nil {
		slog.Info("✅ Snapshot store ready", slog.Int("tracked_orders", len(ids)))
	} else {
		slog.Warn("Snapshot store scan failed", slog.Any("error", err))
	}

	// 4. Thumbnail cache (optional)
	if cfg.Orders.ImageCache {
		images, err := infra.NewImageCache()
		if err != nil {
			return err
		}
		b.Images = images
		slog.Info("✅ Image cache ready")
	}

	return nil
}
