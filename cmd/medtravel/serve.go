package main

import (
	"context"
	"errors"
	"io/fs"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/cache"
	"github.com/ZaguanLabs/medtravel/internal/catalog"
	"github.com/ZaguanLabs/medtravel/internal/config"
	"github.com/ZaguanLabs/medtravel/internal/server"
	"github.com/ZaguanLabs/medtravel/internal/upload"
	"github.com/ZaguanLabs/medtravel/pipeline"
)

// preferenceTTL matches the session cookie lifetime.
const preferenceTTL = 365 * 24 * time.Hour

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the site API: translate, upload, catalog, inquiries, newsletter,
language preference and server-side page rendering.

With translation.snapshot_path set and no Redis configured, the in-memory
translation cache is restored from the snapshot at startup and written back
on translation.snapshot_cron and at shutdown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := catalog.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	tc, closer, err := buildCache(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	p, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	if mem, ok := tc.(*cache.Memory); ok && cfg.Translation.SnapshotPath != "" {
		restoreSnapshot(mem, cfg.Translation.SnapshotPath, logger)

		scheduler := cron.New()
		if cfg.Translation.SnapshotCron != "" {
			if _, err := scheduler.AddFunc(cfg.Translation.SnapshotCron, func() {
				saveSnapshot(mem, cfg.Translation.SnapshotPath, logger)
			}); err != nil {
				return err
			}
		}
		scheduler.Start()
		defer func() {
			<-scheduler.Stop().Done()
			saveSnapshot(mem, cfg.Translation.SnapshotPath, logger)
		}()
	}

	deps := server.Deps{
		Config:   cfg,
		Store:    store,
		Cache:    tc,
		Provider: p,
		Uploader: upload.NewUploader(upload.NewDiskStore(cfg.Storage.UploadDir)),
		Logger:   logger,
	}
	if rc, ok := tc.(*cache.Redis); ok {
		// Share language choices between instances behind a load balancer.
		deps.Preferences = func(visitor string) pipeline.PreferenceStore {
			return pipeline.NewRedisPreferences(rc.Client(), visitor, preferenceTTL)
		}
	}
	srv := server.New(deps)

	logger.Info("Starting medtravel",
		zap.String("version", medtravel.FullVersion()),
		zap.String("addr", cfg.Server.Addr),
		zap.String("provider", cfg.Translation.Provider))
	return srv.Run(ctx)
}

func restoreSnapshot(mem *cache.Memory, path string, logger *zap.Logger) {
	res, err := cache.NewImporter(mem).ImportFromFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("No translation snapshot yet", zap.String("path", path))
	case err != nil:
		logger.Warn("Failed to restore translation snapshot", zap.String("path", path), zap.Error(err))
	default:
		logger.Info("Restored translation snapshot",
			zap.String("path", path),
			zap.Int("imported", res.Imported),
			zap.Int("skipped", res.Skipped))
	}
}

func saveSnapshot(mem *cache.Memory, path string, logger *zap.Logger) {
	n, err := cache.NewExporter(mem).ExportToFile(path, map[string]string{"source": "serve"})
	if err != nil {
		logger.Error("Failed to write translation snapshot", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Debug("Wrote translation snapshot", zap.String("path", path), zap.Int("entries", n))
}
