package commands

import (
	"context"
	"fmt"

	"saldo/internal/blob"
	"saldo/internal/config"
	"saldo/internal/store"
	"saldo/internal/store/memory"
	"saldo/internal/store/sqlite"
)

// openStore builds the configured document store. The returned closer is
// a no-op for the memory backend.
func openStore(cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return repo, repo.Close, nil
	case "memory":
		return memory.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

// openBlobs builds the configured blob store. localDir is non-empty only
// for the local backend, where the HTTP server mounts direct downloads.
func openBlobs(ctx context.Context, cfg *config.Config) (blobStore blob.Store, closer func() error, localDir string, err error) {
	switch cfg.BlobBackend {
	case "local":
		local, err := blob.NewLocalStore(cfg.BlobDir)
		if err != nil {
			return nil, nil, "", fmt.Errorf("open local blob store: %w", err)
		}
		return local, func() error { return nil }, local.Dir(), nil
	case "gcs":
		gcs, err := blob.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, nil, "", fmt.Errorf("open GCS blob store: %w", err)
		}
		return gcs, gcs.Close, "", nil
	default:
		return nil, nil, "", fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}
